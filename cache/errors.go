package cache

import "errors"

var (
	ErrNoSnapshot = errors.New("snapshot not cached")
	ErrChecksum   = errors.New("snapshot checksum mismatch")
	ErrNoArchive  = errors.New("no archived snapshot")
)
