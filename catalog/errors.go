package catalog

import (
	"errors"
	"fmt"
)

// Sentinel errors. Lookups signal absence with a boolean; ErrNotFound is for
// callers that need to turn absence into an error value.
var (
	ErrNotFound  = errors.New("not found")
	ErrNotBundle = errors.New("file does not belong to a bundle")
	ErrFormat    = errors.New("malformed catalog data")
)

// NotFoundError names the missing resource.
type NotFoundError struct {
	Resource string
	ID       int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// Is implements errors.Is support.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NotBundleError is returned when manifest resolution is asked for a file
// whose owner is not in the bundle section. It is a programming error on the
// caller's side.
type NotBundleError struct {
	FileID    int
	ProjectID int
	Section   string
}

func (e *NotBundleError) Error() string {
	return fmt.Sprintf("file %d belongs to project %d in section %q, not a bundle", e.FileID, e.ProjectID, e.Section)
}

// Is implements errors.Is support.
func (e *NotBundleError) Is(target error) bool {
	return target == ErrNotBundle
}
