package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTier(t *testing.T) {
	tests := []struct {
		in      string
		want    Tier
		wantErr bool
	}{
		{"complete", Complete, false},
		{"Weekly", Weekly, false},
		{"DAILY", Daily, false},
		{"hourly", Hourly, false},
		{"monthly", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTier(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownTier)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTierStrings(t *testing.T) {
	assert.Equal(t, "complete", Complete.String())
	assert.Equal(t, "hourly.json", Hourly.Filename())
	assert.Equal(t, "Tier(9)", Tier(9).String())
	assert.Equal(t, []Tier{Complete, Weekly, Daily, Hourly}, Tiers())
}

func TestEndpointURLs(t *testing.T) {
	e := Endpoint{Host: "clientupdate-v6.cursecdn.com", GameID: 432, Revision: "v10"}
	assert.Equal(t,
		"http://clientupdate-v6.cursecdn.com/feed/addons/432/v10/weekly.json.bz2.txt",
		e.QueryURL(Weekly))
	assert.Equal(t,
		"http://clientupdate-v6.cursecdn.com/feed/addons/432/v10/complete.json.bz2?t=1500000000",
		e.DownloadURL(Complete, 1500000000))
}
