package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLadder(t *testing.T) {
	ladder := DefaultLadder()
	require.Len(t, ladder, 4)

	expected := []struct {
		width  int
		height int
	}{
		{640, 360},
		{854, 480},
		{1280, 720},
		{1920, 1080},
	}

	for i, e := range expected {
		assert.Equal(t, e.width, ladder[i].Width)
		assert.Equal(t, e.height, ladder[i].Height)
	}
}

func TestParseResolution(t *testing.T) {
	tests := []struct {
		input      string
		wantName   string
		wantWidth  int
		wantHeight int
		wantErr    bool
	}{
		{"720p", "720p", 1280, 720, false},
		{"1080P", "1080p", 1920, 1080, false},
		{"640x360", "360p", 640, 360, false},
		{" 854x480 ", "480p", 854, 480, false},
		{"3840X2160", "2160p", 3840, 2160, false},
		{"4k", "", 0, 0, true},
		{"0x360", "", 0, 0, true},
		{"640x", "", 0, 0, true},
		{"", "", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res, err := ParseResolution(tt.input)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidResolution))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, res.Name)
			assert.Equal(t, tt.wantWidth, res.Width)
			assert.Equal(t, tt.wantHeight, res.Height)
		})
	}
}

func TestParseLadder(t *testing.T) {
	ladder, err := ParseLadder([]string{"640x360", "854x480", "1280x720", "1920x1080"})
	require.NoError(t, err)
	assert.Equal(t, DefaultLadder(), ladder)

	_, err = ParseLadder(nil)
	assert.ErrorIs(t, err, ErrInvalidResolution)

	_, err = ParseLadder([]string{"720p", "bogus"})
	assert.ErrorIs(t, err, ErrInvalidResolution)
}

func TestParseLadderDuplicateHeight(t *testing.T) {
	tests := []struct {
		name   string
		values []string
	}{
		{"same height different width", []string{"1280x720", "960x720"}},
		{"name and size", []string{"720p", "1280x720"}},
		{"repeated entry", []string{"640x360", "854x480", "640x360"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLadder(tt.values)
			assert.ErrorIs(t, err, ErrInvalidResolution)
		})
	}
}

func TestResolutionString(t *testing.T) {
	assert.Equal(t, "1280x720", Resolution720p.String())
}
