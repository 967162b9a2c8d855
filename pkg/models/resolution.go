package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidResolution is returned when a resolution string cannot be parsed
var ErrInvalidResolution = errors.New("invalid resolution")

// Resolution defines a target output frame size
type Resolution struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Standard resolutions produced for every input
var (
	// Resolution1080p represents Full HD resolution
	Resolution1080p = Resolution{Name: "1080p", Width: 1920, Height: 1080}

	// Resolution720p represents HD resolution
	Resolution720p = Resolution{Name: "720p", Width: 1280, Height: 720}

	// Resolution480p represents SD resolution
	Resolution480p = Resolution{Name: "480p", Width: 854, Height: 480}

	// Resolution360p represents low-quality mobile resolution
	Resolution360p = Resolution{Name: "360p", Width: 640, Height: 360}
)

// DefaultLadder returns the supported resolutions, smallest first
func DefaultLadder() []Resolution {
	return []Resolution{
		Resolution360p,
		Resolution480p,
		Resolution720p,
		Resolution1080p,
	}
}

// GetResolution returns a standard resolution by name
func GetResolution(name string) *Resolution {
	for _, res := range DefaultLadder() {
		if strings.EqualFold(res.Name, name) {
			r := res
			return &r
		}
	}
	return nil
}

// ParseResolution parses either a standard name ("720p") or a
// WIDTHxHEIGHT pair ("1280x720")
func ParseResolution(s string) (Resolution, error) {
	s = strings.TrimSpace(s)
	if res := GetResolution(s); res != nil {
		return *res, nil
	}

	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 2 {
		return Resolution{}, fmt.Errorf("%w: %q", ErrInvalidResolution, s)
	}

	width, err := strconv.Atoi(parts[0])
	if err != nil || width <= 0 {
		return Resolution{}, fmt.Errorf("%w: %q", ErrInvalidResolution, s)
	}
	height, err := strconv.Atoi(parts[1])
	if err != nil || height <= 0 {
		return Resolution{}, fmt.Errorf("%w: %q", ErrInvalidResolution, s)
	}

	return Resolution{
		Name:   fmt.Sprintf("%dp", height),
		Width:  width,
		Height: height,
	}, nil
}

// ParseLadder parses a list of resolution strings, preserving order.
// Output names carry only the height, so two entries of the same height
// are rejected.
func ParseLadder(values []string) ([]Resolution, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: empty resolution list", ErrInvalidResolution)
	}

	ladder := make([]Resolution, 0, len(values))
	seen := make(map[int]string, len(values))
	for _, v := range values {
		res, err := ParseResolution(v)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[res.Height]; ok {
			return nil, fmt.Errorf("%w: %q and %q share height %d", ErrInvalidResolution, prev, v, res.Height)
		}
		seen[res.Height] = v
		ladder = append(ladder, res)
	}
	return ladder, nil
}

// String returns WIDTHxHEIGHT
func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}
