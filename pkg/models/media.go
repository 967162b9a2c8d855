package models

import (
	"math"
	"path/filepath"
)

// MediaFile is an input or output video asset on disk
type MediaFile struct {
	Path string `json:"path"`
}

// NewMediaFile wraps a filesystem path
func NewMediaFile(path string) MediaFile {
	return MediaFile{Path: path}
}

// Ext returns the file extension including the leading dot
func (m MediaFile) Ext() string {
	return filepath.Ext(m.Path)
}

// DynamicRange classifies an input as SDR or HDR
type DynamicRange string

// DynamicRange constants
const (
	RangeSDR DynamicRange = "sdr"
	RangeHDR DynamicRange = "hdr"
)

// RangeFor maps the HDR detector result to a DynamicRange
func RangeFor(hdr bool) DynamicRange {
	if hdr {
		return RangeHDR
	}
	return RangeSDR
}

// IsHDR reports whether the range is HDR
func (d DynamicRange) IsHDR() bool {
	return d == RangeHDR
}

// Overlay marker colors
const (
	OverlayColorHDR = "green"
	OverlayColorSDR = "white"
)

// OverlayStyle describes the circular marker burned into each output.
// X and Y are the center of the circle in output pixel coordinates.
type OverlayStyle struct {
	Radius int    `json:"radius"`
	Color  string `json:"color"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

// NewOverlayStyle computes the marker for a resolution. HDR outputs get a
// larger green marker at the top right, SDR outputs a white one at the
// bottom right.
func NewOverlayStyle(res Resolution, hdr bool) OverlayStyle {
	scale := 0.05
	color := OverlayColorSDR
	if hdr {
		scale = 0.07
		color = OverlayColorHDR
	}

	radius := int(math.Round(float64(res.Height) * scale))

	y := res.Height - radius
	if hdr {
		y = radius
	}

	return OverlayStyle{
		Radius: radius,
		Color:  color,
		X:      res.Width - radius,
		Y:      y,
	}
}

// Diameter returns the marker size in pixels
func (o OverlayStyle) Diameter() int {
	return o.Radius * 2
}

// Left returns the x offset of the marker's bounding box
func (o OverlayStyle) Left() int {
	return o.X - o.Radius
}

// Top returns the y offset of the marker's bounding box
func (o OverlayStyle) Top() int {
	return o.Y - o.Radius
}
