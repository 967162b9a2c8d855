package models

import (
	"fmt"
	"path/filepath"
)

// Default output naming
const (
	DefaultOutputDir    = "output_videos"
	DefaultDASHSubdir   = "dash_output"
	DefaultManifestName = "output.mpd"
	FragmentedBaseName  = "fragmented"
)

// Variant is one (dynamic range, resolution) output of a run
type Variant struct {
	Range      DynamicRange `json:"range"`
	Resolution Resolution   `json:"resolution"`
}

// HDR reports whether the variant is HDR-styled
func (v Variant) HDR() bool {
	return v.Range.IsHDR()
}

// String returns e.g. "hdr/720p"
func (v Variant) String() string {
	return fmt.Sprintf("%s/%dp", v.Range, v.Resolution.Height)
}

// OutputLayout maps variants to paths under the output directory. Every
// (range, height) pair yields a distinct encoded file and package directory.
type OutputLayout struct {
	BaseDir string
	Ext     string
}

// NewOutputLayout creates a layout for outputs sharing the input's extension
func NewOutputLayout(baseDir, ext string) OutputLayout {
	if baseDir == "" {
		baseDir = DefaultOutputDir
	}
	return OutputLayout{BaseDir: baseDir, Ext: ext}
}

// OutputPrefix returns the encoded file prefix for a dynamic range
func (l OutputLayout) OutputPrefix(r DynamicRange) string {
	return filepath.Join(l.BaseDir, "output_"+string(r))
}

// EncodedPath returns {prefix}_{height}p{ext}
func (l OutputLayout) EncodedPath(v Variant) string {
	return EncodedPath(l.OutputPrefix(v.Range), v.Resolution, l.Ext)
}

// PackageDir returns the DASH packaging directory for a variant
func (l OutputLayout) PackageDir(v Variant) string {
	return filepath.Join(l.BaseDir, fmt.Sprintf("dash_%s_%dp", v.Range, v.Resolution.Height))
}

// EncodedPath builds the transcoder output filename
func EncodedPath(prefix string, res Resolution, ext string) string {
	return fmt.Sprintf("%s_%dp%s", prefix, res.Height, ext)
}

// FragmentedPath returns the fragmented copy location inside a package dir
func FragmentedPath(packageDir, ext string) string {
	return filepath.Join(packageDir, FragmentedBaseName+ext)
}
