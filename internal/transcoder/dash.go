package transcoder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/therealutkarshpriyadarshi/dashprep/internal/config"
	"github.com/therealutkarshpriyadarshi/dashprep/internal/logging"
	"github.com/therealutkarshpriyadarshi/dashprep/pkg/models"
)

// Bento4 wraps mp4fragment and mp4dash
type Bento4 struct {
	mp4fragmentPath string
	mp4dashPath     string
	opts            config.PackagerConfig
	runner          Runner
	logger          *logging.Logger
}

// DASHResult holds the paths produced by a packaging run
type DASHResult struct {
	FragmentedPath string
	SegmentDir     string
	ManifestPath   string
}

// NewBento4 creates a packager
func NewBento4(cfg *config.Config, runner Runner, logger *logging.Logger) *Bento4 {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Bento4{
		mp4fragmentPath: cfg.Tools.Mp4fragmentPath,
		mp4dashPath:     cfg.Tools.Mp4dashPath,
		opts:            cfg.Packager,
		runner:          runner,
		logger:          logger,
	}
}

// Layout returns the packaging paths for an input and output directory
func (b *Bento4) Layout(inputPath, outputDir string) DASHResult {
	segmentDir := filepath.Join(outputDir, b.opts.DASHSubdir)
	return DASHResult{
		FragmentedPath: models.FragmentedPath(outputDir, filepath.Ext(inputPath)),
		SegmentDir:     segmentDir,
		ManifestPath:   filepath.Join(segmentDir, b.opts.ManifestName),
	}
}

// FragmentArgs builds the mp4fragment arguments
func (b *Bento4) FragmentArgs(inputPath, fragmentedPath string) []string {
	return []string{
		"--fragment-duration", strconv.Itoa(b.opts.FragmentDuration),
		inputPath,
		fragmentedPath,
	}
}

// DASHArgs builds the mp4dash arguments
func (b *Bento4) DASHArgs(fragmentedPath, segmentDir string) []string {
	args := make([]string, 0, 6)
	if b.opts.Force {
		args = append(args, "--force")
	}
	return append(args,
		"--output-dir", segmentDir,
		"--mpd-name", b.opts.ManifestName,
		fragmentedPath,
	)
}

// Package fragments inputPath into outputDir and generates the DASH manifest
// and segments beneath it. A fragmented file left by a failed manifest step
// is not removed.
func (b *Bento4) Package(ctx context.Context, inputPath, outputDir string) (*DASHResult, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := b.Layout(inputPath, outputDir)

	if _, err := b.runner.Run(ctx, b.mp4fragmentPath, b.FragmentArgs(inputPath, result.FragmentedPath)...); err != nil {
		return nil, fmt.Errorf("error in DASH packaging: %w", err)
	}

	args := b.DASHArgs(result.FragmentedPath, result.SegmentDir)
	b.logger.Debugf("Running mp4dash command: %s %v", b.mp4dashPath, args)

	if _, err := b.runner.Run(ctx, b.mp4dashPath, args...); err != nil {
		return nil, fmt.Errorf("error in DASH packaging: %w", err)
	}

	return &result, nil
}
