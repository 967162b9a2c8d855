package transcoder

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/therealutkarshpriyadarshi/dashprep/internal/config"
	"github.com/therealutkarshpriyadarshi/dashprep/internal/logging"
	"github.com/therealutkarshpriyadarshi/dashprep/pkg/models"
)

// Substrings in ffprobe stream output that mark an input as HDR. Full range
// color is only a proxy for HDR; the rule is kept as is because output
// naming and the number of variants depend on it.
var hdrIndicators = []string{
	"color_range=pc",
	"color_space=bt2020",
}

// FFmpeg wraps ffprobe and ffmpeg invocations
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	probeFormat string
	encoder     config.EncoderConfig
	overlay     config.OverlayConfig
	runner      Runner
	logger      *logging.Logger
}

// NewFFmpeg creates a new FFmpeg instance
func NewFFmpeg(cfg *config.Config, runner Runner, logger *logging.Logger) *FFmpeg {
	if logger == nil {
		logger = logging.Nop()
	}
	return &FFmpeg{
		ffmpegPath:  cfg.Tools.FFmpegPath,
		ffprobePath: cfg.Tools.FFprobePath,
		probeFormat: cfg.Probe.OutputFormat,
		encoder:     cfg.Encoder,
		overlay:     cfg.Overlay,
		runner:      runner,
		logger:      logger,
	}
}

// probeArgs returns the ffprobe arguments for the first video stream
func (f *FFmpeg) probeArgs(inputPath string) []string {
	return []string{
		"-show_streams",
		"-select_streams", "v:0",
		"-of", f.probeFormat,
		"-v", "error",
		inputPath,
	}
}

// ProbeHDR probes the first video stream and classifies it. The pipeline
// calls this rather than DetectHDR so a probe failure lands in the run report.
func (f *FFmpeg) ProbeHDR(ctx context.Context, inputPath string) (bool, error) {
	output, err := f.runner.Run(ctx, f.ffprobePath, f.probeArgs(inputPath)...)
	if err != nil {
		return false, fmt.Errorf("error detecting HDR: %w", err)
	}
	return IsHDROutput(string(output)), nil
}

// DetectHDR reports whether the input looks like HDR. A probe failure is
// logged and treated as SDR, the same fallback the pipeline applies to a
// ProbeHDR error.
func (f *FFmpeg) DetectHDR(ctx context.Context, inputPath string) bool {
	hdr, err := f.ProbeHDR(ctx, inputPath)
	if err != nil {
		f.logger.WithField("input", inputPath).ErrorWithErr("HDR detection failed, assuming SDR", err)
		return false
	}
	return hdr
}

// IsHDROutput applies the HDR rule to ffprobe output
func IsHDROutput(output string) bool {
	for _, indicator := range hdrIndicators {
		if strings.Contains(output, indicator) {
			return true
		}
	}
	return false
}

// OutputPath returns where Transcode writes a resolution
func OutputPath(inputPath, outputPrefix string, res models.Resolution) string {
	return models.EncodedPath(outputPrefix, res, filepath.Ext(inputPath))
}

// TranscodeArgs builds the ffmpeg arguments for one resolution
func (f *FFmpeg) TranscodeArgs(inputPath, outputPath string, res models.Resolution, hdr bool) []string {
	style := models.NewOverlayStyle(res, hdr)

	return []string{
		"-i", inputPath,
		"-vf", buildOverlayFilter(res, style, f.overlay),
		"-c:v", f.encoder.VideoCodec,
		"-preset", f.encoder.Preset,
		"-crf", strconv.Itoa(f.encoder.CRF),
		"-y", // overwrite output
		outputPath,
	}
}

// Transcode scales the input to res and burns in the range marker. The
// output path is returned even when ffmpeg fails so callers can carry on
// with it.
func (f *FFmpeg) Transcode(ctx context.Context, inputPath, outputPrefix string, res models.Resolution, hdr bool) (string, error) {
	outputPath := OutputPath(inputPath, outputPrefix, res)

	if _, err := f.runner.Run(ctx, f.ffmpegPath, f.TranscodeArgs(inputPath, outputPath, res, hdr)...); err != nil {
		return outputPath, fmt.Errorf("error transcoding video to %s: %w", res.Name, err)
	}

	return outputPath, nil
}
