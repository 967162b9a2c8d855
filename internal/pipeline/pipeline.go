// Package pipeline sequences HDR detection, transcoding and DASH packaging
// for a single input file.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/therealutkarshpriyadarshi/dashprep/internal/cache"
	"github.com/therealutkarshpriyadarshi/dashprep/internal/config"
	"github.com/therealutkarshpriyadarshi/dashprep/internal/logging"
	"github.com/therealutkarshpriyadarshi/dashprep/internal/metrics"
	"github.com/therealutkarshpriyadarshi/dashprep/internal/tracing"
	"github.com/therealutkarshpriyadarshi/dashprep/internal/transcoder"
	"github.com/therealutkarshpriyadarshi/dashprep/pkg/models"
)

// ErrInputNotFound is returned when the input is missing or not a regular file
var ErrInputNotFound = errors.New("input file does not exist")

// HDRCache memoises detection results between runs
type HDRCache interface {
	GetHDR(ctx context.Context, key string) (hdr bool, found bool, err error)
	SetHDR(ctx context.Context, key string, hdr bool) error
}

// Publisher uploads the output tree after packaging
type Publisher interface {
	PublishDir(ctx context.Context, dir, runPrefix string) (int, error)
}

// Pipeline runs one input through every configured variant
type Pipeline struct {
	cfg       *config.Config
	ladder    []models.Resolution
	ffmpeg    *transcoder.FFmpeg
	packager  *transcoder.Bento4
	logger    *logging.Logger
	cache     HDRCache
	publisher Publisher
	newRunID  func() string
}

// Option configures optional collaborators
type Option func(*Pipeline)

// WithCache enables the HDR detection cache
func WithCache(c HDRCache) Option {
	return func(p *Pipeline) { p.cache = c }
}

// WithPublisher enables uploading the output tree
func WithPublisher(pub Publisher) Option {
	return func(p *Pipeline) { p.publisher = pub }
}

// WithRunID fixes the run ID generator
func WithRunID(fn func() string) Option {
	return func(p *Pipeline) { p.newRunID = fn }
}

// New creates a pipeline that invokes tools through runner
func New(cfg *config.Config, runner transcoder.Runner, logger *logging.Logger, opts ...Option) (*Pipeline, error) {
	ladder, err := cfg.Ladder()
	if err != nil {
		return nil, fmt.Errorf("invalid resolution ladder: %w", err)
	}
	if logger == nil {
		logger = logging.Nop()
	}

	p := &Pipeline{
		cfg:      cfg,
		ladder:   ladder,
		ffmpeg:   transcoder.NewFFmpeg(cfg, runner, logger),
		packager: transcoder.NewBento4(cfg, runner, logger),
		logger:   logger,
		newRunID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// ValidateInput checks that path names an existing regular file
func ValidateInput(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: '%s'", ErrInputNotFound, path)
	}
	return info, nil
}

// Run detects the dynamic range of inputPath once, then transcodes and
// packages every resolution. HDR inputs additionally get an SDR-styled
// copy of each resolution. Step failures are recorded in the report and do
// not stop the run; only a missing input, an unusable output directory or
// cancellation return an error.
func (p *Pipeline) Run(ctx context.Context, inputPath string) (*models.Report, error) {
	info, err := ValidateInput(inputPath)
	if err != nil {
		return nil, err
	}

	outputDir := p.cfg.Pipeline.OutputDir
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	report := models.NewReport(p.newRunID(), inputPath)
	logger := p.logger.WithRunID(report.RunID)

	span, ctx := tracing.StartSpan(ctx, "dashprep.run")
	defer tracing.FinishSpan(span)
	tracing.SetTag(span, "run_id", report.RunID)
	tracing.SetTag(span, "input", inputPath)

	logger.Infof("Processing %s", inputPath)

	hdr := p.detect(ctx, inputPath, info, report, logger)
	report.Range = models.RangeFor(hdr)
	metrics.RecordDynamicRange(hdr)
	tracing.SetTag(span, "hdr", hdr)

	input := models.NewMediaFile(inputPath)
	layout := models.NewOutputLayout(outputDir, input.Ext())

	ranges := []models.DynamicRange{models.RangeSDR}
	if hdr {
		ranges = []models.DynamicRange{models.RangeHDR, models.RangeSDR}
	}

	for _, r := range ranges {
		for _, res := range p.ladder {
			if err := ctx.Err(); err != nil {
				p.finish(report, logger)
				return report, err
			}
			p.processVariant(ctx, input.Path, models.Variant{Range: r, Resolution: res}, layout, report, logger)
		}
	}

	if p.publisher != nil {
		p.publish(ctx, outputDir, report, logger)
	}

	p.finish(report, logger)
	return report, nil
}

func (p *Pipeline) finish(report *models.Report, logger *logging.Logger) {
	report.Finish()
	metrics.RecordRun(report.Duration(), len(report.Failures()), report.FinishedAt)
	logger.LogRunSummary(report)
}

// detect runs the HDR detector, consulting the cache first when configured.
// A probe failure counts as SDR.
func (p *Pipeline) detect(ctx context.Context, inputPath string, info os.FileInfo, report *models.Report, logger *logging.Logger) bool {
	var key string
	if p.cache != nil {
		key = cache.Key(inputPath, info)
		hdr, found, err := p.cache.GetHDR(ctx, key)
		switch {
		case err != nil:
			metrics.RecordCacheAccess("error")
			logger.WithError(err).Warn("HDR cache lookup failed")
		case found:
			metrics.RecordCacheAccess("hit")
			logger.Debugf("HDR cache hit: hdr=%t", hdr)
			return hdr
		default:
			metrics.RecordCacheAccess("miss")
		}
	}

	span, spanCtx := tracing.StartSpan(ctx, "dashprep.detect")
	start := time.Now()
	hdr, err := p.ffmpeg.ProbeHDR(spanCtx, inputPath)
	tracing.LogError(span, err)
	tracing.FinishSpan(span)

	res := models.StepResult{Step: models.StepDetect, Path: inputPath, Duration: time.Since(start), Err: err}
	report.Add(res)
	logger.LogStep(res)
	metrics.RecordStep(string(models.StepDetect), "", "", res.Duration, err)

	if err != nil {
		return false
	}

	if p.cache != nil {
		if err := p.cache.SetHDR(ctx, key, hdr); err != nil {
			logger.WithError(err).Warn("HDR cache store failed")
		}
	}

	return hdr
}

// processVariant transcodes then packages one variant. The packager is
// handed the encoded path even if the transcode failed.
func (p *Pipeline) processVariant(ctx context.Context, inputPath string, v models.Variant, layout models.OutputLayout, report *models.Report, logger *logging.Logger) {
	vlog := logger.WithVariant(v)
	metrics.RecordVariant(string(v.Range), v.Resolution.Name)

	span, ctx := tracing.StartSpan(ctx, "dashprep.variant")
	defer tracing.FinishSpan(span)
	tracing.SetTag(span, "range", string(v.Range))
	tracing.SetTag(span, "resolution", v.Resolution.Name)

	encoded := p.step(ctx, models.StepTranscode, v, report, vlog, func(ctx context.Context) (string, error) {
		return p.ffmpeg.Transcode(ctx, inputPath, layout.OutputPrefix(v.Range), v.Resolution, v.HDR())
	})

	p.step(ctx, models.StepPackage, v, report, vlog, func(ctx context.Context) (string, error) {
		result, err := p.packager.Package(ctx, encoded, layout.PackageDir(v))
		if err != nil {
			return layout.PackageDir(v), err
		}
		return result.ManifestPath, nil
	})
}

// step times fn, traces it and records the result
func (p *Pipeline) step(ctx context.Context, step models.Step, v models.Variant, report *models.Report, logger *logging.Logger, fn func(context.Context) (string, error)) string {
	span, ctx := tracing.StartSpan(ctx, "dashprep."+string(step))
	start := time.Now()

	path, err := fn(ctx)

	tracing.SetTag(span, "path", path)
	tracing.LogError(span, err)
	tracing.FinishSpan(span)

	variant := v
	res := models.StepResult{Step: step, Variant: &variant, Path: path, Duration: time.Since(start), Err: err}
	report.Add(res)
	logger.LogStep(res)
	metrics.RecordStep(string(step), string(v.Range), v.Resolution.Name, res.Duration, err)

	return path
}

func (p *Pipeline) publish(ctx context.Context, outputDir string, report *models.Report, logger *logging.Logger) {
	span, ctx := tracing.StartSpan(ctx, "dashprep.publish")
	start := time.Now()

	n, err := p.publisher.PublishDir(ctx, outputDir, report.RunID)
	report.Published = n

	tracing.LogError(span, err)
	tracing.FinishSpan(span)

	res := models.StepResult{Step: models.StepPublish, Path: outputDir, Duration: time.Since(start), Err: err}
	report.Add(res)
	logger.LogStep(res)
	metrics.RecordStep(string(models.StepPublish), "", "", res.Duration, err)
}
