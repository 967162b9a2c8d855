package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/therealutkarshpriyadarshi/dashprep/pkg/models"
)

// EnvPrefix is prepended to every environment override, e.g.
// DASHPREP_PIPELINE_OUTPUTDIR
const EnvPrefix = "DASHPREP"

// Config holds all configuration for a run
type Config struct {
	Pipeline PipelineConfig
	Tools    ToolsConfig
	Probe    ProbeConfig
	Encoder  EncoderConfig
	Overlay  OverlayConfig
	Packager PackagerConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
	Tracing  TracingConfig
	Cache    CacheConfig
	Storage  StorageConfig
}

// PipelineConfig holds the controller settings
type PipelineConfig struct {
	OutputDir       string
	Resolutions     []string
	FailOnStepError bool
}

// ToolsConfig holds paths to the external binaries
type ToolsConfig struct {
	FFmpegPath      string
	FFprobePath     string
	Mp4fragmentPath string
	Mp4dashPath     string
}

// ProbeConfig holds HDR detection settings
type ProbeConfig struct {
	OutputFormat string
}

// EncoderConfig holds ffmpeg encode settings
type EncoderConfig struct {
	VideoCodec string
	Preset     string
	CRF        int
}

// OverlayConfig holds the marker drawtext settings
type OverlayConfig struct {
	Glyph    string
	FontFile string
}

// PackagerConfig holds Bento4 settings
type PackagerConfig struct {
	FragmentDuration int
	DASHSubdir       string
	ManifestName     string
	Force            bool
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

// MetricsConfig holds metrics export settings
type MetricsConfig struct {
	Textfile string
}

// TracingConfig holds Jaeger settings
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
}

// CacheConfig holds Redis settings for the HDR detection cache
type CacheConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Enabled         bool
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	UseSSL          bool
	Prefix          string
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables. An empty configPath skips the file.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Default returns the built-in configuration without reading a file or
// the environment
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	// Defaults always decode.
	_ = v.Unmarshal(&config)
	return &config
}

// Validate checks values that would otherwise fail deep inside a run
func (c *Config) Validate() error {
	if c.Pipeline.OutputDir == "" {
		return fmt.Errorf("pipeline.outputDir must not be empty")
	}
	if _, err := c.Ladder(); err != nil {
		return fmt.Errorf("pipeline.resolutions: %w", err)
	}
	if c.Packager.FragmentDuration <= 0 {
		return fmt.Errorf("packager.fragmentDuration must be positive, got %d", c.Packager.FragmentDuration)
	}
	if c.Encoder.CRF < 0 || c.Encoder.CRF > 51 {
		return fmt.Errorf("encoder.crf must be between 0 and 51, got %d", c.Encoder.CRF)
	}
	if c.Storage.Enabled && c.Storage.BucketName == "" {
		return fmt.Errorf("storage.bucketName is required when storage is enabled")
	}
	return nil
}

// Ladder returns the configured resolutions in order
func (c *Config) Ladder() ([]models.Resolution, error) {
	return models.ParseLadder(c.Pipeline.Resolutions)
}

func setDefaults(v *viper.Viper) {
	// Pipeline defaults
	v.SetDefault("pipeline.outputDir", models.DefaultOutputDir)
	v.SetDefault("pipeline.resolutions", []string{"640x360", "854x480", "1280x720", "1920x1080"})
	v.SetDefault("pipeline.failOnStepError", false)

	// Tool defaults
	v.SetDefault("tools.ffmpegPath", "ffmpeg")
	v.SetDefault("tools.ffprobePath", "ffprobe")
	v.SetDefault("tools.mp4fragmentPath", "mp4fragment")
	v.SetDefault("tools.mp4dashPath", "mp4dash")

	// Keys must stay in the output: the HDR check matches key=value pairs,
	// which nokey=1 would strip.
	v.SetDefault("probe.outputFormat", "default=noprint_wrappers=1")

	// Encoder defaults
	v.SetDefault("encoder.videoCodec", "libx265")
	v.SetDefault("encoder.preset", "fast")
	v.SetDefault("encoder.crf", 28)

	v.SetDefault("overlay.glyph", "●")
	v.SetDefault("overlay.fontFile", "")

	// Packager defaults
	v.SetDefault("packager.fragmentDuration", 7000)
	v.SetDefault("packager.dashSubdir", models.DefaultDASHSubdir)
	v.SetDefault("packager.manifestName", models.DefaultManifestName)
	v.SetDefault("packager.force", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("metrics.textfile", "")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.serviceName", "dashprep")
	v.SetDefault("tracing.endpoint", "http://localhost:14268/api/traces")

	// Cache defaults
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.host", "localhost")
	v.SetDefault("cache.port", 6379)
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", "24h")

	// Storage defaults
	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.accessKeyID", "minioadmin")
	v.SetDefault("storage.secretAccessKey", "minioadmin")
	v.SetDefault("storage.bucketName", "videos")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.useSSL", false)
	v.SetDefault("storage.prefix", "")
}
