// Package config provides configuration management for the fragfeed server.
// Configuration is loaded from environment variables with sensible defaults;
// a .env file in the working directory is honored when present.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// Default values
	DefaultPort     = 8788
	DefaultLogLevel = "info"
	DefaultDataDir  = ".fragfeed"

	// Environment variable names
	EnvPort     = "FRAGFEED_PORT"
	EnvLogLevel = "FRAGFEED_LOG_LEVEL"
	EnvDataDir  = "FRAGFEED_DATA_DIR"

	EnvFFmpegPath    = "FRAGFEED_FFMPEG_PATH"
	EnvFFprobePath   = "FRAGFEED_FFPROBE_PATH"
	EnvOCRLanguage   = "FRAGFEED_OCR_LANGUAGE"
	EnvAuthToken     = "FRAGFEED_AUTH_TOKEN"
	EnvWorkers       = "FRAGFEED_WORKERS"
	EnvQueueSize     = "FRAGFEED_QUEUE_SIZE"
	EnvSamplePeriod  = "FRAGFEED_SAMPLE_PERIOD_S"
	EnvCooldown      = "FRAGFEED_COOLDOWN_S"
	EnvClipDuration  = "FRAGFEED_CLIP_DURATION_S"
	EnvSegmentLength = "FRAGFEED_SEGMENT_LENGTH_S"
	EnvFFmpegTimeout = "FRAGFEED_FFMPEG_TIMEOUT_S"
	EnvMaxUploadMB   = "FRAGFEED_MAX_UPLOAD_MB"

	// Detection defaults.
	DefaultSamplePeriodS = 0.5
	DefaultCooldownS     = 5.0
	DefaultClipDurationS = 10.0
	DefaultSegmentLenS   = 4

	DefaultWorkers        = 2
	DefaultQueueSize      = 32
	DefaultFFmpegTimeoutS = 300
	DefaultMaxUploadMB    = 2048
	DefaultOCRLanguage    = "eng"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	UploadDir() string
	WorkDir() string
	OutputDir() string
	FFmpegPath() string
	FFprobePath() string
	OCRLanguage() string
	AuthToken() string
	Workers() int
	QueueSize() int
	SamplePeriod() float64
	Cooldown() float64
	ClipDuration() float64
	SegmentLength() int
	FFmpegTimeout() time.Duration
	MaxUploadBytes() int64
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port          int
	logLevel      string
	dataDir       string
	ffmpegPath    string
	ffprobePath   string
	ocrLanguage   string
	authToken     string
	workers       int
	queueSize     int
	samplePeriod  float64
	cooldown      float64
	clipDuration  float64
	segmentLength int
	ffmpegTimeout time.Duration
	maxUploadMB   int64
}

// New creates a new EnvConfig with defaults and environment variable overrides.
// A .env file is loaded first when one exists; real environment variables win.
func New() (*EnvConfig, error) {
	_ = godotenv.Load()

	cfg := &EnvConfig{
		port:          DefaultPort,
		logLevel:      DefaultLogLevel,
		dataDir:       defaultDataDir(),
		ffmpegPath:    "ffmpeg",
		ffprobePath:   "ffprobe",
		ocrLanguage:   DefaultOCRLanguage,
		workers:       DefaultWorkers,
		queueSize:     DefaultQueueSize,
		samplePeriod:  DefaultSamplePeriodS,
		cooldown:      DefaultCooldownS,
		clipDuration:  DefaultClipDurationS,
		segmentLength: DefaultSegmentLenS,
		ffmpegTimeout: DefaultFFmpegTimeoutS * time.Second,
		maxUploadMB:   DefaultMaxUploadMB,
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}
	if fp := os.Getenv(EnvFFmpegPath); fp != "" {
		cfg.ffmpegPath = fp
	}
	if fp := os.Getenv(EnvFFprobePath); fp != "" {
		cfg.ffprobePath = fp
	}
	if lang := os.Getenv(EnvOCRLanguage); lang != "" {
		cfg.ocrLanguage = lang
	}
	cfg.authToken = os.Getenv(EnvAuthToken)

	var err error
	if cfg.workers, err = envInt(EnvWorkers, cfg.workers, 1); err != nil {
		return nil, err
	}
	if cfg.queueSize, err = envInt(EnvQueueSize, cfg.queueSize, 1); err != nil {
		return nil, err
	}
	if cfg.segmentLength, err = envInt(EnvSegmentLength, cfg.segmentLength, 1); err != nil {
		return nil, err
	}
	if cfg.samplePeriod, err = envFloat(EnvSamplePeriod, cfg.samplePeriod); err != nil {
		return nil, err
	}
	if cfg.cooldown, err = envFloat(EnvCooldown, cfg.cooldown); err != nil {
		return nil, err
	}
	if cfg.clipDuration, err = envFloat(EnvClipDuration, cfg.clipDuration); err != nil {
		return nil, err
	}

	if t := os.Getenv(EnvFFmpegTimeout); t != "" {
		secs, err := strconv.Atoi(t)
		if err != nil || secs < 1 {
			return nil, fmt.Errorf("invalid %s: %q", EnvFFmpegTimeout, t)
		}
		cfg.ffmpegTimeout = time.Duration(secs) * time.Second
	}
	if m := os.Getenv(EnvMaxUploadMB); m != "" {
		mb, err := strconv.ParseInt(m, 10, 64)
		if err != nil || mb < 1 {
			return nil, fmt.Errorf("invalid %s: %q", EnvMaxUploadMB, m)
		}
		cfg.maxUploadMB = mb
	}

	if cfg.samplePeriod <= 0 {
		return nil, fmt.Errorf("invalid %s: must be > 0", EnvSamplePeriod)
	}
	if cfg.cooldown <= 0 {
		return nil, fmt.Errorf("invalid %s: must be > 0", EnvCooldown)
	}
	if cfg.clipDuration <= 0 {
		return nil, fmt.Errorf("invalid %s: must be > 0", EnvClipDuration)
	}

	return cfg, nil
}

func envInt(key string, def, min int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return f, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// UploadDir returns the directory holding uploaded source videos
func (c *EnvConfig) UploadDir() string {
	return filepath.Join(c.dataDir, "uploads")
}

// WorkDir returns the root for task-scoped temporary directories
func (c *EnvConfig) WorkDir() string {
	return filepath.Join(c.dataDir, "work")
}

// OutputDir returns the root for durable task output (manifests and segments)
func (c *EnvConfig) OutputDir() string {
	return filepath.Join(c.dataDir, "highlights")
}

// FFmpegPath returns the ffmpeg binary path
func (c *EnvConfig) FFmpegPath() string {
	return c.ffmpegPath
}

// FFprobePath returns the ffprobe binary path
func (c *EnvConfig) FFprobePath() string {
	return c.ffprobePath
}

// OCRLanguage returns the Tesseract language code
func (c *EnvConfig) OCRLanguage() string {
	return c.ocrLanguage
}

// AuthToken returns the bearer token required on API requests.
// Empty means authentication is disabled.
func (c *EnvConfig) AuthToken() string { return c.authToken }

// Workers returns the number of pipeline workers
func (c *EnvConfig) Workers() int {
	return c.workers
}

// QueueSize returns the submission queue capacity
func (c *EnvConfig) QueueSize() int {
	return c.queueSize
}

// SamplePeriod returns the killfeed sampling period in seconds
func (c *EnvConfig) SamplePeriod() float64 {
	return c.samplePeriod
}

// Cooldown returns the event debounce window in seconds
func (c *EnvConfig) Cooldown() float64 {
	return c.cooldown
}

// ClipDuration returns the per-event clip length in seconds
func (c *EnvConfig) ClipDuration() float64 {
	return c.clipDuration
}

// SegmentLength returns the streaming segment length in seconds
func (c *EnvConfig) SegmentLength() int {
	return c.segmentLength
}

// FFmpegTimeout returns the per-invocation subprocess timeout
func (c *EnvConfig) FFmpegTimeout() time.Duration {
	return c.ffmpegTimeout
}

// MaxUploadBytes returns the upload size cap in bytes
func (c *EnvConfig) MaxUploadBytes() int64 {
	return c.maxUploadMB * 1024 * 1024
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
