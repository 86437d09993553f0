// Package config provides configuration management for the framecut agent.
// Configuration is loaded from environment variables with sensible defaults,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort             = 8797
	DefaultLogLevel         = "info"
	DefaultDataDir          = ".framecut"
	DefaultStretchMargin    = 10
	DefaultSnapRange        = 10
	DefaultRowHeight        = 30
	DefaultTimelineRange    = 4
	DefaultKeyframeStep     = 4
	DefaultKeyframeTension  = 1
	DefaultPlaybackTickMs   = 20
	DefaultAutosaveSchedule = "@every 30s"
	DefaultPresignTTLSecs   = 900

	DBFilename = "framecut.db"

	StorageNone = "none"
	StorageS3   = "s3"
	StorageCDN  = "cdn"
)

// Environment variable names
const (
	EnvPort             = "FRAMECUT_PORT"
	EnvLogLevel         = "FRAMECUT_LOG_LEVEL"
	EnvDataDir          = "FRAMECUT_DATA_DIR"
	EnvHeadless         = "FRAMECUT_HEADLESS"
	EnvStretchMargin    = "FRAMECUT_STRETCH_MARGIN_PX"
	EnvSnapRange        = "FRAMECUT_SNAP_RANGE_PX"
	EnvRowHeight        = "FRAMECUT_ROW_HEIGHT_PX"
	EnvTimelineRange    = "FRAMECUT_TIMELINE_RANGE"
	EnvKeyframeStep     = "FRAMECUT_KEYFRAME_STEP"
	EnvKeyframeTension  = "FRAMECUT_KEYFRAME_TENSION"
	EnvPlaybackTickMs   = "FRAMECUT_PLAYBACK_TICK_MS"
	EnvAutosaveSchedule = "FRAMECUT_AUTOSAVE_SCHEDULE"
	EnvStorageBackend   = "FRAMECUT_STORAGE_BACKEND"
	EnvS3Bucket         = "FRAMECUT_S3_BUCKET"
	EnvS3Region         = "FRAMECUT_S3_REGION"
	EnvS3Prefix         = "FRAMECUT_S3_PREFIX"
	EnvCDNBaseURL       = "FRAMECUT_CDN_BASE_URL"
	EnvPresignTTL       = "FRAMECUT_PRESIGN_TTL_S"
)

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port     int
	logLevel string
	dataDir  string
	headless bool

	stretchMargin   float64
	snapRange       float64
	rowHeight       float64
	timelineRange   float64
	keyframeStep    float64
	keyframeTension float64
	playbackTick    time.Duration

	autosaveSchedule string

	storageBackend string
	s3Bucket       string
	s3Region       string
	s3Prefix       string
	cdnBaseURL     string
	presignTTL     time.Duration
}

// LoadDotEnv loads variables from the given files, or .env in the working
// directory when none are named. Variables already set are not overridden and
// missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:             DefaultPort,
		logLevel:         DefaultLogLevel,
		dataDir:          defaultDataDir(),
		stretchMargin:    DefaultStretchMargin,
		snapRange:        DefaultSnapRange,
		rowHeight:        DefaultRowHeight,
		timelineRange:    DefaultTimelineRange,
		keyframeStep:     DefaultKeyframeStep,
		keyframeTension:  DefaultKeyframeTension,
		playbackTick:     DefaultPlaybackTickMs * time.Millisecond,
		autosaveSchedule: DefaultAutosaveSchedule,
		storageBackend:   StorageNone,
		presignTTL:       DefaultPresignTTLSecs * time.Second,
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
	if h := os.Getenv(EnvHeadless); h != "" {
		headless, err := strconv.ParseBool(h)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvHeadless, err)
		}
		cfg.headless = headless
	}

	positive := []struct {
		env string
		dst *float64
	}{
		{EnvStretchMargin, &cfg.stretchMargin},
		{EnvSnapRange, &cfg.snapRange},
		{EnvRowHeight, &cfg.rowHeight},
		{EnvTimelineRange, &cfg.timelineRange},
		{EnvKeyframeStep, &cfg.keyframeStep},
		{EnvKeyframeTension, &cfg.keyframeTension},
	}
	for _, p := range positive {
		if err := parsePositive(p.env, p.dst); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv(EnvPlaybackTickMs); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			return nil, fmt.Errorf("invalid %s: must be a positive integer", EnvPlaybackTickMs)
		}
		cfg.playbackTick = time.Duration(ms) * time.Millisecond
	}

	if s := os.Getenv(EnvAutosaveSchedule); s != "" {
		cfg.autosaveSchedule = s
	}

	if b := os.Getenv(EnvStorageBackend); b != "" {
		cfg.storageBackend = strings.ToLower(b)
	}
	switch cfg.storageBackend {
	case StorageNone, StorageS3, StorageCDN:
	default:
		return nil, fmt.Errorf("invalid %s: %q (want none, s3 or cdn)", EnvStorageBackend, cfg.storageBackend)
	}
	cfg.s3Bucket = os.Getenv(EnvS3Bucket)
	cfg.s3Region = os.Getenv(EnvS3Region)
	cfg.s3Prefix = os.Getenv(EnvS3Prefix)
	cfg.cdnBaseURL = os.Getenv(EnvCDNBaseURL)

	if cfg.storageBackend == StorageS3 && cfg.s3Bucket == "" {
		return nil, fmt.Errorf("%s is required when %s=s3", EnvS3Bucket, EnvStorageBackend)
	}
	if cfg.storageBackend == StorageCDN && cfg.cdnBaseURL == "" {
		return nil, fmt.Errorf("%s is required when %s=cdn", EnvCDNBaseURL, EnvStorageBackend)
	}

	if v := os.Getenv(EnvPresignTTL); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("invalid %s: must be a positive integer", EnvPresignTTL)
		}
		cfg.presignTTL = time.Duration(secs) * time.Second
	}

	return cfg, nil
}

func parsePositive(env string, dst *float64) error {
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", env, err)
	}
	if f <= 0 {
		return fmt.Errorf("invalid %s: must be greater than zero", env)
	}
	*dst = f
	return nil
}

func (c *EnvConfig) Port() int { return c.port }

func (c *EnvConfig) LogLevel() string { return c.logLevel }

func (c *EnvConfig) DataDir() string { return c.dataDir }

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// ThumbnailDir is where generated preview stills are cached.
func (c *EnvConfig) ThumbnailDir() string {
	return filepath.Join(c.dataDir, "thumbnails")
}

func (c *EnvConfig) Headless() bool { return c.headless }

func (c *EnvConfig) StretchMargin() float64 { return c.stretchMargin }

func (c *EnvConfig) SnapRange() float64 { return c.snapRange }

func (c *EnvConfig) RowHeight() float64 { return c.rowHeight }

// TimelineRange is the zoom slider value new projects start with.
func (c *EnvConfig) TimelineRange() float64 { return c.timelineRange }

func (c *EnvConfig) KeyframeStep() float64 { return c.keyframeStep }

func (c *EnvConfig) KeyframeTension() float64 { return c.keyframeTension }

func (c *EnvConfig) PlaybackTick() time.Duration { return c.playbackTick }

func (c *EnvConfig) AutosaveSchedule() string { return c.autosaveSchedule }

func (c *EnvConfig) StorageBackend() string { return c.storageBackend }

func (c *EnvConfig) S3Bucket() string { return c.s3Bucket }

func (c *EnvConfig) S3Region() string { return c.s3Region }

func (c *EnvConfig) S3Prefix() string { return c.s3Prefix }

func (c *EnvConfig) CDNBaseURL() string { return c.cdnBaseURL }

func (c *EnvConfig) PresignTTL() time.Duration { return c.presignTTL }

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
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
