package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/fitly/fitly/internal/common"
	"github.com/fitly/fitly/internal/flagx"
)

// StorageDriver selects how uploaded images reach the object store.
type StorageDriver string

const (
	// DriverREST uses the service's own storage API. The default; matches
	// hosted deployments.
	DriverREST StorageDriver = "rest"
	// DriverS3 talks to an S3-compatible endpoint (MinIO) directly.
	DriverS3 StorageDriver = "s3"
)

// Config holds runtime settings for the Fitly client.
type Config struct {
	// BackendURL is the service endpoint. Required.
	BackendURL string `env:"FITLY_BACKEND_URL"`
	// AnonKey is the anonymous access key. Required.
	AnonKey string `env:"FITLY_ANON_KEY"`

	// Bucket receives uploaded clothing images.
	Bucket string `env:"FITLY_BUCKET" envDefault:"clothing-images"`

	StorageDriver StorageDriver `env:"FITLY_STORAGE_DRIVER" envDefault:"rest"`
	S3Endpoint    string        `env:"FITLY_S3_ENDPOINT"`
	S3Region      string        `env:"FITLY_S3_REGION" envDefault:"eu-north-1"`
	S3AccessKey   string        `env:"FITLY_S3_ACCESS_KEY"`
	S3SecretKey   string        `env:"FITLY_S3_SECRET_KEY"`

	// SessionFile is where the backend client caches its session.
	// Empty selects a per-user default under the OS config dir.
	SessionFile string `env:"FITLY_SESSION_FILE"`

	// MediaDir is the root the image picker browses. Empty means the
	// user's home directory.
	MediaDir string `env:"FITLY_MEDIA_DIR"`

	LogLevel string `env:"FITLY_LOG_LEVEL" envDefault:"info"`
}

// Load builds the Config by layering, in increasing precedence: struct
// defaults, an optional .env file, environment variables, and command-line
// flags. A missing endpoint or anonymous key is a fatal configuration
// error; main exits before any other component is constructed.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, common.NewError(common.KindConfig, "environment parsing failed", err)
	}
	parseFlags(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.SessionFile == "" {
		cfg.SessionFile = defaultSessionFile()
	}
	return cfg, nil
}

// loadEnvFile overlays process env with an optional .env file. The path
// comes from -e/-env-file; otherwise ./.env is tried. Existing environment
// variables always win over file values.
func loadEnvFile() {
	path := flagx.EnvFileFlags()
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

func (c *Config) validate() error {
	if c.BackendURL == "" {
		return common.NewError(common.KindConfig, "FITLY_BACKEND_URL is not set", nil)
	}
	if c.AnonKey == "" {
		return common.NewError(common.KindConfig, "FITLY_ANON_KEY is not set", nil)
	}
	switch c.StorageDriver {
	case DriverREST:
	case DriverS3:
		if c.S3Endpoint == "" || c.S3AccessKey == "" || c.S3SecretKey == "" {
			return common.NewError(common.KindConfig,
				fmt.Sprintf("storage driver %q needs FITLY_S3_ENDPOINT, FITLY_S3_ACCESS_KEY and FITLY_S3_SECRET_KEY", c.StorageDriver), nil)
		}
	default:
		return common.NewError(common.KindConfig,
			fmt.Sprintf("unknown storage driver %q", c.StorageDriver), nil)
	}
	return nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".fitly-session.json"
	}
	return filepath.Join(dir, "fitly", "session.json")
}
