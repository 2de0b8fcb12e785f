package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"pledge-insights/models"
)

// EnvPrefix namespaces every environment variable, e.g. PLEDGE_LOG_LEVEL.
const EnvPrefix = "PLEDGE"

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     string `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string `envconfig:"POSTGRES_USER" default:"pledge"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD" default:"pledge123"`
	PostgresDB       string `envconfig:"POSTGRES_DB" default:"pledge_db"`
	PostgresSSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
	// DatabaseURL, when set, takes precedence over the individual fields.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	AppEnv   string `envconfig:"APP_ENV" default:"development"`

	MaxConcurrency int           `envconfig:"MAX_CONCURRENCY" default:"3"`
	RateLimitMs    int           `envconfig:"RATE_LIMIT_MS" default:"0"`
	MaxRetries     int           `envconfig:"MAX_RETRIES" default:"5"`
	RetryDelay     time.Duration `envconfig:"RETRY_DELAY" default:"2s"`

	ExportDir        string `envconfig:"EXPORT_DIR" default:"./output"`
	GazetteerPath    string `envconfig:"GAZETTEER_PATH"`
	ReferenceZip     string `envconfig:"REFERENCE_ZIP"`
	DistanceBinsPath string `envconfig:"DISTANCE_BINS_PATH"`

	DistanceBins []models.DistanceBin `ignored:"true"`
	// EnvFileLoaded reports whether a .env file was found.
	EnvFileLoaded bool `ignored:"true"`
}

// Load reads the .env file (if any), then the PLEDGE_* environment, then the
// distance-bin file when one is configured.
func Load() (*Config, error) {
	loaded := godotenv.Load() == nil

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("config: env: %w", err)
	}
	cfg.EnvFileLoaded = loaded

	cfg.DistanceBins = DefaultDistanceBins()
	if cfg.DistanceBinsPath != "" {
		bins, err := LoadDistanceBins(cfg.DistanceBinsPath)
		if err != nil {
			return nil, err
		}
		cfg.DistanceBins = bins
	}

	if cfg.MaxConcurrency < 1 {
		return nil, fmt.Errorf("config: MAX_CONCURRENCY must be at least 1, got %d", cfg.MaxConcurrency)
	}
	return &cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// IsProduction switches logging to JSON lines.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// DefaultDistanceBins are the mileage ranges used when no file is configured.
func DefaultDistanceBins() []models.DistanceBin {
	return []models.DistanceBin{
		{Label: "0-5 mi", Min: 0, Max: 5},
		{Label: "5-10 mi", Min: 5, Max: 10},
		{Label: "10-25 mi", Min: 10, Max: 25},
		{Label: "25-50 mi", Min: 25, Max: 50},
		{Label: "50+ mi", Min: 50, Max: math.Inf(1)},
	}
}

type distanceBinsFile struct {
	Bins []models.DistanceBin `yaml:"bins"`
}

// LoadDistanceBins reads bins from a YAML file:
//
//	bins:
//	  - label: "0-10 mi"
//	    min: 0
//	    max: 10
//	  - label: "10+ mi"
//	    min: 10
//
// A bin without a max (or with max <= min) is open-ended.
func LoadDistanceBins(path string) ([]models.DistanceBin, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read distance bins: %w", err)
	}
	return ParseDistanceBins(data)
}

func ParseDistanceBins(data []byte) ([]models.DistanceBin, error) {
	var file distanceBinsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("config: parse distance bins: %w", err)
	}
	if len(file.Bins) == 0 {
		return nil, errors.New("config: distance bins file defines no bins")
	}

	for i := range file.Bins {
		b := &file.Bins[i]
		if b.Label == "" {
			return nil, fmt.Errorf("config: distance bin %d has no label", i+1)
		}
		if b.Min < 0 {
			return nil, fmt.Errorf("config: distance bin %q has negative min", b.Label)
		}
		if b.Max <= b.Min {
			b.Max = math.Inf(1)
		}
	}
	return file.Bins, nil
}
