package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port int `env:"PORT" envDefault:"8080"`

	ModelPath       string `env:"MODEL_PATH"        envDefault:"models/graph_opt.pb"`
	ModelConfigPath string `env:"MODEL_CONFIG_PATH" envDefault:""`

	UploadDir    string `env:"UPLOAD_DIR"    envDefault:"uploads"`
	ProcessedDir string `env:"PROCESSED_DIR" envDefault:"processed"`
	StaticDir    string `env:"STATIC_DIR"    envDefault:"static"`
	DBPath       string `env:"DB_PATH"       envDefault:"data/jobs.db"`

	MaxUploadSizeMB int64   `env:"MAX_UPLOAD_SIZE_MB" envDefault:"200"`
	MaxDimension    int     `env:"MAX_DIMENSION"      envDefault:"1280"`
	MinConfidence   float64 `env:"MIN_CONFIDENCE"     envDefault:"0.5"`

	ProcessingWorkers int `env:"PROCESSING_WORKERS" envDefault:"2"`
	ProgressInterval  int `env:"PROGRESS_INTERVAL"  envDefault:"30"` // broadcast progress every N frames

	MaxProcessedSizeGB int64 `env:"MAX_PROCESSED_SIZE_GB" envDefault:"4"`
	SweepIntervalSec   int   `env:"SWEEP_INTERVAL_SEC"    envDefault:"60"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads .env if present and parses the configuration from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
