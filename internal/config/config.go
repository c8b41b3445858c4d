package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the cortex engine.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Advisories AdvisoriesConfig `yaml:"advisories"`
	Store      StoreConfig      `yaml:"store"`
	Loader     LoaderConfig     `yaml:"loader"`
}

// ServerConfig controls the serve-mode listeners.
type ServerConfig struct {
	MetricsAddress  string        `yaml:"metricsAddress"`
	HealthAddress   string        `yaml:"healthAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// AnalysisConfig carries task defaults applied when a request omits them.
type AnalysisConfig struct {
	LookbackDays      int     `yaml:"lookbackDays"`
	TargetSensitivity float64 `yaml:"targetSensitivity"`
}

// AdvisoriesConfig controls advisory-pack loading for the recommender.
type AdvisoriesConfig struct {
	Path string `yaml:"path"`
}

// StoreConfig locates the on-disk model store.
type StoreConfig struct {
	ModelDir string `yaml:"modelDir"`
}

// LoaderConfig controls audit-record loading.
type LoaderConfig struct {
	HTTPTimeout time.Duration `yaml:"httpTimeout"`
	SQLiteTable string        `yaml:"sqliteTable"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CORTEX_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			MetricsAddress:  ":2112",
			HealthAddress:   ":50051",
			GracefulTimeout: 10 * time.Second,
		},
		Logging:    LoggingConfig{Level: "info", JSON: false},
		Analysis:   AnalysisConfig{LookbackDays: 30, TargetSensitivity: 0.95},
		Advisories: AdvisoriesConfig{Path: "configs/advisories/default.yaml"},
		Store:      StoreConfig{ModelDir: "./models"},
		Loader: LoaderConfig{
			HTTPTimeout: 5 * time.Second,
			SQLiteTable: "audit_log",
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CORTEX_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("CORTEX_HEALTH_ADDRESS"); v != "" {
		cfg.Server.HealthAddress = v
	}
	if v := os.Getenv("CORTEX_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CORTEX_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("CORTEX_LOOKBACK_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			cfg.Analysis.LookbackDays = days
		}
	}
	if v := os.Getenv("CORTEX_TARGET_SENSITIVITY"); v != "" {
		if target, err := strconv.ParseFloat(v, 64); err == nil && target > 0 && target <= 1 {
			cfg.Analysis.TargetSensitivity = target
		}
	}
	if v := os.Getenv("CORTEX_ADVISORIES_PATH"); v != "" {
		cfg.Advisories.Path = v
	}
	if v := os.Getenv("CORTEX_MODEL_DIR"); v != "" {
		cfg.Store.ModelDir = v
	}
	if v := os.Getenv("CORTEX_LOADER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Loader.HTTPTimeout = d
		}
	}
	if v := os.Getenv("CORTEX_SQLITE_TABLE"); v != "" {
		cfg.Loader.SQLiteTable = v
	}
}
