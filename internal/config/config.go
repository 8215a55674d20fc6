// Package config loads application configuration from file and environment.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data  DataConfig  `yaml:"data" mapstructure:"data"`
	Store StoreConfig `yaml:"store" mapstructure:"store"`
	Load  LoadConfig  `yaml:"load" mapstructure:"load"`
	Log   LogConfig   `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the raw exports and the directories the pipeline writes.
type DataConfig struct {
	RawDir       string `yaml:"raw_dir" mapstructure:"raw_dir"`
	InterimDir   string `yaml:"interim_dir" mapstructure:"interim_dir"`
	ProcessedDir string `yaml:"processed_dir" mapstructure:"processed_dir"`
	Delimiter    string `yaml:"delimiter" mapstructure:"delimiter"` // empty = sniff per file
	Charset      string `yaml:"charset" mapstructure:"charset"`     // empty = utf-8
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // postgres or sqlite
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// LoadConfig tunes the batch loader.
type LoadConfig struct {
	BatchSize     int     `yaml:"batch_size" mapstructure:"batch_size"`
	BatchesPerSec float64 `yaml:"batches_per_sec" mapstructure:"batches_per_sec"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CORDIS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.raw_dir", "data/raw")
	v.SetDefault("data.interim_dir", "data/interim")
	v.SetDefault("data.processed_dir", "data/processed")
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.sqlite_path", "cordis.db")
	v.SetDefault("load.batch_size", 200)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// DelimiterRune returns the configured delimiter as a rune, or 0 when the
// sniffer should decide per file.
func (d DataConfig) DelimiterRune() rune {
	if d.Delimiter == "" {
		return 0
	}
	if d.Delimiter == "\\t" || d.Delimiter == "tab" {
		return '\t'
	}
	return []rune(d.Delimiter)[0]
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
