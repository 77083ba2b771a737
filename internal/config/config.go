// Package config loads application configuration from file and
// environment and installs the global logger.
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
	Boundary BoundaryConfig `yaml:"boundary" mapstructure:"boundary"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// BoundaryConfig locates the province boundary source and selects the
// numbering registry.
type BoundaryConfig struct {
	// Path to longhurst.xml (GML) or longhurst_v4_2010.shp.
	Path string `yaml:"path" mapstructure:"path"`
	// Format is "auto", "gml", or "shapefile". Auto picks by extension.
	Format string `yaml:"format" mapstructure:"format"`
	// Registry is "mit", "marineregions", or "longhurst".
	Registry string `yaml:"registry" mapstructure:"registry"`
}

// StoreConfig configures the run/assignment persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "sqlite" or "postgres"
	Path        string `yaml:"path" mapstructure:"path"`     // sqlite database file
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// BatchConfig configures batch and grid assignment.
type BatchConfig struct {
	Workers   int    `yaml:"workers" mapstructure:"workers"`
	LatColumn string `yaml:"lat_column" mapstructure:"lat_column"`
	LonColumn string `yaml:"lon_column" mapstructure:"lon_column"`
}

// FetchConfig configures boundary and ancillary data downloads.
type FetchConfig struct {
	TempDir      string  `yaml:"temp_dir" mapstructure:"temp_dir"`
	UserAgent    string  `yaml:"user_agent" mapstructure:"user_agent"`
	GMLURL       string  `yaml:"gml_url" mapstructure:"gml_url"`
	ShapefileURL string  `yaml:"shapefile_url" mapstructure:"shapefile_url"`
	WOAURL       string  `yaml:"woa_url" mapstructure:"woa_url"`
	RatePerSec   float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// ServerConfig configures the classification API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("LONGHURST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("boundary.path", "longhurst.xml")
	v.SetDefault("boundary.format", "auto")
	v.SetDefault("boundary.registry", "longhurst")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "longhurst.db")
	v.SetDefault("batch.workers", 8)
	v.SetDefault("batch.lat_column", "Latitude")
	v.SetDefault("batch.lon_column", "Longitude")
	v.SetDefault("fetch.temp_dir", "/tmp/longhurst")
	v.SetDefault("fetch.user_agent", "longhurst-cli/1.0 (province assignment toolkit)")
	v.SetDefault("fetch.gml_url", "https://raw.githubusercontent.com/thechisholmlab/Longhurst-Province-Finder/master/longhurst.xml")
	v.SetDefault("fetch.shapefile_url", "https://www.marineregions.org/download_file.php?name=longhurst_v4_2010.zip")
	v.SetDefault("fetch.woa_url", "ftp://ftp.nodc.noaa.gov/pub/woa/WOA13/DATAv2/temperature/csv/decav/1.00/woa13_decav_t00an01v2.csv.gz")
	v.SetDefault("fetch.rate_per_sec", 2.0)
	v.SetDefault("server.port", 8080)
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

// Validate checks the configuration fields a command depends on. Mode is
// one of "classify", "batch", "serve", or "store".
func (c *Config) Validate(mode string) error {
	var problems []string

	checkBoundary := func() {
		if c.Boundary.Path == "" {
			problems = append(problems, "boundary.path is required")
		}
		switch c.Boundary.Format {
		case "auto", "gml", "shapefile":
		default:
			problems = append(problems, "boundary.format must be auto, gml, or shapefile")
		}
	}
	checkStore := func() {
		switch c.Store.Driver {
		case "sqlite":
			if c.Store.Path == "" {
				problems = append(problems, "store.path is required for the sqlite driver")
			}
		case "postgres":
			if c.Store.DatabaseURL == "" {
				problems = append(problems, "store.database_url is required for the postgres driver")
			}
		default:
			problems = append(problems, "store.driver must be sqlite or postgres")
		}
	}

	switch mode {
	case "classify":
		checkBoundary()
	case "batch":
		checkBoundary()
		if c.Batch.Workers < 1 || c.Batch.Workers > 128 {
			problems = append(problems, "batch.workers must be between 1 and 128")
		}
	case "serve":
		checkBoundary()
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	case "store":
		checkStore()
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
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
