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
	Sources    SourcesConfig    `yaml:"sources" mapstructure:"sources"`
	Columns    ColumnsConfig    `yaml:"columns" mapstructure:"columns"`
	Categories CategoriesConfig `yaml:"categories" mapstructure:"categories"`
	Join       JoinConfig       `yaml:"join" mapstructure:"join"`
	Geo        GeoConfig        `yaml:"geo" mapstructure:"geo"`
	Summary    SummaryConfig    `yaml:"summary" mapstructure:"summary"`
	Fetch      FetchConfig      `yaml:"fetch" mapstructure:"fetch"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// SourcesConfig locates the attribute table and the boundary file.
type SourcesConfig struct {
	Attributes string `yaml:"attributes" mapstructure:"attributes"`
	Geometries string `yaml:"geometries" mapstructure:"geometries"`
	Sheet      string `yaml:"sheet" mapstructure:"sheet"`
	SkipRows   int    `yaml:"skip_rows" mapstructure:"skip_rows"`
	Delimiter  string `yaml:"delimiter" mapstructure:"delimiter"`
	TempDir    string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// ColumnsConfig maps source column names onto region fields.
type ColumnsConfig struct {
	ID         string `yaml:"id" mapstructure:"id"`
	Name       string `yaml:"name" mapstructure:"name"`
	Value      string `yaml:"value" mapstructure:"value"`
	Category   string `yaml:"category" mapstructure:"category"`
	Quality    string `yaml:"quality" mapstructure:"quality"`
	GeometryID string `yaml:"geometry_id" mapstructure:"geometry_id"`
	KeyPad     int    `yaml:"key_pad" mapstructure:"key_pad"`
}

// CategoriesConfig selects the category policy and display mapping.
type CategoriesConfig struct {
	Derive  bool              `yaml:"derive" mapstructure:"derive"`
	Lenient bool              `yaml:"lenient" mapstructure:"lenient"`
	Labels  map[string]string `yaml:"labels" mapstructure:"labels"`
	Colors  map[string]string `yaml:"colors" mapstructure:"colors"`
}

// JoinConfig configures duplicate key handling.
type JoinConfig struct {
	Duplicates string `yaml:"duplicates" mapstructure:"duplicates"`
}

// GeoConfig configures boundary normalization.
type GeoConfig struct {
	SimplifyTolerance float64 `yaml:"simplify_tolerance" mapstructure:"simplify_tolerance"`
}

// SummaryConfig configures summary statistics.
type SummaryConfig struct {
	TopK    int `yaml:"top_k" mapstructure:"top_k"`
	BottomK int `yaml:"bottom_k" mapstructure:"bottom_k"`
}

// FetchConfig configures remote source access.
type FetchConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries" mapstructure:"max_retries"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml in the working directory (or
// file, when non-empty) and CHOROPLETH_* environment variables.
func Load(file string) (*Config, error) {
	v := viper.New()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("CHOROPLETH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("sources.attributes", "")
	v.SetDefault("sources.geometries", "")
	v.SetDefault("sources.delimiter", ",")
	v.SetDefault("sources.temp_dir", "/tmp/choropleth")
	v.SetDefault("columns.id", "region_id")
	v.SetDefault("columns.name", "region_name")
	v.SetDefault("columns.value", "metric_value")
	v.SetDefault("columns.category", "metric_category")
	v.SetDefault("columns.quality", "quality_category")
	v.SetDefault("columns.geometry_id", "region_id")
	v.SetDefault("columns.key_pad", 0)
	v.SetDefault("categories.derive", true)
	v.SetDefault("categories.lenient", false)
	v.SetDefault("categories.labels", map[string]string{
		"low":       "Rendah",
		"medium":    "Sedang",
		"high":      "Tinggi",
		"very high": "Sangat Tinggi",
	})
	v.SetDefault("categories.colors", map[string]string{
		"low":       "green",
		"medium":    "yellow",
		"high":      "orange",
		"very high": "darkred",
	})
	v.SetDefault("join.duplicates", "last")
	v.SetDefault("geo.simplify_tolerance", 0.01)
	v.SetDefault("summary.top_k", 3)
	v.SetDefault("summary.bottom_k", 1)
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.user_agent", "choropleth-cli/1.0")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that the pipeline cannot interpret.
func (c *Config) Validate() error {
	switch c.Join.Duplicates {
	case "last", "error":
	default:
		return eris.Errorf("config: join.duplicates must be \"last\" or \"error\", got %q", c.Join.Duplicates)
	}
	if len([]rune(c.Sources.Delimiter)) != 1 {
		return eris.Errorf("config: sources.delimiter must be a single character, got %q", c.Sources.Delimiter)
	}
	if c.Geo.SimplifyTolerance < 0 {
		return eris.New("config: geo.simplify_tolerance must not be negative")
	}
	if c.Columns.ID == "" || c.Columns.Value == "" || c.Columns.GeometryID == "" {
		return eris.New("config: columns.id, columns.value and columns.geometry_id are required")
	}
	if !c.Categories.Derive && c.Columns.Category == "" {
		return eris.New("config: columns.category is required when categories.derive is false")
	}
	if c.Columns.KeyPad < 0 {
		return eris.New("config: columns.key_pad must not be negative")
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
