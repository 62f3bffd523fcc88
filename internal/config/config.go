package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Season    SeasonConfig    `yaml:"season" envconfig:"SEASON"`
	Analysis  AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains the input and output locations. Relative entries are
// resolved against BaseDir (the working directory when empty).
type PathsConfig struct {
	BaseDir     string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir     string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	OutputDir   string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	LogsDir     string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
	BangsFile   string `yaml:"bangs_file" envconfig:"BANGS_FILE" validate:"required"`
	BattingFile string `yaml:"batting_file" envconfig:"BATTING_FILE" validate:"required"`
	GamesFile   string `yaml:"games_file" envconfig:"GAMES_FILE" validate:"required"`
	PlayersDir  string `yaml:"players_dir" envconfig:"PLAYERS_DIR" validate:"required"`
}

// SeasonConfig describes the season under analysis
type SeasonConfig struct {
	Year int    `yaml:"year" envconfig:"YEAR" validate:"min=1871,max=2100"`
	Team string `yaml:"team" envconfig:"TEAM" validate:"required"`
	// NameAliases maps a raw name as it appears in one source to the name used
	// by the player game logs.
	NameAliases map[string]string `yaml:"name_aliases" envconfig:"NAME_ALIASES"`
}

// AnalysisConfig controls the statistical tests
type AnalysisConfig struct {
	TTestMetric         string  `yaml:"ttest_metric" envconfig:"TTEST_METRIC" validate:"oneof=ops avg obp slg"`
	EqualVariance       bool    `yaml:"equal_variance" envconfig:"EQUAL_VARIANCE"`
	Alpha               float64 `yaml:"alpha" envconfig:"ALPHA" validate:"gt=0,lt=1"`
	MinPlateAppearances int     `yaml:"min_plate_appearances" envconfig:"MIN_PLATE_APPEARANCES" validate:"min=0"`
}

// ExportConfig selects the output formats
type ExportConfig struct {
	CSV        bool          `yaml:"csv" envconfig:"CSV"`
	BOM        bool          `yaml:"bom" envconfig:"BOM"`
	Workbook   bool          `yaml:"workbook" envconfig:"WORKBOOK"`
	JSON       bool          `yaml:"json" envconfig:"JSON"`
	PDF        bool          `yaml:"pdf" envconfig:"PDF"`
	PDFTimeout time.Duration `yaml:"pdf_timeout" envconfig:"PDF_TIMEOUT" validate:"gt=0"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	AllowedOrigins  []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" validate:"min=1"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	// WatchInterval is the quiet period after the last report.json event before clients are notified
	WatchInterval   time.Duration   `yaml:"watch_interval" envconfig:"WATCH_INTERVAL" validate:"gt=0"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	EnableTracing bool   `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	EnableMetrics bool   `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	Environment   string `yaml:"environment" envconfig:"ENVIRONMENT"`
}

// Load builds the configuration. Defaults are applied first, then the YAML
// file (when configFile is empty the usual locations are searched), then
// BANGS_* environment variables, including those from an optional .env file.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Only variables that are set override; no default tags are declared.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the struct tags of the whole configuration
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s: failed %q rule (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/bangreport.log",
		},
		Paths: PathsConfig{
			DataDir:     DefaultDataDir,
			OutputDir:   DefaultOutputDir,
			LogsDir:     DefaultLogsDir,
			BangsFile:   BangsFileName,
			BattingFile: BattingFileName,
			GamesFile:   GamesFileName,
			PlayersDir:  PlayersDirName,
		},
		Season: SeasonConfig{
			Year: DefaultSeasonYear,
			Team: DefaultTeam,
		},
		Analysis: AnalysisConfig{
			TTestMetric:         "ops",
			EqualVariance:       false,
			Alpha:               0.05,
			MinPlateAppearances: 1,
		},
		Export: ExportConfig{
			CSV:        true,
			BOM:        false,
			Workbook:   true,
			JSON:       true,
			PDF:        false,
			PDFTimeout: DefaultPDFTimeout,
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"http://localhost:8080"},
			WatchInterval:   500 * time.Millisecond,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Telemetry: TelemetryConfig{
			EnableTracing: false,
			TraceExporter: "none",
			EnableMetrics: true,
			Environment:   "development",
		},
	}
}
