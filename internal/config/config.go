package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment overrides, e.g. BIMMERLOG_MAX_PLOT_POINTS.
const EnvPrefix = "BIMMERLOG"

// DefaultFileName is looked up next to the executable when no config path is given.
const DefaultFileName = "bimmerlog.yaml"

// Config holds the analyzer settings.
type Config struct {
	Columns ColumnsConfig `yaml:"columns" envconfig:"COLUMNS"`
	Report  ReportConfig  `yaml:"report" envconfig:"REPORT"`
	Output  OutputConfig  `yaml:"output" envconfig:"OUTPUT"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	InfoURL string        `yaml:"info_url" envconfig:"INFO_URL" validate:"omitempty,url"`
}

// ColumnsConfig names the required columns of an exported log.
type ColumnsConfig struct {
	Time          string `yaml:"time" envconfig:"TIME" validate:"required"`
	Reference     string `yaml:"reference" envconfig:"REFERENCE" validate:"required,nefield=Time"`
	ReferenceUnit string `yaml:"reference_unit" envconfig:"REFERENCE_UNIT"`
}

// ReportConfig controls chart rendering.
type ReportConfig struct {
	MaxPlotPoints int `yaml:"max_plot_points" envconfig:"MAX_PLOT_POINTS" validate:"min=1"`
}

// OutputConfig controls the derived output file names.
type OutputConfig struct {
	ReportSuffix     string `yaml:"report_suffix" envconfig:"REPORT_SUFFIX" validate:"required"`
	SensorListSuffix string `yaml:"sensor_list_suffix" envconfig:"SENSOR_LIST_SUFFIX" validate:"required"`
	WorkbookSuffix   string `yaml:"workbook_suffix" envconfig:"WORKBOOK_SUFFIX" validate:"required"`
	ExportWorkbook   bool   `yaml:"export_workbook" envconfig:"EXPORT_WORKBOOK"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
}

// Default returns the settings matching BimmerLink CSV exports.
func Default() Config {
	return Config{
		Columns: ColumnsConfig{
			Time:          "Time",
			Reference:     "Engine speed",
			ReferenceUnit: "rpm",
		},
		Report: ReportConfig{MaxPlotPoints: 1000},
		Output: OutputConfig{
			ReportSuffix:     "_bimmerlink_report.pdf",
			SensorListSuffix: "_bimmerlink_sensorlist.txt",
			WorkbookSuffix:   "_bimmerlink_summary.xlsx",
		},
		Logging: LoggingConfig{Level: "info"},
		InfoURL: "https://blog.armanasci.com",
	}
}

// Load builds the configuration from defaults, the YAML file at path (or
// DefaultFileName next to the executable when path is empty) and the
// environment, in increasing order of precedence.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = defaultFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
		}
	}

	// envconfig only touches fields whose variables are set, so file values survive.
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func defaultFilePath() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Join(filepath.Dir(exe), DefaultFileName)
}
