// Package config provides configuration management for the preprocessing
// pipeline and the dataset fetcher
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the configuration of both routines. The zero value of any
// field means "use the default", and the defaults reproduce the fixed constants
// the routines were originally written with.
type Config struct {
	// Preprocessing
	Input   string      `json:"input" yaml:"input"`     // CSV path read by the preprocess command
	Columns Columns     `json:"columns" yaml:"columns"` // Column roles
	Split   SplitConfig `json:"split" yaml:"split"`     // Train/test partitioning

	// Fetching
	Fetch FetchConfig `json:"fetch" yaml:"fetch"`

	// Debugging Configuration
	LogMode           string `json:"log_mode" yaml:"log_mode"`                     // pretty, debug, info, prod or test
	MetricsCollection bool   `json:"metrics_collection" yaml:"metrics_collection"` // Record per-step timings
}

// Columns assigns roles to dataset columns
type Columns struct {
	ImputeMean       string   `json:"impute_mean" yaml:"impute_mean"`             // Numeric column filled with its mean
	ImputeMode       string   `json:"impute_mode" yaml:"impute_mode"`             // Categorical column filled with its mode
	OneHot           []string `json:"one_hot" yaml:"one_hot"`                     // Categorical columns expanded to indicators
	LabelEncode      string   `json:"label_encode" yaml:"label_encode"`           // Categorical column mapped to integer codes
	Scale            []string `json:"scale" yaml:"scale"`                         // Numeric columns standardized in place
	Torque           string   `json:"torque" yaml:"torque"`                       // Free-text column with a leading number
	RatioNumerator   string   `json:"ratio_numerator" yaml:"ratio_numerator"`     // Dividend of the derived feature
	RatioDenominator string   `json:"ratio_denominator" yaml:"ratio_denominator"` // Divisor of the derived feature
	RatioName        string   `json:"ratio_name" yaml:"ratio_name"`               // Name of the derived feature
	Target           string   `json:"target" yaml:"target"`                       // Label column separated from features
}

// SplitConfig controls the train/test partition
type SplitConfig struct {
	TestSize float64 `json:"test_size" yaml:"test_size"` // Fraction of rows in the test partition
	Seed     uint64  `json:"seed" yaml:"seed"`           // Random seed; 0 selects the default
}

// FetchConfig controls the dataset fetcher
type FetchConfig struct {
	URL  string `json:"url" yaml:"url"`   // Remote resource
	Dir  string `json:"dir" yaml:"dir"`   // Destination directory, created if absent
	File string `json:"file" yaml:"file"` // Destination file name inside Dir
}

// Default configuration values
const (
	DefaultInput    = "../assets/Car details v3.csv"
	DefaultTestSize = 0.2
	DefaultSeed     = 42
	DefaultFetchURL = "https://github.com/pytorch/tutorials/raw/main/_static/mnist.pkl.gz"
	DefaultLogMode  = "pretty"
	DefaultFileName = "mnist.pkl.gz"
)

// DefaultFetchDir is the default destination directory for the fetcher
var DefaultFetchDir = filepath.Join("data", "mnist")

var validLogModes = map[string]bool{
	"pretty": true,
	"debug":  true,
	"info":   true,
	"prod":   true,
	"test":   true,
}

// NewConfig creates a new configuration with default values
func NewConfig() Config {
	return Config{
		Input:   DefaultInput,
		Columns: DefaultColumns(),
		Split: SplitConfig{
			TestSize: DefaultTestSize,
			Seed:     DefaultSeed,
		},
		Fetch: FetchConfig{
			URL:  DefaultFetchURL,
			Dir:  DefaultFetchDir,
			File: DefaultFileName,
		},
		LogMode:           DefaultLogMode,
		MetricsCollection: false,
	}
}

// DefaultColumns returns the default column roles
func DefaultColumns() Columns {
	return Columns{
		ImputeMean:       "numerical_column",
		ImputeMode:       "categorical_column",
		OneHot:           []string{"categorical_column1", "categorical_column2"},
		LabelEncode:      "another_categorical_column",
		Scale:            []string{"numerical_column1", "numerical_column2"},
		Torque:           "torque",
		RatioNumerator:   "feature1",
		RatioDenominator: "feature2",
		RatioName:        "new_feature",
		Target:           "target_column",
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c.Split.TestSize <= 0 || c.Split.TestSize >= 1 {
		return fmt.Errorf("Split.TestSize must be between 0 and 1 (exclusive), got %g", c.Split.TestSize)
	}

	named := map[string]string{
		"ImputeMean":       c.Columns.ImputeMean,
		"ImputeMode":       c.Columns.ImputeMode,
		"LabelEncode":      c.Columns.LabelEncode,
		"Torque":           c.Columns.Torque,
		"RatioNumerator":   c.Columns.RatioNumerator,
		"RatioDenominator": c.Columns.RatioDenominator,
		"RatioName":        c.Columns.RatioName,
		"Target":           c.Columns.Target,
	}
	for role, column := range named {
		if strings.TrimSpace(column) == "" {
			return fmt.Errorf("Columns.%s must name a column", role)
		}
	}

	if len(c.Columns.OneHot) == 0 {
		return fmt.Errorf("Columns.OneHot must name at least one column")
	}
	if len(c.Columns.Scale) == 0 {
		return fmt.Errorf("Columns.Scale must name at least one column")
	}

	if c.Fetch.URL == "" {
		return fmt.Errorf("Fetch.URL must not be empty")
	}
	if c.Fetch.File == "" || filepath.Base(c.Fetch.File) != c.Fetch.File {
		return fmt.Errorf("Fetch.File must be a plain file name, got %q", c.Fetch.File)
	}

	if !validLogModes[c.LogMode] {
		return fmt.Errorf("LogMode must be one of pretty, debug, info, prod, test; got %q", c.LogMode)
	}

	return nil
}

// WithDefaults returns a new configuration with default values filled in for zero values
func (c Config) WithDefaults() Config {
	defaults := NewConfig()

	if c.Input == "" {
		c.Input = defaults.Input
	}

	cols, defCols := &c.Columns, defaults.Columns
	fillString(&cols.ImputeMean, defCols.ImputeMean)
	fillString(&cols.ImputeMode, defCols.ImputeMode)
	fillString(&cols.LabelEncode, defCols.LabelEncode)
	fillString(&cols.Torque, defCols.Torque)
	fillString(&cols.RatioNumerator, defCols.RatioNumerator)
	fillString(&cols.RatioDenominator, defCols.RatioDenominator)
	fillString(&cols.RatioName, defCols.RatioName)
	fillString(&cols.Target, defCols.Target)
	if len(cols.OneHot) == 0 {
		cols.OneHot = defCols.OneHot
	}
	if len(cols.Scale) == 0 {
		cols.Scale = defCols.Scale
	}

	if c.Split.TestSize == 0 {
		c.Split.TestSize = defaults.Split.TestSize
	}
	if c.Split.Seed == 0 {
		c.Split.Seed = defaults.Split.Seed
	}

	fillString(&c.Fetch.URL, defaults.Fetch.URL)
	fillString(&c.Fetch.Dir, defaults.Fetch.Dir)
	fillString(&c.Fetch.File, defaults.Fetch.File)
	fillString(&c.LogMode, defaults.LogMode)

	// Note: MetricsCollection is a boolean and is intentionally not defaulted here

	return c
}

func fillString(field *string, def string) {
	if *field == "" {
		*field = def
	}
}

// LoadFromJSON loads configuration from JSON data
func LoadFromJSON(data []byte) (Config, error) {
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing JSON configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromYAML loads configuration from YAML data. Unknown keys are rejected.
func LoadFromYAML(data []byte) (Config, error) {
	var config Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing YAML configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromFile loads configuration from a file (supports JSON and YAML)
func LoadFromFile(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", filename, err)
	}

	var config Config
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".json":
		config, err = LoadFromJSON(data)
	case ".yaml", ".yml":
		config, err = LoadFromYAML(data)
	default:
		return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err != nil {
		return Config{}, fmt.Errorf("loading config file %s: %w", filename, err)
	}

	return config, nil
}

// ApplyEnv overrides fields of config from TABPREP_* environment variables.
// Values that fail to parse are ignored.
func ApplyEnv(config Config) Config {
	if val := os.Getenv("TABPREP_INPUT"); val != "" {
		config.Input = val
	}

	if val := os.Getenv("TABPREP_TARGET"); val != "" {
		config.Columns.Target = val
	}

	if val := os.Getenv("TABPREP_TEST_SIZE"); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			config.Split.TestSize = parsed
		}
	}

	if val := os.Getenv("TABPREP_SEED"); val != "" {
		if parsed, err := strconv.ParseUint(val, 10, 64); err == nil {
			config.Split.Seed = parsed
		}
	}

	if val := os.Getenv("TABPREP_FETCH_URL"); val != "" {
		config.Fetch.URL = val
	}

	if val := os.Getenv("TABPREP_FETCH_DIR"); val != "" {
		config.Fetch.Dir = val
	}

	if val := os.Getenv("TABPREP_LOG_MODE"); val != "" {
		config.LogMode = val
	}

	if val := os.Getenv("TABPREP_METRICS_COLLECTION"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.MetricsCollection = parsed
		}
	}

	return config
}

// Load builds the effective configuration: the file at path (or the defaults
// when path is empty), then environment overrides, then overrides in order,
// then validation.
func Load(path string, overrides ...func(*Config)) (Config, error) {
	config := NewConfig()
	if path != "" {
		loaded, err := LoadFromFile(path)
		if err != nil {
			return Config{}, err
		}
		config = loaded
	}

	config = ApplyEnv(config)
	for _, override := range overrides {
		override(&config)
	}
	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}
