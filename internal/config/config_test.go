package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paveg/tabprep/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DefaultValues(t *testing.T) {
	cfg := config.NewConfig()

	assert.Equal(t, "../assets/Car details v3.csv", cfg.Input)
	assert.Equal(t, "numerical_column", cfg.Columns.ImputeMean)
	assert.Equal(t, "categorical_column", cfg.Columns.ImputeMode)
	assert.Equal(t, []string{"categorical_column1", "categorical_column2"}, cfg.Columns.OneHot)
	assert.Equal(t, "another_categorical_column", cfg.Columns.LabelEncode)
	assert.Equal(t, []string{"numerical_column1", "numerical_column2"}, cfg.Columns.Scale)
	assert.Equal(t, "torque", cfg.Columns.Torque)
	assert.Equal(t, "feature1", cfg.Columns.RatioNumerator)
	assert.Equal(t, "feature2", cfg.Columns.RatioDenominator)
	assert.Equal(t, "new_feature", cfg.Columns.RatioName)
	assert.Equal(t, "target_column", cfg.Columns.Target)
	assert.InDelta(t, 0.2, cfg.Split.TestSize, 1e-12)
	assert.Equal(t, uint64(42), cfg.Split.Seed)
	assert.Equal(t, "https://github.com/pytorch/tutorials/raw/main/_static/mnist.pkl.gz", cfg.Fetch.URL)
	assert.Equal(t, filepath.Join("data", "mnist"), cfg.Fetch.Dir)
	assert.Equal(t, "mnist.pkl.gz", cfg.Fetch.File)
	assert.Equal(t, "pretty", cfg.LogMode)
	assert.False(t, cfg.MetricsCollection)

	require.NoError(t, cfg.Validate())
}

func TestConfig_Validation(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*config.Config)
		expectedError string
	}{
		{
			name:   "valid config",
			mutate: func(*config.Config) {},
		},
		{
			name:          "test size too large",
			mutate:        func(c *config.Config) { c.Split.TestSize = 1 },
			expectedError: "Split.TestSize must be between 0 and 1 (exclusive), got 1",
		},
		{
			name:          "negative test size",
			mutate:        func(c *config.Config) { c.Split.TestSize = -0.5 },
			expectedError: "Split.TestSize must be between 0 and 1 (exclusive), got -0.5",
		},
		{
			name:          "blank target",
			mutate:        func(c *config.Config) { c.Columns.Target = " " },
			expectedError: "Columns.Target must name a column",
		},
		{
			name:          "no one-hot columns",
			mutate:        func(c *config.Config) { c.Columns.OneHot = nil },
			expectedError: "Columns.OneHot must name at least one column",
		},
		{
			name:          "no scale columns",
			mutate:        func(c *config.Config) { c.Columns.Scale = nil },
			expectedError: "Columns.Scale must name at least one column",
		},
		{
			name:          "empty url",
			mutate:        func(c *config.Config) { c.Fetch.URL = "" },
			expectedError: "Fetch.URL must not be empty",
		},
		{
			name:          "file with directory",
			mutate:        func(c *config.Config) { c.Fetch.File = "sub/mnist.pkl.gz" },
			expectedError: `Fetch.File must be a plain file name, got "sub/mnist.pkl.gz"`,
		},
		{
			name:          "unknown log mode",
			mutate:        func(c *config.Config) { c.LogMode = "loud" },
			expectedError: `LogMode must be one of pretty, debug, info, prod, test; got "loud"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.expectedError == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.expectedError, err.Error())
		})
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := config.Config{
		Columns: config.Columns{Target: "selling_price"},
		Split:   config.SplitConfig{TestSize: 0.25},
	}.WithDefaults()

	assert.Equal(t, "selling_price", cfg.Columns.Target)
	assert.Equal(t, "torque", cfg.Columns.Torque)
	assert.InDelta(t, 0.25, cfg.Split.TestSize, 1e-12)
	assert.Equal(t, uint64(42), cfg.Split.Seed)
	assert.Equal(t, config.DefaultFetchURL, cfg.Fetch.URL)
	require.NoError(t, cfg.Validate())
}

func TestConfig_LoadFromJSON(t *testing.T) {
	cfg, err := config.LoadFromJSON([]byte(`{"split": {"seed": 7}, "columns": {"torque": "max_torque"}}`))
	require.NoError(t, err)

	assert.Equal(t, uint64(7), cfg.Split.Seed)
	assert.Equal(t, "max_torque", cfg.Columns.Torque)
	assert.Equal(t, "feature1", cfg.Columns.RatioNumerator)

	_, err = config.LoadFromJSON([]byte(`{"split":`))
	require.Error(t, err)
}

func TestConfig_LoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tabprep.yaml")
	yamlData := `
input: cars.csv
columns:
  impute_mean: mileage
  one_hot: [fuel, transmission]
  scale: [km_driven, engine]
  target: selling_price
split:
  test_size: 0.3
  seed: 1
metrics_collection: true
`
	require.NoError(t, os.WriteFile(path, []byte(yamlData), 0o600))

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "cars.csv", cfg.Input)
	assert.Equal(t, "mileage", cfg.Columns.ImputeMean)
	assert.Equal(t, []string{"fuel", "transmission"}, cfg.Columns.OneHot)
	assert.Equal(t, []string{"km_driven", "engine"}, cfg.Columns.Scale)
	assert.Equal(t, "selling_price", cfg.Columns.Target)
	assert.InDelta(t, 0.3, cfg.Split.TestSize, 1e-12)
	assert.Equal(t, uint64(1), cfg.Split.Seed)
	assert.True(t, cfg.MetricsCollection)
	assert.Equal(t, "categorical_column", cfg.Columns.ImputeMode)
}

func TestConfig_LoadFromYAMLRejectsUnknownKeys(t *testing.T) {
	_, err := config.LoadFromYAML([]byte("parallel_threshold: 10\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing YAML configuration")
}

func TestConfig_LoadFromYAMLEmpty(t *testing.T) {
	cfg, err := config.LoadFromYAML(nil)
	require.NoError(t, err)
	assert.Equal(t, config.NewConfig().Columns, cfg.Columns)
}

func TestConfig_LoadFromFileErrors(t *testing.T) {
	_, err := config.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")

	path := filepath.Join(t.TempDir(), "tabprep.toml")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0o600))
	_, err = config.LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config file format: .toml")
}

func TestConfig_ApplyEnv(t *testing.T) {
	t.Setenv("TABPREP_INPUT", "other.csv")
	t.Setenv("TABPREP_TARGET", "selling_price")
	t.Setenv("TABPREP_TEST_SIZE", "0.1")
	t.Setenv("TABPREP_SEED", "99")
	t.Setenv("TABPREP_FETCH_URL", "http://localhost/x.gz")
	t.Setenv("TABPREP_FETCH_DIR", "tmp")
	t.Setenv("TABPREP_LOG_MODE", "prod")
	t.Setenv("TABPREP_METRICS_COLLECTION", "true")

	cfg := config.ApplyEnv(config.NewConfig())

	assert.Equal(t, "other.csv", cfg.Input)
	assert.Equal(t, "selling_price", cfg.Columns.Target)
	assert.InDelta(t, 0.1, cfg.Split.TestSize, 1e-12)
	assert.Equal(t, uint64(99), cfg.Split.Seed)
	assert.Equal(t, "http://localhost/x.gz", cfg.Fetch.URL)
	assert.Equal(t, "tmp", cfg.Fetch.Dir)
	assert.Equal(t, "prod", cfg.LogMode)
	assert.True(t, cfg.MetricsCollection)
}

func TestConfig_ApplyEnvIgnoresInvalid(t *testing.T) {
	t.Setenv("TABPREP_SEED", "not-a-number")
	t.Setenv("TABPREP_TEST_SIZE", "abc")

	cfg := config.ApplyEnv(config.NewConfig())
	assert.Equal(t, uint64(42), cfg.Split.Seed)
	assert.InDelta(t, 0.2, cfg.Split.TestSize, 1e-12)
}

func TestConfig_Load(t *testing.T) {
	t.Run("defaults without file", func(t *testing.T) {
		cfg, err := config.Load("")
		require.NoError(t, err)
		assert.Equal(t, config.NewConfig().Input, cfg.Input)
	})

	t.Run("env overrides file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tabprep.yml")
		require.NoError(t, os.WriteFile(path, []byte("split:\n  seed: 5\n"), 0o600))
		t.Setenv("TABPREP_SEED", "6")

		cfg, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, uint64(6), cfg.Split.Seed)
	})

	t.Run("invalid result", func(t *testing.T) {
		t.Setenv("TABPREP_LOG_MODE", "shout")

		_, err := config.Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("overrides apply after env and before validation", func(t *testing.T) {
		t.Setenv("TABPREP_LOG_MODE", "verbose")

		cfg, err := config.Load("", func(c *config.Config) { c.LogMode = "debug" })
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.LogMode)
	})

	t.Run("invalid override is rejected", func(t *testing.T) {
		_, err := config.Load("", func(c *config.Config) { c.LogMode = "loud" })
		require.Error(t, err)
		assert.Contains(t, err.Error(), `LogMode must be one of pretty, debug, info, prod, test; got "loud"`)
	})
}
