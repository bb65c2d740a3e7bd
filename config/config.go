package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Train struct {
		InputPath   string  `yaml:"input_path"`
		UpdatedPath string  `yaml:"updated_path"`
		TestRatio   float64 `yaml:"test_ratio"`
		// Seeds of 0 are drawn from the clock, so every run relabels and
		// resplits differently.
		LabelSeed int64 `yaml:"label_seed"`
		SplitSeed int64 `yaml:"split_seed"`
	} `yaml:"train"`
	Predict struct {
		InputPath   string `yaml:"input_path"`
		OutputPath  string `yaml:"output_path"`
		PreviewRows int    `yaml:"preview_rows"`
		CacheSize   int    `yaml:"cache_size"`
	} `yaml:"predict"`
	ML struct {
		ModelType   string `yaml:"model_type"`
		ModelPath   string `yaml:"model_path"`
		NEstimators int    `yaml:"n_estimators"`
		MaxDepth    int    `yaml:"max_depth"`
		MaxFeatures int    `yaml:"max_features"`
		Bootstrap   bool   `yaml:"bootstrap"`
		Seed        int64  `yaml:"seed"`
	} `yaml:"ml"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"log"`
}

// Default returns the stock file paths and forest parameters.
func Default() *Config {
	var c Config
	c.Train.InputPath = "dataset.csv"
	c.Train.UpdatedPath = "dataset_updated.csv"
	c.Train.TestRatio = 0.3

	c.Predict.InputPath = "newest_dataset.csv"
	c.Predict.OutputPath = "predicted_ch_rotation1.csv"
	c.Predict.PreviewRows = 60
	c.Predict.CacheSize = 1024

	c.ML.ModelType = "random_forest"
	c.ML.ModelPath = "ch_rotation_model.json"
	c.ML.NEstimators = 10
	c.ML.MaxDepth = 4
	c.ML.Bootstrap = true
	c.ML.Seed = 42

	c.Log.Level = "info"
	c.Log.MaxSizeMB = 10
	c.Log.MaxBackups = 3
	c.Log.MaxAgeDays = 28
	return &c
}

// Load decodes path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	config := Default()
	if path == "" {
		return config, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Train.TestRatio <= 0 || c.Train.TestRatio >= 1 {
		errs = append(errs, fmt.Errorf("train.test_ratio must be in (0, 1), got %v", c.Train.TestRatio))
	}
	if c.ML.NEstimators <= 0 {
		errs = append(errs, fmt.Errorf("ml.n_estimators must be positive, got %d", c.ML.NEstimators))
	}
	if c.ML.MaxDepth <= 0 {
		errs = append(errs, fmt.Errorf("ml.max_depth must be positive, got %d", c.ML.MaxDepth))
	}
	if c.ML.MaxFeatures < 0 {
		errs = append(errs, fmt.Errorf("ml.max_features must not be negative, got %d", c.ML.MaxFeatures))
	}
	switch c.ML.ModelType {
	case "random_forest", "decision_tree":
	default:
		errs = append(errs, fmt.Errorf("ml.model_type %q is not supported", c.ML.ModelType))
	}
	if c.ML.ModelPath == "" {
		errs = append(errs, errors.New("ml.model_path is required"))
	}
	if c.Predict.PreviewRows < 0 {
		errs = append(errs, fmt.Errorf("predict.preview_rows must not be negative, got %d", c.Predict.PreviewRows))
	}
	if c.Predict.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("predict.cache_size must not be negative, got %d", c.Predict.CacheSize))
	}
	return errors.Join(errs...)
}
