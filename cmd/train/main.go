package main

import (
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"chrotation/config"
	"chrotation/logging"
	"chrotation/ml"
	"chrotation/pipeline"
	"go.uber.org/zap"
)

const defaultConfigPath = "config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "YAML config path")
	input := flag.String("input", "", "training dataset (overrides train.input_path)")
	updated := flag.String("updated", "", "where to write the labelled dataset (overrides train.updated_path)")
	modelPath := flag.String("model", "", "model artifact output path (overrides ml.model_path)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *input != "" {
		cfg.Train.InputPath = *input
	}
	if *updated != "" {
		cfg.Train.UpdatedPath = *updated
	}
	if *modelPath != "" {
		cfg.ML.ModelPath = *modelPath
	}

	logger, err := logging.New(logging.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("training failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ledger := pipeline.OpenLedger(cfg.Database.Path, logger)
	defer ledger.Close()

	trainer := pipeline.NewTrainer(pipeline.TrainConfig{
		InputPath:   cfg.Train.InputPath,
		UpdatedPath: cfg.Train.UpdatedPath,
		ModelPath:   cfg.ML.ModelPath,
		ModelType:   cfg.ML.ModelType,
		TestRatio:   cfg.Train.TestRatio,
		Forest: ml.ForestConfig{
			NEstimators: cfg.ML.NEstimators,
			MaxDepth:    cfg.ML.MaxDepth,
			MaxFeatures: cfg.ML.MaxFeatures,
			Bootstrap:   cfg.ML.Bootstrap,
			Seed:        cfg.ML.Seed,
		},
		LabelRand: seeded(cfg.Train.LabelSeed),
		SplitRand: seeded(cfg.Train.SplitSeed),
	}, logger, os.Stdout, ledger)

	_, err := trainer.Run()
	return err
}

// loadConfig falls back to defaults when the default config file is absent;
// an explicitly named file must exist.
func loadConfig(path string) (*config.Config, error) {
	if path == defaultConfigPath {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return config.Default(), nil
		}
	}
	return config.Load(path)
}

// seeded returns nil for seed 0 so the pipeline seeds from the clock.
func seeded(seed int64) *rand.Rand {
	if seed == 0 {
		return nil
	}
	return rand.New(rand.NewSource(seed))
}
