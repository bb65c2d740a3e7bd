package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"chrotation/config"
	"chrotation/logging"
	"chrotation/pipeline"
	"go.uber.org/zap"
)

const defaultConfigPath = "config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "YAML config path")
	input := flag.String("input", "", "dataset to score (overrides predict.input_path)")
	output := flag.String("output", "", "scored dataset path (overrides predict.output_path)")
	modelPath := flag.String("model", "", "model artifact path (overrides ml.model_path)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *input != "" {
		cfg.Predict.InputPath = *input
	}
	if *output != "" {
		cfg.Predict.OutputPath = *output
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
		logger.Error("prediction failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	model, err := pipeline.LoadClassifier(cfg.ML.ModelPath)
	if err != nil {
		return err
	}
	logger.Info("model loaded",
		zap.String("path", cfg.ML.ModelPath),
		zap.String("model_type", model.Type()),
		zap.Time("trained_at", model.TrainedAt()))

	ledger := pipeline.OpenLedger(cfg.Database.Path, logger)
	defer ledger.Close()

	predictor := pipeline.NewPredictor(pipeline.PredictConfig{
		InputPath:   cfg.Predict.InputPath,
		OutputPath:  cfg.Predict.OutputPath,
		ModelPath:   cfg.ML.ModelPath,
		PreviewRows: cfg.Predict.PreviewRows,
		CacheSize:   cfg.Predict.CacheSize,
	}, logger, os.Stdout, ledger)

	_, err = predictor.Run(model)
	return err
}

func loadConfig(path string) (*config.Config, error) {
	if path == defaultConfigPath {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return config.Default(), nil
		}
	}
	return config.Load(path)
}
