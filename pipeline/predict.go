package pipeline

import (
	"fmt"
	"io"
	"time"

	"chrotation/dataset"
	"chrotation/db"
	"chrotation/ml"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PredictConfig struct {
	InputPath  string
	OutputPath string
	// ModelPath is only recorded in logs and the ledger; the model itself is
	// passed to Run.
	ModelPath   string
	PreviewRows int
	CacheSize   int
}

type PredictResult struct {
	RunID          string
	Rows           int
	RotateCount    int
	OutOfRangeRows int
	CacheHits      int
	OutputPath     string
}

// Predictor applies a loaded classifier to a dataset file.
type Predictor struct {
	config PredictConfig
	logger *zap.Logger
	out    io.Writer
	ledger *db.Ledger
}

func NewPredictor(config PredictConfig, logger *zap.Logger, out io.Writer, ledger *db.Ledger) *Predictor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Predictor{config: config, logger: logger, out: out, ledger: ledger}
}

// LoadClassifier reads a model artifact trained on the cluster head schema.
func LoadClassifier(path string) (*ml.Model, error) {
	model, err := ml.LoadModel(path, ml.DefaultSchema())
	if err != nil {
		return nil, classify(ErrArtifactLoad, fmt.Errorf("load %s: %w", path, err))
	}
	return model, nil
}

func (p *Predictor) Run(model ml.Classifier) (*PredictResult, error) {
	runID := uuid.NewString()
	logger := p.logger.With(zap.String("run_id", runID))
	schema := model.Schema()

	ds, err := dataset.ReadFile(p.config.InputPath)
	if err != nil {
		return nil, classifyDatasetError(fmt.Errorf("read %s: %w", p.config.InputPath, err), ErrSchemaMismatch)
	}
	features, err := ds.Features(schema)
	if err != nil {
		return nil, classifyDatasetError(err, ErrSchemaMismatch)
	}
	logger.Info("dataset loaded", zap.String("path", p.config.InputPath), zap.Int("rows", ds.Len()))

	predictor, err := newCachedPredictor(model, p.config.CacheSize)
	if err != nil {
		return nil, err
	}

	var stats ml.FeatureStats
	if withStats, ok := model.(interface{ FeatureStats() ml.FeatureStats }); ok {
		stats = withStats.FeatureStats()
	}

	result := &PredictResult{RunID: runID, Rows: ds.Len(), OutputPath: p.config.OutputPath}
	predictions := make([]int, len(features))
	for i, vector := range features {
		label, _, err := predictor.Predict(vector)
		if err != nil {
			return nil, classify(ErrDataFormat, fmt.Errorf("row %d: %w", i+1, err))
		}
		predictions[i] = label
		result.RotateCount += label
		if out := stats.OutOfRange(schema, vector); len(out) > 0 {
			result.OutOfRangeRows++
			logger.Debug("features outside training range", zap.Int("row", i+1), zap.Strings("features", out))
		}
	}
	result.CacheHits = predictor.hits
	if result.OutOfRangeRows > 0 {
		logger.Warn("rows outside training range; predictions are extrapolated",
			zap.Int("rows", result.OutOfRangeRows))
	}

	augmented := ds.Clone()
	if err := augmented.SetIntColumn(ml.PredictionColumn, predictions); err != nil {
		return nil, classify(ErrDataFormat, err)
	}

	previewColumns := append(append([]string(nil), schema...), ml.PredictionColumn)
	preview, err := augmented.Project(previewColumns)
	if err != nil {
		return nil, classify(ErrDataFormat, err)
	}
	if err := RenderPreview(p.out, previewColumns, preview, p.config.PreviewRows); err != nil {
		return nil, classify(ErrIO, err)
	}

	if err := augmented.WriteFile(p.config.OutputPath); err != nil {
		return nil, classify(ErrIO, fmt.Errorf("write %s: %w", p.config.OutputPath, err))
	}
	fmt.Fprintf(p.out, "Predictions saved to '%s'\n", p.config.OutputPath)
	logger.Info("predictions saved",
		zap.String("path", p.config.OutputPath),
		zap.Int("rows", result.Rows),
		zap.Int("rotate", result.RotateCount),
		zap.Int("cache_hits", result.CacheHits))

	p.record(logger, result)
	return result, nil
}

func (p *Predictor) record(logger *zap.Logger, result *PredictResult) {
	if p.ledger == nil {
		return
	}
	err := p.ledger.SavePredictionLog(db.PredictionLog{
		RunID:          result.RunID,
		ModelPath:      p.config.ModelPath,
		InputPath:      p.config.InputPath,
		OutputPath:     result.OutputPath,
		Rows:           result.Rows,
		RotateCount:    result.RotateCount,
		OutOfRangeRows: result.OutOfRangeRows,
		PredictedAt:    time.Now().UTC(),
	})
	if err != nil {
		logger.Warn("failed to record prediction run", zap.Error(err))
	}
}
