package pipeline

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"chrotation/dataset"
	"chrotation/db"
	"chrotation/fsutil"
	"chrotation/ml"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TrainConfig struct {
	InputPath   string
	UpdatedPath string
	ModelPath   string
	ModelType   string
	TestRatio   float64
	Forest      ml.ForestConfig
	// LabelRand and SplitRand drive label synthesis and the train/test
	// shuffle. Nil sources are seeded from the clock.
	LabelRand *rand.Rand
	SplitRand *rand.Rand
}

type TrainResult struct {
	RunID             string
	Rows              int
	TrainRows         int
	TestRows          int
	LabelsSynthesized bool
	Evaluation        ml.Evaluation
	ModelPath         string
	UpdatedPath       string
}

// Trainer runs the label, split, fit, evaluate and persist sequence once.
type Trainer struct {
	config TrainConfig
	logger *zap.Logger
	out    io.Writer
	ledger *db.Ledger
}

// NewTrainer wires a trainer. out receives operator messages; ledger may be nil.
func NewTrainer(config TrainConfig, logger *zap.Logger, out io.Writer, ledger *db.Ledger) *Trainer {
	if config.TestRatio <= 0 || config.TestRatio >= 1 {
		config.TestRatio = 0.3
	}
	if config.LabelRand == nil {
		config.LabelRand = clockRand()
	}
	if config.SplitRand == nil {
		config.SplitRand = clockRand()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Trainer{config: config, logger: logger, out: out, ledger: ledger}
}

func (t *Trainer) Run() (*TrainResult, error) {
	runID := uuid.NewString()
	logger := t.logger.With(zap.String("run_id", runID))
	schema := ml.DefaultSchema()

	ds, err := dataset.ReadFile(t.config.InputPath)
	if err != nil {
		return nil, classifyDatasetError(fmt.Errorf("read %s: %w", t.config.InputPath, err), ErrDataFormat)
	}
	features, err := ds.Features(schema)
	if err != nil {
		return nil, classifyDatasetError(err, ErrDataFormat)
	}
	if ds.Len() < 2 {
		return nil, classify(ErrDataFormat, fmt.Errorf("need at least 2 rows to train, got %d", ds.Len()))
	}
	logger.Info("dataset loaded",
		zap.String("path", t.config.InputPath),
		zap.Int("rows", ds.Len()),
		zap.Int("columns", len(ds.Columns)))

	labels, synthesized, err := t.labels(ds, features)
	if err != nil {
		return nil, err
	}
	logger.Info("labels ready",
		zap.Bool("synthesized", synthesized),
		zap.Float64("rotate_fraction", ml.ClassBalance(labels)))

	trainIdx, testIdx, err := ml.SplitDataset(ds.Len(), t.config.TestRatio, t.config.SplitRand)
	if err != nil {
		return nil, classify(ErrDataFormat, err)
	}
	trainX, trainY := ml.Select(features, labels, trainIdx)
	testX, testY := ml.Select(features, labels, testIdx)
	logger.Debug("dataset split", zap.Int("train_rows", len(trainIdx)), zap.Int("test_rows", len(testIdx)))

	model, err := ml.TrainModel(t.config.ModelType, schema, t.config.Forest, trainX, trainY)
	if err != nil {
		return nil, classify(ErrDataFormat, fmt.Errorf("train model: %w", err))
	}
	for _, name := range schema {
		stat := model.FeatureStats()[name]
		logger.Debug("feature summary",
			zap.String("feature", name),
			zap.Float64("min", stat.Min),
			zap.Float64("max", stat.Max),
			zap.Float64("mean", stat.Mean),
			zap.Float64("std_dev", stat.StdDev))
	}

	eval, err := ml.EvaluateModel(model, testX, testY)
	if err != nil {
		return nil, classify(ErrDataFormat, fmt.Errorf("evaluate model: %w", err))
	}
	fmt.Fprintf(t.out, "Model Accuracy: %.2f\n", eval.Accuracy)
	logger.Info("model evaluated",
		zap.String("model_type", model.Type()),
		zap.Float64("accuracy", eval.Accuracy),
		zap.Float64("precision", eval.Precision),
		zap.Float64("recall", eval.Recall),
		zap.Int("test_rows", eval.Samples))

	result := &TrainResult{
		RunID:             runID,
		Rows:              ds.Len(),
		TrainRows:         len(trainIdx),
		TestRows:          len(testIdx),
		LabelsSynthesized: synthesized,
		Evaluation:        eval,
		ModelPath:         t.config.ModelPath,
	}

	// Stage both outputs before committing either.
	var updated *fsutil.StagedFile
	if synthesized {
		updated, err = fsutil.Stage(t.config.UpdatedPath, ds.Write)
		if err != nil {
			return nil, classify(ErrIO, fmt.Errorf("write %s: %w", t.config.UpdatedPath, err))
		}
		defer updated.Discard()
	}
	artifact, err := fsutil.Stage(t.config.ModelPath, model.Encode)
	if err != nil {
		return nil, classify(ErrIO, fmt.Errorf("save model %s: %w", t.config.ModelPath, err))
	}
	defer artifact.Discard()

	if updated != nil {
		if err := updated.Commit(); err != nil {
			return nil, classify(ErrIO, fmt.Errorf("write %s: %w", t.config.UpdatedPath, err))
		}
		result.UpdatedPath = t.config.UpdatedPath
		fmt.Fprintf(t.out, "Updated dataset saved as '%s'\n", t.config.UpdatedPath)
	}
	if err := artifact.Commit(); err != nil {
		if updated != nil {
			os.Remove(t.config.UpdatedPath)
		}
		return nil, classify(ErrIO, fmt.Errorf("save model %s: %w", t.config.ModelPath, err))
	}
	fmt.Fprintf(t.out, "Model saved as '%s'\n", t.config.ModelPath)
	logger.Info("model saved", zap.String("path", t.config.ModelPath))

	t.record(logger, result, model.Type(), model.TrainedAt())
	return result, nil
}

func (t *Trainer) labels(ds *dataset.Dataset, features [][]float64) ([]int, bool, error) {
	if ds.HasColumn(ml.LabelColumn) {
		labels, err := ds.Labels(ml.LabelColumn)
		if err != nil {
			return nil, false, classifyDatasetError(err, ErrDataFormat)
		}
		return labels, false, nil
	}

	fmt.Fprintf(t.out, "Generating '%s' column...\n", ml.LabelColumn)
	observations := make([]ml.CHFeatures, len(features))
	for i, vector := range features {
		observations[i] = ml.FeaturesFromVector(vector)
	}
	labels, err := ml.NewLabelSynthesizer(t.config.LabelRand).GenerateLabels(observations)
	if err != nil {
		return nil, false, classify(ErrDataFormat, err)
	}
	if err := ds.SetIntColumn(ml.LabelColumn, labels); err != nil {
		return nil, false, classify(ErrDataFormat, err)
	}
	return labels, true, nil
}

// record stores the run in the ledger. Outputs are already on disk at this
// point, so a ledger failure is logged rather than failing the run.
func (t *Trainer) record(logger *zap.Logger, result *TrainResult, modelType string, trainedAt time.Time) {
	if t.ledger == nil {
		return
	}
	err := t.ledger.SaveTrainingLog(db.TrainingLog{
		RunID:             result.RunID,
		ModelName:         modelType,
		ModelPath:         result.ModelPath,
		InputPath:         t.config.InputPath,
		LabelsSynthesized: result.LabelsSynthesized,
		Accuracy:          result.Evaluation.Accuracy,
		Precision:         result.Evaluation.Precision,
		Recall:            result.Evaluation.Recall,
		TrainRows:         result.TrainRows,
		TestRows:          result.TestRows,
		TrainedAt:         trainedAt,
		DataPoints:        result.Rows,
	})
	if err != nil {
		logger.Warn("failed to record training run", zap.Error(err))
	}
}

func clockRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
