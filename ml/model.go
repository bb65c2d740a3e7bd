package ml

import (
	"errors"
	"fmt"
	"time"
)

const (
	ModelTypeDecisionTree = "decision_tree"
	ModelTypeRandomForest = "random_forest"
)

var ErrUnsupportedModel = errors.New("unsupported model type")

// Predictor returns a class label and its confidence for one feature vector.
type Predictor interface {
	Predict(features []float64) (int, float64, error)
}

type MLModel interface {
	Predictor
	Train(features [][]float64, labels []int) error
}

// Classifier is a trained model bound to the feature schema it was fitted on.
type Classifier interface {
	Predictor
	Schema() Schema
}

// Model pairs an estimator with the metadata persisted in its artifact.
type Model struct {
	modelType string
	schema    Schema
	stats     FeatureStats
	trainedAt time.Time
	estimator MLModel
}

func newEstimator(modelType string, config ForestConfig) (MLModel, error) {
	switch modelType {
	case ModelTypeRandomForest, "":
		return NewRandomForest(config), nil
	case ModelTypeDecisionTree:
		return NewDecisionTree(config.MaxDepth), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModel, modelType)
	}
}

// TrainModel fits a new estimator of modelType on features laid out per schema.
func TrainModel(modelType string, schema Schema, config ForestConfig, features [][]float64, labels []int) (*Model, error) {
	if len(schema) == 0 {
		return nil, errors.New("schema is empty")
	}
	if modelType == "" {
		modelType = ModelTypeRandomForest
	}
	estimator, err := newEstimator(modelType, config)
	if err != nil {
		return nil, err
	}
	for i, row := range features {
		if len(row) != len(schema) {
			return nil, fmt.Errorf("row %d has %d features, schema has %d", i, len(row), len(schema))
		}
	}
	if err := estimator.Train(features, labels); err != nil {
		return nil, err
	}
	stats, err := ComputeFeatureStats(schema, features)
	if err != nil {
		return nil, err
	}
	return &Model{
		modelType: modelType,
		schema:    append(Schema(nil), schema...),
		stats:     stats,
		trainedAt: time.Now().UTC(),
		estimator: estimator,
	}, nil
}

func (m *Model) Type() string { return m.modelType }
func (m *Model) Schema() Schema { return append(Schema(nil), m.schema...) }
func (m *Model) FeatureStats() FeatureStats { return m.stats }
func (m *Model) TrainedAt() time.Time { return m.trainedAt }

func (m *Model) Predict(features []float64) (int, float64, error) {
	if len(features) != len(m.schema) {
		return 0, 0, fmt.Errorf("got %d features, model expects %d %s", len(features), len(m.schema), m.schema)
	}
	return m.estimator.Predict(features)
}
