package ml

import (
	"errors"
	"math"
	"math/rand"
)

type ForestConfig struct {
	NEstimators int
	MaxDepth    int
	// MaxFeatures is the number of features drawn per split; 0 means
	// floor(sqrt(featureCount)).
	MaxFeatures int
	Bootstrap   bool
	Seed        int64
}

func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		NEstimators: 10,
		MaxDepth:    4,
		Bootstrap:   true,
		Seed:        42,
	}
}

// RandomForest is a bagged ensemble of depth-limited trees that averages the
// per-tree class probabilities.
type RandomForest struct {
	config ForestConfig
	trees  []*DecisionTree
}

func NewRandomForest(config ForestConfig) *RandomForest {
	if config.NEstimators <= 0 {
		config.NEstimators = 10
	}
	if config.MaxDepth <= 0 {
		config.MaxDepth = 4
	}
	return &RandomForest{config: config}
}

func (rf *RandomForest) Train(features [][]float64, labels []int) error {
	featureCount, err := validateTrainingSet(features, labels)
	if err != nil {
		return err
	}

	maxFeatures := rf.config.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = int(math.Sqrt(float64(featureCount)))
	}
	if maxFeatures < 1 {
		maxFeatures = 1
	}
	if maxFeatures > featureCount {
		maxFeatures = featureCount
	}

	rng := rand.New(rand.NewSource(rf.config.Seed))
	trees := make([]*DecisionTree, 0, rf.config.NEstimators)
	for i := 0; i < rf.config.NEstimators; i++ {
		tree := newRandomizedTree(rf.config.MaxDepth, maxFeatures, rand.New(rand.NewSource(rng.Int63())))
		tree.fit(features, labels, rf.drawSample(len(features), rng))
		trees = append(trees, tree)
	}
	rf.trees = trees
	return nil
}

func (rf *RandomForest) drawSample(n int, rng *rand.Rand) []int {
	sample := make([]int, n)
	for i := range sample {
		if rf.config.Bootstrap {
			sample[i] = rng.Intn(n)
		} else {
			sample[i] = i
		}
	}
	return sample
}

func (rf *RandomForest) Predict(features []float64) (int, float64, error) {
	prob, err := rf.PredictProba(features)
	if err != nil {
		return 0, 0, err
	}
	if prob > 0.5 {
		return 1, prob, nil
	}
	return 0, 1 - prob, nil
}

// PredictProba returns the mean class-1 probability across trees.
func (rf *RandomForest) PredictProba(features []float64) (float64, error) {
	if len(rf.trees) == 0 {
		return 0, errors.New("model not trained")
	}
	sum := 0.0
	for _, tree := range rf.trees {
		prob, err := tree.PredictProba(features)
		if err != nil {
			return 0, err
		}
		sum += prob
	}
	return sum / float64(len(rf.trees)), nil
}

func (rf *RandomForest) Trees() []*DecisionTree {
	return append([]*DecisionTree(nil), rf.trees...)
}
