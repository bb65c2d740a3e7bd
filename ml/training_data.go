package ml

import (
	"errors"
	"math"
	"math/rand"
)

// Rotation rule constants. A record is labelled for rotation when any of the
// three noisy triggers fires.
const (
	energyNoise        = 10.0
	energyThreshold    = 30.0
	trafficNoise       = 20.0
	trafficThreshold   = 100.0
	forcedRotationRate = 0.7
)

// LabelSynthesizer generates OptimalCHRotation labels for datasets that do
// not carry one. Labels are intentionally noisy.
type LabelSynthesizer struct {
	rng *rand.Rand
}

func NewLabelSynthesizer(rng *rand.Rand) *LabelSynthesizer {
	return &LabelSynthesizer{rng: rng}
}

// Label draws three fresh uniforms per call, always in the same order, so a
// seeded source reproduces a labelling exactly.
func (s *LabelSynthesizer) Label(f CHFeatures) int {
	energyDraw := uniform(s.rng, -energyNoise, energyNoise)
	trafficDraw := uniform(s.rng, -trafficNoise, trafficNoise)
	forcedDraw := s.rng.Float64()

	if f.ResidualEnergy+energyDraw < energyThreshold ||
		f.TrafficLoad+trafficDraw > trafficThreshold ||
		forcedDraw > forcedRotationRate {
		return 1
	}
	return 0
}

func (s *LabelSynthesizer) GenerateLabels(features []CHFeatures) ([]int, error) {
	if len(features) == 0 {
		return nil, errors.New("features is empty")
	}
	labels := make([]int, len(features))
	for i, f := range features {
		labels[i] = s.Label(f)
	}
	return labels, nil
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

// SplitDataset shuffles row indices and partitions them into train and test
// sets. The test set holds ceil(testRatio*n) rows, clamped so both sides keep
// at least one row.
func SplitDataset(n int, testRatio float64, rng *rand.Rand) (train, test []int, err error) {
	if n < 2 {
		return nil, nil, errors.New("need at least 2 rows to split")
	}
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, errors.New("test ratio must be in (0, 1)")
	}

	testSize := int(math.Ceil(testRatio*float64(n) - 1e-9))
	if testSize < 1 {
		testSize = 1
	}
	if testSize > n-1 {
		testSize = n - 1
	}

	perm := rng.Perm(n)
	test = append([]int(nil), perm[:testSize]...)
	train = append([]int(nil), perm[testSize:]...)
	return train, test, nil
}

// Select gathers the rows at indices.
func Select(features [][]float64, labels []int, indices []int) ([][]float64, []int) {
	x := make([][]float64, len(indices))
	y := make([]int, len(indices))
	for i, idx := range indices {
		x[i] = features[idx]
		y[i] = labels[idx]
	}
	return x, y
}
