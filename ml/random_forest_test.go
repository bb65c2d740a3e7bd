package ml

import (
	"math/rand"
	"testing"
)

func separableSet(n int, seed int64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	features := make([][]float64, n)
	labels := make([]int, n)
	for i := range features {
		energy := rng.Float64() * 100
		features[i] = []float64{rng.Float64() * 120, rng.Float64() * 500, energy, rng.Float64() * 200}
		if energy < 40 {
			labels[i] = 1
		}
	}
	return features, labels
}

func TestRandomForestLearnsEnergyRule(t *testing.T) {
	features, labels := separableSet(300, 1)
	forest := NewRandomForest(DefaultForestConfig())
	if err := forest.Train(features[:200], labels[:200]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(forest.Trees()); got != 10 {
		t.Fatalf("expected 10 trees, got %d", got)
	}
	for i, tree := range forest.Trees() {
		if depth := treeDepth(tree.Nodes(), 0); depth > 4 {
			t.Fatalf("tree %d has depth %d", i, depth)
		}
	}

	eval, err := EvaluateModel(forest, features[200:], labels[200:])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eval.Accuracy < 0.85 {
		t.Fatalf("expected accuracy >= 0.85 on a separable set, got %.2f", eval.Accuracy)
	}
}

func TestRandomForestSeedIsDeterministic(t *testing.T) {
	features, labels := separableSet(120, 7)
	a := NewRandomForest(DefaultForestConfig())
	b := NewRandomForest(DefaultForestConfig())
	if err := a.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range features {
		pa, _ := a.PredictProba(features[i])
		pb, _ := b.PredictProba(features[i])
		if pa != pb {
			t.Fatalf("row %d: probabilities differ %v vs %v", i, pa, pb)
		}
	}
}

func TestRandomForestPredictionsAreBinary(t *testing.T) {
	features, labels := separableSet(80, 3)
	forest := NewRandomForest(DefaultForestConfig())
	if err := forest.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, row := range features {
		label, confidence, err := forest.Predict(row)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if label != 0 && label != 1 {
			t.Fatalf("expected binary label, got %d", label)
		}
		if confidence < 0.5 || confidence > 1 {
			t.Fatalf("confidence out of range: %v", confidence)
		}
	}
}
