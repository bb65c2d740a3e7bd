package ml

import "testing"

func TestDecisionTreeTrainPredict(t *testing.T) {
	features := [][]float64{
		{0.1, 0.2},
		{0.2, 0.1},
		{0.9, 0.8},
		{0.8, 0.9},
	}
	labels := []int{0, 0, 1, 1}

	model := NewDecisionTree(2)
	if err := model.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	label, confidence, err := model.Predict([]float64{0.15, 0.15})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 0 {
		t.Fatalf("expected label 0, got %d", label)
	}
	if confidence <= 0 {
		t.Fatalf("expected confidence > 0")
	}

	label, _, err = model.Predict([]float64{0.85, 0.85})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 1 {
		t.Fatalf("expected label 1, got %d", label)
	}
}

func TestDecisionTreeRespectsMaxDepth(t *testing.T) {
	features := make([][]float64, 0, 64)
	labels := make([]int, 0, 64)
	for i := 0; i < 64; i++ {
		features = append(features, []float64{float64(i)})
		labels = append(labels, i%2)
	}

	model := NewDecisionTree(3)
	if err := model.Train(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := treeDepth(model.Nodes(), 0); got > 3 {
		t.Fatalf("expected depth <= 3, got %d", got)
	}
	if err := validateNodes(model.Nodes(), 1); err != nil {
		t.Fatalf("invalid tree layout: %v", err)
	}
}

func TestDecisionTreeThresholdIsMidpoint(t *testing.T) {
	model := NewDecisionTree(1)
	if err := model.Train([][]float64{{1}, {2}, {4}, {5}}, []int{0, 0, 1, 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	root := model.Nodes()[0]
	if root.IsLeaf {
		t.Fatal("expected a split at the root")
	}
	if root.Threshold != 3 {
		t.Fatalf("expected threshold 3, got %v", root.Threshold)
	}
}

func TestDecisionTreeRejectsBadInput(t *testing.T) {
	tests := []struct {
		name     string
		features [][]float64
		labels   []int
	}{
		{name: "empty", features: nil, labels: nil},
		{name: "size mismatch", features: [][]float64{{1}, {2}}, labels: []int{0}},
		{name: "ragged rows", features: [][]float64{{1, 2}, {2}}, labels: []int{0, 1}},
		{name: "non binary label", features: [][]float64{{1}, {2}}, labels: []int{0, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewDecisionTree(2).Train(tt.features, tt.labels); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestDecisionTreePredictUntrained(t *testing.T) {
	if _, _, err := NewDecisionTree(2).Predict([]float64{1}); err == nil {
		t.Fatal("expected error for untrained model")
	}
}

func treeDepth(nodes []TreeNode, idx int) int {
	node := nodes[idx]
	if node.IsLeaf {
		return 0
	}
	left := treeDepth(nodes, node.LeftChild)
	right := treeDepth(nodes, node.RightChild)
	if left > right {
		return left + 1
	}
	return right + 1
}
