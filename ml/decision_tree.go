package ml

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

type DecisionTree struct {
	maxDepth    int
	maxFeatures int
	rng         *rand.Rand
	nodes       []TreeNode
}

// TreeNode is one entry of a flattened tree. Children are indices into the
// same slice and always point forward.
type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	ClassLabel int     `json:"class_label"`
	Prob       float64 `json:"prob"`
	Samples    int     `json:"samples"`
	IsLeaf     bool    `json:"is_leaf"`
}

// NewDecisionTree returns a tree that considers every feature at each split.
func NewDecisionTree(maxDepth int) *DecisionTree {
	if maxDepth <= 0 {
		maxDepth = 3
	}
	return &DecisionTree{maxDepth: maxDepth}
}

func newRandomizedTree(maxDepth, maxFeatures int, rng *rand.Rand) *DecisionTree {
	tree := NewDecisionTree(maxDepth)
	tree.maxFeatures = maxFeatures
	tree.rng = rng
	return tree
}

func (dt *DecisionTree) Train(features [][]float64, labels []int) error {
	if _, err := validateTrainingSet(features, labels); err != nil {
		return err
	}
	sample := make([]int, len(features))
	for i := range sample {
		sample[i] = i
	}
	dt.fit(features, labels, sample)
	return nil
}

func (dt *DecisionTree) fit(features [][]float64, labels []int, sample []int) {
	if dt.maxDepth <= 0 {
		dt.maxDepth = 3
	}
	dt.nodes = dt.buildNode(features, labels, sample, 0)
}

// Predict returns the class label and the fraction of training samples in
// the reached leaf that carry that label.
func (dt *DecisionTree) Predict(features []float64) (int, float64, error) {
	node, err := dt.leaf(features)
	if err != nil {
		return 0, 0, err
	}
	if node.ClassLabel == 1 {
		return 1, node.Prob, nil
	}
	return 0, 1 - node.Prob, nil
}

// PredictProba returns the probability of class 1.
func (dt *DecisionTree) PredictProba(features []float64) (float64, error) {
	node, err := dt.leaf(features)
	if err != nil {
		return 0, err
	}
	return node.Prob, nil
}

func (dt *DecisionTree) leaf(features []float64) (TreeNode, error) {
	if len(dt.nodes) == 0 {
		return TreeNode{}, errors.New("model not trained")
	}
	idx := 0
	for {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return node, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return TreeNode{}, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.nodes) {
			return TreeNode{}, errors.New("invalid tree state")
		}
	}
}

// Nodes exposes the flattened tree for persistence.
func (dt *DecisionTree) Nodes() []TreeNode {
	return append([]TreeNode(nil), dt.nodes...)
}

func (dt *DecisionTree) buildNode(features [][]float64, labels []int, sample []int, depth int) []TreeNode {
	ones := countPositive(labels, sample)
	prob := float64(ones) / float64(len(sample))
	leaf := []TreeNode{{
		FeatureIdx: -1,
		Threshold:  0,
		LeftChild:  -1,
		RightChild: -1,
		ClassLabel: majorityLabel(prob),
		Prob:       prob,
		Samples:    len(sample),
		IsLeaf:     true,
	}}
	if depth >= dt.maxDepth || ones == 0 || ones == len(sample) || len(sample) < 2 {
		return leaf
	}

	bestFeature, threshold, ok := dt.findBestSplit(features, labels, sample)
	if !ok {
		return leaf
	}

	leftSample, rightSample := splitSample(features, sample, bestFeature, threshold)
	if len(leftSample) == 0 || len(rightSample) == 0 {
		return leaf
	}

	leftNodes := dt.buildNode(features, labels, leftSample, depth+1)
	rightNodes := dt.buildNode(features, labels, rightSample, depth+1)

	root := TreeNode{
		FeatureIdx: bestFeature,
		Threshold:  threshold,
		LeftChild:  1,
		RightChild: 1 + len(leftNodes),
		ClassLabel: leaf[0].ClassLabel,
		Prob:       prob,
		Samples:    len(sample),
		IsLeaf:     false,
	}

	nodes := make([]TreeNode, 0, 1+len(leftNodes)+len(rightNodes))
	nodes = append(nodes, root)
	nodes = append(nodes, shiftChildren(leftNodes, 1)...)
	nodes = append(nodes, shiftChildren(rightNodes, 1+len(leftNodes))...)
	return nodes
}

// findBestSplit scans candidate features in random order. Like the usual
// random forest formulation it keeps looking past maxFeatures until at least
// one feature yields a valid partition.
func (dt *DecisionTree) findBestSplit(features [][]float64, labels []int, sample []int) (int, float64, bool) {
	featureCount := len(features[sample[0]])
	order := dt.featureOrder(featureCount)
	limit := dt.maxFeatures
	if limit <= 0 || limit > featureCount {
		limit = featureCount
	}

	bestFeature := -1
	bestThreshold := 0.0
	bestImpurity := math.MaxFloat64
	visited := 0

	pairs := make([]valueLabel, len(sample))
	for _, featureIdx := range order {
		if visited >= limit && bestFeature != -1 {
			break
		}
		visited++
		for i, row := range sample {
			pairs[i] = valueLabel{value: features[row][featureIdx], label: labels[row]}
		}
		threshold, impurity, ok := bestThresholdFor(pairs)
		if !ok {
			continue
		}
		if impurity < bestImpurity {
			bestImpurity = impurity
			bestFeature = featureIdx
			bestThreshold = threshold
		}
	}
	if bestFeature == -1 {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

func (dt *DecisionTree) featureOrder(featureCount int) []int {
	if dt.rng == nil {
		order := make([]int, featureCount)
		for i := range order {
			order[i] = i
		}
		return order
	}
	return dt.rng.Perm(featureCount)
}

type valueLabel struct {
	value float64
	label int
}

// bestThresholdFor sweeps the sorted values once and returns the midpoint
// threshold with the lowest weighted Gini impurity.
func bestThresholdFor(pairs []valueLabel) (float64, float64, bool) {
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].value < pairs[j].value })

	total := len(pairs)
	totalOnes := 0
	for _, p := range pairs {
		totalOnes += p.label
	}

	bestThreshold := 0.0
	bestImpurity := math.MaxFloat64
	found := false
	leftOnes := 0
	for i := 0; i < total-1; i++ {
		leftOnes += pairs[i].label
		if pairs[i].value == pairs[i+1].value {
			continue
		}
		leftCount := i + 1
		rightCount := total - leftCount
		impurity := weightedGini(leftCount, leftOnes, rightCount, totalOnes-leftOnes)
		if impurity < bestImpurity {
			bestImpurity = impurity
			bestThreshold = midpoint(pairs[i].value, pairs[i+1].value)
			found = true
		}
	}
	return bestThreshold, bestImpurity, found
}

func midpoint(lo, hi float64) float64 {
	mid := lo + (hi-lo)/2
	if mid >= hi || math.IsInf(mid, 0) {
		return lo
	}
	return mid
}

func splitSample(features [][]float64, sample []int, featureIdx int, threshold float64) ([]int, []int) {
	left := make([]int, 0, len(sample))
	right := make([]int, 0, len(sample))
	for _, row := range sample {
		if features[row][featureIdx] <= threshold {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}
	return left, right
}

func shiftChildren(nodes []TreeNode, offset int) []TreeNode {
	for i := range nodes {
		if nodes[i].IsLeaf {
			continue
		}
		nodes[i].LeftChild += offset
		nodes[i].RightChild += offset
	}
	return nodes
}

func weightedGini(leftCount, leftOnes, rightCount, rightOnes int) float64 {
	total := float64(leftCount + rightCount)
	return (float64(leftCount)/total)*gini(leftCount, leftOnes) + (float64(rightCount)/total)*gini(rightCount, rightOnes)
}

func gini(count, ones int) float64 {
	if count == 0 {
		return 0
	}
	p := float64(ones) / float64(count)
	return 2 * p * (1 - p)
}

func countPositive(labels []int, sample []int) int {
	ones := 0
	for _, row := range sample {
		ones += labels[row]
	}
	return ones
}

// majorityLabel breaks ties towards class 0.
func majorityLabel(prob float64) int {
	if prob > 0.5 {
		return 1
	}
	return 0
}

func validateTrainingSet(features [][]float64, labels []int) (int, error) {
	if len(features) == 0 || len(labels) == 0 {
		return 0, errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return 0, errors.New("features and labels size mismatch")
	}
	featureCount := len(features[0])
	if featureCount == 0 {
		return 0, errors.New("feature vectors are empty")
	}
	for i, row := range features {
		if len(row) != featureCount {
			return 0, errors.New("feature vectors have inconsistent length")
		}
		if labels[i] != 0 && labels[i] != 1 {
			return 0, errors.New("labels must be 0 or 1")
		}
	}
	return featureCount, nil
}
