package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"chrotation/fsutil"
)

const artifactFormatVersion = 1

var (
	ErrArtifactCorrupt = errors.New("model artifact corrupt")
	ErrArtifactSchema  = errors.New("model artifact schema mismatch")
)

// Artifact is the on-disk form of a trained Model.
type Artifact struct {
	FormatVersion int            `json:"format_version"`
	ModelType     string         `json:"model_type"`
	Schema        Schema         `json:"schema"`
	Classes       []int          `json:"classes"`
	FeatureStats  FeatureStats   `json:"feature_stats,omitempty"`
	TrainedAt     time.Time      `json:"trained_at"`
	Trees         []TreeArtifact `json:"trees"`
}

type TreeArtifact struct {
	Nodes []TreeNode `json:"nodes"`
}

func (m *Model) Artifact() (Artifact, error) {
	artifact := Artifact{
		FormatVersion: artifactFormatVersion,
		ModelType:     m.modelType,
		Schema:        m.Schema(),
		Classes:       []int{0, 1},
		FeatureStats:  m.stats,
		TrainedAt:     m.trainedAt,
	}
	switch est := m.estimator.(type) {
	case *DecisionTree:
		if len(est.nodes) == 0 {
			return Artifact{}, errors.New("model not trained")
		}
		artifact.Trees = []TreeArtifact{{Nodes: est.Nodes()}}
	case *RandomForest:
		if len(est.trees) == 0 {
			return Artifact{}, errors.New("model not trained")
		}
		for _, tree := range est.trees {
			artifact.Trees = append(artifact.Trees, TreeArtifact{Nodes: tree.Nodes()})
		}
	default:
		return Artifact{}, fmt.Errorf("%w: %T", ErrUnsupportedModel, m.estimator)
	}
	return artifact, nil
}

// Encode writes the model artifact as JSON.
func (m *Model) Encode(w io.Writer) error {
	artifact, err := m.Artifact()
	if err != nil {
		return err
	}
	payload, err := json.Marshal(artifact)
	if err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

// Save writes the model artifact to path, replacing any previous artifact.
func (m *Model) Save(path string) error {
	return fsutil.WriteFileAtomic(path, m.Encode)
}

// LoadModel reads an artifact and checks it was trained on exactly the
// expected ordered schema.
func LoadModel(path string, expected Schema) (*Model, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var artifact Artifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactCorrupt, err)
	}
	model, err := FromArtifact(artifact)
	if err != nil {
		return nil, err
	}
	if len(expected) > 0 && !model.schema.Equal(expected) {
		return nil, fmt.Errorf("%w: artifact has %s, expected %s", ErrArtifactSchema, model.schema, expected)
	}
	return model, nil
}

func FromArtifact(artifact Artifact) (*Model, error) {
	if artifact.FormatVersion != artifactFormatVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", ErrArtifactCorrupt, artifact.FormatVersion)
	}
	if len(artifact.Schema) == 0 {
		return nil, fmt.Errorf("%w: empty schema", ErrArtifactCorrupt)
	}
	if len(artifact.Trees) == 0 {
		return nil, fmt.Errorf("%w: no trees", ErrArtifactCorrupt)
	}

	trees := make([]*DecisionTree, 0, len(artifact.Trees))
	for i, t := range artifact.Trees {
		if err := validateNodes(t.Nodes, len(artifact.Schema)); err != nil {
			return nil, fmt.Errorf("%w: tree %d: %v", ErrArtifactCorrupt, i, err)
		}
		trees = append(trees, &DecisionTree{nodes: t.Nodes})
	}

	var estimator MLModel
	switch artifact.ModelType {
	case ModelTypeDecisionTree:
		if len(trees) != 1 {
			return nil, fmt.Errorf("%w: decision tree artifact with %d trees", ErrArtifactCorrupt, len(trees))
		}
		estimator = trees[0]
	case ModelTypeRandomForest:
		estimator = &RandomForest{config: ForestConfig{NEstimators: len(trees)}, trees: trees}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModel, artifact.ModelType)
	}

	return &Model{
		modelType: artifact.ModelType,
		schema:    append(Schema(nil), artifact.Schema...),
		stats:     artifact.FeatureStats,
		trainedAt: artifact.TrainedAt,
		estimator: estimator,
	}, nil
}

func validateNodes(nodes []TreeNode, featureCount int) error {
	if len(nodes) == 0 {
		return errors.New("empty tree")
	}
	for i, node := range nodes {
		if node.Prob < 0 || node.Prob > 1 {
			return fmt.Errorf("node %d: probability %v out of range", i, node.Prob)
		}
		if node.ClassLabel != 0 && node.ClassLabel != 1 {
			return fmt.Errorf("node %d: class label %d is not binary", i, node.ClassLabel)
		}
		if node.IsLeaf {
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= featureCount {
			return fmt.Errorf("node %d: feature index %d out of range", i, node.FeatureIdx)
		}
		if node.LeftChild <= i || node.LeftChild >= len(nodes) {
			return fmt.Errorf("node %d: bad left child %d", i, node.LeftChild)
		}
		if node.RightChild <= i || node.RightChild >= len(nodes) {
			return fmt.Errorf("node %d: bad right child %d", i, node.RightChild)
		}
	}
	return nil
}
