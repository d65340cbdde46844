package inference

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const (
	ArtifactFormat = "endocare-model/v1"

	ModelTypeLogistic     = "logistic"
	ModelTypeTreeEnsemble = "tree_ensemble"

	maxArtifactBytes = 64 << 20
)

var ErrModelLoad = errors.New("model load failed")

// Artifact is the exported form of a trained flare classifier.
type Artifact struct {
	Format       string          `json:"format"`
	ModelType    string          `json:"model_type"`
	NFeatures    int             `json:"n_features"`
	FeatureNames []string        `json:"feature_names,omitempty"`
	Logistic     *LogisticParams `json:"logistic,omitempty"`
	Ensemble     *EnsembleParams `json:"ensemble,omitempty"`
}

type LogisticParams struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

type EnsembleParams struct {
	BaseMargin float64        `json:"base_margin"`
	Trees      [][]TreeNodeDef `json:"trees"`
}

// TreeNodeDef is either a split (Feature, Threshold, Left, Right) or a leaf
// carrying a margin contribution.
type TreeNodeDef struct {
	Feature   int      `json:"feature"`
	Threshold float64  `json:"threshold"`
	Left      int      `json:"left"`
	Right     int      `json:"right"`
	Leaf      *float64 `json:"leaf,omitempty"`
}

// DecodeArtifact reads an artifact document and builds the model it
// describes. Every failure wraps ErrModelLoad.
func DecodeArtifact(reader io.Reader) (Model, error) {
	var artifact Artifact
	if err := json.NewDecoder(io.LimitReader(reader, maxArtifactBytes)).Decode(&artifact); err != nil {
		return nil, fmt.Errorf("%w: decode artifact: %w", ErrModelLoad, err)
	}
	model, err := artifact.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}
	return model, nil
}

func (artifact Artifact) Build() (Model, error) {
	if artifact.Format != ArtifactFormat {
		return nil, fmt.Errorf("unsupported artifact format %q", artifact.Format)
	}
	if artifact.NFeatures != FeatureCount {
		return nil, fmt.Errorf("artifact expects %d features, scorer provides %d", artifact.NFeatures, FeatureCount)
	}
	if err := checkFeatureNames(artifact.FeatureNames); err != nil {
		return nil, err
	}

	switch artifact.ModelType {
	case ModelTypeLogistic:
		return buildLogistic(artifact.Logistic)
	case ModelTypeTreeEnsemble:
		return buildEnsemble(artifact.Ensemble)
	default:
		return nil, fmt.Errorf("unsupported model type %q", artifact.ModelType)
	}
}

func checkFeatureNames(names []string) error {
	if len(names) == 0 {
		return nil
	}
	if len(names) != FeatureCount {
		return fmt.Errorf("artifact lists %d feature names, expected %d", len(names), FeatureCount)
	}
	for index, name := range names {
		if name != FeatureOrder[index] {
			return fmt.Errorf("feature %d is %q in artifact, expected %q", index, name, FeatureOrder[index])
		}
	}
	return nil
}

func buildLogistic(params *LogisticParams) (Model, error) {
	if params == nil {
		return nil, errors.New("logistic artifact has no logistic parameters")
	}
	if len(params.Coefficients) != FeatureCount {
		return nil, fmt.Errorf("logistic artifact has %d coefficients, expected %d", len(params.Coefficients), FeatureCount)
	}
	if !isFinite(params.Intercept) {
		return nil, errors.New("logistic intercept is not finite")
	}
	for index, coefficient := range params.Coefficients {
		if !isFinite(coefficient) {
			return nil, fmt.Errorf("logistic coefficient %d is not finite", index)
		}
	}
	return &logisticModel{
		intercept:    params.Intercept,
		coefficients: append([]float64(nil), params.Coefficients...),
	}, nil
}

func buildEnsemble(params *EnsembleParams) (Model, error) {
	if params == nil {
		return nil, errors.New("tree_ensemble artifact has no ensemble parameters")
	}
	if len(params.Trees) == 0 {
		return nil, errors.New("tree_ensemble artifact has no trees")
	}
	if !isFinite(params.BaseMargin) {
		return nil, errors.New("ensemble base margin is not finite")
	}

	trees := make([][]treeNode, 0, len(params.Trees))
	for treeIndex, definition := range params.Trees {
		tree, err := buildTree(definition)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", treeIndex, err)
		}
		trees = append(trees, tree)
	}
	return &treeEnsemble{baseMargin: params.BaseMargin, trees: trees, features: FeatureCount}, nil
}

// buildTree requires children to follow their parent so every walk
// terminates.
func buildTree(definition []TreeNodeDef) ([]treeNode, error) {
	if len(definition) == 0 {
		return nil, errors.New("empty tree")
	}
	nodes := make([]treeNode, len(definition))
	for index, node := range definition {
		if node.Leaf != nil {
			if !isFinite(*node.Leaf) {
				return nil, fmt.Errorf("node %d leaf is not finite", index)
			}
			nodes[index] = treeNode{leaf: *node.Leaf, isLeaf: true}
			continue
		}
		if node.Feature < 0 || node.Feature >= FeatureCount {
			return nil, fmt.Errorf("node %d splits on feature %d outside 0..%d", index, node.Feature, FeatureCount-1)
		}
		if !isFinite(node.Threshold) {
			return nil, fmt.Errorf("node %d threshold is not finite", index)
		}
		for _, child := range []int{node.Left, node.Right} {
			if child <= index || child >= len(definition) {
				return nil, fmt.Errorf("node %d has invalid child %d", index, child)
			}
		}
		nodes[index] = treeNode{
			feature:   node.Feature,
			threshold: node.Threshold,
			left:      node.Left,
			right:     node.Right,
		}
	}
	return nodes, nil
}
