package inference

import (
	"errors"
	"fmt"
	"math"
)

// Model scores one feature vector and returns the two class probabilities.
// Index 1 is the positive (flare) class.
type Model interface {
	PredictProba(vector []float64) ([2]float64, error)
}

type logisticModel struct {
	intercept    float64
	coefficients []float64
}

func (model *logisticModel) PredictProba(vector []float64) ([2]float64, error) {
	if len(vector) != len(model.coefficients) {
		return [2]float64{}, fmt.Errorf("expected %d features, got %d", len(model.coefficients), len(vector))
	}
	margin := model.intercept
	for index, coefficient := range model.coefficients {
		margin += coefficient * vector[index]
	}
	return probabilities(sigmoid(margin)), nil
}

type treeNode struct {
	feature   int
	threshold float64
	left      int
	right     int
	leaf      float64
	isLeaf    bool
}

// treeEnsemble is a boosted binary classifier: leaf margins of every tree are
// summed onto the base margin and squashed with the logistic function.
type treeEnsemble struct {
	baseMargin float64
	trees      [][]treeNode
	features   int
}

func (model *treeEnsemble) PredictProba(vector []float64) ([2]float64, error) {
	if len(vector) != model.features {
		return [2]float64{}, fmt.Errorf("expected %d features, got %d", model.features, len(vector))
	}
	margin := model.baseMargin
	for treeIndex, tree := range model.trees {
		leaf, err := walkTree(tree, vector)
		if err != nil {
			return [2]float64{}, fmt.Errorf("tree %d: %w", treeIndex, err)
		}
		margin += leaf
	}
	return probabilities(sigmoid(margin)), nil
}

func walkTree(tree []treeNode, vector []float64) (float64, error) {
	index := 0
	for steps := 0; steps <= len(tree); steps++ {
		node := tree[index]
		if node.isLeaf {
			return node.leaf, nil
		}
		if vector[node.feature] < node.threshold {
			index = node.left
		} else {
			index = node.right
		}
	}
	return 0, errors.New("tree walk did not reach a leaf")
}

func sigmoid(margin float64) float64 {
	return 1 / (1 + math.Exp(-margin))
}

func probabilities(positive float64) [2]float64 {
	return [2]float64{1 - positive, positive}
}
