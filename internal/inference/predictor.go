package inference

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var ErrInference = errors.New("inference failed")

// Predictor wraps a loaded model. It holds no mutable state and is safe for
// concurrent use.
type Predictor struct {
	model  Model
	source string
}

func NewPredictor(model Model, source string) (*Predictor, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: nil model", ErrModelLoad)
	}
	return &Predictor{model: model, source: source}, nil
}

// LoadPredictor reads and decodes the artifact behind source.
func LoadPredictor(ctx context.Context, source ArtifactSource) (*Predictor, error) {
	reader, err := source.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrModelLoad, source, err)
	}
	defer reader.Close()

	model, err := DecodeArtifact(reader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return NewPredictor(model, source.String())
}

func (predictor *Predictor) Source() string {
	return predictor.source
}

// Predict returns the flare probability rounded to three decimals.
func (predictor *Predictor) Predict(features Features) (float64, error) {
	vector := features.Vector()
	for index, value := range vector {
		if !isFinite(value) {
			return 0, fmt.Errorf("%w: feature %s is not finite", ErrInference, FeatureOrder[index])
		}
	}

	proba, err := predictor.model.PredictProba(vector)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInference, err)
	}

	positive := proba[1]
	if !isFinite(positive) || positive < 0 || positive > 1 {
		return 0, fmt.Errorf("%w: model returned probability %v", ErrInference, positive)
	}
	return roundProbability(positive), nil
}

func roundProbability(value float64) float64 {
	return math.Round(value*1000) / 1000
}
