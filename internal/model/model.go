package model

import (
	"errors"
	"fmt"

	"github.com/transitlab/railcast/internal/feature"
)

var (
	// ErrLoad reports an unreadable or corrupt model artifact.
	ErrLoad = errors.New("model: load failed")

	// ErrInsufficientData reports a training set below the configured minimum.
	ErrInsufficientData = errors.New("model: insufficient training data")

	// ErrSchemaMismatch reports a feature vector or artifact whose schema
	// disagrees with the model's.
	ErrSchemaMismatch = errors.New("model: schema mismatch")
)

// Kind names a regressor family.
type Kind string

const (
	KindRandomForest Kind = "random_forest"
	KindLinear       Kind = "linear"
)

// ParseKind validates a kind string from config.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindRandomForest, KindLinear:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown model kind: %s", s)
}

// Regressor predicts a target value from a feature vector. Both model
// families implement it; callers select the family through config.
type Regressor interface {
	Kind() Kind
	Schema() feature.Schema
	Predict(features []float64) (float64, error)
}

// ImportanceProvider is implemented by models that can rank their
// features by contribution.
type ImportanceProvider interface {
	Importances() ([]float64, error)
}

// CoefficientProvider exposes fitted coefficients, intercept first.
type CoefficientProvider interface {
	Coefficients() []float64
}

// Options parameterize fitting.
type Options struct {
	Kind            Kind
	Seed            int64
	NEstimators     int
	MaxDepth        int
	MinSamplesLeaf  int
	MinObservations int
}

// DefaultOptions mirrors the config defaults.
func DefaultOptions() Options {
	return Options{
		Kind:            KindRandomForest,
		Seed:            42,
		NEstimators:     100,
		MaxDepth:        10,
		MinSamplesLeaf:  1,
		MinObservations: 2,
	}
}

func checkVector(schema feature.Schema, features []float64) error {
	if len(features) != len(schema) {
		return fmt.Errorf("%w: got %d features, model expects %d",
			ErrSchemaMismatch, len(features), len(schema))
	}
	return nil
}
