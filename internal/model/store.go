package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/transitlab/railcast/internal/feature"
)

// artifact is the on-disk envelope for a fitted model.
type artifact struct {
	Kind    Kind           `json:"kind"`
	Schema  feature.Schema `json:"schema"`
	SavedAt time.Time      `json:"saved_at"`
	Linear  *LinearModel   `json:"linear,omitempty"`
	Forest  *ForestModel   `json:"forest,omitempty"`
}

// Save writes the model to path atomically via a temp file rename.
func Save(path string, m Regressor) error {
	art := artifact{Kind: m.Kind(), Schema: m.Schema(), SavedAt: time.Now().UTC()}

	switch v := m.(type) {
	case *LinearModel:
		art.Linear = v
	case *ForestModel:
		art.Forest = v
	default:
		return fmt.Errorf("cannot persist model kind %s", m.Kind())
	}

	data, err := json.MarshalIndent(art, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create model directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename model file: %w", err)
	}
	return nil
}

// LoadArtifact reads a persisted model and checks it against the wanted
// schema. A nil wantSchema skips the check.
func LoadArtifact(path string, wantSchema feature.Schema) (Regressor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("%w: corrupt artifact: %v", ErrLoad, err)
	}

	if wantSchema != nil && !art.Schema.Equal(wantSchema) {
		return nil, fmt.Errorf("%w: artifact schema %v, want %v",
			ErrSchemaMismatch, art.Schema, wantSchema)
	}

	switch art.Kind {
	case KindLinear:
		if art.Linear == nil {
			return nil, fmt.Errorf("%w: linear artifact has no payload", ErrLoad)
		}
		art.Linear.schema = art.Schema
		if len(art.Linear.Coeffs) != len(art.Schema)+1 {
			return nil, fmt.Errorf("%w: %d coefficients for %d features",
				ErrLoad, len(art.Linear.Coeffs), len(art.Schema))
		}
		return art.Linear, nil

	case KindRandomForest:
		if art.Forest == nil {
			return nil, fmt.Errorf("%w: forest artifact has no payload", ErrLoad)
		}
		art.Forest.schema = art.Schema
		if len(art.Forest.Trees) == 0 {
			return nil, fmt.Errorf("%w: forest artifact has no trees", ErrLoad)
		}
		return art.Forest, nil
	}
	return nil, fmt.Errorf("%w: unknown kind %q", ErrLoad, art.Kind)
}
