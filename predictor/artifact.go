package predictor

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"airbnb-pricer/models"
)

// Artifact kinds.
const (
	KindLinear       = "linear"
	KindTreeEnsemble = "tree_ensemble"
)

// Artifact is the JSON form of an exported model.
type Artifact struct {
	Kind     string          `json:"kind"`
	Features []string        `json:"features"`
	Linear   *LinearParams   `json:"linear,omitempty"`
	Trees    *EnsembleParams `json:"trees,omitempty"`
}

// LinearParams are the coefficients of a linear artifact.
type LinearParams struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// EnsembleParams are the trees and hyperparameters of a boosted artifact.
type EnsembleParams struct {
	BaseScore    float64 `json:"base_score"`
	LearningRate float64 `json:"learning_rate"`
	MaxDepth     int     `json:"max_depth"`
	Trees        []Tree  `json:"trees"`
}

// LoadArtifact decodes an artifact and builds its model. The artifact must list
// exactly models.FeatureColumns, in order.
func LoadArtifact(r io.Reader) (Regressor, error) {
	var a Artifact
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	return a.Build()
}

// LoadArtifactBytes is LoadArtifact over a byte slice.
func LoadArtifactBytes(b []byte) (Regressor, error) {
	return LoadArtifact(bytes.NewReader(b))
}

// LoadFile reads and builds the artifact at path.
func LoadFile(path string) (Regressor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model %q: %w", path, err)
	}
	defer f.Close()
	return LoadArtifact(f)
}

// Build validates the artifact and constructs its model.
func (a *Artifact) Build() (Regressor, error) {
	if err := checkFeatureOrder(a.Features); err != nil {
		return nil, err
	}
	switch a.Kind {
	case KindLinear:
		if a.Linear == nil {
			return nil, fmt.Errorf("model artifact: kind %q without linear parameters", a.Kind)
		}
		return NewLinearModel(a.Features, a.Linear.Weights, a.Linear.Bias)
	case KindTreeEnsemble:
		if a.Trees == nil {
			return nil, fmt.Errorf("model artifact: kind %q without trees", a.Kind)
		}
		p := a.Trees
		return NewTreeEnsemble(a.Features, p.BaseScore, p.LearningRate, p.MaxDepth, p.Trees)
	default:
		return nil, fmt.Errorf("model artifact: unknown kind %q", a.Kind)
	}
}

// Encode writes the artifact as JSON.
func (a *Artifact) Encode(w io.Writer) error {
	return json.NewEncoder(w).Encode(a)
}

func checkFeatureOrder(features []string) error {
	if len(features) != len(models.FeatureColumns) {
		return fmt.Errorf("model artifact: %d features, want %d", len(features), len(models.FeatureColumns))
	}
	for i, name := range models.FeatureColumns {
		if features[i] != name {
			return fmt.Errorf("model artifact: feature %d is %q, want %q", i, features[i], name)
		}
	}
	return nil
}
