package predictor

import "fmt"

// LinearModel is y = w·x + b.
type LinearModel struct {
	features []string
	weights  []float64
	bias     float64
}

// NewLinearModel builds a linear model over the named features.
func NewLinearModel(features []string, weights []float64, bias float64) (*LinearModel, error) {
	if len(features) != len(weights) {
		return nil, fmt.Errorf("linear model: %d weights for %d features", len(weights), len(features))
	}
	w := make([]float64, len(weights))
	copy(w, weights)
	return &LinearModel{features: copyStrings(features), weights: w, bias: bias}, nil
}

func (m *LinearModel) Predict(x []float64) (float64, error) {
	if err := checkVector(x, len(m.weights)); err != nil {
		return 0, err
	}
	y := m.bias
	for i, w := range m.weights {
		y += w * x[i]
	}
	return y, nil
}

func (m *LinearModel) Features() []string { return copyStrings(m.features) }

func (m *LinearModel) Kind() string { return KindLinear }

func (m *LinearModel) Characteristics() map[string]any {
	return map[string]any{
		"kind":       KindLinear,
		"n_features": len(m.weights),
		"bias":       m.bias,
	}
}
