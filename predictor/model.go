// Package predictor loads trained price models and evaluates them on encoded
// feature vectors. Models are trained elsewhere and exported as JSON artifacts;
// once loaded they are immutable and safe for concurrent use.
package predictor

import (
	"errors"
	"fmt"
	"math"
)

// ErrFeatureCount is returned when a feature vector has the wrong length.
var ErrFeatureCount = errors.New("wrong number of features")

// ErrNonFinite is returned when a feature value is NaN or infinite.
var ErrNonFinite = errors.New("feature value is not finite")

// Regressor predicts a price from a feature vector in Features() order.
type Regressor interface {
	Predict(features []float64) (float64, error)
	Features() []string
	Characteristics() map[string]any
	Kind() string
}

// PredictBatch evaluates m on every row of X.
func PredictBatch(m Regressor, X [][]float64) ([]float64, error) {
	out := make([]float64, len(X))
	for i, row := range X {
		y, err := m.Predict(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = y
	}
	return out, nil
}

func checkVector(x []float64, n int) error {
	if len(x) != n {
		return fmt.Errorf("%w: got %d, want %d", ErrFeatureCount, len(x), n)
	}
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: index %d", ErrNonFinite, i)
		}
	}
	return nil
}

func copyStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
