package classifier

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Linear is a multinomial logistic model exported from training as JSON:
// one weight vector and bias per class, softmax over the scores.
type Linear struct {
	weights *mat.Dense
	bias    []float64
}

type linearFile struct {
	Classes int         `json:"classes"`
	Weights [][]float64 `json:"weights"`
	Bias    []float64   `json:"bias"`
}

// NewLinear validates weights (classes × features) and bias (classes).
func NewLinear(weights [][]float64, bias []float64) (*Linear, error) {
	if len(weights) != Classes || len(bias) != Classes {
		return nil, fmt.Errorf("model has %d weight rows and %d biases, want %d", len(weights), len(bias), Classes)
	}
	w := mat.NewDense(Classes, Features, nil)
	for i, row := range weights {
		if len(row) != Features {
			return nil, fmt.Errorf("model class %d has %d weights, want %d", i, len(row), Features)
		}
		w.SetRow(i, row)
	}
	return &Linear{weights: w, bias: append([]float64(nil), bias...)}, nil
}

// LoadLinear reads a model file.
func LoadLinear(path string) (*Linear, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f linearFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse model %s: %w", path, err)
	}
	if f.Classes != 0 && f.Classes != Classes {
		return nil, fmt.Errorf("model %s has %d classes, want %d", path, f.Classes, Classes)
	}
	return NewLinear(f.Weights, f.Bias)
}

func (l *Linear) PredictProba(rows [][]float64) ([][]float64, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	x := mat.NewDense(len(rows), Features, nil)
	for i, row := range rows {
		if len(row) != Features {
			return nil, fmt.Errorf("%w: row %d has %d, want %d", ErrFeatureCount, i, len(row), Features)
		}
		x.SetRow(i, row)
	}
	var scores mat.Dense
	scores.Mul(x, l.weights.T())
	out := make([][]float64, len(rows))
	for i := range out {
		s := mat.Row(nil, i, &scores)
		floats.Add(s, l.bias)
		out[i] = softmax(s)
	}
	return out, nil
}

func (l *Linear) Predict(rows [][]float64) ([]int, error) {
	probs, err := l.PredictProba(rows)
	if err != nil {
		return nil, err
	}
	classes := make([]int, len(probs))
	for i, p := range probs {
		classes[i] = floats.MaxIdx(p)
	}
	return classes, nil
}

func softmax(s []float64) []float64 {
	m := floats.Max(s)
	for i := range s {
		s[i] = math.Exp(s[i] - m)
	}
	floats.Scale(1/floats.Sum(s), s)
	return s
}
