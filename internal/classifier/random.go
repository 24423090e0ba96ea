package classifier

import (
	"math/rand"
)

// Random stands in for a missing model and returns arbitrary classes with
// normalized random probabilities.
type Random struct {
	rng *rand.Rand
}

func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (r *Random) Predict(rows [][]float64) ([]int, error) {
	out := make([]int, len(rows))
	for i := range out {
		out[i] = r.rng.Intn(Classes)
	}
	return out, nil
}

func (r *Random) PredictProba(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i := range out {
		p := make([]float64, Classes)
		sum := 0.0
		for j := range p {
			p[j] = r.rng.Float64()
			sum += p[j]
		}
		if sum == 0 {
			p[0], sum = 1, 1
		}
		for j := range p {
			p[j] /= sum
		}
		out[i] = p
	}
	return out, nil
}

// LoadOrRandom loads the model at path. If that fails it returns a Random
// classifier, demo set, and the load error for reporting.
func LoadOrRandom(path string, seed int64) (c Classifier, demo bool, err error) {
	l, err := LoadLinear(path)
	if err != nil {
		return NewRandom(seed), true, err
	}
	return l, false, nil
}
