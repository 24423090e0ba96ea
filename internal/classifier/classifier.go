// Package classifier predicts an emotion label for one EEG record using a
// pre-trained model, falling back to random output when no model is
// available.
package classifier

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/tedpearson/eeg-emotion/internal/ingest"
)

// Features is the number of values a model consumes per row.
const Features = ingest.Channels

// Classes is the number of classes models must produce.
const Classes = 3

// classLabels maps model class indices to emotions.
var classLabels = [Classes]ingest.Emotion{ingest.Fear, ingest.Happy, ingest.Sad}

// Label returns the emotion for a class index, or Unknown.
func Label(class int) ingest.Emotion {
	if class < 0 || class >= Classes {
		return ingest.Unknown
	}
	return classLabels[class]
}

// Labels returns the emotions in class order.
func Labels() []ingest.Emotion {
	return append([]ingest.Emotion(nil), classLabels[:]...)
}

// Classifier predicts a class index per row.
type Classifier interface {
	Predict(rows [][]float64) ([]int, error)
}

// ProbabilityClassifier also reports class probabilities per row.
type ProbabilityClassifier interface {
	Classifier
	PredictProba(rows [][]float64) ([][]float64, error)
}

// Prediction is the outcome for one record.
type Prediction struct {
	Class int
	Label ingest.Emotion
	// Probabilities is nil when the classifier cannot report them.
	Probabilities []float64
}

var ErrFeatureCount = errors.New("wrong number of features")

// PredictRecord classifies a single row. When probabilities are available
// the class is their argmax.
func PredictRecord(c Classifier, row []float64) (Prediction, error) {
	if len(row) != Features {
		return Prediction{}, fmt.Errorf("%w: got %d, want %d", ErrFeatureCount, len(row), Features)
	}
	rows := [][]float64{row}
	if pc, ok := c.(ProbabilityClassifier); ok {
		probs, err := pc.PredictProba(rows)
		if err != nil {
			return Prediction{}, err
		}
		class := floats.MaxIdx(probs[0])
		return Prediction{Class: class, Label: Label(class), Probabilities: probs[0]}, nil
	}
	classes, err := c.Predict(rows)
	if err != nil {
		return Prediction{}, err
	}
	return Prediction{Class: classes[0], Label: Label(classes[0])}, nil
}
