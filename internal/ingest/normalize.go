package ingest

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/tedpearson/eeg-emotion/internal/recording"
)

// Channels is the fixed number of EEG channels in the dataset.
const Channels = 32

// Normalize turns a signal array into a samples-by-channels matrix. An array
// whose first dimension equals channels is treated as channels-by-samples
// and transposed. A nil matrix with a nil error means zero samples.
func Normalize(a recording.Array, channels int) (*mat.Dense, error) {
	if !a.Numeric {
		return nil, fmt.Errorf("%w: variable %q is not numeric", ErrChannelCount, a.Name)
	}
	if len(a.Dims) != 2 {
		return nil, fmt.Errorf("%w: variable %q has shape %v, want 2 dimensions", ErrChannelCount, a.Name, a.Dims)
	}
	rows, cols := a.Dims[0], a.Dims[1]
	transpose := rows == channels
	if transpose {
		rows, cols = cols, rows
	}
	if cols != channels {
		return nil, fmt.Errorf("%w: expected %d channels, found %d", ErrChannelCount, channels, cols)
	}
	if rows == 0 {
		return nil, nil
	}
	// column-major data of an r×c array reads as its c×r transpose
	stored := mat.NewDense(a.Dims[1], a.Dims[0], a.Data)
	if transpose {
		return stored, nil
	}
	return mat.DenseCopyOf(stored.T()), nil
}
