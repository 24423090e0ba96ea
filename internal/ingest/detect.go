package ingest

import "github.com/tedpearson/eeg-emotion/internal/recording"

// DetectFunc chooses the signal variable of a payload. ok is false when no
// candidate exists.
type DetectFunc func(p *recording.Payload) (name string, ok bool)

// LargestMatrix picks the numeric array with more than one dimension and
// the largest element count. Ties go to the earliest variable in the file,
// and empty arrays never qualify.
func LargestMatrix(p *recording.Payload) (string, bool) {
	best, bestSize := "", 0
	for _, a := range p.Arrays {
		if !a.Numeric || len(a.Dims) < 2 {
			continue
		}
		if size := a.Size(); size > bestSize {
			best, bestSize = a.Name, size
		}
	}
	return best, bestSize > 0
}

// Selection is the run-scoped signal variable choice. The zero value is
// unset; once resolved it is reused verbatim for every later file.
type Selection struct {
	Name string
}

// Resolved reports whether a variable has been chosen.
func (s Selection) Resolved() bool {
	return s.Name != ""
}
