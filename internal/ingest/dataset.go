package ingest

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Table holds the rows contributed by one recording file.
type Table struct {
	File      string
	SubjectID int
	Emotion   Emotion
	// Samples is samples-by-channels, or nil for a recording with no samples.
	Samples *mat.Dense
}

// Rows returns the number of samples.
func (t *Table) Rows() int {
	if t.Samples == nil {
		return 0
	}
	r, _ := t.Samples.Dims()
	return r
}

// ChannelColumns returns ch_1 through ch_n.
func ChannelColumns(n int) []string {
	cols := make([]string, n)
	for i := range cols {
		cols[i] = "ch_" + strconv.Itoa(i+1)
	}
	return cols
}

// Header is the column order of the consolidated dataset.
func Header() []string {
	return append([]string{"subject_id", "emotion"}, ChannelColumns(Channels)...)
}

// Dataset is the concatenation of per-file tables in enumeration order.
type Dataset struct {
	Tables []*Table
}

// Empty reports whether no file survived filtering.
func (ds *Dataset) Empty() bool {
	return len(ds.Tables) == 0
}

// Rows returns the total number of samples.
func (ds *Dataset) Rows() int {
	n := 0
	for _, t := range ds.Tables {
		n += t.Rows()
	}
	return n
}

// Each calls fn for every row in order. The channel slice is reused between
// calls.
func (ds *Dataset) Each(fn func(subjectID int, emotion Emotion, channels []float64) error) error {
	row := make([]float64, Channels)
	for _, t := range ds.Tables {
		for i := 0; i < t.Rows(); i++ {
			mat.Row(row, i, t.Samples)
			if err := fn(t.SubjectID, t.Emotion, row); err != nil {
				return err
			}
		}
	}
	return nil
}

// FormatValue renders a sample the way pandas writes floats to CSV: integral
// values keep a ".0", magnitudes from 1e16 up or below 1e-4 switch to
// exponent notation, and NaN becomes an empty cell.
func FormatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	if abs := math.Abs(v); abs >= 1e16 || (abs != 0 && abs < 1e-4) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// WriteCSV writes the header and every row as comma-separated text.
func (ds *Dataset) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return err
	}
	record := make([]string, 2+Channels)
	err := ds.Each(func(subjectID int, emotion Emotion, channels []float64) error {
		record[0] = strconv.Itoa(subjectID)
		record[1] = string(emotion)
		for j, v := range channels {
			record[2+j] = FormatValue(v)
		}
		return cw.Write(record)
	})
	if err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the dataset to path. The file only appears once it has
// been written completely.
func (ds *Dataset) WriteFile(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".eeg-dataset-*.csv")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("create output: %w", err)
	}
	bw := bufio.NewWriter(tmp)
	if err := ds.WriteCSV(bw); err != nil {
		tmp.Close()
		return fmt.Errorf("write output: %w", err)
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
