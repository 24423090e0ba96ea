package classifier

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// labelColumns are dropped from uploaded tables before prediction.
var labelColumns = []string{"subject_id", "emotion"}

var ErrRecordNotFound = errors.New("record not found")

// Table is an uploaded feature table.
type Table struct {
	df dataframe.DataFrame
}

// ReadTable parses a CSV table with a header row.
func ReadTable(r io.Reader) (*Table, error) {
	df := dataframe.ReadCSV(r)
	if df.Err != nil {
		return nil, fmt.Errorf("read table: %w", df.Err)
	}
	return &Table{df: df}, nil
}

// Rows returns the number of records.
func (t *Table) Rows() int {
	return t.df.Nrow()
}

// Columns returns the header.
func (t *Table) Columns() []string {
	return t.df.Names()
}

// FindSubject returns the index of the first record whose subject_id
// column reads as subject.
func (t *Table) FindSubject(subject string) (int, error) {
	if !slices.Contains(t.df.Names(), "subject_id") {
		return 0, fmt.Errorf("%w: table has no subject_id column", ErrRecordNotFound)
	}
	for i, v := range t.df.Col("subject_id").Records() {
		if v == subject {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: no row with subject_id %s", ErrRecordNotFound, subject)
}

// Features returns the model input of record row: every column except the
// label columns, which must number exactly Features and be numeric.
func (t *Table) Features(row int) ([]float64, error) {
	if row < 0 || row >= t.df.Nrow() {
		return nil, fmt.Errorf("%w: row %d of %d", ErrRecordNotFound, row, t.df.Nrow())
	}
	var drop []string
	for _, name := range t.df.Names() {
		if slices.Contains(labelColumns, name) {
			drop = append(drop, name)
		}
	}
	features := t.df
	if len(drop) > 0 {
		features = t.df.Drop(drop)
	}
	if features.Ncol() != Features {
		return nil, fmt.Errorf("%w: table has %d feature columns, want %d", ErrFeatureCount, features.Ncol(), Features)
	}
	out := make([]float64, Features)
	for c, name := range features.Names() {
		col := features.Col(name)
		if col.Type() != series.Int && col.Type() != series.Float {
			return nil, fmt.Errorf("column %s is %s, not numeric", name, col.Type())
		}
		out[c] = col.Elem(row).Float()
	}
	return out, nil
}
