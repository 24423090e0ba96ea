// Package ingest converts a directory of raw EEG recordings into one labeled
// samples-by-channels dataset.
package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/tedpearson/eeg-emotion/internal/recording"
)

// Options configure a run.
type Options struct {
	SourceDir string
	Extension string
	// SignalVariable overrides auto-detection when set.
	SignalVariable string
}

// FileResult is the outcome for one file: a table, or a skip reason.
type FileResult struct {
	File   string
	Table  *Table
	Skip   SkipReason
	Detail string
}

// Skipped reports whether the file contributed nothing.
func (r FileResult) Skipped() bool {
	return r.Skip != SkipNone
}

func skip(file string, reason SkipReason, detail string) FileResult {
	return FileResult{File: file, Skip: reason, Detail: detail}
}

// Summary describes a finished run.
type Summary struct {
	Found    int
	Variable string
	Results  []FileResult
	Dataset  *Dataset
}

// Processed returns the number of files that contributed a table.
func (s *Summary) Processed() int {
	return len(s.Dataset.Tables)
}

// SkippedBy counts skipped files per reason.
func (s *Summary) SkippedBy() map[SkipReason]int {
	counts := make(map[SkipReason]int)
	for _, r := range s.Results {
		if r.Skipped() {
			counts[r.Skip]++
		}
	}
	return counts
}

// Ingestor runs the conversion. It processes one file at a time.
type Ingestor struct {
	opts   Options
	loader recording.Loader
	detect DetectFunc
	log    *zap.Logger
}

// New returns an Ingestor. A nil logger discards output.
func New(opts Options, loader recording.Loader, log *zap.Logger) *Ingestor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ingestor{
		opts:   opts,
		loader: loader,
		detect: LargestMatrix,
		log:    log,
	}
}

// WithDetector replaces the auto-detection strategy.
func (ing *Ingestor) WithDetector(fn DetectFunc) *Ingestor {
	ing.detect = fn
	return ing
}

// Run scans the source directory and processes every candidate file in
// order. Only configuration problems are returned as errors; per-file
// failures are recorded in the summary. An empty dataset is not an error.
func (ing *Ingestor) Run() (*Summary, error) {
	files, err := FindRecordings(ing.opts.SourceDir, ing.opts.Extension)
	if err != nil {
		return nil, err
	}
	ing.log.Info("found recording files", zap.Int("count", len(files)), zap.String("dir", ing.opts.SourceDir))

	sel := Selection{Name: ing.opts.SignalVariable}
	sum := &Summary{Found: len(files), Dataset: &Dataset{}}
	for i, file := range files {
		ing.log.Debug("processing file",
			zap.Int("index", i+1), zap.Int("total", len(files)), zap.String("file", filepath.Base(file)))
		var res FileResult
		res, sel, err = ing.processFile(file, sel)
		if err != nil {
			return nil, err
		}
		sum.Results = append(sum.Results, res)
		if res.Skipped() {
			ing.log.Warn("skipping file",
				zap.String("file", filepath.Base(file)),
				zap.Stringer("reason", res.Skip),
				zap.String("detail", res.Detail))
			continue
		}
		sum.Dataset.Tables = append(sum.Dataset.Tables, res.Table)
	}
	sum.Variable = sel.Name
	return sum, nil
}

// processFile handles one file with the current selection and returns the
// selection to use from then on.
func (ing *Ingestor) processFile(path string, sel Selection) (FileResult, Selection, error) {
	name := filepath.Base(path)
	subjectID, emotion, err := ParseFilename(name)
	if err != nil {
		return skip(name, SkipFilename, err.Error()), sel, nil
	}

	payload, err := ing.loader.Load(path)
	if err != nil {
		return skip(name, SkipLoad, err.Error()), sel, nil
	}

	if !sel.Resolved() {
		detected, ok := ing.detect(payload)
		if !ok {
			err := fmt.Errorf("%w: variables found: %s; set signal_variable_name explicitly",
				ErrNoSignalVariable, joinNames(payload.Names()))
			return FileResult{}, sel, &ConfigurationError{Op: "detect signal variable", Path: path, Err: err}
		}
		sel = Selection{Name: detected}
		ing.log.Info("auto-detected signal variable", zap.String("variable", detected), zap.String("file", name))
	}

	array, ok := payload.Lookup(sel.Name)
	if !ok {
		return skip(name, SkipMissingVariable,
			"variable "+sel.Name+" not found; available: "+joinNames(payload.Names())), sel, nil
	}

	samples, err := Normalize(array, Channels)
	if err != nil {
		return skip(name, SkipChannelCount, err.Error()), sel, nil
	}
	table := &Table{
		File:      name,
		SubjectID: subjectID,
		Emotion:   emotion,
		Samples:   samples,
	}
	return FileResult{File: name, Table: table}, sel, nil
}

func joinNames(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}
