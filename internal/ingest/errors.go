package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks fatal problems that abort a whole run.
	ErrConfiguration = errors.New("configuration error")

	// ErrSourceNotFound is returned when the source directory does not exist.
	ErrSourceNotFound = errors.New("source directory not found")

	// ErrNoRecordings is returned when the source directory holds no raw files.
	ErrNoRecordings = errors.New("no recording files found")

	// ErrNoSignalVariable is returned when the first loaded file has no
	// multi-dimensional numeric array to pin as the signal variable.
	ErrNoSignalVariable = errors.New("could not detect the signal variable")

	// ErrChannelCount is returned when an array does not normalize to the
	// expected number of channel columns.
	ErrChannelCount = errors.New("unexpected channel count")

	// ErrNoData reports that no file survived filtering. It is not fatal.
	ErrNoData = errors.New("no data was processed")
)

// ConfigurationError is a fatal ingest failure.
type ConfigurationError struct {
	Op   string // operation being performed
	Path string // file or directory involved
	Err  error
}

func (e *ConfigurationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Is makes every ConfigurationError match ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// SkipReason classifies why a single file contributed no rows.
type SkipReason int

const (
	SkipNone SkipReason = iota
	SkipFilename
	SkipLoad
	SkipMissingVariable
	SkipChannelCount
)

func (r SkipReason) String() string {
	switch r {
	case SkipNone:
		return "none"
	case SkipFilename:
		return "unparsable filename"
	case SkipLoad:
		return "load failure"
	case SkipMissingVariable:
		return "missing signal variable"
	case SkipChannelCount:
		return "wrong channel count"
	}
	return fmt.Sprintf("SkipReason(%d)", int(r))
}
