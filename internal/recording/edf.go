package recording

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ishiikurisu/edf"
)

// EDFVariable is the name under which EDF signals are exposed.
const EDFVariable = "signals"

// ErrNotEDF is returned when a file does not carry a valid EDF header.
var ErrNotEDF = errors.New("not an EDF file")

const (
	edfFixedHeader  = 256
	edfSignalHeader = 256
)

// LoadEDF reads an EDF recording and exposes its physical signals as one
// (channels, samples) array. Annotation and checksum channels are dropped,
// and every remaining channel must share the same sample count.
func LoadEDF(path string) (p *Payload, err error) {
	if err := checkEDFHeader(path); err != nil {
		return nil, err
	}
	// the edf reader panics on malformed input
	defer func() {
		if r := recover(); r != nil {
			p = nil
			err = fmt.Errorf("read edf %s: %v", path, r)
		}
	}()
	data := edf.ReadFile(path)
	a, err := signalArray(data.GetLabels(), data.PhysicalRecords)
	if err != nil {
		return nil, fmt.Errorf("edf %s: %w", path, err)
	}
	return &Payload{Arrays: []Array{a}}, nil
}

// checkEDFHeader validates the fixed header before the file is handed to
// the edf reader: version "0", a numeric header size and signal count, and
// a header size that matches the signal count and fits in the file.
func checkEDFHeader(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return err
	}
	header := make([]byte, edfFixedHeader)
	if _, err := io.ReadFull(f, header); err != nil {
		return fmt.Errorf("%w: %s: %d byte file", ErrNotEDF, path, st.Size())
	}
	field := func(from, to int) string {
		return strings.TrimSpace(string(header[from:to]))
	}
	if v := field(0, 8); v != "0" {
		return fmt.Errorf("%w: %s: version %q", ErrNotEDF, path, v)
	}
	size, err := strconv.Atoi(field(184, 192))
	if err != nil {
		return fmt.Errorf("%w: %s: header size %q", ErrNotEDF, path, field(184, 192))
	}
	signals, err := strconv.Atoi(field(252, 256))
	if err != nil || signals <= 0 {
		return fmt.Errorf("%w: %s: signal count %q", ErrNotEDF, path, field(252, 256))
	}
	if size != edfFixedHeader+signals*edfSignalHeader || int64(size) > st.Size() {
		return fmt.Errorf("%w: %s: header size %d for %d signals in %d bytes", ErrNotEDF, path, size, signals, st.Size())
	}
	return nil
}

// signalArray interleaves per-channel series into one column-major
// (channels, samples) array.
func signalArray(labels []string, records [][]float64) (Array, error) {
	signals := make([][]float64, 0, len(records))
	for i, series := range records {
		if i < len(labels) {
			name := strings.TrimSpace(labels[i])
			if name == "EDF Annotations" || name == "Crc16" {
				continue
			}
		}
		signals = append(signals, series)
	}
	if len(signals) == 0 {
		return Array{}, errors.New("no signal channels")
	}
	samples := len(signals[0])
	for i, s := range signals {
		if len(s) != samples {
			return Array{}, fmt.Errorf("channel %d has %d samples, want %d", i+1, len(s), samples)
		}
	}
	channels := len(signals)
	values := make([]float64, channels*samples)
	for ch, s := range signals {
		for j, v := range s {
			values[ch+j*channels] = v
		}
	}
	return Array{
		Name:    EDFVariable,
		Dims:    []int{channels, samples},
		Numeric: true,
		Data:    values,
	}, nil
}
