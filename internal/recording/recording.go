// Package recording loads raw EEG recordings into a uniform payload of named
// numeric arrays, whatever container format they arrived in.
package recording

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tedpearson/eeg-emotion/internal/matfile"
)

// ErrUnsupportedFormat is returned for file extensions without a loader.
var ErrUnsupportedFormat = errors.New("unsupported recording format")

// Array is one named variable of a recording. Data is column-major and nil
// when the variable is not numeric.
type Array struct {
	Name    string
	Dims    []int
	Numeric bool
	Data    []float64
}

// Size returns the total element count.
func (a Array) Size() int {
	if len(a.Dims) == 0 {
		return 0
	}
	n := 1
	for _, d := range a.Dims {
		n *= d
	}
	return n
}

// Payload is the decoded content of a recording file, in file order.
type Payload struct {
	Arrays []Array
}

// Lookup returns the array called name.
func (p *Payload) Lookup(name string) (Array, bool) {
	for _, a := range p.Arrays {
		if a.Name == name {
			return a, true
		}
	}
	return Array{}, false
}

// Names lists variable names in file order.
func (p *Payload) Names() []string {
	names := make([]string, len(p.Arrays))
	for i, a := range p.Arrays {
		names[i] = a.Name
	}
	return names
}

// Loader decodes a recording file.
type Loader interface {
	Load(path string) (*Payload, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(path string) (*Payload, error)

func (f LoaderFunc) Load(path string) (*Payload, error) {
	return f(path)
}

// ForExtension picks the loader for a raw-file extension such as ".mat".
func ForExtension(ext string) (Loader, error) {
	switch strings.ToLower(ext) {
	case ".mat":
		return LoaderFunc(LoadMAT), nil
	case ".edf":
		return LoaderFunc(LoadEDF), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// LoadMAT reads a level-5 MAT-file. The file is closed before returning.
func LoadMAT(path string) (*Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	mf, err := matfile.Read(f)
	if err != nil {
		return nil, err
	}
	p := &Payload{Arrays: make([]Array, 0, len(mf.Variables))}
	for _, v := range mf.Variables {
		p.Arrays = append(p.Arrays, Array{
			Name:    v.Name,
			Dims:    v.Dims,
			Numeric: v.Class.Numeric(),
			Data:    v.Data,
		})
	}
	return p, nil
}
