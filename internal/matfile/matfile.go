// Package matfile reads and writes MATLAB level-5 MAT-files.
//
// Only what EEG recordings need is supported: real numeric matrices of any
// rank, stored plain or inside zlib-compressed elements. Cell, struct, char,
// sparse and object variables are reported by name and shape but carry no
// data; opaque variables (strings, tables, function handles) by name only.
// Version 7.3 files (HDF5 containers) are rejected.
package matfile

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

const headerLen = 128

// data element types
const (
	miINT8       = 1
	miUINT8      = 2
	miINT16      = 3
	miUINT16     = 4
	miINT32      = 5
	miUINT32     = 6
	miSINGLE     = 7
	miDOUBLE     = 9
	miINT64      = 12
	miUINT64     = 13
	miMATRIX     = 14
	miCOMPRESSED = 15
)

const (
	flagComplex = 0x0800
)

var (
	// ErrNotMAT is returned when the input is not a level-5 MAT-file.
	ErrNotMAT = errors.New("matfile: not a level-5 MAT-file")
	// ErrMalformed is returned when an element is truncated or inconsistent.
	ErrMalformed = errors.New("matfile: malformed element")
)

// Class is the MATLAB array class of a variable.
type Class uint8

const (
	ClassCell   Class = 1
	ClassStruct Class = 2
	ClassObject Class = 3
	ClassChar   Class = 4
	ClassSparse Class = 5
	ClassDouble Class = 6
	ClassSingle Class = 7
	ClassInt8   Class = 8
	ClassUint8  Class = 9
	ClassInt16  Class = 10
	ClassUint16 Class = 11
	ClassInt32  Class = 12
	ClassUint32 Class = 13
	ClassInt64  Class = 14
	ClassUint64 Class = 15
	ClassOpaque Class = 17
)

// Numeric reports whether arrays of this class hold plain numbers.
func (c Class) Numeric() bool {
	return c >= ClassDouble && c <= ClassUint64
}

func (c Class) String() string {
	switch c {
	case ClassCell:
		return "cell"
	case ClassStruct:
		return "struct"
	case ClassObject:
		return "object"
	case ClassChar:
		return "char"
	case ClassSparse:
		return "sparse"
	case ClassDouble:
		return "double"
	case ClassSingle:
		return "single"
	case ClassInt8:
		return "int8"
	case ClassUint8:
		return "uint8"
	case ClassInt16:
		return "int16"
	case ClassUint16:
		return "uint16"
	case ClassInt32:
		return "int32"
	case ClassUint32:
		return "uint32"
	case ClassInt64:
		return "int64"
	case ClassUint64:
		return "uint64"
	case ClassOpaque:
		return "opaque"
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// Variable is one named array from a MAT-file.
type Variable struct {
	Name    string
	Class   Class
	Dims    []int
	Complex bool
	// Data holds the real part in column-major order. It is nil for
	// non-numeric classes.
	Data []float64
}

// Len returns the total number of elements.
func (v *Variable) Len() int {
	if len(v.Dims) == 0 {
		return 0
	}
	n := 1
	for _, d := range v.Dims {
		n *= d
	}
	return n
}

// File is a decoded MAT-file. Variables keep their on-disk order.
type File struct {
	Header    string
	Variables []*Variable
}

// Lookup returns the variable with the given name.
func (f *File) Lookup(name string) (*Variable, bool) {
	for _, v := range f.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// Read decodes a whole MAT-file from r.
func Read(r io.Reader) (*File, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(b)
}

// Decode decodes a MAT-file held in memory.
func Decode(b []byte) (*File, error) {
	if len(b) < headerLen {
		return nil, fmt.Errorf("%w: %d byte header", ErrNotMAT, len(b))
	}
	var d decoder
	switch string(b[126:128]) {
	case "IM":
		d.order = binary.LittleEndian
	case "MI":
		d.order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: endian indicator %q", ErrNotMAT, b[126:128])
	}
	if version := d.order.Uint16(b[124:126]); version != 0x0100 {
		return nil, fmt.Errorf("%w: version 0x%04x", ErrNotMAT, version)
	}
	f := &File{Header: strings.TrimRight(string(b[:116]), " \x00")}
	if err := d.elements(f, b[headerLen:]); err != nil {
		return nil, err
	}
	return f, nil
}

type decoder struct {
	order binary.ByteOrder
}

func (d decoder) elements(f *File, buf []byte) error {
	for len(buf) > 0 {
		if len(buf) < 8 && allZero(buf) {
			return nil
		}
		typ, data, rest, err := d.element(buf)
		if err != nil {
			return err
		}
		buf = rest
		switch typ {
		case miCOMPRESSED:
			zr, err := zlib.NewReader(bytes.NewReader(data))
			if err != nil {
				return fmt.Errorf("%w: compressed element: %v", ErrMalformed, err)
			}
			inflated, err := io.ReadAll(zr)
			_ = zr.Close()
			if err != nil {
				return fmt.Errorf("%w: compressed element: %v", ErrMalformed, err)
			}
			if err := d.elements(f, inflated); err != nil {
				return err
			}
		case miMATRIX:
			if len(data) == 0 {
				continue
			}
			v, err := d.matrix(data)
			if err != nil {
				return err
			}
			if v != nil {
				f.Variables = append(f.Variables, v)
			}
		}
	}
	return nil
}

// element splits one tagged element off buf.
func (d decoder) element(buf []byte) (typ uint32, data, rest []byte, err error) {
	if len(buf) < 8 {
		return 0, nil, nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, len(buf))
	}
	first := d.order.Uint32(buf)
	if first>>16 != 0 {
		n := int(first >> 16)
		if n > 4 {
			return 0, nil, nil, fmt.Errorf("%w: small element of %d bytes", ErrMalformed, n)
		}
		return first & 0xffff, buf[4 : 4+n], buf[8:], nil
	}
	n := d.order.Uint32(buf[4:])
	if uint64(n) > uint64(len(buf)-8) {
		return 0, nil, nil, fmt.Errorf("%w: element of %d bytes, %d available", ErrMalformed, n, len(buf)-8)
	}
	end := 8 + int(n)
	data = buf[8:end]
	if first != miCOMPRESSED {
		end = min(align8(end), len(buf))
	}
	return first, data, buf[end:], nil
}

// matrix decodes one miMATRIX body. A nil variable with a nil error means an
// opaque element whose name could not be read; the caller drops it.
func (d decoder) matrix(buf []byte) (*Variable, error) {
	typ, flags, buf, err := d.element(buf)
	if err != nil {
		return nil, err
	}
	if typ != miUINT32 || len(flags) < 8 {
		return nil, fmt.Errorf("%w: array flags", ErrMalformed)
	}
	word := d.order.Uint32(flags)
	v := &Variable{
		Class:   Class(word & 0xff),
		Complex: word&flagComplex != 0,
	}

	// string, table and function handle variables are stored as opaque
	// objects: name, type system and class name, then an inner matrix. They
	// carry no dimensions and no samples.
	if v.Class > ClassUint64 {
		_, name, _, err := d.element(buf)
		if err != nil {
			return nil, nil
		}
		v.Name = string(name)
		return v, nil
	}

	typ, dims, buf, err := d.element(buf)
	if err != nil {
		return nil, err
	}
	if typ != miINT32 || len(dims)%4 != 0 {
		return nil, fmt.Errorf("%w: dimensions", ErrMalformed)
	}
	v.Dims = make([]int, len(dims)/4)
	for i := range v.Dims {
		dim := int32(d.order.Uint32(dims[i*4:]))
		if dim < 0 {
			return nil, fmt.Errorf("%w: negative dimension %d", ErrMalformed, dim)
		}
		v.Dims[i] = int(dim)
	}

	_, name, buf, err := d.element(buf)
	if err != nil {
		return nil, err
	}
	v.Name = string(name)

	if !v.Class.Numeric() {
		return v, nil
	}
	typ, values, _, err := d.element(buf)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", v.Name, err)
	}
	v.Data, err = d.numbers(typ, values)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", v.Name, err)
	}
	if len(v.Data) != v.Len() {
		return nil, fmt.Errorf("%w: variable %q has %d values for dims %v", ErrMalformed, v.Name, len(v.Data), v.Dims)
	}
	return v, nil
}

func (d decoder) numbers(typ uint32, b []byte) ([]float64, error) {
	var size int
	switch typ {
	case miINT8, miUINT8:
		size = 1
	case miINT16, miUINT16:
		size = 2
	case miINT32, miUINT32, miSINGLE:
		size = 4
	case miDOUBLE, miINT64, miUINT64:
		size = 8
	default:
		return nil, fmt.Errorf("%w: numeric data type %d", ErrMalformed, typ)
	}
	if len(b)%size != 0 {
		return nil, fmt.Errorf("%w: %d bytes of %d-byte values", ErrMalformed, len(b), size)
	}
	out := make([]float64, len(b)/size)
	for i := range out {
		p := b[i*size:]
		switch typ {
		case miINT8:
			out[i] = float64(int8(p[0]))
		case miUINT8:
			out[i] = float64(p[0])
		case miINT16:
			out[i] = float64(int16(d.order.Uint16(p)))
		case miUINT16:
			out[i] = float64(d.order.Uint16(p))
		case miINT32:
			out[i] = float64(int32(d.order.Uint32(p)))
		case miUINT32:
			out[i] = float64(d.order.Uint32(p))
		case miSINGLE:
			out[i] = float64(math.Float32frombits(d.order.Uint32(p)))
		case miDOUBLE:
			out[i] = math.Float64frombits(d.order.Uint64(p))
		case miINT64:
			out[i] = float64(int64(d.order.Uint64(p)))
		case miUINT64:
			out[i] = float64(d.order.Uint64(p))
		}
	}
	return out, nil
}

func align8(n int) int {
	return (n + 7) &^ 7
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
