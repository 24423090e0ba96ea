package matfile

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(start, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(start + i)
	}
	return out
}

func TestWriteRead(t *testing.T) {
	for _, compress := range []bool{false, true} {
		vars := []*Variable{
			{Name: "EEG", Dims: []int{32, 5}, Data: seq(0, 160)},
			{Name: "fs", Dims: []int{1, 1}, Data: []float64{128}},
		}
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, vars, compress))

		f, err := Read(&buf)
		require.NoError(t, err)
		require.Len(t, f.Variables, 2)
		assert.Contains(t, f.Header, "MATLAB 5.0 MAT-file")

		eeg, ok := f.Lookup("EEG")
		require.True(t, ok)
		assert.Equal(t, ClassDouble, eeg.Class)
		assert.Equal(t, []int{32, 5}, eeg.Dims)
		assert.Equal(t, seq(0, 160), eeg.Data)

		fs, ok := f.Lookup("fs")
		require.True(t, ok)
		assert.Equal(t, []float64{128}, fs.Data)

		_, ok = f.Lookup("missing")
		assert.False(t, ok)
	}
}

// rawFile assembles a MAT-file from hand-built elements.
type rawFile struct {
	order binary.ByteOrder
	buf   bytes.Buffer
}

func newRawFile(order binary.ByteOrder) *rawFile {
	r := &rawFile{order: order}
	header := make([]byte, headerLen)
	copy(header, "MATLAB 5.0 MAT-file, test")
	order.PutUint16(header[124:], 0x0100)
	if order == binary.LittleEndian {
		copy(header[126:], "IM")
	} else {
		copy(header[126:], "MI")
	}
	r.buf.Write(header)
	return r
}

func (r *rawFile) tag(typ, n uint32) []byte {
	b := make([]byte, 8)
	r.order.PutUint32(b, typ)
	r.order.PutUint32(b[4:], n)
	return b
}

func (r *rawFile) padded(typ uint32, data []byte) []byte {
	out := append(r.tag(typ, uint32(len(data))), data...)
	return append(out, make([]byte, align8(len(data))-len(data))...)
}

// small packs up to four bytes into a compressed-tag element.
func (r *rawFile) small(typ uint32, data []byte) []byte {
	b := make([]byte, 8)
	r.order.PutUint32(b, uint32(len(data))<<16|typ)
	copy(b[4:], data)
	return b
}

func (r *rawFile) matrix(class Class, dims []int32, name []byte, values []byte, valueType uint32) {
	var body []byte
	flags := make([]byte, 8)
	r.order.PutUint32(flags, uint32(class))
	body = append(body, r.padded(miUINT32, flags)...)
	d := make([]byte, 4*len(dims))
	for i, x := range dims {
		r.order.PutUint32(d[i*4:], uint32(x))
	}
	body = append(body, r.padded(miINT32, d)...)
	if len(name) <= 4 {
		body = append(body, r.small(miINT8, name)...)
	} else {
		body = append(body, r.padded(miINT8, name)...)
	}
	if values != nil {
		body = append(body, r.padded(valueType, values)...)
	}
	r.buf.Write(r.tag(miMATRIX, uint32(len(body))))
	r.buf.Write(body)
}

func TestDecode_BigEndianInt16SmallName(t *testing.T) {
	r := newRawFile(binary.BigEndian)
	values := make([]byte, 2*6)
	for i := 0; i < 6; i++ {
		binary.BigEndian.PutUint16(values[i*2:], uint16(int16(i-3)))
	}
	r.matrix(ClassDouble, []int32{2, 3}, []byte("x"), values, miINT16)

	f, err := Decode(r.buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Variables, 1)
	v := f.Variables[0]
	assert.Equal(t, "x", v.Name)
	assert.Equal(t, []int{2, 3}, v.Dims)
	assert.Equal(t, []float64{-3, -2, -1, 0, 1, 2}, v.Data)
}

func TestDecode_NonNumericVariableHasNoData(t *testing.T) {
	r := newRawFile(binary.LittleEndian)
	r.matrix(ClassCell, []int32{1, 4}, []byte("labels"), nil, 0)
	values := make([]byte, 4)
	r.matrix(ClassUint8, []int32{2, 2}, []byte("mask"), values, miUINT8)

	f, err := Decode(r.buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Variables, 2)
	assert.Equal(t, ClassCell, f.Variables[0].Class)
	assert.False(t, f.Variables[0].Class.Numeric())
	assert.Nil(t, f.Variables[0].Data)
	assert.Equal(t, 4, f.Variables[0].Len())
	assert.Equal(t, []float64{0, 0, 0, 0}, f.Variables[1].Data)
}

// opaque appends a MATLAB string-style element: flags, name, type system,
// class name and an inner matrix, with no dimensions element.
func (r *rawFile) opaque(name string, withName bool) {
	var body []byte
	flags := make([]byte, 8)
	r.order.PutUint32(flags, uint32(ClassOpaque))
	body = append(body, r.padded(miUINT32, flags)...)
	if withName {
		body = append(body, r.padded(miINT8, []byte(name))...)
		body = append(body, r.padded(miINT8, []byte("MCOS"))...)
		body = append(body, r.padded(miINT8, []byte("string"))...)
		inner := make([]byte, 8)
		body = append(body, r.padded(miUINT32, inner)...)
	}
	r.buf.Write(r.tag(miMATRIX, uint32(len(body))))
	r.buf.Write(body)
}

func doubles(order binary.ByteOrder, vals []float64) []byte {
	b := make([]byte, 8*len(vals))
	for i, v := range vals {
		order.PutUint64(b[i*8:], math.Float64bits(v))
	}
	return b
}

func TestDecode_OpaqueVariableKeepsRecording(t *testing.T) {
	r := newRawFile(binary.LittleEndian)
	r.matrix(ClassDouble, []int32{5, 32}, []byte("EEG"), doubles(binary.LittleEndian, seq(0, 160)), miDOUBLE)
	r.opaque("note", true)
	r.opaque("", false)
	r.matrix(ClassDouble, []int32{1, 1}, []byte("fs"), doubles(binary.LittleEndian, []float64{128}), miDOUBLE)

	f, err := Decode(r.buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Variables, 3)

	eeg, ok := f.Lookup("EEG")
	require.True(t, ok)
	assert.Equal(t, []int{5, 32}, eeg.Dims)
	assert.Equal(t, seq(0, 160), eeg.Data)

	note, ok := f.Lookup("note")
	require.True(t, ok)
	assert.Equal(t, ClassOpaque, note.Class)
	assert.False(t, note.Class.Numeric())
	assert.Nil(t, note.Data)
	assert.Equal(t, 0, note.Len())

	fs, ok := f.Lookup("fs")
	require.True(t, ok)
	assert.Equal(t, []float64{128}, fs.Data)
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte("too short"))
	assert.ErrorIs(t, err, ErrNotMAT)

	header := make([]byte, headerLen)
	copy(header[126:], "XX")
	_, err = Decode(header)
	assert.ErrorIs(t, err, ErrNotMAT)

	// v7.3 files carry version 0x0200.
	binary.LittleEndian.PutUint16(header[124:], 0x0200)
	copy(header[126:], "IM")
	_, err = Decode(header)
	assert.ErrorIs(t, err, ErrNotMAT)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, []*Variable{{Name: "EEG", Dims: []int{2, 2}, Data: seq(0, 4)}}, false))
	truncated := buf.Bytes()[:buf.Len()-12]
	_, err = Decode(truncated)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecode_ValueCountMismatch(t *testing.T) {
	r := newRawFile(binary.LittleEndian)
	r.matrix(ClassDouble, []int32{3, 3}, []byte("bad"), make([]byte, 8*4), miDOUBLE)
	_, err := Decode(r.buf.Bytes())
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestWrite_RejectsShapeMismatch(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, []*Variable{{Name: "EEG", Dims: []int{2, 2}, Data: seq(0, 3)}}, false)
	assert.Error(t, err)
}
