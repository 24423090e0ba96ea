package matfile

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const headerText = "MATLAB 5.0 MAT-file, Platform: GLNXA64, Created by: eeg-emotion"

// Write encodes vars as a little-endian level-5 MAT-file. Every variable is
// stored as a real double matrix; when compress is set each one is wrapped in
// a zlib element the way MATLAB's default -v7 format does.
func Write(w io.Writer, vars []*Variable, compress bool) error {
	var out bytes.Buffer
	header := make([]byte, headerLen)
	copy(header, headerText)
	for i := len(headerText); i < 116; i++ {
		header[i] = ' '
	}
	binary.LittleEndian.PutUint16(header[124:], 0x0100)
	copy(header[126:], "IM")
	out.Write(header)

	for _, v := range vars {
		if len(v.Data) != v.Len() {
			return fmt.Errorf("matfile: variable %q has %d values for dims %v", v.Name, len(v.Data), v.Dims)
		}
		elem := matrixElement(v)
		if !compress {
			out.Write(elem)
			continue
		}
		var z bytes.Buffer
		zw := zlib.NewWriter(&z)
		if _, err := zw.Write(elem); err != nil {
			return err
		}
		if err := zw.Close(); err != nil {
			return err
		}
		writeTag(&out, miCOMPRESSED, z.Len())
		out.Write(z.Bytes())
	}
	_, err := w.Write(out.Bytes())
	return err
}

func matrixElement(v *Variable) []byte {
	var body bytes.Buffer

	writeTag(&body, miUINT32, 8)
	flags := make([]byte, 8)
	binary.LittleEndian.PutUint32(flags, uint32(ClassDouble))
	body.Write(flags)

	dims := make([]byte, 4*len(v.Dims))
	for i, d := range v.Dims {
		binary.LittleEndian.PutUint32(dims[i*4:], uint32(d))
	}
	writePadded(&body, miINT32, dims)
	writePadded(&body, miINT8, []byte(v.Name))

	data := make([]byte, 8*len(v.Data))
	for i, x := range v.Data {
		binary.LittleEndian.PutUint64(data[i*8:], math.Float64bits(x))
	}
	writePadded(&body, miDOUBLE, data)

	var elem bytes.Buffer
	writeTag(&elem, miMATRIX, body.Len())
	elem.Write(body.Bytes())
	return elem.Bytes()
}

func writeTag(buf *bytes.Buffer, typ uint32, n int) {
	tag := make([]byte, 8)
	binary.LittleEndian.PutUint32(tag, typ)
	binary.LittleEndian.PutUint32(tag[4:], uint32(n))
	buf.Write(tag)
}

func writePadded(buf *bytes.Buffer, typ uint32, data []byte) {
	writeTag(buf, typ, len(data))
	buf.Write(data)
	buf.Write(make([]byte, align8(len(data))-len(data)))
}
