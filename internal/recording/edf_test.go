package recording

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalArray(t *testing.T) {
	a, err := signalArray(
		[]string{"Fp1", "EDF Annotations", "Fp2 ", "Crc16"},
		[][]float64{{1, 2, 3}, {9}, {4, 5, 6}, {0, 0}},
	)
	require.NoError(t, err)
	assert.Equal(t, EDFVariable, a.Name)
	assert.True(t, a.Numeric)
	assert.Equal(t, []int{2, 3}, a.Dims)
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, a.Data)
}

func TestSignalArray_Errors(t *testing.T) {
	_, err := signalArray([]string{"a", "b"}, [][]float64{{1, 2}, {3}})
	assert.ErrorContains(t, err, "channel 2 has 1 samples, want 2")

	_, err = signalArray([]string{"EDF Annotations"}, [][]float64{{1}})
	assert.ErrorContains(t, err, "no signal channels")

	_, err = signalArray(nil, nil)
	assert.Error(t, err)
}

// edfHeader builds a fixed EDF header with the given version, header size
// and signal count fields.
func edfHeader(version, size, signals string) []byte {
	h := []byte(strings.Repeat(" ", edfFixedHeader))
	copy(h[0:8], version)
	copy(h[184:192], size)
	copy(h[252:256], signals)
	return h
}

func TestLoadEDF_RejectsBadHeaders(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"garbage", []byte("this is not an edf recording at all")},
		{"empty", nil},
		{"wrong version", edfHeader("1", "512", "1")},
		{"non-numeric size", edfHeader("0", "abc", "1")},
		{"no signals", edfHeader("0", "256", "0")},
		{"size mismatch", edfHeader("0", "768", "1")},
		{"truncated signal headers", edfHeader("0", "512", "1")},
	}
	dir := t.TempDir()
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, fmt.Sprintf("bad%d.edf", i))
			require.NoError(t, os.WriteFile(path, tt.data, 0o644))
			var err error
			require.NotPanics(t, func() {
				_, err = LoadEDF(path)
			})
			assert.ErrorIs(t, err, ErrNotEDF)
		})
	}
}

func TestLoadEDF_Missing(t *testing.T) {
	_, err := LoadEDF(filepath.Join(t.TempDir(), "missing.edf"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotEDF)
}
