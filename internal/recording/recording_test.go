package recording

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tedpearson/eeg-emotion/internal/matfile"
)

func TestLoadMAT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub01t1H.mat")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, matfile.Write(f, []*matfile.Variable{
		{Name: "EEG", Dims: []int{2, 3}, Data: []float64{1, 2, 3, 4, 5, 6}},
	}, true))
	require.NoError(t, f.Close())

	p, err := LoadMAT(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"EEG"}, p.Names())
	a, ok := p.Lookup("EEG")
	require.True(t, ok)
	assert.True(t, a.Numeric)
	assert.Equal(t, 6, a.Size())
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, a.Data)
}

func TestLoadMAT_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.mat")
	require.NoError(t, os.WriteFile(path, []byte("not a mat file"), 0o644))
	_, err := LoadMAT(path)
	assert.ErrorIs(t, err, matfile.ErrNotMAT)

	_, err = LoadMAT(filepath.Join(t.TempDir(), "missing.mat"))
	assert.Error(t, err)
}

func TestForExtension(t *testing.T) {
	for _, ext := range []string{".mat", ".MAT", ".edf"} {
		l, err := ForExtension(ext)
		require.NoError(t, err, ext)
		assert.NotNil(t, l)
	}
	_, err := ForExtension(".csv")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
