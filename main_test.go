package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tedpearson/eeg-emotion/internal/config"
	"github.com/tedpearson/eeg-emotion/internal/ingest"
	"github.com/tedpearson/eeg-emotion/internal/matfile"
	"github.com/tedpearson/eeg-emotion/internal/users"
)

// setup points the command globals at a fresh workspace.
func setup(t *testing.T) (string, *cobra.Command, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	logger = zap.NewNop()
	cfg = config.Default()
	cfg.SourceDirectory = filepath.Join(dir, "raw")
	cfg.OutputFile = filepath.Join(dir, "eeg_emotion_dataset.csv")
	cfg.UsersFile = filepath.Join(dir, "users.json")
	cfg.HistoryFile = filepath.Join(dir, "history.yaml")
	cfg.ModelFile = filepath.Join(dir, "models", "model.json")
	sourceDir, signalVariable, outputFile, dryRun = "", "", "", false
	username, password, subject, recordRow, seed = "", "", "", 0, 1
	require.NoError(t, os.Mkdir(cfg.SourceDirectory, 0o755))

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	return dir, cmd, &out
}

func writeRecording(t *testing.T, name string, rows, cols int) {
	t.Helper()
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = float64(i)
	}
	f, err := os.Create(filepath.Join(cfg.SourceDirectory, name))
	require.NoError(t, err)
	require.NoError(t, matfile.Write(f, []*matfile.Variable{{Name: "EEG", Dims: []int{rows, cols}, Data: data}}, true))
	require.NoError(t, f.Close())
}

func TestRunIngest(t *testing.T) {
	_, cmd, out := setup(t)
	writeRecording(t, "sub01t1H.mat", 32, 5)
	writeRecording(t, "sub02t1S.mat", 5, 32)
	writeRecording(t, "sub03t1F.mat", 5, 17)

	require.NoError(t, runIngest(cmd, nil))
	assert.Contains(t, out.String(), "Processed 2 of 3 files into 10 rows")
	assert.Contains(t, out.String(), "skipped (wrong channel count): 1")

	b, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	assert.Len(t, lines, 11)
	assert.Equal(t, strings.Join(ingest.Header(), ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,Happy,"))
	assert.True(t, strings.HasPrefix(lines[6], "2,Sad,"))
}

func TestRunIngest_NoDataWritesNothing(t *testing.T) {
	_, cmd, out := setup(t)
	writeRecording(t, "notes.mat", 5, 32)

	require.NoError(t, runIngest(cmd, nil))
	assert.Contains(t, out.String(), "No data was processed")
	_, err := os.Stat(cfg.OutputFile)
	assert.True(t, os.IsNotExist(err))
}

func TestRunIngest_NoRecordingsIsFatal(t *testing.T) {
	_, cmd, _ := setup(t)
	err := runIngest(cmd, nil)
	assert.ErrorIs(t, err, ingest.ErrNoRecordings)
	_, statErr := os.Stat(cfg.OutputFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestAccountAndPredictFlow(t *testing.T) {
	dir, cmd, out := setup(t)
	username, password = "ada", "secret"
	require.NoError(t, runSignup(cmd, nil))
	assert.Error(t, runSignup(cmd, nil))
	require.NoError(t, runLogin(cmd, nil))

	password = "wrong"
	assert.Error(t, runLogin(cmd, nil))
	password = "secret"

	writeRecording(t, "sub04t1H.mat", 3, 32)
	outputFile = filepath.Join(dir, "upload.csv")
	require.NoError(t, runIngest(cmd, nil))

	subject = "4"
	require.NoError(t, runPredict(cmd, []string{outputFile}))
	assert.Contains(t, out.String(), "Demo mode")
	assert.Contains(t, out.String(), "Predicted emotion: ")

	out.Reset()
	require.NoError(t, runHistory(cmd, nil))
	assert.Contains(t, out.String(), "Total predictions:      1")
	assert.Contains(t, out.String(), "Files analyzed:         1")

	out.Reset()
	password = "wrong"
	assert.ErrorIs(t, runHistory(cmd, nil), users.ErrIncorrectPassword)
	assert.NotContains(t, out.String(), "Total predictions")

	username, password = "nobody", "secret"
	assert.ErrorIs(t, runHistory(cmd, nil), users.ErrUserNotFound)
}
