package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FindRecordings lists the files in dir whose names end with ext, in
// lexical order so repeated runs see the same sequence.
func FindRecordings(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = ErrSourceNotFound
		}
		return nil, &ConfigurationError{Op: "scan", Path: dir, Err: err}
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	if len(files) == 0 {
		return nil, &ConfigurationError{
			Op:   "scan",
			Path: dir,
			Err:  fmt.Errorf("%w: no %s files", ErrNoRecordings, ext),
		}
	}
	return files, nil
}
