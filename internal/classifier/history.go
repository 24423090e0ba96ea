package classifier

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Entry records one prediction.
type Entry struct {
	User      string
	FileName  string `yaml:"file_name"`
	RecordID  string `yaml:"record_id"`
	PredLabel string `yaml:"pred_label"`
	Timestamp time.Time
}

// History is the persisted prediction log of all users.
type History struct {
	Entries []Entry
}

// ReadHistory loads the history file. A missing or unreadable file gives an
// empty history.
func ReadHistory(file string) History {
	f, err := os.ReadFile(file)
	if err != nil {
		return History{}
	}
	var h History
	if err := yaml.Unmarshal(f, &h); err != nil {
		return History{}
	}
	return h
}

// WriteHistory replaces the history file.
func WriteHistory(h History, file string) error {
	b, err := yaml.Marshal(h)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := os.WriteFile(file, b, 0o644); err != nil {
		return fmt.Errorf("write history %s: %w", file, err)
	}
	return nil
}

// Stats summarizes one user's predictions.
type Stats struct {
	Total int
	// Last is empty when there are no predictions.
	Last  string
	Files int
}

// StatsFor computes the dashboard figures for user.
func (h History) StatsFor(user string) Stats {
	var s Stats
	files := map[string]struct{}{}
	for _, e := range h.Entries {
		if e.User != user {
			continue
		}
		s.Total++
		s.Last = e.PredLabel
		files[e.FileName] = struct{}{}
	}
	s.Files = len(files)
	return s
}
