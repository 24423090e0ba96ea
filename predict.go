package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tedpearson/eeg-emotion/internal/classifier"
)

var (
	subject   string
	recordRow int
	seed      int64
)

var predictCmd = &cobra.Command{
	Use:   "predict [table.csv]",
	Short: "Predict the emotional state of one record of an uploaded EEG table",
	Long: `Reads a CSV table of 32 EEG feature columns (subject_id and emotion columns
are ignored), selects one record by --subject or --row and predicts Fear, Happy
or Sad. Without a model file a random demo model is used.`,
	Args: cobra.ExactArgs(1),
	RunE: runPredict,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show prediction totals for a user",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	predictCmd.Flags().StringVar(&subject, "subject", "", "Select the first record with this subject_id")
	predictCmd.Flags().IntVar(&recordRow, "row", 0, "Select the record at this row index")
	predictCmd.Flags().Int64Var(&seed, "seed", 0, "Seed for the demo model (0 picks one from the clock)")
	predictCmd.MarkFlagsMutuallyExclusive("subject", "row")
}

func runPredict(cmd *cobra.Command, args []string) error {
	if _, err := authenticate(cmd); err != nil {
		return err
	}
	file := args[0]
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	table, err := classifier.ReadTable(f)
	f.Close()
	if err != nil {
		return err
	}

	row, recordID := recordRow, strconv.Itoa(recordRow)
	if subject != "" {
		row, err = table.FindSubject(subject)
		if err != nil {
			return err
		}
		recordID = subject
	}
	features, err := table.Features(row)
	if err != nil {
		return err
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	model, demo, loadErr := classifier.LoadOrRandom(cfg.ModelFile, seed)
	if demo {
		logger.Warn("model unavailable, using random demo predictions",
			zap.String("model", cfg.ModelFile), zap.Error(loadErr))
	}
	pred, err := classifier.PredictRecord(model, features)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if demo {
		fmt.Fprintln(out, "Demo mode: predictions are random.")
	}
	fmt.Fprintf(out, "Predicted emotion: %s\n", pred.Label)
	if pred.Probabilities != nil {
		for i, label := range classifier.Labels() {
			fmt.Fprintf(out, "  %-6s %.3f\n", label, pred.Probabilities[i])
		}
	}

	h := classifier.ReadHistory(cfg.HistoryFile)
	h.Entries = append(h.Entries, classifier.Entry{
		User:      username,
		FileName:  filepath.Base(file),
		RecordID:  recordID,
		PredLabel: string(pred.Label),
		Timestamp: time.Now(),
	})
	return classifier.WriteHistory(h, cfg.HistoryFile)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if _, err := authenticate(cmd); err != nil {
		return err
	}
	s := classifier.ReadHistory(cfg.HistoryFile).StatsFor(username)
	last := s.Last
	if last == "" {
		last = "-"
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Total predictions:      %d\n", s.Total)
	fmt.Fprintf(out, "Last predicted emotion: %s\n", last)
	fmt.Fprintf(out, "Files analyzed:         %d\n", s.Files)
	return nil
}
