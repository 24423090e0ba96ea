package main

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tedpearson/eeg-emotion/internal/export"
	"github.com/tedpearson/eeg-emotion/internal/ingest"
	"github.com/tedpearson/eeg-emotion/internal/recording"
)

var (
	sourceDir      string
	signalVariable string
	outputFile     string
	dryRun         bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Convert a directory of raw EEG recordings into one labeled CSV dataset",
	Long: `Scans the source directory for recordings named like sub01t1H.mat
(H = Happy, S = Sad, F = Fear), normalizes each signal matrix to 32 channel
columns and writes subject_id,emotion,ch_1..ch_32 rows to the output file.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&sourceDir, "path", "", "Directory of raw recordings (overrides source_directory)")
	ingestCmd.Flags().StringVar(&signalVariable, "variable", "", "Signal variable name (overrides auto-detection)")
	ingestCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output CSV file (overrides output_file)")
	ingestCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Don't write output or export to the database")
}

func runIngest(cmd *cobra.Command, args []string) error {
	opts := ingest.Options{
		SourceDir:      cfg.SourceDirectory,
		Extension:      cfg.Extension,
		SignalVariable: cfg.SignalVariableName,
	}
	if sourceDir != "" {
		opts.SourceDir = sourceDir
	}
	if signalVariable != "" {
		opts.SignalVariable = signalVariable
	}
	output := cfg.OutputFile
	if outputFile != "" {
		output = outputFile
	}

	loader, err := recording.ForExtension(opts.Extension)
	if err != nil {
		return err
	}
	sum, err := ingest.New(opts, loader, logger).Run()
	if err != nil {
		return err
	}
	printSummary(cmd, sum)

	if sum.Dataset.Empty() {
		logger.Warn(ingest.ErrNoData.Error(), zap.Int("files", sum.Found))
		fmt.Fprintln(cmd.OutOrStdout(), "No data was processed. The output file was not created.")
		return nil
	}
	if dryRun {
		return nil
	}
	if err := sum.Dataset.WriteFile(output); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Combined data saved to %s, shape (%s, %d).\n",
		output, humanize.Comma(int64(sum.Dataset.Rows())), len(ingest.Header()))

	if cfg.Influx.Enabled() {
		w := export.NewInfluxWriter(cfg.Influx)
		n := w.WriteDataset(sum.Dataset)
		w.Close()
		logger.Info("exported dataset", zap.String("host", cfg.Influx.Host), zap.Int("points", n))
	}
	return nil
}

func printSummary(cmd *cobra.Command, sum *ingest.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nProcessed %s of %s files into %s rows",
		humanize.Comma(int64(sum.Processed())), humanize.Comma(int64(sum.Found)),
		humanize.Comma(int64(sum.Dataset.Rows())))
	if sum.Variable != "" {
		fmt.Fprintf(out, " using signal variable %q", sum.Variable)
	}
	fmt.Fprintln(out, ".")
	skipped := sum.SkippedBy()
	reasons := make([]ingest.SkipReason, 0, len(skipped))
	for r := range skipped {
		reasons = append(reasons, r)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	for _, r := range reasons {
		fmt.Fprintf(out, "  skipped (%s): %s\n", r, humanize.Comma(int64(skipped[r])))
	}
}
