package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/paveg/tabprep/internal/config"
	"github.com/paveg/tabprep/internal/dataframe"
	"github.com/paveg/tabprep/internal/monitoring"
	"github.com/paveg/tabprep/internal/preprocess"
	"github.com/spf13/cobra"
)

func newPreprocessCmd(a *app) *cobra.Command {
	var out, format string

	cmd := &cobra.Command{
		Use:   "preprocess [csv]",
		Short: "Impute, encode, scale and split a car-listing CSV file",
		Long: `Runs the preprocessing pipeline over the CSV file (default "` + config.DefaultInput + `")
and reports the shapes of X_train, X_test, y_train and y_test. With --out the
four partitions are written as CSV or Parquet files.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != preprocess.FormatCSV && format != preprocess.FormatParquet {
				return fmt.Errorf("unsupported format %q: use csv or parquet", format)
			}

			input := a.cfg.Input
			if len(args) == 1 {
				input = args[0]
			}

			pipeline := preprocess.NewPipeline(a.cfg,
				preprocess.WithLogger(a.logger),
				preprocess.WithMetrics(monitoring.NewMetricsCollector(a.cfg.MetricsCollection)),
			)

			result, err := pipeline.Run(cmd.Context(), input)
			if err != nil {
				return err
			}
			defer result.Release()

			w := cmd.OutOrStdout()
			for _, part := range []struct {
				name string
				df   *dataframe.DataFrame
			}{
				{"X_train", result.XTrain},
				{"X_test", result.XTest},
				{"y_train", result.YTrain},
				{"y_test", result.YTest},
			} {
				fmt.Fprintf(w, "%s: %d rows x %d columns\n", part.name, part.df.Len(), part.df.Width())
			}

			for _, timing := range pipeline.Timings() {
				a.logger.Info().Str("step", timing.Step).Dur("duration", timing.Duration).Msg("step timing")
			}
			if pipeline.Metrics().IsEnabled() {
				a.logger.Info().Str("summary", pipeline.Metrics().GetSummary().String()).Msg("pipeline metrics")
			}

			if out == "" {
				return nil
			}
			files, err := result.Export(out, format)
			if err != nil {
				return err
			}
			for _, f := range files {
				a.logger.Info().
					Str("path", f.Path).
					Int("rows", f.Rows).
					Str("size", humanize.Bytes(uint64(f.Bytes))). //nolint:gosec // byte counts are non-negative
					Msg("partition written")
				fmt.Fprintln(w, f.Path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Directory to write the partitions into")
	cmd.Flags().StringVar(&format, "format", preprocess.FormatCSV, "Export format: csv or parquet")

	return cmd
}
