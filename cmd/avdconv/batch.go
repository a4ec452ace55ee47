package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/benoitkugler/avdconv/batch"
)

func batchCmd() *cobra.Command {
	var (
		out       string
		workers   int
		overwrite bool
		strict    bool
		report    string
	)

	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Convert every .xml and .svg file of a directory",
		Long: `Convert every .xml and .svg file found below a directory, concurrently.

Outputs keep the relative layout of the sources. The destination is either
a local directory or an S3 location, whose credentials are read from
AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY.

Examples:
  avdconv batch res/drawable --out build/svg
  avdconv batch icons --out s3://assets/drawables --report report.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			runner, err := newRunner(cfg, newLogger(slog.LevelWarn))
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				runner.Workers = workers
			}
			runner.Strict = strict
			runner.Sink, err = batch.ParseSinkURL(out, overwrite || cfg.Overwrite, func() batch.ObjectPutter {
				return batch.NewS3Client(cfg.S3Client())
			})
			if err != nil {
				return err
			}

			results, err := runner.Run(cmd.Context(), args[0])
			if report != "" {
				if werr := writeReport(report, results); werr != nil {
					return werr
				}
			}
			if err != nil {
				return err
			}

			failed := batch.Failed(results)
			for _, res := range results {
				if res.Err != nil {
					errorMsg("%s: %s", res.Source, res.Err)
				} else if len(res.Diagnostics) > 0 {
					warn("%s: %d unsupported constructs skipped", res.Source, len(res.Diagnostics))
				}
			}
			success("%d of %d files converted to %s", len(results)-failed, len(results), runner.Sink)
			if failed > 0 {
				return &exitError{code: 1, err: fmt.Errorf("%d conversions failed", failed)}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "output directory or s3://bucket/prefix")
	cmd.Flags().IntVar(&workers, "workers", 0, "number of files converted concurrently (default: one per CPU)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace existing output files")
	cmd.Flags().BoolVar(&strict, "strict", false, "do not write documents with unsupported constructs")
	cmd.Flags().StringVar(&report, "report", "", "write a JSON report of every conversion")
	cmd.MarkFlagRequired("out")

	return cmd
}

func writeReport(path string, results []batch.FileResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
