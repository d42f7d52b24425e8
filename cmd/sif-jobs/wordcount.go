package main

import (
	"fmt"
	"io"

	"github.com/go-sif/sif-jobs/config"
	"github.com/go-sif/sif-jobs/datasource"
	"github.com/go-sif/sif-jobs/jobs/wordcount"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newWordCountCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wordcount",
		Short: "Count words over per-word sliding count windows",
		Long:  "Count the words of text files. Every word has a window over its last size occurrences, which fires every size/steps occurrences. Partial windows fire at the end of input.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.WordCount
			flags := cmd.Flags()
			if flags.Changed("input") {
				cfg.Input, _ = flags.GetString("input")
			}
			if flags.Changed("size") {
				cfg.Size, _ = flags.GetInt("size")
			}
			if flags.Changed("steps") {
				cfg.Steps, _ = flags.GetInt("steps")
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			counter, err := wordcount.NewCounter(a.rt, &wordcount.Options{Size: cfg.Size, Steps: cfg.Steps})
			if err != nil {
				return err
			}

			lines := make(chan string, 1024)
			counts := make(chan wordcount.WindowCount, 1024)
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				defer close(lines)
				return a.readInputs(cfg.Input, func(r io.Reader, _ *datasource.Reader) error {
					return datasource.StreamLines(ctx, r, lines)
				})
			})
			g.Go(func() error {
				defer close(counts)
				return counter.Run(ctx, lines, counts)
			})
			out := cmd.OutOrStdout()
			var fired int64
			g.Go(func() error {
				for wc := range counts {
					fired++
					fmt.Fprintln(out, wc)
				}
				return nil
			})
			if err := g.Wait(); err != nil {
				return err
			}
			a.logger.Info("Counted words", zap.Int64("firings", fired))
			a.printSummary(out)
			return nil
		},
	}
	cmd.Flags().String("input", "", "glob of text files")
	cmd.Flags().Int("size", 6, "occurrences held by each word's window")
	cmd.Flags().Int("steps", 1, "firings per size occurrences")
	return cmd
}
