package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-sif/sif-jobs/config"
	"github.com/go-sif/sif-jobs/datasource"
	"github.com/go-sif/sif-jobs/datasource/parser/jsonl"
	"github.com/go-sif/sif-jobs/jobs/topwords"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func formatRanking(ranking []topwords.RankedWord) string {
	parts := make([]string, len(ranking))
	for i, r := range ranking {
		parts[i] = fmt.Sprintf("%s:%d", r.Word, r.Count)
	}
	return strings.Join(parts, " ")
}

// leaderChanged returns true iff an Update changes the rank-1 word of its window
func leaderChanged(u topwords.Update) bool {
	current, previous := topwords.Leader(u)
	if current == nil || previous == nil {
		return current != previous
	}
	return current.Word != previous.Word
}

func newTopWordsCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "topwords",
		Short: "Rank the most frequent words of an event stream in sliding windows",
		Long: "Rank the most frequent words of JSON Lines events ({\"word\": ..., \"ts\": ...}) in sliding event-time windows. " +
			"Without an input, hashtag events are generated. With the update trigger, only changes of a window's leader are printed unless --all is given.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.TopWords
			flags := cmd.Flags()
			if flags.Changed("input") {
				cfg.Input, _ = flags.GetString("input")
			}
			if flags.Changed("size") {
				cfg.Size, _ = flags.GetDuration("size")
			}
			if flags.Changed("slide") {
				cfg.Slide, _ = flags.GetDuration("slide")
			}
			if flags.Changed("n") {
				cfg.N, _ = flags.GetInt("n")
			}
			if flags.Changed("trigger") {
				cfg.Trigger, _ = flags.GetString("trigger")
			}
			if flags.Changed("generate") {
				cfg.Generate, _ = flags.GetInt64("generate")
			}
			if flags.Changed("seed") {
				cfg.Seed, _ = flags.GetInt64("seed")
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			trigger, err := topwords.ParseTrigger(cfg.Trigger)
			if err != nil {
				return err
			}
			agg, err := topwords.NewAggregator(a.rt, &topwords.Options{
				Size:    cfg.Size,
				Slide:   cfg.Slide,
				N:       cfg.N,
				Trigger: trigger,
			})
			if err != nil {
				return err
			}

			events := make(chan topwords.Event, 1024)
			updates := make(chan topwords.Update, 1024)
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				defer close(events)
				if cfg.Input == "" {
					a.logger.Info("Generating hashtag events", zap.Int64("events", cfg.Generate), zap.Int64("seed", cfg.Seed))
					return topwords.NewHashtagSource(cfg.Seed, 0, 1, cfg.Generate).Generate(ctx, events)
				}
				parser := jsonl.CreateParser(&jsonl.ParserConf{HeaderLines: a.cfg.Input.HeaderLines})
				return a.readInputs(cfg.Input, func(r io.Reader, reader *datasource.Reader) error {
					return parser.ParseEvents(r, reader, func(e topwords.Event) error {
						select {
						case events <- e:
							return nil
						case <-ctx.Done():
							return ctx.Err()
						}
					})
				})
			})
			g.Go(func() error {
				defer close(updates)
				return agg.Run(ctx, events, updates)
			})
			out := cmd.OutOrStdout()
			g.Go(func() error {
				for u := range updates {
					if all || trigger == topwords.OnClose || leaderChanged(u) {
						fmt.Fprintf(out, "%d %s\n", u.Window, formatRanking(u.Ranking))
					}
				}
				return nil
			})
			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			s := agg.Stats()
			fmt.Fprintf(out, "events: %d late: %d windows: %d updates: %d\n", s.Events, s.LateEvents, s.ClosedWindows, s.Updates)
			a.printSummary(out)
			return nil
		},
	}
	cmd.Flags().String("input", "", "glob of JSON Lines event files")
	cmd.Flags().Duration("size", 0, "window size (default 1s)")
	cmd.Flags().Duration("slide", 0, "window slide (default 500ms)")
	cmd.Flags().Int("n", 5, "length of each ranking")
	cmd.Flags().String("trigger", "update", "when rankings are emitted (update, close)")
	cmd.Flags().Int64("generate", 100000, "number of hashtag events to generate without an input (0 generates until interrupted)")
	cmd.Flags().Int64("seed", 1, "seed of generated hashtag events")
	cmd.Flags().BoolVar(&all, "all", false, "print every update")
	return cmd
}
