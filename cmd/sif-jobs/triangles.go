package main

import (
	"fmt"
	"io"

	"github.com/go-sif/sif-jobs/config"
	"github.com/go-sif/sif-jobs/datasource"
	"github.com/go-sif/sif-jobs/datasource/parser/dsv"
	"github.com/go-sif/sif-jobs/jobs/triangles"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newTrianglesCmd(a *app) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "triangles",
		Short: "Count the triangles of an undirected graph",
		Long:  "Count the triangles of an undirected graph read from edge lists of \"a,b\" records. Without an input, a small example graph is used.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Triangles
			flags := cmd.Flags()
			if flags.Changed("input") {
				cfg.Input, _ = flags.GetString("input")
			}
			if flags.Changed("dedup-edges") {
				cfg.DedupEdges, _ = flags.GetBool("dedup-edges")
			}
			if flags.Changed("dedup-matches") {
				cfg.DedupMatches, _ = flags.GetBool("dedup-matches")
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			edges := triangles.DefaultEdges()
			if cfg.Input != "" {
				edges = nil
				parser := dsv.CreateParser(&dsv.ParserConf{
					Delimiter:   []rune(a.cfg.Input.Delimiter)[0],
					HeaderLines: a.cfg.Input.HeaderLines,
				})
				err := a.readInputs(cfg.Input, func(r io.Reader, reader *datasource.Reader) error {
					parsed, err := parser.ParseEdges(r, reader)
					edges = append(edges, parsed...)
					return err
				})
				if err != nil {
					return err
				}
			}
			a.logger.Info("Counting triangles", zap.Int("edges", len(edges)))

			found, err := triangles.Enumerate(cmd.Context(), a.rt, edges, &triangles.Options{
				DedupEdges:   cfg.DedupEdges,
				DedupMatches: cfg.DedupMatches,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if list {
				for _, t := range found {
					fmt.Fprintln(out, t)
				}
			}
			fmt.Fprintf(out, "triangles: %d\n", len(found))
			a.printSummary(out)
			return nil
		},
	}
	cmd.Flags().String("input", "", "glob of edge list files")
	cmd.Flags().Bool("dedup-edges", false, "remove duplicate edges before counting")
	cmd.Flags().Bool("dedup-matches", false, "count each distinct triangle once")
	cmd.Flags().BoolVar(&list, "list", false, "print every triangle")
	return cmd
}
