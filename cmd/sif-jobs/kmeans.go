package main

import (
	"fmt"
	"io"

	"github.com/go-sif/sif-jobs/config"
	"github.com/go-sif/sif-jobs/datasource"
	"github.com/go-sif/sif-jobs/datasource/parser/dsv"
	"github.com/go-sif/sif-jobs/jobs/kmeans"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newKMeansCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kmeans",
		Short: "Cluster two-dimensional points with Lloyd's k-means",
		Long:  "Cluster points read from files of \"x,y\" records. The first k points seed the centroids. Without an input, a small example data set is used.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.KMeans
			flags := cmd.Flags()
			if flags.Changed("input") {
				cfg.Input, _ = flags.GetString("input")
			}
			if flags.Changed("k") {
				cfg.K, _ = flags.GetInt("k")
			}
			if flags.Changed("iterations") {
				cfg.Iterations, _ = flags.GetInt("iterations")
			}
			if flags.Changed("empty-cluster") {
				cfg.EmptyCluster, _ = flags.GetString("empty-cluster")
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			policy, err := kmeans.ParseEmptyClusterPolicy(cfg.EmptyCluster)
			if err != nil {
				return err
			}

			points := kmeans.DefaultPoints()
			if cfg.Input != "" {
				points = nil
				parser := dsv.CreateParser(&dsv.ParserConf{
					Delimiter:   []rune(a.cfg.Input.Delimiter)[0],
					HeaderLines: a.cfg.Input.HeaderLines,
				})
				err := a.readInputs(cfg.Input, func(r io.Reader, reader *datasource.Reader) error {
					parsed, err := parser.ParsePoints(r, reader)
					points = append(points, parsed...)
					return err
				})
				if err != nil {
					return err
				}
			}
			a.logger.Info("Clustering points", zap.Int("points", len(points)), zap.Int("k", cfg.K))

			res, err := kmeans.Cluster(cmd.Context(), a.rt, points, &kmeans.Options{
				K:            cfg.K,
				Iterations:   cfg.Iterations,
				EmptyCluster: policy,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range res.Centroids {
				fmt.Fprintf(out, "%d %.2f %.2f %d\n", c.ID, c.X, c.Y, res.Sizes[c.ID])
			}
			fmt.Fprintf(out, "points: %d\n", res.Assigned)
			a.printSummary(out)
			return nil
		},
	}
	cmd.Flags().String("input", "", "glob of point files")
	cmd.Flags().Int("k", 2, "number of clusters")
	cmd.Flags().Int("iterations", 10, "number of iterations")
	cmd.Flags().String("empty-cluster", "retain", "what to do with a centroid without points (retain, fail)")
	return cmd
}
