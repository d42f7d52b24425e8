package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// execute runs the command line args, writing job output to stdout
func execute(args []string, stdout io.Writer) error {
	cmd, a := newRootCmd()
	defer a.teardown()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return cmd.ExecuteContext(ctx)
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "sif-jobs",
		Short:         "Run example analytics jobs on an in-process dataflow runtime",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	flags.Int("partitions", 4, "number of partitions records are shuffled into")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error, fatal)")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address while the job runs")
	flags.Bool("skip-malformed", false, "log and skip malformed input records instead of failing")
	flags.String("delimiter", ",", "field delimiter of delimited inputs")
	flags.Int("header-lines", 0, "lines to skip at the start of each input file")

	cmd.AddCommand(
		newTrianglesCmd(a),
		newKMeansCmd(a),
		newTopWordsCmd(a),
		newWordCountCmd(a),
	)
	return cmd, a
}
