package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/bookclub/internal/config"
)

func newIngestCmd(root *rootOptions) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Embed review files and load them into the search backend",
		Long: `Reads data.dir for files matching data.patterns (CSV or Parquet),
embeds author, title and review text, and writes the reviews to the index.
With the embedded backend the run only validates the data set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, root.env, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.Search.Backend == config.BackendEmbedded {
				a.logger.Warn("embedded backend is in-memory, ingested reviews are dropped on exit")
			}

			res, err := a.ingest.Run(ctx, reset)
			if err != nil {
				return err
			}

			total, err := a.backend.counter.Count(ctx, "")
			if err != nil {
				a.logger.Warn("count indexed reviews", zap.Error(err))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "processed: %d\nfailed:    %d\nskipped:   %d\nindexed:   %d\nduration:  %s\n",
				res.Processed, res.Failed, res.Skipped, total, res.Duration.Round(time.Millisecond))
			if res.Failed > 0 {
				return fmt.Errorf("%d reviews failed to ingest", res.Failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "drop the index and its reviews before loading")
	return cmd
}
