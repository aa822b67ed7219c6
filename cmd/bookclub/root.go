package main

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/bookclub/internal/config"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	env string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "bookclub",
		Short: "Answer questions about books from a corpus of reviews",
		Long: `bookclub retrieves book reviews by text, vector or hybrid search,
asks a language model to answer from them, and grades the answer with a judge model.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(),
		"config environment: loads config/<env>.yaml (local, docker, prod)")

	cmd.AddCommand(
		newServeCmd(opts),
		newAskCmd(opts),
		newSearchCmd(opts),
		newIngestCmd(opts),
		newAuthorsCmd(opts),
		newVersionCmd(),
	)
	return cmd
}
