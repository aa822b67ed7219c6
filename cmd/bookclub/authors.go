package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAuthorsCmd(root *rootOptions) *cobra.Command {
	var categoryName string

	cmd := &cobra.Command{
		Use:   "authors",
		Short: "List reviewed authors in a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), root.env, appOptions{preload: true})
			if err != nil {
				return err
			}
			defer a.Close()

			authors, err := a.catalog.Authors(cmd.Context(), categoryName)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range authors {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&categoryName, "category", "c", "bm", "category name or code")
	return cmd
}
