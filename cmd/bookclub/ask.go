package main

import (
	"strings"

	"github.com/spf13/cobra"

	chiTransport "github.com/kailas-cloud/bookclub/internal/transport/chi"
	answeruc "github.com/kailas-cloud/bookclub/internal/usecase/answer"
)

type askOptions struct {
	category string
	author   string
	model    string
	mode     string
	length   string
	json     bool
}

func newAskCmd(root *rootOptions) *cobra.Command {
	opts := &askOptions{}

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer one question from the review corpus",
		Long: `Retrieves reviews for the question, keeps those by --author,
generates an answer with --model and grades it with the judge model.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), root.env, appOptions{preload: true})
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := a.answers.Answer(cmd.Context(), opts.request(strings.Join(args, " ")))
			if err != nil {
				return err
			}
			if opts.json {
				return writeJSON(cmd.OutOrStdout(), chiTransport.NewAnswerResponse(rec))
			}
			printAnswer(cmd.OutOrStdout(), rec)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.category, "category", "c", "", "category name or code (default Business & Money)")
	f.StringVarP(&opts.author, "author", "a", "", "keep only reviews of this author")
	f.StringVarP(&opts.model, "model", "m", "", "provider/model id (default from config)")
	f.StringVar(&opts.mode, "mode", "text", "retrieval mode: text, vector or hybrid")
	f.StringVarP(&opts.length, "length", "l", "S", "answer length: S, M or L")
	f.BoolVar(&opts.json, "json", false, "print the answer record as JSON")
	return cmd
}

func (o *askOptions) request(question string) answeruc.Request {
	return answeruc.Request{
		Question: question,
		Category: o.category,
		Author:   o.author,
		Model:    o.model,
		Mode:     o.mode,
		Length:   o.length,
	}
}
