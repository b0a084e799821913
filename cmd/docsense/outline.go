package main

import (
	"log/slog"

	"github.com/dgallion1/docsense/internal/doctree"
	"github.com/dgallion1/docsense/internal/pipeline"
	"github.com/spf13/cobra"
)

type outlineResult struct {
	Document string                 `json:"document"`
	Title    string                 `json:"title"`
	Outline  []doctree.OutlineEntry `json:"outline"`
	Error    string                 `json:"error,omitempty"`
}

func outlineCmd(logger func() *slog.Logger) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "outline <file>...",
		Short: "Print the title and H1-H4 outline of each document",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exs, err := pipeline.NewAnalyzer(workers, logger()).ExtractAll(cmd.Context(), sources(args))
			if err != nil {
				return err
			}
			out := make([]outlineResult, len(exs))
			for i, ex := range exs {
				out[i] = outlineResult{Document: ex.Name, Outline: []doctree.OutlineEntry{}}
				if ex.Err != nil {
					out[i].Error = ex.Err.Error()
					continue
				}
				out[i].Title = ex.Tree.Title
				out[i].Outline = ex.Tree.Outline
			}
			return printJSON(cmd, out)
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 4, "documents parsed in parallel")
	return cmd
}
