package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/docsense/internal/pipeline"
	"github.com/dgallion1/docsense/internal/rank"
	"github.com/dgallion1/docsense/internal/relevance"
	"github.com/spf13/cobra"
)

type analysisFlags struct {
	persona  string
	job      string
	topK     int
	snippets int
	workers  int
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.persona, "persona", "", "who is reading (e.g. \"Travel Planner\")")
	cmd.Flags().StringVar(&f.job, "job", "", "what the reader is trying to do")
	cmd.Flags().IntVar(&f.topK, "top-k", rank.DefaultTopK, "sections kept in the analysis")
	cmd.Flags().IntVar(&f.snippets, "snippets", 3, "snippets kept per section")
	cmd.Flags().IntVar(&f.workers, "workers", 4, "documents parsed in parallel")
}

// run parses every file and ranks their sections.
func (f *analysisFlags) run(cmd *cobra.Command, log *slog.Logger, scorer *relevance.Scorer, paths []string) (*pipeline.Analysis, error) {
	if f.persona == "" && f.job == "" {
		return nil, fmt.Errorf("at least one of --persona or --job is required")
	}
	exs, err := pipeline.NewAnalyzer(f.workers, log).ExtractAll(cmd.Context(), sources(paths))
	if err != nil {
		return nil, err
	}
	opts := rank.Options{TopK: f.topK, Snippets: f.snippets}
	return pipeline.Analyze(scorer, exs, f.persona, f.job, opts, time.Now()), nil
}

func analyzeCmd(logger func() *slog.Logger) *cobra.Command {
	var flags analysisFlags

	cmd := &cobra.Command{
		Use:   "analyze <file>...",
		Short: "Rank document sections for a persona and job",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := flags.run(cmd, logger(), relevance.NewScorer(), args)
			if err != nil {
				return err
			}
			return printJSON(cmd, a)
		},
	}
	flags.register(cmd)
	return cmd
}

func relatedCmd(logger func() *slog.Logger) *cobra.Command {
	var (
		flags    analysisFlags
		page     int
		section  string
		document string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "related <file>...",
		Short: "Suggest sections to read next from the current page",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if page < 1 {
				return fmt.Errorf("--page must be a positive integer")
			}
			scorer := relevance.NewScorer()
			a, err := flags.run(cmd, logger(), scorer, args)
			if err != nil {
				return err
			}
			related := a.Related(scorer, rank.RelatedRequest{
				CurrentPage:     page,
				CurrentDocument: document,
				CurrentSection:  section,
				Limit:           limit,
			})
			return printJSON(cmd, map[string]any{"related_sections": related})
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&page, "page", 0, "page currently being read")
	cmd.Flags().StringVar(&section, "section", "", "text of the section currently being read")
	cmd.Flags().StringVar(&document, "document", "", "name of the document currently being read")
	cmd.Flags().IntVar(&limit, "limit", rank.DefaultRelatedLimit, "number of sections to suggest")
	return cmd
}
