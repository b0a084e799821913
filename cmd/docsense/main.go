package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgallion1/docsense/internal/pipeline"
	"github.com/spf13/cobra"
)

func main() {
	var verbose bool
	root := &cobra.Command{
		Use:          "docsense",
		Short:        "Detect document outlines and rank sections for a persona and task",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log extraction progress to stderr")

	logger := func() *slog.Logger {
		if !verbose {
			return slog.New(slog.NewTextHandler(io.Discard, nil))
		}
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	root.AddCommand(outlineCmd(logger), analyzeCmd(logger), relatedCmd(logger))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// sources names each input file by its base name.
func sources(paths []string) []pipeline.Source {
	out := make([]pipeline.Source, len(paths))
	for i, p := range paths {
		out[i] = pipeline.Source{Name: filepath.Base(p), Path: p}
	}
	return out
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
