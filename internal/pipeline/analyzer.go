package pipeline

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/dgallion1/docsense/internal/doctree"
	"github.com/dgallion1/docsense/internal/outline"
	"github.com/dgallion1/docsense/internal/parser"
	"github.com/dgallion1/docsense/internal/sections"
	"golang.org/x/sync/errgroup"
)

// Source is one document to extract, read from Path or, if set, Data.
type Source struct {
	Name string
	Path string
	Data []byte
}

// Extraction is the per-document result of parse, classify and section
// building. Err is set when the document was skipped.
type Extraction struct {
	Name     string
	Runs     []doctree.TextRun
	Tree     *doctree.DocTree
	Sections []doctree.Section
	Err      error
}

// Analyzer extracts documents with bounded parallelism. Documents share no
// state while they are processed.
type Analyzer struct {
	maxConcurrent int
	log           *slog.Logger
}

func NewAnalyzer(maxConcurrent int, log *slog.Logger) *Analyzer {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Analyzer{maxConcurrent: maxConcurrent, log: log}
}

// Extract runs one document through the layout extractor, the heading
// classifier and the section builder.
func (a *Analyzer) Extract(src Source) Extraction {
	res := Extraction{Name: src.Name}

	var runs []doctree.TextRun
	var err error
	if src.Data != nil {
		var p parser.Parser
		if p, err = parser.ForFile(src.Name); err == nil {
			runs, err = p.Parse(bytes.NewReader(src.Data), src.Name)
		}
	} else {
		runs, err = parser.ParseFile(src.Path)
	}
	if err != nil {
		res.Err = err
		return res
	}

	res.Runs = runs
	res.Tree = outline.Analyze(src.Name, runs)
	res.Sections = sections.Build(runs, src.Name)
	res.Tree.Sections = res.Sections
	return res
}

// ExtractAll extracts every source and returns results in input order.
// A failing document is logged and marked, never aborting its siblings.
// If ctx is cancelled, documents not yet started are marked with the
// context error and finished results are kept.
func (a *Analyzer) ExtractAll(ctx context.Context, srcs []Source) ([]Extraction, error) {
	results := make([]Extraction, len(srcs))
	started := make([]bool, len(srcs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.maxConcurrent)
	for i, src := range srcs {
		if gctx.Err() != nil {
			break
		}
		started[i] = true
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Extraction{Name: src.Name, Err: err}
				return err
			}
			results[i] = a.Extract(src)
			if err := results[i].Err; err != nil {
				a.log.Error("document skipped", "document", src.Name, "error", err)
			}
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	for i, src := range srcs {
		if !started[i] {
			results[i] = Extraction{Name: src.Name, Err: err}
		}
	}
	return results, err
}
