// Package pipeline runs one ranking pass: discover documents, split them
// into segments, build the entity graph and rank the segments.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/OFFIS-RIT/kiwi-persona/internal/timing"
	"github.com/OFFIS-RIT/kiwi-persona/internal/util"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/ai"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/graph"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/loader"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/logger"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/rank"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/segment"
)

// Request holds the per-run inputs.
type Request struct {
	Persona     string
	JobToBeDone string
	TopK        int
}

// Pipeline wires the ranking components. It holds no per-run state and may
// serve concurrent runs if its collaborators do.
//
// A Pipeline should be created using NewPipeline.
type Pipeline struct {
	pages     loader.PageLoader
	segmenter *segment.Segmenter
	builder   *graph.Builder
	ranker    *rank.Ranker
	reporters map[string]ai.MetricsReporter
}

// NewPipelineParams defines the components of a Pipeline.
//
// Pages extracts the pages of each discovered document.
// Reporters are logged after every run under their map key.
type NewPipelineParams struct {
	Pages     loader.PageLoader
	Segmenter *segment.Segmenter
	Builder   *graph.Builder
	Ranker    *rank.Ranker
	Reporters map[string]ai.MetricsReporter
}

// NewPipeline creates a Pipeline.
func NewPipeline(params NewPipelineParams) *Pipeline {
	segmenter := params.Segmenter
	if segmenter == nil {
		segmenter = segment.NewSegmenter(segment.DefaultChunkSize)
	}
	return &Pipeline{
		pages:     params.Pages,
		segmenter: segmenter,
		builder:   params.Builder,
		ranker:    params.Ranker,
		reporters: params.Reporters,
	}
}

// Run ranks the documents of source for req. A document whose pages cannot
// be extracted is logged and skipped; a source without documents yields an
// Output with no sections.
func (p *Pipeline) Run(ctx context.Context, source loader.DocumentSource, req Request) (Output, error) {
	runID := util.NewID()
	rec := timing.NewRecorder()

	out := Output{
		Metadata: Metadata{
			Persona:     req.Persona,
			JobToBeDone: req.JobToBeDone,
			Documents:   []string{},
		},
		RankedSections: []rank.Section{},
	}

	stop := rec.Start("discover")
	files, err := source.ListDocuments(ctx)
	stop()
	if err != nil {
		return Output{}, fmt.Errorf("failed to list documents: %w", err)
	}
	if len(files) == 0 {
		logger.Warn("[PIPELINE] No documents found", "run", runID)
		return out, nil
	}
	logger.Info("[PIPELINE] Found documents", "run", runID, "count", len(files))

	stop = rec.Start("segment")
	var segments []segment.Segment
	for _, file := range files {
		out.Metadata.Documents = append(out.Metadata.Documents, file.Name)

		pages, err := p.pages.GetPages(ctx, file)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return Output{}, err
			}
			logger.Error("[PIPELINE] Skipping document", "run", runID, "document", file.Name, "err", err)
			continue
		}
		segs := p.segmenter.Split(file.Name, pages)
		logger.Debug("[PIPELINE] Segmented document", "run", runID, "document", file.Name, "pages", len(pages), "segments", len(segs))
		segments = append(segments, segs...)
	}
	stop()

	stop = rec.Start("graph")
	g, err := p.builder.Build(ctx, segments)
	stop()
	if err != nil {
		return Output{}, fmt.Errorf("failed to build graph: %w", err)
	}

	stop = rec.Start("rank")
	sections, err := p.ranker.Rank(ctx, g, req.Persona, req.JobToBeDone, req.TopK)
	stop()
	if err != nil {
		return Output{}, fmt.Errorf("failed to rank segments: %w", err)
	}
	out.RankedSections = sections

	keyvals := []any{
		"run", runID,
		"segments", g.NumSegments(),
		"entities", g.NumEntities(),
		"sections", len(sections),
	}
	logger.Info("[PIPELINE] Ranking complete", append(keyvals, rec.KeyVals()...)...)
	for name, r := range p.reporters {
		m := r.GetMetrics()
		logger.Info("[PIPELINE] AI usage",
			"run", runID,
			"client", name,
			"requests", m.Requests,
			"total_tokens", m.TotalTokens,
			"duration_ms", m.DurationMs,
		)
	}

	return out, nil
}

// ResetMetrics clears the metrics of all reporters.
func (p *Pipeline) ResetMetrics() {
	for _, r := range p.reporters {
		r.ResetMetrics()
	}
}
