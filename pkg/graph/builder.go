package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/kiwi-persona/pkg/logger"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/ner"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/segment"

	"golang.org/x/sync/errgroup"
)

// Builder turns segments into a Graph using an entity extractor.
//
// A Builder should be created using NewBuilder.
type Builder struct {
	extractor   ner.Extractor
	excluded    map[string]struct{}
	parallelism int
}

// NewBuilderParams defines the configuration parameters for creating
// a new Builder.
//
// Extractor finds the entity mentions of each segment.
// ExcludedLabels lists mention labels that never become entity nodes; nil
// means CARDINAL and ORDINAL.
// Parallelism bounds concurrent extractor calls; values below 2 extract
// sequentially.
type NewBuilderParams struct {
	Extractor      ner.Extractor
	ExcludedLabels []string
	Parallelism    int
}

// NewBuilder creates a Builder.
//
// Example:
//
//	b := graph.NewBuilder(graph.NewBuilderParams{
//		Extractor: heuristic.NewHeuristicExtractor(),
//	})
//	g, err := b.Build(ctx, segments)
func NewBuilder(params NewBuilderParams) *Builder {
	excluded := ner.DefaultExcludedLabels()
	if params.ExcludedLabels != nil {
		excluded = make(map[string]struct{}, len(params.ExcludedLabels))
		for _, l := range params.ExcludedLabels {
			excluded[normalizeLabel(l)] = struct{}{}
		}
	}

	return &Builder{
		extractor:   params.Extractor,
		excluded:    excluded,
		parallelism: params.Parallelism,
	}
}

func normalizeLabel(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}

// Build creates the graph for segments in the given order. A segment without
// usable mentions becomes an isolated node. The only error source is the
// extractor; its error is returned with the failing segment id.
func (b *Builder) Build(ctx context.Context, segments []segment.Segment) (*Graph, error) {
	mentions, err := b.extractAll(ctx, segments)
	if err != nil {
		return nil, err
	}

	g := New()
	for i, seg := range segments {
		id := g.AddSegment(seg.Document, seg.Page, seg.Text)
		for _, m := range mentions[i] {
			if _, skip := b.excluded[normalizeLabel(m.Label)]; skip {
				continue
			}
			identity := ner.Normalize(m.Text)
			if !g.AddEntity(identity) {
				continue
			}
			g.AddEdge(id, identity)
		}
	}

	logger.Debug(
		"[GRAPH] Built graph",
		"segments", g.NumSegments(),
		"entities", g.NumEntities(),
		"edges", g.NumEdges(),
	)
	return g, nil
}

func (b *Builder) extractAll(ctx context.Context, segments []segment.Segment) ([][]ner.Mention, error) {
	out := make([][]ner.Mention, len(segments))

	extract := func(ctx context.Context, i int) error {
		seg := segments[i]
		m, err := b.extractor.ExtractEntities(ctx, seg.Text)
		if err != nil {
			return fmt.Errorf("failed to extract entities for %s: %w", SegmentID(seg.Document, seg.Page), err)
		}
		out[i] = m
		return nil
	}

	if b.parallelism < 2 {
		for i := range segments {
			if err := extract(ctx, i); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(b.parallelism)
	for i := range segments {
		eg.Go(func() error {
			return extract(gCtx, i)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
