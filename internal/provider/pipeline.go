package provider

import (
	"fmt"
	"io"

	"github.com/OFFIS-RIT/kiwi-persona/internal/config"
	"github.com/OFFIS-RIT/kiwi-persona/internal/pipeline"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/ai"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/graph"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/loader"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/loader/csv"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/loader/doc"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/loader/pdf"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/loader/text"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/loader/web"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/rank"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/segment"
)

// NewPageRegistry returns a registry with page loaders for every supported
// document type.
func NewPageRegistry() *loader.Registry {
	return loader.NewRegistry().
		Register(loader.DocumentFileTypePDF, pdf.NewPDFPageLoader()).
		Register(loader.DocumentFileTypeDocx, doc.NewDocxPageLoader()).
		Register(loader.DocumentFileTypeText, text.NewTextPageLoader()).
		Register(loader.DocumentFileTypeHTML, web.NewWebPageLoader()).
		Register(loader.DocumentFileTypeCSV, csv.NewCSVPageLoader())
}

// NewPipeline assembles a pipeline from cfg. The returned closer releases
// the embedder.
func NewPipeline(cfg config.Config) (*pipeline.Pipeline, io.Closer, error) {
	embedder, closer, err := NewEmbedder(cfg.Embedder, cfg.Parallelism)
	if err != nil {
		return nil, nil, err
	}
	extractor, err := NewExtractor(cfg.Extractor, cfg.Parallelism)
	if err != nil {
		closer.Close()
		return nil, nil, fmt.Errorf("could not create extractor: %w", err)
	}

	reporters := map[string]ai.MetricsReporter{}
	if r, ok := embedder.(ai.MetricsReporter); ok {
		reporters["embedder"] = r
	}
	if r, ok := extractor.(ai.MetricsReporter); ok {
		reporters["extractor"] = r
	}

	bonus := cfg.ConnectivityBonus
	p := pipeline.NewPipeline(pipeline.NewPipelineParams{
		Pages:     NewPageRegistry(),
		Segmenter: segment.NewSegmenter(cfg.ChunkSize),
		Builder: graph.NewBuilder(graph.NewBuilderParams{
			Extractor:   extractor,
			Parallelism: cfg.Parallelism,
		}),
		Ranker: rank.NewRanker(rank.NewRankerParams{
			Embedder:          embedder,
			ConnectivityBonus: &bonus,
			Parallelism:       cfg.Parallelism,
		}),
		Reporters: reporters,
	})
	return p, closer, nil
}
