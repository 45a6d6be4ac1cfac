// Package rank scores the segment nodes of a graph against a persona and a
// task. A score is the cosine similarity of query and segment embeddings
// plus a connectivity bonus proportional to the number of linked entities.
package rank

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/OFFIS-RIT/kiwi-persona/pkg/ai"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/graph"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultTopK is used when a non-positive k is requested.
	DefaultTopK = 10
	// DefaultConnectivityBonus is added per linked entity.
	DefaultConnectivityBonus = 0.01
)

// ErrQueryEmbedding is returned when the persona/task query cannot be
// embedded. No segment can be scored without it.
var ErrQueryEmbedding = errors.New("failed to embed ranking query")

// Section is one ranked segment.
type Section struct {
	Document        string  `json:"document"`
	Page            int     `json:"page"`
	Text            string  `json:"text"`
	ImportanceScore float64 `json:"importance_score"`
}

// Ranker scores graph segments with an Embedder.
//
// A Ranker should be created using NewRanker.
type Ranker struct {
	embedder          ai.Embedder
	connectivityBonus float64
	parallelism       int
}

// NewRankerParams defines the configuration parameters for creating
// a new Ranker.
//
// ConnectivityBonus is the score added per linked entity; nil means
// DefaultConnectivityBonus so that an explicit zero disables the bonus.
// Parallelism bounds concurrent segment embeddings; values below 2 embed
// sequentially.
type NewRankerParams struct {
	Embedder          ai.Embedder
	ConnectivityBonus *float64
	Parallelism       int
}

// NewRanker creates a Ranker.
func NewRanker(params NewRankerParams) *Ranker {
	bonus := DefaultConnectivityBonus
	if params.ConnectivityBonus != nil {
		bonus = *params.ConnectivityBonus
	}
	return &Ranker{
		embedder:          params.Embedder,
		connectivityBonus: bonus,
		parallelism:       params.Parallelism,
	}
}

// ConnectivityBonus returns the score added per linked entity.
func (r *Ranker) ConnectivityBonus() float64 {
	return r.connectivityBonus
}

// ComposeQuery builds the text that is embedded as the ranking query.
func ComposeQuery(persona, job string) string {
	return fmt.Sprintf("Persona: %s. Task: %s", persona, job)
}

// CosineSimilarity returns dot(a,b)/(|a||b|). It returns 0 when either
// vector has zero norm or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Round4 rounds to 4 decimal places. Rounding is decided on the exact binary
// value with ties to even, so v*1e4 never introduces an error of its own.
func Round4(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 4, 64), 64)
	if err != nil {
		return v
	}
	return r
}

type scored struct {
	node  graph.SegmentNode
	score float64
}

// Rank returns at most k segments of g ordered by descending score. Equal
// scores keep segment insertion order. k <= 0 means DefaultTopK. An empty
// graph yields an empty result.
func (r *Ranker) Rank(ctx context.Context, g *graph.Graph, persona, job string, k int) ([]Section, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	segments := g.Segments()
	if len(segments) == 0 {
		return []Section{}, nil
	}

	query, err := r.embedder.GenerateEmbedding(ctx, []byte(ComposeQuery(persona, job)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryEmbedding, err)
	}

	vectors, err := r.embedSegments(ctx, segments)
	if err != nil {
		return nil, err
	}

	results := make([]scored, len(segments))
	for i, node := range segments {
		similarity := CosineSimilarity(query, vectors[i])
		bonus := r.connectivityBonus * float64(g.Degree(node.ID))
		results[i] = scored{node: node, score: Round4(similarity + bonus)}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].node.Index < results[j].node.Index
	})

	n := min(k, len(results))
	out := make([]Section, n)
	for i := range n {
		out[i] = Section{
			Document:        results[i].node.Document,
			Page:            results[i].node.Page,
			Text:            results[i].node.Text,
			ImportanceScore: results[i].score,
		}
	}

	logger.Debug("[RANK] Ranked segments", "segments", len(segments), "returned", n)
	return out, nil
}

// embedSegments embeds every segment node once. Vectors are stored by
// segment position so the result does not depend on execution order.
func (r *Ranker) embedSegments(ctx context.Context, segments []graph.SegmentNode) ([][]float32, error) {
	vectors := make([][]float32, len(segments))

	embed := func(ctx context.Context, i int) error {
		vec, err := r.embedder.GenerateEmbedding(ctx, []byte(segments[i].Text))
		if err != nil {
			return fmt.Errorf("failed to embed segment %s: %w", segments[i].ID, err)
		}
		vectors[i] = vec
		return nil
	}

	if r.parallelism < 2 {
		for i := range segments {
			if err := embed(ctx, i); err != nil {
				return nil, err
			}
		}
		return vectors, nil
	}

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(r.parallelism)
	for i := range segments {
		eg.Go(func() error {
			return embed(gCtx, i)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
