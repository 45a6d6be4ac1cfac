package rank

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OFFIS-RIT/kiwi-persona/pkg/ai"
	"github.com/OFFIS-RIT/kiwi-persona/pkg/graph"
)

// vectorEmbedder returns fixed vectors per text and a default vector
// otherwise.
type vectorEmbedder struct {
	vectors map[string][]float32
	def     []float32
	calls   atomic.Int32
}

func (v *vectorEmbedder) GenerateEmbedding(_ context.Context, input []byte) ([]float32, error) {
	v.calls.Add(1)
	if vec, ok := v.vectors[string(input)]; ok {
		return vec, nil
	}
	return v.def, nil
}

func ptr(f float64) *float64 { return &f }

func TestComposeQuery(t *testing.T) {
	assert.Equal(t, "Persona: Investor. Task: Find company risk mentions",
		ComposeQuery("Investor", "Find company risk mentions"))
	assert.Equal(t, ComposeQuery("a", "b"), ComposeQuery("a", "b"))
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 1}, []float32{-1, -1}, -1},
		{"scaled", []float32{1, 0}, []float32{5, 0}, 1},
		{"zero norm", []float32{0, 0}, []float32{1, 1}, 0},
		{"both zero", []float32{0, 0}, []float32{0, 0}, 0},
		{"length mismatch", []float32{1}, []float32{1, 1}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestRound4(t *testing.T) {
	assert.Equal(t, 0.1235, Round4(0.12345678))
	assert.Equal(t, 1.0, Round4(0.99999))
	assert.Equal(t, -0.5, Round4(-0.50001))

	// exact binary ties round to even like Python's round(x, 4)
	assert.Equal(t, 0.0312, Round4(0.03125))
	assert.Equal(t, 0.0938, Round4(0.09375))
	assert.Equal(t, -0.0312, Round4(-0.03125))
}

func buildGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	a := g.AddSegment("A.pdf", 1, "alpha")
	b := g.AddSegment("B.pdf", 1, "beta")
	c := g.AddSegment("B.pdf", 2, "gamma")
	for _, e := range []string{"acme corp", "berlin", "risk"} {
		g.AddEntity(e)
	}
	g.AddEdge(a, "acme corp")
	g.AddEdge(b, "acme corp")
	g.AddEdge(b, "berlin")
	g.AddEdge(c, "acme corp")
	g.AddEdge(c, "berlin")
	g.AddEdge(c, "risk")
	return g
}

func TestRank_ScoreIsSimilarityPlusBonus(t *testing.T) {
	g := buildGraph(t)
	query := ComposeQuery("p", "j")
	emb := &vectorEmbedder{vectors: map[string][]float32{
		query:   {1, 0.5, 0},
		"alpha": {0.9, 0.1, 0.3},
		"beta":  {0.1, 1, 0.2},
		"gamma": {-0.2, 0.3, 1},
	}}

	sections, err := NewRanker(NewRankerParams{Embedder: emb}).Rank(context.Background(), g, "p", "j", 10)
	require.NoError(t, err)
	require.Len(t, sections, 3)

	for _, s := range sections {
		id := graph.SegmentID(s.Document, s.Page)
		node, ok := g.Segment(id)
		require.True(t, ok)
		want := Round4(CosineSimilarity(emb.vectors[query], emb.vectors[node.Text]) + 0.01*float64(g.Degree(id)))
		assert.Equal(t, want, s.ImportanceScore, id)
		assert.Equal(t, node.Text, s.Text)
	}
	for i := 1; i < len(sections); i++ {
		assert.GreaterOrEqual(t, sections[i-1].ImportanceScore, sections[i].ImportanceScore)
	}
}

func TestRank_ConnectivityBreaksEqualSimilarity(t *testing.T) {
	g := graph.New()
	a := g.AddSegment("A.pdf", 1, "acme text")
	b := g.AddSegment("B.pdf", 1, "acme berlin text")
	g.AddEntity("acme corp")
	g.AddEntity("berlin")
	g.AddEdge(a, "acme corp")
	g.AddEdge(b, "acme corp")
	g.AddEdge(b, "berlin")

	emb := &vectorEmbedder{def: []float32{0.3, 0.4, 0.5}}
	sections, err := NewRanker(NewRankerParams{Embedder: emb}).
		Rank(context.Background(), g, "Investor", "Find company risk mentions", 10)
	require.NoError(t, err)
	require.Len(t, sections, 2)

	assert.Equal(t, "B.pdf", sections[0].Document)
	assert.Equal(t, "A.pdf", sections[1].Document)
	assert.InDelta(t, 0.01, sections[0].ImportanceScore-sections[1].ImportanceScore, 1e-9)
	assert.Equal(t, 1.02, sections[0].ImportanceScore)
}

func TestRank_TopK(t *testing.T) {
	g := graph.New()
	for i := 1; i <= 12; i++ {
		g.AddSegment("doc", i, fmt.Sprintf("page %d", i))
	}
	r := NewRanker(NewRankerParams{Embedder: &vectorEmbedder{def: []float32{1, 0}}})

	tests := []struct {
		k    int
		want int
	}{
		{k: 3, want: 3},
		{k: 12, want: 12},
		{k: 50, want: 12},
		{k: 0, want: DefaultTopK},
		{k: -1, want: DefaultTopK},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("k=%d", tt.k), func(t *testing.T) {
			sections, err := r.Rank(context.Background(), g, "p", "j", tt.k)
			require.NoError(t, err)
			assert.Len(t, sections, tt.want)
		})
	}
}

func TestRank_TiesKeepInsertionOrder(t *testing.T) {
	g := graph.New()
	pages := []int{5, 2, 9, 1}
	for _, p := range pages {
		g.AddSegment("doc", p, "same")
	}

	sections, err := NewRanker(NewRankerParams{Embedder: &vectorEmbedder{def: []float32{1}}}).
		Rank(context.Background(), g, "p", "j", 10)
	require.NoError(t, err)

	got := make([]int, len(sections))
	for i, s := range sections {
		got[i] = s.Page
	}
	assert.Equal(t, pages, got)
}

func TestRank_EntityNodesNeverRanked(t *testing.T) {
	g := buildGraph(t)
	sections, err := NewRanker(NewRankerParams{Embedder: &vectorEmbedder{def: []float32{1, 1}}}).
		Rank(context.Background(), g, "p", "j", 100)
	require.NoError(t, err)
	require.Len(t, sections, g.NumSegments())
	for _, s := range sections {
		_, ok := g.Segment(graph.SegmentID(s.Document, s.Page))
		assert.True(t, ok)
		assert.False(t, g.HasEntity(s.Text))
	}
}

func TestRank_ZeroNormEmbedding(t *testing.T) {
	g := buildGraph(t)
	emb := &vectorEmbedder{def: []float32{0, 0, 0}}

	sections, err := NewRanker(NewRankerParams{Embedder: emb}).Rank(context.Background(), g, "p", "j", 10)
	require.NoError(t, err)
	require.Len(t, sections, 3)
	assert.Equal(t, []float64{0.03, 0.02, 0.01}, []float64{
		sections[0].ImportanceScore, sections[1].ImportanceScore, sections[2].ImportanceScore,
	})
	for _, s := range sections {
		assert.False(t, math.IsNaN(s.ImportanceScore))
	}
}

func TestRank_CustomBonus(t *testing.T) {
	g := buildGraph(t)
	emb := &vectorEmbedder{def: []float32{1}}

	sections, err := NewRanker(NewRankerParams{Embedder: emb, ConnectivityBonus: ptr(0)}).
		Rank(context.Background(), g, "p", "j", 10)
	require.NoError(t, err)
	for _, s := range sections {
		assert.Equal(t, 1.0, s.ImportanceScore)
	}
	// without a bonus all scores tie and insertion order wins
	assert.Equal(t, "A.pdf", sections[0].Document)

	r := NewRanker(NewRankerParams{Embedder: emb, ConnectivityBonus: ptr(0.5)})
	assert.Equal(t, 0.5, r.ConnectivityBonus())
	sections, err = r.Rank(context.Background(), g, "p", "j", 1)
	require.NoError(t, err)
	assert.Equal(t, 2.5, sections[0].ImportanceScore)

	assert.Equal(t, DefaultConnectivityBonus, NewRanker(NewRankerParams{Embedder: emb}).ConnectivityBonus())
}

func TestRank_Idempotent(t *testing.T) {
	g := buildGraph(t)
	emb := &vectorEmbedder{vectors: map[string][]float32{
		"alpha": {1, 0}, "beta": {0, 1}, "gamma": {1, 1},
	}, def: []float32{0.6, 0.8}}
	r := NewRanker(NewRankerParams{Embedder: emb})

	first, err := r.Rank(context.Background(), g, "p", "j", 10)
	require.NoError(t, err)
	second, err := r.Rank(context.Background(), g, "p", "j", 10)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	// one query plus one call per segment, per pass
	assert.Equal(t, int32(8), emb.calls.Load())
}

func TestRank_EmptyGraph(t *testing.T) {
	emb := &vectorEmbedder{}
	sections, err := NewRanker(NewRankerParams{Embedder: emb}).Rank(context.Background(), graph.New(), "p", "j", 5)
	require.NoError(t, err)
	assert.NotNil(t, sections)
	assert.Empty(t, sections)
	assert.Zero(t, emb.calls.Load())
}

func TestRank_QueryEmbeddingFailure(t *testing.T) {
	boom := errors.New("model offline")
	emb := ai.EmbedderFunc(func(_ context.Context, input []byte) ([]float32, error) {
		if string(input) == ComposeQuery("p", "j") {
			return nil, boom
		}
		return []float32{1}, nil
	})

	_, err := NewRanker(NewRankerParams{Embedder: emb}).Rank(context.Background(), buildGraph(t), "p", "j", 10)
	require.ErrorIs(t, err, ErrQueryEmbedding)
	require.ErrorIs(t, err, boom)
}

func TestRank_SegmentEmbeddingFailure(t *testing.T) {
	boom := errors.New("bad segment")
	emb := ai.EmbedderFunc(func(_ context.Context, input []byte) ([]float32, error) {
		if string(input) == "beta" {
			return nil, boom
		}
		return []float32{1}, nil
	})

	for _, parallelism := range []int{0, 3} {
		_, err := NewRanker(NewRankerParams{Embedder: emb, Parallelism: parallelism}).
			Rank(context.Background(), buildGraph(t), "p", "j", 10)
		require.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrQueryEmbedding)
		assert.Contains(t, err.Error(), "B.pdf#p1")
	}
}

func TestRank_ParallelMatchesSequential(t *testing.T) {
	g := graph.New()
	vectors := map[string][]float32{}
	for i := 1; i <= 64; i++ {
		text := fmt.Sprintf("segment %d", i)
		id := g.AddSegment(fmt.Sprintf("doc%d", i%3), i, text)
		vectors[text] = []float32{float32(i % 7), float32(i % 5), 1}
		for j := 0; j < i%4; j++ {
			e := fmt.Sprintf("entity %d", j)
			g.AddEntity(e)
			g.AddEdge(id, e)
		}
	}
	emb := &vectorEmbedder{vectors: vectors, def: []float32{1, 2, 3}}

	seq, err := NewRanker(NewRankerParams{Embedder: emb}).Rank(context.Background(), g, "p", "j", 64)
	require.NoError(t, err)
	par, err := NewRanker(NewRankerParams{Embedder: emb, Parallelism: 8}).Rank(context.Background(), g, "p", "j", 64)
	require.NoError(t, err)
	assert.Equal(t, seq, par)
}
