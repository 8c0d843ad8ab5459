package fusion_test

import (
	"math"
	"testing"

	"github.com/semtab/linker/pkg/fusion"
	"github.com/semtab/linker/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(uri string, rank int, ctxEmb, absEmb []float32) types.CandidateEmbeddings {
	return types.CandidateEmbeddings{
		Candidate:         types.Candidate{Entity: types.NewEntity(uri), Rank: rank},
		ContextEmbedding:  ctxEmb,
		AbstractEmbedding: absEmb,
	}
}

func uris(scored []types.ScoredCandidate) []string {
	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.Candidate.Entity.URI
	}
	return out
}

func float(v float64) *float64 { return &v }

func TestRankContractViolations(t *testing.T) {
	candidates := []types.CandidateEmbeddings{candidate("http://x.org/A", 0, nil, nil)}

	_, err := fusion.Rank(candidates, -0.1, nil)
	assert.ErrorIs(t, err, fusion.ErrInvalidAlpha)

	_, err = fusion.Rank(candidates, 1.1, nil)
	assert.ErrorIs(t, err, fusion.ErrInvalidAlpha)

	_, err = fusion.Rank(candidates, 0.5, float(-1))
	assert.ErrorIs(t, err, fusion.ErrInvalidDefaultScore)
}

func TestRankEmptyInput(t *testing.T) {
	scored, err := fusion.Rank(nil, 0.5, nil)
	require.NoError(t, err)
	assert.Empty(t, scored)
}

func TestRankAllUnscorableWithoutDefault(t *testing.T) {
	candidates := []types.CandidateEmbeddings{
		candidate("http://x.org/A", 0, nil, nil),
		candidate("http://x.org/B", 1, []float32{1, 0}, nil),
		candidate("http://x.org/C", 2, nil, []float32{1, 0}),
	}

	scored, err := fusion.Rank(candidates, 0.5, nil)
	require.NoError(t, err)
	require.Len(t, scored, 3)

	// original order preserved, no scores assigned
	assert.Equal(t, []string{"http://x.org/A", "http://x.org/B", "http://x.org/C"}, uris(scored))
	for i, s := range scored {
		assert.Equal(t, i, s.Rank)
		assert.Nil(t, s.Distance)
		assert.Nil(t, s.Score)
	}
}

func TestRankOrdersByFusedScore(t *testing.T) {
	ctxEmb := []float32{1, 0}
	// distances: A=1 (orthogonal), B=0 (identical), C=1-cos(45deg)
	candidates := []types.CandidateEmbeddings{
		candidate("http://x.org/A", 0, ctxEmb, []float32{0, 1}),
		candidate("http://x.org/B", 1, ctxEmb, []float32{1, 0}),
		candidate("http://x.org/C", 2, ctxEmb, []float32{1, 1}),
	}

	// alpha=0.5: normalized ranks [0, 0.5, 1], normalized distances
	// [1, 0, 0.2929] -> fused scores [0.5, 0.25, 0.6464]
	scored, err := fusion.Rank(candidates, 0.5, nil)
	require.NoError(t, err)
	require.Len(t, scored, 3)

	assert.Equal(t, []string{"http://x.org/B", "http://x.org/A", "http://x.org/C"}, uris(scored))
	assert.InDelta(t, 0.25, *scored[0].Score, 1e-9)
	assert.InDelta(t, 0.5, *scored[1].Score, 1e-9)
	assert.InDelta(t, 0.6464, *scored[2].Score, 1e-4)

	// scores ascend
	for i := 1; i < len(scored); i++ {
		assert.LessOrEqual(t, *scored[i-1].Score, *scored[i].Score)
	}
}

func TestRankAlphaExtremes(t *testing.T) {
	ctxEmb := []float32{1, 0}
	// retrieval order is the opposite of the distance order
	candidates := []types.CandidateEmbeddings{
		candidate("http://x.org/worst", 0, ctxEmb, []float32{0, 1}),
		candidate("http://x.org/mid", 1, ctxEmb, []float32{1, 1}),
		candidate("http://x.org/best", 2, ctxEmb, []float32{1, 0}),
	}

	// alpha=1.0 ranks purely by original rank
	scored, err := fusion.Rank(candidates, 1.0, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://x.org/worst", "http://x.org/mid", "http://x.org/best"}, uris(scored))

	// alpha=0.0 ranks purely by distance
	scored, err = fusion.Rank(candidates, 0.0, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://x.org/best", "http://x.org/mid", "http://x.org/worst"}, uris(scored))
}

func TestRankDefaultScoreInterleaves(t *testing.T) {
	ctxEmb := []float32{1, 0}
	candidates := []types.CandidateEmbeddings{
		candidate("http://x.org/far", 0, ctxEmb, []float32{0, 1}), // distance 1.0
		candidate("http://x.org/missing", 1, nil, nil),            // default 0.9
		candidate("http://x.org/near", 2, ctxEmb, []float32{1, 0}), // distance 0.0
	}

	scored, err := fusion.Rank(candidates, 0.0, float(0.9))
	require.NoError(t, err)
	require.Len(t, scored, 3)

	// the unscorable candidate carries exactly the default as its distance
	// and beats the poorly-scoring scorable one
	assert.Equal(t, []string{"http://x.org/near", "http://x.org/missing", "http://x.org/far"}, uris(scored))
	assert.Equal(t, 0.9, *scored[1].Distance)
	for _, s := range scored {
		require.NotNil(t, s.Score)
	}
}

func TestRankZeroDefaultScoreCounts(t *testing.T) {
	// an explicit default of 0.0 is provided, not absent
	candidates := []types.CandidateEmbeddings{
		candidate("http://x.org/A", 0, nil, nil),
		candidate("http://x.org/B", 1, nil, nil),
	}

	scored, err := fusion.Rank(candidates, 1.0, float(0))
	require.NoError(t, err)
	require.Len(t, scored, 2)
	for _, s := range scored {
		require.NotNil(t, s.Distance)
		assert.Equal(t, 0.0, *s.Distance)
		require.NotNil(t, s.Score)
	}
}

func TestRankSingleCandidateNoDivisionByZero(t *testing.T) {
	candidates := []types.CandidateEmbeddings{
		candidate("http://x.org/only", 0, []float32{1, 0}, []float32{1, 1}),
	}

	scored, err := fusion.Rank(candidates, 0.5, nil)
	require.NoError(t, err)
	require.Len(t, scored, 1)
	require.NotNil(t, scored[0].Score)
	assert.False(t, math.IsNaN(*scored[0].Score))
	assert.False(t, math.IsInf(*scored[0].Score, 0))
	// degenerate min-max ranges normalize to 0
	assert.Equal(t, 0.0, *scored[0].Score)
}

func TestRankSingleScorableAmongMany(t *testing.T) {
	ctxEmb := []float32{1, 0}
	candidates := []types.CandidateEmbeddings{
		candidate("http://x.org/A", 0, nil, nil),
		candidate("http://x.org/B", 1, ctxEmb, []float32{0, 1}),
		candidate("http://x.org/C", 2, nil, nil),
	}

	scored, err := fusion.Rank(candidates, 0.5, nil)
	require.NoError(t, err)
	require.Len(t, scored, 3)

	// scored candidate first, unscorables appended in original order
	assert.Equal(t, []string{"http://x.org/B", "http://x.org/A", "http://x.org/C"}, uris(scored))
	require.NotNil(t, scored[0].Score)
	assert.False(t, math.IsNaN(*scored[0].Score))
	assert.Nil(t, scored[1].Score)
	assert.Nil(t, scored[2].Score)
}

func TestRankStableTies(t *testing.T) {
	ctxEmb := []float32{1, 0}
	absEmb := []float32{1, 1}
	// identical distances; alpha=0 makes every fused score equal
	candidates := []types.CandidateEmbeddings{
		candidate("http://x.org/first", 0, ctxEmb, absEmb),
		candidate("http://x.org/second", 1, ctxEmb, absEmb),
		candidate("http://x.org/third", 2, ctxEmb, absEmb),
	}

	scored, err := fusion.Rank(candidates, 0.0, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://x.org/first", "http://x.org/second", "http://x.org/third"}, uris(scored))
}
