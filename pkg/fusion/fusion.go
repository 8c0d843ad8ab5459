// Package fusion implements the rank-fusion scoring used by embedding-based
// candidate generators: it combines a candidate's original retrieval rank
// with the cosine distance between its context and abstract embeddings into
// a single normalized score. Lower scores are better.
package fusion

import (
	"errors"
	"sort"

	"github.com/semtab/linker/pkg/types"
	"github.com/semtab/linker/pkg/utils"
)

// Contract violations, rejected before any computation.
var (
	ErrInvalidAlpha        = errors.New("alpha must be in [0.0, 1.0]")
	ErrInvalidDefaultScore = errors.New("default score must be >= 0.0")
)

// minMaxScaler rescales values of a known range into [0, 1]. A degenerate
// range (span 0, e.g. a single-element fit set) maps every value to 0
// instead of dividing by zero.
type minMaxScaler struct {
	min  float64
	span float64
}

func newMinMaxScaler(min, max float64) minMaxScaler {
	return minMaxScaler{min: min, span: max - min}
}

func (s minMaxScaler) transform(v float64) float64 {
	if s.span <= 0 {
		return 0
	}
	return (v - s.min) / s.span
}

// Rank scores and reorders candidates by fusing their original retrieval
// rank with the cosine distance between their context and abstract
// embeddings. alpha weighs the rank component; 1-alpha weighs the distance
// component.
//
// Candidates missing either embedding cannot be scored. When defaultScore
// is non-nil they take part in the ranking with that value as their raw
// distance; otherwise they are excluded from scoring and appended after the
// scored candidates, keeping their original relative order. If no candidate
// is scorable and no default is given, the input comes back in its original
// order with Distance and Score unset.
//
// The returned ScoredCandidate records the candidate's position in the
// input slice as its original rank.
func Rank(candidates []types.CandidateEmbeddings, alpha float64, defaultScore *float64) ([]types.ScoredCandidate, error) {
	if alpha < 0 || alpha > 1 {
		return nil, ErrInvalidAlpha
	}
	if defaultScore != nil && *defaultScore < 0 {
		return nil, ErrInvalidDefaultScore
	}

	var scored, unscored []types.ScoredCandidate
	for rank, c := range candidates {
		switch {
		case c.ContextEmbedding != nil && c.AbstractEmbedding != nil:
			d := utils.CosineDistance(c.ContextEmbedding, c.AbstractEmbedding)
			scored = append(scored, types.ScoredCandidate{Candidate: c.Candidate, Rank: rank, Distance: &d})
		case defaultScore != nil:
			d := *defaultScore
			scored = append(scored, types.ScoredCandidate{Candidate: c.Candidate, Rank: rank, Distance: &d})
		default:
			// keep the original order, but push all of them at the end
			unscored = append(unscored, types.ScoredCandidate{Candidate: c.Candidate, Rank: rank})
		}
	}

	if len(scored) == 0 {
		return unscored, nil
	}

	// Ranks normalize over the full candidate range; distances over the
	// span the scored set actually covers.
	rankScaler := newMinMaxScaler(0, float64(len(candidates)-1))
	distMin, distMax := *scored[0].Distance, *scored[0].Distance
	for _, s := range scored[1:] {
		if *s.Distance < distMin {
			distMin = *s.Distance
		}
		if *s.Distance > distMax {
			distMax = *s.Distance
		}
	}
	distScaler := newMinMaxScaler(distMin, distMax)

	for i := range scored {
		score := alpha*rankScaler.transform(float64(scored[i].Rank)) +
			(1-alpha)*distScaler.transform(*scored[i].Distance)
		scored[i].Score = &score
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return *scored[i].Score < *scored[j].Score
	})

	return append(scored, unscored...), nil
}
