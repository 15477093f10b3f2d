// Package collocation ranks bigrams by how much more often their words
// appear together than chance predicts.
package collocation

import (
	"math"
	"sort"
	"strings"

	"github.com/cognicore/protonlens/pkg/protonlens/analytics"
)

// Scorer computes smoothed pointwise mutual information over token counts.
type Scorer struct {
	epsilon  float64 // smoothing constant
	minCount int64
}

// NewScorer returns a Scorer. Non-positive epsilon defaults to 1; bigrams
// seen fewer than minCount times are never ranked.
func NewScorer(epsilon float64, minCount int64) *Scorer {
	if epsilon <= 0 {
		epsilon = 1.0
	}
	if minCount < 1 {
		minCount = 1
	}
	return &Scorer{epsilon: epsilon, minCount: minCount}
}

// PMI is log((n_ab + ε) * n / ((n_a + ε)(n_b + ε))), where n_ab counts the
// bigram, n_a and n_b count its words and n is the total token count.
func (s *Scorer) PMI(nAB, nA, nB, n int64) float64 {
	if n == 0 {
		return 0
	}
	num := (float64(nAB) + s.epsilon) * float64(n)
	den := (float64(nA) + s.epsilon) * (float64(nB) + s.epsilon)
	return math.Log(num / den)
}

// NPMI normalizes PMI by -log P(a,b), giving a value in roughly [-1, 1].
func (s *Scorer) NPMI(nAB, nA, nB, n int64) float64 {
	if n == 0 || nAB == 0 {
		return 0
	}
	logP := math.Log((float64(nAB) + s.epsilon) / float64(n))
	if logP == 0 {
		return 0
	}
	return s.PMI(nAB, nA, nB, n) / -logP
}

// Collocation is a scored bigram.
type Collocation struct {
	Gram      []string `json:"gram"`
	Frequency int64    `json:"frequency"`
	PMI       float64  `json:"pmi"`
	NPMI      float64  `json:"npmi"`
}

// Rank scores every bigram against the unigram table and returns the k best
// by NPMI (non-positive k keeps all). Ties fall back to frequency, then to
// the bigram text.
func (s *Scorer) Rank(unigrams, bigrams []analytics.Entry, k int) []Collocation {
	counts := make(map[string]int64, len(unigrams))
	var total int64
	for _, e := range unigrams {
		if len(e.Gram) != 1 {
			continue
		}
		counts[e.Gram[0]] += e.Frequency
		total += e.Frequency
	}

	var out []Collocation
	for _, e := range bigrams {
		if len(e.Gram) != 2 || e.Frequency < s.minCount {
			continue
		}
		nA, nB := counts[e.Gram[0]], counts[e.Gram[1]]
		out = append(out, Collocation{
			Gram:      e.Gram,
			Frequency: e.Frequency,
			PMI:       s.PMI(e.Frequency, nA, nB, total),
			NPMI:      s.NPMI(e.Frequency, nA, nB, total),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].NPMI != out[j].NPMI {
			return out[i].NPMI > out[j].NPMI
		}
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		return strings.Join(out[i].Gram, " ") < strings.Join(out[j].Gram, " ")
	})
	if k > 0 && k < len(out) {
		out = out[:k]
	}
	return out
}
