package usecase

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/marketwatch/backend/internal/domain"
)

// DefaultMatchThreshold is the pairwise similarity score at or above which
// two candidates are considered the same product.
const DefaultMatchThreshold = 0.75

// Brand similarity levels: exact case-insensitive match, one side a
// substring of the other, no relation.
const (
	brandExactScore     = 1.0
	brandSubstringScore = 0.8
)

// MatcherConfig holds configuration for the matcher.
type MatcherConfig struct {
	Threshold          float64
	Weights            domain.SimilarityWeights
	EnableDebugLogging bool
}

// Matcher scores pairwise product similarity and clusters candidates that
// refer to the same real-world product.
type Matcher struct {
	threshold          float64
	weights            domain.SimilarityWeights
	enableDebugLogging bool
}

// NewMatcher creates a matcher with the given configuration, falling back to
// the default threshold and weight profile where unset.
func NewMatcher(config MatcherConfig) *Matcher {
	threshold := config.Threshold
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}

	weights := config.Weights
	if weights == (domain.SimilarityWeights{}) {
		weights = domain.DefaultSimilarityWeights()
	}

	return &Matcher{
		threshold:          threshold,
		weights:            weights,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Threshold returns the configured grouping threshold.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Score computes a weighted similarity in [0,1] between two products,
// optionally using their offers for the price-proximity signal. Equal
// non-empty GTINs short-circuit to 1.0 regardless of every other signal.
// The result is symmetric in (a, b) and in (offerA, offerB).
func (m *Matcher) Score(a, b *domain.Product, offerA, offerB *domain.Offer) float64 {
	if a.GTIN != "" && b.GTIN != "" && a.GTIN == b.GTIN {
		return 1.0
	}

	tokensA := ExtractTokens(a.Name)
	tokensB := ExtractTokens(b.Name)

	brandSim := brandSimilarity(
		tokenOrFallback(tokensA, domain.TokenBrand, a.Brand),
		tokenOrFallback(tokensB, domain.TokenBrand, b.Brand),
	)

	modelSim := modelSimilarity(
		tokenOrFallback(tokensA, domain.TokenModelCode, a.ModelCode),
		tokenOrFallback(tokensB, domain.TokenModelCode, b.ModelCode),
	)

	overlap := specOverlap(tokensA, tokensB)

	priceProx := 0.0
	if offerA != nil && offerB != nil {
		priceProx = priceProximity(offerA.Price, offerB.Price)
	}

	score := m.weights.Brand*brandSim +
		m.weights.ModelCode*modelSim +
		m.weights.SpecOverlap*overlap +
		m.weights.PriceProximity*priceProx

	if m.enableDebugLogging {
		log.Debug().
			Str("a", a.Name).
			Str("b", b.Name).
			Float64("brand", brandSim).
			Float64("model", modelSim).
			Float64("spec", overlap).
			Float64("price", priceProx).
			Float64("score", score).
			Msg("pairwise match score")
	}

	return score
}

// Group partitions candidates into clusters using greedy single-linkage
// against each group's seed. Candidates are visited in input order; every
// unprocessed later candidate scoring at or above the threshold against the
// seed joins the seed's group. A later candidate is compared only against
// the seed, never against members accepted after it, so the clustering is
// deliberately not transitive.
func (m *Matcher) Group(candidates []domain.MatchCandidate, threshold float64) []domain.MatchGroup {
	if len(candidates) == 0 {
		return []domain.MatchGroup{}
	}

	groups := make([]domain.MatchGroup, 0, len(candidates))
	processed := make([]bool, len(candidates))

	for i, seed := range candidates {
		if processed[i] {
			continue
		}

		group := domain.MatchGroup{seed}
		processed[i] = true

		for j := i + 1; j < len(candidates); j++ {
			if processed[j] {
				continue
			}

			other := candidates[j]
			score := m.Score(seed.Product, other.Product, seed.Offer, other.Offer)
			if score >= threshold {
				group = append(group, other)
				processed[j] = true
			}
		}

		groups = append(groups, group)
	}

	return groups
}

// tokenOrFallback returns the extracted token value, falling back to the
// product's stored field when the token is absent.
func tokenOrFallback(tokens domain.TokenSet, key, fallback string) string {
	if value, ok := tokens[key]; ok {
		return value
	}
	return fallback
}

// brandSimilarity compares two brand strings case-insensitively: 1.0 for an
// exact match, 0.8 when one is a substring of the other, otherwise 0. Empty
// input on either side scores 0.
func brandSimilarity(brandA, brandB string) float64 {
	if brandA == "" || brandB == "" {
		return 0.0
	}

	lowerA := strings.ToLower(brandA)
	lowerB := strings.ToLower(brandB)

	if lowerA == lowerB {
		return brandExactScore
	}
	if strings.Contains(lowerA, lowerB) || strings.Contains(lowerB, lowerA) {
		return brandSubstringScore
	}
	return 0.0
}

// modelSimilarity compares two model codes: 1.0 for a case-insensitive exact
// match, otherwise a symmetric matching-run ratio in [0,1]. Empty input on
// either side scores 0.
func modelSimilarity(modelA, modelB string) float64 {
	if modelA == "" || modelB == "" {
		return 0.0
	}

	lowerA := strings.ToLower(modelA)
	lowerB := strings.ToLower(modelB)

	if lowerA == lowerB {
		return 1.0
	}
	return sequenceRatio(lowerA, lowerB)
}

// specOverlap computes, over the attribute keys present on both sides, the
// fraction whose values are equal. No shared keys scores 0.
func specOverlap(tokensA, tokensB domain.TokenSet) float64 {
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0.0
	}

	shared := 0
	matches := 0
	for key, valueA := range tokensA {
		valueB, ok := tokensB[key]
		if !ok {
			continue
		}
		shared++
		if valueA == valueB {
			matches++
		}
	}

	if shared == 0 {
		return 0.0
	}
	return float64(matches) / float64(shared)
}

// priceProximity scores how close two positive prices are:
// 1 - |p1-p2| / ((p1+p2)/2), clamped to [0,1]. A zero or missing price on
// either side scores 0 rather than dividing by zero.
func priceProximity(priceA, priceB float64) float64 {
	if priceA <= 0 || priceB <= 0 {
		return 0.0
	}

	diff := priceA - priceB
	if diff < 0 {
		diff = -diff
	}
	avg := (priceA + priceB) / 2

	proximity := 1 - diff/avg
	if proximity < 0 {
		return 0.0
	}
	if proximity > 1 {
		return 1.0
	}
	return proximity
}

// sequenceRatio is the symmetric matching-run similarity between two
// strings: twice the total length of the recursively found longest common
// runs divided by the combined length.
func sequenceRatio(a, b string) float64 {
	runesA := []rune(a)
	runesB := []rune(b)
	total := len(runesA) + len(runesB)
	if total == 0 {
		return 0.0
	}
	return 2 * float64(matchingRunes(runesA, runesB)) / float64(total)
}

// matchingRunes totals the longest common run, then recurses into the
// unmatched stretches on each side of it.
func matchingRunes(a, b []rune) int {
	startA, startB, size := longestCommonRun(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingRunes(a[:startA], b[:startB]) +
		matchingRunes(a[startA+size:], b[startB+size:])
}

// longestCommonRun finds the longest contiguous run shared by a and b,
// returning its start in each and its length.
func longestCommonRun(a, b []rune) (int, int, int) {
	bestA, bestB, best := 0, 0, 0
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > best {
					best = curr[j]
					bestA = i - best
					bestB = j - best
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
		for j := range curr {
			curr[j] = 0
		}
	}

	return bestA, bestB, best
}
