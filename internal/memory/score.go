package memory

// Score computes a lexical-only relevance score for record against
// queryTokens: token overlap (or a flat baseline for an empty query) plus
// confidence, freshness, and kind-bonus terms. Used when no embedding
// backend is configured.
func Score(record Record, queryTokens []string, nowSecs int64) float64 {
	var score float64

	if len(queryTokens) == 0 {
		score += scoreEmptyQueryBaseline
	} else {
		textTokens := make(map[string]struct{})
		for _, t := range tokenize(record.Text) {
			textTokens[t] = struct{}{}
		}
		overlap := 0
		for _, qt := range queryTokens {
			if _, ok := textTokens[qt]; ok {
				overlap++
			}
		}
		if overlap > 0 {
			score += float64(overlap) / float64(len(queryTokens))
		}
	}

	score += scoreConfidenceWeight * clamp(record.Confidence, 0, 1)

	if record.UpdatedAt > 0 && record.UpdatedAt <= nowSecs {
		ageDays := float64(nowSecs-record.UpdatedAt) / secsPerDay
		freshness := 1.0 / (1.0 + ageDays)
		score += scoreFreshnessWeight * freshness
	}

	switch record.Kind {
	case KindProfile:
		score += scoreKindBonusProfile
	case KindFact, KindEvent, KindCommitment:
		score += scoreKindBonusFact
	}

	return score
}

// HybridScore combines a semantic similarity (derived from an embedding L2
// distance, where 0 is identical and 2.0 is maximally dissimilar for
// normalized vectors) with the same confidence/freshness/kind terms as
// Score, weighted by semanticWeight.
func HybridScore(record Record, distance float64, semanticWeight float64, nowSecs int64) float64 {
	semanticWeight = clamp(semanticWeight, 0, 1)
	semanticSim := clamp(1.0-distance/2.0, 0, 1)
	score := semanticWeight * semanticSim

	score += hybridConfidenceWeight * clamp(record.Confidence, 0, 1)

	if record.UpdatedAt > 0 && record.UpdatedAt <= nowSecs {
		ageDays := float64(nowSecs-record.UpdatedAt) / secsPerDay
		freshness := 1.0 / (1.0 + ageDays)
		score += hybridFreshnessWeight * freshness
	}

	switch record.Kind {
	case KindProfile:
		score += hybridKindBonusProfile
	case KindFact, KindEvent, KindCommitment, KindPerson, KindInterest:
		score += hybridKindBonusFact
	case KindEpisode:
	}

	return score
}
