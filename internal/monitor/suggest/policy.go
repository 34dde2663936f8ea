// Package suggest aggregates scored sources into deduplicated
// suggestions and decides which of them are confirmed without human
// review.
package suggest

import (
	"media-monitor/internal/monitor/model"
	"media-monitor/internal/monitor/scoring"
)

// DefaultMinMatchScore is the operator-configurable floor applied to
// the single-source confirm rule when the campaign does not set one.
const DefaultMinMatchScore = 70

const (
	singleSourceConfirmScore = 85
	seoConfirmScore          = 70
)

// ShouldAutoConfirm applies the aggregate decision rules: independent
// corroboration from two or more distinct channels always confirms;
// one source confirms only on a very high score that also clears the
// campaign floor.
func ShouldAutoConfirm(sourceCount, highestScore, minMatchScore int) bool {
	if sourceCount >= 2 {
		return true
	}
	return sourceCount == 1 &&
		highestScore >= singleSourceConfirmScore &&
		highestScore >= minMatchScore
}

// ConfidenceFor derives the qualitative tier from source count and
// average score. It is informational and independent from the boolean
// confirm decision.
func ConfidenceFor(sourceCount int, avgScore float64) model.Confidence {
	switch {
	case sourceCount >= 3 && avgScore >= 80:
		return model.ConfidenceVeryHigh
	case sourceCount >= 2 && avgScore >= 70:
		return model.ConfidenceHigh
	case sourceCount >= 2 || avgScore >= 80:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

// CompanyMatchResult is the outcome of the entity-identity pathway.
type CompanyMatchResult struct {
	ShouldConfirm  bool
	Reason         model.ConfirmReason
	Confidence     model.Confidence
	InTitle        bool
	MatchedKeyword string
	SEOScore       int
}

// EvaluateCompanyMatch runs the identity pathway for one article. A
// company keyword in the title confirms immediately at very_high,
// regardless of source count; a body-only company match needs backing
// from the topic keywords to confirm. A title match always takes
// priority over a body-only match.
func EvaluateCompanyMatch(title, content string, companyKeywords, seoKeywords []string) CompanyMatchResult {
	if kw := scoring.InTitle(title, companyKeywords); kw != "" {
		return CompanyMatchResult{
			ShouldConfirm:  true,
			Reason:         model.ReasonCompanyInTitle,
			Confidence:     model.ConfidenceVeryHigh,
			InTitle:        true,
			MatchedKeyword: kw,
		}
	}

	kw := scoring.InText(content, companyKeywords)
	if kw == "" {
		return CompanyMatchResult{
			Reason:     model.ReasonNoCompanyMatch,
			Confidence: model.ConfidenceLow,
		}
	}

	seoScore, _ := scoring.Score(title, content, seoKeywords)
	if seoScore >= seoConfirmScore {
		return CompanyMatchResult{
			ShouldConfirm:  true,
			Reason:         model.ReasonCompanyPlusSEO,
			Confidence:     model.ConfidenceHigh,
			MatchedKeyword: kw,
			SEOScore:       seoScore,
		}
	}

	return CompanyMatchResult{
		Reason:         model.ReasonCompanyOnly,
		Confidence:     model.ConfidenceMedium,
		MatchedKeyword: kw,
		SEOScore:       seoScore,
	}
}

// Recompute derives the aggregate scores from the full sources slice.
// Calling it twice on the same slice yields identical results.
func Recompute(sources []model.Source) (avg float64, highest int) {
	if len(sources) == 0 {
		return 0, 0
	}
	sum := 0
	for _, s := range sources {
		sum += s.MatchScore
		if s.MatchScore > highest {
			highest = s.MatchScore
		}
	}
	return float64(sum) / float64(len(sources)), highest
}

var confidenceRank = map[model.Confidence]int{
	model.ConfidenceLow:      0,
	model.ConfidenceMedium:   1,
	model.ConfidenceHigh:     2,
	model.ConfidenceVeryHigh: 3,
}

// HigherConfidence returns the higher of two tiers.
func HigherConfidence(a, b model.Confidence) model.Confidence {
	if confidenceRank[b] > confidenceRank[a] {
		return b
	}
	return a
}
