// Package scoring computes the 0-100 relevance score of an article
// against a keyword list.
package scoring

import "strings"

const (
	titleWeight   = 2
	contentWeight = 1
	maxScore      = 100
)

// Score matches every keyword case-insensitively as a substring of the
// title (weight 2) or, failing that, of the content (weight 1) and
// maps the total weight onto 0-100:
//
//	score = min(100, 100*totalWeight/(2*len(keywords)))
//
// An empty keyword list scores 0. Substring matching is deliberate and
// will hit keyword fragments inside unrelated words; the per-channel
// score floors absorb most of that noise.
func Score(title, content string, kws []string) (int, []string) {
	if len(kws) == 0 {
		return 0, nil
	}

	titleLower := strings.ToLower(title)
	contentLower := strings.ToLower(content)

	total := 0
	var matched []string
	for _, kw := range kws {
		kwLower := strings.ToLower(kw)
		if kwLower == "" {
			continue
		}
		switch {
		case strings.Contains(titleLower, kwLower):
			total += titleWeight
			matched = append(matched, kw)
		case strings.Contains(contentLower, kwLower):
			total += contentWeight
			matched = append(matched, kw)
		}
	}

	score := maxScore * total / (titleWeight * len(kws))
	if score > maxScore {
		score = maxScore
	}
	return score, matched
}

// InTitle returns the first keyword found case-insensitively in the
// title, or "" when none matches.
func InTitle(title string, kws []string) string {
	titleLower := strings.ToLower(title)
	for _, kw := range kws {
		if kw != "" && strings.Contains(titleLower, strings.ToLower(kw)) {
			return kw
		}
	}
	return ""
}

// InText returns the first keyword found case-insensitively anywhere in
// the given text, or "" when none matches.
func InText(text string, kws []string) string {
	textLower := strings.ToLower(text)
	for _, kw := range kws {
		if kw != "" && strings.Contains(textLower, strings.ToLower(kw)) {
			return kw
		}
	}
	return ""
}
