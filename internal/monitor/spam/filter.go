// Package spam vetoes known low-quality candidate articles before
// they become suggestions.
package spam

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"media-monitor/internal/monitor/model"
)

// Filter is consulted once per candidate, before a suggestion is
// created. An already-accepted article is never re-filtered.
type Filter interface {
	IsSpam(ctx context.Context, articleURL, title, sourceName string) (bool, error)
}

// PatternStore loads and updates spam patterns.
type PatternStore interface {
	PatternsForCampaign(ctx context.Context, organizationID, campaignID string) ([]model.SpamPattern, error)
	IncrementPatternMatch(ctx context.Context, patternID string) error
}

// PatternFilter matches candidates against operator-maintained
// patterns, scoped global plus per-campaign. Patterns are loaded once
// per tracker; match counters are updated best-effort.
type PatternFilter struct {
	log      *zap.Logger
	store    PatternStore
	patterns []model.SpamPattern
}

var _ Filter = (*PatternFilter)(nil)

// Load fetches the active patterns for one campaign and returns a
// filter bound to them.
func Load(ctx context.Context, log *zap.Logger, store PatternStore, organizationID, campaignID string) (*PatternFilter, error) {
	patterns, err := store.PatternsForCampaign(ctx, organizationID, campaignID)
	if err != nil {
		return nil, err
	}
	return &PatternFilter{log: log, store: store, patterns: patterns}, nil
}

// NewPatternFilter builds a filter over preloaded patterns.
func NewPatternFilter(log *zap.Logger, store PatternStore, patterns []model.SpamPattern) *PatternFilter {
	return &PatternFilter{log: log, store: store, patterns: patterns}
}

// IsSpam reports whether any pattern matches the candidate. The first
// match wins and its counter is incremented.
func (f *PatternFilter) IsSpam(ctx context.Context, articleURL, title, sourceName string) (bool, error) {
	for _, p := range f.patterns {
		if !p.IsActive {
			continue
		}

		var text string
		switch p.Type {
		case model.SpamTypeURLDomain:
			text = articleURL
		case model.SpamTypeKeywordTitle:
			text = title
		case model.SpamTypeOutletName:
			text = sourceName
		default:
			continue
		}

		if !matchPattern(text, p, f.log) {
			continue
		}

		f.log.Info("spam pattern matched",
			zap.String("patternId", p.ID),
			zap.String("pattern", p.Pattern),
			zap.String("title", title),
		)
		if f.store != nil && p.ID != "" {
			if err := f.store.IncrementPatternMatch(ctx, p.ID); err != nil {
				f.log.Warn("failed to increment spam match count",
					zap.String("patternId", p.ID),
					zap.Error(err),
				)
			}
		}
		return true, nil
	}
	return false, nil
}

func matchPattern(text string, p model.SpamPattern, log *zap.Logger) bool {
	if text == "" {
		return false
	}
	if p.IsRegex {
		re, err := regexp.Compile("(?i)" + p.Pattern)
		if err != nil {
			log.Warn("invalid spam regex", zap.String("pattern", p.Pattern), zap.Error(err))
			return false
		}
		return re.MatchString(text)
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(p.Pattern))
}
