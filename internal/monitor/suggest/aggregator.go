package suggest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"media-monitor/internal/monitor/model"
	"media-monitor/internal/monitor/spam"
	"media-monitor/internal/monitor/urlutil"
)

// SuggestionStore is the persistence surface the aggregator needs.
// FindByKey returns (nil, nil) when no suggestion exists for the key.
type SuggestionStore interface {
	FindByKey(ctx context.Context, campaignID, normalizedURL string) (*model.Suggestion, error)
	Insert(ctx context.Context, s *model.Suggestion) (string, error)
	Update(ctx context.Context, s *model.Suggestion) error
	SetClipping(ctx context.Context, suggestionID, clippingID string, at time.Time) error
	PendingMaterialization(ctx context.Context, campaignID string) ([]model.Suggestion, error)
}

// ClippingStore persists materialized clippings.
type ClippingStore interface {
	Insert(ctx context.Context, c *model.Clipping) (string, error)
}

// RecordInput carries everything needed to fold one scored source into
// the suggestion set of a tracker.
type RecordInput struct {
	Tracker         *model.Tracker
	ProjectID       string
	Source          model.Source
	CompanyKeywords []string
	SEOKeywords     []string
	MinMatchScore   int
	Spam            spam.Filter
}

// Outcome reports what Record did with one source.
type Outcome struct {
	SuggestionID  string
	Created       bool
	Duplicate     bool
	DroppedSpam   bool
	AutoConfirmed bool
}

// Aggregator folds scored sources into deduplicated suggestions,
// recomputes aggregates, applies the confirm policy and triggers
// materialization on the pending-to-confirmed transition.
type Aggregator struct {
	Log          *zap.Logger
	Suggestions  SuggestionStore
	Materializer *Materializer
	Normalizer   urlutil.Normalizer
	Now          func() time.Time
}

func (a *Aggregator) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now().UTC()
}

// Record folds one scored source into the suggestion keyed by
// (campaignId, normalized article url). New articles are checked
// against the spam patterns before a suggestion is created; known
// articles only append the source and recompute. AutoConfirmed in the
// outcome is true only when this call flipped the suggestion from
// pending to confirmed.
func (a *Aggregator) Record(ctx context.Context, in RecordInput) (Outcome, error) {
	normalized := a.Normalizer.Normalize(in.Source.ArticleURL)

	existing, err := a.Suggestions.FindByKey(ctx, in.Tracker.CampaignID, normalized)
	if err != nil {
		return Outcome{}, fmt.Errorf("lookup suggestion for %q: %w", normalized, err)
	}
	if existing == nil {
		return a.create(ctx, in, normalized)
	}
	return a.append(ctx, in, existing)
}

func (a *Aggregator) create(ctx context.Context, in RecordInput, normalized string) (Outcome, error) {
	if in.Spam != nil {
		isSpam, err := in.Spam.IsSpam(ctx, in.Source.ArticleURL, in.Source.ArticleTitle, in.Source.SourceName)
		if err != nil {
			// Fail open: a broken pattern lookup must not block
			// legitimate coverage.
			a.Log.Warn("spam check failed, keeping article",
				zap.String("url", in.Source.ArticleURL), zap.Error(err))
		} else if isSpam {
			a.Log.Debug("dropped spam article",
				zap.String("campaignId", in.Tracker.CampaignID),
				zap.String("url", in.Source.ArticleURL))
			return Outcome{DroppedSpam: true}, nil
		}
	}

	now := a.now()
	s := &model.Suggestion{
		OrganizationID: in.Tracker.OrganizationID,
		CampaignID:     in.Tracker.CampaignID,
		ArticleURL:     in.Source.ArticleURL,
		NormalizedURL:  normalized,
		ArticleTitle:   in.Source.ArticleTitle,
		ArticleExcerpt: in.Source.ArticleExcerpt,
		Sources:        []model.Source{in.Source},
		Status:         model.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	confirm := a.evaluate(s, in)
	if confirm {
		s.Status = model.StatusAutoConfirmed
	}

	id, err := a.Suggestions.Insert(ctx, s)
	if err != nil {
		return Outcome{}, fmt.Errorf("insert suggestion for %q: %w", normalized, err)
	}
	s.ID = id

	out := Outcome{SuggestionID: id, Created: true, AutoConfirmed: confirm}
	if confirm {
		if _, err := a.Materializer.Materialize(ctx, s, in.ProjectID); err != nil {
			// The suggestion is confirmed either way; reconciliation
			// picks up the missing clipping on the next run.
			a.Log.Error("materialize after confirm failed",
				zap.String("suggestionId", id), zap.Error(err))
		}
	}
	return out, nil
}

func (a *Aggregator) append(ctx context.Context, in RecordInput, s *model.Suggestion) (Outcome, error) {
	for _, src := range s.Sources {
		if src.ChannelID == in.Source.ChannelID {
			// The same channel reporting the same article again is not
			// new corroboration.
			return Outcome{SuggestionID: s.ID, Duplicate: true}, nil
		}
	}

	wasPending := s.Status == model.StatusPending
	s.Sources = append(s.Sources, in.Source)
	confirm := a.evaluate(s, in)

	transition := confirm && wasPending
	if transition {
		s.Status = model.StatusAutoConfirmed
	}
	s.UpdatedAt = a.now()

	if err := a.Suggestions.Update(ctx, s); err != nil {
		return Outcome{}, fmt.Errorf("update suggestion %s: %w", s.ID, err)
	}

	out := Outcome{SuggestionID: s.ID, AutoConfirmed: transition}
	if transition {
		if _, err := a.Materializer.Materialize(ctx, s, in.ProjectID); err != nil {
			a.Log.Error("materialize after confirm failed",
				zap.String("suggestionId", s.ID), zap.Error(err))
		}
	}
	return out, nil
}

// evaluate recomputes all aggregate fields from the full sources slice
// and runs both decision pathways. Confidence is the higher of the
// count/score tier and the identity tier; the reason names whichever
// rule decided.
func (a *Aggregator) evaluate(s *model.Suggestion, in RecordInput) bool {
	s.AvgMatchScore, s.HighestMatchScore = Recompute(s.Sources)

	minScore := in.MinMatchScore
	if minScore <= 0 {
		minScore = DefaultMinMatchScore
	}
	aggregate := ShouldAutoConfirm(len(s.Sources), s.HighestMatchScore, minScore)
	tier := ConfidenceFor(len(s.Sources), s.AvgMatchScore)

	identity := CompanyMatchResult{Confidence: model.ConfidenceLow, Reason: model.ReasonNoCompanyMatch}
	if len(in.CompanyKeywords) > 0 {
		identity = EvaluateCompanyMatch(s.ArticleTitle, s.ArticleExcerpt, in.CompanyKeywords, in.SEOKeywords)
	}

	s.Confidence = HigherConfidence(tier, identity.Confidence)
	s.CompanyMatchInTitle = identity.InTitle
	s.MatchedCompanyKeyword = identity.MatchedKeyword
	s.SEOScore = identity.SEOScore

	confirm := aggregate || identity.ShouldConfirm
	s.AutoConfirmed = confirm

	switch {
	case identity.ShouldConfirm:
		s.AutoConfirmReason = identity.Reason
	case aggregate && len(s.Sources) >= 2:
		s.AutoConfirmReason = model.ReasonMultiSource
	case aggregate:
		s.AutoConfirmReason = model.ReasonHighScoreSingle
	default:
		s.AutoConfirmReason = identity.Reason
	}
	return confirm
}

// Reconcile materializes one campaign's confirmed suggestions that
// have no clipping yet, closing the gap left by a failed
// materialization in an earlier run. The projectID belongs to that
// campaign, which is why the scope is a campaign and not the whole
// organization. Returns how many clippings were created.
func (a *Aggregator) Reconcile(ctx context.Context, campaignID, projectID string) (int, error) {
	pending, err := a.Suggestions.PendingMaterialization(ctx, campaignID)
	if err != nil {
		return 0, fmt.Errorf("load unmaterialized suggestions: %w", err)
	}

	created := 0
	for i := range pending {
		s := &pending[i]
		if _, err := a.Materializer.Materialize(ctx, s, projectID); err != nil {
			a.Log.Error("reconcile materialization failed",
				zap.String("suggestionId", s.ID), zap.Error(err))
			continue
		}
		created++
	}
	return created, nil
}
