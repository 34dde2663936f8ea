package suggest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"media-monitor/internal/monitor/model"
)

const (
	clippingOutletType      = "online"
	clippingSentiment       = "neutral"
	clippingDetectionMethod = "automated"
	clippingCreatedBy       = "system-crawler"
	clippingVerifiedBy      = "system-auto-confirm"
)

// Materializer turns a confirmed suggestion into its permanent
// clipping record exactly once.
type Materializer struct {
	Log         *zap.Logger
	Suggestions SuggestionStore
	Clippings   ClippingStore
	Now         func() time.Time
}

func (m *Materializer) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now().UTC()
}

// Materialize creates the clipping for a confirmed suggestion and
// writes the clipping id back onto it. Suggestions that already carry
// a clipping id are returned as-is; calling twice never creates two
// clippings.
func (m *Materializer) Materialize(ctx context.Context, s *model.Suggestion, projectID string) (string, error) {
	if s.ClippingID != "" {
		return s.ClippingID, nil
	}
	if len(s.Sources) == 0 {
		return "", errors.New("suggestion has no sources")
	}

	first := s.Sources[0]
	published := first.FoundAt
	if first.PublishedAt != nil {
		published = *first.PublishedAt
	}

	now := m.now()
	clip := &model.Clipping{
		OrganizationID:  s.OrganizationID,
		CampaignID:      s.CampaignID,
		ProjectID:       projectID,
		SuggestionID:    s.ID,
		Title:           s.ArticleTitle,
		URL:             s.ArticleURL,
		PublishedAt:     published,
		OutletName:      first.SourceName,
		OutletType:      clippingOutletType,
		Sentiment:       clippingSentiment,
		DetectionMethod: clippingDetectionMethod,
		DetectedAt:      first.FoundAt,
		CreatedBy:       clippingCreatedBy,
		VerifiedBy:      clippingVerifiedBy,
		VerifiedAt:      now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	id, err := m.Clippings.Insert(ctx, clip)
	if err != nil {
		return "", fmt.Errorf("insert clipping for suggestion %s: %w", s.ID, err)
	}

	if err := m.Suggestions.SetClipping(ctx, s.ID, id, now); err != nil {
		return id, fmt.Errorf("record clipping %s on suggestion %s: %w", id, s.ID, err)
	}
	s.ClippingID = id
	s.AutoConfirmedAt = &now

	m.Log.Info("materialized clipping",
		zap.String("suggestionId", s.ID),
		zap.String("clippingId", id),
		zap.String("campaignId", s.CampaignID))
	return id, nil
}
