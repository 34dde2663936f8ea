package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"media-monitor/internal/monitor/model"
)

// SuggestionStore persists deduplicated suggestions.
type SuggestionStore struct {
	stores *Stores
}

func NewSuggestionStore(s *Stores) *SuggestionStore {
	return &SuggestionStore{stores: s}
}

// FindByKey looks up the suggestion for one article in one campaign.
// Returns (nil, nil) when none exists.
func (ss *SuggestionStore) FindByKey(ctx context.Context, campaignID, normalizedURL string) (*model.Suggestion, error) {
	var s model.Suggestion
	err := ss.stores.Suggestions.FindOne(ctx, bson.M{
		"campaignId":    campaignID,
		"normalizedUrl": normalizedURL,
	}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find suggestion %s/%s: %w", campaignID, normalizedURL, err)
	}
	return &s, nil
}

func (ss *SuggestionStore) Insert(ctx context.Context, s *model.Suggestion) (string, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if _, err := ss.stores.Suggestions.InsertOne(ctx, s); err != nil {
		return "", fmt.Errorf("insert suggestion: %w", err)
	}
	return s.ID, nil
}

// Update replaces the stored document with the recomputed one. The
// sources slice and all aggregates are written as a whole.
func (ss *SuggestionStore) Update(ctx context.Context, s *model.Suggestion) error {
	res, err := ss.stores.Suggestions.ReplaceOne(ctx, bson.M{"_id": s.ID}, s)
	if err != nil {
		return fmt.Errorf("update suggestion %s: %w", s.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update suggestion %s: not found", s.ID)
	}
	return nil
}

func (ss *SuggestionStore) SetClipping(ctx context.Context, suggestionID, clippingID string, at time.Time) error {
	_, err := ss.stores.Suggestions.UpdateOne(ctx,
		bson.M{"_id": suggestionID},
		bson.M{"$set": bson.M{
			"clippingId":      clippingID,
			"autoConfirmedAt": at,
			"updatedAt":       at,
		}},
	)
	if err != nil {
		return fmt.Errorf("set clipping on suggestion %s: %w", suggestionID, err)
	}
	return nil
}

// PendingMaterialization returns one campaign's confirmed suggestions
// that still lack a clipping, for the reconcile pass at the start of a
// run. Scoped per campaign so the caller's project attribution only
// ever lands on that campaign's clippings.
func (ss *SuggestionStore) PendingMaterialization(ctx context.Context, campaignID string) ([]model.Suggestion, error) {
	cursor, err := ss.stores.Suggestions.Find(ctx, bson.M{
		"campaignId": campaignID,
		"status":     model.StatusAutoConfirmed,
		"$or": []bson.M{
			{"clippingId": ""},
			{"clippingId": bson.M{"$exists": false}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query unmaterialized suggestions: %w", err)
	}
	defer cursor.Close(ctx)

	var out []model.Suggestion
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode suggestions: %w", err)
	}
	return out, nil
}

// List returns a page of suggestions, newest first, optionally
// filtered by campaign and status.
func (ss *SuggestionStore) List(ctx context.Context, campaignID string, status model.SuggestionStatus, page, limit int64) ([]model.Suggestion, error) {
	filter := bson.M{}
	if campaignID != "" {
		filter["campaignId"] = campaignID
	}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := ss.stores.Suggestions.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query suggestions: %w", err)
	}
	defer cursor.Close(ctx)

	var out []model.Suggestion
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode suggestions: %w", err)
	}
	return out, nil
}
