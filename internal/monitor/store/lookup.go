package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"media-monitor/internal/monitor/model"
)

// LookupStore reads the campaign and company records owned by other
// services. The monitor never writes them.
type LookupStore struct {
	stores *Stores
}

func NewLookupStore(s *Stores) *LookupStore {
	return &LookupStore{stores: s}
}

// CampaignByID returns (nil, nil) when the campaign does not exist.
func (ls *LookupStore) CampaignByID(ctx context.Context, campaignID string) (*model.Campaign, error) {
	var c model.Campaign
	err := ls.stores.Campaigns.FindOne(ctx, bson.M{"_id": campaignID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find campaign %s: %w", campaignID, err)
	}
	return &c, nil
}

// CompanyByID returns (nil, nil) when the company does not exist.
func (ls *LookupStore) CompanyByID(ctx context.Context, companyID string) (*model.Company, error) {
	var c model.Company
	err := ls.stores.Companies.FindOne(ctx, bson.M{"_id": companyID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find company %s: %w", companyID, err)
	}
	return &c, nil
}

// PatternsForCampaign returns the active spam patterns that apply to
// one campaign: the organization's global patterns plus the ones
// scoped to this campaign.
func (ls *LookupStore) PatternsForCampaign(ctx context.Context, organizationID, campaignID string) ([]model.SpamPattern, error) {
	cursor, err := ls.stores.Patterns.Find(ctx, bson.M{
		"organizationId": organizationID,
		"isActive":       true,
		"$or": []bson.M{
			{"scope": model.SpamScopeGlobal},
			{"scope": model.SpamScopeCampaign, "campaignId": campaignID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query spam patterns: %w", err)
	}
	defer cursor.Close(ctx)

	var out []model.SpamPattern
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode spam patterns: %w", err)
	}
	return out, nil
}

// IncrementPatternMatch bumps the pattern's hit counter. Best effort,
// callers treat failures as non-fatal.
func (ls *LookupStore) IncrementPatternMatch(ctx context.Context, patternID string) error {
	_, err := ls.stores.Patterns.UpdateOne(ctx,
		bson.M{"_id": patternID},
		bson.M{
			"$inc": bson.M{"timesMatched": 1},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("increment pattern %s: %w", patternID, err)
	}
	return nil
}
