package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"media-monitor/internal/monitor/model"
)

// TrackerStore persists trackers and their embedded channels.
type TrackerStore struct {
	stores *Stores
}

func NewTrackerStore(s *Stores) *TrackerStore {
	return &TrackerStore{stores: s}
}

// Active returns all trackers still inside their monitoring window.
func (ts *TrackerStore) Active(ctx context.Context) ([]model.Tracker, error) {
	cursor, err := ts.stores.Trackers.Find(ctx, bson.M{"isActive": true})
	if err != nil {
		return nil, fmt.Errorf("query active trackers: %w", err)
	}
	defer cursor.Close(ctx)

	var trackers []model.Tracker
	if err := cursor.All(ctx, &trackers); err != nil {
		return nil, fmt.Errorf("decode trackers: %w", err)
	}
	return trackers, nil
}

// DeactivateExpired flips isActive off for every tracker whose end date
// has passed. Returns how many were deactivated.
func (ts *TrackerStore) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := ts.stores.Trackers.UpdateMany(ctx,
		bson.M{"isActive": true, "endDate": bson.M{"$lte": now}},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": now}},
	)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired trackers: %w", err)
	}
	return res.ModifiedCount, nil
}

// Deactivate turns a single tracker off, used when every channel has
// already produced its hit.
func (ts *TrackerStore) Deactivate(ctx context.Context, trackerID string, now time.Time) error {
	_, err := ts.stores.Trackers.UpdateOne(ctx,
		bson.M{"_id": trackerID},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": now}},
	)
	if err != nil {
		return fmt.Errorf("deactivate tracker %s: %w", trackerID, err)
	}
	return nil
}

// RecordChannelSuccess stamps a successful crawl on one channel and
// clears its error streak.
func (ts *TrackerStore) RecordChannelSuccess(ctx context.Context, trackerID, channelID string, now time.Time) error {
	_, err := ts.stores.Trackers.UpdateOne(ctx,
		bson.M{"_id": trackerID, "channels.id": channelID},
		bson.M{"$set": bson.M{
			"channels.$.lastChecked": now,
			"channels.$.lastSuccess": now,
			"channels.$.errorCount":  0,
			"channels.$.lastError":   "",
			"updatedAt":              now,
		}},
	)
	if err != nil {
		return fmt.Errorf("record channel success %s/%s: %w", trackerID, channelID, err)
	}
	return nil
}

// RecordChannelError applies one crawl failure to the channel. The
// streak and deactivation decision come from Channel.ApplyFailure on
// the in-memory snapshot of this run.
func (ts *TrackerStore) RecordChannelError(ctx context.Context, trackerID string, ch model.Channel, crawlErr error, now time.Time) error {
	ch.ApplyFailure(crawlErr, now)
	set := bson.M{
		"channels.$.lastChecked": now,
		"channels.$.lastError":   ch.LastError,
		"channels.$.errorCount":  ch.ErrorCount,
		"updatedAt":              now,
	}
	if !ch.IsActive {
		set["channels.$.isActive"] = false
	}

	_, err := ts.stores.Trackers.UpdateOne(ctx,
		bson.M{"_id": trackerID, "channels.id": ch.ID},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("record channel error %s/%s: %w", trackerID, ch.ID, err)
	}
	return nil
}

// MarkChannelFound retires a channel after one of its articles caused
// an auto-confirm. The channel caught its placement and stops.
func (ts *TrackerStore) MarkChannelFound(ctx context.Context, trackerID, channelID string, now time.Time) error {
	_, err := ts.stores.Trackers.UpdateOne(ctx,
		bson.M{"_id": trackerID, "channels.id": channelID},
		bson.M{
			"$set": bson.M{
				"channels.$.wasFound": true,
				"channels.$.foundAt":  now,
				"channels.$.isActive": false,
				"updatedAt":           now,
			},
			"$inc": bson.M{"channels.$.articlesFound": 1},
		},
	)
	if err != nil {
		return fmt.Errorf("mark channel found %s/%s: %w", trackerID, channelID, err)
	}
	return nil
}

// UpdateStats accumulates run totals and schedules the next crawl.
func (ts *TrackerStore) UpdateStats(ctx context.Context, trackerID string, articlesFound, autoConfirmed int, now, nextCrawlAt time.Time) error {
	_, err := ts.stores.Trackers.UpdateOne(ctx,
		bson.M{"_id": trackerID},
		bson.M{
			"$set": bson.M{
				"lastCrawlAt": now,
				"nextCrawlAt": nextCrawlAt,
				"updatedAt":   now,
			},
			"$inc": bson.M{
				"totalArticlesFound": articlesFound,
				"totalAutoConfirmed": autoConfirmed,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("update tracker stats %s: %w", trackerID, err)
	}
	return nil
}
