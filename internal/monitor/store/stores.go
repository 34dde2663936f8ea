// Package store wraps the MongoDB collections the monitor works with.
package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Stores bundles the collections behind the domain store types.
type Stores struct {
	DB          *mongo.Database
	Trackers    *mongo.Collection // monitoring_trackers
	Suggestions *mongo.Collection // monitoring_suggestions
	Clippings   *mongo.Collection // media_clippings
	Patterns    *mongo.Collection // spam_patterns
	Companies   *mongo.Collection // companies
	Campaigns   *mongo.Collection // pr_campaigns
}

func MustMongo(ctx context.Context, host, dbname, username, password, authSource string) *Stores {
	clientOpts := options.Client().
		ApplyURI("mongodb://" + host).
		SetAuth(options.Credential{
			Username:   username,
			Password:   password,
			AuthSource: authSource,
		})

	cli, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		panic(err)
	}
	if err = cli.Ping(ctx, nil); err != nil {
		panic(err)
	}

	db := cli.Database(dbname)
	s := &Stores{
		DB:          db,
		Trackers:    db.Collection("monitoring_trackers"),
		Suggestions: db.Collection("monitoring_suggestions"),
		Clippings:   db.Collection("media_clippings"),
		Patterns:    db.Collection("spam_patterns"),
		Companies:   db.Collection("companies"),
		Campaigns:   db.Collection("pr_campaigns"),
	}
	ensureIndexes(ctx, s)
	return s
}

func ensureIndexes(ctx context.Context, s *Stores) {
	_, _ = s.Trackers.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "endDate", Value: 1}}},
		{Keys: bson.D{{Key: "organizationId", Value: 1}}},
	})
	_, _ = s.Suggestions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "campaignId", Value: 1}, {Key: "normalizedUrl", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "organizationId", Value: 1}, {Key: "status", Value: 1}}},
	})
	_, _ = s.Clippings.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "campaignId", Value: 1}}},
		{Keys: bson.D{{Key: "suggestionId", Value: 1}}},
	})
	_, _ = s.Patterns.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "organizationId", Value: 1}, {Key: "isActive", Value: 1}}},
	})
}
