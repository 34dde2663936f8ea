package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"media-monitor/internal/middleware/logger"
	"media-monitor/internal/monitor/api"
	"media-monitor/internal/monitor/crawler"
	"media-monitor/internal/monitor/keywords"
	"media-monitor/internal/monitor/model"
	"media-monitor/internal/monitor/orchestrator"
	"media-monitor/internal/monitor/store"
	"media-monitor/internal/monitor/suggest"
	"media-monitor/internal/monitor/urlutil"
	"media-monitor/pkg/config"
)

func main() {
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	log.Info("starting media monitor")

	stores := store.MustMongo(
		ctx,
		cfg.Mongo.Host,
		cfg.Mongo.DBName,
		cfg.Mongo.Username,
		cfg.Mongo.Password,
		cfg.Mongo.AuthSource,
	)

	trackers := store.NewTrackerStore(stores)
	suggestions := store.NewSuggestionStore(stores)
	clippings := store.NewClippingStore(stores)
	lookups := store.NewLookupStore(stores)

	aggregator := &suggest.Aggregator{
		Log:         log,
		Suggestions: suggestions,
		Materializer: &suggest.Materializer{
			Log:         log,
			Suggestions: suggestions,
			Clippings:   clippings,
		},
		Normalizer: urlutil.Normalizer{},
	}

	client := &http.Client{Timeout: cfg.Crawler.FetchTimeout}
	orch := &orchestrator.Orchestrator{
		Log:        log,
		Trackers:   trackers,
		Lookups:    lookups,
		Patterns:   lookups,
		Aggregator: aggregator,
		Crawlers: map[model.ChannelType]crawler.Crawler{
			model.ChannelTypeRSSFeed:        crawler.NewRSSFeedCrawler(client),
			model.ChannelTypeNewsAggregator: crawler.NewNewsAggregatorCrawler(client),
		},
		Keywords: func(c *model.Company) []string {
			return keywords.Extract(c.Name, c.OfficialName, c.TradingName).All
		},
		Concurrency: cfg.Crawler.Concurrency,
		Interval:    cfg.Crawler.Interval,
	}
	if cfg.Crawler.Loop {
		go orch.RunLoop(ctx)
	}

	srv := &api.Server{
		Log:         log,
		AuthToken:   cfg.Server.AuthToken,
		Runner:      orch,
		Trackers:    trackers,
		Suggestions: suggestions,
	}
	r := srv.Router()
	_ = r.SetTrustedProxies(nil)
	log.Info("media monitor is running", zap.String("address", cfg.Server.Addr))
	_ = r.Run(cfg.Server.Addr)
}
