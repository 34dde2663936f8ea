// Package orchestrator drives one crawl cycle across all active
// trackers: fan out over channels, fold the hits into suggestions and
// keep tracker lifecycle state moving.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"media-monitor/internal/monitor/crawler"
	"media-monitor/internal/monitor/model"
	"media-monitor/internal/monitor/spam"
	"media-monitor/internal/monitor/suggest"
)

const defaultConcurrency = 5

// TrackerStore is the tracker lifecycle surface the orchestrator needs.
type TrackerStore interface {
	Active(ctx context.Context) ([]model.Tracker, error)
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
	Deactivate(ctx context.Context, trackerID string, now time.Time) error
	RecordChannelSuccess(ctx context.Context, trackerID, channelID string, now time.Time) error
	RecordChannelError(ctx context.Context, trackerID string, ch model.Channel, crawlErr error, now time.Time) error
	MarkChannelFound(ctx context.Context, trackerID, channelID string, now time.Time) error
	UpdateStats(ctx context.Context, trackerID string, articlesFound, autoConfirmed int, now, nextCrawlAt time.Time) error
}

// LookupStore resolves the campaign and company a tracker points at.
type LookupStore interface {
	CampaignByID(ctx context.Context, campaignID string) (*model.Campaign, error)
	CompanyByID(ctx context.Context, companyID string) (*model.Company, error)
}

// KeywordSource derives identity keywords from a company record.
type KeywordSource func(company *model.Company) []string

// RunSummary is what one full crawl cycle reports back.
type RunSummary struct {
	TrackersProcessed  int `json:"trackers_processed"`
	TotalArticlesFound int `json:"total_articles_found"`
	TotalAutoConfirmed int `json:"total_auto_confirmed"`
}

// Orchestrator runs crawl cycles. Trackers are processed one at a
// time; the channels of a tracker are crawled concurrently and their
// results applied sequentially in channel order.
type Orchestrator struct {
	Log         *zap.Logger
	Trackers    TrackerStore
	Lookups     LookupStore
	Patterns    spam.PatternStore
	Aggregator  *suggest.Aggregator
	Crawlers    map[model.ChannelType]crawler.Crawler
	Keywords    KeywordSource
	Concurrency int
	Interval    time.Duration
	Now         func() time.Time
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now().UTC()
}

func (o *Orchestrator) concurrency() int {
	if o.Concurrency > 0 {
		return o.Concurrency
	}
	return defaultConcurrency
}

// Run executes one crawl cycle. A failing tracker never aborts the
// cycle; its failure is logged and the remaining trackers still run.
func (o *Orchestrator) Run(ctx context.Context) (RunSummary, error) {
	runID := uuid.NewString()
	log := o.Log.With(zap.String("runId", runID))
	now := o.now()

	expired, err := o.Trackers.DeactivateExpired(ctx, now)
	if err != nil {
		log.Error("deactivating expired trackers failed", zap.Error(err))
	} else if expired > 0 {
		log.Info("deactivated expired trackers", zap.Int64("count", expired))
	}

	trackers, err := o.Trackers.Active(ctx)
	if err != nil {
		return RunSummary{}, fmt.Errorf("list active trackers: %w", err)
	}
	log.Info("crawl cycle started", zap.Int("trackers", len(trackers)))

	var summary RunSummary
	for i := range trackers {
		t := &trackers[i]
		if t.Expired(now) {
			// Still listed as active, so the expiry write above did
			// not stick. Never crawl past the end date.
			log.Warn("skipping expired tracker", zap.String("trackerId", t.ID))
			if err := o.Trackers.Deactivate(ctx, t.ID, now); err != nil {
				log.Error("deactivating tracker failed", zap.Error(err))
			}
			continue
		}
		articles, confirmed, err := o.processTracker(ctx, log, t)
		if err != nil {
			log.Error("tracker processing failed",
				zap.String("trackerId", t.ID), zap.Error(err))
			continue
		}
		summary.TrackersProcessed++
		summary.TotalArticlesFound += articles
		summary.TotalAutoConfirmed += confirmed
	}

	log.Info("crawl cycle finished",
		zap.Int("trackersProcessed", summary.TrackersProcessed),
		zap.Int("articlesFound", summary.TotalArticlesFound),
		zap.Int("autoConfirmed", summary.TotalAutoConfirmed))
	return summary, nil
}

func (o *Orchestrator) processTracker(ctx context.Context, log *zap.Logger, t *model.Tracker) (articles, confirmed int, err error) {
	campaign, err := o.Lookups.CampaignByID(ctx, t.CampaignID)
	if err != nil {
		return 0, 0, err
	}
	if campaign == nil {
		log.Warn("tracker points at missing campaign, skipping",
			zap.String("trackerId", t.ID), zap.String("campaignId", t.CampaignID))
		return 0, 0, nil
	}

	kws, err := o.resolveKeywords(ctx, log, t, campaign)
	if err != nil {
		return 0, 0, err
	}
	if len(kws) == 0 {
		log.Warn("no keywords resolvable for tracker, skipping",
			zap.String("trackerId", t.ID))
		return 0, 0, nil
	}

	// Close materialization gaps from earlier runs before new work.
	if created, err := o.Aggregator.Reconcile(ctx, t.CampaignID, campaign.ProjectID); err != nil {
		log.Error("reconcile failed", zap.String("trackerId", t.ID), zap.Error(err))
	} else if created > 0 {
		log.Info("reconciled missing clippings",
			zap.String("trackerId", t.ID), zap.Int("count", created))
	}

	var filter spam.Filter
	if pf, err := spam.Load(ctx, log, o.Patterns, t.OrganizationID, t.CampaignID); err != nil {
		// Fail open, crawl without the spam vetoes.
		log.Warn("loading spam patterns failed", zap.String("trackerId", t.ID), zap.Error(err))
	} else {
		filter = pf
	}

	now := o.now()
	results := o.crawlChannels(ctx, t.ActiveChannels(), kws)
	found := map[string]bool{}

	for _, res := range results {
		if res.Err != nil {
			log.Warn("channel crawl failed",
				zap.String("trackerId", t.ID),
				zap.String("channelId", res.Channel.ID),
				zap.String("url", res.Channel.URL),
				zap.Error(res.Err))
			if err := o.Trackers.RecordChannelError(ctx, t.ID, res.Channel, res.Err, now); err != nil {
				log.Error("recording channel error failed", zap.Error(err))
			}
			continue
		}

		if err := o.Trackers.RecordChannelSuccess(ctx, t.ID, res.Channel.ID, now); err != nil {
			log.Error("recording channel success failed", zap.Error(err))
		}

		for _, src := range res.Sources {
			out, err := o.Aggregator.Record(ctx, suggest.RecordInput{
				Tracker:         t,
				ProjectID:       campaign.ProjectID,
				Source:          src,
				CompanyKeywords: kws,
				SEOKeywords:     campaign.SEOKeywords,
				MinMatchScore:   campaign.MinMatchScore,
				Spam:            filter,
			})
			if err != nil {
				log.Error("recording source failed",
					zap.String("trackerId", t.ID),
					zap.String("url", src.ArticleURL),
					zap.Error(err))
				continue
			}
			if out.DroppedSpam || out.Duplicate {
				continue
			}
			articles++
			if out.AutoConfirmed {
				confirmed++
				if err := o.Trackers.MarkChannelFound(ctx, t.ID, res.Channel.ID, now); err != nil {
					log.Error("marking channel found failed", zap.Error(err))
				}
				found[res.Channel.ID] = true
				// The channel caught its placement; remaining entries
				// from the same feed add nothing for this tracker.
				break
			}
		}
	}

	next := now.Add(o.Interval)
	if err := o.Trackers.UpdateStats(ctx, t.ID, articles, confirmed, now, next); err != nil {
		log.Error("updating tracker stats failed",
			zap.String("trackerId", t.ID), zap.Error(err))
	}

	for i := range t.Channels {
		if found[t.Channels[i].ID] {
			t.Channels[i].WasFound = true
		}
	}
	if t.AllChannelsFound() {
		log.Info("all channels found placements, deactivating tracker",
			zap.String("trackerId", t.ID))
		if err := o.Trackers.Deactivate(ctx, t.ID, now); err != nil {
			log.Error("deactivating tracker failed", zap.Error(err))
		}
	}
	return articles, confirmed, nil
}

// resolveKeywords prefers operator-set campaign keywords; only when
// none are set does it fall back to extraction from the company names.
func (o *Orchestrator) resolveKeywords(ctx context.Context, log *zap.Logger, t *model.Tracker, campaign *model.Campaign) ([]string, error) {
	if len(campaign.Keywords) > 0 {
		return campaign.Keywords, nil
	}
	if campaign.ClientID == "" {
		return nil, nil
	}
	company, err := o.Lookups.CompanyByID(ctx, campaign.ClientID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		log.Warn("campaign points at missing company",
			zap.String("campaignId", campaign.ID),
			zap.String("clientId", campaign.ClientID))
		return nil, nil
	}
	return o.Keywords(company), nil
}

// crawlChannels fans out over the channels with a bounded number of
// workers. The results slice preserves channel order so the sequential
// apply stays deterministic.
func (o *Orchestrator) crawlChannels(ctx context.Context, channels []model.Channel, kws []string) []crawler.Result {
	results := make([]crawler.Result, len(channels))
	sem := make(chan struct{}, o.concurrency())
	var wg sync.WaitGroup

	for i, ch := range channels {
		wg.Add(1)
		go func(i int, ch model.Channel) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			c, ok := o.Crawlers[ch.Type]
			if !ok {
				results[i] = crawler.Result{
					Channel: ch,
					Err:     fmt.Errorf("no crawler registered for channel type %q", ch.Type),
				}
				return
			}
			sources, err := c.Crawl(ctx, ch, kws)
			results[i] = crawler.Result{Channel: ch, Sources: sources, Err: err}
		}(i, ch)
	}
	wg.Wait()
	return results
}

// RunLoop runs a cycle immediately, then keeps running one per
// interval until the context is cancelled.
func (o *Orchestrator) RunLoop(ctx context.Context) {
	if _, err := o.Run(ctx); err != nil {
		o.Log.Error("crawl cycle failed", zap.Error(err))
	}

	for {
		timer := time.NewTimer(o.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			o.Log.Info("crawl loop stopped")
			return
		case <-timer.C:
			if _, err := o.Run(ctx); err != nil {
				o.Log.Error("crawl cycle failed", zap.Error(err))
			}
		}
	}
}
