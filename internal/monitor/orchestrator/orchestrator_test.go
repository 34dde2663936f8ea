package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"media-monitor/internal/monitor/crawler"
	"media-monitor/internal/monitor/keywords"
	"media-monitor/internal/monitor/model"
	"media-monitor/internal/monitor/suggest"
	"media-monitor/internal/monitor/urlutil"
)

type fakeTrackerStore struct {
	trackers          []model.Tracker
	expiredCalled     bool
	successChannels   []string
	errorChannels     []string
	foundChannels     []string
	deactivated       []string
	statsArticles     map[string]int
	statsConfirmed    map[string]int
	deactivateExpired int64
}

func newFakeTrackerStore(trackers ...model.Tracker) *fakeTrackerStore {
	return &fakeTrackerStore{
		trackers:       trackers,
		statsArticles:  map[string]int{},
		statsConfirmed: map[string]int{},
	}
}

func (f *fakeTrackerStore) Active(context.Context) ([]model.Tracker, error) {
	return f.trackers, nil
}

func (f *fakeTrackerStore) DeactivateExpired(context.Context, time.Time) (int64, error) {
	f.expiredCalled = true
	return f.deactivateExpired, nil
}

func (f *fakeTrackerStore) Deactivate(_ context.Context, trackerID string, _ time.Time) error {
	f.deactivated = append(f.deactivated, trackerID)
	return nil
}

func (f *fakeTrackerStore) RecordChannelSuccess(_ context.Context, _, channelID string, _ time.Time) error {
	f.successChannels = append(f.successChannels, channelID)
	return nil
}

func (f *fakeTrackerStore) RecordChannelError(_ context.Context, _ string, ch model.Channel, _ error, _ time.Time) error {
	f.errorChannels = append(f.errorChannels, ch.ID)
	return nil
}

func (f *fakeTrackerStore) MarkChannelFound(_ context.Context, _, channelID string, _ time.Time) error {
	f.foundChannels = append(f.foundChannels, channelID)
	return nil
}

func (f *fakeTrackerStore) UpdateStats(_ context.Context, trackerID string, articlesFound, autoConfirmed int, _, _ time.Time) error {
	f.statsArticles[trackerID] += articlesFound
	f.statsConfirmed[trackerID] += autoConfirmed
	return nil
}

type fakeLookupStore struct {
	campaigns map[string]*model.Campaign
	companies map[string]*model.Company
}

func (f *fakeLookupStore) CampaignByID(_ context.Context, id string) (*model.Campaign, error) {
	return f.campaigns[id], nil
}

func (f *fakeLookupStore) CompanyByID(_ context.Context, id string) (*model.Company, error) {
	return f.companies[id], nil
}

type fakePatternStore struct{}

func (fakePatternStore) PatternsForCampaign(context.Context, string, string) ([]model.SpamPattern, error) {
	return nil, nil
}

func (fakePatternStore) IncrementPatternMatch(context.Context, string) error { return nil }

type fakeCrawler struct {
	kind    model.ChannelType
	sources map[string][]model.Source // keyed by channel id
	errs    map[string]error
}

func (f *fakeCrawler) Kind() model.ChannelType { return f.kind }

func (f *fakeCrawler) Crawl(_ context.Context, ch model.Channel, _ []string) ([]model.Source, error) {
	if err := f.errs[ch.ID]; err != nil {
		return nil, err
	}
	return f.sources[ch.ID], nil
}

type memSuggestionStore struct {
	byID   map[string]*model.Suggestion
	nextID int
}

func newMemSuggestionStore() *memSuggestionStore {
	return &memSuggestionStore{byID: map[string]*model.Suggestion{}}
}

func (m *memSuggestionStore) FindByKey(_ context.Context, campaignID, normalizedURL string) (*model.Suggestion, error) {
	for _, s := range m.byID {
		if s.CampaignID == campaignID && s.NormalizedURL == normalizedURL {
			cp := *s
			cp.Sources = append([]model.Source(nil), s.Sources...)
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memSuggestionStore) Insert(_ context.Context, s *model.Suggestion) (string, error) {
	m.nextID++
	id := fmt.Sprintf("sug-%d", m.nextID)
	cp := *s
	cp.ID = id
	m.byID[id] = &cp
	return id, nil
}

func (m *memSuggestionStore) Update(_ context.Context, s *model.Suggestion) error {
	cp := *s
	m.byID[s.ID] = &cp
	return nil
}

func (m *memSuggestionStore) SetClipping(_ context.Context, suggestionID, clippingID string, at time.Time) error {
	s, ok := m.byID[suggestionID]
	if !ok {
		return errors.New("not found")
	}
	s.ClippingID = clippingID
	s.AutoConfirmedAt = &at
	return nil
}

func (m *memSuggestionStore) PendingMaterialization(_ context.Context, campaignID string) ([]model.Suggestion, error) {
	var out []model.Suggestion
	for _, s := range m.byID {
		if s.CampaignID == campaignID && s.Status == model.StatusAutoConfirmed && s.ClippingID == "" {
			out = append(out, *s)
		}
	}
	return out, nil
}

type memClippingStore struct {
	clippings []*model.Clipping
}

func (m *memClippingStore) Insert(_ context.Context, c *model.Clipping) (string, error) {
	id := fmt.Sprintf("clip-%d", len(m.clippings)+1)
	cp := *c
	cp.ID = id
	m.clippings = append(m.clippings, &cp)
	return id, nil
}

func testOrchestrator(trackers *fakeTrackerStore, lookups *fakeLookupStore, crawlers map[model.ChannelType]crawler.Crawler) (*Orchestrator, *memSuggestionStore, *memClippingStore) {
	log := zap.NewNop()
	now := func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }
	suggestions := newMemSuggestionStore()
	clippings := &memClippingStore{}

	agg := &suggest.Aggregator{
		Log:         log,
		Suggestions: suggestions,
		Materializer: &suggest.Materializer{
			Log:         log,
			Suggestions: suggestions,
			Clippings:   clippings,
			Now:         now,
		},
		Normalizer: urlutil.Normalizer{},
		Now:        now,
	}

	o := &Orchestrator{
		Log:        log,
		Trackers:   trackers,
		Lookups:    lookups,
		Patterns:   fakePatternStore{},
		Aggregator: agg,
		Crawlers:   crawlers,
		Keywords: func(c *model.Company) []string {
			return keywords.Extract(c.Name, c.OfficialName, c.TradingName).All
		},
		Concurrency: 2,
		Interval:    time.Hour,
		Now:         now,
	}
	return o, suggestions, clippings
}

func channel(id string, kind model.ChannelType) model.Channel {
	return model.Channel{
		ID:              id,
		Type:            kind,
		PublicationName: "Example Outlet",
		URL:             "https://feeds.example.com/" + id,
		IsActive:        true,
	}
}

func hit(channelID, url string, score int) model.Source {
	return model.Source{
		ChannelID:    channelID,
		ChannelType:  model.ChannelTypeRSSFeed,
		SourceName:   "Example Outlet",
		MatchScore:   score,
		ArticleURL:   url,
		ArticleTitle: "Industry roundup",
		FoundAt:      time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
	}
}

func TestRunCorroborationAcrossChannels(t *testing.T) {
	t.Parallel()

	trk := model.Tracker{
		ID:             "trk-1",
		OrganizationID: "org-1",
		CampaignID:     "cmp-1",
		IsActive:       true,
		EndDate:        time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Channels: []model.Channel{
			channel("ch-1", model.ChannelTypeRSSFeed),
			channel("ch-2", model.ChannelTypeRSSFeed),
		},
	}
	trackers := newFakeTrackerStore(trk)
	lookups := &fakeLookupStore{
		campaigns: map[string]*model.Campaign{
			"cmp-1": {ID: "cmp-1", OrganizationID: "org-1", ProjectID: "prj-1", Keywords: []string{"Acme"}},
		},
	}
	crawlers := map[model.ChannelType]crawler.Crawler{
		model.ChannelTypeRSSFeed: &fakeCrawler{
			kind: model.ChannelTypeRSSFeed,
			sources: map[string][]model.Source{
				"ch-1": {hit("ch-1", "https://news.example.com/story", 60)},
				"ch-2": {hit("ch-2", "https://news.example.com/story?utm_source=x", 70)},
			},
		},
	}

	o, suggestions, clippings := testOrchestrator(trackers, lookups, crawlers)
	summary, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, trackers.expiredCalled)
	assert.Equal(t, 1, summary.TrackersProcessed)
	assert.Equal(t, 2, summary.TotalArticlesFound)
	assert.Equal(t, 1, summary.TotalAutoConfirmed)

	// Both channels report the same article: one suggestion, two
	// sources, confirmed and materialized.
	require.Len(t, suggestions.byID, 1)
	for _, s := range suggestions.byID {
		assert.Len(t, s.Sources, 2)
		assert.Equal(t, model.StatusAutoConfirmed, s.Status)
		assert.NotEmpty(t, s.ClippingID)
	}
	require.Len(t, clippings.clippings, 1)
	assert.Equal(t, "prj-1", clippings.clippings[0].ProjectID)

	// The confirm fired on the second channel's source.
	assert.Equal(t, []string{"ch-2"}, trackers.foundChannels)
	assert.ElementsMatch(t, []string{"ch-1", "ch-2"}, trackers.successChannels)
	assert.Equal(t, 2, trackers.statsArticles["trk-1"])
	assert.Equal(t, 1, trackers.statsConfirmed["trk-1"])
}

func TestRunChannelFailureIsIsolated(t *testing.T) {
	t.Parallel()

	trk := model.Tracker{
		ID:             "trk-1",
		OrganizationID: "org-1",
		CampaignID:     "cmp-1",
		IsActive:       true,
		EndDate:        time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Channels: []model.Channel{
			channel("ch-bad", model.ChannelTypeRSSFeed),
			channel("ch-good", model.ChannelTypeRSSFeed),
		},
	}
	trackers := newFakeTrackerStore(trk)
	lookups := &fakeLookupStore{
		campaigns: map[string]*model.Campaign{
			"cmp-1": {ID: "cmp-1", Keywords: []string{"Acme"}},
		},
	}
	crawlers := map[model.ChannelType]crawler.Crawler{
		model.ChannelTypeRSSFeed: &fakeCrawler{
			kind: model.ChannelTypeRSSFeed,
			sources: map[string][]model.Source{
				"ch-good": {hit("ch-good", "https://news.example.com/story", 60)},
			},
			errs: map[string]error{"ch-bad": errors.New("upstream 502")},
		},
	}

	o, suggestions, _ := testOrchestrator(trackers, lookups, crawlers)
	summary, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TrackersProcessed)
	assert.Equal(t, 1, summary.TotalArticlesFound)
	assert.Equal(t, []string{"ch-bad"}, trackers.errorChannels)
	assert.Equal(t, []string{"ch-good"}, trackers.successChannels)
	assert.Len(t, suggestions.byID, 1)
}

func TestRunSkipsTrackerWithMissingCampaign(t *testing.T) {
	t.Parallel()

	trk := model.Tracker{
		ID:         "trk-1",
		CampaignID: "cmp-missing",
		IsActive:   true,
		EndDate:    time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Channels:   []model.Channel{channel("ch-1", model.ChannelTypeRSSFeed)},
	}
	trackers := newFakeTrackerStore(trk)
	lookups := &fakeLookupStore{campaigns: map[string]*model.Campaign{}}

	o, suggestions, _ := testOrchestrator(trackers, lookups, nil)
	summary, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TrackersProcessed)
	assert.Zero(t, summary.TotalArticlesFound)
	assert.Empty(t, suggestions.byID)
	assert.Empty(t, trackers.successChannels)
}

func TestRunFallsBackToCompanyKeywords(t *testing.T) {
	t.Parallel()

	trk := model.Tracker{
		ID:             "trk-1",
		OrganizationID: "org-1",
		CampaignID:     "cmp-1",
		IsActive:       true,
		EndDate:        time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Channels:       []model.Channel{channel("ch-1", model.ChannelTypeRSSFeed)},
	}
	trackers := newFakeTrackerStore(trk)
	lookups := &fakeLookupStore{
		campaigns: map[string]*model.Campaign{
			"cmp-1": {ID: "cmp-1", ClientID: "client-1"},
		},
		companies: map[string]*model.Company{
			"client-1": {ID: "client-1", Name: "Acme GmbH"},
		},
	}

	src := hit("ch-1", "https://news.example.com/story", 50)
	src.ArticleTitle = "Acme opens new plant"
	crawlers := map[model.ChannelType]crawler.Crawler{
		model.ChannelTypeRSSFeed: &fakeCrawler{
			kind:    model.ChannelTypeRSSFeed,
			sources: map[string][]model.Source{"ch-1": {src}},
		},
	}

	o, suggestions, _ := testOrchestrator(trackers, lookups, crawlers)
	summary, err := o.Run(context.Background())
	require.NoError(t, err)

	// "Acme GmbH" extracts to Acme variants; title hit confirms via
	// the identity pathway even with one source.
	assert.Equal(t, 1, summary.TotalAutoConfirmed)
	require.Len(t, suggestions.byID, 1)
	for _, s := range suggestions.byID {
		assert.Equal(t, model.ReasonCompanyInTitle, s.AutoConfirmReason)
		assert.Equal(t, model.ConfidenceVeryHigh, s.Confidence)
	}
}

func TestRunDeactivatesTrackerWhenAllChannelsFound(t *testing.T) {
	t.Parallel()

	ch := channel("ch-1", model.ChannelTypeRSSFeed)
	trk := model.Tracker{
		ID:             "trk-1",
		OrganizationID: "org-1",
		CampaignID:     "cmp-1",
		IsActive:       true,
		EndDate:        time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Channels:       []model.Channel{ch},
	}
	trackers := newFakeTrackerStore(trk)
	lookups := &fakeLookupStore{
		campaigns: map[string]*model.Campaign{
			"cmp-1": {ID: "cmp-1", Keywords: []string{"Acme"}, MinMatchScore: 70},
		},
	}
	crawlers := map[model.ChannelType]crawler.Crawler{
		model.ChannelTypeRSSFeed: &fakeCrawler{
			kind: model.ChannelTypeRSSFeed,
			sources: map[string][]model.Source{
				"ch-1": {hit("ch-1", "https://news.example.com/story", 90)},
			},
		},
	}

	o, _, _ := testOrchestrator(trackers, lookups, crawlers)
	summary, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalAutoConfirmed)
	assert.Equal(t, []string{"ch-1"}, trackers.foundChannels)
	assert.Equal(t, []string{"trk-1"}, trackers.deactivated)
}

func TestRunDoesNotCountRepeatHits(t *testing.T) {
	t.Parallel()

	trk := model.Tracker{
		ID:             "trk-1",
		OrganizationID: "org-1",
		CampaignID:     "cmp-1",
		IsActive:       true,
		EndDate:        time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Channels:       []model.Channel{channel("ch-1", model.ChannelTypeRSSFeed)},
	}
	trackers := newFakeTrackerStore(trk)
	lookups := &fakeLookupStore{
		campaigns: map[string]*model.Campaign{
			"cmp-1": {ID: "cmp-1", Keywords: []string{"Acme"}},
		},
	}
	crawlers := map[model.ChannelType]crawler.Crawler{
		model.ChannelTypeRSSFeed: &fakeCrawler{
			kind: model.ChannelTypeRSSFeed,
			sources: map[string][]model.Source{
				"ch-1": {
					hit("ch-1", "https://news.example.com/story", 60),
					hit("ch-1", "https://news.example.com/story?utm_source=x", 60),
				},
			},
		},
	}

	o, suggestions, _ := testOrchestrator(trackers, lookups, crawlers)
	summary, err := o.Run(context.Background())
	require.NoError(t, err)

	// The second entry is the same article from the same channel: one
	// suggestion, one source, counted once.
	assert.Equal(t, 1, summary.TotalArticlesFound)
	assert.Equal(t, 1, trackers.statsArticles["trk-1"])
	require.Len(t, suggestions.byID, 1)
	for _, s := range suggestions.byID {
		assert.Len(t, s.Sources, 1)
	}
}

func TestRunSkipsExpiredTracker(t *testing.T) {
	t.Parallel()

	// Listed as active even though the end date has passed; the expiry
	// check runs again per tracker before any channel is crawled.
	trk := model.Tracker{
		ID:             "trk-expired",
		OrganizationID: "org-1",
		CampaignID:     "cmp-1",
		IsActive:       true,
		EndDate:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Channels:       []model.Channel{channel("ch-1", model.ChannelTypeRSSFeed)},
	}
	trackers := newFakeTrackerStore(trk)
	lookups := &fakeLookupStore{
		campaigns: map[string]*model.Campaign{
			"cmp-1": {ID: "cmp-1", Keywords: []string{"Acme"}},
		},
	}
	crawlers := map[model.ChannelType]crawler.Crawler{
		model.ChannelTypeRSSFeed: &fakeCrawler{
			kind: model.ChannelTypeRSSFeed,
			sources: map[string][]model.Source{
				"ch-1": {hit("ch-1", "https://news.example.com/story", 90)},
			},
		},
	}

	o, suggestions, _ := testOrchestrator(trackers, lookups, crawlers)
	summary, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, summary.TrackersProcessed)
	assert.Zero(t, summary.TotalArticlesFound)
	assert.Empty(t, trackers.successChannels)
	assert.Empty(t, suggestions.byID)
	assert.Equal(t, []string{"trk-expired"}, trackers.deactivated)
}
