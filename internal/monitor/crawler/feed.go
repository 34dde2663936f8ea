package crawler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"media-monitor/internal/monitor/model"
	"media-monitor/internal/monitor/scoring"
)

const (
	// Score floors per channel kind. The news aggregator mixes many
	// outlets into one feed and is noisier, hence the higher bar.
	minScoreRSSFeed        = 50
	minScoreNewsAggregator = 80

	maxExcerptLen = 300
	userAgent     = "media-monitor/1.0"
)

// FeedCrawler implements Crawler for both feed-style channels. The
// gofeed parser is owned by the instance, so concurrent runs never
// share parser state.
type FeedCrawler struct {
	kind     model.ChannelType
	minScore int
	client   *http.Client
	now      func() time.Time
}

var _ Crawler = (*FeedCrawler)(nil)

// NewRSSFeedCrawler builds the crawler for publication RSS feeds.
func NewRSSFeedCrawler(client *http.Client) *FeedCrawler {
	return newFeedCrawler(model.ChannelTypeRSSFeed, minScoreRSSFeed, client)
}

// NewNewsAggregatorCrawler builds the crawler for aggregator search
// feeds.
func NewNewsAggregatorCrawler(client *http.Client) *FeedCrawler {
	return newFeedCrawler(model.ChannelTypeNewsAggregator, minScoreNewsAggregator, client)
}

func newFeedCrawler(kind model.ChannelType, minScore int, client *http.Client) *FeedCrawler {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &FeedCrawler{
		kind:     kind,
		minScore: minScore,
		client:   client,
		now:      time.Now,
	}
}

// Kind identifies the channel type this crawler serves.
func (c *FeedCrawler) Kind() model.ChannelType {
	return c.kind
}

// Crawl fetches the channel's feed and scores every entry that has
// both a link and a title against the company keywords.
func (c *FeedCrawler) Crawl(ctx context.Context, ch model.Channel, companyKeywords []string) ([]model.Source, error) {
	feed, err := c.fetchFeed(ctx, ch.URL)
	if err != nil {
		return nil, err
	}

	sourceName := ch.PublicationName
	if sourceName == "" {
		sourceName = feed.Title
	}

	foundAt := c.now().UTC()
	sources := make([]model.Source, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || item.Link == "" || item.Title == "" {
			continue
		}

		excerpt := excerptOf(item)
		score, matched := scoring.Score(item.Title, excerpt, companyKeywords)
		if score < c.minScore {
			continue
		}

		sources = append(sources, model.Source{
			ChannelID:       ch.ID,
			ChannelType:     c.kind,
			SourceName:      sourceName,
			SourceURL:       ch.URL,
			PublicationID:   ch.PublicationID,
			MatchScore:      score,
			MatchedKeywords: matched,
			FoundAt:         foundAt,
			ArticleURL:      item.Link,
			ArticleTitle:    strings.TrimSpace(item.Title),
			ArticleExcerpt:  excerpt,
			PublishedAt:     item.PublishedParsed,
		})
	}

	return sources, nil
}

func (c *FeedCrawler) fetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// excerptOf extracts a plain-text excerpt from a feed entry,
// preferring the description over full content.
func excerptOf(item *gofeed.Item) string {
	raw := item.Description
	if raw == "" {
		raw = item.Content
	}
	if raw == "" {
		return ""
	}

	text := raw
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw)); err == nil {
		text = doc.Text()
	}
	text = strings.Join(strings.Fields(text), " ")

	if runes := []rune(text); len(runes) > maxExcerptLen {
		text = string(runes[:maxExcerptLen])
	}
	return text
}
