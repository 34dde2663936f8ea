// Package crawler fetches syndication feeds and turns matching entries
// into source records.
package crawler

import (
	"context"

	"media-monitor/internal/monitor/model"
)

// Crawler is the shared contract of all channel-kind variants: fetch
// the feed behind the channel and return the entries that clear the
// kind's score floor against the company keywords. A transport or
// parse failure is returned as an error; an empty slice with a nil
// error always means "fetched fine, nothing matched".
type Crawler interface {
	Kind() model.ChannelType
	Crawl(ctx context.Context, ch model.Channel, companyKeywords []string) ([]model.Source, error)
}

// Result carries one channel's crawl outcome. The orchestrator
// aggregates these explicitly instead of letting a failing channel
// abort its siblings.
type Result struct {
	Channel model.Channel
	Sources []model.Source
	Err     error
}
