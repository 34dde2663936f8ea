package model

import "time"

// ChannelType discriminates the crawler variant used for a channel.
type ChannelType string

const (
	ChannelTypeRSSFeed        ChannelType = "rss_feed"
	ChannelTypeNewsAggregator ChannelType = "news_aggregator"
)

// Tracker is one monitored campaign/entity over a time window.
type Tracker struct {
	ID                 string     `bson:"_id,omitempty" json:"id"`
	OrganizationID     string     `bson:"organizationId" json:"organization_id"`
	CampaignID         string     `bson:"campaignId" json:"campaign_id"`
	IsActive           bool       `bson:"isActive" json:"is_active"`
	StartDate          time.Time  `bson:"startDate" json:"start_date"`
	EndDate            time.Time  `bson:"endDate" json:"end_date"`
	Channels           []Channel  `bson:"channels" json:"channels"`
	TotalArticlesFound int        `bson:"totalArticlesFound" json:"total_articles_found"`
	TotalAutoConfirmed int        `bson:"totalAutoConfirmed" json:"total_auto_confirmed"`
	LastCrawlAt        *time.Time `bson:"lastCrawlAt,omitempty" json:"last_crawl_at,omitempty"`
	NextCrawlAt        *time.Time `bson:"nextCrawlAt,omitempty" json:"next_crawl_at,omitempty"`
	CreatedAt          time.Time  `bson:"createdAt" json:"created_at"`
	UpdatedAt          time.Time  `bson:"updatedAt" json:"updated_at"`
}

// Expired reports whether the tracker's monitoring window has passed.
func (t *Tracker) Expired(now time.Time) bool {
	return !t.EndDate.After(now)
}

// ActiveChannels returns the channels still being watched.
func (t *Tracker) ActiveChannels() []Channel {
	out := make([]Channel, 0, len(t.Channels))
	for _, ch := range t.Channels {
		if ch.IsActive {
			out = append(out, ch)
		}
	}
	return out
}

// AllChannelsFound reports whether every channel already produced a
// confirmed hit. Trackers in that state have nothing left to watch.
func (t *Tracker) AllChannelsFound() bool {
	if len(t.Channels) == 0 {
		return false
	}
	for _, ch := range t.Channels {
		if !ch.WasFound {
			return false
		}
	}
	return true
}

// MaxChannelErrors is the consecutive-failure cap after which a
// channel is deactivated.
const MaxChannelErrors = 5

// Channel is a single feed source inside a tracker. Once WasFound is
// set the channel is deactivated: it exists to catch one placement.
type Channel struct {
	ID              string      `bson:"id" json:"id"`
	Type            ChannelType `bson:"type" json:"type"`
	PublicationID   string      `bson:"publicationId,omitempty" json:"publication_id,omitempty"`
	PublicationName string      `bson:"publicationName" json:"publication_name"`
	URL             string      `bson:"url" json:"url"`
	IsActive        bool        `bson:"isActive" json:"is_active"`
	WasFound        bool        `bson:"wasFound" json:"was_found"`
	FoundAt         *time.Time  `bson:"foundAt,omitempty" json:"found_at,omitempty"`
	LastChecked     *time.Time  `bson:"lastChecked,omitempty" json:"last_checked,omitempty"`
	LastSuccess     *time.Time  `bson:"lastSuccess,omitempty" json:"last_success,omitempty"`
	ErrorCount      int         `bson:"errorCount" json:"error_count"`
	LastError       string      `bson:"lastError,omitempty" json:"last_error,omitempty"`
	ArticlesFound   int         `bson:"articlesFound" json:"articles_found"`
}

// ApplyFailure records one crawl failure: the error streak grows, the
// check is stamped, and once the streak reaches MaxChannelErrors the
// channel is deactivated. Reports whether this failure deactivated it.
func (c *Channel) ApplyFailure(crawlErr error, now time.Time) bool {
	c.ErrorCount++
	c.LastError = crawlErr.Error()
	c.LastChecked = &now
	if c.ErrorCount >= MaxChannelErrors {
		c.IsActive = false
		return true
	}
	return false
}

// ApplySuccess stamps a successful crawl and resets the error streak.
func (c *Channel) ApplySuccess(now time.Time) {
	c.LastChecked = &now
	c.LastSuccess = &now
	c.ErrorCount = 0
	c.LastError = ""
}
