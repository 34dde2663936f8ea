package model

import "time"

// SuggestionStatus tracks the review state of a suggestion.
type SuggestionStatus string

const (
	StatusPending       SuggestionStatus = "pending"
	StatusAutoConfirmed SuggestionStatus = "auto_confirmed"
	StatusConfirmed     SuggestionStatus = "confirmed"
	StatusRejected      SuggestionStatus = "rejected"
)

// Confidence is the qualitative tier derived from source count and score.
type Confidence string

const (
	ConfidenceLow      Confidence = "low"
	ConfidenceMedium   Confidence = "medium"
	ConfidenceHigh     Confidence = "high"
	ConfidenceVeryHigh Confidence = "very_high"
)

// ConfirmReason names the rule that decided (or declined) auto-confirm.
type ConfirmReason string

const (
	ReasonCompanyInTitle  ConfirmReason = "company_in_title"
	ReasonCompanyPlusSEO  ConfirmReason = "company_plus_seo"
	ReasonCompanyOnly     ConfirmReason = "company_only"
	ReasonNoCompanyMatch  ConfirmReason = "no_company_match"
	ReasonMultiSource     ConfirmReason = "multi_source"
	ReasonHighScoreSingle ConfirmReason = "single_source_high_score"
)

// Source is one scored hit of one article from one channel.
type Source struct {
	ChannelID       string      `bson:"channelId" json:"channel_id"`
	ChannelType     ChannelType `bson:"channelType" json:"channel_type"`
	SourceName      string      `bson:"sourceName" json:"source_name"`
	SourceURL       string      `bson:"sourceUrl" json:"source_url"`
	PublicationID   string      `bson:"publicationId,omitempty" json:"publication_id,omitempty"`
	MatchScore      int         `bson:"matchScore" json:"match_score"`
	MatchedKeywords []string    `bson:"matchedKeywords" json:"matched_keywords"`
	FoundAt         time.Time   `bson:"foundAt" json:"found_at"`
	ArticleURL      string      `bson:"articleUrl" json:"article_url"`
	ArticleTitle    string      `bson:"articleTitle" json:"article_title"`
	ArticleExcerpt  string      `bson:"articleExcerpt,omitempty" json:"article_excerpt,omitempty"`
	PublishedAt     *time.Time  `bson:"publishedAt,omitempty" json:"published_at,omitempty"`
}

// Suggestion is the deduplicated aggregate of all sources referring to
// the same article for the same campaign. Dedup key is
// (campaignId, normalizedUrl). Aggregate fields are always recomputed
// from the full Sources slice, never patched incrementally.
type Suggestion struct {
	ID                    string           `bson:"_id,omitempty" json:"id"`
	OrganizationID        string           `bson:"organizationId" json:"organization_id"`
	CampaignID            string           `bson:"campaignId" json:"campaign_id"`
	ArticleURL            string           `bson:"articleUrl" json:"article_url"`
	NormalizedURL         string           `bson:"normalizedUrl" json:"normalized_url"`
	ArticleTitle          string           `bson:"articleTitle" json:"article_title"`
	ArticleExcerpt        string           `bson:"articleExcerpt,omitempty" json:"article_excerpt,omitempty"`
	Sources               []Source         `bson:"sources" json:"sources"`
	AvgMatchScore         float64          `bson:"avgMatchScore" json:"avg_match_score"`
	HighestMatchScore     int              `bson:"highestMatchScore" json:"highest_match_score"`
	Confidence            Confidence       `bson:"confidence" json:"confidence"`
	AutoConfirmed         bool             `bson:"autoConfirmed" json:"auto_confirmed"`
	AutoConfirmReason     ConfirmReason    `bson:"autoConfirmReason,omitempty" json:"auto_confirm_reason,omitempty"`
	CompanyMatchInTitle   bool             `bson:"companyMatchInTitle" json:"company_match_in_title"`
	MatchedCompanyKeyword string           `bson:"matchedCompanyKeyword,omitempty" json:"matched_company_keyword,omitempty"`
	SEOScore              int              `bson:"seoScore" json:"seo_score"`
	Status                SuggestionStatus `bson:"status" json:"status"`
	ClippingID            string           `bson:"clippingId,omitempty" json:"clipping_id,omitempty"`
	AutoConfirmedAt       *time.Time       `bson:"autoConfirmedAt,omitempty" json:"auto_confirmed_at,omitempty"`
	CreatedAt             time.Time        `bson:"createdAt" json:"created_at"`
	UpdatedAt             time.Time        `bson:"updatedAt" json:"updated_at"`
}
