package model

import "time"

// SpamPatternScope limits where a pattern applies.
type SpamPatternScope string

const (
	SpamScopeGlobal   SpamPatternScope = "global"
	SpamScopeCampaign SpamPatternScope = "campaign"
)

// SpamPatternType names the candidate field a pattern is matched against.
type SpamPatternType string

const (
	SpamTypeURLDomain    SpamPatternType = "url_domain"
	SpamTypeKeywordTitle SpamPatternType = "keyword_title"
	SpamTypeOutletName   SpamPatternType = "outlet_name"
)

// SpamPattern vetoes low-quality candidates before they become
// suggestions.
type SpamPattern struct {
	ID             string           `bson:"_id,omitempty" json:"id"`
	OrganizationID string           `bson:"organizationId" json:"organization_id"`
	CampaignID     string           `bson:"campaignId,omitempty" json:"campaign_id,omitempty"`
	Scope          SpamPatternScope `bson:"scope" json:"scope"`
	Type           SpamPatternType  `bson:"type" json:"type"`
	Pattern        string           `bson:"pattern" json:"pattern"`
	IsRegex        bool             `bson:"isRegex" json:"is_regex"`
	IsActive       bool             `bson:"isActive" json:"is_active"`
	TimesMatched   int              `bson:"timesMatched" json:"times_matched"`
	CreatedAt      time.Time        `bson:"createdAt" json:"created_at"`
	UpdatedAt      time.Time        `bson:"updatedAt" json:"updated_at"`
}
