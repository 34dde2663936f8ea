package model

import "time"

// Clipping is the permanent coverage record materialized from a
// confirmed suggestion. Immutable after creation except verification
// metadata.
type Clipping struct {
	ID              string    `bson:"_id,omitempty" json:"id"`
	OrganizationID  string    `bson:"organizationId" json:"organization_id"`
	CampaignID      string    `bson:"campaignId" json:"campaign_id"`
	ProjectID       string    `bson:"projectId,omitempty" json:"project_id,omitempty"`
	SuggestionID    string    `bson:"suggestionId" json:"suggestion_id"`
	Title           string    `bson:"title" json:"title"`
	URL             string    `bson:"url" json:"url"`
	PublishedAt     time.Time `bson:"publishedAt" json:"published_at"`
	OutletName      string    `bson:"outletName" json:"outlet_name"`
	OutletType      string    `bson:"outletType" json:"outlet_type"`
	Sentiment       string    `bson:"sentiment" json:"sentiment"`
	DetectionMethod string    `bson:"detectionMethod" json:"detection_method"`
	DetectedAt      time.Time `bson:"detectedAt" json:"detected_at"`
	CreatedBy       string    `bson:"createdBy" json:"created_by"`
	VerifiedBy      string    `bson:"verifiedBy" json:"verified_by"`
	VerifiedAt      time.Time `bson:"verifiedAt" json:"verified_at"`
	CreatedAt       time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updated_at"`
}
