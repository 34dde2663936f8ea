package model

// Company carries the identity fields keyword extraction works from.
type Company struct {
	ID             string `bson:"_id,omitempty" json:"id"`
	OrganizationID string `bson:"organizationId" json:"organization_id"`
	Name           string `bson:"name" json:"name"`
	OfficialName   string `bson:"officialName,omitempty" json:"official_name,omitempty"`
	TradingName    string `bson:"tradingName,omitempty" json:"trading_name,omitempty"`
}

// Campaign carries the monitoring configuration per campaign. Keywords,
// when set by an operator, override company-derived extraction;
// SEOKeywords are free-form topic terms and are never merged with the
// identity keywords.
type Campaign struct {
	ID             string   `bson:"_id,omitempty" json:"id"`
	OrganizationID string   `bson:"organizationId" json:"organization_id"`
	ClientID       string   `bson:"clientId,omitempty" json:"client_id,omitempty"`
	ProjectID      string   `bson:"projectId,omitempty" json:"project_id,omitempty"`
	Keywords       []string `bson:"keywords,omitempty" json:"keywords,omitempty"`
	SEOKeywords    []string `bson:"seoKeywords,omitempty" json:"seo_keywords,omitempty"`
	MinMatchScore  int      `bson:"minMatchScore,omitempty" json:"min_match_score,omitempty"`
}
