package model

import "time"

// ReportMetadata is the narrative page published for a tool.
type ReportMetadata struct {
	ToolID    string    `bson:"_id" json:"toolId"`
	Title     string    `bson:"title" json:"title"`
	Ingress   string    `bson:"ingress" json:"ingress"`
	Findings  []string  `bson:"findings" json:"findings"`
	PDFURL    string    `bson:"pdf_url,omitempty" json:"pdfUrl,omitempty"`
	Published bool      `bson:"published" json:"published"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

const LandingKey = "landing"

// SiteContent is admin-editable landing page copy.
type SiteContent struct {
	Key          string    `bson:"_id" json:"key"`
	HeroTitle    string    `bson:"hero_title" json:"heroTitle"`
	HeroSubtitle string    `bson:"hero_subtitle" json:"heroSubtitle"`
	Body         string    `bson:"body" json:"body"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}
