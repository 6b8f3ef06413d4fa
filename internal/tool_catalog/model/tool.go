package model

import (
	"fmt"
	"time"
)

type ToolStatus string

const (
	ToolDraft     ToolStatus = "draft"
	ToolPublished ToolStatus = "published"
	ToolArchived  ToolStatus = "archived"
)

func (s ToolStatus) Valid() bool {
	switch s {
	case ToolDraft, ToolPublished, ToolArchived:
		return true
	}
	return false
}

// MetaImportID is the metadata key carrying the spreadsheet row ID.
const MetaImportID = "importId"

// Tool is a catalog entry. Slug is assigned at creation and never rewritten by imports.
type Tool struct {
	ID                string            `bson:"_id" json:"id"`
	Slug              string            `bson:"slug" json:"slug"`
	Name              string            `bson:"name" json:"name"`
	Vendor            string            `bson:"vendor" json:"vendor"`
	Category          string            `bson:"category" json:"category"`
	SecondaryCategory string            `bson:"secondary_category,omitempty" json:"secondaryCategory,omitempty"`
	Website           string            `bson:"website" json:"website"`
	Summary           string            `bson:"summary" json:"summary"`
	ComparisonData    map[string]string `bson:"comparison_data" json:"comparisonData"`
	Metadata          map[string]any    `bson:"metadata" json:"metadata"`
	RawRow            map[string]string `bson:"raw_row" json:"rawRow,omitempty"`
	Status            ToolStatus        `bson:"status" json:"status"`
	Featured          bool              `bson:"featured" json:"featured"`
	VersionID         string            `bson:"version_id,omitempty" json:"versionId,omitempty"`
	CreatedAt         time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// ImportID returns the correlation id stored in metadata, or "".
func (t Tool) ImportID() string {
	if t.Metadata == nil {
		return ""
	}
	switch v := t.Metadata[MetaImportID].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
