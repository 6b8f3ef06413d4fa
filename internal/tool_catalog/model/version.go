package model

import "time"

type VersionStatus string

const (
	VersionPending    VersionStatus = "pending"
	VersionProcessing VersionStatus = "processing"
	VersionReady      VersionStatus = "ready"
	VersionFailed     VersionStatus = "failed"
)

// ToolVersion records one spreadsheet import batch.
type ToolVersion struct {
	ID            string            `bson:"_id" json:"id"`
	Label         string            `bson:"label" json:"label"`
	Status        VersionStatus     `bson:"status" json:"status"`
	ColumnCount   int               `bson:"column_count" json:"columnCount"`
	RowCount      int               `bson:"row_count" json:"rowCount"`
	ColumnMapping map[string]string `bson:"column_mapping" json:"columnMapping"`
	Active        bool              `bson:"active" json:"active"`
	Metadata      map[string]any    `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt     time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time         `bson:"updatedAt" json:"updatedAt"`
}
