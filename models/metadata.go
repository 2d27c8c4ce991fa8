package models

import (
	"time"
)

// Metadata keys written after each ingestion run.
const (
	MetaLastUpdate   = "last_update"
	MetaTotalMatches = "total_matches"
)

// Metadata is process-wide key/value state (last update time, totals).
type Metadata struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Key       string    `json:"key" gorm:"uniqueIndex;not null"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Metadata) TableName() string {
	return "metadata"
}
