package model

import "time"

// ScanStatus tracks a scan through the worker pool.
type ScanStatus string

const (
	ScanPending    ScanStatus = "pending"
	ScanProcessing ScanStatus = "processing"
	ScanDone       ScanStatus = "done"
	ScanFailed     ScanStatus = "failed"
)

// Scan is an uploaded address photo and, once processed, its validation result.
type Scan struct {
	ID             int64      `gorm:"primaryKey"`
	Status         ScanStatus `gorm:"size:16;index;not null"`
	Image          []byte     `gorm:"not null"`
	ImageType      string     `gorm:"size:64"`
	Annotated      []byte
	RecognizedText string
	TranslatedText string
	Entities       string // JSON object of entity type -> words
	Pincode        string `gorm:"size:6;index"`
	Outcome        string `gorm:"size:32"`
	Region         string `gorm:"size:128"`
	Matched        bool
	Message        string
	Error          string

	SubscriptionEndpoint *string `gorm:"index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
