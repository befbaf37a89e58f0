package model

import "time"

// PushSubscription holds the information for a browser push subscription.
// Scans that name the endpoint push their result to it when processed.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Scans []Scan `gorm:"foreignKey:SubscriptionEndpoint;references:Endpoint;constraint:OnDelete:SET NULL"`
}
