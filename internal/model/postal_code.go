package model

import "time"

// PostalCode is one locally known pincode and its delivery office.
type PostalCode struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	Pincode    string    `gorm:"uniqueIndex;size:6;not null" json:"pincode"`
	PostOffice string    `gorm:"size:256;not null" json:"post_office"`
	Delivery   string    `gorm:"size:64;not null" json:"delivery"`
	District   string    `gorm:"size:128;not null" json:"district"`
	State      string    `gorm:"size:128;not null" json:"state"`
	Latitude   *float64  `json:"latitude"`
	Longitude  *float64  `json:"longitude"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}
