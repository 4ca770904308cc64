package model

import "time"

// Lot represents a parking facility with an hourly rate and a spot capacity.
type Lot struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:128;not null" json:"name"`
	Address    string    `gorm:"size:256;not null" json:"address"`
	Pincode    string    `gorm:"size:16;not null;index" json:"pincode"`
	HourlyRate float64   `gorm:"not null" json:"hourlyRate"`
	Capacity   int       `gorm:"not null" json:"capacity"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`

	// Associations
	Spots []Spot `gorm:"foreignKey:LotID" json:"-"`
}
