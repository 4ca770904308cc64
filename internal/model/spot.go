package model

import "time"

// Spot status values. A spot flips to occupied only through allocation and
// back to available only through release.
const (
	SpotAvailable = "available"
	SpotOccupied  = "occupied"
)

// Spot represents one parkable unit within a lot.
type Spot struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	LotID     int64     `gorm:"index;not null" json:"lotId"`
	Status    string    `gorm:"size:16;not null;default:available" json:"status"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	// Associations
	Lot          Lot           `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Reservations []Reservation `gorm:"foreignKey:SpotID" json:"-"`
}
