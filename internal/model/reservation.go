package model

import "time"

// Reservation records one vehicle occupying one spot. EndedAt and TotalCost
// stay nil while the reservation is active and are written exactly once on
// release.
type Reservation struct {
	ID        int64      `gorm:"primaryKey" json:"id"`
	SpotID    int64      `gorm:"index;not null" json:"spotId"`
	UserID    int64      `gorm:"index;not null" json:"userId"`
	VehicleNo string     `gorm:"size:20;not null" json:"vehicleNo"`
	StartedAt time.Time  `gorm:"not null" json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt"`
	TotalCost *float64   `json:"totalCost"`

	// Associations
	Spot Spot `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Active reports whether the reservation has not been released yet.
func (r *Reservation) Active() bool {
	return r.EndedAt == nil
}
