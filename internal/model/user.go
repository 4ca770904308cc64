package model

import "time"

// User holds account and profile data. Password stores a bcrypt hash, never
// plaintext.
type User struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;size:128;not null" json:"email"`
	Password  string    `gorm:"size:128;not null" json:"-"`
	Name      string    `gorm:"size:64;not null" json:"name"`
	Address   string    `gorm:"size:256" json:"address"`
	Pincode   string    `gorm:"size:16" json:"pincode"`
	IsAdmin   bool      `gorm:"not null;default:false" json:"isAdmin"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	// Associations
	Reservations []Reservation `gorm:"foreignKey:UserID" json:"-"`
}
