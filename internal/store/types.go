package store

import "time"

// CreateLotParams carries the input for creating a lot with its spots.
type CreateLotParams struct {
	Name       string
	Address    string
	Pincode    string
	HourlyRate float64
	Capacity   int
}

// SearchKind selects which lot field a search query matches against.
type SearchKind string

const (
	SearchByLocation SearchKind = "location"
	SearchByPincode  SearchKind = "pincode"
)

// LotSearchResult is one lot in a search response, with live spot counts.
type LotSearchResult struct {
	LotID      int64   `json:"lotId"`
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	Pincode    string  `json:"pincode"`
	HourlyRate float64 `json:"hourlyRate"`
	Available  int64   `json:"available"`
	Total      int64   `json:"total"`
}

// LotSummary aggregates occupancy and revenue for a single lot. Revenue
// includes live estimates for reservations that are still open.
type LotSummary struct {
	LotID     int64   `json:"lotId"`
	Name      string  `json:"name"`
	Occupied  int64   `json:"occupied"`
	Available int64   `json:"available"`
	Total     int64   `json:"total"`
	Revenue   float64 `json:"revenue"`
}

// LotReport is the lot summary across every lot plus grand totals.
type LotReport struct {
	Lots           []LotSummary `json:"lots"`
	TotalOccupied  int64        `json:"totalOccupied"`
	TotalAvailable int64        `json:"totalAvailable"`
	TotalSpots     int64        `json:"totalSpots"`
	TotalRevenue   float64      `json:"totalRevenue"`
}

// LotUsage is one bucket of a user's per-lot reservation histogram.
type LotUsage struct {
	LotID int64  `json:"lotId"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// UserReport summarizes a user's booking history. TotalSpent covers released
// reservations only; open reservations count toward Reservations but not
// toward spend.
type UserReport struct {
	UserID       int64      `json:"userId"`
	Reservations int64      `json:"reservations"`
	Active       int64      `json:"active"`
	TotalSpent   float64    `json:"totalSpent"`
	Usage        []LotUsage `json:"usage"`
}

// SpotDetail describes the active reservation occupying a spot, with a live
// cost estimate.
type SpotDetail struct {
	SpotID        int64     `json:"spotId"`
	LotID         int64     `json:"lotId"`
	ReservationID int64     `json:"reservationId"`
	UserID        int64     `json:"userId"`
	RenterName    string    `json:"renterName"`
	RenterEmail   string    `json:"renterEmail"`
	VehicleNo     string    `json:"vehicleNo"`
	StartedAt     time.Time `json:"startedAt"`
	EstimatedCost float64   `json:"estimatedCost"`
}
