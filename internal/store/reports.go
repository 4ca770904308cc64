package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"parking-reservation-backend/internal/billing"
	"parking-reservation-backend/internal/model"
)

// LotSummaries aggregates occupancy and revenue for every lot plus grand
// totals. Revenue counts the stored cost of released reservations and a live
// estimate, at the lot's current rate, for reservations still open.
func (s *gormStore) LotSummaries(ctx context.Context, now time.Time) (*LotReport, error) {
	var lots []model.Lot
	if err := s.db.WithContext(ctx).Order("id").Find(&lots).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve lots: %w", err)
	}

	// One aggregate pass over spots for occupancy counts.
	type spotAgg struct {
		LotID    int64
		Total    int64
		Occupied int64
	}
	var spotAggs []spotAgg
	if err := s.db.WithContext(ctx).
		Model(&model.Spot{}).
		Select("lot_id as lot_id, COUNT(*) as total, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) as occupied", model.SpotOccupied).
		Group("lot_id").
		Scan(&spotAggs).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate spots: %w", err)
	}
	spotMap := make(map[int64]spotAgg, len(spotAggs))
	for _, a := range spotAggs {
		spotMap[a.LotID] = a
	}

	// Settled revenue per lot, summed in SQL.
	type revenueAgg struct {
		LotID   int64
		Revenue float64
	}
	var revenueAggs []revenueAgg
	if err := s.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Select("spots.lot_id as lot_id, COALESCE(SUM(reservations.total_cost), 0) as revenue").
		Joins("JOIN spots ON spots.id = reservations.spot_id").
		Where("reservations.ended_at IS NOT NULL").
		Group("spots.lot_id").
		Scan(&revenueAggs).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate settled revenue: %w", err)
	}
	revenueMap := make(map[int64]float64, len(revenueAggs))
	for _, a := range revenueAggs {
		revenueMap[a.LotID] = a.Revenue
	}

	// Open reservations contribute a live estimate.
	type openRow struct {
		LotID     int64
		StartedAt time.Time
	}
	var openRows []openRow
	if err := s.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Select("spots.lot_id as lot_id, reservations.started_at as started_at").
		Joins("JOIN spots ON spots.id = reservations.spot_id").
		Where("reservations.ended_at IS NULL").
		Scan(&openRows).Error; err != nil {
		return nil, fmt.Errorf("failed to load open reservations: %w", err)
	}

	rateMap := make(map[int64]float64, len(lots))
	for _, l := range lots {
		rateMap[l.ID] = l.HourlyRate
	}
	for _, r := range openRows {
		revenueMap[r.LotID] += billing.Cost(r.StartedAt, now, rateMap[r.LotID])
	}

	report := &LotReport{Lots: make([]LotSummary, 0, len(lots))}
	for _, l := range lots {
		a := spotMap[l.ID]
		summary := LotSummary{
			LotID:     l.ID,
			Name:      l.Name,
			Occupied:  a.Occupied,
			Available: a.Total - a.Occupied,
			Total:     a.Total,
			Revenue:   math.Round(revenueMap[l.ID]*100) / 100,
		}
		report.Lots = append(report.Lots, summary)
		report.TotalOccupied += summary.Occupied
		report.TotalAvailable += summary.Available
		report.TotalSpots += summary.Total
		report.TotalRevenue += summary.Revenue
	}
	report.TotalRevenue = math.Round(report.TotalRevenue*100) / 100
	return report, nil
}

// UserSummary reports a user's booking count, total spend on released
// reservations, and a per-lot usage histogram.
func (s *gormStore) UserSummary(ctx context.Context, now time.Time, userID int64) (*UserReport, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}

	report := &UserReport{UserID: userID, Usage: make([]LotUsage, 0)}

	if err := s.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("user_id = ?", userID).
		Count(&report.Reservations).Error; err != nil {
		return nil, fmt.Errorf("failed to count reservations for user %d: %w", userID, err)
	}
	if err := s.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("user_id = ? AND ended_at IS NULL", userID).
		Count(&report.Active).Error; err != nil {
		return nil, fmt.Errorf("failed to count active reservations for user %d: %w", userID, err)
	}

	if err := s.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("user_id = ? AND ended_at IS NOT NULL", userID).
		Select("COALESCE(SUM(total_cost), 0)").
		Scan(&report.TotalSpent).Error; err != nil {
		return nil, fmt.Errorf("failed to sum spend for user %d: %w", userID, err)
	}

	if err := s.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Select("lots.id as lot_id, lots.name as name, COUNT(*) as count").
		Joins("JOIN spots ON spots.id = reservations.spot_id").
		Joins("JOIN lots ON lots.id = spots.lot_id").
		Where("reservations.user_id = ?", userID).
		Group("lots.id, lots.name").
		Order("lots.id").
		Scan(&report.Usage).Error; err != nil {
		return nil, fmt.Errorf("failed to build usage histogram for user %d: %w", userID, err)
	}
	return report, nil
}

// OccupiedSpotDetail returns the active reservation on a spot with a live
// cost estimate. Asking about a free spot is an error distinct from the spot
// not existing.
func (s *gormStore) OccupiedSpotDetail(ctx context.Context, now time.Time, spotID int64) (*SpotDetail, error) {
	var spot model.Spot
	if err := s.db.WithContext(ctx).First(&spot, spotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load spot %d: %w", spotID, err)
	}
	if spot.Status != model.SpotOccupied {
		return nil, ErrNotOccupied
	}

	var reservation model.Reservation
	if err := s.db.WithContext(ctx).
		Where("spot_id = ? AND ended_at IS NULL", spotID).
		First(&reservation).Error; err != nil {
		return nil, fmt.Errorf("occupied spot %d has no open reservation: %w", spotID, err)
	}

	var user model.User
	if err := s.db.WithContext(ctx).First(&user, reservation.UserID).Error; err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", reservation.UserID, err)
	}
	var lot model.Lot
	if err := s.db.WithContext(ctx).First(&lot, spot.LotID).Error; err != nil {
		return nil, fmt.Errorf("failed to load lot %d: %w", spot.LotID, err)
	}

	return &SpotDetail{
		SpotID:        spot.ID,
		LotID:         spot.LotID,
		ReservationID: reservation.ID,
		UserID:        user.ID,
		RenterName:    user.Name,
		RenterEmail:   user.Email,
		VehicleNo:     reservation.VehicleNo,
		StartedAt:     reservation.StartedAt.UTC(),
		EstimatedCost: billing.Cost(reservation.StartedAt, now, lot.HourlyRate),
	}, nil
}
