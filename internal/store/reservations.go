package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"parking-reservation-backend/internal/billing"
	"parking-reservation-backend/internal/model"
)

// Allocate binds a reservation to the lowest-id available spot of the lot and
// marks the spot occupied. Spot selection, the status flip and the
// reservation insert run in one transaction; the status flip is a guarded
// update so two concurrent allocations can never claim the same spot.
func (s *gormStore) Allocate(ctx context.Context, now time.Time, userID, lotID int64, vehicleNo string) (*model.Reservation, error) {
	vehicleNo = strings.TrimSpace(vehicleNo)
	if vehicleNo == "" {
		return nil, &ValidationError{Field: "vehicleNo", Reason: "must not be empty"}
	}

	var reservation model.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load user %d: %w", userID, err)
		}

		var lot model.Lot
		if err := tx.First(&lot, lotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load lot %d: %w", lotID, err)
		}

		spot, err := claimSpot(tx, lotID)
		if err != nil {
			return err
		}

		reservation = model.Reservation{
			SpotID:    spot.ID,
			UserID:    userID,
			VehicleNo: vehicleNo,
			StartedAt: now.UTC(),
		}
		if err := tx.Create(&reservation).Error; err != nil {
			return fmt.Errorf("failed to create reservation for spot %d: %w", spot.ID, err)
		}
		reservation.Spot = *spot
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("allocated spot %d in lot %d to user %d (reservation %d)", reservation.SpotID, lotID, userID, reservation.ID)
	return &reservation, nil
}

// claimSpot flips the lowest-id available spot of the lot to occupied. The
// update carries the expected status in its WHERE clause; zero rows affected
// means another transaction claimed the spot first, so the next candidate is
// tried until none remain.
func claimSpot(tx *gorm.DB, lotID int64) (*model.Spot, error) {
	lastID := int64(0)
	for {
		var spot model.Spot
		err := tx.Where("lot_id = ? AND status = ? AND id > ?", lotID, model.SpotAvailable, lastID).
			Order("id").
			First(&spot).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNoAvailability
			}
			return nil, fmt.Errorf("failed to select available spot in lot %d: %w", lotID, err)
		}

		res := tx.Model(&model.Spot{}).
			Where("id = ? AND status = ?", spot.ID, model.SpotAvailable).
			Update("status", model.SpotOccupied)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to occupy spot %d: %w", spot.ID, res.Error)
		}
		if res.RowsAffected == 1 {
			spot.Status = model.SpotOccupied
			return &spot, nil
		}

		// Lost the race for this spot, try the next one.
		lastID = spot.ID
	}
}

// Release closes an active reservation: end time is set to now, the cost is
// computed from the lot's current hourly rate, and the spot is freed. All
// three mutations commit together; any failure rolls the whole release back.
func (s *gormStore) Release(ctx context.Context, now time.Time, reservationID int64) (*model.Reservation, error) {
	var reservation model.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&reservation, reservationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load reservation %d: %w", reservationID, err)
		}
		if reservation.EndedAt != nil {
			return ErrAlreadyReleased
		}

		var spot model.Spot
		if err := tx.First(&spot, reservation.SpotID).Error; err != nil {
			return fmt.Errorf("failed to load spot %d: %w", reservation.SpotID, err)
		}
		var lot model.Lot
		if err := tx.First(&lot, spot.LotID).Error; err != nil {
			return fmt.Errorf("failed to load lot %d: %w", spot.LotID, err)
		}

		endedAt := now.UTC()
		cost := billing.Cost(reservation.StartedAt, endedAt, lot.HourlyRate)
		if err := tx.Model(&reservation).Updates(map[string]any{
			"ended_at":   endedAt,
			"total_cost": cost,
		}).Error; err != nil {
			return fmt.Errorf("failed to close reservation %d: %w", reservationID, err)
		}
		reservation.EndedAt = &endedAt
		reservation.TotalCost = &cost

		res := tx.Model(&model.Spot{}).
			Where("id = ? AND status = ?", spot.ID, model.SpotOccupied).
			Update("status", model.SpotAvailable)
		if res.Error != nil {
			return fmt.Errorf("failed to free spot %d: %w", spot.ID, res.Error)
		}
		if res.RowsAffected != 1 {
			return fmt.Errorf("spot %d was not occupied while reservation %d was open", spot.ID, reservationID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("released reservation %d (spot %d, cost %.2f)", reservation.ID, reservation.SpotID, *reservation.TotalCost)
	return &reservation, nil
}

// ReservationByID loads a single reservation.
func (s *gormStore) ReservationByID(ctx context.Context, id int64) (*model.Reservation, error) {
	var reservation model.Reservation
	if err := s.db.WithContext(ctx).First(&reservation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load reservation %d: %w", id, err)
	}
	return &reservation, nil
}
