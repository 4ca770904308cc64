package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"parking-reservation-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UserByID(ctx context.Context, id int64) (*model.User, error)
	EnsureAdmin(ctx context.Context, email, passwordHash, name string) error

	// Lot & spot registry
	CreateLot(ctx context.Context, params CreateLotParams) (*model.Lot, error)
	ResizeLot(ctx context.Context, lotID int64, newCapacity int) (*model.Lot, error)
	DeleteLot(ctx context.Context, lotID int64) error
	DeleteSpot(ctx context.Context, spotID int64) error
	SearchLots(ctx context.Context, kind SearchKind, query string) ([]LotSearchResult, error)

	// Allocation & release
	Allocate(ctx context.Context, now time.Time, userID, lotID int64, vehicleNo string) (*model.Reservation, error)
	Release(ctx context.Context, now time.Time, reservationID int64) (*model.Reservation, error)
	ReservationByID(ctx context.Context, id int64) (*model.Reservation, error)

	// Reporting
	LotSummaries(ctx context.Context, now time.Time) (*LotReport, error)
	UserSummary(ctx context.Context, now time.Time, userID int64) (*UserReport, error)
	OccupiedSpotDetail(ctx context.Context, now time.Time, spotID int64) (*SpotDetail, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// CreateLot creates a lot together with exactly Capacity available spots in
// one transaction.
func (s *gormStore) CreateLot(ctx context.Context, params CreateLotParams) (*model.Lot, error) {
	if err := validateLotParams(params); err != nil {
		return nil, err
	}

	lot := model.Lot{
		Name:       strings.TrimSpace(params.Name),
		Address:    strings.TrimSpace(params.Address),
		Pincode:    strings.TrimSpace(params.Pincode),
		HourlyRate: params.HourlyRate,
		Capacity:   params.Capacity,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&lot).Error; err != nil {
			return fmt.Errorf("failed to create lot: %w", err)
		}

		spots := make([]model.Spot, params.Capacity)
		for i := range spots {
			spots[i] = model.Spot{LotID: lot.ID, Status: model.SpotAvailable}
		}
		if err := tx.Create(&spots).Error; err != nil {
			return fmt.Errorf("failed to create spots for lot %d: %w", lot.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("created lot %d (%s) with %d spots", lot.ID, lot.Name, lot.Capacity)
	return &lot, nil
}

// ResizeLot grows or shrinks a lot's spot count to newCapacity. Shrinking
// removes available spots only, highest id first; if the occupied count
// already exceeds newCapacity the whole resize is rejected with a
// CapacityError and nothing is deleted.
func (s *gormStore) ResizeLot(ctx context.Context, lotID int64, newCapacity int) (*model.Lot, error) {
	if newCapacity <= 0 {
		return nil, &ValidationError{Field: "capacity", Reason: "must be a positive integer"}
	}

	var lot model.Lot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&lot, lotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load lot %d: %w", lotID, err)
		}

		var current int64
		if err := tx.Model(&model.Spot{}).Where("lot_id = ?", lotID).Count(&current).Error; err != nil {
			return fmt.Errorf("failed to count spots for lot %d: %w", lotID, err)
		}

		switch {
		case int64(newCapacity) > current:
			add := int(int64(newCapacity) - current)
			spots := make([]model.Spot, add)
			for i := range spots {
				spots[i] = model.Spot{LotID: lotID, Status: model.SpotAvailable}
			}
			if err := tx.Create(&spots).Error; err != nil {
				return fmt.Errorf("failed to grow lot %d: %w", lotID, err)
			}

		case int64(newCapacity) < current:
			var occupied int64
			if err := tx.Model(&model.Spot{}).
				Where("lot_id = ? AND status = ?", lotID, model.SpotOccupied).
				Count(&occupied).Error; err != nil {
				return fmt.Errorf("failed to count occupied spots for lot %d: %w", lotID, err)
			}
			if occupied > int64(newCapacity) {
				return &CapacityError{Occupied: occupied, Requested: newCapacity}
			}

			var removable []int64
			if err := tx.Model(&model.Spot{}).
				Where("lot_id = ? AND status = ?", lotID, model.SpotAvailable).
				Order("id DESC").
				Limit(int(current - int64(newCapacity))).
				Pluck("id", &removable).Error; err != nil {
				return fmt.Errorf("failed to select removable spots for lot %d: %w", lotID, err)
			}
			if err := deleteSpots(tx, removable); err != nil {
				return err
			}
		}

		lot.Capacity = newCapacity
		if err := tx.Model(&model.Lot{}).Where("id = ?", lotID).Update("capacity", newCapacity).Error; err != nil {
			return fmt.Errorf("failed to update capacity for lot %d: %w", lotID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("resized lot %d to capacity %d", lotID, newCapacity)
	return &lot, nil
}

// DeleteLot removes a lot with all its spots and their reservations. A lot
// with any occupied spot cannot be deleted.
func (s *gormStore) DeleteLot(ctx context.Context, lotID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lot model.Lot
		if err := tx.First(&lot, lotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load lot %d: %w", lotID, err)
		}

		var occupied int64
		if err := tx.Model(&model.Spot{}).
			Where("lot_id = ? AND status = ?", lotID, model.SpotOccupied).
			Count(&occupied).Error; err != nil {
			return fmt.Errorf("failed to count occupied spots for lot %d: %w", lotID, err)
		}
		if occupied > 0 {
			return ErrConflict
		}

		var spotIDs []int64
		if err := tx.Model(&model.Spot{}).Where("lot_id = ?", lotID).Pluck("id", &spotIDs).Error; err != nil {
			return fmt.Errorf("failed to list spots for lot %d: %w", lotID, err)
		}
		if err := deleteSpots(tx, spotIDs); err != nil {
			return err
		}

		if err := tx.Delete(&lot).Error; err != nil {
			return fmt.Errorf("failed to delete lot %d: %w", lotID, err)
		}
		return nil
	})
}

// DeleteSpot removes a single available spot and decrements the lot's
// recorded capacity, never below zero.
func (s *gormStore) DeleteSpot(ctx context.Context, spotID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var spot model.Spot
		if err := tx.First(&spot, spotID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load spot %d: %w", spotID, err)
		}
		if spot.Status == model.SpotOccupied {
			return ErrConflict
		}

		if err := deleteSpots(tx, []int64{spot.ID}); err != nil {
			return err
		}

		if err := tx.Model(&model.Lot{}).
			Where("id = ? AND capacity > 0", spot.LotID).
			Update("capacity", gorm.Expr("capacity - 1")).Error; err != nil {
			return fmt.Errorf("failed to decrement capacity for lot %d: %w", spot.LotID, err)
		}
		return nil
	})
}

// SearchLots matches lots by location (name or address) or pincode with a
// case-insensitive substring. An empty query or no match returns an empty
// slice, never an error.
func (s *gormStore) SearchLots(ctx context.Context, kind SearchKind, query string) ([]LotSearchResult, error) {
	results := make([]LotSearchResult, 0)
	query = strings.TrimSpace(query)
	if query == "" {
		return results, nil
	}

	pattern := "%" + strings.ToLower(query) + "%"
	q := s.db.WithContext(ctx).Model(&model.Lot{})
	switch kind {
	case SearchByLocation:
		q = q.Where("LOWER(name) LIKE ? OR LOWER(address) LIKE ?", pattern, pattern)
	case SearchByPincode:
		q = q.Where("LOWER(pincode) LIKE ?", pattern)
	default:
		return nil, &ValidationError{Field: "kind", Reason: "must be location or pincode"}
	}

	var lots []model.Lot
	if err := q.Order("id").Find(&lots).Error; err != nil {
		return nil, fmt.Errorf("failed to search lots: %w", err)
	}
	if len(lots) == 0 {
		return results, nil
	}

	lotIDs := make([]int64, len(lots))
	for i, l := range lots {
		lotIDs[i] = l.ID
	}

	// One aggregate pass over spots for all matched lots.
	type aggRow struct {
		LotID     int64
		Total     int64
		Available int64
	}
	var aggs []aggRow
	if err := s.db.WithContext(ctx).
		Model(&model.Spot{}).
		Select("lot_id as lot_id, COUNT(*) as total, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) as available", model.SpotAvailable).
		Where("lot_id IN ?", lotIDs).
		Group("lot_id").
		Scan(&aggs).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate spots: %w", err)
	}

	aggMap := make(map[int64]aggRow, len(aggs))
	for _, a := range aggs {
		aggMap[a.LotID] = a
	}

	for _, l := range lots {
		a := aggMap[l.ID]
		results = append(results, LotSearchResult{
			LotID:      l.ID,
			Name:       l.Name,
			Address:    l.Address,
			Pincode:    l.Pincode,
			HourlyRate: l.HourlyRate,
			Available:  a.Available,
			Total:      a.Total,
		})
	}
	return results, nil
}

// deleteSpots removes spots and their reservations inside an open
// transaction. Reservations go first so the delete works regardless of
// whether the backend enforces cascading foreign keys.
func deleteSpots(tx *gorm.DB, spotIDs []int64) error {
	if len(spotIDs) == 0 {
		return nil
	}
	if err := tx.Where("spot_id IN ?", spotIDs).Delete(&model.Reservation{}).Error; err != nil {
		return fmt.Errorf("failed to delete reservations for spots: %w", err)
	}
	if err := tx.Where("id IN ?", spotIDs).Delete(&model.Spot{}).Error; err != nil {
		return fmt.Errorf("failed to delete spots: %w", err)
	}
	return nil
}

func validateLotParams(params CreateLotParams) error {
	if strings.TrimSpace(params.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(params.Address) == "" {
		return &ValidationError{Field: "address", Reason: "must not be empty"}
	}
	if strings.TrimSpace(params.Pincode) == "" {
		return &ValidationError{Field: "pincode", Reason: "must not be empty"}
	}
	if params.HourlyRate <= 0 {
		return &ValidationError{Field: "hourlyRate", Reason: "must be positive"}
	}
	if params.Capacity <= 0 {
		return &ValidationError{Field: "capacity", Reason: "must be a positive integer"}
	}
	return nil
}
