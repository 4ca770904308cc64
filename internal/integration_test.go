package internal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"parking-reservation-backend/internal/model"
	"parking-reservation-backend/internal/store"
)

// TestReservationLifecycle walks the full allocate/release cycle on a small
// lot: fill it, get turned away, release after 1.5 hours, and verify cost,
// freed spot and reporting totals at each step.
func TestReservationLifecycle(t *testing.T) {
	testDB, err := gorm.Open(sqlite.Open("file:lifecycle?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	require.NoError(t, testDB.AutoMigrate(&model.User{}, &model.Lot{}, &model.Spot{}, &model.Reservation{}))

	s := store.NewGormStore(testDB)
	ctx := context.Background()
	start := time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)

	// Three drivers and a two-spot lot at 10/hour.
	var users [3]model.User
	for i, email := range []string{"alice@example.com", "bob@example.com", "carol@example.com"} {
		users[i] = model.User{Email: email, Password: "x", Name: email}
		require.NoError(t, testDB.Create(&users[i]).Error)
	}

	lot, err := s.CreateLot(ctx, store.CreateLotParams{
		Name:       "Station Lot",
		Address:    "Platform Road",
		Pincode:    "560010",
		HourlyRate: 10,
		Capacity:   2,
	})
	require.NoError(t, err)

	var aliceReservation *model.Reservation

	t.Run("two allocations fill the lot", func(t *testing.T) {
		aliceReservation, err = s.Allocate(ctx, start, users[0].ID, lot.ID, "KA-10-0001")
		require.NoError(t, err)

		_, err = s.Allocate(ctx, start, users[1].ID, lot.ID, "KA-10-0002")
		require.NoError(t, err)

		report, err := s.LotSummaries(ctx, start)
		require.NoError(t, err)
		require.Len(t, report.Lots, 1)
		assert.Equal(t, int64(2), report.Lots[0].Occupied)
		assert.Equal(t, int64(0), report.Lots[0].Available)
	})

	t.Run("third driver is turned away", func(t *testing.T) {
		_, err := s.Allocate(ctx, start, users[2].ID, lot.ID, "KA-10-0003")
		assert.ErrorIs(t, err, store.ErrNoAvailability)
	})

	t.Run("release after 90 minutes costs 15 and frees the spot", func(t *testing.T) {
		released, err := s.Release(ctx, start.Add(90*time.Minute), aliceReservation.ID)
		require.NoError(t, err)
		require.NotNil(t, released.TotalCost)
		assert.Equal(t, 15.0, *released.TotalCost)

		report, err := s.LotSummaries(ctx, start.Add(90*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, int64(1), report.Lots[0].Occupied)
		assert.Equal(t, int64(1), report.Lots[0].Available)
	})

	t.Run("freed spot can be allocated again", func(t *testing.T) {
		reservation, err := s.Allocate(ctx, start.Add(2*time.Hour), users[2].ID, lot.ID, "KA-10-0003")
		require.NoError(t, err)
		assert.Equal(t, aliceReservation.SpotID, reservation.SpotID)

		report, err := s.LotSummaries(ctx, start.Add(2*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(2), report.Lots[0].Occupied)
		assert.Equal(t, report.Lots[0].Total, report.Lots[0].Occupied+report.Lots[0].Available)
	})

	t.Run("alice's spend shows up in her summary", func(t *testing.T) {
		summary, err := s.UserSummary(ctx, start.Add(3*time.Hour), users[0].ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), summary.Reservations)
		assert.Equal(t, int64(0), summary.Active)
		assert.Equal(t, 15.0, summary.TotalSpent)
		require.Len(t, summary.Usage, 1)
		assert.Equal(t, lot.ID, summary.Usage[0].LotID)
	})
}
