package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"parking-reservation-backend/config"
	"parking-reservation-backend/internal/auth"
	"parking-reservation-backend/internal/model"
	"parking-reservation-backend/internal/store"
)

type testEnv struct {
	router *gin.Engine
	store  store.Store
	issuer *auth.TokenIssuer
	db     *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:api_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Lot{}, &model.Spot{}, &model.Reservation{}))

	s := store.NewGormStore(db)
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	cfg := &config.ServerConfig{
		RateLimitPerSec: 1000,
		RateLimitBurst:  1000,
		CacheTTLSeconds: 1,
	}
	return &testEnv{
		router: NewRouter(s, issuer, cfg),
		store:  s,
		issuer: issuer,
		db:     db,
	}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(payload)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// adminToken seeds an admin account and mints a token for it.
func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	admin := model.User{Email: "admin@example.com", Password: "x", Name: "Admin", IsAdmin: true}
	require.NoError(t, e.db.Create(&admin).Error)
	token, err := e.issuer.Mint(time.Now(), auth.Identity{UserID: admin.ID, IsAdmin: true})
	require.NoError(t, err)
	return token
}

func (e *testEnv) userToken(t *testing.T, email string) (string, int64) {
	t.Helper()
	user := model.User{Email: email, Password: "x", Name: "User"}
	require.NoError(t, e.db.Create(&user).Error)
	token, err := e.issuer.Mint(time.Now(), auth.Identity{UserID: user.ID})
	require.NoError(t, err)
	return token, user.ID
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"email":    "driver@example.com",
		"password": "s3cret-pass",
		"name":     "Driver",
		"pincode":  "560001",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		w := env.request(t, http.MethodPost, "/api/auth/register", "", gin.H{
			"email":    "driver@example.com",
			"password": "s3cret-pass",
			"name":     "Driver",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("login returns a usable token", func(t *testing.T) {
		w := env.request(t, http.MethodPost, "/api/auth/login", "", gin.H{
			"email":    "driver@example.com",
			"password": "s3cret-pass",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.Token)

		identity, err := env.issuer.Verify(resp.Token)
		require.NoError(t, err)
		assert.False(t, identity.IsAdmin)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		w := env.request(t, http.MethodPost, "/api/auth/login", "", gin.H{
			"email":    "driver@example.com",
			"password": "not-the-password",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestLotEndpointsRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	userToken, _ := env.userToken(t, "plain@example.com")

	lotBody := gin.H{"name": "Garage", "address": "Main St", "pincode": "560001", "hourlyRate": 10, "capacity": 2}

	w := env.request(t, http.MethodPost, "/api/lots", "", lotBody)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.request(t, http.MethodPost, "/api/lots", userToken, lotBody)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.request(t, http.MethodPost, "/api/lots", env.adminToken(t), lotBody)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestLotLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)
	userToken, userID := env.userToken(t, "driver2@example.com")

	// Admin creates a lot with one spot.
	w := env.request(t, http.MethodPost, "/api/lots", admin, gin.H{
		"name": "Tiny Lot", "address": "Side Street", "pincode": "560009", "hourlyRate": 10, "capacity": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var lot model.Lot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lot))

	// User allocates the only spot.
	w = env.request(t, http.MethodPost, "/api/reservations", userToken, gin.H{
		"lotId": lot.ID, "vehicleNo": "KA-09-0001",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var reservation model.Reservation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reservation))
	assert.Equal(t, userID, reservation.UserID)

	// Second allocation conflicts.
	w = env.request(t, http.MethodPost, "/api/reservations", userToken, gin.H{
		"lotId": lot.ID, "vehicleNo": "KA-09-0002",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Deleting an occupied lot conflicts.
	w = env.request(t, http.MethodDelete, fmt.Sprintf("/api/lots/%d", lot.ID), admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Admin sees the occupant in the spot detail.
	w = env.request(t, http.MethodGet, fmt.Sprintf("/api/spots/%d", reservation.SpotID), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail store.SpotDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "KA-09-0001", detail.VehicleNo)

	// A different user cannot release someone else's reservation.
	otherToken, _ := env.userToken(t, "intruder@example.com")
	w = env.request(t, http.MethodPost, fmt.Sprintf("/api/reservations/%d/release", reservation.ID), otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The owner releases; the lot can then be deleted.
	w = env.request(t, http.MethodPost, fmt.Sprintf("/api/reservations/%d/release", reservation.ID), userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodPost, fmt.Sprintf("/api/reservations/%d/release", reservation.ID), userToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.request(t, http.MethodDelete, fmt.Sprintf("/api/lots/%d", lot.ID), admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestUserSummaryAccess(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)
	aToken, aID := env.userToken(t, "a@example.com")
	_, bID := env.userToken(t, "b@example.com")

	w := env.request(t, http.MethodGet, fmt.Sprintf("/api/users/%d/summary", aID), aToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodGet, fmt.Sprintf("/api/users/%d/summary", bID), aToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.request(t, http.MethodGet, fmt.Sprintf("/api/users/%d/summary", bID), admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSearchLotsOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)

	w := env.request(t, http.MethodPost, "/api/lots", admin, gin.H{
		"name": "Harbour Parking", "address": "Dock 4", "pincode": "400001", "hourlyRate": 18, "capacity": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodGet, "/api/lots?by=location&q=harbour", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var results []store.LotSearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "Harbour Parking", results[0].Name)

	w = env.request(t, http.MethodGet, "/api/lots?by=pincode&q=9999", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	assert.Empty(t, results)
}
