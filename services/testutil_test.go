package services

import (
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stayloop/booking-service/models"
	"github.com/stayloop/booking-service/utils"
)

func init() {
	utils.InitValidator()
}

// captureQueue records enqueued tasks instead of delivering anything.
type captureQueue struct {
	kinds    []models.TaskKind
	payloads []any
}

func (q *captureQueue) Enqueue(kind models.TaskKind, payload any) (*models.EmailTask, error) {
	q.kinds = append(q.kinds, kind)
	q.payloads = append(q.payloads, payload)
	return &models.EmailTask{ID: int64(len(q.kinds)), Kind: kind, Status: models.TaskPending}, nil
}

func (q *captureQueue) countKind(kind models.TaskKind) int {
	n := 0
	for _, k := range q.kinds {
		if k == kind {
			n++
		}
	}
	return n
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(database))
	return database
}

func newTestServer(t *testing.T) (*Server, *captureQueue) {
	t.Helper()
	q := &captureQueue{}
	return &Server{
		DB:     newTestDB(t),
		Queue:  q,
		Logger: log.NewNopLogger(),
	}, q
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		Role:      models.DefaultRole,
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		IsActive:  true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedProperty(t *testing.T, db *gorm.DB, hostID int64, priceCents int64, maxGuests int) *models.Property {
	t.Helper()
	property := &models.Property{
		HostID:       hostID,
		Name:         "Seaside Loft",
		Location:     "Lisbon",
		PriceCents:   priceCents,
		PropertyType: models.PropertyLoft,
		MaxGuests:    maxGuests,
		IsAvailable:  true,
	}
	require.NoError(t, db.Create(property).Error)
	return property
}

func date(daysFromNow int) time.Time {
	return utils.Today().AddDate(0, 0, daysFromNow)
}
