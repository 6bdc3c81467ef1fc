package db

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/docker/go-connections/nat"
	"github.com/go-kit/log"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/stayloop/booking-service/config"
	"github.com/stayloop/booking-service/models"
	"github.com/stayloop/booking-service/services"
	"github.com/stayloop/booking-service/utils"
)

// TestInitDBPostgres spins up a disposable postgres and verifies the
// schema comes up. Requires Docker; skipped otherwise.
func TestInitDBPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	if os.Getenv("DOCKER_HOST") == "" {
		if _, err := os.Stat("/var/run/docker.sock"); err != nil {
			t.Skip("docker not available")
		}
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:15",
		ExposedPorts: []string{"5432/tcp"},
		AutoRemove:   true,
		Env: map[string]string{
			"POSTGRES_USER":     "booking",
			"POSTGRES_PASSWORD": "booking",
			"POSTGRES_DB":       "booking_test",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp"),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	port, err := container.MappedPort(ctx, nat.Port("5432/tcp"))
	require.NoError(t, err)

	cfg := &config.DatabaseConfig{
		Driver:          "postgres",
		Host:            "localhost",
		Port:            port.Int(),
		Database:        "booking_test",
		Username:        "booking",
		Password:        "booking",
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 300,
	}
	require.NoError(t, InitDB(cfg))
	t.Cleanup(func() { _ = Close() })

	// Migrations ran; the core tables accept writes.
	user := models.User{Role: models.DefaultRole, FirstName: "A", LastName: "B", Email: "a@example.com"}
	require.NoError(t, DB.Create(&user).Error)
	require.True(t, DB.Migrator().HasTable(&models.Booking{}))
	require.True(t, DB.Migrator().HasTable(&models.EmailTask{}))
	require.True(t, DB.Migrator().HasIndex(&models.Booking{}, "idx_booking_property_status_dates"))

	t.Run("concurrent admissions serialize", testConcurrentAdmissions)
}

// testConcurrentAdmissions races two overlapping admissions for the
// same property on a real postgres, where the FOR UPDATE lock on the
// property row is actually emitted. Exactly one may win.
func testConcurrentAdmissions(t *testing.T) {
	utils.InitValidator()
	svc := &services.Server{DB: DB, Logger: log.NewNopLogger()}

	host := models.User{Role: models.DefaultRole, FirstName: "H", LastName: "Ost", Email: "host@example.com"}
	require.NoError(t, DB.Create(&host).Error)
	guestA := models.User{Role: models.DefaultRole, FirstName: "G", LastName: "A", Email: "ga@example.com"}
	require.NoError(t, DB.Create(&guestA).Error)
	guestB := models.User{Role: models.DefaultRole, FirstName: "G", LastName: "B", Email: "gb@example.com"}
	require.NoError(t, DB.Create(&guestB).Error)
	property := models.Property{
		HostID: host.ID, Name: "Race Loft", Location: "Porto",
		PriceCents: 10000, MaxGuests: 4, IsAvailable: true,
	}
	require.NoError(t, DB.Create(&property).Error)

	start := utils.Today().AddDate(0, 0, 10)
	admitFor := func(userID int64, offset int) error {
		_, err := svc.CreateBooking(context.Background(), services.CreateBookingInput{
			PropertyID: property.ID,
			UserID:     userID,
			StartDate:  start.AddDate(0, 0, offset),
			EndDate:    start.AddDate(0, 0, offset+3),
			Guests:     2,
		})
		return err
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	ready := make(chan struct{})
	for i, userID := range []int64{guestA.ID, guestB.ID} {
		wg.Add(1)
		go func(i int, userID int64) {
			defer wg.Done()
			<-ready
			errs[i] = admitFor(userID, i)
		}(i, userID)
	}
	close(ready)
	wg.Wait()

	var conflicts int
	for _, err := range errs {
		if err != nil {
			require.ErrorIs(t, err, services.ErrConflict)
			conflicts++
		}
	}
	require.Equal(t, 1, conflicts, "exactly one admission must lose")

	var count int64
	require.NoError(t, DB.Model(&models.Booking{}).
		Where("property_id = ?", property.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestInitDBUnknownDriver(t *testing.T) {
	err := InitDB(&config.DatabaseConfig{Driver: "oracle"})
	require.Error(t, err)
}
