package service

import (
	"context"
	"testing"
	"time"

	"hivcare-booking/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ict = time.FixedZone("ICT", 7*60*60)

func newTestReservations(t *testing.T) (*SlotReservationService, func(key string) (string, error)) {
	mr, client := setupTestRedis(t)
	svc := NewSlotReservationService(nil, client, nil, quietLogger(), ict)
	svc.now = func() time.Time { return time.Date(2026, 10, 19, 10, 0, 0, 0, ict) }
	return svc, mr.Get
}

func TestReserveIsExclusive(t *testing.T) {
	svc, get := newTestReservations(t)
	ctx := context.Background()
	doctorID := uuid.New()
	date := time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)
	first, second := uuid.New(), uuid.New()

	require.NoError(t, svc.Reserve(ctx, doctorID, date, "09:30", first))
	assert.ErrorIs(t, svc.Reserve(ctx, doctorID, date, "09:30", second), ErrSlotTaken)
	assert.NoError(t, svc.Reserve(ctx, doctorID, date, "09:30", first), "same holder retries")
	assert.NoError(t, svc.Reserve(ctx, doctorID, date, "10:00", second), "other slot")
	assert.NoError(t, svc.Reserve(ctx, uuid.New(), date, "09:30", second), "other doctor")

	holder, err := get(SlotKey(doctorID, date, "09:30"))
	require.NoError(t, err)
	assert.Equal(t, first.String(), holder)
}

func TestReleaseOnlyByHolder(t *testing.T) {
	svc, get := newTestReservations(t)
	ctx := context.Background()
	doctorID := uuid.New()
	date := time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)
	holder, intruder := uuid.New(), uuid.New()

	require.NoError(t, svc.Reserve(ctx, doctorID, date, "08:00", holder))

	require.NoError(t, svc.Release(ctx, doctorID, date, "08:00", intruder))
	_, err := get(SlotKey(doctorID, date, "08:00"))
	assert.NoError(t, err, "reservation kept")

	require.NoError(t, svc.Release(ctx, doctorID, date, "08:00", holder))
	assert.NoError(t, svc.Reserve(ctx, doctorID, date, "08:00", intruder))
}

func TestSeedSkipsCancelledBookings(t *testing.T) {
	svc, get := newTestReservations(t)
	doctorID := uuid.New()
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	active := entity.Booking{ID: uuid.New(), DoctorID: doctorID, BookingDate: date, StartTime: "09:00", Status: entity.BookingStatusPending}
	cancelled := entity.Booking{ID: uuid.New(), DoctorID: doctorID, BookingDate: date, StartTime: "09:30", Status: entity.BookingStatusCancelled}

	require.NoError(t, svc.seed(context.Background(), []entity.Booking{active, cancelled}))

	holder, err := get(SlotKey(doctorID, date, "09:00"))
	require.NoError(t, err)
	assert.Equal(t, active.ID.String(), holder)

	_, err = get(SlotKey(doctorID, date, "09:30"))
	assert.Error(t, err)

	assert.ErrorIs(t, svc.Reserve(context.Background(), doctorID, date, "09:00", uuid.New()), ErrSlotTaken)
}

func TestClearReservationsDropsStaleSlots(t *testing.T) {
	svc, get := newTestReservations(t)
	ctx := context.Background()
	doctorID := uuid.New()
	date := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	orphan := uuid.New()
	require.NoError(t, svc.Reserve(ctx, doctorID, date, "14:00", orphan))
	require.NoError(t, svc.redisClient.Set(ctx, "idempotency:keep-me", "1", time.Hour).Err())

	cleared, err := svc.clearReservations(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cleared)

	_, err = get(SlotKey(doctorID, date, "14:00"))
	assert.Error(t, err, "orphaned reservation removed")
	_, err = get("idempotency:keep-me")
	assert.NoError(t, err, "other keys untouched")

	live := entity.Booking{ID: uuid.New(), DoctorID: doctorID, BookingDate: date, StartTime: "15:00", Status: entity.BookingStatusConfirmed}
	require.NoError(t, svc.seed(ctx, []entity.Booking{live}))
	assert.NoError(t, svc.Reserve(ctx, doctorID, date, "14:00", uuid.New()), "freed slot bookable again")
	assert.ErrorIs(t, svc.Reserve(ctx, doctorID, date, "15:00", uuid.New()), ErrSlotTaken)
}

func TestCalculateTTL(t *testing.T) {
	svc, _ := newTestReservations(t)

	assert.Equal(t, 14*time.Hour, svc.calculateTTL(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 38*time.Hour, svc.calculateTTL(time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Minute, svc.calculateTTL(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)))
}
