package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hivcare-booking/internal/domain/entity"
	"hivcare-booking/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrSlotTaken is returned when another booking holds the doctor's slot.
var ErrSlotTaken = errors.New("slot is already reserved")

// reserveSlotScript takes the slot for a holder. Re-reserving by the same
// holder succeeds so retries stay idempotent.
var reserveSlotScript = redis.NewScript(`
	if redis.call('SET', KEYS[1], ARGV[1], 'NX', 'PX', ARGV[2]) then
		return 1
	end
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return 1
	end
	return 0
`)

// releaseSlotScript deletes the reservation only if the holder still owns it.
var releaseSlotScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

const (
	RedisSlotKeyPrefix = "booking:slot:"

	// Batch size for startup sync; one pipeline per batch.
	slotSyncBatchSize = 500
)

// SlotReservationService guards doctor slots in Redis ahead of the database
// insert. The partial unique index on bookings remains the final authority;
// Redis turns most double-booking races into a fast rejection.
type SlotReservationService struct {
	db          *gorm.DB
	redisClient *redis.Client
	bookingRepo repository.BookingRepository
	log         *logrus.Logger
	loc         *time.Location
	now         func() time.Time
}

func NewSlotReservationService(db *gorm.DB, redisClient *redis.Client, bookingRepo repository.BookingRepository, log *logrus.Logger, loc *time.Location) *SlotReservationService {
	if loc == nil {
		loc = time.UTC
	}
	return &SlotReservationService{
		db:          db,
		redisClient: redisClient,
		bookingRepo: bookingRepo,
		log:         log,
		loc:         loc,
		now:         time.Now,
	}
}

// SlotKey builds the Redis key of one doctor slot.
func SlotKey(doctorID uuid.UUID, date time.Time, startTime string) string {
	return fmt.Sprintf("%s%s:%s:%s", RedisSlotKeyPrefix, doctorID, date.Format(entity.DateLayout), startTime)
}

// Reserve takes the slot for holder (the id of the booking being created).
func (s *SlotReservationService) Reserve(ctx context.Context, doctorID uuid.UUID, date time.Time, startTime string, holder uuid.UUID) error {
	key := SlotKey(doctorID, date, startTime)
	ttl := s.calculateTTL(date)

	ok, err := reserveSlotScript.Run(ctx, s.redisClient, []string{key}, holder.String(), ttl.Milliseconds()).Int()
	if err != nil {
		s.log.Warnf("Failed Lua script Reserve for slot %s: %+v", key, err)
		return fmt.Errorf("reserve slot %s: %w", key, err)
	}
	if ok == 0 {
		return ErrSlotTaken
	}

	s.log.Debugf("Reserved slot %s for booking %s", key, holder)
	return nil
}

// Release frees the slot if holder still owns it.
func (s *SlotReservationService) Release(ctx context.Context, doctorID uuid.UUID, date time.Time, startTime string, holder uuid.UUID) error {
	key := SlotKey(doctorID, date, startTime)
	if err := releaseSlotScript.Run(ctx, s.redisClient, []string{key}, holder.String()).Err(); err != nil {
		s.log.Warnf("Failed to release slot %s: %+v", key, err)
		return fmt.Errorf("release slot %s: %w", key, err)
	}

	s.log.Debugf("Released slot %s for booking %s", key, holder)
	return nil
}

// SyncOnStartup rebuilds the reservations of today and later from the
// database. Call it before accepting traffic.
func (s *SlotReservationService) SyncOnStartup(ctx context.Context) error {
	s.log.Info("Starting slot reservation re-sync from database...")
	startTime := time.Now()

	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		s.log.Warnf("Redis is not available, skipping sync: %+v", err)
		return fmt.Errorf("redis ping failed: %w", err)
	}

	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	bookings, err := s.bookingRepo.FindActiveSince(s.db.WithContext(ctx), today)
	if err != nil {
		s.log.Errorf("Failed to query active bookings: %+v", err)
		return fmt.Errorf("query active bookings: %w", err)
	}

	cleared, err := s.clearReservations(ctx)
	if err != nil {
		return err
	}
	if err := s.seed(ctx, bookings); err != nil {
		return err
	}

	s.log.Infof("Slot reservation re-sync completed: %d stale keys cleared, %d bookings synced in %v", cleared, len(bookings), time.Since(startTime))
	return nil
}

// clearReservations deletes every slot key so that reservations left behind by
// failed releases do not outlive a restart.
func (s *SlotReservationService) clearReservations(ctx context.Context) (int, error) {
	var cursor uint64
	cleared := 0
	for {
		keys, next, err := s.redisClient.Scan(ctx, cursor, RedisSlotKeyPrefix+"*", slotSyncBatchSize).Result()
		if err != nil {
			s.log.Errorf("Failed to scan slot reservations: %+v", err)
			return cleared, fmt.Errorf("scan slot reservations: %w", err)
		}
		if len(keys) > 0 {
			if err := s.redisClient.Del(ctx, keys...).Err(); err != nil {
				s.log.Errorf("Failed to clear slot reservations: %+v", err)
				return cleared, fmt.Errorf("clear slot reservations: %w", err)
			}
			cleared += len(keys)
		}
		cursor = next
		if cursor == 0 {
			return cleared, nil
		}
	}
}

// seed writes one reservation per booking, one pipeline per batch.
func (s *SlotReservationService) seed(ctx context.Context, bookings []entity.Booking) error {
	for offset := 0; offset < len(bookings); offset += slotSyncBatchSize {
		end := offset + slotSyncBatchSize
		if end > len(bookings) {
			end = len(bookings)
		}

		pipe := s.redisClient.Pipeline()
		for _, b := range bookings[offset:end] {
			if b.IsCancelled() {
				continue
			}
			key := SlotKey(b.DoctorID, b.BookingDate, b.StartTime)
			pipe.Set(ctx, key, b.ID.String(), s.calculateTTL(b.BookingDate))
		}

		if _, err := pipe.Exec(ctx); err != nil {
			s.log.Errorf("Failed to execute pipeline for batch at offset %d: %+v", offset, err)
			return fmt.Errorf("pipeline exec at offset %d: %w", offset, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
	return nil
}

// calculateTTL keeps a reservation until the end of the booking day in the
// clinic timezone.
func (s *SlotReservationService) calculateTTL(date time.Time) time.Duration {
	expireAt := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, s.loc).AddDate(0, 0, 1)
	ttl := expireAt.Sub(s.now())

	if ttl <= 0 {
		// Past date - short TTL for cleanup
		return 1 * time.Minute
	}

	return ttl
}
