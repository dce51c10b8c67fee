package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"hivcare-booking/internal/converter"
	"hivcare-booking/internal/delivery/dto"
	"hivcare-booking/internal/delivery/http/middleware"
	"hivcare-booking/internal/domain/entity"
	"hivcare-booking/internal/domain/repository"
	"hivcare-booking/internal/domain/schedule"
	"hivcare-booking/internal/domain/workflow"
	"hivcare-booking/internal/infrastructure/metrics"
	"hivcare-booking/internal/service"
	"hivcare-booking/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type BookingUsecase interface {
	CreateBooking(ctx context.Context, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)
	GetBooking(ctx context.Context, id uuid.UUID, reveal bool) (*dto.BookingResponse, error)
	ListBookings(ctx context.Context, q dto.BookingQuery) (*dto.BookingListResponse, error)
	ListMyBookings(ctx context.Context) (*dto.BookingListResponse, error)
	ListDoctorBookings(ctx context.Context) (*dto.BookingListResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req *dto.UpdateBookingStatusRequest) (*dto.BookingResponse, error)
	CancelBooking(ctx context.Context, id uuid.UUID) (*dto.BookingResponse, error)
	UpdateMeetLink(ctx context.Context, id uuid.UUID, req *dto.UpdateMeetLinkRequest) (*dto.BookingResponse, error)
}

type bookingUsecase struct {
	tx                repository.Transactor
	log               *logrus.Logger
	bookingRepo       repository.BookingRepository
	serviceRepo       repository.ServiceRepository
	doctorProfileRepo repository.DoctorProfileRepository
	userRepo          repository.UserRepository
	slotService       *service.SlotReservationService
	auditService      service.AuditService
	metrics           *metrics.BookingMetrics
	interval          int
	loc               *time.Location
	now               func() time.Time
	newCode           func(date time.Time) (string, error)
}

func NewBookingUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	bookingRepo repository.BookingRepository,
	serviceRepo repository.ServiceRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	userRepo repository.UserRepository,
	slotService *service.SlotReservationService,
	auditService service.AuditService,
	bookingMetrics *metrics.BookingMetrics,
	interval int,
	loc *time.Location,
) BookingUsecase {
	if loc == nil {
		loc = time.UTC
	}
	return &bookingUsecase{
		tx:                tx,
		log:               log,
		bookingRepo:       bookingRepo,
		serviceRepo:       serviceRepo,
		doctorProfileRepo: doctorProfileRepo,
		userRepo:          userRepo,
		slotService:       slotService,
		auditService:      auditService,
		metrics:           bookingMetrics,
		interval:          interval,
		loc:               loc,
		now:               time.Now,
		newCode:           generateBookingCode,
	}
}

func (u *bookingUsecase) reject(operation string, err error) error {
	if reason := rejectionReason(err); reason != "" {
		u.metrics.ObserveRejection(operation, reason)
	}
	return err
}

// CreateBooking books a doctor slot.
//
// Flow:
// 1. Resolve service and doctor, check the doctor works that day
// 2. Check the start time is one of the doctor's slots, not booked, not past
// 3. Reserve the slot in Redis (fast rejection of concurrent requests)
// 4. Insert the booking; the partial unique index is the final guard
// 5. On a booking code collision -> retry once with a fresh code
// 6. If the insert fails -> release the Redis reservation
func (u *bookingUsecase) CreateBooking(ctx context.Context, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	id, err := currentIdentity(ctx)
	if err != nil {
		return nil, err
	}

	booking, err := u.prepareBooking(ctx, id, req)
	if err != nil {
		return nil, u.reject("create_booking", err)
	}

	reserved := true
	if err := u.slotService.Reserve(ctx, booking.DoctorID, booking.BookingDate, booking.StartTime, booking.ID); err != nil {
		if errors.Is(err, service.ErrSlotTaken) {
			return nil, u.reject("create_booking", slotTaken(booking))
		}
		// Redis is an accelerator; the unique index still guards the slot.
		u.log.Warnf("Slot reservation unavailable, relying on database constraint: %+v", err)
		reserved = false
	}

	err = u.insertBooking(ctx, id, booking)
	if isDuplicateKeyError(err, "booking_code") {
		u.log.Warnf("Booking code %s already taken, retrying with a new code", booking.BookingCode)
		if booking.BookingCode, err = u.newCode(booking.BookingDate); err == nil {
			err = u.insertBooking(ctx, id, booking)
		}
	}
	if err != nil {
		if reserved {
			u.releaseSlot(booking)
		}
		return nil, u.reject("create_booking", err)
	}

	u.metrics.ObserveBookingCreated(booking.IsAnonymous)
	u.log.Infof("Booking created: id=%s, doctor=%s, slot=%s %s, code=%s", booking.ID, booking.DoctorID, booking.DateString(), booking.StartTime, booking.BookingCode)

	return converter.BookingToResponse(booking, viewerOf(id, false)), nil
}

func (u *bookingUsecase) insertBooking(ctx context.Context, id middleware.Identity, booking *entity.Booking) error {
	return u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if err := u.bookingRepo.Create(tx, booking); err != nil {
			if isDuplicateKeyError(err, "slot") {
				return slotTaken(booking)
			}
			u.log.Warnf("Failed to insert booking: %+v", err)
			return err
		}

		return u.auditService.Record(ctx, tx, service.AuditEntry{
			UserID:   &id.UserID,
			Action:   entity.AuditActionBookingCreate,
			Entity:   "booking",
			EntityID: booking.ID.String(),
			NewValue: map[string]interface{}{
				"booking_code": booking.BookingCode,
				"doctor_id":    booking.DoctorID,
				"date":         booking.DateString(),
				"start_time":   booking.StartTime,
				"anonymous":    booking.IsAnonymous,
			},
		})
	})
}

func slotTaken(b *entity.Booking) error {
	return apperror.Conflict("%s already has an appointment from %s to %s on %s", b.DoctorName, b.StartTime, b.EndTime, b.DateString())
}

func (u *bookingUsecase) prepareBooking(ctx context.Context, id middleware.Identity, req *dto.CreateBookingRequest) (*entity.Booking, error) {
	day, err := parseDate("booking_date", req.BookingDate)
	if err != nil {
		return nil, err
	}
	startMin, err := schedule.ParseClock(req.StartTime)
	if err != nil {
		return nil, apperror.ValidationField("start_time", err.Error())
	}
	start := schedule.FormatClock(startMin)

	db := u.tx.DB(ctx)
	svc, err := u.serviceRepo.FindByID(db, req.ServiceID)
	if err != nil {
		u.log.Warnf("Failed to find service %s: %+v", req.ServiceID, err)
		return nil, err
	}
	if svc == nil || !svc.IsActive {
		return nil, apperror.NotFound("service %s not found", req.ServiceID)
	}

	profile, err := u.doctorProfileRepo.FindByUserID(db, req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", req.DoctorID, err)
		return nil, err
	}
	if profile == nil || !profile.User.IsActive {
		return nil, apperror.NotFound("doctor %s not found", req.DoctorID)
	}
	doctorName := profile.User.FullName
	if !schedule.IsDoctorEligible(profile, day) {
		return nil, apperror.Conflict("%s does not work on %s", doctorName, day.Format(entity.DateLayout))
	}

	slots, err := schedule.DoctorSlots(profile, u.interval)
	if err != nil {
		return nil, err
	}
	if !schedule.Contains(slots, start) {
		return nil, apperror.ValidationField("start_time", fmt.Sprintf("%s is not a bookable time for %s", start, doctorName))
	}

	duration := req.Duration
	if duration <= 0 {
		duration = svc.EffectiveDuration()
	}

	active, err := u.bookingRepo.FindActiveByDoctorDate(db, req.DoctorID, day)
	if err != nil {
		u.log.Warnf("Failed to find bookings of doctor %s: %+v", req.DoctorID, err)
		return nil, err
	}
	sel := schedule.Selection{DoctorName: doctorName, Date: day, StartTime: start, Duration: duration}
	if err := schedule.EnsureSelectable(sel, schedule.BookedTimes(active), u.now(), u.loc); err != nil {
		return nil, err
	}

	code, err := u.newCode(day)
	if err != nil {
		return nil, err
	}
	end, _ := schedule.AddMinutes(start, duration)
	booking := &entity.Booking{
		ID:            uuid.New(),
		BookingCode:   code,
		BookingDate:   day,
		StartTime:     start,
		Duration:      duration,
		EndTime:       end,
		DoctorID:      req.DoctorID,
		DoctorName:    doctorName,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		ServiceID:     svc.ID,
		Status:        entity.BookingStatusPending,
		IsAnonymous:   req.IsAnonymous,
		Notes:         req.Notes,
		Service:       *svc,
	}
	// Patients book for themselves; staff bookings are walk-ins without an account.
	if id.Role == entity.RoleUser {
		owner := id.UserID
		booking.UserID = &owner
	}
	return booking, nil
}

func (u *bookingUsecase) releaseSlot(b *entity.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := u.slotService.Release(ctx, b.DoctorID, b.BookingDate, b.StartTime, b.ID); err != nil {
		// Startup sync clears and rebuilds reservations from the database.
		u.log.Warnf("Failed to release slot of booking %s (non-fatal): %+v", b.ID, err)
	}
}

// canView restricts patients to their own bookings and doctors to their own
// appointments. Front desk and testers see every booking.
func canView(b *entity.Booking, id middleware.Identity) bool {
	switch id.Role {
	case entity.RoleUser:
		return b.IsOwnedBy(id.UserID)
	case entity.RoleDoctor:
		return b.DoctorID == id.UserID
	}
	return true
}

func (u *bookingUsecase) GetBooking(ctx context.Context, bookingID uuid.UUID, reveal bool) (*dto.BookingResponse, error) {
	id, err := currentIdentity(ctx)
	if err != nil {
		return nil, err
	}

	booking, err := u.bookingRepo.FindByID(u.tx.DB(ctx), bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return nil, err
	}
	if booking == nil {
		return nil, apperror.NotFound("booking %s not found", bookingID)
	}
	if !canView(booking, id) {
		return nil, apperror.Forbidden("booking %s belongs to another account", booking.BookingCode)
	}

	return converter.BookingToResponse(booking, viewerOf(id, reveal)), nil
}

// ListBookings lists every booking matching q, for the front desk.
func (u *bookingUsecase) ListBookings(ctx context.Context, q dto.BookingQuery) (*dto.BookingListResponse, error) {
	id, err := currentIdentity(ctx)
	if err != nil {
		return nil, err
	}

	filter := entity.BookingFilter{DoctorName: strings.TrimSpace(q.DoctorName)}
	if q.Date != "" {
		day, err := parseDate("date", q.Date)
		if err != nil {
			return nil, err
		}
		filter.Date = day.Format(entity.DateLayout)
	}
	if q.Status != "" {
		for _, s := range strings.Split(q.Status, ",") {
			status := entity.BookingStatus(strings.TrimSpace(s))
			if !status.IsValid() {
				return nil, apperror.ValidationField("status", "unknown booking status "+string(status))
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	bookings, err := u.bookingRepo.FindAll(u.tx.DB(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to find bookings: %+v", err)
		return nil, err
	}

	return &dto.BookingListResponse{
		Bookings: converter.BookingsToResponses(bookings, viewerOf(id, q.Reveal)),
		Total:    len(bookings),
	}, nil
}

// ListMyBookings returns all bookings for the logged-in patient
func (u *bookingUsecase) ListMyBookings(ctx context.Context) (*dto.BookingListResponse, error) {
	id, err := currentIdentity(ctx)
	if err != nil {
		return nil, err
	}

	bookings, err := u.bookingRepo.FindByUserID(u.tx.DB(ctx), id.UserID)
	if err != nil {
		u.log.Warnf("Failed to find bookings for user %s: %+v", id.UserID, err)
		return nil, err
	}

	return &dto.BookingListResponse{
		Bookings: converter.BookingsToResponses(bookings, viewerOf(id, false)),
		Total:    len(bookings),
	}, nil
}

// ListDoctorBookings returns the appointments booked under the logged-in doctor's name.
func (u *bookingUsecase) ListDoctorBookings(ctx context.Context) (*dto.BookingListResponse, error) {
	id, err := currentIdentity(ctx)
	if err != nil {
		return nil, err
	}

	db := u.tx.DB(ctx)
	doctor, err := u.userRepo.FindByID(db, id.UserID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", id.UserID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, apperror.NotFound("doctor %s not found", id.UserID)
	}

	bookings, err := u.bookingRepo.FindByDoctorName(db, doctor.FullName)
	if err != nil {
		u.log.Warnf("Failed to find bookings for doctor %s: %+v", doctor.FullName, err)
		return nil, err
	}

	return &dto.BookingListResponse{
		Bookings: converter.BookingsToResponses(bookings, viewerOf(id, false)),
		Total:    len(bookings),
	}, nil
}

// UpdateStatus applies a status change through the status machine. The
// update is conditional on the status read here, so a concurrent change
// makes it fail with a conflict instead of overwriting.
func (u *bookingUsecase) UpdateStatus(ctx context.Context, bookingID uuid.UUID, req *dto.UpdateBookingStatusRequest) (*dto.BookingResponse, error) {
	id, err := currentIdentity(ctx)
	if err != nil {
		return nil, err
	}

	to := entity.BookingStatus(strings.TrimSpace(req.Status))
	if to == entity.BookingStatusCancelled {
		return u.CancelBooking(ctx, bookingID)
	}

	booking, err := u.bookingRepo.FindByID(u.tx.DB(ctx), bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return nil, err
	}
	if booking != nil && !canView(booking, id) {
		return nil, u.reject("update_status", apperror.Forbidden("booking %s belongs to another account", booking.BookingCode))
	}

	err = workflow.Authorize(workflow.TransitionRequest{
		Booking: booking,
		Service: converter.BookingService(booking),
		To:      to,
		Role:    id.Role,
		ActorID: id.UserID,
	})
	if err != nil {
		return nil, u.reject("update_status", err)
	}

	if err := u.applyTransition(ctx, id, booking, to, entity.AuditActionBookingStatus); err != nil {
		return nil, u.reject("update_status", err)
	}

	return converter.BookingToResponse(booking, viewerOf(id, false)), nil
}

func (u *bookingUsecase) applyTransition(ctx context.Context, id middleware.Identity, booking *entity.Booking, to entity.BookingStatus, action string) error {
	from := booking.Status
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		rows, err := u.bookingRepo.UpdateStatus(tx, booking.ID, from, to)
		if err != nil {
			u.log.Warnf("Failed to update status of booking %s: %+v", booking.ID, err)
			return err
		}
		if rows == 0 {
			return apperror.Conflict("booking %s is no longer %s, reload and try again", booking.BookingCode, from)
		}

		return u.auditService.Record(ctx, tx, service.AuditEntry{
			UserID:   &id.UserID,
			Action:   action,
			Entity:   "booking",
			EntityID: booking.ID.String(),
			OldValue: map[string]interface{}{"status": from},
			NewValue: map[string]interface{}{"status": to},
		})
	})
	if err != nil {
		return err
	}

	booking.Status = to
	u.metrics.ObserveTransition(string(from), string(to), id.Role)
	u.log.Infof("Booking %s moved from %s to %s by %s", booking.ID, from, to, id.Role)
	return nil
}

// CancelBooking cancels a pending booking. A patient cancelling their own
// booking removes it; staff and doctors mark it cancelled so the record
// stays. Either way the slot becomes bookable again.
func (u *bookingUsecase) CancelBooking(ctx context.Context, bookingID uuid.UUID) (*dto.BookingResponse, error) {
	id, err := currentIdentity(ctx)
	if err != nil {
		return nil, err
	}

	booking, err := u.bookingRepo.FindByID(u.tx.DB(ctx), bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return nil, err
	}
	if booking != nil && id.Role == entity.RoleDoctor && booking.DoctorID != id.UserID {
		return nil, u.reject("cancel_booking", apperror.Forbidden("booking %s belongs to another doctor", booking.BookingCode))
	}

	err = workflow.Authorize(workflow.TransitionRequest{
		Booking: booking,
		Service: converter.BookingService(booking),
		To:      entity.BookingStatusCancelled,
		Role:    id.Role,
		ActorID: id.UserID,
	})
	if err != nil {
		return nil, u.reject("cancel_booking", err)
	}

	if id.Role == entity.RoleUser {
		err = u.deleteOwnBooking(ctx, id, booking)
	} else {
		err = u.applyTransition(ctx, id, booking, entity.BookingStatusCancelled, entity.AuditActionBookingCancel)
	}
	if err != nil {
		return nil, u.reject("cancel_booking", err)
	}

	u.releaseSlot(booking)
	booking.Status = entity.BookingStatusCancelled
	return converter.BookingToResponse(booking, viewerOf(id, false)), nil
}

func (u *bookingUsecase) deleteOwnBooking(ctx context.Context, id middleware.Identity, booking *entity.Booking) error {
	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		rows, err := u.bookingRepo.DeleteIfStatus(tx, booking.ID, entity.BookingStatusPending)
		if err != nil {
			u.log.Warnf("Failed to delete booking %s: %+v", booking.ID, err)
			return err
		}
		if rows == 0 {
			return apperror.Conflict("booking %s is no longer pending and cannot be cancelled", booking.BookingCode)
		}

		return u.auditService.Record(ctx, tx, service.AuditEntry{
			UserID:   &id.UserID,
			Action:   entity.AuditActionBookingCancel,
			Entity:   "booking",
			EntityID: booking.ID.String(),
			OldValue: map[string]interface{}{"status": booking.Status, "booking_code": booking.BookingCode},
		})
	})
	if err != nil {
		return err
	}

	u.metrics.ObserveTransition(string(booking.Status), string(entity.BookingStatusCancelled), id.Role)
	u.log.Infof("Booking %s cancelled and removed by its owner", booking.ID)
	return nil
}

// UpdateMeetLink sets the video link of an online consultation.
func (u *bookingUsecase) UpdateMeetLink(ctx context.Context, bookingID uuid.UUID, req *dto.UpdateMeetLinkRequest) (*dto.BookingResponse, error) {
	id, err := currentIdentity(ctx)
	if err != nil {
		return nil, err
	}

	var booking *entity.Booking
	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		booking, err = u.bookingRepo.FindByID(tx, bookingID)
		if err != nil {
			u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
			return err
		}
		if booking == nil {
			return apperror.NotFound("booking %s not found", bookingID)
		}
		if !canView(booking, id) {
			return apperror.Forbidden("booking %s belongs to another doctor", booking.BookingCode)
		}
		if !converter.BookingService(booking).IsOnlineConsult() {
			return apperror.Conflict("booking %s is not an online consultation", booking.BookingCode)
		}
		if booking.IsCancelled() {
			return apperror.Conflict("booking %s is cancelled", booking.BookingCode)
		}

		old := booking.MeetLink
		rows, err := u.bookingRepo.UpdateFields(tx, bookingID, map[string]interface{}{"meet_link": req.MeetLink})
		if err != nil {
			u.log.Warnf("Failed to update meet link of booking %s: %+v", bookingID, err)
			return err
		}
		if rows == 0 {
			return apperror.NotFound("booking %s not found", bookingID)
		}
		booking.MeetLink = req.MeetLink

		return u.auditService.Record(ctx, tx, service.AuditEntry{
			UserID:   &id.UserID,
			Action:   entity.AuditActionBookingMeetLink,
			Entity:   "booking",
			EntityID: bookingID.String(),
			OldValue: map[string]interface{}{"meet_link": old},
			NewValue: map[string]interface{}{"meet_link": req.MeetLink},
		})
	})
	if err != nil {
		return nil, u.reject("update_meet_link", err)
	}

	return converter.BookingToResponse(booking, viewerOf(id, false)), nil
}

// generateBookingCode generates a unique booking code: BK-YYYYMMDD-XXXXXX
func generateBookingCode(date time.Time) (string, error) {
	dateStr := date.Format("20060102")
	randomBytes := make([]byte, 3)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("generate booking code: %w", err)
	}
	randomStr := fmt.Sprintf("%06X", randomBytes)
	return fmt.Sprintf("BK-%s-%s", dateStr, randomStr), nil
}
