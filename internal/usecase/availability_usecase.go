package usecase

import (
	"context"
	"time"

	"hivcare-booking/internal/converter"
	"hivcare-booking/internal/delivery/dto"
	"hivcare-booking/internal/domain/repository"
	"hivcare-booking/internal/domain/schedule"
	"hivcare-booking/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type AvailabilityUsecase interface {
	GetAvailableDoctors(ctx context.Context, date string) (*dto.AvailableDoctorsResponse, error)
	GetDoctorSlots(ctx context.Context, doctorID uuid.UUID, date string) (*dto.SlotListResponse, error)
}

type availabilityUsecase struct {
	tx                repository.Transactor
	log               *logrus.Logger
	doctorProfileRepo repository.DoctorProfileRepository
	bookingRepo       repository.BookingRepository
	interval          int
	loc               *time.Location
	now               func() time.Time
}

func NewAvailabilityUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	doctorProfileRepo repository.DoctorProfileRepository,
	bookingRepo repository.BookingRepository,
	interval int,
	loc *time.Location,
) AvailabilityUsecase {
	if loc == nil {
		loc = time.UTC
	}
	if interval <= 0 {
		interval = schedule.DefaultInterval
	}
	return &availabilityUsecase{
		tx:                tx,
		log:               log,
		doctorProfileRepo: doctorProfileRepo,
		bookingRepo:       bookingRepo,
		interval:          interval,
		loc:               loc,
		now:               time.Now,
	}
}

// GetAvailableDoctors lists the active doctors working on date.
func (u *availabilityUsecase) GetAvailableDoctors(ctx context.Context, date string) (*dto.AvailableDoctorsResponse, error) {
	day, err := parseDate("date", date)
	if err != nil {
		return nil, err
	}

	profiles, err := u.doctorProfileRepo.FindAll(u.tx.DB(ctx))
	if err != nil {
		u.log.Warnf("Failed to find doctor profiles: %+v", err)
		return nil, err
	}

	doctors := converter.DoctorProfilesToResponses(schedule.FilterEligibleDoctors(profiles, day))
	return &dto.AvailableDoctorsResponse{
		Date:    day.Format("2006-01-02"),
		Doctors: doctors,
		Total:   len(doctors),
	}, nil
}

// GetDoctorSlots classifies the doctor's slots on date. A doctor who does not
// work that day has no slots.
func (u *availabilityUsecase) GetDoctorSlots(ctx context.Context, doctorID uuid.UUID, date string) (*dto.SlotListResponse, error) {
	day, err := parseDate("date", date)
	if err != nil {
		return nil, err
	}

	db := u.tx.DB(ctx)
	profile, err := u.doctorProfileRepo.FindByUserID(db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return nil, err
	}
	if profile == nil || !profile.User.IsActive {
		return nil, apperror.NotFound("doctor %s not found", doctorID)
	}

	resp := &dto.SlotListResponse{
		DoctorID:   doctorID,
		DoctorName: profile.User.FullName,
		Date:       day.Format("2006-01-02"),
		Interval:   u.interval,
		Slots:      []schedule.Slot{},
	}
	if !schedule.IsDoctorEligible(profile, day) {
		return resp, nil
	}

	slots, err := schedule.DoctorSlots(profile, u.interval)
	if err != nil {
		u.log.Warnf("Doctor %s has an invalid working pattern: %+v", doctorID, err)
		return nil, err
	}

	bookings, err := u.bookingRepo.FindActiveByDoctorDate(db, doctorID, day)
	if err != nil {
		u.log.Warnf("Failed to find bookings of doctor %s: %+v", doctorID, err)
		return nil, err
	}

	resp.Slots = schedule.ClassifySlots(day, slots, schedule.BookedTimes(bookings), u.now(), u.loc)
	return resp, nil
}
