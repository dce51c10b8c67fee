package usecase

import (
	"context"
	"testing"
	"time"

	"hivcare-booking/internal/delivery/dto"
	"hivcare-booking/internal/domain/entity"
	"hivcare-booking/internal/domain/privacy"
	"hivcare-booking/internal/service"
	"hivcare-booking/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wednesday = time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)

type bookingFixture struct {
	env     *testEnv
	uc      *bookingUsecase
	doctor  entity.User
	patient entity.User
	staff   entity.User
	svc     entity.Service
	online  entity.Service
}

func newBookingFixture(t *testing.T) *bookingFixture {
	env := newTestEnv(t)
	return &bookingFixture{
		env:     env,
		uc:      env.bookingUsecase(),
		doctor:  env.addDoctor("Dr. Lan"),
		patient: env.addUser("Nguyen Van An", entity.RoleIDUser),
		staff:   env.addUser("Tran Thi Binh", entity.RoleIDStaff),
		svc:     env.addService("Khám HIV", nil),
		online: env.addService(entity.OnlineConsultationServiceName, func(s *entity.Service) {
			s.IsOnlineConsultation = true
		}),
	}
}

func (f *bookingFixture) request(date, start string) *dto.CreateBookingRequest {
	return &dto.CreateBookingRequest{
		DoctorID:      f.doctor.ID,
		ServiceID:     f.svc.ID,
		BookingDate:   date,
		StartTime:     start,
		CustomerName:  "Nguyen Van An",
		CustomerPhone: "0901234567",
	}
}

func TestCreateBookingReservesSlot(t *testing.T) {
	f := newBookingFixture(t)

	resp, err := f.uc.CreateBooking(asUser(f.patient), f.request("2026-10-21", "9:00"))
	require.NoError(t, err)

	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "09:00", resp.StartTime)
	assert.Equal(t, "09:30", resp.EndTime)
	assert.Equal(t, 30, resp.Duration)
	assert.Regexp(t, `^BK-20261021-[0-9A-F]{6}$`, resp.BookingCode)
	require.NotNil(t, resp.UserID)
	assert.Equal(t, f.patient.ID, *resp.UserID)
	assert.Equal(t, "unpaid", resp.PaymentStatus)
	require.NotNil(t, resp.Service)
	assert.Equal(t, f.svc.ID, resp.Service.ID)

	holder, err := f.env.mr.Get(service.SlotKey(f.doctor.ID, wednesday, "09:00"))
	require.NoError(t, err)
	assert.Equal(t, resp.ID.String(), holder)

	assert.Len(t, f.env.store.bookings, 1)
	assert.Equal(t, []string{entity.AuditActionBookingCreate}, f.env.store.auditActions())
	assert.Equal(t, 1.0, f.env.counter(t, "hivcare_booking_created_total", map[string]string{"anonymous": "false"}))
}

func TestCreateBookingByStaffIsWalkIn(t *testing.T) {
	f := newBookingFixture(t)

	resp, err := f.uc.CreateBooking(asUser(f.staff), f.request("2026-10-21", "10:00"))
	require.NoError(t, err)

	assert.Nil(t, resp.UserID)
	stored := f.env.store.bookings[resp.ID]
	assert.Nil(t, stored.UserID)
	assert.Equal(t, "Dr. Lan", stored.DoctorName)
}

func TestCreateBookingUsesRequestedDuration(t *testing.T) {
	f := newBookingFixture(t)
	req := f.request("2026-10-21", "10:30")
	req.Duration = 45

	resp, err := f.uc.CreateBooking(asUser(f.patient), req)
	require.NoError(t, err)
	assert.Equal(t, "11:15", resp.EndTime)
}

func TestCreateBookingRejectsTakenSlot(t *testing.T) {
	f := newBookingFixture(t)
	other := f.env.addUser("Le Van Cuong", entity.RoleIDUser)

	_, err := f.uc.CreateBooking(asUser(f.patient), f.request("2026-10-21", "09:00"))
	require.NoError(t, err)

	_, err = f.uc.CreateBooking(asUser(other), f.request("2026-10-21", "09:00"))
	require.ErrorIs(t, err, apperror.ErrConflict)
	assert.Contains(t, err.Error(), "Dr. Lan already has an appointment from 09:00 to 09:30 on 2026-10-21")
	assert.Len(t, f.env.store.bookings, 1)
	assert.Equal(t, 1.0, f.env.counter(t, "hivcare_booking_rejections_total", map[string]string{"operation": "create_booking", "reason": "conflict"}))
}

func TestCreateBookingRejectsSlotHeldInRedis(t *testing.T) {
	f := newBookingFixture(t)
	require.NoError(t, f.env.mr.Set(service.SlotKey(f.doctor.ID, wednesday, "09:00"), uuid.NewString()))

	_, err := f.uc.CreateBooking(asUser(f.patient), f.request("2026-10-21", "09:00"))
	require.ErrorIs(t, err, apperror.ErrConflict)
	assert.Empty(t, f.env.store.bookings)
}

func TestCreateBookingLosesRaceOnUniqueIndex(t *testing.T) {
	f := newBookingFixture(t)
	// A concurrent insert lands between the availability check and ours.
	f.env.store.before["booking.create"] = func() {
		f.env.addBooking(f.doctor, f.svc, "2026-10-21", "09:00", entity.BookingStatusPending, nil)
	}

	_, err := f.uc.CreateBooking(asUser(f.patient), f.request("2026-10-21", "09:00"))
	require.ErrorIs(t, err, apperror.ErrConflict)
	assert.False(t, f.env.mr.Exists(service.SlotKey(f.doctor.ID, wednesday, "09:00")))
}

func TestCreateBookingRetriesBookingCodeCollision(t *testing.T) {
	f := newBookingFixture(t)
	existing := f.env.addBooking(f.doctor, f.svc, "2026-10-21", "08:00", entity.BookingStatusConfirmed, func(b *entity.Booking) {
		b.BookingCode = "BK-20261021-00AB12"
	})
	codes := []string{existing.BookingCode, "BK-20261021-00CD34"}
	f.uc.newCode = func(time.Time) (string, error) {
		code := codes[0]
		codes = codes[1:]
		return code, nil
	}

	resp, err := f.uc.CreateBooking(asUser(f.patient), f.request("2026-10-21", "09:00"))
	require.NoError(t, err)
	assert.Equal(t, "BK-20261021-00CD34", resp.BookingCode)
	assert.Empty(t, codes)
	assert.Len(t, f.env.store.bookings, 2)
	assert.Equal(t, []string{entity.AuditActionBookingCreate}, f.env.store.auditActions())

	holder, err := f.env.mr.Get(service.SlotKey(f.doctor.ID, wednesday, "09:00"))
	require.NoError(t, err)
	assert.Equal(t, resp.ID.String(), holder)
}

func TestCreateBookingReleasesSlotWhenInsertFails(t *testing.T) {
	f := newBookingFixture(t)
	f.env.store.fail["booking.create"] = true

	_, err := f.uc.CreateBooking(asUser(f.patient), f.request("2026-10-21", "09:00"))
	require.ErrorIs(t, err, errInjected)
	assert.False(t, apperror.IsDomain(err))
	assert.False(t, f.env.mr.Exists(service.SlotKey(f.doctor.ID, wednesday, "09:00")))
	assert.Empty(t, f.env.store.bookings)
	assert.Empty(t, f.env.store.audits)
}

func TestCreateBookingFallsBackWhenRedisIsDown(t *testing.T) {
	f := newBookingFixture(t)
	f.env.mr.Close()

	resp, err := f.uc.CreateBooking(asUser(f.patient), f.request("2026-10-21", "09:00"))
	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)
}

func TestCreateBookingRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *bookingFixture, req *dto.CreateBookingRequest)
		kind    error
		message string
	}{
		{
			name:    "slot already passed today",
			mutate:  func(f *bookingFixture, req *dto.CreateBookingRequest) { req.BookingDate, req.StartTime = "2026-10-19", "08:30" },
			kind:    apperror.ErrConflict,
			message: "has already passed",
		},
		{
			name:    "doctor off on tuesday",
			mutate:  func(f *bookingFixture, req *dto.CreateBookingRequest) { req.BookingDate = "2026-10-20" },
			kind:    apperror.ErrConflict,
			message: "Dr. Lan does not work on 2026-10-20",
		},
		{
			name:    "outside active range",
			mutate:  func(f *bookingFixture, req *dto.CreateBookingRequest) { req.BookingDate = "2026-11-02" },
			kind:    apperror.ErrConflict,
			message: "does not work on 2026-11-02",
		},
		{
			name:    "time off the slot grid",
			mutate:  func(f *bookingFixture, req *dto.CreateBookingRequest) { req.StartTime = "09:15" },
			kind:    apperror.ErrValidation,
			message: "start_time",
		},
		{
			name:    "time after working hours",
			mutate:  func(f *bookingFixture, req *dto.CreateBookingRequest) { req.StartTime = "14:00" },
			kind:    apperror.ErrValidation,
			message: "start_time",
		},
		{
			name:    "malformed date",
			mutate:  func(f *bookingFixture, req *dto.CreateBookingRequest) { req.BookingDate = "21/10/2026" },
			kind:    apperror.ErrValidation,
			message: "booking_date",
		},
		{
			name:    "unknown service",
			mutate:  func(f *bookingFixture, req *dto.CreateBookingRequest) { req.ServiceID = uuid.New() },
			kind:    apperror.ErrNotFound,
			message: "service",
		},
		{
			name:    "unknown doctor",
			mutate:  func(f *bookingFixture, req *dto.CreateBookingRequest) { req.DoctorID = uuid.New() },
			kind:    apperror.ErrNotFound,
			message: "doctor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture(t)
			req := f.request("2026-10-21", "09:00")
			tt.mutate(f, req)

			_, err := f.uc.CreateBooking(asUser(f.patient), req)
			require.ErrorIs(t, err, tt.kind)
			assert.Contains(t, err.Error(), tt.message)
			assert.Empty(t, f.env.store.bookings)
		})
	}
}

func TestCreateBookingRequiresIdentity(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.uc.CreateBooking(context.Background(), f.request("2026-10-21", "09:00"))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestUpdateStatus(t *testing.T) {
	tests := []struct {
		name    string
		online  bool
		from    entity.BookingStatus
		to      string
		role    int
		want    error
		applied entity.BookingStatus
	}{
		{"staff checks in", false, entity.BookingStatusPending, "checked-in", entity.RoleIDStaff, nil, entity.BookingStatusCheckedIn},
		{"doctor checks in clinic visit", false, entity.BookingStatusPending, "checked-in", entity.RoleIDDoctor, nil, entity.BookingStatusCheckedIn},
		{"doctor may not check in online consult", true, entity.BookingStatusPending, "checked-in", entity.RoleIDDoctor, apperror.ErrForbidden, entity.BookingStatusPending},
		{"doctor completes online consult", true, entity.BookingStatusPending, "completed", entity.RoleIDDoctor, nil, entity.BookingStatusCompleted},
		{"staff may not complete online consult", true, entity.BookingStatusPending, "completed", entity.RoleIDStaff, apperror.ErrForbidden, entity.BookingStatusPending},
		{"clinic visit has no pending to completed", false, entity.BookingStatusPending, "completed", entity.RoleIDDoctor, apperror.ErrConflict, entity.BookingStatusPending},
		{"staff readmits checked-out", false, entity.BookingStatusCheckedOut, "checked-in", entity.RoleIDStaff, nil, entity.BookingStatusCheckedIn},
		{"completion only through a result", false, entity.BookingStatusCheckedIn, "completed", entity.RoleIDDoctor, apperror.ErrConflict, entity.BookingStatusCheckedIn},
		{"patient may not check in", false, entity.BookingStatusPending, "checked-in", entity.RoleIDUser, apperror.ErrForbidden, entity.BookingStatusPending},
		{"unknown status", false, entity.BookingStatusPending, "paid", entity.RoleIDStaff, apperror.ErrValidation, entity.BookingStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture(t)
			svc := f.svc
			if tt.online {
				svc = f.online
			}
			actor := f.staff
			switch tt.role {
			case entity.RoleIDDoctor:
				actor = f.doctor
			case entity.RoleIDUser:
				actor = f.patient
			}
			b := f.env.addBooking(f.doctor, svc, "2026-10-21", "09:00", tt.from, func(b *entity.Booking) {
				owner := f.patient.ID
				b.UserID = &owner
			})

			resp, err := f.uc.UpdateStatus(asUser(actor), b.ID, &dto.UpdateBookingStatusRequest{Status: tt.to})
			if tt.want != nil {
				require.ErrorIs(t, err, tt.want)
				assert.Empty(t, f.env.store.audits)
			} else {
				require.NoError(t, err)
				assert.Equal(t, string(tt.applied), resp.Status)
				assert.Equal(t, []string{entity.AuditActionBookingStatus}, f.env.store.auditActions())
			}
			assert.Equal(t, tt.applied, f.env.store.bookings[b.ID].Status)
		})
	}
}

func TestUpdateStatusUnknownBooking(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.uc.UpdateStatus(asUser(f.staff), uuid.New(), &dto.UpdateBookingStatusRequest{Status: "checked-in"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateStatusOtherDoctorsBooking(t *testing.T) {
	f := newBookingFixture(t)
	otherDoctor := f.env.addDoctor("Dr. Minh")
	b := f.env.addBooking(otherDoctor, f.svc, "2026-10-21", "09:00", entity.BookingStatusPending, nil)

	_, err := f.uc.UpdateStatus(asUser(f.doctor), b.ID, &dto.UpdateBookingStatusRequest{Status: "checked-in"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.Equal(t, entity.BookingStatusPending, f.env.store.bookings[b.ID].Status)
}

func TestUpdateStatusDetectsConcurrentChange(t *testing.T) {
	f := newBookingFixture(t)
	b := f.env.addBooking(f.doctor, f.svc, "2026-10-21", "09:00", entity.BookingStatusPending, nil)
	f.env.store.before["booking.update_status"] = func() {
		changed := f.env.store.bookings[b.ID]
		changed.Status = entity.BookingStatusCheckedIn
		f.env.store.bookings[b.ID] = changed
	}

	_, err := f.uc.UpdateStatus(asUser(f.staff), b.ID, &dto.UpdateBookingStatusRequest{Status: "checked-in"})
	require.ErrorIs(t, err, apperror.ErrConflict)
	assert.Contains(t, err.Error(), "no longer pending")
	assert.Empty(t, f.env.store.audits)
}

func TestCancelBookingByOwnerRemovesIt(t *testing.T) {
	f := newBookingFixture(t)
	created, err := f.uc.CreateBooking(asUser(f.patient), f.request("2026-10-21", "09:00"))
	require.NoError(t, err)

	resp, err := f.uc.CancelBooking(asUser(f.patient), created.ID)
	require.NoError(t, err)

	assert.Equal(t, "cancelled", resp.Status)
	assert.True(t, resp.PaymentNeedsReview)
	assert.NotContains(t, f.env.store.bookings, created.ID)
	assert.False(t, f.env.mr.Exists(service.SlotKey(f.doctor.ID, wednesday, "09:00")))
	assert.Equal(t, []string{entity.AuditActionBookingCreate, entity.AuditActionBookingCancel}, f.env.store.auditActions())

	// The slot is free again.
	_, err = f.uc.CreateBooking(asUser(f.patient), f.request("2026-10-21", "09:00"))
	assert.NoError(t, err)
}

func TestCancelBookingByStaffKeepsRecord(t *testing.T) {
	f := newBookingFixture(t)
	created, err := f.uc.CreateBooking(asUser(f.patient), f.request("2026-10-21", "09:00"))
	require.NoError(t, err)

	resp, err := f.uc.UpdateStatus(asUser(f.staff), created.ID, &dto.UpdateBookingStatusRequest{Status: "cancelled"})
	require.NoError(t, err)

	assert.Equal(t, "cancelled", resp.Status)
	require.Contains(t, f.env.store.bookings, created.ID)
	assert.Equal(t, entity.BookingStatusCancelled, f.env.store.bookings[created.ID].Status)
	assert.False(t, f.env.mr.Exists(service.SlotKey(f.doctor.ID, wednesday, "09:00")))
}

func TestCancelBookingRejections(t *testing.T) {
	f := newBookingFixture(t)
	stranger := f.env.addUser("Pham Thi Dung", entity.RoleIDUser)
	otherDoctor := f.env.addDoctor("Dr. Minh")
	owned := func(b *entity.Booking) {
		owner := f.patient.ID
		b.UserID = &owner
	}
	pending := f.env.addBooking(f.doctor, f.svc, "2026-10-21", "09:00", entity.BookingStatusPending, owned)
	checkedIn := f.env.addBooking(f.doctor, f.svc, "2026-10-21", "09:30", entity.BookingStatusCheckedIn, owned)

	_, err := f.uc.CancelBooking(asUser(stranger), pending.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.uc.CancelBooking(asUser(otherDoctor), pending.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.uc.CancelBooking(asUser(f.patient), checkedIn.ID)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = f.uc.CancelBooking(asUser(f.patient), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	assert.Equal(t, entity.BookingStatusPending, f.env.store.bookings[pending.ID].Status)
	assert.Equal(t, entity.BookingStatusCheckedIn, f.env.store.bookings[checkedIn.ID].Status)
}

func TestListBookingsMasksAnonymousPatients(t *testing.T) {
	f := newBookingFixture(t)
	anon := f.env.addBooking(f.doctor, f.svc, "2026-10-21", "09:00", entity.BookingStatusPending, func(b *entity.Booking) {
		owner := f.patient.ID
		b.UserID = &owner
		b.IsAnonymous = true
		b.CustomerPhone = "0901234567"
	})
	f.env.addBooking(f.doctor, f.svc, "2026-10-21", "09:30", entity.BookingStatusCheckedIn, func(b *entity.Booking) {
		b.CustomerName = "Hoang Van Em"
	})

	masked, err := f.uc.ListBookings(asUser(f.staff), dto.BookingQuery{})
	require.NoError(t, err)
	require.Equal(t, 2, masked.Total)
	first := masked.Bookings[0]
	assert.Equal(t, anon.ID, first.ID)
	assert.True(t, first.Masked)
	assert.Equal(t, "N*** A*", first.CustomerName)
	assert.Equal(t, privacy.PhoneMask, first.CustomerPhone)
	assert.Nil(t, first.UserID)
	assert.Equal(t, "Hoang Van Em", masked.Bookings[1].CustomerName)

	revealed, err := f.uc.ListBookings(asUser(f.staff), dto.BookingQuery{Reveal: true})
	require.NoError(t, err)
	assert.Equal(t, "Nguyen Van An", revealed.Bookings[0].CustomerName)
	assert.False(t, revealed.Bookings[0].Masked)

	doctorView, err := f.uc.GetBooking(asUser(f.doctor), anon.ID, true)
	require.NoError(t, err)
	assert.True(t, doctorView.Masked)

	own, err := f.uc.ListMyBookings(asUser(f.patient))
	require.NoError(t, err)
	require.Equal(t, 1, own.Total)
	assert.Equal(t, "Nguyen Van An", own.Bookings[0].CustomerName)
}

func TestListBookingsFilters(t *testing.T) {
	f := newBookingFixture(t)
	f.env.addBooking(f.doctor, f.svc, "2026-10-21", "09:00", entity.BookingStatusPending, nil)
	f.env.addBooking(f.doctor, f.svc, "2026-10-21", "09:30", entity.BookingStatusCheckedIn, nil)
	f.env.addBooking(f.doctor, f.svc, "2026-10-26", "09:00", entity.BookingStatusCompleted, nil)

	byStatus, err := f.uc.ListBookings(asUser(f.staff), dto.BookingQuery{Status: "pending, checked-in"})
	require.NoError(t, err)
	assert.Equal(t, 2, byStatus.Total)

	byDate, err := f.uc.ListBookings(asUser(f.staff), dto.BookingQuery{Date: "2026-10-26"})
	require.NoError(t, err)
	require.Equal(t, 1, byDate.Total)
	assert.Equal(t, "completed", byDate.Bookings[0].Status)

	_, err = f.uc.ListBookings(asUser(f.staff), dto.BookingQuery{Status: "paid"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestListDoctorBookingsByName(t *testing.T) {
	f := newBookingFixture(t)
	otherDoctor := f.env.addDoctor("Dr. Minh")
	f.env.addBooking(f.doctor, f.svc, "2026-10-21", "09:00", entity.BookingStatusPending, nil)
	f.env.addBooking(otherDoctor, f.svc, "2026-10-21", "09:00", entity.BookingStatusPending, nil)

	resp, err := f.uc.ListDoctorBookings(asUser(f.doctor))
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "Dr. Lan", resp.Bookings[0].DoctorName)
	assert.Equal(t, []string{"check_in", "cancel"}, actionNames(resp.Bookings[0]))
}

func TestGetBookingOwnership(t *testing.T) {
	f := newBookingFixture(t)
	stranger := f.env.addUser("Pham Thi Dung", entity.RoleIDUser)
	b := f.env.addBooking(f.doctor, f.svc, "2026-10-21", "09:00", entity.BookingStatusPending, func(b *entity.Booking) {
		owner := f.patient.ID
		b.UserID = &owner
	})

	_, err := f.uc.GetBooking(asUser(stranger), b.ID, false)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	resp, err := f.uc.GetBooking(asUser(f.patient), b.ID, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"cancel"}, actionNames(*resp))
}

func TestUpdateMeetLink(t *testing.T) {
	f := newBookingFixture(t)
	online := f.env.addBooking(f.doctor, f.online, "2026-10-21", "09:00", entity.BookingStatusPending, nil)
	visit := f.env.addBooking(f.doctor, f.svc, "2026-10-21", "09:30", entity.BookingStatusPending, nil)
	req := &dto.UpdateMeetLinkRequest{MeetLink: "https://meet.example.com/abc-defg-hij"}

	resp, err := f.uc.UpdateMeetLink(asUser(f.doctor), online.ID, req)
	require.NoError(t, err)
	assert.Equal(t, req.MeetLink, resp.MeetLink)
	assert.Equal(t, req.MeetLink, f.env.store.bookings[online.ID].MeetLink)
	assert.Equal(t, []string{entity.AuditActionBookingMeetLink}, f.env.store.auditActions())

	_, err = f.uc.UpdateMeetLink(asUser(f.doctor), visit.ID, req)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = f.uc.UpdateMeetLink(asUser(f.doctor), uuid.New(), req)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func actionNames(b dto.BookingResponse) []string {
	names := make([]string, len(b.Actions))
	for i, a := range b.Actions {
		names[i] = a.Name
	}
	return names
}
