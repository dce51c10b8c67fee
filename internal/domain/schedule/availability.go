package schedule

import (
	"time"

	"hivcare-booking/internal/domain/entity"
	"hivcare-booking/pkg/apperror"
)

type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotBooked    SlotStatus = "booked"
	SlotPast      SlotStatus = "past"
)

// Slot is one classified start time on a doctor's day.
type Slot struct {
	Time     string     `json:"time"`
	Status   SlotStatus `json:"status"`
	Disabled bool       `json:"disabled"`
}

// BookedTimes collects the start times held by non-cancelled bookings.
func BookedTimes(bookings []entity.Booking) map[string]struct{} {
	booked := make(map[string]struct{}, len(bookings))
	for _, b := range bookings {
		if b.IsCancelled() {
			continue
		}
		if m, err := ParseClock(b.StartTime); err == nil {
			booked[FormatClock(m)] = struct{}{}
		}
	}
	return booked
}

// ClassifySlots marks every slot of date as booked, past or available.
// Booked takes precedence over past; both are disabled.
func ClassifySlots(date time.Time, slots []string, booked map[string]struct{}, now time.Time, loc *time.Location) []Slot {
	out := make([]Slot, 0, len(slots))
	for _, clock := range slots {
		out = append(out, classify(date, clock, booked, now, loc))
	}
	return out
}

func classify(date time.Time, clock string, booked map[string]struct{}, now time.Time, loc *time.Location) Slot {
	if _, ok := booked[clock]; ok {
		return Slot{Time: clock, Status: SlotBooked, Disabled: true}
	}
	at, err := At(date, clock, loc)
	if err != nil || at.Before(now) {
		return Slot{Time: clock, Status: SlotPast, Disabled: true}
	}
	return Slot{Time: clock, Status: SlotAvailable}
}

// Selection is a requested slot for a new booking.
type Selection struct {
	DoctorName string
	Date       time.Time
	StartTime  string
	Duration   int // minutes
}

// EnsureSelectable rejects a booked or elapsed slot with a Conflict naming
// the doctor and the requested time range.
func EnsureSelectable(sel Selection, booked map[string]struct{}, now time.Time, loc *time.Location) error {
	startMin, err := ParseClock(sel.StartTime)
	if err != nil {
		return apperror.ValidationField("start_time", err.Error())
	}
	duration := sel.Duration
	if duration <= 0 {
		duration = entity.DefaultBookingDuration
	}
	start := FormatClock(startMin)
	end := FormatClock(startMin + duration)
	day := sel.Date.Format(entity.DateLayout)

	switch classify(sel.Date, start, booked, now, loc).Status {
	case SlotBooked:
		return apperror.Conflict("%s already has an appointment from %s to %s on %s", sel.DoctorName, start, end, day)
	case SlotPast:
		return apperror.Conflict("the time %s-%s on %s with %s has already passed", start, end, day, sel.DoctorName)
	}
	return nil
}
