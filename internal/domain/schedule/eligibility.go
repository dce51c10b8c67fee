package schedule

import (
	"time"

	"hivcare-booking/internal/domain/entity"
)

// IsDoctorEligible reports whether the doctor works on date: the weekday must
// be one of their working days and the date must fall inside the active
// range, bounds inclusive. A zero bound leaves that side open.
func IsDoctorEligible(profile *entity.DoctorProfile, date time.Time) bool {
	if profile == nil {
		return false
	}
	if !profile.WorkingDays.Contains(date.Weekday()) {
		return false
	}

	day := CivilDate(date)
	if !profile.ActiveFrom.IsZero() && day.Before(CivilDate(profile.ActiveFrom)) {
		return false
	}
	if !profile.ActiveTo.IsZero() && day.After(CivilDate(profile.ActiveTo)) {
		return false
	}
	return true
}

// FilterEligibleDoctors keeps the doctors that can be selected on date.
func FilterEligibleDoctors(profiles []entity.DoctorProfile, date time.Time) []entity.DoctorProfile {
	eligible := make([]entity.DoctorProfile, 0, len(profiles))
	for i := range profiles {
		if IsDoctorEligible(&profiles[i], date) {
			eligible = append(eligible, profiles[i])
		}
	}
	return eligible
}

// DoctorSlots generates the day's candidate start times for a doctor.
func DoctorSlots(profile *entity.DoctorProfile, interval int) ([]string, error) {
	return GenerateSlots(profile.StartTime, profile.EndTime, interval)
}
