package clinical

import (
	"strings"
	"time"

	"hivcare-booking/internal/domain/entity"
	"hivcare-booking/internal/domain/schedule"
	"hivcare-booking/pkg/apperror"

	"github.com/google/uuid"
)

// MedicationSlot is the time-of-day label of an ARV medication schedule.
// Combined labels join their sub-slots with "-".
type MedicationSlot string

const (
	SlotMorning            MedicationSlot = "Sáng"
	SlotNoon               MedicationSlot = "Trưa"
	SlotEvening            MedicationSlot = "Tối"
	SlotMorningNoon        MedicationSlot = "Sáng-Trưa"
	SlotMorningEvening     MedicationSlot = "Sáng-Tối"
	SlotNoonEvening        MedicationSlot = "Trưa-Tối"
	SlotMorningNoonEvening MedicationSlot = "Sáng-Trưa-Tối"
)

// MedicationSlots lists every accepted label.
var MedicationSlots = []MedicationSlot{
	SlotMorning,
	SlotNoon,
	SlotEvening,
	SlotMorningNoon,
	SlotMorningEvening,
	SlotNoonEvening,
	SlotMorningNoonEvening,
}

// IsValid reports whether s is one of the accepted labels.
func (s MedicationSlot) IsValid() bool {
	for _, known := range MedicationSlots {
		if s == known {
			return true
		}
	}
	return false
}

// SubSlots splits a label into the slots that each need a clock time.
func (s MedicationSlot) SubSlots() []string {
	if !s.IsValid() {
		return nil
	}
	return strings.Split(string(s), "-")
}

// RegimenFields are the regimen values a clinician may edit on submission.
// A nil field means "keep the template's value".
type RegimenFields struct {
	Dosages           []string
	Frequency         []string
	Contraindications []string
	SideEffects       []string
}

// Submission is a clinical result as entered by a doctor or tester.
type Submission struct {
	BookingID         uuid.UUID
	TargetStatus      entity.BookingStatus
	RegimenID         *uuid.UUID
	Regimen           *RegimenFields
	MedicationTime    MedicationSlot
	MedicationTimes   map[string]string
	ReExaminationDate *time.Time

	Weight        *float64
	Height        *float64
	BloodPressure string
	HeartRate     *int
	Temperature   *float64
	LabValues     map[string]interface{}
	Symptoms      string
	Diagnosis     string
	Notes         string
}

// ValidateSubmission checks the target status and, for ARV follow-up
// services, the medication schedule fields.
func ValidateSubmission(sub *Submission, svc *entity.Service) error {
	switch sub.TargetStatus {
	case "":
		return apperror.MissingStatus("choose completed or re-examination before submitting the result")
	case entity.BookingStatusCompleted, entity.BookingStatusReExamination:
	default:
		return apperror.ValidationField("status", "status must be completed or re-examination")
	}

	if !svc.RequiresArvFollowUp() {
		return nil
	}
	if missing := missingArvFields(sub); len(missing) > 0 {
		return apperror.IncompleteArvSubmission(missing)
	}
	return nil
}

func missingArvFields(sub *Submission) []string {
	var missing []string
	if sub.RegimenID == nil || *sub.RegimenID == uuid.Nil {
		missing = append(missing, "regimen_id")
	}
	if !sub.MedicationTime.IsValid() {
		missing = append(missing, "medication_time")
	} else {
		for _, slot := range sub.MedicationTime.SubSlots() {
			if _, err := schedule.ParseClock(sub.MedicationTimes[slot]); err != nil {
				missing = append(missing, "medication_times."+slot)
			}
		}
	}
	if sub.ReExaminationDate == nil || sub.ReExaminationDate.IsZero() {
		missing = append(missing, "re_examination_date")
	}
	return missing
}

// MedicationSchedule returns the clock time per sub-slot, normalised to HH:MM.
// It expects a submission that passed ValidateSubmission.
func MedicationSchedule(sub *Submission) entity.StringMap {
	slots := sub.MedicationTime.SubSlots()
	if len(slots) == 0 {
		return nil
	}
	out := make(entity.StringMap, len(slots))
	for _, slot := range slots {
		if m, err := schedule.ParseClock(sub.MedicationTimes[slot]); err == nil {
			out[slot] = schedule.FormatClock(m)
		}
	}
	return out
}
