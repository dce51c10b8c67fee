package clinical

import (
	"fmt"

	"hivcare-booking/internal/domain/entity"

	"github.com/google/uuid"
)

// PatientPlaceholder names a clone when no patient label can be found.
const PatientPlaceholder = "Patient"

// IsCustomized reports whether the edited fields differ from the template.
func IsCustomized(template *entity.ArvRegimen, edited *RegimenFields) bool {
	if template == nil || edited == nil {
		return false
	}
	return changed(template.Dosages, edited.Dosages) ||
		changed(template.Frequency, edited.Frequency) ||
		changed(template.Contraindications, edited.Contraindications) ||
		changed(template.SideEffects, edited.SideEffects)
}

func changed(base entity.StringList, edited []string) bool {
	if edited == nil {
		return false
	}
	if len(base) != len(edited) {
		return true
	}
	for i := range base {
		if base[i] != edited[i] {
			return true
		}
	}
	return false
}

// CloneRegimen copies template with the edited fields applied. The clone is
// named after the patient and points back at its template; the template
// itself is left untouched.
func CloneRegimen(template *entity.ArvRegimen, edited *RegimenFields, patientLabel string) *entity.ArvRegimen {
	if patientLabel == "" {
		patientLabel = PatientPlaceholder
	}
	baseID := template.ID
	if template.BaseRegimenID != nil {
		baseID = *template.BaseRegimenID
	}

	clone := &entity.ArvRegimen{
		ID:                uuid.New(),
		Name:              fmt.Sprintf("%s - %s", template.Name, patientLabel),
		Description:       template.Description,
		Drugs:             copyList(template.Drugs),
		Dosages:           pick(template.Dosages, edited.Dosages),
		Frequency:         pick(template.Frequency, edited.Frequency),
		Contraindications: pick(template.Contraindications, edited.Contraindications),
		SideEffects:       pick(template.SideEffects, edited.SideEffects),
		TreatmentLine:     template.TreatmentLine,
		BaseRegimenID:     &baseID,
	}
	return clone
}

func pick(base entity.StringList, edited []string) entity.StringList {
	if edited != nil {
		return copyList(edited)
	}
	return copyList(base)
}

func copyList(in []string) entity.StringList {
	if in == nil {
		return nil
	}
	return append(entity.StringList(nil), in...)
}

// PatientLabel picks the suffix used when naming a cloned regimen. Anonymous
// bookings are labelled by booking code so the clone does not carry a name.
func PatientLabel(booking *entity.Booking, accountName string) string {
	switch {
	case booking == nil:
		return PatientPlaceholder
	case booking.IsAnonymous:
		return booking.BookingCode
	case booking.CustomerName != "":
		return booking.CustomerName
	case accountName != "":
		return accountName
	}
	return PatientPlaceholder
}
