package privacy

import (
	"strings"

	"hivcare-booking/internal/domain/entity"

	"github.com/google/uuid"
)

const (
	UnknownName = "Unknown"
	PhoneMask   = "***-***-****"
	EmailMask   = "***@***.***"

	maxStars = 3
)

// MaskName keeps the initial of the first token and, for multi-token names,
// of the last token. Every kept initial is followed by one star per remaining
// rune, at most three.
func MaskName(name string) string {
	tokens := strings.Fields(name)
	if len(tokens) == 0 {
		return UnknownName
	}

	masked := []string{maskToken(tokens[0])}
	if len(tokens) > 1 {
		masked = append(masked, maskToken(tokens[len(tokens)-1]))
	}
	return strings.Join(masked, " ")
}

func maskToken(token string) string {
	runes := []rune(token)
	stars := len(runes) - 1
	if stars > maxStars {
		stars = maxStars
	}
	return string(runes[0]) + strings.Repeat("*", stars)
}

// MaskPhone replaces any phone number with the fixed mask.
func MaskPhone(string) string { return PhoneMask }

// MaskEmail replaces any email address with the fixed mask.
func MaskEmail(string) string { return EmailMask }

// Viewer is the account reading booking data.
type Viewer struct {
	UserID uuid.UUID
	Role   string
	// Reveal is the explicit toggle privileged screens send to unmask.
	Reveal bool
}

// CanReveal reports whether viewer may see the real identity behind an
// anonymous booking: the owner always can, admins and staff only when they
// ask for it.
func CanReveal(booking *entity.Booking, viewer Viewer) bool {
	if booking.IsOwnedBy(viewer.UserID) {
		return true
	}
	if !viewer.Reveal {
		return false
	}
	return viewer.Role == entity.RoleAdmin || viewer.Role == entity.RoleStaff
}

// Contact holds the identifying fields shown for a booking.
type Contact struct {
	Name  string
	Phone string
	Email string
}

// Apply masks contact for anonymous bookings the viewer may not reveal and
// reports whether it did.
func Apply(booking *entity.Booking, contact Contact, viewer Viewer) (Contact, bool) {
	if booking == nil || !booking.IsAnonymous || CanReveal(booking, viewer) {
		return contact, false
	}
	return Contact{
		Name:  MaskName(contact.Name),
		Phone: MaskPhone(contact.Phone),
		Email: MaskEmail(contact.Email),
	}, true
}
