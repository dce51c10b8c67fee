package privacy

import (
	"testing"

	"hivcare-booking/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMaskName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Nguyen Van An", "N*** A*"},
		{"Al", "A*"},
		{"", UnknownName},
		{"   ", UnknownName},
		{"A", "A"},
		{"Trần Thị Ánh", "T*** Á**"},
		{"N*** A*", "N*** A*"},
		{"  Lan   Pham ", "L** P***"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskName(tt.in))
		})
	}
}

func TestMaskContactFields(t *testing.T) {
	assert.Equal(t, "***-***-****", MaskPhone("0901234567"))
	assert.Equal(t, "***-***-****", MaskPhone(""))
	assert.Equal(t, "***@***.***", MaskEmail("an@example.com"))
}

func TestApply(t *testing.T) {
	owner := uuid.New()
	booking := &entity.Booking{IsAnonymous: true, UserID: &owner}
	contact := Contact{Name: "Nguyen Van An", Phone: "0901234567", Email: "an@example.com"}
	masked := Contact{Name: "N*** A*", Phone: PhoneMask, Email: EmailMask}

	tests := []struct {
		name       string
		viewer     Viewer
		wantMasked bool
	}{
		{"staff default", Viewer{UserID: uuid.New(), Role: entity.RoleStaff}, true},
		{"staff reveal", Viewer{UserID: uuid.New(), Role: entity.RoleStaff, Reveal: true}, false},
		{"admin reveal", Viewer{UserID: uuid.New(), Role: entity.RoleAdmin, Reveal: true}, false},
		{"doctor reveal ignored", Viewer{UserID: uuid.New(), Role: entity.RoleDoctor, Reveal: true}, true},
		{"owner", Viewer{UserID: owner, Role: entity.RoleUser}, false},
		{"other patient", Viewer{UserID: uuid.New(), Role: entity.RoleUser, Reveal: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, didMask := Apply(booking, contact, tt.viewer)
			assert.Equal(t, tt.wantMasked, didMask)
			if tt.wantMasked {
				assert.Equal(t, masked, got)
			} else {
				assert.Equal(t, contact, got)
			}
		})
	}
}

func TestApplyLeavesNamedBookingsAlone(t *testing.T) {
	contact := Contact{Name: "Nguyen Van An", Phone: "0901234567"}
	got, didMask := Apply(&entity.Booking{}, contact, Viewer{Role: entity.RoleStaff})
	assert.False(t, didMask)
	assert.Equal(t, contact, got)
}
