package workflow

import (
	"hivcare-booking/internal/domain/entity"
	"hivcare-booking/pkg/apperror"

	"github.com/google/uuid"
)

// Action is a transition a role may trigger directly from a booking screen.
type Action struct {
	Name string               `json:"name"`
	To   entity.BookingStatus `json:"to"`
}

// Action names.
const (
	ActionCheckIn         = "check_in"
	ActionCompleteConsult = "complete_consultation"
	ActionReadmit         = "readmit"
	ActionCancel          = "cancel"
	ActionSubmitCompleted = "submit_result_completed"
	ActionSubmitReExamine = "submit_result_re_examination"
)

// permit decides whether a role may take an edge for the given service.
type permit func(svc *entity.Service) bool

func always(*entity.Service) bool { return true }

func notOnline(svc *entity.Service) bool { return !svc.IsOnlineConsult() }

func onlineOnly(svc *entity.Service) bool { return svc.IsOnlineConsult() }

func notLabTest(svc *entity.Service) bool { return svc == nil || !svc.IsLabTest }

type edge struct {
	action string
	from   entity.BookingStatus
	to     entity.BookingStatus
	// exists gates the edge on the service; a failing gate means the edge is
	// absent for this booking.
	exists permit
	roles  map[string]permit
	// viaResult edges are only taken by a clinical result submission.
	viaResult bool
	// ownerOnly roles must own the booking.
	ownerOnly map[string]bool
}

var edges = []edge{
	{
		action: ActionCheckIn,
		from:   entity.BookingStatusPending,
		to:     entity.BookingStatusCheckedIn,
		exists: always,
		roles: map[string]permit{
			entity.RoleStaff:  always,
			entity.RoleDoctor: notOnline,
		},
	},
	{
		action: ActionCompleteConsult,
		from:   entity.BookingStatusPending,
		to:     entity.BookingStatusCompleted,
		exists: onlineOnly,
		roles: map[string]permit{
			entity.RoleDoctor: always,
		},
	},
	{
		action: ActionReadmit,
		from:   entity.BookingStatusCheckedOut,
		to:     entity.BookingStatusCheckedIn,
		exists: always,
		roles: map[string]permit{
			entity.RoleStaff: always,
		},
	},
	{
		action:    ActionSubmitCompleted,
		from:      entity.BookingStatusCheckedIn,
		to:        entity.BookingStatusCompleted,
		exists:    always,
		viaResult: true,
		roles: map[string]permit{
			entity.RoleDoctor: always,
			entity.RoleTester: notOnline,
		},
	},
	{
		action:    ActionSubmitReExamine,
		from:      entity.BookingStatusCheckedIn,
		to:        entity.BookingStatusReExamination,
		exists:    notLabTest,
		viaResult: true,
		roles: map[string]permit{
			entity.RoleDoctor: always,
			entity.RoleTester: notOnline,
		},
	},
	{
		action: ActionCancel,
		from:   entity.BookingStatusPending,
		to:     entity.BookingStatusCancelled,
		exists: always,
		roles: map[string]permit{
			entity.RoleUser:   always,
			entity.RoleStaff:  always,
			entity.RoleDoctor: always,
		},
		ownerOnly: map[string]bool{entity.RoleUser: true},
	},
}

func findEdge(from, to entity.BookingStatus, svc *entity.Service) (edge, bool) {
	for _, e := range edges {
		if e.from == from && e.to == to && e.exists(svc) {
			return e, true
		}
	}
	return edge{}, false
}

// TransitionRequest is a status change requested by an actor.
type TransitionRequest struct {
	Booking *entity.Booking
	Service *entity.Service
	To      entity.BookingStatus
	Role    string
	ActorID uuid.UUID
	// ViaResult marks requests made by a clinical result submission.
	ViaResult bool
}

// Authorize checks that the requested transition is legal from the booking's
// current status for the requesting role.
func Authorize(req TransitionRequest) error {
	if req.Booking == nil {
		return apperror.NotFound("booking not found")
	}
	if !req.To.IsValid() {
		return apperror.ValidationField("status", "unknown booking status "+string(req.To))
	}

	from := req.Booking.Status
	e, ok := findEdge(from, req.To, req.Service)
	if !ok {
		return apperror.Conflict("booking %s cannot move from %s to %s", req.Booking.BookingCode, from, req.To)
	}

	allowed, ok := e.roles[req.Role]
	if !ok || !allowed(req.Service) {
		return apperror.Forbidden("role %s may not move a booking from %s to %s", roleLabel(req.Role), from, req.To)
	}
	if e.ownerOnly[req.Role] && !req.Booking.IsOwnedBy(req.ActorID) {
		return apperror.Forbidden("role %s may only move its own booking from %s to %s", roleLabel(req.Role), from, req.To)
	}
	if e.viaResult && !req.ViaResult {
		return apperror.Conflict("booking %s moves from %s to %s only through a result submission", req.Booking.BookingCode, from, req.To)
	}
	return nil
}

// AvailableActions lists the transitions role may trigger on the booking
// from a screen. Result-driven edges are listed for clinical roles so the
// submission form can offer the right target statuses. An empty list means
// the status is read-only for this viewer.
func AvailableActions(booking *entity.Booking, svc *entity.Service, role string, actorID uuid.UUID) []Action {
	actions := []Action{}
	if booking == nil {
		return actions
	}
	for _, e := range edges {
		if e.from != booking.Status || !e.exists(svc) {
			continue
		}
		allowed, ok := e.roles[role]
		if !ok || !allowed(svc) {
			continue
		}
		if e.ownerOnly[role] && !booking.IsOwnedBy(actorID) {
			continue
		}
		actions = append(actions, Action{Name: e.action, To: e.to})
	}
	return actions
}

// ResultTargets lists the statuses a result submission may choose for the
// service.
func ResultTargets(svc *entity.Service) []entity.BookingStatus {
	targets := []entity.BookingStatus{}
	for _, e := range edges {
		if e.viaResult && e.exists(svc) {
			targets = append(targets, e.to)
		}
	}
	return targets
}

// IsTerminal reports whether no direct action leaves status.
func IsTerminal(status entity.BookingStatus) bool {
	for _, e := range edges {
		if e.from == status && !e.viaResult {
			return false
		}
	}
	return true
}

func roleLabel(role string) string {
	if role == "" {
		return "anonymous"
	}
	return role
}
