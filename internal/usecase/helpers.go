package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"hivcare-booking/internal/delivery/http/middleware"
	"hivcare-booking/internal/domain/entity"
	"hivcare-booking/internal/domain/privacy"
	"hivcare-booking/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrUnauthenticated = errors.New("user not found in context")

func currentIdentity(ctx context.Context) (middleware.Identity, error) {
	id, ok := middleware.GetIdentityFromContext(ctx)
	if !ok {
		return middleware.Identity{}, ErrUnauthenticated
	}
	return id, nil
}

// actorID returns the caller id for audit entries, nil for system actions.
func actorID(ctx context.Context) *uuid.UUID {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil
	}
	return &userID
}

func viewerOf(id middleware.Identity, reveal bool) privacy.Viewer {
	return privacy.Viewer{UserID: id.UserID, Role: id.Role, Reveal: reveal}
}

// parseDate parses an ISO calendar date into UTC midnight.
func parseDate(field, value string) (time.Time, error) {
	d, err := time.Parse(entity.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, apperror.ValidationField(field, "invalid date, use YYYY-MM-DD")
	}
	return d, nil
}

// isDuplicateKeyError checks if the error is a PostgreSQL unique constraint violation
// containing the specified constraint name
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}

// isForeignKeyError checks if the error is a PostgreSQL foreign key violation
// containing the specified constraint name
func isForeignKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23503 = foreign_key_violation
		if pgErr.Code == "23503" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	return false
}

// rejectionReason labels a domain rejection for metrics, "" for other failures.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperror.ErrForbidden):
		return "forbidden"
	case errors.Is(err, apperror.ErrConflict):
		return "conflict"
	case errors.Is(err, apperror.ErrDuplicateResult):
		return "duplicate_result"
	case errors.Is(err, apperror.ErrMissingStatus):
		return "missing_status"
	case errors.Is(err, apperror.ErrIncompleteArvSubmission):
		return "incomplete_arv"
	case errors.Is(err, apperror.ErrValidation):
		return "validation"
	}
	return ""
}
