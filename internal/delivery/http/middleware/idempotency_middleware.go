package middleware

import (
	"context"
	"net/http"

	"hivcare-booking/pkg/response"

	"github.com/sirupsen/logrus"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	RequestIDHeader      = "X-Request-ID"
)

// RequestDeduplicator is implemented by service.RequestDedupService.
type RequestDeduplicator interface {
	Acquire(ctx context.Context, scope, requestID string) (bool, error)
	Complete(ctx context.Context, scope, requestID string) error
	Release(ctx context.Context, scope, requestID string) error
}

// IdempotencyMiddleware rejects a mutating request whose key the same caller
// already sent. Requests without a key pass through untouched.
type IdempotencyMiddleware struct {
	dedup RequestDeduplicator
	log   *logrus.Logger
}

func NewIdempotencyMiddleware(dedup RequestDeduplicator, log *logrus.Logger) *IdempotencyMiddleware {
	return &IdempotencyMiddleware{dedup: dedup, log: log}
}

func (m *IdempotencyMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			key = r.Header.Get(RequestIDHeader)
		}
		if key == "" || r.Method == http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		scope := "anonymous"
		if userID, ok := GetUserIDFromContext(r.Context()); ok {
			scope = userID.String()
		}

		acquired, err := m.dedup.Acquire(r.Context(), scope, key)
		if err != nil {
			response.ServiceUnavailable(w, "")
			return
		}
		if !acquired {
			response.Conflict(w, "A request with this key was already submitted")
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		// Failed attempts may be retried with the same key.
		ctx := context.WithoutCancel(r.Context())
		if rec.status >= http.StatusBadRequest {
			if err := m.dedup.Release(ctx, scope, key); err != nil {
				m.log.Warnf("Failed to release idempotency key %s: %+v", key, err)
			}
			return
		}
		if err := m.dedup.Complete(ctx, scope, key); err != nil {
			m.log.Warnf("Failed to complete idempotency key %s: %+v", key, err)
		}
	})
}
