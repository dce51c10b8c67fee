package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hivcare-booking/config"
	"hivcare-booking/internal/delivery/dto"
	"hivcare-booking/internal/delivery/http/handler"
	"hivcare-booking/internal/delivery/http/middleware"
	"hivcare-booking/internal/domain/entity"
	"hivcare-booking/internal/usecase"
	"hivcare-booking/pkg/jwt"
	"hivcare-booking/pkg/validator"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBookingUsecase struct {
	usecase.BookingUsecase
}

func (stubBookingUsecase) ListMyBookings(context.Context) (*dto.BookingListResponse, error) {
	return &dto.BookingListResponse{Bookings: []dto.BookingResponse{}}, nil
}

func (stubBookingUsecase) ListBookings(context.Context, dto.BookingQuery) (*dto.BookingListResponse, error) {
	return &dto.BookingListResponse{Bookings: []dto.BookingResponse{}}, nil
}

type routerEnv struct {
	router *mux.Router
	mr     *miniredis.Miniredis
	jwt    *jwt.JWTService
}

func newRouterEnv(t *testing.T) *routerEnv {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	jwtService := jwt.NewJWTService(config.JWTConfig{Secret: "router-secret", AccessExpiry: time.Minute, RefreshExpiry: time.Hour})
	v := validator.NewValidator()

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "router_test_total", Help: "test"}))

	r := NewRouter(Handlers{
		Auth:         handler.NewAuthHandler(nil, v, jwtService),
		Doctor:       handler.NewDoctorHandler(nil, v),
		Service:      handler.NewServiceHandler(nil, v),
		Availability: handler.NewAvailabilityHandler(nil),
		Booking:      handler.NewBookingHandler(stubBookingUsecase{}, v),
		Result:       handler.NewResultHandler(nil, v),
		Regimen:      handler.NewRegimenHandler(nil, v),
		AuditLog:     handler.NewAuditLogHandler(nil),
	}, Middlewares{
		Auth:        middleware.NewAuthMiddleware(jwtService, client, log),
		CORS:        middleware.NewCORSMiddleware(),
		Idempotency: middleware.NewIdempotencyMiddleware(nil, log),
		Logging:     middleware.NewLoggingMiddleware(log),
	}, reg, "/metrics")

	return &routerEnv{router: r.Setup(), mr: mr, jwt: jwtService}
}

func (e *routerEnv) token(t *testing.T, roleID int) string {
	t.Helper()
	userID := uuid.New()
	token, tokenID, err := e.jwt.GenerateAccessToken(jwt.Subject{
		UserID: userID,
		Email:  "someone@clinic.vn",
		RoleID: roleID,
		Role:   entity.RoleNameByID(roleID),
	})
	require.NoError(t, err)
	require.NoError(t, e.mr.Set(fmt.Sprintf("access_token:%s:%s", userID, tokenID), "valid"))
	return token
}

func (e *routerEnv) do(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndMetrics(t *testing.T) {
	env := newRouterEnv(t)

	rec := env.do(http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = env.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "router_test_total")
}

func TestRouteGuards(t *testing.T) {
	env := newRouterEnv(t)
	patient := env.token(t, entity.RoleIDUser)
	staff := env.token(t, entity.RoleIDStaff)

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		code   int
	}{
		{"staff list needs a token", http.MethodGet, "/api/v1/bookings", "", http.StatusUnauthorized},
		{"patient cannot list every booking", http.MethodGet, "/api/v1/bookings", patient, http.StatusForbidden},
		{"staff lists bookings", http.MethodGet, "/api/v1/bookings", staff, http.StatusOK},
		{"patient lists own bookings", http.MethodGet, "/api/v1/bookings/me", patient, http.StatusOK},
		{"doctor bookings need the doctor role", http.MethodGet, "/api/v1/doctor/bookings", staff, http.StatusForbidden},
		{"results need a clinician", http.MethodPost, "/api/v1/results", patient, http.StatusForbidden},
		{"admin area rejects staff", http.MethodGet, "/api/v1/admin/doctors", staff, http.StatusForbidden},
		{"unknown route", http.MethodGet, "/api/v1/nope", staff, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(tc.method, tc.path, tc.token)
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestRevokedTokenIsRejected(t *testing.T) {
	env := newRouterEnv(t)
	token := env.token(t, entity.RoleIDStaff)
	env.mr.FlushAll()

	rec := env.do(http.MethodGet, "/api/v1/bookings", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
