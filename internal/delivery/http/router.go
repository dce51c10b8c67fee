package http

import (
	"net/http"

	"hivcare-booking/internal/delivery/http/handler"
	"hivcare-booking/internal/delivery/http/middleware"
	"hivcare-booking/internal/domain/entity"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	router                *mux.Router
	authHandler           *handler.AuthHandler
	doctorHandler         *handler.DoctorHandler
	serviceHandler        *handler.ServiceHandler
	availabilityHandler   *handler.AvailabilityHandler
	bookingHandler        *handler.BookingHandler
	resultHandler         *handler.ResultHandler
	regimenHandler        *handler.RegimenHandler
	auditLogHandler       *handler.AuditLogHandler
	authMiddleware        *middleware.AuthMiddleware
	corsMiddleware        *middleware.CORSMiddleware
	idempotencyMiddleware *middleware.IdempotencyMiddleware
	loggingMiddleware     *middleware.LoggingMiddleware
	gatherer              prometheus.Gatherer
	metricsPath           string
}

type Handlers struct {
	Auth         *handler.AuthHandler
	Doctor       *handler.DoctorHandler
	Service      *handler.ServiceHandler
	Availability *handler.AvailabilityHandler
	Booking      *handler.BookingHandler
	Result       *handler.ResultHandler
	Regimen      *handler.RegimenHandler
	AuditLog     *handler.AuditLogHandler
}

type Middlewares struct {
	Auth        *middleware.AuthMiddleware
	CORS        *middleware.CORSMiddleware
	Idempotency *middleware.IdempotencyMiddleware
	Logging     *middleware.LoggingMiddleware
}

// NewRouter wires handlers and middlewares. A nil gatherer disables the
// metrics endpoint.
func NewRouter(h Handlers, m Middlewares, gatherer prometheus.Gatherer, metricsPath string) *Router {
	return &Router{
		router:                mux.NewRouter(),
		authHandler:           h.Auth,
		doctorHandler:         h.Doctor,
		serviceHandler:        h.Service,
		availabilityHandler:   h.Availability,
		bookingHandler:        h.Booking,
		resultHandler:         h.Result,
		regimenHandler:        h.Regimen,
		auditLogHandler:       h.AuditLog,
		authMiddleware:        m.Auth,
		corsMiddleware:        m.CORS,
		idempotencyMiddleware: m.Idempotency,
		loggingMiddleware:     m.Logging,
		gatherer:              gatherer,
		metricsPath:           metricsPath,
	}
}

func (r *Router) Setup() *mux.Router {
	if r.gatherer != nil && r.metricsPath != "" {
		r.router.Handle(r.metricsPath, promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", r.authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Catalog and availability (public)
	api.HandleFunc("/services", r.serviceHandler.ListServices).Methods(http.MethodGet)
	api.HandleFunc("/services/{id}", r.serviceHandler.GetService).Methods(http.MethodGet)
	api.HandleFunc("/categories", r.serviceHandler.ListCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories/{id}/services", r.serviceHandler.ListServicesByCategory).Methods(http.MethodGet)
	api.HandleFunc("/doctors/available", r.availabilityHandler.GetAvailableDoctors).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id}/slots", r.availabilityHandler.GetDoctorSlots).Methods(http.MethodGet)

	idempotent := r.idempotencyMiddleware.Handle

	// Any signed-in user; ownership and role rules live in the usecases
	member := api.NewRoute().Subrouter()
	member.Use(r.authMiddleware.Authenticate)
	member.Handle("/bookings", idempotent(http.HandlerFunc(r.bookingHandler.CreateBooking))).Methods(http.MethodPost)
	member.HandleFunc("/bookings/me", r.bookingHandler.GetMyBookings).Methods(http.MethodGet)
	member.HandleFunc("/bookings/{id}", r.bookingHandler.GetBooking).Methods(http.MethodGet)
	member.Handle("/bookings/{id}/status", idempotent(http.HandlerFunc(r.bookingHandler.UpdateStatus))).Methods(http.MethodPatch)
	member.Handle("/bookings/{id}", idempotent(http.HandlerFunc(r.bookingHandler.CancelBooking))).Methods(http.MethodDelete)
	member.HandleFunc("/results/me", r.resultHandler.GetMyResults).Methods(http.MethodGet)

	// Front desk
	desk := api.NewRoute().Subrouter()
	desk.Use(r.authMiddleware.Authenticate)
	desk.Use(middleware.RequireFrontDesk)
	desk.HandleFunc("/bookings", r.bookingHandler.ListBookings).Methods(http.MethodGet)

	// Doctors and testers
	doctor := api.PathPrefix("/doctor").Subrouter()
	doctor.Use(r.authMiddleware.Authenticate)
	doctor.Use(middleware.RequireRole(entity.RoleIDDoctor))
	doctor.HandleFunc("/bookings", r.bookingHandler.GetDoctorBookings).Methods(http.MethodGet)

	clinician := api.NewRoute().Subrouter()
	clinician.Use(r.authMiddleware.Authenticate)
	clinician.Use(middleware.RequireClinician)
	clinician.Handle("/results", idempotent(http.HandlerFunc(r.resultHandler.SubmitResult))).Methods(http.MethodPost)

	clinic := api.NewRoute().Subrouter()
	clinic.Use(r.authMiddleware.Authenticate)
	clinic.Use(middleware.RequireStaffOrClinician)
	clinic.HandleFunc("/bookings/{id}/result", r.resultHandler.GetResultByBooking).Methods(http.MethodGet)
	clinic.HandleFunc("/bookings/{id}/eligibility", r.resultHandler.CheckEligibility).Methods(http.MethodGet)
	clinic.HandleFunc("/bookings/{id}/meet-link", r.bookingHandler.UpdateMeetLink).Methods(http.MethodPut)
	clinic.HandleFunc("/regimens", r.regimenHandler.ListRegimens).Methods(http.MethodGet)
	clinic.HandleFunc("/regimens/{id}", r.regimenHandler.GetRegimen).Methods(http.MethodGet)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/users", r.authHandler.CreateStaff).Methods(http.MethodPost)
	admin.HandleFunc("/users", r.authHandler.ListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}/results", r.resultHandler.GetUserResults).Methods(http.MethodGet)

	// Doctor management (admin)
	admin.HandleFunc("/doctors", r.doctorHandler.CreateDoctor).Methods(http.MethodPost)
	admin.HandleFunc("/doctors", r.doctorHandler.GetAllDoctors).Methods(http.MethodGet)
	admin.HandleFunc("/doctors/{id}", r.doctorHandler.GetDoctor).Methods(http.MethodGet)
	admin.HandleFunc("/doctors/{id}", r.doctorHandler.UpdateDoctor).Methods(http.MethodPut)
	admin.HandleFunc("/doctors/{id}", r.doctorHandler.DeactivateDoctor).Methods(http.MethodDelete)

	// Catalog management (admin)
	admin.HandleFunc("/services", r.serviceHandler.CreateService).Methods(http.MethodPost)
	admin.HandleFunc("/services/{id}", r.serviceHandler.UpdateService).Methods(http.MethodPut)
	admin.HandleFunc("/categories", r.serviceHandler.CreateCategory).Methods(http.MethodPost)
	admin.HandleFunc("/regimens", r.regimenHandler.CreateRegimen).Methods(http.MethodPost)

	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	r.router.Use(r.loggingMiddleware.Handle)
	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
