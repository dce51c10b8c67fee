package usecase

import (
	"context"
	"errors"
	"io"
	"sort"
	"testing"
	"time"

	"hivcare-booking/config"
	"hivcare-booking/internal/delivery/http/middleware"
	"hivcare-booking/internal/domain/entity"
	"hivcare-booking/internal/infrastructure/metrics"
	"hivcare-booking/internal/service"
	"hivcare-booking/pkg/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var errInjected = errors.New("injected store failure")

// memStore is an in-memory stand-in for the database shared by the fake
// repositories. Entities are stored by value so a transaction snapshot is a
// plain copy of the maps.
type memStore struct {
	users      map[uuid.UUID]entity.User
	profiles   map[uuid.UUID]entity.DoctorProfile
	services   map[uuid.UUID]entity.Service
	categories map[uuid.UUID]entity.ServiceCategory
	bookings   map[uuid.UUID]entity.Booking
	regimens   map[uuid.UUID]entity.ArvRegimen
	results    map[uuid.UUID]entity.ClinicalResult
	audits     []entity.AuditLog

	// fail makes the named operation return errInjected.
	fail map[string]bool
	// before runs a hook ahead of the named operation.
	before map[string]func()
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[uuid.UUID]entity.User{},
		profiles:   map[uuid.UUID]entity.DoctorProfile{},
		services:   map[uuid.UUID]entity.Service{},
		categories: map[uuid.UUID]entity.ServiceCategory{},
		bookings:   map[uuid.UUID]entity.Booking{},
		regimens:   map[uuid.UUID]entity.ArvRegimen{},
		results:    map[uuid.UUID]entity.ClinicalResult{},
		fail:       map[string]bool{},
		before:     map[string]func(){},
	}
}

func (s *memStore) op(name string) error {
	if hook := s.before[name]; hook != nil {
		delete(s.before, name)
		hook()
	}
	if s.fail[name] {
		return errInjected
	}
	return nil
}

func copyMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (s *memStore) snapshot() *memStore {
	return &memStore{
		users:      copyMap(s.users),
		profiles:   copyMap(s.profiles),
		services:   copyMap(s.services),
		categories: copyMap(s.categories),
		bookings:   copyMap(s.bookings),
		regimens:   copyMap(s.regimens),
		results:    copyMap(s.results),
		audits:     append([]entity.AuditLog(nil), s.audits...),
	}
}

func (s *memStore) restore(snap *memStore) {
	s.users = snap.users
	s.profiles = snap.profiles
	s.services = snap.services
	s.categories = snap.categories
	s.bookings = snap.bookings
	s.regimens = snap.regimens
	s.results = snap.results
	s.audits = snap.audits
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

// fakeTransactor rolls the store back when the transaction function fails.
type fakeTransactor struct {
	store   *memStore
	commits int
}

func (t *fakeTransactor) DB(ctx context.Context) *gorm.DB { return nil }

func (t *fakeTransactor) WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	snap := t.store.snapshot()
	if err := fn(nil); err != nil {
		t.store.restore(snap)
		return err
	}
	t.commits++
	return nil
}

// Bookings

type fakeBookingRepo struct{ s *memStore }

func (r *fakeBookingRepo) withService(b entity.Booking) entity.Booking {
	if svc, ok := r.s.services[b.ServiceID]; ok {
		b.Service = svc
	}
	return b
}

func (r *fakeBookingRepo) Create(db *gorm.DB, b *entity.Booking) error {
	if err := r.s.op("booking.create"); err != nil {
		return err
	}
	for _, other := range r.s.bookings {
		if other.Status != entity.BookingStatusCancelled && other.DoctorID == b.DoctorID &&
			other.DateString() == b.DateString() && other.StartTime == b.StartTime {
			return uniqueViolation("uq_bookings_doctor_slot_active")
		}
		if other.BookingCode == b.BookingCode {
			return uniqueViolation("idx_bookings_booking_code")
		}
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	stored := *b
	stored.Service = entity.Service{}
	r.s.bookings[b.ID] = stored
	return nil
}

func (r *fakeBookingRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Booking, error) {
	if err := r.s.op("booking.find"); err != nil {
		return nil, err
	}
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, nil
	}
	b = r.withService(b)
	return &b, nil
}

func (r *fakeBookingRepo) list(keep func(entity.Booking) bool) []entity.Booking {
	out := []entity.Booking{}
	for _, b := range r.s.bookings {
		if keep(b) {
			out = append(out, r.withService(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DateString() != out[j].DateString() {
			return out[i].DateString() < out[j].DateString()
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

func (r *fakeBookingRepo) FindAll(db *gorm.DB, f entity.BookingFilter) ([]entity.Booking, error) {
	return r.list(func(b entity.Booking) bool {
		if f.UserID != nil && !b.IsOwnedBy(*f.UserID) {
			return false
		}
		if f.DoctorID != nil && b.DoctorID != *f.DoctorID {
			return false
		}
		if f.DoctorName != "" && b.DoctorName != f.DoctorName {
			return false
		}
		if f.Date != "" && b.DateString() != f.Date {
			return false
		}
		if len(f.Statuses) > 0 {
			match := false
			for _, s := range f.Statuses {
				match = match || b.Status == s
			}
			return match
		}
		return true
	}), nil
}

func (r *fakeBookingRepo) FindByUserID(db *gorm.DB, userID uuid.UUID) ([]entity.Booking, error) {
	return r.list(func(b entity.Booking) bool { return b.IsOwnedBy(userID) }), nil
}

func (r *fakeBookingRepo) FindByDoctorName(db *gorm.DB, name string) ([]entity.Booking, error) {
	return r.list(func(b entity.Booking) bool { return b.DoctorName == name }), nil
}

func (r *fakeBookingRepo) FindActiveByDoctorDate(db *gorm.DB, doctorID uuid.UUID, date time.Time) ([]entity.Booking, error) {
	day := date.Format(entity.DateLayout)
	return r.list(func(b entity.Booking) bool {
		return b.DoctorID == doctorID && b.DateString() == day && !b.IsCancelled()
	}), nil
}

func (r *fakeBookingRepo) FindActiveSince(db *gorm.DB, from time.Time) ([]entity.Booking, error) {
	return r.list(func(b entity.Booking) bool {
		return !b.BookingDate.Before(from) && !b.IsCancelled()
	}), nil
}

func (r *fakeBookingRepo) UpdateStatus(db *gorm.DB, id uuid.UUID, from, to entity.BookingStatus) (int64, error) {
	if err := r.s.op("booking.update_status"); err != nil {
		return 0, err
	}
	b, ok := r.s.bookings[id]
	if !ok || b.Status != from {
		return 0, nil
	}
	b.Status = to
	r.s.bookings[id] = b
	return 1, nil
}

func (r *fakeBookingRepo) UpdateFields(db *gorm.DB, id uuid.UUID, fields map[string]interface{}) (int64, error) {
	b, ok := r.s.bookings[id]
	if !ok {
		return 0, nil
	}
	if v, ok := fields["meet_link"].(string); ok {
		b.MeetLink = v
	}
	if v, ok := fields["notes"].(string); ok {
		b.Notes = v
	}
	r.s.bookings[id] = b
	return 1, nil
}

func (r *fakeBookingRepo) DeleteIfStatus(db *gorm.DB, id uuid.UUID, status entity.BookingStatus) (int64, error) {
	b, ok := r.s.bookings[id]
	if !ok || b.Status != status {
		return 0, nil
	}
	delete(r.s.bookings, id)
	return 1, nil
}

// Services

type fakeServiceRepo struct{ s *memStore }

func (r *fakeServiceRepo) withCategory(svc entity.Service) entity.Service {
	if svc.CategoryID != nil {
		if c, ok := r.s.categories[*svc.CategoryID]; ok {
			svc.Category = &c
		}
	}
	return svc
}

func (r *fakeServiceRepo) Create(db *gorm.DB, svc *entity.Service) error {
	if svc.ID == uuid.Nil {
		svc.ID = uuid.New()
	}
	stored := *svc
	stored.Category = nil
	r.s.services[svc.ID] = stored
	return nil
}

func (r *fakeServiceRepo) Update(db *gorm.DB, svc *entity.Service) error {
	stored := *svc
	stored.Category = nil
	r.s.services[svc.ID] = stored
	return nil
}

func (r *fakeServiceRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Service, error) {
	svc, ok := r.s.services[id]
	if !ok {
		return nil, nil
	}
	svc = r.withCategory(svc)
	return &svc, nil
}

func (r *fakeServiceRepo) FindAll(db *gorm.DB, activeOnly bool) ([]entity.Service, error) {
	out := []entity.Service{}
	for _, svc := range r.s.services {
		if !activeOnly || svc.IsActive {
			out = append(out, r.withCategory(svc))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeServiceRepo) FindByCategory(db *gorm.DB, categoryID uuid.UUID) ([]entity.Service, error) {
	out := []entity.Service{}
	for _, svc := range r.s.services {
		if svc.CategoryID != nil && *svc.CategoryID == categoryID && svc.IsActive {
			out = append(out, r.withCategory(svc))
		}
	}
	return out, nil
}

type fakeCategoryRepo struct{ s *memStore }

func (r *fakeCategoryRepo) Create(db *gorm.DB, c *entity.ServiceCategory) error {
	for _, other := range r.s.categories {
		if other.Name == c.Name {
			return uniqueViolation("idx_service_categories_name")
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.s.categories[c.ID] = *c
	return nil
}

func (r *fakeCategoryRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.ServiceCategory, error) {
	c, ok := r.s.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *fakeCategoryRepo) FindAll(db *gorm.DB) ([]entity.ServiceCategory, error) {
	out := []entity.ServiceCategory{}
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	return out, nil
}

// Users and doctors

type fakeUserRepo struct{ s *memStore }

func (r *fakeUserRepo) Create(db *gorm.DB, u *entity.User) error {
	for _, other := range r.s.users {
		if other.Email == u.Email {
			return uniqueViolation("idx_users_email")
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = time.Now()
	stored := *u
	stored.DoctorProfile = nil
	r.s.users[u.ID] = stored
	return nil
}

func (r *fakeUserRepo) FindByEmail(db *gorm.DB, email string) (*entity.User, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	if p, ok := r.s.profiles[id]; ok {
		u.DoctorProfile = &p
	}
	return &u, nil
}

func (r *fakeUserRepo) FindAll(db *gorm.DB, roleID int) ([]entity.User, error) {
	out := []entity.User{}
	for _, u := range r.s.users {
		if roleID == 0 || u.RoleID == roleID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (r *fakeUserRepo) Update(db *gorm.DB, u *entity.User) error {
	stored := *u
	stored.DoctorProfile = nil
	r.s.users[u.ID] = stored
	return nil
}

type fakeDoctorProfileRepo struct{ s *memStore }

func (r *fakeDoctorProfileRepo) Create(db *gorm.DB, p *entity.DoctorProfile) error {
	stored := *p
	stored.User = entity.User{}
	r.s.profiles[p.UserID] = stored
	return nil
}

func (r *fakeDoctorProfileRepo) FindByUserID(db *gorm.DB, id uuid.UUID) (*entity.DoctorProfile, error) {
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, nil
	}
	p.User = r.s.users[id]
	return &p, nil
}

func (r *fakeDoctorProfileRepo) FindAll(db *gorm.DB) ([]entity.DoctorProfile, error) {
	out := []entity.DoctorProfile{}
	for id, p := range r.s.profiles {
		u := r.s.users[id]
		if !u.IsActive {
			continue
		}
		p.User = u
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].User.FullName < out[j].User.FullName })
	return out, nil
}

func (r *fakeDoctorProfileRepo) Update(db *gorm.DB, p *entity.DoctorProfile) error {
	stored := *p
	stored.User = entity.User{}
	r.s.profiles[p.UserID] = stored
	return nil
}

type fakeRoleRepo struct{}

func (fakeRoleRepo) FindByName(ctx context.Context, db *gorm.DB, name string) (*entity.Role, error) {
	id := entity.RoleIDByName(name)
	if id == 0 {
		return nil, nil
	}
	return &entity.Role{ID: id, RoleName: name}, nil
}

func (fakeRoleRepo) FindAll(ctx context.Context, db *gorm.DB) ([]entity.Role, error) {
	return nil, nil
}

// Regimens and results

type fakeRegimenRepo struct{ s *memStore }

func (r *fakeRegimenRepo) Create(db *gorm.DB, reg *entity.ArvRegimen) error {
	if err := r.s.op("regimen.create"); err != nil {
		return err
	}
	if reg.ID == uuid.Nil {
		reg.ID = uuid.New()
	}
	r.s.regimens[reg.ID] = *reg
	return nil
}

func (r *fakeRegimenRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.ArvRegimen, error) {
	reg, ok := r.s.regimens[id]
	if !ok {
		return nil, nil
	}
	return &reg, nil
}

func (r *fakeRegimenRepo) FindAll(db *gorm.DB, templatesOnly bool) ([]entity.ArvRegimen, error) {
	out := []entity.ArvRegimen{}
	for _, reg := range r.s.regimens {
		if !templatesOnly || reg.IsTemplate() {
			out = append(out, reg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeResultRepo struct{ s *memStore }

func (r *fakeResultRepo) Create(db *gorm.DB, res *entity.ClinicalResult) error {
	if err := r.s.op("result.create"); err != nil {
		return err
	}
	for _, other := range r.s.results {
		if other.BookingID == res.BookingID {
			return uniqueViolation("uq_clinical_results_booking_id")
		}
	}
	stored := *res
	stored.Regimen = nil
	stored.Booking = nil
	r.s.results[res.ID] = stored
	return nil
}

func (r *fakeResultRepo) withRegimen(res entity.ClinicalResult) entity.ClinicalResult {
	if res.RegimenID != nil {
		if reg, ok := r.s.regimens[*res.RegimenID]; ok {
			res.Regimen = &reg
		}
	}
	return res
}

func (r *fakeResultRepo) FindByBookingID(db *gorm.DB, bookingID uuid.UUID) (*entity.ClinicalResult, error) {
	for _, res := range r.s.results {
		if res.BookingID == bookingID {
			res = r.withRegimen(res)
			return &res, nil
		}
	}
	return nil, nil
}

func (r *fakeResultRepo) FindByUserID(db *gorm.DB, userID uuid.UUID) ([]entity.ClinicalResult, error) {
	out := []entity.ClinicalResult{}
	for _, res := range r.s.results {
		if res.UserID != nil && *res.UserID == userID {
			out = append(out, r.withRegimen(res))
		}
	}
	return out, nil
}

func (r *fakeResultRepo) ExistsForBooking(db *gorm.DB, bookingID uuid.UUID) (bool, error) {
	for _, res := range r.s.results {
		if res.BookingID == bookingID {
			return true, nil
		}
	}
	return false, nil
}

// Audit trail

type fakeAuditRepo struct{ s *memStore }

func (r *fakeAuditRepo) Create(db *gorm.DB, log *entity.AuditLog) error {
	log.ID = int64(len(r.s.audits) + 1)
	log.CreatedAt = time.Now()
	r.s.audits = append(r.s.audits, *log)
	return nil
}

func (r *fakeAuditRepo) FindAll(db *gorm.DB, f entity.AuditLogFilter) ([]entity.AuditLog, int64, error) {
	matched := []entity.AuditLog{}
	for _, l := range r.s.audits {
		if f.Action != "" && l.Action != f.Action {
			continue
		}
		if f.UserID != nil && (l.UserID == nil || *l.UserID != *f.UserID) {
			continue
		}
		matched = append(matched, l)
	}
	total := int64(len(matched))
	if f.Offset >= len(matched) {
		return []entity.AuditLog{}, total, nil
	}
	matched = matched[f.Offset:]
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}

func (r *fakeAuditRepo) FindByID(db *gorm.DB, id int64) (*entity.AuditLog, error) {
	for _, l := range r.s.audits {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, nil
}

func (s *memStore) auditActions() []string {
	out := make([]string, len(s.audits))
	for i, l := range s.audits {
		out[i] = l.Action
	}
	return out
}

// Test environment

var hcm = time.FixedZone("ICT", 7*3600)

// testNow is Monday 2026-10-19 09:10 in the clinic timezone.
var testNow = time.Date(2026, 10, 19, 9, 10, 0, 0, hcm)

type testEnv struct {
	store    *memStore
	tx       *fakeTransactor
	mr       *miniredis.Miniredis
	redis    *redis.Client
	log      *logrus.Logger
	registry *prometheus.Registry

	bookingRepo *fakeBookingRepo
	serviceRepo *fakeServiceRepo
	userRepo    *fakeUserRepo
	profileRepo *fakeDoctorProfileRepo
	regimenRepo *fakeRegimenRepo
	resultRepo  *fakeResultRepo
	auditRepo   *fakeAuditRepo

	slots   *service.SlotReservationService
	audit   service.AuditService
	metrics *metrics.BookingMetrics
	jwt     *jwt.JWTService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	store := newMemStore()
	env := &testEnv{
		store:       store,
		tx:          &fakeTransactor{store: store},
		mr:          mr,
		redis:       client,
		log:         log,
		registry:    prometheus.NewRegistry(),
		bookingRepo: &fakeBookingRepo{s: store},
		serviceRepo: &fakeServiceRepo{s: store},
		userRepo:    &fakeUserRepo{s: store},
		profileRepo: &fakeDoctorProfileRepo{s: store},
		regimenRepo: &fakeRegimenRepo{s: store},
		resultRepo:  &fakeResultRepo{s: store},
		auditRepo:   &fakeAuditRepo{s: store},
		jwt: jwt.NewJWTService(config.JWTConfig{
			Secret:        "test-secret",
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: time.Hour,
		}),
	}
	env.slots = service.NewSlotReservationService(nil, client, env.bookingRepo, log, hcm)
	env.audit = service.NewAuditService(log, env.auditRepo)
	env.metrics = metrics.NewBookingMetrics(env.registry)
	return env
}

func (e *testEnv) bookingUsecase() *bookingUsecase {
	uc := NewBookingUsecase(e.tx, e.log, e.bookingRepo, e.serviceRepo, e.profileRepo, e.userRepo,
		e.slots, e.audit, e.metrics, 30, hcm).(*bookingUsecase)
	uc.now = func() time.Time { return testNow }
	return uc
}

func (e *testEnv) resultUsecase() ResultUsecase {
	return NewResultUsecase(e.tx, e.log, e.resultRepo, e.bookingRepo, e.regimenRepo, e.userRepo, e.audit, e.metrics)
}

func (e *testEnv) counter(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := e.registry.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	next:
		for _, m := range f.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue next
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

// Fixtures

func (e *testEnv) addUser(name string, roleID int) entity.User {
	u := entity.User{
		ID:       uuid.New(),
		RoleID:   roleID,
		Email:    uuid.NewString() + "@clinic.vn",
		FullName: name,
		IsActive: true,
	}
	e.store.users[u.ID] = u
	return u
}

// addDoctor registers a doctor working Monday and Wednesday 08:00-11:00
// during October 2026.
func (e *testEnv) addDoctor(name string) entity.User {
	u := e.addUser(name, entity.RoleIDDoctor)
	e.store.profiles[u.ID] = entity.DoctorProfile{
		UserID:         u.ID,
		Specialization: "HIV",
		WorkingDays:    entity.Weekdays{time.Monday, time.Wednesday},
		ActiveFrom:     time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		ActiveTo:       time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC),
		StartTime:      "08:00",
		EndTime:        "11:00",
	}
	return u
}

func (e *testEnv) addService(name string, mutate func(*entity.Service)) entity.Service {
	svc := entity.Service{
		ID:       uuid.New(),
		Name:     name,
		Price:    decimal.NewFromInt(200000),
		Duration: 30,
		IsActive: true,
	}
	if mutate != nil {
		mutate(&svc)
	}
	e.store.services[svc.ID] = svc
	return svc
}

func (e *testEnv) addBooking(doctor entity.User, svc entity.Service, date, start string, status entity.BookingStatus, mutate func(*entity.Booking)) entity.Booking {
	day, _ := time.Parse(entity.DateLayout, date)
	code, _ := generateBookingCode(day)
	b := entity.Booking{
		ID:           uuid.New(),
		BookingCode:  code,
		BookingDate:  day,
		StartTime:    start,
		Duration:     30,
		DoctorID:     doctor.ID,
		DoctorName:   doctor.FullName,
		CustomerName: "Nguyen Van An",
		ServiceID:    svc.ID,
		Status:       status,
	}
	if mutate != nil {
		mutate(&b)
	}
	e.store.bookings[b.ID] = b
	return b
}

func asUser(u entity.User) context.Context {
	return middleware.ContextWithIdentity(context.Background(), middleware.Identity{
		UserID: u.ID,
		Email:  u.Email,
		RoleID: u.RoleID,
		Role:   entity.RoleNameByID(u.RoleID),
	})
}
