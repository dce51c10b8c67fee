package usecase

import (
	"context"
	"testing"

	"hivcare-booking/internal/delivery/dto"
	"hivcare-booking/internal/domain/entity"
	"hivcare-booking/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDoctorUsecase(env *testEnv) DoctorProfileUsecase {
	return NewDoctorProfileUsecase(env.tx, env.log, env.userRepo, env.profileRepo, env.audit)
}

func doctorRequest() *dto.CreateDoctorRequest {
	return &dto.CreateDoctorRequest{
		Email:          "Lan.Pham@Clinic.vn",
		Password:       "secret123",
		FullName:       "Dr. Lan",
		Specialization: "Infectious diseases",
		WorkingDays:    []int{1, 3, 3},
		ActiveFrom:     "2026-10-01",
		ActiveTo:       "2026-12-31",
		StartTime:      "08:00",
		EndTime:        "11:30",
	}
}

func TestCreateDoctor(t *testing.T) {
	env := newTestEnv(t)
	uc := newDoctorUsecase(env)

	doctor, err := uc.CreateDoctor(context.Background(), doctorRequest())
	require.NoError(t, err)

	assert.Equal(t, "lan.pham@clinic.vn", doctor.Email)
	assert.Equal(t, []int{1, 3}, doctor.WorkingDays)
	assert.Equal(t, "2026-10-01", doctor.ActiveFrom)
	assert.Equal(t, "2026-12-31", doctor.ActiveTo)
	assert.Equal(t, entity.RoleIDDoctor, env.store.users[doctor.ID].RoleID)
	assert.Contains(t, env.store.profiles, doctor.ID)
	assert.Equal(t, []string{entity.AuditActionDoctorCreate}, env.store.auditActions())

	_, err = uc.CreateDoctor(context.Background(), doctorRequest())
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestCreateDoctorValidatesWorkingPattern(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(req *dto.CreateDoctorRequest)
		field  string
	}{
		{"end before start", func(req *dto.CreateDoctorRequest) { req.EndTime = "07:00" }, "end_time"},
		{"range reversed", func(req *dto.CreateDoctorRequest) { req.ActiveTo = "2026-09-01" }, "active_to"},
		{"bad date", func(req *dto.CreateDoctorRequest) { req.ActiveFrom = "October" }, "active_from"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			req := doctorRequest()
			tt.mutate(req)

			_, err := newDoctorUsecase(env).CreateDoctor(context.Background(), req)
			require.ErrorIs(t, err, apperror.ErrValidation)
			assert.Contains(t, apperror.Fields(err), tt.field)
			assert.Empty(t, env.store.users)
		})
	}
}

func TestUpdateDoctorOpensActiveRange(t *testing.T) {
	env := newTestEnv(t)
	uc := newDoctorUsecase(env)
	doctor := env.addDoctor("Dr. Lan")

	open := ""
	resp, err := uc.UpdateDoctor(context.Background(), doctor.ID, &dto.UpdateDoctorRequest{
		WorkingDays: []int{2, 4},
		ActiveTo:    &open,
		EndTime:     "12:00",
	})
	require.NoError(t, err)

	assert.Equal(t, []int{2, 4}, resp.WorkingDays)
	assert.Empty(t, resp.ActiveTo)
	assert.Equal(t, "2026-10-01", resp.ActiveFrom)
	assert.True(t, env.store.profiles[doctor.ID].ActiveTo.IsZero())

	_, err = uc.UpdateDoctor(context.Background(), doctor.ID, &dto.UpdateDoctorRequest{StartTime: "13:00"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "08:00", env.store.profiles[doctor.ID].StartTime)

	_, err = uc.UpdateDoctor(context.Background(), uuid.New(), &dto.UpdateDoctorRequest{})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeactivateDoctorHidesFromListing(t *testing.T) {
	env := newTestEnv(t)
	uc := newDoctorUsecase(env)
	lan := env.addDoctor("Dr. Lan")
	env.addDoctor("Dr. Minh")
	patient := env.addUser("Nguyen Van An", entity.RoleIDUser)

	require.NoError(t, uc.DeactivateDoctor(context.Background(), lan.ID))
	assert.False(t, env.store.users[lan.ID].IsActive)

	list, err := uc.GetAllDoctors(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Dr. Minh", list.Doctors[0].FullName)

	assert.ErrorIs(t, uc.DeactivateDoctor(context.Background(), patient.ID), apperror.ErrNotFound)

	got, err := uc.GetDoctor(context.Background(), lan.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}
