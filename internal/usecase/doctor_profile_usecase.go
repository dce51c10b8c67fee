package usecase

import (
	"context"
	"strings"
	"time"

	"hivcare-booking/internal/converter"
	"hivcare-booking/internal/delivery/dto"
	"hivcare-booking/internal/domain/entity"
	"hivcare-booking/internal/domain/repository"
	"hivcare-booking/internal/domain/schedule"
	"hivcare-booking/internal/service"
	"hivcare-booking/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type DoctorProfileUsecase interface {
	CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error)
	GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error)
	GetAllDoctors(ctx context.Context) (*dto.DoctorListResponse, error)
	UpdateDoctor(ctx context.Context, doctorID uuid.UUID, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error)
	DeactivateDoctor(ctx context.Context, doctorID uuid.UUID) error
}

type doctorProfileUsecase struct {
	tx                repository.Transactor
	log               *logrus.Logger
	userRepo          repository.UserRepository
	doctorProfileRepo repository.DoctorProfileRepository
	auditService      service.AuditService
}

func NewDoctorProfileUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	auditService service.AuditService,
) DoctorProfileUsecase {
	return &doctorProfileUsecase{
		tx:                tx,
		log:               log,
		userRepo:          userRepo,
		doctorProfileRepo: doctorProfileRepo,
		auditService:      auditService,
	}
}

func toWeekdays(days []int) entity.Weekdays {
	out := make(entity.Weekdays, 0, len(days))
	for _, d := range days {
		wd := time.Weekday(d)
		if !out.Contains(wd) {
			out = append(out, wd)
		}
	}
	return out
}

func parseOptionalDate(field, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}
	return parseDate(field, value)
}

// validateWorkingPattern checks the daily hours and the active range.
func validateWorkingPattern(profile *entity.DoctorProfile) error {
	start, err := schedule.ParseClock(profile.StartTime)
	if err != nil {
		return apperror.ValidationField("start_time", err.Error())
	}
	end, err := schedule.ParseClock(profile.EndTime)
	if err != nil {
		return apperror.ValidationField("end_time", err.Error())
	}
	if end <= start {
		return apperror.ValidationField("end_time", "end_time must be after start_time")
	}
	if !profile.ActiveFrom.IsZero() && !profile.ActiveTo.IsZero() && profile.ActiveTo.Before(profile.ActiveFrom) {
		return apperror.ValidationField("active_to", "active_to must not be before active_from")
	}
	return nil
}

func (u *doctorProfileUsecase) CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error) {
	activeFrom, err := parseOptionalDate("active_from", req.ActiveFrom)
	if err != nil {
		return nil, err
	}
	activeTo, err := parseOptionalDate("active_to", req.ActiveTo)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	profile := &entity.DoctorProfile{
		Specialization: req.Specialization,
		Qualification:  req.Qualification,
		Biography:      req.Biography,
		WorkingDays:    toWeekdays(req.WorkingDays),
		ActiveFrom:     activeFrom,
		ActiveTo:       activeTo,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		User: entity.User{
			Email:       strings.ToLower(strings.TrimSpace(req.Email)),
			Password:    string(hashedPassword),
			FullName:    strings.TrimSpace(req.FullName),
			PhoneNumber: req.PhoneNumber,
			RoleID:      entity.RoleIDDoctor,
			IsActive:    true,
		},
	}
	if err := validateWorkingPattern(profile); err != nil {
		return nil, err
	}

	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		existing, err := u.userRepo.FindByEmail(tx, profile.User.Email)
		if err != nil {
			u.log.Warnf("Failed to find user by email: %+v", err)
			return err
		}
		if existing != nil {
			return ErrEmailAlreadyExists
		}

		if err := u.userRepo.Create(tx, &profile.User); err != nil {
			if isDuplicateKeyError(err, "email") {
				return ErrEmailAlreadyExists
			}
			u.log.Warnf("Failed to create doctor account: %+v", err)
			return err
		}

		profile.UserID = profile.User.ID
		if err := u.doctorProfileRepo.Create(tx, profile); err != nil {
			u.log.Warnf("Failed to create doctor profile: %+v", err)
			return err
		}

		return u.auditService.Record(ctx, tx, service.AuditEntry{
			UserID:   actorID(ctx),
			Action:   entity.AuditActionDoctorCreate,
			Entity:   "doctor_profile",
			EntityID: profile.UserID.String(),
			NewValue: converter.DoctorProfileToResponse(profile),
		})
	})
	if err != nil {
		return nil, err
	}

	u.log.Infof("Doctor created: id=%s, name=%s", profile.UserID, profile.User.FullName)
	return converter.DoctorProfileToResponse(profile), nil
}

func (u *doctorProfileUsecase) GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error) {
	profile, err := u.doctorProfileRepo.FindByUserID(u.tx.DB(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, apperror.NotFound("doctor %s not found", doctorID)
	}

	return converter.DoctorProfileToResponse(profile), nil
}

func (u *doctorProfileUsecase) GetAllDoctors(ctx context.Context) (*dto.DoctorListResponse, error) {
	profiles, err := u.doctorProfileRepo.FindAll(u.tx.DB(ctx))
	if err != nil {
		u.log.Warnf("Failed to find all doctor profiles: %+v", err)
		return nil, err
	}

	doctors := converter.DoctorProfilesToResponses(profiles)

	return &dto.DoctorListResponse{
		Doctors: doctors,
		Total:   len(doctors),
	}, nil
}

func (u *doctorProfileUsecase) UpdateDoctor(ctx context.Context, doctorID uuid.UUID, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error) {
	var updated *entity.DoctorProfile

	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		profile, err := u.doctorProfileRepo.FindByUserID(tx, doctorID)
		if err != nil {
			u.log.Warnf("Failed to find doctor profile: %+v", err)
			return err
		}
		if profile == nil {
			return apperror.NotFound("doctor %s not found", doctorID)
		}

		oldValue := converter.DoctorProfileToResponse(profile)

		if req.FullName != "" {
			profile.User.FullName = strings.TrimSpace(req.FullName)
		}
		if req.PhoneNumber != "" {
			profile.User.PhoneNumber = req.PhoneNumber
		}
		if req.IsActive != nil {
			profile.User.IsActive = *req.IsActive
		}
		if req.Specialization != "" {
			profile.Specialization = req.Specialization
		}
		if req.Qualification != "" {
			profile.Qualification = req.Qualification
		}
		if req.Biography != "" {
			profile.Biography = req.Biography
		}
		if len(req.WorkingDays) > 0 {
			profile.WorkingDays = toWeekdays(req.WorkingDays)
		}
		if req.StartTime != "" {
			profile.StartTime = req.StartTime
		}
		if req.EndTime != "" {
			profile.EndTime = req.EndTime
		}
		// An empty string opens that side of the range.
		if req.ActiveFrom != nil {
			if profile.ActiveFrom, err = parseOptionalDate("active_from", *req.ActiveFrom); err != nil {
				return err
			}
		}
		if req.ActiveTo != nil {
			if profile.ActiveTo, err = parseOptionalDate("active_to", *req.ActiveTo); err != nil {
				return err
			}
		}
		if err := validateWorkingPattern(profile); err != nil {
			return err
		}

		if err := u.userRepo.Update(tx, &profile.User); err != nil {
			u.log.Warnf("Failed to update doctor account: %+v", err)
			return err
		}
		if err := u.doctorProfileRepo.Update(tx, profile); err != nil {
			u.log.Warnf("Failed to update doctor profile: %+v", err)
			return err
		}

		updated = profile
		return u.auditService.Record(ctx, tx, service.AuditEntry{
			UserID:   actorID(ctx),
			Action:   entity.AuditActionDoctorUpdate,
			Entity:   "doctor_profile",
			EntityID: doctorID.String(),
			OldValue: oldValue,
			NewValue: converter.DoctorProfileToResponse(profile),
		})
	})
	if err != nil {
		return nil, err
	}

	return converter.DoctorProfileToResponse(updated), nil
}

// DeactivateDoctor disables the doctor's account. Existing bookings are kept;
// the doctor simply stops appearing in availability.
func (u *doctorProfileUsecase) DeactivateDoctor(ctx context.Context, doctorID uuid.UUID) error {
	return u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		user, err := u.userRepo.FindByID(tx, doctorID)
		if err != nil {
			u.log.Warnf("Failed to find doctor account: %+v", err)
			return err
		}
		if user == nil || user.RoleID != entity.RoleIDDoctor {
			return apperror.NotFound("doctor %s not found", doctorID)
		}

		user.IsActive = false
		if err := u.userRepo.Update(tx, user); err != nil {
			u.log.Warnf("Failed to deactivate doctor: %+v", err)
			return err
		}

		return u.auditService.Record(ctx, tx, service.AuditEntry{
			UserID:   actorID(ctx),
			Action:   entity.AuditActionDoctorDeactivate,
			Entity:   "doctor_profile",
			EntityID: doctorID.String(),
		})
	})
}
