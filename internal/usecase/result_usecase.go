package usecase

import (
	"context"
	"strings"
	"time"

	"hivcare-booking/internal/converter"
	"hivcare-booking/internal/delivery/dto"
	"hivcare-booking/internal/delivery/http/middleware"
	"hivcare-booking/internal/domain/clinical"
	"hivcare-booking/internal/domain/entity"
	"hivcare-booking/internal/domain/repository"
	"hivcare-booking/internal/domain/workflow"
	"hivcare-booking/internal/infrastructure/metrics"
	"hivcare-booking/internal/service"
	"hivcare-booking/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ResultUsecase interface {
	SubmitResult(ctx context.Context, req *dto.SubmitResultRequest) (*dto.ResultResponse, error)
	GetResultByBooking(ctx context.Context, bookingID uuid.UUID) (*dto.ResultResponse, error)
	ListMyResults(ctx context.Context) (*dto.ResultListResponse, error)
	ListResultsByUser(ctx context.Context, userID uuid.UUID) (*dto.ResultListResponse, error)
	CheckEligibility(ctx context.Context, bookingID uuid.UUID) (*dto.RecordEligibilityResponse, error)
}

type resultUsecase struct {
	tx           repository.Transactor
	log          *logrus.Logger
	resultRepo   repository.ClinicalResultRepository
	bookingRepo  repository.BookingRepository
	regimenRepo  repository.ArvRegimenRepository
	userRepo     repository.UserRepository
	auditService service.AuditService
	metrics      *metrics.BookingMetrics
}

func NewResultUsecase(
	tx repository.Transactor,
	log *logrus.Logger,
	resultRepo repository.ClinicalResultRepository,
	bookingRepo repository.BookingRepository,
	regimenRepo repository.ArvRegimenRepository,
	userRepo repository.UserRepository,
	auditService service.AuditService,
	bookingMetrics *metrics.BookingMetrics,
) ResultUsecase {
	return &resultUsecase{
		tx:           tx,
		log:          log,
		resultRepo:   resultRepo,
		bookingRepo:  bookingRepo,
		regimenRepo:  regimenRepo,
		userRepo:     userRepo,
		auditService: auditService,
		metrics:      bookingMetrics,
	}
}

func (u *resultUsecase) reject(err error) error {
	if reason := rejectionReason(err); reason != "" {
		u.metrics.ObserveRejection("submit_result", reason)
	}
	return err
}

func toSubmission(req *dto.SubmitResultRequest) (*clinical.Submission, error) {
	sub := &clinical.Submission{
		BookingID:       req.BookingID,
		TargetStatus:    entity.BookingStatus(strings.TrimSpace(req.Status)),
		RegimenID:       req.RegimenID,
		MedicationTime:  clinical.MedicationSlot(strings.TrimSpace(req.MedicationTime)),
		MedicationTimes: req.MedicationTimes,
		Weight:          req.Weight,
		Height:          req.Height,
		BloodPressure:   req.BloodPressure,
		HeartRate:       req.HeartRate,
		Temperature:     req.Temperature,
		LabValues:       req.LabValues,
		Symptoms:        req.Symptoms,
		Diagnosis:       req.Diagnosis,
		Notes:           req.Notes,
	}
	if req.Regimen != nil {
		sub.Regimen = &clinical.RegimenFields{
			Dosages:           req.Regimen.Dosages,
			Frequency:         req.Regimen.Frequency,
			Contraindications: req.Regimen.Contraindications,
			SideEffects:       req.Regimen.SideEffects,
		}
	}
	if req.ReExaminationDate != "" {
		d, err := parseDate("re_examination_date", req.ReExaminationDate)
		if err != nil {
			return nil, err
		}
		sub.ReExaminationDate = &d
	}
	return sub, nil
}

// SubmitResult records the examination result of a checked-in booking and
// moves the booking to the chosen outcome in the same transaction.
//
// Flow:
// 1. Reject a second result for the booking (status untouched)
// 2. Check the target status and, for ARV follow-ups, the medication schedule
// 3. Check the clinician may take the booking to the target status
// 4. Clone the regimen when the clinician edited the template
// 5. Insert the result and move the booking conditionally on its status
func (u *resultUsecase) SubmitResult(ctx context.Context, req *dto.SubmitResultRequest) (*dto.ResultResponse, error) {
	id, err := currentIdentity(ctx)
	if err != nil {
		return nil, err
	}

	db := u.tx.DB(ctx)
	booking, err := u.bookingRepo.FindByID(db, req.BookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", req.BookingID, err)
		return nil, err
	}
	if booking == nil {
		return nil, u.reject(apperror.NotFound("booking %s not found", req.BookingID))
	}

	exists, err := u.resultRepo.ExistsForBooking(db, booking.ID)
	if err != nil {
		u.log.Warnf("Failed to check result of booking %s: %+v", booking.ID, err)
		return nil, err
	}
	if exists {
		return nil, u.reject(apperror.DuplicateResult("booking %s already has a result", booking.BookingCode))
	}

	sub, err := toSubmission(req)
	if err != nil {
		return nil, u.reject(err)
	}
	svc := converter.BookingService(booking)
	if err := clinical.ValidateSubmission(sub, svc); err != nil {
		return nil, u.reject(err)
	}

	err = workflow.Authorize(workflow.TransitionRequest{
		Booking:   booking,
		Service:   svc,
		To:        sub.TargetStatus,
		Role:      id.Role,
		ActorID:   id.UserID,
		ViaResult: true,
	})
	if err != nil {
		return nil, u.reject(err)
	}
	if !workflow.CanCreateRecord(booking.Status, id.Role, svc) {
		return nil, u.reject(apperror.Forbidden("role %s may not record the result of booking %s", id.Role, booking.BookingCode))
	}

	regimen, clone, err := u.resolveRegimen(ctx, booking, sub)
	if err != nil {
		return nil, u.reject(err)
	}

	result := &entity.ClinicalResult{
		ID:                uuid.New(),
		BookingID:         booking.ID,
		UserID:            booking.UserID,
		CreatedBy:         id.UserID,
		Weight:            sub.Weight,
		Height:            sub.Height,
		BloodPressure:     sub.BloodPressure,
		HeartRate:         sub.HeartRate,
		Temperature:       sub.Temperature,
		LabValues:         entity.JSON(sub.LabValues),
		Symptoms:          sub.Symptoms,
		Diagnosis:         sub.Diagnosis,
		Notes:             sub.Notes,
		ReExaminationDate: sub.ReExaminationDate,
		OutcomeStatus:     sub.TargetStatus,
		CreatedAt:         time.Now(),
	}
	if svc.RequiresArvFollowUp() {
		result.MedicationTime = string(sub.MedicationTime)
		result.MedicationTimes = clinical.MedicationSchedule(sub)
	}
	if regimen != nil {
		result.RegimenID = &regimen.ID
		result.Regimen = regimen
	}

	from := booking.Status
	err = u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		if clone {
			if err := u.regimenRepo.Create(tx, regimen); err != nil {
				u.log.Warnf("Failed to create customised regimen: %+v", err)
				return err
			}
			if err := u.auditService.Record(ctx, tx, service.AuditEntry{
				UserID:   &id.UserID,
				Action:   entity.AuditActionRegimenClone,
				Entity:   "arv_regimen",
				EntityID: regimen.ID.String(),
				NewValue: map[string]interface{}{"name": regimen.Name, "base_regimen_id": regimen.BaseRegimenID},
			}); err != nil {
				return err
			}
		}

		if err := u.resultRepo.Create(tx, result); err != nil {
			if isDuplicateKeyError(err, "booking_id") {
				return apperror.DuplicateResult("booking %s already has a result", booking.BookingCode)
			}
			u.log.Warnf("Failed to create result: %+v", err)
			return err
		}

		rows, err := u.bookingRepo.UpdateStatus(tx, booking.ID, from, sub.TargetStatus)
		if err != nil {
			u.log.Warnf("Failed to update status of booking %s: %+v", booking.ID, err)
			return err
		}
		if rows == 0 {
			return apperror.Conflict("booking %s is no longer %s, reload and try again", booking.BookingCode, from)
		}

		return u.auditService.Record(ctx, tx, service.AuditEntry{
			UserID:   &id.UserID,
			Action:   entity.AuditActionResultCreate,
			Entity:   "clinical_result",
			EntityID: result.ID.String(),
			OldValue: map[string]interface{}{"booking_status": from},
			NewValue: map[string]interface{}{"booking_status": sub.TargetStatus, "booking_id": booking.ID},
		})
	})
	if err != nil {
		return nil, u.reject(err)
	}

	u.metrics.ObserveTransition(string(from), string(sub.TargetStatus), id.Role)
	u.metrics.ObserveResultSubmission(string(sub.TargetStatus), svc.RequiresArvFollowUp(), clone)
	u.log.Infof("Result %s recorded for booking %s, outcome %s", result.ID, booking.ID, sub.TargetStatus)

	return converter.ResultToResponse(result), nil
}

// resolveRegimen loads the chosen regimen and, when the submission edits it,
// builds a patient-specific clone. It reports whether the returned regimen
// is a new clone that still has to be stored.
func (u *resultUsecase) resolveRegimen(ctx context.Context, booking *entity.Booking, sub *clinical.Submission) (*entity.ArvRegimen, bool, error) {
	if sub.RegimenID == nil || *sub.RegimenID == uuid.Nil {
		return nil, false, nil
	}

	db := u.tx.DB(ctx)
	template, err := u.regimenRepo.FindByID(db, *sub.RegimenID)
	if err != nil {
		u.log.Warnf("Failed to find regimen %s: %+v", *sub.RegimenID, err)
		return nil, false, err
	}
	if template == nil {
		return nil, false, apperror.NotFound("regimen %s not found", *sub.RegimenID)
	}
	if !clinical.IsCustomized(template, sub.Regimen) {
		return template, false, nil
	}

	accountName := ""
	if booking.UserID != nil && !booking.IsAnonymous && booking.CustomerName == "" {
		owner, err := u.userRepo.FindByID(db, *booking.UserID)
		if err != nil {
			u.log.Warnf("Failed to find patient %s: %+v", *booking.UserID, err)
			return nil, false, err
		}
		if owner != nil {
			accountName = owner.FullName
		}
	}

	return clinical.CloneRegimen(template, sub.Regimen, clinical.PatientLabel(booking, accountName)), true, nil
}

func (u *resultUsecase) GetResultByBooking(ctx context.Context, bookingID uuid.UUID) (*dto.ResultResponse, error) {
	id, err := currentIdentity(ctx)
	if err != nil {
		return nil, err
	}

	db := u.tx.DB(ctx)
	booking, err := u.bookingRepo.FindByID(db, bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return nil, err
	}
	if booking == nil {
		return nil, apperror.NotFound("booking %s not found", bookingID)
	}
	if !canView(booking, id) {
		return nil, apperror.Forbidden("booking %s belongs to another account", booking.BookingCode)
	}

	result, err := u.resultRepo.FindByBookingID(db, bookingID)
	if err != nil {
		u.log.Warnf("Failed to find result of booking %s: %+v", bookingID, err)
		return nil, err
	}
	if result == nil {
		return nil, apperror.NotFound("booking %s has no result yet", booking.BookingCode)
	}

	return converter.ResultToResponse(result), nil
}

func (u *resultUsecase) ListMyResults(ctx context.Context) (*dto.ResultListResponse, error) {
	id, err := currentIdentity(ctx)
	if err != nil {
		return nil, err
	}
	return u.listByUser(ctx, id.UserID)
}

func (u *resultUsecase) ListResultsByUser(ctx context.Context, userID uuid.UUID) (*dto.ResultListResponse, error) {
	return u.listByUser(ctx, userID)
}

func (u *resultUsecase) listByUser(ctx context.Context, userID uuid.UUID) (*dto.ResultListResponse, error) {
	results, err := u.resultRepo.FindByUserID(u.tx.DB(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find results of user %s: %+v", userID, err)
		return nil, err
	}
	return &dto.ResultListResponse{
		Results: converter.ResultsToResponses(results),
		Total:   len(results),
	}, nil
}

// CheckEligibility tells a clinician whether the record form may be opened
// for the booking and what it must collect.
func (u *resultUsecase) CheckEligibility(ctx context.Context, bookingID uuid.UUID) (*dto.RecordEligibilityResponse, error) {
	id, err := currentIdentity(ctx)
	if err != nil {
		return nil, err
	}

	db := u.tx.DB(ctx)
	booking, err := u.bookingRepo.FindByID(db, bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return nil, err
	}
	if booking == nil {
		return nil, apperror.NotFound("booking %s not found", bookingID)
	}

	hasResult, err := u.resultRepo.ExistsForBooking(db, bookingID)
	if err != nil {
		u.log.Warnf("Failed to check result of booking %s: %+v", bookingID, err)
		return nil, err
	}

	return eligibilityOf(booking, id, hasResult), nil
}

func eligibilityOf(booking *entity.Booking, id middleware.Identity, hasResult bool) *dto.RecordEligibilityResponse {
	svc := converter.BookingService(booking)
	resp := &dto.RecordEligibilityResponse{
		BookingID:      booking.ID,
		CanCreate:      !hasResult && workflow.CanCreateRecord(booking.Status, id.Role, svc),
		HasResult:      hasResult,
		TargetStatuses: []string{},
		RequiresArv:    svc.RequiresArvFollowUp(),
	}
	for _, s := range workflow.ResultTargets(svc) {
		resp.TargetStatuses = append(resp.TargetStatuses, string(s))
	}
	if resp.RequiresArv {
		for _, slot := range clinical.MedicationSlots {
			resp.MedicationSlot = append(resp.MedicationSlot, string(slot))
		}
	}
	return resp
}
