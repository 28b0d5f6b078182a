package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/apperr"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/cache"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/dto"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/model"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/progression"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/repository"
)

// ProgressionService exposes the star/tier state and the audited admin
// override. The override is deliberately a separate operation from
// automatic promotion so the two can never be confused.
type ProgressionService interface {
	GetProgression(studentID, productID uuid.UUID) (*dto.ProgressionDTO, error)
	Override(ctx context.Context, studentID uuid.UUID, req dto.ProgressionOverrideDTO) (*dto.ProgressionDTO, error)
}

type progressionService struct {
	productRepo     repository.ProductRepository
	progressionRepo repository.ProgressionRepository
	invalidator     cache.Invalidator
}

func NewProgressionService(
	productRepo repository.ProductRepository,
	progressionRepo repository.ProgressionRepository,
	invalidator cache.Invalidator,
) ProgressionService {
	return &progressionService{
		productRepo:     productRepo,
		progressionRepo: progressionRepo,
		invalidator:     invalidator,
	}
}

func (s *progressionService) GetProgression(studentID, productID uuid.UUID) (*dto.ProgressionDTO, error) {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		return nil, orNotFound(err, fmt.Sprintf("product %s not found", productID))
	}

	current, err := s.progressionRepo.FindOrInit(studentID, productID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "error loading progression", err)
	}
	return progressionDTO(current), nil
}

func (s *progressionService) Override(ctx context.Context, studentID uuid.UUID, req dto.ProgressionOverrideDTO) (*dto.ProgressionDTO, error) {
	if _, err := s.productRepo.FindByID(req.ProductID); err != nil {
		return nil, orNotFound(err, fmt.Sprintf("product %s not found", req.ProductID))
	}

	next, err := progression.ApplyOverride(
		progression.StarLevel(req.StarLevel),
		progression.Tier(req.Tier),
		req.Reason,
	)
	if err != nil {
		return nil, err
	}

	current, err := s.progressionRepo.FindOrInit(studentID, req.ProductID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "error loading progression", err)
	}

	current.StarLevel = string(next.StarLevel)
	tierStr := string(*next.Tier)
	current.Tier = &tierStr
	if err := s.progressionRepo.Upsert(current); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "error persisting progression override", err)
	}

	event := model.ProgressionEvent{
		StudentID: studentID,
		ProductID: req.ProductID,
		EventType: model.ProgressionEventOverride,
		StarLevel: current.StarLevel,
		Tier:      current.Tier,
		Reason:    req.Reason,
		ActorID:   req.ActorID,
	}
	if err := s.progressionRepo.CreateEvent(&event); err != nil {
		// The override must never be silent: without the audit row the
		// whole operation fails.
		return nil, apperr.Wrap(apperr.KindInternal, "error recording override audit event", err)
	}

	s.invalidator.InvalidateProgression(ctx, studentID, req.ProductID)

	log.Info().
		Str("student_id", studentID.String()).
		Str("product_id", req.ProductID.String()).
		Str("star_level", current.StarLevel).
		Str("tier", tierStr).
		Str("reason", req.Reason).
		Interface("actor_id", req.ActorID).
		Msg("Progression overridden by admin")

	return progressionDTO(current), nil
}

func progressionDTO(p *model.StudentProgression) *dto.ProgressionDTO {
	return &dto.ProgressionDTO{
		StudentID: p.StudentID,
		ProductID: p.ProductID,
		StarLevel: p.StarLevel,
		Tier:      p.Tier,
		UpdatedAt: p.UpdatedAt,
	}
}
