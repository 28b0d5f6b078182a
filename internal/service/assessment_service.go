package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/m-deepankar-singh/cultus-platform-sub006/config"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/apperr"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/cache"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/dto"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/grading"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/model"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/progression"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/repository"
)

// AssessmentService handles assessment submissions: grade, persist
// exactly once per (student, module, attempt), advance tier progression
// when applicable, invalidate derived caches.
type AssessmentService interface {
	SubmitAssessment(ctx context.Context, moduleID uuid.UUID, req dto.SubmitAssessmentDTO) (*dto.GradingResponseDTO, error)
	GetSubmissions(studentID, moduleID uuid.UUID) ([]dto.SubmissionSummaryDTO, error)
}

type assessmentService struct {
	moduleRepo      repository.ModuleRepository
	productRepo     repository.ProductRepository
	submissionRepo  repository.SubmissionRepository
	progressRepo    repository.ProgressRepository
	progressionRepo repository.ProgressionRepository
	invalidator     cache.Invalidator
	cfg             *config.Config
}

func NewAssessmentService(
	moduleRepo repository.ModuleRepository,
	productRepo repository.ProductRepository,
	submissionRepo repository.SubmissionRepository,
	progressRepo repository.ProgressRepository,
	progressionRepo repository.ProgressionRepository,
	invalidator cache.Invalidator,
	cfg *config.Config,
) AssessmentService {
	return &assessmentService{
		moduleRepo:      moduleRepo,
		productRepo:     productRepo,
		submissionRepo:  submissionRepo,
		progressRepo:    progressRepo,
		progressionRepo: progressionRepo,
		invalidator:     invalidator,
		cfg:             cfg,
	}
}

func (s *assessmentService) SubmitAssessment(ctx context.Context, moduleID uuid.UUID, req dto.SubmitAssessmentDTO) (*dto.GradingResponseDTO, error) {
	module, err := s.moduleRepo.FindByIDWithContent(moduleID)
	if err != nil {
		return nil, orNotFound(err, fmt.Sprintf("module %s not found", moduleID))
	}
	if module.Type != model.ModuleTypeAssessment {
		return nil, apperr.Newf(apperr.KindValidation, "module %s is not an assessment", moduleID)
	}

	questions, err := toGradableQuestions(module.Questions)
	if err != nil {
		log.Error().Err(err).Str("module_id", moduleID.String()).Msg("SubmitAssessment: malformed stored content")
		return nil, err
	}

	answers, err := toSubmittedAnswers(req.Answers, questions)
	if err != nil {
		return nil, err
	}

	// Duplicate-submission pre-check. The unique index is the actual
	// guard; this check only produces a friendlier conflict response
	// for the common sequential case.
	attemptNumber := 1
	existingCount, err := s.submissionRepo.CountByStudentAndModule(req.StudentID, moduleID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "error checking prior submissions", err)
	}
	if existingCount > 0 {
		if !module.RetakesAllowed {
			return nil, s.duplicateSubmissionError(req.StudentID, moduleID)
		}
		attemptNumber = int(existingCount) + 1
	}

	result, err := grading.Grade(questions, answers, passThreshold(module, s.cfg))
	if err != nil {
		return nil, err
	}

	rawAnswers, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "error encoding submitted answers", err)
	}

	submission := model.AssessmentSubmission{
		StudentID:      req.StudentID,
		ModuleID:       moduleID,
		AttemptNumber:  attemptNumber,
		Answers:        datatypes.JSON(rawAnswers),
		Score:          result.Score,
		CorrectCount:   result.CorrectCount,
		TotalQuestions: result.Total,
		Passed:         result.Passed,
		SubmittedAt:    time.Now().UTC(),
	}

	if err := s.submissionRepo.Create(&submission); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race against a concurrent submission for the
			// same attempt slot. Exactly one result is persisted.
			return nil, s.duplicateSubmissionError(req.StudentID, moduleID)
		}
		log.Error().Err(err).Str("module_id", moduleID.String()).Msg("SubmitAssessment: failed to persist submission")
		return nil, apperr.Wrap(apperr.KindInternal, "error persisting submission", err)
	}

	s.recordAssessmentProgress(ctx, module, req.StudentID, result)

	if module.TierDetermining && result.Passed && module.ProductID != nil {
		s.advanceProgression(ctx, module, req.StudentID)
	}

	log.Info().
		Str("submission_id", submission.ID.String()).
		Str("student_id", req.StudentID.String()).
		Str("module_id", moduleID.String()).
		Float64("score", result.Score).
		Bool("passed", result.Passed).
		Msg("Assessment graded")

	return &dto.GradingResponseDTO{
		SubmissionID:   submission.ID,
		Score:          int(result.Score),
		Passed:         result.Passed,
		CorrectAnswers: result.CorrectCount,
		TotalQuestions: result.Total,
		SubmittedAt:    submission.SubmittedAt,
	}, nil
}

func (s *assessmentService) GetSubmissions(studentID, moduleID uuid.UUID) ([]dto.SubmissionSummaryDTO, error) {
	submissions, err := s.submissionRepo.FindAllByStudentAndModule(studentID, moduleID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "error fetching submissions", err)
	}

	dtos := make([]dto.SubmissionSummaryDTO, 0, len(submissions))
	for _, sub := range submissions {
		dtos = append(dtos, dto.SubmissionSummaryDTO{
			ID:             sub.ID,
			ModuleID:       sub.ModuleID,
			AttemptNumber:  sub.AttemptNumber,
			Score:          int(sub.Score),
			Passed:         sub.Passed,
			CorrectAnswers: sub.CorrectCount,
			TotalQuestions: sub.TotalQuestions,
			SubmittedAt:    sub.SubmittedAt,
		})
	}
	return dtos, nil
}

func (s *assessmentService) duplicateSubmissionError(studentID, moduleID uuid.UUID) error {
	existing, err := s.submissionRepo.FindLatestByStudentAndModule(studentID, moduleID)
	if err != nil {
		return apperr.New(apperr.KindConflict, "assessment already submitted and retakes are not allowed")
	}
	return &apperr.Error{
		Kind:    apperr.KindConflict,
		Message: "assessment already submitted and retakes are not allowed",
		Details: []string{fmt.Sprintf("existing submission %s from %s", existing.ID, existing.SubmittedAt.Format(time.RFC3339))},
	}
}

// recordAssessmentProgress derives module progress directly from the
// grading result: a passing submission completes the module; a failing
// one leaves it in progress at its score. Completion is monotonic.
func (s *assessmentService) recordAssessmentProgress(ctx context.Context, module *model.Module, studentID uuid.UUID, result grading.Result) {
	status := model.ProgressInProgress
	percentage := int(result.Score)
	var completedAt *time.Time
	if result.Passed {
		status = model.ProgressCompleted
		percentage = 100
		now := time.Now().UTC()
		completedAt = &now
	}

	stored, err := s.progressRepo.FindModuleProgress(studentID, module.ID)
	if err == nil && stored.Status == model.ProgressCompleted {
		// Never demote a completed module.
		return
	}

	progress := model.ModuleProgress{
		StudentID:          studentID,
		ModuleID:           module.ID,
		Status:             status,
		ProgressPercentage: percentage,
		CompletedAt:        completedAt,
	}
	if err := s.progressRepo.UpsertModuleProgress(&progress); err != nil {
		log.Error().Err(err).Str("module_id", module.ID.String()).Msg("Failed to record assessment progress")
		return
	}
	s.invalidator.InvalidateModuleProgress(ctx, studentID, module.ID)
}

// advanceProgression applies the NONE -> ONE promotion off a passing
// tier-determining submission. Missing or invalid threshold config
// falls back to the default table; a passing student is never left
// without a tier because of configuration.
func (s *assessmentService) advanceProgression(ctx context.Context, module *model.Module, studentID uuid.UUID) {
	productID := *module.ProductID

	thresholds := progression.DefaultTierThresholds()
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		log.Warn().Err(err).Str("product_id", productID.String()).Msg("Product lookup failed, using default tier thresholds")
	} else if parsed, perr := progression.ParseTierThresholds(product.TierThresholds); perr != nil {
		log.Warn().Err(perr).Str("product_id", productID.String()).Msg("Stored tier thresholds invalid, using default table")
	} else {
		thresholds = parsed
	}

	scores, err := s.submissionRepo.PassingTierScores(studentID, productID)
	if err != nil || len(scores) == 0 {
		log.Error().Err(err).Str("student_id", studentID.String()).Msg("Could not load tier-determining scores")
		return
	}
	sort.Float64s(scores)
	sum := 0.0
	for _, score := range scores {
		sum += score
	}
	avg := sum / float64(len(scores))

	current, err := s.progressionRepo.FindOrInit(studentID, productID)
	if err != nil {
		log.Error().Err(err).Str("student_id", studentID.String()).Msg("Could not load progression state")
		return
	}

	state := progression.State{StarLevel: progression.StarLevel(current.StarLevel)}
	if current.Tier != nil {
		tier := progression.Tier(*current.Tier)
		state.Tier = &tier
	}

	next, changed := progression.AdvanceOnAssessment(state, true, avg, thresholds)
	if !changed {
		return
	}

	current.StarLevel = string(next.StarLevel)
	tierStr := string(*next.Tier)
	current.Tier = &tierStr
	if err := s.progressionRepo.Upsert(current); err != nil {
		log.Error().Err(err).Str("student_id", studentID.String()).Msg("Failed to persist progression promotion")
		return
	}

	event := model.ProgressionEvent{
		StudentID: studentID,
		ProductID: productID,
		EventType: model.ProgressionEventPromotion,
		StarLevel: current.StarLevel,
		Tier:      current.Tier,
	}
	if err := s.progressionRepo.CreateEvent(&event); err != nil {
		// Secondary audit write; the promotion itself already landed.
		log.Error().Err(err).Str("student_id", studentID.String()).Msg("Failed to record promotion audit event")
	}

	s.invalidator.InvalidateProgression(ctx, studentID, productID)

	log.Info().
		Str("student_id", studentID.String()).
		Str("product_id", productID.String()).
		Str("star_level", current.StarLevel).
		Str("tier", tierStr).
		Float64("avg_score", avg).
		Msg("Student promoted")
}

// toGradableQuestions normalizes every stored answer key up front so a
// content bug fails the whole request loudly instead of misgrading.
func toGradableQuestions(questions []model.Question) ([]grading.Question, error) {
	gradable := make([]grading.Question, 0, len(questions))
	for _, q := range questions {
		key, err := grading.ParseAnswerKey(json.RawMessage(q.CorrectAnswer))
		if err != nil {
			return nil, apperr.Wrap(apperr.KindDataIntegrity,
				fmt.Sprintf("question %s has a malformed answer key", q.ID), err)
		}
		gradable = append(gradable, grading.Question{
			ID:      q.ID.String(),
			Type:    grading.QuestionType(q.Type),
			Correct: key,
		})
	}
	return gradable, nil
}

// toSubmittedAnswers validates the submitted map against the question
// set, collecting every violation before rejecting.
func toSubmittedAnswers(answers map[string]dto.AnswerValue, questions []grading.Question) (map[string]grading.Submitted, error) {
	if len(answers) == 0 {
		return nil, apperr.Validation("submission contains no answers")
	}

	known := make(map[string]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}

	var violations []string
	out := make(map[string]grading.Submitted, len(answers))
	for qid, value := range answers {
		if !known[qid] {
			violations = append(violations, fmt.Sprintf("question %s is not part of this question set", qid))
			continue
		}
		if len(value) == 0 {
			violations = append(violations, fmt.Sprintf("answer for question %s is empty", qid))
			continue
		}
		out[qid] = grading.Submitted(value)
	}
	if len(violations) > 0 {
		sort.Strings(violations)
		return nil, apperr.Validation("invalid answers", violations...)
	}
	return out, nil
}
