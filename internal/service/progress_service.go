package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
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

// ProgressService records lesson-level events (video watches, quiz
// attempts) and recomputes module completion from scratch after each
// one. Recording an event and deriving status are kept separate so the
// derivation stays idempotent.
type ProgressService interface {
	RecordVideoProgress(ctx context.Context, lessonID uuid.UUID, req dto.LessonProgressEventDTO) (*dto.ModuleProgressDTO, error)
	SubmitQuizAttempt(ctx context.Context, lessonID uuid.UUID, req dto.SubmitQuizAttemptDTO) (*dto.QuizAttemptResponseDTO, error)
	GetModuleProgress(studentID, moduleID uuid.UUID) (*dto.ModuleProgressDTO, error)
}

type progressService struct {
	moduleRepo   repository.ModuleRepository
	lessonRepo   repository.LessonRepository
	progressRepo repository.ProgressRepository
	invalidator  cache.Invalidator
	cfg          *config.Config
}

func NewProgressService(
	moduleRepo repository.ModuleRepository,
	lessonRepo repository.LessonRepository,
	progressRepo repository.ProgressRepository,
	invalidator cache.Invalidator,
	cfg *config.Config,
) ProgressService {
	return &progressService{
		moduleRepo:   moduleRepo,
		lessonRepo:   lessonRepo,
		progressRepo: progressRepo,
		invalidator:  invalidator,
		cfg:          cfg,
	}
}

func (s *progressService) RecordVideoProgress(ctx context.Context, lessonID uuid.UUID, req dto.LessonProgressEventDTO) (*dto.ModuleProgressDTO, error) {
	lesson, err := s.lessonRepo.FindByID(lessonID)
	if err != nil {
		return nil, orNotFound(err, fmt.Sprintf("lesson %s not found", lessonID))
	}

	progress, err := s.lessonProgressOrNew(req.StudentID, lessonID)
	if err != nil {
		return nil, err
	}

	// Merge, never regress: a replayed or out-of-order event cannot
	// un-watch a video or shrink watch time.
	progress.VideoWatched = progress.VideoWatched || req.VideoCompleted
	if req.WatchTimeSeconds > progress.WatchTimeSeconds {
		progress.WatchTimeSeconds = req.WatchTimeSeconds
	}
	if req.CompletionPercentage > progress.CompletionPercentage {
		progress.CompletionPercentage = req.CompletionPercentage
	}
	progress.LastActivityAt = time.Now().UTC()

	if err := s.progressRepo.UpsertLessonProgress(progress); err != nil {
		log.Error().Err(err).Str("lesson_id", lessonID.String()).Msg("RecordVideoProgress: upsert failed")
		return nil, apperr.Wrap(apperr.KindInternal, "error recording lesson progress", err)
	}

	return s.recomputeModuleProgress(ctx, req.StudentID, lesson.ModuleID)
}

func (s *progressService) SubmitQuizAttempt(ctx context.Context, lessonID uuid.UUID, req dto.SubmitQuizAttemptDTO) (*dto.QuizAttemptResponseDTO, error) {
	lesson, err := s.lessonRepo.FindByIDWithQuestions(lessonID)
	if err != nil {
		return nil, orNotFound(err, fmt.Sprintf("lesson %s not found", lessonID))
	}
	if !lesson.HasQuiz {
		return nil, apperr.Newf(apperr.KindValidation, "lesson %s has no quiz", lessonID)
	}

	questions, err := toGradableQuestions(lesson.Questions)
	if err != nil {
		log.Error().Err(err).Str("lesson_id", lessonID.String()).Msg("SubmitQuizAttempt: malformed stored content")
		return nil, err
	}

	answers, err := toSubmittedAnswers(req.Answers, questions)
	if err != nil {
		return nil, err
	}

	module, err := s.moduleRepo.FindByID(lesson.ModuleID)
	if err != nil {
		return nil, orNotFound(err, fmt.Sprintf("module %s not found", lesson.ModuleID))
	}

	result, err := grading.Grade(questions, answers, passThreshold(module, s.cfg))
	if err != nil {
		return nil, err
	}

	attempt := model.QuizAttempt{
		StudentID:      req.StudentID,
		LessonID:       lessonID,
		Score:          result.Score,
		CorrectCount:   result.CorrectCount,
		TotalQuestions: result.Total,
		Passed:         result.Passed,
		SubmittedAt:    time.Now().UTC(),
	}
	if err := s.progressRepo.CreateQuizAttempt(&attempt); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "error recording quiz attempt", err)
	}

	progress, err := s.lessonProgressOrNew(req.StudentID, lessonID)
	if err != nil {
		return nil, err
	}
	progress.QuizPassed = progress.QuizPassed || result.Passed
	progress.QuizAttemptCount++
	progress.LastActivityAt = attempt.SubmittedAt
	if err := s.progressRepo.UpsertLessonProgress(progress); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "error recording lesson progress", err)
	}

	moduleProgress, err := s.recomputeModuleProgress(ctx, req.StudentID, lesson.ModuleID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("attempt_id", attempt.ID.String()).
		Str("lesson_id", lessonID.String()).
		Float64("score", result.Score).
		Bool("passed", result.Passed).
		Msg("Quiz attempt graded")

	return &dto.QuizAttemptResponseDTO{
		AttemptID:      attempt.ID,
		Score:          int(result.Score),
		Passed:         result.Passed,
		CorrectAnswers: result.CorrectCount,
		TotalQuestions: result.Total,
		SubmittedAt:    attempt.SubmittedAt,
		ModuleProgress: moduleProgress,
	}, nil
}

func (s *progressService) GetModuleProgress(studentID, moduleID uuid.UUID) (*dto.ModuleProgressDTO, error) {
	stored, err := s.progressRepo.FindModuleProgress(studentID, moduleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if _, merr := s.moduleRepo.FindByID(moduleID); merr != nil {
			return nil, orNotFound(merr, fmt.Sprintf("module %s not found", moduleID))
		}
		return &dto.ModuleProgressDTO{
			ModuleID: moduleID,
			Status:   model.ProgressNotStarted,
		}, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "error fetching module progress", err)
	}
	return moduleProgressDTO(stored), nil
}

func (s *progressService) lessonProgressOrNew(studentID, lessonID uuid.UUID) (*model.LessonProgress, error) {
	progress, err := s.progressRepo.FindLessonProgress(studentID, lessonID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.LessonProgress{StudentID: studentID, LessonID: lessonID}, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "error fetching lesson progress", err)
	}
	return progress, nil
}

// recomputeModuleProgress re-derives the module snapshot from the full
// current lesson set and writes it back. Completed status is monotonic:
// a derived downgrade (for example after lessons were added to the
// module) is not persisted.
func (s *progressService) recomputeModuleProgress(ctx context.Context, studentID, moduleID uuid.UUID) (*dto.ModuleProgressDTO, error) {
	lessons, err := s.lessonRepo.FindByModuleID(moduleID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "error loading module lessons", err)
	}

	descriptors := make([]progression.LessonDescriptor, 0, len(lessons))
	lessonIDs := make([]uuid.UUID, 0, len(lessons))
	for _, lesson := range lessons {
		descriptors = append(descriptors, progression.LessonDescriptor{ID: lesson.ID, HasQuiz: lesson.HasQuiz})
		lessonIDs = append(lessonIDs, lesson.ID)
	}

	rows, err := s.progressRepo.FindLessonProgressForModule(studentID, lessonIDs)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "error loading lesson progress", err)
	}
	states := make(map[uuid.UUID]progression.LessonState, len(rows))
	for _, row := range rows {
		states[row.LessonID] = progression.LessonState{
			VideoWatched: row.VideoWatched,
			QuizPassed:   row.QuizPassed,
			Activity:     row.WatchTimeSeconds > 0 || row.CompletionPercentage > 0 || row.QuizAttemptCount > 0,
		}
	}

	snapshot := progression.EvaluateModule(descriptors, states)

	progress := &model.ModuleProgress{
		StudentID:          studentID,
		ModuleID:           moduleID,
		Status:             snapshot.Status,
		ProgressPercentage: snapshot.ProgressPercentage,
	}

	stored, err := s.progressRepo.FindModuleProgress(studentID, moduleID)
	if err == nil {
		if stored.Status == model.ProgressCompleted && snapshot.Status != progression.StatusCompleted {
			return moduleProgressDTO(stored), nil
		}
		progress.CompletedAt = stored.CompletedAt
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Wrap(apperr.KindInternal, "error fetching module progress", err)
	}

	if snapshot.Status == progression.StatusCompleted && progress.CompletedAt == nil {
		now := time.Now().UTC()
		progress.CompletedAt = &now
	}

	if err := s.progressRepo.UpsertModuleProgress(progress); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "error persisting module progress", err)
	}
	s.invalidator.InvalidateModuleProgress(ctx, studentID, moduleID)

	return moduleProgressDTO(progress), nil
}

func moduleProgressDTO(progress *model.ModuleProgress) *dto.ModuleProgressDTO {
	return &dto.ModuleProgressDTO{
		ModuleID:           progress.ModuleID,
		Status:             progress.Status,
		ProgressPercentage: progress.ProgressPercentage,
		CompletedAt:        progress.CompletedAt,
	}
}
