package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/apperr"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/dto"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/model"
)

type progressHarness struct {
	svc          ProgressService
	moduleRepo   *fakeModuleRepo
	lessonRepo   *fakeLessonRepo
	progressRepo *fakeProgressRepo
	invalidator  *fakeInvalidator
}

func newProgressHarness(module *model.Module, lessons ...*model.Lesson) *progressHarness {
	h := &progressHarness{
		moduleRepo:   newFakeModuleRepo(module),
		lessonRepo:   newFakeLessonRepo(lessons...),
		progressRepo: newFakeProgressRepo(),
		invalidator:  &fakeInvalidator{},
	}
	h.svc = NewProgressService(h.moduleRepo, h.lessonRepo, h.progressRepo, h.invalidator, testConfig())
	return h
}

func courseModule() *model.Module {
	return &model.Module{ID: uuid.New(), Title: "Intro Course", Type: model.ModuleTypeCourse}
}

func videoLesson(moduleID uuid.UUID, position int) *model.Lesson {
	return &model.Lesson{ID: uuid.New(), ModuleID: moduleID, Title: "Lesson", Position: position}
}

func quizLesson(moduleID uuid.UUID, position int, questions ...model.Question) *model.Lesson {
	return &model.Lesson{
		ID: uuid.New(), ModuleID: moduleID, Title: "Quiz Lesson",
		Position: position, HasQuiz: true, Questions: questions,
	}
}

func watchEvent(studentID uuid.UUID, seconds, percentage int, completed bool) dto.LessonProgressEventDTO {
	return dto.LessonProgressEventDTO{
		StudentID:            studentID,
		WatchTimeSeconds:     seconds,
		CompletionPercentage: percentage,
		VideoCompleted:       completed,
	}
}

func TestRecordVideoProgress_LessonNotFound(t *testing.T) {
	h := newProgressHarness(courseModule())
	_, err := h.svc.RecordVideoProgress(context.Background(), uuid.New(), watchEvent(uuid.New(), 10, 5, false))
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestRecordVideoProgress_CompletesSingleLessonModule(t *testing.T) {
	module := courseModule()
	lesson := videoLesson(module.ID, 1)
	h := newProgressHarness(module, lesson)
	studentID := uuid.New()

	progress, err := h.svc.RecordVideoProgress(context.Background(), lesson.ID, watchEvent(studentID, 300, 100, true))
	require.NoError(t, err)

	assert.Equal(t, model.ProgressCompleted, progress.Status)
	assert.Equal(t, 100, progress.ProgressPercentage)
	assert.NotNil(t, progress.CompletedAt)
	assert.Len(t, h.invalidator.progressKeys, 1)
}

func TestRecordVideoProgress_NeverRegresses(t *testing.T) {
	module := courseModule()
	lesson := videoLesson(module.ID, 1)
	h := newProgressHarness(module, lesson)
	studentID := uuid.New()

	_, err := h.svc.RecordVideoProgress(context.Background(), lesson.ID, watchEvent(studentID, 300, 100, true))
	require.NoError(t, err)

	// A replayed earlier event cannot un-watch the video or shrink
	// recorded watch time.
	_, err = h.svc.RecordVideoProgress(context.Background(), lesson.ID, watchEvent(studentID, 50, 20, false))
	require.NoError(t, err)

	stored, err := h.progressRepo.FindLessonProgress(studentID, lesson.ID)
	require.NoError(t, err)
	assert.True(t, stored.VideoWatched)
	assert.Equal(t, 300, stored.WatchTimeSeconds)
	assert.Equal(t, 100, stored.CompletionPercentage)
}

func TestRecordVideoProgress_PartialWatchIsInProgress(t *testing.T) {
	module := courseModule()
	l1 := videoLesson(module.ID, 1)
	l2 := videoLesson(module.ID, 2)
	h := newProgressHarness(module, l1, l2)
	studentID := uuid.New()

	progress, err := h.svc.RecordVideoProgress(context.Background(), l1.ID, watchEvent(studentID, 40, 25, false))
	require.NoError(t, err)
	assert.Equal(t, model.ProgressInProgress, progress.Status)
	assert.Equal(t, 0, progress.ProgressPercentage)

	progress, err = h.svc.RecordVideoProgress(context.Background(), l1.ID, watchEvent(studentID, 160, 100, true))
	require.NoError(t, err)
	assert.Equal(t, model.ProgressInProgress, progress.Status)
	assert.Equal(t, 50, progress.ProgressPercentage)
}

func TestRecordVideoProgress_QuizLessonNotCompleteOnVideoAlone(t *testing.T) {
	module := courseModule()
	lesson := quizLesson(module.ID, 1, mcqQuestion(uuid.New(), `"a"`))
	h := newProgressHarness(module, lesson)
	studentID := uuid.New()

	progress, err := h.svc.RecordVideoProgress(context.Background(), lesson.ID, watchEvent(studentID, 300, 100, true))
	require.NoError(t, err)
	assert.Equal(t, model.ProgressInProgress, progress.Status)
	assert.Equal(t, 0, progress.ProgressPercentage)
}

func TestSubmitQuizAttempt_LessonWithoutQuizRejected(t *testing.T) {
	module := courseModule()
	lesson := videoLesson(module.ID, 1)
	h := newProgressHarness(module, lesson)

	_, err := h.svc.SubmitQuizAttempt(context.Background(), lesson.ID, dto.SubmitQuizAttemptDTO{
		StudentID: uuid.New(),
		Answers:   map[string]dto.AnswerValue{"q": {"a"}},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestSubmitQuizAttempt_PassingCompletesLesson(t *testing.T) {
	module := courseModule()
	q1 := uuid.New()
	lesson := quizLesson(module.ID, 1, mcqQuestion(q1, `"a"`))
	h := newProgressHarness(module, lesson)
	studentID := uuid.New()

	_, err := h.svc.RecordVideoProgress(context.Background(), lesson.ID, watchEvent(studentID, 300, 100, true))
	require.NoError(t, err)

	result, err := h.svc.SubmitQuizAttempt(context.Background(), lesson.ID, dto.SubmitQuizAttemptDTO{
		StudentID: studentID,
		Answers:   map[string]dto.AnswerValue{q1.String(): {"a"}},
	})
	require.NoError(t, err)

	assert.True(t, result.Passed)
	assert.Equal(t, 100, result.Score)
	require.NotNil(t, result.ModuleProgress)
	assert.Equal(t, model.ProgressCompleted, result.ModuleProgress.Status)

	require.Len(t, h.progressRepo.attempts, 1)
	assert.True(t, h.progressRepo.attempts[0].Passed)
}

func TestSubmitQuizAttempt_FailThenPassKeepsHistory(t *testing.T) {
	module := courseModule()
	q1 := uuid.New()
	lesson := quizLesson(module.ID, 1, mcqQuestion(q1, `"a"`))
	h := newProgressHarness(module, lesson)
	studentID := uuid.New()

	result, err := h.svc.SubmitQuizAttempt(context.Background(), lesson.ID, dto.SubmitQuizAttemptDTO{
		StudentID: studentID,
		Answers:   map[string]dto.AnswerValue{q1.String(): {"b"}},
	})
	require.NoError(t, err)
	assert.False(t, result.Passed)

	result, err = h.svc.SubmitQuizAttempt(context.Background(), lesson.ID, dto.SubmitQuizAttemptDTO{
		StudentID: studentID,
		Answers:   map[string]dto.AnswerValue{q1.String(): {"a"}},
	})
	require.NoError(t, err)
	assert.True(t, result.Passed)

	// Both attempts stay on record; the rollup keeps the pass.
	assert.Len(t, h.progressRepo.attempts, 2)
	stored, err := h.progressRepo.FindLessonProgress(studentID, lesson.ID)
	require.NoError(t, err)
	assert.True(t, stored.QuizPassed)
	assert.Equal(t, 2, stored.QuizAttemptCount)
}

func TestSubmitQuizAttempt_ModulePassThresholdApplies(t *testing.T) {
	module := courseModule()
	threshold := 90.0
	module.PassThreshold = &threshold

	q1, q2 := uuid.New(), uuid.New()
	lesson := quizLesson(module.ID, 1, mcqQuestion(q1, `"a"`), mcqQuestion(q2, `"a"`))
	h := newProgressHarness(module, lesson)

	// 1/2 = 50, a pass at the default 60... but the module demands 90.
	result, err := h.svc.SubmitQuizAttempt(context.Background(), lesson.ID, dto.SubmitQuizAttemptDTO{
		StudentID: uuid.New(),
		Answers:   map[string]dto.AnswerValue{q1.String(): {"a"}, q2.String(): {"b"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 50, result.Score)
	assert.False(t, result.Passed)
}

func TestModuleProgress_CompletedSurvivesNewLesson(t *testing.T) {
	module := courseModule()
	l1 := videoLesson(module.ID, 1)
	h := newProgressHarness(module, l1)
	studentID := uuid.New()

	progress, err := h.svc.RecordVideoProgress(context.Background(), l1.ID, watchEvent(studentID, 300, 100, true))
	require.NoError(t, err)
	require.Equal(t, model.ProgressCompleted, progress.Status)
	completedAt := progress.CompletedAt

	// A lesson added after completion would derive in_progress, but the
	// stored completed status is monotonic.
	l2 := videoLesson(module.ID, 2)
	h.lessonRepo.lessons[l2.ID] = l2

	progress, err = h.svc.RecordVideoProgress(context.Background(), l2.ID, watchEvent(studentID, 10, 5, false))
	require.NoError(t, err)
	assert.Equal(t, model.ProgressCompleted, progress.Status)
	assert.Equal(t, completedAt, progress.CompletedAt)
	assert.Equal(t, 100, progress.ProgressPercentage)
}

func TestGetModuleProgress_NotStartedWhenNoRow(t *testing.T) {
	module := courseModule()
	h := newProgressHarness(module, videoLesson(module.ID, 1))

	progress, err := h.svc.GetModuleProgress(uuid.New(), module.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProgressNotStarted, progress.Status)
	assert.Equal(t, 0, progress.ProgressPercentage)
	assert.Nil(t, progress.CompletedAt)
}

func TestGetModuleProgress_UnknownModule(t *testing.T) {
	h := newProgressHarness(courseModule())
	_, err := h.svc.GetModuleProgress(uuid.New(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestGetModuleProgress_ReturnsStoredRow(t *testing.T) {
	module := courseModule()
	lesson := videoLesson(module.ID, 1)
	h := newProgressHarness(module, lesson)
	studentID := uuid.New()

	_, err := h.svc.RecordVideoProgress(context.Background(), lesson.ID, watchEvent(studentID, 60, 40, false))
	require.NoError(t, err)

	progress, err := h.svc.GetModuleProgress(studentID, module.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProgressInProgress, progress.Status)
}
