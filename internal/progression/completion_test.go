package progression

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestEvaluateModule_EmptyLessonSet(t *testing.T) {
	snap := EvaluateModule(nil, nil)
	assert.Equal(t, StatusNotStarted, snap.Status)
	assert.Equal(t, 0, snap.ProgressPercentage)
}

func TestEvaluateModule_NoActivity(t *testing.T) {
	lessons := []LessonDescriptor{{ID: uuid.New()}, {ID: uuid.New()}}
	snap := EvaluateModule(lessons, nil)
	assert.Equal(t, StatusNotStarted, snap.Status)
	assert.Equal(t, 0, snap.ProgressPercentage)
	assert.Equal(t, 2, snap.TotalLessons)
}

func TestEvaluateModule_PartialActivityIsInProgress(t *testing.T) {
	l1, l2 := uuid.New(), uuid.New()
	lessons := []LessonDescriptor{{ID: l1}, {ID: l2}}
	states := map[uuid.UUID]LessonState{
		l1: {Activity: true}, // partial watch, nothing complete
	}

	snap := EvaluateModule(lessons, states)
	assert.Equal(t, StatusInProgress, snap.Status)
	assert.Equal(t, 0, snap.ProgressPercentage)
}

func TestEvaluateModule_QuizGatesCompletion(t *testing.T) {
	l1 := uuid.New()
	lessons := []LessonDescriptor{{ID: l1, HasQuiz: true}}

	// Video watched but quiz not passed: incomplete.
	snap := EvaluateModule(lessons, map[uuid.UUID]LessonState{
		l1: {VideoWatched: true},
	})
	assert.Equal(t, StatusInProgress, snap.Status)
	assert.Equal(t, 0, snap.CompletedLessons)

	// Quiz passed but video not watched: still incomplete.
	snap = EvaluateModule(lessons, map[uuid.UUID]LessonState{
		l1: {QuizPassed: true},
	})
	assert.Equal(t, StatusInProgress, snap.Status)
	assert.Equal(t, 0, snap.CompletedLessons)

	// Both: complete.
	snap = EvaluateModule(lessons, map[uuid.UUID]LessonState{
		l1: {VideoWatched: true, QuizPassed: true},
	})
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, 100, snap.ProgressPercentage)
}

func TestEvaluateModule_NoQuizLessonCompletesOnVideo(t *testing.T) {
	l1 := uuid.New()
	lessons := []LessonDescriptor{{ID: l1, HasQuiz: false}}

	snap := EvaluateModule(lessons, map[uuid.UUID]LessonState{
		l1: {VideoWatched: true},
	})
	assert.Equal(t, StatusCompleted, snap.Status)
}

func TestEvaluateModule_PercentageRounding(t *testing.T) {
	l1, l2, l3 := uuid.New(), uuid.New(), uuid.New()
	lessons := []LessonDescriptor{{ID: l1}, {ID: l2}, {ID: l3}}
	states := map[uuid.UUID]LessonState{
		l1: {VideoWatched: true},
	}

	// 1/3 rounds to 33.
	snap := EvaluateModule(lessons, states)
	assert.Equal(t, 33, snap.ProgressPercentage)

	states[l2] = LessonState{VideoWatched: true}
	// 2/3 rounds to 67.
	snap = EvaluateModule(lessons, states)
	assert.Equal(t, 67, snap.ProgressPercentage)
	assert.Equal(t, StatusInProgress, snap.Status)
}

func TestEvaluateModule_Idempotent(t *testing.T) {
	l1, l2 := uuid.New(), uuid.New()
	lessons := []LessonDescriptor{{ID: l1, HasQuiz: true}, {ID: l2}}
	states := map[uuid.UUID]LessonState{
		l1: {VideoWatched: true, QuizPassed: true},
		l2: {Activity: true},
	}

	first := EvaluateModule(lessons, states)
	second := EvaluateModule(lessons, states)
	assert.Equal(t, first, second)
}

func TestEvaluateModule_RecomputesAfterLessonSetChanges(t *testing.T) {
	l1, l2 := uuid.New(), uuid.New()
	states := map[uuid.UUID]LessonState{
		l1: {VideoWatched: true},
	}

	// One lesson, watched: completed.
	snap := EvaluateModule([]LessonDescriptor{{ID: l1}}, states)
	assert.Equal(t, StatusCompleted, snap.Status)

	// A lesson was added afterwards: derived state drops back to 50%.
	// Monotonicity of the persisted status is the caller's concern.
	snap = EvaluateModule([]LessonDescriptor{{ID: l1}, {ID: l2}}, states)
	assert.Equal(t, StatusInProgress, snap.Status)
	assert.Equal(t, 50, snap.ProgressPercentage)

	// Stale progress rows for removed lessons are ignored.
	snap = EvaluateModule([]LessonDescriptor{{ID: l2}}, states)
	assert.Equal(t, StatusNotStarted, snap.Status)
	assert.Equal(t, 0, snap.ProgressPercentage)
}
