// Package progression holds the pure progress-aggregation rules:
// lesson/module completion and the tier/star state machine. No I/O.
package progression

import (
	"math"

	"github.com/google/uuid"
)

const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// LessonDescriptor is the shape of a lesson for completion purposes.
type LessonDescriptor struct {
	ID      uuid.UUID
	HasQuiz bool
}

// LessonState is the recorded progress for one (student, lesson) pair.
// Activity marks any recorded interaction (partial watch, failed quiz
// attempt) so the module can report in_progress before anything
// completes.
type LessonState struct {
	VideoWatched bool
	QuizPassed   bool
	Activity     bool
}

// Snapshot is a derived module-completion determination.
type Snapshot struct {
	Status             string
	ProgressPercentage int
	CompletedLessons   int
	TotalLessons       int
}

// EvaluateModule recomputes module completion from scratch. It is
// idempotent and tolerant of lessons being added or removed after
// progress exists: there is no incremental patching, every call derives
// the snapshot from the full current lesson set.
//
// A lesson is complete iff its video is watched and, when it has a
// quiz, any attempt passed. The module is completed iff every lesson is
// complete and the lesson set is non-empty.
func EvaluateModule(lessons []LessonDescriptor, states map[uuid.UUID]LessonState) Snapshot {
	snap := Snapshot{Status: StatusNotStarted, TotalLessons: len(lessons)}
	if len(lessons) == 0 {
		return snap
	}

	anyActivity := false
	for _, lesson := range lessons {
		state, ok := states[lesson.ID]
		if !ok {
			continue
		}
		if state.Activity || state.VideoWatched || state.QuizPassed {
			anyActivity = true
		}
		if lessonComplete(lesson, state) {
			snap.CompletedLessons++
		}
	}

	snap.ProgressPercentage = int(math.Round(100 * float64(snap.CompletedLessons) / float64(len(lessons))))

	switch {
	case snap.CompletedLessons == len(lessons):
		snap.Status = StatusCompleted
	case anyActivity:
		snap.Status = StatusInProgress
	}
	return snap
}

func lessonComplete(lesson LessonDescriptor, state LessonState) bool {
	if !state.VideoWatched {
		return false
	}
	if lesson.HasQuiz {
		return state.QuizPassed
	}
	return true
}
