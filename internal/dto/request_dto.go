package dto

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// AnswerValue accepts both wire encodings for a submitted answer: a
// single option id ("opt1") for MCQ/TF and an option-id array for MSQ.
type AnswerValue []string

func (a *AnswerValue) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*a = AnswerValue{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*a = AnswerValue(many)
		return nil
	}
	return fmt.Errorf("answer must be a string or an array of strings, got %s", data)
}

func (a AnswerValue) MarshalJSON() ([]byte, error) {
	if len(a) == 1 {
		return json.Marshal(a[0])
	}
	return json.Marshal([]string(a))
}

// SubmitAssessmentDTO is the body of POST /modules/:module_id/submissions.
type SubmitAssessmentDTO struct {
	StudentID uuid.UUID              `json:"student_id" binding:"required"`
	Answers   map[string]AnswerValue `json:"answers" binding:"required"`
}

// LessonProgressEventDTO is a video-watch progress event.
type LessonProgressEventDTO struct {
	StudentID            uuid.UUID `json:"student_id" binding:"required"`
	WatchTimeSeconds     int       `json:"watch_time_seconds" binding:"min=0"`
	CompletionPercentage int       `json:"completion_percentage" binding:"min=0,max=100"`
	VideoCompleted       bool      `json:"video_completed"`
}

// SubmitQuizAttemptDTO is the body of POST /lessons/:lesson_id/quiz-attempts.
type SubmitQuizAttemptDTO struct {
	StudentID uuid.UUID              `json:"student_id" binding:"required"`
	Answers   map[string]AnswerValue `json:"answers" binding:"required"`
}
