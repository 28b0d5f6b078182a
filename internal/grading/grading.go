// Package grading scores a submitted answer set against a question set.
// Everything here is pure: no I/O, no shared state, safe to retry.
package grading

import (
	"math"

	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/apperr"
)

type QuestionType string

const (
	TypeMCQ QuestionType = "MCQ" // single correct choice
	TypeMSQ QuestionType = "MSQ" // multiple correct choices, exact match
	TypeTF  QuestionType = "TF"  // true/false, modeled as single choice
)

// ValidType reports whether t is one of the supported question types.
func ValidType(t QuestionType) bool {
	return t == TypeMCQ || t == TypeMSQ || t == TypeTF
}

// Question is a gradable item with an already-normalized answer key.
type Question struct {
	ID      string
	Type    QuestionType
	Correct AnswerKey
}

// Submitted is a student's response to one question: one option id for
// MCQ/TF, one or more for MSQ. Order is irrelevant.
type Submitted []string

// Result is the aggregate grading outcome.
type Result struct {
	Score        float64
	CorrectCount int
	Total        int
	Passed       bool

	// PerQuestion maps question id to correctness.
	PerQuestion map[string]bool
}

// Grade scores answers against questions.
//
// Rules:
//   - an unanswered question counts as incorrect, not skipped;
//   - MCQ/TF: correct iff exactly one option was submitted and it is
//     the correct one;
//   - MSQ: correct iff the submitted set equals the key exactly; no
//     partial credit, supersets and subsets are fully incorrect;
//   - score = round(100 * correct / total), passed = score >= threshold.
//
// A zero-length question set is rejected: returning score=0 for an
// empty assessment would misrepresent a content bug as a failed grade.
func Grade(questions []Question, answers map[string]Submitted, passThreshold float64) (Result, error) {
	if len(questions) == 0 {
		return Result{}, apperr.New(apperr.KindDataIntegrity, "assessment has no questions to grade")
	}

	verdicts := make(map[string]bool, len(questions))
	correct := 0
	for _, q := range questions {
		if len(q.Correct) == 0 {
			return Result{}, apperr.Newf(apperr.KindDataIntegrity,
				"question %s has no normalized answer key", q.ID)
		}
		if !ValidType(q.Type) {
			return Result{}, apperr.Newf(apperr.KindDataIntegrity,
				"question %s has unsupported type %q", q.ID, q.Type)
		}

		ok := isCorrect(q, answers[q.ID])
		verdicts[q.ID] = ok
		if ok {
			correct++
		}
	}

	score := math.Round(100 * float64(correct) / float64(len(questions)))
	return Result{
		Score:        score,
		CorrectCount: correct,
		Total:        len(questions),
		Passed:       score >= passThreshold,
		PerQuestion:  verdicts,
	}, nil
}

func isCorrect(q Question, submitted Submitted) bool {
	if len(submitted) == 0 {
		return false
	}

	switch q.Type {
	case TypeMCQ, TypeTF:
		return len(submitted) == 1 && q.Correct.Contains(submitted[0])
	case TypeMSQ:
		submittedSet := make(AnswerKey, len(submitted))
		for _, id := range submitted {
			submittedSet[id] = struct{}{}
		}
		return q.Correct.Equals(submittedSet)
	default:
		return false
	}
}
