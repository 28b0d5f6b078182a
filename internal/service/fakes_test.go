package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/m-deepankar-singh/cultus-platform-sub006/config"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/model"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/repository"
)

// In-memory fakes that mirror the gorm-backed repositories' contracts,
// including gorm.ErrRecordNotFound and the duplicate-key translation
// the real submission table enforces through its unique index.

type fakeModuleRepo struct {
	modules map[uuid.UUID]*model.Module
}

func newFakeModuleRepo(modules ...*model.Module) *fakeModuleRepo {
	r := &fakeModuleRepo{modules: make(map[uuid.UUID]*model.Module)}
	for _, m := range modules {
		r.modules[m.ID] = m
	}
	return r
}

func (r *fakeModuleRepo) Create(module *model.Module) error {
	if module.ID == uuid.Nil {
		module.ID = uuid.New()
	}
	r.modules[module.ID] = module
	return nil
}

func (r *fakeModuleRepo) FindByID(id uuid.UUID) (*model.Module, error) {
	module, ok := r.modules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return module, nil
}

func (r *fakeModuleRepo) FindByIDWithContent(id uuid.UUID) (*model.Module, error) {
	return r.FindByID(id)
}

func (r *fakeModuleRepo) FindAllWithCounts() ([]repository.ModuleWithCounts, error) {
	out := make([]repository.ModuleWithCounts, 0, len(r.modules))
	for _, m := range r.modules {
		out = append(out, repository.ModuleWithCounts{
			Module:        *m,
			QuestionCount: len(m.Questions),
			LessonCount:   len(m.Lessons),
		})
	}
	return out, nil
}

type fakeProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newFakeProductRepo(products ...*model.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[uuid.UUID]*model.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) Create(product *model.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	r.products[product.ID] = product
	return nil
}

func (r *fakeProductRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

type fakeLessonRepo struct {
	lessons map[uuid.UUID]*model.Lesson
}

func newFakeLessonRepo(lessons ...*model.Lesson) *fakeLessonRepo {
	r := &fakeLessonRepo{lessons: make(map[uuid.UUID]*model.Lesson)}
	for _, l := range lessons {
		r.lessons[l.ID] = l
	}
	return r
}

func (r *fakeLessonRepo) FindByID(id uuid.UUID) (*model.Lesson, error) {
	lesson, ok := r.lessons[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return lesson, nil
}

func (r *fakeLessonRepo) FindByIDWithQuestions(id uuid.UUID) (*model.Lesson, error) {
	return r.FindByID(id)
}

func (r *fakeLessonRepo) FindByModuleID(moduleID uuid.UUID) ([]model.Lesson, error) {
	var out []model.Lesson
	for _, l := range r.lessons {
		if l.ModuleID == moduleID {
			out = append(out, *l)
		}
	}
	return out, nil
}

type fakeSubmissionRepo struct {
	submissions []model.AssessmentSubmission
	// modules lets PassingTierScores resolve tier-determining modules
	// the way the real join does.
	modules map[uuid.UUID]*model.Module

	createErr error
}

func newFakeSubmissionRepo(modules *fakeModuleRepo) *fakeSubmissionRepo {
	return &fakeSubmissionRepo{modules: modules.modules}
}

func (r *fakeSubmissionRepo) Create(submission *model.AssessmentSubmission) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, existing := range r.submissions {
		if existing.StudentID == submission.StudentID &&
			existing.ModuleID == submission.ModuleID &&
			existing.AttemptNumber == submission.AttemptNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	if submission.ID == uuid.Nil {
		submission.ID = uuid.New()
	}
	r.submissions = append(r.submissions, *submission)
	return nil
}

func (r *fakeSubmissionRepo) FindLatestByStudentAndModule(studentID, moduleID uuid.UUID) (*model.AssessmentSubmission, error) {
	var latest *model.AssessmentSubmission
	for i := range r.submissions {
		sub := &r.submissions[i]
		if sub.StudentID != studentID || sub.ModuleID != moduleID {
			continue
		}
		if latest == nil || sub.AttemptNumber > latest.AttemptNumber {
			latest = sub
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (r *fakeSubmissionRepo) FindAllByStudentAndModule(studentID, moduleID uuid.UUID) ([]model.AssessmentSubmission, error) {
	var out []model.AssessmentSubmission
	for _, sub := range r.submissions {
		if sub.StudentID == studentID && sub.ModuleID == moduleID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (r *fakeSubmissionRepo) CountByStudentAndModule(studentID, moduleID uuid.UUID) (int64, error) {
	var count int64
	for _, sub := range r.submissions {
		if sub.StudentID == studentID && sub.ModuleID == moduleID {
			count++
		}
	}
	return count, nil
}

func (r *fakeSubmissionRepo) PassingTierScores(studentID, productID uuid.UUID) ([]float64, error) {
	var scores []float64
	for _, sub := range r.submissions {
		if sub.StudentID != studentID || !sub.Passed {
			continue
		}
		module, ok := r.modules[sub.ModuleID]
		if !ok || !module.TierDetermining || module.ProductID == nil || *module.ProductID != productID {
			continue
		}
		scores = append(scores, sub.Score)
	}
	return scores, nil
}

type fakeProgressRepo struct {
	lessonProgress map[string]*model.LessonProgress
	moduleProgress map[string]*model.ModuleProgress
	attempts       []model.QuizAttempt
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{
		lessonProgress: make(map[string]*model.LessonProgress),
		moduleProgress: make(map[string]*model.ModuleProgress),
	}
}

func pairKey(a, b uuid.UUID) string {
	return fmt.Sprintf("%s:%s", a, b)
}

func (r *fakeProgressRepo) FindLessonProgress(studentID, lessonID uuid.UUID) (*model.LessonProgress, error) {
	progress, ok := r.lessonProgress[pairKey(studentID, lessonID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *progress
	return &cp, nil
}

func (r *fakeProgressRepo) FindLessonProgressForModule(studentID uuid.UUID, lessonIDs []uuid.UUID) ([]model.LessonProgress, error) {
	var out []model.LessonProgress
	for _, lessonID := range lessonIDs {
		if progress, ok := r.lessonProgress[pairKey(studentID, lessonID)]; ok {
			out = append(out, *progress)
		}
	}
	return out, nil
}

func (r *fakeProgressRepo) UpsertLessonProgress(progress *model.LessonProgress) error {
	if progress.ID == uuid.Nil {
		progress.ID = uuid.New()
	}
	cp := *progress
	r.lessonProgress[pairKey(progress.StudentID, progress.LessonID)] = &cp
	return nil
}

func (r *fakeProgressRepo) CreateQuizAttempt(attempt *model.QuizAttempt) error {
	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}
	r.attempts = append(r.attempts, *attempt)
	return nil
}

func (r *fakeProgressRepo) FindModuleProgress(studentID, moduleID uuid.UUID) (*model.ModuleProgress, error) {
	progress, ok := r.moduleProgress[pairKey(studentID, moduleID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *progress
	return &cp, nil
}

func (r *fakeProgressRepo) UpsertModuleProgress(progress *model.ModuleProgress) error {
	if progress.ID == uuid.Nil {
		progress.ID = uuid.New()
	}
	cp := *progress
	r.moduleProgress[pairKey(progress.StudentID, progress.ModuleID)] = &cp
	return nil
}

type fakeProgressionRepo struct {
	rows     map[string]*model.StudentProgression
	events   []model.ProgressionEvent
	eventErr error
}

func newFakeProgressionRepo() *fakeProgressionRepo {
	return &fakeProgressionRepo{rows: make(map[string]*model.StudentProgression)}
}

func (r *fakeProgressionRepo) FindOrInit(studentID, productID uuid.UUID) (*model.StudentProgression, error) {
	if row, ok := r.rows[pairKey(studentID, productID)]; ok {
		cp := *row
		return &cp, nil
	}
	return &model.StudentProgression{
		StudentID: studentID,
		ProductID: productID,
		StarLevel: "NONE",
	}, nil
}

func (r *fakeProgressionRepo) Upsert(progression *model.StudentProgression) error {
	if progression.ID == uuid.Nil {
		progression.ID = uuid.New()
	}
	cp := *progression
	r.rows[pairKey(progression.StudentID, progression.ProductID)] = &cp
	return nil
}

func (r *fakeProgressionRepo) CreateEvent(event *model.ProgressionEvent) error {
	if r.eventErr != nil {
		return r.eventErr
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	r.events = append(r.events, *event)
	return nil
}

type fakeInvalidator struct {
	progressKeys    []string
	progressionKeys []string
}

func (i *fakeInvalidator) InvalidateModuleProgress(ctx context.Context, studentID, moduleID uuid.UUID) {
	i.progressKeys = append(i.progressKeys, pairKey(studentID, moduleID))
}

func (i *fakeInvalidator) InvalidateProgression(ctx context.Context, studentID, productID uuid.UUID) {
	i.progressionKeys = append(i.progressionKeys, pairKey(studentID, productID))
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Grading.DefaultPassThreshold = 60
	return cfg
}
