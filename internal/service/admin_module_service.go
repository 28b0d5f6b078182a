package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/apperr"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/dto"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/grading"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/model"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/progression"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/repository"
)

// AdminModuleService owns the authoring surface: products and modules
// with their lessons and questions. All content validation happens
// here, before anything is persisted, so a malformed answer key can
// never reach the grading path.
type AdminModuleService interface {
	CreateProduct(req dto.ProductCreateDTO) (*dto.ProductResponseDTO, error)
	CreateModule(req dto.ModuleCreateDTO) (*dto.ModuleDetailDTO, error)
}

type adminModuleService struct {
	productRepo repository.ProductRepository
	moduleRepo  repository.ModuleRepository
	moduleSvc   ModuleService
}

func NewAdminModuleService(
	productRepo repository.ProductRepository,
	moduleRepo repository.ModuleRepository,
	moduleSvc ModuleService,
) AdminModuleService {
	return &adminModuleService{
		productRepo: productRepo,
		moduleRepo:  moduleRepo,
		moduleSvc:   moduleSvc,
	}
}

func (s *adminModuleService) CreateProduct(req dto.ProductCreateDTO) (*dto.ProductResponseDTO, error) {
	product := model.Product{
		Name:        req.Name,
		Description: req.Description,
	}

	if req.TierThresholds != nil {
		var thresholds progression.TierThresholds
		if err := copier.Copy(&thresholds, req.TierThresholds); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "error reading tier thresholds", err)
		}
		if err := thresholds.Validate(); err != nil {
			return nil, err
		}
		raw, err := json.Marshal(thresholds)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "error encoding tier thresholds", err)
		}
		product.TierThresholds = datatypes.JSON(raw)
	}

	if err := s.productRepo.Create(&product); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Newf(apperr.KindConflict, "product named %q already exists", req.Name)
		}
		log.Error().Err(err).Str("name", req.Name).Msg("CreateProduct: database error")
		return nil, apperr.Wrap(apperr.KindInternal, "error creating product", err)
	}

	log.Info().Str("product_id", product.ID.String()).Str("name", product.Name).Msg("Product created")

	resp := dto.ProductResponseDTO{
		ID:             product.ID,
		Name:           product.Name,
		Description:    product.Description,
		TierThresholds: req.TierThresholds,
		CreatedAt:      product.CreatedAt,
	}
	return &resp, nil
}

func (s *adminModuleService) CreateModule(req dto.ModuleCreateDTO) (*dto.ModuleDetailDTO, error) {
	violations := validateModuleContent(req)
	if len(violations) > 0 {
		return nil, apperr.Validation("invalid module content", violations...)
	}

	if req.ProductID != nil {
		if _, err := s.productRepo.FindByID(*req.ProductID); err != nil {
			return nil, orNotFound(err, fmt.Sprintf("product %s not found", req.ProductID))
		}
	}

	module := model.Module{
		ProductID:       req.ProductID,
		Title:           req.Title,
		Description:     req.Description,
		Type:            req.Type,
		PassThreshold:   req.PassThreshold,
		TierDetermining: req.TierDetermining,
		RetakesAllowed:  req.RetakesAllowed,
	}

	for _, qDto := range req.Questions {
		module.Questions = append(module.Questions, buildQuestion(qDto))
	}
	for _, lDto := range req.Lessons {
		lesson := model.Lesson{
			Title:    lDto.Title,
			Position: lDto.Position,
			VideoURL: lDto.VideoURL,
			HasQuiz:  lDto.HasQuiz,
		}
		for _, qDto := range lDto.Questions {
			lesson.Questions = append(lesson.Questions, buildQuestion(qDto))
		}
		module.Lessons = append(module.Lessons, lesson)
	}

	if err := s.moduleRepo.Create(&module); err != nil {
		log.Error().Err(err).Str("title", req.Title).Msg("CreateModule: database error")
		return nil, apperr.Wrap(apperr.KindInternal, "error creating module", err)
	}

	log.Info().
		Str("module_id", module.ID.String()).
		Str("type", module.Type).
		Int("questions", len(module.Questions)).
		Int("lessons", len(module.Lessons)).
		Msg("Module created")

	return s.moduleSvc.GetModuleDetails(module.ID, true)
}

func buildQuestion(qDto dto.QuestionCreateDTO) model.Question {
	options, _ := json.Marshal(qDto.Options)
	return model.Question{
		Text:          qDto.Text,
		Type:          qDto.Type,
		Position:      qDto.Position,
		Options:       datatypes.JSON(options),
		CorrectAnswer: datatypes.JSON(qDto.CorrectAnswer),
	}
}

// validateModuleContent collects every violation in one pass so the
// author sees them all at once.
func validateModuleContent(req dto.ModuleCreateDTO) []string {
	var violations []string

	switch req.Type {
	case model.ModuleTypeAssessment:
		if len(req.Questions) == 0 {
			violations = append(violations, "an assessment module requires at least one question")
		}
		if len(req.Lessons) > 0 {
			violations = append(violations, "an assessment module cannot carry lessons")
		}
	case model.ModuleTypeCourse:
		if len(req.Lessons) == 0 {
			violations = append(violations, "a course module requires at least one lesson")
		}
		if len(req.Questions) > 0 {
			violations = append(violations, "a course module carries questions on its lessons, not at top level")
		}
	}

	if req.TierDetermining && req.Type != model.ModuleTypeAssessment {
		violations = append(violations, "only assessment modules can be tier determining")
	}

	violations = append(violations, validateQuestionSet("module", req.Questions)...)

	lessonPositions := make(map[int]bool)
	for _, lesson := range req.Lessons {
		if lessonPositions[lesson.Position] {
			violations = append(violations, fmt.Sprintf("duplicate lesson position %d", lesson.Position))
		}
		lessonPositions[lesson.Position] = true

		if lesson.HasQuiz && len(lesson.Questions) == 0 {
			violations = append(violations, fmt.Sprintf("lesson %q declares a quiz but has no questions", lesson.Title))
		}
		if !lesson.HasQuiz && len(lesson.Questions) > 0 {
			violations = append(violations, fmt.Sprintf("lesson %q carries questions but has_quiz is false", lesson.Title))
		}
		violations = append(violations, validateQuestionSet(fmt.Sprintf("lesson %q", lesson.Title), lesson.Questions)...)
	}

	return violations
}

func validateQuestionSet(scope string, questions []dto.QuestionCreateDTO) []string {
	var violations []string
	positions := make(map[int]bool)

	for _, q := range questions {
		if positions[q.Position] {
			violations = append(violations, fmt.Sprintf("%s: duplicate question position %d", scope, q.Position))
		}
		positions[q.Position] = true

		qType := grading.QuestionType(q.Type)
		if (qType == grading.TypeMCQ || qType == grading.TypeMSQ) && len(q.Options) < 2 {
			violations = append(violations, fmt.Sprintf("%s: question %d of type %s needs at least two options", scope, q.Position, q.Type))
		}

		key, err := grading.ParseAnswerKey(json.RawMessage(q.CorrectAnswer))
		if err != nil {
			violations = append(violations, fmt.Sprintf("%s: question %d: %v", scope, q.Position, err))
			continue
		}

		if qType != grading.TypeMSQ && len(key) != 1 {
			violations = append(violations, fmt.Sprintf("%s: question %d of type %s must have exactly one correct option", scope, q.Position, q.Type))
		}

		if len(q.Options) > 0 {
			known := make(map[string]bool, len(q.Options))
			for _, opt := range q.Options {
				known[opt.ID] = true
			}
			for _, id := range key.IDs() {
				if !known[id] {
					violations = append(violations, fmt.Sprintf("%s: question %d: correct option %q is not among the options", scope, q.Position, id))
				}
			}
		}
	}
	return violations
}
