package service

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/m-deepankar-singh/cultus-platform-sub006/config"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/dto"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/model"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/repository"
)

// ModuleService is the read side of the catalog. GetModuleDetails with
// includeAnswers=false is the learner view: answer keys are stripped
// before the DTO leaves the service.
type ModuleService interface {
	GetAllModules() ([]dto.ModuleSummaryDTO, error)
	GetModuleDetails(moduleID uuid.UUID, includeAnswers bool) (*dto.ModuleDetailDTO, error)
}

type moduleService struct {
	moduleRepo repository.ModuleRepository
	cfg        *config.Config
}

func NewModuleService(moduleRepo repository.ModuleRepository, cfg *config.Config) ModuleService {
	return &moduleService{moduleRepo: moduleRepo, cfg: cfg}
}

func (s *moduleService) GetAllModules() ([]dto.ModuleSummaryDTO, error) {
	modules, err := s.moduleRepo.FindAllWithCounts()
	if err != nil {
		log.Error().Err(err).Msg("GetAllModules: repository error")
		return nil, orNotFound(err, "error fetching modules")
	}

	dtos := make([]dto.ModuleSummaryDTO, 0, len(modules))
	for _, m := range modules {
		dtos = append(dtos, dto.ModuleSummaryDTO{
			ID:              m.Module.ID,
			ProductID:       m.Module.ProductID,
			Title:           m.Module.Title,
			Description:     m.Module.Description,
			Type:            m.Module.Type,
			TierDetermining: m.Module.TierDetermining,
			QuestionCount:   m.QuestionCount,
			LessonCount:     m.LessonCount,
			CreatedAt:       m.Module.CreatedAt,
		})
	}
	return dtos, nil
}

func (s *moduleService) GetModuleDetails(moduleID uuid.UUID, includeAnswers bool) (*dto.ModuleDetailDTO, error) {
	module, err := s.moduleRepo.FindByIDWithContent(moduleID)
	if err != nil {
		return nil, orNotFound(err, fmt.Sprintf("module %s not found", moduleID))
	}

	resp := dto.ModuleDetailDTO{
		ID:              module.ID,
		ProductID:       module.ProductID,
		Title:           module.Title,
		Description:     module.Description,
		Type:            module.Type,
		PassThreshold:   passThreshold(module, s.cfg),
		TierDetermining: module.TierDetermining,
		RetakesAllowed:  module.RetakesAllowed,
		CreatedAt:       module.CreatedAt,
	}

	for _, q := range module.Questions {
		resp.Questions = append(resp.Questions, questionDTO(q, includeAnswers))
	}
	for _, lesson := range module.Lessons {
		lDto := dto.LessonDTO{
			ID:       lesson.ID,
			Title:    lesson.Title,
			Position: lesson.Position,
			VideoURL: lesson.VideoURL,
			HasQuiz:  lesson.HasQuiz,
		}
		for _, q := range lesson.Questions {
			lDto.Questions = append(lDto.Questions, questionDTO(q, includeAnswers))
		}
		resp.Lessons = append(resp.Lessons, lDto)
	}

	return &resp, nil
}

func questionDTO(q model.Question, includeAnswer bool) dto.QuestionDTO {
	var options []model.Option
	if len(q.Options) > 0 {
		if err := json.Unmarshal(q.Options, &options); err != nil {
			log.Warn().Err(err).Str("question_id", q.ID.String()).Msg("Question options could not be decoded")
		}
	}
	out := dto.QuestionDTO{
		ID:       q.ID,
		Text:     q.Text,
		Type:     q.Type,
		Position: q.Position,
	}
	for _, opt := range options {
		out.Options = append(out.Options, dto.OptionDTO{ID: opt.ID, Text: opt.Text})
	}
	if includeAnswer {
		out.CorrectAnswer = json.RawMessage(q.CorrectAnswer)
	}
	return out
}

// passThreshold resolves the effective pass threshold for a module:
// the module's own value when set, otherwise the configured default.
func passThreshold(module *model.Module, cfg *config.Config) float64 {
	if module.PassThreshold != nil {
		return *module.PassThreshold
	}
	return cfg.Grading.DefaultPassThreshold
}
