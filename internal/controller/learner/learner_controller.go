package learner

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/controller"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/dto"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/service"
)

type LearnerController struct {
	moduleService      service.ModuleService
	assessmentService  service.AssessmentService
	progressService    service.ProgressService
	progressionService service.ProgressionService
}

func NewLearnerController(
	moduleService service.ModuleService,
	assessmentService service.AssessmentService,
	progressService service.ProgressService,
	progressionService service.ProgressionService,
) *LearnerController {
	return &LearnerController{
		moduleService:      moduleService,
		assessmentService:  assessmentService,
		progressService:    progressService,
		progressionService: progressionService,
	}
}

// GetAllModules godoc
// @Summary List available modules
// @Tags Learner
// @Produce json
// @Success 200 {array} dto.ModuleSummaryDTO
// @Failure 500 {object} dto.ErrorResponse
// @Router /modules [get]
func (c *LearnerController) GetAllModules(ctx *gin.Context) {
	modules, err := c.moduleService.GetAllModules()
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, modules)
}

// GetModuleDetails godoc
// @Summary Get a module's content
// @Description Full module detail for a learner. Answer keys are never included.
// @Tags Learner
// @Produce json
// @Param module_id path string true "Module ID"
// @Success 200 {object} dto.ModuleDetailDTO
// @Failure 404 {object} dto.ErrorResponse "Module not found"
// @Router /modules/{module_id} [get]
func (c *LearnerController) GetModuleDetails(ctx *gin.Context) {
	moduleID, ok := controller.ParseUUIDParam(ctx, "module_id")
	if !ok {
		return
	}

	module, err := c.moduleService.GetModuleDetails(moduleID, false)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, module)
}

// SubmitAssessment godoc
// @Summary Submit answers for an assessment module
// @Description Grades the submission and persists it exactly once per attempt. When retakes are disallowed a second submission returns 409 with the existing submission's identity.
// @Tags Learner
// @Accept json
// @Produce json
// @Param module_id path string true "Assessment module ID"
// @Param submission body dto.SubmitAssessmentDTO true "Student ID and answers keyed by question id"
// @Success 200 {object} dto.GradingResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid answers"
// @Failure 404 {object} dto.ErrorResponse "Module not found"
// @Failure 409 {object} dto.ErrorResponse "Already submitted"
// @Router /modules/{module_id}/submissions [post]
func (c *LearnerController) SubmitAssessment(ctx *gin.Context) {
	moduleID, ok := controller.ParseUUIDParam(ctx, "module_id")
	if !ok {
		return
	}

	var req dto.SubmitAssessmentDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	log.Info().
		Str("module_id", moduleID.String()).
		Str("student_id", req.StudentID.String()).
		Int("answer_count", len(req.Answers)).
		Msg("Received assessment submission")

	result, err := c.assessmentService.SubmitAssessment(ctx.Request.Context(), moduleID, req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetSubmissions godoc
// @Summary Get a student's submission history for a module
// @Tags Learner
// @Produce json
// @Param module_id path string true "Module ID"
// @Param student_id query string true "Student ID"
// @Success 200 {array} dto.SubmissionSummaryDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /modules/{module_id}/submissions [get]
func (c *LearnerController) GetSubmissions(ctx *gin.Context) {
	moduleID, ok := controller.ParseUUIDParam(ctx, "module_id")
	if !ok {
		return
	}
	studentID, ok := controller.ParseUUIDQuery(ctx, "student_id")
	if !ok {
		return
	}

	submissions, err := c.assessmentService.GetSubmissions(studentID, moduleID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, submissions)
}

// RecordVideoProgress godoc
// @Summary Record a video-watch progress event
// @Description Merges the event into lesson progress (never regressing) and recomputes module completion from scratch.
// @Tags Learner
// @Accept json
// @Produce json
// @Param lesson_id path string true "Lesson ID"
// @Param event body dto.LessonProgressEventDTO true "Watch event"
// @Success 200 {object} dto.ModuleProgressDTO
// @Failure 404 {object} dto.ErrorResponse "Lesson not found"
// @Router /lessons/{lesson_id}/progress [post]
func (c *LearnerController) RecordVideoProgress(ctx *gin.Context) {
	lessonID, ok := controller.ParseUUIDParam(ctx, "lesson_id")
	if !ok {
		return
	}

	var req dto.LessonProgressEventDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	progress, err := c.progressService.RecordVideoProgress(ctx.Request.Context(), lessonID, req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, progress)
}

// SubmitQuizAttempt godoc
// @Summary Submit a lesson quiz attempt
// @Description Grades the attempt (append-only history), updates lesson progress and returns the recomputed module progress.
// @Tags Learner
// @Accept json
// @Produce json
// @Param lesson_id path string true "Lesson ID"
// @Param attempt body dto.SubmitQuizAttemptDTO true "Student ID and answers"
// @Success 200 {object} dto.QuizAttemptResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Lesson has no quiz or invalid answers"
// @Failure 404 {object} dto.ErrorResponse "Lesson not found"
// @Router /lessons/{lesson_id}/quiz-attempts [post]
func (c *LearnerController) SubmitQuizAttempt(ctx *gin.Context) {
	lessonID, ok := controller.ParseUUIDParam(ctx, "lesson_id")
	if !ok {
		return
	}

	var req dto.SubmitQuizAttemptDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	result, err := c.progressService.SubmitQuizAttempt(ctx.Request.Context(), lessonID, req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetModuleProgress godoc
// @Summary Get a student's progress for a module
// @Tags Learner
// @Produce json
// @Param module_id path string true "Module ID"
// @Param student_id query string true "Student ID"
// @Success 200 {object} dto.ModuleProgressDTO
// @Failure 404 {object} dto.ErrorResponse "Module not found"
// @Router /modules/{module_id}/progress [get]
func (c *LearnerController) GetModuleProgress(ctx *gin.Context) {
	moduleID, ok := controller.ParseUUIDParam(ctx, "module_id")
	if !ok {
		return
	}
	studentID, ok := controller.ParseUUIDQuery(ctx, "student_id")
	if !ok {
		return
	}

	progress, err := c.progressService.GetModuleProgress(studentID, moduleID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, progress)
}

// GetProgression godoc
// @Summary Get a student's star level and tier for a product
// @Tags Learner
// @Produce json
// @Param student_id path string true "Student ID"
// @Param product_id query string true "Product ID"
// @Success 200 {object} dto.ProgressionDTO
// @Failure 404 {object} dto.ErrorResponse "Product not found"
// @Router /students/{student_id}/progression [get]
func (c *LearnerController) GetProgression(ctx *gin.Context) {
	studentID, ok := controller.ParseUUIDParam(ctx, "student_id")
	if !ok {
		return
	}
	productID, ok := controller.ParseUUIDQuery(ctx, "product_id")
	if !ok {
		return
	}

	progression, err := c.progressionService.GetProgression(studentID, productID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, progression)
}
