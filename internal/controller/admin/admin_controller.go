package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/controller"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/dto"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/service"
)

type AdminController struct {
	adminModuleService service.AdminModuleService
	moduleService      service.ModuleService
	progressionService service.ProgressionService
}

func NewAdminController(
	adminModuleService service.AdminModuleService,
	moduleService service.ModuleService,
	progressionService service.ProgressionService,
) *AdminController {
	return &AdminController{
		adminModuleService: adminModuleService,
		moduleService:      moduleService,
		progressionService: progressionService,
	}
}

// CreateProduct godoc
// @Summary (Admin) Create a Job Readiness product
// @Description Create a product, optionally with a custom tier threshold table. Without one the default table {0-60, 61-80, 81-100} applies.
// @Tags Admin
// @Accept json
// @Produce json
// @Param product body dto.ProductCreateDTO true "Product definition"
// @Success 201 {object} dto.ProductResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid tier thresholds"
// @Failure 409 {object} dto.ErrorResponse "Product name already exists"
// @Router /admin/products [post]
func (c *AdminController) CreateProduct(ctx *gin.Context) {
	var req dto.ProductCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	product, err := c.adminModuleService.CreateProduct(req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, product)
}

// CreateModule godoc
// @Summary (Admin) Create a module with its content
// @Description Create a course (lessons, optional quizzes) or an assessment (questions) in one request. Every correct answer is normalized at authoring time; malformed encodings are rejected with the full violation list.
// @Tags Admin
// @Accept json
// @Produce json
// @Param module body dto.ModuleCreateDTO true "Module definition"
// @Success 201 {object} dto.ModuleDetailDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid module content"
// @Failure 404 {object} dto.ErrorResponse "Referenced product not found"
// @Router /admin/modules [post]
func (c *AdminController) CreateModule(ctx *gin.Context) {
	var req dto.ModuleCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	log.Info().Str("title", req.Title).Str("type", req.Type).Msg("Admin CreateModule: received request")

	module, err := c.adminModuleService.CreateModule(req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, module)
}

// GetModule godoc
// @Summary (Admin) Get a module including answer keys
// @Tags Admin
// @Produce json
// @Param module_id path string true "Module ID"
// @Success 200 {object} dto.ModuleDetailDTO
// @Failure 404 {object} dto.ErrorResponse "Module not found"
// @Router /admin/modules/{module_id} [get]
func (c *AdminController) GetModule(ctx *gin.Context) {
	moduleID, ok := controller.ParseUUIDParam(ctx, "module_id")
	if !ok {
		return
	}

	module, err := c.moduleService.GetModuleDetails(moduleID, true)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, module)
}

// OverrideProgression godoc
// @Summary (Admin) Override a student's star level and tier
// @Description The documented escape hatch around the automatic promotion rules. Requires a non-empty reason; every override is written to the audit trail.
// @Tags Admin
// @Accept json
// @Produce json
// @Param student_id path string true "Student ID"
// @Param override body dto.ProgressionOverrideDTO true "Target state and mandatory reason"
// @Success 200 {object} dto.ProgressionDTO
// @Failure 400 {object} dto.ErrorResponse "Missing reason or invalid target state"
// @Failure 404 {object} dto.ErrorResponse "Product not found"
// @Router /admin/students/{student_id}/progression/override [post]
func (c *AdminController) OverrideProgression(ctx *gin.Context) {
	studentID, ok := controller.ParseUUIDParam(ctx, "student_id")
	if !ok {
		return
	}

	var req dto.ProgressionOverrideDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	result, err := c.progressionService.Override(ctx.Request.Context(), studentID, req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}
