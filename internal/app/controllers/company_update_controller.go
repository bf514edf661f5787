package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lakshya/placement-portal/internal/app/models/dto"
	"github.com/lakshya/placement-portal/internal/app/services"
	"github.com/lakshya/placement-portal/internal/middleware"
	"github.com/rs/zerolog"
)

// CompanyUpdateController handles company update (job posting) operations
type CompanyUpdateController struct {
	companyUpdateService services.CompanyUpdateService
	logger               zerolog.Logger
}

// NewCompanyUpdateController creates a new CompanyUpdateController
func NewCompanyUpdateController(companyUpdateService services.CompanyUpdateService, logger zerolog.Logger) *CompanyUpdateController {
	return &CompanyUpdateController{
		companyUpdateService: companyUpdateService,
		logger:               logger,
	}
}

// ListCompanyUpdates lists the updates visible to the caller
// @Summary List company updates
// @Description Admins see all updates, coordinators their own, students only published ones
// @Tags company-updates
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter" Enums(draft, pending_approval, approved, rejected, published)
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.CompanyUpdate}} "Company updates retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid query"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Status filter not allowed for role"
// @Router /company-updates [get]
func (c *CompanyUpdateController) ListCompanyUpdates(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	var query dto.CompanyUpdateListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		respondBindError(ctx, err)
		return
	}

	result, err := c.companyUpdateService.List(ctx.Request.Context(), principal, query, pageFromQuery(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, ""))
}

// GetCompanyUpdate returns one company update
// @Summary Get a company update
// @Tags company-updates
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company update ID"
// @Success 200 {object} dto.APIResponse{data=models.CompanyUpdate} "Company update retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid ID"
// @Failure 404 {object} dto.ErrorResponse "Company update not found"
// @Router /company-updates/{id} [get]
func (c *CompanyUpdateController) GetCompanyUpdate(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	id, err := parseIDParam(ctx, "id")
	if err != nil {
		respondInvalidID(ctx, "company update")
		return
	}

	update, err := c.companyUpdateService.Get(ctx.Request.Context(), principal, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(update, ""))
}

// CreateCompanyUpdate creates a draft
// @Summary Create a company update
// @Description Creates a draft owned by the calling coordinator
// @Tags company-updates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CompanyUpdateRequest true "Company update content"
// @Success 201 {object} dto.APIResponse{data=models.CompanyUpdate} "Company update created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 403 {object} dto.ErrorResponse "Coordinator role required"
// @Failure 404 {object} dto.ErrorResponse "Coordinator profile not found"
// @Router /company-updates [post]
func (c *CompanyUpdateController) CreateCompanyUpdate(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	var req dto.CompanyUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	update, err := c.companyUpdateService.Create(ctx.Request.Context(), principal, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("id", update.ID).Int64("userID", principal.AccountID).Msg("Company update created")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(update, "Company update created"))
}

// UpdateCompanyUpdate edits a draft or rejected update
// @Summary Edit a company update
// @Tags company-updates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company update ID"
// @Param request body dto.CompanyUpdateRequest true "Company update content"
// @Success 200 {object} dto.APIResponse{data=models.CompanyUpdate} "Company update saved"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 403 {object} dto.ErrorResponse "Coordinator role required"
// @Failure 404 {object} dto.ErrorResponse "Company update not found"
// @Failure 409 {object} dto.ErrorResponse "Company update is under review or published"
// @Router /company-updates/{id} [put]
func (c *CompanyUpdateController) UpdateCompanyUpdate(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	id, err := parseIDParam(ctx, "id")
	if err != nil {
		respondInvalidID(ctx, "company update")
		return
	}

	var req dto.CompanyUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	update, err := c.companyUpdateService.Update(ctx.Request.Context(), principal, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(update, "Company update saved"))
}

// UpdateCompanyUpdateStatus moves an update through review
// @Summary Change company update status
// @Description Coordinators submit drafts for approval. Admins approve, reject or publish, optionally with notes.
// @Tags company-updates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company update ID"
// @Param request body dto.UpdateStatusRequest true "Target status"
// @Success 200 {object} dto.APIResponse{data=models.CompanyUpdate} "Status changed"
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 403 {object} dto.ErrorResponse "Status not allowed for role"
// @Failure 404 {object} dto.ErrorResponse "Company update not found"
// @Failure 409 {object} dto.ErrorResponse "Transition not allowed from current status"
// @Router /company-updates/{id}/status [put]
func (c *CompanyUpdateController) UpdateCompanyUpdateStatus(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	id, err := parseIDParam(ctx, "id")
	if err != nil {
		respondInvalidID(ctx, "company update")
		return
	}

	var req dto.UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	update, err := c.companyUpdateService.UpdateStatus(ctx.Request.Context(), principal, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Int64("id", id).
		Str("status", string(update.Status)).
		Int64("userID", principal.AccountID).
		Msg("Company update status changed")

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(update, "Status updated"))
}

// DeleteCompanyUpdate removes a draft or rejected update
// @Summary Delete a company update
// @Tags company-updates
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company update ID"
// @Success 200 {object} dto.APIResponse "Company update deleted"
// @Failure 403 {object} dto.ErrorResponse "Coordinator role required"
// @Failure 404 {object} dto.ErrorResponse "Company update not found"
// @Failure 409 {object} dto.ErrorResponse "Company update is under review or published"
// @Router /company-updates/{id} [delete]
func (c *CompanyUpdateController) DeleteCompanyUpdate(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	id, err := parseIDParam(ctx, "id")
	if err != nil {
		respondInvalidID(ctx, "company update")
		return
	}

	if err := c.companyUpdateService.Delete(ctx.Request.Context(), principal, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Company update deleted"))
}
