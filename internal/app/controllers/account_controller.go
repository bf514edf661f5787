package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lakshya/placement-portal/internal/app/models/dto"
	"github.com/lakshya/placement-portal/internal/app/services"
	"github.com/lakshya/placement-portal/internal/middleware"
	"github.com/rs/zerolog"
)

// AccountController handles admin account management
type AccountController struct {
	accountService services.AccountService
	logger         zerolog.Logger
}

// NewAccountController creates a new AccountController
func NewAccountController(accountService services.AccountService, logger zerolog.Logger) *AccountController {
	return &AccountController{
		accountService: accountService,
		logger:         logger,
	}
}

// ListAccounts lists accounts for administrators
// @Summary List accounts
// @Description Paginated account listing, filterable by role, active flag and a username/email search
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param role query string false "Role filter" Enums(admin, coordinator, student)
// @Param isActive query bool false "Active flag filter"
// @Param search query string false "Username or email substring"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]models.Account}} "Accounts retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid query"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Router /admin/accounts [get]
func (c *AccountController) ListAccounts(ctx *gin.Context) {
	var query dto.AccountListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		respondBindError(ctx, err)
		return
	}

	result, err := c.accountService.ListAccounts(ctx.Request.Context(), query, pageFromQuery(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, ""))
}

// UpdateAccountStatus activates or deactivates an account
// @Summary Activate or deactivate an account
// @Description A deactivated account can no longer log in. Administrators cannot deactivate themselves.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Param request body dto.UpdateAccountStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=models.Account} "Account updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Router /admin/accounts/{id}/status [patch]
func (c *AccountController) UpdateAccountStatus(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	id, err := parseIDParam(ctx, "id")
	if err != nil {
		respondInvalidID(ctx, "account")
		return
	}

	var req dto.UpdateAccountStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	account, err := c.accountService.SetActive(ctx.Request.Context(), principal, id, *req.IsActive)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().
		Int64("accountID", id).
		Bool("isActive", account.IsActive).
		Int64("changedBy", principal.AccountID).
		Msg("Account status changed")

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(account, "Account status updated"))
}
