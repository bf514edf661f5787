package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lakshya/placement-portal/internal/app/models"
	"github.com/lakshya/placement-portal/internal/app/models/dto"
	"github.com/lakshya/placement-portal/internal/middleware"
	"github.com/lakshya/placement-portal/internal/pkg/helpers"
)

// parseIDParam parses a positive ID from the request path
func parseIDParam(ctx *gin.Context, paramName string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param(paramName), 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("%s must be positive", paramName)
	}
	return id, nil
}

// respondInvalidID writes the 400 for a malformed path ID.
func respondInvalidID(ctx *gin.Context, what string) {
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+what+" ID")
	errorDetail = errorDetail.WithDetails(what + " ID must be a positive number")
	ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
}

// respondBindError writes the 400 for a request that failed binding.
func respondBindError(ctx *gin.Context, err error) {
	errorDetail := dto.HandleValidationError(err)
	ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
}

// requirePrincipal returns the caller set by the auth gate. Routes without
// the gate answer 401.
func requirePrincipal(ctx *gin.Context) (models.Principal, bool) {
	principal, ok := middleware.GetPrincipal(ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
	}
	return principal, ok
}

func pageFromQuery(ctx *gin.Context) models.Page {
	number, size := helpers.ParsePaginationParams(ctx)
	return models.Page{Number: number, Size: size}
}
