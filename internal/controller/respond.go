// Package controller holds helpers shared by the admin and learner
// handler packages.
package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/apperr"
	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/dto"
)

// RespondError maps a service error onto the HTTP surface using the
// taxonomy's status mapping, carrying all collected violation details.
func RespondError(ctx *gin.Context, err error) {
	ctx.JSON(apperr.HTTPStatus(err), dto.ErrorResponse{
		Message: err.Error(),
		Details: apperr.DetailsOf(err),
	})
}

// ParseUUIDParam parses a uuid path parameter, responding with a 400 on
// failure. The bool reports whether the handler should continue.
func ParseUUIDParam(ctx *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		ctx.JSON(400, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return uuid.Nil, false
	}
	return id, true
}

// ParseUUIDQuery parses a required uuid query parameter.
func ParseUUIDQuery(ctx *gin.Context, name string) (uuid.UUID, bool) {
	raw := ctx.Query(name)
	if raw == "" {
		ctx.JSON(400, dto.ErrorResponse{Message: "Missing required query parameter " + name})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		ctx.JSON(400, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return uuid.Nil, false
	}
	return id, true
}
