package handlers

import (
	"net/http"

	"github.com/geocoder89/bookrental/internal/apperr"
	"github.com/geocoder89/bookrental/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func RespondError(ctx *gin.Context, err *apperr.Error) {
	ctx.JSON(err.Status(), err.Body(middlewares.RequestIDFrom(ctx)))
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, &apperr.Error{Kind: apperr.MalformedInput, Message: message, Details: details})
}

func RespondUnauthorized(ctx *gin.Context, kind apperr.Kind, message string) {
	RespondError(ctx, apperr.New(kind, message))
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, apperr.New(apperr.NotFound, message))
}

// RespondNotFoundErr is the lookup-failure shape of the user endpoints: 404
// carrying the store error.
func RespondNotFoundErr(ctx *gin.Context, message string, cause error) {
	e := apperr.New(apperr.NotFound, message)
	body := e.Body(middlewares.RequestIDFrom(ctx))
	body.Error = cause.Error()
	ctx.JSON(http.StatusNotFound, body)
}

func RespondConflict(ctx *gin.Context, message string) {
	RespondError(ctx, apperr.New(apperr.Conflict, message))
}

// RespondInternal reports a persistence failure and echoes the store error.
func RespondInternal(ctx *gin.Context, message string, cause error) {
	_ = ctx.Error(cause)
	RespondError(ctx, apperr.Persistence(message, cause))
}
