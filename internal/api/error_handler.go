package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hash066/bcm-approval/internal/engine"
	"github.com/hash066/bcm-approval/internal/hierarchy"
	"github.com/hash066/bcm-approval/internal/payload"
)

// APIError carries an HTTP status through the gin error chain.
type APIError struct {
	Code    int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrorHandlerMiddleware converts errors attached to the context into the
// unified envelope.
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()

			var apiErr *APIError
			if errors.As(err, &apiErr) {
				Error(c, apiErr.Code, apiErr.Message, apiErr.Detail)
			} else {
				Error(c, http.StatusInternalServerError, "internal server error", err.Error())
			}
		}
	}
}

// EngineError maps an engine/hierarchy error to the right HTTP status so
// UIs can refresh and retry instead of guessing from a generic failure.
func EngineError(c *gin.Context, err error) {
	var (
		finalized *engine.RequestAlreadyFinalizedError
		wrongRole *engine.WrongApproverRoleError
		invalid   *engine.InvalidDecisionError
		noNext    *engine.NoApproverAvailableError
		conflict  *engine.ConflictError
		unknown   *hierarchy.UnknownRoleError
	)
	switch {
	case errors.Is(err, engine.ErrNotFound):
		Error(c, http.StatusNotFound, "approval request not found", err.Error())
	case errors.As(err, &wrongRole):
		Error(c, http.StatusForbidden, "wrong approver role", err.Error())
	case errors.As(err, &finalized):
		Error(c, http.StatusBadRequest, "request already finalized", err.Error())
	case errors.As(err, &invalid):
		Error(c, http.StatusBadRequest, "invalid decision", err.Error())
	case errors.As(err, &unknown):
		Error(c, http.StatusBadRequest, "unknown role", err.Error())
	case errors.Is(err, payload.ErrUnknownRequestType):
		Error(c, http.StatusBadRequest, "unknown request type", err.Error())
	case errors.Is(err, payload.ErrInvalidPayload):
		Error(c, http.StatusBadRequest, "invalid payload", err.Error())
	case errors.As(err, &noNext):
		Error(c, http.StatusUnprocessableEntity, "no approver available", err.Error())
	case errors.As(err, &conflict):
		Error(c, http.StatusConflict, "concurrent update", err.Error())
	default:
		Error(c, http.StatusInternalServerError, "internal server error", err.Error())
	}
}
