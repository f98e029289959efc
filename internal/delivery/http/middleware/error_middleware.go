package middleware

import (
	"errors"
	"net/http"

	"pcd-jobs-backend/internal/delivery/http/response"
	"pcd-jobs-backend/pkg/apperror"
	"pcd-jobs-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorDetail is the error body of a failed response.
type ErrorDetail struct {
	Kind  apperror.Kind `json:"kind"`
	State string        `json:"state,omitempty"`
}

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		reqID, _ := c.Get(requestIDKey)

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= http.StatusInternalServerError {
				// Never expose internal details to clients
				logger.Log.ErrorContext(c.Request.Context(), "Internal server error",
					"request_id", reqID, "path", c.FullPath(), "error", appErr.Err)
			}
			response.Error(c, appErr.Code, appErr.Message, ErrorDetail{Kind: appErr.Kind, State: appErr.State})
			return
		}

		logger.Log.ErrorContext(c.Request.Context(), "Unhandled error",
			"request_id", reqID, "path", c.FullPath(), "error", err)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.",
			ErrorDetail{Kind: apperror.KindInternal})
	}
}
