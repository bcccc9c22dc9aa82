package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	featuredomain "github.com/railzwaylabs/riskscore/internal/feature/domain"
	modeldomain "github.com/railzwaylabs/riskscore/internal/model/domain"
	scoringdomain "github.com/railzwaylabs/riskscore/internal/scoring/domain"
	"go.uber.org/zap"
)

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrNotFound       = errors.New("not_found")
	ErrInternal       = errors.New("internal_error")
)

type apiError struct {
	status  int
	errType string
	message string
}

// AbortWithError records err on the context and stops the handler chain.
// ErrorHandlingMiddleware renders it.
func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func classifyError(err error) apiError {
	switch {
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, scoringdomain.ErrInvalidRequest):
		return apiError{status: http.StatusBadRequest, errType: "invalid_request", message: err.Error()}
	case errors.Is(err, ErrNotFound):
		return apiError{status: http.StatusNotFound, errType: "not_found", message: "resource not found"}
	case errors.Is(err, modeldomain.ErrNoModel):
		return apiError{status: http.StatusServiceUnavailable, errType: "no_model", message: "no trained model is loaded"}
	case errors.Is(err, featuredomain.ErrEmptyRoster):
		return apiError{status: http.StatusConflict, errType: "empty_roster", message: "no customers have been imported"}
	default:
		return apiError{status: http.StatusInternalServerError, errType: "internal_error", message: "internal error"}
	}
}

// ErrorHandlingMiddleware writes `{"error": {"type", "message"}}` for the
// last error recorded by a handler.
func (s *Server) ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		apiErr := classifyError(err)
		if apiErr.status >= http.StatusInternalServerError {
			s.log.Error("request failed",
				zap.String("path", c.FullPath()),
				zap.String("request_id", requestID(c)),
				zap.Error(err),
			)
		}

		c.JSON(apiErr.status, gin.H{
			"error": gin.H{
				"type":    apiErr.errType,
				"message": apiErr.message,
			},
		})
	}
}
