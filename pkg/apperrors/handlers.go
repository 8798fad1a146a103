package apperrors

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the JSON envelope for failed requests.
type ErrorResponse struct {
	Error *AppError `json:"error"`
}

// Respond writes an error to the client, surfacing AppErrors unchanged and
// wrapping everything else as an internal error.
func Respond(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = Internal(err)
	}

	if appErr.HTTPCode >= 500 {
		slog.Error("request failed", "code", appErr.Code, "domain", appErr.Domain, "err", appErr.Unwrap())
	}

	c.JSON(appErr.HTTPCode, ErrorResponse{Error: appErr})
}
