package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/heavybid/auction-media/internal/utils/platformerrors"
)

// ErrorResponse represents an error response with platform error details
type ErrorResponse struct {
	Code      string `json:"code,omitempty"` // UUID from PlatformError
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// HandleError handles domain errors and returns appropriate HTTP responses
func HandleError(reqCtx *gin.Context, err error, message string) {
	var domainErr *platformerrors.PlatformError
	if errors.As(err, &domainErr) {
		statusCode := platformerrors.ErrorTypeToHTTPStatus(domainErr.GetErrorType())

		errorMessage := domainErr.Message
		if errorMessage == "" {
			errorMessage = message
		}

		reqCtx.AbortWithStatusJSON(statusCode, ErrorResponse{
			Code:      domainErr.UUID,
			Error:     errorMessage,
			RequestID: domainErr.RequestID,
		})
		return
	}
	reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error: message,
	})
}

// HandleNewError creates a new typed error at the handler layer and writes it
func HandleNewError(reqCtx *gin.Context, errorType platformerrors.ErrorType, message string, uuid string) {
	ctx := reqCtx.Request.Context()
	err := platformerrors.NewError(ctx, platformerrors.LayerHandler, errorType, message, nil, uuid)

	reqCtx.AbortWithStatusJSON(platformerrors.ErrorTypeToHTTPStatus(err.GetErrorType()), ErrorResponse{
		Code:      err.UUID,
		Error:     message,
		RequestID: err.RequestID,
	})
}
