package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/LDK/javascriv-api/internal/http/middleware"
	apperrors "github.com/LDK/javascriv-api/pkg/errors"
	"github.com/LDK/javascriv-api/pkg/logger"

	"github.com/labstack/echo/v4"
)

const (
	jsonKeyError     = "error"
	jsonKeyRequestID = "request_id"
	unknownRequestID = "unknown"
	msgInternalError = "internal server error"
)

// CustomHTTPErrorHandler maps sentinel errors to HTTP status codes, hides the
// detail of server errors and logs every failure with its request id.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, message := statusFor(err)

	requestID := middleware.GetRequestID(c)
	if requestID == "" {
		requestID = c.Response().Header().Get(echo.HeaderXRequestID)
	}
	if requestID == "" {
		requestID = unknownRequestID
	}

	logged := logger.SanitizeLogMessage(err.Error())
	if code >= http.StatusInternalServerError {
		c.Logger().Errorf("request_id=%s status=%d error=%s", requestID, code, logged)
		message = msgInternalError
	} else {
		c.Logger().Warnf("request_id=%s status=%d error=%s", requestID, code, logged)
	}

	body := map[string]string{
		jsonKeyError:     message,
		jsonKeyRequestID: requestID,
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, body)
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

func statusFor(err error) (int, string) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if msg, ok := httpErr.Message.(string); ok {
			return httpErr.Code, msg
		}
		return httpErr.Code, fmt.Sprintf("%v", httpErr.Message)
	}

	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrBadRequest),
		errors.Is(err, apperrors.ErrMissingFields):
		code = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized),
		errors.Is(err, apperrors.ErrInvalidCredentials):
		code = http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, apperrors.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict):
		code = http.StatusConflict
	}

	message := http.StatusText(code)
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && code < http.StatusInternalServerError {
		message = appErr.Message
	}
	return code, message
}
