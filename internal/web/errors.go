package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err, statusCode), or respondErr to derive the
//     status from the error
//  3. Error is mapped via core.MapError to get a user-friendly message
//  4. Technical error + context is logged with the request ID for correlation
//  5. The JSON body carries the user message; file-format errors also carry
//     their raw text, which tells the user which line or column to fix

import (
	"context"
	"errors"
	"net/http"

	"github.com/JonMunkholm/quizdeck/internal/core"
	"github.com/JonMunkholm/quizdeck/internal/drive"
	"github.com/JonMunkholm/quizdeck/internal/logging"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Detail  string `json:"detail,omitempty"`
}

// Request-level failures detected by handlers.
var (
	errAuthRequired = errors.New("authentication required")
	errNoFile       = errors.New("no file provided")
	errBadRequest   = errors.New("invalid request")
	errBadID        = errors.New("invalid request: id must be a positive integer")
)

// respondError logs err and writes it as a JSON error response.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	log := logging.FromContext(r.Context()).With(
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)
	switch {
	case statusCode >= http.StatusInternalServerError:
		log.Error("request error")
	case !core.IsUserFacing(err):
		log.Error("unmapped request error")
	default:
		log.Warn("request error")
	}

	resp := ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}
	if core.IsFormatError(err) {
		resp.Detail = err.Error()
	}
	writeJSONStatus(w, r, statusCode, resp)
}

// respondErr writes err with the status statusFor picks.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	respondError(w, r, err, statusFor(err))
}

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	var folderTooLarge *drive.FolderTooLargeError
	var tooManyFiles *drive.TooManyFilesError

	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case core.IsFormatError(err),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, errNoFile),
		errors.Is(err, errBadRequest),
		errors.Is(err, errBadID),
		errors.Is(err, drive.ErrFolderIDRequired),
		errors.As(err, &folderTooLarge),
		errors.As(err, &tooManyFiles):
		return http.StatusBadRequest
	case errors.Is(err, errAuthRequired):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, core.ErrTooManyUploads), errors.Is(err, core.ErrSourceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
