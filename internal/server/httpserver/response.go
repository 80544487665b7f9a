package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vivekprasad7/hc-youtube-backend/internal/common"
	"github.com/vivekprasad7/hc-youtube-backend/internal/logging"
)

const msgSomethingWentWrong = "Something went wrong"

type apiResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

type apiError struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respond(w http.ResponseWriter, status int, data any, message string) {
	if data == nil {
		data = struct{}{}
	}
	writeJSON(w, status, apiResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

// statusFor maps an error kind to its HTTP status. For a *common.Error only
// its own Kind counts; the kind of its cause is ignored.
func statusFor(err error) int {
	var e *common.Error
	if errors.As(err, &e) {
		return kindStatus(e.Kind)
	}
	return kindStatus(err)
}

func kindStatus(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrUpload):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the failure envelope for err. Causes are logged, never sent.
func fail(ctx context.Context, w http.ResponseWriter, log logging.Logger, err error) {
	status := statusFor(err)
	message := common.MessageOf(err, msgSomethingWentWrong)

	if status == http.StatusInternalServerError {
		log.Error(ctx, "request failed", "error", err)
		message = msgSomethingWentWrong
	} else {
		log.Debug(ctx, "request rejected", "status", status, "error", err)
	}

	writeJSON(w, status, apiError{
		StatusCode: status,
		Message:    message,
		Success:    false,
		Errors:     []string{},
	})
}
