package handlers

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"

	"github.com/Saff9/campus-connect/internal/dtos"
	"github.com/Saff9/campus-connect/internal/errors"
	"github.com/Saff9/campus-connect/internal/middleware"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// AppHandler lets endpoints return an AppError instead of writing error
// responses inline.
type AppHandler func(w http.ResponseWriter, r *http.Request) *errors.AppError

func WrapHandler(h AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if appErr := h(w, r); appErr != nil {
			log.Error().
				Err(appErr).
				Int("code", appErr.Code).
				Str("requestID", middleware.GetRequestID(r.Context())).
				Str("path", r.URL.Path).
				Msg("request failed")

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(appErr.Code)
			_ = json.NewEncoder(w).Encode(dtos.Response[any]{
				Code:    appErr.Code,
				Status:  http.StatusText(appErr.Code),
				Message: appErr.Message,
			})
		}
	}
}

func CreateResponse[T any](w http.ResponseWriter, code int, status, message string, data T) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(dtos.Response[T]{
		Code:    code,
		Status:  status,
		Message: message,
		Data:    data,
	})
}
