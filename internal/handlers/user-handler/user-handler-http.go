package user_handler

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/Saff9/campus-connect/internal/dtos/user_dto"
	"github.com/Saff9/campus-connect/internal/errors"
	"github.com/Saff9/campus-connect/internal/handlers"
	"github.com/Saff9/campus-connect/internal/middleware"
	user_case "github.com/Saff9/campus-connect/internal/use-case/user-case"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type UserHandler struct {
	service user_case.UserService
}

func NewUserHandler(service user_case.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) *errors.AppError {
	var req user_dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return errors.BadRequest("invalid request body", err)
	}

	auth, appErr := h.service.Login(r.Context(), &req)
	if appErr != nil {
		return appErr
	}

	handlers.CreateResponse(w, http.StatusOK, "OK", "login successful", auth)
	return nil
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) *errors.AppError {
	userID := middleware.GetUserID(r.Context())
	if appErr := h.service.Logout(r.Context(), userID); appErr != nil {
		return appErr
	}

	handlers.CreateResponse[any](w, http.StatusOK, "OK", "logged out", nil)
	return nil
}
