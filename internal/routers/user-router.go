package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Saff9/campus-connect/internal/handlers"
	"github.com/Saff9/campus-connect/internal/handlers/user-handler"
)

func registerUserRoutes(r chi.Router, h *user_handler.UserHandler, auth func(http.Handler) http.Handler) {
	r.Post("/auth/login", handlers.WrapHandler(h.Login))

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Post("/auth/logout", handlers.WrapHandler(h.Logout))
	})
}
