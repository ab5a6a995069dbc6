package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Saff9/campus-connect/internal/handlers"
	"github.com/Saff9/campus-connect/internal/handlers/hub-handler"
)

func registerHubRoutes(r chi.Router, h *hub_handler.HubHandler, auth func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Get("/hub/stats", handlers.WrapHandler(h.Stats))
		r.Get("/hub/rooms/{groupId}", handlers.WrapHandler(h.RoomStats))
		r.Get("/users/{userId}/status", handlers.WrapHandler(h.UserStatus))
	})
}
