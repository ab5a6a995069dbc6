package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Saff9/campus-connect/internal/handlers"
	"github.com/Saff9/campus-connect/internal/handlers/chat-handler"
)

func registerChatRoutes(r chi.Router, h *chat_handler.ChatHandler, auth func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Route("/groups/{groupId}/channels/{channel}/messages", func(r chi.Router) {
			r.Post("/", handlers.WrapHandler(h.SendMessage))
			r.Get("/", handlers.WrapHandler(h.GetMessages))
		})
	})
}
