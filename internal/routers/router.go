package routers

import (
	"crypto/rsa"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"github.com/Saff9/campus-connect/internal/handlers"
	"github.com/Saff9/campus-connect/internal/handlers/chat-handler"
	"github.com/Saff9/campus-connect/internal/handlers/hub-handler"
	"github.com/Saff9/campus-connect/internal/handlers/user-handler"
	"github.com/Saff9/campus-connect/internal/middleware"
	"github.com/Saff9/campus-connect/internal/websocket"
)

type Deps struct {
	WS   *websocket.WSHandler
	Chat *chat_handler.ChatHandler
	User *user_handler.UserHandler
	Hub  *hub_handler.HubHandler

	PublicKey      *rsa.PublicKey
	Redis          *redis.Client
	AllowedOrigins []string
}

func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", handlers.WrapHandler(deps.Hub.Health))
	r.Get("/ws", deps.WS.ServeWS)

	auth := middleware.JWTAuth(deps.PublicKey, deps.Redis)

	r.Route("/api/v1", func(r chi.Router) {
		registerUserRoutes(r, deps.User, auth)
		registerChatRoutes(r, deps.Chat, auth)
		registerHubRoutes(r, deps.Hub, auth)
	})

	return r
}
