package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Saff9/campus-connect/config"
	"github.com/Saff9/campus-connect/internal/dtos/chat_dto"
	"github.com/Saff9/campus-connect/internal/handlers/chat-handler"
	"github.com/Saff9/campus-connect/internal/handlers/hub-handler"
	"github.com/Saff9/campus-connect/internal/handlers/user-handler"
	"github.com/Saff9/campus-connect/internal/queue"
	"github.com/Saff9/campus-connect/internal/repo/group"
	"github.com/Saff9/campus-connect/internal/repo/message"
	"github.com/Saff9/campus-connect/internal/repo/user"
	"github.com/Saff9/campus-connect/internal/routers"
	chat_case "github.com/Saff9/campus-connect/internal/use-case/chat-case"
	user_case "github.com/Saff9/campus-connect/internal/use-case/user-case"
	"github.com/Saff9/campus-connect/internal/websocket"
	"github.com/Saff9/campus-connect/internal/worker"
	worker_handler "github.com/Saff9/campus-connect/internal/worker-handler"
	worker_service "github.com/Saff9/campus-connect/internal/worker-service"
	"github.com/Saff9/campus-connect/state"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	appState, err := state.InitAppState(ctx, cancel)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize application state")
	}
	defer appState.Close()

	validate := validator.New()
	if err := chat_dto.ObjectIDValidator(validate); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	// repositories
	userRepo := user.NewUserRepo(appState.DB)
	groupRepo := group.NewGroupRepo(appState.DB, appState.Redis)
	messageRepo := message.NewMessageRepo(appState.ChatDB)
	directory := group.NewDirectory(groupRepo)

	// realtime hub
	hub := websocket.NewHub(directory)
	defer hub.Close()

	// background workers
	mailer := worker_service.NewMailer(
		config.Conf.MAILER.SMTPHost,
		config.Conf.MAILER.SMTPPort,
		config.Conf.MAILER.Username,
		config.Conf.MAILER.Password,
		config.Conf.MAILER.From,
	)
	producer := queue.NewProducer(appState.Redis)
	jobHandler := worker_handler.NewHandler(appState.Redis, userRepo, mailer)
	pool := worker.NewPool(appState.Redis, jobHandler, 4)
	pool.Start(ctx)
	dlq := worker.NewDLQWorker(appState.Redis, appState.ChatDB)
	dlq.Start(ctx)

	// services
	chatService := chat_case.NewChatService(messageRepo, groupRepo, userRepo, hub, producer)
	userService := user_case.NewUserService(userRepo, appState.Redis, appState.JwtSecret.Private, validate)

	// websocket endpoint
	wsAuth := websocket.JWTWebSocketAuth(appState.JwtSecret.Public, appState.Redis)
	wsHandler := websocket.NewWSHandler(hub, chatService, directory, wsAuth, appState.Realtime.AllowedOrigins)
	wsHandler.Statuses = user.NewStatusStore(userRepo)
	wsHandler.HeartbeatTimeout = appState.Realtime.HeartbeatTimeout
	go wsHandler.StartCleanup(ctx)

	router := routers.NewRouter(routers.Deps{
		WS:             wsHandler,
		Chat:           chat_handler.NewChatHandler(chatService, validate),
		User:           user_handler.NewUserHandler(userService),
		Hub:            hub_handler.NewHubHandler(hub),
		PublicKey:      appState.JwtSecret.Public,
		Redis:          appState.Redis,
		AllowedOrigins: appState.Realtime.AllowedOrigins,
	})

	server := &http.Server{
		Addr:    ":" + config.Conf.App.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Str("app", config.Conf.App.Name).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}

	pool.Wait()
	log.Info().Msg("server stopped")
}
