package chat_handler

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/Saff9/campus-connect/internal/dtos/chat_dto"
	"github.com/Saff9/campus-connect/internal/errors"
	"github.com/Saff9/campus-connect/internal/handlers"
	"github.com/Saff9/campus-connect/internal/middleware"
	chat_case "github.com/Saff9/campus-connect/internal/use-case/chat-case"
	"github.com/Saff9/campus-connect/internal/websocket"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type ChatHandler struct {
	service  chat_case.ChatService
	validate *validator.Validate
}

func NewChatHandler(service chat_case.ChatService, validate *validator.Validate) *ChatHandler {
	return &ChatHandler{service: service, validate: validate}
}

// SendMessage is the HTTP twin of the send_message socket event. Both
// paths run through the same service so persistence always precedes
// broadcast.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) *errors.AppError {
	userID := middleware.GetUserID(r.Context())
	groupID := chi.URLParam(r, "groupId")
	channel := chi.URLParam(r, "channel")

	var req chat_dto.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return errors.BadRequest("invalid request body", err)
	}
	if err := h.validate.Struct(&req); err != nil {
		return errors.BadRequest("invalid message", err)
	}

	msg, err := h.service.Send(r.Context(), userID, websocket.SendMessageInput{
		GroupID:     groupID,
		Channel:     channel,
		Content:     req.Content,
		MessageType: req.MessageType,
		ReplyTo:     req.ReplyTo,
	})
	if err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return appErr
		}
		return errors.Internal("failed to send message", err)
	}

	handlers.CreateResponse(w, http.StatusCreated, "CREATED", "message sent", chat_dto.MessageResponse{Message: msg})
	return nil
}

func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) *errors.AppError {
	userID := middleware.GetUserID(r.Context())
	groupID := chi.URLParam(r, "groupId")
	channel := chi.URLParam(r, "channel")

	req := chat_dto.GetMessagesRequest{
		Before: r.URL.Query().Get("before"),
	}
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)
		if err != nil {
			return errors.BadRequest("invalid limit", err)
		}
		req.Limit = limit
	}
	if err := h.validate.Struct(&req); err != nil {
		return errors.BadRequest("invalid history query", err)
	}

	history, appErr := h.service.GetMessages(r.Context(), userID, groupID, channel, &req)
	if appErr != nil {
		return appErr
	}

	handlers.CreateResponse(w, http.StatusOK, "OK", "", history)
	return nil
}
