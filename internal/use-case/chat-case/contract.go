package chat_case

import (
	"context"

	"github.com/Saff9/campus-connect/internal/dtos/chat_dto"
	"github.com/Saff9/campus-connect/internal/entity"
	"github.com/Saff9/campus-connect/internal/errors"
	"github.com/Saff9/campus-connect/internal/websocket"
)

type ChatService interface {
	// Send persists the message and only then hands it to the broadcaster.
	Send(ctx context.Context, senderID string, in websocket.SendMessageInput) (*entity.Message, error)
	GetMessages(ctx context.Context, userID, groupID, channel string, req *chat_dto.GetMessagesRequest) (*chat_dto.MessageHistoryResponse, *errors.AppError)
}
