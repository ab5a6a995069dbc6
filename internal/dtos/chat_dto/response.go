package chat_dto

import "github.com/Saff9/campus-connect/internal/entity"

type MessageResponse struct {
	Message *entity.Message `json:"message"`
}

type MessageHistoryResponse struct {
	Messages   []entity.Message `json:"messages"`
	NextCursor string           `json:"next_cursor,omitempty"`
}
