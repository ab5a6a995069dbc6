package chat_case

import (
	"context"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Saff9/campus-connect/internal/dtos/chat_dto"
	"github.com/Saff9/campus-connect/internal/entity"
	"github.com/Saff9/campus-connect/internal/errors"
	"github.com/Saff9/campus-connect/internal/queue"
	"github.com/Saff9/campus-connect/internal/repo/group"
	"github.com/Saff9/campus-connect/internal/repo/message"
	"github.com/Saff9/campus-connect/internal/repo/user"
	"github.com/Saff9/campus-connect/internal/types"
	"github.com/Saff9/campus-connect/internal/websocket"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const previewLimit = 120

type chatService struct {
	messages message.MessageRepo
	groups   group.GroupRepo
	users    user.UserRepo
	hub      *websocket.Hub
	producer *queue.Producer
}

func NewChatService(messages message.MessageRepo, groups group.GroupRepo, users user.UserRepo, hub *websocket.Hub, producer *queue.Producer) ChatService {
	return &chatService{
		messages: messages,
		groups:   groups,
		users:    users,
		hub:      hub,
		producer: producer,
	}
}

func (s *chatService) Send(ctx context.Context, senderID string, in websocket.SendMessageInput) (*entity.Message, error) {
	msg, appErr := s.send(ctx, senderID, in)
	if appErr != nil {
		return nil, appErr
	}
	return msg, nil
}

func (s *chatService) send(ctx context.Context, senderID string, in websocket.SendMessageInput) (*entity.Message, *errors.AppError) {
	ok, appErr := s.groups.IsMember(ctx, in.GroupID, senderID)
	if appErr != nil {
		return nil, appErr
	}
	if !ok {
		return nil, errors.Forbidden("not a member of this group", nil)
	}

	ok, appErr = s.groups.HasChannel(ctx, in.GroupID, in.Channel)
	if appErr != nil {
		return nil, appErr
	}
	if !ok {
		return nil, errors.NotFound("unknown channel", nil)
	}

	msgType := in.MessageType
	if msgType == "" {
		msgType = entity.MessageText
	}
	if !entity.ValidMessageType(msgType) {
		return nil, errors.BadRequest("unrecognized message type", nil)
	}
	if in.Content == "" {
		return nil, errors.BadRequest("message content is required", nil)
	}

	var replyTo *bson.ObjectID
	if in.ReplyTo != "" {
		oid, err := bson.ObjectIDFromHex(in.ReplyTo)
		if err != nil {
			return nil, errors.BadRequest("invalid reply_to id", err)
		}
		replyTo = &oid
	}

	stored, appErr := s.messages.Store(ctx, &entity.Message{
		GroupID:   in.GroupID,
		Channel:   in.Channel,
		SenderID:  senderID,
		Type:      msgType,
		Content:   in.Content,
		ReplyTo:   replyTo,
		CreatedAt: time.Now(),
	})
	if appErr != nil {
		appErr.Err = &websocket.PersistenceError{Err: appErr.Err}
		return nil, appErr
	}

	// persisted, now fan out to live subscribers
	s.hub.Broadcaster.MessageCreated(stored)

	if err := s.notifyOffline(ctx, stored); err != nil {
		log.Warn().Err(err).Str("messageID", stored.ID.Hex()).Msg("failed to enqueue offline notifications")
	}
	return stored, nil
}

// notifyOffline queues a digest job for members with no live connection.
// The message is already stored and broadcast, so a failure here never
// surfaces to the sender.
func (s *chatService) notifyOffline(ctx context.Context, msg *entity.Message) error {
	members, appErr := s.groups.MembersOf(ctx, msg.GroupID)
	if appErr != nil {
		return appErr
	}

	recipients := make([]string, 0)
	for _, userID := range members {
		if userID == msg.SenderID {
			continue
		}
		if s.hub.Presence.IsOffline(userID) {
			recipients = append(recipients, userID)
		}
	}
	if len(recipients) == 0 {
		return nil
	}

	payload := types.OfflineNotification{
		MessageID:  msg.ID.Hex(),
		GroupID:    msg.GroupID,
		Channel:    msg.Channel,
		SenderID:   msg.SenderID,
		Preview:    preview(msg.Content),
		Recipients: recipients,
	}
	if sender, appErr := s.users.FindUserByID(ctx, msg.SenderID); appErr == nil {
		payload.SenderName = sender.Username
	}
	if grp, appErr := s.groups.FindGroupByID(ctx, msg.GroupID); appErr == nil {
		payload.GroupName = grp.Name
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.producer.Enqueue(ctx, queue.NewJob(queue.JobNotifyOffline, string(raw), queue.PriorityLow))
}

func (s *chatService) GetMessages(ctx context.Context, userID, groupID, channel string, req *chat_dto.GetMessagesRequest) (*chat_dto.MessageHistoryResponse, *errors.AppError) {
	ok, appErr := s.groups.IsMember(ctx, groupID, userID)
	if appErr != nil {
		return nil, appErr
	}
	if !ok {
		return nil, errors.Forbidden("not a member of this group", nil)
	}

	var before *bson.ObjectID
	if req.Before != "" {
		oid, err := bson.ObjectIDFromHex(req.Before)
		if err != nil {
			return nil, errors.NewAppError(http.StatusBadRequest, "invalid cursor", err)
		}
		before = &oid
	}

	limit := int64(req.Limit)
	messages, appErr := s.messages.History(ctx, groupID, channel, before, limit)
	if appErr != nil {
		return nil, appErr
	}

	resp := &chat_dto.MessageHistoryResponse{Messages: messages}
	if n := len(messages); n > 0 && int64(n) == normalizeLimit(limit) {
		resp.NextCursor = messages[n-1].ID.Hex()
	}
	return resp, nil
}

func normalizeLimit(limit int64) int64 {
	if limit <= 0 || limit > 100 {
		return 50
	}
	return limit
}

func preview(content string) string {
	if len(content) <= previewLimit {
		return content
	}
	return content[:previewLimit] + "..."
}
