package chat_case

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Saff9/campus-connect/internal/dtos/chat_dto"
	"github.com/Saff9/campus-connect/internal/entity"
	"github.com/Saff9/campus-connect/internal/errors"
	"github.com/Saff9/campus-connect/internal/queue"
	"github.com/Saff9/campus-connect/internal/types"
	"github.com/Saff9/campus-connect/internal/websocket"
)

type fakeMessages struct {
	mu     sync.Mutex
	fail   bool
	stored []*entity.Message
}

func (f *fakeMessages) Store(_ context.Context, msg *entity.Message) (*entity.Message, *errors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.Internal("failed to store message", nil)
	}
	msg.ID = bson.NewObjectID()
	f.stored = append(f.stored, msg)
	return msg, nil
}

func (f *fakeMessages) History(_ context.Context, groupID, channel string, before *bson.ObjectID, limit int64) ([]entity.Message, *errors.AppError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Message
	for _, msg := range f.stored {
		if msg.GroupID == groupID && msg.Channel == channel {
			out = append(out, *msg)
		}
	}
	return out, nil
}

func (f *fakeMessages) FindByID(_ context.Context, id bson.ObjectID) (*entity.Message, *errors.AppError) {
	return nil, errors.NotFound("message not found", nil)
}

type fakeGroups struct {
	members  map[string][]string // groupID -> userIDs
	channels map[string][]string // groupID -> channel names
}

func (f *fakeGroups) FindGroupByID(_ context.Context, groupID string) (*entity.Group, *errors.AppError) {
	if _, ok := f.members[groupID]; !ok {
		return nil, errors.NotFound("group not found", nil)
	}
	return &entity.Group{ID: groupID, Name: "Group " + groupID}, nil
}

func (f *fakeGroups) GroupsOf(_ context.Context, userID string) ([]string, *errors.AppError) {
	var out []string
	for groupID, members := range f.members {
		for _, m := range members {
			if m == userID {
				out = append(out, groupID)
			}
		}
	}
	return out, nil
}

func (f *fakeGroups) MembersOf(_ context.Context, groupID string) ([]string, *errors.AppError) {
	return f.members[groupID], nil
}

func (f *fakeGroups) IsMember(_ context.Context, groupID, userID string) (bool, *errors.AppError) {
	for _, m := range f.members[groupID] {
		if m == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeGroups) HasChannel(_ context.Context, groupID, channel string) (bool, *errors.AppError) {
	for _, c := range f.channels[groupID] {
		if c == channel {
			return true, nil
		}
	}
	return false, nil
}

type fakeUsers struct{}

func (fakeUsers) FindUserByID(_ context.Context, id string) (*entity.User, *errors.AppError) {
	return &entity.User{ID: id, Username: "user-" + id, Email: id + "@campus.test"}, nil
}

func (fakeUsers) FindUserByCredential(_ context.Context, credential string) (*entity.User, *errors.AppError) {
	return nil, errors.NotFound("user not found", nil)
}

func (fakeUsers) SetStatus(_ context.Context, userID, status string, lastSeen time.Time) *errors.AppError {
	return nil
}

type recordingSender struct {
	mu     sync.Mutex
	frames [][]byte
}

func (s *recordingSender) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.frames = append(s.frames, cp)
	return nil
}

func (s *recordingSender) Close() error { return nil }

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

type nullDirectory struct{}

func (nullDirectory) GroupsOf(context.Context, string) ([]string, error) { return nil, nil }

type fixture struct {
	service  ChatService
	messages *fakeMessages
	hub      *websocket.Hub
	rdb      *redis.Client
}

func setupService(t *testing.T, failStore bool) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	messages := &fakeMessages{fail: failStore}
	groups := &fakeGroups{
		members:  map[string][]string{"g1": {"alice", "bob", "carol"}},
		channels: map[string][]string{"g1": {"general"}},
	}

	hub := websocket.NewHub(nullDirectory{})
	t.Cleanup(hub.Close)

	service := NewChatService(messages, groups, fakeUsers{}, hub, queue.NewProducer(rdb))
	return &fixture{service: service, messages: messages, hub: hub, rdb: rdb}
}

func subscribe(t *testing.T, hub *websocket.Hub, userID string) *recordingSender {
	t.Helper()
	sender := &recordingSender{}
	connID := hub.Registry.Register(sender)
	require.NoError(t, hub.Registry.AttachIdentity(connID, userID))
	require.NoError(t, hub.Rooms.Join(connID, websocket.ChannelRoom("g1", "general")))
	return sender
}

func TestSendStoresThenBroadcasts(t *testing.T) {
	fx := setupService(t, false)
	bob := subscribe(t, fx.hub, "bob")

	msg, err := fx.service.Send(context.Background(), "alice", websocket.SendMessageInput{
		GroupID: "g1",
		Channel: "general",
		Content: "hello",
	})
	require.NoError(t, err)
	assert.False(t, msg.ID.IsZero(), "broadcast message carries the persisted id")

	require.Len(t, fx.messages.stored, 1)
	assert.Equal(t, 1, bob.count())
}

func TestSendFailedStoreSuppressesBroadcast(t *testing.T) {
	fx := setupService(t, true)
	bob := subscribe(t, fx.hub, "bob")

	_, err := fx.service.Send(context.Background(), "alice", websocket.SendMessageInput{
		GroupID: "g1",
		Channel: "general",
		Content: "hello",
	})
	require.Error(t, err)
	var perr *websocket.PersistenceError
	assert.ErrorAs(t, err, &perr)

	assert.Equal(t, 0, bob.count(), "nothing is broadcast when persistence fails")
	assert.Empty(t, fx.messages.stored)
}

func TestSendRejectsNonMembers(t *testing.T) {
	fx := setupService(t, false)

	_, err := fx.service.Send(context.Background(), "stranger", websocket.SendMessageInput{
		GroupID: "g1",
		Channel: "general",
		Content: "hi",
	})

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Code)
	assert.Empty(t, fx.messages.stored)
}

func TestSendRejectsUnknownChannelAndBadInput(t *testing.T) {
	fx := setupService(t, false)
	ctx := context.Background()

	_, err := fx.service.Send(ctx, "alice", websocket.SendMessageInput{GroupID: "g1", Channel: "ghost", Content: "hi"})
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Code)

	_, err = fx.service.Send(ctx, "alice", websocket.SendMessageInput{GroupID: "g1", Channel: "general"})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)

	_, err = fx.service.Send(ctx, "alice", websocket.SendMessageInput{GroupID: "g1", Channel: "general", Content: "hi", MessageType: "hologram"})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)

	assert.Empty(t, fx.messages.stored)
}

func TestSendQueuesDigestForOfflineMembers(t *testing.T) {
	fx := setupService(t, false)
	// bob is online, carol never connects
	subscribe(t, fx.hub, "bob")

	_, err := fx.service.Send(context.Background(), "alice", websocket.SendMessageInput{
		GroupID: "g1",
		Channel: "general",
		Content: "anyone around?",
	})
	require.NoError(t, err)

	ctx := context.Background()
	entries, redisErr := fx.rdb.ZRange(ctx, queue.QueueKey, 0, -1).Result()
	require.NoError(t, redisErr)
	require.Len(t, entries, 1)

	var job queue.Job
	require.NoError(t, json.Unmarshal([]byte(entries[0]), &job))
	assert.Equal(t, queue.JobNotifyOffline, job.Type)

	var payload types.OfflineNotification
	require.NoError(t, json.Unmarshal([]byte(job.Payload), &payload))
	assert.Equal(t, []string{"carol"}, payload.Recipients, "online members and the sender are skipped")
	assert.Equal(t, "g1", payload.GroupID)
	assert.Equal(t, "anyone around?", payload.Preview)
}

func TestGetMessagesRequiresMembership(t *testing.T) {
	fx := setupService(t, false)

	_, appErr := fx.service.GetMessages(context.Background(), "stranger", "g1", "general", &chat_dto.GetMessagesRequest{})
	require.NotNil(t, appErr)
	assert.Equal(t, 403, appErr.Code)
}

func TestGetMessagesReturnsHistory(t *testing.T) {
	fx := setupService(t, false)

	_, err := fx.service.Send(context.Background(), "alice", websocket.SendMessageInput{
		GroupID: "g1", Channel: "general", Content: "first",
	})
	require.NoError(t, err)

	history, appErr := fx.service.GetMessages(context.Background(), "bob", "g1", "general", &chat_dto.GetMessagesRequest{})
	require.Nil(t, appErr)
	require.Len(t, history.Messages, 1)
	assert.Equal(t, "first", history.Messages[0].Content)
}
