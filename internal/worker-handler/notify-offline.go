package worker_handler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Saff9/campus-connect/internal/queue"
	"github.com/Saff9/campus-connect/internal/types"
	worker_service "github.com/Saff9/campus-connect/internal/worker-service"
)

// NotifyOffline records unread counters for members who were offline when
// a message was broadcast and mails them a short digest.
func (h *Handler) NotifyOffline(ctx context.Context, job *queue.Job) error {
	var payload types.OfflineNotification
	if err := json.Unmarshal([]byte(job.Payload), &payload); err != nil {
		return fmt.Errorf("failed to decode notify_offline payload: %w", err)
	}

	for _, userID := range payload.Recipients {
		counterKey := fmt.Sprintf("unread:%s:%s:%s", userID, payload.GroupID, payload.Channel)
		if err := h.rdb.Incr(ctx, counterKey).Err(); err != nil {
			return fmt.Errorf("failed to bump unread counter for %s: %w", userID, err)
		}

		recipient, appErr := h.users.FindUserByID(ctx, userID)
		if appErr != nil {
			log.Warn().Err(appErr).Str("userID", userID).Msg("skipping digest for unknown recipient")
			continue
		}

		err := h.mailer.SendOfflineDigest(recipient.Email, worker_service.DigestParams{
			GroupName:  payload.GroupName,
			Channel:    payload.Channel,
			SenderName: payload.SenderName,
			Preview:    payload.Preview,
		})
		if err != nil {
			return fmt.Errorf("failed to mail digest to %s: %w", recipient.Email, err)
		}
	}
	return nil
}
