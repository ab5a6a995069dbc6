package user

import (
	"context"
	"time"
)

// StatusStore adapts UserRepo to the plain-error status persistence the
// ws handler consumes.
type StatusStore struct {
	repo UserRepo
}

func NewStatusStore(repo UserRepo) *StatusStore {
	return &StatusStore{repo: repo}
}

func (s *StatusStore) SetStatus(ctx context.Context, userID, status string, lastSeen time.Time) error {
	if appErr := s.repo.SetStatus(ctx, userID, status, lastSeen); appErr != nil {
		return appErr
	}
	return nil
}
