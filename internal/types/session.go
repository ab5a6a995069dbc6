package types

import "time"

// Session is the redis-backed login record keyed by session:<userID>.
type Session struct {
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	AccessJti  string    `json:"access_jti"`
	RefreshJti string    `json:"refresh_jti"`
	LoginAt    time.Time `json:"login_at"`
}
