package entity

import "time"

type User struct {
	ID           string     `gorm:"column:id;primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Username     string     `gorm:"column:username;unique;not null" json:"username"`
	Email        string     `gorm:"column:email;unique;not null" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	IsActive     bool       `gorm:"column:is_active;default:true" json:"is_active"`
	Status       string     `gorm:"column:status;default:offline" json:"status"`
	LastSeen     *time.Time `gorm:"column:last_seen" json:"last_seen,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

type UserFilter struct {
	ID       string
	Username string
	Email    string
}
