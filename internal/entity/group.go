package entity

import "time"

type Group struct {
	ID          string    `gorm:"column:id;primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	OwnerID     string    `gorm:"column:owner_id;type:uuid;not null" json:"owner_id"`
	IsPrivate   bool      `gorm:"column:is_private;default:false" json:"is_private"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Channels []GroupChannel `gorm:"foreignKey:GroupID" json:"channels,omitempty"`
	Members  []GroupMember  `gorm:"foreignKey:GroupID" json:"members,omitempty"`
}

func (Group) TableName() string {
	return "groups"
}

type GroupChannel struct {
	ID        string    `gorm:"column:id;primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	GroupID   string    `gorm:"column:group_id;type:uuid;not null;index" json:"group_id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (GroupChannel) TableName() string {
	return "group_channels"
}

type GroupMember struct {
	GroupID  string    `gorm:"column:group_id;type:uuid;primaryKey" json:"group_id"`
	UserID   string    `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	Role     string    `gorm:"column:role;default:member" json:"role"`
	JoinedAt time.Time `gorm:"column:joined_at;autoCreateTime" json:"joined_at"`
}

func (GroupMember) TableName() string {
	return "group_members"
}
