package models

import "time"

const CampusSpecific = "Campus Specific"

type Feedback struct {
	ID               string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           string    `gorm:"type:uuid;index;not null" json:"userId"`
	Category         string    `gorm:"size:64;not null" json:"category"`
	Message          string    `gorm:"type:text;not null" json:"message"`
	TargetUniversity *string   `gorm:"size:255" json:"targetUniversity,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Connection 校园圈的好友请求，同一对用户只记一条
type Connection struct {
	UserID    string    `gorm:"type:uuid;primaryKey" json:"userId"`
	PeerID    string    `gorm:"type:uuid;primaryKey" json:"peerId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Feedback) TableName() string   { return "shelf_feedback" }
func (Connection) TableName() string { return "shelf_connections" }
