package models

import (
	"time"
)

// NotificationType 通知種別
type NotificationType string

const (
	NotificationFollow NotificationType = "follow"
)

// Notification 通知モデル
type Notification struct {
	ID        uint             `json:"_id" gorm:"primaryKey"`
	Type      NotificationType `json:"type" gorm:"size:20;not null"`
	FromID    uint             `json:"-" gorm:"not null"`
	ToID      uint             `json:"to" gorm:"not null;index"`
	Read      bool             `json:"read" gorm:"default:false"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`

	// リレーション
	From *Sender `json:"from" gorm:"foreignKey:FromID"`
}

// Sender 通知の送信者（username と profileImage のみ展開）
type Sender struct {
	ID           uint   `json:"_id"`
	Username     string `json:"username"`
	ProfileImage string `json:"profileImage"`
}

// TableName テーブル名指定
func (Sender) TableName() string {
	return "users"
}
