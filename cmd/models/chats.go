package models

import (
	"gorm.io/gorm"
)

// ChatSession groups the exchanges of one "chat with your data" conversation.
type ChatSession struct {
	gorm.Model
	SessionID string `gorm:"column:session_id;size:36;not null;uniqueIndex" json:"session_id"`
	UserID    uint   `gorm:"column:user_id;not null" json:"user_id"`

	Messages []ChatMessage `gorm:"foreignKey:ChatSessionID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

type ChatMessage struct {
	gorm.Model
	ChatSessionID uint   `gorm:"column:chat_session_id;not null" json:"chat_session_id"`
	Role          string `gorm:"column:role;size:20;not null" json:"role"` // user or assistant
	Content       string `gorm:"column:content;type:text;not null" json:"content"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
