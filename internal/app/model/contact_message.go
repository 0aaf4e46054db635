package model

import "time"

type MessageStatus string

const (
	MessageUnread  MessageStatus = "unread"
	MessageRead    MessageStatus = "read"
	MessageReplied MessageStatus = "replied"
)

type ContactMessage struct {
	ID        uint          `gorm:"primarykey" json:"id"`
	Name      string        `gorm:"type:varchar(100);not null" json:"name"`
	Email     string        `gorm:"type:varchar(120);not null" json:"email"`
	Message   string        `gorm:"type:text;not null" json:"message"`
	Status    MessageStatus `gorm:"type:varchar(20);default:'unread';index" json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

func (ContactMessage) TableName() string {
	return "messages"
}
