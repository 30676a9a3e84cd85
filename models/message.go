package models

import (
	"time"
)

// Message представляет сообщение в диалоге между пользователями
type Message struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorID   int64     `gorm:"column:author_id;index" json:"author_id"`
	ReceiverID int64     `gorm:"column:receiver_id;index" json:"receiver_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName возвращает имя таблицы для модели Message
func (Message) TableName() string {
	return "messages"
}
