package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"socialmedia/db"
	"socialmedia/models"
	"strings"
	"time"
)

// MessageService - личные сообщения между пользователями
type MessageService struct{}

func NewMessageService() *MessageService {
	return &MessageService{}
}

// SendMessage отправляет сообщение и уведомляет получателя по WebSocket
func (ms *MessageService) SendMessage(ctx context.Context, authorID, receiverID int64, content string) (*models.Message, error) {
	if authorID <= 0 || receiverID <= 0 {
		return nil, errors.New("invalid user ID")
	}
	if authorID == receiverID {
		return nil, errors.New("cannot send message to yourself")
	}
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("content must not be blank")
	}

	if err := ensureUsersExist(db.GetReadOnlyDB(ctx), authorID, receiverID); err != nil {
		return nil, err
	}

	message := &models.Message{
		AuthorID:   authorID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	if err := db.GetWriteDB(ctx).Create(message).Error; err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	if _, err := SendWsNotify(receiverID, "message", content); err != nil {
		log.Printf("failed to notify user %d: %v", receiverID, err)
	}
	return message, nil
}

// GetDialog возвращает страницу переписки пары пользователей,
// новые сообщения сверху
func (ms *MessageService) GetDialog(ctx context.Context, userID, peerID int64, page, perPage int) ([]models.Message, error) {
	if userID <= 0 || peerID <= 0 {
		return nil, errors.New("invalid user ID")
	}
	page, perPage = normalizePage(page, perPage)

	var messages []models.Message
	err := db.GetReadOnlyDB(ctx).
		Where("(author_id = ? AND receiver_id = ?) OR (author_id = ? AND receiver_id = ?)",
			userID, peerID, peerID, userID).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get dialog: %w", err)
	}
	return messages, nil
}
