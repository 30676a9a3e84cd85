package services

import (
	"context"
	"errors"
	"fmt"
	"socialmedia/db"
	"socialmedia/models"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RelationService - сервис графа отношений: подписки, заявки в друзья
// и сама дружба. Дружба симметрична (ребра всегда пишутся в обе
// стороны), подписка направленная.
type RelationService struct{}

func NewRelationService() *RelationService {
	return &RelationService{}
}

// ensureUsersExist проверяет, что все пользователи существуют
func ensureUsersExist(tx *gorm.DB, ids ...int64) error {
	var count int64
	err := tx.Model(&models.User{}).Where("id IN (?)", ids).Distinct("id").Count(&count).Error
	if err != nil {
		return fmt.Errorf("error checking users: %w", err)
	}
	if count != int64(len(ids)) {
		return ErrUserNotFound
	}
	return nil
}

// Subscribe подписывает subscriber на посты publisher.
// Повторная подписка - no-op.
func (rs *RelationService) Subscribe(ctx context.Context, subscriberID, publisherID int64) error {
	if subscriberID <= 0 || publisherID <= 0 {
		return errors.New("invalid user ID")
	}
	if subscriberID == publisherID {
		return errors.New("cannot subscribe to yourself")
	}

	if err := ensureUsersExist(db.GetReadOnlyDB(ctx), subscriberID, publisherID); err != nil {
		return err
	}

	sub := models.Subscription{
		SubscriberID: subscriberID,
		PublisherID:  publisherID,
	}
	return db.GetWriteDB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&sub).Error
}

// Unsubscribe снимает подписку. Отсутствующее ребро - no-op.
func (rs *RelationService) Unsubscribe(ctx context.Context, subscriberID, publisherID int64) error {
	if subscriberID <= 0 || publisherID <= 0 {
		return errors.New("invalid user ID")
	}

	return db.GetWriteDB(ctx).
		Where("subscriber_id = ? AND publisher_id = ?", subscriberID, publisherID).
		Delete(&models.Subscription{}).Error
}

// SendFriendRequest создает заявку в друзья со статусом PENDING.
// Отправитель при этом подписывается на получателя.
func (rs *RelationService) SendFriendRequest(ctx context.Context, senderID, receiverID int64) (*models.FriendRequest, error) {
	if senderID <= 0 || receiverID <= 0 {
		return nil, errors.New("invalid user ID")
	}
	if senderID == receiverID {
		return nil, errors.New("cannot send friend request to yourself")
	}

	request := &models.FriendRequest{
		AuthorID:   senderID,
		ReceiverID: receiverID,
		Status:     models.RequestPending,
		CreatedAt:  time.Now(),
	}

	// Проверка пары и висящих заявок внутри той же транзакции,
	// что и запись: между проверкой и вставкой никто не вклинится
	err := db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUsersExist(tx, senderID, receiverID); err != nil {
			return err
		}

		var existing models.FriendRequest
		err := tx.Where(
			"((author_id = ? AND receiver_id = ?) OR (author_id = ? AND receiver_id = ?)) AND status = ?",
			senderID, receiverID, receiverID, senderID, models.RequestPending,
		).First(&existing).Error
		if err == nil {
			return ErrDuplicateRequest
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check pending requests: %w", err)
		}

		if err := tx.Create(request).Error; err != nil {
			return fmt.Errorf("failed to create friend request: %w", err)
		}
		sub := models.Subscription{SubscriberID: senderID, PublisherID: receiverID}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&sub).Error
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// AcceptFriendRequest переводит заявку в ACCEPTED и устанавливает
// взаимную дружбу. Получатель дополнительно подписывается на автора
// (автор подписался еще при отправке заявки). Все изменения - одна
// транзакция: либо обновляются оба пользователя, либо никто.
func (rs *RelationService) AcceptFriendRequest(ctx context.Context, requestID int64) error {
	if requestID <= 0 {
		return errors.New("invalid request ID")
	}

	return db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		var request models.FriendRequest
		if err := tx.First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return fmt.Errorf("failed to load friend request: %w", err)
		}
		if request.Status != models.RequestPending {
			return ErrRequestNotPending
		}

		// Стороны заявки могли быть удалены после ее создания
		if err := ensureUsersExist(tx, request.AuthorID, request.ReceiverID); err != nil {
			return err
		}

		request.Status = models.RequestAccepted
		if err := tx.Save(&request).Error; err != nil {
			return fmt.Errorf("failed to accept friend request: %w", err)
		}

		edges := []models.UserFriend{
			{UserID: request.AuthorID, FriendID: request.ReceiverID},
			{UserID: request.ReceiverID, FriendID: request.AuthorID},
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edges).Error; err != nil {
			return fmt.Errorf("failed to create friendship: %w", err)
		}

		sub := models.Subscription{
			SubscriberID: request.ReceiverID,
			PublisherID:  request.AuthorID,
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&sub).Error
	})
}

// RejectFriendRequest переводит заявку в REJECTED.
// Ребра не меняются, запись заявки сохраняется.
func (rs *RelationService) RejectFriendRequest(ctx context.Context, requestID int64) error {
	if requestID <= 0 {
		return errors.New("invalid request ID")
	}

	return db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		var request models.FriendRequest
		if err := tx.First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return fmt.Errorf("failed to load friend request: %w", err)
		}
		if request.Status != models.RequestPending {
			return ErrRequestNotPending
		}

		request.Status = models.RequestRejected
		return tx.Save(&request).Error
	})
}

// DeleteFriend разрывает дружбу. Удаляются оба направленных ребра
// дружбы и подписка user -> friend. Подписка friend -> user
// сохраняется: бывший друг продолжает видеть посты, пока сам не
// отпишется.
func (rs *RelationService) DeleteFriend(ctx context.Context, userID, friendID int64) error {
	if userID <= 0 || friendID <= 0 {
		return errors.New("invalid user ID")
	}

	return db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where(
			"(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
			userID, friendID, friendID, userID,
		).Delete(&models.UserFriend{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrFriendshipNotFound
		}

		return tx.Where("subscriber_id = ? AND publisher_id = ?", userID, friendID).
			Delete(&models.Subscription{}).Error
	})
}

// GetFriends возвращает друзей пользователя. Запрос - симметричное
// замыкание по таблице направленных пар, объединение обоих направлений.
func (rs *RelationService) GetFriends(ctx context.Context, userID int64) ([]models.User, error) {
	if userID <= 0 {
		return nil, errors.New("invalid user ID")
	}

	var friends []models.User
	err := db.GetReadOnlyDB(ctx).
		Where("id IN (SELECT friend_id FROM user_friends WHERE user_id = ? UNION SELECT user_id FROM user_friends WHERE friend_id = ?)",
			userID, userID).
		Find(&friends).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get friends: %w", err)
	}
	return friends, nil
}

// GetSubscriptions возвращает пользователей, на которых подписан userID
func (rs *RelationService) GetSubscriptions(ctx context.Context, userID int64) ([]models.User, error) {
	if userID <= 0 {
		return nil, errors.New("invalid user ID")
	}

	var publishers []models.User
	err := db.GetReadOnlyDB(ctx).
		Where("id IN (SELECT publisher_id FROM subscriptions WHERE subscriber_id = ?)", userID).
		Find(&publishers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriptions: %w", err)
	}
	return publishers, nil
}

// GetSubscribersOf возвращает подписчиков publisher (обратный запрос по ребру)
func (rs *RelationService) GetSubscribersOf(ctx context.Context, publisherID int64) ([]models.User, error) {
	if publisherID <= 0 {
		return nil, errors.New("invalid user ID")
	}

	var subscribers []models.User
	err := db.GetReadOnlyDB(ctx).
		Where("id IN (SELECT subscriber_id FROM subscriptions WHERE publisher_id = ?)", publisherID).
		Find(&subscribers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get subscribers: %w", err)
	}
	return subscribers, nil
}

// GetPendingRequests возвращает входящие заявки в друзья
func (rs *RelationService) GetPendingRequests(ctx context.Context, receiverID int64) ([]models.FriendRequest, error) {
	if receiverID <= 0 {
		return nil, errors.New("invalid user ID")
	}

	var requests []models.FriendRequest
	err := db.GetReadOnlyDB(ctx).
		Where("receiver_id = ? AND status = ?", receiverID, models.RequestPending).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// FindAllRequests возвращает все заявки
func (rs *RelationService) FindAllRequests(ctx context.Context) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := db.GetReadOnlyDB(ctx).Find(&requests).Error
	return requests, err
}

// DeleteRequest удаляет запись заявки
func (rs *RelationService) DeleteRequest(ctx context.Context, requestID int64) error {
	result := db.GetWriteDB(ctx).Delete(&models.FriendRequest{}, requestID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// DeleteAllRequests удаляет все заявки
func (rs *RelationService) DeleteAllRequests(ctx context.Context) error {
	return db.GetWriteDB(ctx).Where("1 = 1").Delete(&models.FriendRequest{}).Error
}
