package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"socialmedia/db"
	"socialmedia/models"
	"strings"
	"time"

	"gorm.io/gorm"
)

// PostService - хранилище постов и их картинок. Картинки живут
// вместе с постом: удаление поста удаляет и его картинки.
type PostService struct {
	feed *FeedService
}

func NewPostService() *PostService {
	return &PostService{feed: NewFeedService()}
}

// CreatePost создает пост с картинками и раскидывает его по лентам
// подписчиков автора
func (ps *PostService) CreatePost(ctx context.Context, authorID int64, title, content string, images []models.Image) (*models.Post, error) {
	if authorID <= 0 {
		return nil, errors.New("invalid user ID")
	}
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, errors.New("title and content must not be blank")
	}

	if err := ensureUsersExist(db.GetReadOnlyDB(ctx), authorID); err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID:  authorID,
		Title:     title,
		Content:   content,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	err := db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}
		for i := range images {
			images[i].ID = 0
			images[i].PostID = post.ID
		}
		if len(images) > 0 {
			if err := tx.Create(&images).Error; err != nil {
				return fmt.Errorf("failed to create images: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Обновление лент подписчиков уходит в очередь; без очереди
	// обновляем синхронно в фоне
	if QueueServiceInstance != nil && RedisClient != nil {
		go QueueServiceInstance.EnqueueFeedUpdate(context.Background(), authorID, *post, "create")
	} else {
		go ps.UpdateSubscriberFeeds(context.Background(), post)
	}

	return post, nil
}

// FindByID возвращает пост по id
func (ps *PostService) FindByID(ctx context.Context, postID int64) (*models.Post, error) {
	var post models.Post
	err := db.GetReadOnlyDB(ctx).First(&post, postID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	return &post, nil
}

// FindByAuthor возвращает все посты автора
func (ps *PostService) FindByAuthor(ctx context.Context, authorID int64) ([]models.Post, error) {
	if authorID <= 0 {
		return nil, errors.New("invalid user ID")
	}

	var posts []models.Post
	err := db.GetReadOnlyDB(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	return posts, err
}

// FindByCreatedAtRange возвращает посты, созданные в интервале [start, end]
func (ps *PostService) FindByCreatedAtRange(ctx context.Context, start, end time.Time) ([]models.Post, error) {
	var posts []models.Post
	err := db.GetReadOnlyDB(ctx).
		Where("created_at >= ? AND created_at <= ?", start, end).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	return posts, err
}

// FindPaged возвращает страницу всех постов, новые сверху
func (ps *PostService) FindPaged(ctx context.Context, page, perPage int) ([]models.Post, error) {
	page, perPage = normalizePage(page, perPage)

	var posts []models.Post
	err := db.GetReadOnlyDB(ctx).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&posts).Error
	return posts, err
}

// FindImages возвращает картинки поста
func (ps *PostService) FindImages(ctx context.Context, postID int64) ([]models.Image, error) {
	var images []models.Image
	err := db.GetReadOnlyDB(ctx).Where("post_id = ?", postID).Find(&images).Error
	return images, err
}

// UpdateTitleAndContent обновляет только заголовок и текст поста,
// не трогая остальные поля
func (ps *PostService) UpdateTitleAndContent(ctx context.Context, postID int64, title, content string) error {
	if postID <= 0 {
		return errors.New("invalid post ID")
	}
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return errors.New("title and content must not be blank")
	}

	result := db.GetWriteDB(ctx).
		Model(&models.Post{}).
		Where("id = ?", postID).
		Updates(map[string]interface{}{"title": title, "content": content})
	if result.Error != nil {
		return fmt.Errorf("failed to update post: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

// DeletePost удаляет пост вместе с его картинками и убирает его
// из кешей лент подписчиков
func (ps *PostService) DeletePost(ctx context.Context, postID int64) error {
	if postID <= 0 {
		return errors.New("invalid post ID")
	}

	var post models.Post
	err := db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return fmt.Errorf("failed to load post: %w", err)
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Image{}).Error; err != nil {
			return fmt.Errorf("failed to delete images: %w", err)
		}
		if err := tx.Delete(&post).Error; err != nil {
			return fmt.Errorf("failed to delete post: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if QueueServiceInstance != nil && RedisClient != nil {
		go QueueServiceInstance.EnqueueFeedUpdate(context.Background(), post.AuthorID, post, "delete")
	} else {
		go ps.RemovePostFromSubscriberFeeds(context.Background(), post.AuthorID, postID)
	}
	return nil
}

// UpdateSubscriberFeeds добавляет пост в кеши лент подписчиков автора
// и публикует событие для push-уведомлений
func (ps *PostService) UpdateSubscriberFeeds(ctx context.Context, post *models.Post) {
	var subscriberIDs []int64
	err := db.GetReadOnlyDB(ctx).
		Model(&models.Subscription{}).
		Where("publisher_id = ?", post.AuthorID).
		Pluck("subscriber_id", &subscriberIDs).Error
	if err != nil {
		log.Printf("failed to get subscribers for user %d: %v", post.AuthorID, err)
		return
	}

	var author models.User
	if err := db.GetReadOnlyDB(ctx).First(&author, post.AuthorID).Error; err != nil {
		log.Printf("failed to get author %d: %v", post.AuthorID, err)
		return
	}

	feedPost := models.FeedPost{
		ID:         post.ID,
		AuthorID:   post.AuthorID,
		AuthorName: author.Name,
		Title:      post.Title,
		Content:    post.Content,
		CreatedAt:  post.CreatedAt,
	}

	for _, subscriberID := range subscriberIDs {
		ps.feed.AddPostToUserFeed(ctx, subscriberID, feedPost)

		err := PublishFeedEvent(ctx, FeedEvent{
			UserID:    subscriberID,
			PostID:    post.ID,
			AuthorID:  post.AuthorID,
			Title:     post.Title,
			Content:   post.Content,
			CreatedAt: post.CreatedAt,
		})
		// Без RabbitMQ пушим напрямую через WebSocket
		if err != nil {
			ps.sendDirectWSEvent(subscriberID, post)
		}
	}
}

// RemovePostFromSubscriberFeeds убирает пост из кешей лент подписчиков
func (ps *PostService) RemovePostFromSubscriberFeeds(ctx context.Context, authorID, postID int64) {
	if RedisClient == nil {
		return
	}

	var subscriberIDs []int64
	err := db.GetReadOnlyDB(ctx).
		Model(&models.Subscription{}).
		Where("publisher_id = ?", authorID).
		Pluck("subscriber_id", &subscriberIDs).Error
	if err != nil {
		return
	}

	for _, subscriberID := range subscriberIDs {
		ps.feed.RemovePostFromUserFeed(ctx, subscriberID, postID)
	}
}

// sendDirectWSEvent отправляет событие о посте напрямую через WebSocket
func (ps *PostService) sendDirectWSEvent(userID int64, post *models.Post) {
	pushMsg := struct {
		Event     string    `json:"event"`
		UserID    int64     `json:"user_id"`
		PostID    int64     `json:"post_id"`
		AuthorID  int64     `json:"author_id"`
		Title     string    `json:"title"`
		Content   string    `json:"content"`
		CreatedAt time.Time `json:"created_at"`
	}{
		Event:     "feed_posted",
		UserID:    userID,
		PostID:    post.ID,
		AuthorID:  post.AuthorID,
		Title:     post.Title,
		Content:   post.Content,
		CreatedAt: post.CreatedAt,
	}

	if pushData, err := json.Marshal(pushMsg); err == nil {
		GlobalWSConnManager.Send(userID, pushData)
	}
}
