package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"socialmedia/db"
	"socialmedia/models"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	FEED_CACHE_TTL  = 24 * time.Hour // TTL для кеша ленты
	MAX_FEED_SIZE   = 1000           // Максимальное количество постов в ленте
	FEED_KEY_PREFIX = "user_feed:"   // Префикс для ключей ленты в Redis
	POST_KEY_PREFIX = "post:"        // Префикс для кеша постов
)

// FeedService - сборка ленты: посты авторов, на которых подписан
// пользователь, в обратном хронологическом порядке с пагинацией.
type FeedService struct{}

func NewFeedService() *FeedService {
	return &FeedService{}
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}

// GetUserFeed возвращает страницу ленты пользователя.
// Пагинация stateless: одна и та же пара (viewer, page) без
// промежуточных записей дает один и тот же срез.
func (fs *FeedService) GetUserFeed(ctx context.Context, viewerID int64, page, perPage int) (*models.FeedResponse, error) {
	if viewerID <= 0 {
		return nil, errors.New("invalid user ID")
	}
	page, perPage = normalizePage(page, perPage)

	feedKey := fmt.Sprintf("%s%d", FEED_KEY_PREFIX, viewerID)

	// Сначала пробуем кеш. Неполная страница из кеша не годится:
	// кеш мог быть прогрет меньшим per_page, добираем из БД
	feedPosts, err := fs.getFeedFromCache(ctx, feedKey, page, perPage)
	if err == nil && len(feedPosts) >= perPage {
		return &models.FeedResponse{
			Posts:   feedPosts,
			Page:    page,
			PerPage: perPage,
			HasMore: len(feedPosts) == perPage,
		}, nil
	}

	// Кеш пуст или недоступен - строим из БД
	feedPosts, err = fs.buildFeedFromDB(ctx, viewerID, page, perPage)
	if err != nil {
		return nil, err
	}

	if page == 1 {
		go fs.cacheFeed(context.Background(), feedKey, feedPosts)
	}

	return &models.FeedResponse{
		Posts:   feedPosts,
		Page:    page,
		PerPage: perPage,
		HasMore: len(feedPosts) == perPage,
	}, nil
}

// GetGlobalFeed возвращает страницу общей ленты: все посты системы
// в том же порядке и с той же пагинацией (вкладка "обзор").
func (fs *FeedService) GetGlobalFeed(ctx context.Context, page, perPage int) (*models.FeedResponse, error) {
	page, perPage = normalizePage(page, perPage)

	var feedPosts []models.FeedPost
	err := db.GetReadOnlyDB(ctx).
		Table("posts p").
		Select("p.id, p.author_id, u.name as author_name, p.title, p.content, p.created_at").
		Joins("JOIN users u ON p.author_id = u.id").
		Order("p.created_at DESC, p.id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Scan(&feedPosts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get global feed: %w", err)
	}

	return &models.FeedResponse{
		Posts:   feedPosts,
		Page:    page,
		PerPage: perPage,
		HasMore: len(feedPosts) == perPage,
	}, nil
}

// GetUserPosts - батч-запрос: для каждого существующего id
// возвращает имя пользователя и полный список его постов.
// Несуществующие id молча выбрасываются из результата.
func (fs *FeedService) GetUserPosts(ctx context.Context, ids []int64) ([]models.UserPosts, error) {
	result := make([]models.UserPosts, 0, len(ids))
	for _, id := range ids {
		var user models.User
		err := db.GetReadOnlyDB(ctx).First(&user, id).Error
		if err != nil {
			// Неизвестный id не ошибка, просто пропускаем
			continue
		}

		var posts []models.Post
		err = db.GetReadOnlyDB(ctx).
			Where("author_id = ?", user.ID).
			Order("created_at DESC, id DESC").
			Find(&posts).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get posts for user %d: %w", user.ID, err)
		}

		result = append(result, models.UserPosts{
			UserID: user.ID,
			Name:   user.Name,
			Posts:  posts,
		})
	}
	return result, nil
}

// buildFeedFromDB строит страницу ленты из базы данных
func (fs *FeedService) buildFeedFromDB(ctx context.Context, viewerID int64, page, perPage int) ([]models.FeedPost, error) {
	var feedPosts []models.FeedPost
	err := db.GetReadOnlyDB(ctx).
		Table("posts p").
		Select("p.id, p.author_id, u.name as author_name, p.title, p.content, p.created_at").
		Joins("JOIN subscriptions s ON s.publisher_id = p.author_id").
		Joins("JOIN users u ON p.author_id = u.id").
		Where("s.subscriber_id = ?", viewerID).
		Order("p.created_at DESC, p.id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Scan(&feedPosts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get feed posts: %w", err)
	}
	return feedPosts, nil
}

// getFeedFromCache получает страницу ленты из Redis кеша
func (fs *FeedService) getFeedFromCache(ctx context.Context, feedKey string, page, perPage int) ([]models.FeedPost, error) {
	if RedisClient == nil {
		return nil, fmt.Errorf("redis not available")
	}

	start := int64((page - 1) * perPage)
	stop := start + int64(perPage) - 1

	postIDs, err := RedisClient.ZRevRange(ctx, feedKey, start, stop).Result()
	if err != nil {
		return nil, err
	}
	if len(postIDs) == 0 {
		return []models.FeedPost{}, nil
	}

	pipe := RedisClient.Pipeline()
	cmds := make([]*redis.StringCmd, len(postIDs))
	for i, postID := range postIDs {
		cmds[i] = pipe.Get(ctx, POST_KEY_PREFIX+postID)
	}
	_, err = pipe.Exec(ctx)
	if err != nil && err != redis.Nil {
		return nil, err
	}

	var feedPosts []models.FeedPost
	for _, cmd := range cmds {
		val, err := cmd.Result()
		if err != nil {
			continue
		}
		var feedPost models.FeedPost
		if err := json.Unmarshal([]byte(val), &feedPost); err == nil {
			feedPosts = append(feedPosts, feedPost)
		}
	}
	return feedPosts, nil
}

// cacheFeed кеширует ленту в Redis (sorted set, score = timestamp).
// Вызывается и асинхронно, поэтому клиент снимается в локальную
// переменную один раз.
func (fs *FeedService) cacheFeed(ctx context.Context, feedKey string, posts []models.FeedPost) {
	client := RedisClient
	if len(posts) == 0 || client == nil {
		return
	}

	pipe := client.Pipeline()
	pipe.Del(ctx, feedKey)

	for _, post := range posts {
		pipe.ZAdd(ctx, feedKey, &redis.Z{
			Score:  float64(post.CreatedAt.Unix()),
			Member: strconv.FormatInt(post.ID, 10),
		})

		postData, _ := json.Marshal(post)
		pipe.Set(ctx, fmt.Sprintf("%s%d", POST_KEY_PREFIX, post.ID), postData, FEED_CACHE_TTL)
	}

	pipe.ZRemRangeByRank(ctx, feedKey, 0, -MAX_FEED_SIZE-1)
	pipe.Expire(ctx, feedKey, FEED_CACHE_TTL)
	pipe.Exec(ctx)
}

// AddPostToUserFeed добавляет пост в кеш ленты конкретного пользователя
func (fs *FeedService) AddPostToUserFeed(ctx context.Context, userID int64, post models.FeedPost) {
	if RedisClient == nil {
		return
	}

	feedKey := fmt.Sprintf("%s%d", FEED_KEY_PREFIX, userID)
	postKey := fmt.Sprintf("%s%d", POST_KEY_PREFIX, post.ID)

	postData, err := json.Marshal(post)
	if err != nil {
		return
	}

	pipe := RedisClient.Pipeline()
	pipe.ZAdd(ctx, feedKey, &redis.Z{
		Score:  float64(post.CreatedAt.Unix()),
		Member: strconv.FormatInt(post.ID, 10),
	})
	pipe.Set(ctx, postKey, postData, FEED_CACHE_TTL)
	pipe.ZRemRangeByRank(ctx, feedKey, 0, -MAX_FEED_SIZE-1)
	pipe.Expire(ctx, feedKey, FEED_CACHE_TTL)
	pipe.Exec(ctx)
}

// RemovePostFromUserFeed удаляет пост из кеша ленты пользователя
func (fs *FeedService) RemovePostFromUserFeed(ctx context.Context, userID int64, postID int64) {
	if RedisClient == nil {
		return
	}

	feedKey := fmt.Sprintf("%s%d", FEED_KEY_PREFIX, userID)

	pipe := RedisClient.Pipeline()
	pipe.ZRem(ctx, feedKey, strconv.FormatInt(postID, 10))
	pipe.Del(ctx, fmt.Sprintf("%s%d", POST_KEY_PREFIX, postID))
	pipe.Exec(ctx)
}

// InvalidateUserFeed инвалидирует кеш ленты пользователя
func (fs *FeedService) InvalidateUserFeed(ctx context.Context, userID int64) error {
	if RedisClient == nil {
		return fmt.Errorf("redis not available")
	}
	return RedisClient.Del(ctx, fmt.Sprintf("%s%d", FEED_KEY_PREFIX, userID)).Err()
}

// RebuildUserFeedFromDB перестраивает кеш ленты пользователя из БД
func (fs *FeedService) RebuildUserFeedFromDB(ctx context.Context, userID int64) error {
	if RedisClient == nil {
		return fmt.Errorf("redis not available")
	}

	feedKey := fmt.Sprintf("%s%d", FEED_KEY_PREFIX, userID)
	RedisClient.Del(ctx, feedKey)

	feedPosts, err := fs.buildFeedFromDB(ctx, userID, 1, MAX_FEED_SIZE)
	if err != nil {
		return err
	}

	fs.cacheFeed(ctx, feedKey, feedPosts)
	return nil
}

// RebuildAllFeeds перестраивает кеши лент всех пользователей
func (fs *FeedService) RebuildAllFeeds(ctx context.Context) error {
	var userIDs []int64
	err := db.GetReadOnlyDB(ctx).Model(&models.User{}).Pluck("id", &userIDs).Error
	if err != nil {
		return err
	}

	for _, userID := range userIDs {
		if err := fs.RebuildUserFeedFromDB(ctx, userID); err != nil {
			continue
		}
	}
	return nil
}
