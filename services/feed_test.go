package services

import (
	"context"
	"fmt"
	"socialmedia/db"
	"socialmedia/models"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

// setupTestRedis поднимает miniredis и подменяет глобальный клиент
func setupTestRedis(t *testing.T) {
	t.Helper()

	mr := miniredis.RunT(t)
	RedisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = RedisClient.Close()
		RedisClient = nil
	})
}

func createTestPost(t *testing.T, authorID int64, title string, createdAt time.Time) *models.Post {
	t.Helper()

	post := &models.Post{
		AuthorID:  authorID,
		Title:     title,
		Content:   "content of " + title,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, db.ORM.Create(post).Error)
	return post
}

func TestUserFeedOrderingAndPagination(t *testing.T) {
	setupTestDB(t)
	fs := NewFeedService()
	rs := NewRelationService()
	ctx := context.Background()

	viewer := createTestUser(t)
	author := createTestUser(t)
	require.NoError(t, rs.Subscribe(ctx, viewer.ID, author.ID))

	now := time.Now().Truncate(time.Second)
	createTestPost(t, author.ID, "minus two days", now.Add(-48*time.Hour))
	createTestPost(t, author.ID, "minus one day", now.Add(-24*time.Hour))
	createTestPost(t, author.ID, "now", now)
	createTestPost(t, author.ID, "plus one day", now.Add(24*time.Hour))
	createTestPost(t, author.ID, "plus two days", now.Add(48*time.Hour))

	feed, err := fs.GetUserFeed(ctx, viewer.ID, 1, 2)
	require.NoError(t, err)
	require.Len(t, feed.Posts, 2)
	require.Equal(t, "plus two days", feed.Posts[0].Title)
	require.Equal(t, "plus one day", feed.Posts[1].Title)
	require.True(t, feed.HasMore)

	// Та же страница без записей между вызовами дает тот же срез
	again, err := fs.GetUserFeed(ctx, viewer.ID, 1, 2)
	require.NoError(t, err)
	require.Equal(t, feed.Posts, again.Posts)

	// Последняя страница
	last, err := fs.GetUserFeed(ctx, viewer.ID, 3, 2)
	require.NoError(t, err)
	require.Len(t, last.Posts, 1)
	require.Equal(t, "minus two days", last.Posts[0].Title)
}

func TestUserFeedSubscriptionScope(t *testing.T) {
	setupTestDB(t)
	fs := NewFeedService()
	rs := NewRelationService()
	ctx := context.Background()

	viewer := createTestUser(t)
	subscribed := createTestUser(t)
	stranger := createTestUser(t)
	require.NoError(t, rs.Subscribe(ctx, viewer.ID, subscribed.ID))

	now := time.Now()
	createTestPost(t, subscribed.ID, "visible", now)
	createTestPost(t, stranger.ID, "invisible", now.Add(time.Hour))

	feed, err := fs.GetUserFeed(ctx, viewer.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, feed.Posts, 1)
	require.Equal(t, "visible", feed.Posts[0].Title)
	require.Equal(t, subscribed.ID, feed.Posts[0].AuthorID)
	require.Equal(t, subscribed.Name, feed.Posts[0].AuthorName)
}

func TestUserFeedTieBreakByID(t *testing.T) {
	setupTestDB(t)
	fs := NewFeedService()
	rs := NewRelationService()
	ctx := context.Background()

	viewer := createTestUser(t)
	author := createTestUser(t)
	require.NoError(t, rs.Subscribe(ctx, viewer.ID, author.ID))

	ts := time.Now().Truncate(time.Second)
	first := createTestPost(t, author.ID, "first", ts)
	second := createTestPost(t, author.ID, "second", ts)

	feed, err := fs.GetUserFeed(ctx, viewer.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, feed.Posts, 2)
	// При равном created_at выше пост с большим id
	require.Equal(t, second.ID, feed.Posts[0].ID)
	require.Equal(t, first.ID, feed.Posts[1].ID)
}

func TestGlobalFeed(t *testing.T) {
	setupTestDB(t)
	fs := NewFeedService()
	ctx := context.Background()

	a := createTestUser(t)
	b := createTestUser(t)

	now := time.Now().Truncate(time.Second)
	createTestPost(t, a.ID, "older", now.Add(-time.Hour))
	createTestPost(t, b.ID, "newer", now)

	feed, err := fs.GetGlobalFeed(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, feed.Posts, 2)
	require.Equal(t, "newer", feed.Posts[0].Title)
	require.Equal(t, "older", feed.Posts[1].Title)
}

func TestUserFeedServedFromCache(t *testing.T) {
	setupTestDB(t)
	setupTestRedis(t)
	fs := NewFeedService()
	rs := NewRelationService()
	ctx := context.Background()

	viewer := createTestUser(t)
	author := createTestUser(t)
	require.NoError(t, rs.Subscribe(ctx, viewer.ID, author.ID))

	now := time.Now().Truncate(time.Second)
	createTestPost(t, author.ID, "oldest", now.Add(-2*time.Hour))
	createTestPost(t, author.ID, "middle", now.Add(-time.Hour))
	createTestPost(t, author.ID, "newest", now)

	feedKey := fmt.Sprintf("%s%d", FEED_KEY_PREFIX, viewer.ID)
	cached, err := fs.buildFeedFromDB(ctx, viewer.ID, 1, MAX_FEED_SIZE)
	require.NoError(t, err)
	fs.cacheFeed(ctx, feedKey, cached)

	// Посты стерты из БД: полная страница может прийти только из кеша
	require.NoError(t, db.ORM.Where("1 = 1").Delete(&models.Post{}).Error)

	feed, err := fs.GetUserFeed(ctx, viewer.ID, 1, 2)
	require.NoError(t, err)
	require.Len(t, feed.Posts, 2)
	require.Equal(t, "newest", feed.Posts[0].Title)
	require.Equal(t, "middle", feed.Posts[1].Title)
}

func TestUserFeedShortCachedPageFallsBackToDB(t *testing.T) {
	setupTestDB(t)
	setupTestRedis(t)
	fs := NewFeedService()
	rs := NewRelationService()
	ctx := context.Background()

	viewer := createTestUser(t)
	author := createTestUser(t)
	require.NoError(t, rs.Subscribe(ctx, viewer.ID, author.ID))

	now := time.Now().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		createTestPost(t, author.ID, fmt.Sprintf("post %d", i), now.Add(time.Duration(i)*time.Hour))
	}

	// Кеш прогрет маленькой страницей, в нем только два поста
	feedKey := fmt.Sprintf("%s%d", FEED_KEY_PREFIX, viewer.ID)
	warm, err := fs.buildFeedFromDB(ctx, viewer.ID, 1, 2)
	require.NoError(t, err)
	require.Len(t, warm, 2)
	fs.cacheFeed(ctx, feedKey, warm)

	// Запрос с большим per_page не обрезается кешированным срезом
	feed, err := fs.GetUserFeed(ctx, viewer.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, feed.Posts, 5)
	require.Equal(t, "post 4", feed.Posts[0].Title)
	require.False(t, feed.HasMore)
}

func TestGetUserPostsDropsUnknownIDs(t *testing.T) {
	setupTestDB(t)
	fs := NewFeedService()
	ctx := context.Background()

	a := createTestUser(t)
	b := createTestUser(t)

	now := time.Now()
	createTestPost(t, a.ID, "a1", now.Add(-time.Hour))
	createTestPost(t, a.ID, "a2", now)

	result, err := fs.GetUserPosts(ctx, []int64{a.ID, b.ID, 999})
	require.NoError(t, err)
	require.Len(t, result, 2)

	require.Equal(t, a.ID, result[0].UserID)
	require.Equal(t, a.Name, result[0].Name)
	require.Len(t, result[0].Posts, 2)

	require.Equal(t, b.ID, result[1].UserID)
	require.Len(t, result[1].Posts, 0)
}
