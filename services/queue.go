package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"socialmedia/models"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	FEED_UPDATE_QUEUE  = "feed_update_queue"
	QUEUE_WORKER_COUNT = 5
)

// FeedUpdateTask - задача на обновление лент подписчиков
type FeedUpdateTask struct {
	AuthorID int64       `json:"author_id"`
	Post     models.Post `json:"post"`
	Action   string      `json:"action"` // "create", "delete"
}

// QueueService раскидывает новые и удаленные посты по кешам лент
// через очередь в Redis
type QueueService struct {
	postService *PostService
}

func NewQueueService() *QueueService {
	return &QueueService{
		postService: NewPostService(),
	}
}

// StartWorkers запускает воркеры для обработки очереди
func (qs *QueueService) StartWorkers(ctx context.Context) {
	for i := 0; i < QUEUE_WORKER_COUNT; i++ {
		go qs.worker(ctx, i)
	}
}

// worker обрабатывает задачи из очереди
func (qs *QueueService) worker(ctx context.Context, workerID int) {
	log.Printf("Feed update worker %d started", workerID)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Feed update worker %d stopping", workerID)
			return
		default:
			result, err := RedisClient.BLPop(ctx, 5*time.Second, FEED_UPDATE_QUEUE).Result()
			if err != nil {
				if err == redis.Nil {
					continue
				}
				log.Printf("Worker %d error getting task: %v", workerID, err)
				time.Sleep(time.Second)
				continue
			}

			if len(result) < 2 {
				continue
			}

			var task FeedUpdateTask
			if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
				log.Printf("Worker %d error unmarshaling task: %v", workerID, err)
				continue
			}

			qs.processTask(ctx, &task, workerID)
		}
	}
}

func (qs *QueueService) processTask(ctx context.Context, task *FeedUpdateTask, workerID int) {
	switch task.Action {
	case "create":
		qs.postService.UpdateSubscriberFeeds(ctx, &task.Post)
	case "delete":
		qs.postService.RemovePostFromSubscriberFeeds(ctx, task.AuthorID, task.Post.ID)
	default:
		log.Printf("Worker %d unknown action: %s", workerID, task.Action)
	}
}

// EnqueueFeedUpdate добавляет задачу обновления лент в очередь
func (qs *QueueService) EnqueueFeedUpdate(ctx context.Context, authorID int64, post models.Post, action string) error {
	if RedisClient == nil {
		return fmt.Errorf("redis not available")
	}

	task := FeedUpdateTask{
		AuthorID: authorID,
		Post:     post,
		Action:   action,
	}

	taskData, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	if err := RedisClient.RPush(ctx, FEED_UPDATE_QUEUE, taskData).Err(); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// GetQueueStats возвращает длину очереди
func (qs *QueueService) GetQueueStats(ctx context.Context) (int64, error) {
	if RedisClient == nil {
		return 0, fmt.Errorf("redis not available")
	}
	return RedisClient.LLen(ctx, FEED_UPDATE_QUEUE).Result()
}

// QueueServiceInstance глобальный экземпляр сервиса очередей
var QueueServiceInstance *QueueService
