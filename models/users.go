package models

import (
	"time"
)

type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string    `gorm:"size:255;uniqueIndex" json:"email"`
	Password  string    `gorm:"size:255" json:"-"`
	Name      string    `gorm:"size:255" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// UserFriend - направленная пара user -> friend.
// Таблица хранит направленные ребра, но сервис дружбы всегда пишет
// обе стороны, поэтому отношение симметрично по построению.
type UserFriend struct {
	ID       int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID   int64 `gorm:"index;uniqueIndex:user_friend_pair_key" json:"user_id"`
	FriendID int64 `gorm:"uniqueIndex:user_friend_pair_key" json:"friend_id"`
}

func (UserFriend) TableName() string {
	return "user_friends"
}

// Subscription - подписка subscriber -> publisher.
// В отличие от дружбы отношение действительно направленное.
type Subscription struct {
	ID           int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	SubscriberID int64 `gorm:"index;uniqueIndex:subscription_pair_key" json:"subscriber_id"`
	PublisherID  int64 `gorm:"index;uniqueIndex:subscription_pair_key" json:"publisher_id"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

type UserTokens struct {
	ID     int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64  `gorm:"index:user_token_idx,unique" json:"user_id"`
	Token  string `gorm:"size:255;index:user_token_idx,unique" json:"token"`
}

func (UserTokens) TableName() string {
	return "user_tokens"
}

// UserWithEdges - пользователь вместе с обоими наборами ребер.
// Загружается одним вызовом, чтобы мутации дружбы и подписок
// не работали на устаревших данных.
type UserWithEdges struct {
	User
	FriendIDs       []int64 `json:"friend_ids"`
	SubscriptionIDs []int64 `json:"subscription_ids"`
}
