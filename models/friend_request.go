package models

import "time"

type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestAccepted RequestStatus = "ACCEPTED"
	RequestRejected RequestStatus = "REJECTED"
)

// FriendRequest - заявка в друзья.
// Жизненный цикл: PENDING -> ACCEPTED | REJECTED, терминальные
// статусы повторно не переводятся. CreatedAt ставится один раз.
type FriendRequest struct {
	ID         int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorID   int64         `gorm:"index" json:"author_id"`
	ReceiverID int64         `gorm:"index" json:"receiver_id"`
	Status     RequestStatus `gorm:"size:20" json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

func (FriendRequest) TableName() string {
	return "friend_requests"
}
