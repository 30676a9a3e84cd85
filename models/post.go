package models

import "time"

// Post - пост пользователя
type Post struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorID  int64     `gorm:"index" json:"author_id"`
	Title     string    `gorm:"size:255" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Post) TableName() string {
	return "posts"
}

// Image - картинка поста. Принадлежит ровно одному посту и
// удаляется вместе с ним.
type Image struct {
	ID     int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID int64  `gorm:"index" json:"post_id"`
	Name   string `gorm:"size:255" json:"name"`
	URL    string `gorm:"size:1024" json:"url"`
}

func (Image) TableName() string {
	return "images"
}

// FeedPost - элемент ленты с данными автора
type FeedPost struct {
	ID         int64     `json:"id"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// FeedResponse - ответ API для ленты
type FeedResponse struct {
	Posts   []FeedPost `json:"posts"`
	Page    int        `json:"page"`
	PerPage int        `json:"per_page"`
	HasMore bool       `json:"has_more"`
}

// UserPosts - пользователь и все его посты (для батч-запроса)
type UserPosts struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Posts  []Post `json:"posts"`
}
