package services

import (
	"socialmedia/db"
	"socialmedia/models"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB инициализирует тестовую базу данных SQLite в памяти
func setupTestDB(t *testing.T) {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// В :memory: каждое новое соединение видит пустую базу
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(database))

	db.ORM = database
}

// createTestUser создает тестового пользователя
func createTestUser(t *testing.T) *models.User {
	t.Helper()

	user := &models.User{
		Email:    gofakeit.Email(),
		Password: "testpassword",
		Name:     gofakeit.Name(),
	}
	require.NoError(t, db.ORM.Create(user).Error)
	return user
}

func subscriptionExists(t *testing.T, subscriberID, publisherID int64) bool {
	t.Helper()

	var count int64
	err := db.ORM.Model(&models.Subscription{}).
		Where("subscriber_id = ? AND publisher_id = ?", subscriberID, publisherID).
		Count(&count).Error
	require.NoError(t, err)
	return count > 0
}

func friendEdgeExists(t *testing.T, userID, friendID int64) bool {
	t.Helper()

	var count int64
	err := db.ORM.Model(&models.UserFriend{}).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		Count(&count).Error
	require.NoError(t, err)
	return count > 0
}
