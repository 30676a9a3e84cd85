package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"socialmedia/db"
	"socialmedia/models"
	"strings"

	"golang.org/x/crypto/argon2"
	"gorm.io/gorm"
)

// UserService - регистрация, аутентификация и чтение пользователей
// вместе с их ребрами (друзья и подписки).
type UserService struct{}

func NewUserService() *UserService {
	return &UserService{}
}

func hashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(hash), nil
}

func verifyPassword(stored, password string) error {
	parts := strings.Split(stored, "$")
	if len(parts) != 2 {
		return errors.New("invalid password format")
	}
	salt, err := hex.DecodeString(parts[0])
	if err != nil {
		return err
	}
	hash := argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
	if hex.EncodeToString(hash) != parts[1] {
		return errors.New("invalid password")
	}
	return nil
}

// Register создает пользователя с захешированным паролем
func (us *UserService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" || strings.TrimSpace(name) == "" {
		return nil, errors.New("email, password and name must not be blank")
	}

	var alreadyExists int64
	err := db.GetReadOnlyDB(ctx).Model(&models.User{}).Where("email = ?", email).Count(&alreadyExists).Error
	if err != nil {
		return nil, err
	}
	if alreadyExists > 0 {
		return nil, ErrUserExists
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    email,
		Password: passwordHash,
		Name:     name,
	}
	if err := db.GetWriteDB(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// FindByEmailAndPassword возвращает пользователя по паре email/пароль
func (us *UserService) FindByEmailAndPassword(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := db.GetReadOnlyDB(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if err := verifyPassword(user.Password, password); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login проверяет пароль и выдает новый токен
func (us *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := us.FindByEmailAndPassword(ctx, email, password)
	if err != nil {
		return "", err
	}

	// Старые токены сбрасываем
	_ = us.Logout(ctx, user.ID)

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	err = db.GetWriteDB(ctx).Create(&models.UserTokens{
		UserID: user.ID,
		Token:  token,
	}).Error
	if err != nil {
		return "", err
	}
	return token, nil
}

// Logout удаляет все токены пользователя
func (us *UserService) Logout(ctx context.Context, userID int64) error {
	return db.GetWriteDB(ctx).Where("user_id = ?", userID).Delete(&models.UserTokens{}).Error
}

// CheckToken возвращает id пользователя по токену
func (us *UserService) CheckToken(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, errors.New("token is empty")
	}
	var userToken models.UserTokens
	err := db.GetReadOnlyDB(ctx).Where("token = ?", token).First(&userToken).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to check token: %w", err)
	}
	return userToken.UserID, nil
}

// FindByID возвращает пользователя по id
func (us *UserService) FindByID(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	err := db.GetReadOnlyDB(ctx).First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

// FindWithEdges возвращает пользователя сразу с обоими наборами
// ребер. Один вызов, чтобы мутации графа не работали на
// частично загруженном состоянии.
func (us *UserService) FindWithEdges(ctx context.Context, userID int64) (*models.UserWithEdges, error) {
	var user models.User
	err := db.GetReadOnlyDB(ctx).First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	result := &models.UserWithEdges{User: user}

	err = db.GetReadOnlyDB(ctx).Model(&models.UserFriend{}).
		Where("user_id = ?", userID).
		Pluck("friend_id", &result.FriendIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get friends: %w", err)
	}

	err = db.GetReadOnlyDB(ctx).Model(&models.Subscription{}).
		Where("subscriber_id = ?", userID).
		Pluck("publisher_id", &result.SubscriptionIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriptions: %w", err)
	}
	return result, nil
}

// Delete удаляет пользователя вместе с его ребрами и токенами
func (us *UserService) Delete(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return errors.New("invalid user ID")
	}

	return db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.User{}, userID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}

		if err := tx.Where("user_id = ? OR friend_id = ?", userID, userID).
			Delete(&models.UserFriend{}).Error; err != nil {
			return err
		}
		if err := tx.Where("subscriber_id = ? OR publisher_id = ?", userID, userID).
			Delete(&models.Subscription{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&models.UserTokens{}).Error
	})
}
