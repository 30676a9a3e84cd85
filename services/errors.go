package services

import "errors"

// Сентинельные ошибки доменного слоя. Хендлеры различают их через
// errors.Is при выборе HTTP-статуса; ошибки хранилища сюда не
// сворачиваются, а пробрасываются обернутыми.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrPostNotFound       = errors.New("post not found")
	ErrRequestNotFound    = errors.New("friend request not found")
	ErrRequestNotPending  = errors.New("friend request is not pending")
	ErrDuplicateRequest   = errors.New("friend request already pending")
	ErrFriendshipNotFound = errors.New("friendship not found")
)
