package services

import (
	"context"
	"socialmedia/db"
	"socialmedia/models"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubscribeUnsubscribeRoundTrip(t *testing.T) {
	setupTestDB(t)
	rs := NewRelationService()
	ctx := context.Background()

	a := createTestUser(t)
	b := createTestUser(t)

	require.NoError(t, rs.Subscribe(ctx, a.ID, b.ID))
	require.True(t, subscriptionExists(t, a.ID, b.ID))
	// Подписка направленная
	require.False(t, subscriptionExists(t, b.ID, a.ID))

	require.NoError(t, rs.Unsubscribe(ctx, a.ID, b.ID))
	require.False(t, subscriptionExists(t, a.ID, b.ID))
}

func TestSubscribeIdempotent(t *testing.T) {
	setupTestDB(t)
	rs := NewRelationService()
	ctx := context.Background()

	a := createTestUser(t)
	b := createTestUser(t)

	require.NoError(t, rs.Subscribe(ctx, a.ID, b.ID))
	require.NoError(t, rs.Subscribe(ctx, a.ID, b.ID))

	var count int64
	err := db.ORM.Model(&models.Subscription{}).
		Where("subscriber_id = ?", a.ID).
		Count(&count).Error
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestUnsubscribeAbsentEdgeIsNoop(t *testing.T) {
	setupTestDB(t)
	rs := NewRelationService()
	ctx := context.Background()

	a := createTestUser(t)
	b := createTestUser(t)

	require.NoError(t, rs.Unsubscribe(ctx, a.ID, b.ID))
}

func TestSubscribeUnknownUser(t *testing.T) {
	setupTestDB(t)
	rs := NewRelationService()
	ctx := context.Background()

	a := createTestUser(t)

	err := rs.Subscribe(ctx, a.ID, 999)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestSendFriendRequest(t *testing.T) {
	setupTestDB(t)
	rs := NewRelationService()
	ctx := context.Background()

	a := createTestUser(t)
	b := createTestUser(t)

	request, err := rs.SendFriendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.Equal(t, models.RequestPending, request.Status)
	require.Equal(t, a.ID, request.AuthorID)
	require.Equal(t, b.ID, request.ReceiverID)
	require.False(t, request.CreatedAt.IsZero())

	// Ровно одна PENDING заявка
	var count int64
	err = db.ORM.Model(&models.FriendRequest{}).
		Where("author_id = ? AND receiver_id = ? AND status = ?", a.ID, b.ID, models.RequestPending).
		Count(&count).Error
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	// Отправитель подписался на получателя
	require.True(t, subscriptionExists(t, a.ID, b.ID))
	require.False(t, subscriptionExists(t, b.ID, a.ID))
}

func TestSendFriendRequestToSelf(t *testing.T) {
	setupTestDB(t)
	rs := NewRelationService()
	ctx := context.Background()

	a := createTestUser(t)

	_, err := rs.SendFriendRequest(ctx, a.ID, a.ID)
	require.Error(t, err)
}

func TestSendFriendRequestDuplicate(t *testing.T) {
	setupTestDB(t)
	rs := NewRelationService()
	ctx := context.Background()

	a := createTestUser(t)
	b := createTestUser(t)

	_, err := rs.SendFriendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)

	_, err = rs.SendFriendRequest(ctx, a.ID, b.ID)
	require.ErrorIs(t, err, ErrDuplicateRequest)

	// Встречная заявка при уже висящей тоже отклоняется
	_, err = rs.SendFriendRequest(ctx, b.ID, a.ID)
	require.ErrorIs(t, err, ErrDuplicateRequest)
}

func TestSendFriendRequestGuardFailure(t *testing.T) {
	setupTestDB(t)
	rs := NewRelationService()
	ctx := context.Background()

	a := createTestUser(t)
	b := createTestUser(t)

	// Сбой хранилища при проверке висящих заявок - не "заявки нет":
	// операция обязана вернуть ошибку, а не создавать запись
	require.NoError(t, db.ORM.Migrator().DropTable(&models.FriendRequest{}))

	_, err := rs.SendFriendRequest(ctx, a.ID, b.ID)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrDuplicateRequest)
	require.Contains(t, err.Error(), "failed to check pending requests")
}

func TestAcceptFriendRequest(t *testing.T) {
	setupTestDB(t)
	rs := NewRelationService()
	ctx := context.Background()

	a := createTestUser(t)
	b := createTestUser(t)

	request, err := rs.SendFriendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)

	require.NoError(t, rs.AcceptFriendRequest(ctx, request.ID))

	var updated models.FriendRequest
	require.NoError(t, db.ORM.First(&updated, request.ID).Error)
	require.Equal(t, models.RequestAccepted, updated.Status)

	// Дружба взаимная
	require.True(t, friendEdgeExists(t, a.ID, b.ID))
	require.True(t, friendEdgeExists(t, b.ID, a.ID))

	// После принятия оба подписаны друг на друга
	require.True(t, subscriptionExists(t, a.ID, b.ID))
	require.True(t, subscriptionExists(t, b.ID, a.ID))
}

func TestAcceptFriendRequestTerminal(t *testing.T) {
	setupTestDB(t)
	rs := NewRelationService()
	ctx := context.Background()

	a := createTestUser(t)
	b := createTestUser(t)

	request, err := rs.SendFriendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.NoError(t, rs.AcceptFriendRequest(ctx, request.ID))

	// Повторный перевод из терминального статуса запрещен
	err = rs.AcceptFriendRequest(ctx, request.ID)
	require.ErrorIs(t, err, ErrRequestNotPending)

	err = rs.RejectFriendRequest(ctx, request.ID)
	require.ErrorIs(t, err, ErrRequestNotPending)

	err = rs.AcceptFriendRequest(ctx, 999)
	require.ErrorIs(t, err, ErrRequestNotFound)
}

func TestAcceptFriendRequestDeletedParty(t *testing.T) {
	setupTestDB(t)
	rs := NewRelationService()
	ctx := context.Background()

	a := createTestUser(t)
	b := createTestUser(t)

	request, err := rs.SendFriendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)

	// Автор заявки удален до принятия
	require.NoError(t, db.ORM.Delete(&models.User{}, a.ID).Error)

	err = rs.AcceptFriendRequest(ctx, request.ID)
	require.ErrorIs(t, err, ErrUserNotFound)

	// Транзакция откатилась целиком: статус и ребра не тронуты
	var updated models.FriendRequest
	require.NoError(t, db.ORM.First(&updated, request.ID).Error)
	require.Equal(t, models.RequestPending, updated.Status)
	require.False(t, friendEdgeExists(t, a.ID, b.ID))
	require.False(t, friendEdgeExists(t, b.ID, a.ID))
}

func TestRejectFriendRequest(t *testing.T) {
	setupTestDB(t)
	rs := NewRelationService()
	ctx := context.Background()

	a := createTestUser(t)
	b := createTestUser(t)

	request, err := rs.SendFriendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)

	require.NoError(t, rs.RejectFriendRequest(ctx, request.ID))

	var updated models.FriendRequest
	require.NoError(t, db.ORM.First(&updated, request.ID).Error)
	require.Equal(t, models.RequestRejected, updated.Status)

	// Ребра не изменились: осталась только подписка отправителя
	require.False(t, friendEdgeExists(t, a.ID, b.ID))
	require.False(t, friendEdgeExists(t, b.ID, a.ID))
	require.True(t, subscriptionExists(t, a.ID, b.ID))
	require.False(t, subscriptionExists(t, b.ID, a.ID))

	// Запись заявки не удаляется
	var count int64
	require.NoError(t, db.ORM.Model(&models.FriendRequest{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestDeleteFriendAsymmetry(t *testing.T) {
	setupTestDB(t)
	rs := NewRelationService()
	ctx := context.Background()

	a := createTestUser(t)
	b := createTestUser(t)

	request, err := rs.SendFriendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.NoError(t, rs.AcceptFriendRequest(ctx, request.ID))

	require.NoError(t, rs.DeleteFriend(ctx, a.ID, b.ID))

	// Дружба разорвана в обе стороны
	require.False(t, friendEdgeExists(t, a.ID, b.ID))
	require.False(t, friendEdgeExists(t, b.ID, a.ID))

	// A отписан от B, но B остается подписан на A
	require.False(t, subscriptionExists(t, a.ID, b.ID))
	require.True(t, subscriptionExists(t, b.ID, a.ID))
}

func TestDeleteFriendNotFriends(t *testing.T) {
	setupTestDB(t)
	rs := NewRelationService()
	ctx := context.Background()

	a := createTestUser(t)
	b := createTestUser(t)

	err := rs.DeleteFriend(ctx, a.ID, b.ID)
	require.ErrorIs(t, err, ErrFriendshipNotFound)
}

func TestGetFriendsSymmetricClosure(t *testing.T) {
	setupTestDB(t)
	rs := NewRelationService()
	ctx := context.Background()

	a := createTestUser(t)
	b := createTestUser(t)
	c := createTestUser(t)

	reqAB, err := rs.SendFriendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)
	require.NoError(t, rs.AcceptFriendRequest(ctx, reqAB.ID))

	reqCA, err := rs.SendFriendRequest(ctx, c.ID, a.ID)
	require.NoError(t, err)
	require.NoError(t, rs.AcceptFriendRequest(ctx, reqCA.ID))

	friends, err := rs.GetFriends(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, friends, 2)

	ids := []int64{friends[0].ID, friends[1].ID}
	require.ElementsMatch(t, []int64{b.ID, c.ID}, ids)
}

func TestGetSubscribersOf(t *testing.T) {
	setupTestDB(t)
	rs := NewRelationService()
	ctx := context.Background()

	a := createTestUser(t)
	b := createTestUser(t)
	c := createTestUser(t)

	require.NoError(t, rs.Subscribe(ctx, b.ID, a.ID))
	require.NoError(t, rs.Subscribe(ctx, c.ID, a.ID))

	subscribers, err := rs.GetSubscribersOf(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, subscribers, 2)
	require.ElementsMatch(t, []int64{b.ID, c.ID}, []int64{subscribers[0].ID, subscribers[1].ID})
}

func TestGetPendingRequests(t *testing.T) {
	setupTestDB(t)
	rs := NewRelationService()
	ctx := context.Background()

	a := createTestUser(t)
	b := createTestUser(t)
	c := createTestUser(t)

	_, err := rs.SendFriendRequest(ctx, a.ID, c.ID)
	require.NoError(t, err)
	_, err = rs.SendFriendRequest(ctx, b.ID, c.ID)
	require.NoError(t, err)

	requests, err := rs.GetPendingRequests(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, requests, 2)
}

func TestFriendRequestStoreOps(t *testing.T) {
	setupTestDB(t)
	rs := NewRelationService()
	ctx := context.Background()

	a := createTestUser(t)
	b := createTestUser(t)
	c := createTestUser(t)

	first, err := rs.SendFriendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = rs.SendFriendRequest(ctx, a.ID, c.ID)
	require.NoError(t, err)

	all, err := rs.FindAllRequests(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	require.NoError(t, rs.DeleteRequest(ctx, first.ID))
	require.ErrorIs(t, rs.DeleteRequest(ctx, first.ID), ErrRequestNotFound)

	require.NoError(t, rs.DeleteAllRequests(ctx))
	all, err = rs.FindAllRequests(ctx)
	require.NoError(t, err)
	require.Len(t, all, 0)
}
