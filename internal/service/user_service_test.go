package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speakpost/internal/models"
)

type fakeUserRepo struct {
	user   *models.User
	exists bool
	err    error
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, bool, error) {
	return f.user, f.exists, f.err
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	return f.user, f.exists, f.err
}

func (f *fakeUserRepo) Create(ctx context.Context, tx *sql.Tx, user *models.User) (int64, error) {
	return 0, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	return nil
}

type fakeSubscriptionRepo struct {
	sub    *models.Subscription
	exists bool
}

func (f *fakeSubscriptionRepo) GetByUserID(ctx context.Context, userID int64) (*models.Subscription, bool, error) {
	return f.sub, f.exists, nil
}

func (f *fakeSubscriptionRepo) Create(ctx context.Context, subscription *models.Subscription) (int64, error) {
	return 0, nil
}

func (f *fakeSubscriptionRepo) UpdateSubscription(ctx context.Context, subscription *models.Subscription) error {
	return nil
}

func testAccount() *models.User {
	return &models.User{
		ID:             7,
		GoogleID:       "g-123",
		Email:          "me@example.com",
		Name:           "Me",
		ProfilePicture: "https://lh3.example.com/pic",
	}
}

func TestAccountInfoDefaults(t *testing.T) {
	s := NewUserService(
		&fakeUserRepo{user: testAccount(), exists: true},
		&fakeConnectionRepo{},
		&fakeSubscriptionRepo{},
	)

	info, err := s.AccountInfo(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), info.ID)
	assert.Equal(t, "me@example.com", info.Email)
	assert.False(t, info.LinkedInConnected)
	assert.Empty(t, info.LinkedInName)
	assert.Equal(t, "free", info.SubscriptionStatus)
	assert.Nil(t, info.SubscriptionEnds)
}

func TestAccountInfoIncludesConnectionAndSubscription(t *testing.T) {
	conn := &models.LinkedInConnection{
		ID:          3,
		UserID:      7,
		ProfileData: []byte(`{"sub":"li-9","name":"Me OnLinkedIn"}`),
		IsActive:    true,
	}
	ends := time.Now().Add(20 * 24 * time.Hour).Truncate(time.Second)
	sub := &models.Subscription{UserID: 7, Status: "active", SubscriptionEndDate: ends}

	s := NewUserService(
		&fakeUserRepo{user: testAccount(), exists: true},
		&fakeConnectionRepo{conn: conn, exists: true},
		&fakeSubscriptionRepo{sub: sub, exists: true},
	)

	info, err := s.AccountInfo(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, info.LinkedInConnected)
	assert.Equal(t, "Me OnLinkedIn", info.LinkedInName)
	assert.Equal(t, "active", info.SubscriptionStatus)
	require.NotNil(t, info.SubscriptionEnds)
	assert.Equal(t, ends, *info.SubscriptionEnds)
}

func TestAccountInfoUnknownUser(t *testing.T) {
	s := NewUserService(&fakeUserRepo{}, &fakeConnectionRepo{}, &fakeSubscriptionRepo{})

	_, err := s.AccountInfo(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, "user not found", err.Error())
}