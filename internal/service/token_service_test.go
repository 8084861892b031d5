package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "speakpost/configs"
	"speakpost/internal/models"
	"speakpost/internal/transfer"
	"speakpost/pkg/utils"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

type fakeConnectionRepo struct {
	conn   *models.LinkedInConnection
	exists bool

	setTokenID      int64
	setAccessToken  string
	setRefreshToken string
	setExpiresAt    time.Time
}

func (f *fakeConnectionRepo) Upsert(ctx context.Context, conn *models.LinkedInConnection) (int64, error) {
	return 0, nil
}

func (f *fakeConnectionRepo) GetActiveByUserID(ctx context.Context, userID int64) (*models.LinkedInConnection, bool, error) {
	return f.conn, f.exists, nil
}

func (f *fakeConnectionRepo) ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.LinkedInConnection, error) {
	return nil, nil
}

func (f *fakeConnectionRepo) SetToken(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error {
	f.setTokenID = id
	f.setAccessToken = accessToken
	f.setRefreshToken = refreshToken
	f.setExpiresAt = expiresAt
	return nil
}

func (f *fakeConnectionRepo) Deactivate(ctx context.Context, userID int64) error {
	return nil
}

type stubLinkedIn struct {
	userInfoErr  error
	refreshResp  *transfer.LinkedInTokenResponse
	refreshErr   error
	refreshWith  string
	shareID      string
	shareErr     error
	shareText    string
	shareVisible string
}

func (s *stubLinkedIn) GetAuthURL(state string) string { return "" }

func (s *stubLinkedIn) Callback(ctx context.Context, code string, userID int64) error { return nil }

func (s *stubLinkedIn) RefreshToken(ctx context.Context, refreshToken string) (*transfer.LinkedInTokenResponse, error) {
	s.refreshWith = refreshToken
	return s.refreshResp, s.refreshErr
}

func (s *stubLinkedIn) GetUserInfo(ctx context.Context, accessToken string) (*transfer.LinkedInUserInfo, error) {
	if s.userInfoErr != nil {
		return nil, s.userInfoErr
	}
	return &transfer.LinkedInUserInfo{Sub: "member-1"}, nil
}

func (s *stubLinkedIn) CreateShare(ctx context.Context, accessToken, text, visibility string) (string, error) {
	s.shareText = text
	s.shareVisible = visibility
	return s.shareID, s.shareErr
}

func (s *stubLinkedIn) Disconnect(ctx context.Context, userID int64) error { return nil }

func encryptForTest(t *testing.T, plaintext string) string {
	t.Helper()
	encrypted, err := utils.Encrypt([]byte(plaintext), []byte(testSecretKey))
	require.NoError(t, err)
	return encrypted
}

func testConnection(t *testing.T, accessToken, refreshToken string) *models.LinkedInConnection {
	conn := &models.LinkedInConnection{
		ID:             3,
		UserID:         7,
		LinkedInUserID: "member-1",
		AccessToken:    encryptForTest(t, accessToken),
		IsActive:       true,
	}
	if refreshToken != "" {
		conn.RefreshToken.String = encryptForTest(t, refreshToken)
		conn.RefreshToken.Valid = true
	}
	return conn
}

func TestEnsureValidTokenReturnsWorkingToken(t *testing.T) {
	cr := &fakeConnectionRepo{}
	li := &stubLinkedIn{}
	s := NewTokenService(config.Config{SecretKey: testSecretKey}, cr, li)

	token, err := s.EnsureValidToken(context.Background(), testConnection(t, "live-token", ""))
	require.NoError(t, err)
	assert.Equal(t, "live-token", token)
	assert.Zero(t, cr.setTokenID, "no refresh should be persisted")
}

func TestEnsureValidTokenWithoutRefreshTokenFailsFast(t *testing.T) {
	cr := &fakeConnectionRepo{}
	li := &stubLinkedIn{userInfoErr: ErrAuthInvalid}
	s := NewTokenService(config.Config{SecretKey: testSecretKey}, cr, li)

	_, err := s.EnsureValidToken(context.Background(), testConnection(t, "stale-token", ""))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReauthorizationRequired)
}

func TestEnsureValidTokenRefreshesAndPersists(t *testing.T) {
	cr := &fakeConnectionRepo{}
	li := &stubLinkedIn{
		userInfoErr: ErrAuthInvalid,
		refreshResp: &transfer.LinkedInTokenResponse{
			AccessToken:  "fresh-token",
			RefreshToken: "fresh-refresh",
			ExpiresIn:    3600,
		},
	}
	s := NewTokenService(config.Config{SecretKey: testSecretKey}, cr, li)

	token, err := s.EnsureValidToken(context.Background(), testConnection(t, "stale-token", "old-refresh"))
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
	assert.Equal(t, "old-refresh", li.refreshWith)

	require.Equal(t, int64(3), cr.setTokenID)
	storedAccess, err := utils.Decrypt(cr.setAccessToken, []byte(testSecretKey))
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", storedAccess)
	storedRefresh, err := utils.Decrypt(cr.setRefreshToken, []byte(testSecretKey))
	require.NoError(t, err)
	assert.Equal(t, "fresh-refresh", storedRefresh)
	assert.WithinDuration(t, time.Now().Add(time.Hour), cr.setExpiresAt, time.Minute)
}

func TestEnsureValidTokenRefreshFailurePropagates(t *testing.T) {
	cr := &fakeConnectionRepo{}
	li := &stubLinkedIn{
		userInfoErr: ErrAuthInvalid,
		refreshErr:  errors.New("invalid_grant"),
	}
	s := NewTokenService(config.Config{SecretKey: testSecretKey}, cr, li)

	_, err := s.EnsureValidToken(context.Background(), testConnection(t, "stale-token", "revoked-refresh"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token refresh failed")
}
