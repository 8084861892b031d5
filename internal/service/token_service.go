package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	config "speakpost/configs"
	"speakpost/internal/models"
	"speakpost/internal/repository"
	"speakpost/pkg/utils"
)

// ErrReauthorizationRequired means the stored grant is no longer usable and
// the user has to reconnect LinkedIn. Retrying is pointless.
var ErrReauthorizationRequired = errors.New("linkedin reauthorization required")

// TokenService guarantees a currently valid access token before a provider
// call.
type TokenService interface {
	EnsureValidToken(ctx context.Context, conn *models.LinkedInConnection) (string, error)
	Refresh(ctx context.Context, conn *models.LinkedInConnection) (string, error)
}

type tokenService struct {
	cfg config.Config
	cr  repository.ConnectionRepository
	li  LinkedInService
}

func NewTokenService(cfg config.Config, cr repository.ConnectionRepository, li LinkedInService) TokenService {
	return &tokenService{
		cfg: cfg,
		cr:  cr,
		li:  li,
	}
}

// EnsureValidToken probes the stored access token with a live identity call
// and treats any failure as invalid, not just 401. An invalid token without a
// refresh token fails fast; with one, the pair is refreshed and persisted.
func (s *tokenService) EnsureValidToken(ctx context.Context, conn *models.LinkedInConnection) (string, error) {
	accessToken, err := utils.Decrypt(conn.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return "", err
	}

	if _, probeErr := s.li.GetUserInfo(ctx, accessToken); probeErr == nil {
		return accessToken, nil
	}

	return s.Refresh(ctx, conn)
}

// Refresh exchanges the stored refresh token for a new pair and persists it,
// without probing the current token first. The expiry sweep calls this
// directly: a token expiring in ten minutes still passes the probe, so the
// sweep would never refresh anything through EnsureValidToken.
func (s *tokenService) Refresh(ctx context.Context, conn *models.LinkedInConnection) (string, error) {
	if !conn.RefreshToken.Valid || conn.RefreshToken.String == "" {
		slog.Info("no refresh token present", "connection_id", conn.ID)
		return "", ErrReauthorizationRequired
	}

	refreshToken, err := utils.Decrypt(conn.RefreshToken.String, []byte(s.cfg.SecretKey))
	if err != nil {
		return "", err
	}

	tokenResponse, err := s.li.RefreshToken(ctx, refreshToken)
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("token refresh failed: %w", err)
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(tokenResponse.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return "", err
	}

	var encryptedRefreshToken string
	if tokenResponse.RefreshToken != "" {
		encryptedRefreshToken, err = utils.Encrypt([]byte(tokenResponse.RefreshToken), []byte(s.cfg.SecretKey))
		if err != nil {
			return "", err
		}
	}

	expiresAt := GetExpiresAt(tokenResponse.ExpiresIn)
	if err := s.cr.SetToken(ctx, conn.ID, encryptedAccessToken, encryptedRefreshToken, expiresAt); err != nil {
		return "", err
	}

	return tokenResponse.AccessToken, nil
}
