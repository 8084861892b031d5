package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "speakpost/configs"
	"speakpost/internal/models"
	"speakpost/internal/repository"
	"speakpost/internal/transfer"
	"speakpost/pkg/utils"
)

const (
	linkedInAuthBaseURL = "https://www.linkedin.com/oauth/v2"
	linkedInAPIBaseURL  = "https://api.linkedin.com/v2"

	linkedInScopes = "openid profile email w_member_social"
)

// Publish failure taxonomy. Callers decide retry-vs-reauth from these.
var (
	ErrAuthInvalid      = errors.New("linkedin token invalid")
	ErrRateLimited      = errors.New("linkedin rate limited")
	ErrPermissionDenied = errors.New("linkedin posting permission denied")
)

type LinkedInService interface {
	GetAuthURL(state string) string
	Callback(ctx context.Context, code string, userID int64) error
	RefreshToken(ctx context.Context, refreshToken string) (*transfer.LinkedInTokenResponse, error)
	GetUserInfo(ctx context.Context, accessToken string) (*transfer.LinkedInUserInfo, error)
	CreateShare(ctx context.Context, accessToken, text, visibility string) (string, error)
	Disconnect(ctx context.Context, userID int64) error
}

type linkedInService struct {
	cfg      config.Config
	conn     repository.ConnectionRepository
	client   *http.Client
	authBase string
	apiBase  string
}

func NewLinkedInService(cfg config.Config, conn repository.ConnectionRepository) LinkedInService {
	return &linkedInService{
		cfg:      cfg,
		conn:     conn,
		client:   &http.Client{Timeout: 30 * time.Second},
		authBase: linkedInAuthBaseURL,
		apiBase:  linkedInAPIBaseURL,
	}
}

func (s *linkedInService) GetAuthURL(state string) string {
	params := url.Values{}
	params.Add("response_type", "code")
	params.Add("client_id", s.cfg.LinkedInClientID)
	params.Add("redirect_uri", s.cfg.LinkedInRedirectURI)
	params.Add("scope", linkedInScopes)
	params.Add("state", state)

	return fmt.Sprintf("%s/authorization?%s", s.authBase, params.Encode())
}

func (s *linkedInService) Callback(ctx context.Context, code string, userID int64) error {
	if code == "" {
		err := errors.New("code is empty")
		slog.Info(err.Error())
		return err
	}
	if userID == 0 {
		err := errors.New("user not found")
		slog.Info(err.Error())
		return err
	}

	tokenResponse, err := s.exchangeCodeForToken(ctx, code)
	if err != nil {
		return err
	}

	userInfo, err := s.GetUserInfo(ctx, tokenResponse.AccessToken)
	if err != nil {
		return err
	}

	profileData, err := json.Marshal(userInfo)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(tokenResponse.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	connection := &models.LinkedInConnection{
		UserID:         userID,
		LinkedInUserID: userInfo.Sub,
		AccessToken:    encryptedAccessToken,
		ProfileData:    profileData,
	}

	if tokenResponse.RefreshToken != "" {
		encryptedRefreshToken, err := utils.Encrypt([]byte(tokenResponse.RefreshToken), []byte(s.cfg.SecretKey))
		if err != nil {
			return err
		}
		connection.RefreshToken.String = encryptedRefreshToken
		connection.RefreshToken.Valid = true
	}
	if tokenResponse.ExpiresIn > 0 {
		connection.TokenExpiresAt.Time = GetExpiresAt(tokenResponse.ExpiresIn)
		connection.TokenExpiresAt.Valid = true
	}

	if _, err = s.conn.Upsert(ctx, connection); err != nil {
		return err
	}

	return nil
}

func (s *linkedInService) exchangeCodeForToken(ctx context.Context, code string) (*transfer.LinkedInTokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("client_id", s.cfg.LinkedInClientID)
	data.Set("client_secret", s.cfg.LinkedInClientSecret)
	data.Set("redirect_uri", s.cfg.LinkedInRedirectURI)

	return s.tokenRequest(ctx, data)
}

func (s *linkedInService) RefreshToken(ctx context.Context, refreshToken string) (*transfer.LinkedInTokenResponse, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)
	data.Set("client_id", s.cfg.LinkedInClientID)
	data.Set("client_secret", s.cfg.LinkedInClientSecret)

	return s.tokenRequest(ctx, data)
}

func (s *linkedInService) tokenRequest(ctx context.Context, data url.Values) (*transfer.LinkedInTokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.authBase+"/accessToken", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		slog.Info("LinkedIn token endpoint returned non-200 status")
		return nil, fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResponse transfer.LinkedInTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	return &tokenResponse, nil
}

// GetUserInfo resolves the member identity behind an access token. It doubles
// as the token validity probe: any non-2xx response means invalid.
func (s *linkedInService) GetUserInfo(ctx context.Context, accessToken string) (*transfer.LinkedInUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiBase+"/userinfo", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}

	var userInfo transfer.LinkedInUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &userInfo, nil
}

// CreateShare publishes a text post on the member's behalf and returns the
// provider-assigned post id. The same adapter serves both the manual publish
// endpoint and the scheduled runner.
func (s *linkedInService) CreateShare(ctx context.Context, accessToken, text, visibility string) (string, error) {
	userInfo, err := s.GetUserInfo(ctx, accessToken)
	if err != nil {
		return "", err
	}

	if visibility != "CONNECTIONS" {
		visibility = "PUBLIC"
	}

	post := transfer.UGCPostRequest{
		Author:         "urn:li:person:" + userInfo.Sub,
		LifecycleState: "PUBLISHED",
		SpecificContent: transfer.UGCSpecificContent{
			ShareContent: transfer.UGCShareContent{
				ShareCommentary:    transfer.UGCShareCommentary{Text: text},
				ShareMediaCategory: "NONE",
			},
		},
		Visibility: transfer.UGCVisibility{MemberNetworkVisibility: visibility},
	}

	payload, err := json.Marshal(post)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiBase+"/ugcPosts", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", statusError(resp)
	}

	var created transfer.UGCPostResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		slog.Info(err.Error())
		return "", err
	}

	if created.ID == "" {
		created.ID = resp.Header.Get("X-Restli-Id")
	}
	return created.ID, nil
}

// Disconnect deactivates the user's connection. The grant row is kept for
// audit, never hard-deleted.
func (s *linkedInService) Disconnect(ctx context.Context, userID int64) error {
	if userID == 0 {
		err := errors.New("UserID is not valid")
		slog.Info(err.Error())
		return err
	}
	return s.conn.Deactivate(ctx, userID)
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrAuthInvalid, string(body))
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrPermissionDenied, string(body))
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, string(body))
	default:
		return fmt.Errorf("linkedin returned status %d: %s", resp.StatusCode, string(body))
	}
}
