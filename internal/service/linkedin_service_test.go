package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "speakpost/configs"
	"speakpost/internal/transfer"
)

func newLinkedInTestService(ts *httptest.Server) *linkedInService {
	return &linkedInService{
		cfg: config.Config{
			LinkedInClientID:     "client-id",
			LinkedInClientSecret: "client-secret",
			LinkedInRedirectURI:  "https://app.example.com/auth/linkedin/callback",
			SecretKey:            testSecretKey,
		},
		client:   &http.Client{Timeout: 5 * time.Second},
		authBase: ts.URL,
		apiBase:  ts.URL,
	}
}

func TestGetAuthURL(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()
	s := newLinkedInTestService(ts)

	authURL := s.GetAuthURL("42")
	assert.Contains(t, authURL, "/authorization?")
	assert.Contains(t, authURL, "client_id=client-id")
	assert.Contains(t, authURL, "state=42")
	assert.Contains(t, authURL, "w_member_social")
}

func TestGetUserInfoErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrAuthInvalid},
		{"forbidden", http.StatusForbidden, ErrPermissionDenied},
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer ts.Close()

			s := newLinkedInTestService(ts)
			_, err := s.GetUserInfo(context.Background(), "token")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateShare(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/userinfo":
			assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(transfer.LinkedInUserInfo{Sub: "abc123"})
		case "/ugcPosts":
			assert.Equal(t, "2.0.0", r.Header.Get("X-Restli-Protocol-Version"))

			var post transfer.UGCPostRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&post))
			assert.Equal(t, "urn:li:person:abc123", post.Author)
			assert.Equal(t, "PUBLISHED", post.LifecycleState)
			assert.Equal(t, "hello linkedin", post.SpecificContent.ShareContent.ShareCommentary.Text)
			assert.Equal(t, "PUBLIC", post.Visibility.MemberNetworkVisibility)

			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(transfer.UGCPostResponse{ID: "urn:li:ugcPost:777"})
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer ts.Close()

	s := newLinkedInTestService(ts)
	id, err := s.CreateShare(context.Background(), "access-token", "hello linkedin", "")
	require.NoError(t, err)
	assert.Equal(t, "urn:li:ugcPost:777", id)
}

func TestCreateShareFallsBackToRestliHeader(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/userinfo":
			json.NewEncoder(w).Encode(transfer.LinkedInUserInfo{Sub: "abc123"})
		case "/ugcPosts":
			w.Header().Set("X-Restli-Id", "urn:li:share:555")
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte("{}"))
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer ts.Close()

	s := newLinkedInTestService(ts)
	id, err := s.CreateShare(context.Background(), "access-token", "hello", "CONNECTIONS")
	require.NoError(t, err)
	assert.Equal(t, "urn:li:share:555", id)
}

func TestCreateShareSurfacesPermissionError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/userinfo":
			json.NewEncoder(w).Encode(transfer.LinkedInUserInfo{Sub: "abc123"})
		case "/ugcPosts":
			w.WriteHeader(http.StatusForbidden)
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer ts.Close()

	s := newLinkedInTestService(ts)
	_, err := s.CreateShare(context.Background(), "access-token", "hello", "PUBLIC")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}
