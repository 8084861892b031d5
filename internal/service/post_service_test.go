package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"speakpost/internal/models"
	"speakpost/internal/transfer"
)

type fakePostRepo struct {
	posts map[int64]*models.Post

	publishedID   int64
	publishedWith string
}

func (f *fakePostRepo) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	return 0, nil
}

func (f *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	return f.posts[id], nil
}

func (f *fakePostRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	var out []*models.Post
	for _, p := range f.posts {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePostRepo) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	p, ok := f.posts[postID]
	return ok && p.UserID == userID, nil
}

func (f *fakePostRepo) MarkScheduled(ctx context.Context, tx *sql.Tx, postID int64, scheduledAt time.Time) error {
	return nil
}

func (f *fakePostRepo) MarkDraft(ctx context.Context, tx *sql.Tx, postID int64) error {
	return nil
}

func (f *fakePostRepo) MarkPublished(ctx context.Context, tx *sql.Tx, postID int64, linkedinPostID string, publishedAt time.Time) error {
	f.publishedID = postID
	f.publishedWith = linkedinPostID
	return nil
}

func (f *fakePostRepo) Remove(ctx context.Context, id int64) error {
	delete(f.posts, id)
	return nil
}

type fakeScheduleRepo struct {
	active *models.ScheduledPost
}

func (f *fakeScheduleRepo) Create(ctx context.Context, tx *sql.Tx, sp *models.ScheduledPost) (int64, error) {
	return 0, nil
}

func (f *fakeScheduleRepo) GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error) {
	return nil, nil
}

func (f *fakeScheduleRepo) GetActiveByPostID(ctx context.Context, postID int64) (*models.ScheduledPost, error) {
	return f.active, nil
}

func (f *fakeScheduleRepo) ListDue(ctx context.Context, cutoff time.Time) ([]*models.ScheduledPost, error) {
	return nil, nil
}

func (f *fakeScheduleRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.ScheduledPost, error) {
	return nil, nil
}

func (f *fakeScheduleRepo) Claim(ctx context.Context, id int64) (bool, error) {
	return false, nil
}

func (f *fakeScheduleRepo) Cancel(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
	return false, nil
}

func (f *fakeScheduleRepo) MarkCompleted(ctx context.Context, id, postID int64, linkedinPostID string) error {
	return nil
}

func (f *fakeScheduleRepo) MarkFailed(ctx context.Context, id int64, errorMessage string) error {
	return nil
}

type stubTokenService struct {
	token string
	err   error
}

func (s *stubTokenService) EnsureValidToken(ctx context.Context, conn *models.LinkedInConnection) (string, error) {
	return s.token, s.err
}

func (s *stubTokenService) Refresh(ctx context.Context, conn *models.LinkedInConnection) (string, error) {
	return s.token, s.err
}

func TestPublishSendsTextAndMarksPost(t *testing.T) {
	pr := &fakePostRepo{posts: map[int64]*models.Post{
		10: {ID: 10, UserID: 7, Status: models.PostStatusDraft},
	}}
	cr := &fakeConnectionRepo{conn: &models.LinkedInConnection{ID: 3, UserID: 7}, exists: true}
	li := &stubLinkedIn{shareID: "urn:li:ugcPost:1"}
	s := NewPostService(nil, pr, &fakeScheduleRepo{}, cr, &stubTokenService{token: "tok"}, li)

	id, err := s.Publish(context.Background(), 7, &transfer.ManualPublishRequest{
		Text:       "hello world",
		Visibility: "PUBLIC",
		PostID:     10,
	})
	require.NoError(t, err)
	assert.Equal(t, "urn:li:ugcPost:1", id)
	assert.Equal(t, "hello world", li.shareText)
	assert.Equal(t, int64(10), pr.publishedID)
	assert.Equal(t, "urn:li:ugcPost:1", pr.publishedWith)
}

func TestPublishWithoutPostIDSkipsPostUpdate(t *testing.T) {
	pr := &fakePostRepo{posts: map[int64]*models.Post{}}
	cr := &fakeConnectionRepo{conn: &models.LinkedInConnection{UserID: 7}, exists: true}
	li := &stubLinkedIn{shareID: "urn:li:ugcPost:2"}
	s := NewPostService(nil, pr, &fakeScheduleRepo{}, cr, &stubTokenService{token: "tok"}, li)

	id, err := s.Publish(context.Background(), 7, &transfer.ManualPublishRequest{Text: "quick note"})
	require.NoError(t, err)
	assert.Equal(t, "urn:li:ugcPost:2", id)
	assert.Zero(t, pr.publishedID)
}

func TestPublishValidation(t *testing.T) {
	s := NewPostService(nil, &fakePostRepo{}, &fakeScheduleRepo{}, &fakeConnectionRepo{}, &stubTokenService{}, &stubLinkedIn{})

	_, err := s.Publish(context.Background(), 7, &transfer.ManualPublishRequest{Text: ""})
	assert.Error(t, err)

	tooLong := strings.Repeat("a", maxPostLength+1)
	_, err = s.Publish(context.Background(), 7, &transfer.ManualPublishRequest{Text: tooLong})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestPublishRequiresActiveConnection(t *testing.T) {
	cr := &fakeConnectionRepo{exists: false}
	s := NewPostService(nil, &fakePostRepo{}, &fakeScheduleRepo{}, cr, &stubTokenService{token: "tok"}, &stubLinkedIn{})

	_, err := s.Publish(context.Background(), 7, &transfer.ManualPublishRequest{Text: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no active LinkedIn connection")
}

func TestScheduleRejectsPastTime(t *testing.T) {
	s := NewPostService(nil, &fakePostRepo{}, &fakeScheduleRepo{}, &fakeConnectionRepo{}, &stubTokenService{}, &stubLinkedIn{})

	_, err := s.Schedule(context.Background(), 7, &transfer.ScheduleRequest{
		PostID:      10,
		ScheduledAt: time.Now().Add(-time.Hour).Format(time.RFC3339),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "future")
}

func TestScheduleRejectsNonDraftPost(t *testing.T) {
	pr := &fakePostRepo{posts: map[int64]*models.Post{
		10: {ID: 10, UserID: 7, Status: models.PostStatusPublished},
	}}
	s := NewPostService(nil, pr, &fakeScheduleRepo{}, &fakeConnectionRepo{}, &stubTokenService{}, &stubLinkedIn{})

	_, err := s.Schedule(context.Background(), 7, &transfer.ScheduleRequest{
		PostID:      10,
		ScheduledAt: time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only draft posts")
}

func TestScheduleRejectsDoubleSchedule(t *testing.T) {
	pr := &fakePostRepo{posts: map[int64]*models.Post{
		10: {ID: 10, UserID: 7, Status: models.PostStatusDraft},
	}}
	sp := &fakeScheduleRepo{active: &models.ScheduledPost{ID: 1, PostID: 10, Status: models.SchedulePending}}
	s := NewPostService(nil, pr, sp, &fakeConnectionRepo{}, &stubTokenService{}, &stubLinkedIn{})

	_, err := s.Schedule(context.Background(), 7, &transfer.ScheduleRequest{
		PostID:      10,
		ScheduledAt: time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "active schedule")
}

func TestCancelScheduleRequiresActiveSchedule(t *testing.T) {
	pr := &fakePostRepo{posts: map[int64]*models.Post{
		10: {ID: 10, UserID: 7, Status: models.PostStatusScheduled},
	}}
	s := NewPostService(nil, pr, &fakeScheduleRepo{}, &fakeConnectionRepo{}, &stubTokenService{}, &stubLinkedIn{})

	err := s.CancelSchedule(context.Background(), 7, &transfer.CancelScheduleRequest{PostID: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no active schedule")
}

func TestRemoveChecksOwnership(t *testing.T) {
	pr := &fakePostRepo{posts: map[int64]*models.Post{
		10: {ID: 10, UserID: 7, Status: models.PostStatusDraft},
	}}
	s := NewPostService(nil, pr, &fakeScheduleRepo{}, &fakeConnectionRepo{}, &stubTokenService{}, &stubLinkedIn{})

	err := s.Remove(context.Background(), 99, 10)
	require.Error(t, err)

	require.NoError(t, s.Remove(context.Background(), 7, 10))
	assert.Empty(t, pr.posts)
}
