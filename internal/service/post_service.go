package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"speakpost/internal/models"
	"speakpost/internal/repository"
	"speakpost/internal/transfer"
)

const maxPostLength = 3000

type PostService interface {
	List(ctx context.Context, userID int64) ([]*models.Post, error)
	PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error)
	ListSchedules(ctx context.Context, userID int64) ([]*models.ScheduledPost, error)
	Schedule(ctx context.Context, userID int64, req *transfer.ScheduleRequest) (int64, error)
	CancelSchedule(ctx context.Context, userID int64, req *transfer.CancelScheduleRequest) error
	Publish(ctx context.Context, userID int64, req *transfer.ManualPublishRequest) (string, error)
	Remove(ctx context.Context, userID, postID int64) error
}

type postService struct {
	db *sql.DB
	pr repository.PostRepository
	sp repository.ScheduledPostRepository
	cr repository.ConnectionRepository
	ts TokenService
	li LinkedInService
}

func NewPostService(
	db *sql.DB,
	pr repository.PostRepository,
	sp repository.ScheduledPostRepository,
	cr repository.ConnectionRepository,
	ts TokenService,
	li LinkedInService) PostService {
	return &postService{
		db: db,
		pr: pr,
		sp: sp,
		cr: cr,
		ts: ts,
		li: li,
	}
}

func (s *postService) List(ctx context.Context, userID int64) ([]*models.Post, error) {
	if userID == 0 {
		err := errors.New("UserID is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	posts, err := s.pr.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing posts")
	}
	return posts, nil
}

func (s *postService) PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error) {
	isOwner, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if !isOwner {
		err = errors.New("post doesn't exist")
		slog.Info(err.Error())
		return nil, err
	}

	return s.pr.GetByID(ctx, postID)
}

func (s *postService) ListSchedules(ctx context.Context, userID int64) ([]*models.ScheduledPost, error) {
	if userID == 0 {
		err := errors.New("UserID is not valid")
		slog.Info(err.Error())
		return nil, err
	}
	return s.sp.ListByUserID(ctx, userID)
}

// Schedule moves a draft post to scheduled and creates its pending companion
// record in one transaction.
func (s *postService) Schedule(ctx context.Context, userID int64, req *transfer.ScheduleRequest) (int64, error) {
	if req == nil || req.PostID == 0 {
		err := errors.New("post id is required")
		slog.Info(err.Error())
		return 0, err
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		err = fmt.Errorf("invalid scheduled time format: %w", err)
		slog.Info(err.Error())
		return 0, err
	}
	if !scheduledAt.After(time.Now()) {
		err = errors.New("scheduled time must be in the future")
		slog.Info(err.Error())
		return 0, err
	}

	isOwner, err := s.pr.CheckByUserID(ctx, req.PostID, userID)
	if err != nil {
		return 0, err
	}
	if !isOwner {
		err = errors.New("post doesn't exist")
		slog.Info(err.Error())
		return 0, err
	}

	post, err := s.pr.GetByID(ctx, req.PostID)
	if err != nil {
		return 0, err
	}
	if post.Status != models.PostStatusDraft {
		err = fmt.Errorf("only draft posts can be scheduled, post is %s", post.Status)
		slog.Info(err.Error())
		return 0, err
	}

	active, err := s.sp.GetActiveByPostID(ctx, req.PostID)
	if err != nil {
		return 0, err
	}
	if active != nil {
		err = errors.New("post already has an active schedule")
		slog.Info(err.Error())
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = s.pr.MarkScheduled(ctx, tx, req.PostID, scheduledAt); err != nil {
		return 0, fmt.Errorf("error scheduling post: %w", err)
	}

	scheduleID, err := s.sp.Create(ctx, tx, &models.ScheduledPost{
		PostID:      req.PostID,
		UserID:      userID,
		ScheduledAt: scheduledAt,
		Status:      models.SchedulePending,
	})
	if err != nil {
		return 0, fmt.Errorf("error creating schedule: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return scheduleID, nil
}

// CancelSchedule transitions a still-pending schedule to cancelled and
// reverts the post to draft. The cancel is guarded on the pending status the
// same way the runner's claim is, so a schedule the runner already picked up
// cannot be cancelled out from under it.
func (s *postService) CancelSchedule(ctx context.Context, userID int64, req *transfer.CancelScheduleRequest) error {
	if req == nil || req.PostID == 0 {
		err := errors.New("post id is required")
		slog.Info(err.Error())
		return err
	}

	isOwner, err := s.pr.CheckByUserID(ctx, req.PostID, userID)
	if err != nil {
		return err
	}
	if !isOwner {
		err = errors.New("post doesn't exist")
		slog.Info(err.Error())
		return err
	}

	active, err := s.sp.GetActiveByPostID(ctx, req.PostID)
	if err != nil {
		return err
	}
	if active == nil {
		err = errors.New("post has no active schedule")
		slog.Info(err.Error())
		return err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	cancelled, err := s.sp.Cancel(ctx, tx, active.ID)
	if err != nil {
		return err
	}
	if !cancelled {
		err = errors.New("schedule is no longer pending")
		slog.Info(err.Error())
		return err
	}

	if err = s.pr.MarkDraft(ctx, tx, req.PostID); err != nil {
		return err
	}

	return tx.Commit()
}

// Publish posts immediately on the caller's behalf. When a post id is given,
// that post is marked published with the provider id.
func (s *postService) Publish(ctx context.Context, userID int64, req *transfer.ManualPublishRequest) (string, error) {
	if req == nil || req.Text == "" {
		err := errors.New("text cannot be empty")
		slog.Info(err.Error())
		return "", err
	}
	if utf8.RuneCountInString(req.Text) > maxPostLength {
		err := fmt.Errorf("text exceeds %d characters", maxPostLength)
		slog.Info(err.Error())
		return "", err
	}

	conn, isExist, err := s.cr.GetActiveByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	if !isExist {
		err = errors.New("no active LinkedIn connection")
		slog.Info(err.Error())
		return "", err
	}

	accessToken, err := s.ts.EnsureValidToken(ctx, conn)
	if err != nil {
		return "", err
	}

	linkedinPostID, err := s.li.CreateShare(ctx, accessToken, req.Text, req.Visibility)
	if err != nil {
		return "", err
	}

	if req.PostID != 0 {
		isOwner, err := s.pr.CheckByUserID(ctx, req.PostID, userID)
		if err != nil {
			return "", err
		}
		if !isOwner {
			err = errors.New("post doesn't exist")
			slog.Info(err.Error())
			return "", err
		}
		if err := s.pr.MarkPublished(ctx, nil, req.PostID, linkedinPostID, time.Now()); err != nil {
			return "", err
		}
	}

	return linkedinPostID, nil
}

func (s *postService) Remove(ctx context.Context, userID, postID int64) error {
	if userID == 0 || postID == 0 {
		err := errors.New("invalid user or post id")
		slog.Info(err.Error())
		return err
	}

	isOwner, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !isOwner {
		err = errors.New("post doesn't exist")
		slog.Info(err.Error())
		return err
	}

	if err := s.pr.Remove(ctx, postID); err != nil {
		return fmt.Errorf("error removing post")
	}
	return nil
}
