package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"speakpost/internal/models"
	"speakpost/internal/repository"
	"speakpost/internal/service"
	"speakpost/internal/transfer"
)

// publishLookahead lets the runner pick up rows due slightly in the future so
// the trigger cadence doesn't have to line up with scheduled times exactly.
const publishLookahead = 5 * time.Minute

// PublishJob finds due scheduled posts, claims them, publishes to LinkedIn,
// and finalizes both records. It is safe to invoke from overlapping triggers:
// the conditional claim guarantees each row gets at most one executor.
type PublishJob struct {
	sp repository.ScheduledPostRepository
	pr repository.PostRepository
	cr repository.ConnectionRepository
	ts service.TokenService
	li service.LinkedInService
}

func NewPublishJob(
	sp repository.ScheduledPostRepository,
	pr repository.PostRepository,
	cr repository.ConnectionRepository,
	ts service.TokenService,
	li service.LinkedInService) *PublishJob {
	return &PublishJob{
		sp: sp,
		pr: pr,
		cr: cr,
		ts: ts,
		li: li,
	}
}

// Run is the cron entry point.
func (j *PublishJob) Run() {
	summary, err := j.ProcessDue(context.Background())
	if err != nil {
		slog.Info(err.Error())
		return
	}
	slog.Info("publish run finished",
		"processed", summary.Processed,
		"errors", summary.Errors,
		"total", summary.Total)
}

// ProcessDue executes one runner pass. Candidates are handled sequentially in
// ascending due-time order; a failure in one candidate never aborts the rest
// of the batch.
func (j *PublishJob) ProcessDue(ctx context.Context) (*transfer.RunSummary, error) {
	due, err := j.sp.ListDue(ctx, time.Now().Add(publishLookahead))
	if err != nil {
		return nil, fmt.Errorf("listing due scheduled posts: %w", err)
	}

	summary := &transfer.RunSummary{Total: len(due)}

	for _, item := range due {
		claimed, err := j.sp.Claim(ctx, item.ID)
		if err != nil {
			slog.Info(err.Error())
			summary.Errors++
			continue
		}
		if !claimed {
			// another invocation owns this row
			continue
		}

		if err := j.publishOne(ctx, item); err != nil {
			slog.Info("scheduled publish failed", "scheduled_post_id", item.ID, "error", err.Error())
			if markErr := j.sp.MarkFailed(ctx, item.ID, err.Error()); markErr != nil {
				slog.Info(markErr.Error())
			}
			summary.Errors++
			continue
		}
		summary.Processed++
	}

	return summary, nil
}

func (j *PublishJob) publishOne(ctx context.Context, item *models.ScheduledPost) error {
	post, err := j.pr.GetByID(ctx, item.PostID)
	if err != nil {
		return err
	}
	if post == nil {
		return errors.New("post not found")
	}

	conn, isExist, err := j.cr.GetActiveByUserID(ctx, item.UserID)
	if err != nil {
		return err
	}
	if !isExist {
		return errors.New("no active LinkedIn connection")
	}

	accessToken, err := j.ts.EnsureValidToken(ctx, conn)
	if err != nil {
		return err
	}

	linkedinPostID, err := j.li.CreateShare(ctx, accessToken, BuildPostText(post), "PUBLIC")
	if err != nil {
		return err
	}

	return j.sp.MarkCompleted(ctx, item.ID, post.ID, linkedinPostID)
}

// BuildPostText joins hook, body, and the optional call to action with blank
// lines.
func BuildPostText(post *models.Post) string {
	parts := []string{post.Hook, post.Body}
	if post.CallToAction != "" {
		parts = append(parts, post.CallToAction)
	}
	return strings.Join(parts, "\n\n")
}
