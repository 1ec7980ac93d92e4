package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"postpilot/domain/model"
	"postpilot/domain/repository"
	"postpilot/infrastructure/cache"
	"postpilot/infrastructure/clients/platformapi"
	"postpilot/infrastructure/logger"
	"postpilot/infrastructure/notification"
	"postpilot/infrastructure/realtime"
)

// ExecutorConfig bounds the outer per-post retry layer. Now is injectable for
// tests and defaults to time.Now.
type ExecutorConfig struct {
	MaxRetries int
	RetryDelay time.Duration
	Now        func() time.Time
}

// PostExecutor runs due posts through the platform adapters and owns every
// status transition of an eligible post. One instance runs per process; the
// scheduler guarantees passes never overlap.
type PostExecutor struct {
	posts      repository.IScheduledPost
	creds      repository.IPlatformCredential
	media      repository.IMedia
	mediaCache *cache.MediaCache
	publishers map[model.Platform]repository.IPublisher
	caller     *ResilientCaller
	ledger     *ExecutionLedger
	audit      repository.IExecutionAudit
	notifier   notification.INotifier
	hub        *realtime.Hub
	cfg        ExecutorConfig
}

func NewPostExecutor(
	posts repository.IScheduledPost,
	creds repository.IPlatformCredential,
	media repository.IMedia,
	mediaCache *cache.MediaCache,
	publishers []repository.IPublisher,
	caller *ResilientCaller,
	ledger *ExecutionLedger,
	audit repository.IExecutionAudit,
	notifier notification.INotifier,
	hub *realtime.Hub,
	cfg ExecutorConfig,
) *PostExecutor {
	registry := make(map[model.Platform]repository.IPublisher, len(publishers))
	for _, p := range publishers {
		registry[p.Platform()] = p
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if notifier == nil {
		notifier = notification.LogNotifier{}
	}
	return &PostExecutor{
		posts:      posts,
		creds:      creds,
		media:      media,
		mediaCache: mediaCache,
		publishers: registry,
		caller:     caller,
		ledger:     ledger,
		audit:      audit,
		notifier:   notifier,
		hub:        hub,
		cfg:        cfg,
	}
}

// Ledger exposes the in-memory execution history for the observability
// endpoints.
func (e *PostExecutor) Ledger() *ExecutionLedger { return e.ledger }

// ExecutePending runs one full execution pass: discover due posts and execute
// each sequentially. Discovery is idempotent, so a post whose update failed
// simply comes back on the next pass.
func (e *PostExecutor) ExecutePending(ctx context.Context) {
	now := e.cfg.Now()
	due, err := e.posts.FindDue(ctx, now)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Failed to query due posts")
		return
	}
	if len(due) == 0 {
		return
	}
	logger.GetLogger().WithField("count", len(due)).Info("Found posts to execute")

	for _, post := range due {
		e.executePost(ctx, post)
	}
}

func (e *PostExecutor) executePost(ctx context.Context, post *model.ScheduledPost) {
	logger.GetLogger().
		WithField("postId", post.ID).
		WithField("platforms", model.JoinPlatforms(post.Platforms)).
		Info("Executing post")

	mediaURL, found, err := e.resolveMediaURL(ctx, post)
	if err != nil {
		e.jobLevelFailure(ctx, post, fmt.Sprintf("internal error: %v", err))
		return
	}
	if !found {
		// Data-integrity failure: fail immediately without consuming the
		// retry budget.
		if err := e.posts.MarkFailed(ctx, post.ID, post.RetryCount, "media not found"); err != nil {
			e.jobLevelFailure(ctx, post, fmt.Sprintf("internal error: %v", err))
			return
		}
		entries := make([]*model.ExecutionLogEntry, 0, len(post.Platforms))
		for _, platform := range post.Platforms {
			entries = append(entries, e.record(post, platform, model.AttemptFailed, "media not found", ""))
		}
		e.archive(ctx, entries)
		e.notify(ctx, post.UserID, "Error Publishing Post",
			fmt.Sprintf("Post %d was not published: media not found.", post.ID))
		return
	}

	results := make([]*model.PublishResult, 0, len(post.Platforms))
	postIDs := make(map[model.Platform]string)
	for _, platform := range post.Platforms {
		result := e.publishOne(ctx, post, platform, mediaURL)
		if result.Status == model.AttemptSuccess {
			postIDs[platform] = result.PostID
		}
		results = append(results, result)
	}

	var succeeded, failed []*model.PublishResult
	for _, r := range results {
		if r.Status == model.AttemptSuccess {
			succeeded = append(succeeded, r)
		} else {
			failed = append(failed, r)
		}
	}

	now := e.cfg.Now()
	var entries []*model.ExecutionLogEntry

	switch {
	case len(failed) == 0:
		if err := e.posts.MarkPublished(ctx, post.ID, now, postIDs, nil); err != nil {
			e.jobLevelFailure(ctx, post, fmt.Sprintf("internal error: %v", err))
			return
		}
		for _, r := range succeeded {
			entries = append(entries, e.record(post, r.Platform, model.AttemptSuccess,
				fmt.Sprintf("Post published successfully: %s", r.PostID), r.PostID))
		}
		e.notify(ctx, post.UserID, "Post Published Successfully",
			fmt.Sprintf("Your post was published to %s!", model.JoinPlatforms(post.Platforms)))

	case len(succeeded) > 0:
		msg := joinFailures(failed)
		if err := e.posts.MarkPublished(ctx, post.ID, now, postIDs, &msg); err != nil {
			e.jobLevelFailure(ctx, post, fmt.Sprintf("internal error: %v", err))
			return
		}
		for _, r := range succeeded {
			entries = append(entries, e.record(post, r.Platform, model.AttemptSuccess,
				fmt.Sprintf("Post published successfully: %s", r.PostID), r.PostID))
		}
		for _, r := range failed {
			entries = append(entries, e.record(post, r.Platform, model.AttemptFailed, r.ErrorMessage, ""))
		}
		e.notify(ctx, post.UserID, "Post Partially Published",
			fmt.Sprintf("Your post was published with errors: %s", msg))

	default:
		msg := joinFailures(failed)
		newCount := post.RetryCount + 1
		if newCount < e.cfg.MaxRetries {
			if err := e.posts.Reschedule(ctx, post.ID, newCount, now.Add(e.cfg.RetryDelay), msg); err != nil {
				e.jobLevelFailure(ctx, post, fmt.Sprintf("internal error: %v", err))
				return
			}
			for _, r := range failed {
				entries = append(entries, e.recordWithRetry(post, r.Platform, model.AttemptPending,
					fmt.Sprintf("Retry %d/%d: %s", newCount, e.cfg.MaxRetries, r.ErrorMessage), newCount))
			}
		} else {
			if err := e.posts.MarkFailed(ctx, post.ID, newCount, msg); err != nil {
				e.jobLevelFailure(ctx, post, fmt.Sprintf("internal error: %v", err))
				return
			}
			for _, r := range failed {
				entries = append(entries, e.recordWithRetry(post, r.Platform, model.AttemptFailed,
					fmt.Sprintf("Permanent failure after %d attempts: %s", newCount, r.ErrorMessage), newCount))
			}
			e.notify(ctx, post.UserID, "Error Publishing Post",
				fmt.Sprintf("Failed to publish post after %d attempts. Error: %s", newCount, msg))
		}
	}

	e.archive(ctx, entries)
}

func (e *PostExecutor) publishOne(ctx context.Context, post *model.ScheduledPost, platform model.Platform, mediaURL string) *model.PublishResult {
	publisher, ok := e.publishers[platform]
	if !ok {
		return &model.PublishResult{Platform: platform, Status: model.AttemptFailed,
			ErrorMessage: fmt.Sprintf("Unknown platform: %s", platform)}
	}

	cred, err := e.creds.GetActive(ctx, post.UserID, platform)
	if err != nil {
		return &model.PublishResult{Platform: platform, Status: model.AttemptFailed,
			ErrorMessage: platformapi.FriendlyMessage(err, platform)}
	}
	if cred == nil {
		return &model.PublishResult{Platform: platform, Status: model.AttemptFailed,
			ErrorMessage: "account not connected"}
	}

	postID, err := e.caller.Call(ctx, cred, func(accessToken string) (string, error) {
		return publisher.Publish(ctx, accessToken, mediaURL, post.Caption, cred.AccountID)
	})
	if err != nil {
		logger.GetLogger().
			WithField("postId", post.ID).
			WithField("platform", platform).
			WithField("error", err).
			Warn("Publish attempt failed")
		return &model.PublishResult{Platform: platform, Status: model.AttemptFailed,
			ErrorMessage: platformapi.FriendlyMessage(err, platform)}
	}
	return &model.PublishResult{Platform: platform, Status: model.AttemptSuccess, PostID: postID}
}

// resolveMediaURL looks up the post's attached media, cache first. found is
// false when the post references media that no longer exists; posts without
// any media reference publish caption-only.
func (e *PostExecutor) resolveMediaURL(ctx context.Context, post *model.ScheduledPost) (url string, found bool, err error) {
	lookup := func(id int64, get func(context.Context, int64, int64) (*model.GeneratedMedia, error)) (string, bool, error) {
		if cached := e.mediaCache.GetURL(ctx, id, post.UserID); cached != "" {
			return cached, true, nil
		}
		media, err := get(ctx, id, post.UserID)
		if err != nil {
			return "", false, err
		}
		if media == nil || media.URL() == "" {
			return "", false, nil
		}
		e.mediaCache.SetURL(ctx, id, post.UserID, media.URL())
		return media.URL(), true, nil
	}

	switch {
	case post.ImageID != nil:
		return lookup(*post.ImageID, e.media.GetImageByID)
	case post.MediaID != nil:
		return lookup(*post.MediaID, e.media.GetMediaByID)
	case post.VideoURL != nil && *post.VideoURL != "":
		return *post.VideoURL, true, nil
	}
	return "", true, nil
}

func (e *PostExecutor) record(post *model.ScheduledPost, platform model.Platform, status model.AttemptStatus, message, postRef string) *model.ExecutionLogEntry {
	return e.recordEntry(post, platform, status, message, postRef, post.RetryCount)
}

func (e *PostExecutor) recordWithRetry(post *model.ScheduledPost, platform model.Platform, status model.AttemptStatus, message string, retryCount int) *model.ExecutionLogEntry {
	return e.recordEntry(post, platform, status, message, "", retryCount)
}

func (e *PostExecutor) recordEntry(post *model.ScheduledPost, platform model.Platform, status model.AttemptStatus, message, postRef string, retryCount int) *model.ExecutionLogEntry {
	entry := &model.ExecutionLogEntry{
		PostID:     post.ID,
		Platform:   platform,
		Status:     status,
		Message:    message,
		Timestamp:  e.cfg.Now(),
		RetryCount: retryCount,
	}
	e.ledger.Append(entry)
	e.hub.BroadcastAttempt(post.UserID, entry, postRef)
	logger.GetLogger().
		WithField("postId", entry.PostID).
		WithField("platform", entry.Platform).
		WithField("status", entry.Status).
		Info(entry.Message)
	return entry
}

// jobLevelFailure handles unexpected errors (store unreachable mid-update).
// The post's persisted status is left untouched so the next pass retries it.
func (e *PostExecutor) jobLevelFailure(ctx context.Context, post *model.ScheduledPost, message string) {
	logger.GetLogger().
		WithField("postId", post.ID).
		Error(message)
	entries := make([]*model.ExecutionLogEntry, 0, len(post.Platforms))
	for _, platform := range post.Platforms {
		entries = append(entries, e.record(post, platform, model.AttemptFailed, message, ""))
	}
	e.archive(ctx, entries)
}

func (e *PostExecutor) archive(ctx context.Context, entries []*model.ExecutionLogEntry) {
	if e.audit == nil || len(entries) == 0 {
		return
	}
	if err := e.audit.InsertEntries(ctx, entries); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Failed to archive execution entries")
	}
}

func (e *PostExecutor) notify(ctx context.Context, userID int64, title, content string) {
	if err := e.notifier.Notify(ctx, &model.Notification{UserID: userID, Title: title, Content: content}); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Notification delivery failed")
	}
}

func joinFailures(results []*model.PublishResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Platform, r.ErrorMessage))
	}
	return strings.Join(parts, "; ")
}
