package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/safe2go/helpdesk/internal/domain"
)

const (
	// MaxRetries is the maximum number of delivery attempts per entry
	MaxRetries = 3

	claimBatchSize = 50
)

// OutboxRepository defines the interface for outbox persistence
type OutboxRepository interface {
	ClaimPending(ctx context.Context, limit int) ([]*domain.JiraOutboxEntry, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string, maxRetries int) error
}

// CommentPusher defines the interface for delivering comments to the tracker
type CommentPusher interface {
	Enabled() bool
	AddComment(ctx context.Context, issueKey, authorName, text string) error
}

// JiraSyncWorker drains the outbox, pushing queued comments to the external
// tracker. Delivery failures are recorded and retried on later sweeps; they
// never surface to the commenting user.
type JiraSyncWorker struct {
	repo   OutboxRepository
	pusher CommentPusher
}

// NewJiraSyncWorker creates a new JiraSyncWorker instance
func NewJiraSyncWorker(repo OutboxRepository, pusher CommentPusher) *JiraSyncWorker {
	return &JiraSyncWorker{
		repo:   repo,
		pusher: pusher,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *JiraSyncWorker) ProcessJobs(ctx context.Context) error {
	if !w.pusher.Enabled() {
		return nil
	}

	entries, err := w.repo.ClaimPending(ctx, claimBatchSize)
	if err != nil {
		return fmt.Errorf("failed to fetch pending outbox entries: %w", err)
	}

	if len(entries) == 0 {
		return nil
	}

	log.Printf("Delivering %d queued tracker comments", len(entries))

	for _, entry := range entries {
		if err := w.deliver(ctx, entry); err != nil {
			log.Printf("Error delivering outbox entry %s: %v", entry.ID, err)
		}
	}

	return nil
}

func (w *JiraSyncWorker) deliver(ctx context.Context, entry *domain.JiraOutboxEntry) error {
	if err := w.pusher.AddComment(ctx, entry.JiraID, entry.Author, entry.Body); err != nil {
		if markErr := w.repo.MarkFailed(ctx, entry.ID, err.Error(), MaxRetries); markErr != nil {
			return fmt.Errorf("delivery failed (%v) and could not record failure: %w", err, markErr)
		}
		return err
	}
	return w.repo.MarkSent(ctx, entry.ID)
}
