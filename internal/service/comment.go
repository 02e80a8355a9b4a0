package service

import (
	"context"
	"fmt"
	"time"

	"github.com/safe2go/helpdesk/internal/domain"
	"github.com/safe2go/helpdesk/internal/events"
	"github.com/safe2go/helpdesk/internal/telemetry"
)

// CommentRepositoryInterface defines the repository interface for comment persistence
type CommentRepositoryInterface interface {
	Create(ctx context.Context, c *domain.Comment) error
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	GetByJiraCommentID(ctx context.Context, caseID, jiraCommentID string) (*domain.Comment, error)
	ListByCase(ctx context.Context, caseID string, includeInternal bool) ([]*domain.Comment, error)
	Delete(ctx context.Context, id string) error
}

// NotificationRepositoryInterface defines the repository interface for notification persistence
type NotificationRepositoryInterface interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*domain.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

// JiraOutboxRepositoryInterface stages comments for delivery to the external
// tracker.
type JiraOutboxRepositoryInterface interface {
	Enqueue(ctx context.Context, e *domain.JiraOutboxEntry) error
	ClaimPending(ctx context.Context, limit int) ([]*domain.JiraOutboxEntry, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string, maxRetries int) error
}

// CommentService handles business logic for case comments
type CommentService struct {
	commentRepo      CommentRepositoryInterface
	caseRepo         CaseRepositoryInterface
	userRepo         UserRepositoryInterface
	notificationRepo NotificationRepositoryInterface
	outboxRepo       JiraOutboxRepositoryInterface
	hub              Broadcaster
	uuidGen          UUIDGenerator
}

func NewCommentService(
	commentRepo CommentRepositoryInterface,
	caseRepo CaseRepositoryInterface,
	userRepo UserRepositoryInterface,
	notificationRepo NotificationRepositoryInterface,
	outboxRepo JiraOutboxRepositoryInterface,
	hub Broadcaster,
) *CommentService {
	return &CommentService{
		commentRepo:      commentRepo,
		caseRepo:         caseRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		outboxRepo:       outboxRepo,
		hub:              hub,
		uuidGen:          &DefaultUUIDGenerator{},
	}
}

func NewCommentServiceWithUUIDGen(
	commentRepo CommentRepositoryInterface,
	caseRepo CaseRepositoryInterface,
	userRepo UserRepositoryInterface,
	notificationRepo NotificationRepositoryInterface,
	outboxRepo JiraOutboxRepositoryInterface,
	hub Broadcaster,
	uuidGen UUIDGenerator,
) *CommentService {
	s := NewCommentService(commentRepo, caseRepo, userRepo, notificationRepo, outboxRepo, hub)
	s.uuidGen = uuidGen
	return s
}

// Add posts a comment to a case. Client comments notify every administrator;
// public admin comments notify the case creator and are queued for delivery
// to the external tracker.
func (s *CommentService) Add(ctx context.Context, caseID string, author *domain.User, content string, internal bool) (*domain.Comment, error) {
	ctx, span := telemetry.StartSpan(ctx, "CommentService.Add", telemetry.SpanAttributes{
		CaseID:    caseID,
		UserID:    author.ID,
		Operation: "add_comment",
	})
	defer span.End()

	if author.Role != domain.UserRoleAdmin {
		internal = false
	}

	c, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	comment := &domain.Comment{
		ID:        s.uuidGen.NewString(),
		CaseID:    c.ID,
		UserID:    author.ID,
		UserName:  author.Name,
		Content:   content,
		Internal:  internal,
		CreatedAt: now,
	}

	if err := domain.ValidateComment(comment); err != nil {
		return nil, err
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	// Internal comments never reach clients, so they trigger no routing.
	if !internal {
		if err := s.routeNotifications(ctx, c, author, now); err != nil {
			return nil, err
		}
	}

	if !internal {
		if c.JiraID != "" {
			entry := &domain.JiraOutboxEntry{
				ID:        s.uuidGen.NewString(),
				CaseID:    c.ID,
				JiraID:    c.JiraID,
				Author:    author.Name,
				Body:      content,
				Status:    domain.JiraOutboxStatusPending,
				CreatedAt: now,
			}
			if err := s.outboxRepo.Enqueue(ctx, entry); err != nil {
				return nil, err
			}
		}

		s.hub.Broadcast(events.Event{Type: "new_comment", Payload: map[string]any{
			"case_id":    c.ID,
			"comment_id": comment.ID,
		}})
	}

	return comment, nil
}

func (s *CommentService) routeNotifications(ctx context.Context, c *domain.Case, author *domain.User, now time.Time) error {
	message := fmt.Sprintf("Novo comentário de %s", author.Name)

	if author.Role != domain.UserRoleAdmin {
		admins, err := s.userRepo.ListAdmins(ctx)
		if err != nil {
			return err
		}
		for _, admin := range admins {
			if admin.ID == author.ID {
				continue
			}
			if err := s.notify(ctx, admin.ID, c, message, now); err != nil {
				return err
			}
		}
		return nil
	}

	if c.CreatorID != "" && c.CreatorID != author.ID {
		return s.notify(ctx, c.CreatorID, c, message, now)
	}
	return nil
}

func (s *CommentService) notify(ctx context.Context, userID string, c *domain.Case, message string, now time.Time) error {
	return s.notificationRepo.Create(ctx, &domain.Notification{
		ID:        s.uuidGen.NewString(),
		UserID:    userID,
		CaseID:    c.ID,
		CaseTitle: c.Title,
		Message:   message,
		Type:      domain.NotificationTypeNewComment,
		CreatedAt: now,
	})
}

// ListByCase returns a case's comments. Internal comments are visible to
// administrators only.
func (s *CommentService) ListByCase(ctx context.Context, caseID string, requester *domain.User) ([]*domain.Comment, error) {
	if _, err := s.caseRepo.GetByID(ctx, caseID); err != nil {
		return nil, err
	}
	includeInternal := requester.Role == domain.UserRoleAdmin
	return s.commentRepo.ListByCase(ctx, caseID, includeInternal)
}
