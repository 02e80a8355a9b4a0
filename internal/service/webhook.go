package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/safe2go/helpdesk/internal/domain"
	"github.com/safe2go/helpdesk/internal/events"
	"github.com/safe2go/helpdesk/internal/jira"
	"github.com/safe2go/helpdesk/internal/taxonomy"
	"github.com/safe2go/helpdesk/internal/telemetry"
)

// OutcomeStatus classifies what an ingested webhook delivery did.
type OutcomeStatus string

const (
	OutcomeCreated        OutcomeStatus = "created"
	OutcomeUpdated        OutcomeStatus = "updated"
	OutcomeCommentCreated OutcomeStatus = "comment_created"
	OutcomeIgnored        OutcomeStatus = "ignored"
	OutcomeError          OutcomeStatus = "error"
)

// Outcome reports the result of ingesting one webhook delivery. CaseRef is
// the tracker key of the case that was touched, when one was.
type Outcome struct {
	Status  OutcomeStatus
	CaseRef string
	Reason  string
}

// WebhookService ingests tracker webhook deliveries: issue events upsert
// cases, comment events mirror comments. Ingestion never fails the caller;
// anything unexpected is logged and reported as an error outcome so the
// tracker does not retry forever.
type WebhookService struct {
	caseRepo         CaseRepositoryInterface
	commentRepo      CommentRepositoryInterface
	userRepo         UserRepositoryInterface
	notificationRepo NotificationRepositoryInterface
	rules            *taxonomy.Ruleset
	hub              Broadcaster
	uuidGen          UUIDGenerator
}

func NewWebhookService(
	caseRepo CaseRepositoryInterface,
	commentRepo CommentRepositoryInterface,
	userRepo UserRepositoryInterface,
	notificationRepo NotificationRepositoryInterface,
	rules *taxonomy.Ruleset,
	hub Broadcaster,
) *WebhookService {
	return &WebhookService{
		caseRepo:         caseRepo,
		commentRepo:      commentRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		rules:            rules,
		hub:              hub,
		uuidGen:          &DefaultUUIDGenerator{},
	}
}

func NewWebhookServiceWithUUIDGen(
	caseRepo CaseRepositoryInterface,
	commentRepo CommentRepositoryInterface,
	userRepo UserRepositoryInterface,
	notificationRepo NotificationRepositoryInterface,
	rules *taxonomy.Ruleset,
	hub Broadcaster,
	uuidGen UUIDGenerator,
) *WebhookService {
	s := NewWebhookService(caseRepo, commentRepo, userRepo, notificationRepo, rules, hub)
	s.uuidGen = uuidGen
	return s
}

// Ingest processes one raw webhook delivery and reports what happened. It
// never panics and never returns an error; the transport layer always
// answers the tracker with a 2xx.
func (s *WebhookService) Ingest(ctx context.Context, payload []byte) (outcome Outcome) {
	ctx, span := telemetry.StartSpan(ctx, "WebhookService.Ingest", telemetry.SpanAttributes{
		Operation: "webhook_ingest",
	})
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("webhook ingest panic: %v", r)
			outcome = Outcome{Status: OutcomeError, Reason: fmt.Sprintf("panic: %v", r)}
		}
	}()

	event := jira.ParseEvent(payload)

	switch event.Kind {
	case jira.KindIssue:
		return s.ingestIssue(ctx, event.Issue)
	case jira.KindComment:
		return s.ingestComment(ctx, event.Comment)
	default:
		return Outcome{Status: OutcomeIgnored, Reason: event.Reason}
	}
}

func (s *WebhookService) ingestIssue(ctx context.Context, issue *jira.IssueEvent) Outcome {
	status := s.rules.MapStatus(issue.StatusLabel)
	insurer := s.rules.DetectInsurer(issue.Assignee, issue.Summary, issue.Description)
	category, keywords := s.rules.Categorize(issue.Summary + " " + issue.Description)
	if insurer != "" {
		keywords = append(keywords, strings.ToLower(insurer))
	}

	now := time.Now().UTC()
	c := &domain.Case{
		ID:          s.uuidGen.NewString(),
		JiraID:      issue.Key,
		Title:       issue.Summary,
		Description: issue.Description,
		Responsible: issue.Assignee,
		Status:      status,
		Priority:    domain.CasePriorityMedium,
		Insurer:     insurer,
		Category:    category,
		Keywords:    keywords,
		OpenedAt:    now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if status == domain.CaseStatusResolved {
		c.ClosedAt = &now
	}

	stored, created, err := s.caseRepo.UpsertByJiraID(ctx, c)
	if err != nil {
		log.Printf("webhook issue upsert failed for %s: %v", issue.Key, err)
		return Outcome{Status: OutcomeError, CaseRef: issue.Key, Reason: err.Error()}
	}

	if !created {
		s.hub.Broadcast(events.Event{Type: "case_updated", Payload: map[string]any{
			"case_id": stored.ID,
			"jira_id": stored.JiraID,
			"status":  string(stored.Status),
		}})
		return Outcome{Status: OutcomeUpdated, CaseRef: stored.JiraID}
	}

	if err := s.notifyAdmins(ctx, stored, now); err != nil {
		log.Printf("webhook admin notification failed for %s: %v", stored.JiraID, err)
	}

	s.hub.Broadcast(events.Event{Type: "new_case", Payload: map[string]any{
		"case_id": stored.ID,
		"jira_id": stored.JiraID,
		"title":   stored.Title,
	}})
	s.hub.Broadcast(events.Event{Type: "new_notification", Payload: map[string]any{
		"case_id": stored.ID,
	}})

	return Outcome{Status: OutcomeCreated, CaseRef: stored.JiraID}
}

func (s *WebhookService) notifyAdmins(ctx context.Context, c *domain.Case, now time.Time) error {
	admins, err := s.userRepo.ListAdmins(ctx)
	if err != nil {
		return err
	}
	for _, admin := range admins {
		n := &domain.Notification{
			ID:        s.uuidGen.NewString(),
			UserID:    admin.ID,
			CaseID:    c.ID,
			CaseTitle: c.Title,
			Message:   fmt.Sprintf("Novo chamado via Jira: #%s - %s", c.JiraID, c.Title),
			Type:      domain.NotificationTypeNewCase,
			CreatedAt: now,
		}
		if err := s.notificationRepo.Create(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func (s *WebhookService) ingestComment(ctx context.Context, comment *jira.CommentEvent) Outcome {
	c, err := s.caseRepo.GetByJiraID(ctx, comment.IssueKey)
	if err != nil {
		if errors.Is(err, domain.ErrCaseNotFound) {
			return Outcome{Status: OutcomeIgnored, CaseRef: comment.IssueKey, Reason: "no case for issue"}
		}
		log.Printf("webhook comment lookup failed for %s: %v", comment.IssueKey, err)
		return Outcome{Status: OutcomeError, CaseRef: comment.IssueKey, Reason: err.Error()}
	}

	if comment.CommentID != "" {
		if _, err := s.commentRepo.GetByJiraCommentID(ctx, c.ID, comment.CommentID); err == nil {
			return Outcome{Status: OutcomeIgnored, CaseRef: c.JiraID, Reason: "comment already synced"}
		} else if !errors.Is(err, domain.ErrCommentNotFound) {
			log.Printf("webhook comment dedup lookup failed for %s: %v", c.JiraID, err)
			return Outcome{Status: OutcomeError, CaseRef: c.JiraID, Reason: err.Error()}
		}
	}

	createdAt := comment.Created
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	mirrored := &domain.Comment{
		ID:             s.uuidGen.NewString(),
		CaseID:         c.ID,
		UserName:       comment.Author,
		Content:        comment.Body,
		Internal:       false,
		JiraCommentID:  comment.CommentID,
		SyncedFromJira: true,
		CreatedAt:      createdAt,
	}

	if err := s.commentRepo.Create(ctx, mirrored); err != nil {
		if errors.Is(err, domain.ErrCommentAlreadySynced) {
			return Outcome{Status: OutcomeIgnored, CaseRef: c.JiraID, Reason: "comment already synced"}
		}
		log.Printf("webhook comment insert failed for %s: %v", c.JiraID, err)
		return Outcome{Status: OutcomeError, CaseRef: c.JiraID, Reason: err.Error()}
	}

	if c.CreatorID != "" {
		n := &domain.Notification{
			ID:        s.uuidGen.NewString(),
			UserID:    c.CreatorID,
			CaseID:    c.ID,
			CaseTitle: c.Title,
			Message:   fmt.Sprintf("Novo comentário de %s", comment.Author),
			Type:      domain.NotificationTypeNewComment,
			CreatedAt: createdAt,
		}
		if err := s.notificationRepo.Create(ctx, n); err != nil {
			log.Printf("webhook creator notification failed for %s: %v", c.JiraID, err)
		}
	}

	s.hub.Broadcast(events.Event{Type: "new_comment", Payload: map[string]any{
		"case_id": c.ID,
		"jira_id": c.JiraID,
	}})

	return Outcome{Status: OutcomeCommentCreated, CaseRef: c.JiraID}
}
