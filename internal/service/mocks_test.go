package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/safe2go/helpdesk/internal/domain"
	"github.com/safe2go/helpdesk/internal/events"
	"github.com/safe2go/helpdesk/internal/pagination"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func timeMustParse(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed.UTC()
}

// MockCaseRepository is a mock implementation of CaseRepositoryInterface
type MockCaseRepository struct {
	mock.Mock
}

func (m *MockCaseRepository) Create(ctx context.Context, c *domain.Case) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCaseRepository) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Case), args.Error(1)
}

func (m *MockCaseRepository) GetByJiraID(ctx context.Context, jiraID string) (*domain.Case, error) {
	args := m.Called(ctx, jiraID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Case), args.Error(1)
}

func (m *MockCaseRepository) Update(ctx context.Context, c *domain.Case) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCaseRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCaseRepository) List(ctx context.Context, filters CaseFilters, page pagination.Page) (*CasePage, error) {
	args := m.Called(ctx, filters, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CasePage), args.Error(1)
}

func (m *MockCaseRepository) ListResolvedWithSolution(ctx context.Context) ([]*domain.Case, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Case), args.Error(1)
}

func (m *MockCaseRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Case, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Case), args.Error(1)
}

func (m *MockCaseRepository) NextSequence(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCaseRepository) UpsertByJiraID(ctx context.Context, c *domain.Case) (*domain.Case, bool, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Case), args.Bool(1), args.Error(2)
}

func (m *MockCaseRepository) CountByStatus(ctx context.Context, filters CaseFilters) (map[domain.CaseStatus]int, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.CaseStatus]int), args.Error(1)
}

func (m *MockCaseRepository) CountByCategory(ctx context.Context, filters CaseFilters) (map[string]int, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockCaseRepository) CountByInsurer(ctx context.Context, filters CaseFilters) (map[string]int, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockCaseRepository) CountCreatedByDay(ctx context.Context, from, to time.Time, status domain.CaseStatus) ([]DayCount, error) {
	args := m.Called(ctx, from, to, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]DayCount), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepositoryInterface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, status domain.UserStatus) ([]*domain.User, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserRepository) ListAdmins(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserRepository) SetStatus(ctx context.Context, id string, status domain.UserStatus, approvedBy string) error {
	args := m.Called(ctx, id, status, approvedBy)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCommentRepository is a mock implementation of CommentRepositoryInterface
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) GetByJiraCommentID(ctx context.Context, caseID, jiraCommentID string) (*domain.Comment, error) {
	args := m.Called(ctx, caseID, jiraCommentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListByCase(ctx context.Context, caseID string, includeInternal bool) ([]*domain.Comment, error) {
	args := m.Called(ctx, caseID, includeInternal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockNotificationRepository is a mock implementation of NotificationRepositoryInterface
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*domain.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Notification), args.Error(1)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockJiraOutboxRepository is a mock implementation of JiraOutboxRepositoryInterface
type MockJiraOutboxRepository struct {
	mock.Mock
}

func (m *MockJiraOutboxRepository) Enqueue(ctx context.Context, e *domain.JiraOutboxEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockJiraOutboxRepository) ClaimPending(ctx context.Context, limit int) ([]*domain.JiraOutboxEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.JiraOutboxEntry), args.Error(1)
}

func (m *MockJiraOutboxRepository) MarkSent(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockJiraOutboxRepository) MarkFailed(ctx context.Context, id string, errMsg string, maxRetries int) error {
	args := m.Called(ctx, id, errMsg, maxRetries)
	return args.Error(0)
}

// MockActivityRepository is a mock implementation of ActivityRepositoryInterface
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Create(ctx context.Context, a *domain.Activity) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockActivityRepository) GetByID(ctx context.Context, id string) (*domain.Activity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Activity), args.Error(1)
}

func (m *MockActivityRepository) List(ctx context.Context) ([]*domain.Activity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Activity), args.Error(1)
}

func (m *MockActivityRepository) ListCurrent(ctx context.Context) ([]*domain.Activity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Activity), args.Error(1)
}

func (m *MockActivityRepository) ListByCase(ctx context.Context, caseID string) ([]*domain.Activity, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Activity), args.Error(1)
}

func (m *MockActivityRepository) Update(ctx context.Context, a *domain.Activity) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockActivityRepository) SetCurrent(ctx context.Context, id, responsible string) error {
	args := m.Called(ctx, id, responsible)
	return args.Error(0)
}

func (m *MockActivityRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAttachmentRepository is a mock implementation of AttachmentRepositoryInterface
type MockAttachmentRepository struct {
	mock.Mock
}

func (m *MockAttachmentRepository) Create(ctx context.Context, a *domain.Attachment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAttachmentRepository) GetByID(ctx context.Context, id string) (*domain.Attachment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Attachment), args.Error(1)
}

func (m *MockAttachmentRepository) ListByCase(ctx context.Context, caseID string) ([]*domain.Attachment, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Attachment), args.Error(1)
}

func (m *MockAttachmentRepository) MarkUploaded(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAttachmentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockStorageClient is a mock implementation of StorageClientInterface
type MockStorageClient struct {
	mock.Mock
}

func (m *MockStorageClient) GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStorageClient) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockStorageClient) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorageClient) HeadObject(ctx context.Context, key string) (*ObjectMetadata, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ObjectMetadata), args.Error(1)
}

// recordingHub captures broadcast events for assertions.
type recordingHub struct {
	mu     sync.Mutex
	events []events.Event
}

func (h *recordingHub) Broadcast(event events.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

func (h *recordingHub) Events() []events.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]events.Event, len(h.events))
	copy(out, h.events)
	return out
}

func (h *recordingHub) Types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	types := make([]string, len(h.events))
	for i, e := range h.events {
		types[i] = e.Type
	}
	return types
}

// seqUUIDGenerator mints deterministic IDs for tests.
type seqUUIDGenerator struct {
	prefix string
	n      int
}

func (g *seqUUIDGenerator) NewString() string {
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
