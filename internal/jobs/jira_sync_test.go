package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/safe2go/helpdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockOutboxRepository is a mock implementation of OutboxRepository
type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) ClaimPending(ctx context.Context, limit int) ([]*domain.JiraOutboxEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.JiraOutboxEntry), args.Error(1)
}

func (m *MockOutboxRepository) MarkSent(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) MarkFailed(ctx context.Context, id string, errMsg string, maxRetries int) error {
	args := m.Called(ctx, id, errMsg, maxRetries)
	return args.Error(0)
}

// MockCommentPusher is a mock implementation of CommentPusher
type MockCommentPusher struct {
	mock.Mock
}

func (m *MockCommentPusher) Enabled() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockCommentPusher) AddComment(ctx context.Context, issueKey, authorName, text string) error {
	args := m.Called(ctx, issueKey, authorName, text)
	return args.Error(0)
}

func outboxEntry(id, jiraID string) *domain.JiraOutboxEntry {
	return &domain.JiraOutboxEntry{
		ID:     id,
		JiraID: jiraID,
		Author: "Maria Atendente",
		Body:   "Boleto reemitido, favor validar",
		Status: domain.JiraOutboxStatusPending,
	}
}

func TestJiraSyncWorker_ProcessJobs_DisabledPusherSkipsOutbox(t *testing.T) {
	mockRepo := new(MockOutboxRepository)
	mockPusher := new(MockCommentPusher)

	mockPusher.On("Enabled").Return(false)

	worker := NewJiraSyncWorker(mockRepo, mockPusher)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertNotCalled(t, "ClaimPending", mock.Anything, mock.Anything)
}

func TestJiraSyncWorker_ProcessJobs_NoPendingEntries(t *testing.T) {
	mockRepo := new(MockOutboxRepository)
	mockPusher := new(MockCommentPusher)

	mockPusher.On("Enabled").Return(true)
	mockRepo.On("ClaimPending", mock.Anything, claimBatchSize).Return([]*domain.JiraOutboxEntry{}, nil)

	worker := NewJiraSyncWorker(mockRepo, mockPusher)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockPusher.AssertNotCalled(t, "AddComment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestJiraSyncWorker_ProcessJobs_DeliversAndMarksSent(t *testing.T) {
	mockRepo := new(MockOutboxRepository)
	mockPusher := new(MockCommentPusher)

	mockPusher.On("Enabled").Return(true)
	mockRepo.On("ClaimPending", mock.Anything, claimBatchSize).
		Return([]*domain.JiraOutboxEntry{outboxEntry("out-1", "S2GSS-101")}, nil)
	mockPusher.On("AddComment", mock.Anything, "S2GSS-101", "Maria Atendente", "Boleto reemitido, favor validar").
		Return(nil)
	mockRepo.On("MarkSent", mock.Anything, "out-1").Return(nil)

	worker := NewJiraSyncWorker(mockRepo, mockPusher)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockPusher.AssertExpectations(t)
}

func TestJiraSyncWorker_ProcessJobs_DeliveryFailureIsRecorded(t *testing.T) {
	mockRepo := new(MockOutboxRepository)
	mockPusher := new(MockCommentPusher)

	mockPusher.On("Enabled").Return(true)
	mockRepo.On("ClaimPending", mock.Anything, claimBatchSize).
		Return([]*domain.JiraOutboxEntry{outboxEntry("out-1", "S2GSS-101")}, nil)
	mockPusher.On("AddComment", mock.Anything, "S2GSS-101", mock.Anything, mock.Anything).
		Return(errors.New("401 unauthorized"))
	mockRepo.On("MarkFailed", mock.Anything, "out-1", "401 unauthorized", MaxRetries).Return(nil)

	worker := NewJiraSyncWorker(mockRepo, mockPusher)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "MarkSent", mock.Anything, mock.Anything)
}

func TestJiraSyncWorker_ProcessJobs_OneFailureDoesNotBlockOthers(t *testing.T) {
	mockRepo := new(MockOutboxRepository)
	mockPusher := new(MockCommentPusher)

	mockPusher.On("Enabled").Return(true)
	mockRepo.On("ClaimPending", mock.Anything, claimBatchSize).
		Return([]*domain.JiraOutboxEntry{outboxEntry("out-1", "S2GSS-101"), outboxEntry("out-2", "S2GSS-102")}, nil)
	mockPusher.On("AddComment", mock.Anything, "S2GSS-101", mock.Anything, mock.Anything).
		Return(errors.New("timeout"))
	mockRepo.On("MarkFailed", mock.Anything, "out-1", "timeout", MaxRetries).Return(nil)
	mockPusher.On("AddComment", mock.Anything, "S2GSS-102", mock.Anything, mock.Anything).Return(nil)
	mockRepo.On("MarkSent", mock.Anything, "out-2").Return(nil)

	worker := NewJiraSyncWorker(mockRepo, mockPusher)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockPusher.AssertExpectations(t)
}

func TestJiraSyncWorker_ProcessJobs_RepositoryError(t *testing.T) {
	mockRepo := new(MockOutboxRepository)
	mockPusher := new(MockCommentPusher)

	mockPusher.On("Enabled").Return(true)
	mockRepo.On("ClaimPending", mock.Anything, claimBatchSize).Return(nil, errors.New("database error"))

	worker := NewJiraSyncWorker(mockRepo, mockPusher)
	err := worker.ProcessJobs(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch pending outbox entries")
}
