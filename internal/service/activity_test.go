package service

import (
	"context"
	"testing"
	"time"

	"github.com/safe2go/helpdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newActivityFixture() (*ActivityService, *MockActivityRepository) {
	activityRepo := new(MockActivityRepository)
	svc := NewActivityServiceWithUUIDGen(activityRepo, &seqUUIDGenerator{prefix: "act"})
	return svc, activityRepo
}

func TestActivityService_Create(t *testing.T) {
	svc, activityRepo := newActivityFixture()

	var created *domain.Activity
	activityRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Activity")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*domain.Activity) }).
		Return(nil)

	activity, err := svc.Create(context.Background(), CreateActivityInput{
		CaseID:      "c-1",
		Responsible: "Maria Atendente",
		Activity:    "Análise do boleto rejeitado",
		TimeSpent:   15,
		Notes:       "aguardando retorno da AVLA",
	})

	require.NoError(t, err)
	assert.Equal(t, "act-1", activity.ID)
	assert.Equal(t, "c-1", activity.CaseID)
	assert.Equal(t, 15, activity.TimeSpent)
	assert.False(t, activity.Current)
	assert.Same(t, activity, created)
	activityRepo.AssertNotCalled(t, "SetCurrent", mock.Anything, mock.Anything, mock.Anything)
}

func TestActivityService_Create_CurrentReleasesPrevious(t *testing.T) {
	svc, activityRepo := newActivityFixture()

	activityRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Activity")).Return(nil)
	activityRepo.On("SetCurrent", mock.Anything, "act-1", "Maria Atendente").Return(nil)

	activity, err := svc.Create(context.Background(), CreateActivityInput{
		Responsible: "Maria Atendente",
		Activity:    "Atendimento em andamento",
		Current:     true,
	})

	require.NoError(t, err)
	assert.True(t, activity.Current)
	activityRepo.AssertExpectations(t)
}

func TestActivityService_Create_RejectsMissingDescription(t *testing.T) {
	svc, activityRepo := newActivityFixture()

	_, err := svc.Create(context.Background(), CreateActivityInput{
		Responsible: "Maria Atendente",
	})

	require.Error(t, err)
	activityRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestActivityService_List(t *testing.T) {
	svc, activityRepo := newActivityFixture()

	activityRepo.On("List", mock.Anything).
		Return([]*domain.Activity{{ID: "act-1"}, {ID: "act-2"}}, nil)

	activities, err := svc.List(context.Background(), "")

	require.NoError(t, err)
	assert.Len(t, activities, 2)
	activityRepo.AssertNotCalled(t, "ListByCase", mock.Anything, mock.Anything)
}

func TestActivityService_List_ScopedToCase(t *testing.T) {
	svc, activityRepo := newActivityFixture()

	activityRepo.On("ListByCase", mock.Anything, "c-1").
		Return([]*domain.Activity{{ID: "act-1", CaseID: "c-1"}}, nil)

	activities, err := svc.List(context.Background(), "c-1")

	require.NoError(t, err)
	assert.Len(t, activities, 1)
	activityRepo.AssertNotCalled(t, "List", mock.Anything)
}

func TestActivityService_ListCurrent(t *testing.T) {
	svc, activityRepo := newActivityFixture()

	activityRepo.On("ListCurrent", mock.Anything).
		Return([]*domain.Activity{
			{ID: "act-1", Responsible: "Maria Atendente", Current: true},
			{ID: "act-2", Responsible: "João Atendente", Current: true},
		}, nil)

	activities, err := svc.ListCurrent(context.Background())

	require.NoError(t, err)
	require.Len(t, activities, 2)
	assert.True(t, activities[0].Current)
	activityRepo.AssertNotCalled(t, "List", mock.Anything)
}

func TestActivityService_Stop_RecordsElapsedMinutes(t *testing.T) {
	svc, activityRepo := newActivityFixture()

	activityRepo.On("GetByID", mock.Anything, "act-1").Return(&domain.Activity{
		ID:          "act-1",
		Responsible: "Maria Atendente",
		Activity:    "Atendimento em andamento",
		Current:     true,
		CreatedAt:   time.Now().UTC().Add(-42 * time.Minute),
	}, nil)

	var updated *domain.Activity
	activityRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Activity")).
		Run(func(args mock.Arguments) { updated = args.Get(1).(*domain.Activity) }).
		Return(nil)

	activity, err := svc.Stop(context.Background(), "act-1")

	require.NoError(t, err)
	assert.False(t, activity.Current)
	assert.Equal(t, 42, activity.TimeSpent)
	assert.Same(t, activity, updated)
}

func TestActivityService_Stop_FutureClockClampsToZero(t *testing.T) {
	svc, activityRepo := newActivityFixture()

	activityRepo.On("GetByID", mock.Anything, "act-1").Return(&domain.Activity{
		ID:        "act-1",
		Current:   true,
		CreatedAt: time.Now().UTC().Add(5 * time.Minute),
	}, nil)
	activityRepo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Activity")).Return(nil)

	activity, err := svc.Stop(context.Background(), "act-1")

	require.NoError(t, err)
	assert.Equal(t, 0, activity.TimeSpent)
}

func TestActivityService_Stop_AlreadyStoppedIsNoOp(t *testing.T) {
	svc, activityRepo := newActivityFixture()

	activityRepo.On("GetByID", mock.Anything, "act-1").Return(&domain.Activity{
		ID:        "act-1",
		Current:   false,
		TimeSpent: 30,
	}, nil)

	activity, err := svc.Stop(context.Background(), "act-1")

	require.NoError(t, err)
	assert.Equal(t, 30, activity.TimeSpent)
	activityRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestActivityService_Delete(t *testing.T) {
	svc, activityRepo := newActivityFixture()

	activityRepo.On("Delete", mock.Anything, "act-1").Return(nil)

	require.NoError(t, svc.Delete(context.Background(), "act-1"))
	activityRepo.AssertExpectations(t)
}
