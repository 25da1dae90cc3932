package schedules

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CommanderOutpost/remindria/internal/api"
)

func newTestService() (*Service, string) {
	repo := NewMemoryRepository()
	svc := NewService(repo, nil)
	return svc, uuid.New().String()
}

func TestService_CreateAndGet(t *testing.T) {
	svc, owner := newTestService()
	ctx := context.Background()

	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	sched, err := svc.Create(ctx, owner, CreateInput{Title: "Dentist", StartTime: start})
	require.NoError(t, err)
	require.NotNil(t, sched)
	assert.Equal(t, StatusPending, sched.Status)

	got, err := svc.GetByID(ctx, owner, sched.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Dentist", got.Title)
	assert.True(t, got.StartTime.Equal(start))
}

func TestService_Get_WrongOwner(t *testing.T) {
	svc, owner := newTestService()
	ctx := context.Background()

	sched, err := svc.Create(ctx, owner, CreateInput{Title: "Dentist", StartTime: time.Now()})
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, uuid.New().String(), sched.ID.String())
	assert.ErrorIs(t, err, api.ErrScheduleNotFound)
}

func TestService_Update(t *testing.T) {
	svc, owner := newTestService()
	ctx := context.Background()

	sched, err := svc.Create(ctx, owner, CreateInput{
		Title:     "Standup",
		StartTime: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	newTitle := "Team standup"
	newStart := time.Date(2026, 9, 1, 9, 30, 0, 0, time.UTC)
	updated, err := svc.Update(ctx, owner, sched.ID.String(), UpdateFields{
		Title:     &newTitle,
		StartTime: &newStart,
	})
	require.NoError(t, err)
	assert.Equal(t, "Team standup", updated.Title)
	assert.True(t, updated.StartTime.Equal(newStart))
}

func TestService_Update_EmptyFields(t *testing.T) {
	svc, owner := newTestService()
	ctx := context.Background()

	sched, err := svc.Create(ctx, owner, CreateInput{Title: "Standup", StartTime: time.Now()})
	require.NoError(t, err)

	_, err = svc.Update(ctx, owner, sched.ID.String(), UpdateFields{})
	assert.Error(t, err)
}

func TestService_Update_NotFound(t *testing.T) {
	svc, owner := newTestService()
	title := "x"

	_, err := svc.Update(context.Background(), owner, uuid.New().String(), UpdateFields{Title: &title})
	assert.ErrorIs(t, err, api.ErrScheduleNotFound)
}

func TestService_Delete_Idempotency(t *testing.T) {
	svc, owner := newTestService()
	ctx := context.Background()

	sched, err := svc.Create(ctx, owner, CreateInput{Title: "Dentist", StartTime: time.Now()})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, owner, sched.ID.String()))

	// A second delete finds nothing to remove and must report not found.
	err = svc.Delete(ctx, owner, sched.ID.String())
	assert.ErrorIs(t, err, api.ErrScheduleNotFound)
}

func TestService_ListRange(t *testing.T) {
	svc, owner := newTestService()
	ctx := context.Background()

	mk := func(title string, start time.Time) {
		_, err := svc.Create(ctx, owner, CreateInput{Title: title, StartTime: start})
		require.NoError(t, err)
	}
	mk("early", time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC))
	mk("inside", time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC))
	mk("late", time.Date(2026, 9, 5, 8, 0, 0, 0, time.UTC))

	list, err := svc.ListRange(ctx, owner,
		time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "inside", list[0].Title)
}

func TestRepository_FindByIdentity(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	owner := uuid.New()

	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	s := &Schedule{
		ID:          uuid.New(),
		OwnerUserID: owner,
		Title:       "Dentist",
		StartTime:   start,
		Status:      StatusPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	require.NoError(t, repo.Create(ctx, s))

	found, err := repo.FindByIdentity(ctx, owner.String(), "Dentist", start)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, s.ID, found.ID)

	// Different start time is a different identity.
	miss, err := repo.FindByIdentity(ctx, owner.String(), "Dentist", start.Add(time.Hour))
	require.NoError(t, err)
	assert.Nil(t, miss)
}
