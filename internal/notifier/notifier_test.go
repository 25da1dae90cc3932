package notifier

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CommanderOutpost/remindria/internal/schedules"
)

func seedSchedule(t *testing.T, repo schedules.Repository, start time.Time) *schedules.Schedule {
	t.Helper()
	s := &schedules.Schedule{
		ID:          uuid.New(),
		OwnerUserID: uuid.New(),
		Title:       "Dentist",
		StartTime:   start,
		Status:      schedules.StatusPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), s))
	return s
}

func TestScan_MarksDueSchedules(t *testing.T) {
	repo := schedules.NewMemoryRepository()
	n := New(repo, nil, nil, time.Minute)

	due := seedSchedule(t, repo, time.Now().Add(-time.Minute))
	future := seedSchedule(t, repo, time.Now().Add(time.Hour))

	n.scan(context.Background())

	stored, err := repo.GetByID(context.Background(), due.OwnerUserID.String(), due.ID.String())
	require.NoError(t, err)
	assert.NotNil(t, stored.NotifiedAt)

	stored, err = repo.GetByID(context.Background(), future.OwnerUserID.String(), future.ID.String())
	require.NoError(t, err)
	assert.Nil(t, stored.NotifiedAt)
}

func TestScan_DoesNotNotifyTwice(t *testing.T) {
	repo := schedules.NewMemoryRepository()
	n := New(repo, nil, nil, time.Minute)

	s := seedSchedule(t, repo, time.Now().Add(-time.Minute))

	n.scan(context.Background())
	stored, err := repo.GetByID(context.Background(), s.OwnerUserID.String(), s.ID.String())
	require.NoError(t, err)
	require.NotNil(t, stored.NotifiedAt)
	first := *stored.NotifiedAt

	n.scan(context.Background())
	stored, err = repo.GetByID(context.Background(), s.OwnerUserID.String(), s.ID.String())
	require.NoError(t, err)
	assert.True(t, stored.NotifiedAt.Equal(first))
}

type speakRenderer struct{}

func (speakRenderer) RenderReply(_ context.Context, reply, _ string) string {
	return "<speak>" + reply + "</speak>"
}

func TestAnnounce_RendersSpokenMessage(t *testing.T) {
	repo := schedules.NewMemoryRepository()
	s := seedSchedule(t, repo, time.Date(2026, 9, 1, 17, 0, 0, 0, time.UTC))

	n := New(repo, nil, speakRenderer{}, time.Minute)
	msg := n.announce(context.Background(), s)
	assert.Contains(t, msg, "<speak>")
	assert.Contains(t, msg, "Dentist")
	assert.Contains(t, msg, "5:00 PM")

	n = New(repo, nil, nil, time.Minute)
	msg = n.announce(context.Background(), s)
	assert.Equal(t, "Reminder: Dentist at 5:00 PM on September 1.", msg)
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	repo := schedules.NewMemoryRepository()
	n := New(repo, nil, nil, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		n.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("notifier did not stop")
	}
}
