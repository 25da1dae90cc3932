// Package notifier scans for schedules whose start time has arrived and
// publishes due-reminder events.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/CommanderOutpost/remindria/internal/chats"
	"github.com/CommanderOutpost/remindria/internal/events"
	"github.com/CommanderOutpost/remindria/internal/metrics"
	"github.com/CommanderOutpost/remindria/internal/schedules"
)

const scanBatchSize = 100

// Renderer turns a reminder sentence into the spoken form carried on the
// due event. Satisfied by the assistant package's renderer.
type Renderer interface {
	RenderReply(ctx context.Context, reply, mode string) string
}

type Notifier struct {
	repo      schedules.Repository
	publisher *events.Publisher
	renderer  Renderer
	interval  time.Duration
}

func New(repo schedules.Repository, publisher *events.Publisher, renderer Renderer, interval time.Duration) *Notifier {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Notifier{repo: repo, publisher: publisher, renderer: renderer, interval: interval}
}

// Start runs the scan loop until the context is cancelled.
func (n *Notifier) Start(ctx context.Context) {
	slog.Info("notifier started", "interval", n.interval)

	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("notifier stopped")
			return
		case <-ticker.C:
			n.scan(ctx)
		}
	}
}

// scan dispatches one event per due schedule and marks it notified. Marking
// first would lose reminders on publish failure; publishing first means a
// crash between the two can at worst duplicate a reminder.
func (n *Notifier) scan(ctx context.Context) {
	now := time.Now()
	due, err := n.repo.ListDue(ctx, now, scanBatchSize)
	if err != nil {
		slog.Error("scanning due schedules", "error", err)
		return
	}

	for _, s := range due {
		n.publisher.PublishReminderDue(ctx, events.ReminderDueEvent{
			ScheduleID: s.ID.String(),
			OwnerID:    s.OwnerUserID.String(),
			Title:      s.Title,
			StartTime:  s.StartTime,
			DueAt:      now,
			Message:    n.announce(ctx, s),
		})

		if err := n.repo.MarkNotified(ctx, s.ID.String(), now); err != nil {
			slog.Error("marking schedule notified", "schedule_id", s.ID, "error", err)
			continue
		}
		metrics.RemindersDueTotal.Inc()
	}

	if len(due) > 0 {
		slog.Debug("dispatched due reminders", "count", len(due))
	}
}

// announce builds the spoken reminder for a due schedule.
func (n *Notifier) announce(ctx context.Context, s *schedules.Schedule) string {
	text := fmt.Sprintf("Reminder: %s at %s.", s.Title, s.StartTime.Format("3:04 PM on January 2"))
	if n.renderer == nil {
		return text
	}
	return n.renderer.RenderReply(ctx, text, chats.ModeVoice)
}
