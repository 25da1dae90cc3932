package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/CommanderOutpost/remindria/internal/events"
	"github.com/CommanderOutpost/remindria/internal/metrics"
	"github.com/CommanderOutpost/remindria/internal/schedules"
)

// Outcome is the result of one executed action, consumed by the renderer.
type Outcome struct {
	Kind      ActionKind
	Success   bool
	Details   string
	CreatedID string
}

// Executor applies validated schedule actions. Every failure is captured in
// the outcome; nothing escapes this boundary as an error.
type Executor struct {
	repo      schedules.Repository
	publisher *events.Publisher
}

func NewExecutor(repo schedules.Repository, publisher *events.Publisher) *Executor {
	return &Executor{repo: repo, publisher: publisher}
}

// Execute runs one action for the given owner and returns its outcome.
func (e *Executor) Execute(ctx context.Context, ownerID string, action Action) Outcome {
	var out Outcome
	switch action.Kind {
	case ActionAdd:
		out = e.create(ctx, ownerID, action.Add)
	case ActionUpdate:
		out = e.update(ctx, ownerID, action.Update)
	case ActionDelete:
		out = e.delete(ctx, ownerID, action.Delete)
	default:
		out = Outcome{Kind: action.Kind, Details: "unknown action"}
	}

	status := "failure"
	if out.Success {
		status = "success"
	}
	metrics.ScheduleActionsTotal.With(prometheus.Labels{
		"kind":   string(out.Kind),
		"status": status,
	}).Inc()
	return out
}

func (e *Executor) create(ctx context.Context, ownerID string, a *AddAction) Outcome {
	out := Outcome{Kind: ActionAdd}

	owner, err := uuid.Parse(ownerID)
	if err != nil {
		out.Details = "invalid owner"
		return out
	}

	now := time.Now()
	sched := &schedules.Schedule{
		ID:          uuid.New(),
		OwnerUserID: owner,
		Title:       a.Title,
		StartTime:   a.StartTime,
		EndTime:     a.EndTime,
		Status:      schedules.StatusPending,
		Image:       a.ImageHint,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := e.repo.Create(ctx, sched); err != nil {
		slog.Error("creating schedule from intent", "owner", ownerID, "error", err)
		out.Details = fmt.Sprintf("could not save %q: %v", a.Title, err)
		return out
	}

	e.publisher.PublishScheduleCreated(ctx, events.ScheduleEvent{
		ScheduleID: sched.ID.String(),
		OwnerID:    ownerID,
		Title:      sched.Title,
		StartTime:  sched.StartTime,
		OccurredAt: now,
	})

	out.Success = true
	out.CreatedID = sched.ID.String()
	out.Details = fmt.Sprintf("created %q starting %s", sched.Title, sched.StartTime.Format(DateTimeFormat))
	return out
}

func (e *Executor) update(ctx context.Context, ownerID string, a *UpdateAction) Outcome {
	out := Outcome{Kind: ActionUpdate}

	target, err := e.resolve(ctx, ownerID, a.Identifier, a.ExistingStartTime)
	if err != nil {
		slog.Error("resolving schedule for update", "owner", ownerID, "error", err)
		out.Details = fmt.Sprintf("could not look up %q: %v", a.Identifier, err)
		return out
	}
	if target == nil {
		out.Details = fmt.Sprintf("no schedule named %q found", a.Identifier)
		return out
	}

	fields := schedules.UpdateFields{
		Title:     a.NewTitle,
		StartTime: a.NewStartTime,
		EndTime:   a.NewEndTime,
	}
	if fields.Empty() {
		out.Details = "no changes requested"
		return out
	}

	affected, err := e.repo.Update(ctx, ownerID, target.ID.String(), fields)
	if err != nil {
		slog.Error("updating schedule from intent", "owner", ownerID, "error", err)
		out.Details = fmt.Sprintf("could not update %q: %v", a.Identifier, err)
		return out
	}
	if affected == 0 {
		// The schedule changed or vanished between lookup and update.
		out.Details = fmt.Sprintf("schedule %q was not modified", a.Identifier)
		return out
	}

	title := target.Title
	if a.NewTitle != nil {
		title = *a.NewTitle
	}
	start := target.StartTime
	if a.NewStartTime != nil {
		start = *a.NewStartTime
	}
	e.publisher.PublishScheduleUpdated(ctx, events.ScheduleEvent{
		ScheduleID: target.ID.String(),
		OwnerID:    ownerID,
		Title:      title,
		StartTime:  start,
		OccurredAt: time.Now(),
	})

	out.Success = true
	out.Details = fmt.Sprintf("updated %q", title)
	return out
}

func (e *Executor) delete(ctx context.Context, ownerID string, a *DeleteAction) Outcome {
	out := Outcome{Kind: ActionDelete}

	target, err := e.resolve(ctx, ownerID, a.Identifier, a.ExistingStartTime)
	if err != nil {
		slog.Error("resolving schedule for delete", "owner", ownerID, "error", err)
		out.Details = fmt.Sprintf("could not look up %q: %v", a.Identifier, err)
		return out
	}
	if target == nil {
		out.Details = fmt.Sprintf("no schedule named %q found", a.Identifier)
		return out
	}

	affected, err := e.repo.SoftDelete(ctx, ownerID, target.ID.String())
	if err != nil {
		slog.Error("deleting schedule from intent", "owner", ownerID, "error", err)
		out.Details = fmt.Sprintf("could not delete %q: %v", a.Identifier, err)
		return out
	}
	if affected == 0 {
		out.Details = fmt.Sprintf("schedule %q was already gone", a.Identifier)
		return out
	}

	e.publisher.PublishScheduleDeleted(ctx, events.ScheduleEvent{
		ScheduleID: target.ID.String(),
		OwnerID:    ownerID,
		Title:      target.Title,
		StartTime:  target.StartTime,
		OccurredAt: time.Now(),
	})

	out.Success = true
	out.Details = fmt.Sprintf("deleted %q", target.Title)
	return out
}

// resolve finds the target by (owner, identifier-as-title, start time),
// falling back to a title-only lookup when no time was given.
func (e *Executor) resolve(ctx context.Context, ownerID, identifier string, startTime *time.Time) (*schedules.Schedule, error) {
	if startTime != nil {
		return e.repo.FindByIdentity(ctx, ownerID, identifier, *startTime)
	}
	return e.repo.FindByTitle(ctx, ownerID, identifier)
}
