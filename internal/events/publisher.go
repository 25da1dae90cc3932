package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go/jetstream"
)

// Publisher emits schedule lifecycle and reminder events. A nil Publisher
// drops all events.
type Publisher struct {
	js jetstream.JetStream
}

func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js}
}

func (p *Publisher) PublishScheduleCreated(ctx context.Context, ev ScheduleEvent) {
	p.publish(ctx, SubjectScheduleCreated, ev)
}

func (p *Publisher) PublishScheduleUpdated(ctx context.Context, ev ScheduleEvent) {
	p.publish(ctx, SubjectScheduleUpdated, ev)
}

func (p *Publisher) PublishScheduleDeleted(ctx context.Context, ev ScheduleEvent) {
	p.publish(ctx, SubjectScheduleDeleted, ev)
}

func (p *Publisher) PublishReminderDue(ctx context.Context, ev ReminderDueEvent) {
	p.publish(ctx, SubjectReminderDue, ev)
}

// publish is best effort: errors are logged and dropped.
func (p *Publisher) publish(ctx context.Context, subject string, data any) {
	if p == nil || p.js == nil {
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		slog.Error("marshaling event", "subject", subject, "error", err)
		return
	}
	if _, err := p.js.Publish(ctx, subject, payload); err != nil {
		slog.Warn("publishing event", "subject", subject, "error", err)
	}
}
