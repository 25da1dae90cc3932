// Package events publishes domain events to NATS JetStream.
package events

import "time"

const (
	SubjectScheduleCreated = "remindria.schedules.created"
	SubjectScheduleUpdated = "remindria.schedules.updated"
	SubjectScheduleDeleted = "remindria.schedules.deleted"
	SubjectReminderDue     = "remindria.reminders.due"

	StreamName = "REMINDRIA"
)

type ScheduleEvent struct {
	ScheduleID string    `json:"schedule_id"`
	OwnerID    string    `json:"owner_id"`
	Title      string    `json:"title"`
	StartTime  time.Time `json:"start_time"`
	OccurredAt time.Time `json:"occurred_at"`
}

type ReminderDueEvent struct {
	ScheduleID string    `json:"schedule_id"`
	OwnerID    string    `json:"owner_id"`
	Title      string    `json:"title"`
	StartTime  time.Time `json:"start_time"`
	DueAt      time.Time `json:"due_at"`
	Message    string    `json:"message"`
}
