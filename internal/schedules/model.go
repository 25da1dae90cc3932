package schedules

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusSkipped   = "skipped"
)

type Schedule struct {
	ID          uuid.UUID  `json:"id"`
	OwnerUserID uuid.UUID  `json:"owner_user_id"`
	Title       string     `json:"title"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Recurrence  string     `json:"recurrence,omitempty"`
	Status      string     `json:"status"`
	EventID     string     `json:"event_id,omitempty"`
	Image       string     `json:"image,omitempty"`
	NotifiedAt  *time.Time `json:"notified_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"-"`
}

// UpdateFields carries a sparse update. Nil fields are left unchanged.
type UpdateFields struct {
	Title      *string    `json:"title,omitempty"`
	StartTime  *time.Time `json:"start_time,omitempty"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	Recurrence *string    `json:"recurrence,omitempty"`
	Status     *string    `json:"status,omitempty"`
	Image      *string    `json:"image,omitempty"`
}

func (u UpdateFields) Empty() bool {
	return u.Title == nil && u.StartTime == nil && u.EndTime == nil &&
		u.Recurrence == nil && u.Status == nil && u.Image == nil
}
