package chats

import (
	"time"

	"github.com/google/uuid"
)

const (
	ModeText  = "text"
	ModeVoice = "voice"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatSession is one ongoing conversation between a user and an assistant.
// Messages holds the active window; older turns live in SummarySoFar.
type ChatSession struct {
	ID           uuid.UUID  `json:"id"`
	OwnerUserID  uuid.UUID  `json:"owner_user_id"`
	AssistantID  *uuid.UUID `json:"assistant_id,omitempty"`
	Title        string     `json:"title"`
	Messages     []Message  `json:"messages"`
	SummarySoFar string     `json:"summary_so_far"`
	Mode         string     `json:"conversation_mode"`
	// PendingSchedule holds a draft the user has not yet confirmed;
	// PendingScheduleStep tracks how far the confirmation dialogue got.
	// Both are reserved for a stateful confirmation flow and are not yet
	// written by the turn pipeline.
	PendingSchedule     map[string]any `json:"pending_schedule,omitempty"`
	PendingScheduleStep int            `json:"pending_schedule_step,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}
