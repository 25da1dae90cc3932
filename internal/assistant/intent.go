package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/CommanderOutpost/remindria/internal/chats"
	"github.com/CommanderOutpost/remindria/internal/completion"
	"github.com/CommanderOutpost/remindria/internal/metrics"
	"github.com/CommanderOutpost/remindria/internal/schedules"
)

type ActionKind string

const (
	ActionAdd    ActionKind = "add_schedule"
	ActionUpdate ActionKind = "update_schedule"
	ActionDelete ActionKind = "delete_schedule"
)

type AddAction struct {
	Title     string
	StartTime time.Time
	EndTime   *time.Time
	ImageHint string
}

type UpdateAction struct {
	Identifier        string
	ExistingStartTime *time.Time
	NewTitle          *string
	NewStartTime      *time.Time
	NewEndTime        *time.Time
}

type DeleteAction struct {
	Identifier        string
	ExistingStartTime *time.Time
}

// Action is a tagged union: exactly one of Add, Update, Delete is set,
// matching Kind.
type Action struct {
	Kind   ActionKind
	Add    *AddAction
	Update *UpdateAction
	Delete *DeleteAction
}

// IntentExtractor turns a whole conversation into zero or more validated
// schedule actions. The completion service's output is untrusted: anything
// that violates the contract rejects the entire batch.
type IntentExtractor struct {
	completion completion.Client
	now        func() time.Time
}

func NewIntentExtractor(client completion.Client) *IntentExtractor {
	return &IntentExtractor{completion: client, now: time.Now}
}

const intentContract = `You are an intent extraction engine for a schedule assistant. You NEVER write prose.

Respond with EXACTLY ONE of:
1. The literal token null
2. A JSON array of action objects. Even a single action must be wrapped in an array.

Action shapes (field names are exact, datetimes use the format "2006-01-02 15:04:05"):
- {"intent": "add_schedule", "title": "...", "start_time": "...", "end_time": "...", "image": "..."} (end_time and image optional)
- {"intent": "update_schedule", "schedule_identifier": "...", "existing_start_time": "...", "new_title": "...", "new_start_time": "...", "new_end_time": "..."} (only include fields the user changed)
- {"intent": "delete_schedule", "schedule_identifier": "...", "existing_start_time": "..."}

Rules:
- Only emit an action after the user has explicitly confirmed it in the conversation. A proposal the user has not yet agreed to is null.
- When the user restates a field, only the most recent value counts.
- schedule_identifier is the schedule's title as the user refers to it.
- If the user is just chatting, asking questions, or has not confirmed, respond null.

The user's current schedules, for disambiguation:
%s

The current datetime is %s.`

// Extract parses the whole conversation for confirmed schedule actions.
// A nil return means no intent was detected, including every contract
// violation.
func (e *IntentExtractor) Extract(ctx context.Context, conversation []chats.Message, known []*schedules.Schedule) []Action {
	system := fmt.Sprintf(intentContract, renderKnownSchedules(known), e.now().Format(DateTimeFormat))

	msgs := []completion.Message{{Role: completion.RoleSystem, Content: system}}
	for _, m := range conversation {
		if m.Role == chats.RoleSystem {
			continue
		}
		msgs = append(msgs, completion.Message{Role: m.Role, Content: m.Content})
	}

	raw, err := e.completion.Complete(ctx, msgs, completion.Options{Temperature: 0})
	if err != nil {
		slog.Warn("intent extraction completion failed", "error", err)
		metrics.IntentBatchesTotal.With(prometheus.Labels{"outcome": "none"}).Inc()
		return nil
	}

	actions := e.parseActions(raw)
	outcome := "none"
	if actions != nil {
		outcome = "actions"
	} else if !isNullToken(raw) {
		outcome = "rejected"
	}
	metrics.IntentBatchesTotal.With(prometheus.Labels{"outcome": outcome}).Inc()
	return actions
}

func (e *IntentExtractor) parseActions(raw string) []Action {
	if isNullToken(raw) {
		return nil
	}

	fragment := extractJSONFragment(raw)
	if fragment == "" {
		return nil
	}

	var parsed any
	if err := json.Unmarshal([]byte(fragment), &parsed); err != nil {
		return nil
	}

	var items []json.RawMessage
	switch v := parsed.(type) {
	case string:
		// The model sometimes JSON-encodes the null token itself.
		if strings.EqualFold(strings.TrimSpace(v), "null") {
			return nil
		}
		return nil
	case nil:
		return nil
	case []any:
		if err := json.Unmarshal([]byte(fragment), &items); err != nil {
			return nil
		}
	case map[string]any:
		// Legacy single-object form: accept on input, wrap into a batch.
		items = []json.RawMessage{json.RawMessage(fragment)}
	default:
		return nil
	}

	actions := make([]Action, 0, len(items))
	for _, item := range items {
		action, ok := e.parseAction(item)
		if !ok {
			// All-or-nothing: one bad action poisons the batch.
			return nil
		}
		actions = append(actions, action)
	}

	if len(actions) == 0 {
		return nil
	}
	return actions
}

type rawAction struct {
	Intent             string `json:"intent"`
	Title              string `json:"title"`
	StartTime          string `json:"start_time"`
	EndTime            string `json:"end_time"`
	Image              string `json:"image"`
	ScheduleIdentifier string `json:"schedule_identifier"`
	ExistingStartTime  string `json:"existing_start_time"`
	NewTitle           string `json:"new_title"`
	NewStartTime       string `json:"new_start_time"`
	NewEndTime         string `json:"new_end_time"`
}

func (e *IntentExtractor) parseAction(item json.RawMessage) (Action, bool) {
	var r rawAction
	if err := json.Unmarshal(item, &r); err != nil {
		return Action{}, false
	}

	now := e.now()
	switch ActionKind(r.Intent) {
	case ActionAdd:
		if strings.TrimSpace(r.Title) == "" {
			return Action{}, false
		}
		start := ParseDateTime(r.StartTime, now)
		if start == nil {
			return Action{}, false
		}
		end, ok := parseOptionalDateTime(r.EndTime, now)
		if !ok {
			return Action{}, false
		}
		return Action{
			Kind: ActionAdd,
			Add: &AddAction{
				Title:     r.Title,
				StartTime: *start,
				EndTime:   end,
				ImageHint: r.Image,
			},
		}, true

	case ActionUpdate:
		if strings.TrimSpace(r.ScheduleIdentifier) == "" {
			return Action{}, false
		}
		existing, ok := parseOptionalDateTime(r.ExistingStartTime, now)
		if !ok {
			return Action{}, false
		}
		newStart, ok := parseOptionalDateTime(r.NewStartTime, now)
		if !ok {
			return Action{}, false
		}
		newEnd, ok := parseOptionalDateTime(r.NewEndTime, now)
		if !ok {
			return Action{}, false
		}
		upd := &UpdateAction{
			Identifier:        r.ScheduleIdentifier,
			ExistingStartTime: existing,
			NewStartTime:      newStart,
			NewEndTime:        newEnd,
		}
		if strings.TrimSpace(r.NewTitle) != "" {
			title := r.NewTitle
			upd.NewTitle = &title
		}
		if upd.NewTitle == nil && upd.NewStartTime == nil && upd.NewEndTime == nil {
			// Nothing to change.
			return Action{}, false
		}
		return Action{Kind: ActionUpdate, Update: upd}, true

	case ActionDelete:
		if strings.TrimSpace(r.ScheduleIdentifier) == "" {
			return Action{}, false
		}
		existing, ok := parseOptionalDateTime(r.ExistingStartTime, now)
		if !ok {
			return Action{}, false
		}
		return Action{
			Kind: ActionDelete,
			Delete: &DeleteAction{
				Identifier:        r.ScheduleIdentifier,
				ExistingStartTime: existing,
			},
		}, true
	}

	return Action{}, false
}

// parseOptionalDateTime distinguishes an absent datetime field from a
// present one that cannot be parsed. Absent is fine; present-but-garbled
// fails, so a half-understood change is never applied.
func parseOptionalDateTime(text string, now time.Time) (*time.Time, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, true
	}
	parsed := ParseDateTime(text, now)
	if parsed == nil {
		return nil, false
	}
	return parsed, true
}

func isNullToken(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.Trim(trimmed, "\"'`")
	return strings.EqualFold(trimmed, "null")
}

// extractJSONFragment pulls a JSON payload out of raw model output. Fenced
// code blocks win; otherwise the first bracketed array, then the first
// braced object, found by scanning.
func extractJSONFragment(raw string) string {
	if fenced := extractFenced(raw); fenced != "" {
		raw = fenced
	}

	if start := strings.Index(raw, "["); start >= 0 {
		if end := strings.LastIndex(raw, "]"); end > start {
			return raw[start : end+1]
		}
	}
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			return raw[start : end+1]
		}
	}
	return ""
}

func extractFenced(raw string) string {
	start := strings.Index(raw, "```")
	if start < 0 {
		return ""
	}
	rest := raw[start+3:]
	if nl := strings.Index(rest, "\n"); nl >= 0 {
		// Drop the language tag line if present.
		firstLine := strings.TrimSpace(rest[:nl])
		if firstLine == "json" || firstLine == "" {
			rest = rest[nl+1:]
		}
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}

func renderKnownSchedules(known []*schedules.Schedule) string {
	if len(known) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, s := range known {
		fmt.Fprintf(&b, "- %q starting %s", s.Title, s.StartTime.Format(DateTimeFormat))
		if s.EndTime != nil {
			fmt.Fprintf(&b, " until %s", s.EndTime.Format(DateTimeFormat))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
