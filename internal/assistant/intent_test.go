package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CommanderOutpost/remindria/internal/chats"
	"github.com/CommanderOutpost/remindria/internal/completion"
)

func extractorWith(response string) *IntentExtractor {
	e := NewIntentExtractor(&completion.Fake{Responses: []string{response}})
	e.now = func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) }
	return e
}

func sampleConversation() []chats.Message {
	return []chats.Message{
		{Role: chats.RoleSystem, Content: "You are a schedule assistant."},
		{Role: chats.RoleUser, Content: "Remind me to call mom tomorrow at 5pm"},
		{Role: chats.RoleAssistant, Content: "Should I set that reminder?"},
		{Role: chats.RoleUser, Content: "yes"},
	}
}

func TestExtract_NullToken(t *testing.T) {
	for _, raw := range []string{"null", "NULL", "  null  ", `"null"`} {
		e := extractorWith(raw)
		assert.Nil(t, e.Extract(context.Background(), sampleConversation(), nil), "raw %q", raw)
	}
}

func TestExtract_AddSchedule(t *testing.T) {
	e := extractorWith(`[{"intent": "add_schedule", "title": "call mom", "start_time": "2026-09-01 17:00:00"}]`)

	actions := e.Extract(context.Background(), sampleConversation(), nil)
	require.Len(t, actions, 1)
	require.Equal(t, ActionAdd, actions[0].Kind)
	assert.Equal(t, "call mom", actions[0].Add.Title)
	assert.True(t, actions[0].Add.StartTime.Equal(time.Date(2026, 9, 1, 17, 0, 0, 0, time.UTC)))
}

func TestExtract_BareObjectWrapped(t *testing.T) {
	e := extractorWith(`{"intent": "add_schedule", "title": "call mom", "start_time": "2026-09-01 17:00:00"}`)

	actions := e.Extract(context.Background(), sampleConversation(), nil)
	require.Len(t, actions, 1)
	assert.Equal(t, ActionAdd, actions[0].Kind)
}

func TestExtract_FencedCodeBlock(t *testing.T) {
	raw := "```json\n[{\"intent\": \"delete_schedule\", \"schedule_identifier\": \"Dentist\"}]\n```"
	e := extractorWith(raw)

	actions := e.Extract(context.Background(), sampleConversation(), nil)
	require.Len(t, actions, 1)
	require.Equal(t, ActionDelete, actions[0].Kind)
	assert.Equal(t, "Dentist", actions[0].Delete.Identifier)
}

func TestExtract_ProseAroundJSON(t *testing.T) {
	raw := `Here is the action: [{"intent": "add_schedule", "title": "gym", "start_time": "2026-09-02 07:00:00"}] hope that helps!`
	e := extractorWith(raw)

	actions := e.Extract(context.Background(), sampleConversation(), nil)
	require.Len(t, actions, 1)
	assert.Equal(t, "gym", actions[0].Add.Title)
}

func TestExtract_BadStartTimeRejectsBatch(t *testing.T) {
	raw := `[
		{"intent": "add_schedule", "title": "good one", "start_time": "2026-09-01 17:00:00"},
		{"intent": "add_schedule", "title": "bad one", "start_time": "banana"}
	]`
	e := extractorWith(raw)

	assert.Nil(t, e.Extract(context.Background(), sampleConversation(), nil))
}

func TestExtract_UnknownIntentRejectsBatch(t *testing.T) {
	raw := `[
		{"intent": "add_schedule", "title": "good one", "start_time": "2026-09-01 17:00:00"},
		{"intent": "explode_schedule", "schedule_identifier": "x"}
	]`
	e := extractorWith(raw)

	assert.Nil(t, e.Extract(context.Background(), sampleConversation(), nil))
}

func TestExtract_GarbledDatetimeRejectsBatch(t *testing.T) {
	// A present but unparseable datetime field must fail the whole batch,
	// never shrink to the fields that did parse.
	for name, raw := range map[string]string{
		"update new_start_time": `[{"intent": "update_schedule", "schedule_identifier": "Dentist", "new_title": "Dentist visit", "new_start_time": "banana"}]`,
		"update new_end_time":   `[{"intent": "update_schedule", "schedule_identifier": "Dentist", "new_title": "Dentist visit", "new_end_time": "banana"}]`,
		"update existing":       `[{"intent": "update_schedule", "schedule_identifier": "Dentist", "new_title": "Dentist visit", "existing_start_time": "banana"}]`,
		"add end_time":          `[{"intent": "add_schedule", "title": "gym", "start_time": "2026-09-02 07:00:00", "end_time": "banana"}]`,
		"delete existing":       `[{"intent": "delete_schedule", "schedule_identifier": "Dentist", "existing_start_time": "banana"}]`,
	} {
		e := extractorWith(raw)
		assert.Nil(t, e.Extract(context.Background(), sampleConversation(), nil), name)
	}
}

func TestExtract_UpdateNeedsSomethingToChange(t *testing.T) {
	e := extractorWith(`[{"intent": "update_schedule", "schedule_identifier": "Dentist"}]`)
	assert.Nil(t, e.Extract(context.Background(), sampleConversation(), nil))
}

func TestExtract_UpdateSchedule(t *testing.T) {
	raw := `[{"intent": "update_schedule", "schedule_identifier": "Dentist",
		"existing_start_time": "2026-09-03 09:00:00", "new_start_time": "2026-09-03 11:00:00"}]`
	e := extractorWith(raw)

	actions := e.Extract(context.Background(), sampleConversation(), nil)
	require.Len(t, actions, 1)
	require.Equal(t, ActionUpdate, actions[0].Kind)
	upd := actions[0].Update
	assert.Equal(t, "Dentist", upd.Identifier)
	require.NotNil(t, upd.ExistingStartTime)
	require.NotNil(t, upd.NewStartTime)
	assert.Equal(t, 11, upd.NewStartTime.Hour())
	assert.Nil(t, upd.NewTitle)
}

func TestExtract_DeleteMissingIdentifier(t *testing.T) {
	e := extractorWith(`[{"intent": "delete_schedule"}]`)
	assert.Nil(t, e.Extract(context.Background(), sampleConversation(), nil))
}

func TestExtract_NotJSON(t *testing.T) {
	e := extractorWith("Sure, I have set that up for you!")
	assert.Nil(t, e.Extract(context.Background(), sampleConversation(), nil))
}

func TestExtract_EmptyArray(t *testing.T) {
	e := extractorWith("[]")
	assert.Nil(t, e.Extract(context.Background(), sampleConversation(), nil))
}

func TestExtract_CompletionFailure(t *testing.T) {
	e := NewIntentExtractor(&completion.Fake{Err: errors.New("timeout")})
	assert.Nil(t, e.Extract(context.Background(), sampleConversation(), nil))
}

func TestExtract_SystemTurnsExcluded(t *testing.T) {
	fake := &completion.Fake{Responses: []string{"null"}}
	e := NewIntentExtractor(fake)

	e.Extract(context.Background(), sampleConversation(), nil)

	require.Len(t, fake.Calls, 1)
	sent := fake.Calls[0]
	// One injected contract prompt plus the three non-system turns.
	require.Len(t, sent, 4)
	assert.Equal(t, completion.RoleSystem, sent[0].Role)
	for _, m := range sent[1:] {
		assert.NotEqual(t, completion.RoleSystem, m.Role)
	}
}
