package assistant

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CommanderOutpost/remindria/internal/assistants"
	"github.com/CommanderOutpost/remindria/internal/chats"
	"github.com/CommanderOutpost/remindria/internal/completion"
	"github.com/CommanderOutpost/remindria/internal/schedules"
)

// scriptedModel routes fake completions by the system prompt each component
// sends, so one fake can serve extraction, conversation, and rendering.
type scriptedModel struct {
	extract  func(userTurns []completion.Message) string
	converse string
	outcome  string
}

func (m *scriptedModel) client() *completion.Fake {
	return &completion.Fake{
		ReplyFunc: func(msgs []completion.Message) (string, error) {
			system := msgs[0].Content
			switch {
			case strings.Contains(system, "intent extraction engine"):
				if m.extract == nil {
					return "null", nil
				}
				return m.extract(msgs[1:]), nil
			case strings.Contains(system, "A schedule action of kind"):
				return m.outcome, nil
			default:
				return m.converse, nil
			}
		},
	}
}

func newTurnService(model *scriptedModel) (*Service, *schedules.MemoryRepository, string) {
	scheduleRepo := schedules.NewMemoryRepository()
	svc := NewService(
		chats.NewMemoryRepository(),
		scheduleRepo,
		assistants.NewMemoryRepository(),
		model.client(),
		nil,
	)
	return svc, scheduleRepo, uuid.New().String()
}

func TestTurn_ConfirmedCreateFlow(t *testing.T) {
	model := &scriptedModel{
		converse: "I can set a reminder to call mom tomorrow at 5pm. Shall I?",
		outcome:  "All set! I added call mom for tomorrow at 5pm.",
		extract: func(userTurns []completion.Message) string {
			// The model only emits an action once the user has confirmed.
			last := userTurns[len(userTurns)-1]
			if last.Role == completion.RoleUser && strings.EqualFold(last.Content, "yes") {
				return `[{"intent": "add_schedule", "title": "call mom", "start_time": "tomorrow at 5pm"}]`
			}
			return "null"
		},
	}
	svc, scheduleRepo, owner := newTurnService(model)
	ctx := context.Background()

	first, err := svc.Turn(ctx, owner, TurnInput{Prompt: "Remind me to call mom tomorrow at 5pm"})
	require.NoError(t, err)
	assert.Contains(t, first.Response, "Shall I?")

	recent, err := scheduleRepo.ListRecent(ctx, owner, 10)
	require.NoError(t, err)
	assert.Empty(t, recent, "nothing may be created before confirmation")

	second, err := svc.Turn(ctx, owner, TurnInput{ChatID: first.ChatID, Prompt: "yes"})
	require.NoError(t, err)
	assert.Equal(t, first.ChatID, second.ChatID)
	assert.NotEmpty(t, first.Title)
	assert.Equal(t, first.Title, second.Title, "the title is set once and then sticks")
	assert.Contains(t, second.Response, "call mom")

	recent, err = scheduleRepo.ListRecent(ctx, owner, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "call mom", recent[0].Title)
	assert.Equal(t, 17, recent[0].StartTime.Hour())
	assert.Equal(t, time.Now().AddDate(0, 0, 1).Day(), recent[0].StartTime.Day())
}

func TestTurn_DeleteUnknownScheduleReportsFailure(t *testing.T) {
	model := &scriptedModel{
		outcome: "Sorry, I couldn't find a schedule called Dentist.",
		extract: func([]completion.Message) string {
			return `[{"intent": "delete_schedule", "schedule_identifier": "Dentist"}]`
		},
	}
	svc, _, owner := newTurnService(model)

	result, err := svc.Turn(context.Background(), owner, TurnInput{Prompt: "Delete my Dentist appointment"})
	require.NoError(t, err)
	assert.Contains(t, result.Response, "Dentist")
}

func TestTurn_NoIntentFallsThroughToConversation(t *testing.T) {
	model := &scriptedModel{converse: "Hello! How can I help with your schedule today?"}
	svc, _, owner := newTurnService(model)

	result, err := svc.Turn(context.Background(), owner, TurnInput{Prompt: "hi there"})
	require.NoError(t, err)
	assert.Equal(t, "Hello! How can I help with your schedule today?", result.Response)
	assert.NotEmpty(t, result.ChatID)
}

func TestTurn_VoiceModeWrapsReply(t *testing.T) {
	model := &scriptedModel{converse: "Hello there!"}
	svc, _, owner := newTurnService(model)

	result, err := svc.Turn(context.Background(), owner, TurnInput{Prompt: "hi", Mode: chats.ModeVoice})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Response, "<speak"))
	assert.True(t, strings.HasSuffix(result.Response, "</speak>"))
}

func TestTurn_UnknownChatID(t *testing.T) {
	svc, _, owner := newTurnService(&scriptedModel{converse: "hi"})

	_, err := svc.Turn(context.Background(), owner, TurnInput{
		ChatID: uuid.New().String(),
		Prompt: "hello",
	})
	assert.Error(t, err)
}

func TestTurn_MultiActionBatch(t *testing.T) {
	model := &scriptedModel{
		outcome: "Done.",
		extract: func([]completion.Message) string {
			return `[
				{"intent": "add_schedule", "title": "gym", "start_time": "2026-09-02 07:00:00"},
				{"intent": "add_schedule", "title": "standup", "start_time": "2026-09-02 09:30:00"}
			]`
		},
	}
	svc, scheduleRepo, owner := newTurnService(model)

	_, err := svc.Turn(context.Background(), owner, TurnInput{Prompt: "yes, both"})
	require.NoError(t, err)

	recent, err := scheduleRepo.ListRecent(context.Background(), owner, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestTurn_PersonaSystemPrompt(t *testing.T) {
	assistantRepo := assistants.NewMemoryRepository()
	chatRepo := chats.NewMemoryRepository()
	owner := uuid.New()

	persona := &assistants.Assistant{
		ID:          uuid.New(),
		OwnerUserID: owner,
		Name:        "Remi",
		Voice:       "en-US-Standard-C",
		Language:    "English",
		Personality: "cheerful and concise",
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	require.NoError(t, assistantRepo.Create(context.Background(), persona))

	svc := NewService(chatRepo, schedules.NewMemoryRepository(), assistantRepo,
		(&scriptedModel{converse: "Hi, Remi here!"}).client(), nil)

	result, err := svc.Turn(context.Background(), owner.String(), TurnInput{
		AssistantID: persona.ID.String(),
		Prompt:      "hello",
	})
	require.NoError(t, err)

	session, err := chatRepo.GetByID(context.Background(), owner.String(), result.ChatID)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Contains(t, session.Messages[0].Content, "Remi")
	assert.Contains(t, session.Messages[0].Content, "cheerful")
}
