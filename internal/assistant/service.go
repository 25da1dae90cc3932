package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/CommanderOutpost/remindria/internal/api"
	"github.com/CommanderOutpost/remindria/internal/assistants"
	"github.com/CommanderOutpost/remindria/internal/chats"
	"github.com/CommanderOutpost/remindria/internal/completion"
	"github.com/CommanderOutpost/remindria/internal/events"
	"github.com/CommanderOutpost/remindria/internal/metrics"
	"github.com/CommanderOutpost/remindria/internal/schedules"
)

// knownScheduleWindow bounds how many schedules are embedded in the intent
// contract and the conversational context.
const knownScheduleWindow = 50

// Service runs one conversation turn end to end: memory, intent extraction,
// action execution, and rendering.
type Service struct {
	chats      chats.Repository
	schedules  schedules.Repository
	assistants assistants.Repository
	completion completion.Client

	memory    *MemoryManager
	extractor *IntentExtractor
	executor  *Executor
	renderer  *Renderer
}

func NewService(
	chatRepo chats.Repository,
	scheduleRepo schedules.Repository,
	assistantRepo assistants.Repository,
	client completion.Client,
	publisher *events.Publisher,
) *Service {
	return &Service{
		chats:      chatRepo,
		schedules:  scheduleRepo,
		assistants: assistantRepo,
		completion: client,
		memory:     NewMemoryManager(chatRepo, client),
		extractor:  NewIntentExtractor(client),
		executor:   NewExecutor(scheduleRepo, publisher),
		renderer:   NewRenderer(client),
	}
}

type TurnInput struct {
	ChatID      string
	AssistantID string
	Prompt      string
	Mode        string
}

type TurnResult struct {
	ChatID   string `json:"chat_id"`
	Title    string `json:"title"`
	Response string `json:"response"`
}

// Turn processes one user message and always produces a response.
func (s *Service) Turn(ctx context.Context, ownerID string, in TurnInput) (*TurnResult, error) {
	metrics.ChatTurnsTotal.Inc()

	session, created, err := s.loadOrCreateSession(ctx, ownerID, in)
	if err != nil {
		return nil, err
	}
	if created {
		session.Title = s.generateTitle(ctx, in.Prompt)
	}

	if err := s.memory.Append(ctx, session, chats.Message{
		Role:    chats.RoleUser,
		Content: in.Prompt,
	}); err != nil {
		return nil, err
	}

	known, err := s.schedules.ListRecent(ctx, ownerID, knownScheduleWindow)
	if err != nil {
		slog.Warn("loading schedules for intent context", "owner", ownerID, "error", err)
		known = nil
	}

	var response string
	if actions := s.extractor.Extract(ctx, session.Messages, known); actions != nil {
		response = s.runActions(ctx, ownerID, session, actions)
	} else {
		response = s.converse(ctx, session)
	}

	if err := s.memory.Append(ctx, session, chats.Message{
		Role:    chats.RoleAssistant,
		Content: response,
	}); err != nil {
		return nil, err
	}

	s.memory.MaybeCompress(ctx, session)

	return &TurnResult{
		ChatID:   session.ID.String(),
		Title:    session.Title,
		Response: response,
	}, nil
}

func (s *Service) runActions(ctx context.Context, ownerID string, session *chats.ChatSession, actions []Action) string {
	parts := make([]string, 0, len(actions))
	for _, action := range actions {
		out := s.executor.Execute(ctx, ownerID, action)
		parts = append(parts, s.renderer.RenderOutcome(ctx, out, session.Mode))
	}
	return strings.Join(parts, "\n\n")
}

// converse produces a normal reply when no schedule intent was detected.
func (s *Service) converse(ctx context.Context, session *chats.ChatSession) string {
	msgs := make([]completion.Message, 0, len(session.Messages)+1)
	for _, m := range session.Messages {
		msgs = append(msgs, completion.Message{Role: m.Role, Content: m.Content})
	}
	if session.SummarySoFar != "" {
		// Inject the rolling summary right behind the system prompt.
		summary := completion.Message{
			Role:    completion.RoleSystem,
			Content: "Summary of the conversation so far:\n" + session.SummarySoFar,
		}
		msgs = append(msgs[:1], append([]completion.Message{summary}, msgs[1:]...)...)
	}

	reply, err := s.completion.Complete(ctx, msgs, completion.Options{Temperature: 0.8})
	if err != nil || strings.TrimSpace(reply) == "" {
		slog.Warn("conversational completion failed", "chat_id", session.ID, "error", err)
		reply = "Sorry, I couldn't come up with a reply just now. Could you say that again?"
	}

	return s.renderer.RenderReply(ctx, strings.TrimSpace(reply), session.Mode)
}

func (s *Service) loadOrCreateSession(ctx context.Context, ownerID string, in TurnInput) (*chats.ChatSession, bool, error) {
	if in.ChatID != "" {
		session, err := s.chats.GetByID(ctx, ownerID, in.ChatID)
		if err != nil {
			return nil, false, err
		}
		if session == nil {
			return nil, false, api.ErrChatNotFound
		}
		return session, false, nil
	}

	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, false, api.NewBadRequestError("invalid owner id")
	}

	mode := in.Mode
	if mode != chats.ModeVoice {
		mode = chats.ModeText
	}

	var persona *assistants.Assistant
	var assistantID *uuid.UUID
	if in.AssistantID != "" {
		persona, err = s.assistants.GetByID(ctx, ownerID, in.AssistantID)
		if err != nil {
			return nil, false, err
		}
		if persona == nil {
			return nil, false, api.ErrAssistantNotFound
		}
		assistantID = &persona.ID
	}

	now := time.Now()
	upcoming, err := s.schedules.ListRange(ctx, ownerID, now.AddDate(0, 0, -30), now.AddDate(0, 0, 30))
	if err != nil {
		slog.Warn("loading schedules for system prompt", "owner", ownerID, "error", err)
		upcoming = nil
	}

	session := &chats.ChatSession{
		ID:          uuid.New(),
		OwnerUserID: owner,
		AssistantID: assistantID,
		Mode:        mode,
		Messages: []chats.Message{
			{Role: chats.RoleSystem, Content: buildSystemPrompt(persona, upcoming, now)},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.chats.Create(ctx, session); err != nil {
		return nil, false, fmt.Errorf("creating chat session: %w", err)
	}
	return session, true, nil
}

// generateTitle asks the completion service for a short chat title. Best
// effort: on failure the first words of the prompt serve instead.
func (s *Service) generateTitle(ctx context.Context, prompt string) string {
	title, err := s.completion.Complete(ctx, []completion.Message{
		{Role: completion.RoleSystem, Content: "Produce a title of at most five words for a conversation that starts with the following message. Respond with the title only, no quotes."},
		{Role: completion.RoleUser, Content: prompt},
	}, completion.Options{Temperature: 0.5, MaxTokens: 20})
	if err == nil {
		if title = strings.Trim(strings.TrimSpace(title), `"`); title != "" {
			return title
		}
	}

	words := strings.Fields(prompt)
	if len(words) > 5 {
		words = words[:5]
	}
	return strings.Join(words, " ")
}

func buildSystemPrompt(persona *assistants.Assistant, upcoming []*schedules.Schedule, now time.Time) string {
	var b strings.Builder
	if persona != nil {
		fmt.Fprintf(&b, "You are %s, a schedule assistant. Personality: %s. Respond in %s.\n",
			persona.Name, persona.Personality, persona.Language)
	} else {
		b.WriteString("You are a friendly schedule assistant.\n")
	}
	b.WriteString("You help the user create, change, and remove reminders through conversation. ")
	b.WriteString("When the user asks for a schedule change, restate the exact title and time and ask them to confirm before anything happens. ")
	b.WriteString("Never claim an action succeeded unless told so.\n")
	if len(upcoming) > 0 {
		b.WriteString("The user's schedules within thirty days of today:\n")
		b.WriteString(renderKnownSchedules(upcoming))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "The current datetime is %s.", now.Format(DateTimeFormat))
	return b.String()
}
