package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/CommanderOutpost/remindria/internal/chats"
	"github.com/CommanderOutpost/remindria/internal/completion"
	"github.com/CommanderOutpost/remindria/internal/metrics"
)

// trimThreshold is the number of non-system messages kept in the live window.
const trimThreshold = 8

const summarizePrompt = `Summarize the following conversation between a user and their schedule assistant. Keep every concrete fact: names, dates, times, schedule titles, and decisions the user made. Write a compact paragraph, no preamble.`

// MemoryManager owns the per-session message window and its rolling summary.
type MemoryManager struct {
	repo       chats.Repository
	completion completion.Client
	threshold  int
}

func NewMemoryManager(repo chats.Repository, client completion.Client) *MemoryManager {
	return &MemoryManager{repo: repo, completion: client, threshold: trimThreshold}
}

// Append adds a message to the live window and persists the session.
func (m *MemoryManager) Append(ctx context.Context, session *chats.ChatSession, msg chats.Message) error {
	session.Messages = append(session.Messages, msg)
	if err := m.repo.Save(ctx, session); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}
	return nil
}

// MaybeCompress summarizes older turns when the window grows past the
// threshold. System messages are never counted, trimmed, or summarized.
// A failed summarization leaves the window untouched.
func (m *MemoryManager) MaybeCompress(ctx context.Context, session *chats.ChatSession) {
	var system, rest []chats.Message
	for _, msg := range session.Messages {
		if msg.Role == chats.RoleSystem {
			system = append(system, msg)
		} else {
			rest = append(rest, msg)
		}
	}

	if len(rest) <= m.threshold {
		return
	}

	older := rest[:len(rest)-m.threshold]
	recent := rest[len(rest)-m.threshold:]

	summary, err := m.summarize(ctx, older)
	if err != nil || summary == "" {
		metrics.MemoryCompressionsTotal.With(prometheus.Labels{"status": "failed"}).Inc()
		slog.Warn("conversation compression skipped", "chat_id", session.ID, "error", err)
		return
	}

	if session.SummarySoFar != "" {
		session.SummarySoFar = session.SummarySoFar + "\n\n" + summary
	} else {
		session.SummarySoFar = summary
	}

	window := make([]chats.Message, 0, len(system)+len(recent))
	window = append(window, system...)
	window = append(window, recent...)
	session.Messages = window

	if err := m.repo.Save(ctx, session); err != nil {
		slog.Error("persisting compressed session", "chat_id", session.ID, "error", err)
		return
	}
	metrics.MemoryCompressionsTotal.With(prometheus.Labels{"status": "ok"}).Inc()
}

func (m *MemoryManager) summarize(ctx context.Context, older []chats.Message) (string, error) {
	var b strings.Builder
	for _, msg := range older {
		b.WriteString(msg.Role)
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}

	out, err := m.completion.Complete(ctx, []completion.Message{
		{Role: completion.RoleSystem, Content: summarizePrompt},
		{Role: completion.RoleUser, Content: b.String()},
	}, completion.Options{Temperature: 0.3})
	if err != nil {
		return "", fmt.Errorf("summarizing conversation: %w", err)
	}
	return strings.TrimSpace(out), nil
}
