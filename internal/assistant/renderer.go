package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/CommanderOutpost/remindria/internal/chats"
	"github.com/CommanderOutpost/remindria/internal/completion"
)

const ssmlInstruction = `Respond with EXACTLY ONE well-formed SSML document: a single <speak> root element containing the utterance. Use <break> and <emphasis> sparingly where they help the delivery. No text outside the <speak> element.`

// Renderer turns outcomes and replies into user-facing text, plain or SSML
// depending on the session mode. Rendering never fails a turn: every error
// path degrades to plain text.
type Renderer struct {
	completion completion.Client
}

func NewRenderer(client completion.Client) *Renderer {
	return &Renderer{completion: client}
}

// RenderReply adapts a conversational reply to the session mode.
func (r *Renderer) RenderReply(ctx context.Context, reply, mode string) string {
	if mode != chats.ModeVoice {
		return reply
	}
	return r.toSSML(ctx, reply)
}

// RenderOutcome produces the user-facing message for one executed action.
func (r *Renderer) RenderOutcome(ctx context.Context, out Outcome, mode string) string {
	tone := "upbeat and brief"
	if !out.Success {
		tone = "apologetic but informative, and suggest what the user could try instead"
	}

	prompt := fmt.Sprintf(
		"A schedule action of kind %q was executed. Success: %t. Details: %s.\n"+
			"Tell the user what happened in one or two sentences. Be %s.",
		out.Kind, out.Success, out.Details, tone)
	if mode == chats.ModeVoice {
		prompt += "\n" + ssmlInstruction
	}

	text, err := r.completion.Complete(ctx, []completion.Message{
		{Role: completion.RoleSystem, Content: prompt},
	}, completion.Options{Temperature: 0.7})
	if err != nil || strings.TrimSpace(text) == "" {
		slog.Warn("outcome rendering fell back to details", "kind", out.Kind, "error", err)
		return r.fallback(out, mode)
	}

	if mode == chats.ModeVoice {
		return ensureSpeakRoot(text)
	}
	return strings.TrimSpace(text)
}

func (r *Renderer) toSSML(ctx context.Context, reply string) string {
	text, err := r.completion.Complete(ctx, []completion.Message{
		{Role: completion.RoleSystem, Content: ssmlInstruction},
		{Role: completion.RoleUser, Content: reply},
	}, completion.Options{Temperature: 0.5})
	if err != nil || strings.TrimSpace(text) == "" {
		return ensureSpeakRoot(reply)
	}
	return ensureSpeakRoot(text)
}

func (r *Renderer) fallback(out Outcome, mode string) string {
	var text string
	if out.Success {
		text = "Done! " + out.Details + "."
	} else {
		text = "Sorry, that didn't work: " + out.Details + "."
	}
	if mode == chats.ModeVoice {
		return ensureSpeakRoot(text)
	}
	return text
}

// ensureSpeakRoot keeps the single-root contract: output that is not already
// a <speak> document is wrapped as the raw utterance.
func ensureSpeakRoot(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "<speak") && strings.HasSuffix(trimmed, "</speak>") {
		return trimmed
	}
	return "<speak>" + trimmed + "</speak>"
}
