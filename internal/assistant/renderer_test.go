package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CommanderOutpost/remindria/internal/chats"
	"github.com/CommanderOutpost/remindria/internal/completion"
)

func TestRenderReply_TextModePassesThrough(t *testing.T) {
	r := NewRenderer(&completion.Fake{Responses: []string{"should not be used"}})

	got := r.RenderReply(context.Background(), "Your dentist visit is at 9am.", chats.ModeText)
	assert.Equal(t, "Your dentist visit is at 9am.", got)
}

func TestRenderReply_VoiceModeSpeakRoot(t *testing.T) {
	r := NewRenderer(&completion.Fake{
		Responses: []string{"<speak>Your dentist visit is at <emphasis>9am</emphasis>.</speak>"},
	})

	got := r.RenderReply(context.Background(), "Your dentist visit is at 9am.", chats.ModeVoice)
	assert.True(t, strings.HasPrefix(got, "<speak"))
	assert.True(t, strings.HasSuffix(got, "</speak>"))
}

func TestRenderReply_VoiceModeWrapsUnmarkedOutput(t *testing.T) {
	r := NewRenderer(&completion.Fake{Responses: []string{"Your dentist visit is at 9am."}})

	got := r.RenderReply(context.Background(), "Your dentist visit is at 9am.", chats.ModeVoice)
	assert.Equal(t, "<speak>Your dentist visit is at 9am.</speak>", got)
}

func TestRenderReply_VoiceModeCompletionFailure(t *testing.T) {
	r := NewRenderer(&completion.Fake{Err: errors.New("down")})

	got := r.RenderReply(context.Background(), "Your dentist visit is at 9am.", chats.ModeVoice)
	assert.Equal(t, "<speak>Your dentist visit is at 9am.</speak>", got)
}

func TestRenderOutcome_Success(t *testing.T) {
	fake := &completion.Fake{Responses: []string{"All set! I added call mom for tomorrow at 5pm."}}
	r := NewRenderer(fake)

	out := Outcome{Kind: ActionAdd, Success: true, Details: `created "call mom"`}
	got := r.RenderOutcome(context.Background(), out, chats.ModeText)
	assert.Contains(t, got, "call mom")

	// The prompt must carry the kind, the result, and the tone.
	prompt := fake.Calls[0][0].Content
	assert.Contains(t, prompt, "add_schedule")
	assert.Contains(t, prompt, "true")
	assert.Contains(t, prompt, "upbeat")
}

func TestRenderOutcome_FailureTone(t *testing.T) {
	fake := &completion.Fake{Responses: []string{"Sorry, I couldn't find that one."}}
	r := NewRenderer(fake)

	out := Outcome{Kind: ActionDelete, Success: false, Details: `no schedule named "Dentist" found`}
	r.RenderOutcome(context.Background(), out, chats.ModeText)

	prompt := fake.Calls[0][0].Content
	assert.Contains(t, prompt, "apologetic")
}

func TestRenderOutcome_CompletionFailureFallsBack(t *testing.T) {
	r := NewRenderer(&completion.Fake{Err: errors.New("down")})

	out := Outcome{Kind: ActionAdd, Success: true, Details: `created "gym"`}
	got := r.RenderOutcome(context.Background(), out, chats.ModeText)
	assert.Contains(t, got, "gym")
	assert.NotEmpty(t, got)
}

func TestRenderOutcome_VoiceFallbackIsSSML(t *testing.T) {
	r := NewRenderer(&completion.Fake{Err: errors.New("down")})

	out := Outcome{Kind: ActionDelete, Success: false, Details: "not found"}
	got := r.RenderOutcome(context.Background(), out, chats.ModeVoice)
	assert.True(t, strings.HasPrefix(got, "<speak>"))
	assert.True(t, strings.HasSuffix(got, "</speak>"))
}
