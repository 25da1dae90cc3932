package completion

import (
	"context"
	"sync"
)

// Fake is a scripted Client for tests. Responses are returned in order;
// once exhausted it keeps returning the last one. A ReplyFunc, when set,
// takes precedence over the scripted responses.
type Fake struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	ReplyFunc func(messages []Message) (string, error)
	Calls     [][]Message
	idx       int
}

func (f *Fake) Complete(_ context.Context, messages []Message, _ Options) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	copied := make([]Message, len(messages))
	copy(copied, messages)
	f.Calls = append(f.Calls, copied)

	if f.Err != nil {
		return "", f.Err
	}
	if f.ReplyFunc != nil {
		return f.ReplyFunc(messages)
	}
	if len(f.Responses) == 0 {
		return "", nil
	}
	resp := f.Responses[f.idx]
	if f.idx < len(f.Responses)-1 {
		f.idx++
	}
	return resp, nil
}
