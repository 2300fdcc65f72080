package pipeline

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/autoscout/pkg/anthropic"
)

// mockAI scripts one response (or error) per call, in order.
type mockAI struct {
	responses []mockResponse
	calls     int
}

type mockResponse struct {
	text string
	err  error
}

func (m *mockAI) CreateMessage(_ context.Context, _ anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	if m.calls >= len(m.responses) {
		return nil, eris.New("mock: unscripted call")
	}
	r := m.responses[m.calls]
	m.calls++
	if r.err != nil {
		return nil, r.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: r.text}},
	}, nil
}

// failingAI errors on every call.
type failingAI struct{}

func (failingAI) CreateMessage(context.Context, anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	return nil, eris.New("capability unavailable")
}
