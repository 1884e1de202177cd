package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/helpdeskhq/threadbot/internal/history"
	"github.com/helpdeskhq/threadbot/internal/llm"
	"github.com/helpdeskhq/threadbot/internal/retrieval"
)

type fakeMemory struct {
	turns     []history.Turn
	appendErr error
	readErr   error
}

func (m *fakeMemory) Read(ctx context.Context) ([]history.Turn, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.turns, nil
}

func (m *fakeMemory) Append(ctx context.Context, turn history.Turn) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.turns = append(m.turns, turn)
	return nil
}

type fakeSearcher struct {
	chunks []retrieval.Chunk
	err    error
}

func (s *fakeSearcher) Search(ctx context.Context, query string, size int) ([]retrieval.Chunk, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.chunks, nil
}

type fakeGenerator struct {
	response string
	err      error
	got      []llm.ChatMessage
}

func (g *fakeGenerator) Complete(ctx context.Context, messages []llm.ChatMessage) (string, error) {
	g.got = messages
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

func TestPipeline_AnswerAppendsTurn(t *testing.T) {
	gen := &fakeGenerator{response: "the refund window is 30 days"}
	mem := &fakeMemory{}
	pipeline := NewPipeline(gen, 5, nil)

	text, err := pipeline.Answer(context.Background(), "what is the refund policy?", mem, &fakeSearcher{})
	require.NoError(t, err)
	require.Equal(t, "the refund window is 30 days", text)

	require.Len(t, mem.turns, 1)
	require.Equal(t, "what is the refund policy?", mem.turns[0].Question)
	require.Equal(t, text, mem.turns[0].Answer)
	require.False(t, mem.turns[0].CreatedAt.IsZero())
}

func TestPipeline_MessageOrder(t *testing.T) {
	gen := &fakeGenerator{response: "ok"}
	mem := &fakeMemory{turns: []history.Turn{
		{Question: "first question", Answer: "first answer"},
		{Question: "second question", Answer: "second answer"},
	}}
	searcher := &fakeSearcher{chunks: []retrieval.Chunk{
		{Title: "Doc A", Content: "most relevant", Score: 2.0},
		{Title: "Doc B", Content: "less relevant", Score: 1.0},
	}}
	pipeline := NewPipeline(gen, 5, nil)

	_, err := pipeline.Answer(context.Background(), "third question", mem, searcher)
	require.NoError(t, err)

	require.Len(t, gen.got, 5, "two prior turns plus the current question")
	require.Equal(t, "user", gen.got[0].Role)
	require.Equal(t, "first question", gen.got[0].Content)
	require.Equal(t, "assistant", gen.got[1].Role)
	require.Equal(t, "first answer", gen.got[1].Content)
	require.Equal(t, "second question", gen.got[2].Content)
	require.Equal(t, "second answer", gen.got[3].Content)

	last := gen.got[4]
	require.Equal(t, "user", last.Role)
	require.Contains(t, last.Content, "third question")
	require.Less(t,
		strings.Index(last.Content, "most relevant"),
		strings.Index(last.Content, "less relevant"),
		"chunk order must be preserved as returned by retrieval",
	)
}

func TestPipeline_NoAppendOnGenerationFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model timeout")}
	mem := &fakeMemory{turns: []history.Turn{{Question: "q", Answer: "a"}}}
	pipeline := NewPipeline(gen, 5, nil)

	_, err := pipeline.Answer(context.Background(), "question", mem, &fakeSearcher{})
	require.ErrorIs(t, err, ErrGenerationFailed)
	require.Len(t, mem.turns, 1, "history must not change when the model call fails")
}

func TestPipeline_EmptyResponseFailsGeneration(t *testing.T) {
	gen := &fakeGenerator{response: "   "}
	mem := &fakeMemory{}
	pipeline := NewPipeline(gen, 5, nil)

	_, err := pipeline.Answer(context.Background(), "question", mem, &fakeSearcher{})
	require.ErrorIs(t, err, ErrGenerationFailed)
	require.Empty(t, mem.turns)
}

func TestPipeline_PropagatesCollaboratorErrors(t *testing.T) {
	t.Run("history unavailable", func(t *testing.T) {
		mem := &fakeMemory{readErr: history.ErrUnavailable}
		pipeline := NewPipeline(&fakeGenerator{response: "ok"}, 5, nil)

		_, err := pipeline.Answer(context.Background(), "question", mem, &fakeSearcher{})
		require.ErrorIs(t, err, history.ErrUnavailable)
	})

	t.Run("retrieval unavailable", func(t *testing.T) {
		searcher := &fakeSearcher{err: retrieval.ErrUnavailable}
		pipeline := NewPipeline(&fakeGenerator{response: "ok"}, 5, nil)

		_, err := pipeline.Answer(context.Background(), "question", &fakeMemory{}, searcher)
		require.ErrorIs(t, err, retrieval.ErrUnavailable)
	})

	t.Run("append failure aborts the reply", func(t *testing.T) {
		mem := &fakeMemory{appendErr: history.ErrUnavailable}
		pipeline := NewPipeline(&fakeGenerator{response: "ok"}, 5, nil)

		_, err := pipeline.Answer(context.Background(), "question", mem, &fakeSearcher{})
		require.ErrorIs(t, err, history.ErrUnavailable)
	})
}
