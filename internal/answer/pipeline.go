package answer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/helpdeskhq/threadbot/internal/history"
	"github.com/helpdeskhq/threadbot/internal/llm"
	"github.com/helpdeskhq/threadbot/internal/retrieval"
)

// ErrGenerationFailed indicates the model call failed or returned an
// unusable response. No history is recorded when generation fails.
var ErrGenerationFailed = errors.New("answer generation failed")

const ragInstruction = "The reference material below was retrieved from the team's " +
	"document index because it is relevant to the question. Base your answer on " +
	"this material rather than general knowledge. If the material does not cover " +
	"the question, say so."

// Generator produces a completion for an ordered conversation.
type Generator interface {
	Complete(ctx context.Context, messages []llm.ChatMessage) (string, error)
}

// Memory is the bound view of one thread's history.
type Memory interface {
	Read(ctx context.Context) ([]history.Turn, error)
	Append(ctx context.Context, turn history.Turn) error
}

// Pipeline composes retrieval, prior turns, and the model into a single
// question-in, answer-out operation.
type Pipeline struct {
	gen         Generator
	contextSize int
	logger      *log.Logger
}

// NewPipeline constructs an answering pipeline
func NewPipeline(gen Generator, contextSize int, logger *log.Logger) *Pipeline {
	if contextSize <= 0 {
		contextSize = 5
	}
	if logger == nil {
		logger = log.New(os.Stdout, "answer ", log.LstdFlags)
	}
	return &Pipeline{gen: gen, contextSize: contextSize, logger: logger}
}

// Answer retrieves context for question, generates a reply conditioned on
// the thread's prior turns, and appends the completed turn to mem. The turn
// is appended only after the model call succeeds.
func (p *Pipeline) Answer(ctx context.Context, question string, mem Memory, ret retrieval.Searcher) (string, error) {
	turns, err := mem.Read(ctx)
	if err != nil {
		return "", fmt.Errorf("load thread history: %w", err)
	}

	chunks, err := ret.Search(ctx, question, p.contextSize)
	if err != nil {
		return "", fmt.Errorf("retrieve context: %w", err)
	}

	messages := buildMessages(turns, chunks, question)

	start := time.Now()
	text, err := p.gen.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: model returned an empty response", ErrGenerationFailed)
	}
	p.logger.Printf("event=generation status=ok chunks=%d turns=%d elapsed=%v", len(chunks), len(turns), time.Since(start))

	if err := mem.Append(ctx, history.Turn{Question: question, Answer: text, CreatedAt: time.Now()}); err != nil {
		return "", fmt.Errorf("record turn: %w", err)
	}

	return text, nil
}

// buildMessages serializes prior turns in thread order followed by the
// current question with its retrieved context. Chunk order is preserved as
// returned by retrieval, most relevant first.
func buildMessages(turns []history.Turn, chunks []retrieval.Chunk, question string) []llm.ChatMessage {
	messages := make([]llm.ChatMessage, 0, len(turns)*2+1)
	for _, turn := range turns {
		messages = append(messages,
			llm.ChatMessage{Role: "user", Content: turn.Question},
			llm.ChatMessage{Role: "assistant", Content: turn.Answer},
		)
	}

	if len(chunks) == 0 {
		messages = append(messages, llm.ChatMessage{Role: "user", Content: question})
		return messages
	}

	var sb strings.Builder
	sb.WriteString(ragInstruction)
	sb.WriteString("\n\nReference material:\n")
	for _, chunk := range chunks {
		sb.WriteString("\n---\n")
		if chunk.Title != "" {
			sb.WriteString(chunk.Title)
			sb.WriteString("\n")
		}
		sb.WriteString(chunk.Content)
		sb.WriteString("\n")
	}
	sb.WriteString("\nQuestion: ")
	sb.WriteString(question)

	messages = append(messages, llm.ChatMessage{Role: "user", Content: sb.String()})
	return messages
}
