package history

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable indicates the durable history store could not be reached.
// The orchestrator aborts the reply instead of degrading to an empty history.
var ErrUnavailable = errors.New("history store unavailable")

// Turn is one question/answer exchange in a thread. Immutable once appended.
type Turn struct {
	Question  string
	Answer    string
	CreatedAt time.Time
}

// Store persists per-thread conversation history. Read returns turns in
// arrival order; Append adds a turn at the end. Turns are never rewritten.
type Store interface {
	Read(ctx context.Context, threadID string) ([]Turn, error)
	Append(ctx context.Context, threadID string, turn Turn) error
}

// Memory is a bounded view of one thread's history bound to a Store.
type Memory struct {
	store    Store
	threadID string
	maxTurns int
}

// Bind scopes the store to a single thread. The thread is created implicitly
// on first append; binding an unknown thread yields an empty history.
func Bind(store Store, threadID string, maxTurns int) *Memory {
	if maxTurns <= 0 {
		maxTurns = 20
	}
	return &Memory{store: store, threadID: threadID, maxTurns: maxTurns}
}

// ThreadID returns the bound thread identifier.
func (m *Memory) ThreadID() string { return m.threadID }

// Read returns the most recent turns for the thread, capped at the
// configured bound, preserving arrival order.
func (m *Memory) Read(ctx context.Context) ([]Turn, error) {
	turns, err := m.store.Read(ctx, m.threadID)
	if err != nil {
		return nil, err
	}
	if len(turns) > m.maxTurns {
		turns = turns[len(turns)-m.maxTurns:]
	}
	return turns, nil
}

// Append records a completed turn at the end of the thread's history.
func (m *Memory) Append(ctx context.Context, turn Turn) error {
	return m.store.Append(ctx, m.threadID, turn)
}
