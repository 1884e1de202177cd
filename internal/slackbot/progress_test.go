package slackbot

import (
	"context"
	"errors"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/require"
)

type fakeReactions struct {
	added     []slack.ItemRef
	removed   []slack.ItemRef
	addErr    error
	removeErr error
}

func (f *fakeReactions) AddReaction(name string, item slack.ItemRef) error {
	f.added = append(f.added, item)
	return f.addErr
}

func (f *fakeReactions) RemoveReaction(name string, item slack.ItemRef) error {
	f.removed = append(f.removed, item)
	return f.removeErr
}

func TestProgressMarker_AttachAndDetachOnSuccess(t *testing.T) {
	reactions := &fakeReactions{}
	marker := NewProgressMarker(reactions, "eyes", nil)

	err := marker.Run(context.Background(), "C1", "100.1", func(ctx context.Context) error {
		require.Len(t, reactions.added, 1, "marker must be attached before the body runs")
		require.Empty(t, reactions.removed)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, reactions.added, 1)
	require.Len(t, reactions.removed, 1)
	require.Equal(t, reactions.added[0], reactions.removed[0])
}

func TestProgressMarker_DetachesOnBodyFailure(t *testing.T) {
	reactions := &fakeReactions{}
	marker := NewProgressMarker(reactions, "eyes", nil)

	bodyErr := errors.New("generation failed")
	err := marker.Run(context.Background(), "C1", "100.1", func(ctx context.Context) error {
		return bodyErr
	})
	require.ErrorIs(t, err, bodyErr)

	require.Len(t, reactions.added, 1)
	require.Len(t, reactions.removed, 1, "marker must be cleared on every exit path")
}

func TestProgressMarker_MarkerFailuresDoNotMaskResult(t *testing.T) {
	reactions := &fakeReactions{
		addErr:    errors.New("restricted_action"),
		removeErr: errors.New("message_not_found"),
	}
	marker := NewProgressMarker(reactions, "eyes", nil)

	err := marker.Run(context.Background(), "C1", "100.1", func(ctx context.Context) error {
		return nil
	})
	require.NoError(t, err, "marker failures are logged, never propagated")
}

func TestProgressMarker_IdempotentDetach(t *testing.T) {
	reactions := &fakeReactions{removeErr: errors.New("no_reaction")}
	marker := NewProgressMarker(reactions, "eyes", nil)

	err := marker.Run(context.Background(), "C1", "100.1", func(ctx context.Context) error {
		return nil
	})
	require.NoError(t, err)
	require.Len(t, reactions.removed, 1)
}
