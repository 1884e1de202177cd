package slackbot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInboundEvent_DefaultsThreadTimestamp(t *testing.T) {
	ev := newInboundEvent("C1", "U1", "hello", "100.1", "")
	require.Equal(t, "100.1", ev.ThreadTimestamp)

	threaded := newInboundEvent("C1", "U1", "hello", "101.2", "100.1")
	require.Equal(t, "100.1", threaded.ThreadTimestamp)
}

func TestNewInboundEvent_ExtractsSegments(t *testing.T) {
	ev := newInboundEvent("C1", "U1", "<@BOT1> help", "100.1", "")

	require.Len(t, ev.Segments, 1)
	assert.Equal(t, SegmentUser, ev.Segments[0].Type)
	assert.Equal(t, "BOT1", ev.Segments[0].UserID)
}
