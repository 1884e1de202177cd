package slackbot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_RemovesAllMarkupTokens(t *testing.T) {
	text := "<@U123ABCXYZ9> <!everyone> <#C999|general> please help"
	segments := []Segment{
		{Type: SegmentUser, UserID: "U123ABCXYZ9"},
		{Type: SegmentBroadcast, Range: "everyone"},
		{Type: SegmentChannel, ChannelID: "C999"},
	}

	require.Equal(t, "please help", Normalize(text, segments))
}

func TestNormalize_SiblingOrderDoesNotMatter(t *testing.T) {
	text := "<@U1> hello <#C2|dev>"
	forward := []Segment{
		{Type: SegmentUser, UserID: "U1"},
		{Type: SegmentChannel, ChannelID: "C2"},
	}
	reversed := []Segment{forward[1], forward[0]}

	require.Equal(t, Normalize(text, forward), Normalize(text, reversed))
}

func TestNormalize_NestedElements(t *testing.T) {
	text := "<@U1> what about <#C2|general>?"
	segments := []Segment{
		{
			Type: SegmentText,
			Elements: []Segment{
				{Type: SegmentUser, UserID: "U1"},
				{Type: SegmentChannel, ChannelID: "C2"},
			},
		},
	}

	require.Equal(t, "what about ?", Normalize(text, segments))
}

func TestNormalize_MissingPayloadRemovesNothing(t *testing.T) {
	text := "<@U1> question"
	segments := []Segment{
		{Type: SegmentUser},      // no user id
		{Type: SegmentChannel},   // no channel id
		{Type: SegmentBroadcast}, // no range
	}

	require.Equal(t, "<@U1> question", Normalize(text, segments))
}

func TestNormalize_IdempotentWithoutSegments(t *testing.T) {
	for _, text := range []string{
		"plain question",
		"  padded question  ",
		"",
	} {
		once := Normalize(text, nil)
		assert.Equal(t, once, Normalize(once, nil))
	}
}

func TestNormalize_ChannelLabelRemovedWithID(t *testing.T) {
	segments := []Segment{{Type: SegmentChannel, ChannelID: "C999"}}

	assert.Equal(t, "see", Normalize("see <#C999|general>", segments))
	assert.Equal(t, "see", Normalize("see <#C999>", segments))
}

func TestNormalize_UnknownSegmentTypeIsIgnored(t *testing.T) {
	segments := []Segment{{Type: SegmentType("emoji")}}
	require.Equal(t, "question", Normalize(" question ", segments))
}

func TestParseSegments(t *testing.T) {
	segments := ParseSegments("<@BOT1> <!here> ask in <#C42|support> please")

	var users, channels, broadcasts int
	for _, seg := range segments {
		switch seg.Type {
		case SegmentUser:
			users++
			assert.Equal(t, "BOT1", seg.UserID)
		case SegmentChannel:
			channels++
			assert.Equal(t, "C42", seg.ChannelID)
		case SegmentBroadcast:
			broadcasts++
			assert.Equal(t, "here", seg.Range)
		}
	}
	require.Equal(t, 1, users)
	require.Equal(t, 1, channels)
	require.Equal(t, 1, broadcasts)
}

func TestParseSegments_PlainText(t *testing.T) {
	require.Empty(t, ParseSegments("no markup here"))
}

func TestContainsMention(t *testing.T) {
	assert.True(t, ContainsMention("U1", "<@U1> hi"))
	assert.False(t, ContainsMention("U1", "<@U2> hi"))
	assert.False(t, ContainsMention("", "<@U1> hi"))
}
