package slackbot

import (
	"regexp"
	"strings"
)

// SegmentType tags one markup segment of an inbound message.
type SegmentType string

const (
	SegmentText      SegmentType = "text"
	SegmentUser      SegmentType = "user"
	SegmentChannel   SegmentType = "channel"
	SegmentBroadcast SegmentType = "broadcast"
)

// Segment is a structured markup annotation within a message: a mention,
// channel link, or broadcast marker, possibly with nested child elements.
type Segment struct {
	Type      SegmentType
	UserID    string
	ChannelID string
	// Broadcast scope: here, channel, or everyone
	Range    string
	Elements []Segment
}

// Normalize strips the markup tokens described by segments from text and
// trims surrounding whitespace. It is a pure fold: segments with missing
// payloads remove nothing, sibling order does not affect the result, and
// markup-free text passes through unchanged.
func Normalize(text string, segments []Segment) string {
	for _, seg := range segments {
		text = stripSegment(text, seg)
	}
	return strings.TrimSpace(text)
}

func stripSegment(text string, seg Segment) string {
	for _, el := range seg.Elements {
		text = stripSegment(text, el)
	}

	switch seg.Type {
	case SegmentBroadcast:
		if seg.Range == "" {
			return text
		}
		return strings.ReplaceAll(text, "<!"+seg.Range+">", "")
	case SegmentChannel:
		if seg.ChannelID == "" {
			return text
		}
		// A display label of bounded length may follow the channel id.
		re := regexp.MustCompile(`<#` + regexp.QuoteMeta(seg.ChannelID) + `(\|[^>]{0,120})?>`)
		return re.ReplaceAllString(text, "")
	case SegmentUser:
		if seg.UserID == "" {
			return text
		}
		return strings.ReplaceAll(text, "<@"+seg.UserID+">", "")
	default:
		return text
	}
}

var (
	userToken      = regexp.MustCompile(`<@([A-Z0-9]+)>`)
	channelToken   = regexp.MustCompile(`<#([A-Z0-9]+)(?:\|[^>]*)?>`)
	broadcastToken = regexp.MustCompile(`<!(here|channel|everyone)>`)
)

// ParseSegments derives markup segments from raw Slack message text for
// events that carry no structured block list.
func ParseSegments(text string) []Segment {
	var segments []Segment
	for _, m := range userToken.FindAllStringSubmatch(text, -1) {
		segments = append(segments, Segment{Type: SegmentUser, UserID: m[1]})
	}
	for _, m := range channelToken.FindAllStringSubmatch(text, -1) {
		segments = append(segments, Segment{Type: SegmentChannel, ChannelID: m[1]})
	}
	for _, m := range broadcastToken.FindAllStringSubmatch(text, -1) {
		segments = append(segments, Segment{Type: SegmentBroadcast, Range: m[1]})
	}
	return segments
}

// ContainsMention reports whether text mentions the given user id.
func ContainsMention(userID, text string) bool {
	if userID == "" {
		return false
	}
	return strings.Contains(text, "<@"+userID+">")
}
