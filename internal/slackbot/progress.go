package slackbot

import (
	"context"
	"log"
	"os"

	"github.com/slack-go/slack"
)

// ReactionClient is the subset of slack.Client used for progress markers.
type ReactionClient interface {
	AddReaction(name string, item slack.ItemRef) error
	RemoveReaction(name string, item slack.ItemRef) error
}

// ProgressMarker attaches a reaction to the message being answered while the
// slow answer path runs, and removes it on every exit path. Marker failures
// are logged and never mask the body's result.
type ProgressMarker struct {
	client ReactionClient
	emoji  string
	logger *log.Logger
}

// NewProgressMarker constructs a ProgressMarker using the given emoji name.
func NewProgressMarker(client ReactionClient, emoji string, logger *log.Logger) *ProgressMarker {
	if emoji == "" {
		emoji = "hourglass_flowing_sand"
	}
	if logger == nil {
		logger = log.New(os.Stdout, "progress ", log.LstdFlags)
	}
	return &ProgressMarker{client: client, emoji: emoji, logger: logger}
}

// Run marks the message at (channel, timestamp), runs body, and clears the
// marker whether body succeeds or fails.
func (p *ProgressMarker) Run(ctx context.Context, channel, timestamp string, body func(ctx context.Context) error) error {
	item := slack.NewRefToMessage(channel, timestamp)

	if err := p.client.AddReaction(p.emoji, item); err != nil && !isAlreadyReacted(err) {
		p.logger.Printf("event=marker_attach status=error channel=%s ts=%s err=%v", channel, timestamp, err)
	}
	defer func() {
		if err := p.client.RemoveReaction(p.emoji, item); err != nil && !isNoReaction(err) {
			p.logger.Printf("event=marker_detach status=error channel=%s ts=%s err=%v", channel, timestamp, err)
		}
	}()

	return body(ctx)
}

// Slack returns API errors as bare strings; detaching an absent reaction and
// re-attaching an existing one are both no-ops, not failures.
func isAlreadyReacted(err error) bool { return err != nil && err.Error() == "already_reacted" }
func isNoReaction(err error) bool     { return err != nil && err.Error() == "no_reaction" }
