package slackbot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
	"golang.org/x/sync/errgroup"
)

// SocketBot receives Slack events over Socket Mode and routes
// question-bearing messages to the Processor.
type SocketBot struct {
	client                 *slack.Client
	sm                     *socketmode.Client
	processor              *Processor
	logger                 *log.Logger
	botUserID              string
	replyToChannelMessages bool
	rate                   *RateLimiter
}

// NewSocketBot constructs a Socket Mode bot. The slack client must be built
// with slack.OptionAppLevelToken.
func NewSocketBot(client *slack.Client, processor *Processor, logger *log.Logger) (*SocketBot, error) {
	if client == nil {
		return nil, fmt.Errorf("nil slack client")
	}
	if logger == nil {
		logger = log.New(os.Stdout, "slack-bot ", log.LstdFlags)
	}

	auth, err := client.AuthTest()
	if err != nil {
		return nil, err
	}

	return &SocketBot{
		client:    client,
		sm:        socketmode.New(client),
		processor: processor,
		logger:    logger,
		botUserID: auth.UserID,
	}, nil
}

// Option setters
func (b *SocketBot) SetRateLimiter(rl *RateLimiter)   { b.rate = rl }
func (b *SocketBot) SetReplyToChannelMessages(v bool) { b.replyToChannelMessages = v }

// Start runs the websocket connection and the event loop until ctx is done.
func (b *SocketBot) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := b.sm.RunContext(ctx); err != nil && ctx.Err() == nil {
			return fmt.Errorf("socketmode run: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev := <-b.sm.Events:
				b.handleEvent(ctx, ev)
			}
		}
	})
	return g.Wait()
}

func (b *SocketBot) handleEvent(ctx context.Context, ev socketmode.Event) {
	switch ev.Type {
	case socketmode.EventTypeConnecting, socketmode.EventTypeConnected:
		// connection lifecycle, nothing to do
	case socketmode.EventTypeInvalidAuth:
		b.logger.Printf("invalid_auth: verify SLACK_APP_TOKEN and SLACK_BOT_TOKEN")
	case socketmode.EventTypeConnectionError:
		b.logger.Printf("connection_error: %v", ev.Data)
	case socketmode.EventTypeIncomingError:
		b.logger.Printf("incoming_error: %v", ev.Data)
	case socketmode.EventTypeEventsAPI:
		// Ack first to avoid redelivery
		if ev.Request != nil {
			b.sm.Ack(*ev.Request)
		}
		payload, ok := ev.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		if payload.Type != slackevents.CallbackEvent {
			return
		}
		switch data := payload.InnerEvent.Data.(type) {
		case *slackevents.AppMentionEvent:
			b.dispatch(ctx, newInboundEvent(data.Channel, data.User, data.Text, data.TimeStamp, data.ThreadTimeStamp))
		case *slackevents.MessageEvent:
			if data.SubType != "" || data.BotID != "" {
				return
			}
			// Mentions arrive again as app_mention; answer them once there.
			if ContainsMention(b.botUserID, data.Text) {
				return
			}
			if !b.shouldAnswerMessage(data.Channel) {
				return
			}
			b.dispatch(ctx, newInboundEvent(data.Channel, data.User, data.Text, data.TimeStamp, data.ThreadTimeStamp))
		}
	}
}

// newInboundEvent extracts routing fields, defaulting the thread timestamp
// to the message's own timestamp when the message is not in a thread.
func newInboundEvent(channel, user, text, ts, threadTS string) *InboundEvent {
	if threadTS == "" {
		threadTS = ts
	}
	return &InboundEvent{
		Channel:         channel,
		UserID:          user,
		Text:            text,
		Timestamp:       ts,
		ThreadTimestamp: threadTS,
		Segments:        ParseSegments(text),
	}
}

// shouldAnswerMessage reports whether a plain (non-mention) message in the
// given channel should be answered. DMs always qualify.
func (b *SocketBot) shouldAnswerMessage(channel string) bool {
	if strings.HasPrefix(channel, "D") {
		return true
	}
	return b.replyToChannelMessages
}

func (b *SocketBot) dispatch(ctx context.Context, ev *InboundEvent) {
	if ev == nil || ev.UserID == b.botUserID {
		return
	}
	if b.rate != nil && !b.rate.Allow(ev.UserID, ev.Channel) {
		b.logger.Printf("rate_limit_exceeded user=%s channel=%s", ev.UserID, ev.Channel)
		return
	}

	reply, err := b.processor.Process(ctx, ev)
	if err != nil || reply == nil {
		return
	}

	_, _, err = b.client.PostMessageContext(ctx, reply.Channel,
		slack.MsgOptionText(reply.Text, false),
		slack.MsgOptionTS(reply.ThreadTimestamp),
	)
	if err != nil {
		b.logger.Printf("event=post_message status=error channel=%s err=%v", reply.Channel, err)
		return
	}
	// stay under Slack's posting limits
	time.Sleep(50 * time.Millisecond)
}
