package slackbot

import (
	"context"
	"log"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/helpdeskhq/threadbot/internal/answer"
	"github.com/helpdeskhq/threadbot/internal/history"
	"github.com/helpdeskhq/threadbot/internal/retrieval"
)

var slackTracer = otel.Tracer("threadbot/slackbot")

// InboundEvent is one question-bearing message extracted from the event
// stream. ThreadTimestamp falls back to Timestamp when the message is not
// already in a thread, so the reply starts a thread rooted at the message.
type InboundEvent struct {
	Channel         string
	UserID          string
	Text            string
	Timestamp       string
	ThreadTimestamp string
	Segments        []Segment
}

// Reply is the answer to post back, threaded under the originating message.
type Reply struct {
	Channel         string
	ThreadTimestamp string
	Text            string
}

// Processor runs the answering sequence for one inbound event: mark the
// message, normalize the question, bind the thread's memory, answer, clear
// the marker.
type Processor struct {
	store    history.Store
	provider *retrieval.Provider
	pipeline *answer.Pipeline
	progress *ProgressMarker
	maxTurns int
	logger   *log.Logger
}

// NewProcessor wires the orchestrator to its collaborators.
func NewProcessor(store history.Store, provider *retrieval.Provider, pipeline *answer.Pipeline, progress *ProgressMarker, maxTurns int, logger *log.Logger) *Processor {
	if logger == nil {
		logger = log.New(os.Stdout, "slack-bot ", log.LstdFlags)
	}
	return &Processor{
		store:    store,
		provider: provider,
		pipeline: pipeline,
		progress: progress,
		maxTurns: maxTurns,
		logger:   logger,
	}
}

// Process answers one inbound event. A nil reply with nil error means the
// event carried no question. On failure no reply is returned and the thread
// stays unanswered; the progress marker is cleared either way.
func (p *Processor) Process(ctx context.Context, ev *InboundEvent) (*Reply, error) {
	if ev == nil {
		return nil, nil
	}

	threadTS := ev.ThreadTimestamp
	if threadTS == "" {
		threadTS = ev.Timestamp
	}

	ctx, span := slackTracer.Start(ctx, "slackbot.process")
	defer span.End()
	span.SetAttributes(
		attribute.String("slack.channel", ev.Channel),
		attribute.String("slack.thread_ts", threadTS),
	)

	start := time.Now()
	hadError := false
	defer func() {
		recordInvocation(ctx, ev.Channel, time.Since(start), hadError)
	}()

	var answerText string
	err := p.progress.Run(ctx, ev.Channel, ev.Timestamp, func(ctx context.Context) error {
		question := Normalize(ev.Text, ev.Segments)
		if question == "" {
			return nil
		}
		span.SetAttributes(attribute.Int("slack.question.length", len(question)))

		mem := history.Bind(p.store, threadTS, p.maxTurns)

		handle, err := p.provider.Get(ctx)
		if err != nil {
			return err
		}

		text, err := p.pipeline.Answer(ctx, question, mem, handle)
		if err != nil {
			return err
		}
		answerText = text
		return nil
	})
	if err != nil {
		hadError = true
		span.RecordError(err)
		span.SetStatus(codes.Error, "answer failed")
		p.logger.Printf("event=answer status=error channel=%s thread_ts=%s err=%v", ev.Channel, threadTS, err)
		return nil, err
	}
	if answerText == "" {
		return nil, nil
	}

	return &Reply{Channel: ev.Channel, ThreadTimestamp: threadTS, Text: answerText}, nil
}
