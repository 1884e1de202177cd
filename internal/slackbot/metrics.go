package slackbot

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	metricsOnce      sync.Once
	requestCounter   metric.Int64Counter
	errorCounter     metric.Int64Counter
	latencyHistogram metric.Float64Histogram
)

func initMetrics() {
	metricsOnce.Do(func() {
		meter := otel.Meter("threadbot/slackbot")

		var err error
		requestCounter, err = meter.Int64Counter(
			"threadbot.slack.requests.total",
			metric.WithDescription("Total inbound questions handled"),
		)
		if err != nil {
			log.Printf("observability: failed to create request counter: %v", err)
		}

		errorCounter, err = meter.Int64Counter(
			"threadbot.slack.errors.total",
			metric.WithDescription("Total answering failures"),
		)
		if err != nil {
			log.Printf("observability: failed to create error counter: %v", err)
		}

		latencyHistogram, err = meter.Float64Histogram(
			"threadbot.slack.response_time",
			metric.WithDescription("Answering latency (ms)"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			log.Printf("observability: failed to create latency histogram: %v", err)
		}
	})
}

func recordInvocation(ctx context.Context, channel string, duration time.Duration, hadError bool) {
	initMetrics()
	attrs := metric.WithAttributes(attribute.String("slack.channel", channel))
	if requestCounter != nil {
		requestCounter.Add(ctx, 1, attrs)
	}
	if latencyHistogram != nil {
		latencyHistogram.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
	if hadError && errorCounter != nil {
		errorCounter.Add(ctx, 1, attrs)
	}
}
