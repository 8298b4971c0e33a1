// Package publish emits de-identified analysis summaries to Kafka so
// downstream population-level consumers can aggregate rule hit rates. The
// payload carries no readings, timestamps of events, or evidence detail.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/analyze"
	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/model"
)

// Summary is the wire payload. Only aggregate facts leave the process.
type Summary struct {
	ReportID    string           `json:"reportId"`
	GeneratedAt time.Time        `json:"generatedAt"`
	Device      model.DeviceType `json:"device"`
	Quality     string           `json:"quality"`
	SpanHours   float64          `json:"spanHours"`
	Findings    []FindingSummary `json:"findings"`
}

type FindingSummary struct {
	Rule     string         `json:"rule"`
	Severity model.Severity `json:"severity"`
	Count    int            `json:"count"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes summaries to a findings topic. A nil Publisher is valid
// and publishes nothing, covering deployments without Kafka.
type Publisher struct {
	w   messageWriter
	log *slog.Logger
}

// New returns nil when no brokers are configured.
func New(brokers []string, topic string, logger *slog.Logger) *Publisher {
	if len(brokers) == 0 {
		return nil
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	return &Publisher{w: w, log: logger.With(slog.String("component", "publisher"))}
}

// Publish sends the report's summary keyed by report ID.
func (p *Publisher) Publish(ctx context.Context, r analyze.Report) error {
	if p == nil {
		return nil
	}
	s := Summarize(r)
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode summary %s: %w", r.ID, err)
	}
	msg := kafka.Message{Key: []byte(r.ID), Value: raw}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish summary %s: %w", r.ID, err)
	}
	p.log.Info("summary published", "reportId", r.ID, "findings", len(s.Findings))
	return nil
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.w.Close()
}

// Summarize strips a report down to aggregate facts. Evidence, narratives
// and statistics never leave the process.
func Summarize(r analyze.Report) Summary {
	s := Summary{
		ReportID:    r.ID,
		GeneratedAt: r.GeneratedAt,
		Device:      r.Device,
		Quality:     string(r.Quality.Reliability),
		SpanHours:   r.Quality.SpanHours,
	}
	for _, f := range r.Findings {
		s.Findings = append(s.Findings, FindingSummary{
			Rule:     f.Rule,
			Severity: f.Severity,
			Count:    f.Count,
		})
	}
	return s
}
