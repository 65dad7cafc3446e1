// Package publish delivers scan results to downstream consumers.
// Delivery is best effort: a failed Emit is reported to the caller and never retried.
package publish

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"time"
)

// Event types.
const (
	TypeScanResult = "scan_result"
)

// Sink receives typed events.
type Sink interface {
	Emit(ctx context.Context, typ string, v any) error
	Close() error
}

// Envelope is the wire form of one event.
type Envelope struct {
	Type string          `json:"type"` // e.g. "scan_result"
	TS   int64           `json:"ts"`   // unix milli
	Data json.RawMessage `json:"data"`
}

func newEnvelope(typ string, ts time.Time, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{
		Type: typ,
		TS:   ts.UnixMilli(),
		Data: data,
	})
}

// LogSink writes envelopes to a logger. Used when no broker is configured.
type LogSink struct {
	logger *log.Logger
	now    func() time.Time
}

// NewLogSink creates a LogSink. A nil logger discards output.
func NewLogSink(logger *log.Logger) *LogSink {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &LogSink{logger: logger, now: time.Now}
}

// Emit logs the envelope as one JSON line.
func (s *LogSink) Emit(_ context.Context, typ string, v any) error {
	b, err := newEnvelope(typ, s.now(), v)
	if err != nil {
		return err
	}
	s.logger.Printf("%s", b)
	return nil
}

// Close is a no-op.
func (s *LogSink) Close() error { return nil }

// Name implements Named.
func (s *LogSink) Name() string { return "log" }

// Named sinks report a label for metrics.
type Named interface {
	Name() string
}

// NameOf returns the sink label, or "unknown".
func NameOf(s Sink) string {
	if n, ok := s.(Named); ok {
		return n.Name()
	}
	return "unknown"
}

var (
	_ Sink = (*LogSink)(nil)
	_ Sink = (*KafkaSink)(nil)
)
