// Package natstrace publishes a trace event for every HTTP exchange of a
// restfully session on a NATS subject.
package natstrace

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fivetwenty-io/restfully/pkg/restfully"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// DefaultSubject is used when no subject is configured.
const DefaultSubject = "restfully.trace"

// Publisher is the part of *nats.Conn the tracer needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Event describes one exchange.
type Event struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id,omitempty"`
	Time       time.Time `json:"time"`
	Method     string    `json:"method"`
	URI        string    `json:"uri"`
	StatusCode int       `json:"status_code,omitempty"`
	Attempts   int       `json:"attempts"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
}

// Tracer publishes events.
type Tracer struct {
	publisher Publisher
	subject   string
	logger    restfully.Logger
}

// New creates a tracer publishing on subject.
func New(publisher Publisher, subject string, logger restfully.Logger) *Tracer {
	if subject == "" {
		subject = DefaultSubject
	}

	if logger == nil {
		logger = restfully.NopLogger{}
	}

	return &Tracer{publisher: publisher, subject: subject, logger: logger}
}

// Connect dials a NATS server.
func Connect(url string, opts ...nats.Option) (*nats.Conn, error) {
	opts = append([]nats.Option{nats.Name("restfully-trace")}, opts...)

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	return conn, nil
}

// Subject returns the subject events are published on.
func (t *Tracer) Subject() string {
	return t.subject
}

// Publish sends ev.
func (t *Tracer) Publish(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding trace event: %w", err)
	}

	err = t.publisher.Publish(t.subject, data)
	if err != nil {
		return fmt.Errorf("publishing trace event on %s: %w", t.subject, err)
	}

	return nil
}

// ResponseInterceptor returns an interceptor publishing one event per
// exchange. Publishing failures are logged and never fail the exchange.
func (t *Tracer) ResponseInterceptor() restfully.ResponseInterceptor {
	return func(ctx context.Context, req *restfully.Request, resp *restfully.Response) error {
		ev := Event{
			ID:         uuid.NewString(),
			Time:       time.Now().UTC(),
			Method:     req.Method(),
			URI:        req.URI().String(),
			StatusCode: resp.StatusCode(),
			Attempts:   req.Attempts(),
			DurationMS: resp.Duration().Milliseconds(),
		}

		if id, ok := req.Metadata["request_id"].(string); ok {
			ev.RequestID = id
		}

		if resp.Err() != nil {
			ev.Error = resp.Err().Error()
		}

		err := t.Publish(ev)
		if err != nil {
			t.logger.Warn("Trace event dropped", map[string]interface{}{
				"subject": t.subject,
				"error":   err.Error(),
			})
		}

		return nil
	}
}
