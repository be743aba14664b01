// Package events publishes domain events after the state change they
// describe has been committed.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event types emitted by the services.
const (
	JobCreated          = "job.created"
	JobAssigned         = "job.assigned"
	JobStarted          = "job.started"
	JobCompleted        = "job.completed"
	JobCancelled        = "job.cancelled"
	ApplicationCreated  = "application.created"
	LedgerRecorded      = "ledger.recorded"
	WithdrawalRequested = "withdrawal.requested"
)

// Event is the wire envelope. Key is the aggregate id and becomes the Kafka
// message key, so events of one aggregate stay ordered.
type Event struct {
	Type       string      `json:"type"`
	Key        string      `json:"key"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

// New stamps an event with the current time.
func New(typ, key string, payload interface{}) Event {
	return Event{Type: typ, Key: key, OccurredAt: time.Now().UTC(), Payload: payload}
}

// Publisher delivers events. Delivery failures are reported to the caller,
// which only logs them: the triggering state change is already committed.
type Publisher interface {
	Publish(ctx context.Context, evts ...Event) error
	Close() error
}

// LogPublisher writes events to the zap logger. Used when no broker is configured.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log.Named("events")}
}

func (p *LogPublisher) Publish(_ context.Context, evts ...Event) error {
	for _, e := range evts {
		payload, err := json.Marshal(e.Payload)
		if err != nil {
			return err
		}
		p.log.Info("domain event",
			zap.String("type", e.Type),
			zap.String("key", e.Key),
			zap.Time("occurredAt", e.OccurredAt),
			zap.ByteString("payload", payload),
		)
	}
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// Recorder keeps published events in memory. Tests use it to assert emissions.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Publish(_ context.Context, evts ...Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evts...)
	return nil
}

// Events returns a snapshot of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types returns the published event types in order.
func (r *Recorder) Types() []string {
	var out []string
	for _, e := range r.Events() {
		out = append(out, e.Type)
	}
	return out
}

func (r *Recorder) Close() error { return nil }
