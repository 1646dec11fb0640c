// Package event publishes case lifecycle events to the message broker.
package event

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/shc-api/internal/model"
	"github.com/jwalitptl/shc-api/pkg/logger"
	"github.com/jwalitptl/shc-api/pkg/messaging"
	"github.com/jwalitptl/shc-api/pkg/metrics"
)

type EventType string

const (
	CaseCreated     EventType = "case.created"
	CaseDeleted     EventType = "case.deleted"
	ImportCompleted EventType = "import.completed"
)

// Types lists every published event type.
var Types = []EventType{CaseCreated, CaseDeleted, ImportCompleted}

// Channel returns the broker channel events of type t are published on.
func Channel(prefix string, t EventType) string {
	if prefix == "" {
		return string(t)
	}
	return prefix + "." + string(t)
}

// Event is the JSON body published on <prefix>.<type>.
type Event struct {
	Type       EventType `json:"type"`
	CaseID     uuid.UUID `json:"case_id,omitempty"`
	HazardCode string    `json:"hazard_code,omitempty"`
	Grade      int       `json:"grade,omitempty"`
	Imported   int       `json:"imported,omitempty"`
	Skipped    int       `json:"skipped,omitempty"`
	At         time.Time `json:"at"`
}

// CaseEvent builds the event for one case.
func CaseEvent(t EventType, c *model.ExaminationCase) Event {
	return Event{
		Type:       t,
		CaseID:     c.ID,
		HazardCode: c.HazardCode,
		Grade:      c.Grade,
		At:         time.Now().UTC(),
	}
}

// Publisher never fails the caller: delivery problems are logged.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

type BrokerPublisher struct {
	broker  messaging.Broker
	prefix  string
	metrics *metrics.Metrics
	log     *logger.Logger
}

func NewBrokerPublisher(broker messaging.Broker, prefix string, m *metrics.Metrics, log *logger.Logger) *BrokerPublisher {
	return &BrokerPublisher{
		broker:  broker,
		prefix:  prefix,
		metrics: m,
		log:     log.WithFields(map[string]interface{}{"component": "events"}),
	}
}

// Channel returns the channel an event type is published on.
func (p *BrokerPublisher) Channel(t EventType) string {
	return Channel(p.prefix, t)
}

func (p *BrokerPublisher) Publish(ctx context.Context, e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	if err := p.broker.Publish(ctx, p.Channel(e.Type), e); err != nil {
		p.metrics.EventsPublished.WithLabelValues(string(e.Type), "error").Inc()
		p.log.Error(err, "failed to publish event", "type", string(e.Type), "case_id", e.CaseID.String())
		return
	}
	p.metrics.EventsPublished.WithLabelValues(string(e.Type), "ok").Inc()
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}
