package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/netellus-advisor/internal/domain/lead"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/netellus-advisor/pkg/errors"
)

// TopicLeadCaptured carries one event per saved lead, keyed by docId.
const TopicLeadCaptured = "lead.captured"

const (
	headerEventType = "event_type"
	headerEventID   = "event_id"
)

// EventEnvelope is the JSON body of every event this service emits.
type EventEnvelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	Source     string          `json:"source"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEventEnvelope marshals payload into a fresh envelope.
func NewEventEnvelope(eventType, source string, payload interface{}) (*EventEnvelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "marshal event payload")
	}
	return &EventEnvelope{
		EventID:    uuid.New().String(),
		EventType:  eventType,
		Source:     source,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}

// ToMessage renders the envelope as a message on topic with the given key.
func (e *EventEnvelope) ToMessage(topic string, key string) (*ProducerMessage, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "marshal event envelope")
	}
	return &ProducerMessage{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Headers: map[string]string{
			headerEventType: e.EventType,
			headerEventID:   e.EventID,
		},
		Timestamp: e.OccurredAt,
	}, nil
}

// MessageToEventEnvelope decodes a consumed message body.
func MessageToEventEnvelope(msg *Message) (*EventEnvelope, error) {
	var env EventEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "decode event envelope").
			WithDetail("topic=" + msg.Topic)
	}
	if env.EventType == "" {
		return nil, errors.New(errors.ErrCodeSerialization, "event envelope has no type").
			WithDetail("topic=" + msg.Topic)
	}
	return &env, nil
}

// DecodePayload unmarshals the envelope payload into v.
func (e *EventEnvelope) DecodePayload(v interface{}) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "decode event payload").
			WithDetail("event_type=" + e.EventType)
	}
	return nil
}

// LeadCapturedPayload is the payload of a lead.captured event.
type LeadCapturedPayload struct {
	DocID     string    `json:"docId"`
	Industry  string    `json:"industry,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Publisher is the subset of Producer the event publisher needs.
type Publisher interface {
	Publish(ctx context.Context, msg *ProducerMessage) error
}

// LeadEventPublisher emits lead.captured events.
type LeadEventPublisher struct {
	publisher Publisher
	topic     string
	source    string
	logger    logging.Logger
}

// NewLeadEventPublisher returns a publisher that stamps events with source.
func NewLeadEventPublisher(p Publisher, source string, logger logging.Logger) *LeadEventPublisher {
	return &LeadEventPublisher{publisher: p, topic: TopicLeadCaptured, source: source, logger: logger}
}

// WithTopic overrides the destination topic.  The event type stays
// lead.captured.
func (p *LeadEventPublisher) WithTopic(topic string) *LeadEventPublisher {
	if topic != "" {
		p.topic = topic
	}
	return p
}

// PublishLeadCaptured announces l.  Failures come back as LEAD_004.
func (p *LeadEventPublisher) PublishLeadCaptured(ctx context.Context, l *lead.Lead) error {
	env, err := NewEventEnvelope(TopicLeadCaptured, p.source, LeadCapturedPayload{
		DocID:     l.DocID,
		Industry:  l.Fields[lead.FieldIndustry],
		CreatedAt: l.CreatedAt,
	})
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(p.topic, l.DocID)
	if err != nil {
		return err
	}
	if err := p.publisher.Publish(ctx, msg); err != nil {
		return errors.Wrap(err, errors.ErrCodeLeadPublish, "publish lead.captured").WithDetail("docId=" + l.DocID)
	}
	p.logger.Debug("lead event published", logging.String("doc_id", l.DocID), logging.String("event_id", env.EventID))
	return nil
}
