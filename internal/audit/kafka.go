package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"labfhir/pkg/platform/circuit"
)

// DefaultTopic is the audit event stream topic.
const DefaultTopic = "labfhir.audit.events"

// ErrSinkDegraded reports that the sink's circuit is open and the event was
// dropped from the stream. The store copy is unaffected.
var ErrSinkDegraded = errors.New("audit sink degraded, event dropped")

// When the circuit is open, one event in probeInterval is still attempted so
// the breaker can observe recovery and close.
const probeInterval = 16

// KafkaSink publishes audit events to a Kafka topic. The Postgres store is
// the source of truth for reads; the stream is a best-effort mirror for
// downstream consumers, so delivery failures open a circuit and shed load
// instead of backing up the pipeline.
type KafkaSink struct {
	client  *kgo.Client
	topic   string
	breaker *circuit.Breaker
	logger  *slog.Logger
	probes  atomic.Uint64
}

// KafkaSinkOption configures a KafkaSink.
type KafkaSinkOption func(*KafkaSink)

// WithKafkaLogger attaches a structured logger.
func WithKafkaLogger(logger *slog.Logger) KafkaSinkOption {
	return func(s *KafkaSink) {
		s.logger = logger
	}
}

// WithBreaker overrides the default circuit breaker.
func WithBreaker(b *circuit.Breaker) KafkaSinkOption {
	return func(s *KafkaSink) {
		s.breaker = b
	}
}

// NewKafkaSink connects a producer to the given brokers. Pass topic "" to
// use DefaultTopic.
func NewKafkaSink(brokers []string, topic string, opts ...KafkaSinkOption) (*KafkaSink, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one kafka broker is required")
	}
	if topic == "" {
		topic = DefaultTopic
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RecordDeliveryTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	s := &KafkaSink{
		client:  client,
		topic:   topic,
		breaker: circuit.New("audit-kafka"),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// EnsureTopic creates the audit topic when it does not exist yet. Call once
// at startup; an already-existing topic is not an error.
func (s *KafkaSink) EnsureTopic(ctx context.Context, partitions int32, replicas int16) error {
	adm := kadm.NewClient(s.client)
	if _, err := adm.CreateTopic(ctx, partitions, replicas, nil, s.topic); err != nil {
		if errors.Is(err, kerr.TopicAlreadyExists) {
			return nil
		}
		return fmt.Errorf("create audit topic %q: %w", s.topic, err)
	}
	return nil
}

// kafkaPayload is the JSON structure published to the stream.
type kafkaPayload struct {
	ID        string `json:"ID"`
	Timestamp string `json:"Timestamp"`
	Action    string `json:"Action"`
	ReportID  string `json:"ReportID,omitempty"`
	SubjectID string `json:"SubjectID,omitempty"`
	Actor     string `json:"Actor,omitempty"`
	Outcome   string `json:"Outcome,omitempty"`
	Detail    string `json:"Detail,omitempty"`
	RequestID string `json:"RequestID,omitempty"`
	ClientIP  string `json:"ClientIP,omitempty"`
	Client    string `json:"Client,omitempty"`
}

// Publish produces one event to the topic and waits for the ack.
func (s *KafkaSink) Publish(ctx context.Context, event Event) error {
	if s.breaker.IsOpen() && s.probes.Add(1)%probeInterval != 0 {
		return ErrSinkDegraded
	}

	payload := kafkaPayload{
		ID:        event.ID.String(),
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		Action:    string(event.Action),
		Actor:     event.Actor,
		Outcome:   event.Outcome,
		Detail:    event.Detail,
		RequestID: event.RequestID,
		ClientIP:  event.ClientIP,
		Client:    event.Client,
	}
	if !event.ReportID.IsNil() {
		payload.ReportID = event.ReportID.String()
	}
	if !event.SubjectID.IsNil() {
		payload.SubjectID = event.SubjectID.String()
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	// Keyed by report so one report's events stay ordered within a partition.
	key := payload.ReportID
	if key == "" {
		key = payload.ID
	}

	record := &kgo.Record{Key: []byte(key), Value: value, Topic: s.topic}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		if _, change := s.breaker.RecordFailure(); change.Opened {
			s.logger.Warn("audit kafka circuit opened", "topic", s.topic, "error", err)
		}
		return fmt.Errorf("produce audit event: %w", err)
	}

	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.Info("audit kafka circuit closed", "topic", s.topic)
	}
	return nil
}

// Close releases the underlying Kafka client.
func (s *KafkaSink) Close() {
	s.client.Close()
}
