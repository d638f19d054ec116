package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/DanisonEdiel/auth-login-signup-service/internal/core/domain"
	"github.com/DanisonEdiel/auth-login-signup-service/internal/infra/config"
)

type fakeAsyncProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *fakeAsyncProducer) AsyncClose() {}

func (f *fakeAsyncProducer) Close() error { return nil }

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *fakeAsyncProducer) IsTransactional() bool { return false }

func (f *fakeAsyncProducer) BeginTxn() error { return nil }

func (f *fakeAsyncProducer) CommitTxn() error { return nil }

func (f *fakeAsyncProducer) AbortTxn() error { return nil }

func (f *fakeAsyncProducer) AddOffsetsToTxn(offsets map[string][]*sarama.PartitionOffsetMetadata, groupID string) error {
	return nil
}

func (f *fakeAsyncProducer) AddMessageToTxn(msg *sarama.ConsumerMessage, groupID string, metadata *string) error {
	return nil
}

func (f *fakeAsyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnStatusFlag(0)
}

func newTestPublisher(t *testing.T) (*EventPublisher, *fakeAsyncProducer) {
	t.Helper()

	asyncProducer := newFakeAsyncProducer()
	producer := &Producer{
		producer: asyncProducer,
		logger:   zaptest.NewLogger(t),
		cfg: config.KafkaSettings{
			TopicPrefix: "auth",
		},
		errChan: make(chan error, 1),
		done:    make(chan struct{}),
	}

	publisher := NewEventPublisher(producer, config.AppSettings{
		Name: "auth-service",
		Env:  "test",
	}, zaptest.NewLogger(t))

	return publisher, asyncProducer
}

func TestPublishAccountRegistered(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	registeredAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	event := domain.AccountRegisteredEvent{
		EventID:      "event-123",
		AccountID:    "account-456",
		Email:        "a@x.com",
		Username:     "alice",
		RegisteredAt: registeredAt,
	}

	if err := publisher.PublishAccountRegistered(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "auth.account.registered" {
			t.Fatalf("unexpected topic %q", msg.Topic)
		}
		raw, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("encode message: %v", err)
		}
		var envelope struct {
			EventID   string            `json:"event_id"`
			EventType string            `json:"event_type"`
			AccountID string            `json:"account_id"`
			Version   string            `json:"version"`
			Metadata  map[string]string `json:"metadata"`
			Payload   struct {
				Email    string `json:"email"`
				Username string `json:"username"`
			} `json:"payload"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			t.Fatalf("unmarshal envelope: %v", err)
		}
		if envelope.EventID != "event-123" || envelope.AccountID != "account-456" {
			t.Fatalf("unexpected envelope identity: %+v", envelope)
		}
		if envelope.EventType != "auth.account.registered" || envelope.Version != "1.0" {
			t.Fatalf("unexpected envelope type/version: %+v", envelope)
		}
		if envelope.Metadata["service"] != "auth-service" || envelope.Metadata["environment"] != "test" {
			t.Fatalf("unexpected envelope metadata: %v", envelope.Metadata)
		}
		if envelope.Payload.Email != "a@x.com" || envelope.Payload.Username != "alice" {
			t.Fatalf("unexpected payload: %+v", envelope.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("no message produced")
	}
}

func TestPublishLoginSucceeded(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	at := time.Date(2025, 6, 2, 8, 30, 0, 0, time.UTC)
	event := domain.LoginSucceededEvent{
		AccountID: "account-456",
		Email:     "a@x.com",
		IP:        "203.0.113.7",
		At:        at,
	}

	if err := publisher.PublishLoginSucceeded(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "auth.login.succeeded" {
			t.Fatalf("unexpected topic %q", msg.Topic)
		}
		raw, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("encode message: %v", err)
		}
		var envelope struct {
			EventID string `json:"event_id"`
			Payload struct {
				IP string `json:"ip_address"`
			} `json:"payload"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			t.Fatalf("unmarshal envelope: %v", err)
		}
		// Empty event IDs are filled in at publish time.
		if envelope.EventID == "" {
			t.Fatal("expected generated event id")
		}
		if envelope.Payload.IP != "203.0.113.7" {
			t.Fatalf("unexpected payload ip %q", envelope.Payload.IP)
		}
	case <-time.After(time.Second):
		t.Fatal("no message produced")
	}
}

func TestPublishBlockedContextCancelled(t *testing.T) {
	publisher, asyncProducer := newTestPublisher(t)

	// Fill the input channel so the next publish blocks.
	asyncProducer.input <- &sarama.ProducerMessage{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := publisher.PublishLoginSucceeded(ctx, domain.LoginSucceededEvent{AccountID: "a"})
	if err == nil {
		t.Fatal("expected context error when producer input is full")
	}
}
