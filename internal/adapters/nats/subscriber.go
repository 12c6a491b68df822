package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/voyago/voyago/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeAssignments consumes committed plan assignments.
func (s *Subscriber) SubscribeAssignments(ctx context.Context, handler func(ctx context.Context, a *domain.PlanAssignment) error) error {
	return s.subscribe(ctx, SubjectAssigned, "assignment-archiver", handler)
}

// SubscribeSyncFailures consumes assignments whose remote sync failed.
func (s *Subscriber) SubscribeSyncFailures(ctx context.Context, handler func(ctx context.Context, a *domain.PlanAssignment) error) error {
	return s.subscribe(ctx, SubjectSyncFailed, "sync-failure-auditor", handler)
}

func (s *Subscriber) subscribe(ctx context.Context, subject, durable string, handler func(ctx context.Context, a *domain.PlanAssignment) error) error {
	sub, err := s.js.Subscribe(subject, func(msg *nats.Msg) {
		var a domain.PlanAssignment
		if err := json.Unmarshal(msg.Data, &a); err != nil {
			_ = msg.Nak()
			return
		}
		if err := handler(ctx, &a); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(durable),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
