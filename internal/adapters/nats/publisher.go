package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/voyago/voyago/internal/core/domain"
)

// Subject layout. Focus changes are ephemeral UI events and go over
// core NATS; plan assignments and sync failures are durable JetStream
// subjects consumed by the archiver.
const (
	subjectFocusPrefix = "trip.focus."
	SubjectAssigned    = "trip.plan.assigned"
	SubjectSyncFailed  = "trip.plan.sync_failed"
)

// FocusSubject returns the subject carrying focus changes for one session.
func FocusSubject(sessionID string) string {
	return subjectFocusPrefix + sessionID
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the plan streams exist.
func NewPublisher(url string) (*Publisher, error) {
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

	streams := []nats.StreamConfig{
		{
			Name:      "TRIP_PLAN",
			Subjects:  []string{SubjectAssigned},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "TRIP_SYNC_FAILURES",
			Subjects:  []string{SubjectSyncFailed},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update instead.
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishFocusChange broadcasts a focus instruction for the map
// collaborator of one session.
func (p *Publisher) PublishFocusChange(ctx context.Context, fc *domain.FocusChange) error {
	data, err := json.Marshal(fc)
	if err != nil {
		return err
	}
	return p.conn.Publish(subjectFocusPrefix+fc.SessionID, data)
}

// PublishAssignment records a committed plan assignment.
func (p *Publisher) PublishAssignment(ctx context.Context, a *domain.PlanAssignment) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectAssigned, data)
	return err
}

// PublishSyncFailure flags an assignment whose remote sync failed, so
// local and remote state are known to diverge.
func (p *Publisher) PublishSyncFailure(ctx context.Context, a *domain.PlanAssignment) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SubjectSyncFailed, data)
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
