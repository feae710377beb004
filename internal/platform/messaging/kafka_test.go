package messaging

import (
	"context"
	"testing"
	"time"

	"quorum/contexts/governance/approval-engine/ports"
)

func TestPublishSubscribeRoundTrip(t *testing.T) {
	bus, err := NewKafka(nil, nil)
	if err != nil {
		t.Fatalf("new kafka failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan ports.EventEnvelope, 1)
	err = bus.Subscribe(ctx, "approval.session.approved", "test-cg", func(_ context.Context, event ports.EventEnvelope) error {
		received <- event
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	event := ports.EventEnvelope{
		EventID:    "event-1",
		EventType:  "approval.session.approved",
		OccurredAt: time.Now().UTC(),
	}
	if err := bus.Publish(ctx, "approval.session.approved", event); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case got := <-received:
		if got.EventID != "event-1" {
			t.Fatalf("unexpected event %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("event never delivered")
	}
}

func TestPublishWithoutSubscribersSucceeds(t *testing.T) {
	bus, err := NewKafka(nil, nil)
	if err != nil {
		t.Fatalf("new kafka failed: %v", err)
	}
	if err := bus.Publish(context.Background(), "approval.session.deferred", ports.EventEnvelope{EventID: "event-1"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
}
