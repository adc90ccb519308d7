package kafka

import (
	"context"
	"testing"
	"time"
)

// unreachable is a broker address nothing listens on.
var unreachable = []string{"127.0.0.1:1"}

func TestPublishCancelledContext(t *testing.T) {
	p := NewPublisher(unreachable)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- p.Publish(ctx, "transaction_completed", "alice", map[string]string{"kind": "deposit"}) }()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("Publish with a cancelled context should fail")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Publish did not return on a cancelled context")
	}
}

func TestPublishUnencodableEvent(t *testing.T) {
	p := NewPublisher(unreachable)
	defer p.Close()

	if err := p.Publish(context.Background(), "transaction_completed", "alice", make(chan int)); err == nil {
		t.Fatal("Publish of a channel should fail to encode")
	}
}
