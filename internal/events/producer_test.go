package events

import (
	"context"
	"testing"
	"time"
)

func TestProducer_NilIsSafe(t *testing.T) {
	var p *Producer
	p.Start(context.Background())
	p.Publish(EventPOCreated, "po-1", POCreatedPayload{PurchaseOrderID: "po-1"})
	p.WaitClosed()
}

func TestProducer_NoBrokersReturnsNil(t *testing.T) {
	if p := NewProducer(nil, "topic", "svc", 4); p != nil {
		t.Fatal("expected nil producer without brokers")
	}
}

func TestProducer_PublishAfterShutdownDropsWithoutPanic(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:9"}, "topic", "svc", 4)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	cancel()
	p.WaitClosed()

	// The drain loop has exited: the event must be dropped, never sent on
	// the inbox of a stopped producer.
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Publish(EventPOApproved, "po-1", PODecisionPayload{PurchaseOrderID: "po-1"})
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked after shutdown")
	}
}

func TestProducer_WaitClosedReturnsAfterCancel(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:9"}, "topic", "svc", 4)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.WaitClosed()
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("WaitClosed did not return after context cancellation")
	}
}
