package alert

import (
	"errors"
	"testing"
	"time"

	"github.com/madhava-cloud/gateway/internal/domain"
)

// stalledSubscriber blocks in Send until release is closed.
type stalledSubscriber struct {
	entered chan struct{}
	release chan struct{}
}

func (s *stalledSubscriber) Send(domain.Alert) error {
	close(s.entered)
	<-s.release
	return nil
}

func TestHub_BroadcastReachesAllSubscribers(t *testing.T) {
	hub := NewHub()
	a := &mockSubscriber{}
	b := &mockSubscriber{}
	hub.Subscribe(a)
	hub.Subscribe(b)

	hub.Broadcast(testAlert("a1"))

	if a.count() != 1 || b.count() != 1 {
		t.Fatalf("delivery counts = %d/%d, want 1/1", a.count(), b.count())
	}
}

func TestHub_DeadSubscriberIsPruned(t *testing.T) {
	hub := NewHub()
	dead := &mockSubscriber{err: errors.New("connection closed")}
	live := &mockSubscriber{}
	hub.Subscribe(dead)
	hub.Subscribe(live)

	hub.Broadcast(testAlert("a1"))
	if hub.Count() != 1 {
		t.Fatalf("subscribers = %d after prune, want 1", hub.Count())
	}

	hub.Broadcast(testAlert("a2"))
	if live.count() != 2 {
		t.Fatalf("live subscriber received %d, want 2", live.count())
	}
}

func TestHub_SlowSubscriberDoesNotBlockSubscribe(t *testing.T) {
	hub := NewHub()
	stalled := &stalledSubscriber{entered: make(chan struct{}), release: make(chan struct{})}
	hub.Subscribe(stalled)

	broadcastDone := make(chan struct{})
	go func() {
		hub.Broadcast(testAlert("a1"))
		close(broadcastDone)
	}()
	<-stalled.entered

	// The hub must stay usable while a delivery is in flight.
	ready := make(chan struct{})
	go func() {
		late := &mockSubscriber{}
		hub.Subscribe(late)
		hub.Unsubscribe(late)
		close(ready)
	}()

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("Subscribe blocked behind a stalled broadcast")
	}

	close(stalled.release)
	<-broadcastDone
	hub.Unsubscribe(stalled)
}

func TestHub_UnsubscribeTwiceIsSafe(t *testing.T) {
	hub := NewHub()
	s := &mockSubscriber{}
	hub.Subscribe(s)
	hub.Unsubscribe(s)
	hub.Unsubscribe(s)

	if hub.Count() != 0 {
		t.Fatalf("subscribers = %d, want 0", hub.Count())
	}

	hub.Broadcast(domain.Alert{ID: "a1"})
	if s.count() != 0 {
		t.Fatal("unsubscribed subscriber still received alerts")
	}
}
