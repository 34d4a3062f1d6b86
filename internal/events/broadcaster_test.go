package events

import (
	"fmt"
	"testing"

	"github.com/hxabcd/sms-code-sync/internal/domain"
)

func TestPublish_FanOut(t *testing.T) {
	b := NewBroadcaster()

	l1 := b.Subscribe()
	l2 := b.Subscribe()
	l3 := b.Subscribe()

	records := []domain.CodeRecord{
		{Code: "111111", Profile: "bank"},
		{Code: "222222", Profile: "bank"},
		{Code: "333333", Profile: "bank"},
	}
	for _, rec := range records {
		b.Publish(rec)
	}

	for i, l := range []*Listener{l1, l2, l3} {
		for j, want := range records {
			got := <-l.C()
			if got.Code != want.Code {
				t.Errorf("listener %d event %d: Code = %q, want %q (order must match publish order)",
					i, j, got.Code, want.Code)
			}
		}
	}
}

func TestPublish_DropsFullListener(t *testing.T) {
	b := NewBroadcaster()

	slow := b.Subscribe()
	fast := b.Subscribe()

	// Fill the slow listener's queue to capacity without draining it.
	for i := 0; i < queueSize; i++ {
		b.Publish(domain.CodeRecord{Code: fmt.Sprintf("%06d", i)})
		<-fast.C()
	}
	if b.Len() != 2 {
		t.Fatalf("Len() = %d before overflow, want 2", b.Len())
	}

	// The next publish overflows the slow listener's queue; it is dropped.
	b.Publish(domain.CodeRecord{Code: "overflow"})
	if b.Len() != 1 {
		t.Errorf("Len() = %d after overflow, want 1 (slow listener dropped)", b.Len())
	}

	if got := <-fast.C(); got.Code != "overflow" {
		t.Errorf("fast listener Code = %q, want %q", got.Code, "overflow")
	}

	// The dropped listener's channel is closed after its backlog drains.
	for i := 0; i < queueSize; i++ {
		<-slow.C()
	}
	if _, open := <-slow.C(); open {
		t.Error("dropped listener's channel should be closed")
	}
}

func TestUnsubscribe_Idempotent(t *testing.T) {
	b := NewBroadcaster()

	l := b.Subscribe()
	b.Unsubscribe(l)
	if b.Len() != 0 {
		t.Errorf("Len() = %d after Unsubscribe, want 0", b.Len())
	}

	// Second unsubscribe is a no-op; must not panic on double close.
	b.Unsubscribe(l)
}

func TestUnsubscribe_AfterDrop(t *testing.T) {
	b := NewBroadcaster()

	l := b.Subscribe()
	for i := 0; i <= queueSize; i++ {
		b.Publish(domain.CodeRecord{Code: fmt.Sprintf("%06d", i)})
	}
	if b.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 (listener dropped on overflow)", b.Len())
	}

	// The handler's deferred unsubscribe still runs after an overflow drop.
	b.Unsubscribe(l)
}

func TestPublish_NoListeners(t *testing.T) {
	b := NewBroadcaster()
	b.Publish(domain.CodeRecord{Code: "123456"})
}
