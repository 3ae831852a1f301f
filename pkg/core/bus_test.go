package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestChangeBus_ReplaysLatest(t *testing.T) {
	bus := NewChangeBus(1)
	bus.Publish(2)

	sub := bus.Subscribe()
	defer sub.Cancel()

	if got := receive(t, sub.C); got != 2 {
		t.Errorf("replay = %d, want 2", got)
	}
	bus.Publish(3)
	if got := receive(t, sub.C); got != 3 {
		t.Errorf("next = %d, want 3", got)
	}
}

func TestChangeBus_Broadcast(t *testing.T) {
	bus := NewChangeBus(0)
	a := bus.Subscribe()
	b := bus.Subscribe()
	defer a.Cancel()
	defer b.Cancel()

	if a.ID == b.ID {
		t.Errorf("subscriptions share id %q", a.ID)
	}
	if bus.Len() != 2 {
		t.Errorf("Len() = %d, want 2", bus.Len())
	}

	for i := 1; i <= 3; i++ {
		bus.Publish(i)
	}

	for name, sub := range map[string]*Subscription[int]{"a": a, "b": b} {
		var got []int
		for i := 0; i < 4; i++ {
			got = append(got, receive(t, sub.C))
		}
		if diff := cmp.Diff([]int{0, 1, 2, 3}, got); diff != "" {
			t.Errorf("subscriber %s (-want +got):\n%s", name, diff)
		}
	}
}

func TestChangeBus_PublishDoesNotBlock(t *testing.T) {
	bus := NewChangeBus(0)
	sub := bus.Subscribe()
	defer sub.Cancel()

	// Nobody reads while publishing.
	for i := 1; i <= 1000; i++ {
		bus.Publish(i)
	}

	last := 0
	for i := 0; i < 1001; i++ {
		last = receive(t, sub.C)
	}
	if last != 1000 {
		t.Errorf("last value = %d, want 1000", last)
	}
}

func TestChangeBus_Cancel(t *testing.T) {
	bus := NewChangeBus(0)
	sub := bus.Subscribe()

	sub.Cancel()
	sub.Cancel()

	// Any buffered replay may be dropped; the channel must end up closed.
	for range sub.C {
	}
	if bus.Len() != 0 {
		t.Errorf("Len() = %d after Cancel, want 0", bus.Len())
	}
	bus.Publish(1)
}

func TestChangeBus_CloseDrainsThenCloses(t *testing.T) {
	bus := NewChangeBus(0)
	sub := bus.Subscribe()
	bus.Publish(1)

	bus.Close()
	bus.Close()

	var got []int
	for v := range sub.C {
		got = append(got, v)
	}
	if diff := cmp.Diff([]int{0, 1}, got); diff != "" {
		t.Errorf("delivered (-want +got):\n%s", diff)
	}
	if !bus.Closed() {
		t.Error("Closed() = false after Close")
	}
}

func TestChangeBus_SubscribeAfterClose(t *testing.T) {
	bus := NewChangeBus(0)
	bus.Close()

	sub := bus.Subscribe()
	expectClosed(t, sub.C)
	sub.Cancel()

	bus.Publish(1)
	if bus.Len() != 0 {
		t.Errorf("Len() = %d on closed bus, want 0", bus.Len())
	}
}
