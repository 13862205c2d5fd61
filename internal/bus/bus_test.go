package bus

import "testing"

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := New[int](4)
	a := b.Subscribe()
	c := b.Subscribe()

	b.Publish(42)

	if got := <-a; got != 42 {
		t.Fatalf("subscriber a got %d", got)
	}
	if got := <-c; got != 42 {
		t.Fatalf("subscriber c got %d", got)
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := New[int](2)
	ch := b.Subscribe()

	for i := 0; i < 5; i++ {
		b.Publish(i) // must never block
	}

	_, dropped := b.Stats()
	if dropped != 3 {
		t.Fatalf("expected 3 drops, got %d", dropped)
	}
	if got := <-ch; got != 0 {
		t.Fatalf("expected oldest value 0, got %d", got)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := New[int](1)
	ch := b.Subscribe()
	b.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel after unsubscribe")
	}
	b.Publish(1) // no subscribers left, still safe
}

func TestCloseClosesSubscribersAndStopsPublish(t *testing.T) {
	b := New[int](1)
	ch := b.Subscribe()
	b.Close()

	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel after Close")
	}
	b.Publish(7) // no-op
	b.Close()    // idempotent

	if sub := b.Subscribe(); sub == nil {
		t.Fatal("Subscribe after Close should return a closed channel, not nil")
	} else if _, ok := <-sub; ok {
		t.Fatal("expected closed channel from post-Close Subscribe")
	}
}
