package progress

import (
	"testing"
	"time"
)

func recv(t *testing.T, ch <-chan Snapshot) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		if !ok {
			t.Fatal("channel closed unexpectedly")
		}
		return snap
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
		return Snapshot{}
	}
}

func TestSubscribe_InitialSnapshotIsEmpty(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	ch, cancel := b.Subscribe()
	defer cancel()

	snap := recv(t, ch)
	if snap.Progress != nil || snap.IsSearching {
		t.Errorf("initial snapshot = %+v, want empty", snap)
	}
}

func TestSubscribe_LateSubscriberGetsLatestEvent(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	b.SetSearching(true)
	b.Publish(Event{Type: EventSearching, FirmName: "sequoia"})
	b.Publish(Event{Type: EventFound, FirmName: "sequoia", Inserted: 4, Skipped: 1})

	// Connecting mid-run must immediately yield the most recent event,
	// not a blank state.
	ch, cancel := b.Subscribe()
	defer cancel()

	snap := recv(t, ch)
	if !snap.IsSearching {
		t.Error("late subscriber should see isSearching=true")
	}
	if snap.Progress == nil || snap.Progress.Type != EventFound || snap.Progress.Inserted != 4 {
		t.Errorf("late subscriber snapshot = %+v, want the found event", snap.Progress)
	}
}

func TestPublish_FansOutToAllSubscribers(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	ch1, cancel1 := b.Subscribe()
	defer cancel1()
	ch2, cancel2 := b.Subscribe()
	defer cancel2()
	recv(t, ch1)
	recv(t, ch2)

	b.Publish(Event{Type: EventSummary, TotalInserted: 9})

	for i, ch := range []<-chan Snapshot{ch1, ch2} {
		snap := recv(t, ch)
		if snap.Progress == nil || snap.Progress.TotalInserted != 9 {
			t.Errorf("subscriber %d got %+v, want summary event", i+1, snap.Progress)
		}
	}
}

func TestPublish_DropsSlowSubscriberWithoutBlocking(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	slow, _ := b.Subscribe()
	live, cancelLive := b.Subscribe()
	defer cancelLive()
	recv(t, live)

	// Never drain slow: once its buffer fills, the broadcaster must prune
	// it instead of blocking the publisher.
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer+8; i++ {
			b.Publish(Event{Type: EventSearching, FirmName: "sequoia"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}

	// The slow channel ends up closed.
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-slow:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("slow subscriber channel was never closed")
		}
	}
}

func TestCancel_RemovesSubscriber(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	ch, cancel := b.Subscribe()
	recv(t, ch)
	cancel()

	if _, ok := <-ch; ok {
		t.Error("cancelled subscriber channel should be closed")
	}
	// A second cancel is harmless.
	cancel()

	b.Publish(Event{Type: EventSummary})
	if got := b.Snapshot(); got.Progress == nil {
		t.Error("publishing after cancel should still update the snapshot")
	}
}

func TestSnapshot_SurvivesSubscriberChurn(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	ch, cancel := b.Subscribe()
	recv(t, ch)
	b.Publish(Event{Type: EventFound, FirmName: "accel", Inserted: 2})
	cancel()

	snap := b.Snapshot()
	if snap.Progress == nil || snap.Progress.FirmName != "accel" {
		t.Errorf("snapshot = %+v, want the found event to survive disconnects", snap.Progress)
	}
}

func TestClose_ClosesAllSubscribers(t *testing.T) {
	b := NewBroadcaster()
	ch, _ := b.Subscribe()
	recv(t, ch)

	b.Close()
	if _, ok := <-ch; ok {
		t.Error("subscriber channel should be closed after Close")
	}

	// Subscribing after Close yields a closed channel, not a hang.
	late, _ := b.Subscribe()
	if _, ok := <-late; ok {
		t.Error("subscription after Close should be closed immediately")
	}
}
