package streaming

import (
	"sync"
	"testing"

	"tidepool/internal/model"
)

func TestBusDeliversInOrder(t *testing.T) {
	b := NewBus()
	var got []string
	sub := b.Subscribe(func(e model.Event) {
		switch ev := e.(type) {
		case model.UpdateEvent:
			got = append(got, "u:"+ev.Status.ID)
		case model.DeleteEvent:
			got = append(got, "d:"+ev.TargetID)
		}
	})
	defer sub.Unsubscribe()

	b.Publish(model.UpdateEvent{Status: model.Status{ID: "1"}})
	b.Publish(model.DeleteEvent{TargetID: "1"})
	b.Publish(model.UpdateEvent{Status: model.Status{ID: "2"}})

	want := []string{"u:1", "d:1", "u:2"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("delivery order %v, want %v", got, want)
		}
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBus()
	delivered := 0
	sub := b.Subscribe(func(model.Event) { delivered++ })

	b.Publish(model.DeleteEvent{TargetID: "x"})
	sub.Unsubscribe()
	b.Publish(model.DeleteEvent{TargetID: "y"})

	if delivered != 1 {
		t.Fatalf("delivered %d events, want 1", delivered)
	}
	// Idempotent.
	sub.Unsubscribe()
}

func TestUnsubscribeIsSynchronous(t *testing.T) {
	b := NewBus()
	var mu sync.Mutex
	active := true
	sub := b.Subscribe(func(model.Event) {
		mu.Lock()
		if !active {
			t.Error("delivery after Unsubscribe returned")
		}
		mu.Unlock()
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			b.Publish(model.DeleteEvent{TargetID: "x"})
		}
	}()

	sub.Unsubscribe()
	mu.Lock()
	active = false
	mu.Unlock()
	wg.Wait()
}
