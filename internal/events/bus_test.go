package events

import (
	"testing"

	"dealdesk/pkg/types"
)

func TestBusDeliversToSubscribers(t *testing.T) {
	bus := NewBus()

	ch1, cancel1 := bus.Subscribe(1)
	defer cancel1()
	ch2, cancel2 := bus.Subscribe(1)
	defer cancel2()

	bus.Publish(ProgressChanged{UserID: "u1", Role: types.RoleSeller, StepID: 2, CurrentStep: 3})

	for i, ch := range []<-chan ProgressChanged{ch1, ch2} {
		select {
		case ev := <-ch:
			if ev.UserID != "u1" || ev.CurrentStep != 3 {
				t.Fatalf("subscriber %d got unexpected event: %+v", i, ev)
			}
		default:
			t.Fatalf("subscriber %d got no event", i)
		}
	}
}

func TestBusCancelStopsDelivery(t *testing.T) {
	bus := NewBus()

	ch, cancel := bus.Subscribe(1)
	cancel()

	// Channel is closed after cancel.
	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel after cancel")
	}

	// Publishing after cancel must not panic.
	bus.Publish(ProgressChanged{UserID: "u1"})

	// Double cancel is safe.
	cancel()
}

func TestBusDropsWhenBufferFull(t *testing.T) {
	bus := NewBus()

	ch, cancel := bus.Subscribe(1)
	defer cancel()

	bus.Publish(ProgressChanged{StepID: 1})
	bus.Publish(ProgressChanged{StepID: 2}) // dropped, buffer full

	ev := <-ch
	if ev.StepID != 1 {
		t.Fatalf("expected first event, got step %d", ev.StepID)
	}
	select {
	case ev := <-ch:
		t.Fatalf("expected second event dropped, got step %d", ev.StepID)
	default:
	}
}
