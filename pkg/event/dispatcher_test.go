package event

import (
	"testing"
)

func groupMsg() *Event {
	return &Event{
		PostType:   PostMessage,
		DetailType: "group",
		SubType:    "normal",
		GroupID:    100,
		UserID:     55,
		Message:    "hello",
	}
}

func TestDispatchPrefixMatching(t *testing.T) {
	tests := []struct {
		name      string
		subscribe string
		want      int
	}{
		{"category", "message", 1},
		{"prefix", "message.group", 1},
		{"exact", "message.group.normal", 1},
		{"sibling subtype", "message.group.anonymous", 0},
		{"other category", "notice", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDispatcher(nil, nil)
			calls := 0
			d.On(tt.subscribe, func(*Event) { calls++ })
			d.Dispatch(groupMsg())
			if calls != tt.want {
				t.Errorf("handler fired %d times, want %d", calls, tt.want)
			}
		})
	}
}

func TestDispatchOrder(t *testing.T) {
	d := NewDispatcher(nil, nil)
	var order []string

	// Category observers fire before more specific ones; within one
	// name, registration order holds.
	d.On("message.group.normal", func(*Event) { order = append(order, "exact") })
	d.On("message", func(*Event) { order = append(order, "cat-1") })
	d.On("message", func(*Event) { order = append(order, "cat-2") })

	d.Dispatch(groupMsg())

	want := []string{"cat-1", "cat-2", "exact"}
	if len(order) != len(want) {
		t.Fatalf("fired %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("fired %v, want %v", order, want)
		}
	}
}

func TestOnceFiresOnce(t *testing.T) {
	d := NewDispatcher(nil, nil)
	calls := 0
	d.Once("message", func(*Event) { calls++ })

	d.Dispatch(groupMsg())
	d.Dispatch(groupMsg())

	if calls != 1 {
		t.Errorf("once handler fired %d times, want 1", calls)
	}
}

func TestOffRemovesOnlyThatRegistration(t *testing.T) {
	d := NewDispatcher(nil, nil)
	var a, b int
	subA := d.On("message", func(*Event) { a++ })
	d.On("message", func(*Event) { b++ })

	d.Off(subA)
	d.Dispatch(groupMsg())

	if a != 0 {
		t.Errorf("removed handler fired %d times", a)
	}
	if b != 1 {
		t.Errorf("surviving handler fired %d times, want 1", b)
	}

	// Double removal is a no-op.
	d.Off(subA)
	d.Dispatch(groupMsg())
	if b != 2 {
		t.Errorf("surviving handler fired %d times, want 2", b)
	}
}

func TestOffNameRemovesAll(t *testing.T) {
	d := NewDispatcher(nil, nil)
	calls := 0
	d.On("message", func(*Event) { calls++ })
	d.On("message", func(*Event) { calls++ })

	d.OffName("message")
	d.Dispatch(groupMsg())

	if calls != 0 {
		t.Errorf("handlers fired %d times after OffName", calls)
	}
}

func TestPanicReachesFaultSinkNotLaterHandlers(t *testing.T) {
	var faults []string
	d := NewDispatcher(nil, func(name string, _ any) {
		faults = append(faults, name)
	})

	later := 0
	d.On("message", func(*Event) { panic("observer bug") })
	d.On("message", func(*Event) { later++ })

	d.Dispatch(groupMsg())

	if len(faults) != 1 || faults[0] != "message.group.normal" {
		t.Errorf("faults = %v, want one for message.group.normal", faults)
	}
	if later != 1 {
		t.Errorf("later handler fired %d times, want 1", later)
	}
}

func TestEventName(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{Event{PostType: PostMessage, DetailType: "group", SubType: "normal"}, "message.group.normal"},
		{Event{PostType: PostSystem, DetailType: "online"}, "system.online"},
		{Event{PostType: PostNotice}, "notice"},
	}
	for _, tt := range tests {
		if got := tt.ev.Name(); got != tt.want {
			t.Errorf("Name() = %q, want %q", got, tt.want)
		}
	}
}
