package event

import (
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
)

// Handler receives one dispatched event. Handlers run synchronously on
// the session's inbound-processing path; a slow handler delays
// subsequent pushes.
type Handler func(*Event)

// FaultSink receives errors recovered from observer panics. The
// default sink logs through slog.
type FaultSink func(name string, recovered any)

// Subscription identifies one registration for deregistration.
type Subscription struct {
	name string
	id   uint64
}

type registration struct {
	id      uint64
	handler Handler
	once    bool
	fired   bool
}

// Dispatcher routes events to observers by name prefix. Registration
// order is preserved per name; across names, delivery walks the
// dot-path root-first ("message", then "message.group", then
// "message.group.normal").
type Dispatcher struct {
	mu       sync.Mutex
	handlers map[string][]*registration
	nextID   uint64

	logger *slog.Logger
	faults FaultSink
}

// NewDispatcher creates a dispatcher reporting observer faults to
// sink; a nil sink logs through logger (slog.Default() if nil too).
func NewDispatcher(logger *slog.Logger, sink FaultSink) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		l := logger
		sink = func(name string, recovered any) {
			l.Error("observer panic",
				"event", name,
				"panic", recovered,
				"stack", string(debug.Stack()))
		}
	}
	return &Dispatcher{
		handlers: make(map[string][]*registration),
		nextID:   1,
		logger:   logger,
		faults:   sink,
	}
}

// On registers a persistent observer for name (a category, prefix, or
// exact event name).
func (d *Dispatcher) On(name string, h Handler) Subscription {
	return d.register(name, h, false)
}

// Once registers a fire-once observer for name. It is removed after
// its first delivery.
func (d *Dispatcher) Once(name string, h Handler) Subscription {
	return d.register(name, h, true)
}

func (d *Dispatcher) register(name string, h Handler, once bool) Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextID
	d.nextID++
	d.handlers[name] = append(d.handlers[name], &registration{
		id:      id,
		handler: h,
		once:    once,
	})
	return Subscription{name: name, id: id}
}

// Off removes one registration. Removing an already-removed
// subscription is a no-op.
func (d *Dispatcher) Off(sub Subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.removeLocked(sub.name, sub.id)
}

// OffName removes every registration for the exact name.
func (d *Dispatcher) OffName(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.handlers, name)
}

func (d *Dispatcher) removeLocked(name string, id uint64) {
	regs := d.handlers[name]
	for i, r := range regs {
		if r.id == id {
			d.handlers[name] = append(regs[:i:i], regs[i+1:]...)
			break
		}
	}
	if len(d.handlers[name]) == 0 {
		delete(d.handlers, name)
	}
}

// Dispatch delivers ev to every observer registered for its category,
// any prefix of its name, and its exact name, in registration order
// within each name. A panicking observer is reported to the fault
// sink and does not block delivery to later observers.
func (d *Dispatcher) Dispatch(ev *Event) {
	name := ev.Name()

	// Snapshot matching handlers under the lock; fire-once
	// registrations are claimed here so a re-entrant Dispatch from a
	// handler cannot double-fire them.
	d.mu.Lock()
	var selected []Handler
	for _, prefix := range namePrefixes(name) {
		regs := d.handlers[prefix]
		for _, r := range regs {
			if r.once {
				if r.fired {
					continue
				}
				r.fired = true
				defer d.Off(Subscription{name: prefix, id: r.id})
			}
			selected = append(selected, r.handler)
		}
	}
	d.mu.Unlock()

	for _, h := range selected {
		d.call(name, h, ev)
	}
}

func (d *Dispatcher) call(name string, h Handler, ev *Event) {
	defer func() {
		if r := recover(); r != nil {
			d.faults(name, r)
		}
	}()
	h(ev)
}

// namePrefixes expands "a.b.c" to ["a", "a.b", "a.b.c"].
func namePrefixes(name string) []string {
	parts := strings.Split(name, ".")
	out := make([]string, len(parts))
	for i := range parts {
		out[i] = strings.Join(parts[:i+1], ".")
	}
	return out
}
