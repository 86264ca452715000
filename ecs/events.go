package ecs

// EventKind identifies what happened to an entity during a frame.
type EventKind string

const (
	EventPathFound     EventKind = "path_found"
	EventPathFailed    EventKind = "path_failed"
	EventArrived       EventKind = "arrived"
	EventMeshReloaded  EventKind = "mesh_reloaded"
	EventScriptChanged EventKind = "script_changed"
)

// Event is pushed by systems and read by later systems in the same frame.
// Entity is zero for world-wide events.
type Event struct {
	Kind   EventKind
	Entity Entity
	Data   any
}

// EventQueue is a simple FIFO queue cleared at the end of every frame.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Peek returns the pending events without clearing them.
func (q *EventQueue) Peek() []Event {
	if q == nil {
		return nil
	}
	return q.items
}

// For returns the pending events of kind addressed to e.
func (q *EventQueue) For(e Entity, kind EventKind) []Event {
	var out []Event
	for _, evt := range q.Peek() {
		if evt.Entity == e && evt.Kind == kind {
			out = append(out, evt)
		}
	}
	return out
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.items = nil
}
