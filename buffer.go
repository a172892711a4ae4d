package tablesink

import (
	"sync"
)

// eventsBuffer represents a buffer of pending log events that is protected by
// a mutex.
type eventsBuffer struct {
	sync.Mutex
	events []*LogEvent
}

// add appends an event and reports how many are now pending.
func (b *eventsBuffer) add(event *LogEvent) int {
	b.Lock()
	defer b.Unlock()

	b.events = append(b.events, event)
	return len(b.events)
}

func (b *eventsBuffer) drain() []*LogEvent {
	b.Lock()
	defer b.Unlock()

	events := b.events
	b.events = nil
	return events
}
