package audit

import (
	"context"
	"sync"
)

// Publisher accepts audit events for delivery. Implementations must not
// block the settlement path: delivery is best-effort and asynchronous.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// ChannelPublisher hands events to an in-process worker. When the buffer is
// full the event is dropped rather than stalling settlement; the drop is the
// caller's signal to size the buffer up.
type ChannelPublisher struct {
	ch chan Event
}

func NewChannelPublisher(buffer int) *ChannelPublisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &ChannelPublisher{ch: make(chan Event, buffer)}
}

// Events exposes the consumption side for the worker.
func (p *ChannelPublisher) Events() <-chan Event { return p.ch }

func (p *ChannelPublisher) Publish(ctx context.Context, event Event) error {
	select {
	case p.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

// FanOutPublisher delivers each event to every backend. The first error is
// returned after all backends have been attempted, so a failing Kafka link
// never starves local persistence.
type FanOutPublisher struct {
	backends []Publisher
}

func NewFanOutPublisher(backends ...Publisher) *FanOutPublisher {
	return &FanOutPublisher{backends: backends}
}

func (p *FanOutPublisher) Publish(ctx context.Context, event Event) error {
	var first error
	for _, backend := range p.backends {
		if err := backend.Publish(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// MemoryPublisher captures events for tests.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events returns a copy of everything published so far.
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// ByAction filters captured events.
func (p *MemoryPublisher) ByAction(action string) []Event {
	var out []Event
	for _, e := range p.Events() {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}
