package fakes

import (
	"context"
	"errors"
	"sync"

	platformEvents "github.com/dhima/mysql-crud/platform/events"
)

// FakePublisher captures published events and can simulate failures.
type FakePublisher struct {
	mu        sync.Mutex
	Events    []platformEvents.ChangeEvent
	FailNext  bool
	FailError error
}

func (p *FakePublisher) Publish(_ context.Context, e platformEvents.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailNext {
		p.FailNext = false
		if p.FailError == nil {
			p.FailError = errors.New("publish failed")
		}
		return p.FailError
	}
	p.Events = append(p.Events, e)
	return nil
}

// Published returns a copy of the captured events.
func (p *FakePublisher) Published() []platformEvents.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]platformEvents.ChangeEvent(nil), p.Events...)
}
