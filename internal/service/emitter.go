package service

import "context"

// EventEmitter decouples the service layer from whatever transport pushes
// updates to interested parties (HTTP long-poll, logs, nothing at all in
// tests). Services receive this interface so they stay independently
// testable with a mock emitter.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// NopEmitter discards all events.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, string, any) {}

// MockEmitter records all calls for test assertions.
type MockEmitter struct {
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}
