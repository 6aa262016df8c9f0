package api

import "time"

// Diagnostics exposes the nested and mapped diagnostic context captured
// for an event.
type Diagnostics interface {
	// NDC returns the nested diagnostic context, or "" if none was pushed.
	NDC() string

	// MDC looks up a mapped diagnostic context value.
	MDC(key string) (string, bool)
}

// Event is a single log event as seen by the filter chain. Filters only read it.
type Event struct {
	Logger    string
	Level     Level
	Message   string
	Timestamp time.Time
	Context   Diagnostics
}

// NDC returns the event's nested diagnostic context.
func (e *Event) NDC() string {
	if e.Context == nil {
		return ""
	}
	return e.Context.NDC()
}

// MDC returns the mapped diagnostic context value for key, or "" if absent.
func (e *Event) MDC(key string) string {
	if e.Context == nil {
		return ""
	}
	v, _ := e.Context.MDC(key)
	return v
}

// Diag is an immutable diagnostic context snapshot.
type Diag struct {
	Nested string
	Mapped map[string]string
}

func (d Diag) NDC() string { return d.Nested }

func (d Diag) MDC(key string) (string, bool) {
	v, ok := d.Mapped[key]
	return v, ok
}

// EventRecord is the JSON wire form of an Event.
type EventRecord struct {
	Logger    string            `json:"logger,omitempty"`
	Level     Level             `json:"level"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp,omitzero"`
	NDC       string            `json:"ndc,omitempty"`
	MDC       map[string]string `json:"mdc,omitempty"`
}

// ToEvent converts the wire record into an Event carrying a Diag snapshot.
func (r *EventRecord) ToEvent() *Event {
	return &Event{
		Logger:    r.Logger,
		Level:     r.Level,
		Message:   r.Message,
		Timestamp: r.Timestamp,
		Context:   Diag{Nested: r.NDC, Mapped: r.MDC},
	}
}
