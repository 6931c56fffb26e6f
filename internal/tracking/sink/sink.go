// Package sink forwards events to an external capture API. Forwarding is
// strictly best effort; the local store is the source of truth.
package sink

// EventSink receives a copy of every stored event.
type EventSink interface {
	Capture(distinctID, event string, properties map[string]interface{})
}

// NopSink discards everything. Used when no capture key is configured.
type NopSink struct{}

func (NopSink) Capture(string, string, map[string]interface{}) {}
