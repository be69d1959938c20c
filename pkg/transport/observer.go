package transport

import "time"

// Exchange describes one completed (or failed) network exchange.
type Exchange struct {
	// Transport is "rest" or "xmlrpc".
	Transport string

	// Operation is the HTTP method for REST, or the method name for XML-RPC.
	Operation string

	// StatusCode is zero when no response was received.
	StatusCode int

	Duration time.Duration
	Err      error
}

// Observer receives a notification after every exchange. Implementations must
// be safe for concurrent use.
type Observer interface {
	ObserveExchange(Exchange)
}

// NopObserver discards all notifications.
type NopObserver struct{}

func (NopObserver) ObserveExchange(Exchange) {}
