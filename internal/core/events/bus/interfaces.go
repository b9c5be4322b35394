package bus

import "time"

// EventBus is a thread-safe, in-process pub/sub bus for lifecycle notices.
//
// Handlers subscribe by event type, or to every type with Wildcard.
// Delivery is synchronous: Publish runs the handlers in the caller goroutine
// and joins their errors. Handlers should be quick or hand work off, since
// a slow handler delays the publisher.
type EventBus interface {
	// Publish delivers event to the subscribers of event.Type and to the
	// wildcard subscribers.
	Publish(event Event) error
	// PublishAsync publishes from a new goroutine. The returned channel
	// receives the joined handler error (or nil) and is then closed.
	PublishAsync(event Event) <-chan error
	// PublishBatch publishes events in order and joins the errors.
	PublishBatch(events ...Event) error

	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels sub. A nil sub is ignored.
	Unsubscribe(sub Subscription) error

	AddObserver(obs Observer)
	RemoveObserver(obs Observer)

	Metrics() Metrics
}

// Wildcard subscribes to every event type
const Wildcard = "*"

// Event is one notice. Data must be treated as read-only once published.
type Event struct {
	Type   string         `json:"type"`
	Source string         `json:"source"`
	Time   time.Time      `json:"time"`
	Entity uint64         `json:"entity,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

// NewEvent stamps an event with the current time
func NewEvent(typ, source string, entity uint64, data map[string]any) Event {
	return Event{Type: typ, Source: source, Time: time.Now(), Entity: entity, Data: data}
}

type (
	// EventHandler is invoked per delivered event
	EventHandler func(event Event) error
)

// Subscription is a registered handler
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel removes the handler. Repeated calls are safe.
	Cancel() error
}

// Observer is told about every publish. Implementations must return quickly.
type Observer interface {
	OnPublish(event Event)
	OnDelivered(event Event, handlers int, err error, took time.Duration)
}

// Metrics are cumulative counters
type Metrics struct {
	Published         uint64 `json:"published"`
	DeliveredHandlers uint64 `json:"delivered_handlers"`
	Errors            uint64 `json:"errors"`
	SubscribersActive uint64 `json:"subscribers_active"`
}
