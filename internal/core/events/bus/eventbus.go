package bus

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/zeuscore/internal/core/observability/log"
)

var ErrNilHandler = errors.New("bus: nil handler")

type subscription struct {
	id        string
	eventType string
	handler   EventHandler
	active    atomic.Bool
	cancel    func()
}

func (s *subscription) ID() string        { return s.id }
func (s *subscription) EventType() string { return s.eventType }
func (s *subscription) IsActive() bool    { return s.active.Load() }
func (s *subscription) Cancel() error {
	if s.active.CompareAndSwap(true, false) {
		s.cancel()
	}
	return nil
}

type inMemoryBus struct {
	mu sync.RWMutex
	// handlers: eventType -> subID -> subscription
	handlers  map[string]map[string]*subscription
	observers map[Observer]struct{}

	published atomic.Uint64
	delivered atomic.Uint64
	errs      atomic.Uint64
	subs      atomic.Int64
}

func New() EventBus {
	return &inMemoryBus{
		handlers:  make(map[string]map[string]*subscription),
		observers: make(map[Observer]struct{}),
	}
}

func (b *inMemoryBus) Publish(event Event) error {
	start := time.Now()
	subs, observers := b.snapshot(event.Type)

	for _, obs := range observers {
		obs.OnPublish(event)
	}

	var all error
	delivered := 0
	for _, s := range subs {
		if !s.active.Load() {
			continue
		}
		delivered++
		if err := s.handler(event); err != nil {
			all = errors.Join(all, fmt.Errorf("%s subscriber %s: %w", event.Type, s.id, err))
		}
	}

	b.published.Add(1)
	b.delivered.Add(uint64(delivered))
	if all != nil {
		b.errs.Add(1)
	}
	for _, obs := range observers {
		obs.OnDelivered(event, delivered, all, time.Since(start))
	}
	return all
}

func (b *inMemoryBus) PublishAsync(event Event) <-chan error {
	ch := make(chan error, 1)
	go func() {
		ch <- b.Publish(event)
		close(ch)
	}()
	return ch
}

func (b *inMemoryBus) PublishBatch(events ...Event) error {
	var all error
	for _, e := range events {
		if err := b.Publish(e); err != nil {
			all = errors.Join(all, err)
		}
	}
	return all
}

func (b *inMemoryBus) Subscribe(eventType string, handler EventHandler) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[string]*subscription)
	}
	id := uuid.NewString()
	s := &subscription{id: id, eventType: eventType, handler: handler}
	s.active.Store(true)
	s.cancel = func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if m, ok := b.handlers[eventType]; ok {
			delete(m, id)
			if len(m) == 0 {
				delete(b.handlers, eventType)
			}
		}
		b.subs.Add(-1)
	}
	b.handlers[eventType][id] = s
	b.subs.Add(1)
	return s, nil
}

func (b *inMemoryBus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return nil
	}
	return sub.Cancel()
}

func (b *inMemoryBus) AddObserver(obs Observer) {
	b.mu.Lock()
	b.observers[obs] = struct{}{}
	b.mu.Unlock()
}

func (b *inMemoryBus) RemoveObserver(obs Observer) {
	b.mu.Lock()
	delete(b.observers, obs)
	b.mu.Unlock()
}

func (b *inMemoryBus) Metrics() Metrics {
	return Metrics{
		Published:         b.published.Load(),
		DeliveredHandlers: b.delivered.Load(),
		Errors:            b.errs.Load(),
		SubscribersActive: uint64(max(b.subs.Load(), 0)),
	}
}

// snapshot copies the matching subscribers and observers so handlers run
// without the bus lock
func (b *inMemoryBus) snapshot(eventType string) ([]*subscription, []Observer) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	subs := make([]*subscription, 0, len(b.handlers[eventType])+len(b.handlers[Wildcard]))
	for _, s := range b.handlers[eventType] {
		subs = append(subs, s)
	}
	if eventType != Wildcard {
		for _, s := range b.handlers[Wildcard] {
			subs = append(subs, s)
		}
	}

	var observers []Observer
	if len(b.observers) > 0 {
		observers = make([]Observer, 0, len(b.observers))
		for obs := range b.observers {
			observers = append(observers, obs)
		}
	}
	return subs, observers
}

// LogObserver writes every delivery to a logger at debug level, and failed
// deliveries at warn.
type LogObserver struct {
	Log log.Log
}

func (o LogObserver) OnPublish(Event) {}

func (o LogObserver) OnDelivered(event Event, handlers int, err error, took time.Duration) {
	fields := []log.Field{
		log.String("type", event.Type),
		log.String("source", event.Source),
		log.Int("handlers", handlers),
		log.Duration("took", took),
	}
	if event.Entity != 0 {
		fields = append(fields, log.Uint64("entity_id", event.Entity))
	}
	if err != nil {
		o.Log.Warn("notice delivery failed", append(fields, log.Error(err))...)
		return
	}
	o.Log.Debug("notice delivered", fields...)
}
