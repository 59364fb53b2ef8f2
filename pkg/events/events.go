package events

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"sort"
	"sync"

	"github.com/burrowhq/burrow/pkg/log"
	"github.com/burrowhq/burrow/pkg/metrics"
	"github.com/burrowhq/burrow/pkg/types"
	"github.com/rs/zerolog"
)

// Kind classifies an event envelope
type Kind string

const (
	KindDomain  Kind = "domain"
	KindService Kind = "service"
	KindSystem  Kind = "system"
)

// HandlerErrorEvent is the name of the system event published when an
// isolated handler fails
const HandlerErrorEvent = "system.handler_error"

// Envelope is an immutable event record. Envelopes are append-only values;
// construct a new one instead of mutating.
type Envelope struct {
	Name string
	Kind Kind

	TenantID   string
	EventID    string
	TraceID    string
	OccurredAt int64 // milliseconds since epoch

	Payload map[string]any

	// optional correlation to a previous request/ticket
	RequestID string
	TicketID  string
}

// Handler processes a published envelope
type Handler func(ctx context.Context, evt Envelope) error

// Subscription binds a handler to an event name.
//
// Lower Priority runs earlier; equal priorities keep registration order.
// IsolateErrors turns a handler failure into a system.handler_error event
// instead of aborting delivery; StopOnError additionally skips the remaining
// subscribers of the failed event.
type Subscription struct {
	Name     string
	Handler  Handler
	Priority int

	StopOnError   bool
	IsolateErrors bool
}

// NewSubscription returns a subscription with the default priority (100)
// and error isolation enabled
func NewSubscription(name string, handler Handler) Subscription {
	return Subscription{
		Name:          name,
		Handler:       handler,
		Priority:      100,
		IsolateErrors: true,
	}
}

// Bus is an in-memory event bus.
//
//   - deterministic order by priority
//   - error isolation per handler
//   - emits system event on handler failure
//   - supports unsubscribe (needed for runtime module detach)
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]Subscription
	logger zerolog.Logger
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		subs:   make(map[string][]Subscription),
		logger: log.WithComponent("events"),
	}
}

// Subscribe registers a subscription. Duplicate subscribers are allowed;
// each is delivered independently.
func (b *Bus) Subscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := append(b.subs[sub.Name], sub)
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].Priority < subs[j].Priority
	})
	b.subs[sub.Name] = subs

	b.logger.Debug().
		Str("event", sub.Name).
		Str("handler", handlerName(sub.Handler)).
		Int("priority", sub.Priority).
		Msg("Subscribed handler")
}

// Unsubscribe removes every subscription for the event name whose handler
// identity matches. Returns the number of removed subscriptions.
func (b *Bus) Unsubscribe(name string, handler Handler) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[name]
	if len(subs) == 0 {
		return 0
	}

	id := handlerID(handler)
	kept := subs[:0]
	for _, s := range subs {
		if handlerID(s.Handler) != id {
			kept = append(kept, s)
		}
	}
	removed := len(subs) - len(kept)

	if len(kept) > 0 {
		b.subs[name] = kept
	} else {
		delete(b.subs, name)
	}

	return removed
}

// SubscriberCount returns the number of subscriptions for an event name
func (b *Bus) SubscriberCount(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[name])
}

// Publish delivers the envelope to every subscriber of evt.Name in priority
// order. The subscription list is snapshotted first: handlers registered
// during delivery do not receive the in-flight event.
//
// A failing handler with IsolateErrors set produces a system.handler_error
// event; with StopOnError also set, the remaining subscribers are skipped.
// A failing handler without IsolateErrors aborts delivery and the error is
// returned to the caller.
func (b *Bus) Publish(ctx context.Context, evt Envelope) error {
	metrics.EventsPublishedTotal.WithLabelValues(string(evt.Kind)).Inc()

	subs := b.snapshot(evt.Name)
	if len(subs) == 0 {
		b.logger.Debug().Str("event", evt.Name).Msg("No subscribers for event")
		return nil
	}

	for _, sub := range subs {
		err := sub.Handler(ctx, evt)
		if err == nil {
			continue
		}

		b.logger.Error().
			Err(err).
			Str("event", evt.Name).
			Str("handler", handlerName(sub.Handler)).
			Msg("Handler failed")

		if !sub.IsolateErrors {
			return fmt.Errorf("handler %s failed for event %s: %w",
				handlerName(sub.Handler), evt.Name, err)
		}

		metrics.EventHandlerErrorsTotal.WithLabelValues(evt.Name).Inc()
		b.publishInternal(ctx, Envelope{
			Name:       HandlerErrorEvent,
			Kind:       KindSystem,
			TenantID:   evt.TenantID,
			EventID:    types.NewID("evt"),
			TraceID:    evt.TraceID,
			OccurredAt: types.NowMS(),
			RequestID:  evt.RequestID,
			TicketID:   evt.TicketID,
			Payload: map[string]any{
				"failed_event":  evt.Name,
				"handler":       handlerName(sub.Handler),
				"error_type":    fmt.Sprintf("%T", err),
				"error_message": err.Error(),
			},
		})

		if sub.StopOnError {
			break
		}
	}

	return nil
}

// publishInternal delivers system events and swallows handler failures to
// prevent error recursion
func (b *Bus) publishInternal(ctx context.Context, evt Envelope) {
	for _, sub := range b.snapshot(evt.Name) {
		if err := sub.Handler(ctx, evt); err != nil {
			b.logger.Error().
				Err(err).
				Str("event", evt.Name).
				Str("handler", handlerName(sub.Handler)).
				Msg("System handler failed")
		}
	}
}

func (b *Bus) snapshot(name string) []Subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()

	subs := b.subs[name]
	out := make([]Subscription, len(subs))
	copy(out, subs)
	return out
}

// handlerID identifies a handler by its function pointer. Unsubscribe
// matches on this identity, so the subscriber must retain the same function
// value it registered with.
func handlerID(h Handler) uintptr {
	return reflect.ValueOf(h).Pointer()
}

func handlerName(h Handler) string {
	if fn := runtime.FuncForPC(handlerID(h)); fn != nil {
		return fn.Name()
	}
	return "unknown"
}
