/*
Package events provides the in-memory event bus for Burrow's pub/sub
messaging.

The bus delivers immutable envelopes to subscribers registered under the
event name, sequentially, in ascending priority order (registration order as
tie-break). Delivery is synchronous: a handler completes before the next
begins, and Publish returns when the last subscriber has run. Across
concurrent Publish calls no ordering is guaranteed.

# Error isolation

Each subscription chooses its failure policy. With IsolateErrors set (the
NewSubscription default), a handler failure is captured and republished as a
system.handler_error envelope carrying the failed event name, the handler
identity, and the error; delivery of the original event then continues
unless StopOnError is also set. Without isolation the failure propagates to
the Publish caller and aborts the remaining subscribers. Handlers of
system.handler_error itself may fail freely; those failures are swallowed to
prevent recursion.

# Snapshot semantics

Publish snapshots the subscription list before iterating. Handlers that
subscribe or unsubscribe during delivery affect only subsequent publishes,
never the in-flight event.

# Usage

	bus := events.NewBus()

	sub := events.NewSubscription("service.text_compose.ok", onComposed)
	sub.Priority = 50
	bus.Subscribe(sub)

	err := bus.Publish(ctx, events.Envelope{
		Name:       "service.text_compose.ok",
		Kind:       events.KindService,
		TenantID:   "tenant_demo",
		EventID:    types.NewID("evt"),
		TraceID:    call.TraceID,
		OccurredAt: types.NowMS(),
		Payload:    map[string]any{"service_key": "TextComposer"},
	})

	bus.Unsubscribe("service.text_compose.ok", onComposed)

Unsubscribe matches by handler function identity (the function's code
pointer): pass the same function you registered. Closures created from the
same function literal share one identity, so unsubscribing one removes all
of them — subscribers that need independent removal register distinct named
functions.

# Integration Points

  - pkg/executor publishes service lifecycle events per attempt
  - pkg/runtime publishes config.tenant_updated after a config apply
  - pkg/module records subscriptions in handles so detach can unsubscribe
*/
package events
