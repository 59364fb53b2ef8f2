/*
Package executor is the single call site through which every service
operation passes.

Given a service key, a call descriptor and a terminal closure over a
resolved provider, Call wraps the terminal in the configured middleware
chain, imposes a per-attempt wall-clock deadline, retries timeouts and
terminal failures while the attempt budget lasts, emits one
service.{op}.{status} lifecycle event per attempt, and — when a provider
answers "deferred" — registers the ticket in the deferred store for later
completion through CompleteDeferred.

# Attempt state machine

	           ┌──────────┐  terminal returns ok/error/partial/deferred
	           │ attempt  │────────────────────────────────▶ DONE (return res)
	 START ──▶ │ running  │  timeout/failure, not retryable ▶ DONE (return err)
	           │          │  timeout/failure, attempts left ─▶ next attempt
	           └──────────┘  attempts exhausted ─▶ DONE (return last err)

Retry is budgeted by count only; backoff belongs in middleware if a
deployment needs it. A terminal that returns a result — even one with
status error — ends the call: only deadline expiry and terminal failures
re-enter the loop.

The executor classifies its own failures as error/timeout or
error/exception with retryable = attempts remain; it never re-classifies a
provider's error result, and never mutates result metadata. Cancellation of
the caller's context surfaces as an error return, not a result.
*/
package executor
