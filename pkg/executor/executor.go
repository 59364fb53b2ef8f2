package executor

import (
	"context"
	"errors"
	"time"

	"github.com/burrowhq/burrow/pkg/deferred"
	"github.com/burrowhq/burrow/pkg/events"
	"github.com/burrowhq/burrow/pkg/log"
	"github.com/burrowhq/burrow/pkg/metrics"
	"github.com/burrowhq/burrow/pkg/middleware"
	"github.com/burrowhq/burrow/pkg/registry"
	"github.com/burrowhq/burrow/pkg/types"
	"github.com/rs/zerolog"
)

const (
	// DefaultTimeout applies when a call carries no timeout
	DefaultTimeout = 3 * time.Second

	// DefaultDeferredTTL bounds how long a pending ticket is tracked
	DefaultDeferredTTL = time.Hour
)

// Fn is the zero-argument terminal producing a result, typically a closure
// over a resolved provider
type Fn func(ctx context.Context) (types.Result, error)

// Request describes one service call through the executor
type Request struct {
	ServiceKey string
	Call       types.Call
	OpName     string
	Fn         Fn

	// TTL for a pending ticket when the call defers; DefaultDeferredTTL
	// when zero
	DeferredTTL time.Duration
}

// Completion finalizes a previously deferred call
type Completion struct {
	TenantID  string
	TraceID   string
	RequestID string
	OpName    string
	TicketID  string
	Result    types.Result

	// TTL for the completed entry; DefaultDeferredTTL when zero
	TTL time.Duration
}

// Executor is the single call site through which all service operations
// pass. It imposes per-attempt deadlines, budgets retries by count, emits a
// lifecycle event per attempt, and tracks deferred tickets.
type Executor struct {
	bus      *events.Bus
	registry *registry.Registry
	chain    *middleware.Chain
	deferred deferred.Store
	logger   zerolog.Logger
}

// Option configures an Executor
type Option func(*Executor)

// WithChain wraps every terminal in the middleware chain
func WithChain(chain *middleware.Chain) Option {
	return func(e *Executor) { e.chain = chain }
}

// WithDeferredStore enables deferred ticket tracking
func WithDeferredStore(store deferred.Store) Option {
	return func(e *Executor) { e.deferred = store }
}

// New creates an executor bound to the bus and registry
func New(bus *events.Bus, reg *registry.Registry, opts ...Option) *Executor {
	e := &Executor{
		bus:      bus,
		registry: reg,
		logger:   log.WithComponent("executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the registry the executor dispatches against
func (e *Executor) Registry() *registry.Registry {
	return e.registry
}

// Call dispatches a service operation.
//
// Each attempt runs the terminal — wrapped in the middleware chain when one
// is configured — under a wall-clock deadline of Call.Timeout. Deadline
// expiry yields an error/timeout result and terminal failure an
// error/exception result, both retryable while attempts remain; retry is
// budgeted by count only, with no backoff at this layer. A terminal that
// returns normally ends the call regardless of result status.
//
// Every attempt emits a service.{op}.{status} event. A deferred result with
// a ticket registers a pending entry in the deferred store. The executor
// never mutates the result's Meta; providers populate provider_name,
// timings and attempt.
//
// Cancellation of the caller's context is returned as an error, not as a
// result; the in-flight attempt is discarded without caching.
func (e *Executor) Call(ctx context.Context, req Request) (types.Result, error) {
	call := req.Call

	attempts := call.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	timeout := call.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	started := types.NowMS()
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.ServiceCallDuration, req.OpName)

	var lastErr types.Result

	for attempt := 1; attempt <= attempts; attempt++ {
		res, err := e.runAttempt(ctx, req, timeout)

		if err == nil {
			if res.Status == types.StatusDeferred && res.TicketID != "" && e.deferred != nil {
				ttl := req.DeferredTTL
				if ttl <= 0 {
					ttl = DefaultDeferredTTL
				}
				if derr := e.deferred.PutPending(res.TicketID, ttl); derr != nil {
					e.logger.Error().Err(derr).
						Str("ticket_id", res.TicketID).
						Msg("Failed to register pending ticket")
				} else {
					metrics.DeferredTicketsTotal.Inc()
				}
			}

			metrics.ServiceCallsTotal.WithLabelValues(req.OpName, string(res.Status)).Inc()
			if perr := e.publishServiceEvent(ctx, call, "service."+req.OpName+"."+string(res.Status), map[string]any{
				"service_key": req.ServiceKey,
				"attempt":     attempt,
				"provider":    res.Meta.ProviderName,
				"ticket_id":   res.TicketID,
			}); perr != nil {
				return res, perr
			}
			return res, nil
		}

		// Parent cancellation is not reported as an error result; the
		// in-flight attempt is discarded.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return types.Result{}, ctxErr
		}

		info := types.ErrorInfo{
			Code:      types.CodeException,
			Message:   err.Error(),
			Retryable: attempt < attempts,
		}
		if errors.Is(err, context.DeadlineExceeded) {
			info.Code = types.CodeTimeout
			info.Message = "Service timeout"
		}
		lastErr = types.ErrorResult(call, info, started, attempt)

		flowLogger := log.WithFlow(e.logger, call.TenantID, call.TraceID, call.RequestID)
		flowLogger.Warn().
			Str("op", req.OpName).
			Int("attempt", attempt).
			Str("error_code", info.Code).
			Bool("retryable", info.Retryable).
			Msg("Attempt failed")

		if perr := e.publishServiceEvent(ctx, call, "service."+req.OpName+".error", map[string]any{
			"service_key": req.ServiceKey,
			"attempt":     attempt,
			"provider":    nil,
			"error_code":  info.Code,
		}); perr != nil {
			return lastErr, perr
		}

		if !info.Retryable {
			break
		}
		metrics.ServiceRetriesTotal.WithLabelValues(req.OpName).Inc()
	}

	metrics.ServiceCallsTotal.WithLabelValues(req.OpName, string(types.StatusError)).Inc()
	return lastErr, nil
}

// runAttempt executes one attempt under its deadline. The terminal runs in
// its own goroutine so a deadline fires even when the terminal does not
// observe the context; the abandoned operation is cancelled cooperatively
// through the attempt context.
func (e *Executor) runAttempt(ctx context.Context, req Request, timeout time.Duration) (types.Result, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	run := req.Fn
	if e.chain != nil {
		op := middleware.Op{
			ServiceKey: req.ServiceKey,
			OpName:     req.OpName,
			Call:       req.Call,
		}
		run = func(ctx context.Context) (types.Result, error) {
			return e.chain.Run(ctx, op, middleware.Next(req.Fn))
		}
	}

	type outcome struct {
		res types.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := run(attemptCtx)
		done <- outcome{res: res, err: err}
	}()

	select {
	case out := <-done:
		return out.res, out.err
	case <-attemptCtx.Done():
		return types.Result{}, attemptCtx.Err()
	}
}

// CompleteDeferred stores the final result of a deferred operation and
// publishes the service.{op}.completed event. Callers are expected to hold
// the ticket ID from the initial deferred result.
func (e *Executor) CompleteDeferred(ctx context.Context, c Completion) error {
	if e.deferred != nil {
		ttl := c.TTL
		if ttl <= 0 {
			ttl = DefaultDeferredTTL
		}
		if err := e.deferred.Complete(c.TicketID, c.Result, ttl); err != nil {
			return err
		}
	}

	return e.bus.Publish(ctx, events.Envelope{
		Name:       "service." + c.OpName + ".completed",
		Kind:       events.KindService,
		TenantID:   c.TenantID,
		EventID:    types.NewID("evt"),
		TraceID:    c.TraceID,
		OccurredAt: types.NowMS(),
		RequestID:  c.RequestID,
		TicketID:   c.TicketID,
		Payload: map[string]any{
			"ticket_id": c.TicketID,
			"status":    string(c.Result.Status),
			"provider":  c.Result.Meta.ProviderName,
		},
	})
}

func (e *Executor) publishServiceEvent(ctx context.Context, call types.Call, name string, payload map[string]any) error {
	return e.bus.Publish(ctx, events.Envelope{
		Name:       name,
		Kind:       events.KindService,
		TenantID:   call.TenantID,
		EventID:    types.NewID("evt"),
		TraceID:    call.TraceID,
		OccurredAt: types.NowMS(),
		RequestID:  call.RequestID,
		Payload:    payload,
	})
}
