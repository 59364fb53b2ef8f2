package middleware

import (
	"context"

	"github.com/burrowhq/burrow/pkg/log"
	"github.com/burrowhq/burrow/pkg/metrics"
	"github.com/burrowhq/burrow/pkg/types"
	"github.com/rs/zerolog"
)

// Logging returns a middleware that logs the start and end of every
// operation with its duration, status and provider. Lines carry the call's
// flow correlation fields.
func Logging(logger zerolog.Logger) Middleware {
	return func(ctx context.Context, op Op, next Next) (types.Result, error) {
		flow := log.WithFlow(logger, op.Call.TenantID, op.Call.TraceID, op.Call.RequestID)

		flow.Debug().
			Str("op", op.OpName).
			Str("service_key", op.ServiceKey).
			Msg("Operation started")

		timer := metrics.NewTimer()
		res, err := next(ctx)

		evt := flow.Info()
		if err != nil {
			evt = flow.Error().Err(err)
		}
		evt.
			Str("op", op.OpName).
			Str("status", string(res.Status)).
			Str("provider", res.Meta.ProviderName).
			Dur("duration", timer.Duration()).
			Msg("Operation finished")

		return res, err
	}
}
