/*
Package log provides structured logging for Burrow using zerolog.

The package keeps one root logger, configured once at startup, and two ways
to derive from it: WithComponent scopes a logger to a runtime component, and
WithFlow stamps a logger with the correlation triple (tenant, trace,
request) that every dispatch-path line carries.

# Usage

Configuring at startup:

	import "github.com/burrowhq/burrow/pkg/log"

	log.Setup(log.Options{Level: "info"})            // JSON (production)
	log.Setup(log.Options{Level: "debug", Console: true}) // development

Component loggers:

	logger := log.WithComponent("executor")
	logger.Info().Str("op", "text_compose").Msg("Dispatching call")

Flow loggers on the dispatch path:

	flow := log.WithFlow(logger, call.TenantID, call.TraceID, call.RequestID)
	flow.Warn().Int("attempt", attempt).Msg("Attempt failed")

Never log secrets or raw provider payloads; log IDs and codes instead.
*/
package log
