package core

import (
	"github.com/burrowhq/burrow/pkg/events"
	"github.com/burrowhq/burrow/pkg/executor"
	"github.com/burrowhq/burrow/pkg/registry"
)

// App is the core runtime bundle: the event bus, the service registry and
// the executor dispatching through both. Providers and modules are attached
// from outside via runtime configuration.
type App struct {
	Bus      *events.Bus
	Registry *registry.Registry
	Executor *executor.Executor
}

// New builds the core components. Executor options configure the middleware
// chain and deferred store.
func New(opts ...executor.Option) *App {
	bus := events.NewBus()
	reg := registry.NewRegistry()
	exec := executor.New(bus, reg, opts...)

	return &App{
		Bus:      bus,
		Registry: reg,
		Executor: exec,
	}
}
