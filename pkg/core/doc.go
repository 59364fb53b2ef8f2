/*
Package core bundles the Burrow runtime: event bus, service registry and
service executor.

The App value is what transports and modules receive — it is the whole
in-process API surface. Nothing here performs IO; wiring of providers,
modules, config sources and transports happens in external collaborators
(see pkg/runtime and cmd/burrow).
*/
package core
