/*
Package registry provides per-tenant service binding for Burrow.

The registry holds two disjoint maps: named provider instances, and
per-tenant binding maps from service key to provider name. Resolution walks
tenant -> service key -> provider name -> provider instance and surfaces
misconfiguration as sentinel errors (ErrServiceNotConfigured,
ErrServiceNotRegistered) matched with errors.Is.

SetTenantBindings replaces a tenant's whole binding map atomically, which is
what lets tenant configuration be hot-swapped at runtime: resolvers racing
an apply see the old map or the new map, never a mix.

Service keys are plain strings. ServiceKey derives one from a capability
interface's declared name as a convenient default; explicit keys are the
primary API.
*/
package registry
