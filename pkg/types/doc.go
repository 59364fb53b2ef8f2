/*
Package types defines the shared contracts of the Burrow dispatch runtime.

It carries the value types that flow between every other package: the service
call descriptor, the uniform service result with its status sum (ok, error,
deferred, partial), result metadata, the stable core error codes, and the
neutral capability interfaces (TextComposer, IntentResolver,
KnowledgeResponder) that providers implement.

Everything here is a plain value. Results are built once and never mutated;
callers that need a variant construct a new one. The package has no behavior
beyond small constructors and the ID/time helpers used across the runtime.
*/
package types
