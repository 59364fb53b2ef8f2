/*
Package texttemplates is the module that gives a tenant template-based text
composition.

On attach it registers a textstencil provider under the configured name,
optionally binds the TextComposer service key (deployments that drive
bindings from tenant config leave BindService off), and subscribes
observers to the compose lifecycle events. Detach releases everything the
handle recorded.

Config blob schema:

	provider_name: stencil_v1
	bind_service: false
	templates:
	  hello: "Hello, {{ .name }}!"
*/
package texttemplates
