/*
Package textstencil implements the TextComposer capability on Go templates.

Templates are configured as plain strings keyed by template key and rendered
with text/template plus the sprig function map. Rendering is strict: a
template referencing a variable absent from the input fails with
render_failed instead of emitting a hole. Both provider error codes
(template_not_found, render_failed) are non-retryable.
*/
package textstencil
