package textstencil

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/burrowhq/burrow/pkg/types"
)

// Stable error codes surfaced by this provider
const (
	CodeTemplateNotFound = "template_not_found"
	CodeRenderFailed     = "render_failed"
)

// Config holds the template sources keyed by template key
type Config struct {
	Templates map[string]string
}

// Composer is a deterministic TextComposer provider based on Go templates
// with the sprig function map. No external IO; safe for core usage through
// the registry.
type Composer struct {
	cfg   Config
	name  string
	funcs template.FuncMap
}

// NewComposer creates a composer serving the configured templates
func NewComposer(cfg Config, providerName string) *Composer {
	if providerName == "" {
		providerName = "stencil_v1"
	}
	return &Composer{
		cfg:   cfg,
		name:  providerName,
		funcs: sprig.TxtFuncMap(),
	}
}

// Name returns the provider instance name used in registry bindings
func (c *Composer) Name() string {
	return c.name
}

// Compose renders the template named by in.TemplateKey with in.Variables.
// Missing templates yield template_not_found and render failures (including
// references to missing variables) yield render_failed; neither is
// retryable.
func (c *Composer) Compose(_ context.Context, call types.Call, in types.TextComposeIn) (types.Result, error) {
	meta := types.Meta{
		RequestID:      call.RequestID,
		TenantID:       call.TenantID,
		TraceID:        call.TraceID,
		StartedAt:      types.NowMS(),
		ProviderName:   c.name,
		Attempt:        1,
		IdempotencyKey: call.IdempotencyKey,
		Tags:           call.Tags,
	}

	src, ok := c.cfg.Templates[in.TemplateKey]
	if !ok {
		meta.FinishedAt = types.NowMS()
		return types.Result{
			Status: types.StatusError,
			Meta:   meta,
			Err: &types.ErrorInfo{
				Code:    CodeTemplateNotFound,
				Message: fmt.Sprintf("Template %q not found", in.TemplateKey),
			},
		}, nil
	}

	// missingkey=error matches the strict-variables contract: a template
	// referencing an absent variable fails rather than rendering a hole
	tmpl, err := template.New(in.TemplateKey).
		Funcs(c.funcs).
		Option("missingkey=error").
		Parse(src)
	if err != nil {
		meta.FinishedAt = types.NowMS()
		return types.Result{
			Status: types.StatusError,
			Meta:   meta,
			Err: &types.ErrorInfo{
				Code:    CodeRenderFailed,
				Message: err.Error(),
			},
		}, nil
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, in.Variables); err != nil {
		meta.FinishedAt = types.NowMS()
		return types.Result{
			Status: types.StatusError,
			Meta:   meta,
			Err: &types.ErrorInfo{
				Code:    CodeRenderFailed,
				Message: err.Error(),
			},
		}, nil
	}

	meta.FinishedAt = types.NowMS()
	return types.Result{
		Status: types.StatusOK,
		Meta:   meta,
		Data: types.TextComposeOut{
			Text:   buf.String(),
			Format: "plain",
		},
	}, nil
}
