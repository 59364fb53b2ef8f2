package textstencil

import (
	"context"
	"testing"

	"github.com/burrowhq/burrow/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCall() types.Call {
	return types.Call{
		TenantID:  "tenant_test",
		RequestID: "req_1",
		TraceID:   "trc_1",
	}
}

func TestComposeRendersTemplate(t *testing.T) {
	composer := NewComposer(Config{
		Templates: map[string]string{
			"hello": "Hello, {{ .name }}!",
		},
	}, "stencil_v1")

	res, err := composer.Compose(context.Background(), testCall(), types.TextComposeIn{
		Locale:      "en",
		TemplateKey: "hello",
		Variables:   map[string]any{"name": "Ada"},
	})

	require.NoError(t, err)
	require.Equal(t, types.StatusOK, res.Status)

	out := res.Data.(types.TextComposeOut)
	assert.Equal(t, "Hello, Ada!", out.Text)
	assert.Equal(t, "plain", out.Format)
	assert.Equal(t, "stencil_v1", res.Meta.ProviderName)
	assert.NotZero(t, res.Meta.FinishedAt)
}

func TestComposeSprigFunctions(t *testing.T) {
	composer := NewComposer(Config{
		Templates: map[string]string{
			"shout": "{{ .name | upper }}",
		},
	}, "stencil_v1")

	res, err := composer.Compose(context.Background(), testCall(), types.TextComposeIn{
		TemplateKey: "shout",
		Variables:   map[string]any{"name": "ada"},
	})

	require.NoError(t, err)
	require.Equal(t, types.StatusOK, res.Status)
	assert.Equal(t, "ADA", res.Data.(types.TextComposeOut).Text)
}

func TestComposeTemplateNotFound(t *testing.T) {
	composer := NewComposer(Config{Templates: map[string]string{}}, "stencil_v1")

	res, err := composer.Compose(context.Background(), testCall(), types.TextComposeIn{
		TemplateKey: "missing",
	})

	require.NoError(t, err)
	require.Equal(t, types.StatusError, res.Status)
	assert.Equal(t, CodeTemplateNotFound, res.Err.Code)
	assert.False(t, res.Err.Retryable)
}

func TestComposeRenderFailures(t *testing.T) {
	tests := []struct {
		name      string
		template  string
		variables map[string]any
	}{
		{
			name:     "invalid syntax",
			template: "Hello, {{ .name",
		},
		{
			name:      "missing variable",
			template:  "Hello, {{ .name }}!",
			variables: map[string]any{"other": "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			composer := NewComposer(Config{
				Templates: map[string]string{"tpl": tt.template},
			}, "stencil_v1")

			res, err := composer.Compose(context.Background(), testCall(), types.TextComposeIn{
				TemplateKey: "tpl",
				Variables:   tt.variables,
			})

			require.NoError(t, err)
			require.Equal(t, types.StatusError, res.Status)
			assert.Equal(t, CodeRenderFailed, res.Err.Code)
			assert.False(t, res.Err.Retryable)
		})
	}
}

func TestComposeDefaultProviderName(t *testing.T) {
	composer := NewComposer(Config{}, "")
	assert.Equal(t, "stencil_v1", composer.Name())
}
