package types

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents the outcome class of a service call
type Status string

const (
	StatusOK       Status = "ok"
	StatusError    Status = "error"
	StatusDeferred Status = "deferred"
	StatusPartial  Status = "partial"
)

// Call carries the per-call dispatch parameters derived from a runtime context
type Call struct {
	TenantID  string `json:"tenant_id"`
	RequestID string `json:"request_id"`
	TraceID   string `json:"trace_id"`

	Timeout     time.Duration `json:"timeout"`
	MaxAttempts int           `json:"max_attempts"`

	IdempotencyKey string `json:"idempotency_key,omitempty"`

	// arbitrary, safe metadata (no secrets)
	Tags map[string]string `json:"tags,omitempty"`
}

// Meta describes how a result was produced. Never contains secrets.
type Meta struct {
	RequestID string `json:"request_id"`
	TenantID  string `json:"tenant_id"`
	TraceID   string `json:"trace_id"`

	StartedAt  int64 `json:"started_at_ms"`
	FinishedAt int64 `json:"finished_at_ms,omitempty"`

	ProviderName   string            `json:"provider_name,omitempty"`
	Attempt        int               `json:"attempt"`
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
	Tags           map[string]string `json:"tags,omitempty"`
}

// ErrorInfo carries a stable machine code plus a safe human message
type ErrorInfo struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

// Stable error codes produced by the core itself. Providers define their own.
const (
	CodeTimeout    = "timeout"
	CodeException  = "exception"
	CodeInProgress = "in_progress"
)

// Result is the uniform outcome of a service call.
//
// Invariants per status:
//   - ok: Data present, Err nil
//   - error: Err present, Data nil
//   - deferred: TicketID present, Data nil; the final result arrives later
//     through the deferred store and a *.completed event
//   - partial: Data present; further values may arrive on Stream
type Result struct {
	Status Status     `json:"status"`
	Meta   Meta       `json:"meta"`
	Data   any        `json:"data,omitempty"`
	Err    *ErrorInfo `json:"error,omitempty"`

	// Stream carries the remainder of a partial result. Finite and
	// non-restartable; nil unless the provider supports streaming.
	Stream <-chan any `json:"-"`

	TicketID string `json:"ticket_id,omitempty"`
}

// ErrorResult builds an error result for the given call and attempt
func ErrorResult(call Call, info ErrorInfo, startedAt int64, attempt int) Result {
	return Result{
		Status: StatusError,
		Meta: Meta{
			RequestID:      call.RequestID,
			TenantID:       call.TenantID,
			TraceID:        call.TraceID,
			StartedAt:      startedAt,
			FinishedAt:     NowMS(),
			Attempt:        attempt,
			IdempotencyKey: call.IdempotencyKey,
			Tags:           call.Tags,
		},
		Err: &info,
	}
}

// NowMS returns milliseconds since the Unix epoch
func NowMS() int64 {
	return time.Now().UnixMilli()
}

// NewID returns a prefixed unique identifier, e.g. "req_3f9c..."
func NewID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// --- Neutral capability contracts (no provider assumptions) ---

// TextComposeIn is the input to a text composition operation
type TextComposeIn struct {
	Locale      string
	TemplateKey string
	Variables   map[string]any
}

// TextComposeOut is the rendered text
type TextComposeOut struct {
	Text   string
	Format string // "plain" | "markdown" | "html" (core just passes through)
}

// TextComposer renders tenant-facing text from a template key and variables
type TextComposer interface {
	Compose(ctx context.Context, call Call, in TextComposeIn) (Result, error)
}

// IntentResolveIn is the input to an intent resolution operation
type IntentResolveIn struct {
	Text    string
	Locale  string
	Channel string
	Context map[string]any
}

// IntentResolveOut is a resolved intent with confidence and slots
type IntentResolveOut struct {
	Intent     string
	Confidence float64
	Slots      map[string]any
}

// IntentResolver classifies free text into an intent
type IntentResolver interface {
	Resolve(ctx context.Context, call Call, in IntentResolveIn) (Result, error)
}

// KnowledgeRespondIn is the input to a knowledge response operation
type KnowledgeRespondIn struct {
	Question string
	Locale   string
	Context  map[string]any
}

// KnowledgeRespondOut is an answer with source references (ids/keys only)
type KnowledgeRespondOut struct {
	AnswerText string
	Sources    []string
}

// KnowledgeResponder answers questions from a knowledge base
type KnowledgeResponder interface {
	Respond(ctx context.Context, call Call, in KnowledgeRespondIn) (Result, error)
}
