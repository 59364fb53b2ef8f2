package deferred

import (
	"time"

	"github.com/burrowhq/burrow/pkg/types"
)

// Entry is the current state of a deferred ticket. Result is nil while the
// ticket is pending and set once the operation completes.
type Entry struct {
	TicketID  string        `json:"ticket_id"`
	Result    *types.Result `json:"result,omitempty"`
	ExpiresAt int64         `json:"expires_at"`
}

// Pending reports whether the ticket is still awaiting completion
func (e *Entry) Pending() bool {
	return e.Result == nil
}

// Store tracks the two-stage lifecycle of deferred tickets:
// PutPending registers a ticket, Complete stores its final result.
// Entries expire by TTL; expired entries are treated as absent and evicted
// lazily.
type Store interface {
	PutPending(ticketID string, ttl time.Duration) error
	Complete(ticketID string, res types.Result, ttl time.Duration) error
	Get(ticketID string) (*Entry, error)
}
