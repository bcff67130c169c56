package stores

import (
	"context"
	"time"
)

// ValidationStatus is the outcome of a recorded validation.
type ValidationStatus string

const (
	ValidationStatusValid    ValidationStatus = "valid"
	ValidationStatusRejected ValidationStatus = "rejected"
)

// Validation is one recorded load of a global configuration document.
type Validation struct {
	ID         string           `json:"id"`
	Source     string           `json:"source"`
	Status     ValidationStatus `json:"status"`
	State      string           `json:"state"`
	ErrorKind  *string          `json:"error_kind,omitempty"`
	Issues     []string         `json:"issues,omitempty"` // stored as a JSON array
	HomeRegion *string          `json:"home_region,omitempty"`
	Snapshot   *string          `json:"snapshot,omitempty"` // YAML of the accepted configuration
	DurationMS int64            `json:"duration_ms"`
	CreatedAt  time.Time        `json:"created_at"`
}

// IssueCount returns the number of recorded issues.
func (v *Validation) IssueCount() int {
	return len(v.Issues)
}

// ValidationFilter narrows ListValidations. Nil fields match everything.
type ValidationFilter struct {
	Source *string
	Status *ValidationStatus
	Limit  int
	Offset int
}

// AuditEntry represents an audit trail entry
type AuditEntry struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`              // e.g. "validation.recorded", "history.pruned"
	Actor     string    `json:"actor"`               // user or system identifier
	TargetID  *string   `json:"target_id,omitempty"` // validation ID
	Details   *string   `json:"details,omitempty"`   // JSON blob
	Timestamp time.Time `json:"timestamp"`
}

// Store defines the interface for validation history persistence
type Store interface {
	// Lifecycle
	Init(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error

	// Validation operations
	RecordValidation(ctx context.Context, v *Validation) error
	GetValidation(ctx context.Context, id string) (*Validation, error)
	ListValidations(ctx context.Context, filter ValidationFilter) ([]*Validation, error)
	LatestValid(ctx context.Context, source string) (*Validation, error)
	PruneValidations(ctx context.Context, before time.Time) (int64, error)

	// Audit operations
	CreateAuditEntry(ctx context.Context, entry *AuditEntry) error
	ListAuditEntries(ctx context.Context, action *string, limit, offset int) ([]*AuditEntry, error)

	// Utility
	HealthCheck(ctx context.Context) error
}
