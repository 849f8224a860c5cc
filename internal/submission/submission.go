package submission

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("submission not found")

// ID identifies a submission.
type ID string

// Status is the lifecycle state of a submission.
type Status string

const (
	// StatusPending is set when a document was accepted for delivery.
	StatusPending Status = "pending"
	// StatusAccepted means the registry created the document.
	StatusAccepted Status = "accepted"
	// StatusRejected means the registry refused the document; it will not be resent.
	StatusRejected Status = "rejected"
	// StatusFailed means the last attempt failed and the worker may try again.
	StatusFailed Status = "failed"
)

// Submission tracks one document on its way to the registry.
type Submission struct {
	ID         ID
	DocID      string
	Status     Status
	RegistryID string // set once accepted
	Error      string
	ClientIP   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Outcome is the result of one delivery attempt.
type Outcome struct {
	Status     Status
	RegistryID string
	Error      string
}

// Repository persists submissions.
type Repository interface {
	Save(ctx context.Context, submission *Submission) error
	GetByID(ctx context.Context, id ID) (*Submission, error)
	// UpdateStatus records an outcome. Returns ErrNotFound for unknown ids.
	UpdateStatus(ctx context.Context, id ID, outcome Outcome) error
}
