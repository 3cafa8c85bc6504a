package registration

import (
	"errors"
	"fmt"
)

// Upstream service names used in UpstreamError
const (
	ServiceRegistrationCache = "registration cache"
	ServiceLedger            = "ledger"
	ServicePinning           = "pinning service"
	ServiceStorage           = "ipfs gateway"
)

// ParentNotAnchoredReason distinguishes why a parent could not be resolved
type ParentNotAnchoredReason string

const (
	// ReasonNeverPublished means no cache row appeared for the parent during the retry window
	ReasonNeverPublished ParentNotAnchoredReason = "never_published"
	// ReasonNotConfirmed means a row exists but its ip id never appeared
	ReasonNotConfirmed ParentNotAnchoredReason = "not_confirmed"
	// ReasonChainMismatch means the cached ip id is not registered on the ledger
	ReasonChainMismatch ParentNotAnchoredReason = "chain_mismatch"
)

// ValidationError reports malformed or missing input. No work has been performed.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a validation error for field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// UpstreamError reports that a collaborator (cache, ledger, pinning, gateway) failed or was unreachable
type UpstreamError struct {
	Service string
	Err     error
}

// NewUpstreamError wraps err as a failure of service
func NewUpstreamError(service string, err error) *UpstreamError {
	return &UpstreamError{Service: service, Err: err}
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ParentNotAnchoredError reports that a parent cid has no usable ip id after the retry budget
type ParentNotAnchoredError struct {
	CID      string
	Reason   ParentNotAnchoredReason
	Attempts int
}

func (e *ParentNotAnchoredError) Error() string {
	switch e.Reason {
	case ReasonNeverPublished:
		return fmt.Sprintf("parent %s has not been published", e.CID)
	case ReasonNotConfirmed:
		return fmt.Sprintf("parent %s is published but not yet confirmed on chain", e.CID)
	case ReasonChainMismatch:
		return fmt.Sprintf("parent %s is not registered on chain under its cached ip id", e.CID)
	default:
		return fmt.Sprintf("parent %s is not anchored", e.CID)
	}
}

// PersistenceWarning reports a cache write that failed after the ledger write succeeded.
// It is carried in a result envelope rather than returned as an error.
type PersistenceWarning struct {
	CID   string
	Stage string
	Err   error
}

func (w *PersistenceWarning) Error() string {
	return fmt.Sprintf("registration cache write failed during %s for %s: %v", w.Stage, w.CID, w.Err)
}

func (w *PersistenceWarning) Unwrap() error {
	return w.Err
}

// IsValidationError reports whether err is a ValidationError
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsParentNotAnchored reports whether err is a ParentNotAnchoredError
func IsParentNotAnchored(err error) bool {
	var p *ParentNotAnchoredError
	return errors.As(err, &p)
}
