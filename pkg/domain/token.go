package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Reason categorizes why a computation suspended. Purely descriptive;
// the store never branches on it.
type Reason string

const (
	ReasonApprovalNeeded   Reason = "approval_needed"
	ReasonAmbiguousChoice  Reason = "ambiguous_choice"
	ReasonSensitiveAction  Reason = "sensitive_action"
	ReasonResourceDecision Reason = "resource_decision"
	ReasonErrorRecovery    Reason = "error_recovery"
	ReasonContextRequired  Reason = "context_required"
)

// Severity indicates how urgent the pending decision is. Descriptive only.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Status is the derived lifecycle state of a token.
type Status string

const (
	StatusPending   Status = "pending"
	StatusResolved  Status = "resolved"
	StatusCancelled Status = "cancelled"
	StatusVoided    Status = "voided"
)

// Token is one suspended decision point: an immutable-identity,
// mutable-status record. Identity and equality are defined solely by ID;
// the ledger indexes on ID and nothing else.
type Token struct {
	ID       string   `json:"id"`
	Reason   Reason   `json:"reason"`
	Severity Severity `json:"severity"`

	// Prompt is the human-readable description of the decision to be made.
	Prompt string `json:"prompt"`

	// Options are suggested discrete responses, in display order.
	// May be empty; free-form resolution is always allowed.
	Options []string `json:"options"`

	// FrozenState is the opaque resumable state produced by the caller.
	// The store never inspects or validates its contents.
	FrozenState []byte `json:"frozen_state"`

	// Optional descriptive metadata, consumed only by collaborators.
	OriginalEvent string `json:"original_event,omitempty"`
	RequiredType  string `json:"required_type,omitempty"`
	Escalation    string `json:"escalation,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	// Deadline, when set, makes the token eligible for voiding by a sweep.
	// Nil means the token never expires on its own.
	Deadline *time.Time `json:"deadline"`

	ResolvedAt  *time.Time `json:"resolved_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	VoidedAt    *time.Time `json:"voided_at"`
}

// TokenOption configures a Token at construction.
type TokenOption func(*Token)

// WithSeverity overrides the default severity (info).
func WithSeverity(s Severity) TokenOption {
	return func(t *Token) { t.Severity = s }
}

// WithOptions sets the suggested responses.
func WithOptions(options ...string) TokenOption {
	return func(t *Token) { t.Options = options }
}

// WithFrozenState attaches the opaque resumable state.
func WithFrozenState(state []byte) TokenOption {
	return func(t *Token) { t.FrozenState = state }
}

// WithDeadline sets the expiry deadline.
func WithDeadline(deadline time.Time) TokenOption {
	return func(t *Token) { t.Deadline = &deadline }
}

// WithOriginalEvent records the source event identifier.
func WithOriginalEvent(event string) TokenOption {
	return func(t *Token) { t.OriginalEvent = event }
}

// WithRequiredType tags the expected response-value type.
func WithRequiredType(typ string) TokenOption {
	return func(t *Token) { t.RequiredType = typ }
}

// WithEscalation names an escalation target (a role or contact).
func WithEscalation(target string) TokenOption {
	return func(t *Token) { t.Escalation = target }
}

// WithID overrides the generated token ID.
func WithID(id string) TokenOption {
	return func(t *Token) { t.ID = id }
}

// NewToken constructs a PENDING token with a generated ID.
func NewToken(reason Reason, prompt string, opts ...TokenOption) *Token {
	t := &Token{
		ID:        NewTokenID(),
		Reason:    reason,
		Severity:  SeverityInfo,
		Prompt:    prompt,
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewTokenID generates a fixed-prefix identifier with a short random
// suffix (e.g. "sem-1a2b3c4d"). Uniqueness is probabilistic; no external
// authority is consulted.
func NewTokenID() string {
	return fmt.Sprintf("sem-%s", uuid.NewString()[:8])
}

// Status derives the lifecycle status from the terminal timestamps.
func (t *Token) Status() Status {
	switch {
	case t.ResolvedAt != nil:
		return StatusResolved
	case t.CancelledAt != nil:
		return StatusCancelled
	case t.VoidedAt != nil:
		return StatusVoided
	default:
		return StatusPending
	}
}

// IsPending reports whether no terminal timestamp is set.
func (t *Token) IsPending() bool { return t.Status() == StatusPending }

// IsTerminal reports whether the token reached any terminal status.
func (t *Token) IsTerminal() bool { return !t.IsPending() }

// IsResolved reports whether the token was resolved.
func (t *Token) IsResolved() bool { return t.ResolvedAt != nil }

// IsCancelled reports whether the token was cancelled.
func (t *Token) IsCancelled() bool { return t.CancelledAt != nil }

// IsVoided reports whether the token was voided by an elapsed deadline.
func (t *Token) IsVoided() bool { return t.VoidedAt != nil }

// CheckAndVoidIfExpired is the only path by which a deadline causes a
// transition. It is evaluated lazily by sweeps, never by a timer.
// Returns false if there is no deadline, the deadline has not passed,
// or the token is already terminal; otherwise sets VoidedAt to now
// and returns true.
func (t *Token) CheckAndVoidIfExpired(now time.Time) bool {
	if t.Deadline == nil || t.IsTerminal() {
		return false
	}
	if !now.After(*t.Deadline) {
		return false
	}
	voided := now.UTC()
	t.VoidedAt = &voided
	return true
}

// Clone returns a deep copy of the token.
func (t *Token) Clone() *Token {
	c := *t
	if t.Options != nil {
		c.Options = append([]string(nil), t.Options...)
	}
	if t.FrozenState != nil {
		c.FrozenState = append([]byte(nil), t.FrozenState...)
	}
	c.Deadline = cloneTime(t.Deadline)
	c.ResolvedAt = cloneTime(t.ResolvedAt)
	c.CancelledAt = cloneTime(t.CancelledAt)
	c.VoidedAt = cloneTime(t.VoidedAt)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
