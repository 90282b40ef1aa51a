// Package domain provides the pure domain layer for training sessions with
// no infrastructure dependencies.
//
// It defines the Record entity with encapsulated state and sanitization
// rules, and the repository interfaces for persistence abstraction. The
// domain layer has no knowledge of databases or file I/O.
package domain

import "time"

// DefaultProtocolType identifies the shipped 4-4-4-4 box breathing protocol.
const DefaultProtocolType = "box-4-4-4-4"

// MaxHoldDurationSeconds is the sanitization cap on a persisted hold.
const MaxHoldDurationSeconds = 600.0

// Record represents one completed or in-progress training session.
// All fields are unexported to enforce encapsulation; use the constructor
// and getter methods to access data.
type Record struct {
	id                  string
	startedAt           time.Time
	completedAt         *time.Time
	holdDurationSeconds float64
	preparationRounds   int
	protocolType        string
}

// NewRecord creates a Record at session start. The id is assigned by the
// caller and immutable; startedAt is clamped so it never lies in the
// future; an empty protocolType falls back to the default.
func NewRecord(id string, startedAt time.Time, protocolType string, now time.Time) *Record {
	if startedAt.After(now) {
		startedAt = now
	}
	if protocolType == "" {
		protocolType = DefaultProtocolType
	}
	return &Record{
		id:           id,
		startedAt:    startedAt,
		protocolType: protocolType,
	}
}

// ReconstituteRecord creates a Record from existing data, typically when
// hydrating from the database. Sanitization rules are re-applied so an
// out-of-band edit to storage cannot produce an invalid record.
func ReconstituteRecord(
	id string,
	startedAt time.Time,
	completedAt *time.Time,
	holdDurationSeconds float64,
	preparationRounds int,
	protocolType string,
) *Record {
	r := &Record{
		id:                  id,
		startedAt:           startedAt,
		completedAt:         completedAt,
		holdDurationSeconds: holdDurationSeconds,
		preparationRounds:   preparationRounds,
		protocolType:        protocolType,
	}
	r.sanitize()
	return r
}

// sanitize clamps and defaults fields per the validation rules. It never
// rejects a record; out-of-range values are corrected in place.
func (r *Record) sanitize() {
	if r.holdDurationSeconds < 0 {
		r.holdDurationSeconds = 0
	}
	if r.holdDurationSeconds > MaxHoldDurationSeconds {
		r.holdDurationSeconds = MaxHoldDurationSeconds
	}
	if r.completedAt != nil && r.completedAt.Before(r.startedAt) {
		at := r.startedAt
		r.completedAt = &at
	}
	if r.protocolType == "" {
		r.protocolType = DefaultProtocolType
	}
	if r.preparationRounds < 0 {
		r.preparationRounds = 0
	}
}

// ID returns the unique identifier assigned at session start.
func (r *Record) ID() string {
	return r.id
}

// StartedAt returns when the session started.
func (r *Record) StartedAt() time.Time {
	return r.startedAt
}

// CompletedAt returns when the session completed, or nil while in progress.
func (r *Record) CompletedAt() *time.Time {
	return r.completedAt
}

// HoldDurationSeconds returns the seconds spent in the breath-hold phase.
// Zero until the hold completes.
func (r *Record) HoldDurationSeconds() float64 {
	return r.holdDurationSeconds
}

// PreparationRounds returns the count of breathing rounds completed.
func (r *Record) PreparationRounds() int {
	return r.preparationRounds
}

// ProtocolType returns the identifier of the breathing protocol used.
func (r *Record) ProtocolType() string {
	return r.protocolType
}

// IsCompleted returns true once the session reached a terminal state.
func (r *Record) IsCompleted() bool {
	return r.completedAt != nil
}

// SetHoldDuration updates the accumulated hold duration while the
// session is in flight. Completed records are frozen and ignore updates.
func (r *Record) SetHoldDuration(seconds float64) {
	if r.IsCompleted() {
		return
	}
	r.holdDurationSeconds = seconds
	r.sanitize()
}

// Complete freezes the record with the final hold duration and round
// count. Calling Complete on an already-completed record is a no-op.
func (r *Record) Complete(holdDurationSeconds float64, preparationRounds int, at time.Time) {
	if r.IsCompleted() {
		return
	}
	r.holdDurationSeconds = holdDurationSeconds
	r.preparationRounds = preparationRounds
	r.completedAt = &at
	r.sanitize()
}

// IsValid reports whether the record satisfies all invariants. Records
// produced by the constructors always are; this exists for data read
// from storage before sanitization.
func (r *Record) IsValid() bool {
	if r.id == "" {
		return false
	}
	if r.holdDurationSeconds < 0 || r.holdDurationSeconds > MaxHoldDurationSeconds {
		return false
	}
	if r.completedAt != nil && r.completedAt.Before(r.startedAt) {
		return false
	}
	if r.protocolType == "" {
		return false
	}
	return r.preparationRounds >= 0
}
