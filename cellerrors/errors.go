// Copyright (c) 2025 Shell Reserve developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package cellerrors defines the error kinds used across the cell indexer
// and transaction-construction engine, per the error-handling design:
// InputValidation and Resource errors are terminal for a request,
// Infrastructure errors surface immediately with no in-core retry, and
// Internal errors are bugs that carry enough context to reproduce.
package cellerrors

import (
	"errors"
	"fmt"
)

// Code classifies an Error by how a caller should react to it.
type Code uint8

const (
	// Unclassified is the zero value; never constructed deliberately.
	Unclassified Code = iota

	// InputValidation covers payloads that are malformed or
	// semantically invalid on their face.
	InputValidation

	// Resource covers requests that are well-formed but cannot be
	// satisfied against the current chain state.
	Resource

	// Infrastructure covers failures of collaborators this engine
	// depends on but does not own (the indexer, the chain RPC node).
	Infrastructure

	// Internal covers bugs in the engine itself.
	Internal
)

func (c Code) String() string {
	switch c {
	case InputValidation:
		return "InputValidation"
	case Resource:
		return "Resource"
	case Infrastructure:
		return "Infrastructure"
	case Internal:
		return "Internal"
	default:
		return "Unclassified"
	}
}

// Reason is a stable, machine-matchable identifier for a specific failure
// within a Code, e.g. "InsufficientCapacity" or "NoACP". Spec §7 and §4.9
// name these exactly; callers switch on Reason, not on Error's message.
type Reason string

const (
	ReasonAdjustAccountWithoutUDTInfo Reason = "AdjustAccountWithoutUDTInfo"
	ReasonInvalidAdjustAccountNumber  Reason = "InvalidAdjustAccountNumber"
	ReasonUnsupportAddress            Reason = "UnsupportAddress"
	ReasonUnsupportedLockScript       Reason = "UnsupportedLockScript"
	ReasonSenderEqualsReceiver        Reason = "SenderEqualsReceiver"
	ReasonInvalidMode                 Reason = "InvalidMode"

	ReasonInsufficientCapacity   Reason = "InsufficientCapacity"
	ReasonInsufficientUDT        Reason = "InsufficientUDT"
	ReasonNoACP                  Reason = "NoACP"
	ReasonNoDepositCell          Reason = "NoDepositCell"
	ReasonNoMatureWithdrawing    Reason = "NoMatureWithdrawing"
	ReasonNotZeroInputUDTAmount  Reason = "NotZeroInputUDTAmount"
	ReasonChangeBelowMin         Reason = "ChangeBelowMin"

	ReasonIndexerFailure  Reason = "IndexerFailure"
	ReasonChainRPCFailure Reason = "ChainRPCFailure"
	ReasonTimeout         Reason = "Timeout"

	ReasonFeeConvergenceFailure Reason = "FeeConvergenceFailure"
)

// Error is the single error type the engine returns across package
// boundaries. Op names the operation that failed (e.g. "build_transfer"),
// Code classifies it for retry/surface policy, Reason is the stable
// machine-matchable identifier, and Detail is a human-readable explanation.
// Cause, when set, is the wrapped underlying error from a collaborator.
type Error struct {
	Op     string
	Code   Code
	Reason Reason
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s (%s)", e.Op, e.Reason, e.Code)
	}
	return fmt.Sprintf("%s: %s (%s): %s", e.Op, e.Reason, e.Code, e.Detail)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is supports errors.Is comparisons against a Reason-only Error built with
// New, so call sites can write errors.Is(err, cellerrors.New("", Resource,
// ReasonNoACP, "")) or, more commonly, check Reason directly via As.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Reason == t.Reason
}

// New constructs an Error with no wrapped cause.
func New(op string, code Code, reason Reason, detail string) *Error {
	return &Error{Op: op, Code: code, Reason: reason, Detail: detail}
}

// Wrap constructs an Error that wraps a collaborator failure.
func Wrap(op string, code Code, reason Reason, cause error) *Error {
	return &Error{Op: op, Code: code, Reason: reason, Detail: cause.Error(), Cause: cause}
}

// Is reports whether err is a cellerrors.Error with the given reason.
func Is(err error, reason Reason) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason == reason
	}
	return false
}
