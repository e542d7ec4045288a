package main

import (
	"errors"
)

var (
	ErrBookNotFound         = errors.New("book not found")
	ErrValidation           = errors.New("validation failed")
	ErrMalformedInput       = errors.New("malformed input")
	ErrNoCandidates         = errors.New("no candidates")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrSlotEmpty            = errors.New("storage slot is empty")
)

// ValidationError reports a user input which must be corrected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// MalformedInputError reports an import payload which cannot be used at all.
type MalformedInputError struct {
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	if e.Err != nil {
		return "malformed input: " + e.Reason + ": " + e.Err.Error()
	}
	return "malformed input: " + e.Reason
}

func (e *MalformedInputError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformedInput, e.Err}
	}
	return []error{ErrMalformedInput}
}

// NoCandidatesError reports an empty pick pool. The mode only
// changes the message shown to the user.
type NoCandidatesError struct {
	Mode PurchaseMode
}

func (e *NoCandidatesError) Error() string {
	switch e.Mode {
	case ModePurchased:
		return "no purchased books match the current search. change the conditions"
	case ModeUnpurchased:
		return "no unpurchased books match the current search. change the conditions"
	default:
		return "no candidates. change the conditions"
	}
}

func (e *NoCandidatesError) Unwrap() error {
	return ErrNoCandidates
}
