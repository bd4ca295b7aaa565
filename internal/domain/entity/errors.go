package entity

import "errors"

var (
	// Transient page conditions; retried with backoff.
	ErrElementNotFound  = errors.New("element not found")
	ErrNotInteractable  = errors.New("element not interactable")
	ErrElementDetached  = errors.New("element detached")
	ErrOracleTimeout    = errors.New("oracle timeout")
	ErrOracleError      = errors.New("oracle error")
	ErrSuggestionAbsent = errors.New("suggestion not shown")

	// Permanent for the field; the field is skipped.
	ErrOptionNotFound        = errors.New("option not found")
	ErrAmbiguousField        = errors.New("ambiguous field")
	ErrNoConfidentMatch      = errors.New("no confident match")
	ErrRequiredFieldUnfilled = errors.New("required field unfilled")
	ErrUnsupportedField      = errors.New("unsupported field")
	ErrFileMissing           = errors.New("file missing")

	// Fatal for the run.
	ErrAuthenticationFailure = errors.New("authentication failure")
	ErrSectionUnrecognized   = errors.New("section unrecognized")
	ErrNavigation            = errors.New("navigation failure")
	ErrSectionIncomplete     = errors.New("section incomplete")
)
