// Package errors provides structured error handling for the Lexe SDK.
// Every error carries a Kind so callers can tell "retry is safe" apart from
// "fatal, fix input", plus exit codes and suggestions for the CLI.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes used by the CLI.
const (
	ExitSuccess    = 0 // Successful execution
	ExitGeneral    = 1 // General/unknown error
	ExitInput      = 2 // Invalid input
	ExitCredential = 3 // Credentials missing, malformed or rejected
	ExitNotFound   = 4 // Resource not found
	ExitConflict   = 5 // Resource already exists
	ExitRetryable  = 6 // Transient failure, safe to retry
)

// Kind classifies an error for callers.
type Kind string

// Error kinds.
const (
	KindGeneral      Kind = "general"
	KindInput        Kind = "input"
	KindCredential   Kind = "credential"
	KindStore        Kind = "store"
	KindSync         Kind = "sync"
	KindProvisioning Kind = "provisioning"
	KindRemote       Kind = "remote"
)

// LexeError is the structured error type for the SDK.
type LexeError struct {
	Kind       Kind              // Error class
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
	Retryable  bool              // Whether repeating the call is safe
}

func (e *LexeError) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *LexeError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for LexeError.
func (e *LexeError) Is(target error) bool {
	var t *LexeError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// clone returns a shallow copy so sentinels are never mutated.
func (e *LexeError) clone() *LexeError {
	c := *e
	return &c
}

// Sentinel errors.
var (
	ErrGeneral = &LexeError{
		Kind:     KindGeneral,
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &LexeError{
		Kind:     KindInput,
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	ErrNotFound = &LexeError{
		Kind:     KindInput,
		Code:     "NOT_FOUND",
		Message:  "resource not found",
		ExitCode: ExitNotFound,
	}

	ErrConfigInvalid = &LexeError{
		Kind:     KindInput,
		Code:     "CONFIG_INVALID",
		Message:  "configuration is invalid",
		ExitCode: ExitInput,
	}

	ErrInvalidAmount = &LexeError{
		Kind:     KindInput,
		Code:     "INVALID_AMOUNT",
		Message:  "invalid amount",
		ExitCode: ExitInput,
	}

	// Credential errors.
	ErrInvalidRootSeed = &LexeError{
		Kind:     KindCredential,
		Code:     "INVALID_ROOT_SEED",
		Message:  "invalid root seed",
		ExitCode: ExitCredential,
	}

	ErrInvalidMnemonic = &LexeError{
		Kind:     KindCredential,
		Code:     "INVALID_MNEMONIC",
		Message:  "invalid mnemonic phrase",
		ExitCode: ExitCredential,
	}

	ErrInvalidClientCredentials = &LexeError{
		Kind:     KindCredential,
		Code:     "INVALID_CLIENT_CREDENTIALS",
		Message:  "invalid client credentials",
		ExitCode: ExitCredential,
	}

	ErrMissingCredentials = &LexeError{
		Kind:     KindCredential,
		Code:     "MISSING_CREDENTIALS",
		Message:  "exactly one of root seed or client credentials is required",
		ExitCode: ExitCredential,
	}

	ErrCredentialsExpired = &LexeError{
		Kind:     KindCredential,
		Code:     "CREDENTIALS_EXPIRED",
		Message:  "client credentials have expired",
		ExitCode: ExitCredential,
	}

	ErrCredentialsRejected = &LexeError{
		Kind:     KindCredential,
		Code:     "CREDENTIALS_REJECTED",
		Message:  "credentials were rejected by the node",
		ExitCode: ExitCredential,
	}

	ErrDecryptionFailed = &LexeError{
		Kind:     KindCredential,
		Code:     "DECRYPTION_FAILED",
		Message:  "decryption failed - wrong password or corrupted backup",
		ExitCode: ExitCredential,
	}

	ErrWeakPassword = &LexeError{
		Kind:     KindInput,
		Code:     "WEAK_PASSWORD",
		Message:  "backup password is too short",
		ExitCode: ExitInput,
	}

	// Store errors.
	ErrStoreIO = &LexeError{
		Kind:     KindStore,
		Code:     "STORE_IO",
		Message:  "local store I/O failed",
		ExitCode: ExitGeneral,
	}

	ErrStoreCorrupt = &LexeError{
		Kind:     KindStore,
		Code:     "STORE_CORRUPT",
		Message:  "local store is corrupt",
		ExitCode: ExitGeneral,
	}

	ErrStoreExists = &LexeError{
		Kind:     KindStore,
		Code:     "STORE_EXISTS",
		Message:  "local store already exists",
		ExitCode: ExitConflict,
	}

	ErrWalletExists = &LexeError{
		Kind:     KindStore,
		Code:     "WALLET_EXISTS",
		Message:  "a wallet already exists for this user and environment",
		ExitCode: ExitConflict,
	}

	ErrStoreNotFound = &LexeError{
		Kind:     KindStore,
		Code:     "STORE_NOT_FOUND",
		Message:  "local store not found",
		ExitCode: ExitNotFound,
	}

	ErrStoreClosed = &LexeError{
		Kind:     KindStore,
		Code:     "STORE_CLOSED",
		Message:  "local store is closed or deleted",
		ExitCode: ExitGeneral,
	}

	ErrPaymentNotFound = &LexeError{
		Kind:     KindStore,
		Code:     "PAYMENT_NOT_FOUND",
		Message:  "payment not found",
		ExitCode: ExitNotFound,
	}

	// Sync errors. Local state is untouched when these are returned.
	ErrSyncUnreachable = &LexeError{
		Kind:      KindSync,
		Code:      "SYNC_UNREACHABLE",
		Message:   "failed to fetch payments from node",
		ExitCode:  ExitRetryable,
		Retryable: true,
	}

	ErrMalformedBatch = &LexeError{
		Kind:      KindSync,
		Code:      "SYNC_MALFORMED_BATCH",
		Message:   "node returned a malformed payment batch",
		ExitCode:  ExitRetryable,
		Retryable: true,
	}

	// Provisioning errors. Never retried automatically.
	ErrSignupFailed = &LexeError{
		Kind:     KindProvisioning,
		Code:     "SIGNUP_FAILED",
		Message:  "signup failed",
		ExitCode: ExitGeneral,
	}

	ErrAlreadySignedUp = &LexeError{
		Kind:     KindProvisioning,
		Code:     "ALREADY_SIGNED_UP",
		Message:  "user is already signed up",
		ExitCode: ExitConflict,
	}

	ErrNotSignedUp = &LexeError{
		Kind:     KindProvisioning,
		Code:     "NOT_SIGNED_UP",
		Message:  "user is not signed up",
		ExitCode: ExitNotFound,
	}

	ErrProvisionFailed = &LexeError{
		Kind:     KindProvisioning,
		Code:     "PROVISION_FAILED",
		Message:  "provisioning failed",
		ExitCode: ExitGeneral,
	}

	// Remote errors.
	ErrNetwork = &LexeError{
		Kind:      KindRemote,
		Code:      "NETWORK_ERROR",
		Message:   "network communication failed",
		ExitCode:  ExitRetryable,
		Retryable: true,
	}

	ErrRateLimited = &LexeError{
		Kind:      KindRemote,
		Code:      "RATE_LIMITED",
		Message:   "rate limit exceeded",
		ExitCode:  ExitRetryable,
		Retryable: true,
	}

	ErrRemote = &LexeError{
		Kind:     KindRemote,
		Code:     "REMOTE_ERROR",
		Message:  "node returned an error",
		ExitCode: ExitGeneral,
	}

	ErrBadResponse = &LexeError{
		Kind:     KindRemote,
		Code:     "BAD_RESPONSE",
		Message:  "node returned an unreadable response",
		ExitCode: ExitGeneral,
	}
)

// New creates a new LexeError with the given code and message.
func New(code, message string) *LexeError {
	return &LexeError{
		Kind:     KindGeneral,
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var le *LexeError
	if errors.As(err, &le) {
		return &LexeError{
			Kind:       le.Kind,
			Code:       le.Code,
			Message:    fmt.Sprintf("%s: %s", msg, le.Message),
			Details:    le.Details,
			Suggestion: le.Suggestion,
			Cause:      le.Cause,
			ExitCode:   le.ExitCode,
			Retryable:  le.Retryable,
		}
	}

	return &LexeError{
		Kind:     KindGeneral,
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithCause returns a copy of a sentinel carrying the underlying cause.
func WithCause(sentinel *LexeError, cause error) error {
	e := sentinel.clone()
	e.Cause = cause
	return e
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var le *LexeError
	if errors.As(err, &le) {
		e := le.clone()
		e.Details = details
		return e
	}

	return &LexeError{
		Kind:     KindGeneral,
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var le *LexeError
	if errors.As(err, &le) {
		e := le.clone()
		e.Suggestion = suggestion
		return e
	}

	return &LexeError{
		Kind:       KindGeneral,
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var le *LexeError
	if errors.As(err, &le) {
		return le.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var le *LexeError
	if errors.As(err, &le) {
		return le.Code
	}
	return "GENERAL_ERROR"
}

// KindOf returns the kind of an error, KindGeneral for foreign errors.
func KindOf(err error) Kind {
	var le *LexeError
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindGeneral
}

// IsRetryable reports whether repeating the failed call is safe.
func IsRetryable(err error) bool {
	var le *LexeError
	if errors.As(err, &le) {
		return le.Retryable
	}
	return false
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
