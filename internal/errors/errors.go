// Package errors defines coded errors for the tmx boundary layers.
// The matrix core itself never fails; it degrades to partial, advisory
// results. Errors arise only while loading snapshots, persisting links,
// or rendering exports.
package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// SnapshotInvalid indicates an entity snapshot failed shape validation
	SnapshotInvalid ErrorCode = "SNAPSHOT_INVALID"
	// SnapshotMissing indicates the snapshot file was not found
	SnapshotMissing ErrorCode = "SNAPSHOT_MISSING"
	// SnapshotUnsupported indicates an unrecognized snapshot format
	SnapshotUnsupported ErrorCode = "SNAPSHOT_UNSUPPORTED"
	// StoreUnavailable indicates the link store could not be opened
	StoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	// StoreWriteFailed indicates a link or gap record could not be written
	StoreWriteFailed ErrorCode = "STORE_WRITE_FAILED"
	// ExportFailed indicates an export artifact could not be rendered
	ExportFailed ErrorCode = "EXPORT_FAILED"
	// ConfigInvalid indicates the configuration could not be parsed
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// PolicyInvalid indicates the gap policy file could not be parsed
	PolicyInvalid ErrorCode = "POLICY_INVALID"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Command     string `json:"command,omitempty"`
	Safe        bool   `json:"safe,omitempty"`
	Description string `json:"description,omitempty"`
}

// TmxError represents a tmx error with code, message, and suggestions
type TmxError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new TmxError
func New(code ErrorCode, message string, cause error) *TmxError {
	return &TmxError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Error implements the error interface
func (e *TmxError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *TmxError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *TmxError) WithDetails(details interface{}) *TmxError {
	e.Details = details
	return e
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	SnapshotMissing: {
		{
			Command:     "tmx init",
			Safe:        true,
			Description: "Create a starter snapshot and configuration",
		},
	},
	SnapshotInvalid: {
		{
			Command:     "tmx validate --snapshot=<path>",
			Safe:        true,
			Description: "List the snapshot validation issues",
		},
	},
	StoreUnavailable: {
		{
			Command:     "tmx build --no-store",
			Safe:        true,
			Description: "Build the matrix without persisting links",
		},
	},
	ConfigInvalid: {
		{
			Command:     "tmx init --force",
			Safe:        false,
			Description: "Rewrite the configuration with defaults",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
