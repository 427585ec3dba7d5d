package errors

import "fmt"

// ErrorCode represents a vnotes error code.
type ErrorCode string

const (
	ErrConfiguration  ErrorCode = "CONFIGURATION"   // missing/invalid local setup, fatal
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // bad CLI/tool arguments
	ErrNotFound       ErrorCode = "NOT_FOUND"       // unknown note
	ErrUpload         ErrorCode = "UPLOAD"          // object storage transport failure
	ErrTranscription  ErrorCode = "TRANSCRIPTION"   // job failed or timed out
	ErrSync           ErrorCode = "SYNC"            // planner API failure
	ErrInternal       ErrorCode = "INTERNAL"        // unexpected internal error
)

// PipelineError represents a structured error with code and details.
type PipelineError struct {
	Code    ErrorCode
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewConfiguration creates a configuration error. These are fatal and never retried.
func NewConfiguration(msg string) *PipelineError {
	return &PipelineError{
		Code:    ErrConfiguration,
		Message: msg,
	}
}

// NewInvalidRequest creates an error for invalid request parameters.
func NewInvalidRequest(msg string) *PipelineError {
	return &PipelineError{
		Code:    ErrInvalidRequest,
		Message: msg,
	}
}

// NewNotFound creates an error for when a note cannot be found.
func NewNotFound(name string) *PipelineError {
	return &PipelineError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("note not found: %s", name),
		Details: map[string]any{"name": name},
	}
}

// NewUpload creates an error for object storage failures.
func NewUpload(key string, err error) *PipelineError {
	return &PipelineError{
		Code:    ErrUpload,
		Message: fmt.Sprintf("upload of %q failed: %v", key, err),
		Details: map[string]any{"key": key},
	}
}

// NewTranscription creates an error for transcription job failures.
// Transcription errors are surfaced, never silently retried: a job the
// service rejected is unlikely to succeed without operator intervention.
func NewTranscription(job, reason string) *PipelineError {
	return &PipelineError{
		Code:    ErrTranscription,
		Message: fmt.Sprintf("transcription job %s: %s", job, reason),
		Details: map[string]any{"job": job},
	}
}

// NewSync creates an error for planner document API failures.
func NewSync(msg string) *PipelineError {
	return &PipelineError{
		Code:    ErrSync,
		Message: msg,
	}
}

// NewInternal creates an error for unexpected internal errors.
func NewInternal(err error) *PipelineError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &PipelineError{
		Code:    ErrInternal,
		Message: msg,
	}
}

// Is checks if an error is a PipelineError with the given code.
func Is(err error, code ErrorCode) bool {
	if pErr, ok := err.(*PipelineError); ok {
		return pErr.Code == code
	}
	return false
}
