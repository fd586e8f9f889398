package response

import (
	"errors"
	"fmt"
)

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error Codes
type ErrCode string

var (
	FAILED_REQUEST ErrCode = "REQUEST_FAILED"
	BAD_REQUEST    ErrCode = "FAILED_TO_DECODE"
	VALIDATION     ErrCode = "VALIDATION_FAILED"
	NOT_FOUND      ErrCode = "NOT_FOUND"
	LOCKED         ErrCode = "LOCKED"
	CONFLICT       ErrCode = "CONFLICT"
	INVALID_STATE  ErrCode = "INVALID_STATE"
)

var (
	ErrBadRequest   = errors.New("bad request")
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("resource not found")
	ErrLocked       = errors.New("resource is locked")
	ErrConflict     = errors.New("calendar conflict")
	ErrInvalidState = errors.New("operation not allowed in current status")
)

func Error(code, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    code,
			Message: msg,
		},
	}
}

// StateError carries the booking's current status so the caller can
// resync its view after a rejected transition.
type StateError struct {
	Status string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("operation not allowed from status %q", e.Status)
}

func (e *StateError) Unwrap() error { return ErrInvalidState }

// ConflictError carries what the candidate time range collided with.
type ConflictError struct {
	SlotStatus string
	BookingID  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("time range overlaps a %s slot (booking %s)", e.SlotStatus, e.BookingID)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// ValidationError names the offending field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	return fmt.Sprintf("%s is required", e.Field)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
