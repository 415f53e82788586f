// Package apierr maps domain errors onto JSON error bodies for the HTTP API
package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mcoot/crossword-extravaganza/internal/model"
)

// Error codes returned in the "code" field
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodePuzzleNotFound = "PUZZLE_NOT_FOUND"
	CodeMatchNotFound  = "MATCH_NOT_FOUND"
	CodeResultNotFound = "RESULT_NOT_FOUND"
	CodeNotFound       = "NOT_FOUND"
	CodeUnavailable    = "UNAVAILABLE"
	CodeInternalError  = "INTERNAL_ERROR"
)

// APIError is the body of an error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope every error response uses
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Error is an APIError paired with its HTTP status. The CLI client also
// returns it for error responses it receives.
type Error struct {
	Status int
	APIError
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

func newError(status int, code, message string) *Error {
	return &Error{Status: status, APIError: APIError{Code: code, Message: message}}
}

var (
	errInternal = newError(http.StatusInternalServerError, CodeInternalError, "Internal server error")

	// checked in order with errors.Is
	domainErrors = []struct {
		target error
		err    *Error
	}{
		{model.ErrPuzzleNotFound, newError(http.StatusNotFound, CodePuzzleNotFound, "Puzzle not found")},
		{model.ErrMatchNotFound, newError(http.StatusNotFound, CodeMatchNotFound, "Match not found")},
		{model.ErrResultNotFound, newError(http.StatusNotFound, CodeResultNotFound, "Result not found")},
		{model.ErrInvalidPlayerID, newError(http.StatusBadRequest, CodeInvalidRequest, "Invalid player id")},
		{model.ErrNoPuzzles, newError(http.StatusServiceUnavailable, CodeUnavailable, "No puzzles loaded")},
	}
)

// From converts err to an *Error. Unknown errors become INTERNAL_ERROR.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	for _, d := range domainErrors {
		if errors.Is(err, d.target) {
			return d.err
		}
	}
	return errInternal
}

// WriteError writes err as a JSON error response
func WriteError(w http.ResponseWriter, err error) {
	e := From(err)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: e.APIError})
}

// NewInvalidRequestError reports a malformed request
func NewInvalidRequestError(message string) error {
	return newError(http.StatusBadRequest, CodeInvalidRequest, message)
}

// NewNotFoundError reports an unknown route
func NewNotFoundError() error {
	return newError(http.StatusNotFound, CodeNotFound, "Not found")
}

// NewInternalError reports an unexpected failure without detail
func NewInternalError() error {
	return errInternal
}
