package portal

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStale is returned when a response arrives after the view it was fetched
// for has been replaced by a newer navigation.
var ErrStale = errors.New("response superseded by a newer view")

// ErrNoSelection is returned when an execute action is triggered before a choice is armed.
var ErrNoSelection = errors.New("nothing selected")

// ErrNotFound is the message-less application error for missing resources.
var ErrNotFound = errors.New("not found")

// AppError is an application-level failure reported by the backend as
// {"success": false, "error": "..."}.
type AppError struct {
	Status  int    // HTTP status, 0 if unknown
	Message string // server string, verbatim
}

func (e *AppError) Error() string { return e.Message }

// Is makes a 404 AppError match ErrNotFound.
func (e *AppError) Is(target error) bool {
	return target == ErrNotFound && e.Status == 404
}

// TransportError is a network or decoding failure: no usable answer came back.
type TransportError struct {
	Op  string // e.g. "GET /api/stats"
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// ValidationError lists the required form fields left empty.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "Please fill in all required fields: " + strings.Join(e.Fields, ", ")
}

// Message maps any error to the inline message shown to the user.
// Application errors keep the server's text verbatim.
func Message(err error) string {
	var app *AppError
	var val *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &app) && app.Message != "":
		return app.Message
	case errors.As(err, &val):
		return val.Error()
	case errors.Is(err, ErrNoSelection):
		return "Please make a selection first."
	default:
		return "Failed to load data. Please try again."
	}
}

// LoadMessage is the message of the table error view.
func LoadMessage(err error) string {
	var app *AppError
	if errors.As(err, &app) && app.Message != "" {
		return "Error loading data: " + app.Message
	}
	return "Failed to load data. Please try again."
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	var t *TransportError
	return errors.As(err, &t)
}
