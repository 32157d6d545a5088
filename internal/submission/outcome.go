package submission

import (
	"fmt"

	"github.com/kozaktomas/attendance-kiosk/internal/backend"
)

// Outcome is the terminal, user-visible result of a verification.
// It is one of Matched, Unmatched or TransportError.
type Outcome interface {
	// Kind names the variant: matched, unmatched or transport_error.
	Kind() string
	// Message is the text shown to the user.
	Message() string
	outcome()
}

// Matched means the backend recognized the face and logged attendance.
type Matched struct {
	EmployeeID    string
	EmployeeName  string
	Timestamp     backend.Timestamp
	Status        backend.Status
	StatusMessage string
	Similarity    float64
}

// Unmatched means the backend answered but did not accept the frame.
type Unmatched struct {
	Reason string
}

// TransportError means the backend could not be reached.
type TransportError struct {
	Reason string
	Err    error
}

func (Matched) outcome()        {}
func (Unmatched) outcome()      {}
func (TransportError) outcome() {}

func (Matched) Kind() string        { return "matched" }
func (Unmatched) Kind() string      { return "unmatched" }
func (TransportError) Kind() string { return "transport_error" }

func (m Matched) Message() string {
	if m.StatusMessage != "" {
		return m.StatusMessage
	}
	return fmt.Sprintf("Attendance marked for %s (%s)", m.EmployeeName, m.Status.Label())
}

func (u Unmatched) Message() string      { return u.Reason }
func (t TransportError) Message() string { return t.Reason }

func matchedFrom(r *backend.MarkResult) Matched {
	return Matched{
		EmployeeID:    r.EmployeeID,
		EmployeeName:  r.EmployeeName,
		Timestamp:     r.Timestamp,
		Status:        r.Status,
		StatusMessage: r.StatusMessage,
		Similarity:    r.Similarity,
	}
}
