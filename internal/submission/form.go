package submission

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/kozaktomas/attendance-kiosk/internal/backend"
	"github.com/kozaktomas/attendance-kiosk/internal/config"
	"github.com/kozaktomas/attendance-kiosk/internal/constants"
	"github.com/kozaktomas/attendance-kiosk/internal/roster"
)

// ValidationError is a local precondition failure. No request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// EmployeeForm is the enrollment form as typed by the admin.
type EmployeeForm struct {
	EmployeeID string `json:"employee_id" schema:"employee_id"`
	FullName   string `json:"full_name" schema:"full_name"`
	Email      string `json:"email" schema:"email"`
	Department string `json:"department" schema:"department"`
	Position   string `json:"position" schema:"position"`
}

// Normalize trims every field and tidies the name in place.
func (f *EmployeeForm) Normalize() {
	f.EmployeeID = strings.TrimSpace(f.EmployeeID)
	f.FullName = roster.CleanName(f.FullName)
	f.Email = strings.TrimSpace(f.Email)
	f.Department = strings.TrimSpace(f.Department)
	f.Position = strings.TrimSpace(f.Position)
}

// Validate checks that every field is filled in, the email parses and the
// department and position are catalog entries.
func (f *EmployeeForm) Validate(catalog *config.Catalog) error {
	required := []struct {
		name, value string
	}{
		{"employee_id", f.EmployeeID},
		{"full_name", f.FullName},
		{"email", f.Email},
		{"department", f.Department},
		{"position", f.Position},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ValidationError{Field: r.name, Message: constants.MsgMissingFields}
		}
	}

	if addr, err := mail.ParseAddress(f.Email); err != nil || addr.Address != f.Email {
		return &ValidationError{Field: "email", Message: "Please enter a valid email address"}
	}
	if catalog != nil {
		if !catalog.HasDepartment(f.Department) {
			return &ValidationError{Field: "department", Message: fmt.Sprintf("Unknown department %q", f.Department)}
		}
		if !catalog.HasPosition(f.Position) {
			return &ValidationError{Field: "position", Message: fmt.Sprintf("Unknown position %q", f.Position)}
		}
	}
	return nil
}

// Reset clears every field.
func (f *EmployeeForm) Reset() {
	*f = EmployeeForm{}
}

func (f *EmployeeForm) data() backend.EmployeeData {
	return backend.EmployeeData{
		EmployeeID: f.EmployeeID,
		FullName:   f.FullName,
		Email:      f.Email,
		Department: f.Department,
		Position:   f.Position,
	}
}
