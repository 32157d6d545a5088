package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Image is one file part of a multipart upload.
type Image struct {
	Filename string
	Data     []byte
}

// EmployeeData is the employee record sent as the employee_data form field.
type EmployeeData struct {
	EmployeeID string `json:"employee_id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Position   string `json:"position"`
}

// Employee is a registered employee as listed by the backend.
type Employee struct {
	ID         string    `json:"_id"`
	EmployeeID string    `json:"employee_id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	Position   string    `json:"position"`
	CreatedAt  Timestamp `json:"created_at"`
}

// MarkResult is the backend's answer to a recognized face.
type MarkResult struct {
	Message       string    `json:"message"`
	EmployeeID    string    `json:"employee_id"`
	EmployeeName  string    `json:"employee_name"`
	Timestamp     Timestamp `json:"timestamp"`
	Status        Status    `json:"status"`
	StatusMessage string    `json:"status_message"`
	Similarity    float64   `json:"similarity"`
}

// RegisterResult acknowledges an enrollment.
type RegisterResult struct {
	Message string `json:"message"`
}

// AttendanceRecord is one attendance entry.
type AttendanceRecord struct {
	EmployeeID   string    `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	Timestamp    Timestamp `json:"timestamp"`
	Status       Status    `json:"status"`
}

// StatusRecord is an entry of EmployeeStatus.RecentRecords.
type StatusRecord struct {
	Timestamp Timestamp `json:"timestamp"`
	Status    Status    `json:"status"`
}

// EmployeeStatus holds aggregated attendance statistics for one employee.
type EmployeeStatus struct {
	EmployeeID      string         `json:"employee_id"`
	EmployeeName    string         `json:"employee_name"`
	TotalDays       int            `json:"total_days"`
	PresentCount    int            `json:"present_count"`
	LateCount       int            `json:"late_count"`
	EarlyLeaveCount int            `json:"early_leave_count"`
	AbsentCount     int            `json:"absent_count"`
	AttendanceRate  float64        `json:"attendance_rate"`
	RecentRecords   []StatusRecord `json:"recent_records"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Status is an attendance status as computed by the backend.
type Status string

const (
	StatusOnTime     Status = "on-time"
	StatusLate       Status = "late"
	StatusEarlyLeave Status = "early-leave"
	StatusAbsent     Status = "absent"
)

// Label returns the display text for a status. Unknown statuses are shown as is.
func (s Status) Label() string {
	switch s {
	case StatusOnTime:
		return "On Time"
	case StatusLate:
		return "Late Arrival"
	case StatusEarlyLeave:
		return "Early Leave"
	case StatusAbsent:
		return "Absent"
	default:
		return string(s)
	}
}

// naiveLayouts are the timestamp formats the backend emits without a zone. They are UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Timestamp accepts RFC 3339 and zone-less ISO 8601 times.
type Timestamp struct {
	time.Time
}

// ParseTimestamp parses a backend timestamp.
func ParseTimestamp(s string) (Timestamp, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Timestamp{t}, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return Timestamp{t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}
