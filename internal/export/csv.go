// Package export writes loaded attendance records as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/kozaktomas/attendance-kiosk/internal/backend"
)

const (
	dateLayout = "1/2/2006"
	timeLayout = "3:04:05 PM"
)

// Header is the first CSV row.
var Header = []string{"Date", "Time", "Employee ID", "Employee Name", "Status"}

// WriteCSV writes records in the given order with times shown in loc.
// Records without a timestamp get empty Date and Time cells.
func WriteCSV(w io.Writer, records []backend.AttendanceRecord, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range records {
		var date, clock string
		if !r.Timestamp.IsZero() {
			local := r.Timestamp.In(loc)
			date = local.Format(dateLayout)
			clock = local.Format(timeLayout)
		}
		row := []string{date, clock, r.EmployeeID, r.EmployeeName, string(r.Status)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// Filename returns the download name for records of date, or of all dates when date is empty.
func Filename(date string) string {
	if date == "" {
		date = "all"
	}
	return "attendance_" + date + ".csv"
}
