package backend

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/url"
	"time"

	"github.com/kozaktomas/attendance-kiosk/internal/constants"
)

// DateLayout is the format of the attendance date filter.
const DateLayout = "2006-01-02"

// MarkAttendance submits one verification frame.
func (c *Client) MarkAttendance(ctx context.Context, img Image) (*MarkResult, error) {
	return doMultipartJSON[MarkResult](ctx, c, "attendance/mark", func(w *multipart.Writer) error {
		return addImage(w, constants.FieldImage, img)
	})
}

// ListAttendance returns attendance records, optionally limited to one day (YYYY-MM-DD).
func (c *Client) ListAttendance(ctx context.Context, date string) ([]AttendanceRecord, error) {
	endpoint := "admin/attendance"
	if date != "" {
		if _, err := time.Parse(DateLayout, date); err != nil {
			return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
		}
		endpoint += "?" + url.Values{"date": {date}}.Encode()
	}

	result, err := doGetJSON[[]AttendanceRecord](ctx, c, endpoint)
	if err != nil {
		return nil, err
	}
	return *result, nil
}
