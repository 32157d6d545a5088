package backend

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-05-01T09:12:33", time.Date(2024, 5, 1, 9, 12, 33, 0, time.UTC)},
		{"2024-05-01T09:12:33.5", time.Date(2024, 5, 1, 9, 12, 33, 500000000, time.UTC)},
		{"2024-05-01 09:12:33", time.Date(2024, 5, 1, 9, 12, 33, 0, time.UTC)},
		{"2024-05-01T14:12:33+05:00", time.Date(2024, 5, 1, 9, 12, 33, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			if err != nil {
				t.Fatalf("ParseTimestamp() error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got.Time, tt.want)
			}
		})
	}

	if _, err := ParseTimestamp("yesterday"); err == nil {
		t.Error("expected error for unparseable timestamp")
	}
}

func TestTimestamp_JSON(t *testing.T) {
	var v struct {
		At Timestamp `json:"at"`
	}
	if err := json.Unmarshal([]byte(`{"at": null}`), &v); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !v.At.IsZero() {
		t.Error("expected zero timestamp for null")
	}

	if err := json.Unmarshal([]byte(`{"at": "2024-05-01T09:12:33"}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"at":"2024-05-01T09:12:33Z"}` {
		t.Errorf("unexpected JSON %s", out)
	}

	if err := json.Unmarshal([]byte(`{"at": 12}`), &v); err == nil {
		t.Error("expected error for numeric timestamp")
	}
}

func TestStatus_Label(t *testing.T) {
	tests := map[Status]string{
		StatusOnTime:     "On Time",
		StatusLate:       "Late Arrival",
		StatusEarlyLeave: "Early Leave",
		StatusAbsent:     "Absent",
		Status("remote"): "remote",
	}
	for status, want := range tests {
		if got := status.Label(); got != want {
			t.Errorf("%s.Label() = %q, want %q", status, got, want)
		}
	}
}

func TestParseDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string detail", `{"detail": "Employee ID already exists"}`, "Employee ID already exists"},
		{"list detail", `{"detail": [{"msg": "field required"}]}`, "field required"},
		{"no detail", `{"error": "boom"}`, ""},
		{"not json", `Internal Server Error`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseDetail([]byte(tt.body)); got != tt.want {
				t.Errorf("parseDetail() = %q, want %q", got, tt.want)
			}
		})
	}
}
