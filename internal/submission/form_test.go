package submission

import (
	"errors"
	"testing"

	"github.com/kozaktomas/attendance-kiosk/internal/config"
	"github.com/kozaktomas/attendance-kiosk/internal/constants"
)

func TestEmployeeForm_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(f *EmployeeForm)
		catalog   *config.Catalog
		wantField string
		wantMsg   string
	}{
		{name: "valid", mutate: func(*EmployeeForm) {}},
		{name: "missing id", mutate: func(f *EmployeeForm) { f.EmployeeID = "" }, wantField: "employee_id", wantMsg: constants.MsgMissingFields},
		{name: "blank name", mutate: func(f *EmployeeForm) { f.FullName = "   " }, wantField: "full_name", wantMsg: constants.MsgMissingFields},
		{name: "missing position", mutate: func(f *EmployeeForm) { f.Position = "" }, wantField: "position", wantMsg: constants.MsgMissingFields},
		{name: "bad email", mutate: func(f *EmployeeForm) { f.Email = "not-an-email" }, wantField: "email"},
		{name: "display name email", mutate: func(f *EmployeeForm) { f.Email = "Ayesha <ayesha@example.com>" }, wantField: "email"},
		{name: "unknown department", mutate: func(f *EmployeeForm) { f.Department = "Catering" }, wantField: "department"},
		{name: "unknown position", mutate: func(f *EmployeeForm) { f.Position = "Astronaut" }, wantField: "position"},
		{name: "empty catalog accepts anything", mutate: func(f *EmployeeForm) { f.Department = "Catering" }, catalog: &config.Catalog{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			f.Normalize()
			tt.mutate(f)
			catalog := tt.catalog
			if catalog == nil {
				catalog = testCatalog()
			}

			err := f.Validate(catalog)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("Field = %s, want %s", verr.Field, tt.wantField)
			}
			if tt.wantMsg != "" && verr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", verr.Message, tt.wantMsg)
			}
		})
	}
}

func TestEmployeeForm_Normalize(t *testing.T) {
	f := &EmployeeForm{
		EmployeeID: " E7 ",
		FullName:   "  Zoë \t Ağa ",
		Email:      " zoe@example.com ",
		Department: " Finance",
		Position:   "Accountant ",
	}
	f.Normalize()

	want := EmployeeForm{EmployeeID: "E7", FullName: "Zoë Ağa", Email: "zoe@example.com", Department: "Finance", Position: "Accountant"}
	if *f != want {
		t.Errorf("Normalize() = %+v, want %+v", *f, want)
	}
}

func TestOutcome_Kinds(t *testing.T) {
	outcomes := map[string]Outcome{
		"matched":         Matched{EmployeeName: "Bilal", Status: "on-time"},
		"unmatched":       Unmatched{Reason: "no"},
		"transport_error": TransportError{Reason: "offline"},
	}
	for kind, out := range outcomes {
		if out.Kind() != kind {
			t.Errorf("Kind() = %s, want %s", out.Kind(), kind)
		}
		if out.Message() == "" {
			t.Errorf("%s: empty Message()", kind)
		}
	}
	if got := (Matched{EmployeeName: "Bilal", Status: "on-time"}).Message(); got != "Attendance marked for Bilal (On Time)" {
		t.Errorf("Matched.Message() = %q", got)
	}
}
