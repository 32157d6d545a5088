package kiosk

import "fmt"

// View is a screen of the kiosk.
type View string

const (
	ViewKiosk      View = "kiosk"
	ViewRegister   View = "register"
	ViewEmployees  View = "employees"
	ViewAttendance View = "attendance"
	ViewStatus     View = "status"
)

// AdminViews are the tabs behind the admin gate, in display order.
var AdminViews = []View{ViewRegister, ViewEmployees, ViewAttendance, ViewStatus}

// Admin reports whether v requires an admin login.
func (v View) Admin() bool {
	return v != ViewKiosk
}

// ParseView validates a view name.
func ParseView(s string) (View, error) {
	v := View(s)
	if v == ViewKiosk {
		return v, nil
	}
	for _, a := range AdminViews {
		if v == a {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown view %q", s)
}
