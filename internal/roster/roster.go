// Package roster caches the employee list shown on the admin screen.
package roster

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kozaktomas/attendance-kiosk/internal/backend"
)

// Source lists and deletes employees.
type Source interface {
	ListEmployees(ctx context.Context) ([]backend.Employee, error)
	DeleteEmployee(ctx context.Context, employeeID string) error
}

// Roster holds the most recently fetched employee list.
type Roster struct {
	source Source
	logger *slog.Logger

	mu         sync.RWMutex
	employees  []backend.Employee
	loadedAt   time.Time
	refreshErr error
}

// New creates an empty roster backed by source.
func New(source Source, logger *slog.Logger) *Roster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Roster{source: source, logger: logger}
}

// Refresh reloads the employee list. On failure the previous list is kept.
func (r *Roster) Refresh(ctx context.Context) error {
	employees, err := r.source.ListEmployees(ctx)
	if err != nil {
		r.logger.Warn("Roster: refresh failed", "error", err)
		err = fmt.Errorf("listing employees: %w", err)
		r.mu.Lock()
		r.refreshErr = err
		r.mu.Unlock()
		return err
	}

	r.mu.Lock()
	r.employees = employees
	r.loadedAt = time.Now()
	r.refreshErr = nil
	r.mu.Unlock()

	r.logger.Debug("Roster: refreshed", "employees", len(employees))
	return nil
}

// Employees returns a copy of the cached list in backend order.
func (r *Roster) Employees() []backend.Employee {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]backend.Employee, len(r.employees))
	copy(out, r.employees)
	return out
}

// RefreshErr returns the error of the last failed reload, or nil once a
// reload succeeds.
func (r *Roster) RefreshErr() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.refreshErr
}

// LoadedAt returns when the list was last fetched; zero if never.
func (r *Roster) LoadedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadedAt
}

// Find returns the cached employee with the given ID.
func (r *Roster) Find(employeeID string) (backend.Employee, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.employees {
		if e.EmployeeID == employeeID {
			return e, true
		}
	}
	return backend.Employee{}, false
}

// Delete removes an employee on the backend and reloads the list. Once the
// backend delete succeeds the result is success; a failed reload only leaves
// the stale list in place and is reported by RefreshErr.
func (r *Roster) Delete(ctx context.Context, employeeID string) error {
	if err := r.source.DeleteEmployee(ctx, employeeID); err != nil {
		return fmt.Errorf("deleting employee %s: %w", employeeID, err)
	}
	if err := r.Refresh(ctx); err != nil {
		r.logger.Warn("Roster: reload after delete failed", "employee_id", employeeID, "error", err)
	}
	return nil
}

// Filter returns cached employees whose name, ID, email or department contains
// query, ignoring case and diacritics. An empty query returns everything.
func (r *Roster) Filter(query string) []backend.Employee {
	q := FoldName(query)
	if q == "" {
		return r.Employees()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []backend.Employee
	for _, e := range r.employees {
		for _, field := range []string{e.FullName, e.EmployeeID, e.Email, e.Department} {
			if strings.Contains(FoldName(field), q) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}
