// Package kiosk coordinates the kiosk screen and the admin tabs: which view
// is active, the camera lifetime across views, and the admin gate.
package kiosk

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/kozaktomas/attendance-kiosk/internal/backend"
	"github.com/kozaktomas/attendance-kiosk/internal/capture"
	"github.com/kozaktomas/attendance-kiosk/internal/constants"
	"github.com/kozaktomas/attendance-kiosk/internal/export"
	"github.com/kozaktomas/attendance-kiosk/internal/roster"
	"github.com/kozaktomas/attendance-kiosk/internal/submission"
)

// Camera is the camera manager as seen by the controller.
type Camera interface {
	capture.Camera
	Start(ctx context.Context) error
}

// Records fetches attendance data for the admin tabs.
type Records interface {
	ListAttendance(ctx context.Context, date string) ([]backend.AttendanceRecord, error)
	EmployeeStatus(ctx context.Context, employeeID string) (*backend.EmployeeStatus, error)
}

// Options configure a Controller.
type Options struct {
	AdminUsername string
	AdminPassword string
	// PreserveBatchOnSwitch keeps enrollment frames when leaving the register tab.
	PreserveBatchOnSwitch bool
	Location              *time.Location
}

// Controller owns the kiosk's view state. It is the single place that stops
// the camera when the view changes.
type Controller struct {
	camera       Camera
	batch        *capture.Batch
	orchestrator *submission.Orchestrator
	roster       *roster.Roster
	records      Records
	gate         gate
	preserve     bool
	location     *time.Location
	logger       *slog.Logger

	mu          sync.Mutex
	view        View
	admin       bool
	loginError  string
	outcome     submission.Outcome
	notice      string
	cameraError string
	attendance  []backend.AttendanceRecord
	attDate     string
	form        submission.EmployeeForm
}

// NewController creates a controller showing the kiosk screen.
func NewController(cam Camera, batch *capture.Batch, orch *submission.Orchestrator, r *roster.Roster, records Records, opts Options, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	c := &Controller{
		camera:       cam,
		batch:        batch,
		orchestrator: orch,
		roster:       r,
		records:      records,
		gate:         gate{username: opts.AdminUsername, password: opts.AdminPassword},
		preserve:     opts.PreserveBatchOnSwitch,
		location:     loc,
		logger:       logger,
		view:         ViewKiosk,
	}
	orch.OnEnrolled = func(ctx context.Context) {
		if err := r.Refresh(ctx); err != nil {
			c.setNotice(constants.MsgEmployeesLoadFailed)
		}
	}
	return c
}

// View returns the active view.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Switch activates v. The camera is stopped first, whatever the capture
// progress; the enrollment batch is discarded unless configured otherwise.
func (c *Controller) Switch(ctx context.Context, v View) error {
	c.mu.Lock()
	if v.Admin() && !c.admin {
		c.mu.Unlock()
		return ErrAdminRequired
	}
	from := c.view
	c.view = v
	c.outcome = nil
	c.notice = ""
	c.cameraError = ""
	c.mu.Unlock()

	c.camera.Stop()
	if !c.preserve {
		c.batch.Reset()
	}
	c.logger.Info("Kiosk: view switched", "from", from, "to", v)

	if v == ViewEmployees {
		if err := c.RefreshRoster(ctx); err != nil {
			c.setNotice(constants.MsgEmployeesLoadFailed)
		}
	}
	return nil
}

// Login checks creds against the fixed admin credentials and clears them.
// A failure message is kept until the next attempt or DismissLoginError.
func (c *Controller) Login(creds *Credentials) error {
	ok := c.gate.check(creds)
	creds.Clear()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !ok {
		c.loginError = constants.MsgInvalidCredentials
		c.logger.Warn("Kiosk: admin login failed")
		return ErrInvalidCredentials
	}
	c.loginError = ""
	c.admin = true
	c.logger.Info("Kiosk: admin logged in")
	return nil
}

// RestoreAdmin reopens the admin gate for a session that already passed Login.
func (c *Controller) RestoreAdmin() {
	c.mu.Lock()
	c.admin = true
	c.mu.Unlock()
}

// DismissLoginError clears a retained login failure message.
func (c *Controller) DismissLoginError() {
	c.mu.Lock()
	c.loginError = ""
	c.mu.Unlock()
}

// Logout closes the admin gate and returns to the kiosk screen.
func (c *Controller) Logout(ctx context.Context) {
	c.mu.Lock()
	c.admin = false
	c.form.Reset()
	c.attendance = nil
	c.attDate = ""
	c.mu.Unlock()

	if err := c.Switch(ctx, ViewKiosk); err != nil {
		c.logger.Warn("Kiosk: switch on logout failed", "error", err)
	}
	c.batch.Reset()
}

// Admin reports whether the admin gate is open.
func (c *Controller) Admin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.admin
}

// StartCamera starts the camera for the active view. A failure is kept for
// display until the next attempt.
func (c *Controller) StartCamera(ctx context.Context) error {
	err := c.camera.Start(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.cameraError = UserMessage(err, err.Error())
		return err
	}
	c.cameraError = ""
	return nil
}

// StopCamera stops the camera. Safe when it is not running.
func (c *Controller) StopCamera() {
	c.camera.Stop()
}

// Verify captures and submits one verification frame. The outcome is kept
// for display until dismissed; the camera keeps running.
func (c *Controller) Verify(ctx context.Context) (submission.Outcome, error) {
	out, err := c.orchestrator.Verify(ctx, c.camera)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.outcome = out
	c.mu.Unlock()
	return out, nil
}

// Outcome returns the verification result on display, or nil.
func (c *Controller) Outcome() submission.Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcome
}

// DismissOutcome closes the result display without touching the camera.
func (c *Controller) DismissOutcome() {
	c.mu.Lock()
	c.outcome = nil
	c.mu.Unlock()
}

// CaptureEnrollment adds the current frame to the enrollment batch. The batch
// is frozen while a registration is in flight.
func (c *Controller) CaptureEnrollment() (*capture.Frame, error) {
	if _, enrolling := c.orchestrator.Pending(); enrolling {
		return nil, submission.ErrSubmissionInFlight
	}
	frame, err := c.batch.Capture()
	if err != nil {
		return nil, err
	}
	if c.batch.Len() == constants.MaxBatch {
		c.setNotice(constants.MsgBatchComplete)
	}
	return frame, nil
}

// RemoveFrame drops the i-th enrollment frame. The camera is not restarted.
func (c *Controller) RemoveFrame(i int) error {
	if _, enrolling := c.orchestrator.Pending(); enrolling {
		return submission.ErrSubmissionInFlight
	}
	if err := c.batch.Remove(i); err != nil {
		return err
	}
	c.setNotice("")
	return nil
}

// ResetBatch discards the enrollment batch and stops the camera.
func (c *Controller) ResetBatch() {
	c.batch.Reset()
	c.setNotice("")
}

// Batch returns the enrollment batch for reading.
func (c *Controller) Batch() *capture.Batch {
	return c.batch
}

// Form returns a copy of the last enrollment form kept after a failed submission.
func (c *Controller) Form() submission.EmployeeForm {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// Enroll registers an employee with the current batch. On failure the form
// is kept so it can be shown again for a retry.
func (c *Controller) Enroll(ctx context.Context, form submission.EmployeeForm) (string, error) {
	_, err := c.orchestrator.Enroll(ctx, &form, c.batch)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = form
	if err != nil {
		return "", err
	}
	c.notice = constants.MsgRegistered
	return constants.MsgRegistered, nil
}

// RefreshRoster reloads the employee list.
func (c *Controller) RefreshRoster(ctx context.Context) error {
	return c.roster.Refresh(ctx)
}

// Roster returns the employee roster.
func (c *Controller) Roster() *roster.Roster {
	return c.roster
}

// DeleteEmployee removes an employee and reloads the roster. It returns the
// notice to show; a failed reload is appended to it, never turned into an error.
func (c *Controller) DeleteEmployee(ctx context.Context, employeeID string) (string, error) {
	if err := c.roster.Delete(ctx, employeeID); err != nil {
		return "", err
	}
	msg := constants.MsgEmployeeDeleted
	if c.roster.RefreshErr() != nil {
		msg += ". " + constants.MsgEmployeesLoadFailed
	}
	c.setNotice(msg)
	return msg, nil
}

// LoadAttendance fetches attendance records, optionally for one date, and
// keeps them for export.
func (c *Controller) LoadAttendance(ctx context.Context, date string) ([]backend.AttendanceRecord, error) {
	records, err := c.records.ListAttendance(ctx, date)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.attendance = records
	c.attDate = date
	c.mu.Unlock()
	return records, nil
}

// Attendance returns the loaded attendance records and their date filter.
func (c *Controller) Attendance() ([]backend.AttendanceRecord, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]backend.AttendanceRecord, len(c.attendance))
	copy(out, c.attendance)
	return out, c.attDate
}

// ExportAttendance writes the loaded records as CSV without contacting the
// backend and returns the download file name.
func (c *Controller) ExportAttendance(w io.Writer) (string, error) {
	records, date := c.Attendance()
	if err := export.WriteCSV(w, records, c.location); err != nil {
		return "", fmt.Errorf("exporting attendance: %w", err)
	}
	return export.Filename(date), nil
}

// EmployeeStatus fetches aggregated statistics for one employee.
func (c *Controller) EmployeeStatus(ctx context.Context, employeeID string) (*backend.EmployeeStatus, error) {
	return c.records.EmployeeStatus(ctx, employeeID)
}

// Location returns the display time zone.
func (c *Controller) Location() *time.Location {
	return c.location
}

// Close stops the camera and discards the batch. Call it when the kiosk shuts down.
func (c *Controller) Close() {
	c.camera.Stop()
	c.batch.Reset()
	c.logger.Info("Kiosk: closed")
}

func (c *Controller) setNotice(msg string) {
	c.mu.Lock()
	c.notice = msg
	c.mu.Unlock()
}

// State is a snapshot of what the screen shows.
type State struct {
	View         View                     `json:"view"`
	Admin        bool                     `json:"admin"`
	CameraActive bool                     `json:"camera_active"`
	CameraError  string                   `json:"camera_error,omitempty"`
	LoginError   string                   `json:"login_error,omitempty"`
	Notice       string                   `json:"notice,omitempty"`
	Batch        BatchState               `json:"batch"`
	Outcome      *OutcomeView             `json:"outcome,omitempty"`
	Verifying    bool                     `json:"verifying"`
	Enrolling    bool                     `json:"enrolling"`
	Form         *submission.EmployeeForm `json:"form,omitempty"`
}

// BatchState describes the enrollment batch.
type BatchState struct {
	State       capture.State `json:"state"`
	Count       int           `json:"count"`
	Min         int           `json:"min"`
	Max         int           `json:"max"`
	Submittable bool          `json:"submittable"`
	Frames      []FrameView   `json:"frames"`
}

// FrameView is a captured frame as listed on screen.
type FrameView struct {
	Index     int       `json:"index"`
	ID        string    `json:"id"`
	Preview   string    `json:"preview_url"`
	CreatedAt time.Time `json:"created_at"`
}

// OutcomeView is a verification outcome as rendered on screen.
type OutcomeView struct {
	Kind         string  `json:"kind"`
	Message      string  `json:"message"`
	EmployeeID   string  `json:"employee_id,omitempty"`
	EmployeeName string  `json:"employee_name,omitempty"`
	Time         string  `json:"time,omitempty"`
	Status       string  `json:"status,omitempty"`
	StatusLabel  string  `json:"status_label,omitempty"`
	Similarity   float64 `json:"similarity,omitempty"`
}

// NewOutcomeView renders out with times shown in loc.
func NewOutcomeView(out submission.Outcome, loc *time.Location) *OutcomeView {
	if out == nil {
		return nil
	}
	v := &OutcomeView{Kind: out.Kind(), Message: out.Message()}
	if m, ok := out.(submission.Matched); ok {
		v.EmployeeID = m.EmployeeID
		v.EmployeeName = m.EmployeeName
		v.Status = string(m.Status)
		v.StatusLabel = m.Status.Label()
		v.Similarity = m.Similarity
		if !m.Timestamp.IsZero() {
			v.Time = m.Timestamp.In(loc).Format("Jan 2, 2006 3:04:05 PM")
		}
	}
	return v
}

// State returns a snapshot of the screen state.
func (c *Controller) State() State {
	frames := c.batch.Frames()
	views := make([]FrameView, len(frames))
	for i, f := range frames {
		views[i] = FrameView{Index: i, ID: f.ID, Preview: f.PreviewURL(), CreatedAt: f.CreatedAt}
	}
	verifying, enrolling := c.orchestrator.Pending()
	active := c.camera.Active()
	batchState := c.batch.State()

	c.mu.Lock()
	defer c.mu.Unlock()
	s := State{
		View:         c.view,
		Admin:        c.admin,
		CameraActive: active,
		CameraError:  c.cameraError,
		LoginError:   c.loginError,
		Notice:       c.notice,
		Batch: BatchState{
			State:       batchState,
			Count:       len(frames),
			Min:         constants.MinBatch,
			Max:         constants.MaxBatch,
			Submittable: capture.IsSubmittable(len(frames)),
			Frames:      views,
		},
		Outcome:   NewOutcomeView(c.outcome, c.location),
		Verifying: verifying,
		Enrolling: enrolling,
	}
	if c.form != (submission.EmployeeForm{}) {
		form := c.form
		s.Form = &form
	}
	return s
}
