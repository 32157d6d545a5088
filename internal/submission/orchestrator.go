// Package submission sends captured frames to the backend and turns the
// answers into user-visible results.
package submission

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/kozaktomas/attendance-kiosk/internal/backend"
	"github.com/kozaktomas/attendance-kiosk/internal/capture"
	"github.com/kozaktomas/attendance-kiosk/internal/config"
	"github.com/kozaktomas/attendance-kiosk/internal/constants"
	"github.com/kozaktomas/attendance-kiosk/internal/journal"
)

// ErrSubmissionInFlight is returned when a submission of the same kind is still pending.
var ErrSubmissionInFlight = errors.New(constants.MsgSubmissionPending)

// Backend is the part of the backend client the orchestrator uses.
type Backend interface {
	MarkAttendance(ctx context.Context, img backend.Image) (*backend.MarkResult, error)
	RegisterEmployee(ctx context.Context, data backend.EmployeeData, images []backend.Image) (*backend.RegisterResult, error)
}

// Journal records submission results.
type Journal interface {
	Record(ctx context.Context, e journal.Entry) error
}

// Orchestrator runs verification and enrollment submissions. At most one
// submission of each kind is in flight at a time.
type Orchestrator struct {
	backend  Backend
	capturer *capture.Capturer
	catalog  *config.Catalog
	journal  Journal
	logger   *slog.Logger

	// OnEnrolled runs after a successful enrollment, e.g. to refresh the roster.
	OnEnrolled func(ctx context.Context)

	verifying atomic.Bool
	enrolling atomic.Bool
}

// New creates an orchestrator. journal may be nil.
func New(b Backend, capturer *capture.Capturer, catalog *config.Catalog, j Journal, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{backend: b, capturer: capturer, catalog: catalog, journal: j, logger: logger}
}

// Verify captures one frame from src and submits it for matching.
// Capture failures are returned as errors; every backend answer, including
// an unreachable backend, is an Outcome. The camera is never stopped here.
func (o *Orchestrator) Verify(ctx context.Context, src capture.Source) (Outcome, error) {
	if !o.verifying.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInFlight
	}
	defer o.verifying.Store(false)

	frame, err := o.capturer.Capture(src, capture.VerificationQuality)
	if err != nil {
		return nil, err
	}
	defer frame.Release()

	result, err := o.backend.MarkAttendance(ctx, backend.Image{
		Filename: constants.VerificationFilename,
		Data:     frame.Data,
	})

	var out Outcome
	switch {
	case err == nil:
		out = matchedFrom(result)
	case backend.IsTransportError(err):
		out = TransportError{Reason: constants.MsgFaceNotRecognized, Err: err}
	default:
		reason := backend.Detail(err)
		if reason == "" {
			reason = constants.MsgFaceNotRecognized
		}
		out = Unmatched{Reason: reason}
	}

	o.logger.Info("Submission: verification finished", "outcome", out.Kind())
	if err != nil {
		o.logger.Debug("Submission: verification error", "error", err)
	}
	o.record(ctx, verificationEntry(out))
	return out, nil
}

// Enroll validates form and batch, then registers the employee with the
// batch frames in capture order. On success the submitted frames are dropped
// from the batch, the form is reset and OnEnrolled runs. On any failure both
// are left untouched.
func (o *Orchestrator) Enroll(ctx context.Context, form *EmployeeForm, batch *capture.Batch) (*backend.RegisterResult, error) {
	if !o.enrolling.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInFlight
	}
	defer o.enrolling.Store(false)

	frames := batch.Frames()
	if !capture.IsSubmittable(len(frames)) {
		return nil, &ValidationError{Field: "images", Message: constants.MsgNeedMoreImages}
	}
	form.Normalize()
	if err := form.Validate(o.catalog); err != nil {
		return nil, err
	}

	images := make([]backend.Image, len(frames))
	for i, f := range frames {
		images[i] = backend.Image{Filename: f.Filename, Data: f.Data}
	}

	result, err := o.backend.RegisterEmployee(ctx, form.data(), images)
	if err != nil {
		o.logger.Warn("Submission: enrollment failed", "employee_id", form.EmployeeID, "error", err)
		msg := backend.Detail(err)
		if msg == "" {
			msg = constants.MsgRegistrationFailed
		}
		o.record(ctx, journal.Entry{Kind: journal.KindEnrollment, Result: journal.ResultRejected, EmployeeID: form.EmployeeID, Message: msg})
		return nil, err
	}

	o.record(ctx, journal.Entry{Kind: journal.KindEnrollment, Result: journal.ResultRegistered, EmployeeID: form.EmployeeID, Message: constants.MsgRegistered})
	batch.Discard(frames)
	form.Reset()
	if o.OnEnrolled != nil {
		o.OnEnrolled(ctx)
	}
	return result, nil
}

// Pending reports whether a verification or an enrollment is in flight.
func (o *Orchestrator) Pending() (verifying, enrolling bool) {
	return o.verifying.Load(), o.enrolling.Load()
}

func (o *Orchestrator) record(ctx context.Context, e journal.Entry) {
	if o.journal == nil {
		return
	}
	if err := o.journal.Record(context.WithoutCancel(ctx), e); err != nil {
		o.logger.Warn("Submission: journal write failed", "error", err)
	}
}

func verificationEntry(out Outcome) journal.Entry {
	e := journal.Entry{Kind: journal.KindVerification, Message: out.Message()}
	switch v := out.(type) {
	case Matched:
		e.Result = journal.ResultMatched
		e.EmployeeID = v.EmployeeID
	case Unmatched:
		e.Result = journal.ResultUnmatched
	case TransportError:
		e.Result = journal.ResultTransport
	}
	return e
}
