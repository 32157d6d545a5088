// Package camera owns the kiosk's video device. A Manager hands out at most one
// live Session at a time and is the only place a device stream is opened or closed.
package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrDeviceUnavailable is returned when the device is missing or access is denied.
	ErrDeviceUnavailable = errors.New("camera device unavailable")

	// ErrStartAborted is returned by Start when Stop was called while the device was opening.
	ErrStartAborted = errors.New("camera stopped while starting")

	// ErrSessionClosed is returned when reading from a released session.
	ErrSessionClosed = errors.New("camera session closed")

	// ErrNoFrame is returned by a stream that has not produced a frame yet.
	ErrNoFrame = errors.New("no frame available yet")
)

// StreamConfig is the preferred stream shape requested from a device.
type StreamConfig struct {
	Width  int
	Height int
	Facing string // "user" for the front camera, "environment" for the rear one
}

// Device opens video streams.
type Device interface {
	Name() string
	Open(ctx context.Context, cfg StreamConfig) (Stream, error)
}

// Stream is an open device handle producing frames on demand.
type Stream interface {
	// Frame returns the most recent frame. The image must not be modified.
	Frame() (image.Image, error)
	Close() error
}

// Session is the live binding between the kiosk and an open stream.
// It is released exactly once, by its Manager.
type Session struct {
	stream    Stream
	device    string
	startedAt time.Time

	once     sync.Once
	closed   atomic.Bool
	closeErr error
}

func newSession(device string, stream Stream) *Session {
	return &Session{stream: stream, device: device, startedAt: time.Now()}
}

// Active reports whether the session still holds its stream.
func (s *Session) Active() bool {
	return s != nil && !s.closed.Load()
}

// Frame returns the current frame of the underlying stream.
func (s *Session) Frame() (image.Image, error) {
	if !s.Active() {
		return nil, ErrSessionClosed
	}
	img, err := s.stream.Frame()
	if err != nil {
		return nil, fmt.Errorf("reading frame: %w", err)
	}
	return img, nil
}

// Device returns the name of the device the session was opened on.
func (s *Session) Device() string {
	return s.device
}

// StartedAt returns when the stream was opened.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

func (s *Session) release() error {
	s.once.Do(func() {
		s.closed.Store(true)
		s.closeErr = s.stream.Close()
	})
	return s.closeErr
}

// Manager guards a Device so that at most one stream is open at a time.
type Manager struct {
	device Device
	config StreamConfig
	logger *slog.Logger

	mu         sync.Mutex
	session    *Session
	generation uint64
	pending    chan struct{}
	lastErr    error
}

// NewManager creates a manager for device. A nil logger uses slog.Default().
func NewManager(device Device, cfg StreamConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{device: device, config: cfg, logger: logger}
}

// Start opens the device. Starting an active manager is a no-op. Concurrent
// callers wait for the in-flight open and share its result.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.session.Active() {
		m.mu.Unlock()
		return nil
	}
	if pending := m.pending; pending != nil {
		m.mu.Unlock()
		select {
		case <-pending:
		case <-ctx.Done():
			return fmt.Errorf("waiting for camera: %w", ctx.Err())
		}
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.sharedResultLocked()
	}

	gen := m.generation
	pending := make(chan struct{})
	m.pending = pending
	m.mu.Unlock()

	stream, err := m.device.Open(ctx, m.config)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = nil
	defer close(pending)

	if err != nil {
		if !errors.Is(err, ErrDeviceUnavailable) {
			err = fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
		}
		m.lastErr = err
		m.logger.Warn("Camera: start failed", "device", m.device.Name(), "error", err)
		return err
	}

	if m.generation != gen {
		// Stop ran while the device was opening; the handle must not outlive it.
		if cerr := stream.Close(); cerr != nil {
			m.logger.Warn("Camera: closing aborted stream failed", "device", m.device.Name(), "error", cerr)
		}
		m.lastErr = ErrStartAborted
		return ErrStartAborted
	}

	m.session = newSession(m.device.Name(), stream)
	m.lastErr = nil
	m.logger.Info("Camera: session started", "device", m.device.Name(),
		"width", m.config.Width, "height", m.config.Height, "facing", m.config.Facing)
	return nil
}

// sharedResultLocked is what a caller that waited on another Start sees. A
// successful open that Stop already released counts as aborted.
func (m *Manager) sharedResultLocked() error {
	switch {
	case m.session.Active():
		return nil
	case m.lastErr != nil:
		return m.lastErr
	default:
		return ErrStartAborted
	}
}

// Stop releases the active session, if any. Calling Stop on an inactive
// manager is a no-op. A Start still opening the device is aborted.
func (m *Manager) Stop() {
	m.mu.Lock()
	m.generation++
	s := m.session
	m.session = nil
	m.mu.Unlock()

	if s == nil {
		return
	}
	if err := s.release(); err != nil {
		m.logger.Warn("Camera: release failed", "device", s.device, "error", err)
		return
	}
	m.logger.Info("Camera: session stopped", "device", s.device, "duration", time.Since(s.startedAt).Round(time.Millisecond))
}

// Active reports whether a session is open.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Active()
}

// Session returns the active session or nil.
func (m *Manager) Session() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.session.Active() {
		return nil
	}
	return m.session
}

// Frame reads the current frame from the active session.
func (m *Manager) Frame() (image.Image, error) {
	s := m.Session()
	if s == nil {
		return nil, ErrSessionClosed
	}
	return s.Frame()
}

// DeviceName returns the name of the managed device.
func (m *Manager) DeviceName() string {
	return m.device.Name()
}

// Config returns the stream configuration requested on Start.
func (m *Manager) Config() StreamConfig {
	return m.config
}
