package capture

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kozaktomas/attendance-kiosk/internal/constants"
)

var (
	// ErrBatchFull is returned when capturing into a batch that already holds MaxBatch frames.
	ErrBatchFull = errors.New("capture batch is full")

	// ErrIndexOutOfRange is returned by Remove for an index outside the batch.
	ErrIndexOutOfRange = errors.New("frame index out of range")
)

// State is the enrollment capture state.
type State int

const (
	StateEmpty       State = iota // no frames, camera off
	StateCapturing                // no frames, camera on
	StatePartial                  // 1 to MinBatch-1 frames
	StateSubmittable              // MinBatch to MaxBatch-1 frames
	StateFull                     // MaxBatch frames, camera stopped
)

var stateNames = map[State]string{
	StateEmpty:       "empty",
	StateCapturing:   "capturing",
	StatePartial:     "partial",
	StateSubmittable: "submittable",
	StateFull:        "full",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Camera is the part of the camera manager a batch needs.
type Camera interface {
	Source
	Stop()
}

// Batch accumulates enrollment frames in capture order. It is the only
// writer of its frame list; callers read snapshots.
type Batch struct {
	camera   Camera
	capturer *Capturer
	logger   *slog.Logger

	mu     sync.Mutex
	frames []*Frame
	state  State
}

// NewBatch creates an empty batch capturing from cam.
func NewBatch(cam Camera, capturer *Capturer, logger *slog.Logger) *Batch {
	if logger == nil {
		logger = slog.Default()
	}
	return &Batch{camera: cam, capturer: capturer, logger: logger}
}

// settle recomputes the state. Callers hold b.mu.
func (b *Batch) settle() {
	n := len(b.frames)
	switch {
	case n >= constants.MaxBatch:
		b.state = StateFull
	case n >= constants.MinBatch:
		b.state = StateSubmittable
	case n > 0:
		b.state = StatePartial
	case b.camera.Active():
		b.state = StateCapturing
	default:
		b.state = StateEmpty
	}
}

// State returns the current capture state.
func (b *Batch) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.settle()
	return b.state
}

// Len returns the number of frames in the batch.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.frames)
}

// Submittable reports whether the batch holds at least MinBatch frames.
func (b *Batch) Submittable() bool {
	return IsSubmittable(b.Len())
}

// IsSubmittable reports whether n frames are enough to register an employee.
func IsSubmittable(n int) bool {
	return n >= constants.MinBatch
}

// Frames returns a snapshot of the frames in capture order.
func (b *Batch) Frames() []*Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Frame, len(b.frames))
	copy(out, b.frames)
	return out
}

// Capture appends the current camera frame. Reaching MaxBatch stops the camera.
// Captures are strictly sequential; a second call waits for the first.
func (b *Batch) Capture() (*Frame, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.frames) >= constants.MaxBatch {
		return nil, ErrBatchFull
	}

	frame, err := b.capturer.Capture(b.camera, EnrollmentQuality)
	if err != nil {
		return nil, err
	}
	b.frames = append(b.frames, frame)

	if len(b.frames) == constants.MaxBatch {
		b.camera.Stop()
		b.logger.Info("Batch: complete, camera stopped", "frames", len(b.frames))
	}
	b.settle()
	return frame, nil
}

// Remove deletes the frame at index i and releases its display handle.
// The camera is not restarted.
func (b *Batch) Remove(i int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i < 0 || i >= len(b.frames) {
		return fmt.Errorf("%w: %d (batch has %d)", ErrIndexOutOfRange, i, len(b.frames))
	}
	b.frames[i].Release()
	b.frames = append(b.frames[:i], b.frames[i+1:]...)
	b.settle()
	return nil
}

// Clear drops every frame and releases their display handles, leaving the camera as is.
func (b *Batch) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearLocked()
	b.settle()
}

// Discard drops the given frames, typically the snapshot that was just
// submitted, and keeps any frame captured since. The camera is left as is.
func (b *Batch) Discard(frames []*Frame) {
	drop := make(map[*Frame]struct{}, len(frames))
	for _, f := range frames {
		drop[f] = struct{}{}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.frames[:0]
	for _, f := range b.frames {
		if _, ok := drop[f]; ok {
			f.Release()
			continue
		}
		kept = append(kept, f)
	}
	clear(b.frames[len(kept):])
	b.frames = kept
	b.settle()
}

// Reset drops every frame and stops the camera. Always safe.
func (b *Batch) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearLocked()
	b.camera.Stop()
	b.settle()
}

func (b *Batch) clearLocked() {
	for _, f := range b.frames {
		f.Release()
	}
	b.frames = nil
}
