package capture

import (
	"errors"
	"testing"

	"github.com/kozaktomas/attendance-kiosk/internal/camera"
)

func newTestBatch(t *testing.T) (*Batch, *camera.Manager, *PreviewStore) {
	t.Helper()
	cam := startedCamera(t, 16, 12)
	previews := NewPreviewStore()
	return NewBatch(cam, NewCapturer(previews), testLogger()), cam, previews
}

func captureN(t *testing.T, b *Batch, n int) []*Frame {
	t.Helper()
	frames := make([]*Frame, 0, n)
	for i := range n {
		f, err := b.Capture()
		if err != nil {
			t.Fatalf("capture %d: %v", i+1, err)
		}
		frames = append(frames, f)
	}
	return frames
}

func TestIsSubmittable(t *testing.T) {
	for n := range 6 {
		if got, want := IsSubmittable(n), n >= 3; got != want {
			t.Errorf("IsSubmittable(%d) = %v, want %v", n, got, want)
		}
	}
}

func TestBatch_StateProgression(t *testing.T) {
	b, cam, _ := newTestBatch(t)

	want := []State{StatePartial, StatePartial, StateSubmittable, StateSubmittable, StateFull}
	if got := b.State(); got != StateCapturing {
		t.Fatalf("expected capturing before first frame, got %s", got)
	}
	for i, w := range want {
		captureN(t, b, 1)
		if got := b.State(); got != w {
			t.Errorf("after %d frames: expected %s, got %s", i+1, w, got)
		}
		if b.Submittable() != (i+1 >= 3) {
			t.Errorf("after %d frames: unexpected submittable=%v", i+1, b.Submittable())
		}
	}
	if cam.Active() {
		t.Error("expected camera stopped at a full batch")
	}
}

func TestBatch_State_EmptyWithoutCamera(t *testing.T) {
	b, cam, _ := newTestBatch(t)
	cam.Stop()

	if got := b.State(); got != StateEmpty {
		t.Errorf("expected empty, got %s", got)
	}
}

func TestBatch_Capture_SixthFrameRejected(t *testing.T) {
	b, cam, _ := newTestBatch(t)
	captureN(t, b, 5)

	_, err := b.Capture()
	if !errors.Is(err, ErrBatchFull) {
		t.Fatalf("expected ErrBatchFull, got %v", err)
	}
	if b.Len() != 5 {
		t.Errorf("expected 5 frames, got %d", b.Len())
	}
	if cam.Active() {
		t.Error("expected camera to stay stopped")
	}
}

func TestBatch_Remove_FromFull(t *testing.T) {
	b, cam, previews := newTestBatch(t)
	captureN(t, b, 5)

	if err := b.Remove(0); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if got := b.State(); got != StateSubmittable {
		t.Errorf("expected submittable, got %s", got)
	}
	if cam.Active() {
		t.Error("expected camera not to restart on removal")
	}
	if previews.Len() != 4 {
		t.Errorf("expected 4 live previews, got %d", previews.Len())
	}

	// Without a camera the next capture has no session.
	if _, err := b.Capture(); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("expected ErrNoActiveSession, got %v", err)
	}
}

func TestBatch_Remove_ThenCapture_AppendsAtEnd(t *testing.T) {
	b, _, _ := newTestBatch(t)
	frames := captureN(t, b, 3)

	if err := b.Remove(1); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	added := captureN(t, b, 1)[0]

	got := b.Frames()
	if len(got) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(got))
	}
	if got[0] != frames[0] || got[1] != frames[2] || got[2] != added {
		t.Errorf("expected order [f0 f2 new], got %v", []string{got[0].ID, got[1].ID, got[2].ID})
	}
}

func TestBatch_Remove_OutOfRange(t *testing.T) {
	b, _, _ := newTestBatch(t)
	captureN(t, b, 2)

	for _, i := range []int{-1, 2, 10} {
		if err := b.Remove(i); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Remove(%d): expected ErrIndexOutOfRange, got %v", i, err)
		}
	}
	if b.Len() != 2 {
		t.Errorf("expected batch untouched, got %d frames", b.Len())
	}
}

func TestBatch_Reset(t *testing.T) {
	b, cam, previews := newTestBatch(t)
	captureN(t, b, 4)

	b.Reset()

	if b.Len() != 0 {
		t.Errorf("expected empty batch, got %d", b.Len())
	}
	if previews.Len() != 0 {
		t.Errorf("expected all previews released, %d left", previews.Len())
	}
	if cam.Active() {
		t.Error("expected camera stopped")
	}
	if got := b.State(); got != StateEmpty {
		t.Errorf("expected empty state, got %s", got)
	}

	// Reset is always safe.
	b.Reset()
}

func TestBatch_Clear_KeepsCamera(t *testing.T) {
	b, cam, previews := newTestBatch(t)
	captureN(t, b, 3)

	b.Clear()

	if b.Len() != 0 || previews.Len() != 0 {
		t.Errorf("expected cleared batch, len=%d previews=%d", b.Len(), previews.Len())
	}
	if !cam.Active() {
		t.Error("expected camera to keep running")
	}
	if got := b.State(); got != StateCapturing {
		t.Errorf("expected capturing, got %s", got)
	}
}

func TestBatch_Discard_KeepsLaterFrames(t *testing.T) {
	b, cam, previews := newTestBatch(t)
	submitted := captureN(t, b, 3)
	later := captureN(t, b, 1)[0]

	b.Discard(submitted)

	frames := b.Frames()
	if len(frames) != 1 || frames[0] != later {
		t.Fatalf("frames after Discard = %v, want only the later frame", frames)
	}
	if previews.Len() != 1 {
		t.Errorf("previews left = %d, want 1", previews.Len())
	}
	if _, ok := previews.Get(later.Preview); !ok {
		t.Error("later frame's preview should survive")
	}
	if !cam.Active() {
		t.Error("expected camera to keep running")
	}
	if got := b.State(); got != StatePartial {
		t.Errorf("expected partial, got %s", got)
	}
}

func TestBatch_Frames_IsSnapshot(t *testing.T) {
	b, _, _ := newTestBatch(t)
	captureN(t, b, 2)

	snap := b.Frames()
	snap[0] = nil

	if b.Frames()[0] == nil {
		t.Error("expected snapshot mutation not to affect the batch")
	}
}

func TestState_String(t *testing.T) {
	if StateSubmittable.String() != "submittable" {
		t.Errorf("unexpected name %q", StateSubmittable.String())
	}
	if State(42).String() != "State(42)" {
		t.Errorf("unexpected fallback %q", State(42).String())
	}
}
