package camera

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
)

// PatternDevice produces synthetic frames. It backs the demo mode and tests.
type PatternDevice struct {
	// Err, when set, is returned from Open as if access were denied.
	Err error

	opens atomic.Int64
	open  atomic.Int64
}

// Name implements Device.
func (d *PatternDevice) Name() string {
	return "pattern"
}

// Open implements Device.
func (d *PatternDevice) Open(ctx context.Context, cfg StreamConfig) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}
	if d.Err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, d.Err)
	}
	w, h := cfg.Width, cfg.Height
	if w <= 0 || h <= 0 {
		w, h = 640, 480
	}
	s := &patternStream{device: d, width: w, height: h}
	d.opens.Add(1)
	d.open.Add(1)
	return s, nil
}

// Opens returns how many streams were ever opened.
func (d *PatternDevice) Opens() int {
	return int(d.opens.Load())
}

// OpenStreams returns how many streams are currently open.
func (d *PatternDevice) OpenStreams() int {
	return int(d.open.Load())
}

type patternStream struct {
	device *PatternDevice
	width  int
	height int

	mu     sync.Mutex
	tick   int
	closed bool
}

// Frame draws a gradient with a bar that moves one step per call.
func (s *patternStream) Frame() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	s.tick++

	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	bar := (s.tick * 16) % s.width
	for y := range s.height {
		for x := range s.width {
			c := color.RGBA{
				R: uint8(x * 255 / s.width),
				G: uint8(y * 255 / s.height),
				B: 128,
				A: 255,
			}
			if x >= bar && x < bar+8 {
				c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img, nil
}

func (s *patternStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.device.open.Add(-1)
	return nil
}
