// Package capture turns camera frames into encoded images and accumulates
// them into enrollment batches.
package capture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"strconv"
	"sync"
	"time"

	"github.com/kozaktomas/attendance-kiosk/internal/camera"
	"github.com/kozaktomas/attendance-kiosk/internal/constants"
	"golang.org/x/image/draw"
)

var (
	// ErrNoActiveSession is returned when capturing without a running camera.
	ErrNoActiveSession = errors.New("no active camera session")

	// ErrEncodeFailure is returned when the current frame cannot be read or encoded.
	ErrEncodeFailure = errors.New("failed to encode frame")
)

// Quality is a JPEG quality in the range 1-100.
type Quality int

const (
	EnrollmentQuality   Quality = constants.EnrollmentQuality
	VerificationQuality Quality = constants.VerificationQuality
)

// Source is a camera that can be asked for its current frame.
type Source interface {
	Active() bool
	Frame() (image.Image, error)
}

// Frame is one captured, encoded image.
type Frame struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Data      []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Preview   string    `json:"preview,omitempty"`

	previews *PreviewStore
	once     sync.Once
}

// PreviewURL returns the path the UI renders the frame from.
func (f *Frame) PreviewURL() string {
	if f.Preview == "" {
		return ""
	}
	return PreviewPath + f.Preview
}

// Release frees the frame's display handle. Safe to call more than once.
func (f *Frame) Release() {
	f.once.Do(func() {
		if f.previews != nil && f.Preview != "" {
			f.previews.Release(f.Preview)
		}
	})
}

// Capturer copies the current camera frame into a raster buffer and encodes it.
// Captures are serialized; the raster buffer is reused between calls.
type Capturer struct {
	previews *PreviewStore
	maxSize  int
	now      func() time.Time

	mu     sync.Mutex
	raster *image.RGBA
	lastMS int64
}

// NewCapturer creates a capturer. A nil store disables display handles.
func NewCapturer(previews *PreviewStore) *Capturer {
	return &Capturer{
		previews: previews,
		maxSize:  constants.MaxImageSize,
		now:      time.Now,
	}
}

// Capture grabs the current frame of src and encodes it as JPEG at quality q.
func (c *Capturer) Capture(src Source, q Quality) (*Frame, error) {
	if src == nil || !src.Active() {
		return nil, ErrNoActiveSession
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	img, err := src.Frame()
	if err != nil {
		if errors.Is(err, camera.ErrSessionClosed) {
			return nil, ErrNoActiveSession
		}
		return nil, fmt.Errorf("%w: %w", ErrEncodeFailure, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("%w: frame has no pixels", ErrEncodeFailure)
	}

	if c.raster == nil || c.raster.Bounds().Dx() != bounds.Dx() || c.raster.Bounds().Dy() != bounds.Dy() {
		c.raster = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	}
	draw.Draw(c.raster, c.raster.Bounds(), img, bounds.Min, draw.Src)

	out := c.fit(c.raster)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: int(q)}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeFailure, err)
	}

	now := c.now()
	id := constants.CapturePrefix + strconv.FormatInt(c.nextMillis(now), 10)
	frame := &Frame{
		ID:        id,
		Filename:  id + ".jpg",
		Data:      buf.Bytes(),
		CreatedAt: now,
		Width:     out.Bounds().Dx(),
		Height:    out.Bounds().Dy(),
		previews:  c.previews,
	}
	if c.previews != nil {
		frame.Preview = c.previews.Put(frame.Data)
	}
	return frame, nil
}

// fit scales the raster down to maxSize on its longest side, keeping aspect ratio.
func (c *Capturer) fit(src *image.RGBA) image.Image {
	width, height := src.Bounds().Dx(), src.Bounds().Dy()
	if c.maxSize <= 0 || (width <= c.maxSize && height <= c.maxSize) {
		return src
	}

	var newWidth, newHeight int
	if width > height {
		newWidth = c.maxSize
		newHeight = max(1, int(float64(height)*float64(c.maxSize)/float64(width)))
	} else {
		newHeight = c.maxSize
		newWidth = max(1, int(float64(width)*float64(c.maxSize)/float64(height)))
	}

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), src, src.Bounds(), draw.Over, nil)
	return resized
}

// nextMillis derives a capture ID from the clock, bumping it when two
// captures land in the same millisecond.
func (c *Capturer) nextMillis(now time.Time) int64 {
	ms := now.UnixMilli()
	if ms <= c.lastMS {
		ms = c.lastMS + 1
	}
	c.lastMS = ms
	return ms
}
