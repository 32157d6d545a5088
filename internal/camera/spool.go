package camera

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	_ "golang.org/x/image/bmp"
)

// SpoolDevice reads frames that an external grabber (v4l2, ffmpeg -update,
// a vendor SDK) writes into a directory. The newest image file is the current frame.
type SpoolDevice struct {
	Dir    string
	Logger *slog.Logger
}

// NewSpoolDevice creates a spool device rooted at dir.
func NewSpoolDevice(dir string, logger *slog.Logger) *SpoolDevice {
	if logger == nil {
		logger = slog.Default()
	}
	return &SpoolDevice{Dir: dir, Logger: logger}
}

// Name implements Device.
func (d *SpoolDevice) Name() string {
	return "spool:" + d.Dir
}

// Open implements Device. The stream config is advisory: frames keep the
// dimensions the grabber wrote them with.
func (d *SpoolDevice) Open(ctx context.Context, cfg StreamConfig) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}

	info, err := os.Stat(d.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: no frame directory %s", ErrDeviceUnavailable, d.Dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrDeviceUnavailable, d.Dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}
	if err := watcher.Add(d.Dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("%w: watching %s: %w", ErrDeviceUnavailable, d.Dir, err)
	}

	s := &spoolStream{
		watcher: watcher,
		logger:  d.Logger,
		done:    make(chan struct{}),
	}
	if path, ok := newestFrameFile(d.Dir); ok {
		s.latest = path
	}

	go s.run()
	return s, nil
}

type spoolStream struct {
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	done    chan struct{}

	mu        sync.Mutex
	latest    string
	decoded   string
	frame     image.Image
	closeOnce sync.Once
}

func (s *spoolStream) run() {
	defer close(s.done)
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !isFrameFile(event.Name) {
				continue
			}
			s.mu.Lock()
			s.latest = event.Name
			s.decoded = ""
			s.mu.Unlock()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("Camera: spool watcher error", "error", err)
		}
	}
}

// Frame decodes the newest frame file. A file that is still being written and
// fails to decode keeps the previous frame.
func (s *spoolStream) Frame() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest == "" {
		return nil, ErrNoFrame
	}
	if s.decoded == s.latest && s.frame != nil {
		return s.frame, nil
	}

	img, err := decodeFrameFile(s.latest)
	if err != nil {
		if s.frame != nil {
			return s.frame, nil
		}
		return nil, err
	}
	s.frame = img
	s.decoded = s.latest
	return img, nil
}

func (s *spoolStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.watcher.Close()
		<-s.done
	})
	if err != nil {
		return fmt.Errorf("closing spool watcher: %w", err)
	}
	return nil
}

func decodeFrameFile(path string) (image.Image, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the configured spool directory
	if err != nil {
		return nil, fmt.Errorf("opening frame: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding frame %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

func isFrameFile(name string) bool {
	if strings.HasPrefix(filepath.Base(name), ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".bmp":
		return true
	default:
		return false
	}
}

// newestFrameFile returns the most recently modified frame file in dir.
func newestFrameFile(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}

	var (
		newest  string
		newestT time.Time
	)
	for _, e := range entries {
		if e.IsDir() || !isFrameFile(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestT) {
			newest = filepath.Join(dir, e.Name())
			newestT = info.ModTime()
		}
	}
	return newest, newest != ""
}
