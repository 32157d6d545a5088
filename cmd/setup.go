package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kozaktomas/attendance-kiosk/internal/backend"
	"github.com/kozaktomas/attendance-kiosk/internal/camera"
	"github.com/kozaktomas/attendance-kiosk/internal/config"
	"github.com/kozaktomas/attendance-kiosk/internal/journal"
	"github.com/kozaktomas/attendance-kiosk/internal/logger"
)

// journalOff disables the local journal when used as KIOSK_JOURNAL_URL.
const journalOff = "off"

// defaultFrameWait bounds how long CLI commands wait for the first camera frame.
const defaultFrameWait = 10 * time.Second

// setupLogging installs the process logger. The returned func closes the log file.
func setupLogging(cfg *config.Config) (*slog.Logger, func(), error) {
	if cfg.Log.File == "" {
		return logger.Setup(cfg.Log.Level, os.Stderr, nil), func() {}, nil
	}
	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return logger.Setup(cfg.Log.Level, os.Stderr, f), func() { f.Close() }, nil
}

// newBackend connects to the attendance backend, saving responses when --capture is set.
func newBackend(cfg *config.Config, log *slog.Logger) (*backend.Client, error) {
	client, err := backend.New(cfg.API.URL,
		backend.WithTimeout(cfg.API.Timeout),
		backend.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}
	if captureDir != "" {
		if err := client.SetCaptureDir(captureDir); err != nil {
			return nil, fmt.Errorf("failed to set capture directory: %w", err)
		}
		fmt.Printf("Saving backend responses to %s\n", captureDir)
	}
	return client, nil
}

// newCamera builds the camera manager for the configured driver.
func newCamera(cfg *config.Config, log *slog.Logger) (*camera.Manager, error) {
	device, err := camera.NewDevice(cfg.Camera, log)
	if err != nil {
		return nil, err
	}
	return camera.NewManager(device, camera.StreamConfigFrom(cfg.Camera), log), nil
}

// openJournal opens the local journal, or returns nil when it is turned off.
func openJournal(ctx context.Context, cfg *config.Config, log *slog.Logger) (*journal.Store, error) {
	if strings.EqualFold(cfg.Journal.URL, journalOff) {
		return nil, nil
	}
	store, err := journal.Open(ctx, cfg.Journal.URL, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return store, nil
}

// waitForFrame starts the camera and blocks until it produces a frame.
// A spool device has no frame until the grabber writes its first file.
func waitForFrame(ctx context.Context, cam *camera.Manager, timeout time.Duration) error {
	if err := cam.Start(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		_, err := cam.Frame()
		if err == nil {
			return nil
		}
		if !errors.Is(err, camera.ErrNoFrame) {
			return err
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for first camera frame: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
