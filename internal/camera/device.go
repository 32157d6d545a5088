package camera

import (
	"fmt"
	"log/slog"

	"github.com/kozaktomas/attendance-kiosk/internal/config"
)

// NewDevice builds the device selected by the camera config.
func NewDevice(cfg config.CameraConfig, logger *slog.Logger) (Device, error) {
	switch cfg.Driver {
	case "spool", "":
		return NewSpoolDevice(cfg.Dir, logger), nil
	case "pattern":
		return &PatternDevice{}, nil
	default:
		return nil, fmt.Errorf("unknown camera driver %q (expected spool or pattern)", cfg.Driver)
	}
}

// StreamConfigFrom converts the camera config into the preferred stream shape.
func StreamConfigFrom(cfg config.CameraConfig) StreamConfig {
	return StreamConfig{Width: cfg.Width, Height: cfg.Height, Facing: cfg.Facing}
}
