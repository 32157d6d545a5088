package kiosk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kozaktomas/attendance-kiosk/internal/backend"
	"github.com/kozaktomas/attendance-kiosk/internal/camera"
	"github.com/kozaktomas/attendance-kiosk/internal/capture"
	"github.com/kozaktomas/attendance-kiosk/internal/constants"
	"github.com/kozaktomas/attendance-kiosk/internal/submission"
)

// UserMessage maps err to the text shown on screen. Server detail messages
// are shown verbatim; anything unrecognized falls back to fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var verr *submission.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.Is(err, submission.ErrSubmissionInFlight):
		return constants.MsgSubmissionPending
	case errors.Is(err, ErrInvalidCredentials):
		return constants.MsgInvalidCredentials
	case errors.Is(err, ErrAdminRequired):
		return "Please log in as admin first"
	case errors.Is(err, camera.ErrDeviceUnavailable):
		return fmt.Sprintf(constants.MsgCameraFailedFormat, cameraReason(err))
	case errors.Is(err, camera.ErrStartAborted):
		return "Camera was stopped before it finished starting"
	case errors.Is(err, capture.ErrNoActiveSession):
		return "Please start the camera first"
	case errors.Is(err, capture.ErrEncodeFailure):
		return "Failed to capture image. Please try again."
	case errors.Is(err, capture.ErrBatchFull):
		return constants.MsgBatchComplete
	case errors.Is(err, capture.ErrIndexOutOfRange):
		return "That image no longer exists"
	}

	if detail := backend.Detail(err); detail != "" {
		return detail
	}
	return fallback
}

func cameraReason(err error) string {
	reason := strings.TrimPrefix(err.Error(), camera.ErrDeviceUnavailable.Error())
	reason = strings.TrimPrefix(reason, ": ")
	if reason == "" {
		return camera.ErrDeviceUnavailable.Error()
	}
	return reason
}
