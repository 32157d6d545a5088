// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Enrollment batch constants
const (
	// MinBatch is the minimum number of face images required to register an employee
	MinBatch = 3

	// MaxBatch is the number of face images after which capture closes automatically
	MaxBatch = 5
)

// Encoding constants
const (
	// EnrollmentQuality is the JPEG quality used for enrollment frames
	EnrollmentQuality = 90

	// VerificationQuality is the JPEG quality used for verification frames.
	// Matching accuracy benefits from the extra fidelity.
	VerificationQuality = 95

	// MaxImageSize is the maximum dimension (width or height) of an encoded frame
	MaxImageSize = 1920
)

// Camera constants
const (
	// DefaultCameraWidth is the preferred capture width
	DefaultCameraWidth = 640

	// DefaultCameraHeight is the preferred capture height
	DefaultCameraHeight = 480

	// DefaultFacingMode asks for the front (user-facing) camera
	DefaultFacingMode = "user"

	// PreviewFPS is the rate at which preview frames are pushed to the browser
	PreviewFPS = 5
)

// Multipart field and file names expected by the backend
const (
	FieldImage        = "image"
	FieldImages       = "images"
	FieldEmployeeData = "employee_data"

	// VerificationFilename is the file name of the single verification frame
	VerificationFilename = "attendance.jpg"

	// CapturePrefix prefixes enrollment frame names (capture_<unix-ms>.jpg)
	CapturePrefix = "capture_"
)

// User-visible messages
const (
	MsgBatchComplete        = "5 images captured! Ready to register."
	MsgNeedMoreImages       = "Please capture at least 3 face images"
	MsgMissingFields        = "Please fill in all required fields"
	MsgRegistered           = "Employee registered successfully!"
	MsgRegistrationFailed   = "Failed to register employee"
	MsgFaceNotRecognized    = "Failed to mark attendance. Face not recognized."
	MsgInvalidCredentials   = "Invalid username or password"
	MsgEmployeesLoadFailed  = "Failed to load employees"
	MsgEmployeeDeleted      = "Employee deleted successfully"
	MsgEmployeeDeleteFailed = "Failed to delete employee"
	MsgAttendanceLoadFailed = "Failed to load attendance records"
	MsgStatusLoadFailed     = "Failed to load employee status"
	MsgCameraFailedFormat   = "Failed to access camera: %s. Please check camera permissions."
	MsgSubmissionPending    = "A submission is already in progress"
)

// Journal constants
const (
	// DefaultJournalLimit is the number of journal entries returned when no limit is given
	DefaultJournalLimit = 50

	// MaxRecentRecords mirrors the backend's cap on recent records per employee
	MaxRecentRecords = 10
)
