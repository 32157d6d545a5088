package config

import (
	_ "embed"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

type Config struct {
	API     APIConfig
	Admin   AdminConfig
	Camera  CameraConfig
	Kiosk   KioskConfig
	Journal JournalConfig
	Log     LogConfig
	Web     WebConfig
	Catalog Catalog
}

type APIConfig struct {
	URL     string        `default:"http://localhost:8000"`
	Timeout time.Duration `default:"30s"`
}

// AdminConfig holds the fixed credentials of the admin screen gate.
type AdminConfig struct {
	Username string `default:"admin"`
	Password string `default:"admin123"`
}

type CameraConfig struct {
	Driver string `default:"spool"` // spool or pattern
	Dir    string `default:"/var/lib/attendance-kiosk/frames"`
	Width  int    `default:"640"`
	Height int    `default:"480"`
	Facing string `default:"user"`
}

type KioskConfig struct {
	Timezone string `default:"Asia/Karachi"`
	// PreserveBatchOnSwitch keeps captured enrollment frames when leaving the register tab
	PreserveBatchOnSwitch bool `default:"false"`
}

type JournalConfig struct {
	URL string `default:"attendance-kiosk.db"` // sqlite path, postgres:// or mysql:// URL; "off" disables
}

type LogConfig struct {
	Level string `default:"info"`
	File  string
}

type WebConfig struct {
	Host           string `default:"0.0.0.0"`
	Port           int    `default:"8080"`
	SessionSecret  string
	AllowedOrigins []string
}

// Catalog lists the department and position options offered by the enrollment form.
type Catalog struct {
	Departments []string `yaml:"departments" json:"departments"`
	Positions   []string `yaml:"positions" json:"positions"`
}

// HasDepartment reports whether d is a known department. An empty catalog accepts anything.
func (c *Catalog) HasDepartment(d string) bool {
	return len(c.Departments) == 0 || slices.Contains(c.Departments, d)
}

// HasPosition reports whether p is a known position. An empty catalog accepts anything.
func (c *Catalog) HasPosition(p string) bool {
	return len(c.Positions) == 0 || slices.Contains(c.Positions, p)
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envString returns the env var value or the default when unset or empty.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envDuration parses values like "30s" or "2m". Invalid values keep the default.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return defaultVal
}

func envList(key string) []string {
	var out []string
	for item := range strings.SplitSeq(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// LoadCatalog parses the embedded department and position catalog.
func LoadCatalog() Catalog {
	var catalog Catalog
	if err := yaml.Unmarshal(catalogYAML, &catalog); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded catalog.yaml: " + err.Error())
	}
	return catalog
}

func Load() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		panic("failed to apply config defaults: " + err.Error())
	}

	cfg.API.URL = strings.TrimRight(envString("KIOSK_API_URL", cfg.API.URL), "/")
	cfg.API.Timeout = envDuration("KIOSK_API_TIMEOUT", cfg.API.Timeout)
	cfg.Admin.Username = envString("KIOSK_ADMIN_USERNAME", cfg.Admin.Username)
	cfg.Admin.Password = envString("KIOSK_ADMIN_PASSWORD", cfg.Admin.Password)
	cfg.Camera.Driver = envString("KIOSK_CAMERA", cfg.Camera.Driver)
	cfg.Camera.Dir = envString("KIOSK_CAMERA_DIR", cfg.Camera.Dir)
	cfg.Camera.Width = envInt("KIOSK_CAMERA_WIDTH", cfg.Camera.Width)
	cfg.Camera.Height = envInt("KIOSK_CAMERA_HEIGHT", cfg.Camera.Height)
	cfg.Camera.Facing = envString("KIOSK_CAMERA_FACING", cfg.Camera.Facing)
	cfg.Kiosk.Timezone = envString("KIOSK_TIMEZONE", cfg.Kiosk.Timezone)
	cfg.Kiosk.PreserveBatchOnSwitch = envBool("KIOSK_PRESERVE_BATCH_ON_SWITCH", cfg.Kiosk.PreserveBatchOnSwitch)
	cfg.Journal.URL = envString("KIOSK_JOURNAL_URL", cfg.Journal.URL)
	cfg.Log.Level = envString("KIOSK_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = os.Getenv("KIOSK_LOG_FILE")
	cfg.Web.Host = envString("WEB_HOST", cfg.Web.Host)
	cfg.Web.Port = envInt("WEB_PORT", cfg.Web.Port)
	cfg.Web.SessionSecret = os.Getenv("WEB_SESSION_SECRET")
	cfg.Web.AllowedOrigins = envList("WEB_ALLOWED_ORIGINS")
	cfg.Catalog = LoadCatalog()

	return cfg
}

// Location returns the display time zone, falling back to UTC when the zone is unknown.
func (c *KioskConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
