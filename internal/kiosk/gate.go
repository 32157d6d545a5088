package kiosk

import (
	"crypto/subtle"
	"errors"

	"github.com/kozaktomas/attendance-kiosk/internal/constants"
)

// ErrInvalidCredentials is returned by Login on a username or password mismatch.
var ErrInvalidCredentials = errors.New(constants.MsgInvalidCredentials)

// ErrAdminRequired is returned when switching to an admin view without logging in.
var ErrAdminRequired = errors.New("admin login required")

// Credentials is a login attempt. Login clears it.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Clear drops the credential strings.
func (c *Credentials) Clear() {
	c.Username = ""
	c.Password = ""
}

// gate is the fixed-credential admin check. It is a screen gate, not authentication.
type gate struct {
	username string
	password string
}

func (g gate) check(c *Credentials) bool {
	if c.Username == "" || c.Password == "" || g.username == "" || g.password == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(c.Username), []byte(g.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(c.Password), []byte(g.password)) == 1
	return userOK && passOK
}
