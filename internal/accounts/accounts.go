package accounts

import (
	"errors"
	"strings"
)

var (
	ErrInvalidPlatform = errors.New("invalid platform")
	ErrInvalidUsername = errors.New("invalid username")
	ErrNotLinked       = errors.New("account not linked")
	ErrPersistence     = errors.New("account store failure")
)

// Platform is the gaming service a Rocket League account lives on
type Platform string

const (
	Steam Platform = "steam"
	Epic  Platform = "epic"
	PSN   Platform = "psn"
	XBL   Platform = "xbl"
)

// Platforms lists every recognised platform in display order
var Platforms = []Platform{Steam, Epic, PSN, XBL}

// ParsePlatform normalises s and checks it against the recognised platforms
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", ErrInvalidPlatform
	}
	return p, nil
}

// Valid reports whether p is one of the recognised platforms
func (p Platform) Valid() bool {
	switch p {
	case Steam, Epic, PSN, XBL:
		return true
	}
	return false
}

// Display returns the upper-case label shown to users
func (p Platform) Display() string {
	return strings.ToUpper(string(p))
}

// LinkedAccount ties a Discord user to a Rocket League account
type LinkedAccount struct {
	OwnerID  string
	Platform Platform
	Username string
}
