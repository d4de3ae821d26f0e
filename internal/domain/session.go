// Package domain contains entities without logic, just meta-data.
package domain

import (
	"unicode"
	"unicode/utf8"
)

// ConnID identifies one live transport connection. Assigned by the
// transport layer at upgrade time and never reused; a reconnect gets a
// fresh one.
type ConnID string

type Avatar struct {
	Initial string `json:"initial"`
	Color   string `json:"color"`
}

// avatarColors is a fixed palette; the index is derived from the
// display name so the same name always maps to the same color.
var avatarColors = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#FFA07A", "#98D8C8",
	"#F7DC6F", "#BB8FCE", "#85C1E2", "#F8B739", "#52B788",
}

// AvatarFor derives a stable avatar from a display name: the
// upper-cased first rune and a palette color keyed by that rune.
func AvatarFor(name string) Avatar {
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		r = '?'
	}
	return Avatar{
		Initial: string(unicode.ToUpper(r)),
		Color:   avatarColors[int(r)%len(avatarColors)],
	}
}

// Session binds one live connection to an identity. Presence in the
// registry is the online state; there is no offline record.
type Session struct {
	ID        ConnID `json:"id"`
	DeviceKey string `json:"deviceKey"`
	Name      string `json:"name"`
	Avatar    Avatar `json:"avatar"`
	Online    bool   `json:"online"`
}

func NewSession(id ConnID, deviceKey, name string) *Session {
	return &Session{
		ID:        id,
		DeviceKey: deviceKey,
		Name:      name,
		Avatar:    AvatarFor(name),
		Online:    true,
	}
}
