package opentherm

import "fmt"

// Role identifies which end of the link produced a frame
type Role uint8

const (
	// Controller is the master (room thermostat)
	Controller Role = iota
	// Responder is the slave (boiler)
	Responder
)

// Roles lists both roles in a stable order
var Roles = []Role{Controller, Responder}

// String returns the role name
func (r Role) String() string {
	switch r {
	case Controller:
		return "controller"
	case Responder:
		return "responder"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// Suffix returns the one-letter suffix used in topics and ids
func (r Role) Suffix() string {
	if r == Controller {
		return "m"
	}
	return "s"
}

// MarshalText implements encoding.TextMarshaler
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// ParseRole accepts "controller"/"master"/"m" and "responder"/"slave"/"s"
func ParseRole(s string) (Role, error) {
	switch s {
	case "controller", "master", "m":
		return Controller, nil
	case "responder", "slave", "s":
		return Responder, nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}
