package gameserver

import (
	"fmt"

	"github.com/cfoust/paintball/pkg/gameserver/game"
)

type Role uint8

const (
	RoleNone Role = iota
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	default:
		return "none"
	}
}

// Describes a connected client. A client is always a participant in the
// match, as a spectator until it joins a team.
type Client struct {
	*game.Player

	Role Role
	// Remote address, as reported by the transport.
	Host string
}

func (c *Client) String() string {
	return fmt.Sprintf("%s (%d)", c.Name, c.ID)
}
