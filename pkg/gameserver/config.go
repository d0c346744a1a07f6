package gameserver

import (
	"github.com/cfoust/paintball/pkg/gameserver/game"
)

type Config struct {
	Description string
	// Simulation steps per second.
	TickRate int
	// Empty disables the auth command.
	AdminPassword string
	Settings      game.Settings
	Maps          []game.MapInfo
}
