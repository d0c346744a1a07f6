package game

import (
	"fmt"
	"time"
)

type Player struct {
	ID    uint32
	Name  string
	Team  Team
	Alive bool
	Money int

	Kills  int
	Deaths int

	// Whether the player is carrying the bomb item.
	HasBomb bool
	// The bomb the player is currently interacting with, if any.
	Using *Bomb

	Position SpawnPoint

	TeamChangedAt time.Time
}

func NewPlayer(id uint32, name string) *Player {
	return &Player{
		ID:   id,
		Name: name,
		Team: TeamNone,
	}
}

func (p *Player) String() string {
	return fmt.Sprintf("%s (%d)", p.Name, p.ID)
}

func (p *Player) Respawn() {
	p.Alive = true
	p.Using = nil
}

func (p *Player) MakeSpectator() {
	p.Alive = false
	p.Using = nil
}

// Reset clears everything a player accumulated during a match. The
// player's identity, team and money are kept.
func (p *Player) Reset() {
	p.Kills = 0
	p.Deaths = 0
	p.HasBomb = false
	p.Using = nil
}

// PlayerInfo is a read-only copy of a player for observers.
type PlayerInfo struct {
	ID     uint32 `json:"id"`
	Name   string `json:"name"`
	Team   Team   `json:"team"`
	Alive  bool   `json:"alive"`
	Money  int    `json:"money"`
	Kills  int    `json:"kills"`
	Deaths int    `json:"deaths"`
}

func (p *Player) Info() PlayerInfo {
	return PlayerInfo{
		ID:     p.ID,
		Name:   p.Name,
		Team:   p.Team,
		Alive:  p.Alive,
		Money:  p.Money,
		Kills:  p.Kills,
		Deaths: p.Deaths,
	}
}
