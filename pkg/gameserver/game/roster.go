package game

import (
	"github.com/repeale/fp-go"
	opt "github.com/repeale/fp-go/option"
)

// Roster holds the current participants in join order.
type Roster struct {
	players []*Player
}

func NewRoster() *Roster {
	return &Roster{}
}

func (r *Roster) Add(p *Player) {
	for _, existing := range r.players {
		if existing == p {
			return
		}
	}
	r.players = append(r.players, p)
}

func (r *Roster) Remove(p *Player) {
	r.players = fp.Filter(func(other *Player) bool { return other != p })(r.players)
}

func (r *Roster) Get(id uint32) opt.Option[*Player] {
	for _, p := range r.players {
		if p.ID == id {
			return opt.Some(p)
		}
	}
	return opt.None[*Player]()
}

func (r *Roster) Contains(p *Player) bool {
	return fp.Some(func(other *Player) bool { return other == p })(r.players)
}

// All returns a copy of the participants so callers may mutate teams while
// iterating.
func (r *Roster) All() []*Player {
	players := make([]*Player, len(r.players))
	copy(players, r.players)
	return players
}

func (r *Roster) Len() int {
	return len(r.players)
}

func (r *Roster) ForEach(do func(*Player)) {
	for _, p := range r.All() {
		do(p)
	}
}

func (r *Roster) OnTeam(team Team) []*Player {
	return fp.Filter(func(p *Player) bool { return p.Team == team })(r.players)
}

func (r *Roster) Count(team Team) int {
	return len(r.OnTeam(team))
}

// Alive counts the living members of a team.
func (r *Roster) Alive(team Team) int {
	alive := fp.Filter(func(p *Player) bool { return p.Team == team && p.Alive })(r.players)
	return len(alive)
}

// Playing counts the participants assigned to a team.
func (r *Roster) Playing() int {
	return r.Count(TeamBlue) + r.Count(TeamRed)
}

func (r *Roster) Infos() []PlayerInfo {
	return fp.Map(func(p *Player) PlayerInfo { return p.Info() })(r.players)
}
