package game

import (
	"math/rand"

	"github.com/rs/zerolog"
)

type SpawnPoint struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Z   float64 `json:"z"`
	Yaw float64 `json:"yaw"`
}

// Origin is used when no spawn point is configured for a team.
var Origin = SpawnPoint{}

type MapInfo struct {
	Name string
	Blue []SpawnPoint
	Red  []SpawnPoint
}

// Spawns holds the team spawn pools of the loaded map.
type Spawns struct {
	Blue []SpawnPoint
	Red  []SpawnPoint
}

func NewSpawns(info MapInfo) *Spawns {
	spawns := &Spawns{
		Blue: make([]SpawnPoint, len(info.Blue)),
		Red:  make([]SpawnPoint, len(info.Red)),
	}
	copy(spawns.Blue, info.Blue)
	copy(spawns.Red, info.Red)
	return spawns
}

func (s *Spawns) Pool(team Team) []SpawnPoint {
	switch team {
	case TeamBlue:
		return s.Blue
	case TeamRed:
		return s.Red
	}
	return nil
}

// Complete reports whether both teams have at least one spawn point.
func (s *Spawns) Complete() bool {
	return len(s.Blue) > 0 && len(s.Red) > 0
}

func (s *Spawns) Shuffle(rng *rand.Rand) {
	for _, pool := range [][]SpawnPoint{s.Blue, s.Red} {
		rng.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})
	}
}

// cycler hands out spawn points from each team pool in order, wrapping
// around when there are more players than points.
type cycler struct {
	spawns *Spawns
	next   map[Team]int
}

func newCycler(spawns *Spawns) *cycler {
	return &cycler{
		spawns: spawns,
		next:   map[Team]int{},
	}
}

func (c *cycler) Next(team Team) SpawnPoint {
	pool := c.spawns.Pool(team)
	index := c.next[team]
	if index >= len(pool) {
		index = 0
	}
	c.next[team] = index + 1
	return pool[index]
}

// MoveToSpawnpoint places a player at a random point of their team pool.
// Unassigned players use a random team's pool. If that pool is empty the
// player is placed at the origin.
func MoveToSpawnpoint(logger zerolog.Logger, spawns *Spawns, rng *rand.Rand, p *Player) {
	team := p.Team
	if !team.Playing() {
		team = Team(rng.Intn(2) + 1)
	}

	pool := spawns.Pool(team)
	if len(pool) > 0 {
		p.Position = pool[rng.Intn(len(pool))]
		return
	}

	logger.Warn().Msgf("couldn't find team spawnpoint for %s", p)
	p.Position = Origin
}
