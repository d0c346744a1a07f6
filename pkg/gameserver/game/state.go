package game

import (
	"fmt"
	"time"

	"github.com/cfoust/paintball/pkg/gameserver/timer"
)

// Kind identifies a match phase.
type Kind uint8

const (
	KindNone Kind = iota
	KindWaitingForPlayers
	KindMapSelect
	KindGameplay
)

func (k Kind) String() string {
	switch k {
	case KindWaitingForPlayers:
		return "waiting-for-players"
	case KindMapSelect:
		return "map-select"
	case KindGameplay:
		return "gameplay"
	default:
		return "none"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	for _, kind := range []Kind{KindNone, KindWaitingForPlayers, KindMapSelect, KindGameplay} {
		if kind.String() == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown match phase %q", text)
}

// State is a match phase. The set of implementations is closed: every
// State is one of *WaitingForPlayers, *MapSelect or *Gameplay.
//
// All hooks run on the simulation goroutine and receive the match they
// belong to.
type State interface {
	Kind() Kind

	Start(*Match)
	Tick(*Match)
	Finish(*Match)

	PlayerJoined(*Match, *Player)
	PlayerLeft(*Match, *Player)
	PlayerKilled(m *Match, victim, attacker *Player)
	PlayerChangedTeam(m *Match, p *Player, old Team)

	CanBuy(*Match) bool
	TimeLeft(*Match) time.Duration
	SetTimeLeft(*Match, time.Duration)

	sealed()
}

// baseState holds the phase deadline and the default hooks.
type baseState struct {
	until timer.Deadline
}

func (*baseState) sealed() {}

func (*baseState) Start(*Match) {}
func (*baseState) Tick(*Match) {}
func (*baseState) Finish(*Match) {}

func (*baseState) PlayerJoined(*Match, *Player) {}
func (*baseState) PlayerLeft(*Match, *Player) {}
func (*baseState) PlayerKilled(*Match, *Player, *Player) {}
func (*baseState) PlayerChangedTeam(*Match, *Player, Team) {}
func (*baseState) CanBuy(*Match) bool { return false }

func (s *baseState) TimeLeft(m *Match) time.Duration {
	return s.until.TimeLeft(m.Now())
}

func (s *baseState) SetTimeLeft(m *Match, d time.Duration) {
	s.until = timer.In(m.Now(), d)
}
