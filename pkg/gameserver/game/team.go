package game

import (
	"fmt"
	"strings"
)

type Team uint8

const (
	TeamNone Team = iota
	TeamBlue
	TeamRed
)

const (
	// Defending is the side that wins by preventing or defusing the bomb.
	Defending = TeamBlue
	// Attacking is the side that carries and plants the bomb.
	Attacking = TeamRed
)

func (t Team) String() string {
	switch t {
	case TeamBlue:
		return "blue"
	case TeamRed:
		return "red"
	default:
		return "none"
	}
}

// Name is the user-facing team name.
func (t Team) Name() string {
	switch t {
	case TeamBlue:
		return "Blue"
	case TeamRed:
		return "Red"
	default:
		return "Spectator"
	}
}

// Opponent returns the other playing team. TeamNone has no opponent.
func (t Team) Opponent() Team {
	switch t {
	case TeamBlue:
		return TeamRed
	case TeamRed:
		return TeamBlue
	default:
		return TeamNone
	}
}

func (t Team) Playing() bool {
	return t == TeamBlue || t == TeamRed
}

func (t Team) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Team) UnmarshalText(text []byte) error {
	team, err := ParseTeam(string(text))
	if err != nil {
		return err
	}
	*t = team
	return nil
}

func ParseTeam(name string) (Team, error) {
	switch strings.ToLower(name) {
	case "blue", "b", "1":
		return TeamBlue, nil
	case "red", "r", "2":
		return TeamRed, nil
	case "none", "spectator", "spec", "0":
		return TeamNone, nil
	}
	return TeamNone, fmt.Errorf("unknown team %q", name)
}

// Score holds the per-team round wins of a match.
type Score struct {
	Blue int `json:"blue"`
	Red  int `json:"red"`
}

func (s Score) Of(t Team) int {
	switch t {
	case TeamBlue:
		return s.Blue
	case TeamRed:
		return s.Red
	}
	return 0
}

func (s *Score) add(t Team) {
	switch t {
	case TeamBlue:
		s.Blue++
	case TeamRed:
		s.Red++
	}
}
