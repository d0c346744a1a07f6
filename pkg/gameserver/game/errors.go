package game

import "errors"

var (
	ErrNotGameplay    = errors.New("no round is being played")
	ErrNotMapSelect   = errors.New("map voting is not open")
	ErrWrongPhase     = errors.New("not possible in this phase of the round")
	ErrNotAlive       = errors.New("you are not alive")
	ErrWrongTeam      = errors.New("your team can't do that")
	ErrNoBomb         = errors.New("you are not carrying the bomb")
	ErrBombPlanted    = errors.New("the bomb has already been planted")
	ErrBombNotPlanted = errors.New("the bomb has not been planted")
	ErrBombNotDropped = errors.New("the bomb is not on the ground")
	ErrBombInUse      = errors.New("someone else is defusing the bomb")
	ErrBombDisabled   = errors.New("the bomb is no longer active")
	ErrSameTeam       = errors.New("you are already on that team")
	ErrTeamCooldown   = errors.New("you changed team too recently")
	ErrTeamFull       = errors.New("that team has too many players")
	ErrUnknownMap     = errors.New("unknown map")
	ErrUnknownPlayer  = errors.New("unknown player")
)
