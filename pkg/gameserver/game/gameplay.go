package game

import (
	"fmt"
	"time"

	"github.com/cfoust/paintball/pkg/gameserver/timer"
)

type RoundPhase uint8

const (
	RoundNone RoundPhase = iota
	// Players can't move and can buy weapons.
	RoundFreeze
	// Players move freely and play the objective.
	RoundPlay
	// The bomb has been planted and can explode or be defused.
	RoundBomb
	// Rest period between rounds.
	RoundEnd
)

func (r RoundPhase) String() string {
	switch r {
	case RoundFreeze:
		return "freeze"
	case RoundPlay:
		return "play"
	case RoundBomb:
		return "bomb"
	case RoundEnd:
		return "end"
	default:
		return "none"
	}
}

func (r RoundPhase) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *RoundPhase) UnmarshalText(text []byte) error {
	for _, phase := range []RoundPhase{RoundNone, RoundFreeze, RoundPlay, RoundBomb, RoundEnd} {
		if phase.String() == string(text) {
			*r = phase
			return nil
		}
	}
	return fmt.Errorf("unknown round phase %q", text)
}

// Gameplay is bomb defusal, or team deathmatch when the bomb is disabled.
type Gameplay struct {
	baseState

	Round int
	Phase RoundPhase
	Bomb  *Bomb
	// Set when the carrier died or left without planting.
	DroppedBomb bool
	// The outcome of the round that is ending, computed once.
	Winner Team

	buyUntil   timer.Deadline
	firstBlood bool
}

var _ State = (*Gameplay)(nil)

func NewGameplay() *Gameplay {
	return &Gameplay{
		Round: 1,
	}
}

func (*Gameplay) Kind() Kind { return KindGameplay }

func (g *Gameplay) CanBuy(m *Match) bool {
	return g.Phase != RoundNone && g.buyUntil.Armed() && !g.buyUntil.Passed(m.Now())
}

func (g *Gameplay) Start(m *Match) {
	m.Score = Score{}
	g.Phase = RoundFreeze

	m.Players.ForEach(func(p *Player) {
		p.Reset()
	})

	g.enter(m)
}

// SetTimeLeft re-arms the phase deadline. While the bomb is ticking the
// deadline is the explosion, so both move together.
func (g *Gameplay) SetTimeLeft(m *Match, d time.Duration) {
	g.baseState.SetTimeLeft(m, d)
	if g.Phase == RoundBomb && g.Bomb != nil && !g.Bomb.Disabled {
		g.Bomb.ExplodesAt = g.until
	}
}

func (g *Gameplay) Finish(m *Match) {
	g.Bomb = nil
	g.DroppedBomb = false
	m.Players.ForEach(func(p *Player) {
		p.HasBomb = false
		p.Using = nil
	})
}

func (g *Gameplay) Tick(m *Match) {
	if g.Bomb != nil {
		g.Bomb.Tick(m, g)
	}

	if m.state != g {
		return
	}

	if g.until.Passed(m.Now()) {
		g.Advance(m)
	}
}

// Advance finishes the current round phase and enters the next one. It is
// the only place the round phase changes, apart from planting the bomb.
func (g *Gameplay) Advance(m *Match) {
	if m.state != g {
		panic("game: round advanced while gameplay is not the active state")
	}

	switch g.Phase {
	case RoundFreeze:
		g.Phase = RoundPlay
	case RoundPlay, RoundBomb:
		g.Phase = RoundEnd
		g.Winner = g.GetWinner(m)
		if g.Winner != TeamNone {
			m.addScore(g.Winner)
		}
	case RoundEnd:
		g.Round++

		toWin := m.Settings.ToWinScore()
		if m.Score.Blue >= toWin || m.Score.Red >= toWin || g.Round > m.Settings.RoundLimit {
			g.Bomb = nil
			m.publish(Event{
				Type:    EventMatchEnd,
				Round:   g.Round - 1,
				Winner:  g.matchWinner(m),
				Map:     m.Map,
				Players: m.Players.Infos(),
			})
			m.ChangeState(NewMapSelect())
			return
		}

		g.Phase = RoundFreeze
	default:
		panic(fmt.Sprintf("game: unhandled round phase %s", g.Phase))
	}

	g.enter(m)
}

func (g *Gameplay) matchWinner(m *Match) Team {
	switch {
	case m.Score.Blue > m.Score.Red:
		return TeamBlue
	case m.Score.Red > m.Score.Blue:
		return TeamRed
	}
	return TeamNone
}

func (g *Gameplay) enter(m *Match) {
	now := m.Now()

	switch g.Phase {
	case RoundFreeze:
		g.Bomb = nil
		g.DroppedBomb = false
		g.Winner = TeamNone
		g.firstBlood = false

		TeamBalance(m)
		g.spawnPlayers(m)

		g.until = timer.In(now, seconds(m.Settings.FreezeDuration))
		g.buyUntil = timer.In(now, seconds(m.Settings.BuyDuration))

		m.publish(Event{
			Type:     EventRoundNew,
			Round:    g.Round,
			ToWin:    m.Settings.ToWinScore(),
			TimeLeft: m.Settings.FreezeDuration,
			Players:  m.Players.Infos(),
		})
	case RoundPlay:
		g.until = timer.In(now, seconds(m.Settings.PlayDuration))
		m.publish(Event{
			Type:  EventRoundStart,
			Round: g.Round,
		})
	case RoundBomb:
		g.until = g.Bomb.ExplodesAt
	case RoundEnd:
		g.until = timer.In(now, seconds(m.Settings.EndDuration))
		m.log.Info().Msgf("round %d won by %s", g.Round, g.Winner)
		m.publish(Event{
			Type:     EventRoundEnd,
			Round:    g.Round,
			Winner:   g.Winner,
			TimeLeft: m.Settings.EndDuration,
		})
	}

	m.publishPhase()
}

// spawnPlayers puts every team member at a team spawn point and hands the
// bomb to one attacker.
func (g *Gameplay) spawnPlayers(m *Match) {
	spawns := m.Spawns
	useTeamSpawns := spawns.Complete()
	if useTeamSpawns {
		spawns.Shuffle(m.rng)
	} else {
		m.log.Warn().Msgf("map %s is missing team spawn points", m.Map)
	}

	cycle := newCycler(spawns)
	for _, p := range m.Players.All() {
		if !p.Team.Playing() {
			continue
		}

		p.HasBomb = false

		if !useTeamSpawns {
			m.respawnAnywhere(p)
			continue
		}

		m.spawn(p, cycle.Next(p.Team))
	}

	if !m.Settings.BombEnabled {
		return
	}

	attackers := m.Players.OnTeam(Attacking)
	if len(attackers) == 0 {
		return
	}

	carrier := attackers[m.rng.Intn(len(attackers))]
	carrier.HasBomb = true
	m.log.Debug().Msgf("%s carries the bomb", carrier)
	m.publish(Event{
		Type:   EventBombPickedUp,
		Player: carrier.ID,
	})
}

// GetWinner decides who takes the round in its current state. A round that
// times out with both sides alive goes to the defenders when the bomb is in
// play and is otherwise a draw. Equal survivor counts are also a draw rather
// than a win for either side, except that an armed bomb with nobody left
// standing counts for the attackers.
func (g *Gameplay) GetWinner(m *Match) Team {
	if g.Bomb != nil && g.Bomb.Disabled {
		if g.Bomb.Defuser != nil {
			return Defending
		}
		return Attacking
	}

	blue := m.Players.Alive(TeamBlue)
	red := m.Players.Alive(TeamRed)

	if blue != 0 && red != 0 {
		if m.Settings.BombEnabled {
			return Defending
		}
		return TeamNone
	}

	switch {
	case blue > red:
		return TeamBlue
	case red > blue:
		return TeamRed
	}

	// Nobody is left on either side.
	if g.Bomb != nil {
		return Attacking
	}
	return TeamNone
}

// CheckRoundOver ends the round early once a side has been eliminated.
func (g *Gameplay) CheckRoundOver(m *Match) {
	switch g.Phase {
	case RoundPlay:
		if m.Players.Alive(TeamBlue) == 0 || m.Players.Alive(TeamRed) == 0 {
			g.Advance(m)
		}
	case RoundBomb:
		if m.Players.Alive(Defending) == 0 {
			g.Advance(m)
		}
	}
}

func (g *Gameplay) PlayerJoined(m *Match, p *Player) {
	if g.Phase != RoundPlay && g.Phase != RoundBomb {
		return
	}

	// Someone joined a game that was being played alone.
	if m.Players.Len() == 2 {
		g.Advance(m)
	}
}

func (g *Gameplay) PlayerLeft(m *Match, p *Player) {
	if p.HasBomb {
		g.dropBomb(m, p)
	}

	g.CheckRoundOver(m)
}

func (g *Gameplay) PlayerKilled(m *Match, victim, attacker *Player) {
	if !g.firstBlood && attacker != nil && attacker != victim {
		m.Announce("first_blood")
		g.firstBlood = true
	}

	if victim.HasBomb {
		g.dropBomb(m, victim)
	}

	g.CheckRoundOver(m)
}

// PlayerChangedTeam kills a living player who switches sides.
func (g *Gameplay) PlayerChangedTeam(m *Match, p *Player, old Team) {
	if !p.Alive {
		return
	}

	m.Kill(p, nil)
}

func (g *Gameplay) dropBomb(m *Match, p *Player) {
	p.HasBomb = false
	if g.Bomb != nil {
		return
	}

	g.DroppedBomb = true
	m.publish(Event{
		Type:   EventBombDropped,
		Player: p.ID,
	})
}

// PickUpBomb gives a dropped bomb to a living attacker.
func (m *Match) PickUpBomb(p *Player) error {
	g, ok := m.Gameplay()
	if !ok {
		return ErrNotGameplay
	}
	if !g.DroppedBomb {
		return ErrBombNotDropped
	}
	if !p.Alive {
		return ErrNotAlive
	}
	if p.Team != Attacking {
		return ErrWrongTeam
	}

	g.DroppedBomb = false
	p.HasBomb = true
	m.publish(Event{
		Type:   EventBombPickedUp,
		Player: p.ID,
	})
	return nil
}

// ForceRound ends the current round phase immediately.
func (m *Match) ForceRound() error {
	g, ok := m.Gameplay()
	if !ok {
		return ErrNotGameplay
	}
	g.Advance(m)
	return nil
}

func (g *Gameplay) TimeLeft(m *Match) time.Duration {
	if g.Phase == RoundEnd {
		return 0
	}
	return g.baseState.TimeLeft(m)
}
