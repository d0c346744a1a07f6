package game

import (
	"time"

	"github.com/cfoust/paintball/pkg/gameserver/timer"
)

type BombOutcome uint8

const (
	BombArmed BombOutcome = iota
	BombExploded
	BombDefused
)

func (o BombOutcome) String() string {
	switch o {
	case BombExploded:
		return "exploded"
	case BombDefused:
		return "defused"
	default:
		return "armed"
	}
}

// Bomb is a planted bomb. It explodes when ExplodesAt passes unless a
// defender holds the defuse for the full defuse duration first.
type Bomb struct {
	Planter *Player
	Site    string

	ExplodesAt timer.Deadline

	// The defender currently defusing, if any. Kept after a successful
	// defuse so the round can be awarded.
	Defuser       *Player
	defuseStarted time.Time

	Disabled bool
	Outcome  BombOutcome
}

// Plant arms the bomb the player is carrying. Only possible while the
// round is being played.
func (m *Match) Plant(p *Player, site string) error {
	g, ok := m.Gameplay()
	if !ok {
		return ErrNotGameplay
	}
	if g.Bomb != nil {
		return ErrBombPlanted
	}
	if g.Phase != RoundPlay {
		return ErrWrongPhase
	}
	if !p.Alive {
		return ErrNotAlive
	}
	if p.Team != Attacking {
		return ErrWrongTeam
	}
	if !p.HasBomb {
		return ErrNoBomb
	}

	now := m.Now()
	bomb := &Bomb{
		Planter:    p,
		Site:       site,
		ExplodesAt: timer.In(now, seconds(m.Settings.BombDuration)),
	}

	p.HasBomb = false
	p.Money += m.Settings.PlantReward
	g.Bomb = bomb

	m.log.Info().Str("site", site).Msgf("%s planted the bomb", p)
	m.publish(Event{
		Type:     EventBombPlanted,
		Player:   p.ID,
		Name:     site,
		Duration: m.Settings.BombDuration,
	})
	m.publishPlayer(p)

	g.Phase = RoundBomb
	g.enter(m)
	return nil
}

// StartDefuse makes a defender begin defusing the planted bomb.
func (m *Match) StartDefuse(p *Player) error {
	g, ok := m.Gameplay()
	if !ok {
		return ErrNotGameplay
	}
	if g.Bomb == nil {
		return ErrBombNotPlanted
	}
	return g.Bomb.Use(m, p)
}

// StopDefuse releases the bomb. Progress is lost.
func (m *Match) StopDefuse(p *Player) {
	g, ok := m.Gameplay()
	if !ok || g.Bomb == nil || g.Bomb.Disabled || g.Bomb.Defuser != p {
		return
	}

	g.Bomb.clearDefuser()
	m.publish(Event{
		Type:   EventDefuseStopped,
		Player: p.ID,
	})
}

func (b *Bomb) Use(m *Match, p *Player) error {
	switch {
	case b.Disabled:
		return ErrBombDisabled
	case !p.Alive:
		return ErrNotAlive
	case p.Team != Defending:
		return ErrWrongTeam
	case b.Defuser != nil && b.Defuser != p:
		return ErrBombInUse
	case b.Defuser == p:
		return nil
	}

	b.Defuser = p
	b.defuseStarted = m.Now()
	p.Using = b

	m.publish(Event{
		Type:   EventDefuseStarted,
		Player: p.ID,
	})
	return nil
}

// DefuseProgress is how long the current defuser has been defusing.
func (b *Bomb) DefuseProgress(now time.Time) time.Duration {
	if b.Defuser == nil {
		return 0
	}
	return now.Sub(b.defuseStarted)
}

func (b *Bomb) validDefuser(m *Match) bool {
	d := b.Defuser
	return d.Using == b && d.Alive && d.Team == Defending && m.Players.Contains(d)
}

func (b *Bomb) clearDefuser() {
	if b.Defuser != nil && b.Defuser.Using == b {
		b.Defuser.Using = nil
	}
	b.Defuser = nil
	b.defuseStarted = time.Time{}
}

// Tick resolves the bomb. Completing a defuse takes precedence over the
// explosion when both are due in the same tick.
func (b *Bomb) Tick(m *Match, g *Gameplay) {
	if b.Disabled {
		return
	}

	if b.Defuser != nil && !b.validDefuser(m) {
		defuser := b.Defuser
		b.clearDefuser()
		m.publish(Event{
			Type:   EventDefuseStopped,
			Player: defuser.ID,
		})
	}

	now := m.Now()
	if b.Defuser != nil && b.DefuseProgress(now) >= seconds(m.Settings.DefuseDuration) {
		b.Disabled = true
		b.Outcome = BombDefused
		b.Defuser.Using = nil
		b.Defuser.Money += m.Settings.DefuseReward

		m.log.Info().Msgf("%s defused the bomb", b.Defuser)
		m.publish(Event{
			Type:   EventBombDefused,
			Player: b.Defuser.ID,
		})
		m.publishPlayer(b.Defuser)
	} else if b.ExplodesAt.Passed(now) {
		b.Disabled = true
		b.Outcome = BombExploded
		b.clearDefuser()

		m.log.Info().Msg("the bomb exploded")
		m.publish(Event{
			Type: EventBombExploded,
		})
	}

	if b.Disabled && g.Phase == RoundBomb {
		g.Advance(m)
	}
}
