package game

import (
	"fmt"

	"github.com/cfoust/paintball/pkg/gameserver/timer"
)

// WaitingForPlayers lets players roam until both teams are populated,
// then counts down to the first round.
type WaitingForPlayers struct {
	baseState
}

var _ State = (*WaitingForPlayers)(nil)

func NewWaitingForPlayers() *WaitingForPlayers {
	return &WaitingForPlayers{}
}

func (*WaitingForPlayers) Kind() Kind { return KindWaitingForPlayers }

func (w *WaitingForPlayers) Start(m *Match) {
	for _, p := range m.Players.All() {
		if p.Team.Playing() && !p.Alive {
			m.respawnAnywhere(p)
		}
	}
	m.publishPhase()
}

func (w *WaitingForPlayers) ready(m *Match) bool {
	return m.Players.Playing() >= m.Settings.MinPlayers &&
		m.Players.Count(TeamBlue) > 0 &&
		m.Players.Count(TeamRed) > 0
}

func (w *WaitingForPlayers) Tick(m *Match) {
	if !w.ready(m) {
		if w.until.Armed() {
			w.until.Clear()
			m.Notify("Not enough players, waiting", 3)
			m.publishPhase()
		}
		return
	}

	if !w.until.Armed() {
		w.until = timer.In(m.Now(), seconds(m.Settings.StartDelay))
		m.Notify(fmt.Sprintf("Match starts in %d seconds", m.Settings.StartDelay), m.Settings.StartDelay)
		m.publishPhase()
		return
	}

	if w.until.Passed(m.Now()) {
		m.ChangeState(NewGameplay())
	}
}

func (w *WaitingForPlayers) PlayerKilled(m *Match, victim, attacker *Player) {
	m.respawnAnywhere(victim)
}

func (w *WaitingForPlayers) PlayerChangedTeam(m *Match, p *Player, old Team) {
	if p.Team.Playing() {
		m.respawnAnywhere(p)
		return
	}
	p.MakeSpectator()
}
