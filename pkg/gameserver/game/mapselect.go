package game

import (
	"github.com/cfoust/paintball/pkg/gameserver/timer"

	opt "github.com/repeale/fp-go/option"
)

// MapSelect collects map votes after a match and loads the winner.
type MapSelect struct {
	baseState

	Votes map[uint32]string
}

var _ State = (*MapSelect)(nil)

func NewMapSelect() *MapSelect {
	return &MapSelect{
		Votes: map[uint32]string{},
	}
}

func (*MapSelect) Kind() Kind { return KindMapSelect }

func (s *MapSelect) Start(m *Match) {
	m.Players.ForEach(func(p *Player) {
		p.MakeSpectator()
	})
	s.until = timer.In(m.Now(), seconds(m.Settings.MapSelectDuration))
	m.publishPhase()
}

func (s *MapSelect) Tick(m *Match) {
	if !s.until.Passed(m.Now()) {
		return
	}

	next := s.Winner(m)
	m.log.Info().Msgf("map vote won by %s", next)
	m.LoadMap(next)
	m.ChangeState(NewWaitingForPlayers())
}

func (s *MapSelect) PlayerLeft(m *Match, p *Player) {
	delete(s.Votes, p.ID)
}

// Vote records a player's choice, replacing any earlier vote.
func (m *Match) Vote(p *Player, name string) error {
	s, ok := m.state.(*MapSelect)
	if !ok {
		return ErrNotMapSelect
	}
	if opt.IsNone(m.findMap(name)) {
		return ErrUnknownMap
	}

	s.Votes[p.ID] = name
	m.publish(Event{
		Type:   EventMapVote,
		Player: p.ID,
		Map:    name,
	})
	return nil
}

// Winner is the map with the most votes. Ties go to the map listed first;
// without any votes the rotation moves to the map after the current one.
func (s *MapSelect) Winner(m *Match) string {
	if len(m.Maps) == 0 {
		return m.Map
	}

	counts := map[string]int{}
	for _, name := range s.Votes {
		counts[name]++
	}

	best, bestVotes := "", 0
	for _, info := range m.Maps {
		if counts[info.Name] > bestVotes {
			best, bestVotes = info.Name, counts[info.Name]
		}
	}
	if best != "" {
		return best
	}

	for i, info := range m.Maps {
		if info.Name == m.Map {
			return m.Maps[(i+1)%len(m.Maps)].Name
		}
	}
	return m.Maps[0].Name
}
