package game

import (
	"fmt"
	"math/rand"
	"time"

	opt "github.com/repeale/fp-go/option"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Settings *Settings
	Clock    Clock
	Rand     *rand.Rand
	Events   Publisher
	Logger   *zerolog.Logger
	Maps     []MapInfo
}

// Match owns the active match phase and everything the phases operate on.
// It is passed explicitly to every state hook. A Match is not safe for
// concurrent use: all calls must come from the simulation goroutine.
type Match struct {
	Settings *Settings
	Players  *Roster
	Spawns   *Spawns
	Map      string
	Maps     []MapInfo
	Score    Score

	clock  Clock
	rng    *rand.Rand
	events Publisher
	log    zerolog.Logger
	state  State
}

func NewMatch(options Options) *Match {
	m := &Match{
		Settings: options.Settings,
		Players:  NewRoster(),
		Spawns:   &Spawns{},
		Maps:     options.Maps,
		clock:    options.Clock,
		rng:      options.Rand,
		events:   options.Events,
	}

	if m.Settings == nil {
		settings := DefaultSettings()
		m.Settings = &settings
	}
	if m.clock == nil {
		m.clock = SystemClock
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if m.events == nil {
		m.events = nopPublisher{}
	}
	if options.Logger != nil {
		m.log = *options.Logger
	} else {
		m.log = log.With().Str("component", "match").Logger()
	}

	return m
}

func (m *Match) Now() time.Time {
	return m.clock.Now()
}

func (m *Match) Rand() *rand.Rand {
	return m.rng
}

func (m *Match) Logger() *zerolog.Logger {
	return &m.log
}

func (m *Match) State() State {
	return m.state
}

func (m *Match) Kind() Kind {
	if m.state == nil {
		return KindNone
	}
	return m.state.Kind()
}

// Gameplay returns the active gameplay state, if that is the current phase.
func (m *Match) Gameplay() (*Gameplay, bool) {
	g, ok := m.state.(*Gameplay)
	return g, ok
}

// ChangeState finalizes the current phase, installs next and starts it.
// Passing nil is a programming error.
func (m *Match) ChangeState(next State) {
	if next == nil {
		panic("game: ChangeState called with a nil state")
	}

	old := m.state
	previous := m.Kind()

	if old != nil {
		old.Finish(m)
	}
	m.state = next
	next.Start(m)

	m.log.Info().Msgf("state changed from %s to %s", previous, next.Kind())
	m.publish(Event{
		Type:     EventStateChanged,
		State:    next.Kind(),
		Previous: previous,
		Players:  m.Players.Infos(),
	})
}

// publishPlayer tells observers about changes to a player that no other
// event describes, such as rewards.
func (m *Match) publishPlayer(p *Player) {
	m.publish(Event{
		Type:    EventPlayerUpdated,
		Player:  p.ID,
		Players: []PlayerInfo{p.Info()},
	})
}

// Tick advances the simulation by one step. The active phase ticks before
// anything else.
func (m *Match) Tick() {
	if m.state != nil {
		m.state.Tick(m)
	}
}

func (m *Match) publish(e Event) {
	e.Time = m.Now().UnixMilli()
	e.Score = m.Score
	m.events.Publish(e)
}

// Notify shows a message to every player for the given number of seconds.
func (m *Match) Notify(message string, seconds int) {
	m.publish(Event{
		Type:     EventNotice,
		Message:  message,
		Duration: seconds,
	})
}

// Announce plays a named announcer line for every player.
func (m *Match) Announce(sound string) {
	m.publish(Event{
		Type: EventAnnounce,
		Name: sound,
	})
}

func (m *Match) addScore(team Team) {
	m.Score.add(team)
	m.publish(Event{
		Type:   EventScoreChanged,
		Winner: team,
	})
}

func (m *Match) findMap(name string) opt.Option[MapInfo] {
	for _, info := range m.Maps {
		if info.Name == name {
			return opt.Some(info)
		}
	}
	return opt.None[MapInfo]()
}

// LoadMap switches the spawn pools to those of the named map. Unknown maps
// are loaded without spawn points, which makes every player use the
// fallback spawn.
func (m *Match) LoadMap(name string) {
	info := m.findMap(name)
	if opt.IsNone(info) {
		m.log.Warn().Msgf("no spawn points known for map %s", name)
		m.Spawns = &Spawns{}
	} else {
		m.Spawns = NewSpawns(info.Value)
	}

	m.Map = name
	m.publish(Event{
		Type: EventMapChanged,
		Map:  name,
	})
}

func (m *Match) spawn(p *Player, position SpawnPoint) {
	p.Respawn()
	p.Position = position
	m.publish(Event{
		Type:   EventPlayerSpawned,
		Player: p.ID,
		Team:   p.Team,
	})
}

// respawnAnywhere revives a player at a random point of their team pool.
func (m *Match) respawnAnywhere(p *Player) {
	MoveToSpawnpoint(m.log, m.Spawns, m.rng, p)
	m.spawn(p, p.Position)
}

// Join adds a player to the match.
func (m *Match) Join(p *Player) {
	if m.Players.Contains(p) {
		return
	}

	p.Team = TeamNone
	p.Alive = false
	m.Players.Add(p)

	m.log.Info().Msgf("%s joined", p)
	m.publish(Event{
		Type:   EventPlayerJoined,
		Player: p.ID,
		Name:   p.Name,
	})

	if m.Settings.AutoAssign {
		m.SetTeam(p, m.weakerTeam())
	}

	if m.state != nil {
		m.state.PlayerJoined(m, p)
	}
}

// Leave removes a player from the match.
func (m *Match) Leave(p *Player) {
	if !m.Players.Contains(p) {
		return
	}

	m.Players.Remove(p)
	p.Alive = false

	m.log.Info().Msgf("%s left", p)
	m.publish(Event{
		Type:   EventPlayerLeft,
		Player: p.ID,
		Team:   p.Team,
	})

	if m.state != nil {
		m.state.PlayerLeft(m, p)
	}

	p.Using = nil
	p.HasBomb = false
}

// Kill reports a death. attacker may be nil for deaths without a killer.
func (m *Match) Kill(victim, attacker *Player) {
	if !victim.Alive || !m.Players.Contains(victim) {
		return
	}

	victim.Deaths++
	if attacker != nil && attacker != victim {
		attacker.Kills++
	}
	victim.MakeSpectator()

	e := Event{
		Type:   EventPlayerKilled,
		Player: victim.ID,
		Team:   victim.Team,
	}
	if attacker != nil {
		e.Other = attacker.ID
	}
	m.publish(e)

	if m.state != nil {
		m.state.PlayerKilled(m, victim, attacker)
	}
}

func (m *Match) weakerTeam() Team {
	blue, red := m.Players.Count(TeamBlue), m.Players.Count(TeamRed)
	if blue != red {
		if blue < red {
			return TeamBlue
		}
		return TeamRed
	}
	if m.Score.Red < m.Score.Blue {
		return TeamRed
	}
	return TeamBlue
}

// assignTeam moves a player without notifying the active state.
func (m *Match) assignTeam(p *Player, team Team) Team {
	old := p.Team
	p.Team = team
	p.TeamChangedAt = m.Now()

	m.publish(Event{
		Type:   EventTeamChanged,
		Player: p.ID,
		Team:   team,
		Name:   p.Name,
	})

	if team != TeamNone {
		m.log.Info().Msgf("%s has joined %s", p, team.Name())
	} else {
		m.log.Info().Msgf("%s has started spectating", p)
	}
	return old
}

// SetTeam moves a player to a team and lets the active state react.
func (m *Match) SetTeam(p *Player, team Team) {
	if p.Team == team {
		return
	}

	old := m.assignTeam(p, team)

	if m.state != nil {
		m.state.PlayerChangedTeam(m, p, old)
	}
}

// RequestTeam is a player asking to change team. Spectating is always
// allowed; joining a team only if it would not become the larger one.
func (m *Match) RequestTeam(p *Player, team Team) error {
	if p.Team == team {
		return ErrSameTeam
	}

	cooldown := seconds(m.Settings.TeamChangeCooldown)
	if !p.TeamChangedAt.IsZero() && m.Now().Sub(p.TeamChangedAt) <= cooldown {
		return ErrTeamCooldown
	}

	if team == TeamNone {
		m.SetTeam(p, team)
		return nil
	}

	if !team.Playing() {
		return fmt.Errorf("invalid team %d", team)
	}

	adjust := 0
	if p.Team == TeamNone {
		adjust = 1
	}

	if m.Players.Count(team) >= m.Players.Count(team.Opponent())+adjust {
		return ErrTeamFull
	}

	m.SetTeam(p, team)
	return nil
}

// SetTimeLeft re-arms the deadline of the current phase.
func (m *Match) SetTimeLeft(d time.Duration) {
	if m.state == nil {
		return
	}
	m.state.SetTimeLeft(m, d)
	m.publishPhase()
}

func (m *Match) CanBuy() bool {
	return m.state != nil && m.state.CanBuy(m)
}

// SetVariable changes a setting at runtime and tells observers about it.
func (m *Match) SetVariable(name, value string) error {
	err := m.Settings.Set(name, value)
	if err != nil {
		return err
	}

	current, _ := m.Settings.Get(name)
	m.log.Info().Str("variable", name).Str("value", current).Msg("setting changed")
	m.publish(Event{
		Type:  EventSettingChanged,
		Name:  name,
		Value: current,
		ToWin: m.Settings.ToWinScore(),
	})
	return nil
}

func (m *Match) publishPhase() {
	e := Event{
		Type:  EventPhaseChanged,
		State: m.Kind(),
		ToWin: m.Settings.ToWinScore(),
	}
	if m.state != nil {
		e.TimeLeft = int(m.state.TimeLeft(m).Round(time.Second) / time.Second)
	}
	if g, ok := m.Gameplay(); ok {
		e.Phase = g.Phase
		e.Round = g.Round
	}
	m.publish(e)
}

// Snapshot is a read-only copy of the match for observers.
type Snapshot struct {
	State       Kind         `json:"state"`
	Phase       RoundPhase   `json:"phase"`
	Round       int          `json:"round"`
	RoundLimit  int          `json:"roundLimit"`
	ToWin       int          `json:"toWin"`
	Score       Score        `json:"score"`
	TimeLeft    int          `json:"timeLeft"`
	CanBuy      bool         `json:"canBuy"`
	Map         string       `json:"map"`
	BombPlanted bool         `json:"bombPlanted"`
	Players     []PlayerInfo `json:"players"`
}

func (m *Match) Snapshot() Snapshot {
	snapshot := Snapshot{
		State:      m.Kind(),
		RoundLimit: m.Settings.RoundLimit,
		ToWin:      m.Settings.ToWinScore(),
		Score:      m.Score,
		CanBuy:     m.CanBuy(),
		Map:        m.Map,
		Players:    m.Players.Infos(),
	}

	if m.state != nil {
		snapshot.TimeLeft = int(m.state.TimeLeft(m).Round(time.Second) / time.Second)
	}

	if g, ok := m.Gameplay(); ok {
		snapshot.Phase = g.Phase
		snapshot.Round = g.Round
		snapshot.BombPlanted = g.Bomb != nil
	}

	return snapshot
}
