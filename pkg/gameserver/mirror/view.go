// Package mirror rebuilds a read-only picture of a match from the event
// stream. Nothing here can change the simulation.
package mirror

import (
	"fmt"

	"github.com/cfoust/paintball/pkg/gameserver/game"

	"github.com/repeale/fp-go"
)

type NoticeKind string

const (
	// NoticeMessage is text shown on screen for Duration seconds.
	NoticeMessage NoticeKind = "message"
	// NoticeAnnounce names an announcer line to play.
	NoticeAnnounce NoticeKind = "announce"
)

type Notice struct {
	Kind     NoticeKind `json:"kind" cbor:"kind"`
	Text     string     `json:"text" cbor:"text"`
	Duration int        `json:"duration,omitempty" cbor:"duration,omitempty"`
	// Shown prominently, replacing other messages.
	Important bool `json:"important,omitempty" cbor:"important,omitempty"`
}

func message(text string, duration int) Notice {
	return Notice{Kind: NoticeMessage, Text: text, Duration: duration}
}

func announce(sound string) Notice {
	return Notice{Kind: NoticeAnnounce, Text: sound}
}

// View is what an observer knows about a match.
type View struct {
	State    game.Kind       `json:"state" cbor:"state"`
	Phase    game.RoundPhase `json:"phase" cbor:"phase"`
	Round    int             `json:"round" cbor:"round"`
	ToWin    int             `json:"toWin" cbor:"toWin"`
	Score    game.Score      `json:"score" cbor:"score"`
	Map      string          `json:"map" cbor:"map"`
	TimeLeft int             `json:"timeLeft" cbor:"timeLeft"`
	// Simulation time in Unix milliseconds when TimeLeft was reported.
	UpdatedAt int64 `json:"updatedAt" cbor:"updatedAt"`

	BombPlanted bool   `json:"bombPlanted" cbor:"bombPlanted"`
	BombOutcome string `json:"bombOutcome,omitempty" cbor:"bombOutcome,omitempty"`
	Carrier     uint32 `json:"carrier,omitempty" cbor:"carrier,omitempty"`
	Defuser     uint32 `json:"defuser,omitempty" cbor:"defuser,omitempty"`

	LastWinner game.Team         `json:"lastWinner" cbor:"lastWinner"`
	Players    []game.PlayerInfo `json:"players" cbor:"players"`
}

// FromSnapshot seeds a view from the authoritative state, for observers
// that connect mid-match.
func FromSnapshot(snapshot game.Snapshot, now int64) View {
	players := make([]game.PlayerInfo, len(snapshot.Players))
	copy(players, snapshot.Players)

	return View{
		State:       snapshot.State,
		Phase:       snapshot.Phase,
		Round:       snapshot.Round,
		ToWin:       snapshot.ToWin,
		Score:       snapshot.Score,
		Map:         snapshot.Map,
		TimeLeft:    snapshot.TimeLeft,
		UpdatedAt:   now,
		BombPlanted: snapshot.BombPlanted,
		Players:     players,
	}
}

// Player looks up a player in the view.
func (v View) Player(id uint32) (game.PlayerInfo, bool) {
	for _, p := range v.Players {
		if p.ID == id {
			return p, true
		}
	}
	return game.PlayerInfo{}, false
}

// withPlayer returns a copy of the player list with one entry changed.
// Unknown players are left alone.
func (v View) withPlayer(id uint32, change func(*game.PlayerInfo)) []game.PlayerInfo {
	players := make([]game.PlayerInfo, len(v.Players))
	copy(players, v.Players)
	for i := range players {
		if players[i].ID == id {
			change(&players[i])
		}
	}
	return players
}

func teamWins(team game.Team, what string) string {
	if team == game.TeamNone {
		return fmt.Sprintf("The %s is a draw", what)
	}
	return fmt.Sprintf("%s wins the %s!", team.Name(), what)
}

// Apply folds one event into the view. It never modifies its input and
// returns the notices the event should produce for players.
func Apply(v View, e game.Event) (View, []Notice) {
	var notices []Notice

	v.Score = e.Score

	switch e.Type {
	case game.EventStateChanged:
		v.State = e.State
		v.Players = append([]game.PlayerInfo(nil), e.Players...)
		if e.State != game.KindGameplay {
			v.Phase = game.RoundNone
			v.BombPlanted = false
			v.BombOutcome = ""
			v.Carrier = 0
			v.Defuser = 0
		}
	case game.EventPhaseChanged:
		v.State = e.State
		v.Phase = e.Phase
		v.Round = e.Round
		v.ToWin = e.ToWin
		v.TimeLeft = e.TimeLeft
		v.UpdatedAt = e.Time
	case game.EventRoundNew:
		v.Phase = game.RoundFreeze
		v.Round = e.Round
		v.ToWin = e.ToWin
		v.BombPlanted = false
		v.BombOutcome = ""
		v.Carrier = 0
		v.Defuser = 0
		v.LastWinner = game.TeamNone
		v.Players = append([]game.PlayerInfo(nil), e.Players...)

		if v.Score.Blue == v.ToWin-1 || v.Score.Red == v.ToWin-1 {
			notice := message("Matchpoint!", e.TimeLeft)
			notice.Important = true
			notices = append(notices, notice)
		}
	case game.EventRoundStart:
		v.Phase = game.RoundPlay
		notices = append(notices, announce("prepare"))
	case game.EventRoundEnd:
		v.Phase = game.RoundEnd
		v.LastWinner = e.Winner
		v.Defuser = 0
		notices = append(notices, message(teamWins(e.Winner, "round"), e.TimeLeft))
	case game.EventMatchEnd:
		v.Players = append([]game.PlayerInfo(nil), e.Players...)
		notice := message(teamWins(e.Winner, "match"), 5)
		notice.Important = true
		notices = append(notices, notice)
	case game.EventBombPlanted:
		if v.Phase == game.RoundPlay {
			v.Phase = game.RoundBomb
		}
		v.BombPlanted = true
		v.Carrier = 0
		v.TimeLeft = e.Duration
		v.UpdatedAt = e.Time
		notices = append(notices,
			message("Bomb has been planted!", 3),
			announce("bomb_planted"),
		)
	case game.EventBombDefused:
		v.BombOutcome = game.BombDefused.String()
	case game.EventBombExploded:
		v.BombOutcome = game.BombExploded.String()
		v.Defuser = 0
	case game.EventBombDropped:
		v.Carrier = 0
	case game.EventBombPickedUp:
		v.Carrier = e.Player
	case game.EventDefuseStarted:
		v.Defuser = e.Player
	case game.EventDefuseStopped:
		if v.Defuser == e.Player {
			v.Defuser = 0
		}
	case game.EventPlayerJoined:
		if _, ok := v.Player(e.Player); !ok {
			players := make([]game.PlayerInfo, len(v.Players), len(v.Players)+1)
			copy(players, v.Players)
			v.Players = append(players, game.PlayerInfo{
				ID:   e.Player,
				Name: e.Name,
			})
		}
	case game.EventPlayerLeft:
		v.Players = fp.Filter(func(p game.PlayerInfo) bool { return p.ID != e.Player })(v.Players)
		if v.Defuser == e.Player {
			v.Defuser = 0
		}
		if v.Carrier == e.Player {
			v.Carrier = 0
		}
	case game.EventPlayerSpawned:
		v.Players = v.withPlayer(e.Player, func(p *game.PlayerInfo) {
			p.Alive = true
			p.Team = e.Team
		})
	case game.EventPlayerKilled:
		v.Players = v.withPlayer(e.Player, func(p *game.PlayerInfo) {
			p.Alive = false
			p.Deaths++
		})
		if e.Other != 0 && e.Other != e.Player {
			v.Players = v.withPlayer(e.Other, func(p *game.PlayerInfo) {
				p.Kills++
			})
		}
	case game.EventPlayerUpdated:
		for _, updated := range e.Players {
			v.Players = v.withPlayer(updated.ID, func(p *game.PlayerInfo) {
				*p = updated
			})
		}
	case game.EventTeamChanged:
		v.Players = v.withPlayer(e.Player, func(p *game.PlayerInfo) {
			p.Team = e.Team
		})
	case game.EventMapChanged:
		v.Map = e.Map
	case game.EventSettingChanged:
		v.ToWin = e.ToWin
	case game.EventNotice:
		notices = append(notices, message(e.Message, e.Duration))
	case game.EventAnnounce:
		notices = append(notices, announce(e.Name))
	}

	return v, notices
}
