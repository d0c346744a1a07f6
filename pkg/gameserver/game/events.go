package game

type EventType string

const (
	EventStateChanged   EventType = "state-changed"
	EventPhaseChanged   EventType = "phase-changed"
	EventRoundNew       EventType = "round-new"
	EventRoundStart     EventType = "round-start"
	EventRoundEnd       EventType = "round-end"
	EventScoreChanged   EventType = "score-changed"
	EventMatchEnd       EventType = "match-end"
	EventBombPlanted    EventType = "bomb-planted"
	EventBombDefused    EventType = "bomb-defused"
	EventBombExploded   EventType = "bomb-exploded"
	EventBombDropped    EventType = "bomb-dropped"
	EventBombPickedUp   EventType = "bomb-picked-up"
	EventDefuseStarted  EventType = "defuse-started"
	EventDefuseStopped  EventType = "defuse-stopped"
	EventPlayerJoined   EventType = "player-joined"
	EventPlayerLeft     EventType = "player-left"
	EventPlayerSpawned  EventType = "player-spawned"
	EventPlayerKilled   EventType = "player-killed"
	EventPlayerUpdated  EventType = "player-updated"
	EventTeamChanged    EventType = "team-changed"
	EventTeamsBalanced  EventType = "teams-balanced"
	EventMapChanged     EventType = "map-changed"
	EventMapVote        EventType = "map-vote"
	EventSettingChanged EventType = "setting-changed"
	EventNotice         EventType = "notice"
	EventAnnounce       EventType = "announce"
)

// Event is a change notification from the simulation to observers. Only
// the fields relevant to the event type are set.
type Event struct {
	Type EventType `json:"type" cbor:"type"`
	// Unix milliseconds of the simulation clock.
	Time int64 `json:"time" cbor:"time"`

	State    Kind       `json:"state,omitempty" cbor:"state,omitempty"`
	Previous Kind       `json:"previous,omitempty" cbor:"previous,omitempty"`
	Phase    RoundPhase `json:"phase,omitempty" cbor:"phase,omitempty"`
	Round    int        `json:"round,omitempty" cbor:"round,omitempty"`
	ToWin    int        `json:"toWin,omitempty" cbor:"toWin,omitempty"`
	// Seconds until the current phase deadline.
	TimeLeft int   `json:"timeLeft,omitempty" cbor:"timeLeft,omitempty"`
	Winner   Team  `json:"winner,omitempty" cbor:"winner,omitempty"`
	Score    Score `json:"score" cbor:"score"`

	Player uint32 `json:"player,omitempty" cbor:"player,omitempty"`
	Other  uint32 `json:"other,omitempty" cbor:"other,omitempty"`
	Team   Team   `json:"team,omitempty" cbor:"team,omitempty"`

	Map      string `json:"map,omitempty" cbor:"map,omitempty"`
	Name     string `json:"name,omitempty" cbor:"name,omitempty"`
	Value    string `json:"value,omitempty" cbor:"value,omitempty"`
	Message  string `json:"message,omitempty" cbor:"message,omitempty"`
	Duration int    `json:"duration,omitempty" cbor:"duration,omitempty"`

	// The whole roster on state changes and new rounds, a single player on
	// player-updated.
	Players []PlayerInfo `json:"players,omitempty" cbor:"players,omitempty"`
}

// Publisher receives events. Implementations must not block.
type Publisher interface {
	Publish(Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}
