package mirror

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/cfoust/paintball/pkg/gameserver/game"
	"github.com/cfoust/paintball/pkg/utils"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

// recorder folds every published event into a view as it arrives.
type recorder struct {
	view    View
	notices []Notice
}

func (r *recorder) Publish(e game.Event) {
	var notices []Notice
	r.view, notices = Apply(r.view, e)
	r.notices = append(r.notices, notices...)
}

func (r *recorder) texts() []string {
	var texts []string
	for _, n := range r.notices {
		texts = append(texts, n.Text)
	}
	return texts
}

func newMatch(t *testing.T, configure func(*game.Settings)) (*game.Match, *clock, *recorder) {
	settings := game.DefaultSettings()
	settings.AutoAssign = true
	if configure != nil {
		configure(&settings)
	}

	logger := zerolog.Nop()
	c := &clock{now: time.Unix(2_000_000, 0)}
	r := &recorder{}
	m := game.NewMatch(game.Options{
		Settings: &settings,
		Clock:    c,
		Rand:     rand.New(rand.NewSource(7)),
		Events:   r,
		Logger:   &logger,
		Maps: []game.MapInfo{{
			Name: "pb_yard",
			Blue: []game.SpawnPoint{{X: 1}},
			Red:  []game.SpawnPoint{{X: -1}},
		}},
	})
	m.LoadMap("pb_yard")
	return m, c, r
}

func wait(m *game.Match, c *clock, d time.Duration) {
	c.now = c.now.Add(d)
	m.Tick()
}

func TestMirrorFollowsMatch(t *testing.T) {
	m, c, r := newMatch(t, func(s *game.Settings) { s.RoundLimit = 2 })

	blue, red := game.NewPlayer(1, "alice"), game.NewPlayer(2, "bob")
	m.Join(blue)
	m.Join(red)
	m.ChangeState(game.NewGameplay())

	assert.Equal(t, game.KindGameplay, r.view.State)
	assert.Equal(t, game.RoundFreeze, r.view.Phase)
	assert.Equal(t, "pb_yard", r.view.Map)
	assert.Equal(t, 2, r.view.ToWin)
	assert.Equal(t, red.ID, r.view.Carrier)
	require.Len(t, r.view.Players, 2)

	wait(m, c, 5*time.Second)
	assert.Equal(t, game.RoundPlay, r.view.Phase)
	assert.Equal(t, 60, r.view.TimeLeft)
	assert.Contains(t, r.texts(), "prepare")

	require.NoError(t, m.Plant(red, "A"))
	assert.Equal(t, game.RoundBomb, r.view.Phase)
	assert.True(t, r.view.BombPlanted)
	assert.Contains(t, r.texts(), "Bomb has been planted!")

	require.NoError(t, m.StartDefuse(blue))
	assert.Equal(t, blue.ID, r.view.Defuser)

	wait(m, c, 5*time.Second)
	assert.Equal(t, game.RoundEnd, r.view.Phase)
	assert.Equal(t, "defused", r.view.BombOutcome)
	assert.Equal(t, game.TeamBlue, r.view.LastWinner)
	assert.Equal(t, game.Score{Blue: 1}, r.view.Score)
	assert.Contains(t, r.texts(), "Blue wins the round!")

	// Blue is one round away from winning.
	wait(m, c, 5*time.Second)
	assert.Equal(t, 2, r.view.Round)
	assert.False(t, r.view.BombPlanted)
	assert.Contains(t, r.texts(), "Matchpoint!")

	info, ok := r.view.Player(red.ID)
	require.True(t, ok)
	assert.Equal(t, game.TeamRed, info.Team)
	assert.True(t, info.Alive)
}

func TestMirrorPlayers(t *testing.T) {
	m, c, r := newMatch(t, nil)
	m.ChangeState(game.NewWaitingForPlayers())

	a, b := game.NewPlayer(1, "a"), game.NewPlayer(2, "b")
	m.Join(a)
	m.Join(b)

	info, ok := r.view.Player(1)
	require.True(t, ok)
	assert.Equal(t, game.TeamBlue, info.Team)
	assert.True(t, info.Alive)

	wait(m, c, time.Second)
	m.Kill(a, b)
	info, _ = r.view.Player(1)
	assert.Equal(t, 1, info.Deaths)
	info, _ = r.view.Player(2)
	assert.Equal(t, 1, info.Kills)

	m.Leave(b)
	_, ok = r.view.Player(2)
	assert.False(t, ok)
	assert.Len(t, r.view.Players, 1)
}

func TestMirrorAcrossMatches(t *testing.T) {
	m, c, r := newMatch(t, nil)
	a, b := game.NewPlayer(1, "a"), game.NewPlayer(2, "b")
	m.Join(a)
	m.Join(b)

	m.ChangeState(game.NewGameplay())
	wait(m, c, 5*time.Second)
	m.Kill(a, b)
	assert.Equal(t, m.Snapshot().Players, r.view.Players)
	info, _ := r.view.Player(b.ID)
	assert.Equal(t, 1, info.Kills)

	// A new match resets kills and deaths.
	m.ChangeState(game.NewGameplay())
	assert.Equal(t, m.Snapshot().Players, r.view.Players)
	info, _ = r.view.Player(b.ID)
	assert.Zero(t, info.Kills)
	info, _ = r.view.Player(a.ID)
	assert.Zero(t, info.Deaths)

	wait(m, c, 5*time.Second)
	require.NoError(t, m.Plant(b, "A"))
	info, _ = r.view.Player(b.ID)
	assert.Equal(t, b.Money, info.Money)
	assert.Equal(t, m.Snapshot().Players, r.view.Players)

	require.NoError(t, m.StartDefuse(a))
	wait(m, c, 5*time.Second)
	info, _ = r.view.Player(a.ID)
	assert.Equal(t, a.Money, info.Money)
	assert.Equal(t, m.Snapshot().Players, r.view.Players)
}

func TestPlayerUpdated(t *testing.T) {
	before := View{
		Players: []game.PlayerInfo{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}},
	}
	after, notices := Apply(before, game.Event{
		Type:    game.EventPlayerUpdated,
		Player:  2,
		Players: []game.PlayerInfo{{ID: 2, Name: "b", Money: 1000}},
	})
	assert.Empty(t, notices)
	assert.Zero(t, before.Players[1].Money)
	assert.Equal(t, 1000, after.Players[1].Money)
	assert.Zero(t, after.Players[0].Money)
}

func TestApplyDoesNotModifyInput(t *testing.T) {
	before := View{
		Players: []game.PlayerInfo{{ID: 1, Name: "a", Alive: true}},
	}

	after, _ := Apply(before, game.Event{Type: game.EventPlayerKilled, Player: 1})
	assert.True(t, before.Players[0].Alive)
	assert.False(t, after.Players[0].Alive)

	after, _ = Apply(before, game.Event{Type: game.EventPlayerJoined, Player: 2, Name: "b"})
	assert.Len(t, before.Players, 1)
	assert.Len(t, after.Players, 2)
}

func TestAutoBalanceNotice(t *testing.T) {
	m, _, r := newMatch(t, func(s *game.Settings) { s.AutoAssign = false })
	for i := uint32(1); i <= 4; i++ {
		p := game.NewPlayer(i, "p")
		m.Join(p)
		m.SetTeam(p, game.TeamBlue)
	}
	m.ChangeState(game.NewGameplay())

	assert.Contains(t, r.texts(), "Teams have been Auto-Balanced!")
}

func TestFirstBloodNotice(t *testing.T) {
	_, notices := Apply(View{}, game.Event{Type: game.EventAnnounce, Name: "first_blood"})
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeAnnounce, notices[0].Kind)
	assert.Equal(t, "first_blood", notices[0].Text)
}

func TestScoreboard(t *testing.T) {
	topic := utils.NewTopic[game.Event]()
	scoreboard := NewScoreboard(View{})
	updates := scoreboard.Updates.Subscribe()
	defer updates.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go scoreboard.Poll(ctx, topic.Subscribe())

	topic.Publish(game.Event{Type: game.EventMapChanged, Map: "pb_yard"})

	select {
	case update := <-updates.Recv():
		assert.Equal(t, "pb_yard", update.View.Map)
	case <-time.After(time.Second):
		t.Fatal("no update")
	}
	assert.Equal(t, "pb_yard", scoreboard.View().Map)
}
