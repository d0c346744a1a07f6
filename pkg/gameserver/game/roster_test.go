package game

import (
	"testing"

	opt "github.com/repeale/fp-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoster(t *testing.T) {
	roster := NewRoster()
	a, b, c := NewPlayer(1, "a"), NewPlayer(2, "b"), NewPlayer(3, "c")

	roster.Add(a)
	roster.Add(b)
	roster.Add(c)
	roster.Add(a)
	require.Equal(t, 3, roster.Len())

	a.Team, b.Team = TeamBlue, TeamRed
	a.Alive = true

	assert.Equal(t, []*Player{a}, roster.OnTeam(TeamBlue))
	assert.Equal(t, 1, roster.Alive(TeamBlue))
	assert.Equal(t, 0, roster.Alive(TeamRed))
	assert.Equal(t, 2, roster.Playing())

	found := roster.Get(2)
	require.False(t, opt.IsNone(found))
	assert.Equal(t, b, found.Value)
	assert.True(t, opt.IsNone(roster.Get(42)))

	roster.Remove(b)
	assert.False(t, roster.Contains(b))
	assert.Equal(t, []*Player{a, c}, roster.All())

	infos := roster.Infos()
	require.Len(t, infos, 2)
	assert.Equal(t, "a", infos[0].Name)
	assert.Equal(t, TeamBlue, infos[0].Team)
}

func TestRosterAllIsACopy(t *testing.T) {
	roster := NewRoster()
	roster.Add(NewPlayer(1, "a"))

	players := roster.All()
	players[0] = nil
	assert.NotNil(t, roster.All()[0])
}

func TestParseTeam(t *testing.T) {
	for input, expected := range map[string]Team{
		"blue":      TeamBlue,
		"RED":       TeamRed,
		"spectator": TeamNone,
		"1":         TeamBlue,
	} {
		team, err := ParseTeam(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, team, input)
	}

	_, err := ParseTeam("green")
	require.Error(t, err)

	assert.Equal(t, TeamRed, TeamBlue.Opponent())
	assert.Equal(t, TeamNone, TeamNone.Opponent())
	assert.Equal(t, "Spectator", TeamNone.Name())
}

func TestMoveToSpawnpoint(t *testing.T) {
	h := newHarness(t, nil)
	p := NewPlayer(1, "a")
	p.Team = TeamRed

	MoveToSpawnpoint(*h.match.Logger(), h.match.Spawns, h.match.Rand(), p)
	assert.Contains(t, testMaps[0].Red, p.Position)

	empty := &Spawns{Blue: testMaps[0].Blue}
	p.Position = SpawnPoint{X: 9}
	MoveToSpawnpoint(*h.match.Logger(), empty, h.match.Rand(), p)
	assert.Equal(t, Origin, p.Position)
}

func TestPhaseText(t *testing.T) {
	var kind Kind
	require.NoError(t, kind.UnmarshalText([]byte("map-select")))
	assert.Equal(t, KindMapSelect, kind)
	require.Error(t, kind.UnmarshalText([]byte("lobby")))

	var phase RoundPhase
	text, err := RoundBomb.MarshalText()
	require.NoError(t, err)
	require.NoError(t, phase.UnmarshalText(text))
	assert.Equal(t, RoundBomb, phase)
	require.Error(t, phase.UnmarshalText([]byte("overtime")))
}
