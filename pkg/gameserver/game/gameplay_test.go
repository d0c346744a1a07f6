package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundPhaseSequence(t *testing.T) {
	h := newHarness(t, func(s *Settings) { s.BombEnabled = false })
	h.players(2, 2)
	g := h.startGameplay()

	expected := []RoundPhase{
		RoundPlay, RoundEnd, RoundFreeze,
		RoundPlay, RoundEnd, RoundFreeze,
	}

	require.Equal(t, RoundFreeze, g.Phase)
	for i, phase := range expected {
		round := g.Round
		g.Advance(h.match)
		require.Equal(t, phase, g.Phase, "step %d", i)

		if phase == RoundFreeze {
			require.Equal(t, round+1, g.Round)
		} else {
			require.Equal(t, round, g.Round)
		}
	}
}

func TestRoundTimersExpire(t *testing.T) {
	h := newHarness(t, nil)
	h.players(1, 1)
	g := h.startGameplay()

	h.wait(4 * time.Second)
	assert.Equal(t, RoundFreeze, g.Phase)
	h.wait(time.Second)
	assert.Equal(t, RoundPlay, g.Phase)

	h.wait(59 * time.Second)
	assert.Equal(t, RoundPlay, g.Phase)
	h.wait(time.Second)
	assert.Equal(t, RoundEnd, g.Phase)

	// Time ran out without a plant: the defenders win.
	assert.Equal(t, Defending, g.Winner)
	assert.Equal(t, Score{Blue: 1}, h.match.Score)

	h.wait(5 * time.Second)
	assert.Equal(t, RoundFreeze, g.Phase)
	assert.Equal(t, 2, g.Round)
}

func TestLateTickFiresOnce(t *testing.T) {
	h := newHarness(t, nil)
	h.players(1, 1)
	g := h.startGameplay()

	// A single tick long after the freeze deadline only ends the freeze.
	h.wait(time.Hour)
	assert.Equal(t, RoundPlay, g.Phase)
	assert.Equal(t, 1, g.Round)
}

func TestBuyWindow(t *testing.T) {
	h := newHarness(t, func(s *Settings) {
		s.FreezeDuration = 20
		s.BuyDuration = 15
	})
	h.players(1, 1)
	h.startGameplay()

	assert.True(t, h.match.CanBuy())
	h.wait(14 * time.Second)
	assert.True(t, h.match.CanBuy())
	h.wait(time.Second)
	assert.False(t, h.match.CanBuy())
}

func TestMatchEndsAtWinScore(t *testing.T) {
	h := newHarness(t, func(s *Settings) { s.RoundLimit = 2 })
	h.players(1, 1)
	g := h.startGameplay()
	require.Equal(t, 2, h.match.Settings.ToWinScore())

	playRound := func() {
		h.wait(5 * time.Second)
		require.Equal(t, RoundPlay, g.Phase)
		h.wait(60 * time.Second)
		require.Equal(t, RoundEnd, g.Phase)
		require.Equal(t, TeamBlue, g.Winner)
		h.wait(5 * time.Second)
	}

	playRound()
	assert.Equal(t, KindGameplay, h.match.Kind())
	assert.Equal(t, 2, g.Round)

	playRound()
	assert.Equal(t, KindMapSelect, h.match.Kind())
	assert.Equal(t, Score{Blue: 2}, h.match.Score)

	ended := h.events.ofType(EventMatchEnd)
	require.Len(t, ended, 1)
	assert.Equal(t, TeamBlue, ended[0].Winner)
	assert.Equal(t, 2, ended[0].Round)
}

func TestMatchEndsAtRoundLimit(t *testing.T) {
	h := newHarness(t, func(s *Settings) {
		s.RoundLimit = 3
		s.BombEnabled = false
	})
	h.players(1, 1)
	g := h.startGameplay()

	for round := 1; round <= 3; round++ {
		require.Equal(t, KindGameplay, h.match.Kind())
		g.Advance(h.match)
		g.Advance(h.match)
		// Nobody is eliminated and there is no bomb: a draw.
		require.Equal(t, TeamNone, g.Winner)
		g.Advance(h.match)
	}

	assert.Equal(t, KindMapSelect, h.match.Kind())
	assert.Equal(t, Score{}, h.match.Score)
}

func TestScoreAtMostOncePerRound(t *testing.T) {
	h := newHarness(t, nil)
	blues, reds := h.players(2, 2)
	g := h.startGameplay()
	h.wait(5 * time.Second)

	h.match.Kill(reds[0], blues[0])
	h.match.Kill(reds[1], blues[1])
	require.Equal(t, RoundEnd, g.Phase)

	// Further deaths during the end phase change nothing.
	h.match.Kill(blues[0], nil)
	h.match.Kill(blues[1], nil)

	assert.Equal(t, Score{Blue: 1}, h.match.Score)
	assert.Len(t, h.events.ofType(EventScoreChanged), 1)
}

func TestEliminationEndsRound(t *testing.T) {
	h := newHarness(t, nil)
	blues, reds := h.players(1, 2)
	g := h.startGameplay()
	h.wait(5 * time.Second)

	h.match.Kill(blues[0], reds[0])
	assert.Equal(t, RoundEnd, g.Phase)
	assert.Equal(t, TeamRed, g.Winner)
	assert.Equal(t, Score{Red: 1}, h.match.Score)
	assert.Equal(t, 1, reds[0].Kills)

	announcements := h.events.ofType(EventAnnounce)
	require.Len(t, announcements, 1)
	assert.Equal(t, "first_blood", announcements[0].Name)
}

func TestLeavingEndsRound(t *testing.T) {
	h := newHarness(t, nil)
	blues, _ := h.players(1, 1)
	g := h.startGameplay()
	h.wait(5 * time.Second)

	h.match.Leave(blues[0])
	assert.Equal(t, RoundEnd, g.Phase)
	assert.Equal(t, TeamRed, g.Winner)
}

func TestDeathDuringFreezeDoesNotEndRound(t *testing.T) {
	h := newHarness(t, nil)
	blues, _ := h.players(1, 1)
	g := h.startGameplay()

	h.match.Kill(blues[0], nil)
	assert.Equal(t, RoundFreeze, g.Phase)
}

func TestSecondPlayerJoiningEndsSoloRound(t *testing.T) {
	h := newHarness(t, func(s *Settings) { s.AutoAssign = true })
	solo := NewPlayer(1, "solo")
	h.match.Join(solo)
	g := h.startGameplay()
	h.wait(5 * time.Second)
	require.Equal(t, RoundPlay, g.Phase)

	h.match.Join(NewPlayer(2, "late"))
	assert.Equal(t, RoundEnd, g.Phase)

	// A third player does not end anything.
	h.wait(5 * time.Second)
	h.wait(5 * time.Second)
	require.Equal(t, RoundPlay, g.Phase)
	h.match.Join(NewPlayer(3, "later"))
	assert.Equal(t, RoundPlay, g.Phase)
}

func TestChangingTeamKillsLivingPlayer(t *testing.T) {
	h := newHarness(t, nil)
	blues, _ := h.players(2, 1)
	g := h.startGameplay()
	h.wait(5 * time.Second)

	h.match.SetTeam(blues[0], TeamNone)
	assert.False(t, blues[0].Alive)
	assert.Equal(t, 1, blues[0].Deaths)
	assert.Equal(t, RoundPlay, g.Phase)
}

func TestAdvanceOutsideGameplayPanics(t *testing.T) {
	h := newHarness(t, nil)
	h.players(1, 1)
	g := h.startGameplay()
	h.match.ChangeState(NewMapSelect())

	require.Panics(t, func() { g.Advance(h.match) })
	require.ErrorIs(t, h.match.ForceRound(), ErrNotGameplay)
}

func TestAdvanceWithoutPhasePanics(t *testing.T) {
	h := newHarness(t, nil)
	g := NewGameplay()
	h.match.state = g
	require.Panics(t, func() { g.Advance(h.match) })
}

func TestSpawnCycling(t *testing.T) {
	h := newHarness(t, nil)
	blues, reds := h.players(3, 3)
	h.startGameplay()

	positions := map[SpawnPoint]int{}
	for _, p := range blues {
		require.True(t, p.Alive)
		positions[p.Position]++
	}
	// Two blue spawn points for three players: one is reused.
	assert.Len(t, positions, 2)

	for _, p := range reds {
		assert.Less(t, p.Position.X, 0.0)
	}
}

func TestExactlyOneCarrier(t *testing.T) {
	h := newHarness(t, nil)
	blues, reds := h.players(3, 3)
	g := h.startGameplay()

	for round := 0; round < 3; round++ {
		carriers := 0
		for _, p := range reds {
			if p.HasBomb {
				carriers++
			}
		}
		require.Equal(t, 1, carriers)
		for _, p := range blues {
			require.False(t, p.HasBomb)
		}

		g.Advance(h.match)
		g.Advance(h.match)
		g.Advance(h.match)
	}
}

func TestNoCarrierWithoutBomb(t *testing.T) {
	h := newHarness(t, func(s *Settings) { s.BombEnabled = false })
	_, reds := h.players(2, 2)
	h.startGameplay()

	for _, p := range reds {
		assert.False(t, p.HasBomb)
	}
}

func TestDroppedBomb(t *testing.T) {
	h := newHarness(t, nil)
	blues, reds := h.players(1, 2)
	g := h.startGameplay()
	h.wait(5 * time.Second)

	carrier, other := reds[0], reds[1]
	if other.HasBomb {
		carrier, other = other, carrier
	}

	h.match.Kill(carrier, blues[0])
	assert.False(t, carrier.HasBomb)
	assert.True(t, g.DroppedBomb)

	require.ErrorIs(t, h.match.PickUpBomb(blues[0]), ErrWrongTeam)
	require.NoError(t, h.match.PickUpBomb(other))
	assert.True(t, other.HasBomb)
	require.ErrorIs(t, h.match.PickUpBomb(other), ErrBombNotDropped)
}

func TestGetWinner(t *testing.T) {
	h := newHarness(t, nil)
	blues, reds := h.players(1, 1)
	g := h.startGameplay()

	g.Bomb = &Bomb{Disabled: true, Defuser: blues[0]}
	assert.Equal(t, Defending, g.GetWinner(h.match))

	g.Bomb = &Bomb{Disabled: true}
	assert.Equal(t, Attacking, g.GetWinner(h.match))

	g.Bomb = nil
	assert.Equal(t, Defending, g.GetWinner(h.match))

	h.match.Settings.BombEnabled = false
	assert.Equal(t, TeamNone, g.GetWinner(h.match))

	reds[0].Alive = false
	assert.Equal(t, TeamBlue, g.GetWinner(h.match))

	blues[0].Alive = false
	assert.Equal(t, TeamNone, g.GetWinner(h.match))

	// An armed bomb with nobody left standing counts for the attackers.
	g.Bomb = &Bomb{}
	assert.Equal(t, Attacking, g.GetWinner(h.match))
}

func TestGameplayResetsPlayers(t *testing.T) {
	h := newHarness(t, nil)
	blues, _ := h.players(1, 1)
	blues[0].Kills = 4
	blues[0].Deaths = 2
	h.match.Score = Score{Blue: 3}

	h.startGameplay()
	assert.Equal(t, 0, blues[0].Kills)
	assert.Equal(t, 0, blues[0].Deaths)
	assert.Equal(t, Score{}, h.match.Score)
}
