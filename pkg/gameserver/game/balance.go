package game

// TeamBalance moves half the size difference from the larger team to the
// smaller one. Players are taken in join order.
func TeamBalance(m *Match) int {
	blue := m.Players.OnTeam(TeamBlue)
	red := m.Players.OnTeam(TeamRed)

	diff := len(blue) - len(red)
	if diff < 0 {
		diff = -diff
	}
	diff >>= 1

	if diff <= 0 {
		return 0
	}

	less, more := TeamBlue, red
	if len(blue) > len(red) {
		less, more = TeamRed, blue
	}

	for _, p := range more[:diff] {
		m.assignTeam(p, less)
	}

	m.log.Info().Msgf("moved %d players to %s", diff, less.Name())
	m.Notify("Teams have been Auto-Balanced!", 3)
	m.publish(Event{
		Type:     EventTeamsBalanced,
		Team:     less,
		Duration: diff,
	})

	return diff
}
