package mirror

import (
	"context"

	"github.com/cfoust/paintball/pkg/gameserver/game"
	"github.com/cfoust/paintball/pkg/utils"

	"github.com/sasha-s/go-deadlock"
)

// Update is the result of applying one event.
type Update struct {
	Event   game.Event
	View    View
	Notices []Notice
}

// Scoreboard keeps the latest view of a match for concurrent readers and
// republishes every applied event together with its notices.
type Scoreboard struct {
	Updates *utils.Topic[Update]

	mutex deadlock.RWMutex
	view  View
}

func NewScoreboard(initial View) *Scoreboard {
	return &Scoreboard{
		Updates: utils.NewTopic[Update](),
		view:    initial,
	}
}

func (s *Scoreboard) View() View {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.view
}

func (s *Scoreboard) Apply(e game.Event) Update {
	s.mutex.Lock()
	view, notices := Apply(s.view, e)
	s.view = view
	s.mutex.Unlock()

	update := Update{
		Event:   e,
		View:    view,
		Notices: notices,
	}
	s.Updates.Publish(update)
	return update
}

// Poll applies events from the subscriber until the context is done.
func (s *Scoreboard) Poll(ctx context.Context, events *utils.Subscriber[game.Event]) {
	defer events.Done()

	for {
		select {
		case e := <-events.Recv():
			s.Apply(e)
		case <-ctx.Done():
			return
		}
	}
}
