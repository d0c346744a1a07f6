package state

import (
	"context"
	"fmt"
	"time"

	"github.com/cfoust/paintball/pkg/gameserver/game"
	"github.com/cfoust/paintball/pkg/mmr"
	"github.com/cfoust/paintball/pkg/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const DEFAULT_RATING = 1200

// Recorder writes the history of a server's matches to the database and
// rates the players at the end of every completed match.
type Recorder struct {
	db     *gorm.DB
	elo    *mmr.Elo
	server string
	log    zerolog.Logger

	mapName string
	// nil outside of gameplay
	match *Match
	bomb  string
}

func NewRecorder(db *gorm.DB, server string) *Recorder {
	return &Recorder{
		db:     db,
		elo:    mmr.NewElo(),
		server: server,
		log:    log.With().Str("server", server).Str("component", "recorder").Logger(),
	}
}

// Match is the match currently being recorded, if any.
func (r *Recorder) Match() *Match {
	return r.match
}

func eventTime(e game.Event) time.Time {
	return time.UnixMilli(e.Time).UTC()
}

func (r *Recorder) startMatch(e game.Event) error {
	match := Match{
		UUID:    uuid.New().String(),
		Server:  r.server,
		Map:     r.mapName,
		Started: eventTime(e),
	}
	if err := r.db.Create(&match).Error; err != nil {
		return err
	}

	r.match = &match
	r.log.Info().Str("match", match.UUID).Msgf("recording match on %s", match.Map)
	return nil
}

func (r *Recorder) endRound(e game.Event) error {
	round := Round{
		MatchID: r.match.ID,
		Number:  e.Round,
		Winner:  e.Winner.String(),
		Bomb:    r.bomb,
		Ended:   eventTime(e),
	}
	if err := r.db.Create(&round).Error; err != nil {
		return err
	}

	r.match.Rounds = e.Round
	r.match.BlueScore = e.Score.Blue
	r.match.RedScore = e.Score.Red
	return r.db.Model(r.match).Updates(Match{
		Rounds:    r.match.Rounds,
		BlueScore: r.match.BlueScore,
		RedScore:  r.match.RedScore,
	}).Error
}

func (r *Recorder) endMatch(e game.Event) error {
	match := r.match
	r.match = nil

	match.Ended = eventTime(e)
	match.Rounds = e.Round
	match.BlueScore = e.Score.Blue
	match.RedScore = e.Score.Red
	match.Winner = e.Winner.String()

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(match).Error; err != nil {
			return err
		}
		return r.rate(tx, e.Players, e.Winner)
	})
	if err != nil {
		return err
	}

	r.log.Info().Str("match", match.UUID).Msgf(
		"match finished %d-%d, winner %s",
		match.BlueScore,
		match.RedScore,
		match.Winner,
	)
	return nil
}

func (r *Recorder) loadRatings(tx *gorm.DB, players []game.PlayerInfo) ([]*Rating, []int, error) {
	ratings := make([]*Rating, 0, len(players))
	values := make([]int, 0, len(players))
	for _, player := range players {
		rating := Rating{}
		err := tx.Where(Rating{Name: player.Name}).
			Attrs(Rating{Value: DEFAULT_RATING}).
			FirstOrCreate(&rating).Error
		if err != nil {
			return nil, nil, err
		}
		ratings = append(ratings, &rating)
		values = append(values, rating.Value)
	}
	return ratings, values, nil
}

// rate applies a team Elo update to every player who was on a team when the
// match ended.
func (r *Recorder) rate(tx *gorm.DB, players []game.PlayerInfo, winner game.Team) error {
	var blue, red []game.PlayerInfo
	for _, player := range players {
		switch player.Team {
		case game.TeamBlue:
			blue = append(blue, player)
		case game.TeamRed:
			red = append(red, player)
		}
	}

	blueRatings, blueValues, err := r.loadRatings(tx, blue)
	if err != nil {
		return err
	}
	redRatings, redValues, err := r.loadRatings(tx, red)
	if err != nil {
		return err
	}

	score := 0.5
	switch winner {
	case game.TeamBlue:
		score = 1
	case game.TeamRed:
		score = 0
	}

	blueDelta, redDelta := r.elo.TeamDelta(blueValues, redValues, score)

	apply := func(ratings []*Rating, delta int, result float64) error {
		for _, rating := range ratings {
			rating.Value += delta
			switch result {
			case 1:
				rating.Wins++
			case 0:
				rating.Losses++
			default:
				rating.Draws++
			}
			if err := tx.Save(rating).Error; err != nil {
				return err
			}
			r.log.Debug().Msgf("%s is now rated %d (%+d)", rating.Name, rating.Value, delta)
		}
		return nil
	}

	if err := apply(blueRatings, blueDelta, score); err != nil {
		return err
	}
	return apply(redRatings, redDelta, 1-score)
}

// Handle records a single event.
func (r *Recorder) Handle(e game.Event) error {
	switch e.Type {
	case game.EventMapChanged:
		r.mapName = e.Map
	case game.EventStateChanged:
		if e.State == game.KindGameplay {
			return r.startMatch(e)
		}
		if r.match != nil {
			r.log.Info().Str("match", r.match.UUID).Msg("match abandoned")
			r.match = nil
		}
	case game.EventRoundNew:
		r.bomb = ""
	case game.EventBombPlanted:
		r.bomb = game.BombArmed.String()
	case game.EventBombDefused:
		r.bomb = game.BombDefused.String()
	case game.EventBombExploded:
		r.bomb = game.BombExploded.String()
	case game.EventRoundEnd:
		if r.match == nil {
			return nil
		}
		return r.endRound(e)
	case game.EventMatchEnd:
		if r.match == nil {
			return fmt.Errorf("match ended without being started")
		}
		return r.endMatch(e)
	}
	return nil
}

// Poll records events from the subscriber until the context is done.
func (r *Recorder) Poll(ctx context.Context, events *utils.Subscriber[game.Event]) {
	defer events.Done()

	for {
		select {
		case e := <-events.Recv():
			if err := r.Handle(e); err != nil {
				r.log.Error().Err(err).Msgf("failed to record %s", e.Type)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Ratings lists the best rated players.
func Ratings(db *gorm.DB, limit int) ([]Rating, error) {
	var ratings []Rating
	err := db.Order("value desc").Order("name").Limit(limit).Find(&ratings).Error
	return ratings, err
}
