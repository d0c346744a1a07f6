package state

import (
	"context"
	"fmt"
	"time"

	"github.com/cfoust/paintball/pkg/config"
	"github.com/cfoust/paintball/pkg/gameserver/mirror"
	"github.com/cfoust/paintball/pkg/utils"

	"github.com/fxamacker/cbor/v2"
	"github.com/go-redis/redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	PAINTBALL_PREFIX = "paintball-"
	KEY_SCOREBOARD   = PAINTBALL_PREFIX + "scoreboard-%s"
	// Every applied event is published here, encoded as CBOR.
	CHANNEL_EVENTS = PAINTBALL_PREFIX + "events"
)

const Nil = redis.Nil

// ScoreboardCache mirrors the scoreboard of a server into Redis so that
// other services can read it without connecting to the game.
type ScoreboardCache struct {
	client *redis.Client
	server string
	ttl    time.Duration
	log    zerolog.Logger
}

func NewScoreboardCache(settings config.RedisSettings, server string) *ScoreboardCache {
	return &ScoreboardCache{
		client: redis.NewClient(&redis.Options{
			Addr:     settings.Address,
			Password: settings.Password,
			DB:       settings.DB,
		}),
		server: server,
		ttl:    time.Duration(settings.TTL) * time.Second,
		log:    log.With().Str("server", server).Str("component", "redis").Logger(),
	}
}

func (c *ScoreboardCache) Key() string {
	return fmt.Sprintf(KEY_SCOREBOARD, c.server)
}

func (c *ScoreboardCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Save stores the view from the update and announces its event.
func (c *ScoreboardCache) Save(ctx context.Context, update mirror.Update) error {
	view, err := cbor.Marshal(update.View)
	if err != nil {
		return err
	}

	event, err := cbor.Marshal(update.Event)
	if err != nil {
		return err
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, c.Key(), view, c.ttl)
	pipe.Publish(ctx, CHANNEL_EVENTS, event)
	_, err = pipe.Exec(ctx)
	return err
}

// Load reads the last saved view. It returns Nil if nothing was saved or
// the view expired.
func (c *ScoreboardCache) Load(ctx context.Context) (mirror.View, error) {
	var view mirror.View

	data, err := c.client.Get(ctx, c.Key()).Bytes()
	if err != nil {
		return view, err
	}

	err = cbor.Unmarshal(data, &view)
	return view, err
}

// Poll saves updates until the context is done. Failed writes are logged
// and skipped.
func (c *ScoreboardCache) Poll(ctx context.Context, updates *utils.Subscriber[mirror.Update]) {
	defer updates.Done()

	for {
		select {
		case update := <-updates.Recv():
			ctx, cancel := context.WithTimeout(ctx, time.Second)
			err := c.Save(ctx, update)
			cancel()
			if err != nil {
				c.log.Warn().Err(err).Msg("failed to save scoreboard")
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *ScoreboardCache) Close() error {
	return c.client.Close()
}
