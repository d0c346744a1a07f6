package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cfoust/paintball/pkg/config"
	"github.com/cfoust/paintball/pkg/gameserver"
	"github.com/cfoust/paintball/pkg/gameserver/mirror"
	"github.com/cfoust/paintball/pkg/ingress"
	"github.com/cfoust/paintball/pkg/state"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Buffer for consumers that must not miss events.
const RECORDER_BUFFER = 1024

func serveCommand(configs []string) error {
	conf, err := config.Process(configs)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load paintball configuration")
	}

	serverConfig := conf.Server

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := gameserver.New(ctx, serverConfig.GameServer(), gameserver.Options{})
	scoreboard := mirror.NewScoreboard(mirror.View{})

	// Every consumer subscribes before the server starts so the opening
	// events are seen.
	go scoreboard.Poll(ctx, server.Events.SubscribeBuffered(RECORDER_BUFFER))

	var db *gorm.DB
	if serverConfig.Database.Path != "" {
		db, err = state.InitDB(serverConfig.Database.Path)
		if err != nil {
			log.Fatal().Err(err).Msgf("failed to open database %s", serverConfig.Database.Path)
		}

		recorder := state.NewRecorder(db, serverConfig.Description)
		go recorder.Poll(ctx, server.Events.SubscribeBuffered(RECORDER_BUFFER))
		log.Info().Msgf("recording matches to %s", serverConfig.Database.Path)
	}

	if serverConfig.Redis.Address != "" {
		cache := state.NewScoreboardCache(serverConfig.Redis, serverConfig.Description)
		defer cache.Close()

		pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
		err := cache.Ping(pingCtx)
		cancelPing()
		if err != nil {
			log.Warn().Err(err).Msgf("could not reach redis at %s", serverConfig.Redis.Address)
		}

		go cache.Poll(ctx, scoreboard.Updates.SubscribeBuffered(RECORDER_BUFFER))
	}

	server.Start()
	go server.Poll(ctx)

	wsIngress := ingress.NewWSIngress(server, scoreboard)

	mux := http.NewServeMux()
	mux.Handle("/api/", ingress.NewAPI(server, scoreboard, db))

	errc := make(chan error, 1)
	go func() {
		errc <- wsIngress.Serve(ctx, serverConfig.Ingress.Web.Port, mux)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	select {
	case err = <-errc:
		log.Error().Err(err).Msg("failed to serve")
	case sig := <-sigs:
		log.Info().Msgf("terminating: %v", sig)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	wsIngress.Shutdown(shutdownCtx)
	server.Cancel()

	return err
}
