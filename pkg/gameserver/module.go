package gameserver

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/cfoust/paintball/pkg/gameserver/game"
	"github.com/cfoust/paintball/pkg/utils"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const DEFAULT_TICK_RATE = 20

var ErrServerClosed = errors.New("server is shutting down")

// Server drives a match. Every change to the match happens on the goroutine
// running Poll: other goroutines hand it closures through Do.
type Server struct {
	utils.Session

	*Config

	Match    *game.Match
	Events   *utils.Topic[game.Event]
	Commands *ServerCommands

	clients map[uint32]*Client
	lastID  uint32
	actions chan func()
	log     zerolog.Logger
}

type Options struct {
	Clock game.Clock
	Rand  *rand.Rand
}

func New(ctx context.Context, conf *Config, options Options) *Server {
	events := utils.NewTopic[game.Event]()
	logger := log.With().Str("server", conf.Description).Logger()

	if conf.TickRate <= 0 {
		conf.TickRate = DEFAULT_TICK_RATE
	}

	if options.Rand == nil {
		options.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	matchLogger := logger.With().Str("component", "match").Logger()
	match := game.NewMatch(game.Options{
		Settings: &conf.Settings,
		Clock:    options.Clock,
		Rand:     options.Rand,
		Events:   events,
		Logger:   &matchLogger,
		Maps:     conf.Maps,
	})

	s := &Server{
		Session: utils.NewSession(ctx),
		Config:  conf,
		Match:   match,
		Events:  events,
		clients: map[uint32]*Client{},
		actions: make(chan func()),
		log:     logger,
	}
	s.Commands = NewCommands(s, DefaultCommands...)

	return s
}

// Start loads the first map and opens the lobby. It must be called before
// Poll.
func (s *Server) Start() {
	if len(s.Maps) > 0 {
		s.Match.LoadMap(s.Maps[0].Name)
	}
	s.Match.ChangeState(game.NewWaitingForPlayers())
}

func (s *Server) Poll(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(s.TickRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.Done():
			return
		case <-ticker.C:
			s.Match.Tick()
		case action := <-s.actions:
			action()
		}
	}
}

// Do runs f on the simulation goroutine and waits for it to finish. Only
// queueing can be cancelled: once f has been accepted Do always waits for
// it, so callers never observe a half-applied action.
func (s *Server) Do(ctx context.Context, f func()) error {
	if s.IsDone() {
		return ErrServerClosed
	}

	done := make(chan struct{})
	action := func() {
		defer close(done)
		f()
	}

	select {
	case s.actions <- action:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.Done():
		return ErrServerClosed
	}

	<-done
	return nil
}

func (s *Server) addClient(name, host string) *Client {
	s.lastID++
	client := &Client{
		Player: game.NewPlayer(s.lastID, name),
		Host:   host,
	}
	s.clients[client.ID] = client
	s.Match.Join(client.Player)
	return client
}

func (s *Server) removeClient(client *Client) {
	if _, ok := s.clients[client.ID]; !ok {
		return
	}
	delete(s.clients, client.ID)
	s.Match.Leave(client.Player)
}

func (s *Server) getClient(id uint32) *Client {
	return s.clients[id]
}

// Connect adds a participant to the match.
func (s *Server) Connect(ctx context.Context, name, host string) (*Client, error) {
	var client *Client
	err := s.Do(ctx, func() {
		client = s.addClient(name, host)
	})
	return client, err
}

func (s *Server) Disconnect(ctx context.Context, client *Client) error {
	return s.Do(ctx, func() {
		s.removeClient(client)
	})
}

// RunCommand executes a chat command on behalf of a client.
func (s *Server) RunCommand(ctx context.Context, client *Client, command string) (string, error) {
	var (
		response string
		cmdErr   error
	)
	err := s.Do(ctx, func() {
		response, cmdErr = s.Commands.Handle(client, command)
	})
	if err != nil {
		return "", err
	}
	return response, cmdErr
}

// Snapshot reads the current match state along with the server status.
func (s *Server) Snapshot(ctx context.Context) (game.Snapshot, Status, error) {
	var (
		snapshot game.Snapshot
		status   Status
	)
	err := s.Do(ctx, func() {
		snapshot = s.Match.Snapshot()
		status = s.status()
	})
	return snapshot, status, err
}
