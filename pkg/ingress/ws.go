package ingress

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cfoust/paintball/pkg/gameserver"
	"github.com/cfoust/paintball/pkg/gameserver/mirror"

	"github.com/fxamacker/cbor/v2"
	"github.com/mileusna/useragent"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
	"golang.org/x/time/rate"
	"nhooyr.io/websocket"
)

const (
	CLIENT_MESSAGE_LIMIT = 256
	// Commands a client may send per second, and in a single burst.
	COMMAND_RATE  = 4
	COMMAND_BURST = 8
	MAX_NAME      = 32
)

var ErrRateLimited = errors.New("slow down")

type WSClient struct {
	client    *gameserver.Client
	host      string
	device    string
	send      chan []byte
	commands  chan CommandMessage
	limiter   *rate.Limiter
	closeSlow func()
}

func NewWSClient() *WSClient {
	return &WSClient{
		send:     make(chan []byte, CLIENT_MESSAGE_LIMIT),
		commands: make(chan CommandMessage, CLIENT_MESSAGE_LIMIT),
		limiter:  rate.NewLimiter(COMMAND_RATE, COMMAND_BURST),
	}
}

type WSIngress struct {
	server     *gameserver.Server
	scoreboard *mirror.Scoreboard
	clients    map[*WSClient]struct{}
	mutex      deadlock.Mutex
	httpServer *http.Server
}

func NewWSIngress(server *gameserver.Server, scoreboard *mirror.Scoreboard) *WSIngress {
	return &WSIngress{
		server:     server,
		scoreboard: scoreboard,
		clients:    make(map[*WSClient]struct{}),
	}
}

func WriteTimeout(ctx context.Context, timeout time.Duration, c *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.Write(ctx, websocket.MessageBinary, msg)
}

func (server *WSIngress) AddClient(s *WSClient) {
	server.mutex.Lock()
	server.clients[s] = struct{}{}
	server.mutex.Unlock()
}

func (server *WSIngress) RemoveClient(client *WSClient) {
	server.mutex.Lock()
	delete(server.clients, client)
	server.mutex.Unlock()
}

func (server *WSIngress) NumClients() int {
	server.mutex.Lock()
	defer server.mutex.Unlock()
	return len(server.clients)
}

// DeviceType summarizes a user agent for logs.
func DeviceType(userAgent string) string {
	ua := useragent.Parse(userAgent)
	switch {
	case ua.Bot:
		return "bot"
	case ua.Tablet:
		return "tablet"
	case ua.Mobile:
		return "mobile"
	case ua.Desktop:
		return "desktop"
	}
	return "unknown"
}

func playerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unnamed"
	}
	if len(name) > MAX_NAME {
		return name[:MAX_NAME]
	}
	return name
}

func (server *WSIngress) handleCommand(ctx context.Context, client *WSClient, logger zerolog.Logger, message CommandMessage) {
	response := ResponseMessage{
		Op: ResponseOp,
		Id: message.Id,
	}

	if !client.limiter.Allow() {
		response.Response = ErrRateLimited.Error()
	} else {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		result, err := server.server.RunCommand(ctx, client.client, message.Command)
		cancel()

		if err == nil {
			response.Success = true
			response.Response = result
		} else {
			logger.Debug().Err(err).Str("command", message.Command).Msg("command failed")
			response.Response = err.Error()
		}
	}

	bytes, _ := cbor.Marshal(response)
	server.queue(client, bytes)
}

// runCommands executes a client's commands one at a time in the order they
// arrived.
func (server *WSIngress) runCommands(ctx context.Context, client *WSClient, logger zerolog.Logger) {
	for {
		select {
		case command := <-client.commands:
			server.handleCommand(ctx, client, logger, command)
		case <-ctx.Done():
			return
		}
	}
}

// queue hands a message to the client's writer, disconnecting clients that
// fall too far behind.
func (server *WSIngress) queue(client *WSClient, msg []byte) {
	select {
	case client.send <- msg:
	default:
		go client.closeSlow()
	}
}

func (server *WSIngress) HandleClient(ctx context.Context, c *websocket.Conn, host, name, device string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	client := NewWSClient()
	client.host = host
	client.device = device
	client.closeSlow = func() {
		c.Close(websocket.StatusPolicyViolation, "connection too slow to keep up with messages")
	}

	// Subscribe before joining so the join itself is seen.
	updates := server.scoreboard.Updates.SubscribeBuffered(CLIENT_MESSAGE_LIMIT)
	defer updates.Done()

	player, err := server.server.Connect(ctx, name, host)
	if err != nil {
		return err
	}
	client.client = player

	server.AddClient(client)
	defer server.RemoveClient(client)

	defer func() {
		// The request context is gone by now.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.server.Disconnect(ctx, player)
	}()

	logger := log.With().
		Uint32("clientId", player.ID).
		Str("host", host).
		Str("device", device).
		Logger()
	logger.Info().Msg("client joined")

	snapshot, status, err := server.server.Snapshot(ctx)
	if err != nil {
		return err
	}
	hello, err := cbor.Marshal(HelloMessage{
		Op:     HelloOp,
		Client: player.ID,
		Status: status,
		View:   mirror.FromSnapshot(snapshot, time.Now().UnixMilli()),
	})
	if err != nil {
		return err
	}
	client.send <- hello

	go server.runCommands(ctx, client, logger)

	receive := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		for {
			typ, message, err := c.Read(ctx)
			if err != nil {
				readErr <- err
				return
			}
			if typ != websocket.MessageBinary {
				continue
			}

			select {
			case receive <- message:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case msg := <-receive:
			var generic GenericMessage
			if err := cbor.Unmarshal(msg, &generic); err != nil {
				logger.Debug().Err(err).Msg("malformed message")
				continue
			}

			switch generic.Op {
			case CommandOp:
				var command CommandMessage
				if err := cbor.Unmarshal(msg, &command); err != nil {
					continue
				}
				select {
				case client.commands <- command:
				default:
					go client.closeSlow()
				}
			case DisconnectOp:
				logger.Info().Msg("client left")
				return nil
			}
		case err := <-readErr:
			logger.Info().Msg("client left")
			return err
		case update := <-updates.Recv():
			bytes, err := cbor.Marshal(EventMessage{
				Op:      EventOp,
				Event:   update.Event,
				Notices: update.Notices,
			})
			if err != nil {
				logger.Error().Err(err).Msg("could not encode event")
				continue
			}
			server.queue(client, bytes)
		case msg := <-client.send:
			err := WriteTimeout(ctx, time.Second*5, c, msg)
			if err != nil {
				logger.Error().Msg("client missed write timeout; disconnecting")
				return err
			}
		case <-ctx.Done():
			logger.Info().Msg("client left")
			return ctx.Err()
		}
	}
}

func (server *WSIngress) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})

	if err != nil {
		log.Error().Err(err).Msg("error accepting client connection")
		return
	}

	defer c.Close(websocket.StatusInternalError, "operational fault during relay")

	// We use nginx for ingress everywhere, so check this first
	hostname := r.RemoteAddr

	original, ok := r.Header["X-Forwarded-For"]
	if ok {
		hostname = original[0]
	}

	name := playerName(r.URL.Query().Get("name"))
	device := DeviceType(r.UserAgent())

	err = server.HandleClient(r.Context(), c, hostname, name, device)
	if err == nil {
		c.Close(websocket.StatusNormalClosure, "")
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
		websocket.CloseStatus(err) == websocket.StatusGoingAway {
		return
	}
	log.Error().Err(err).Msg("failed to close client port")
}

func (server *WSIngress) Serve(ctx context.Context, port int, mux *http.ServeMux) error {
	listen, err := net.Listen("tcp", fmt.Sprintf("0.0.0.0:%d", port))
	if err != nil {
		log.Error().Err(err).Msg("failed to bind WebSocket port")
		return err
	}

	log.Info().Msgf("listening on http://%v", listen.Addr())

	mux.Handle("/ws/", server)

	server.httpServer = &http.Server{
		Handler: mux,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	err = server.httpServer.Serve(listen)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (server *WSIngress) Shutdown(ctx context.Context) {
	if server.httpServer == nil {
		return
	}
	server.httpServer.Shutdown(ctx)
}
