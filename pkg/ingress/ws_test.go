package ingress

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cfoust/paintball/pkg/gameserver"
	"github.com/cfoust/paintball/pkg/gameserver/game"
	"github.com/cfoust/paintball/pkg/gameserver/mirror"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

func startGame(t *testing.T) (*gameserver.Server, *mirror.Scoreboard, context.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	server := gameserver.New(ctx, &gameserver.Config{
		Description: "test",
		TickRate:    50,
		Settings:    game.DefaultSettings(),
		Maps:        []game.MapInfo{{Name: "pb_warehouse"}},
	}, gameserver.Options{})

	scoreboard := mirror.NewScoreboard(mirror.View{})
	go scoreboard.Poll(ctx, server.Events.Subscribe())

	server.Start()
	go server.Poll(ctx)

	return server, scoreboard, ctx
}

func startServer(t *testing.T) (*httptest.Server, context.Context) {
	server, scoreboard, ctx := startGame(t)
	ingress := NewWSIngress(server, scoreboard)
	httpServer := httptest.NewServer(ingress)
	t.Cleanup(httpServer.Close)

	return httpServer, ctx
}

func dial(t *testing.T, ctx context.Context, url, name string) *websocket.Conn {
	url = "ws" + strings.TrimPrefix(url, "http") + "/ws/?name=" + name
	c, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close(websocket.StatusNormalClosure, "") })
	return c
}

// next reads messages until one with the given op arrives.
func next(t *testing.T, ctx context.Context, c *websocket.Conn, op MessageType) []byte {
	for {
		_, msg, err := c.Read(ctx)
		require.NoError(t, err)

		var generic GenericMessage
		require.NoError(t, cbor.Unmarshal(msg, &generic))
		if generic.Op == op {
			return msg
		}
	}
}

func send(t *testing.T, ctx context.Context, c *websocket.Conn, message interface{}) {
	bytes, err := cbor.Marshal(message)
	require.NoError(t, err)
	require.NoError(t, c.Write(ctx, websocket.MessageBinary, bytes))
}

func TestHello(t *testing.T) {
	httpServer, ctx := startServer(t)
	c := dial(t, ctx, httpServer.URL, "alice")

	var hello HelloMessage
	require.NoError(t, cbor.Unmarshal(next(t, ctx, c, HelloOp), &hello))

	assert.NotZero(t, hello.Client)
	assert.Equal(t, "test", hello.Status.Description)
	assert.Equal(t, "pb_warehouse", hello.View.Map)
	assert.Equal(t, game.KindWaitingForPlayers, hello.View.State)

	player, ok := hello.View.Player(hello.Client)
	require.True(t, ok)
	assert.Equal(t, "alice", player.Name)
}

func TestCommand(t *testing.T) {
	httpServer, ctx := startServer(t)
	c := dial(t, ctx, httpServer.URL, "alice")
	next(t, ctx, c, HelloOp)

	send(t, ctx, c, CommandMessage{Op: CommandOp, Id: 7, Command: "help"})

	var response ResponseMessage
	require.NoError(t, cbor.Unmarshal(next(t, ctx, c, ResponseOp), &response))
	assert.Equal(t, 7, response.Id)
	assert.True(t, response.Success)
	assert.Contains(t, response.Response, "changeteam")

	send(t, ctx, c, CommandMessage{Op: CommandOp, Id: 8, Command: "slay 1"})
	require.NoError(t, cbor.Unmarshal(next(t, ctx, c, ResponseOp), &response))
	assert.Equal(t, 8, response.Id)
	assert.False(t, response.Success)
	assert.Equal(t, gameserver.ErrNotPermitted.Error(), response.Response)
}

func TestCommandsRunInOrder(t *testing.T) {
	httpServer, ctx := startServer(t)
	c := dial(t, ctx, httpServer.URL, "alice")
	next(t, ctx, c, HelloOp)

	for id := 1; id <= COMMAND_BURST; id++ {
		send(t, ctx, c, CommandMessage{Op: CommandOp, Id: id, Command: "help"})
	}

	for id := 1; id <= COMMAND_BURST; id++ {
		var response ResponseMessage
		require.NoError(t, cbor.Unmarshal(next(t, ctx, c, ResponseOp), &response))
		assert.Equal(t, id, response.Id)
		assert.True(t, response.Success)
	}
}

func TestEventsReachOtherClients(t *testing.T) {
	httpServer, ctx := startServer(t)
	alice := dial(t, ctx, httpServer.URL, "alice")
	next(t, ctx, alice, HelloOp)

	bob := dial(t, ctx, httpServer.URL, "bob")
	var hello HelloMessage
	require.NoError(t, cbor.Unmarshal(next(t, ctx, bob, HelloOp), &hello))

	for {
		var message EventMessage
		require.NoError(t, cbor.Unmarshal(next(t, ctx, alice, EventOp), &message))
		if message.Event.Type == game.EventPlayerJoined && message.Event.Player == hello.Client {
			assert.Equal(t, "bob", message.Event.Name)
			break
		}
	}
}

func TestDeviceType(t *testing.T) {
	assert.Equal(t, "desktop", DeviceType("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"))
	assert.Equal(t, "mobile", DeviceType("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"))
	assert.Equal(t, "unknown", DeviceType(""))
}

func TestPlayerName(t *testing.T) {
	assert.Equal(t, "unnamed", playerName("  "))
	assert.Equal(t, "alice", playerName(" alice "))
	assert.Len(t, playerName(strings.Repeat("a", 100)), MAX_NAME)
}
