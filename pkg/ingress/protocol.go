package ingress

import (
	"github.com/cfoust/paintball/pkg/gameserver"
	"github.com/cfoust/paintball/pkg/gameserver/game"
	"github.com/cfoust/paintball/pkg/gameserver/mirror"
)

type MessageType int

const (
	// server -> client
	HelloOp MessageType = iota
	EventOp
	ResponseOp
	// client -> server
	CommandOp
	DisconnectOp
)

type GenericMessage struct {
	Op MessageType
}

// HelloMessage is the first message on every connection.
type HelloMessage struct {
	Op     MessageType
	Client uint32
	Status gameserver.Status
	View   mirror.View
}

type EventMessage struct {
	Op      MessageType
	Event   game.Event
	Notices []mirror.Notice
}

type CommandMessage struct {
	Op MessageType
	// Echoed back in the response.
	Id      int
	Command string
}

type ResponseMessage struct {
	Op       MessageType
	Id       int
	Success  bool
	Response string
}
