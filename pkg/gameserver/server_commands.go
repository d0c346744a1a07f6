package gameserver

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cfoust/paintball/pkg/gameserver/game"

	opt "github.com/repeale/fp-go/option"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrNotPermitted   = errors.New("you can't do that")
	ErrMissingArgs    = errors.New("missing arguments")
)

type ServerCommand struct {
	name        string
	argsFormat  string
	aliases     []string
	description string
	minRole     Role
	f           func(s *Server, c *Client, args []string) (string, error)
}

func (cmd *ServerCommand) String() string {
	if cmd.argsFormat == "" {
		return cmd.name
	}
	return fmt.Sprintf("%s %s", cmd.name, cmd.argsFormat)
}

func (cmd *ServerCommand) Detailed() string {
	aliases := ""
	if len(cmd.aliases) > 0 {
		aliases = fmt.Sprintf(" (alias %s)", strings.Join(cmd.aliases, ", "))
	}
	return fmt.Sprintf("%s:%s\n%s", cmd.String(), aliases, cmd.description)
}

type ServerCommands struct {
	s       *Server
	byName  map[string]*ServerCommand
	byAlias map[string]*ServerCommand
}

func NewCommands(s *Server, cmds ...*ServerCommand) *ServerCommands {
	sc := &ServerCommands{
		s:       s,
		byName:  map[string]*ServerCommand{},
		byAlias: map[string]*ServerCommand{},
	}
	for _, cmd := range cmds {
		sc.Register(cmd)
	}
	return sc
}

func (sc *ServerCommands) Register(cmd *ServerCommand) {
	sc.byName[cmd.name] = cmd
	sc.byAlias[cmd.name] = cmd
	for _, alias := range cmd.aliases {
		sc.byAlias[alias] = cmd
	}
}

func (sc *ServerCommands) Unregister(cmd *ServerCommand) {
	for _, alias := range cmd.aliases {
		delete(sc.byAlias, alias)
	}
	delete(sc.byAlias, cmd.name)
	delete(sc.byName, cmd.name)
}

func (sc *ServerCommands) listCommands(c *Client) string {
	helpLines := []string{}
	for _, cmd := range sc.byName {
		if c.Role >= cmd.minRole {
			helpLines = append(helpLines, cmd.String())
		}
	}
	sort.Strings(helpLines)
	return "available commands: " + strings.Join(helpLines, ", ")
}

// Handle runs one command line. The response is meant for the issuing
// client only; everything others should see goes out as match events.
func (sc *ServerCommands) Handle(c *Client, msg string) (string, error) {
	parts := strings.Fields(msg)
	if len(parts) == 0 {
		return "", ErrUnknownCommand
	}
	command, args := strings.TrimPrefix(parts[0], "#"), parts[1:]

	switch command {
	case "help", "commands":
		if len(args) == 0 {
			return sc.listCommands(c), nil
		}
		name := strings.TrimPrefix(args[0], "#")
		if cmd, ok := sc.byAlias[name]; ok {
			return cmd.Detailed(), nil
		}
		return "", fmt.Errorf("%w '%s'", ErrUnknownCommand, name)

	default:
		cmd, ok := sc.byAlias[command]
		if !ok {
			return "", fmt.Errorf("%w '%s'", ErrUnknownCommand, command)
		}

		if c.Role < cmd.minRole {
			return "", ErrNotPermitted
		}

		sc.s.log.Debug().Str("command", command).Strs("args", args).Msgf("%s ran a command", c)
		return cmd.f(sc.s, c, args)
	}
}

var ChangeTeam = &ServerCommand{
	name:        "changeteam",
	argsFormat:  "blue|red|spectator",
	aliases:     []string{"team", "jointeam"},
	description: "moves you to another team, if it would not become the larger one",
	minRole:     RoleNone,
	f: func(s *Server, c *Client, args []string) (string, error) {
		if len(args) < 1 {
			return "", ErrMissingArgs
		}

		team, err := game.ParseTeam(args[0])
		if err != nil {
			return "", err
		}

		err = s.Match.RequestTeam(c.Player, team)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("you are now on %s", team.Name()), nil
	},
}

var Plant = &ServerCommand{
	name:        "plant",
	argsFormat:  "[site]",
	description: "plants the bomb you are carrying",
	minRole:     RoleNone,
	f: func(s *Server, c *Client, args []string) (string, error) {
		site := ""
		if len(args) > 0 {
			site = args[0]
		}

		err := s.Match.Plant(c.Player, site)
		if err != nil {
			return "", err
		}
		return "bomb planted", nil
	},
}

var Defuse = &ServerCommand{
	name:        "defuse",
	description: "starts defusing the planted bomb",
	minRole:     RoleNone,
	f: func(s *Server, c *Client, args []string) (string, error) {
		err := s.Match.StartDefuse(c.Player)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("defusing, hold for %d seconds", s.Settings.DefuseDuration), nil
	},
}

var StopDefuse = &ServerCommand{
	name:        "stopdefuse",
	description: "lets go of the bomb, losing all progress",
	minRole:     RoleNone,
	f: func(s *Server, c *Client, args []string) (string, error) {
		s.Match.StopDefuse(c.Player)
		return "", nil
	},
}

var PickUp = &ServerCommand{
	name:        "pickup",
	description: "picks up a dropped bomb",
	minRole:     RoleNone,
	f: func(s *Server, c *Client, args []string) (string, error) {
		err := s.Match.PickUpBomb(c.Player)
		if err != nil {
			return "", err
		}
		return "you have the bomb", nil
	},
}

var Vote = &ServerCommand{
	name:        "vote",
	argsFormat:  "<map>",
	description: "votes for the next map",
	minRole:     RoleNone,
	f: func(s *Server, c *Client, args []string) (string, error) {
		if len(args) < 1 {
			return "", ErrMissingArgs
		}

		err := s.Match.Vote(c.Player, args[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("voted for %s", args[0]), nil
	},
}

var Auth = &ServerCommand{
	name:        "auth",
	argsFormat:  "<password>",
	aliases:     []string{"login"},
	description: "claims admin privileges",
	minRole:     RoleNone,
	f: func(s *Server, c *Client, args []string) (string, error) {
		if len(args) < 1 {
			return "", ErrMissingArgs
		}

		err := s.authenticate(c, args[0])
		if err != nil {
			return "", err
		}
		return "you are now an admin", nil
	},
}

var SetVariable = &ServerCommand{
	name:        "set",
	argsFormat:  "[variable] [value]",
	aliases:     []string{"var"},
	description: "shows or changes a game setting",
	minRole:     RoleAdmin,
	f: func(s *Server, c *Client, args []string) (string, error) {
		switch len(args) {
		case 0:
			lines := []string{}
			for _, name := range game.Variables() {
				value, _ := s.Settings.Get(name)
				lines = append(lines, fmt.Sprintf("%s = %s", name, value))
			}
			return strings.Join(lines, "\n"), nil
		case 1:
			value, err := s.Settings.Get(args[0])
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s = %s (%s)", args[0], value, game.VariableHelp(args[0])), nil
		}

		err := s.Match.SetVariable(args[0], args[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s set to %s", args[0], args[1]), nil
	},
}

var SetTimeLeft = &ServerCommand{
	name:        "settime",
	argsFormat:  "[Xm][Ys]",
	aliases:     []string{"time", "timeleft"},
	description: "sets the time remaining in the current phase to X minutes and Y seconds",
	minRole:     RoleAdmin,
	f: func(s *Server, c *Client, args []string) (string, error) {
		if len(args) < 1 {
			return "", ErrMissingArgs
		}

		d, err := time.ParseDuration(args[0])
		if err != nil {
			return "", fmt.Errorf("could not parse duration: %w", err)
		}
		if d < 0 {
			return "", fmt.Errorf("duration must not be negative")
		}

		s.Match.SetTimeLeft(d)
		s.Match.Notify(fmt.Sprintf("%s set the time remaining to %s", c.Name, d), 3)
		return "", nil
	},
}

var Slay = &ServerCommand{
	name:        "slay",
	argsFormat:  "<id>",
	aliases:     []string{"kill"},
	description: "kills a player",
	minRole:     RoleAdmin,
	f: func(s *Server, c *Client, args []string) (string, error) {
		if len(args) < 1 {
			return "", ErrMissingArgs
		}

		id, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return "", fmt.Errorf("invalid player id: %w", err)
		}

		target := s.Match.Players.Get(uint32(id))
		if opt.IsNone(target) {
			return "", game.ErrUnknownPlayer
		}

		s.Match.Kill(target.Value, nil)
		return fmt.Sprintf("slayed %s", target.Value.Name), nil
	},
}

var ForceRound = &ServerCommand{
	name:        "forceround",
	aliases:     []string{"nextphase"},
	description: "ends the current phase of the round immediately",
	minRole:     RoleAdmin,
	f: func(s *Server, c *Client, args []string) (string, error) {
		err := s.Match.ForceRound()
		if err != nil {
			return "", err
		}
		return "", nil
	},
}

var ChangeMap = &ServerCommand{
	name:        "map",
	argsFormat:  "<map>",
	aliases:     []string{"changemap"},
	description: "loads a map and returns to the lobby",
	minRole:     RoleAdmin,
	f: func(s *Server, c *Client, args []string) (string, error) {
		if len(args) < 1 {
			return "", ErrMissingArgs
		}

		found := false
		for _, info := range s.Match.Maps {
			if info.Name == args[0] {
				found = true
			}
		}
		if !found {
			return "", game.ErrUnknownMap
		}

		s.Match.LoadMap(args[0])
		s.Match.ChangeState(game.NewWaitingForPlayers())
		return "", nil
	},
}

var DefaultCommands = []*ServerCommand{
	ChangeTeam,
	Plant,
	Defuse,
	StopDefuse,
	PickUp,
	Vote,
	Auth,
	SetVariable,
	SetTimeLeft,
	Slay,
	ForceRound,
	ChangeMap,
}
