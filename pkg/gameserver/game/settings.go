package game

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Settings are the tunables of the game mode. Durations are whole seconds.
type Settings struct {
	FreezeDuration     int  `json:"freezeDuration" yaml:"freezeDuration"`
	PlayDuration       int  `json:"playDuration" yaml:"playDuration"`
	EndDuration        int  `json:"endDuration" yaml:"endDuration"`
	BombDuration       int  `json:"bombDuration" yaml:"bombDuration"`
	BuyDuration        int  `json:"buyDuration" yaml:"buyDuration"`
	DefuseDuration     int  `json:"defuseDuration" yaml:"defuseDuration"`
	RoundLimit         int  `json:"roundLimit" yaml:"roundLimit"`
	BombEnabled        bool `json:"bombEnabled" yaml:"bombEnabled"`
	PlantReward        int  `json:"plantReward" yaml:"plantReward"`
	DefuseReward       int  `json:"defuseReward" yaml:"defuseReward"`
	TeamChangeCooldown int  `json:"teamChangeCooldown" yaml:"teamChangeCooldown"`
	MinPlayers         int  `json:"minPlayers" yaml:"minPlayers"`
	StartDelay         int  `json:"startDelay" yaml:"startDelay"`
	MapSelectDuration  int  `json:"mapSelectDuration" yaml:"mapSelectDuration"`
	AutoAssign         bool `json:"autoAssign" yaml:"autoAssign"`
}

func DefaultSettings() Settings {
	return Settings{
		FreezeDuration:     5,
		PlayDuration:       60,
		EndDuration:        5,
		BombDuration:       30,
		BuyDuration:        15,
		DefuseDuration:     5,
		RoundLimit:         12,
		BombEnabled:        true,
		PlantReward:        1000,
		DefuseReward:       1000,
		TeamChangeCooldown: 5,
		MinPlayers:         2,
		StartDelay:         5,
		MapSelectDuration:  15,
		AutoAssign:         true,
	}
}

// ToWinScore is the number of round wins that ends the match early.
func (s *Settings) ToWinScore() int {
	return (s.RoundLimit >> 1) + 1
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

type variable struct {
	help    string
	intVal  func(*Settings) *int
	boolVal func(*Settings) *bool
}

func intVar(help string, field func(*Settings) *int) variable {
	return variable{help: help, intVal: field}
}

func boolVar(help string, field func(*Settings) *bool) variable {
	return variable{help: help, boolVal: field}
}

var variables = map[string]variable{
	"pb_freeze_duration":      intVar("The duration of the freeze period.", func(s *Settings) *int { return &s.FreezeDuration }),
	"pb_play_duration":        intVar("The duration of the play period.", func(s *Settings) *int { return &s.PlayDuration }),
	"pb_end_duration":         intVar("The duration of the end period.", func(s *Settings) *int { return &s.EndDuration }),
	"pb_bomb_duration":        intVar("The time needed for the bomb to explode.", func(s *Settings) *int { return &s.BombDuration }),
	"pb_buy_duration":         intVar("The duration of the buy period.", func(s *Settings) *int { return &s.BuyDuration }),
	"pb_defuse_duration":      intVar("The time needed to defuse the bomb.", func(s *Settings) *int { return &s.DefuseDuration }),
	"pb_round_limit":          intVar("The amount of rounds.", func(s *Settings) *int { return &s.RoundLimit }),
	"pb_bomb_enabled":         boolVar("Whether rounds are played with the bomb.", func(s *Settings) *bool { return &s.BombEnabled }),
	"pb_plant_reward":         intVar("Money awarded for planting the bomb.", func(s *Settings) *int { return &s.PlantReward }),
	"pb_defuse_reward":        intVar("Money awarded for defusing the bomb.", func(s *Settings) *int { return &s.DefuseReward }),
	"pb_team_change_cooldown": intVar("Seconds before a player may change team again.", func(s *Settings) *int { return &s.TeamChangeCooldown }),
	"pb_min_players":          intVar("Players needed before a match starts.", func(s *Settings) *int { return &s.MinPlayers }),
	"pb_start_delay":          intVar("Countdown before a match starts.", func(s *Settings) *int { return &s.StartDelay }),
	"pb_mapselect_duration":   intVar("The duration of the map vote.", func(s *Settings) *int { return &s.MapSelectDuration }),
	"pb_auto_assign":          boolVar("Whether joining players are put on a team.", func(s *Settings) *bool { return &s.AutoAssign }),
}

// Variables lists the names accepted by Set, sorted.
func Variables() []string {
	names := make([]string, 0, len(variables))
	for name := range variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func VariableHelp(name string) string {
	return variables[name].help
}

// Get returns the current value of a named variable.
func (s *Settings) Get(name string) (string, error) {
	v, ok := variables[name]
	if !ok {
		return "", fmt.Errorf("unknown variable '%s'", name)
	}
	if v.boolVal != nil {
		return strconv.FormatBool(*v.boolVal(s)), nil
	}
	return strconv.Itoa(*v.intVal(s)), nil
}

// Set changes a named variable. Integer variables must not be negative and
// the round limit must be at least one.
func (s *Settings) Set(name, value string) error {
	v, ok := variables[name]
	if !ok {
		return fmt.Errorf("unknown variable '%s'", name)
	}

	if v.boolVal != nil {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s expects a boolean: %w", name, err)
		}
		*v.boolVal(s) = parsed
		return nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s expects an integer: %w", name, err)
	}
	if parsed < 0 || (name == "pb_round_limit" && parsed < 1) {
		return fmt.Errorf("%s is out of range: %d", name, parsed)
	}
	*v.intVal(s) = parsed
	return nil
}
