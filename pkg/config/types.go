package config

import (
	"github.com/cfoust/paintball/pkg/gameserver"
	"github.com/cfoust/paintball/pkg/gameserver/game"
)

type WebIngress struct {
	Port int `json:"port" yaml:"port"`
}

type ServerIngress struct {
	Web WebIngress `json:"web" yaml:"web"`
}

type DatabaseSettings struct {
	// Path to the SQLite database. Empty disables match history.
	Path string `json:"path" yaml:"path"`
}

type RedisSettings struct {
	// Empty disables the scoreboard cache.
	Address  string `json:"address" yaml:"address"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
	// Seconds a saved scoreboard lives without updates.
	TTL int `json:"ttl" yaml:"ttl"`
}

type SpawnPoint struct {
	X   float64 `json:"x" yaml:"x"`
	Y   float64 `json:"y" yaml:"y"`
	Z   float64 `json:"z" yaml:"z"`
	Yaw float64 `json:"yaw" yaml:"yaw"`
}

type Map struct {
	Name string       `json:"name" yaml:"name"`
	Blue []SpawnPoint `json:"blue" yaml:"blue"`
	Red  []SpawnPoint `json:"red" yaml:"red"`
}

type ServerSettings struct {
	Description   string           `json:"description" yaml:"description"`
	TickRate      int              `json:"tickRate" yaml:"tickRate"`
	AdminPassword string           `json:"adminPassword" yaml:"adminPassword"`
	Game          game.Settings    `json:"game" yaml:"game"`
	Maps          []Map            `json:"maps" yaml:"maps"`
	Ingress       ServerIngress    `json:"ingress" yaml:"ingress"`
	Database      DatabaseSettings `json:"database" yaml:"database"`
	Redis         RedisSettings    `json:"redis" yaml:"redis"`
}

type Config struct {
	Server ServerSettings `json:"server" yaml:"server"`
}

func spawnPoints(points []SpawnPoint) []game.SpawnPoint {
	result := make([]game.SpawnPoint, 0, len(points))
	for _, point := range points {
		result = append(result, game.SpawnPoint(point))
	}
	return result
}

// GameServer builds the configuration of the match server.
func (s *ServerSettings) GameServer() *gameserver.Config {
	maps := make([]game.MapInfo, 0, len(s.Maps))
	for _, info := range s.Maps {
		maps = append(maps, game.MapInfo{
			Name: info.Name,
			Blue: spawnPoints(info.Blue),
			Red:  spawnPoints(info.Red),
		})
	}

	return &gameserver.Config{
		Description:   s.Description,
		TickRate:      s.TickRate,
		AdminPassword: s.AdminPassword,
		Settings:      s.Game,
		Maps:          maps,
	}
}
