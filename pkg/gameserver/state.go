package gameserver

import (
	"time"
)

// Status describes the server for clients that have just connected. Uptime
// is in seconds.
type Status struct {
	Description string    `json:"description" cbor:"description"`
	UpSince     time.Time `json:"upSince" cbor:"upSince"`
	Uptime      int       `json:"uptime" cbor:"uptime"`
	NumClients  int       `json:"numClients" cbor:"numClients"`
	Map         string    `json:"map" cbor:"map"`
	Maps        []string  `json:"maps" cbor:"maps"`
}

func (s *Server) status() Status {
	maps := make([]string, len(s.Match.Maps))
	for i, info := range s.Match.Maps {
		maps[i] = info.Name
	}

	return Status{
		Description: s.Description,
		UpSince:     s.Started(),
		Uptime:      int(s.Uptime() / time.Second),
		NumClients:  len(s.clients),
		Map:         s.Match.Map,
		Maps:        maps,
	}
}
