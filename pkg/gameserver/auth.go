package gameserver

import (
	"crypto/subtle"
	"errors"
	"fmt"
)

var (
	ErrAuthDisabled  = errors.New("authentication is disabled on this server")
	ErrWrongPassword = errors.New("wrong password")
)

func (s *Server) authenticate(client *Client, password string) error {
	if s.AdminPassword == "" {
		return ErrAuthDisabled
	}

	if subtle.ConstantTimeCompare([]byte(password), []byte(s.AdminPassword)) != 1 {
		s.log.Warn().Str("host", client.Host).Msgf("%s failed to authenticate", client)
		return ErrWrongPassword
	}

	s.setRole(client, RoleAdmin)
	return nil
}

func (s *Server) setRole(client *Client, role Role) {
	if client.Role == role {
		return
	}

	client.Role = role
	msg := fmt.Sprintf("%s claimed %s privileges", client.Name, role)
	s.log.Info().Msg(msg)
	s.Match.Notify(msg, 3)
}
