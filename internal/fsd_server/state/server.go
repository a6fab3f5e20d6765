// Package state
package state

import (
	"time"

	"github.com/cedric1982/fsd/internal/interfaces/fsd"
)

// Server is one federation peer, including this node's own entry.
type Server struct {
	Ident    string
	Hostname string
	Location string
	Name     string
	Email    string
	Flags    fsd.ServerFlag
	Alive    time.Time
}

func NewServer(ident, hostname, location, name, email string, flags fsd.ServerFlag) *Server {
	return &Server{
		Ident:    ident,
		Hostname: hostname,
		Location: location,
		Name:     name,
		Email:    email,
		Flags:    flags,
		Alive:    timeNow(),
	}
}

func (s *Server) SetAlive() {
	s.Alive = timeNow()
}

func (s *Server) Silent() bool {
	return s.Flags&fsd.ServerSilent != 0
}

func (s *Server) Info() *fsd.ServerInfo {
	return &fsd.ServerInfo{
		Ident:    s.Ident,
		Hostname: s.Hostname,
		Location: s.Location,
		Name:     s.Name,
		Email:    s.Email,
		Flags:    s.Flags,
	}
}
