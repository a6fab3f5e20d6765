// Package packet
package packet

import (
	"strconv"
	"sync"

	"github.com/cedric1982/fsd/internal/fsd_server/state"
	. "github.com/cedric1982/fsd/internal/interfaces/fsd"
	"github.com/cedric1982/fsd/internal/interfaces/log"
	"github.com/cedric1982/fsd/internal/interfaces/operation"
)

// NodeInterface is the slice of the node the packet layer needs: an event
// queue for registry mutation and read access to the collaborators.
type NodeInterface interface {
	Enqueue(fn func())
	Registry() *state.Registry
	Logger() log.LoggerInterface
	Certs() operation.CertOperationInterface
}

// Manager tracks live sessions: local client sessions keyed by callsign and
// federation peer links keyed by server ident. It is the concrete
// fsd.PeerInterface handed to the node.
type Manager struct {
	node     NodeInterface
	logger   log.LoggerInterface
	mu       sync.RWMutex
	sessions map[string]*Session
	peers    map[string]*Session
}

func NewManager(node NodeInterface) *Manager {
	return &Manager{
		node:     node,
		logger:   node.Logger(),
		sessions: make(map[string]*Session),
		peers:    make(map[string]*Session),
	}
}

func (m *Manager) RegisterClient(callsign string, session *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[callsign] = session
}

func (m *Manager) UnregisterClient(callsign string, session *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions[callsign] == session {
		delete(m.sessions, callsign)
	}
}

func (m *Manager) RegisterPeer(ident string, session *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.peers[ident] = session
}

func (m *Manager) UnregisterPeer(ident string, session *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.peers[ident] == session {
		delete(m.peers, ident)
	}
}

// SendTo delivers a raw line to a local client session, dropping it when the
// callsign is not connected here.
func (m *Manager) SendTo(callsign string, line []byte) bool {
	m.mu.RLock()
	session, ok := m.sessions[callsign]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	session.SendLine(line)
	return true
}

// sendPeers writes a line to the peer matching target, or to every peer for
// the "*" broadcast target.
func (m *Manager) sendPeers(target string, line []byte) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if target != AllPeers.String() {
		if session, ok := m.peers[target]; ok {
			session.SendLine(line)
		}
		return
	}
	for _, session := range m.peers {
		session.SendLine(line)
	}
}

// SendPing implements the lag probe half of fsd.PeerInterface. Only the node
// loop calls this, so reading myserver is safe.
func (m *Manager) SendPing(target string, payload string) {
	myIdent := m.node.Registry().MyServer().Ident
	m.sendPeers(target, makePacket(Ping, myIdent, target, payload))
}

// SendServerNotify announces a server entry to the federation.
func (m *Manager) SendServerNotify(target string, info *ServerInfo, extra string) {
	m.sendPeers(target, makePacket(ServerNotify, target, info.Ident, info.Hostname,
		info.Location, info.Name, info.Email, strconv.Itoa(int(info.Flags)), extra))
}
