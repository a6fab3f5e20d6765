// Package state
package state

import (
	"sync"
	"time"
)

// Registry owns every client and server this node knows about. The node loop
// is the only writer and wraps its mutations in Do; snapshot readers (the
// publisher, the status endpoint) work on deep copies so a running tick can
// never leak a partial update into a published file.
type Registry struct {
	mu       sync.RWMutex
	clients  map[string]*Client
	servers  map[string]*Server
	myserver *Server
}

func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]*Client),
		servers: make(map[string]*Server),
	}
}

// Do runs fn under the write lock. All registry and entity mutation goes
// through here.
func (r *Registry) Do(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn()
}

// SetMyServer registers this node's own entry. It is exempt from peer
// timeout eviction. When the ident changed (config edit), the entry is
// re-keyed and local clients follow their owner.
func (r *Registry) SetMyServer(server *Server) {
	if r.myserver != nil && r.myserver.Ident != server.Ident {
		delete(r.servers, r.myserver.Ident)
		for _, client := range r.clients {
			if client.Location == r.myserver.Ident {
				client.Location = server.Ident
			}
		}
	}
	r.servers[server.Ident] = server
	r.myserver = server
}

func (r *Registry) MyServer() *Server {
	return r.myserver
}

// AddServer inserts or replaces a peer entry by ident.
func (r *Registry) AddServer(server *Server) {
	r.servers[server.Ident] = server
}

func (r *Registry) GetServer(ident string) (*Server, bool) {
	server, ok := r.servers[ident]
	return server, ok
}

// DestroyServer removes a server and cascades to every client that reached
// us through it. Returns the number of cascaded clients, or -1 when the
// ident is unknown or names this node's own entry.
func (r *Registry) DestroyServer(ident string) int {
	server, ok := r.servers[ident]
	if !ok || server == r.myserver {
		return -1
	}
	cascaded := 0
	for callsign, client := range r.clients {
		if client.Location == ident {
			delete(r.clients, callsign)
			cascaded++
		}
	}
	delete(r.servers, ident)
	return cascaded
}

// AddClient inserts a client; a live client with the same callsign is
// replaced.
func (r *Registry) AddClient(client *Client) (replaced bool) {
	_, replaced = r.clients[client.Callsign]
	r.clients[client.Callsign] = client
	return replaced
}

func (r *Registry) GetClient(callsign string) (*Client, bool) {
	client, ok := r.clients[callsign]
	return client, ok
}

func (r *Registry) DestroyClient(callsign string) bool {
	if _, ok := r.clients[callsign]; !ok {
		return false
	}
	delete(r.clients, callsign)
	return true
}

// ExpiredServers returns idents of peers silent for longer than timeout,
// never including this node's own entry.
func (r *Registry) ExpiredServers(now time.Time, timeout time.Duration) []string {
	expired := make([]string, 0)
	for ident, server := range r.servers {
		if server == r.myserver {
			continue
		}
		if now.Sub(server.Alive) > timeout {
			expired = append(expired, ident)
		}
	}
	return expired
}

// ExpiredClients returns callsigns of non-local clients unheard for longer
// than limit. Clients owned by this node's own entry are the protocol
// layer's responsibility and never time out here.
func (r *Registry) ExpiredClients(now time.Time, limit time.Duration) []string {
	expired := make([]string, 0)
	myIdent := ""
	if r.myserver != nil {
		myIdent = r.myserver.Ident
	}
	for callsign, client := range r.clients {
		if client.Location == myIdent {
			continue
		}
		if now.Sub(client.Alive) > limit {
			expired = append(expired, callsign)
		}
	}
	return expired
}

func (r *Registry) ClientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

func (r *Registry) ServerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.servers)
}

// SnapshotClients returns value copies of every client, self-consistent at
// the instant of the call. Attached plans are copied too.
func (r *Registry) SnapshotClients() []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clients := make([]Client, 0, len(r.clients))
	for _, client := range r.clients {
		snapshot := *client
		if client.Plan != nil {
			plan := *client.Plan
			snapshot.Plan = &plan
		}
		snapshot.InfoLines = append([]string(nil), client.InfoLines...)
		clients = append(clients, snapshot)
	}
	return clients
}

// SnapshotServers returns value copies of every server entry.
func (r *Registry) SnapshotServers() []Server {
	r.mu.RLock()
	defer r.mu.RUnlock()
	servers := make([]Server, 0, len(r.servers))
	for _, server := range r.servers {
		servers = append(servers, *server)
	}
	return servers
}
