// Package fsd_server
package fsd_server

import (
	"context"
	"fmt"
	"time"

	"github.com/cedric1982/fsd/internal/fsd_server/state"
	. "github.com/cedric1982/fsd/internal/interfaces"
	"github.com/cedric1982/fsd/internal/interfaces/fsd"
	"github.com/cedric1982/fsd/internal/interfaces/log"
	"github.com/cedric1982/fsd/internal/interfaces/operation"
	"github.com/cedric1982/fsd/internal/store"
)

// Node owns the registry, the periodic controller state and the handles to
// every collaborator. It replaces the process-wide singletons of the legacy
// servers: everything that used to be global hangs off this value.
type Node struct {
	logger        log.LoggerInterface
	configManager ConfigManagerInterface
	certs         operation.CertOperationInterface
	registry      *state.Registry
	peer          fsd.PeerInterface
	mirror        store.StoreServiceInterface
	subProcesses  []fsd.SubProcess

	events chan func()

	prevNotify    time.Time
	prevLagCheck  time.Time
	prevCertCheck time.Time
	prevWhazzup   time.Time
	lastCertLoad  time.Time
	lastTick      int64
	fileOpen      bool
}

var timeNow = time.Now

func NewNode(content *ApplicationContent, mirror store.StoreServiceInterface) *Node {
	now := timeNow()
	node := &Node{
		logger:        content.Logger(),
		configManager: content.ConfigManager(),
		certs:         content.Certs(),
		registry:      state.NewRegistry(),
		mirror:        mirror,
		subProcesses:  make([]fsd.SubProcess, 0),
		events:        make(chan func(), 1024),
		prevNotify:    now,
		prevLagCheck:  now,
		prevCertCheck: now,
		prevWhazzup:   now,
		lastTick:      now.Unix(),
	}
	node.configMyServer()
	node.RegisterSubProcess(content.ConfigManager())
	return node
}

func (n *Node) Registry() *state.Registry { return n.registry }

func (n *Node) Logger() log.LoggerInterface { return n.logger }

func (n *Node) Certs() operation.CertOperationInterface { return n.certs }

// SetPeer wires the outbound federation link once the packet layer is up.
func (n *Node) SetPeer(peer fsd.PeerInterface) {
	n.peer = peer
}

// RegisterSubProcess adds a collaborator pumped once per tick (the config
// manager, the METAR manager, ...).
func (n *Node) RegisterSubProcess(process fsd.SubProcess) {
	n.subProcesses = append(n.subProcesses, process)
}

// Enqueue hands a registry mutation to the node loop. Protocol sessions are
// the producers; the loop is the only goroutine that applies them.
func (n *Node) Enqueue(fn func()) {
	n.events <- fn
}

// Run drives the node: drain protocol events, pump sub-processes, and fire
// doChecks when the wall clock advanced by at least one second.
func (n *Node) Run(ctx context.Context) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	n.logger.Info("We are up")
	for {
		select {
		case <-ctx.Done():
			n.logger.Info("Node loop stopped")
			return
		case event := <-n.events:
			n.registry.Do(event)
		case <-ticker.C:
			for _, process := range n.subProcesses {
				process.Pump()
			}
			now := timeNow()
			if now.Unix() != n.lastTick {
				n.lastTick = now.Unix()
				n.doChecks(now)
			}
		}
	}
}

// configMyServer (re)builds this node's own server entry from the system
// config group and clears the group's Changed flag.
func (n *Node) configMyServer() {
	system := n.configManager.Config().System
	system.Changed = false

	flags := fsd.ServerFlag(0)
	if system.Silent {
		flags |= fsd.ServerSilent
	}

	n.registry.Do(func() {
		n.registry.SetMyServer(state.NewServer(system.Ident, system.Hostname,
			system.Location, system.Name, system.Email, flags))
	})
	n.logger.InfoF("Server identity configured: %s (%s)", system.Ident, system.Hostname)
}

// doChecks advances the time-driven duties. Invoked at most once per
// wall-clock second, always from the node loop; duty order matters — server
// eviction precedes client eviction so the orphan cascade is a no-op.
func (n *Node) doChecks(now time.Time) {
	config := n.configManager.Config()
	intervals := config.Server.FSDServer

	if now.Sub(n.prevNotify) > intervals.NotifyDuration {
		if config.System.Changed {
			n.configMyServer()
		}
		if n.peer != nil {
			n.peer.SendServerNotify(fsd.AllPeers.String(), n.registry.MyServer().Info(), "")
		}
		n.prevNotify = now
	}

	if now.Sub(n.prevLagCheck) > intervals.LagDuration {
		if n.peer != nil {
			n.peer.SendPing(fsd.AllPeers.String(), fmt.Sprintf("-1 %d", now.UnixMilli()))
		}
		n.prevLagCheck = now
	}

	if now.Sub(n.prevCertCheck) > intervals.CertFileDuration {
		n.prevCertCheck = now
		if n.certs.StoreChanged(n.lastCertLoad) {
			n.lastCertLoad = now
			if count, err := n.certs.ReadCert(); err != nil {
				n.logger.WarnF("Certificate reload failed: %v", err)
			} else {
				n.logger.InfoF("Certificate table reloaded, %d entries", count)
			}
		}
	}

	if now.Sub(n.prevWhazzup) >= intervals.WhazzupDuration {
		n.prevWhazzup = now
		if !n.fileOpen {
			n.fileOpen = true
			if err := n.publishSnapshots(now); err != nil {
				// snapshot failure must never reach the controller
				n.logger.WarnF("Snapshot publish failed: %v", err)
			}
			n.fileOpen = false
		}
	}

	n.registry.Do(func() {
		for _, ident := range n.registry.ExpiredServers(now, intervals.ServerTimeoutTime) {
			cascaded := n.registry.DestroyServer(ident)
			n.logger.InfoF("Server %s timed out, dropped with %d clients", ident, cascaded)
		}

		/* In silent mode this node receives no updates, so the short
		   timeout would drop every client; use the long silent timeout. */
		limit := intervals.ClientTimeoutTime
		if n.registry.MyServer().Silent() {
			limit = intervals.SilentClientTimeTime
		}
		for _, callsign := range n.registry.ExpiredClients(now, limit) {
			n.registry.DestroyClient(callsign)
			n.logger.InfoF("Client %s timed out", callsign)
		}
	})
}
