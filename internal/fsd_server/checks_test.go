// Package fsd_server
package fsd_server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cedric1982/fsd/internal/fsd_server/state"
	"github.com/cedric1982/fsd/internal/interfaces/fsd"
)

func addPeerWithClient(node *Node, ident, callsign string, alive time.Time) (*state.Server, *state.Client) {
	server := state.NewServer(ident, ident+".example.com", "EU", "peer "+ident, "", 0)
	server.Alive = alive
	client := state.NewClient("1000", ident, callsign, fsd.ClientPilot, fsd.Normal, "someone", "9", 0)
	client.Alive = alive
	node.registry.Do(func() {
		node.registry.AddServer(server)
		node.registry.AddClient(client)
	})
	return server, client
}

func TestServerEvictionCascade(t *testing.T) {
	node, _, _ := newTestNode(t, false)
	now := time.Now()

	timeout := node.configManager.Config().Server.FSDServer.ServerTimeoutTime
	addPeerWithClient(node, "A", "AAA1", now.Add(-timeout-time.Second))
	_, clientB := addPeerWithClient(node, "B", "BBB1", now)

	node.doChecks(now)

	if _, ok := node.registry.GetServer("A"); ok {
		t.Error("stale server A survived the tick")
	}
	if _, ok := node.registry.GetClient("AAA1"); ok {
		t.Error("client of evicted server A survived the tick")
	}
	if _, ok := node.registry.GetServer("B"); !ok {
		t.Error("fresh server B was evicted")
	}
	if _, ok := node.registry.GetClient(clientB.Callsign); !ok {
		t.Error("client of fresh server B was evicted")
	}
}

func TestClientTimeout(t *testing.T) {
	node, _, _ := newTestNode(t, false)
	now := time.Now()

	intervals := node.configManager.Config().Server.FSDServer
	server, stale := addPeerWithClient(node, "A", "AAA1", now.Add(-intervals.ClientTimeoutTime-time.Second))
	// the peer itself is still alive, only its client went quiet
	node.registry.Do(server.SetAlive)

	node.doChecks(now)

	if _, ok := node.registry.GetClient(stale.Callsign); ok {
		t.Error("stale remote client survived the tick")
	}
	if _, ok := node.registry.GetServer("A"); !ok {
		t.Error("live server evicted together with its client")
	}
}

func TestSilentNodeUsesLongClientTimeout(t *testing.T) {
	node, _, _ := newTestNode(t, true)
	now := time.Now()

	intervals := node.configManager.Config().Server.FSDServer
	server, client := addPeerWithClient(node, "A", "AAA1", now.Add(-intervals.ClientTimeoutTime-time.Second))
	node.registry.Do(server.SetAlive)

	node.doChecks(now)

	if _, ok := node.registry.GetClient(client.Callsign); !ok {
		t.Error("silent node evicted a client after the short timeout")
	}

	// past the silent timeout the client still goes
	node.registry.Do(func() {
		client.Alive = now.Add(-intervals.SilentClientTimeTime - time.Second)
		server.SetAlive()
	})
	node.doChecks(now)
	if _, ok := node.registry.GetClient(client.Callsign); ok {
		t.Error("silent node never evicts clients")
	}
}

func TestLocalClientsNeverTimeOut(t *testing.T) {
	node, _, _ := newTestNode(t, false)
	now := time.Now()

	client := state.NewClient("1000", "LOCAL", "LOC1", fsd.ClientPilot, fsd.Normal, "local", "9", 0)
	client.Alive = now.Add(-24 * time.Hour)
	node.registry.Do(func() { node.registry.AddClient(client) })

	node.doChecks(now)

	if _, ok := node.registry.GetClient("LOC1"); !ok {
		t.Error("locally owned client was evicted by the liveness duty")
	}
}

func TestNotifyAndLagDuties(t *testing.T) {
	node, peer, _ := newTestNode(t, false)
	now := time.Now()

	intervals := node.configManager.Config().Server.FSDServer
	node.prevNotify = now.Add(-intervals.NotifyDuration - time.Second)
	node.prevLagCheck = now.Add(-intervals.LagDuration - time.Second)
	node.prevWhazzup = now // keep the publisher quiet

	node.doChecks(now)

	var notify, ping *peerCall
	for i := range peer.calls {
		switch peer.calls[i].kind {
		case "notify":
			notify = &peer.calls[i]
		case "ping":
			ping = &peer.calls[i]
		}
	}
	if notify == nil {
		t.Fatal("notify duty did not broadcast")
	}
	if notify.target != "*" || notify.payload != "LOCAL" {
		t.Errorf("notify = %+v; expected broadcast of LOCAL", notify)
	}
	if ping == nil {
		t.Fatal("lag duty did not broadcast")
	}
	if ping.payload[:3] != "-1 " {
		t.Errorf("lag payload = %q; expected \"-1 <ms>\" form", ping.payload)
	}
	// notify is issued before the lag probe within one tick
	if peer.calls[0].kind != "notify" {
		t.Errorf("first peer call = %s; expected notify", peer.calls[0].kind)
	}
}

func TestNotifyReconfiguresOnChange(t *testing.T) {
	node, peer, _ := newTestNode(t, false)
	now := time.Now()

	conf := node.configManager.Config()
	conf.System.Name = "renamed node"
	conf.System.Changed = true
	node.prevNotify = now.Add(-conf.Server.FSDServer.NotifyDuration - time.Second)
	node.prevWhazzup = now

	node.doChecks(now)

	if conf.System.Changed {
		t.Error("Changed flag not cleared after reconfiguration")
	}
	if node.registry.MyServer().Name != "renamed node" {
		t.Errorf("myserver name = %q; expected the reconfigured name", node.registry.MyServer().Name)
	}
	if len(peer.calls) == 0 || peer.calls[0].kind != "notify" {
		t.Error("server-notify not broadcast after reconfiguration")
	}
}

func TestCertReloadDuty(t *testing.T) {
	node, _, certs := newTestNode(t, false)
	now := time.Now()

	intervals := node.configManager.Config().Server.FSDServer
	node.prevWhazzup = now
	node.prevCertCheck = now.Add(-intervals.CertFileDuration - time.Second)
	certs.changed = false

	node.doChecks(now)
	if certs.readCalls != 0 {
		t.Error("cert table reloaded although the store did not change")
	}

	node.prevCertCheck = now.Add(-intervals.CertFileDuration - time.Second)
	certs.changed = true
	node.doChecks(now.Add(time.Second))
	if certs.readCalls != 1 {
		t.Errorf("readCalls = %d; expected 1 after store change", certs.readCalls)
	}
}

func TestWhazzupDutyPublishes(t *testing.T) {
	node, _, _ := newTestNode(t, false)
	now := time.Now()

	node.prevWhazzup = now.Add(-node.configManager.Config().Server.FSDServer.WhazzupDuration - time.Second)
	node.doChecks(now)

	whazzupPath := node.configManager.Config().System.Whazzup
	if _, err := os.Stat(whazzupPath); err != nil {
		t.Errorf("roster file not published: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(whazzupPath), PilotSnapshotName)); err != nil {
		t.Errorf("pilot snapshot not published: %v", err)
	}
}

func TestSnapshotFailureLeavesTargetIntact(t *testing.T) {
	node, _, _ := newTestNode(t, false)
	now := time.Now()

	whazzupPath := node.configManager.Config().System.Whazzup
	previous := []byte("previous snapshot\n")
	if err := os.WriteFile(whazzupPath, previous, 0644); err != nil {
		t.Fatal(err)
	}
	// a directory squatting on the temp path makes the write fail before the
	// rename, like a full disk would
	if err := os.Mkdir(whazzupPath+".tmp", 0755); err != nil {
		t.Fatal(err)
	}

	node.prevWhazzup = now.Add(-node.configManager.Config().Server.FSDServer.WhazzupDuration - time.Second)
	node.doChecks(now) // must not panic

	data, err := os.ReadFile(whazzupPath)
	if err != nil {
		t.Fatalf("target roster unreadable after failed publish: %v", err)
	}
	if string(data) != string(previous) {
		t.Error("failed publish clobbered the previous roster")
	}
	if node.fileOpen {
		t.Error("fileOpen guard left set after failed publish")
	}
}
