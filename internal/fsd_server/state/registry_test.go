// Package state
package state

import (
	"testing"
	"time"

	"github.com/cedric1982/fsd/internal/interfaces/fsd"
)

func newTestRegistry() *Registry {
	registry := NewRegistry()
	registry.SetMyServer(NewServer("LOCAL", "localhost", "EU", "me", "admin@example.com", 0))
	return registry
}

func TestAddClientReplacesDuplicateCallsign(t *testing.T) {
	registry := newTestRegistry()

	first := NewClient("1000", "LOCAL", "DLH123", fsd.ClientPilot, fsd.Normal, "First", "9", 0)
	second := NewClient("2000", "LOCAL", "DLH123", fsd.ClientPilot, fsd.Normal, "Second", "9", 0)

	if replaced := registry.AddClient(first); replaced {
		t.Error("first AddClient reported replaced")
	}
	if replaced := registry.AddClient(second); !replaced {
		t.Error("second AddClient did not report replaced")
	}

	client, ok := registry.GetClient("DLH123")
	if !ok {
		t.Fatal("DLH123 not found")
	}
	if client != second {
		t.Error("lookup returned the replaced client")
	}
	if registry.ClientCount() != 1 {
		t.Errorf("ClientCount = %d; expected 1", registry.ClientCount())
	}
}

func TestDestroyServerCascades(t *testing.T) {
	registry := newTestRegistry()

	registry.AddServer(NewServer("A", "a.example.com", "EU", "peer a", "", 0))
	registry.AddServer(NewServer("B", "b.example.com", "EU", "peer b", "", 0))
	registry.AddClient(NewClient("1", "A", "AAA1", fsd.ClientPilot, fsd.Normal, "a", "9", 0))
	registry.AddClient(NewClient("2", "B", "BBB1", fsd.ClientPilot, fsd.Normal, "b", "9", 0))

	cascaded := registry.DestroyServer("A")
	if cascaded != 1 {
		t.Errorf("DestroyServer cascaded %d clients; expected 1", cascaded)
	}
	if _, ok := registry.GetClient("AAA1"); ok {
		t.Error("client of destroyed server survived")
	}
	if _, ok := registry.GetClient("BBB1"); !ok {
		t.Error("client of unrelated server was destroyed")
	}
	if _, ok := registry.GetServer("B"); !ok {
		t.Error("unrelated server was destroyed")
	}
}

func TestDestroyServerProtectsMyServer(t *testing.T) {
	registry := newTestRegistry()
	if cascaded := registry.DestroyServer("LOCAL"); cascaded != -1 {
		t.Errorf("DestroyServer accepted this node's own entry, cascaded = %d", cascaded)
	}
	if _, ok := registry.GetServer("LOCAL"); !ok {
		t.Error("myserver missing after attempted destroy")
	}
}

func TestLocationInvariant(t *testing.T) {
	registry := newTestRegistry()
	registry.AddServer(NewServer("A", "a.example.com", "EU", "peer a", "", 0))
	registry.AddClient(NewClient("1", "A", "AAA1", fsd.ClientPilot, fsd.Normal, "a", "9", 0))

	for _, client := range registry.SnapshotClients() {
		if _, ok := registry.GetServer(client.Location); !ok {
			t.Errorf("client %s location %q has no live server entry", client.Callsign, client.Location)
		}
	}
}

func TestExpiredServers(t *testing.T) {
	clock := mockClock(t, time.Unix(2000000, 0))
	registry := newTestRegistry()

	stale := NewServer("A", "a.example.com", "EU", "peer a", "", 0)
	fresh := NewServer("B", "b.example.com", "EU", "peer b", "", 0)
	registry.AddServer(stale)
	registry.AddServer(fresh)

	clock(601 * time.Second)
	fresh.SetAlive()

	expired := registry.ExpiredServers(timeNow(), 600*time.Second)
	if len(expired) != 1 || expired[0] != "A" {
		t.Errorf("ExpiredServers = %v; expected [A]", expired)
	}
}

func TestExpiredClientsSkipsLocal(t *testing.T) {
	clock := mockClock(t, time.Unix(2000000, 0))
	registry := newTestRegistry()
	registry.AddServer(NewServer("A", "a.example.com", "EU", "peer a", "", 0))

	local := NewClient("1", "LOCAL", "LOC1", fsd.ClientPilot, fsd.Normal, "l", "9", 0)
	remote := NewClient("2", "A", "REM1", fsd.ClientPilot, fsd.Normal, "r", "9", 0)
	registry.AddClient(local)
	registry.AddClient(remote)

	clock(301 * time.Second)

	expired := registry.ExpiredClients(timeNow(), 300*time.Second)
	if len(expired) != 1 || expired[0] != "REM1" {
		t.Errorf("ExpiredClients = %v; expected [REM1]", expired)
	}
}

func TestSnapshotClientsIsolation(t *testing.T) {
	registry := newTestRegistry()
	client := NewClient("1", "LOCAL", "DLH123", fsd.ClientPilot, fsd.Normal, "a", "9", 0)
	client.HandleFP([]string{"DLH123", "SERVER", "I", "A320", "474", "EDDF", "1115", "0",
		"FL371", "EGLL", "1", "18", "2", "26", "EGKK", "", ""})
	registry.AddClient(client)

	snapshot := registry.SnapshotClients()
	if len(snapshot) != 1 {
		t.Fatalf("snapshot size = %d; expected 1", len(snapshot))
	}

	// mutating the live entry must not touch the snapshot
	client.Lat = 99
	client.Plan.Route = "CHANGED"
	if snapshot[0].Lat == 99 {
		t.Error("snapshot shares position with live client")
	}
	if snapshot[0].Plan.Route == "CHANGED" {
		t.Error("snapshot shares plan with live client")
	}
}
