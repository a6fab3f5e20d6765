// Package fsd_server
package fsd_server

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cedric1982/fsd/internal/fsd_server/state"
	"github.com/cedric1982/fsd/internal/geomag"
	"github.com/cedric1982/fsd/internal/interfaces/fsd"
	"github.com/cedric1982/fsd/internal/utils"
)

func stubDeclination(t *testing.T, value float64, err error) {
	t.Helper()
	declination = func(lat, lon, altMeters float64) (float64, error) {
		return value, err
	}
	t.Cleanup(func() { declination = geomag.Declination })
}

func snapshotPilot(callsign string, headingDeg float64) state.Client {
	client := rosterPilot(callsign)
	client.PBH = utils.PackPBH(0, 0, headingDeg, false)
	return client
}

func TestBuildPilotSnapshot(t *testing.T) {
	stubDeclination(t, 2.5, nil)
	now := time.Unix(1754480000, 0)

	snapshot := BuildPilotSnapshot(now, []state.Client{snapshotPilot("DLH123", 90)})
	if snapshot.Ts != now.Unix() {
		t.Errorf("ts = %d; expected %d", snapshot.Ts, now.Unix())
	}
	if len(snapshot.Clients) != 1 {
		t.Fatalf("snapshot has %d entries; expected 1", len(snapshot.Clients))
	}

	entry := snapshot.Clients[0]
	if entry.Callsign != "DLH123" {
		t.Errorf("callsign = %q", entry.Callsign)
	}
	if math.Abs(entry.HdgTru-90) > 360.0/1024.0 {
		t.Errorf("hdg_tru = %f; expected about 90", entry.HdgTru)
	}
	if entry.DeclDeg != 2.5 {
		t.Errorf("decl_deg = %f; expected 2.5", entry.DeclDeg)
	}
	expectedMag := utils.Wrap360(entry.HdgTru - 2.5)
	if entry.HdgMag != expectedMag {
		t.Errorf("hdg_mag = %f; expected %f", entry.HdgMag, expectedMag)
	}
}

func TestBuildPilotSnapshotDeclinationFailure(t *testing.T) {
	stubDeclination(t, 0, errors.New("model unavailable"))

	snapshot := BuildPilotSnapshot(time.Now(), []state.Client{snapshotPilot("DLH123", 180)})
	if len(snapshot.Clients) != 1 {
		t.Fatal("declination failure must not drop the pilot")
	}
	entry := snapshot.Clients[0]
	if entry.DeclDeg != 0 {
		t.Errorf("decl_deg = %f; expected 0 on lookup failure", entry.DeclDeg)
	}
	if entry.HdgMag != entry.HdgTru {
		t.Errorf("hdg_mag = %f; expected uncorrected %f", entry.HdgMag, entry.HdgTru)
	}
}

func TestBuildPilotSnapshotExclusions(t *testing.T) {
	stubDeclination(t, 0, nil)
	tests := []struct {
		name   string
		mutate func(*state.Client)
	}{
		{"atc", func(c *state.Client) { c.Type = fsd.ClientAtc }},
		{"zero lat", func(c *state.Client) { c.Lat = 0 }},
		{"zero lon", func(c *state.Client) { c.Lon = 0 }},
		{"implausible altitude", func(c *state.Client) { c.Altitude = 100000 }},
		{"position not ok", func(c *state.Client) { c.PositionOk = false }},
	}
	pass := 0
	fail := 0
	for _, test := range tests {
		client := snapshotPilot("DLH123", 90)
		test.mutate(&client)
		snapshot := BuildPilotSnapshot(time.Now(), []state.Client{client})
		if len(snapshot.Clients) != 0 {
			fail++
			t.Errorf("%s: entry published; expected exclusion", test.name)
			continue
		}
		pass++
	}
	t.Logf("TestBuildPilotSnapshotExclusions: %d pass, %d fail", pass, fail)
}

func TestBuildStatusSnapshot(t *testing.T) {
	stubDeclination(t, 2.5, nil)

	client := snapshotPilot("DLH123", 90)
	client.ComputedHdg = 87
	snapshot := BuildStatusSnapshot(time.Now(), []state.Client{client})
	if len(snapshot.Clients) != 1 {
		t.Fatalf("status has %d entries; expected 1", len(snapshot.Clients))
	}

	entry := snapshot.Clients[0]
	if !entry.WmmOk {
		t.Error("wmm_ok = false for a plausible declination")
	}
	if entry.TrackDeg == nil || *entry.TrackDeg != 87 {
		t.Errorf("track_deg = %v; expected 87", entry.TrackDeg)
	}
	if entry.DeclDeg == nil || *entry.DeclDeg != 2.5 {
		t.Errorf("decl_deg = %v; expected 2.5", entry.DeclDeg)
	}
	expectedTrue := utils.Wrap360(entry.HdgSim + 2.5)
	if entry.HdgTrue == nil || *entry.HdgTrue != expectedTrue {
		t.Errorf("hdg_true = %v; expected %f", entry.HdgTrue, expectedTrue)
	}
}

func TestBuildStatusSnapshotWmmUnavailable(t *testing.T) {
	// out of the plausibility band
	stubDeclination(t, 75, nil)

	client := snapshotPilot("DLH123", 90)
	snapshot := BuildStatusSnapshot(time.Now(), []state.Client{client})
	entry := snapshot.Clients[0]
	if entry.WmmOk {
		t.Error("wmm_ok = true for an implausible declination")
	}
	if entry.DeclDeg != nil || entry.HdgTrue != nil {
		t.Error("decl_deg/hdg_true not null without a trustworthy model")
	}
	if entry.TrackDeg != nil {
		t.Error("track_deg present without a computed track")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatal(err)
	}
	// null, not 0: consumers must be able to tell "unknown" from "north"
	if !jsonHasNull(t, data, "decl_deg") || !jsonHasNull(t, data, "hdg_true") {
		t.Errorf("status entry does not serialize nulls: %s", data)
	}
}

func jsonHasNull(t *testing.T, data []byte, key string) bool {
	t.Helper()
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	value, present := decoded[key]
	return present && value == nil
}

// TestPublishSinglePilotEndToEnd is the single-pilot scenario: one server,
// one pilot heading 090, snapshot triggered, JSON read back.
func TestPublishSinglePilotEndToEnd(t *testing.T) {
	node, _, _ := newTestNode(t, false)
	now := time.Now()

	pilot := state.NewClient("1000", "LOCAL", "DLH123", fsd.ClientPilot, fsd.Normal, "Joe Bloggs", "9", 0)
	node.registry.Do(func() { node.registry.AddClient(pilot) })
	pilot.UpdatePilot([]string{"S", "DLH123", "7000", "1", "50.0", "8.0", "35000", "450",
		"4290770974", "278"})
	pilot.PBH = utils.PackPBH(0, 0, 90, false)

	if err := node.publishSnapshots(now); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	jsonPath := filepath.Join(filepath.Dir(node.configManager.Config().System.Whazzup), PilotSnapshotName)
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	snapshot := PilotSnapshot{}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		t.Fatalf("published JSON invalid: %v", err)
	}
	if len(snapshot.Clients) != 1 {
		t.Fatalf("published %d clients; expected 1", len(snapshot.Clients))
	}
	entry := snapshot.Clients[0]
	if entry.Callsign != "DLH123" || entry.Lat != 50.0 || entry.Lon != 8.0 || entry.Alt != 35000 || entry.Gs != 450 {
		t.Errorf("published entry wrong: %+v", entry)
	}
	if math.Abs(entry.HdgTru-90) > 360.0/1024.0 {
		t.Errorf("hdg_tru = %f; expected about 90", entry.HdgTru)
	}
	if entry.HdgMag != utils.Wrap360(entry.HdgTru-entry.DeclDeg) {
		t.Errorf("hdg_mag = %f; inconsistent with hdg_tru and decl_deg", entry.HdgMag)
	}
}
