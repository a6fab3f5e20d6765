// Package fsd_server
package fsd_server

import (
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/cedric1982/fsd/internal/fsd_server/state"
	"github.com/cedric1982/fsd/internal/geomag"
	"github.com/cedric1982/fsd/internal/interfaces/fsd"
	"github.com/cedric1982/fsd/internal/utils"
)

const (
	PilotSnapshotName = "pilot_snapshot.json"

	feetToMeters = 0.3048
)

// declination is swappable so snapshot tests run without the field model.
var declination = geomag.Declination

type PilotEntry struct {
	Callsign string  `json:"callsign"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Alt      int     `json:"alt"`
	Gs       int     `json:"gs"`
	Pbh      uint32  `json:"pbh"`
	HdgTru   float64 `json:"hdg_tru"`
	DeclDeg  float64 `json:"decl_deg"`
	HdgMag   float64 `json:"hdg_mag"`
}

type PilotSnapshot struct {
	Ts      int64        `json:"ts"`
	Clients []PilotEntry `json:"clients"`
}

// BuildPilotSnapshot collects every pilot with a publishable position. The
// decoded PBH heading is published as hdg_tru and the magnetic heading is
// derived from it by removing declination.
func BuildPilotSnapshot(now time.Time, clients []state.Client) *PilotSnapshot {
	snapshot := &PilotSnapshot{
		Ts:      now.Unix(),
		Clients: make([]PilotEntry, 0, len(clients)),
	}
	for i := range clients {
		client := &clients[i]
		if client.Type != fsd.ClientPilot {
			continue
		}
		if !hasPublishablePosition(client) {
			continue
		}

		hdgTru := utils.HeadingFromPBH(client.PBH)

		// sea level is close enough for declination purposes when the actual
		// altitude is not trusted
		decl, err := declination(client.Lat, client.Lon, 0)
		if err != nil {
			decl = 0
		}

		snapshot.Clients = append(snapshot.Clients, PilotEntry{
			Callsign: client.Callsign,
			Lat:      client.Lat,
			Lon:      client.Lon,
			Alt:      client.Altitude,
			Gs:       client.GroundSpeed,
			Pbh:      client.PBH,
			HdgTru:   hdgTru,
			DeclDeg:  decl,
			HdgMag:   utils.Wrap360(hdgTru - decl),
		})
	}
	return snapshot
}

type StatusEntry struct {
	Callsign string   `json:"callsign"`
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
	Alt      int      `json:"alt"`
	Gs       int      `json:"gs"`
	Pbh      uint32   `json:"pbh"`
	HdgSim   float64  `json:"hdg_sim"`
	TrackDeg *int     `json:"track_deg,omitempty"`
	WmmOk    bool     `json:"wmm_ok"`
	DeclDeg  *float64 `json:"decl_deg"`
	HdgTrue  *float64 `json:"hdg_true"`
}

type StatusSnapshot struct {
	Ts      int64         `json:"ts"`
	Clients []StatusEntry `json:"clients"`
}

// BuildStatusSnapshot is the diagnostic variant served by the status
// endpoint: the raw simulator heading, the track over ground when known, and
// a true heading only when the declination lookup is trustworthy.
func BuildStatusSnapshot(now time.Time, clients []state.Client) *StatusSnapshot {
	snapshot := &StatusSnapshot{
		Ts:      now.Unix(),
		Clients: make([]StatusEntry, 0, len(clients)),
	}
	for i := range clients {
		client := &clients[i]
		if client.Type != fsd.ClientPilot {
			continue
		}
		if !hasPublishablePosition(client) {
			continue
		}

		hdgSim := utils.HeadingFromPBH(client.PBH)
		entry := StatusEntry{
			Callsign: client.Callsign,
			Lat:      client.Lat,
			Lon:      client.Lon,
			Alt:      client.Altitude,
			Gs:       client.GroundSpeed,
			Pbh:      client.PBH,
			HdgSim:   hdgSim,
		}

		if client.ComputedHdg >= 0 {
			track := client.ComputedHdg
			entry.TrackDeg = &track
		}

		altMeters := float64(client.Altitude) * feetToMeters
		decl, err := declination(client.Lat, client.Lon, altMeters)
		wmmOk := err == nil && geomag.Plausible(decl)
		entry.WmmOk = wmmOk
		if wmmOk {
			hdgTrue := utils.Wrap360(hdgSim + decl)
			entry.DeclDeg = &decl
			entry.HdgTrue = &hdgTrue
		}

		snapshot.Clients = append(snapshot.Clients, entry)
	}
	return snapshot
}

// publishSnapshots writes the roster and the pilot JSON next to it, then
// hands both to the mirror. Runs on the node loop; the error is logged and
// discarded by the caller.
func (n *Node) publishSnapshots(now time.Time) error {
	whazzupPath := n.configManager.Config().System.Whazzup

	clients := n.registry.SnapshotClients()
	servers := n.registry.SnapshotServers()

	if err := writeFileAtomic(whazzupPath, FormatRoster(now, clients, servers)); err != nil {
		return err
	}

	data, err := json.Marshal(BuildPilotSnapshot(now, clients))
	if err != nil {
		return err
	}
	data = append(data, '\n')
	jsonPath := filepath.Join(filepath.Dir(whazzupPath), PilotSnapshotName)
	if err := writeFileAtomic(jsonPath, data); err != nil {
		return err
	}

	if n.mirror != nil {
		// the renamed files are immutable, uploading must not stall the tick
		go func() {
			_ = n.mirror.MirrorSnapshot(whazzupPath, filepath.Base(whazzupPath))
			_ = n.mirror.MirrorSnapshot(jsonPath, PilotSnapshotName)
		}()
	}
	return nil
}
