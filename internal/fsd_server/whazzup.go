// Package fsd_server
package fsd_server

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/cedric1982/fsd/internal/fsd_server/state"
	"github.com/cedric1982/fsd/internal/interfaces/global"
)

// sprintGmt renders the legacy 14-digit UTC timestamp used by the roster.
func sprintGmt(t time.Time) string {
	return t.UTC().Format("20060102150405")
}

func sprintGmtDate(t time.Time) string {
	return t.UTC().Format("Mon Jan 2 15:04:05 2006")
}

// FormatRoster renders the colon-delimited public roster. Entries are
// sorted so successive snapshots diff cleanly; consumers may not rely on
// any order.
func FormatRoster(now time.Time, clients []state.Client, servers []state.Server) []byte {
	builder := strings.Builder{}

	builder.WriteString("![DateStamp]" + sprintGmtDate(now) + "\n")
	builder.WriteString("!GENERAL\n")
	builder.WriteString("VERSION = 1\n")
	builder.WriteString("RELOAD = 1\n")
	builder.WriteString("UPDATE = " + sprintGmt(now) + "\n")
	builder.WriteString(fmt.Sprintf("CONNECTED CLIENTS = %d\n", len(clients)))
	builder.WriteString(fmt.Sprintf("CONNECTED SERVERS = %d\n", len(servers)))

	sort.Slice(clients, func(i, j int) bool { return clients[i].Callsign < clients[j].Callsign })
	sort.Slice(servers, func(i, j int) bool { return servers[i].Ident < servers[j].Ident })

	builder.WriteString("!CLIENTS\n")
	for i := range clients {
		builder.WriteString(formatClientLine(&clients[i]))
		builder.WriteByte('\n')
	}

	builder.WriteString("!SERVERS\n")
	for i := range servers {
		server := &servers[i]
		if server.Hostname == global.PlaceholderHostname {
			continue
		}
		connected := 1
		if server.Silent() {
			connected = 0
		}
		builder.WriteString(fmt.Sprintf("%s:%s:%s:%s:%d\n",
			server.Ident, server.Hostname, server.Location, server.Name, connected))
	}

	return []byte(builder.String())
}

func formatClientLine(client *state.Client) string {
	plan := client.Plan

	seg1 := fmt.Sprintf("%s:%s:%s:%s", client.Callsign, client.Cid, client.RealName, client.Type.String())

	var seg2 string
	if client.Frequency != 0 && client.Frequency < 100000 {
		seg2 = fmt.Sprintf("1%02d.%03d", client.Frequency/1000, client.Frequency%1000)
	}

	var seg3 string
	if hasPublishablePosition(client) {
		seg3 = fmt.Sprintf("%f:%f:%d:%d", client.Lat, client.Lon, client.Altitude, client.GroundSpeed)
	} else {
		seg3 = ":::"
	}

	var seg4 string
	if plan != nil {
		seg4 = fmt.Sprintf("%s:%d:%s:%s:%s", plan.Aircraft, plan.TasCruise, plan.DepAirport, plan.Alt, plan.DestAirport)
	} else {
		seg4 = "::::"
	}

	seg5 := fmt.Sprintf("%s:%s:%d:%d:%d:%d", client.Location, client.Protocol,
		client.Rating.Index(), client.Transponder, client.FacilityType, client.VisualRange)

	var seg6 string
	if plan != nil {
		seg6 = fmt.Sprintf("%d:%c:%d:%d:%d:%d:%d:%d:%s:%s:%s", plan.Revision, plan.Type,
			plan.DepTime, plan.ActDepTime, plan.HrsEnroute, plan.MinEnroute,
			plan.HrsFuel, plan.MinFuel, plan.AltAirport, plan.Remarks, plan.Route)
	} else {
		seg6 = "::::::::::"
	}

	seg7 := "::::::" + sprintGmt(client.StartTime)

	return strings.Join([]string{seg1, seg2, seg3, seg4, seg5, seg6, seg7}, ":")
}

// hasPublishablePosition mirrors the legacy roster gate: a zeroed axis or an
// implausible altitude marks the fix as unusable for publication.
func hasPublishablePosition(client *state.Client) bool {
	return client.PositionOk && client.Lat != 0 && client.Lon != 0 && client.Altitude < 100000
}

// writeFileAtomic publishes data at path through a sibling .tmp file so
// readers only ever observe a complete snapshot. The pre-rename remove keeps
// filesystems happy that refuse to rename over an existing file.
func writeFileAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	file, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, global.DefaultFilePermissions)
	if err != nil {
		return err
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	_ = os.Remove(path)
	return os.Rename(tmpPath, path)
}
