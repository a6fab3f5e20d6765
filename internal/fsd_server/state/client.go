// Package state
package state

import (
	"math"
	"strconv"
	"time"

	"github.com/cedric1982/fsd/internal/interfaces/fsd"
	"github.com/cedric1982/fsd/internal/utils"
)

const (
	// minTrackLegMeters gates track recomputation: below this leg length the
	// bearing is dominated by position jitter.
	minTrackLegMeters = 50.0

	// maxPilotRangeNM caps the altitude-derived pilot visibility radius.
	maxPilotRangeNM = 600
)

// Client is one connected session, pilot or ATC, owned by the registry.
// Location is the ident of the federation server the session reached us
// through; the server's lifetime bounds the client's.
type Client struct {
	Cid       string
	Callsign  string
	RealName  string
	Protocol  string
	Type      fsd.ClientType
	Rating    fsd.Rating
	SimType   int
	StartTime time.Time
	Alive     time.Time

	Lat         float64
	Lon         float64
	Altitude    int
	GroundSpeed int
	Transponder int
	PBH         uint32
	PositionOk  bool

	Frequency    int
	FacilityType int
	VisualRange  int
	Sector       string
	IdentFlag    string

	PrevLat     float64
	PrevLon     float64
	ComputedHdg int

	Plan      *FlightPlan
	InfoLines []string
	FpModed   bool

	Location string
}

var timeNow = time.Now

func NewClient(cid, location, callsign string, clientType fsd.ClientType, rating fsd.Rating, realName, protocol string, simType int) *Client {
	now := timeNow()
	return &Client{
		Cid:         cid,
		Callsign:    callsign,
		RealName:    realName,
		Protocol:    protocol,
		Type:        clientType,
		Rating:      rating,
		SimType:     simType,
		StartTime:   now,
		Alive:       now,
		ComputedHdg: -1,
		InfoLines:   make([]string, 0),
		Location:    location,
	}
}

func (c *Client) SetAlive() {
	c.Alive = timeNow()
}

// UpdatePilot applies a pilot position report.
//	@   S  DLH123 7000  1  50.00000 8.000000 35000 450 4290770974 278
// [0] [1] [  2 ] [ 3] [4] [   5  ] [   6  ] [  7] [8] [    9   ] [10]
// data excludes the command token, so data[0] is the ident flag.
func (c *Client) UpdatePilot(data []string) {
	c.IdentFlag = data[0]
	c.Transponder = utils.StrToInt(data[2], 0)
	c.Rating = fsd.Rating(utils.StrToInt(data[3], c.Rating.Index()))

	lat, latErr := strconv.ParseFloat(data[4], 64)
	lon, lonErr := strconv.ParseFloat(data[5], 64)
	positionOk := latErr == nil && lonErr == nil && isFinite(lat) && isFinite(lon)

	c.shiftPosition()
	if positionOk {
		c.Lat = lat
		c.Lon = lon
	}
	c.PositionOk = positionOk
	c.Altitude = utils.StrToInt(data[6], 0)
	c.GroundSpeed = utils.StrToInt(data[7], 0)
	c.PBH = uint32(utils.StrToInt(data[8], 0))

	c.updateHeading()
	c.SetAlive()
}

// UpdateAtc applies a controller position report. Position fields are kept
// for ATC-at-position even though range comes from VisualRange.
//	%  EDDF_TWR 18520  50  4  5  50.03333 8.570555  0
// [0] [   1  ] [  2 ] [3] [4] [5] [   6 ] [   7  ] [8]
func (c *Client) UpdateAtc(data []string) {
	c.Frequency = utils.StrToInt(data[1], 0)
	c.FacilityType = utils.StrToInt(data[2], 0)
	c.VisualRange = utils.StrToInt(data[3], 0)
	c.Rating = fsd.Rating(utils.StrToInt(data[4], c.Rating.Index()))

	lat, latErr := strconv.ParseFloat(data[5], 64)
	lon, lonErr := strconv.ParseFloat(data[6], 64)
	positionOk := latErr == nil && lonErr == nil && isFinite(lat) && isFinite(lon)

	c.shiftPosition()
	if positionOk {
		c.Lat = lat
		c.Lon = lon
	}
	c.PositionOk = positionOk
	c.Altitude = utils.StrToInt(data[7], 0)

	c.updateHeading()
	c.SetAlive()
}

// HandleFP replaces any existing plan atomically and bumps the revision.
func (c *Client) HandleFP(data []string) {
	plan := newFlightPlan(data)
	if c.Plan != nil {
		plan.Revision = c.Plan.Revision + 1
	}
	c.Plan = plan
	c.FpModed = false
	c.SetAlive()
}

// MarkPlanModified sets FpModed. The packet layer calls it for plans learned
// from a federation peer. Nothing reads the flag when relaying: re-broadcast
// is decided by the packet layer, which relays only lines from local sessions.
func (c *Client) MarkPlanModified() {
	c.FpModed = true
}

// AddInfoLine appends one controller information line (ATIS text).
func (c *Client) AddInfoLine(line string) {
	c.InfoLines = append(c.InfoLines, line)
}

func (c *Client) ClearInfoLines() {
	c.InfoLines = c.InfoLines[:0]
}

// shiftPosition remembers the last known fix before it is overwritten.
func (c *Client) shiftPosition() {
	c.PrevLat = c.Lat
	c.PrevLon = c.Lon
}

// updateHeading recomputes the track over ground when the aircraft moved far
// enough for the bearing to be meaningful; otherwise the previous value (or
// the -1 sentinel) is retained.
func (c *Client) updateHeading() {
	if !c.PositionOk {
		return
	}
	heading, distance, ok := utils.Bearing(c.PrevLat, c.PrevLon, c.Lat, c.Lon)
	if !ok || distance < minTrackLegMeters {
		return
	}
	c.ComputedHdg = heading
}

// Distance returns the great-circle distance to another client in nautical
// miles.
func (c *Client) Distance(other *Client) float64 {
	return utils.DistanceInNauticalMiles(c.Lat, c.Lon, other.Lat, other.Lon)
}

// GetRange returns the effective visibility radius in nautical miles: an
// altitude-derived horizon for pilots, the reported visual range for ATC.
func (c *Client) GetRange() int {
	if c.Type == fsd.ClientAtc {
		return c.VisualRange
	}
	altitude := max(c.Altitude, 0)
	visibility := int(math.Sqrt(float64(altitude) * 1.5))
	return min(visibility, maxPilotRangeNM)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
