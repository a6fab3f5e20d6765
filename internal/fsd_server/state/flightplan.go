// Package state
package state

import (
	"github.com/cedric1982/fsd/internal/utils"
)

// FlightPlan is owned by exactly one client; replacing it bumps Revision.
type FlightPlan struct {
	Callsign    string
	Revision    int
	Type        byte // 'I', 'V', 'S' or 'D'
	Aircraft    string
	TasCruise   int
	DepAirport  string
	DepTime     int
	ActDepTime  int
	Alt         string
	DestAirport string
	HrsEnroute  int
	MinEnroute  int
	HrsFuel     int
	MinFuel     int
	AltAirport  string
	Remarks     string
	Route       string
}

// newFlightPlan materialises a plan from a $FP token list.
// $FP CPA421 SERVER  I  H/A320/L 474 ZYTL 1115  0  FL371 ZYHB  1    18   2    26  ZYCC /V/remarks route
//	   [  0 ] [  1 ] [2] [   3  ] [4] [ 5] [ 6] [7] [ 8 ] [ 9] [10] [11] [12] [13] [14] [ 15 ]  [16]
func newFlightPlan(data []string) *FlightPlan {
	planType := byte('I')
	if len(data[2]) > 0 {
		planType = data[2][0]
	}
	return &FlightPlan{
		Callsign:    data[0],
		Revision:    1,
		Type:        planType,
		Aircraft:    data[3],
		TasCruise:   utils.StrToInt(data[4], 0),
		DepAirport:  data[5],
		DepTime:     utils.StrToInt(data[6], 0),
		ActDepTime:  utils.StrToInt(data[7], 0),
		Alt:         data[8],
		DestAirport: data[9],
		HrsEnroute:  utils.StrToInt(data[10], 0),
		MinEnroute:  utils.StrToInt(data[11], 0),
		HrsFuel:     utils.StrToInt(data[12], 0),
		MinFuel:     utils.StrToInt(data[13], 0),
		AltAirport:  data[14],
		Remarks:     data[15],
		Route:       data[16],
	}
}
