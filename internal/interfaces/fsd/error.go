// Package fsd
package fsd

type ClientError byte

const (
	CommandOk ClientError = iota
	CallsignInUse
	CallsignInvalid
	Syntax
	SourceCallsignInvalid
	AuthFail
	NoCallsignFound
	NoFlightPlan
	InvalidProtocolVision
	RequestLevelTooHigh
	UserBaned
	NoSuchServer
)

var clientErrorsString = []string{"No error", "Callsign in use", "Invalid callsign",
	"Syntax error", "Invalid source callsign", "Invalid CID/password", "No such callsign", "No flightplan",
	"Invalid protocol revision", "Requested level too high", "CID/PID was suspended", "No such server"}

func (e ClientError) String() string {
	return clientErrorsString[e]
}

func (e ClientError) Index() int {
	return int(e)
}
