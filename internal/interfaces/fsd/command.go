// Package fsd
package fsd

type ClientCommand string

var (
	AddAtc         = ClientCommand("#AA")
	RemoveAtc      = ClientCommand("#DA")
	AddPilot       = ClientCommand("#AP")
	RemovePilot    = ClientCommand("#DP")
	PilotPosition  = ClientCommand("@")
	AtcPosition    = ClientCommand("%")
	Message        = ClientCommand("#TM")
	Ping           = ClientCommand("$PI")
	Pong           = ClientCommand("$PO")
	Plan           = ClientCommand("$FP")
	Error          = ClientCommand("$ER")
	ClientQuery    = ClientCommand("$CQ")
	ClientResponse = ClientCommand("$CR")
	ServerNotify   = ClientCommand("NOTIFY")
	ServerSync     = ClientCommand("SYNC")
)

// PossibleClientCommands is ordered longest-prefix-first where prefixes
// overlap so the tokenizer never shadows a longer command.
var PossibleClientCommands = [][]byte{
	[]byte(PilotPosition), []byte(AtcPosition), []byte(Message),
	[]byte(Plan), []byte(AddAtc), []byte(RemoveAtc), []byte(AddPilot),
	[]byte(RemovePilot), []byte(Ping), []byte(Pong),
	[]byte(ClientQuery), []byte(ClientResponse),
	[]byte(ServerNotify), []byte(ServerSync),
}

type CommandRequirement struct {
	RequireLength int
	Fatal         bool
}

var CommandRequirements = map[ClientCommand]*CommandRequirement{
	AddAtc:         {12, true},
	AddPilot:       {8, true},
	AtcPosition:    {8, false},
	PilotPosition:  {10, false},
	Message:        {3, false},
	Plan:           {17, false},
	Ping:           {2, false},
	Pong:           {2, false},
	ClientQuery:    {3, false},
	ClientResponse: {3, false},
	ServerNotify:   {7, false},
	ServerSync:     {1, false},
}

func (c ClientCommand) String() string {
	return string(c)
}

type BroadcastTarget string

var (
	AllPeers BroadcastTarget = "*"
)

func (b BroadcastTarget) String() string {
	return string(b)
}
