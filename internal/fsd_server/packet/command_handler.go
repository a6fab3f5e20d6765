// Package packet 命令处理的核心函数定义
package packet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cedric1982/fsd/internal/fsd_server/state"
	. "github.com/cedric1982/fsd/internal/interfaces/fsd"
	"github.com/cedric1982/fsd/internal/interfaces/global"
	"github.com/cedric1982/fsd/internal/utils"
)

func (session *Session) checkPacketLength(data []string, requirement *CommandRequirement) (*Result, bool) {
	length := len(data)
	if length < requirement.RequireLength {
		return ResultError(Syntax, requirement.Fatal, session.callsign, fmt.Errorf("datapack length too short, require %d but got %d", requirement.RequireLength, length)), false
	}
	return nil, true
}

func callsignValid(callsign string) bool {
	if len(callsign) < 2 || len(callsign) > 12 {
		return false
	}
	return !strings.ContainsAny(callsign, ":*")
}

// verifyUserInfo 验证用户信息
func (session *Session) verifyUserInfo(callsign string, protocol int, cid, password string, reqRating int) *Result {
	if !callsignValid(callsign) {
		return ResultError(CallsignInvalid, true, callsign, nil)
	}

	if protocol != 9 {
		return ResultError(InvalidProtocolVision, true, callsign, nil)
	}

	cert, err := session.node.Certs().GetCert(cid)
	if err != nil {
		return ResultError(AuthFail, true, callsign, err)
	}
	if cert.Suspended {
		return ResultError(UserBaned, true, callsign, nil)
	}
	if !session.node.Certs().VerifyPassword(cert, password) {
		return ResultError(AuthFail, true, callsign, nil)
	}
	if reqRating > cert.Rating {
		return ResultError(RequestLevelTooHigh, true, callsign, nil)
	}
	return nil
}

// addClient materialises a client on the node loop. The location is this
// node for user sessions and the announcing peer for relayed sessions; a
// live client with the same callsign is replaced per the registry contract.
func (session *Session) addClient(callsign, cid, realName, protocol string, clientType ClientType, rating Rating, simType int, lat, lon string) {
	fromPeer := session.isPeer
	peerIdent := session.peerIdent
	session.node.Enqueue(func() {
		registry := session.node.Registry()
		location := registry.MyServer().Ident
		if fromPeer {
			location = peerIdent
		}
		client := state.NewClient(cid, location, callsign, clientType, rating, realName, protocol, simType)
		client.Lat = utils.StrToFloat(lat, 0)
		client.Lon = utils.StrToFloat(lon, 0)
		client.PositionOk = client.Lat != 0 || client.Lon != 0
		if registry.AddClient(client) {
			session.logger.InfoF("[%s] Duplicate callsign, previous client replaced", callsign)
		}
	})
}

// handleAddAtc 处理管制员登录
func (session *Session) handleAddAtc(data []string, rawLine []byte) *Result {
	// #AA EDDF_TWR SERVER Joe_Bloggs 1000 123456  3  9  1  0  50.03333 8.570555 100
	// [0] [   1  ] [  2 ] [    3   ] [ 4] [  5 ] [6][7][8][9] [  10  ] [   11  ] [12]
	callsign := data[0]
	realName := data[2]
	cid := data[3]
	password := data[4]
	reqRating := utils.StrToInt(data[5], 0)
	protocol := utils.StrToInt(data[6], 0)
	if !session.isPeer {
		if result := session.verifyUserInfo(callsign, protocol, cid, password, reqRating); result != nil {
			return result
		}
	}
	session.callsign = callsign
	session.addClient(callsign, cid, realName, data[6], ClientAtc, Rating(reqRating), 0, data[9], data[10])
	if !session.isPeer {
		session.manager.RegisterClient(callsign, session)
		session.relayToPeers(rawLine)
	}
	session.logger.InfoF("[%s] ATC login successfully", callsign)
	return ResultSuccess()
}

// handleAddPilot 处理飞行员登录
func (session *Session) handleAddPilot(data []string, rawLine []byte) *Result {
	//	#AP DLH123 SERVER 1000 123456  1   9  16  Joe Bloggs EDDF
	//  [0] [  1 ] [  2 ] [ 3] [  4 ] [5] [6] [7] [       8      ]
	callsign := data[0]
	cid := data[2]
	password := data[3]
	reqRating := utils.StrToInt(data[4], 1) - 1
	protocol := utils.StrToInt(data[5], 0)
	simType := utils.StrToInt(data[6], 0)
	realName := data[7]
	if !session.isPeer {
		if result := session.verifyUserInfo(callsign, protocol, cid, password, reqRating); result != nil {
			return result
		}
	}
	session.callsign = callsign
	session.addClient(callsign, cid, realName, data[5], ClientPilot, Rating(reqRating), simType, "0", "0")
	if !session.isPeer {
		session.manager.RegisterClient(callsign, session)
		session.relayToPeers(rawLine)
	}
	session.logger.InfoF("[%s] Pilot login successfully", callsign)
	return ResultSuccess()
}

// relayToPeers forwards a locally originated line to the federation unless
// this node is configured silent.
func (session *Session) relayToPeers(rawLine []byte) {
	manager := session.manager
	session.node.Enqueue(func() {
		if session.node.Registry().MyServer().Silent() {
			return
		}
		manager.sendPeers(AllPeers.String(), rawLine)
	})
}

// handlePilotPosUpdate 处理飞行员位置更新
func (session *Session) handlePilotPosUpdate(data []string, rawLine []byte) *Result {
	//	@   S  DLH123 7000  1  50.00000 8.000000 35000 450 4290770974 278
	// [0] [1] [  2 ] [ 3] [4] [   5  ] [   6  ] [  7] [8] [    9   ] [10]
	callsign := data[1]
	session.node.Enqueue(func() {
		client, ok := session.node.Registry().GetClient(callsign)
		if !ok {
			return
		}
		client.UpdatePilot(data)
		session.refreshPeerLocked()
	})
	if !session.isPeer {
		session.relayToPeers(rawLine)
	}
	return ResultSuccess()
}

// handleAtcPosUpdate 处理管制员位置更新
func (session *Session) handleAtcPosUpdate(data []string, rawLine []byte) *Result {
	//  %  EDDF_TWR 20500  4  50  3  50.03333 8.570555  0
	// [0] [   1  ] [  2 ] [3] [4] [5] [   6 ] [   7  ] [8]
	callsign := data[0]
	session.node.Enqueue(func() {
		client, ok := session.node.Registry().GetClient(callsign)
		if !ok {
			return
		}
		client.UpdateAtc(data)
		session.refreshPeerLocked()
	})
	if !session.isPeer {
		session.relayToPeers(rawLine)
	}
	return ResultSuccess()
}

// handlePlan 处理飞行计划
func (session *Session) handlePlan(data []string, rawLine []byte) *Result {
	// $FP DLH123 SERVER  I  H/A320/L 474 EDDF 1115  0  FL371 EGLL  1    18   2    26  EGKK
	// [0] [  1 ] [  2 ] [3] [  4   ] [5] [ 6] [ 7] [8] [ 9 ] [10] [11] [12] [13] [14] [15]
	// /V/ SPESA T180 UNOKO
	// [16] [      17      ]
	callsign := data[0]
	session.node.Enqueue(func() {
		client, ok := session.node.Registry().GetClient(callsign)
		if !ok {
			return
		}
		client.HandleFP(data)
		if session.isPeer {
			// a plan learned from the federation counts as locally held, not
			// locally edited; never re-broadcast it
			client.MarkPlanModified()
			session.refreshPeerLocked()
		}
	})
	if !session.isPeer {
		session.relayToPeers(rawLine)
	}
	return ResultSuccess()
}

// planToPacket renders a stored plan back into its wire form for query
// answers.
func planToPacket(callsign, requester string, plan *state.FlightPlan) []byte {
	return makePacket(Plan, callsign, requester, string(plan.Type), plan.Aircraft,
		strconv.Itoa(plan.TasCruise), plan.DepAirport, strconv.Itoa(plan.DepTime),
		strconv.Itoa(plan.ActDepTime), plan.Alt, plan.DestAirport,
		strconv.Itoa(plan.HrsEnroute), strconv.Itoa(plan.MinEnroute),
		strconv.Itoa(plan.HrsFuel), strconv.Itoa(plan.MinFuel),
		plan.AltAirport, plan.Remarks, plan.Route)
}

// handleClientQuery 处理客户端查询消息
func (session *Session) handleClientQuery(data []string, rawLine []byte) *Result {
	//	$CQ EDDF_TWR SERVER FP  DLH123
	//  [0] [   1  ] [  2 ] [3] [  4 ]
	targetStation := data[1]
	if targetStation == global.FSDServerName {
		if data[2] == "FP" && len(data) >= 4 {
			requester := data[0]
			callsign := data[3]
			session.node.Enqueue(func() {
				client, ok := session.node.Registry().GetClient(callsign)
				if !ok || client.Plan == nil {
					session.SendError(ResultError(NoFlightPlan, false, requester, nil))
					return
				}
				session.SendLine(planToPacket(callsign, requester, client.Plan))
			})
		}
		return ResultSuccess()
	}
	if !session.manager.SendTo(targetStation, rawLine) {
		session.logger.DebugF("[%s](%s) query for unknown station %s dropped", session.connId, session.callsign, targetStation)
	}
	return ResultSuccess()
}

// handleClientResponse 处理客户端回复消息
func (session *Session) handleClientResponse(data []string, rawLine []byte) *Result {
	//	$CR EDDF_TWR SERVER ATIS  T  Frankfurt Tower, information Alpha
	//	[0] [   1  ] [  2 ] [ 3] [4] [              5               ]
	targetStation := data[1]
	if targetStation == global.FSDServerName {
		if data[2] == "ATIS" && len(data) >= 5 && data[3] == "T" {
			callsign := data[0]
			line := data[4]
			session.node.Enqueue(func() {
				if client, ok := session.node.Registry().GetClient(callsign); ok {
					client.AddInfoLine(line)
				}
			})
		}
		return ResultSuccess()
	}
	if !session.manager.SendTo(targetStation, rawLine) {
		session.logger.DebugF("[%s](%s) response for unknown station %s dropped", session.connId, session.callsign, targetStation)
	}
	return ResultSuccess()
}

// handleMessage relays a text message to a locally connected station.
func (session *Session) handleMessage(data []string, rawLine []byte) *Result {
	// #TM EDDF_TWR DLH123 hello
	// [0] [   1  ] [  2 ] [ 3 ]
	targetStation := data[1]
	if !session.manager.SendTo(targetStation, rawLine) {
		session.logger.DebugF("[%s](%s) message for unknown station %s dropped", session.connId, session.callsign, targetStation)
	}
	return ResultSuccess()
}

// handleRemoveClient 处理客户端登出
func (session *Session) handleRemoveClient(data []string, _ []byte) *Result {
	// #DA EDDF_TWR SERVER
	callsign := data[0]
	session.node.Enqueue(func() {
		if session.node.Registry().DestroyClient(callsign) {
			session.logger.InfoF("[%s] Offline", callsign)
		}
		session.refreshPeerLocked()
	})
	if !session.isPeer && callsign == session.callsign {
		session.disconnected.Store(true)
	}
	return ResultSuccess()
}

// handleServerSync links this session as a federation peer and answers with
// our own identity.
func (session *Session) handleServerSync(data []string, _ []byte) *Result {
	// SYNC<ident>
	ident := data[0]
	if ident == "" {
		return ResultError(NoSuchServer, false, session.callsign, fmt.Errorf("sync without ident"))
	}
	session.isPeer = true
	session.peerIdent = ident
	session.callsign = ident
	session.manager.RegisterPeer(ident, session)
	manager := session.manager
	session.node.Enqueue(func() {
		registry := session.node.Registry()
		if _, ok := registry.GetServer(ident); !ok {
			// placeholder until the peer's NOTIFY arrives; never published
			registry.AddServer(state.NewServer(ident, global.PlaceholderHostname, "", "", "", 0))
		}
		session.refreshPeerLocked()
		manager.SendServerNotify(ident, registry.MyServer().Info(), "")
	})
	session.logger.InfoF("Peer link established with %s", ident)
	return ResultSuccess()
}

// handleServerNotify applies a peer's identity announcement.
func (session *Session) handleServerNotify(data []string, _ []byte) *Result {
	// NOTIFY <target> <ident> <hostname> <location> <name> <email> <flags>
	ident := data[1]
	session.node.Enqueue(func() {
		registry := session.node.Registry()
		if registry.MyServer() != nil && registry.MyServer().Ident == ident {
			return
		}
		server, ok := registry.GetServer(ident)
		if !ok {
			server = state.NewServer(ident, data[2], data[3], data[4], data[5], ServerFlag(utils.StrToInt(data[6], 0)))
			registry.AddServer(server)
			session.logger.InfoF("Server %s joined the federation", ident)
			return
		}
		server.Hostname = data[2]
		server.Location = data[3]
		server.Name = data[4]
		server.Email = data[5]
		server.Flags = ServerFlag(utils.StrToInt(data[6], 0))
		server.SetAlive()
	})
	return ResultSuccess()
}

// handlePing answers lag probes.
func (session *Session) handlePing(data []string, _ []byte) *Result {
	// $PI <from> <target> <payload>
	from := data[0]
	payload := ""
	if len(data) >= 3 {
		payload = data[2]
	}
	session.node.Enqueue(func() {
		myIdent := session.node.Registry().MyServer().Ident
		session.refreshPeerLocked()
		session.SendLine(makePacket(Pong, myIdent, from, payload))
	})
	return ResultSuccess()
}

// handlePong consumes a lag probe answer; payload is "-1 <ms-at-send>".
func (session *Session) handlePong(data []string, _ []byte) *Result {
	if len(data) >= 3 {
		fields := strings.Fields(data[2])
		if len(fields) == 2 {
			sent := int64(utils.StrToInt(fields[1], 0))
			if sent > 0 {
				session.logger.DebugF("[%s](%s) lag %d ms", session.connId, session.callsign, nowMillis()-sent)
			}
		}
	}
	session.node.Enqueue(func() {
		session.refreshPeerLocked()
	})
	return ResultSuccess()
}

// refreshPeerLocked stamps the announcing peer's liveness; must run on the
// node loop.
func (session *Session) refreshPeerLocked() {
	if !session.isPeer {
		return
	}
	if server, ok := session.node.Registry().GetServer(session.peerIdent); ok {
		server.SetAlive()
	}
}

func (session *Session) handleCommand(commandType ClientCommand, data []string, rawLine []byte) *Result {
	var result = ResultSuccess()
	if requirement, ok := CommandRequirements[commandType]; ok {
		if err, ok := session.checkPacketLength(data, requirement); !ok {
			return err
		}
	}
	switch commandType {
	case AddAtc:
		result = session.handleAddAtc(data, rawLine)
	case AddPilot:
		result = session.handleAddPilot(data, rawLine)
	case PilotPosition:
		result = session.handlePilotPosUpdate(data, rawLine)
	case AtcPosition:
		result = session.handleAtcPosUpdate(data, rawLine)
	case Plan:
		result = session.handlePlan(data, rawLine)
	case Message:
		result = session.handleMessage(data, rawLine)
	case ClientQuery:
		result = session.handleClientQuery(data, rawLine)
	case ClientResponse:
		result = session.handleClientResponse(data, rawLine)
	case RemoveAtc, RemovePilot:
		result = session.handleRemoveClient(data, rawLine)
	case ServerSync:
		result = session.handleServerSync(data, rawLine)
	case ServerNotify:
		result = session.handleServerNotify(data, rawLine)
	case Ping:
		result = session.handlePing(data, rawLine)
	case Pong:
		result = session.handlePong(data, rawLine)
	default:
		result = ResultSuccess()
	}
	return result
}
