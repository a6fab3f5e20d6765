// Package packet
package packet

import (
	"bufio"
	"bytes"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	. "github.com/cedric1982/fsd/internal/interfaces/fsd"
	"github.com/cedric1982/fsd/internal/interfaces/global"
	"github.com/cedric1982/fsd/internal/interfaces/log"
	"github.com/thanhpk/randstr"
)

const disconnectDelay = time.Minute

// Session is one inbound connection, either a user client or a federation
// peer link. The session goroutine only parses and enqueues; every registry
// mutation it causes runs on the node loop.
type Session struct {
	logger       log.LoggerInterface
	node         NodeInterface
	manager      *Manager
	conn         net.Conn
	connId       string
	callsign     string
	isPeer       bool
	peerIdent    string
	disconnected atomic.Bool
	writeMu      sync.Mutex
}

func NewSession(node NodeInterface, manager *Manager, conn net.Conn) *Session {
	return &Session{
		logger:   node.Logger(),
		node:     node,
		manager:  manager,
		conn:     conn,
		connId:   randstr.String(8),
		callsign: "unknown",
	}
}

func (session *Session) SendLine(line []byte) {
	if session.disconnected.Load() {
		session.logger.DebugF("[%s](%s) Attempted send to disconnected session", session.connId, session.callsign)
		return
	}

	session.writeMu.Lock()
	defer session.writeMu.Unlock()

	if !bytes.HasSuffix(line, splitSign) {
		session.logger.DebugF("[%s](%s) <- %s", session.connId, session.callsign, line)
		line = append(line, splitSign...)
	} else {
		session.logger.DebugF("[%s](%s) <- %s", session.connId, session.callsign, line[:len(line)-splitSignLen])
	}

	if _, err := session.conn.Write(line); err != nil {
		session.logger.WarnF("[%s](%s) Failed to send data: %v", session.connId, session.callsign, err)
	}
}

func (session *Session) SendError(result *Result) {
	if result.Success {
		return
	}
	packet := makePacket(Error, global.FSDServerName, session.callsign,
		fmt.Sprintf("%03d", result.Errno.Index()), result.Env, result.Errno.String())
	session.SendLine(packet)
	if result.Fatal {
		session.disconnected.Store(true)
		time.AfterFunc(disconnectDelay, func() {
			_ = session.conn.Close()
		})
	}
}

func (session *Session) handleLine(line []byte) {
	if session.disconnected.Load() {
		return
	}
	command, data := parserCommandLine(line)
	if command == "" {
		session.logger.DebugF("[%s](%s) unknown packet %s", session.connId, session.callsign, line)
		return
	}
	result := session.handleCommand(command, data, append([]byte(nil), line...))
	if result == nil {
		session.logger.WarnF("[%s](%s) handleCommand return a nil result", session.connId, session.callsign)
		return
	}
	if !result.Success {
		session.logger.ErrorF("[%s](%s) handleCommand fail, %s, %s", session.connId, session.callsign, result.Errno.String(), result.Err.Error())
		session.SendError(result)
	}
}

func (session *Session) HandleConnection() {
	defer func() {
		session.logger.DebugF("[%s](%s) x Connection closed", session.connId, session.callsign)
		if err := session.conn.Close(); err != nil && !isNetClosedError(err) {
			session.logger.WarnF("[%s](%s) Error occurred while closing connection, details: %v", session.connId, session.callsign, err)
		}
		session.cleanup()
	}()
	scanner := bufio.NewScanner(session.conn)
	scanner.Split(createSplitFunc(splitSign))
	for scanner.Scan() {
		line := scanner.Bytes()
		session.logger.DebugF("[%s](%s) -> %s", session.connId, session.callsign, line)
		session.handleLine(line)
		if session.disconnected.Load() {
			break
		}
	}
}

// cleanup runs when the connection is gone. A user client is destroyed
// immediately; a peer's server entry stays and falls to the liveness timeout
// so its clients survive a short link flap.
func (session *Session) cleanup() {
	if session.isPeer {
		session.manager.UnregisterPeer(session.peerIdent, session)
		return
	}
	callsign := session.callsign
	if callsign == "unknown" {
		return
	}
	session.manager.UnregisterClient(callsign, session)
	session.node.Enqueue(func() {
		if session.node.Registry().DestroyClient(callsign) {
			session.logger.InfoF("[%s] Offline", callsign)
		}
	})
}
