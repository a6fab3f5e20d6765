// Package fsd_server
package fsd_server

import (
	"net"

	"github.com/cedric1982/fsd/internal/fsd_server/packet"
	. "github.com/cedric1982/fsd/internal/interfaces"
)

// StartFSDServer starts the line-protocol listener and wires the session
// manager into the node as its federation link. Blocks accepting
// connections.
func StartFSDServer(applicationContent *ApplicationContent, node *Node) {
	config := applicationContent.ConfigManager().Config()
	logger := applicationContent.Logger()

	manager := packet.NewManager(node)
	node.SetPeer(manager)

	sem := make(chan struct{}, config.Server.FSDServer.MaxWorkers)
	ln, err := net.Listen("tcp", config.Server.FSDServer.Address)
	if err != nil {
		logger.FatalF("FSD Server Start error: %v", err)
		return
	}
	logger.InfoF("FSD Server Listen On " + ln.Addr().String())

	defer func() {
		err := ln.Close()
		if err != nil {
			logger.ErrorF("Server close error: %v", err)
		}
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			logger.ErrorF("Accept connection error: %v", err)
			continue
		}

		logger.DebugF("Accepted new connection from %s", conn.RemoteAddr().String())

		// 使用信号量控制并发连接数
		sem <- struct{}{}
		go func(c net.Conn) {
			session := packet.NewSession(node, manager, c)
			session.HandleConnection()
			<-sem
		}(conn)
	}
}
