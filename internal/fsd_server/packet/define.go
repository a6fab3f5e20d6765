// Package packet 线路协议的分帧与打包
package packet

import (
	"bytes"
	"strings"

	. "github.com/cedric1982/fsd/internal/interfaces/fsd"
)

var (
	splitSign    = []byte("\r\n")
	splitSignLen = len(splitSign)
)

func parserCommandLine(line []byte) (ClientCommand, []string) {
	for _, prefix := range PossibleClientCommands {
		if bytes.HasPrefix(line, prefix) {
			decodeLine := string(line[len(prefix):])
			return ClientCommand(prefix), strings.Split(decodeLine, ":")
		}
	}
	return "", nil
}

func makePacket(command ClientCommand, parts ...string) []byte {
	totalLen := len(command)
	if len(parts) > 0 {
		for _, part := range parts {
			totalLen += len(part)
		}
		totalLen += len(parts) - 1
	}

	result := make([]byte, totalLen)
	pos := 0

	pos += copy(result[pos:], command)

	for i, part := range parts {
		if i > 0 {
			result[pos] = ':'
			pos++
		}
		pos += copy(result[pos:], part)
	}

	return result
}
