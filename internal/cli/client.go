package cli

import (
	"bufio"
	"fmt"
	"net"

	"github.com/oakmill/wheelwright/internal/paths"
	"github.com/oakmill/wheelwright/internal/protocol"
)

// Sends a single command to the daemon and returns the decoded response.
//
// Each exchange uses a fresh connection: one newline-delimited request,
// one newline-delimited response. The socket path comes from the global
// --socket flag, falling back to the default runtime path.
func roundTrip(cmd protocol.Command, payload any) (protocol.Envelope, error) {
	socketPath := RootCmd.Socket
	if socketPath == "" {
		socketPath = paths.Socket()
	}

	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return protocol.Envelope{}, fmt.Errorf("daemon not reachable at %s: %w", socketPath, err)
	}
	defer conn.Close()

	data, err := protocol.Encode(cmd, payload)
	if err != nil {
		return protocol.Envelope{}, err
	}
	data = append(data, byte(10))

	if _, err := conn.Write(data); err != nil {
		return protocol.Envelope{}, err
	}

	line, err := bufio.NewReader(conn).ReadBytes(byte(10))
	if err != nil {
		return protocol.Envelope{}, err
	}

	env, _, err := protocol.Decode(line)
	if err != nil {
		return protocol.Envelope{}, err
	}

	if env.Command == protocol.CmdError {
		res, err := protocol.DecodePayload[protocol.ErrorResult](env.Payload)
		if err != nil {
			return protocol.Envelope{}, err
		}
		return protocol.Envelope{}, fmt.Errorf("daemon: %s", res.Message)
	}

	return env, nil
}
