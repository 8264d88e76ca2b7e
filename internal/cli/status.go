package cli

import (
	"context"
	"fmt"

	"github.com/oakmill/wheelwright/internal/protocol"
)

// Represents the 'wheelwright status' command.
type StatusCmd struct{}

// Executes the status command by querying the daemon over its socket.
func (c *StatusCmd) Run(ctx context.Context) error {
	env, err := roundTrip(protocol.CmdStatus, nil)
	if err != nil {
		return err
	}

	status, err := protocol.DecodePayload[protocol.StatusResult](env.Payload)
	if err != nil {
		return err
	}

	fmt.Printf("version: %s\n", status.Version)
	fmt.Printf("pid:     %d\n", status.Pid)
	fmt.Printf("uptime:  %s\n", status.Uptime)
	fmt.Printf("builds:  %d\n", status.Builds)
	return nil
}
