// Package protocol defines the wire format between the wheelwright CLI
// and the daemon: newline-delimited JSON envelopes over a Unix socket,
// one request-response exchange per connection.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/oakmill/wheelwright/internal/history"
	"github.com/oakmill/wheelwright/internal/manifest"
)

var ErrProtocol = errors.New("protocol error")

// A command name carried in an envelope.
type Command string

const (
	CmdBuild    Command = "build"
	CmdStatus   Command = "status"
	CmdHistory  Command = "history"
	CmdShutdown Command = "shutdown"

	// Response commands.
	CmdOK    Command = "ok"
	CmdError Command = "error"
)

// The outer message framing. Payload holds the command-specific body.
type Envelope struct {
	Command Command         `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Serializes a command and payload into an envelope.
func Encode(cmd Command, payload any) ([]byte, error) {
	env := Envelope{Command: cmd}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: encode payload: %w", ErrProtocol, err)
		}
		env.Payload = data
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("%w: encode envelope: %w", ErrProtocol, err)
	}
	return data, nil
}

// Parses an envelope, returning it alongside the raw payload.
func Decode(line []byte) (Envelope, json.RawMessage, error) {
	var env Envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return Envelope{}, nil, fmt.Errorf("%w: decode envelope: %w", ErrProtocol, err)
	}
	if env.Command == "" {
		return Envelope{}, nil, fmt.Errorf("%w: missing command", ErrProtocol)
	}
	return env, env.Payload, nil
}

// Parses a raw payload into a concrete request or result type.
func DecodePayload[T any](raw json.RawMessage) (*T, error) {
	var v T
	if len(raw) == 0 {
		return &v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: decode payload: %w", ErrProtocol, err)
	}
	return &v, nil
}

// Asks the daemon to execute a recipe.
type BuildRequest struct {
	Recipe     *manifest.Recipe  `json:"recipe"`
	Resource   string            `json:"resource"`
	Output     string            `json:"output"`
	Root       string            `json:"root"`
	Entrypoint []string          `json:"entrypoint,omitempty"`
	Platforms  []string          `json:"platforms,omitempty"`
	Args       map[string]string `json:"args,omitempty"`
}

// Reports a completed build.
type BuildResult struct {
	Output    string   `json:"output"`
	Artifacts []string `json:"artifacts,omitempty"`
}

// Reports daemon liveness and counters.
type StatusResult struct {
	Running bool   `json:"running"`
	Version string `json:"version"`
	Pid     int    `json:"pid"`
	Uptime  string `json:"uptime"`
	Builds  int    `json:"builds"`
}

// Asks for recent build records.
type HistoryRequest struct {
	Limit int `json:"limit,omitempty"`
}

// Carries recent build records.
type HistoryResult struct {
	Builds []history.Record `json:"builds"`
}

// Carries a failure message.
type ErrorResult struct {
	Message string `json:"message"`
}
