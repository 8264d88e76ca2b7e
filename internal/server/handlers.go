package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/oakmill/wheelwright/internal"
	"github.com/oakmill/wheelwright/internal/build"
	"github.com/oakmill/wheelwright/internal/history"
	"github.com/oakmill/wheelwright/internal/protocol"
)

// Handles a build command.
//
// Receives a recipe from the CLI, expands its args, executes it against
// the container runtime, and appends the outcome to the history store.
func (s *Server) handleBuild(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.BuildRequest](payload)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	if req.Recipe == nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: "missing recipe"})
		return
	}

	recipe, err := req.Recipe.Expand(req.Args)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	if err := recipe.Validate(); err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	start := time.Now()
	result, err := build.Run(ctx, s.runtime, build.Options{
		Recipe:     recipe,
		Resource:   req.Resource,
		Output:     req.Output,
		Root:       req.Root,
		Entrypoint: req.Entrypoint,
		Platforms:  req.Platforms,
		Metrics:    s.recorder,
	})

	hash, hashErr := recipe.Hash()
	if hashErr != nil {
		slog.Warn("failed to hash recipe", "error", hashErr)
	}

	rec := history.Record{
		Resource:   req.Resource,
		RecipeHash: hash,
		Platforms:  req.Platforms,
		Status:     history.StatusSuccess,
		Duration:   time.Since(start),
	}

	if err != nil {
		rec.Status = history.StatusFailed
		s.appendHistory(ctx, rec)
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	rec.Artifacts = result.Artifacts
	s.appendHistory(ctx, rec)

	s.mu.Lock()
	s.builds++
	s.mu.Unlock()

	s.respond(conn, protocol.CmdOK, &protocol.BuildResult{
		Output:    result.Output,
		Artifacts: result.Artifacts,
	})
}

// Appends a record to the history store, logging but not surfacing
// failures. A build that succeeded is still a success when the log write
// fails.
func (s *Server) appendHistory(ctx context.Context, rec history.Record) {
	if _, err := s.history.Append(ctx, rec); err != nil {
		slog.Warn("failed to append build record", "error", err)
	}
}

// Handles a status command.
func (s *Server) handleStatus(conn net.Conn) {
	s.mu.Lock()
	builds := s.builds
	s.mu.Unlock()

	uptime := time.Since(s.startedAt).Truncate(time.Second)

	s.respond(conn, protocol.CmdOK, &protocol.StatusResult{
		Running: true,
		Version: internal.VersionString(),
		Pid:     os.Getpid(),
		Uptime:  uptime.String(),
		Builds:  builds,
	})
}

// Handles a history command.
func (s *Server) handleHistory(ctx context.Context, conn net.Conn, payload json.RawMessage) {
	req, err := protocol.DecodePayload[protocol.HistoryRequest](payload)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	records, err := s.history.Recent(ctx, req.Limit)
	if err != nil {
		s.respond(conn, protocol.CmdError, &protocol.ErrorResult{Message: err.Error()})
		return
	}

	s.respond(conn, protocol.CmdOK, &protocol.HistoryResult{Builds: records})
}

// Handles a shutdown command.
func (s *Server) handleShutdown(conn net.Conn) {
	s.respond(conn, protocol.CmdOK, nil)
	slog.Info("shutdown requested")

	go func() {
		s.Stop()
	}()
}
