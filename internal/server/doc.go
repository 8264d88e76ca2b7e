// Package server implements the wheelwright daemon.
//
// The daemon listens on a Unix domain socket for JSON-encoded commands
// from the wheelwright CLI. Each connection carries a single
// request-response exchange: the client sends a newline-delimited JSON
// envelope, the server dispatches the command, and writes the result
// back before closing the connection.
//
// Supported commands are building recipes, querying daemon status,
// listing recent builds, and initiating shutdown. Build commands are
// delegated to the build package, which in turn uses the runtime
// package for container operations against containerd. Completed builds
// are appended to the history store, and build timings are exposed as
// Prometheus metrics when a metrics address is configured.
//
// Example usage:
//
//	srv, err := server.New(server.Config{
//	    ContainerdAddress:   "/run/containerd/containerd.sock",
//	    ContainerdNamespace: "wheelwright",
//	})
//	if err != nil {
//	    return err
//	}
//
//	if err := srv.Start(); err != nil {
//	    return err
//	}
//	defer srv.Stop()
//
//	srv.Wait()
package server
