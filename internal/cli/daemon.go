package cli

import (
	"context"
	"log/slog"

	"github.com/oakmill/wheelwright/internal/server"
)

// Represents the 'wheelwright daemon' command.
type DaemonCmd struct {
	ContainerdAddress   string `help:"Containerd socket address." default:"/run/containerd/containerd.sock"`
	ContainerdNamespace string `help:"Containerd namespace." default:"wheelwright"`
	MetricsAddr         string `help:"Listen address for the Prometheus endpoint. Empty disables it." placeholder:"ADDR"`
	HistoryDB           string `help:"Override the default history database path." placeholder:"PATH"`
}

// Executes the daemon command.
//
// Starts the daemon on a Unix domain socket and blocks until the context
// is cancelled (e.g. via SIGINT or SIGTERM) or a shutdown command arrives.
func (c *DaemonCmd) Run(ctx context.Context) error {
	srv, err := server.New(server.Config{
		SocketPath:          RootCmd.Socket,
		ContainerdAddress:   c.ContainerdAddress,
		ContainerdNamespace: c.ContainerdNamespace,
		MetricsAddr:         c.MetricsAddr,
		HistoryPath:         c.HistoryDB,
	})
	if err != nil {
		return err
	}

	if err := srv.Start(); err != nil {
		return err
	}

	slog.Info("wheelwright daemon is running")

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
		return srv.Stop()
	case <-done(srv):
		return nil
	}
}

// Adapts Server.Wait to a channel for use in select.
func done(srv *server.Server) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		srv.Wait()
		close(ch)
	}()
	return ch
}
