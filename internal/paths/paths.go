package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	daemonName = "wheelwright"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the directory for runtime files (sockets, PIDs).
//
//	Linux:   $XDG_RUNTIME_DIR/wheelwright or /run/user/<uid>/wheelwright
//	macOS:   ~/Library/Caches/wheelwright/run
func Runtime() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, daemonName)
	}
	return filepath.Join(xdg.CacheHome, daemonName, "run")
}

// Default path to the Unix domain socket for CLI-to-daemon communication.
//
//	Linux:   $XDG_RUNTIME_DIR/wheelwright/wheelwright.sock
//	macOS:   ~/Library/Caches/wheelwright/run/wheelwright.sock
func Socket() string {
	return filepath.Join(Runtime(), "wheelwright.sock")
}

// Default path to the PID file.
//
//	Linux:   $XDG_RUNTIME_DIR/wheelwright/wheelwright.pid
//	macOS:   ~/Library/Caches/wheelwright/run/wheelwright.pid
func PIDFile() string {
	return filepath.Join(Runtime(), "wheelwright.pid")
}

// Path to the directory for persistent data (build history).
//
//	Linux:   $XDG_DATA_HOME/wheelwright or ~/.local/share/wheelwright
//	macOS:   ~/Library/Application Support/wheelwright
func Data() string {
	return filepath.Join(xdg.DataHome, daemonName)
}

// Default path to the build history database.
func HistoryDB() string {
	return filepath.Join(Data(), "history.db")
}
