// Parses flags and dispatches the wheelwright subcommands.
//
// All commands accept the following global flags:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	-d, --debug     Enable debug output.
//	-s, --socket    Unix socket path for daemon communication.
//
// Flags override build-time defaults set via linker flags. After parsing,
// the global logger is reconfigured to reflect the final level before the
// selected command runs.
//
// The build and wheel commands talk to containerd directly by default; with
// --remote they submit the recipe to a running daemon over the Unix socket
// instead. The daemon itself is started with the daemon command.
package cli
