package internal

import (
	"fmt"
	"runtime"
	"strings"
)

const (

	// Application name used in version output and socket paths.
	Name = "wheelwright"

	// Placeholder for build variables not set via ldflags.
	defaultUndefined = "(undefined)"

	// Version string reported for local (non-pipeline) builds.
	defaultLocalBuild = "(local)"

	// Branch whose name is omitted from version strings.
	mainBranch = "main"
)

var (
	version   = "" // Version number (e.g., "1.2.3")
	stage     = "" // Development stage or git branch (e.g., "staging", "main")
	gitCommit = "" // Git commit hash (e.g., "a1b2c3d4")

	rawQuiet   = "false" // Whether to enable quiet mode
	rawDebug   = "false" // Whether to enable debug mode
	rawVerbose = "false" // Whether to enable verbose logging
)

// Returns the current version, lowercased and without any "v" prefix.
// Unset versions report "(undefined)".
func Version() string {
	v := strings.ToLower(orUndefined(version))
	return strings.TrimPrefix(v, "v")
}

// Returns the development stage, normally the git branch the build was
// produced from. Unset stages report "(undefined)".
func Stage() string {
	return strings.ToLower(orUndefined(stage))
}

// Returns the git commit hash, or "(undefined)" when not set.
func GitCommit() string {
	return orUndefined(gitCommit)
}

// Returns the build architecture.
func Arch() string {
	return runtime.GOARCH
}

// Returns true if this is a local (non-pipeline) build.
//
// A build is local when any of the version, commit, or stage variables
// is unset; pipeline builds set all three via linker flags.
func IsLocal() bool {
	return strings.TrimSpace(version) == "" ||
		strings.TrimSpace(gitCommit) == "" ||
		strings.TrimSpace(stage) == ""
}

// Returns a detailed version string.
//
// Local builds report "(local)". Pipeline builds report
// "<version>+<stage> <git-commit> [<arch>]", with the stage omitted on
// the main branch.
func VersionString() string {
	if IsLocal() {
		return defaultLocalBuild
	}

	s := Stage()
	if s == mainBranch {
		s = ""
	} else {
		s = "+" + s
	}

	return fmt.Sprintf("%s%s %s [%s]", Version(), s, GitCommit(), Arch())
}

// Returns the trimmed value, or "(undefined)" when empty.
func orUndefined(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return defaultUndefined
	}
	return v
}
