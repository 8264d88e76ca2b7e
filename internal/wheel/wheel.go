// Package wheel handles built Python wheel artifacts: filename parsing,
// output directory scanning, and checksum manifests for exported files.
package wheel

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/oakmill/wheelwright/internal/verify"
)

// Name of the checksum manifest written next to exported artifacts.
const SumsFilename = "SHA256SUMS"

var (
	ErrBadFilename   = errors.New("not a valid wheel filename")
	ErrNoWheel       = errors.New("no wheel produced")
	ErrMultipleWheel = errors.New("multiple wheels produced")
)

// Metadata encoded in a wheel filename.
//
// Wheel filenames follow the binary distribution format:
// {distribution}-{version}(-{build})?-{python}-{abi}-{platform}.whl.
type Info struct {
	Distribution string
	Version      string
	Build        string // Optional build tag, empty when absent.
	Python       string
	ABI          string
	Platform     string
}

// Parses a wheel filename into its tagged components.
func ParseFilename(name string) (Info, error) {
	base, ok := strings.CutSuffix(name, ".whl")
	if !ok {
		return Info{}, fmt.Errorf("%w: %q", ErrBadFilename, name)
	}

	parts := strings.Split(base, "-")
	switch len(parts) {
	case 5:
		return Info{
			Distribution: parts[0],
			Version:      parts[1],
			Python:       parts[2],
			ABI:          parts[3],
			Platform:     parts[4],
		}, nil
	case 6:
		return Info{
			Distribution: parts[0],
			Version:      parts[1],
			Build:        parts[2],
			Python:       parts[3],
			ABI:          parts[4],
			Platform:     parts[5],
		}, nil
	default:
		return Info{}, fmt.Errorf("%w: %q", ErrBadFilename, name)
	}
}

// Lists the wheel files directly under dir, sorted by name.
func Find(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var wheels []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".whl") {
			continue
		}
		wheels = append(wheels, filepath.Join(dir, e.Name()))
	}

	sort.Strings(wheels)
	return wheels, nil
}

// Returns the single wheel under dir.
//
// A wheel build must produce exactly one artifact; zero wheels means the
// build frontend failed silently, and more than one means the output
// directory was reused across builds.
func ExactlyOne(dir string) (string, error) {
	wheels, err := Find(dir)
	if err != nil {
		return "", err
	}

	switch len(wheels) {
	case 0:
		return "", fmt.Errorf("%w under %s", ErrNoWheel, dir)
	case 1:
		return wheels[0], nil
	default:
		return "", fmt.Errorf("%w under %s: %d found", ErrMultipleWheel, dir, len(wheels))
	}
}

// Writes a SHA256SUMS manifest into dir covering the given files.
//
// Entries use the conventional "<hex digest>  <name>" layout accepted by
// sha256sum -c, with names relative to dir. Returns the manifest path.
func WriteSums(dir string, files []string) (string, error) {
	var sb strings.Builder

	for _, f := range files {
		sum, err := verify.FileSHA256(f)
		if err != nil {
			return "", err
		}

		name, err := filepath.Rel(dir, f)
		if err != nil {
			name = filepath.Base(f)
		}
		fmt.Fprintf(&sb, "%s  %s\n", sum, filepath.ToSlash(name))
	}

	path := filepath.Join(dir, SumsFilename)
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
