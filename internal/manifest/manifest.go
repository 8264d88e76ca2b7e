package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Canonical build args and their defaults. Every recipe can rely on these
// being defined even when the recipe declares no args of its own.
const (
	ArgArch      = "ARCH"
	ArgVersion   = "VERSION"
	ArgBaseImage = "BASE_IMAGE"

	DefaultArch      = "amd64"
	DefaultVersion   = "latest"
	DefaultBaseImage = "docker.io/library/python:3.11-slim"
)

// A multi-stage build recipe.
type Recipe struct {
	Args       map[string]string `yaml:"args,omitempty"`       // Build arg defaults, overridable at expansion time.
	Stages     []Stage           `yaml:"stages"`               // Stages, built in declaration order.
	Entrypoint []string          `yaml:"entrypoint,omitempty"` // OCI entrypoint set on exported images.
	Labels     map[string]string `yaml:"labels,omitempty"`     // OCI config labels set on exported images.
}

// A single stage of a recipe.
type Stage struct {
	Name      string `yaml:"name,omitempty"`      // Optional name, referenced by cross-stage copies.
	From      string `yaml:"from"`                // Base image: registry reference or local OCI archive path.
	Transient bool   `yaml:"transient,omitempty"` // Transient stages are never exported.
	Steps     []Step `yaml:"steps,omitempty"`     // Steps executed in order.
}

// A single step within a stage.
//
// A step is either an operation (Run or Copy), a standalone modifier
// (Shell, Workdir, Env), or a group of nested steps sharing the group's
// modifiers. Modifiers on an operation step apply to that operation only.
type Step struct {
	Run     string            `yaml:"run,omitempty"`     // Shell command to execute.
	Copy    string            `yaml:"copy,omitempty"`    // "src dest" host copy or "stage:src dest" cross-stage copy.
	Shell   string            `yaml:"shell,omitempty"`   // Shell used for subsequent (or this) run step.
	Workdir string            `yaml:"workdir,omitempty"` // Working directory for subsequent (or this) operation.
	Env     map[string]string `yaml:"env,omitempty"`     // Environment variables.
	Steps   []Step            `yaml:"steps,omitempty"`   // Nested group steps.
}

// Reads and parses a recipe from a YAML file.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return Parse(data)
}

// Parses a recipe from YAML.
func Parse(data []byte) (*Recipe, error) {
	var r Recipe
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return &r, nil
}

// Checks the recipe for structural problems.
//
// Validation does not resolve build args; a From field holding an
// unexpanded placeholder is accepted here and rejected later by Expand
// when the arg is undefined.
func (r *Recipe) Validate() error {
	if len(r.Stages) == 0 {
		return fmt.Errorf("%w: recipe has no stages", ErrInvalid)
	}

	exported := false
	seen := make(map[string]bool, len(r.Stages))

	for i, stage := range r.Stages {
		label := stageRef(stage.Name, i)

		if strings.TrimSpace(stage.From) == "" {
			return fmt.Errorf("%w: stage %s has no base image", ErrInvalid, label)
		}
		if stage.Name != "" {
			if seen[stage.Name] {
				return fmt.Errorf("%w: duplicate stage name %q", ErrInvalid, stage.Name)
			}
			seen[stage.Name] = true
		}
		if !stage.Transient {
			exported = true
		}

		if err := validateSteps(stage.Steps, seen, label); err != nil {
			return err
		}
	}

	if !exported {
		return fmt.Errorf("%w: all stages are transient, nothing to export", ErrInvalid)
	}

	return nil
}

// Checks a step list, recursing into groups. Cross-stage copy sources must
// reference a stage declared earlier in the recipe.
func validateSteps(steps []Step, stages map[string]bool, label string) error {
	for i, step := range steps {
		if step.Run != "" && step.Copy != "" {
			return fmt.Errorf("%w: stage %s step %d has both run and copy", ErrInvalid, label, i+1)
		}
		if len(step.Steps) > 0 && (step.Run != "" || step.Copy != "") {
			return fmt.Errorf("%w: stage %s step %d mixes a group with an operation", ErrInvalid, label, i+1)
		}

		if step.Copy != "" {
			if stage, ok := copySourceStage(step.Copy); ok && !stages[stage] {
				return fmt.Errorf("%w: stage %s step %d copies from unknown stage %q", ErrInvalid, label, i+1, stage)
			}
		}

		if err := validateSteps(step.Steps, stages, label); err != nil {
			return err
		}
	}
	return nil
}

// Extracts the stage name from a cross-stage copy source ("stage:path ...").
//
// Returns false for host copies. Mirrors the parse rules used during
// execution: a colon in the first token marks a stage prefix unless the
// prefix contains a path separator.
func copySourceStage(copyStr string) (string, bool) {
	fields := strings.Fields(copyStr)
	if len(fields) == 0 {
		return "", false
	}
	src := fields[0]

	i := strings.IndexByte(src, ':')
	if i < 1 || strings.ContainsRune(src[:i], '/') {
		return "", false
	}
	return src[:i], true
}

// Computes a deterministic hash over the recipe's structure.
//
// Two recipes with identical stages, args, entrypoint, and labels hash
// identically. Used to correlate build history entries.
func (r *Recipe) Hash() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Returns a label for a stage, preferring the name and falling back to the
// 1-based position.
func stageRef(name string, index int) string {
	if name != "" {
		return fmt.Sprintf("%q", name)
	}
	return fmt.Sprintf("%d", index+1)
}
