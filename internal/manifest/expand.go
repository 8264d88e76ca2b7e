package manifest

import (
	"fmt"
	"maps"
	"regexp"
)

// Matches ${NAME} placeholders. The $NAME form is deliberately not
// recognized so that shell variables inside run commands pass through.
var argPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Resolves build args and returns a new recipe with all placeholders
// substituted. The receiver is not modified.
//
// The effective arg set is the canonical defaults, overlaid with the
// recipe's own args, overlaid with the caller's overrides. Fields that
// wheelwright itself interprets (from, copy, workdir, entrypoint, labels)
// must expand fully; an unresolved placeholder there is an error. Run
// commands, shells, and env values keep unknown placeholders untouched so
// recipes can defer to shell expansion inside the container.
func (r *Recipe) Expand(overrides map[string]string) (*Recipe, error) {
	args := map[string]string{
		ArgArch:      DefaultArch,
		ArgVersion:   DefaultVersion,
		ArgBaseImage: DefaultBaseImage,
	}
	maps.Copy(args, r.Args)
	maps.Copy(args, overrides)

	out := &Recipe{Args: args}

	for _, stage := range r.Stages {
		from, err := expandStrict(stage.From, args)
		if err != nil {
			return nil, fmt.Errorf("stage %q: %w", stage.Name, err)
		}

		steps, err := expandSteps(stage.Steps, args)
		if err != nil {
			return nil, fmt.Errorf("stage %q: %w", stage.Name, err)
		}

		out.Stages = append(out.Stages, Stage{
			Name:      stage.Name,
			From:      from,
			Transient: stage.Transient,
			Steps:     steps,
		})
	}

	for _, e := range r.Entrypoint {
		v, err := expandStrict(e, args)
		if err != nil {
			return nil, fmt.Errorf("entrypoint: %w", err)
		}
		out.Entrypoint = append(out.Entrypoint, v)
	}

	if len(r.Labels) > 0 {
		out.Labels = make(map[string]string, len(r.Labels))
		for k, v := range r.Labels {
			ev, err := expandStrict(v, args)
			if err != nil {
				return nil, fmt.Errorf("label %q: %w", k, err)
			}
			out.Labels[k] = ev
		}
	}

	return out, nil
}

func expandSteps(steps []Step, args map[string]string) ([]Step, error) {
	if len(steps) == 0 {
		return nil, nil
	}

	out := make([]Step, 0, len(steps))
	for i, step := range steps {
		expanded, err := expandStep(step, args)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		out = append(out, expanded)
	}
	return out, nil
}

func expandStep(step Step, args map[string]string) (Step, error) {
	var err error
	out := Step{
		Run:   expandLenient(step.Run, args),
		Shell: expandLenient(step.Shell, args),
	}

	if out.Copy, err = expandStrict(step.Copy, args); err != nil {
		return Step{}, err
	}
	if out.Workdir, err = expandStrict(step.Workdir, args); err != nil {
		return Step{}, err
	}

	if len(step.Env) > 0 {
		out.Env = make(map[string]string, len(step.Env))
		for k, v := range step.Env {
			out.Env[k] = expandLenient(v, args)
		}
	}

	if out.Steps, err = expandSteps(step.Steps, args); err != nil {
		return Step{}, err
	}

	return out, nil
}

// Substitutes placeholders, failing on any name not present in args.
func expandStrict(s string, args map[string]string) (string, error) {
	var missing string
	expanded := argPattern.ReplaceAllStringFunc(s, func(m string) string {
		name := m[2 : len(m)-1]
		v, ok := args[name]
		if !ok {
			if missing == "" {
				missing = name
			}
			return m
		}
		return v
	})

	if missing != "" {
		return "", fmt.Errorf("%w: %s", ErrUndefinedArg, missing)
	}
	return expanded, nil
}

// Substitutes placeholders for known args and leaves unknown ones intact.
func expandLenient(s string, args map[string]string) string {
	return argPattern.ReplaceAllStringFunc(s, func(m string) string {
		if v, ok := args[m[2:len(m)-1]]; ok {
			return v
		}
		return m
	})
}
