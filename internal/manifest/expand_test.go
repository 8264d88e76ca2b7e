package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandDefaults(t *testing.T) {
	r := &Recipe{
		Stages: []Stage{{Name: "a", From: "${BASE_IMAGE}"}},
	}

	out, err := r.Expand(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseImage, out.Stages[0].From)
	assert.Equal(t, DefaultArch, out.Args[ArgArch])
	assert.Equal(t, DefaultVersion, out.Args[ArgVersion])
}

func TestExpandPrecedence(t *testing.T) {
	r := &Recipe{
		Args:   map[string]string{"BASE_IMAGE": "recipe-default"},
		Stages: []Stage{{Name: "a", From: "${BASE_IMAGE}"}},
	}

	// Recipe default beats the canonical default.
	out, err := r.Expand(nil)
	require.NoError(t, err)
	assert.Equal(t, "recipe-default", out.Stages[0].From)

	// Caller override beats the recipe default.
	out, err = r.Expand(map[string]string{"BASE_IMAGE": "override"})
	require.NoError(t, err)
	assert.Equal(t, "override", out.Stages[0].From)
}

func TestExpandStepsAndEntrypoint(t *testing.T) {
	r := &Recipe{
		Args: map[string]string{"APP": "composer"},
		Stages: []Stage{{
			Name: "a",
			From: "img",
			Steps: []Step{
				{Workdir: "/opt/${APP}"},
				{Copy: ". /opt/${APP}/src"},
				{Run: "echo ${APP}", Env: map[string]string{"NAME": "${APP}"}},
				{Steps: []Step{{Run: "ls /opt/${APP}"}}},
			},
		}},
		Entrypoint: []string{"${APP}", "--serve"},
		Labels:     map[string]string{"title": "${APP}"},
	}

	out, err := r.Expand(nil)
	require.NoError(t, err)

	steps := out.Stages[0].Steps
	assert.Equal(t, "/opt/composer", steps[0].Workdir)
	assert.Equal(t, ". /opt/composer/src", steps[1].Copy)
	assert.Equal(t, "echo composer", steps[2].Run)
	assert.Equal(t, "composer", steps[2].Env["NAME"])
	assert.Equal(t, "ls /opt/composer", steps[3].Steps[0].Run)
	assert.Equal(t, []string{"composer", "--serve"}, out.Entrypoint)
	assert.Equal(t, "composer", out.Labels["title"])
}

func TestExpandUndefinedArgInFrom(t *testing.T) {
	r := &Recipe{
		Stages: []Stage{{Name: "a", From: "${NO_SUCH_ARG}"}},
	}

	_, err := r.Expand(nil)
	assert.ErrorIs(t, err, ErrUndefinedArg)
}

func TestExpandLeavesShellVarsInRun(t *testing.T) {
	r := &Recipe{
		Stages: []Stage{{
			Name: "a",
			From: "img",
			Steps: []Step{
				{Run: "echo ${HOME} $PATH"},
				{Env: map[string]string{"PATH": "/venv/bin:$PATH"}},
			},
		}},
	}

	out, err := r.Expand(nil)
	require.NoError(t, err)

	// ${HOME} is not a declared arg, so it survives for the shell.
	assert.Equal(t, "echo ${HOME} $PATH", out.Stages[0].Steps[0].Run)
	assert.Equal(t, "/venv/bin:$PATH", out.Stages[0].Steps[1].Env["PATH"])
}

func TestExpandDoesNotMutateReceiver(t *testing.T) {
	r := &Recipe{
		Stages: []Stage{{Name: "a", From: "${BASE_IMAGE}"}},
	}

	_, err := r.Expand(map[string]string{"BASE_IMAGE": "x"})
	require.NoError(t, err)
	assert.Equal(t, "${BASE_IMAGE}", r.Stages[0].From)
	assert.Empty(t, r.Args)
}
