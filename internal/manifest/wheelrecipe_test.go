package manifest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWheelRecipeShape(t *testing.T) {
	r := Wheel(WheelOptions{Distribution: "ecs-composex"})
	require.NoError(t, r.Validate())

	require.Len(t, r.Stages, 2)
	assert.Equal(t, WheelBuilderStage, r.Stages[0].Name)
	assert.True(t, r.Stages[0].Transient)
	assert.False(t, r.Stages[1].Transient)
	assert.Equal(t, []string{"ecs-composex"}, r.Entrypoint)
}

func TestWheelRecipeExpandsWithDefaults(t *testing.T) {
	r := Wheel(WheelOptions{Distribution: "ecs-composex"})

	out, err := r.Expand(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseImage, out.Stages[0].From)
	assert.Equal(t, DefaultBaseImage, out.Stages[1].From)
	assert.Equal(t, DefaultVersion, out.Labels["org.opencontainers.image.version"])
}

func TestWheelRecipeOptions(t *testing.T) {
	r := Wheel(WheelOptions{
		Distribution: "ecs-composex",
		Script:       "compose-x",
		Version:      "1.4.2",
		BaseImage:    "docker.io/library/python:3.12-alpine",
		Arch:         "arm64",
	})

	out, err := r.Expand(nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"compose-x"}, out.Entrypoint)
	assert.Equal(t, "1.4.2", out.Labels["org.opencontainers.image.version"])
	assert.Equal(t, "docker.io/library/python:3.12-alpine", out.Stages[0].From)
	assert.Equal(t, "arm64", out.Args[ArgArch])
}

func TestWheelRecipeBuildsIntoDistPath(t *testing.T) {
	r := Wheel(WheelOptions{Distribution: "ecs-composex"})

	var buildsWheel bool
	for _, step := range r.Stages[0].Steps {
		if strings.Contains(step.Run, "--wheel") && strings.Contains(step.Run, WheelDistPath) {
			buildsWheel = true
		}
	}
	assert.True(t, buildsWheel, "builder stage must produce wheels under WheelDistPath")

	// Runtime installs from a cross-stage copy of the dist directory.
	copyStep := r.Stages[1].Steps[0]
	assert.True(t, strings.HasPrefix(copyStep.Copy, WheelBuilderStage+":"), "runtime must copy from the builder stage")
}
