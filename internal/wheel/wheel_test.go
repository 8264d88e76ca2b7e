package wheel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilename(t *testing.T) {
	tests := []struct {
		name string
		want Info
	}{
		{
			name: "ecs_composex-1.4.2-py3-none-any.whl",
			want: Info{
				Distribution: "ecs_composex",
				Version:      "1.4.2",
				Python:       "py3",
				ABI:          "none",
				Platform:     "any",
			},
		},
		{
			name: "pkg-2.0-1-cp311-cp311-manylinux_2_28_x86_64.whl",
			want: Info{
				Distribution: "pkg",
				Version:      "2.0",
				Build:        "1",
				Python:       "cp311",
				ABI:          "cp311",
				Platform:     "manylinux_2_28_x86_64",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFilename(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFilenameErrors(t *testing.T) {
	for _, name := range []string{
		"not-a-wheel.tar.gz",
		"too-few-parts.whl",
		"way-too-many-parts-a-b-c-d.whl",
		"",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFilename(name)
			assert.ErrorIs(t, err, ErrBadFilename)
		})
	}
}

func TestExactlyOne(t *testing.T) {
	dir := t.TempDir()

	_, err := ExactlyOne(dir)
	assert.ErrorIs(t, err, ErrNoWheel)

	wheelPath := filepath.Join(dir, "app-1.0-py3-none-any.whl")
	require.NoError(t, os.WriteFile(wheelPath, []byte("wheel"), 0o644))
	// Non-wheel files in the output directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build.log"), []byte("log"), 0o644))

	got, err := ExactlyOne(dir)
	require.NoError(t, err)
	assert.Equal(t, wheelPath, got)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "app-1.1-py3-none-any.whl"), []byte("wheel"), 0o644))
	_, err = ExactlyOne(dir)
	assert.ErrorIs(t, err, ErrMultipleWheel)
}

func TestWriteSums(t *testing.T) {
	dir := t.TempDir()
	wheelPath := filepath.Join(dir, "app-1.0-py3-none-any.whl")
	require.NoError(t, os.WriteFile(wheelPath, []byte("payload"), 0o644))

	sums, err := WriteSums(dir, []string{wheelPath})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, SumsFilename), sums)

	data, err := os.ReadFile(sums)
	require.NoError(t, err)

	line := strings.TrimSpace(string(data))
	fields := strings.Fields(line)
	require.Len(t, fields, 2)
	assert.Len(t, fields[0], 64)
	assert.Equal(t, "app-1.0-py3-none-any.whl", fields[1])
}
