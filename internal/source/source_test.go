package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsGitURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://github.com/org/repo.git", true},
		{"http://example.com/repo.git", true},
		{"git://example.com/repo.git", true},
		{"ssh://git@example.com/repo.git", true},
		{"git@github.com:org/repo.git", true},
		{".", false},
		{"/opt/src", false},
		{"relative/dir", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsGitURL(tt.in), tt.in)
	}
}

func TestResolveDirectory(t *testing.T) {
	dir := t.TempDir()

	checkout, err := Resolve(context.Background(), dir, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, dir, checkout.Dir)
	assert.Empty(t, checkout.Commit)
}

func TestResolveMissingDirectory(t *testing.T) {
	_, err := Resolve(context.Background(), filepath.Join(t.TempDir(), "absent"), t.TempDir())
	assert.ErrorIs(t, err, ErrFetch)
}

func TestResolveFileContext(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := Resolve(context.Background(), file, t.TempDir())
	assert.ErrorIs(t, err, ErrFetch)
}
