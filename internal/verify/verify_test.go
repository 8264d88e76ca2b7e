package verify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestFileSHA256(t *testing.T) {
	path := writeTemp(t, "artifact", []byte("hello"))

	sum, err := FileSHA256(path)
	require.NoError(t, err)
	// sha256("hello")
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", sum)
}

func TestCheckSHA256(t *testing.T) {
	path := writeTemp(t, "artifact", []byte("hello"))

	err := CheckSHA256(path, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824")
	assert.NoError(t, err)

	err = CheckSHA256(path, "deadbeef")
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestCheckSHA256MissingFile(t *testing.T) {
	err := CheckSHA256(filepath.Join(t.TempDir(), "absent"), "00")
	assert.Error(t, err)
}

func TestDetachedSignatureBadInputs(t *testing.T) {
	artifact := writeTemp(t, "artifact", []byte("data"))
	garbage := writeTemp(t, "keyring.asc", []byte("not an armored keyring"))

	err := DetachedSignature(artifact, garbage, garbage)
	assert.ErrorIs(t, err, ErrBadSignature)

	err = DetachedSignature(artifact, garbage, filepath.Join(t.TempDir(), "absent"))
	assert.ErrorIs(t, err, ErrBadSignature)
}
