// Package verify provides integrity checks for build inputs and outputs:
// SHA-256 digests and detached PGP signature verification for base image
// archives.
package verify

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
)

var (
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrBadSignature     = errors.New("signature verification failed")
)

// Computes the SHA-256 digest of a file as a lowercase hex string.
func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Checks a file against an expected SHA-256 hex digest.
func CheckSHA256(path, want string) error {
	got, err := FileSHA256(path)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w for %s: want %s, got %s", ErrChecksumMismatch, path, want, got)
	}
	return nil
}

// Verifies a detached armored signature over a file.
//
// The keyring is an armored public key file; the signature must have been
// produced by one of its keys. Used to authenticate local base image
// archives before they are imported into containerd.
func DetachedSignature(artifact, signature, keyring string) error {
	kr, err := os.Open(keyring)
	if err != nil {
		return fmt.Errorf("%w: open keyring: %w", ErrBadSignature, err)
	}
	defer kr.Close()

	keys, err := openpgp.ReadArmoredKeyRing(kr)
	if err != nil {
		return fmt.Errorf("%w: read keyring: %w", ErrBadSignature, err)
	}

	signed, err := os.Open(artifact)
	if err != nil {
		return fmt.Errorf("%w: open artifact: %w", ErrBadSignature, err)
	}
	defer signed.Close()

	sig, err := os.Open(signature)
	if err != nil {
		return fmt.Errorf("%w: open signature: %w", ErrBadSignature, err)
	}
	defer sig.Close()

	if _, err := openpgp.CheckArmoredDetachedSignature(keys, signed, sig, nil); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBadSignature, artifact, err)
	}

	return nil
}
