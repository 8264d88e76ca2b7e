package build

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Builds an in-memory tar archive with the given name->content entries.
// Names ending in "/" become directory entries.
func buildTestArchive(t *testing.T, entries map[string]string) string {
	t.Helper()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	for name, content := range entries {
		if strings.HasSuffix(name, "/") {
			if err := tw.WriteHeader(&tar.Header{
				Name:     name,
				Typeflag: tar.TypeDir,
				Mode:     0o755,
			}); err != nil {
				t.Fatal(err)
			}
			continue
		}

		if err := tw.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(content)),
		}); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}

	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}

	return buf.String()
}

func TestExtractTar(t *testing.T) {
	archive := buildTestArchive(t, map[string]string{
		"dist/":                           "",
		"dist/app-1.2.3-py3-none-any.whl": "wheel bytes",
		"dist/notes.txt":                  "hello",
	})

	dest := t.TempDir()
	files, err := extractTar(strings.NewReader(archive), dest)
	if err != nil {
		t.Fatalf("extractTar: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("extracted %d files, want 2: %v", len(files), files)
	}

	data, err := os.ReadFile(filepath.Join(dest, "dist", "app-1.2.3-py3-none-any.whl"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "wheel bytes" {
		t.Errorf("wheel content = %q, want %q", data, "wheel bytes")
	}
}

func TestExtractTarCreatesParentDirs(t *testing.T) {
	// Archives from busybox tar may omit directory entries.
	archive := buildTestArchive(t, map[string]string{
		"dist/deep/nested/file.txt": "x",
	})

	dest := t.TempDir()
	files, err := extractTar(strings.NewReader(archive), dest)
	if err != nil {
		t.Fatalf("extractTar: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("extracted %d files, want 1", len(files))
	}

	if _, err := os.Stat(filepath.Join(dest, "dist", "deep", "nested", "file.txt")); err != nil {
		t.Fatal(err)
	}
}

func TestExtractTarSkipsSpecialEntries(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	if err := tw.WriteHeader(&tar.Header{
		Name:     "link",
		Typeflag: tar.TypeSymlink,
		Linkname: "/etc/passwd",
	}); err != nil {
		t.Fatal(err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}

	dest := t.TempDir()
	files, err := extractTar(&buf, dest)
	if err != nil {
		t.Fatalf("extractTar: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("extracted %d files, want 0", len(files))
	}
	if _, err := os.Lstat(filepath.Join(dest, "link")); !os.IsNotExist(err) {
		t.Fatal("symlink entry should not be written")
	}
}
