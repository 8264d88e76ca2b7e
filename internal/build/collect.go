package build

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oakmill/wheelwright/internal/runtime"
)

// Pulls a path out of a stage container and extracts it under destDir.
//
// The container streams the path as a tar archive rooted at the path's
// base name, so collecting "/opt/wheelwright/dist" lands the files under
// destDir/dist. Returns the extracted regular file paths.
func collectPath(ctx context.Context, ctr *runtime.Container, path, destDir string) ([]string, error) {
	pr, pw := io.Pipe()

	errc := make(chan error, 1)
	go func() {
		errc <- ctr.CopyFrom(ctx, pw, path)
		pw.Close()
	}()

	files, err := extractTar(pr, destDir)
	if err != nil {
		// Drain the stream so the producer goroutine can finish.
		io.Copy(io.Discard, pr)
		<-errc
		return nil, err
	}

	if err := <-errc; err != nil {
		return nil, err
	}

	return files, nil
}

// Extracts a tar stream into destDir, returning the regular files
// written. Entries escaping destDir are rejected; entry types other than
// files and directories are skipped.
func extractTar(r io.Reader, destDir string) ([]string, error) {
	tr := tar.NewReader(r)
	var files []string

	for {
		header, err := tr.Next()
		if err == io.EOF {
			return files, nil
		}
		if err != nil {
			return nil, err
		}

		target, err := securePath(destDir, header.Name)
		if err != nil {
			return nil, err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, outputDirMode); err != nil {
				return nil, err
			}

		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), outputDirMode); err != nil {
				return nil, err
			}

			f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode)&0o777)
			if err != nil {
				return nil, err
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return nil, err
			}
			if err := f.Close(); err != nil {
				return nil, err
			}

			files = append(files, target)
		}
	}
}

// Joins an archive entry name with the destination directory, rejecting
// absolute names and path traversal.
func securePath(destDir, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("illegal archive entry %q", name)
	}
	return filepath.Join(destDir, cleaned), nil
}
