package build

import (
	"strings"
	"testing"
)

func TestParseCopy(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		workdir  string
		wantSrc  string
		wantDest string
		wantErr  bool
	}{
		{
			name:     "absolute dest",
			input:    "app.tar /opt/app.tar",
			wantSrc:  "app.tar",
			wantDest: "/opt/app.tar",
		},
		{
			name:     "relative dest with workdir",
			input:    "config.yml config.yml",
			workdir:  "/opt/wheelwright",
			wantSrc:  "config.yml",
			wantDest: "/opt/wheelwright/config.yml",
		},
		{
			name:     "dot source",
			input:    ". /opt/wheelwright/src",
			wantSrc:  ".",
			wantDest: "/opt/wheelwright/src",
		},
		{
			name:     "cross-stage source",
			input:    "builder:/opt/wheelwright/dist /opt/wheelwright/dist",
			wantSrc:  "builder:/opt/wheelwright/dist",
			wantDest: "/opt/wheelwright/dist",
		},
		{
			name:    "relative dest without workdir",
			input:   "a.txt b.txt",
			wantErr: true,
		},
		{
			name:    "single token",
			input:   "onlysrc",
			wantErr: true,
		},
		{
			name:    "too many tokens",
			input:   "a b c",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, dest, err := parseCopy(tt.input, tt.workdir)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseCopy(%q) expected error, got src=%q dest=%q", tt.input, src, dest)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseCopy(%q) unexpected error: %v", tt.input, err)
			}
			if src != tt.wantSrc {
				t.Errorf("src = %q, want %q", src, tt.wantSrc)
			}
			if dest != tt.wantDest {
				t.Errorf("dest = %q, want %q", dest, tt.wantDest)
			}
		})
	}
}

func TestParseStageCopy(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantStage string
		wantPath  string
		wantOK    bool
	}{
		{
			name:      "stage prefix",
			input:     "builder:/opt/wheelwright/dist",
			wantStage: "builder",
			wantPath:  "/opt/wheelwright/dist",
			wantOK:    true,
		},
		{
			name:      "relative path in stage",
			input:     "base:dist/app.whl",
			wantStage: "base",
			wantPath:  "dist/app.whl",
			wantOK:    true,
		},
		{
			name:   "no colon",
			input:  "/opt/app",
			wantOK: false,
		},
		{
			name:   "colon after separator is a host path",
			input:  "/foo:bar",
			wantOK: false,
		},
		{
			name:   "leading colon",
			input:  ":path",
			wantOK: false,
		},
		{
			name:   "empty",
			input:  "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage, path, ok := parseStageCopy(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("parseStageCopy(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if stage != tt.wantStage {
				t.Errorf("stage = %q, want %q", stage, tt.wantStage)
			}
			if path != tt.wantPath {
				t.Errorf("path = %q, want %q", path, tt.wantPath)
			}
		})
	}
}

func TestSecurePath(t *testing.T) {
	tests := []struct {
		name    string
		entry   string
		want    string
		wantErr bool
	}{
		{name: "simple file", entry: "dist/app.whl", want: "/out/dist/app.whl"},
		{name: "dot prefixed", entry: "./dist/app.whl", want: "/out/dist/app.whl"},
		{name: "absolute", entry: "/etc/passwd", wantErr: true},
		{name: "traversal", entry: "../escape", wantErr: true},
		{name: "nested traversal", entry: "dist/../../escape", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := securePath("/out", tt.entry)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("securePath(%q) expected error, got %q", tt.entry, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("securePath(%q) unexpected error: %v", tt.entry, err)
			}
			if got != tt.want {
				t.Errorf("securePath(%q) = %q, want %q", tt.entry, got, tt.want)
			}
		})
	}
}

func TestExtractTarRejectsTraversal(t *testing.T) {
	// A hand-built archive with a traversal entry must fail extraction.
	archive := buildTestArchive(t, map[string]string{
		"../escape.txt": "nope",
	})

	_, err := extractTar(strings.NewReader(archive), t.TempDir())
	if err == nil {
		t.Fatal("expected error extracting traversal entry")
	}
}
