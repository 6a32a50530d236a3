package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	derrors "github.com/matzehuels/depconv/pkg/errors"
)

var fixture = map[string]string{
	"demo-1.0/README.rst":                  "Demo\n====\n",
	"demo-1.0/demo.egg-info/PKG-INFO":      "Name: demo\nVersion: 1.0\n",
	"demo-1.0/demo.egg-info/requires.txt":  "six\n",
	"demo-1.0/src/demo/__init__.py":        "",
	"demo-1.0/tests/data/other.egg-info/x": "",
}

func writeZip(t *testing.T, p string, files map[string]string) {
	t.Helper()
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

func writeTarGz(t *testing.T, p string, files map[string]string) {
	t.Helper()
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	gw := gzip.NewWriter(f)
	tw := tar.NewWriter(gw)
	for name, content := range files {
		h := &tar.Header{Name: name, Mode: 0o644, Size: int64(len(content)), Typeflag: tar.TypeReg}
		if err := tw.WriteHeader(h); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
}

func writeDir(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func openFixture(t *testing.T, kind string) *FS {
	t.Helper()
	dir := t.TempDir()
	var (
		tree *FS
		err  error
	)
	switch kind {
	case "dir":
		writeDir(t, dir, fixture)
		tree, err = OpenDir(dir)
	case "zip":
		p := filepath.Join(dir, "demo-1.0.zip")
		writeZip(t, p, fixture)
		tree, err = OpenArchive(p)
	case "tar.gz":
		p := filepath.Join(dir, "demo-1.0.tar.gz")
		writeTarGz(t, p, fixture)
		tree, err = Open(p)
	}
	if err != nil {
		t.Fatalf("open %s: %v", kind, err)
	}
	return tree
}

func TestFS_Glob(t *testing.T) {
	for _, kind := range []string{"dir", "zip", "tar.gz"} {
		t.Run(kind, func(t *testing.T) {
			tree := openFixture(t, kind)

			got, err := tree.Glob("**/*.egg-info")
			if err != nil {
				t.Fatalf("Glob: %v", err)
			}
			want := []string{"demo-1.0/demo.egg-info", "demo-1.0/tests/data/other.egg-info"}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Glob mismatch (-want +got):\n%s", diff)
			}

			// Walks are restartable.
			again, _ := tree.Glob("**/*.egg-info")
			if diff := cmp.Diff(got, again); diff != "" {
				t.Errorf("second Glob differs (-first +second):\n%s", diff)
			}

			readmes, err := tree.Glob("**/README*")
			if err != nil {
				t.Fatalf("Glob: %v", err)
			}
			if diff := cmp.Diff([]string{"demo-1.0/README.rst"}, readmes); diff != "" {
				t.Errorf("README glob mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFS_ReadFile(t *testing.T) {
	for _, kind := range []string{"dir", "zip", "tar.gz"} {
		t.Run(kind, func(t *testing.T) {
			tree := openFixture(t, kind)

			data, err := tree.ReadFile(tree.Join("demo-1.0/demo.egg-info", "PKG-INFO"))
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			if string(data) != fixture["demo-1.0/demo.egg-info/PKG-INFO"] {
				t.Errorf("ReadFile = %q", data)
			}

			_, err = tree.ReadFile("demo-1.0/missing.txt")
			if !derrors.Is(err, derrors.ErrCodeFileNotFound) {
				t.Errorf("ReadFile(missing) error = %v, want FILE_NOT_FOUND", err)
			}
			if tree.Exists("demo-1.0/missing.txt") {
				t.Error("Exists(missing) = true")
			}
			if !tree.Exists("demo-1.0/README.rst") {
				t.Error("Exists(README.rst) = false")
			}
			if !tree.IsFile("demo-1.0/README.rst") {
				t.Error("IsFile(README.rst) = false")
			}
			if tree.IsFile("demo-1.0/demo.egg-info") {
				t.Error("IsFile(demo.egg-info) = true for a directory")
			}
			if tree.IsFile("demo-1.0/missing.txt") {
				t.Error("IsFile(missing) = true")
			}
		})
	}
}

func TestOpenArchive_Empty(t *testing.T) {
	p := filepath.Join(t.TempDir(), "empty.zip")
	writeZip(t, p, nil)

	tree, err := OpenArchive(p)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	got, err := tree.Glob("**/*.egg-info")
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Glob on empty archive = %v", got)
	}
}

func TestOpenArchive_SkipsEscapingMembers(t *testing.T) {
	p := filepath.Join(t.TempDir(), "evil.tar.gz")
	writeTarGz(t, p, map[string]string{
		"../outside.txt": "x",
		"pkg/PKG-INFO":   "Name: pkg\n",
	})

	tree, err := OpenArchive(p)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	got, _ := tree.Glob("**/*.txt")
	if len(got) != 0 {
		t.Errorf("escaping member was stored: %v", got)
	}
}

func TestOpenArchive_EntrySizeLimit(t *testing.T) {
	defer func(old int64) { maxEntrySize = old }(maxEntrySize)
	maxEntrySize = 8

	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"at limit", "12345678", false},
		{"over limit", "123456789", true},
	}
	for _, tt := range tests {
		for _, kind := range []string{"zip", "tar.gz"} {
			t.Run(tt.name+"/"+kind, func(t *testing.T) {
				p := filepath.Join(t.TempDir(), "demo-1.0."+kind)
				files := map[string]string{"demo-1.0/PKG-INFO": tt.content}
				if kind == "zip" {
					writeZip(t, p, files)
				} else {
					writeTarGz(t, p, files)
				}

				tree, err := OpenArchive(p)
				if tt.wantErr {
					if !derrors.Is(err, derrors.ErrCodeInvalidFormat) {
						t.Errorf("OpenArchive error = %v, want INVALID_FORMAT", err)
					}
					return
				}
				if err != nil {
					t.Fatalf("OpenArchive: %v", err)
				}
				data, err := tree.ReadFile("demo-1.0/PKG-INFO")
				if err != nil || string(data) != tt.content {
					t.Errorf("ReadFile = %q, %v; want %q", data, err, tt.content)
				}
			})
		}
	}
}

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "notes.md")
	writeDir(t, dir, map[string]string{"notes.md": "hi"})

	tests := []struct {
		name string
		open func() error
		code derrors.Code
	}{
		{"missing dir", func() error { _, err := OpenDir(filepath.Join(dir, "nope")); return err }, derrors.ErrCodeFileNotFound},
		{"file as dir", func() error { _, err := OpenDir(plain); return err }, derrors.ErrCodeInvalidPath},
		{"unknown extension", func() error { _, err := OpenArchive(plain); return err }, derrors.ErrCodeUnsupported},
		{"missing archive", func() error { _, err := OpenArchive(filepath.Join(dir, "x.zip")); return err }, derrors.ErrCodeFileNotFound},
		{"corrupt zip", func() error {
			p := filepath.Join(dir, "bad.zip")
			if err := os.WriteFile(p, []byte("not a zip"), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := OpenArchive(p)
			return err
		}, derrors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.open()
			if !derrors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestIsArchive(t *testing.T) {
	tests := map[string]bool{
		"demo-1.0.zip":    true,
		"demo-1.0.whl":    true,
		"demo-1.0.tar":    true,
		"demo-1.0.tar.gz": true,
		"demo-1.0.TGZ":    true,
		"PKG-INFO":        false,
		"requires.txt":    false,
		"demo.egg-info":   false,
	}
	for name, want := range tests {
		if got := IsArchive(name); got != want {
			t.Errorf("IsArchive(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestNewMemory(t *testing.T) {
	tree, err := NewMemory(map[string][]byte{
		"a/b.egg-info/PKG-INFO": []byte("Name: b\n"),
		"c.txt":                 []byte("c"),
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := tree.Glob("**/*.egg-info")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a/b.egg-info"}, got); diff != "" {
		t.Errorf("Glob mismatch (-want +got):\n%s", diff)
	}
}
