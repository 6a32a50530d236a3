package wheel

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	derrors "github.com/matzehuels/depconv/pkg/errors"
	"github.com/matzehuels/depconv/pkg/project"
	"github.com/matzehuels/depconv/pkg/readme"
)

const metadata = `Metadata-Version: 2.1
Name: demo
Version: 2.0.0
Summary: Demo wheel
Requires-Dist: six (>=1.10)
Requires-Dist: pysocks ; extra == 'socks'
Description-Content-Type: text/markdown

# Demo

Body.
`

func writeWheel(t *testing.T, p string, files map[string]string) {
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

func TestLoads(t *testing.T) {
	root, err := New().Loads(metadata)
	if err != nil {
		t.Fatalf("Loads: %v", err)
	}
	want := []project.Dependency{
		{Name: "six", Version: ">=1.10", Source: "demo"},
		{Name: "pysocks", Markers: `extra == "socks"`, Source: "demo"},
	}
	if diff := cmp.Diff(want, root.Dependencies); diff != "" {
		t.Errorf("Dependencies mismatch (-want +got):\n%s", diff)
	}
	if root.Readme == nil || root.Readme.Format != readme.FormatMarkdown {
		t.Errorf("Readme = %+v", root.Readme)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	whl := filepath.Join(dir, "demo-2.0.0-py3-none-any.whl")
	writeWheel(t, whl, map[string]string{
		"demo/__init__.py":                   "",
		"demo-2.0.0.dist-info/METADATA":      metadata,
		"demo-2.0.0.dist-info/RECORD":        "",
		"demo-2.0.0.dist-info/top_level.txt": "demo\n",
	})

	installed := filepath.Join(dir, "site-packages", "demo-2.0.0.dist-info")
	if err := os.MkdirAll(installed, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(installed, "METADATA"), []byte(metadata), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, p := range []string{whl, installed, filepath.Dir(installed), filepath.Join(installed, "METADATA")} {
		root, err := New().Load(p)
		if err != nil {
			t.Fatalf("Load(%s): %v", p, err)
		}
		if root.RawName != "demo" || root.Version != "2.0.0" || len(root.Dependencies) != 2 {
			t.Errorf("Load(%s) = %q %q with %d deps", p, root.RawName, root.Version, len(root.Dependencies))
		}
	}
}

func TestLoad_NoDistInfo(t *testing.T) {
	whl := filepath.Join(t.TempDir(), "broken-1.0-py3-none-any.whl")
	writeWheel(t, whl, map[string]string{"broken/__init__.py": ""})

	if _, err := New().Load(whl); !derrors.Is(err, derrors.ErrCodeNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
}

func TestDumps(t *testing.T) {
	root := project.New("demo")
	root.Version = "2.0.0"
	root.Readme = readme.New("README.md", "# Demo\n")
	reqs := []project.Dependency{{Name: "six", Version: ">=1.10"}}

	out, err := New().Dumps(reqs, root, "")
	if err != nil {
		t.Fatalf("Dumps: %v", err)
	}
	want := strings.Join([]string{
		"Metadata-Version: 2.1",
		"Name: demo",
		"Version: 2.0.0",
		"Requires-Dist: six>=1.10",
		"Description-Content-Type: text/markdown",
		"",
		"# Demo",
		"",
	}, "\n")
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("Dumps mismatch (-want +got):\n%s", diff)
	}

	back, err := New().Loads(out)
	if err != nil {
		t.Fatalf("Loads: %v", err)
	}
	if back.Readme == nil || back.Readme.Content != "# Demo" {
		t.Errorf("Readme round trip = %+v", back.Readme)
	}
}
