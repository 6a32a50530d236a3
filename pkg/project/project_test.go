package project

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	derrors "github.com/matzehuels/depconv/pkg/errors"
	"github.com/matzehuels/depconv/pkg/readme"
	"github.com/matzehuels/depconv/pkg/requirement"
)

func TestNormalizeName(t *testing.T) {
	tests := map[string]string{
		"Django":            "django",
		"zope.interface":    "zope-interface",
		"typing_extensions": "typing-extensions",
		"Foo__Bar-.baz":     "foo-bar-baz",
		"  six ":            "six",
	}
	for in, want := range tests {
		if got := NormalizeName(in); got != want {
			t.Errorf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNew(t *testing.T) {
	r := New("Demo_Pkg")
	if r.Version != DefaultVersion {
		t.Errorf("Version = %q, want %q", r.Version, DefaultVersion)
	}
	if r.Name() != "demo-pkg" {
		t.Errorf("Name() = %q", r.Name())
	}
	if err := r.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestRoot_Validate(t *testing.T) {
	for _, name := range []string{"", "  ", "bad\x00name"} {
		err := New(name).Validate()
		if !derrors.Is(err, derrors.ErrCodeInvalidManifest) {
			t.Errorf("Validate(%q) = %v, want INVALID_MANIFEST", name, err)
		}
	}

	r := New("demo")
	r.Links["homepage"] = "https://x.test"
	if err := r.Validate(); err == nil {
		t.Error("Validate accepted unknown link kind")
	}
}

func TestRoot_SetLink(t *testing.T) {
	r := New("demo")
	tests := []struct {
		kind, url string
		want      bool
	}{
		{"home", "https://demo.test", true},
		{"download", "https://demo.test/dl", true},
		{"project", "https://github.com/x/demo", true},
		{"bugtracker", "https://demo.test/issues", false},
		{"home", "UNKNOWN", false},
		{"home", "  ", false},
	}
	for _, tt := range tests {
		if got := r.SetLink(tt.kind, tt.url); got != tt.want {
			t.Errorf("SetLink(%q, %q) = %v, want %v", tt.kind, tt.url, got, tt.want)
		}
	}
	want := map[LinkKind]string{
		LinkHome:     "https://demo.test",
		LinkDownload: "https://demo.test/dl",
		LinkProject:  "https://github.com/x/demo",
	}
	if diff := cmp.Diff(want, r.Links); diff != "" {
		t.Errorf("Links mismatch (-want +got):\n%s", diff)
	}

	var zero Root
	zero.SetLink("home", "https://x.test")
	if zero.Link(LinkHome) != "https://x.test" {
		t.Error("SetLink on zero Root did not allocate Links")
	}
}

func TestRoot_AuthorMaintainer(t *testing.T) {
	r := New("demo")
	if _, ok := r.Author(); ok {
		t.Error("Author() ok on empty root")
	}
	r.Authors = []Author{{Name: "Ann", Mail: "ann@x.test"}, {Name: "Bob"}}
	if a, _ := r.Author(); a.Name != "Ann" {
		t.Errorf("Author() = %+v", a)
	}
	if m, ok := r.Maintainer(); !ok || m.Name != "Bob" {
		t.Errorf("Maintainer() = %+v, %v", m, ok)
	}
}

func TestClean(t *testing.T) {
	tests := map[string]string{
		"UNKNOWN":     "",
		" UNKNOWN ":   "",
		"":            "",
		" MIT ":       "MIT",
		"unknown":     "unknown",
		"UNKNOWN-ish": "UNKNOWN-ish",
	}
	for in, want := range tests {
		if got := Clean(in); got != want {
			t.Errorf("Clean(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFromRequirement(t *testing.T) {
	root := New("demo")
	req := requirement.MustParse(`requests[socks,security]>=2.8; python_version < "3.8"`)

	deps := FromRequirement(root, req)
	want := []Dependency{{
		Name:    "requests",
		Extras:  []string{"security", "socks"},
		Version: ">=2.8",
		Markers: `python_version < "3.8"`,
		Source:  "demo",
	}}
	if diff := cmp.Diff(want, deps); diff != "" {
		t.Errorf("FromRequirement mismatch (-want +got):\n%s", diff)
	}

	if got := FromRequirement(nil, requirement.MustParse("six")); got[0].Source != "" {
		t.Errorf("Source without root = %q", got[0].Source)
	}
}

func TestFromString_Malformed(t *testing.T) {
	_, err := FromString(New("demo"), "six>=")
	if !derrors.Is(err, derrors.ErrCodeMalformedRequirement) {
		t.Errorf("FromString error = %v, want MALFORMED_REQUIREMENT", err)
	}
}

func TestDependency_String(t *testing.T) {
	tests := []struct {
		dep  Dependency
		want string
	}{
		{Dependency{Name: "six"}, "six"},
		{Dependency{Name: "six", Version: ">=1.10"}, "six>=1.10"},
		{Dependency{Name: "requests", Extras: []string{"security"}, Version: ">=2"}, "requests[security]>=2"},
		{Dependency{Name: "pywin32", Markers: `sys_platform == "win32"`}, `pywin32; sys_platform == "win32"`},
		{Dependency{Name: "pip", URL: "https://x.test/pip.zip"}, "pip @ https://x.test/pip.zip"},
	}
	for _, tt := range tests {
		if got := tt.dep.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestDependency_RequirementRoundTrip(t *testing.T) {
	for _, s := range []string{
		"six",
		"requests[security,socks]>=2.8.1,<3",
		`colorama; platform_system == "Windows"`,
	} {
		deps, err := FromString(nil, s)
		if err != nil {
			t.Fatalf("FromString(%q): %v", s, err)
		}
		if got := deps[0].Requirement().String(); got != s {
			t.Errorf("round trip %q -> %q", s, got)
		}
		if got := deps[0].String(); got != s {
			t.Errorf("String() %q -> %q", s, got)
		}
	}
}

func TestRoot_AttachDependencies(t *testing.T) {
	tests := []struct {
		name  string
		input []Dependency
		want  []Dependency
	}{
		{
			name: "distinct kept in order",
			input: []Dependency{
				{Name: "six"},
				{Name: "attrs", Version: ">=20"},
			},
			want: []Dependency{
				{Name: "six"},
				{Name: "attrs", Version: ">=20"},
			},
		},
		{
			name: "normalized names merge",
			input: []Dependency{
				{Name: "Zope.Interface", Version: ">=4"},
				{Name: "zope-interface", Version: "<6"},
				{Name: "zope_interface", Version: ">=4"},
			},
			want: []Dependency{
				{Name: "Zope.Interface", Version: ">=4,<6"},
			},
		},
		{
			name: "different extras stay separate",
			input: []Dependency{
				{Name: "requests"},
				{Name: "requests", Extras: []string{"socks"}},
			},
			want: []Dependency{
				{Name: "requests"},
				{Name: "requests", Extras: []string{"socks"}},
			},
		},
		{
			name: "markers combined with or",
			input: []Dependency{
				{Name: "enum34", Markers: `python_version < "3.4"`},
				{Name: "enum34", Markers: `implementation_name == "jython"`},
			},
			want: []Dependency{
				{Name: "enum34", Markers: `(python_version < "3.4") or (implementation_name == "jython")`},
			},
		},
		{
			name: "unconditional side wins",
			input: []Dependency{
				{Name: "six", Markers: `python_version < "3"`},
				{Name: "six"},
			},
			want: []Dependency{
				{Name: "six"},
			},
		},
		{
			name: "extras normalized before keying",
			input: []Dependency{
				{Name: "a", Extras: []string{"y", "x", "x"}},
				{Name: "a", Extras: []string{"x", "y"}, Version: "==1"},
			},
			want: []Dependency{
				{Name: "a", Extras: []string{"x", "y"}, Version: "==1"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New("demo")
			r.AttachDependencies(tt.input...)
			if diff := cmp.Diff(tt.want, r.Dependencies); diff != "" {
				t.Errorf("Dependencies mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRoot_AttachDependencies_Incremental(t *testing.T) {
	r := New("demo")
	r.AttachDependencies(Dependency{Name: "six", Version: ">=1"})
	r.AttachDependencies(Dependency{Name: "Six", Version: "<2"}, Dependency{Name: "attrs"})

	want := []Dependency{{Name: "six", Version: ">=1,<2"}, {Name: "attrs"}}
	if diff := cmp.Diff(want, r.Dependencies); diff != "" {
		t.Errorf("Dependencies mismatch (-want +got):\n%s", diff)
	}
}

func TestRoot_Clone(t *testing.T) {
	r := New("demo")
	r.Keywords = []string{"a"}
	r.Authors = []Author{{Name: "Ann"}}
	r.SetLink("home", "https://x.test")
	r.Readme = readme.New("README.md", "# demo")
	r.AttachDependencies(Dependency{Name: "requests", Extras: []string{"socks"}})

	c := r.Clone()
	if diff := cmp.Diff(r, c); diff != "" {
		t.Fatalf("Clone differs (-orig +clone):\n%s", diff)
	}

	c.Keywords[0] = "b"
	c.Authors[0].Name = "Bob"
	c.Links[LinkHome] = "https://y.test"
	c.Readme.Content = "changed"
	c.Dependencies[0].Extras[0] = "security"

	if r.Keywords[0] != "a" || r.Authors[0].Name != "Ann" || r.Link(LinkHome) != "https://x.test" ||
		r.Readme.Content != "# demo" || r.Dependencies[0].Extras[0] != "socks" {
		t.Error("Clone shares state with the original")
	}

	var nilRoot *Root
	if nilRoot.Clone() != nil {
		t.Error("nil Clone should be nil")
	}
}
