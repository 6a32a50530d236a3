package poetry

import (
	"testing"

	derrors "github.com/matzehuels/depconv/pkg/errors"
)

func TestToPEP440(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"*", ""},
		{"^1.2.3", ">=1.2.3,<2.0.0"},
		{"^1.2", ">=1.2,<2.0"},
		{"^1", ">=1,<2"},
		{"^0.2.3", ">=0.2.3,<0.3.0"},
		{"^0.0.3", ">=0.0.3,<0.0.4"},
		{"^0.0", ">=0.0,<0.1"},
		{"^0", ">=0,<1"},
		{"~1.2.3", ">=1.2.3,<1.3.0"},
		{"~1.2", ">=1.2,<1.3"},
		{"~1", ">=1,<2"},
		{"~=1.4", "~=1.4"},
		{"1.2.3", "==1.2.3"},
		{"=1.2.3", "==1.2.3"},
		{"1.2.*", "==1.2.*"},
		{">= 1.2, < 1.5", ">=1.2,<1.5"},
		{">=1.2 <1.5", ">=1.2,<1.5"},
		{"!=1.3.0", "!=1.3.0"},
		{"^2.0.0b1", ">=2.0.0b1,<3.0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ToPEP440(tt.in)
			if err != nil {
				t.Fatalf("ToPEP440(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ToPEP440(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestToPEP440_Errors(t *testing.T) {
	if _, err := ToPEP440("^1.0 || ^2.0"); !derrors.Is(err, derrors.ErrCodeUnsupported) {
		t.Errorf("alternatives error = %v, want UNSUPPORTED", err)
	}
	if _, err := ToPEP440(">1.*"); !derrors.Is(err, derrors.ErrCodeMalformedRequirement) {
		t.Errorf("bad wildcard error = %v, want MALFORMED_REQUIREMENT", err)
	}
}

func TestPythonMarker(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"*", ""},
		{">=3.8", `python_version >= "3.8"`},
		{"^3.8", `python_version >= "3.8" and python_version < "4.0"`},
		{"3.9.*", `python_version == "3.9.*"`},
	}
	for _, tt := range tests {
		got, err := PythonMarker(tt.in)
		if err != nil {
			t.Fatalf("PythonMarker(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("PythonMarker(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
