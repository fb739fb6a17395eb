package directive

import "testing"

func TestSplit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		line    string
		code    string
		comment string
	}{
		{"no comment", "use(p)", "use(p)", ""},
		{"expectation", "StorageDead(x) //! freed", "StorageDead(x)", "//! freed"},
		{"plain comment", "  use(p)   // keep p alive", "use(p)", "// keep p alive"},
		{"only comment", "// nothing", "", "// nothing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			code, comment := Split(tt.line)
			if code != tt.code || comment != tt.comment {
				t.Errorf("Split(%q) = (%q, %q), want (%q, %q)", tt.line, code, comment, tt.code, tt.comment)
			}
		})
	}
}

func TestExpectation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		comment  string
		fragment string
		ok       bool
	}{
		{"exact", "//! cannot move", "cannot move", true},
		{"no space", "//!borrowed", "borrowed", true},
		{"empty fragment", "//!", "", true},
		{"trailing comment", "//! borrowed // see issue", "borrowed", true},
		{"spaced bang is plain", "// ! borrowed", "", false},
		{"plain", "// borrowed", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fragment, ok := Expectation(tt.comment)
			if fragment != tt.fragment || ok != tt.ok {
				t.Errorf("Expectation(%q) = (%q, %v), want (%q, %v)", tt.comment, fragment, ok, tt.fragment, tt.ok)
			}
			if IsExpectation(tt.comment) != tt.ok {
				t.Errorf("IsExpectation(%q) = %v, want %v", tt.comment, !tt.ok, tt.ok)
			}
		})
	}
}
