package lang

import (
	"sort"
	"testing"
)

func TestFromTag(t *testing.T) {
	tests := []struct {
		tag  string
		want Language
		ok   bool
	}{
		{"javascript", JavaScript, true},
		{"Python", Python, true},
		{"  go  ", Go, true},
		{"tsx", TSX, true},
		{"cobol", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, ok := FromTag(tt.tag)
			if ok != tt.ok {
				t.Fatalf("FromTag(%q) ok = %v, want %v", tt.tag, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("FromTag(%q) = %q, want %q", tt.tag, got, tt.want)
			}
		})
	}
}

func TestFromExtension(t *testing.T) {
	tests := []struct {
		path string
		want Language
		ok   bool
	}{
		{"src/app.js", JavaScript, true},
		{"src/app.jsx", JavaScript, true},
		{"main.PY", Python, true},
		{"pkg/util.go", Go, true},
		{"component.tsx", TSX, true},
		{"lib.rs", Rust, true},
		{"script.sh", Bash, true},
		{"README.md", "", false},
		{"Makefile", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := FromExtension(tt.path)
			if ok != tt.ok {
				t.Fatalf("FromExtension(%q) ok = %v, want %v", tt.path, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("FromExtension(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestEveryLanguageHasAGrammar(t *testing.T) {
	for _, l := range All() {
		if l.Grammar() == nil {
			t.Errorf("language %s has no grammar", l)
		}
	}
}

func TestAllIsSorted(t *testing.T) {
	langs := All()
	if len(langs) == 0 {
		t.Fatal("no languages registered")
	}
	if !sort.SliceIsSorted(langs, func(i, j int) bool { return langs[i] < langs[j] }) {
		t.Errorf("All() is not sorted: %v", langs)
	}
}
