package grammar

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDefault_KnownTags(t *testing.T) {
	tests := []struct {
		tag  string
		want Kind
	}{
		{"SUBMISSION", Block},
		{"DOCUMENT", Block},
		{"SEC-HEADER", Block},
		{"FILER", Block},
		{"COMPANY-DATA", Block},
		{"TEXT", OpaqueText},
		{"XBRL", OpaqueMarkup},
		{"XML", OpaqueMarkup},
		{"PDF", OpaqueBinary},
		{"ACCESSION-NUMBER", Value},
		{"TYPE", Value},
	}
	g := Default()
	for _, tt := range tests {
		if got := g.Lookup(tt.tag); got != tt.want {
			t.Errorf("Lookup(%q): expected %s, got %s", tt.tag, tt.want, got)
		}
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	g := Default()
	if got := g.Lookup("document"); got != Block {
		t.Errorf("expected block for lower-case tag, got %s", got)
	}
	if got := g.Lookup(" Text "); got != OpaqueText {
		t.Errorf("expected opaque_text for padded tag, got %s", got)
	}
}

func TestLookup_UnknownDefaultsToValue(t *testing.T) {
	g := Default()
	k, known := g.Known("SOME-NEW-TAG-FROM-2031")
	if known {
		t.Error("expected unknown tag to be reported as not known")
	}
	if k != Value {
		t.Errorf("expected value kind for unknown tag, got %s", k)
	}
}

func TestParse_Overrides(t *testing.T) {
	override, err := Parse([]byte("block:\n  - abs-asset-data\nopaque_markup:\n  - html\nbody:\n  - abs-asset-data\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	merged := Default().With(override)

	if got := merged.Lookup("ABS-ASSET-DATA"); got != Block {
		t.Errorf("expected block, got %s", got)
	}
	if got := merged.Lookup("HTML"); got != OpaqueMarkup {
		t.Errorf("expected opaque_markup, got %s", got)
	}
	if got := merged.Lookup("SUBMISSION"); got != Block {
		t.Errorf("expected base entries to survive merge, got %s", got)
	}
	if !merged.Body("ABS-ASSET-DATA") || !merged.Body("DOCUMENT") {
		t.Error("expected body blocks from both tables")
	}
	// The base table is not mutated.
	if _, known := Default().Known("ABS-ASSET-DATA"); known {
		t.Error("expected With to leave the default table untouched")
	}
	if Default().Body("ABS-ASSET-DATA") {
		t.Error("expected With to leave the default body list untouched")
	}
}

func TestParse_ConflictingKinds(t *testing.T) {
	_, err := Parse([]byte("block: [A]\nvalue: [a]\n"))
	if err == nil {
		t.Fatal("expected error for tag listed under two kinds")
	}
	if !strings.Contains(err.Error(), "listed as both") {
		t.Errorf("unexpected error message: %v", err)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("block: [unterminated")); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grammar.yaml")
	if err := os.WriteFile(path, []byte("opaque_binary:\n  - ZIP\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	g, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := g.Lookup("zip"); got != OpaqueBinary {
		t.Errorf("expected opaque_binary, got %s", got)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMarshalYAML_RoundTrip(t *testing.T) {
	out, err := yaml.Marshal(Default())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := Parse(out)
	if err != nil {
		t.Fatalf("parse marshaled table: %v", err)
	}
	for _, kind := range []Kind{Value, Block, OpaqueText, OpaqueBinary, OpaqueMarkup} {
		want := strings.Join(Default().Tags(kind), ",")
		got := strings.Join(back.Tags(kind), ",")
		if got != want {
			t.Errorf("%s: expected %q, got %q", kind, want, got)
		}
	}
	if !back.Body("DOCUMENT") {
		t.Error("expected body list to survive the round trip")
	}
}

func TestBody(t *testing.T) {
	g := Default()
	tests := []struct {
		tag  string
		want bool
	}{
		{"DOCUMENT", true},
		{"document", true},
		{"COMPANY-DATA", false},
		{"SUBMISSION", false},
		{"UNKNOWN", false},
	}
	for _, tt := range tests {
		if got := g.Body(tt.tag); got != tt.want {
			t.Errorf("Body(%q): expected %v, got %v", tt.tag, tt.want, got)
		}
	}
	var nilTable *Table
	if nilTable.Body("DOCUMENT") {
		t.Error("expected nil table to list no body blocks")
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{Value, Block, OpaqueText, OpaqueBinary, OpaqueMarkup} {
		got, err := ParseKind(k.String())
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", k, err)
		}
		if got != k {
			t.Errorf("expected %s, got %s", k, got)
		}
	}
	if _, err := ParseKind("bogus"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestKind_Opaque(t *testing.T) {
	if Value.Opaque() || Block.Opaque() {
		t.Error("value and block kinds must not be opaque")
	}
	if !OpaqueText.Opaque() || !OpaqueBinary.Opaque() || !OpaqueMarkup.Opaque() {
		t.Error("opaque kinds must report Opaque")
	}
}
