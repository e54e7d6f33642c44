// Package grammar holds the empirically reconstructed closure rules of the
// EDGAR submission format: which tags open nested blocks, which carry a value
// on their own line, and which wrap content that must not be tag-parsed.
package grammar

import (
	_ "embed"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed grammar.yaml
var defaultYAML []byte

// Kind is the closure behavior of a tag.
type Kind uint8

const (
	// Value tags are self-closing; the value is the remainder of the line.
	Value Kind = iota
	// Block tags open a nested structure closed by a matching close tag,
	// or implicitly by an enclosing close or end of input.
	Block
	// OpaqueText wraps a plain text body that is not tag-parsed.
	OpaqueText
	// OpaqueBinary wraps an encoded binary attachment.
	OpaqueBinary
	// OpaqueMarkup wraps an embedded markup payload kept verbatim.
	OpaqueMarkup
)

// String returns the name used in grammar files.
func (k Kind) String() string {
	switch k {
	case Value:
		return "value"
	case Block:
		return "block"
	case OpaqueText:
		return "opaque_text"
	case OpaqueBinary:
		return "opaque_binary"
	case OpaqueMarkup:
		return "opaque_markup"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Opaque reports whether content under the tag is scanned as a raw span.
func (k Kind) Opaque() bool {
	return k == OpaqueText || k == OpaqueBinary || k == OpaqueMarkup
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "value":
		return Value, nil
	case "block":
		return Block, nil
	case "opaque_text":
		return OpaqueText, nil
	case "opaque_binary":
		return OpaqueBinary, nil
	case "opaque_markup":
		return OpaqueMarkup, nil
	}
	return Value, fmt.Errorf("unknown tag kind %q", s)
}

// Normalize returns the canonical spelling of a tag name. Tag names are
// compared case-insensitively.
func Normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Table maps tag names to their closure kind. A Table is immutable once
// built and safe for concurrent use.
type Table struct {
	kinds map[string]Kind
	// bodies are block tags whose loose lines are content rather than the
	// continuation of a wrapped value.
	bodies map[string]bool
}

// New builds a table from an explicit mapping.
func New(kinds map[string]Kind) *Table {
	t := &Table{kinds: make(map[string]Kind, len(kinds)), bodies: make(map[string]bool)}
	for name, k := range kinds {
		t.kinds[Normalize(name)] = k
	}
	return t
}

var defaultTable = sync.OnceValue(func() *Table {
	t, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("grammar: embedded table: %v", err))
	}
	return t
})

// Default returns the built-in table.
func Default() *Table {
	return defaultTable()
}

// file is the on-disk layout of a grammar table: one list of tag names per kind.
type file struct {
	Value        []string `yaml:"value,omitempty"`
	Block        []string `yaml:"block,omitempty"`
	OpaqueText   []string `yaml:"opaque_text,omitempty"`
	OpaqueBinary []string `yaml:"opaque_binary,omitempty"`
	OpaqueMarkup []string `yaml:"opaque_markup,omitempty"`
	Body         []string `yaml:"body,omitempty"`
}

// Parse reads a table from YAML. A tag listed under two kinds is an error.
func Parse(data []byte) (*Table, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}

	t := &Table{kinds: make(map[string]Kind), bodies: make(map[string]bool)}
	lists := []struct {
		kind Kind
		tags []string
	}{
		{Value, f.Value},
		{Block, f.Block},
		{OpaqueText, f.OpaqueText},
		{OpaqueBinary, f.OpaqueBinary},
		{OpaqueMarkup, f.OpaqueMarkup},
	}
	for _, l := range lists {
		for _, tag := range l.tags {
			name := Normalize(tag)
			if name == "" {
				return nil, fmt.Errorf("parse grammar: empty tag name under %s", l.kind)
			}
			if prev, ok := t.kinds[name]; ok && prev != l.kind {
				return nil, fmt.Errorf("parse grammar: tag %s listed as both %s and %s", name, prev, l.kind)
			}
			t.kinds[name] = l.kind
		}
	}
	for _, tag := range f.Body {
		name := Normalize(tag)
		if name == "" {
			return nil, fmt.Errorf("parse grammar: empty tag name under body")
		}
		t.bodies[name] = true
	}
	return t, nil
}

// LoadFile reads a YAML table from disk.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read grammar %s: %w", path, err)
	}
	return Parse(data)
}

// Lookup returns the kind of a tag. Unknown tags are value tags.
func (t *Table) Lookup(name string) Kind {
	k, _ := t.Known(name)
	return k
}

// Known returns the kind of a tag and whether the table lists it.
func (t *Table) Known(name string) (Kind, bool) {
	if t == nil {
		return Value, false
	}
	k, ok := t.kinds[Normalize(name)]
	return k, ok
}

// With returns a new table holding t's entries overridden by other's.
func (t *Table) With(other *Table) *Table {
	merged := &Table{kinds: make(map[string]Kind, len(t.kinds)), bodies: make(map[string]bool)}
	maps.Copy(merged.kinds, t.kinds)
	maps.Copy(merged.bodies, t.bodies)
	if other != nil {
		maps.Copy(merged.kinds, other.kinds)
		maps.Copy(merged.bodies, other.bodies)
	}
	return merged
}

// Body reports whether loose lines directly under the block tag name are
// body content. Elsewhere a loose line continues the value tag before it.
func (t *Table) Body(name string) bool {
	return t != nil && t.bodies[Normalize(name)]
}

// Tags returns the sorted tag names listed with the given kind.
func (t *Table) Tags(kind Kind) []string {
	var out []string
	for name, k := range t.kinds {
		if k == kind {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// MarshalYAML writes the table in the same layout Parse reads.
func (t *Table) MarshalYAML() (any, error) {
	return file{
		Value:        t.Tags(Value),
		Block:        t.Tags(Block),
		OpaqueText:   t.Tags(OpaqueText),
		OpaqueBinary: t.Tags(OpaqueBinary),
		OpaqueMarkup: t.Tags(OpaqueMarkup),
		Body:         slices.Sorted(maps.Keys(t.bodies)),
	}, nil
}
