package sgml

import (
	"io"
	"strings"

	"github.com/dgallion1/ncparse/internal/grammar"
)

// AnomalyKind names a recoverable structural irregularity.
type AnomalyKind string

const (
	AnomalySpuriousClose   AnomalyKind = "spurious-close"
	AnomalyImplicitClose   AnomalyKind = "implicit-close"
	AnomalyLateClose       AnomalyKind = "late-close"
	AnomalyStrayContent    AnomalyKind = "stray-content"
	AnomalyTrailingContent AnomalyKind = "trailing-content"
	AnomalyUnterminated    AnomalyKind = "unterminated-opaque"
)

// Anomaly records a recoverable irregularity found while parsing.
type Anomaly struct {
	Kind   AnomalyKind `json:"kind"`
	Tag    string      `json:"tag,omitempty"`
	Offset int         `json:"offset"`
	Detail string      `json:"detail,omitempty"`
}

// Node is one element of the rebuilt tag tree.
type Node struct {
	Tag  string
	Kind grammar.Kind
	// Value is the inline value of a value tag. HasValue distinguishes an
	// empty value from an absent one.
	Value    string
	HasValue bool
	Children []*Node
	// Raw is the verbatim span of an opaque node, or the stray content
	// lines found directly under a block.
	Raw    []byte
	Offset int
	// Closed is set when an explicit close tag ended the node.
	Closed bool
}

// Child returns the first direct child with the given tag, or nil.
func (n *Node) Child(tag string) *Node {
	tag = grammar.Normalize(tag)
	for _, c := range n.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Tree is the result of Build.
type Tree struct {
	Root      *Node
	Anomalies []Anomaly
}

type builder struct {
	tz        *Tokenizer
	grammar   *grammar.Table
	root      *Node
	stack     []*Node
	anomalies []Anomaly
	// lastValue is the value leaf created by the previous line, if any.
	lastValue *Node
}

// Build tokenizes data and rebuilds its tag tree using g's closure rules.
// A nil table selects grammar.Default. The only error is a *TokenizeError.
func Build(data []byte, g *grammar.Table) (*Tree, error) {
	if g == nil {
		g = grammar.Default()
	}
	root := &Node{Kind: grammar.Block}
	b := &builder{
		tz:      NewTokenizer(data),
		grammar: g,
		root:    root,
		stack:   []*Node{root},
	}
	for {
		line, err := b.tz.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		b.consume(line)
	}
	// Anything still open closes at end of input without complaint.
	b.stack = b.stack[:1]
	return &Tree{Root: root, Anomalies: b.anomalies}, nil
}

func (b *builder) top() *Node {
	return b.stack[len(b.stack)-1]
}

func (b *builder) anomaly(kind AnomalyKind, tag string, offset int, detail string) {
	b.anomalies = append(b.anomalies, Anomaly{Kind: kind, Tag: tag, Offset: offset, Detail: detail})
}

func (b *builder) consume(line Line) {
	prev := b.lastValue
	b.lastValue = nil

	switch line.Kind {
	case TagOpen, TagValue:
		b.open(line)
	case TagClose:
		b.close(line, prev)
	case RawLine:
		b.raw(line, prev)
	}
}

func (b *builder) open(line Line) {
	kind := b.grammar.Lookup(line.Name)
	n := &Node{Tag: line.Name, Kind: kind, Offset: line.Offset}
	parent := b.top()
	parent.Children = append(parent.Children, n)

	switch {
	case kind.Opaque():
		start := line.End
		if line.Kind == TagValue {
			start = line.ValueStart
		}
		n.Raw, n.Closed = b.tz.ScanOpaque(line.Name, start, parent.Tag)
		if !n.Closed {
			until := "end of input"
			if parent != b.root {
				until = "</" + parent.Tag + ">"
			}
			b.anomaly(AnomalyUnterminated, line.Name, line.Offset, "no </"+line.Name+"> before "+until)
		}
	case kind == grammar.Block:
		if line.Kind == TagValue {
			n.Value, n.HasValue = line.Value, true
		}
		n.Closed = line.Closed
		if !line.Closed {
			b.stack = append(b.stack, n)
		}
	default:
		n.Value, n.HasValue = line.Value, true
		n.Closed = line.Closed
		b.lastValue = n
	}
}

func (b *builder) close(line Line, prev *Node) {
	// Innermost match wins.
	for i := len(b.stack) - 1; i >= 1; i-- {
		if b.stack[i].Tag != line.Name {
			continue
		}
		for j := len(b.stack) - 1; j > i; j-- {
			b.anomaly(AnomalyImplicitClose, b.stack[j].Tag, line.Offset, "closed by </"+line.Name+">")
		}
		b.stack[i].Closed = true
		b.stack = b.stack[:i]
		if line.Trailing != "" {
			b.anomaly(AnomalyTrailingContent, line.Name, line.Offset, excerpt(line.Trailing))
		}
		return
	}

	if prev != nil && prev.Tag == line.Name {
		prev.Closed = true
		return
	}
	top := b.top()
	for i := len(top.Children) - 1; i >= 0; i-- {
		c := top.Children[i]
		if c.Tag == line.Name && c.Kind == grammar.Value && !c.Closed {
			c.Closed = true
			b.anomaly(AnomalyLateClose, line.Name, line.Offset, "value tag closed after later siblings")
			return
		}
	}
	b.anomaly(AnomalySpuriousClose, line.Name, line.Offset, "")
}

func (b *builder) raw(line Line, prev *Node) {
	top := b.top()
	// Loose lines wrap the previous value, except in body blocks where they
	// are content.
	if prev != nil && !prev.Closed && !b.grammar.Body(top.Tag) {
		text := strings.TrimRight(string(line.Raw), " \t\r\n")
		if prev.Value == "" {
			prev.Value = strings.TrimSpace(text)
		} else {
			prev.Value += "\n" + text
		}
		b.lastValue = prev
		return
	}

	if top == b.root {
		b.anomaly(AnomalyStrayContent, "", line.Offset, excerpt(string(line.Raw)))
	}
	top.Raw = append(top.Raw, line.Raw...)
}

// excerpt shortens s for anomaly details.
func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}
