// Package sgml tokenizes EDGAR submission files and rebuilds their tag tree.
//
// The format is line oriented: a tag occupies the start of a line and is
// either an open tag, a close tag, or a tag followed by its value. Content
// of opaque containers (document bodies, embedded markup, encoded binaries)
// is never split into lines; it is scanned as one raw span up to the
// matching close tag.
package sgml

import (
	"bytes"
	"io"

	"github.com/dgallion1/ncparse/internal/grammar"
)

// LineKind classifies a tokenized line.
type LineKind uint8

const (
	TagOpen LineKind = iota + 1
	TagClose
	TagValue
	RawLine
)

func (k LineKind) String() string {
	switch k {
	case TagOpen:
		return "TagOpen"
	case TagClose:
		return "TagClose"
	case TagValue:
		return "TagValue"
	case RawLine:
		return "RawLine"
	default:
		return "Unknown"
	}
}

// Line is one classified unit of input.
type Line struct {
	Kind LineKind
	Name string // normalized tag name; empty for RawLine
	// Value is the trimmed inline value of a TagValue line.
	Value string
	// Closed is set when a TagValue line carried its own close tag,
	// as in <TYPE>10-K</TYPE>.
	Closed bool
	// Trailing is any text after a close tag on the same line.
	Trailing string
	// Raw holds a RawLine verbatim, including its line terminator.
	Raw []byte

	Offset     int // offset of the '<' (or of the line start for RawLine)
	ValueStart int // offset of the first byte after '>' for TagValue
	End        int // offset where tokenizing resumes
}

// Tokenizer produces classified lines from an in-memory submission. It is
// single use: once drained it cannot be restarted.
type Tokenizer struct {
	data []byte
	pos  int
}

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// NewTokenizer returns a tokenizer over data. A leading UTF-8 byte order
// mark is skipped; offsets still count from the start of data.
func NewTokenizer(data []byte) *Tokenizer {
	t := &Tokenizer{data: data}
	if bytes.HasPrefix(data, utf8BOM) {
		t.pos = len(utf8BOM)
	}
	return t
}

// Next returns the next classified line, or io.EOF when input is exhausted.
// Blank lines between tags carry no structure and are skipped.
func (t *Tokenizer) Next() (Line, error) {
	for t.pos < len(t.data) {
		start := t.pos
		eol, next := t.lineBounds(start)
		text := bytes.TrimRight(t.data[start:eol], "\r")

		lead := len(text) - len(bytes.TrimLeft(text, " \t"))
		if lead == len(text) || len(bytes.TrimSpace(text)) == 0 {
			t.pos = next
			continue
		}
		if text[lead] != '<' {
			t.pos = next
			return Line{Kind: RawLine, Raw: t.data[start:next], Offset: start, End: next}, nil
		}
		return t.tag(start+lead, start+len(text), next)
	}
	return Line{}, io.EOF
}

// lineBounds returns the end of the line starting at start (excluding the
// newline) and the offset of the following line.
func (t *Tokenizer) lineBounds(start int) (eol, next int) {
	i := bytes.IndexByte(t.data[start:], '\n')
	if i < 0 {
		return len(t.data), len(t.data)
	}
	return start + i, start + i + 1
}

// tag parses the tag starting at lt; eol is the end of the line content
// (trailing CR removed) and next the start of the following line.
func (t *Tokenizer) tag(lt, eol, next int) (Line, error) {
	closing := lt+1 < eol && t.data[lt+1] == '/'
	nameStart := lt + 1
	if closing {
		nameStart++
	}
	gt := bytes.IndexByte(t.data[nameStart:eol], '>')
	if gt < 0 {
		return Line{}, &TokenizeError{Offset: lt, Err: ErrUnterminatedTag}
	}
	gt += nameStart
	name := t.data[nameStart:gt]
	if len(name) == 0 {
		return Line{}, &TokenizeError{Offset: lt, Err: ErrEmptyTagName}
	}
	if i := invalidNameByte(name); i >= 0 {
		return Line{}, &TokenizeError{Offset: nameStart + i, Err: ErrInvalidTagName}
	}

	line := Line{Name: grammar.Normalize(string(name)), Offset: lt}
	rest := t.data[gt+1 : eol]
	trimmed := bytes.TrimSpace(rest)

	// Another tag may follow on the same line, as in <DOCUMENT><TYPE>10-K.
	if len(trimmed) > 0 && trimmed[0] == '<' && wellFormedTag(trimmed) {
		line.End = gt + 1 + bytes.IndexByte(rest, '<')
		if closing {
			line.Kind = TagClose
		} else {
			line.Kind = TagOpen
		}
		t.pos = line.End
		return line, nil
	}

	t.pos = next
	line.End = next
	switch {
	case closing:
		line.Kind = TagClose
		line.Trailing = string(trimmed)
	case len(trimmed) == 0:
		line.Kind = TagOpen
	default:
		line.Kind = TagValue
		line.ValueStart = gt + 1
		suffix := "</" + line.Name + ">"
		if len(trimmed) >= len(suffix) && bytes.EqualFold(trimmed[len(trimmed)-len(suffix):], []byte(suffix)) {
			trimmed = bytes.TrimSpace(trimmed[:len(trimmed)-len(suffix)])
			line.Closed = true
		}
		line.Value = string(trimmed)
	}
	return line, nil
}

// ScanOpaque switches to opaque mode for the container name whose content
// begins at start. It returns the undivided span up to the first matching
// close tag and resumes line tokenizing after it. fence, when not empty, is
// the enclosing block: the span never runs past a line starting with its
// close tag. When no close tag is found the span runs to the fence or end of
// input and closed is false.
func (t *Tokenizer) ScanOpaque(name string, start int, fence string) (span []byte, closed bool) {
	if start > len(t.data) {
		start = len(t.data)
	}
	limit := len(t.data)
	if fence != "" {
		if i := indexLineCloseTag(t.data[start:], fence); i >= 0 {
			limit = start + i
		}
	}
	idx := IndexCloseTag(t.data[start:limit], name)
	if idx < 0 {
		t.pos = limit
		return t.data[start:limit], false
	}
	span = t.data[start : start+idx]
	after := start + idx + len(name) + 3

	// Resume on the next line when nothing but blanks follows the close tag.
	eol, next := t.lineBounds(after)
	if len(bytes.TrimSpace(t.data[after:eol])) == 0 {
		t.pos = next
	} else {
		t.pos = after
	}
	return span, true
}

// indexLineCloseTag returns the offset of the first line in s whose first
// non-blank bytes are </NAME> in any case, or -1.
func indexLineCloseTag(s []byte, name string) int {
	want := []byte("</" + name + ">")
	for pos := 0; pos < len(s); {
		end := bytes.IndexByte(s[pos:], '\n')
		if end < 0 {
			end = len(s)
		} else {
			end += pos
		}
		line := bytes.TrimLeft(s[pos:end], " \t")
		if len(line) >= len(want) && bytes.EqualFold(line[:len(want)], want) {
			return pos
		}
		pos = end + 1
	}
	return -1
}

// IndexCloseTag returns the index of the first </NAME> in s, or -1. name is
// expected in normalized upper case. A close tag in any other case is only
// accepted when no exact one exists, so lower-case markup such as </xbrl>
// inside an XBRL container does not end it.
func IndexCloseTag(s []byte, name string) int {
	want := []byte("</" + name + ">")
	if i := bytes.Index(s, want); i >= 0 {
		return i
	}
	for i := 0; i+len(want) <= len(s); {
		j := bytes.Index(s[i:], []byte("</"))
		if j < 0 {
			return -1
		}
		i += j
		if i+len(want) <= len(s) && bytes.EqualFold(s[i:i+len(want)], want) {
			return i
		}
		i += 2
	}
	return -1
}

// invalidNameByte returns the index of the first byte not allowed in a tag
// name, or -1.
func invalidNameByte(name []byte) int {
	for i, c := range name {
		if c <= ' ' || c >= 0x7f || c == '<' {
			return i
		}
	}
	return -1
}

// wellFormedTag reports whether s starts with a complete tag.
func wellFormedTag(s []byte) bool {
	gt := bytes.IndexByte(s, '>')
	if gt < 0 {
		return false
	}
	name := s[1:gt]
	if len(name) > 0 && name[0] == '/' {
		name = name[1:]
	}
	return len(name) > 0 && invalidNameByte(name) < 0
}
