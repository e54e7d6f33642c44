// Package payload classifies and extracts the body of an embedded document.
package payload

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/dgallion1/ncparse/internal/grammar"
	"github.com/dgallion1/ncparse/internal/sgml"
)

// Kind is the classification of a document payload.
type Kind uint8

const (
	Unclassified Kind = iota
	Text
	Binary
	OpaqueMarkup
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Binary:
		return "binary"
	case OpaqueMarkup:
		return "markup"
	default:
		return "unclassified"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

const (
	CharsetUTF8        = "utf-8"
	CharsetWindows1252 = "windows-1252"
)

var ErrBinaryContent = errors.New("binary control bytes in text body")

// Payload is the extracted body of one document. Text holds Text and
// OpaqueMarkup bodies exactly as they appeared; Data holds Binary and
// Unclassified bodies.
type Payload struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text,omitempty"`
	Data []byte `json:"data,omitempty"`

	// Wrapper is the nested container tag the body was unwrapped from.
	Wrapper  string `json:"wrapper,omitempty"`
	Encoding string `json:"encoding,omitempty"`
	Name     string `json:"name,omitempty"`
	Mode     string `json:"mode,omitempty"`
	Charset  string `json:"charset,omitempty"`

	attachment *Attachment
}

// Size returns the length of the extracted body in bytes.
func (p Payload) Size() int {
	if p.Kind == Text || p.Kind == OpaqueMarkup {
		return len(p.Text)
	}
	return len(p.Data)
}

// Bytes returns the extracted body.
func (p Payload) Bytes() []byte {
	if p.Kind == Text || p.Kind == OpaqueMarkup {
		return []byte(p.Text)
	}
	return p.Data
}

// UTF8 returns the text body transcoded to UTF-8.
func (p Payload) UTF8() (string, error) {
	if p.Charset != CharsetWindows1252 {
		return p.Text, nil
	}
	s, err := charmap.Windows1252.NewDecoder().String(p.Text)
	if err != nil {
		return "", fmt.Errorf("transcode %s: %w", p.Charset, err)
	}
	return s, nil
}

// Encoded reproduces the encoded body of a Binary payload.
func (p Payload) Encoded() ([]byte, bool) {
	if p.attachment == nil {
		return nil, false
	}
	return p.attachment.Encode(), true
}

// Classify extracts a payload from the raw span of a container with the
// given grammar kind. A nil table selects grammar.Default. When the body
// cannot be classified the payload is Unclassified, holds a copy of raw,
// and err explains why; the payload is usable either way.
func Classify(kind grammar.Kind, raw []byte, g *grammar.Table) (Payload, error) {
	if g == nil {
		g = grammar.Default()
	}
	switch kind {
	case grammar.OpaqueText:
		if tag, wkind, inner, ok := unwrap(raw, g); ok {
			p, err := Classify(wkind, inner, g)
			p.Wrapper = tag
			return p, err
		}
		if isAttachment(raw) {
			return decodeBinary(raw)
		}
		return classifyText(raw)
	case grammar.OpaqueBinary:
		return decodeBinary(raw)
	case grammar.OpaqueMarkup:
		p := Payload{Kind: OpaqueMarkup, Text: string(raw)}
		if utf8.Valid(raw) {
			p.Charset = CharsetUTF8
		}
		return p, nil
	default:
		return classifyText(raw)
	}
}

// unwrap finds a single nested opaque container spanning the whole body,
// as in <TEXT><XBRL>...</XBRL></TEXT>.
func unwrap(raw []byte, g *grammar.Table) (tag string, kind grammar.Kind, inner []byte, ok bool) {
	lead := len(raw) - len(bytes.TrimLeft(raw, " \t\r\n"))
	s := raw[lead:]
	if len(s) < 3 || s[0] != '<' {
		return "", 0, nil, false
	}
	gt := bytes.IndexByte(s, '>')
	if gt < 2 {
		return "", 0, nil, false
	}
	tag = grammar.Normalize(string(s[1:gt]))
	kind = g.Lookup(tag)
	if !kind.Opaque() || kind == grammar.OpaqueText {
		return "", 0, nil, false
	}

	body := s[gt+1:]
	// A line break right after the open tag belongs to the delimiter.
	if eol := bytes.IndexByte(body, '\n'); eol >= 0 && len(bytes.TrimSpace(body[:eol])) == 0 {
		body = body[eol+1:]
	}
	end := sgml.IndexCloseTag(body, tag)
	if end < 0 || len(bytes.TrimSpace(body[end+len(tag)+3:])) != 0 {
		return "", 0, nil, false
	}
	return tag, kind, body[:end], true
}

func isAttachment(raw []byte) bool {
	s := bytes.TrimLeft(raw, " \t\r\n")
	return bytes.HasPrefix(s, []byte("begin-base64 ")) || (bytes.HasPrefix(s, []byte("begin ")) && len(s) > 6 && s[6] >= '0' && s[6] <= '7')
}

func decodeBinary(raw []byte) (Payload, error) {
	a, err := DecodeAttachment(raw)
	if err != nil {
		return unclassified(raw), err
	}
	return Payload{
		Kind:       Binary,
		Data:       a.Data,
		Encoding:   a.Encoding,
		Name:       a.Name,
		Mode:       a.Mode,
		attachment: a,
	}, nil
}

func classifyText(raw []byte) (Payload, error) {
	if hasBinaryControl(raw) {
		return unclassified(raw), ErrBinaryContent
	}
	p := Payload{Kind: Text, Text: string(raw), Charset: CharsetUTF8}
	if !utf8.Valid(raw) {
		p.Charset = CharsetWindows1252
	}
	return p, nil
}

func unclassified(raw []byte) Payload {
	return Payload{Kind: Unclassified, Data: bytes.Clone(raw)}
}

// hasBinaryControl reports C0 control bytes other than the usual text
// whitespace, form feed and escape.
func hasBinaryControl(raw []byte) bool {
	for _, c := range raw {
		if c < 0x20 {
			switch c {
			case '\t', '\n', '\r', '\f', '\v', 0x1b:
			default:
				return true
			}
		}
	}
	return false
}
