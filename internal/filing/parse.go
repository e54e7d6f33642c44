package filing

import (
	"github.com/samber/lo"

	"github.com/dgallion1/ncparse/internal/grammar"
	"github.com/dgallion1/ncparse/internal/payload"
	"github.com/dgallion1/ncparse/internal/sgml"
)

const (
	tagSubmission = "SUBMISSION"
	tagDocument   = "DOCUMENT"
)

// Options adjusts parsing.
type Options struct {
	// Grammar overrides the default tag table when set.
	Grammar *grammar.Table
	// StrictDates makes every unreadable date fatal, not only FILING-DATE.
	StrictDates bool
}

// Parse parses one submission held in memory using the default grammar.
func Parse(raw []byte) (*Filing, error) {
	return ParseWith(raw, Options{})
}

// ParseWith parses one submission. Errors are a *sgml.TokenizeError, a
// *MappingError or a *datetime.DateParseError; everything recoverable is
// reported in Filing.Anomalies instead.
func ParseWith(raw []byte, opts Options) (*Filing, error) {
	g := opts.Grammar
	if g == nil {
		g = grammar.Default()
	}
	tree, err := sgml.Build(raw, g)
	if err != nil {
		return nil, err
	}

	m := &mapper{opts: opts, grammar: g, anomalies: tree.Anomalies}
	f := m.filing(tree.Root)
	if m.err != nil {
		return nil, m.err
	}
	f.Anomalies = m.anomalies
	return f, nil
}

type mapper struct {
	opts      Options
	grammar   *grammar.Table
	anomalies []sgml.Anomaly
	err       error
}

func (m *mapper) anomaly(kind sgml.AnomalyKind, n *sgml.Node, detail string) {
	m.anomalies = append(m.anomalies, sgml.Anomaly{Kind: kind, Tag: n.Tag, Offset: n.Offset, Detail: detail})
}

// fail records the first fatal error; mapping continues so the walk stays
// simple, but the result is discarded.
func (m *mapper) fail(err error) {
	if m.err == nil {
		m.err = err
	}
}

func (m *mapper) filing(root *sgml.Node) *Filing {
	f := &Filing{}

	envelope := root.Child(tagSubmission)
	if envelope == nil {
		envelope = root
		m.anomaly(AnomalyMissingEnvelope, root, "no SUBMISSION block; reading the file top level")
	}

	var docs []*sgml.Node
	root.Walk(func(n *sgml.Node) bool {
		if n.Tag == tagDocument {
			docs = append(docs, n)
			return false
		}
		return true
	})
	if len(docs) == 0 {
		m.fail(&MappingError{Element: tagDocument})
		return f
	}

	var headerNodes []*sgml.Node
	for _, n := range envelope.Children {
		switch {
		case n.Tag == tagDocument:
		case (n.Tag == "SEC-HEADER" || n.Tag == "HEADER") && n.Kind == grammar.Block:
			headerNodes = append(headerNodes, lo.Filter(n.Children, func(c *sgml.Node, _ int) bool {
				return c.Tag != tagDocument
			})...)
		default:
			headerNodes = append(headerNodes, n)
		}
	}
	if envelope != root {
		for _, n := range root.Children {
			if n == envelope {
				continue
			}
			m.anomaly(AnomalyOutsideEnvelope, n, "outside the SUBMISSION block")
			if n.Tag != tagDocument {
				headerNodes = append(headerNodes, n)
			}
		}
	}
	f.Header.Extra = string(envelope.Raw)
	m.header(&f.Header, headerNodes)

	f.Documents = make([]Document, 0, len(docs))
	for _, n := range docs {
		f.Documents = append(f.Documents, m.document(n))
	}
	return f
}

func (m *mapper) document(n *sgml.Node) Document {
	d := Document{Offset: n.Offset}
	f := m.fieldsFor(&d.Overflow, &d.Sections)

	var body *sgml.Node
	for _, c := range n.Children {
		if c.Kind.Opaque() {
			if body == nil {
				body = c
				continue
			}
			d.Sections = append(d.Sections, sectionOf(c))
			m.anomaly(AnomalyExtraPayload, c, "second content container in document")
			continue
		}
		switch c.Tag {
		case "TYPE":
			f.str(&d.Type, c)
		case "SEQUENCE":
			f.integer(&d.Sequence, c)
		case "FILENAME":
			f.str(&d.Filename, c)
		case "DESCRIPTION":
			f.str(&d.Description, c)
		case "FLAWED":
			f.presence(&d.Flawed, c)
		default:
			f.unknown(c)
		}
	}

	switch {
	case body != nil:
		d.Payload = m.classify(body.Kind, body.Raw, body)
		if len(n.Raw) > 0 {
			d.Extra = string(n.Raw)
			m.anomaly(sgml.AnomalyStrayContent, n, "content outside the document body")
		}
	case len(n.Raw) > 0:
		// Content with no container tag the grammar knows.
		d.Payload = m.classify(grammar.Value, n.Raw, n)
		m.anomaly(AnomalyMissingPayload, n, "no content container; body read from loose lines")
	default:
		d.Payload = payload.Payload{Kind: payload.Unclassified}
		m.anomaly(AnomalyMissingPayload, n, "document has no content")
	}
	return d
}

func (m *mapper) classify(kind grammar.Kind, raw []byte, n *sgml.Node) payload.Payload {
	p, err := payload.Classify(kind, raw, m.grammar)
	if err != nil {
		m.anomaly(AnomalyUnclassifiedPayload, n, err.Error())
	}
	return p
}
