package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/dgallion1/ncparse/internal/doctree"
)

// XMLRenderer handles XML and XBRL bodies. Each element with element
// children becomes a section; leaf elements are listed as "name: value"
// lines of their parent. Bodies that are not well-formed XML fall back to
// the text renderer.
type XMLRenderer struct{}

func (p *XMLRenderer) Render(r io.Reader, name string) (*doctree.DocTree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read xml: %w", err)
	}

	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return (&TextRenderer{}).Render(bytes.NewReader(data), name)
	}

	tree := &doctree.DocTree{
		Title: titleFrom(name),
	}
	root := firstElement(doc)
	if root == nil {
		return tree, nil
	}
	node := renderElement(root)
	if node.Text == "" && len(node.Children) > 0 {
		tree.Children = node.Children
	} else {
		tree.Children = []*doctree.DocNode{node}
	}
	return tree, nil
}

func firstElement(n *xmlquery.Node) *xmlquery.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return c
		}
	}
	return nil
}

func renderElement(el *xmlquery.Node) *doctree.DocNode {
	node := &doctree.DocNode{Title: qualifiedName(el)}
	var lines []string
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case xmlquery.ElementNode:
			if firstElement(c) != nil {
				node.Children = append(node.Children, renderElement(c))
				continue
			}
			if v := collapseSpaces(c.InnerText()); v != "" {
				lines = append(lines, qualifiedName(c)+": "+strings.ReplaceAll(v, "\n", " "))
			}
		case xmlquery.TextNode, xmlquery.CharDataNode:
			if v := collapseSpaces(c.Data); v != "" {
				lines = append(lines, v)
			}
		}
	}
	node.Text = strings.Join(lines, "\n")
	return node
}

func qualifiedName(n *xmlquery.Node) string {
	if n.Prefix != "" {
		return n.Prefix + ":" + n.Data
	}
	return n.Data
}
