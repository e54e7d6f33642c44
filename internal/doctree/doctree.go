package doctree

import "strings"

// DocTree is the rendered text structure of one document payload.
type DocTree struct {
	Title    string     // Document title (from markup or filename)
	Children []*DocNode // Top-level sections
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Title    string     // Section heading (empty for leaf text)
	Text     string     // Text content of this node (may be empty for container nodes)
	Page     int        // Source page (0 if N/A)
	Children []*DocNode // Subsections
}

// Walk visits every node depth first with its depth, starting at 1.
func (t *DocTree) Walk(fn func(n *DocNode, depth int)) {
	var walk func(nodes []*DocNode, depth int)
	walk = func(nodes []*DocNode, depth int) {
		for _, n := range nodes {
			fn(n, depth)
			walk(n.Children, depth+1)
		}
	}
	walk(t.Children, 1)
}

// PlainText returns headings and text in reading order, separated by blank lines.
func (t *DocTree) PlainText() string {
	var parts []string
	t.Walk(func(n *DocNode, _ int) {
		if n.Title != "" {
			parts = append(parts, n.Title)
		}
		if n.Text != "" {
			parts = append(parts, n.Text)
		}
	})
	return strings.Join(parts, "\n\n")
}

// Pages returns the highest page number seen, or 0.
func (t *DocTree) Pages() int {
	pages := 0
	t.Walk(func(n *DocNode, _ int) {
		pages = max(pages, n.Page)
	})
	return pages
}
