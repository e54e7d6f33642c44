package render

import (
	"strings"

	"github.com/blevesearch/segment"
	"github.com/dgallion1/ncparse/internal/doctree"
)

// Stats summarizes a rendered document.
type Stats struct {
	Words    int `json:"words"`
	Numbers  int `json:"numbers"`
	Sections int `json:"sections"`
	Pages    int `json:"pages,omitempty"`
}

// Measure counts Unicode word segments (UAX #29) and numeric tokens over the
// tree's plain text, plus titled sections and pages.
func Measure(tree *doctree.DocTree) (Stats, error) {
	s := Stats{Pages: tree.Pages()}
	tree.Walk(func(n *doctree.DocNode, _ int) {
		if n.Title != "" {
			s.Sections++
		}
	})

	seg := segment.NewWordSegmenter(strings.NewReader(tree.PlainText()))
	for seg.Segment() {
		switch seg.Type() {
		case segment.None:
		case segment.Number:
			s.Numbers++
		default:
			s.Words++
		}
	}
	return s, seg.Err()
}
