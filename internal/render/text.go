package render

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/ncparse/internal/doctree"
)

// TextRenderer handles plain text bodies. Legacy ASCII filings mark page
// breaks with a <PAGE> line and lay out tables with <TABLE>, <CAPTION>, <S>
// and <C> marker lines; page breaks advance the page number and the table
// markers are dropped.
type TextRenderer struct{}

func (p *TextRenderer) Render(r io.Reader, name string) (*doctree.DocTree, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	type paragraph struct {
		text string
		page int
	}
	var paragraphs []paragraph
	var current strings.Builder
	page := 0

	flush := func() {
		if current.Len() > 0 {
			paragraphs = append(paragraphs, paragraph{text: current.String(), page: page})
			current.Reset()
		}
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		switch marker := layoutMarker(line); {
		case marker == "PAGE":
			flush()
			if page == 0 {
				page = 1
			}
			page++
			continue
		case marker != "":
			continue
		}
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	tree := &doctree.DocTree{
		Title: titleFrom(name),
	}

	// Each paragraph becomes a child node.
	for _, para := range paragraphs {
		node := &doctree.DocNode{Text: para.text}
		if page > 0 {
			node.Page = max(para.page, 1)
		}
		tree.Children = append(tree.Children, node)
	}

	return tree, nil
}

// layoutMarker returns the first upper-cased tag name when line holds only
// legacy layout markers, or "".
func layoutMarker(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	for _, f := range fields {
		if markerTag(f) == "" {
			return ""
		}
	}
	return markerTag(fields[0])
}

func markerTag(s string) string {
	if len(s) < 3 || s[0] != '<' || s[len(s)-1] != '>' {
		return ""
	}
	tag := strings.ToUpper(strings.TrimPrefix(s[1:len(s)-1], "/"))
	switch tag {
	case "PAGE", "TABLE", "CAPTION", "S", "C", "FN":
		return tag
	}
	return ""
}
