// Package render projects document payloads into a plain-text section tree.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/ncparse/internal/doctree"
	"github.com/dgallion1/ncparse/internal/filing"
	"github.com/dgallion1/ncparse/internal/payload"
)

// Renderer converts a document body into a DocTree.
type Renderer interface {
	Render(r io.Reader, name string) (*doctree.DocTree, error)
}

// ErrUnsupported is returned for payloads with no text projection, such as
// images or unclassified bodies.
var ErrUnsupported = errors.New("unsupported payload")

// Options tunes rendering.
type Options struct {
	// FallbackPdftotext shells out to pdftotext when the Go PDF reader fails.
	FallbackPdftotext bool
}

// ForPayload returns the renderer for a payload. name is the declared
// filename and is used for extension hints.
func ForPayload(p payload.Payload, name string, opts Options) (Renderer, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch p.Kind {
	case payload.OpaqueMarkup:
		return &XMLRenderer{}, nil
	case payload.Text:
		switch {
		case ext == ".htm" || ext == ".html" || looksLikeHTML(p.Text):
			return &HTMLRenderer{}, nil
		case ext == ".xml" || strings.HasPrefix(strings.TrimSpace(p.Text), "<?xml"):
			return &XMLRenderer{}, nil
		default:
			return &TextRenderer{}, nil
		}
	case payload.Binary:
		if p.Name != "" {
			ext = strings.ToLower(filepath.Ext(p.Name))
		}
		switch ext {
		case ".pdf":
			return &PDFRenderer{FallbackPdftotext: opts.FallbackPdftotext}, nil
		case ".docx":
			return &DOCXRenderer{}, nil
		case ".htm", ".html":
			return &HTMLRenderer{}, nil
		case ".txt":
			return &TextRenderer{}, nil
		}
		return nil, fmt.Errorf("%w: %s attachment %q", ErrUnsupported, p.Encoding, name)
	default:
		return nil, fmt.Errorf("%w: %s payload", ErrUnsupported, p.Kind)
	}
}

// Document renders one parsed document.
func Document(d filing.Document, opts Options) (*doctree.DocTree, error) {
	name := d.Filename
	if name == "" {
		name = d.Payload.Name
	}
	r, err := ForPayload(d.Payload, name, opts)
	if err != nil {
		return nil, err
	}

	body := d.Payload.Data
	if d.Payload.Kind == payload.Text || d.Payload.Kind == payload.OpaqueMarkup {
		text, err := d.Payload.UTF8()
		if err != nil {
			return nil, err
		}
		body = []byte(text)
	}

	tree, err := r.Render(bytes.NewReader(body), name)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	if tree.Title == "" {
		tree.Title = d.Description
	}
	return tree, nil
}

func looksLikeHTML(text string) bool {
	head := strings.ToLower(strings.TrimSpace(text[:min(len(text), 512)]))
	return strings.HasPrefix(head, "<html") || strings.HasPrefix(head, "<!doctype html") ||
		strings.Contains(head, "<html")
}

func titleFrom(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
