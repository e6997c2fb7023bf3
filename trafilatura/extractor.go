// Package trafilatura provides main-content extraction as a fallback for
// pages where selector-based extraction yields too little signal.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/markusmobius/go-trafilatura"
	"github.com/pricelens/pricewatch"
	"golang.org/x/net/html"
)

// Extractor wraps go-trafilatura to extract main textual content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractText processes raw HTML and returns the main content as plain
// text, one block per line.
func (e *Extractor) ExtractText(rawHTML string) (string, error) {
	if rawHTML == "" {
		return "", pricewatch.Errorf(pricewatch.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return "", err
	}

	if result.ContentNode == nil {
		return "", nil
	}

	rendered, err := renderNode(result.ContentNode)
	if err != nil {
		return "", err
	}
	return textFromHTML(rendered), nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// textFromHTML flattens rendered content HTML into text lines.
func textFromHTML(rendered string) string {
	node, err := html.Parse(strings.NewReader(rendered))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				sb.WriteString(t)
				sb.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return strings.TrimSpace(sb.String())
}
