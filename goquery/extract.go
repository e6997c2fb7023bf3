// Package goquery extracts normalized pricing-page content from HTML using
// CSS selectors. It strips non-content markup and walks content-bearing
// elements into a markdown-like text representation.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pricelens/pricewatch"
	"golang.org/x/net/html"
)

// boilerplateSelectors match markup that never carries pricing signal.
var boilerplateSelectors = []string{
	"script", "style", "noscript", "iframe", "svg",
	"nav", "header nav", "footer",
	"[class*='cookie']", "[id*='cookie']",
	"[class*='consent']", "[id*='consent']",
	"[aria-hidden='true']",
	"[style*='display:none']", "[style*='display: none']",
	"[style*='visibility:hidden']", "[style*='visibility: hidden']",
}

// pricingSelectors match elements that commonly carry pricing signal even
// when they are not headings, paragraphs, list items, or table rows.
var pricingSelectors = []string{
	"[class*='pricing']", "[class*='price']", "[class*='plan']",
	"[class*='tier']", "[class*='billing']",
	"[data-plan]", "[data-price]", "[data-tier]",
}

// Result holds the extracted content from a pricing page.
type Result struct {
	// Title is the page title.
	Title string

	// Text is the markdown-like content: headings prefixed by #s,
	// list items by "-", table rows joined with " | ", deduplicated
	// line by line.
	Text string
}

// Extract parses raw HTML, removes boilerplate, and walks content-bearing
// elements into a markdown-like representation. Identical lines are kept
// once, in first-occurrence order.
func Extract(rawHTML string) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, pricewatch.Errorf(pricewatch.EINVALID, "failed to parse HTML: %v", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	for _, sel := range boilerplateSelectors {
		doc.Find(sel).Remove()
	}

	seen := make(map[string]bool)
	var lines []string
	appendLine := func(line string) {
		line = collapseSpace(line)
		if line == "" || seen[line] {
			return
		}
		seen[line] = true
		lines = append(lines, line)
	}

	doc.Find("h1, h2, h3, h4, h5, h6, p, li, tr").Each(func(_ int, sel *goquery.Selection) {
		appendLine(formatSelection(sel))
	})

	for _, selector := range pricingSelectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			// Leaf-ish nodes only; containers repeat their children's text.
			if sel.Children().Length() > 6 {
				return
			}
			appendLine(sel.Text())
		})
	}

	return &Result{
		Title: title,
		Text:  strings.Join(lines, "\n"),
	}, nil
}

// formatSelection renders one element as a markdown-like line.
func formatSelection(sel *goquery.Selection) string {
	text := sel.Text()
	node := sel.Get(0)
	if node == nil || node.Type != html.ElementNode {
		return text
	}

	switch node.Data {
	case "h1":
		return "# " + text
	case "h2":
		return "## " + text
	case "h3":
		return "### " + text
	case "h4", "h5", "h6":
		return "#### " + text
	case "li":
		return "- " + text
	case "tr":
		var cells []string
		sel.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			if t := collapseSpace(cell.Text()); t != "" {
				cells = append(cells, t)
			}
		})
		return strings.Join(cells, " | ")
	default:
		return text
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
