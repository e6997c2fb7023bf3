package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pricelens/pricewatch"
)

// CleanHTML removes boilerplate markup from raw HTML and returns the page
// title and the body's cleaned HTML. The browser fetch strategy feeds the
// cleaned HTML to markdown conversion instead of the line walker, since
// rendered pages keep their pricing tables intact.
func CleanHTML(rawHTML string) (title, cleaned string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", "", pricewatch.Errorf(pricewatch.EINVALID, "failed to parse HTML: %v", err)
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())

	for _, sel := range boilerplateSelectors {
		doc.Find(sel).Remove()
	}

	body := doc.Find("body").First()
	if body.Length() == 0 {
		cleaned, err = doc.Html()
	} else {
		cleaned, err = body.Html()
	}
	if err != nil {
		return "", "", pricewatch.Errorf(pricewatch.EINTERNAL, "rendering cleaned HTML: %v", err)
	}

	return title, cleaned, nil
}
