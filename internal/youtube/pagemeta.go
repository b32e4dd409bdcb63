package youtube

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// parsePageMeta reads the title from <meta name="title">, falling back to
// og:title, and the channel from the author block's <link itemprop="name">.
// Unparsable pages yield empty metadata.
func parsePageMeta(page []byte) Metadata {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return Metadata{}
	}
	return Metadata{
		Title: firstContent(doc,
			`meta[name="title"]`,
			`meta[property="og:title"]`,
		),
		Channel: firstContent(doc,
			`span[itemprop="author"] link[itemprop="name"]`,
			`link[itemprop="name"]`,
		),
	}
}

// firstContent returns the first non-blank content attribute among the
// selectors, tried in order.
func firstContent(doc *goquery.Document, selectors ...string) string {
	for _, selector := range selectors {
		var found string
		doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			found = strings.TrimSpace(sel.AttrOr("content", ""))
			return found == ""
		})
		if found != "" {
			return found
		}
	}
	return ""
}
