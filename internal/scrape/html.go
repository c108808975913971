package scrape

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// nodeText collects the text content of an HTML node tree, whitespace
// collapsed. Used where a selection's own Text() would drag in markup
// artifacts from nested elements.
func nodeText(n *html.Node) string {
	var b strings.Builder
	walkText(n, &b)
	return strings.Join(strings.Fields(b.String()), " ")
}

func walkText(n *html.Node, b *strings.Builder) {
	if n == nil {
		return
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteString(" ")
		return
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, b)
	}
}

// cleanText returns a selection's text with whitespace collapsed.
func cleanText(sel *goquery.Selection) string {
	if len(sel.Nodes) == 0 {
		return ""
	}
	return nodeText(sel.Nodes[0])
}

// firstAttr returns the named attribute of the first matching element.
func firstAttr(sel *goquery.Selection, name string) string {
	val, _ := sel.First().Attr(name)
	return strings.TrimSpace(val)
}

// parseRating reads the leading decimal number out of a rating fragment such
// as "4.5", "4.5 out of 5" or "Rated 4 out of 5 stars". ok=false when no
// number is present or the value falls outside [0,5].
func parseRating(s string) (float64, bool) {
	for _, field := range strings.Fields(strings.TrimSpace(s)) {
		v, err := strconv.ParseFloat(strings.TrimSuffix(field, "/5"), 64)
		if err != nil {
			continue
		}
		if v < 0 || v > 5 {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

// truncate caps a text field at max bytes, backing up to a rune boundary.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
