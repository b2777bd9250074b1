package htmlutil

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

type Anchor struct {
	Name string
	Href string
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText collapses whitespace runs and strips non-printable runes
// out of the visible text of a node.
func CleanText(s string) string {
	s = removeNonPrintable(s)
	s = strings.Trim(s, " \t\n")
	return innerWhitespace.ReplaceAllString(s, " ")
}

func GetAnchors(sel *goquery.Selection) []Anchor {
	anchors := []Anchor{}
	for _, n := range sel.Nodes {
		href := ""
		for _, a := range n.Attr {
			if a.Key == "href" {
				href = a.Val
				break
			}
		}

		link, err := url.Parse(href)
		if err != nil {
			continue
		}

		anchors = append(anchors, Anchor{
			Name: CleanText(GetText(n)),
			Href: link.String(),
		})
	}

	return anchors
}

// JoinedAnchorText returns the concatenated visible text of every
// descendant anchor of the selection.
func JoinedAnchorText(sel *goquery.Selection) string {
	var out strings.Builder
	sel.Find("a").Each(func(_ int, a *goquery.Selection) {
		out.WriteString(CleanText(a.Text()))
	})
	return out.String()
}

// QueryParam pulls a single query parameter out of a raw href,
// returning "" when the href does not parse or the key is absent.
// Key matching is case-insensitive since scraped markup is not
// consistent about casing.
func QueryParam(href, key string) string {
	link, err := url.Parse(href)
	if err != nil {
		return ""
	}
	for k, vals := range link.Query() {
		if strings.EqualFold(k, key) && len(vals) > 0 {
			return vals[0]
		}
	}
	return ""
}

// HasQueryParam reports whether the raw href carries the query key,
// matched case-insensitively.
func HasQueryParam(href, key string) bool {
	lower := strings.ToLower(href)
	return strings.Contains(lower, strings.ToLower(key)+"=")
}
