package indieauth

import (
	"bytes"
	"net/http"
	"net/url"
	"strings"

	"github.com/peterhellberg/link"
	"golang.org/x/net/html"
)

// parseRels extracts the link relations advertised by a response, from its
// Link headers and from <link> elements in its body. Relation names are
// lowercased and values resolved against base. Header links come before
// document links, so they win when only the first value of a rel is kept.
func parseRels(base *url.URL, body []byte, header http.Header) map[string][]string {
	rels := make(map[string][]string)

	add := func(rel, href string) {
		rel = strings.ToLower(rel)
		u, err := base.Parse(href)
		if err != nil {
			return
		}
		rels[rel] = append(rels[rel], u.String())
	}

	for _, value := range header.Values("Link") {
		for _, l := range link.Parse(value) {
			for _, rel := range strings.Fields(l.Rel) {
				add(rel, l.URI)
			}
		}
	}

	if root, err := html.Parse(bytes.NewReader(body)); err == nil {
		for _, node := range searchAll(root, isLink) {
			for _, rel := range strings.Fields(getAttr(node, "rel")) {
				add(rel, getAttr(node, "href"))
			}
		}
	}

	return rels
}

func searchAll(node *html.Node, pred func(*html.Node) bool) (results []*html.Node) {
	if pred(node) {
		results = append(results, node)
		return
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		result := searchAll(child, pred)
		if len(result) > 0 {
			results = append(results, result...)
		}
	}

	return
}

func isLink(node *html.Node) bool {
	return node.Type == html.ElementNode && node.Data == "link"
}

func getAttr(node *html.Node, attrName string) string {
	for _, attr := range node.Attr {
		if attr.Key == attrName {
			return attr.Val
		}
	}

	return ""
}
