package extractor

import (
	"strings"

	"golang.org/x/net/html"
)

type CleanConfig struct {
	TagsToRemove  []string
	AttrsToRemove []string
	MaxInputSize  int
}

// DefaultCleanConfig keeps aria-* and data-* attributes: labels and
// automation ids live there on most application portals.
var DefaultCleanConfig = CleanConfig{
	TagsToRemove: []string{
		"script", "style", "noscript", "svg", "iframe",
		"link", "meta", "head", "title", "template",
	},
	AttrsToRemove: []string{
		"style", "srcset", "sizes", "loading", "decoding", "fetchpriority", "tabindex",
	},
	MaxInputSize: 2_000_000,
}

// Sanitize parses a snapshot fragment and strips everything the extractor
// never reads. The result is a parsed tree rooted at <body>.
func Sanitize(rawHTML string, cfg *CleanConfig) (*html.Node, error) {
	if cfg == nil {
		cfg = &DefaultCleanConfig
	}
	if cfg.MaxInputSize > 0 && len(rawHTML) > cfg.MaxInputSize {
		rawHTML = rawHTML[:cfg.MaxInputSize]
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}

	body := findBodyNode(doc)
	if body == nil {
		return doc, nil
	}

	cleanNode(body, cfg)
	return body, nil
}

func findBodyNode(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBodyNode(c); b != nil {
			return b
		}
	}
	return nil
}

func cleanNode(n *html.Node, cfg *CleanConfig) {
	if n.Type == html.CommentNode {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		return
	}
	if n.Type != html.ElementNode {
		return
	}

	if isOneOf(n.Data, cfg.TagsToRemove...) {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		return
	}

	n.Attr = filterAttributes(n.Attr, cfg)

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		cleanNode(c, cfg)
		c = next
	}
}

func filterAttributes(attrs []html.Attribute, cfg *CleanConfig) []html.Attribute {
	kept := attrs[:0]
	for _, attr := range attrs {
		if isOneOf(attr.Key, cfg.AttrsToRemove...) || strings.HasPrefix(attr.Key, "on") {
			continue
		}
		kept = append(kept, attr)
	}
	return kept
}

func isOneOf(s string, candidates ...string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}
