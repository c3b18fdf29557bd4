package extract

import (
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// minHeuristicLen is the point below which the container heuristic is judged
// to have missed the page's content and readability takes over.
const minHeuristicLen = 80

// skipped elements carry no retrievable prose.
var skippedTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "iframe": true,
	"svg": true, "meta": true, "link": true, "ins": true, "ad": true,
	"img": true, "video": true, "audio": true, "canvas": true,
}

// blockTags introduce line boundaries in the structured text output.
var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "main": true,
	"header": true, "footer": true, "aside": true, "blockquote": true,
	"pre": true, "table": true, "tr": true, "ul": true, "ol": true,
	"figure": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true,
}

// Text converts raw markup into structured plain text: non-content elements
// are dropped, a main-content container is selected heuristically, headings
// and list items keep their line boundaries, and blank lines are collapsed.
// Returns the empty string when nothing could be extracted.
func Text(rawHTML, pageURL string) string {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return readabilityText(rawHTML, pageURL)
	}

	container := selectContainer(doc)
	var b strings.Builder
	render(container, &b)
	text := collapseLines(b.String())
	if len(text) >= minHeuristicLen {
		return text
	}

	if fallback := readabilityText(rawHTML, pageURL); len(fallback) > len(text) {
		return fallback
	}
	return text
}

// selectContainer prefers a semantic main/article region, then a
// conventional content container by id or class, then the body.
func selectContainer(doc *html.Node) *html.Node {
	for _, pick := range []func(*html.Node) bool{
		func(n *html.Node) bool { return n.Data == "main" },
		func(n *html.Node) bool { return n.Data == "article" },
		func(n *html.Node) bool { return n.Data == "div" && attr(n, "id") == "content" },
		func(n *html.Node) bool { return n.Data == "div" && hasClass(n, "content") },
		func(n *html.Node) bool { return n.Data == "body" },
	} {
		if found := findElement(doc, pick); found != nil {
			return found
		}
	}
	return doc
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func render(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(collapseSpace(n.Data))
		return
	case html.ElementNode:
		if skippedTags[n.Data] {
			return
		}
		switch {
		case n.Data == "br":
			b.WriteString("\n")
			return
		case n.Data == "li":
			b.WriteString("\n- ")
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				render(c, b)
			}
			b.WriteString("\n")
			return
		case blockTags[n.Data]:
			b.WriteString("\n")
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				render(c, b)
			}
			b.WriteString("\n")
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		render(c, b)
	}
}

// collapseSpace squeezes runs of whitespace into single spaces while keeping
// a leading/trailing space so inline element boundaries stay separated.
func collapseSpace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	out := strings.Join(fields, " ")
	if r := s[0]; r == ' ' || r == '\t' || r == '\n' || r == '\r' {
		out = " " + out
	}
	if r := s[len(s)-1]; r == ' ' || r == '\t' || r == '\n' || r == '\r' {
		out = out + " "
	}
	return out
}

// collapseLines trims every line and drops whitespace-only lines.
func collapseLines(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func readabilityText(rawHTML, pageURL string) string {
	article, err := readability.FromReader(strings.NewReader(rawHTML), mustParseURL(pageURL))
	if err != nil {
		return ""
	}
	return collapseLines(article.TextContent)
}

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return &url.URL{}
	}
	return u
}
