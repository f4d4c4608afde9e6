package markup

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// DefaultHeadingTags is the tracked heading priority order.
var DefaultHeadingTags = []string{"h1", "h2", "h3"}

// Document is an immutable, document-order flattening of a parsed HTML page.
// Nodes are stored in pre-order; each element node records its subtree span,
// so "preceding siblings of X under parent P" is exactly the index range
// (P, X.start). Heading positions are kept per level for binary search, which
// makes heading-path computation a table lookup instead of a live tree walk.
type Document struct {
	title       string
	headingTags []string
	nodes       []node
	headings    []int            // node indexes of tracked headings, document order
	byLevel     map[string][]int // tracked heading node indexes per tag, ascending
}

type node struct {
	parent int // -1 for the body root
	end    int // one past the last descendant index
	tag    string
	text   string // set for text nodes only, trimmed
}

// Heading is a tracked heading element located in the document.
type Heading struct {
	Node  int
	Level string
	Title string
}

// Parse flattens the page body with the default H1-H3 heading priority.
func Parse(raw string) (*Document, error) {
	return ParseWithHeadingTags(raw, DefaultHeadingTags)
}

// ParseWithHeadingTags flattens the page body tracking the given heading
// tags, in priority order. Script and style subtrees are dropped.
func ParseWithHeadingTags(raw string, headingTags []string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	if len(headingTags) == 0 {
		headingTags = DefaultHeadingTags
	}

	doc := &Document{
		title:       findTitle(root),
		headingTags: headingTags,
		byLevel:     make(map[string][]int, len(headingTags)),
	}

	body := findElement(root, "body")
	if body == nil {
		body = root
	}
	doc.flatten(body, -1)

	for _, idx := range doc.headings {
		doc.byLevel[doc.nodes[idx].tag] = append(doc.byLevel[doc.nodes[idx].tag], idx)
	}
	return doc, nil
}

func (d *Document) flatten(n *html.Node, parent int) int {
	idx := len(d.nodes)
	switch n.Type {
	case html.TextNode:
		text := strings.TrimSpace(n.Data)
		if text == "" {
			return -1
		}
		d.nodes = append(d.nodes, node{parent: parent, end: idx + 1, text: text})
		return idx
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" {
			return -1
		}
		d.nodes = append(d.nodes, node{parent: parent, tag: n.Data})
		if d.isHeadingTag(n.Data) {
			d.headings = append(d.headings, idx)
		}
	case html.DocumentNode:
		// Flatten children of the synthetic root directly under parent.
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			d.flatten(c, parent)
		}
		return -1
	default:
		return -1
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.flatten(c, idx)
	}
	d.nodes[idx].end = len(d.nodes)
	return idx
}

func (d *Document) isHeadingTag(tag string) bool {
	for _, t := range d.headingTags {
		if t == tag {
			return true
		}
	}
	return false
}

// Title returns the page <title> text, or empty when absent.
func (d *Document) Title() string {
	return d.title
}

// Headings lists the tracked headings in document order.
func (d *Document) Headings() []Heading {
	out := make([]Heading, 0, len(d.headings))
	for _, idx := range d.headings {
		out = append(out, Heading{
			Node:  idx,
			Level: d.nodes[idx].tag,
			Title: d.textOf(idx),
		})
	}
	return out
}

// HeadingPath computes the breadcrumb for the node at idx: walking up through
// ancestors, at each step the nearest tracked heading among the preceding
// siblings is collected, trying heading levels in priority order; empty-text
// headings are skipped. The collected titles are reversed and joined with
// " > ". Returns "" when no heading precedes the node.
func (d *Document) HeadingPath(idx int) string {
	if idx < 0 || idx >= len(d.nodes) {
		return ""
	}

	var parts []string
	cur := idx
	for {
		parent := d.nodes[cur].parent
		if parent < 0 {
			break
		}
		for _, level := range d.headingTags {
			if h := d.lastHeadingBefore(level, parent+1, cur); h >= 0 {
				parts = append(parts, d.textOf(h))
				break
			}
		}
		cur = parent
	}

	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " > ")
}

// lastHeadingBefore returns the last non-empty heading of the given level
// within [lo, hi), or -1.
func (d *Document) lastHeadingBefore(level string, lo, hi int) int {
	positions := d.byLevel[level]
	i := sort.SearchInts(positions, hi) - 1
	for ; i >= 0; i-- {
		idx := positions[i]
		if idx < lo {
			return -1
		}
		if d.textOf(idx) != "" {
			return idx
		}
	}
	return -1
}

func (d *Document) textOf(idx int) string {
	n := d.nodes[idx]
	if n.tag == "" {
		return n.text
	}
	var b strings.Builder
	for i := idx + 1; i < n.end; i++ {
		if d.nodes[i].tag != "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(d.nodes[i].text)
	}
	return b.String()
}

func findTitle(root *html.Node) string {
	titleNode := findElement(root, "title")
	if titleNode == nil {
		return ""
	}
	var parts []string
	for c := titleNode.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			if t := strings.TrimSpace(c.Data); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, " ")
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
