package layout

import (
	"strings"

	"github.com/goliatone/go-cvbuilder/cv"
)

// NodeKind names a visual tree element.
type NodeKind string

const (
	KindDocument  NodeKind = "document"
	KindHeader    NodeKind = "header"
	KindBody      NodeKind = "body"
	KindRegion    NodeKind = "region"
	KindSection   NodeKind = "section"
	KindHeading   NodeKind = "heading"
	KindEntry     NodeKind = "entry"
	KindTitle     NodeKind = "title"
	KindSubtitle  NodeKind = "subtitle"
	KindDate      NodeKind = "date"
	KindMeta      NodeKind = "meta"
	KindParagraph NodeKind = "paragraph"
	KindLine      NodeKind = "line"
	KindList      NodeKind = "list"
	KindItem      NodeKind = "item"
	KindLink      NodeKind = "link"
)

// Node is a renderer-neutral visual tree element.
type Node struct {
	Kind     NodeKind       `json:"kind"`
	Class    string         `json:"class,omitempty"`
	Text     string         `json:"text,omitempty"`
	Href     string         `json:"href,omitempty"`
	Section  cv.SectionType `json:"section,omitempty"`
	Children []Node         `json:"children,omitempty"`
}

func (n Node) with(children ...Node) Node {
	n.Children = append(n.Children, children...)
	return n
}

// Walk visits n and its descendants depth first. Returning false skips
// the children of the visited node.
func (n Node) Walk(fn func(Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// FindAll returns every descendant of the given kind, in document order.
func (n Node) FindAll(kind NodeKind) []Node {
	var out []Node
	n.Walk(func(node Node) bool {
		if node.Kind == kind {
			out = append(out, node)
		}
		return true
	})
	return out
}

// Sections returns the rendered section types in document order.
func (n Node) Sections() []cv.SectionType {
	var out []cv.SectionType
	for _, node := range n.FindAll(KindSection) {
		out = append(out, node.Section)
	}
	return out
}

// FindSection returns the rendered section node of the given type.
func (n Node) FindSection(typ cv.SectionType) (Node, bool) {
	for _, node := range n.FindAll(KindSection) {
		if node.Section == typ {
			return node, true
		}
	}
	return Node{}, false
}

// PlainText joins all text content, one node per line.
func (n Node) PlainText() string {
	var lines []string
	n.Walk(func(node Node) bool {
		if node.Text != "" {
			lines = append(lines, node.Text)
		}
		return true
	})
	return strings.Join(lines, "\n")
}
