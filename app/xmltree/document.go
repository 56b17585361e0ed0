package xmltree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	"golang.org/x/net/html/charset"
)

var ErrEmptyDocument = errors.New("document has no root element")

// Document is a parsed feed document. It is never mutated after Parse.
type Document struct {
	node *xmlquery.Node
	root *xmlquery.Node
}

// Parse builds a document tree. Decoding is lenient: HTML entities are
// accepted and undeclared prefixes do not abort parsing.
func Parse(data []byte) (*Document, error) {
	node, err := xmlquery.ParseWithOptions(bytes.NewReader(data), xmlquery.ParserOptions{
		Decoder: &xmlquery.DecoderOptions{
			Strict:        false,
			Entity:        xml.HTMLEntity,
			CharsetReader: charset.NewReaderLabel,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	doc := &Document{node: node}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			doc.root = child
			break
		}
	}
	if doc.root == nil {
		return nil, ErrEmptyDocument
	}

	return doc, nil
}

func (d *Document) Root() *xmlquery.Node {
	return d.root
}

// Encoding returns the encoding named by the XML declaration, or "".
func (d *Document) Encoding() string {
	for child := d.node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.DeclarationNode && child.Data == "xml" {
			return strings.TrimSpace(child.SelectAttr("encoding"))
		}
	}
	return ""
}

// Attr returns the value of the named attribute. Prefixed names use the
// prefix as written in the document (e.g. "xml:base", "rdf:about").
func Attr(n *xmlquery.Node, name string) string {
	if n == nil {
		return ""
	}
	return n.SelectAttr(name)
}

// Name returns the lowercased local name of an element.
func Name(n *xmlquery.Node) string {
	if n == nil {
		return ""
	}
	return strings.ToLower(n.Data)
}

func Text(n *xmlquery.Node) string {
	if n == nil {
		return ""
	}
	return n.InnerText()
}

// InnerXML serializes the children of n.
func InnerXML(n *xmlquery.Node) string {
	if n == nil {
		return ""
	}
	return n.OutputXML(false)
}

func HasElementChildren(n *xmlquery.Node) bool {
	if n == nil {
		return false
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return true
		}
	}
	return false
}

// DirectText concatenates the text children of n, ignoring nested elements.
func DirectText(n *xmlquery.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.TextNode || child.Type == xmlquery.CharDataNode {
			b.WriteString(child.Data)
		}
	}
	return b.String()
}

// DefaultNamespace returns the URI bound by a bare xmlns attribute on n.
func DefaultNamespace(n *xmlquery.Node) string {
	if n == nil {
		return ""
	}
	for _, attr := range n.Attr {
		if attr.Name.Space == "" && attr.Name.Local == "xmlns" {
			return attr.Value
		}
	}
	return ""
}

// HasNamespace reports whether n is in, or declares, the given namespace.
// The argument may be a URI or a prefix.
func HasNamespace(n *xmlquery.Node, namespace string) bool {
	if n == nil || namespace == "" {
		return false
	}
	if n.NamespaceURI == namespace {
		return true
	}
	for _, attr := range n.Attr {
		switch {
		case attr.Name.Space == "" && attr.Name.Local == "xmlns":
			if attr.Value == namespace {
				return true
			}
		case attr.Name.Space == "xmlns":
			if attr.Value == namespace || attr.Name.Local == namespace {
				return true
			}
		}
	}
	return false
}

// BaseChain returns the xml:base values in scope for n, outermost first.
func BaseChain(n *xmlquery.Node) []string {
	var chain []string
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type != xmlquery.ElementNode {
			continue
		}
		if base := strings.TrimSpace(cur.SelectAttr("xml:base")); base != "" {
			chain = append([]string{base}, chain...)
		}
	}
	return chain
}
