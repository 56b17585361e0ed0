package xmltree

import (
	"errors"
	"strings"
	"testing"

	"github.com/antchfx/xmlquery"
)

type xmlNode = xmlquery.Node

const rdfDocument = `<?xml version="1.0" encoding="UTF-8"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns="http://purl.org/rss/1.0/">
  <channel rdf:about="http://example.com/" xml:base="http://example.com/blog/">
    <title>Example &amp; Co</title>
    <description>Hello&nbsp;world</description>
    <item xml:base="entries/"><title>One</title></item>
  </channel>
</rdf:RDF>`

func TestParseDocument(t *testing.T) {
	doc, err := Parse([]byte(rdfDocument))
	if err != nil {
		t.Fatal(err)
	}

	root := doc.Root()
	if Name(root) != "rdf" {
		t.Errorf("Expected root name 'rdf', got: %s", Name(root))
	}
	if doc.Encoding() != "UTF-8" {
		t.Errorf("Expected encoding 'UTF-8', got: %s", doc.Encoding())
	}
	if DefaultNamespace(root) != "http://purl.org/rss/1.0/" {
		t.Errorf("Expected default namespace of RSS 1.0, got: %s", DefaultNamespace(root))
	}
	if !HasNamespace(root, "http://www.w3.org/1999/02/22-rdf-syntax-ns#") {
		t.Error("Expected root to declare the RDF namespace")
	}
	if !HasNamespace(root, "rdf") {
		t.Error("Expected root to declare the rdf prefix")
	}
	if HasNamespace(root, "http://purl.org/net/rss1.1#") {
		t.Error("Did not expect RSS 1.1 namespace")
	}
}

func TestParseInvalidDocument(t *testing.T) {
	if _, err := Parse([]byte("")); err == nil {
		t.Error("Expected error for empty input")
	}

	_, err := Parse([]byte("<?xml version=\"1.0\"?>"))
	if err == nil {
		t.Fatal("Expected error for document without root element")
	}
	if !errors.Is(err, ErrEmptyDocument) && !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestNodeHelpers(t *testing.T) {
	doc, err := Parse([]byte(rdfDocument))
	if err != nil {
		t.Fatal(err)
	}

	channel := findElement(doc, "channel")
	item := findElement(doc, "item")
	title := findElement(doc, "title")
	description := findElement(doc, "description")

	if Text(title) != "Example & Co" {
		t.Errorf("Expected decoded title 'Example & Co', got: %s", Text(title))
	}
	if Text(description) != "Hello\u00a0world" {
		t.Errorf("Expected HTML entity to decode, got: %q", Text(description))
	}
	if Attr(channel, "rdf:about") != "http://example.com/" {
		t.Errorf("Expected rdf:about attribute, got: %s", Attr(channel, "rdf:about"))
	}
	if !HasElementChildren(channel) {
		t.Error("Expected channel to have element children")
	}
	if HasElementChildren(title) {
		t.Error("Did not expect title to have element children")
	}
	if strings.TrimSpace(DirectText(channel)) != "" {
		t.Errorf("Expected channel direct text to be whitespace, got: %q", DirectText(channel))
	}
	if !strings.Contains(InnerXML(item), "<title>One</title>") {
		t.Errorf("Expected inner XML to contain title, got: %s", InnerXML(item))
	}

	chain := BaseChain(item)
	if len(chain) != 2 || chain[0] != "http://example.com/blog/" || chain[1] != "entries/" {
		t.Errorf("Expected base chain [http://example.com/blog/ entries/], got: %v", chain)
	}
}

func TestNilNodeHelpers(t *testing.T) {
	if Text(nil) != "" || Attr(nil, "x") != "" || Name(nil) != "" || InnerXML(nil) != "" {
		t.Error("Expected empty results for nil node")
	}
	if HasNamespace(nil, "x") || HasElementChildren(nil) {
		t.Error("Expected false for nil node")
	}
}

func findElement(doc *Document, name string) *xmlNode {
	var walk func(n *xmlNode) *xmlNode
	walk = func(n *xmlNode) *xmlNode {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Data == name {
				return child
			}
			if found := walk(child); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(doc.Root())
}
