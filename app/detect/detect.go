package detect

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/lysyi3m/rss-canon/app/xmlns"
	"github.com/lysyi3m/rss-canon/app/xmltree"
	"github.com/mmcdole/gofeed"
)

const (
	TypeAtom = "atom"
	TypeRSS  = "rss"
	TypeCDF  = "cdf"
)

const (
	DataTypeXML  = "xml"
	DataTypeJSON = "json"
)

// FeedType classifies a document by its root element. The empty string
// means the dialect is unknown.
func FeedType(root *xmlquery.Node) string {
	if root == nil {
		return ""
	}

	name := xmltree.Name(root)
	switch {
	case name == "feed":
		return TypeAtom
	case strings.HasPrefix(name, "rdf"), name == "rss":
		return TypeRSS
	case name == "channel":
		if xmltree.HasNamespace(root, xmlns.RSS11) {
			return TypeRSS
		}
		return TypeCDF
	}

	return ""
}

// FeedVersion resolves the numeric dialect version. Zero means unknown.
func FeedVersion(root *xmlquery.Node, feedType string) float64 {
	if root == nil {
		return 0
	}

	defaultNamespace := xmltree.DefaultNamespace(root)
	stated := statedVersion(root)

	switch feedType {
	case TypeAtom:
		switch defaultNamespace {
		case xmlns.Atom10:
			return 1.0
		case xmlns.Atom03:
			return 0.3
		}
		return stated
	case TypeRSS:
		switch defaultNamespace {
		case xmlns.RSS09:
			return 0.9
		case xmlns.RSS10:
			return 1.0
		case xmlns.RSS11:
			return 1.1
		}
		if stated == 2.1 || stated == 2.01 {
			return 2.0
		}
		return stated
	case TypeCDF:
		return 0.4
	}

	return 0
}

func statedVersion(root *xmlquery.Node) float64 {
	raw := strings.TrimSpace(xmltree.Attr(root, "version"))
	if raw == "" {
		return 0
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v
	}
	// Lenient leading-number parse, e.g. "2.0 beta"
	end := 0
	for end < len(raw) && (raw[end] == '.' || (raw[end] >= '0' && raw[end] <= '9')) {
		end++
	}
	for end > 0 {
		if v, err := strconv.ParseFloat(raw[:end], 64); err == nil {
			return v
		}
		end--
	}
	return 0
}

// DataType sniffs raw feed bytes. Anything that is not JSON Feed is
// treated as XML.
func DataType(data []byte) string {
	if gofeed.DetectFeedType(bytes.NewReader(data)) == gofeed.FeedTypeJSON {
		return DataTypeJSON
	}
	return DataTypeXML
}
