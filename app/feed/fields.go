package feed

// pipeline is the post-processing applied to a resolved value.
type pipeline int

const (
	processNone pipeline = iota
	processUnescape
	processUnescapeSanitize
	processText // content normalization plus wrapper stripping; needs the node
	processHTMLToText
	processTimestamp
	processInteger
	processBoolean
	processURL
)

type rootSet int

const (
	ownerRoots rootSet = iota
	ownerAndDocumentRoots
)

// fieldSpec declares where a field lives and how it is cleaned up. Paths
// are in priority order.
type fieldSpec struct {
	Paths   []string
	Roots   rootSet
	Process pipeline
}

var channelPaths = []string{"channel", "CHANNEL", "feedinfo", "news"}

var itemPaths = []string{
	"atom10:entry", "atom03:entry", "atom:entry", "entry", "item", "ITEM",
}

var linkPaths = []string{
	"atom10:link", "atom03:link", "atom:link", "link", "channelLink", "a", "url", "href",
}

var authorPaths = []string{
	"atom10:author", "atom03:author", "atom:author", "author", "managingEditor",
	"dc:author", "dc:creator",
}

var timePaths = []string{
	"atom10:updated/text()", "atom03:updated/text()", "atom:updated/text()", "updated/text()",
	"atom10:modified/text()", "atom03:modified/text()", "atom:modified/text()", "modified/text()",
	"time/text()", "lastBuildDate/text()",
	"atom10:issued/text()", "atom03:issued/text()", "atom:issued/text()", "issued/text()",
	"atom10:published/text()", "atom03:published/text()", "atom:published/text()", "published/text()",
	"dc:date/text()", "pubDate/text()", "date/text()",
}

var updatedPaths = []string{
	"atom10:updated/text()", "atom03:updated/text()", "atom:updated/text()", "updated/text()",
	"atom10:modified/text()", "atom03:modified/text()", "atom:modified/text()", "modified/text()",
	"lastBuildDate/text()",
}

var publishedPaths = []string{
	"atom10:published/text()", "atom03:published/text()", "atom:published/text()", "published/text()",
	"dc:date/text()", "pubDate/text()",
	"atom10:issued/text()", "atom03:issued/text()", "atom:issued/text()", "issued/text()",
}

var rightsPaths = []string{
	"atom10:rights", "atom03:rights", "atom:rights",
	"atom10:copyright", "atom03:copyright", "atom:copyright",
	"copyright", "copyrights", "dc:rights", "rights",
}

var categoryPaths = []string{"category", "dc:subject"}

var feedFields = map[string]fieldSpec{
	"title": {
		Paths:   []string{"atom10:title", "atom03:title", "atom:title", "title", "dc:title", "channelTitle", "TITLE"},
		Process: processText,
	},
	"subtitle": {
		Paths: []string{
			"atom10:subtitle", "subtitle", "atom03:tagline", "tagline", "description", "summary",
			"abstract", "ABSTRACT", "content:encoded", "encoded", "content", "xhtml:body", "body",
			"xhtml:div", "div", "p:payload", "payload", "channelDescription", "blurb", "info",
		},
		Process: processText,
	},
	"itunes_summary": {
		Paths:   []string{"itunes:summary/text()"},
		Roots:   ownerAndDocumentRoots,
		Process: processUnescapeSanitize,
	},
	"itunes_subtitle": {
		Paths:   []string{"itunes:subtitle/text()"},
		Roots:   ownerAndDocumentRoots,
		Process: processUnescapeSanitize,
	},
	"itunes_author": {
		Paths:   []string{"itunes:author/text()"},
		Process: processUnescape,
	},
	"media_text": {
		Paths:   []string{"media:text/text()", "mrss:text/text()"},
		Roots:   ownerAndDocumentRoots,
		Process: processUnescapeSanitize,
	},
	"time":      {Paths: timePaths, Process: processTimestamp},
	"updated":   {Paths: updatedPaths, Process: processTimestamp},
	"published": {Paths: publishedPaths, Process: processTimestamp},
	"guid": {
		Paths: []string{"atom10:id/text()", "atom03:id/text()", "atom:id/text()", "id/text()", "guid/text()"},
		Roots: ownerAndDocumentRoots,
	},
	"explicit": {
		Paths:   []string{"media:adult/text()", "mrss:adult/text()", "itunes:explicit/text()"},
		Process: processBoolean,
	},
	"rights":    {Paths: rightsPaths, Process: processText},
	"generator": {Paths: []string{"generator/text()"}, Process: processHTMLToText},
	"docs":      {Paths: []string{"docs/text()"}, Process: processURL},

	"syn_frequency": {Paths: []string{"syn:updateFrequency/text()"}},
	"syn_period":    {Paths: []string{"syn:updatePeriod/text()"}},
	"ttl":           {Paths: []string{"ttl/text()"}},
	"ttl_span":      {Paths: []string{"ttl/@span"}},
	"schedule_day":  {Paths: []string{"schedule/intervaltime/@day"}, Process: processInteger},
	"schedule_hour": {Paths: []string{"schedule/intervaltime/@hour"}, Process: processInteger},
	"schedule_min":  {Paths: []string{"schedule/intervaltime/@min"}, Process: processInteger},
	"schedule_sec":  {Paths: []string{"schedule/intervaltime/@sec"}, Process: processInteger},

	"language": {
		Paths: []string{"language/text()", "dc:language/text()", "@dc:language", "@xml:lang", "xml:lang/text()"},
	},
	"document_language": {Paths: []string{"@xml:lang", "xml:lang/text()"}},
	"about":             {Paths: []string{"@href", "@rdf:about", "@about"}},
}

var itemFields = map[string]fieldSpec{
	"guid": {
		Paths: []string{
			"atom10:id/@gr:original-id", "atom03:id/@gr:original-id", "atom:id/@gr:original-id",
			"id/@gr:original-id", "atom10:id/text()", "atom03:id/text()", "atom:id/text()",
			"id/text()", "guid/text()",
		},
	},
	"title": {
		Paths:   []string{"atom10:title", "atom03:title", "atom:title", "title", "dc:title", "headline"},
		Process: processText,
	},
	"content": {
		Paths: []string{
			"atom10:content", "atom03:content", "atom:content", "body/datacontent", "xhtml:body",
			"body", "xhtml:div", "div", "p:payload", "payload", "content:encoded", "content",
			"fullitem", "encoded", "description", "tagline", "subtitle", "atom10:summary",
			"atom03:summary", "atom:summary", "summary", "abstract", "blurb", "info",
		},
		Process: processText,
	},
	"summary": {
		Paths: []string{
			"atom10:summary", "atom03:summary", "atom:summary", "summary", "abstract", "blurb",
			"description", "tagline", "subtitle", "xhtml:body", "body", "xhtml:div", "div",
			"p:payload", "payload", "fullitem", "content:encoded", "encoded", "atom10:content",
			"atom03:content", "atom:content", "content", "info", "body/datacontent",
		},
		Process: processText,
	},
	"itunes_summary":  {Paths: []string{"itunes:summary/text()"}, Process: processUnescapeSanitize},
	"itunes_subtitle": {Paths: []string{"itunes:subtitle/text()"}, Process: processUnescapeSanitize},
	"itunes_author":   {Paths: []string{"itunes:author/text()"}, Process: processUnescape},
	"media_text": {
		Paths:   []string{"media:text/text()", "mrss:text/text()"},
		Process: processUnescapeSanitize,
	},
	"time":      {Paths: timePaths, Process: processTimestamp},
	"updated":   {Paths: updatedPaths, Process: processTimestamp},
	"published": {Paths: publishedPaths, Process: processTimestamp},
	"rights":    {Paths: rightsPaths, Process: processText},
	"comments":  {Paths: []string{"comments/text()"}, Process: processURL},
	"explicit": {
		Paths:   []string{"media:adult/text()", "mrss:adult/text()", "itunes:explicit/text()"},
		Process: processBoolean,
	},
	"about": {Paths: []string{"@rdf:about", "@about"}},
}
