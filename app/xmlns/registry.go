package xmlns

import (
	"errors"
	"fmt"
	"maps"
	"sort"
)

var ErrPrefixConflict = errors.New("namespace prefix already defined")

// Well-known namespace URIs referenced directly by the detector.
const (
	Atom10 = "http://www.w3.org/2005/Atom"
	Atom03 = "http://purl.org/atom/ns#"
	RSS09  = "http://my.netscape.com/rdf/simple/0.9/"
	RSS10  = "http://purl.org/rss/1.0/"
	RSS11  = "http://purl.org/net/rss1.1#"
	RDF    = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	XML    = "http://www.w3.org/XML/1998/namespace"
)

var known = map[string]string{
	"access":           "http://www.bloglines.com/about/specs/fac-1.0",
	"admin":            "http://webns.net/mvcb/",
	"ag":               "http://purl.org/rss/1.0/modules/aggregation/",
	"annotate":         "http://purl.org/rss/1.0/modules/annotate/",
	"app":              "http://www.w3.org/2007/app",
	"apple-wallpapers": "http://www.apple.com/ilife/wallpapers",
	"atom":             Atom10,
	"atom03":           Atom03,
	"atom10":           Atom10,
	"atom-blog":        "http://purl.org/atom-blog/ns#",
	"audio":            "http://media.tangent.org/rss/1.0/",
	"batch":            "http://schemas.google.com/gdata/batch",
	"bitTorrent":       "http://www.reallysimplesyndication.com/bitTorrentRssModule",
	"blip":             "http://blip.tv/dtd/blip/1.0",
	"blogChannel":      "http://backend.userland.com/blogChannelModule",
	"blogger":          "http://www.blogger.com/atom/ns#",
	"cc":               "http://web.resource.org/cc/",
	"cf":               "http://www.microsoft.com/schemas/rss/core/2005",
	"co":               "http://purl.org/rss/1.0/modules/company",
	"content":          "http://purl.org/rss/1.0/modules/content/",
	"cp":               "http://my.theinfo.org/changed/1.0/rss/",
	"creativeCommons":  "http://backend.userland.com/creativeCommonsRssModule",
	"dc":               "http://purl.org/dc/elements/1.1/",
	"dcterms":          "http://purl.org/dc/terms/",
	"dtvmedia":         "http://participatoryculture.org/RSSModules/dtv/1.0",
	"email":            "http://purl.org/rss/1.0/modules/email/",
	"ev":               "http://purl.org/rss/1.0/modules/event/",
	"excerpt":          "http://wordpress.org/export/1.2/excerpt/",
	"feedburner":       "http://rssnamespace.org/feedburner/ext/1.0",
	"fh":               "http://purl.org/syndication/history/1.0",
	"fm":               "http://freshmeat.net/rss/fm/",
	"foaf":             "http://xmlns.com/foaf/0.1/",
	"foo":              "http://hsivonen.iki.fi/FooML",
	"gd":               "http://schemas.google.com/g/2005",
	"geo":              "http://www.w3.org/2003/01/geo/wgs84_pos#",
	"georss":           "http://www.georss.org/georss",
	"googleplay":       "http://www.google.com/schemas/play-podcasts/1.0",
	"gr":               "http://www.google.com/schemas/reader/atom/",
	"icbm":             "http://postneo.com/icbm/",
	"image":            "http://purl.org/rss/1.0/modules/image/",
	"indexing":         "urn:atom-extension:indexing",
	"itunes":           "http://www.itunes.com/dtds/podcast-1.0.dtd",
	"l":                "http://purl.org/rss/1.0/modules/link/",
	"mathml":           "http://www.w3.org/1998/Math/MathML",
	"media":            "http://search.yahoo.com/mrss",
	"mrss":             "http://search.yahoo.com/mrss/",
	"openSearch":       "http://a9.com/-/spec/opensearchrss/1.0/",
	"opensearch":       "http://a9.com/-/spec/opensearch/1.1/",
	"p":                "http://purl.org/net/rss1.1/payload#",
	"photo":            "http://www.pheed.com/pheed/",
	"pingback":         "http://madskills.com/public/xml/rss/module/pingback/",
	"podcast":          "https://podcastindex.org/namespace/1.0",
	"prism":            "http://prismstandard.org/namespaces/1.2/basic/",
	"psc":              "http://podlove.org/simple-chapters",
	"rawvoice":         "http://www.rawvoice.com/rawvoiceRssModule/",
	"rdf":              RDF,
	"rdfs":             "http://www.w3.org/2000/01/rdf-schema#",
	"ref":              "http://purl.org/rss/1.0/modules/reference/",
	"reqv":             "http://purl.org/rss/1.0/modules/richequiv/",
	"rss09":            RSS09,
	"rss10":            RSS10,
	"rss11":            RSS11,
	"rss20":            "http://backend.userland.com/rss2",
	"search":           "http://purl.org/rss/1.0/modules/search/",
	"sioc":             "http://rdfs.org/sioc/ns#",
	"slash":            "http://purl.org/rss/1.0/modules/slash/",
	"sle":              "http://www.microsoft.com/schemas/rss/core/2005",
	"soap":             "http://schemas.xmlsoap.org/soap/envelope/",
	"spotify":          "http://www.spotify.com/ns/rss",
	"ss":               "http://purl.org/rss/1.0/modules/servicestatus/",
	"str":              "http://hacks.benhammersley.com/rss/streaming/",
	"sub":              "http://purl.org/rss/1.0/modules/subscription/",
	"svg":              "http://www.w3.org/2000/svg",
	"sy":               "http://purl.org/rss/1.0/modules/syndication/",
	"syn":              "http://purl.org/rss/1.0/modules/syndication/",
	"taxo":             "http://purl.org/rss/1.0/modules/taxonomy/",
	"thr":              "http://purl.org/rss/1.0/modules/threading/",
	"ti":               "http://purl.org/rss/1.0/modules/textinput/",
	"trackback":        "http://madskills.com/public/xml/rss/module/trackback/",
	"wfw":              "http://wellformedweb.org/CommentAPI/",
	"wiki":             "http://purl.org/rss/1.0/modules/wiki/",
	"wp":               "http://wordpress.org/export/1.2/",
	"xhtml":            "http://www.w3.org/1999/xhtml",
	"xlink":            "http://www.w3.org/1999/xlink",
	"xml":              XML,
	"yt":               "http://www.youtube.com/xml/schemas/2015",
}

// Registry is an immutable prefix to URI table handed to every path query.
type Registry struct {
	prefixes map[string]string
}

func Default() *Registry {
	return &Registry{prefixes: maps.Clone(known)}
}

// Extend returns a new registry with the extra entries added. Existing
// prefixes may be repeated with the same URI but never redefined.
func (r *Registry) Extend(extra map[string]string) (*Registry, error) {
	merged := maps.Clone(r.prefixes)
	for prefix, uri := range extra {
		if prefix == "" || uri == "" {
			return nil, fmt.Errorf("empty namespace entry %q=%q", prefix, uri)
		}
		if existing, ok := merged[prefix]; ok && existing != uri {
			return nil, fmt.Errorf("%w: %s is %s", ErrPrefixConflict, prefix, existing)
		}
		merged[prefix] = uri
	}
	return &Registry{prefixes: merged}, nil
}

func (r *Registry) Lookup(prefix string) (string, bool) {
	uri, ok := r.prefixes[prefix]
	return uri, ok
}

// Map returns a copy of the table.
func (r *Registry) Map() map[string]string {
	return maps.Clone(r.prefixes)
}

func (r *Registry) Prefixes() []string {
	keys := make([]string, 0, len(r.prefixes))
	for k := range r.prefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *Registry) Len() int {
	return len(r.prefixes)
}
