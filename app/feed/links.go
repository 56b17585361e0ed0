package feed

import (
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/lysyi3m/rss-canon/app/urls"
	"github.com/lysyi3m/rss-canon/app/xmlns"
)

var linkHrefPaths = []string{
	"@atom10:href", "@atom03:href", "@atom:href", "@href", "@rdf:resource", "text()",
}

// parseLink reads a link element of any dialect. Atom links without a rel
// are alternates.
func (e *Engine) parseLink(node *xmlquery.Node, base string) Link {
	link := Link{
		Href:     urls.Resolve(e.valueOf(node, linkHrefPaths...), base),
		HrefLang: e.valueOf(node, "@hreflang"),
		Rel:      strings.ToLower(e.valueOf(node, "@rel")),
		Type:     e.valueOf(node, "@type"),
		Title:    e.valueOf(node, "@title"),
		Length:   int64(leadingInt(e.valueOf(node, "@length"))),
	}

	if link.Rel == "" && (node.NamespaceURI == xmlns.Atom10 || node.NamespaceURI == xmlns.Atom03) {
		link.Rel = "alternate"
	}

	return link
}

// rankLink scores a link as a candidate for the owner's content link.
func rankLink(link Link, ownerHref string) int {
	if link.Href == "" {
		return 0
	}

	score := 0
	if ownerHref != "" && link.Href == ownerHref {
		score -= 2
	}

	mediaType := strings.ToLower(link.Type)
	if strings.HasPrefix(mediaType, "image") || strings.HasPrefix(mediaType, "video") {
		score -= 2
	}
	if strings.HasSuffix(mediaType, "xml") || strings.Contains(mediaType, "xhtml") {
		score++
	}
	if strings.Contains(mediaType, "html") {
		score += 2
	} else {
		score--
	}

	switch link.Rel {
	case "enclosure":
		score -= 2
	case "alternate":
		score++
	case "self":
		href := strings.ToLower(link.Href)
		if strings.Contains(href, "xml") || strings.Contains(href, "atom") || strings.Contains(href, "feed") {
			score -= 2
		} else {
			score--
		}
	}

	return score
}

// bestLink picks the highest ranked link that has an href. Ties go to the
// link seen first.
func bestLink(links []Link, ownerHref string) (Link, bool) {
	var best Link
	bestScore := 0
	found := false
	for _, link := range links {
		if link.Href == "" {
			continue
		}
		score := rankLink(link, ownerHref)
		if !found || score > bestScore {
			best, bestScore, found = link, score, true
		}
	}
	return best, found
}
