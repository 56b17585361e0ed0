package feed

import (
	"regexp"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/lysyi3m/rss-canon/app/urls"
	"github.com/lysyi3m/rss-canon/app/xmltree"
)

var (
	nameThenEmail = regexp.MustCompile(`^(.*?)\s*\(\s*([^()\s]+@[^()\s]+)\s*\)\s*$`)
	emailThenName = regexp.MustCompile(`^([^()\s]+@[^()\s]+)\s*\(\s*(.*?)\s*\)\s*$`)
	looseEmail    = regexp.MustCompile(`[\w.%+-]+@[\w-]+(?:\.[\w-]+)+`)
	quotedName    = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)
)

var (
	authorNamePaths = []string{
		"atom10:name/text()", "atom03:name/text()", "atom:name/text()", "name/text()",
		"@name", "foaf:name/text()",
	}
	authorEmailPaths = []string{
		"atom10:email/text()", "atom03:email/text()", "atom:email/text()", "email/text()",
		"@email", "foaf:mbox/text()",
	}
	authorURLPaths = []string{
		"atom10:uri/text()", "atom03:url/text()", "atom:uri/text()", "uri/text()", "url/text()",
		"@href", "@uri", "@url", "@rdf:resource",
	}
)

// parseAuthor splits a person construct into name, email and href. Free
// text is tried first; structured children only fill what it left empty.
func (e *Engine) parseAuthor(node *xmlquery.Node, base string) Author {
	if node == nil {
		return Author{}
	}

	var raw string
	if xmltree.HasElementChildren(node) {
		raw = xmltree.DirectText(node)
	} else {
		raw = xmltree.Text(node)
	}
	raw = strings.TrimSpace(raw)

	author := Author{Raw: raw}

	if raw != "" {
		if m := nameThenEmail.FindStringSubmatch(raw); m != nil {
			author.Name, author.Email = strings.TrimSpace(m[1]), m[2]
		} else if m := emailThenName.FindStringSubmatch(raw); m != nil {
			author.Email, author.Name = m[1], strings.TrimSpace(m[2])
		} else if !strings.Contains(raw, "@") {
			author.Name = raw
		} else {
			author.Email = looseEmail.FindString(raw)
		}
	}

	if author.Name == "" {
		author.Name = e.valueOf(node, authorNamePaths...)
	}
	if author.Email == "" {
		author.Email = strings.TrimPrefix(e.valueOf(node, authorEmailPaths...), "mailto:")
	}
	if author.Href == "" {
		author.Href = e.valueOf(node, authorURLPaths...)
	}

	if author.Name == "" && raw != "" && author.Email != "" {
		author.Name = nameAroundEmail(raw, author.Email)
	}

	if author.Href != "" {
		author.Href = urls.Resolve(author.Href, base)
	}

	return author
}

// nameAroundEmail recovers a name from text such as
// `"Jane Doe" <jane@example.com>` or `Jane Doe [jane@example.com]`.
func nameAroundEmail(raw, email string) string {
	if m := quotedName.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1] + m[2])
	}

	rest := strings.Replace(raw, email, "", 1)
	rest = strings.NewReplacer("<>", "", "()", "", "[]", "", "mailto:", "").Replace(rest)
	rest = strings.Trim(rest, " \t\r\n,;:-<>()[]")
	if rest == "" || strings.Contains(rest, "@") {
		return ""
	}
	return rest
}
