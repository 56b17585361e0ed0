package sanitize

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/lysyi3m/rss-canon/app/urls"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var (
	escaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"'", "&apos;",
		`"`, "&quot;",
	)

	smartQuotes = strings.NewReplacer(
		"&#8216;", "'",
		"&#8217;", "'",
		"&#8220;", `"`,
		"&#8221;", `"`,
		"‘", "'",
		"’", "'",
		"“", `"`,
		"”", `"`,
	)

	leadingZeros = regexp.MustCompile(`&#0+(\d+|[xX][0-9a-fA-F]+);`)

	stripPolicy = bluemonday.StrictPolicy()
)

// Escape converts the five XML special characters into entities.
func Escape(text string) string {
	return escaper.Replace(text)
}

// Unescape decodes named and numeric character references.
func Unescape(text string) string {
	if !strings.Contains(text, "&") {
		return text
	}
	text = leadingZeros.ReplaceAllString(text, "&#$1;")
	return html.UnescapeString(text)
}

// Sanitize removes script and style elements, including their content.
// Everything else is passed through byte for byte.
func Sanitize(text string) string {
	if !strings.Contains(text, "<") {
		return text
	}

	var out bytes.Buffer
	z := html.NewTokenizer(strings.NewReader(text))
	skipping := ""
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() == io.EOF {
				break
			}
			return out.String()
		}

		raw := append([]byte(nil), z.Raw()...)
		name, _ := z.TagName()
		tag := string(name)

		if skipping != "" {
			if tt == html.EndTagToken && tag == skipping {
				skipping = ""
			}
			continue
		}

		if tt == html.StartTagToken && (tag == "script" || tag == "style") {
			skipping = tag
			continue
		}
		if (tt == html.SelfClosingTagToken || tt == html.EndTagToken) && (tag == "script" || tag == "style") {
			continue
		}

		out.Write(raw)
	}

	return out.String()
}

// UnescapeAndSanitize decodes entities, strips scripts and styles and
// trims the result.
func UnescapeAndSanitize(text string) string {
	return strings.TrimSpace(Sanitize(Unescape(text)))
}

// StripHTML removes all markup. The result is HTML-escaped text.
func StripHTML(text string) string {
	return stripPolicy.Sanitize(text)
}

// HTMLToText converts markup into plain text.
func HTMLToText(text string) string {
	return smartQuotes.Replace(Unescape(StripHTML(smartQuotes.Replace(text))))
}

// StripWrapper removes a single <div> element wrapping the whole text.
func StripWrapper(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(strings.ToLower(trimmed), "<div") {
		return trimmed
	}

	z := html.NewTokenizer(strings.NewReader(trimmed))
	depth := 0
	offset := 0
	innerStart := -1
	for {
		tt := z.Next()
		raw := z.Raw()
		if tt == html.ErrorToken {
			return trimmed
		}

		name, _ := z.TagName()
		isDiv := string(name) == "div"

		switch {
		case tt == html.StartTagToken && isDiv:
			depth++
			if innerStart < 0 {
				innerStart = offset + len(raw)
			}
		case tt == html.EndTagToken && isDiv:
			depth--
			if depth == 0 {
				if offset+len(raw) != len(trimmed) {
					return trimmed
				}
				return strings.TrimSpace(trimmed[innerStart:offset])
			}
		}

		if innerStart < 0 {
			// leading token is not a div start tag
			return trimmed
		}
		offset += len(raw)
	}
}

// ResolveURLs rewrites relative href and src attributes in an HTML
// fragment against base. Unchanged tokens keep their original bytes.
func ResolveURLs(fragment, base string) string {
	if base == "" || !strings.Contains(fragment, "<") {
		return fragment
	}

	var out bytes.Buffer
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() == io.EOF {
				break
			}
			return fragment
		}

		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			out.Write(z.Raw())
			continue
		}

		raw := string(z.Raw())
		token := z.Token()
		changed := false
		for i, attr := range token.Attr {
			if attr.Key != "href" && attr.Key != "src" {
				continue
			}
			if urls.IsURI(attr.Val) || strings.HasPrefix(attr.Val, "#") {
				continue
			}
			if resolved := urls.Resolve(attr.Val, base); resolved != "" && resolved != attr.Val {
				token.Attr[i].Val = resolved
				changed = true
			}
		}

		if changed {
			out.WriteString(token.String())
		} else {
			out.WriteString(raw)
		}
	}

	return out.String()
}
