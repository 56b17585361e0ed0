package feed

import (
	"encoding/base64"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/araddon/dateparse"
	"github.com/lysyi3m/rss-canon/app/detect"
	"github.com/lysyi3m/rss-canon/app/sanitize"
	"github.com/lysyi3m/rss-canon/app/urls"
	"github.com/lysyi3m/rss-canon/app/xmltree"
	"golang.org/x/text/encoding/ianaindex"
)

// textContext carries what content normalization needs from the owner.
type textContext struct {
	feedType string
	version  float64
	base     string
}

var (
	booleanPattern  = regexp.MustCompile(`(?i)true|yes`)
	languagePattern = regexp.MustCompile(`^(\w+)-(\w+)$`)
	charsetPattern  = regexp.MustCompile(`(?i)charset=["']?([\w\d-]+)`)
)

func (e *Engine) first(roots []*xmlquery.Node, paths []string) *xmlquery.Node {
	node, err := e.resolver.First(roots, paths)
	if err != nil {
		slog.Error("Failed to resolve field", "paths", paths, "error", err)
		return nil
	}
	return node
}

// all returns every match once, in resolution order.
func (e *Engine) all(roots []*xmlquery.Node, paths []string) []*xmlquery.Node {
	nodes, err := e.resolver.All(roots, paths)
	if err != nil {
		slog.Error("Failed to resolve field", "paths", paths, "error", err)
		return nil
	}

	seen := make(map[*xmlquery.Node]bool, len(nodes))
	unique := nodes[:0]
	for _, node := range nodes {
		if seen[node] {
			continue
		}
		seen[node] = true
		unique = append(unique, node)
	}
	return unique
}

func (e *Engine) value(roots []*xmlquery.Node, paths ...string) (string, bool) {
	value, ok, err := e.resolver.FirstText(roots, paths)
	if err != nil {
		slog.Error("Failed to resolve field", "paths", paths, "error", err)
		return "", false
	}
	return value, ok
}

// valueOf looks up paths relative to a single node and trims the result.
func (e *Engine) valueOf(node *xmlquery.Node, paths ...string) string {
	if node == nil {
		return ""
	}
	value, _ := e.value([]*xmlquery.Node{node}, paths...)
	return strings.TrimSpace(value)
}

// extractString resolves a string-valued field and runs its pipeline.
func (e *Engine) extractString(spec fieldSpec, roots []*xmlquery.Node, tc textContext) string {
	if spec.Process == processText {
		return processContent(e.first(roots, spec.Paths), tc)
	}

	raw, ok := e.value(roots, spec.Paths...)
	if !ok {
		return ""
	}

	switch spec.Process {
	case processUnescape:
		return strings.TrimSpace(sanitize.Unescape(raw))
	case processUnescapeSanitize:
		return sanitize.UnescapeAndSanitize(raw)
	case processHTMLToText:
		return strings.TrimSpace(sanitize.HTMLToText(raw))
	case processURL:
		return urls.Resolve(raw, tc.base)
	default:
		return strings.TrimSpace(raw)
	}
}

func (e *Engine) extractTime(spec fieldSpec, roots []*xmlquery.Node) *time.Time {
	raw, ok := e.value(roots, spec.Paths...)
	if !ok {
		return nil
	}
	return parseTime(raw)
}

func (e *Engine) extractInt(spec fieldSpec, roots []*xmlquery.Node) (int, bool) {
	raw, ok := e.value(roots, spec.Paths...)
	if !ok {
		return 0, false
	}
	return leadingInt(raw), true
}

func (e *Engine) extractBool(spec fieldSpec, roots []*xmlquery.Node) bool {
	raw, ok := e.value(roots, spec.Paths...)
	return ok && booleanPattern.MatchString(raw)
}

// processContent normalizes a text construct to HTML: markup children are
// serialized, plain text is escaped, scripts and styles are removed,
// relative references are resolved and a wrapping div is dropped.
func processContent(node *xmlquery.Node, tc textContext) string {
	if node == nil {
		return ""
	}

	contentType := strings.ToLower(strings.TrimSpace(xmltree.Attr(node, "type")))
	mode := strings.ToLower(strings.TrimSpace(xmltree.Attr(node, "mode")))

	var text string
	switch {
	case contentType == "xhtml" || strings.HasSuffix(contentType, "xhtml+xml") || xmltree.HasElementChildren(node):
		text = xmltree.InnerXML(node)
	case mode == "base64":
		raw := strings.TrimSpace(xmltree.Text(node))
		if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil {
			text = string(decoded)
		} else {
			text = raw
		}
	case contentType == "text" || contentType == "text/plain":
		text = sanitize.Escape(xmltree.Text(node))
	case contentType == "" && tc.feedType == detect.TypeAtom && tc.version == 1.0:
		text = sanitize.Escape(xmltree.Text(node))
	default:
		text = xmltree.Text(node)
	}

	text = sanitize.Sanitize(text)
	text = sanitize.ResolveURLs(text, tc.base)
	return sanitize.StripWrapper(text)
}

func parseTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}

// leadingInt parses the leading decimal digits of s, ignoring anything
// after them. Non-numeric input is zero; overlong input saturates.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}

	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		d := int(r - '0')
		if n > (math.MaxInt-d)/10 {
			n = math.MaxInt
			continue
		}
		n = n*10 + d
	}
	if negative {
		return -n
	}
	return n
}

// normalizeLanguage lowercases a language tag and uppercases a two-part
// region: "EN_us" becomes "en-US".
func normalizeLanguage(value string) string {
	value = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(value), "_", "-"))
	if m := languagePattern.FindStringSubmatch(value); m != nil {
		return m[1] + "-" + strings.ToUpper(m[2])
	}
	return value
}

func headerCharset(headers map[string]string) string {
	for key, value := range headers {
		if !strings.EqualFold(key, "content-type") {
			continue
		}
		if m := charsetPattern.FindStringSubmatch(value); m != nil {
			return m[1]
		}
	}
	return ""
}

// canonicalCharset maps a charset label onto its MIME name, or its IANA
// name when there is none, lowercased.
func canonicalCharset(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return ""
	}
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil || enc == nil {
		return strings.ToLower(label)
	}
	name, err := ianaindex.MIME.Name(enc)
	if err != nil || name == "" {
		name, err = ianaindex.IANA.Name(enc)
	}
	if err != nil || name == "" {
		return strings.ToLower(label)
	}
	return strings.ToLower(name)
}
