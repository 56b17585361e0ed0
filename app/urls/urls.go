package urls

import (
	"net"
	"net/url"
	"strings"
)

var allowedSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"ftp":    true,
	"file":   true,
	"mailto": true,
}

// Normalize cleans an absolute URL: scheme and host are lowercased, default
// ports dropped, an empty path becomes "/" and feed: pseudo-schemes are
// rewritten to http. Unparseable or disallowed URLs yield "".
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "feed:http://"), strings.HasPrefix(lower, "feed:https://"):
		raw = raw[len("feed:"):]
	case strings.HasPrefix(lower, "feed://"):
		raw = "http://" + raw[len("feed://"):]
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.Scheme == "" {
		return ""
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if !allowedSchemes[u.Scheme] {
		return ""
	}

	if u.Host != "" {
		host := strings.ToLower(u.Hostname())
		port := u.Port()
		if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
			port = ""
		}
		if port != "" {
			u.Host = net.JoinHostPort(host, port)
		} else if strings.Contains(host, ":") {
			u.Host = "[" + host + "]"
		} else {
			u.Host = host
		}
		if u.Path == "" && u.Opaque == "" {
			u.Path = "/"
		}
	}

	return u.String()
}

// Resolve resolves ref against base and normalizes the result. A relative
// reference without a usable base is returned trimmed but unresolved.
func Resolve(ref, base string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	refURL, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if refURL.IsAbs() {
		return Normalize(ref)
	}

	baseURL, err := url.Parse(strings.TrimSpace(base))
	if err != nil || !baseURL.IsAbs() {
		return ref
	}

	return Normalize(baseURL.ResolveReference(refURL).String())
}

// ResolveChain resolves a chain of base references, outermost first,
// starting from an absolute fallback.
func ResolveChain(fallback string, chain []string) string {
	base := fallback
	for _, ref := range chain {
		if resolved := Resolve(ref, base); resolved != "" {
			base = resolved
		}
	}
	return base
}

// IsURI reports whether s parses as a URL with a scheme.
func IsURI(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	return err == nil && u.Scheme != ""
}

// Favicon guesses the conventional favicon location for a site. Only plain
// http URLs produce a result.
func Favicon(raw string) string {
	normalized := Normalize(raw)
	if normalized == "" {
		return ""
	}
	u, err := url.Parse(normalized)
	if err != nil || u.Scheme != "http" || u.Host == "" {
		return ""
	}
	return "http://" + u.Hostname() + "/favicon.ico"
}
