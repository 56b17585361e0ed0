package feed

import (
	"fmt"
	"testing"
)

func rssChannel(t *testing.T, channel string) *Feed {
	t.Helper()
	data := fmt.Sprintf(`<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/"><channel><title>People</title>%s</channel></rss>`, channel)
	return parseFeed(t, newTestEngine(t, nil, nil), "http://example.com/feed.xml", data)
}

func TestAuthorHeuristics(t *testing.T) {
	tests := []struct {
		name    string
		channel string
		author  Author
	}{
		{
			"plain name",
			"<managingEditor>Jane Doe</managingEditor>",
			Author{Raw: "Jane Doe", Name: "Jane Doe"},
		},
		{
			"name then email",
			"<managingEditor>Jane Doe (jane@example.com)</managingEditor>",
			Author{Raw: "Jane Doe (jane@example.com)", Name: "Jane Doe", Email: "jane@example.com"},
		},
		{
			"email then name",
			"<managingEditor>jane@example.com (Jane Doe)</managingEditor>",
			Author{Raw: "jane@example.com (Jane Doe)", Name: "Jane Doe", Email: "jane@example.com"},
		},
		{
			"quoted name around email",
			`<managingEditor>"Web Master" &lt;wm@example.com&gt;</managingEditor>`,
			Author{Raw: `"Web Master" <wm@example.com>`, Name: "Web Master", Email: "wm@example.com"},
		},
		{
			"bare email",
			"<managingEditor>wm@example.com</managingEditor>",
			Author{Raw: "wm@example.com", Email: "wm@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			author := rssChannel(t, tt.channel).Author()
			if author == nil {
				t.Fatal("Expected author")
			}
			if *author != tt.author {
				t.Errorf("Expected %+v, got: %+v", tt.author, *author)
			}
		})
	}
}

func TestNameAroundEmail(t *testing.T) {
	tests := []struct {
		raw      string
		email    string
		expected string
	}{
		{`"Web Master" <wm@example.com>`, "wm@example.com", "Web Master"},
		{`'Jane' jane@example.com`, "jane@example.com", "Jane"},
		{"Jane Doe <jane@example.com>", "jane@example.com", "Jane Doe"},
		{"Jane Doe [jane@example.com]", "jane@example.com", "Jane Doe"},
		{"mailto:jane@example.com", "jane@example.com", ""},
		{"jane@example.com, bob@example.com", "jane@example.com", ""},
	}

	for _, tt := range tests {
		if got := nameAroundEmail(tt.raw, tt.email); got != tt.expected {
			t.Errorf("Expected nameAroundEmail(%q) = '%s', got: %s", tt.raw, tt.expected, got)
		}
	}
}

func TestPublisher(t *testing.T) {
	f := rssChannel(t, `<webMaster>"Web Master" &lt;wm@example.com&gt;</webMaster>`)

	publisher := f.Publisher()
	if publisher == nil {
		t.Fatal("Expected publisher")
	}
	if publisher.Name != "Web Master" || publisher.Email != "wm@example.com" {
		t.Errorf("Expected 'Web Master' <wm@example.com>, got: %+v", publisher)
	}
	if f.Author() != nil {
		t.Errorf("Expected no author, got: %+v", f.Author())
	}

	f = rssChannel(t, "<dc:publisher>Example Press</dc:publisher>")
	if publisher := f.Publisher(); publisher == nil || publisher.Name != "Example Press" || publisher.Email != "" {
		t.Errorf("Expected publisher 'Example Press', got: %+v", publisher)
	}

	if publisher := rssChannel(t, "").Publisher(); publisher != nil {
		t.Errorf("Expected no publisher, got: %+v", publisher)
	}
}
