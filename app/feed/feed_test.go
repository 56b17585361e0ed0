package feed

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/rss-canon/app/cache"
	"github.com/lysyi3m/rss-canon/app/xmlns"
)

const rdfSelfLinkFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns="http://purl.org/rss/1.0/">
  <channel rdf:about="http://example.com/">
    <atom10:link xmlns:atom10="http://www.w3.org/2005/Atom"
      rel="self" type="application/rss+xml"
      href="http://example.com/feed.rdf" />
  </channel>
</rdf:RDF>`

const rdfRelativeFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns="http://purl.org/rss/1.0/">
  <channel rdf:about="http://example.com/">
    <items>
      <rdf:Seq>
        <rdf:li rdf:resource="http://example.com/entry/" />
      </rdf:Seq>
    </items>
    <atom10:link xmlns:atom10="http://www.w3.org/2005/Atom"
      rel="self" type="application/rss+xml"
      href="http://example.com/feed.rdf" />
  </channel>
  <item rdf:about="http://example.com/entry/">
    <link>http://example.com/entry/</link>
    <description>
      A relative &lt;a href="/relative/location/"&gt;uri&lt;/a&gt;.
    </description>
  </item>
</rdf:RDF>`

const rssFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
  <channel>
    <title>Test Feed</title>
    <link>http://example.com/</link>
    <description>&lt;p&gt;Test Description&lt;/p&gt;&lt;script&gt;alert(1)&lt;/script&gt;</description>
    <language>EN_us</language>
    <copyright>Copyright 2023 Example</copyright>
    <generator>&lt;b&gt;WordPress&lt;/b&gt; 6.4</generator>
    <docs>/rss-spec</docs>
    <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
    <lastBuildDate>Mon, 03 Jul 2023 12:00:00 GMT</lastBuildDate>
    <ttl>60</ttl>
    <itunes:explicit>yes</itunes:explicit>
    <cloud domain="rpc.example.com" port="80" path="/RPC2" registerProcedure="pingMe" protocol="SOAP"/>
    <textInput>
      <title>Search</title>
      <description>Search the site</description>
      <name>q</name>
      <link>http://example.com/search</link>
    </textInput>
    <image>
      <url>/logo.png</url>
      <title>Logo</title>
      <link>http://example.com/</link>
      <width>88</width>
      <height>31</height>
    </image>
    <category domain="http://example.com/cats">Technology</category>
    <category>Programming</category>
    <item>
      <title>Episode 1 [12]</title>
      <link>http://example.com/episodes/1</link>
      <description>First episode</description>
      <guid>episode-1</guid>
      <pubDate>Mon, 03 Jul 2023 10:00:00 GMT</pubDate>
      <author>Jane Doe (jane@example.com)</author>
      <comments>/episodes/1#comments</comments>
      <enclosure url="http://example.com/episodes/1.mp3" length="1234" type="audio/mpeg"/>
    </item>
    <item>
      <title>Episode 2</title>
      <description>Second episode</description>
      <author>jane@example.com (Jane Doe)</author>
      <enclosure url="http://example.com/episodes/2.mp3" length="5678" type="audio/mpeg"/>
    </item>
  </channel>
</rss>`

const atomFeed = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom &amp; Co</title>
  <subtitle type="html">&lt;em&gt;News&lt;/em&gt;</subtitle>
  <link href="http://example.com/"/>
  <link rel="self" href="http://example.com/atom.xml"/>
  <link rel="license" href="http://creativecommons.org/licenses/by/4.0/"/>
  <id>urn:uuid:60a76c80-d399-11d9-b93c-0003939e0af6</id>
  <updated>2024-01-02T03:04:05Z</updated>
  <icon>/favicon.png</icon>
  <author>
    <name>Jane</name>
    <email>jane@example.com</email>
    <uri>/about</uri>
  </author>
  <entry>
    <title type="html">&lt;b&gt;Bold&lt;/b&gt;</title>
    <link href="/posts/1"/>
    <link rel="enclosure" type="audio/mpeg" href="http://example.com/1.mp3" length="100"/>
    <id>tag:example.com,2024:1</id>
    <updated>2024-01-02T03:04:05Z</updated>
    <content type="xhtml"><div xmlns="http://www.w3.org/1999/xhtml"><p>Hi <b>there</b></p></div></content>
  </entry>
  <entry>
    <title>Second &amp; last</title>
    <id gr:original-id="orig-2" xmlns:gr="http://www.google.com/schemas/reader/atom/">tag:example.com,2024:2</id>
    <summary>Plain summary</summary>
  </entry>
</feed>`

func newTestEngine(t *testing.T, settings *Settings, store cache.Store) *Engine {
	t.Helper()
	engine, err := NewEngine(settings, xmlns.Default(), store, nil)
	if err != nil {
		t.Fatalf("Expected no error creating engine, got: %v", err)
	}
	return engine
}

func parseFeed(t *testing.T, engine *Engine, href, data string) *Feed {
	t.Helper()
	f, err := engine.Parse(context.Background(), href, []byte(data), nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	return f
}

func TestEmbeddedAtomSelfLink(t *testing.T) {
	f := parseFeed(t, newTestEngine(t, nil, nil), "", rdfSelfLinkFeed)

	if f.Link() != "http://example.com/" {
		t.Errorf("Expected link 'http://example.com/', got: %s", f.Link())
	}
	if f.Href() != "http://example.com/feed.rdf" {
		t.Errorf("Expected href 'http://example.com/feed.rdf', got: %s", f.Href())
	}
	if f.BaseURI() != "http://example.com/feed.rdf" {
		t.Errorf("Expected base URI 'http://example.com/feed.rdf', got: %s", f.BaseURI())
	}
	if f.FeedType() != "rss" {
		t.Errorf("Expected feed type 'rss', got: %s", f.FeedType())
	}
	if f.FeedVersion() != 1.0 {
		t.Errorf("Expected feed version 1.0, got: %v", f.FeedVersion())
	}
}

func TestRelativeURIResolution(t *testing.T) {
	f := parseFeed(t, newTestEngine(t, nil, nil), "", rdfRelativeFeed)

	if f.Link() != "http://example.com/" {
		t.Errorf("Expected link 'http://example.com/', got: %s", f.Link())
	}
	if f.Href() != "http://example.com/feed.rdf" {
		t.Errorf("Expected href 'http://example.com/feed.rdf', got: %s", f.Href())
	}

	items := f.Items()
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got: %d", len(items))
	}
	if items[0].Link() != "http://example.com/entry/" {
		t.Errorf("Expected item link 'http://example.com/entry/', got: %s", items[0].Link())
	}

	description := items[0].Description()
	if count := strings.Count(description, "http://example.com/relative/location/"); count != 1 {
		t.Errorf("Expected resolved relative link once, got %d in: %s", count, description)
	}
}

func TestRSSFeedFields(t *testing.T) {
	f := parseFeed(t, newTestEngine(t, nil, nil), "http://example.com/feed.xml", rssFeed)

	if f.Title() != "Test Feed" {
		t.Errorf("Expected title 'Test Feed', got: %s", f.Title())
	}
	if f.Subtitle() != "<p>Test Description</p>" {
		t.Errorf("Expected sanitized subtitle, got: %s", f.Subtitle())
	}
	if f.Description() != f.Subtitle() || f.Tagline() != f.Subtitle() || f.Abstract() != f.Subtitle() {
		t.Error("Expected subtitle synonyms to return the same value")
	}
	if f.Link() != "http://example.com/" {
		t.Errorf("Expected link 'http://example.com/', got: %s", f.Link())
	}
	if f.Href() != "http://example.com/feed.xml" {
		t.Errorf("Expected href 'http://example.com/feed.xml', got: %s", f.Href())
	}
	if f.URL() != f.Href() {
		t.Error("Expected URL to alias href")
	}
	if f.Language() != "en-US" {
		t.Errorf("Expected language 'en-US', got: %s", f.Language())
	}
	if f.Rights() != "Copyright 2023 Example" || f.Copyright() != f.Rights() {
		t.Errorf("Expected rights 'Copyright 2023 Example', got: %s", f.Rights())
	}
	if f.Generator() != "WordPress 6.4" {
		t.Errorf("Expected generator 'WordPress 6.4', got: %s", f.Generator())
	}
	if f.Docs() != "http://example.com/rss-spec" {
		t.Errorf("Expected docs 'http://example.com/rss-spec', got: %s", f.Docs())
	}
	if !f.Explicit() {
		t.Error("Expected explicit feed")
	}
	if f.FeedVersion() != 2.0 {
		t.Errorf("Expected feed version 2.0, got: %v", f.FeedVersion())
	}
	if f.Encoding() != "utf-8" {
		t.Errorf("Expected encoding 'utf-8', got: %s", f.Encoding())
	}
	if f.Favicon() != "http://example.com/favicon.ico" {
		t.Errorf("Expected favicon 'http://example.com/favicon.ico', got: %s", f.Favicon())
	}

	published := time.Date(2023, 7, 3, 10, 0, 0, 0, time.UTC)
	updated := time.Date(2023, 7, 3, 12, 0, 0, 0, time.UTC)
	if f.Published() == nil || !f.Published().Equal(published) {
		t.Errorf("Expected published %v, got: %v", published, f.Published())
	}
	if f.Updated() == nil || !f.Updated().Equal(updated) {
		t.Errorf("Expected updated %v, got: %v", updated, f.Updated())
	}
	if !f.Time().Equal(updated) {
		t.Errorf("Expected time to prefer lastBuildDate %v, got: %v", updated, f.Time())
	}
}

func TestRSSChannelStructures(t *testing.T) {
	f := parseFeed(t, newTestEngine(t, nil, nil), "http://example.com/feed.xml", rssFeed)

	cloud := f.Cloud()
	if cloud == nil {
		t.Fatal("Expected cloud, got nil")
	}
	if cloud.Domain != "rpc.example.com" || cloud.Port != 80 || cloud.Path != "/RPC2" {
		t.Errorf("Unexpected cloud: %+v", cloud)
	}
	if cloud.Protocol != "soap" {
		t.Errorf("Expected lowercased protocol 'soap', got: %s", cloud.Protocol)
	}
	if cloud.RegisterProcedure != "pingMe" {
		t.Errorf("Expected register procedure 'pingMe', got: %s", cloud.RegisterProcedure)
	}

	input := f.TextInput()
	if input == nil {
		t.Fatal("Expected text input, got nil")
	}
	if input.Name != "q" || input.Link != "http://example.com/search" {
		t.Errorf("Unexpected text input: %+v", input)
	}

	images := f.Images()
	if len(images) != 1 {
		t.Fatalf("Expected 1 image, got: %d", len(images))
	}
	if images[0].Href != "http://example.com/logo.png" || images[0].URL() != images[0].Href {
		t.Errorf("Expected resolved image href, got: %s", images[0].Href)
	}
	if images[0].Width != 88 || images[0].Height != 31 {
		t.Errorf("Expected 88x31 image, got: %dx%d", images[0].Width, images[0].Height)
	}

	categories := f.Categories()
	if len(categories) != 2 {
		t.Fatalf("Expected 2 categories, got: %d", len(categories))
	}
	if categories[0].Term != "Technology" || categories[0].Scheme != "http://example.com/cats" {
		t.Errorf("Unexpected first category: %+v", categories[0])
	}
	if categories[1].Term != "Programming" {
		t.Errorf("Expected second category 'Programming', got: %s", categories[1].Term)
	}
}

func TestRSSItems(t *testing.T) {
	settings := DefaultSettings()
	settings.StripCommentCount = true
	f := parseFeed(t, newTestEngine(t, settings, nil), "http://example.com/feed.xml", rssFeed)

	items := f.Entries()
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got: %d", len(items))
	}

	first := items[0]
	if first.Title() != "Episode 1" {
		t.Errorf("Expected comment count stripped from title, got: %s", first.Title())
	}
	if first.GUID() != "episode-1" || first.ID() != first.GUID() {
		t.Errorf("Expected guid 'episode-1', got: %s", first.GUID())
	}
	if first.Link() != "http://example.com/episodes/1" {
		t.Errorf("Expected link 'http://example.com/episodes/1', got: %s", first.Link())
	}
	if first.Comments() != "http://example.com/episodes/1#comments" {
		t.Errorf("Expected resolved comments URL, got: %s", first.Comments())
	}
	if first.Summary() != "First episode" {
		t.Errorf("Expected summary 'First episode', got: %s", first.Summary())
	}
	if first.Encoding() != f.Encoding() || first.FeedType() != f.FeedType() {
		t.Error("Expected item to share the feed's encoding and type")
	}

	author := first.Author()
	if author == nil || author.Name != "Jane Doe" || author.Email != "jane@example.com" {
		t.Errorf("Expected 'Jane Doe' <jane@example.com>, got: %+v", author)
	}

	second := items[1]
	author = second.Author()
	if author == nil || author.Name != "Jane Doe" || author.Email != "jane@example.com" {
		t.Errorf("Expected 'Jane Doe' <jane@example.com> from email-first form, got: %+v", author)
	}
	if second.Link() != "http://example.com/episodes/2.mp3" {
		t.Errorf("Expected enclosure to become the link, got: %s", second.Link())
	}

	enclosures := second.Enclosures()
	if len(enclosures) != 1 {
		t.Fatalf("Expected 1 enclosure, got: %d", len(enclosures))
	}
	if enclosures[0].FileSize != 5678 || enclosures[0].Type != "audio/mpeg" {
		t.Errorf("Unexpected enclosure: %+v", enclosures[0])
	}
	if enclosures[0].Expression != ExpressionFull {
		t.Errorf("Expected default expression 'full', got: %s", enclosures[0].Expression)
	}

	if !f.Podcast() {
		t.Error("Expected feed with only audio enclosures to be a podcast")
	}
	if f.Vidlog() {
		t.Error("Did not expect feed with audio enclosures to be a vidlog")
	}
}

func TestAtomFeed(t *testing.T) {
	f := parseFeed(t, newTestEngine(t, nil, nil), "", atomFeed)

	if f.FeedType() != "atom" || f.FeedVersion() != 1.0 {
		t.Errorf("Expected atom 1.0, got: %s %v", f.FeedType(), f.FeedVersion())
	}
	if f.Title() != "Atom &amp; Co" {
		t.Errorf("Expected escaped text title 'Atom &amp; Co', got: %s", f.Title())
	}
	if f.Subtitle() != "<em>News</em>" {
		t.Errorf("Expected html subtitle '<em>News</em>', got: %s", f.Subtitle())
	}
	if f.Href() != "http://example.com/atom.xml" {
		t.Errorf("Expected href from self link, got: %s", f.Href())
	}
	if f.Link() != "http://example.com/" {
		t.Errorf("Expected alternate link to win, got: %s", f.Link())
	}
	if f.GUID() != "urn:uuid:60a76c80-d399-11d9-b93c-0003939e0af6" {
		t.Errorf("Unexpected guid: %s", f.GUID())
	}
	if f.Icon() != "http://example.com/favicon.png" {
		t.Errorf("Expected resolved icon, got: %s", f.Icon())
	}

	links := f.Links()
	if len(links) != 3 {
		t.Fatalf("Expected 3 distinct links, got: %d", len(links))
	}
	if links[0].Rel != "alternate" {
		t.Errorf("Expected Atom link without rel to be an alternate, got: %s", links[0].Rel)
	}
	if license := f.License(); license == nil || license.Href != "http://creativecommons.org/licenses/by/4.0/" {
		t.Errorf("Expected license link, got: %+v", license)
	}

	author := f.Author()
	if author == nil {
		t.Fatal("Expected author, got nil")
	}
	if author.Name != "Jane" || author.Email != "jane@example.com" {
		t.Errorf("Expected structured author, got: %+v", author)
	}
	if author.Href != "http://example.com/about" || author.URL() != author.Href {
		t.Errorf("Expected resolved author URI, got: %s", author.Href)
	}

	updated := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if f.Updated() == nil || !f.Updated().Equal(updated) {
		t.Errorf("Expected updated %v, got: %v", updated, f.Updated())
	}
}

func TestAtomEntries(t *testing.T) {
	f := parseFeed(t, newTestEngine(t, nil, nil), "", atomFeed)

	entries := f.Entries()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got: %d", len(entries))
	}

	first := entries[0]
	if first.Title() != "<b>Bold</b>" {
		t.Errorf("Expected html title '<b>Bold</b>', got: %s", first.Title())
	}
	if first.Link() != "http://example.com/posts/1" {
		t.Errorf("Expected alternate link to outrank the enclosure, got: %s", first.Link())
	}
	content := first.Content()
	if !strings.Contains(content, "<p>Hi <b>there</b></p>") || strings.HasPrefix(content, "<div") {
		t.Errorf("Expected unwrapped xhtml content, got: %s", content)
	}

	enclosures := first.Enclosures()
	if len(enclosures) != 1 || enclosures[0].Href != "http://example.com/1.mp3" || enclosures[0].FileSize != 100 {
		t.Errorf("Expected Atom enclosure link, got: %+v", enclosures)
	}

	second := entries[1]
	if second.GUID() != "orig-2" {
		t.Errorf("Expected original id 'orig-2', got: %s", second.GUID())
	}
	if second.Title() != "Second &amp; last" {
		t.Errorf("Expected escaped title, got: %s", second.Title())
	}
	if second.Summary() != "Plain summary" {
		t.Errorf("Expected summary 'Plain summary', got: %s", second.Summary())
	}
	if second.Link() != "" {
		t.Errorf("Expected no link, got: %s", second.Link())
	}
}

func TestMemoizationAndSetters(t *testing.T) {
	f := parseFeed(t, newTestEngine(t, nil, nil), "http://example.com/feed.xml", `<rss version="2.0"><channel><title>Original</title></channel></rss>`)

	if f.Title() != f.Title() {
		t.Error("Expected repeated reads to agree")
	}

	first := f.Time()
	time.Sleep(2 * time.Millisecond)
	if !f.Time().Equal(first) {
		t.Errorf("Expected fallback time to be memoized, got %v then %v", first, f.Time())
	}

	f.SetTitle("Renamed")
	if f.Title() != "Renamed" {
		t.Errorf("Expected setter to override title, got: %s", f.Title())
	}

	f.SetTimeToLive(DefaultMaxTTL * 2)
	if f.TimeToLive() != DefaultMaxTTL {
		t.Errorf("Expected setter to clamp TTL to %d, got: %d", DefaultMaxTTL, f.TimeToLive())
	}

	f.SetHref("HTTP://Example.com:80/other.xml")
	if f.Href() != "http://example.com/other.xml" {
		t.Errorf("Expected normalized href, got: %s", f.Href())
	}

	f.SetAuthorName("Someone")
	if f.Author() == nil || f.Author().Name != "Someone" {
		t.Errorf("Expected author name 'Someone', got: %+v", f.Author())
	}
}

func TestMissingFieldsUseDefaults(t *testing.T) {
	f := parseFeed(t, newTestEngine(t, nil, nil), "", `<rss version="2.0"><channel><pubDate>not a date</pubDate></channel></rss>`)

	if f.Title() != "" {
		t.Errorf("Expected empty title, got: %s", f.Title())
	}
	if f.Published() != nil {
		t.Errorf("Expected nil published for malformed date, got: %v", f.Published())
	}
	if f.Updated() != nil {
		t.Errorf("Expected nil updated, got: %v", f.Updated())
	}
	if time.Since(f.Time()) > time.Minute {
		t.Errorf("Expected time to fall back to now, got: %v", f.Time())
	}
	if f.Language() != "en-US" {
		t.Errorf("Expected default language 'en-US', got: %s", f.Language())
	}
	if f.TimeToLive() != DefaultTTL {
		t.Errorf("Expected default TTL %d, got: %d", DefaultTTL, f.TimeToLive())
	}
	if f.Link() != "" || f.Href() != "" || f.Favicon() != "" {
		t.Errorf("Expected no link, href or favicon, got: %s %s %s", f.Link(), f.Href(), f.Favicon())
	}
	if f.Author() != nil || f.Cloud() != nil || f.TextInput() != nil || f.License() != nil {
		t.Error("Expected optional structures to be nil")
	}
	if len(f.Entries()) != 0 {
		t.Errorf("Expected no entries, got: %d", len(f.Entries()))
	}
	if f.Podcast() || f.Vidlog() {
		t.Error("Expected a feed without enclosures to be neither podcast nor vidlog")
	}
}

func TestFeedFallbacks(t *testing.T) {
	data := `<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
  <channel>
    <itunes:summary>Podcast summary</itunes:summary>
    <itunes:author>Pod Host</itunes:author>
    <managingEditor>editor@example.com</managingEditor>
    <guid>http://example.com/show</guid>
  </channel>
</rss>`
	f := parseFeed(t, newTestEngine(t, nil, nil), "", data)

	if f.Subtitle() != "Podcast summary" {
		t.Errorf("Expected subtitle to fall back to itunes:summary, got: %s", f.Subtitle())
	}

	author := f.Author()
	if author == nil {
		t.Fatal("Expected author, got nil")
	}
	if author.Email != "editor@example.com" {
		t.Errorf("Expected email 'editor@example.com', got: %s", author.Email)
	}
	if author.Name != "Pod Host" {
		t.Errorf("Expected name to fall back to itunes:author, got: %s", author.Name)
	}

	if f.Link() != "http://example.com/show" {
		t.Errorf("Expected http guid to serve as link, got: %s", f.Link())
	}
}

func TestEncodingFromHeaders(t *testing.T) {
	engine := newTestEngine(t, nil, nil)
	headers := map[string]string{"Content-Type": "application/rss+xml; charset=ISO-8859-1"}

	f, err := engine.Parse(context.Background(), "http://example.com/feed.xml", []byte(`<rss version="2.0"><channel/></rss>`), headers)
	if err != nil {
		t.Fatal(err)
	}
	if f.Encoding() != "iso-8859-1" {
		t.Errorf("Expected encoding 'iso-8859-1', got: %s", f.Encoding())
	}
	if f.HTTPHeaders()["content-type"] == "" {
		t.Error("Expected header keys to be lowercased")
	}
}

func TestEncodingFromDeclaration(t *testing.T) {
	data := `<?xml version="1.0" encoding="ISO-8859-1"?><rss version="2.0"><channel><title>Latin</title></channel></rss>`
	f := parseFeed(t, newTestEngine(t, nil, nil), "http://example.com/feed.xml", data)

	if f.Encoding() != "iso-8859-1" {
		t.Errorf("Expected encoding 'iso-8859-1', got: %s", f.Encoding())
	}
}

func TestCanonicalCharset(t *testing.T) {
	tests := map[string]string{
		"ISO-8859-1":  "iso-8859-1",
		"latin1":      "iso-8859-1",
		"ISO_8859-2":  "iso-8859-2",
		"iso-8859-15": "iso-8859-15",
		"UTF-8":       "utf-8",
		"Shift_JIS":   "shift_jis",
		"x-unheard":   "x-unheard",
		"":            "",
	}

	for input, expected := range tests {
		if got := canonicalCharset(input); got != expected {
			t.Errorf("Expected canonicalCharset(%q) = '%s', got: %s", input, expected, got)
		}
	}
}

func TestParseErrors(t *testing.T) {
	engine := newTestEngine(t, nil, nil)
	ctx := context.Background()

	if _, err := engine.Parse(ctx, "", []byte("  "), nil); !errors.Is(err, ErrNoDocument) {
		t.Errorf("Expected ErrNoDocument, got: %v", err)
	}

	jsonFeed := `{"version": "https://jsonfeed.org/version/1.1", "title": "JSON", "items": []}`
	if _, err := engine.Parse(ctx, "", []byte(jsonFeed), nil); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got: %v", err)
	}

	if _, err := engine.Parse(ctx, "", []byte("just some text"), nil); err == nil {
		t.Error("Expected error for a document without elements")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := engine.Parse(cancelled, "", []byte(rssFeed), nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got: %v", err)
	}
}

func TestNewEngineRejectsNamespaceConflict(t *testing.T) {
	settings := DefaultSettings()
	settings.Namespaces = map[string]string{"atom": "http://example.com/not-atom"}

	if _, err := NewEngine(settings, xmlns.Default(), nil, nil); !errors.Is(err, xmlns.ErrPrefixConflict) {
		t.Errorf("Expected ErrPrefixConflict, got: %v", err)
	}

	settings.Namespaces = map[string]string{"custom": "http://example.com/ns"}
	engine, err := NewEngine(settings, xmlns.Default(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	data := `<rss version="2.0" xmlns:c="http://example.com/ns"><channel><c:title>Custom</c:title></channel></rss>`
	f := parseFeed(t, engine, "", data)
	if value, ok := engine.value(f.roots(ownerRoots), "custom:title/text()"); !ok || value != "Custom" {
		t.Errorf("Expected extra namespace to resolve, got: %q, %v", value, ok)
	}
}
