package feed

import (
	"cmp"
	"maps"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/lysyi3m/rss-canon/app/cache"
	"github.com/lysyi3m/rss-canon/app/detect"
	"github.com/lysyi3m/rss-canon/app/urls"
	"github.com/lysyi3m/rss-canon/app/xmltree"
)

// Feed is the canonical view of one syndication document. Fields are
// resolved on first read and memoized for the lifetime of the value.
// A Feed is not safe for concurrent use.
type Feed struct {
	engine   *Engine
	document *xmltree.Document
	record   *cache.Record
	memo     map[string]any
}

func newFeed(engine *Engine, document *xmltree.Document, record *cache.Record) *Feed {
	if record == nil {
		record = &cache.Record{}
	}
	return &Feed{
		engine:   engine,
		document: document,
		record:   record,
		memo:     make(map[string]any),
	}
}

func memoized[T any](memo map[string]any, key string, compute func() T) T {
	if v, ok := memo[key]; ok {
		return v.(T)
	}
	v := compute()
	memo[key] = v
	return v
}

// writeThrough applies update to the bound record and persists it.
func (f *Feed) writeThrough(update func(r *cache.Record)) {
	update(f.record)
	f.engine.bridge.Save(f.record.Href, f.record)
}

func (f *Feed) roots(set rootSet) []*xmlquery.Node {
	if set == ownerAndDocumentRoots {
		return []*xmlquery.Node{f.ChannelNode(), f.RootNode()}
	}
	return []*xmlquery.Node{f.ChannelNode()}
}

func (f *Feed) textContext() textContext {
	return textContext{
		feedType: f.FeedType(),
		version:  f.FeedVersion(),
		base:     f.BaseURI(),
	}
}

func (f *Feed) stringField(name string) string {
	return memoized(f.memo, name, func() string {
		spec := feedFields[name]
		return f.engine.extractString(spec, f.roots(spec.Roots), f.textContext())
	})
}

func (f *Feed) timeField(name string) *time.Time {
	return memoized(f.memo, name, func() *time.Time {
		spec := feedFields[name]
		return f.engine.extractTime(spec, f.roots(spec.Roots))
	})
}

func (f *Feed) Document() *xmltree.Document {
	return f.document
}

func (f *Feed) RootNode() *xmlquery.Node {
	if f.document == nil {
		return nil
	}
	return f.document.Root()
}

// ChannelNode is the element holding feed-level metadata, or the root
// when the dialect has no separate channel.
func (f *Feed) ChannelNode() *xmlquery.Node {
	return memoized(f.memo, "channel_node", func() *xmlquery.Node {
		root := f.RootNode()
		if root == nil {
			return nil
		}
		if channel := f.engine.first([]*xmlquery.Node{root}, channelPaths); channel != nil {
			return channel
		}
		return root
	})
}

func (f *Feed) FeedType() string {
	return memoized(f.memo, "feed_type", func() string {
		return detect.FeedType(f.RootNode())
	})
}

// FeedVersion is zero when the version is unknown.
func (f *Feed) FeedVersion() float64 {
	return memoized(f.memo, "feed_version", func() float64 {
		return detect.FeedVersion(f.RootNode(), f.FeedType())
	})
}

func (f *Feed) FeedData() string {
	return f.record.FeedData
}

func (f *Feed) FeedDataType() string {
	return memoized(f.memo, "feed_data_type", func() string {
		if f.record.FeedDataType != "" {
			return f.record.FeedDataType
		}
		if f.record.FeedData == "" {
			return ""
		}
		dataType := detect.DataType([]byte(f.record.FeedData))
		f.writeThrough(func(r *cache.Record) { r.FeedDataType = dataType })
		return dataType
	})
}

func (f *Feed) HTTPHeaders() map[string]string {
	if f.record.HTTPHeaders == nil {
		return map[string]string{}
	}
	return maps.Clone(f.record.HTTPHeaders)
}

func (f *Feed) SetHTTPHeaders(headers map[string]string) {
	normalized := make(map[string]string, len(headers))
	for key, value := range headers {
		normalized[strings.ToLower(key)] = value
	}
	delete(f.memo, "encoding")
	f.writeThrough(func(r *cache.Record) { r.HTTPHeaders = normalized })
}

func (f *Feed) LastRetrieved() *time.Time {
	return f.record.LastRetrieved
}

func (f *Feed) SetLastRetrieved(t time.Time) {
	t = t.UTC()
	f.writeThrough(func(r *cache.Record) { r.LastRetrieved = &t })
}

// Encoding prefers the charset of the content-type header over the XML
// declaration.
func (f *Feed) Encoding() string {
	return memoized(f.memo, "encoding", func() string {
		if charset := headerCharset(f.record.HTTPHeaders); charset != "" {
			return canonicalCharset(charset)
		}
		if f.document == nil {
			return ""
		}
		return cmp.Or(canonicalCharset(f.document.Encoding()), "utf-8")
	})
}

// Href is the feed's own URL: an explicit value, the cached one, or the
// document's rel=self link.
func (f *Feed) Href() string {
	return memoized(f.memo, "href", func() string {
		if f.record.Href != "" {
			return f.record.Href
		}
		href := f.selfHref()
		if href != "" {
			f.writeThrough(func(r *cache.Record) { r.Href = href })
		}
		return href
	})
}

func (f *Feed) SetHref(href string) {
	href = urls.Normalize(href)
	f.memo["href"] = href
	delete(f.memo, "base_uri")
	f.writeThrough(func(r *cache.Record) { r.Href = href })
}

func (f *Feed) URL() string { return f.Href() }

// selfHref only honours xml:base, since BaseURI itself falls back to Href.
func (f *Feed) selfHref() string {
	channel := f.ChannelNode()
	if channel == nil {
		return ""
	}
	base := urls.ResolveChain("", xmltree.BaseChain(channel))
	for _, node := range f.engine.all(f.roots(ownerRoots), linkPaths) {
		link := f.engine.parseLink(node, base)
		if link.Rel == "self" && link.Href != "" {
			return urls.Normalize(link.Href)
		}
	}
	return ""
}

// BaseURI is the xml:base in scope for the channel, resolved against
// Href, or Href itself.
func (f *Feed) BaseURI() string {
	return memoized(f.memo, "base_uri", func() string {
		return urls.ResolveChain(f.Href(), xmltree.BaseChain(f.ChannelNode()))
	})
}

func (f *Feed) Title() string {
	return memoized(f.memo, "title", func() string {
		if f.record.Title != "" {
			return f.record.Title
		}
		spec := feedFields["title"]
		title := f.engine.extractString(spec, f.roots(spec.Roots), f.textContext())
		if title != "" {
			f.writeThrough(func(r *cache.Record) { r.Title = title })
		}
		return title
	})
}

func (f *Feed) SetTitle(title string) {
	f.memo["title"] = title
	f.writeThrough(func(r *cache.Record) { r.Title = title })
}

func (f *Feed) Subtitle() string {
	return memoized(f.memo, "subtitle", func() string {
		spec := feedFields["subtitle"]
		subtitle := f.engine.extractString(spec, f.roots(spec.Roots), f.textContext())
		return cmp.Or(subtitle, f.ItunesSummary(), f.ItunesSubtitle())
	})
}

func (f *Feed) SetSubtitle(subtitle string) {
	f.memo["subtitle"] = subtitle
}

func (f *Feed) Tagline() string     { return f.Subtitle() }
func (f *Feed) Description() string { return f.Subtitle() }
func (f *Feed) Abstract() string    { return f.Subtitle() }

func (f *Feed) ItunesSummary() string  { return f.stringField("itunes_summary") }
func (f *Feed) ItunesSubtitle() string { return f.stringField("itunes_subtitle") }
func (f *Feed) ItunesAuthor() string   { return f.stringField("itunes_author") }
func (f *Feed) MediaText() string      { return f.stringField("media_text") }

// Time is the best available timestamp and falls back to now.
func (f *Feed) Time() time.Time {
	return memoized(f.memo, "time", func() time.Time {
		spec := feedFields["time"]
		if t := f.engine.extractTime(spec, f.roots(spec.Roots)); t != nil {
			return *t
		}
		return time.Now().UTC()
	})
}

func (f *Feed) SetTime(t time.Time) {
	f.memo["time"] = t.UTC()
}

func (f *Feed) Updated() *time.Time   { return f.timeField("updated") }
func (f *Feed) Published() *time.Time { return f.timeField("published") }

func (f *Feed) GUID() string { return f.stringField("guid") }

func (f *Feed) SetGUID(guid string) {
	f.memo["guid"] = guid
}

func (f *Feed) ID() string { return f.GUID() }

func (f *Feed) Language() string {
	return memoized(f.memo, "language", func() string {
		value, ok := f.engine.value(f.roots(ownerRoots), feedFields["language"].Paths...)
		if !ok || strings.TrimSpace(value) == "" {
			value, ok = f.engine.value([]*xmlquery.Node{f.RootNode()}, feedFields["document_language"].Paths...)
		}
		if !ok || strings.TrimSpace(value) == "" {
			value = f.engine.settings.DefaultLanguage
		}
		return normalizeLanguage(value)
	})
}

func (f *Feed) Explicit() bool {
	return memoized(f.memo, "explicit", func() bool {
		spec := feedFields["explicit"]
		return f.engine.extractBool(spec, f.roots(spec.Roots))
	})
}

func (f *Feed) Rights() string    { return f.stringField("rights") }
func (f *Feed) Copyright() string { return f.Rights() }
func (f *Feed) Generator() string { return f.stringField("generator") }
func (f *Feed) Docs() string      { return f.stringField("docs") }

func (f *Feed) Cloud() *Cloud {
	return memoized(f.memo, "cloud", func() *Cloud {
		node := f.engine.first(f.roots(ownerRoots), []string{"cloud"})
		if node == nil {
			return nil
		}
		return &Cloud{
			Domain:            f.engine.valueOf(node, "@domain"),
			Path:              f.engine.valueOf(node, "@path"),
			Port:              leadingInt(f.engine.valueOf(node, "@port")),
			Protocol:          strings.ToLower(f.engine.valueOf(node, "@protocol")),
			RegisterProcedure: f.engine.valueOf(node, "@registerProcedure"),
		}
	})
}

func (f *Feed) TextInput() *TextInput {
	return memoized(f.memo, "text_input", func() *TextInput {
		node := f.engine.first(f.roots(ownerRoots), []string{"textInput", "textinput"})
		if node == nil {
			return nil
		}
		return &TextInput{
			Title:       f.engine.valueOf(node, "title/text()"),
			Description: f.engine.valueOf(node, "description/text()"),
			Link:        urls.Resolve(f.engine.valueOf(node, "link/text()"), f.BaseURI()),
			Name:        f.engine.valueOf(node, "name/text()"),
		}
	})
}

func (f *Feed) Links() []Link {
	return memoized(f.memo, "links", func() []Link {
		base := f.BaseURI()
		var links []Link
		for _, node := range f.engine.all(f.roots(ownerRoots), linkPaths) {
			links = append(links, f.engine.parseLink(node, base))
		}
		return links
	})
}

// Link is the canonical content URL. A self link never wins over the
// channel's own about or guid reference.
func (f *Feed) Link() string {
	return memoized(f.memo, "link", func() string {
		if f.record.Link != "" {
			return f.record.Link
		}

		link := ""
		best, ok := bestLink(f.Links(), f.Href())
		fallback := f.linkFallback()
		switch {
		case ok && best.Rel == "self" && fallback != "":
			link = fallback
		case ok:
			link = best.Href
		default:
			link = fallback
		}

		link = urls.Resolve(link, f.BaseURI())
		if link != "" {
			f.writeThrough(func(r *cache.Record) { r.Link = link })
		}
		return link
	})
}

func (f *Feed) SetLink(link string) {
	link = urls.Normalize(link)
	f.memo["link"] = link
	delete(f.memo, "favicon")
	f.writeThrough(func(r *cache.Record) { r.Link = link })
}

func (f *Feed) linkFallback() string {
	if about, ok := f.engine.value(f.roots(ownerRoots), feedFields["about"].Paths...); ok && strings.TrimSpace(about) != "" {
		return strings.TrimSpace(about)
	}
	if guid := f.GUID(); strings.HasPrefix(guid, "http://") && urls.IsURI(guid) {
		return guid
	}
	return ""
}

func (f *Feed) Licenses() []Link {
	return memoized(f.memo, "licenses", func() []Link {
		var licenses []Link
		for _, link := range f.Links() {
			if link.Rel == "license" {
				licenses = append(licenses, link)
			}
		}
		return licenses
	})
}

func (f *Feed) License() *Link {
	if licenses := f.Licenses(); len(licenses) > 0 {
		license := licenses[0]
		return &license
	}
	return nil
}

func (f *Feed) Images() []Image {
	return memoized(f.memo, "images", func() []Image {
		base := f.BaseURI()
		var images []Image
		nodes := f.engine.all(f.roots(ownerRoots), []string{"image", "logo", "apple-wallpapers:image", "imageUrl"})
		for _, node := range nodes {
			images = append(images, Image{
				Title:       f.engine.valueOf(node, "title/text()"),
				Description: f.engine.valueOf(node, "description/text()"),
				Href:        urls.Resolve(f.engine.valueOf(node, "url/text()", "@rdf:resource", "@href", "text()"), base),
				Link:        urls.Resolve(f.engine.valueOf(node, "link/text()"), base),
				Width:       leadingInt(f.engine.valueOf(node, "width/text()")),
				Height:      leadingInt(f.engine.valueOf(node, "height/text()")),
				Style:       f.engine.valueOf(node, "style/text()", "@style"),
			})
		}
		for _, link := range f.Links() {
			if strings.HasPrefix(strings.ToLower(link.Type), "image") && link.Href != "" {
				images = append(images, Image{Title: link.Title, Href: link.Href})
			}
		}
		return images
	})
}

func (f *Feed) Categories() []Category {
	return memoized(f.memo, "categories", func() []Category {
		return f.engine.parseCategories(f.roots(ownerRoots))
	})
}

func (f *Feed) Icon() string {
	return memoized(f.memo, "icon", func() string {
		node := f.engine.first(f.roots(ownerRoots), []string{
			"atom10:icon", "atom:icon", "link[@rel='icon']", "link[@rel='shortcut icon']",
			"link[@type='image/x-icon']", "icon", "logo[@style='icon']", "LOGO[@STYLE='ICON']",
		})
		if node == nil {
			return ""
		}
		return urls.Resolve(f.engine.valueOf(node, "@atom10:href", "@atom03:href", "@atom:href", "@href", "text()"), f.BaseURI())
	})
}

// Favicon guesses /favicon.ico on the host of Link, or of Href.
func (f *Feed) Favicon() string {
	return memoized(f.memo, "favicon", func() string {
		return urls.Favicon(cmp.Or(f.Link(), f.Href()))
	})
}

func (f *Feed) Author() *Author {
	return memoized(f.memo, "author", func() *Author {
		node := f.engine.first(f.roots(ownerRoots), authorPaths)
		if node == nil {
			return nil
		}
		author := f.engine.parseAuthor(node, f.BaseURI())
		if f.engine.valueOf(node, "@gr:unknown-author") == "true" && author.Name == "(author unknown)" {
			author.Name = ""
		}
		author.Name = cmp.Or(author.Name, f.ItunesAuthor())
		return &author
	})
}

func (f *Feed) SetAuthor(author Author) {
	f.memo["author"] = &author
}

// SetAuthorName keeps any resolved email and href.
func (f *Feed) SetAuthorName(name string) {
	author := Author{}
	if current := f.Author(); current != nil {
		author = *current
	}
	author.Name = name
	f.memo["author"] = &author
}

func (f *Feed) Publisher() *Author {
	return memoized(f.memo, "publisher", func() *Author {
		node := f.engine.first(f.roots(ownerRoots), []string{"webMaster", "dc:publisher"})
		if node == nil {
			return nil
		}
		publisher := f.engine.parseAuthor(node, f.BaseURI())
		return &publisher
	})
}

func (f *Feed) SetPublisher(publisher Author) {
	f.memo["publisher"] = &publisher
}

// Entries returns the feed's items in document order.
func (f *Feed) Entries() []*Item {
	return memoized(f.memo, "entries", func() []*Item {
		var items []*Item
		for _, node := range f.engine.all(f.roots(ownerAndDocumentRoots), itemPaths) {
			items = append(items, newItem(f, node))
		}
		return items
	})
}

func (f *Feed) Items() []*Item { return f.Entries() }

// Vidlog reports whether every enclosure of every item is video. A feed
// without enclosures is not a vidlog.
func (f *Feed) Vidlog() bool {
	return memoized(f.memo, "vidlog", func() bool {
		return f.allEnclosures(Enclosure.IsVideo)
	})
}

func (f *Feed) Podcast() bool {
	return memoized(f.memo, "podcast", func() bool {
		return f.allEnclosures(Enclosure.IsAudio)
	})
}

func (f *Feed) allEnclosures(match func(Enclosure) bool) bool {
	seen := false
	for _, item := range f.Entries() {
		for _, enclosure := range item.Enclosures() {
			if !match(enclosure) {
				return false
			}
			seen = true
		}
	}
	return seen
}

// TimeToLive is in seconds and always within [0, max_ttl].
func (f *Feed) TimeToLive() int {
	return memoized(f.memo, "time_to_live", func() int {
		if f.record.TimeToLive != nil {
			return clampTTL(*f.record.TimeToLive, f.engine.settings.MaxTTL)
		}
		ttl := f.resolveTTL()
		f.writeThrough(func(r *cache.Record) { r.TimeToLive = &ttl })
		return ttl
	})
}

func (f *Feed) SetTimeToLive(seconds int) {
	ttl := clampTTL(seconds, f.engine.settings.MaxTTL)
	f.memo["time_to_live"] = ttl
	f.writeThrough(func(r *cache.Record) { r.TimeToLive = &ttl })
}

func (f *Feed) TTL() int { return f.TimeToLive() }

func (e *Engine) parseCategories(roots []*xmlquery.Node) []Category {
	var categories []Category
	for _, node := range e.all(roots, categoryPaths) {
		category := Category{
			Term:   e.valueOf(node, "@term", "term/text()", "text()"),
			Scheme: e.valueOf(node, "@scheme", "@domain"),
			Label:  e.valueOf(node, "@label"),
		}
		if category.Term == "" && category.Label == "" {
			continue
		}
		categories = append(categories, category)
	}
	return categories
}
