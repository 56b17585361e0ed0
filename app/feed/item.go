package feed

import (
	"cmp"
	"regexp"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/lysyi3m/rss-canon/app/urls"
	"github.com/lysyi3m/rss-canon/app/xmltree"
)

var commentCount = regexp.MustCompile(`\[\d*\]\s*$`)

var (
	rssEnclosurePaths  = []string{"enclosure"}
	atomEnclosurePaths = []string{
		"atom10:link[@rel='enclosure']", "atom03:link[@rel='enclosure']",
		"atom:link[@rel='enclosure']", "link[@rel='enclosure']",
	}
	mediaContentPaths = []string{
		"media:content", "mrss:content", "media:group/media:content", "mrss:group/mrss:content",
	}
	mediaThumbnailPaths = []string{
		"media:thumbnail/@url", "mrss:thumbnail/@url",
		"../media:thumbnail/@url", "../mrss:thumbnail/@url",
	}
)

// Item is one entry of a Feed. Dialect, encoding and document come from
// the owning feed and are never recomputed per item.
type Item struct {
	feed *Feed
	node *xmlquery.Node
	memo map[string]any
}

func newItem(feed *Feed, node *xmlquery.Node) *Item {
	return &Item{
		feed: feed,
		node: node,
		memo: make(map[string]any),
	}
}

func (i *Item) Feed() *Feed                 { return i.feed }
func (i *Item) Node() *xmlquery.Node        { return i.node }
func (i *Item) Document() *xmltree.Document { return i.feed.Document() }
func (i *Item) FeedType() string            { return i.feed.FeedType() }
func (i *Item) FeedVersion() float64        { return i.feed.FeedVersion() }
func (i *Item) FeedDataType() string        { return i.feed.FeedDataType() }
func (i *Item) Encoding() string            { return i.feed.Encoding() }
func (i *Item) roots() []*xmlquery.Node     { return []*xmlquery.Node{i.node} }
func (i *Item) engine() *Engine             { return i.feed.engine }
func (i *Item) spec(name string) fieldSpec  { return itemFields[name] }

func (i *Item) textContext() textContext {
	return textContext{
		feedType: i.FeedType(),
		version:  i.FeedVersion(),
		base:     i.BaseURI(),
	}
}

func (i *Item) stringField(name string) string {
	return memoized(i.memo, name, func() string {
		return i.engine().extractString(i.spec(name), i.roots(), i.textContext())
	})
}

func (i *Item) timeField(name string) *time.Time {
	return memoized(i.memo, name, func() *time.Time {
		return i.engine().extractTime(i.spec(name), i.roots())
	})
}

// BaseURI is the xml:base chain in scope for the item, resolved against
// the feed's href.
func (i *Item) BaseURI() string {
	return memoized(i.memo, "base_uri", func() string {
		return urls.ResolveChain(i.feed.Href(), xmltree.BaseChain(i.node))
	})
}

func (i *Item) GUID() string {
	return i.stringField("guid")
}

func (i *Item) SetGUID(guid string) {
	i.memo["guid"] = guid
}

func (i *Item) ID() string { return i.GUID() }

func (i *Item) Title() string {
	return memoized(i.memo, "title", func() string {
		title := i.engine().extractString(i.spec("title"), i.roots(), i.textContext())
		if i.engine().settings.StripCommentCount {
			title = strings.TrimSpace(commentCount.ReplaceAllString(title, ""))
		}
		return title
	})
}

func (i *Item) SetTitle(title string) {
	i.memo["title"] = title
}

func (i *Item) Content() string {
	return memoized(i.memo, "content", func() string {
		content := i.engine().extractString(i.spec("content"), i.roots(), i.textContext())
		return cmp.Or(content, i.MediaText(), i.ItunesSummary(), i.ItunesSubtitle())
	})
}

func (i *Item) SetContent(content string) {
	i.memo["content"] = content
}

func (i *Item) Summary() string {
	return memoized(i.memo, "summary", func() string {
		summary := i.engine().extractString(i.spec("summary"), i.roots(), i.textContext())
		return cmp.Or(summary, i.MediaText(), i.ItunesSummary(), i.ItunesSubtitle())
	})
}

func (i *Item) SetSummary(summary string) {
	i.memo["summary"] = summary
}

func (i *Item) Description() string { return i.Summary() }
func (i *Item) Abstract() string    { return i.Summary() }

func (i *Item) ItunesSummary() string  { return i.stringField("itunes_summary") }
func (i *Item) ItunesSubtitle() string { return i.stringField("itunes_subtitle") }
func (i *Item) ItunesAuthor() string   { return i.stringField("itunes_author") }
func (i *Item) MediaText() string      { return i.stringField("media_text") }
func (i *Item) Rights() string         { return i.stringField("rights") }
func (i *Item) Copyright() string      { return i.Rights() }
func (i *Item) Comments() string       { return i.stringField("comments") }

func (i *Item) Time() time.Time {
	return memoized(i.memo, "time", func() time.Time {
		if t := i.engine().extractTime(i.spec("time"), i.roots()); t != nil {
			return *t
		}
		return time.Now().UTC()
	})
}

func (i *Item) Updated() *time.Time   { return i.timeField("updated") }
func (i *Item) Published() *time.Time { return i.timeField("published") }

func (i *Item) Explicit() bool {
	return memoized(i.memo, "explicit", func() bool {
		return i.engine().extractBool(i.spec("explicit"), i.roots())
	})
}

func (i *Item) Author() *Author {
	return memoized(i.memo, "author", func() *Author {
		node := i.engine().first(i.roots(), authorPaths)
		if node == nil {
			if name := i.ItunesAuthor(); name != "" {
				return &Author{Name: name}
			}
			return nil
		}
		author := i.engine().parseAuthor(node, i.BaseURI())
		if i.engine().valueOf(node, "@gr:unknown-author") == "true" && author.Name == "(author unknown)" {
			author.Name = ""
		}
		author.Name = cmp.Or(author.Name, i.ItunesAuthor())
		return &author
	})
}

func (i *Item) Categories() []Category {
	return memoized(i.memo, "categories", func() []Category {
		return i.engine().parseCategories(i.roots())
	})
}

// Enclosures collects RSS enclosures, Atom enclosure links and Media RSS
// content. The first occurrence of an href wins.
func (i *Item) Enclosures() []Enclosure {
	return memoized(i.memo, "enclosures", func() []Enclosure {
		e := i.engine()
		base := i.BaseURI()
		explicit := i.Explicit()
		seen := make(map[string]bool)
		var enclosures []Enclosure

		add := func(enclosure Enclosure) {
			if enclosure.Href == "" || seen[enclosure.Href] {
				return
			}
			seen[enclosure.Href] = true
			enclosure.Explicit = explicit
			enclosures = append(enclosures, enclosure)
		}

		for _, node := range e.all(i.roots(), rssEnclosurePaths) {
			add(Enclosure{
				Href:       urls.Resolve(e.valueOf(node, "@url", "@href", "@rdf:resource"), base),
				Type:       e.valueOf(node, "@type"),
				FileSize:   int64(leadingInt(e.valueOf(node, "@length"))),
				Expression: ExpressionFull,
			})
		}

		for _, node := range e.all(i.roots(), atomEnclosurePaths) {
			add(Enclosure{
				Href:       urls.Resolve(e.valueOf(node, "@href"), base),
				Type:       e.valueOf(node, "@type"),
				FileSize:   int64(leadingInt(e.valueOf(node, "@length"))),
				Expression: ExpressionFull,
			})
		}

		for _, node := range e.all(i.roots(), mediaContentPaths) {
			add(Enclosure{
				Href:       urls.Resolve(e.valueOf(node, "@url"), base),
				Type:       e.valueOf(node, "@type"),
				FileSize:   int64(leadingInt(e.valueOf(node, "@fileSize"))),
				Duration:   leadingInt(e.valueOf(node, "@duration")),
				Width:      leadingInt(e.valueOf(node, "@width")),
				Height:     leadingInt(e.valueOf(node, "@height")),
				Bitrate:    e.valueOf(node, "@bitrate"),
				Framerate:  e.valueOf(node, "@framerate"),
				Thumbnail:  urls.Resolve(e.valueOf(node, mediaThumbnailPaths...), base),
				IsDefault:  booleanPattern.MatchString(e.valueOf(node, "@isDefault")),
				Expression: NormalizeExpression(e.valueOf(node, "@expression")),
			})
		}

		return enclosures
	})
}

// Links falls back to the first enclosure when the item has no links.
func (i *Item) Links() []Link {
	return memoized(i.memo, "links", func() []Link {
		base := i.BaseURI()
		var links []Link
		for _, node := range i.engine().all(i.roots(), linkPaths) {
			links = append(links, i.engine().parseLink(node, base))
		}
		if len(links) == 0 {
			if enclosures := i.Enclosures(); len(enclosures) > 0 {
				links = append(links, Link{Href: enclosures[0].Href, Type: enclosures[0].Type})
			}
		}
		return links
	})
}

// Link ranks the item's links against the feed's href.
func (i *Item) Link() string {
	return memoized(i.memo, "link", func() string {
		if best, ok := bestLink(i.Links(), i.feed.Href()); ok {
			return best.Href
		}
		if about, ok := i.engine().value(i.roots(), i.spec("about").Paths...); ok && strings.TrimSpace(about) != "" {
			return urls.Resolve(about, i.BaseURI())
		}
		if guid := i.GUID(); strings.HasPrefix(guid, "http://") && urls.IsURI(guid) {
			return urls.Normalize(guid)
		}
		return ""
	})
}

func (i *Item) SetLink(link string) {
	i.memo["link"] = urls.Normalize(link)
}
