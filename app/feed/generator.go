package feed

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"
)

// Generator renders a Snapshot back into RSS 2.0 using the canonical
// field values.
type Generator struct {
	version string
}

func NewGenerator(version string) *Generator {
	return &Generator{version: cmp.Or(version, "dev")}
}

func (g *Generator) Run(s *Snapshot) (string, error) {
	if s == nil {
		return "", fmt.Errorf("nil snapshot")
	}

	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", s.Title, 4)
	g.writeElement(&buf, "link", s.Link, 4)
	g.writeElement(&buf, "description", cmp.Or(s.Subtitle, s.Title), 4)

	if s.Href != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(s.Href)))
	}

	if s.Published != nil {
		g.writeElement(&buf, "pubDate", s.Published.Format(time.RFC1123Z), 4)
	}
	if !s.Time.IsZero() {
		g.writeElement(&buf, "lastBuildDate", s.Time.Format(time.RFC1123Z), 4)
	}

	g.writeElement(&buf, "generator", fmt.Sprintf("RSS-Canon/%s", g.version), 4)
	g.writeElement(&buf, "language", s.Language, 4)
	g.writeElement(&buf, "copyright", s.Rights, 4)
	g.writeElement(&buf, "docs", s.Docs, 4)
	if s.TimeToLive > 0 {
		g.writeElement(&buf, "ttl", fmt.Sprint(s.TimeToLive/60), 4)
	}

	for _, category := range s.Categories {
		g.writeCategory(&buf, category, 4)
	}

	if image := g.channelImage(s); image != nil {
		buf.WriteString("    <image>\n")
		g.writeElement(&buf, "url", image.Href, 6)
		g.writeElement(&buf, "title", cmp.Or(image.Title, s.Title), 6)
		g.writeElement(&buf, "link", cmp.Or(image.Link, s.Link), 6)
		buf.WriteString("    </image>\n")
	}

	for _, item := range s.Entries {
		g.writeItem(&buf, item)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) channelImage(s *Snapshot) *Image {
	for _, image := range s.Images {
		if image.Href != "" {
			return &image
		}
	}
	if s.Icon != "" {
		return &Image{Href: s.Icon}
	}
	return nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, item ItemSnapshot) {
	buf.WriteString("    <item>\n")

	if item.GUID != "" {
		buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", g.isURL(item.GUID)))
		xml.EscapeText(buf, []byte(item.GUID))
		buf.WriteString("</guid>\n")
	}

	g.writeElement(buf, "title", item.Title, 6)
	g.writeElement(buf, "link", item.Link, 6)
	g.writeElement(buf, "description", cmp.Or(item.Summary, item.Content), 6)

	if item.Content != "" && item.Content != item.Summary {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.WriteString(strings.ReplaceAll(item.Content, "]]>", "]]]]><![CDATA[>"))
		buf.WriteString("]]></content:encoded>\n")
	}

	published := item.Time
	if item.Published != nil {
		published = *item.Published
	}
	if !published.IsZero() {
		g.writeElement(buf, "pubDate", published.Format(time.RFC1123Z), 6)
	}

	if item.Author != nil {
		g.writeElement(buf, "author", formatAuthor(*item.Author), 6)
	}
	g.writeElement(buf, "comments", item.Comments, 6)

	for _, category := range item.Categories {
		g.writeCategory(buf, category, 6)
	}

	// RSS 2.0 allows a single enclosure per item
	for _, enclosure := range item.Enclosures {
		if enclosure.Href == "" {
			continue
		}
		buf.WriteString(fmt.Sprintf("      <enclosure url=\"%s\" length=\"%d\" type=\"%s\" />\n",
			html.EscapeString(enclosure.Href),
			enclosure.FileSize,
			html.EscapeString(cmp.Or(enclosure.Type, "application/octet-stream"))))
		break
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeCategory(buf *bytes.Buffer, category Category, indent int) {
	if category.Term == "" {
		return
	}
	if category.Scheme == "" {
		g.writeElement(buf, "category", category.Term, indent)
		return
	}
	buf.WriteString(strings.Repeat(" ", indent))
	buf.WriteString(fmt.Sprintf("<category domain=\"%s\">", html.EscapeString(category.Scheme)))
	xml.EscapeText(buf, []byte(category.Term))
	buf.WriteString("</category>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	buf.WriteString(strings.Repeat(" ", indent))
	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// formatAuthor uses the RSS "email (name)" form when both are known.
func formatAuthor(a Author) string {
	switch {
	case a.Email != "" && a.Name != "":
		return fmt.Sprintf("%s (%s)", a.Email, a.Name)
	case a.Email != "":
		return a.Email
	default:
		return a.Name
	}
}
