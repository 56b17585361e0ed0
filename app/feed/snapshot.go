package feed

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"
)

// Snapshot is a fully resolved, JSON-ready copy of a Feed.
type Snapshot struct {
	Href          string         `json:"href"`
	Link          string         `json:"link"`
	BaseURI       string         `json:"base_uri,omitempty"`
	GUID          string         `json:"guid,omitempty"`
	Title         string         `json:"title"`
	Subtitle      string         `json:"subtitle,omitempty"`
	Rights        string         `json:"rights,omitempty"`
	Generator     string         `json:"generator,omitempty"`
	Docs          string         `json:"docs,omitempty"`
	Language      string         `json:"language"`
	Encoding      string         `json:"encoding,omitempty"`
	FeedType      string         `json:"feed_type,omitempty"`
	FeedVersion   float64        `json:"feed_version,omitempty"`
	FeedDataType  string         `json:"feed_data_type,omitempty"`
	Time          time.Time      `json:"time"`
	Updated       *time.Time     `json:"updated,omitempty"`
	Published     *time.Time     `json:"published,omitempty"`
	LastRetrieved *time.Time     `json:"last_retrieved,omitempty"`
	TimeToLive    int            `json:"time_to_live"`
	Explicit      bool           `json:"explicit"`
	Podcast       bool           `json:"podcast"`
	Vidlog        bool           `json:"vidlog"`
	Icon          string         `json:"icon,omitempty"`
	Favicon       string         `json:"favicon,omitempty"`
	Author        *Author        `json:"author,omitempty"`
	Publisher     *Author        `json:"publisher,omitempty"`
	License       *Link          `json:"license,omitempty"`
	Cloud         *Cloud         `json:"cloud,omitempty"`
	TextInput     *TextInput     `json:"text_input,omitempty"`
	Links         []Link         `json:"links,omitempty"`
	Images        []Image        `json:"images,omitempty"`
	Categories    []Category     `json:"categories,omitempty"`
	Entries       []ItemSnapshot `json:"entries"`
}

type ItemSnapshot struct {
	GUID       string      `json:"guid,omitempty"`
	Title      string      `json:"title"`
	Link       string      `json:"link"`
	Content    string      `json:"content,omitempty"`
	Summary    string      `json:"summary,omitempty"`
	Rights     string      `json:"rights,omitempty"`
	Comments   string      `json:"comments,omitempty"`
	Time       time.Time   `json:"time"`
	Updated    *time.Time  `json:"updated,omitempty"`
	Published  *time.Time  `json:"published,omitempty"`
	Explicit   bool        `json:"explicit"`
	Author     *Author     `json:"author,omitempty"`
	Links      []Link      `json:"links,omitempty"`
	Categories []Category  `json:"categories,omitempty"`
	Enclosures []Enclosure `json:"enclosures,omitempty"`
}

// fieldSynonyms maps alternative field names onto the canonical ones.
var fieldSynonyms = map[string]string{
	"tagline":     "subtitle",
	"description": "subtitle",
	"abstract":    "subtitle",
	"copyright":   "rights",
	"ttl":         "time_to_live",
	"id":          "guid",
	"items":       "entries",
	"url":         "href",
}

// CanonicalField resolves a requested field name, including synonyms.
func CanonicalField(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := fieldSynonyms[name]; ok {
		return canonical
	}
	return name
}

func (f *Feed) Snapshot() *Snapshot {
	snapshot := &Snapshot{
		Href:          f.Href(),
		Link:          f.Link(),
		BaseURI:       f.BaseURI(),
		GUID:          f.GUID(),
		Title:         f.Title(),
		Subtitle:      f.Subtitle(),
		Rights:        f.Rights(),
		Generator:     f.Generator(),
		Docs:          f.Docs(),
		Language:      f.Language(),
		Encoding:      f.Encoding(),
		FeedType:      f.FeedType(),
		FeedVersion:   f.FeedVersion(),
		FeedDataType:  f.FeedDataType(),
		Time:          f.Time(),
		Updated:       f.Updated(),
		Published:     f.Published(),
		LastRetrieved: f.LastRetrieved(),
		TimeToLive:    f.TimeToLive(),
		Explicit:      f.Explicit(),
		Podcast:       f.Podcast(),
		Vidlog:        f.Vidlog(),
		Icon:          f.Icon(),
		Favicon:       f.Favicon(),
		Author:        f.Author(),
		Publisher:     f.Publisher(),
		License:       f.License(),
		Cloud:         f.Cloud(),
		TextInput:     f.TextInput(),
		Links:         f.Links(),
		Images:        f.Images(),
		Categories:    f.Categories(),
		Entries:       make([]ItemSnapshot, 0, len(f.Entries())),
	}

	for _, item := range f.Entries() {
		snapshot.Entries = append(snapshot.Entries, item.Snapshot())
	}

	return snapshot
}

func (i *Item) Snapshot() ItemSnapshot {
	return ItemSnapshot{
		GUID:       i.GUID(),
		Title:      i.Title(),
		Link:       i.Link(),
		Content:    i.Content(),
		Summary:    i.Summary(),
		Rights:     i.Rights(),
		Comments:   i.Comments(),
		Time:       i.Time(),
		Updated:    i.Updated(),
		Published:  i.Published(),
		Explicit:   i.Explicit(),
		Author:     i.Author(),
		Links:      i.Links(),
		Categories: i.Categories(),
		Enclosures: i.Enclosures(),
	}
}

// Field returns a single snapshot field by canonical name or synonym.
func (s *Snapshot) Field(name string) (any, bool) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, false
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, false
	}
	canonical := CanonicalField(name)
	if value, ok := fields[canonical]; ok {
		return value, true
	}
	// omitted because empty
	return nil, snapshotFields[canonical]
}

var snapshotFields = jsonFieldNames(reflect.TypeOf(Snapshot{}))

func jsonFieldNames(t reflect.Type) map[string]bool {
	names := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			names[name] = true
		}
	}
	return names
}
