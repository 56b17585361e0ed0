package feed

import (
	"strings"
)

// Value objects. Every type with an href exposes the same value through
// URL(); there is no second field to drift.

type Link struct {
	Href     string `json:"href"`
	HrefLang string `json:"hreflang,omitempty"`
	Rel      string `json:"rel,omitempty"`
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Length   int64  `json:"length,omitempty"`
}

func (l Link) URL() string { return l.Href }

type Author struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Href  string `json:"href,omitempty"`
	Raw   string `json:"raw,omitempty"`
}

func (a Author) URL() string { return a.Href }

func (a Author) IsZero() bool {
	return a.Name == "" && a.Email == "" && a.Href == ""
}

type Category struct {
	Term   string `json:"term"`
	Scheme string `json:"scheme,omitempty"`
	Label  string `json:"label,omitempty"`
}

type Image struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Href        string `json:"href,omitempty"`
	Link        string `json:"link,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	Style       string `json:"style,omitempty"`
}

func (i Image) URL() string { return i.Href }

type TextInput struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Link        string `json:"link,omitempty"`
	Name        string `json:"name,omitempty"`
}

type Cloud struct {
	Domain            string `json:"domain,omitempty"`
	Path              string `json:"path,omitempty"`
	Port              int    `json:"port,omitempty"`
	Protocol          string `json:"protocol,omitempty"`
	RegisterProcedure string `json:"register_procedure,omitempty"`
}

const (
	ExpressionSample  = "sample"
	ExpressionFull    = "full"
	ExpressionNonstop = "nonstop"
)

var (
	audioExtensions = []string{"mp3", "m4a", "m4p", "wav", "ogg", "wma"}
	videoExtensions = []string{"mov", "mp4", "avi", "wmv", "asf"}
)

type Enclosure struct {
	Href       string `json:"href"`
	Type       string `json:"type,omitempty"`
	FileSize   int64  `json:"file_size,omitempty"`
	Duration   int    `json:"duration,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Bitrate    string `json:"bitrate,omitempty"`
	Framerate  string `json:"framerate,omitempty"`
	Thumbnail  string `json:"thumbnail,omitempty"`
	IsDefault  bool   `json:"is_default,omitempty"`
	Explicit   bool   `json:"explicit,omitempty"`
	Expression string `json:"expression"`
}

func (e Enclosure) URL() string { return e.Href }

// NormalizeExpression maps a media expression onto sample, full or
// nonstop. Anything else is full.
func NormalizeExpression(value string) string {
	switch v := strings.ToLower(strings.TrimSpace(value)); v {
	case ExpressionSample, ExpressionNonstop:
		return v
	default:
		return ExpressionFull
	}
}

func (e Enclosure) IsAudio() bool {
	return strings.HasPrefix(strings.ToLower(e.Type), "audio") || hasExtension(e.Href, audioExtensions)
}

func (e Enclosure) IsVideo() bool {
	mediaType := strings.ToLower(e.Type)
	return strings.HasPrefix(mediaType, "video") || mediaType == "image/mov" || hasExtension(e.Href, videoExtensions)
}

func hasExtension(href string, extensions []string) bool {
	href = strings.ToLower(href)
	for _, ext := range extensions {
		if strings.HasSuffix(href, ext) {
			return true
		}
	}
	return false
}
