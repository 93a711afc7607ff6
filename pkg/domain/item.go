package domain

import (
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/araddon/dateparse"
	"github.com/microcosm-cc/bluemonday"
)

// placeholders rendered in place of missing item fields
const (
	NoDate     = "no date"
	NoTitle    = "no title"
	NoContent  = "no content"
	NoCategory = "unknown type"
)

// Domain names one of the data categories served by the backend
type Domain string

const (
	DomainNews     Domain = "news"
	DomainDisaster Domain = "disaster"
)

// Valid reports whether d is a known domain
func (d Domain) Valid() bool {
	return d == DomainNews || d == DomainDisaster
}

// News represents a news article as returned by the backend
type News struct {
	Title     string `json:"ynaTtl"`
	Body      string `json:"ynaCn"`
	CreatedAt string `json:"crtDt"`
	Link      string `json:"newsLink"`
}

// DisasterMessage represents a disaster alert message as returned by the backend
type DisasterMessage struct {
	Category  string `json:"dstSeNm"`
	Body      string `json:"msgCn"`
	CreatedAt string `json:"crtDt"`
}

// DisplayTitle returns the title or a placeholder
func (n News) DisplayTitle() string {
	return orDefault(n.Title, NoTitle)
}

// Summary returns the body as plain text cut to maxRunes runes
func (n News) Summary(maxRunes int) string {
	return Summary(n.Body, maxRunes)
}

// Created returns parsed creation time, ok is false for absent or unparseable dates
func (n News) Created(loc *time.Location) (time.Time, bool) {
	return parseDate(n.CreatedAt, loc)
}

// DisplayCategory returns the category or a placeholder
func (m DisasterMessage) DisplayCategory() string {
	return orDefault(m.Category, NoCategory)
}

// DisplayBody returns the message body or a placeholder
func (m DisasterMessage) DisplayBody() string {
	return orDefault(PlainText(m.Body), NoContent)
}

// Created returns parsed creation time, ok is false for absent or unparseable dates
func (m DisasterMessage) Created(loc *time.Location) (time.Time, bool) {
	return parseDate(m.CreatedAt, loc)
}

var stripPolicy = bluemonday.StrictPolicy()

// PlainText strips any markup from backend text and trims surrounding whitespace.
// The sanitizer escapes entities, they are unescaped back since templates escape on output.
func PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(s)))
}

// Summary returns plain text cut to maxRunes runes followed by "...", or a placeholder for empty text
func Summary(s string, maxRunes int) string {
	txt := PlainText(s)
	if txt == "" {
		return NoContent
	}
	if maxRunes <= 0 || utf8.RuneCountInString(txt) <= maxRunes {
		return txt + "..."
	}
	return string([]rune(txt)[:maxRunes]) + "..."
}

// FormatDate renders a backend date string with the given layout, or NoDate if it can't be parsed
func FormatDate(s string, loc *time.Location, layout string) string {
	t, ok := parseDate(s, loc)
	if !ok {
		return NoDate
	}
	return t.Format(layout)
}

func parseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t.In(loc), true
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
