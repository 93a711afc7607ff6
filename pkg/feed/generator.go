package feed

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/umputun/alertview/pkg/domain"
)

// guidNamespace scopes synthetic guids of disaster messages
var guidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("alertview/disaster"))

// Generator creates RSS feeds from backend items
type Generator struct {
	baseURL    string
	loc        *time.Location
	summaryLen int
	now        func() time.Time
}

// NewGenerator creates a new feed generator. Dates without zone are read in loc.
func NewGenerator(baseURL string, loc *time.Location, summaryLen int) *Generator {
	if loc == nil {
		loc = time.UTC
	}
	return &Generator{
		baseURL:    strings.TrimRight(baseURL, "/"),
		loc:        loc,
		summaryLen: summaryLen,
		now:        time.Now,
	}
}

// DisasterRSS creates an RSS 2.0 feed of disaster messages
func (g *Generator) DisasterRSS(items []domain.DisasterMessage, query string) (string, error) {
	rssItems := make([]*RSSItem, 0, len(items))
	for _, m := range items {
		item := &RSSItem{
			Title:       m.DisplayCategory(),
			Link:        g.baseURL + "/disaster",
			GUID:        GUID{Value: DisasterGUID(m), IsPermaLink: "false"},
			Description: m.DisplayBody(),
			Categories:  []string{m.DisplayCategory()},
		}
		if ts, ok := m.Created(g.loc); ok {
			item.PubDate = ts.Format(time.RFC1123Z)
		}
		rssItems = append(rssItems, item)
	}
	return g.render(domain.DomainDisaster, "Disaster alerts", "Latest disaster alert messages", query, rssItems)
}

// NewsRSS creates an RSS 2.0 feed of news articles
func (g *Generator) NewsRSS(items []domain.News, query string) (string, error) {
	rssItems := make([]*RSSItem, 0, len(items))
	for _, n := range items {
		item := &RSSItem{
			Title:       n.DisplayTitle(),
			Link:        n.Link,
			GUID:        GUID{Value: n.Link},
			Description: n.Summary(g.summaryLen),
		}
		if n.Link == "" {
			item.GUID = GUID{Value: uuid.NewSHA1(guidNamespace, []byte(n.Title+"|"+n.CreatedAt)).String(), IsPermaLink: "false"}
		}
		if ts, ok := n.Created(g.loc); ok {
			item.PubDate = ts.Format(time.RFC1123Z)
		}
		rssItems = append(rssItems, item)
	}
	return g.render(domain.DomainNews, "Incident news", "Latest incident and accident news", query, rssItems)
}

// DisasterGUID returns a stable id for a message, the backend doesn't expose one
func DisasterGUID(m domain.DisasterMessage) string {
	return uuid.NewSHA1(guidNamespace, []byte(m.Category+"|"+m.CreatedAt+"|"+m.Body)).String()
}

func (g *Generator) render(d domain.Domain, title, description, query string, items []*RSSItem) (string, error) {
	selfLink := fmt.Sprintf("%s/rss/%s", g.baseURL, d)
	if q := strings.TrimSpace(query); q != "" {
		title = fmt.Sprintf("%s - %s", title, q)
		selfLink += "?q=" + url.QueryEscape(q)
	}

	feed := &RSS{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: &RSSChannel{
			Title:         title,
			Link:          fmt.Sprintf("%s/%s", g.baseURL, d),
			Description:   description,
			Language:      "ko",
			AtomLink:      &AtomLink{Href: selfLink, Rel: "self", Type: "application/rss+xml"},
			LastBuildDate: g.now().Format(time.RFC1123Z),
			Items:         items,
		},
	}

	output, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal RSS: %w", err)
	}

	return xml.Header + string(output), nil
}
