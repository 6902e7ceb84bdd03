package ingest

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/david/syncscout/internal/models"
)

// Brief is one opportunity read from a listing, with the link it came from.
type Brief struct {
	Opportunity models.Opportunity
	Link        string
}

// ParseListing extracts briefs from a fetched listing page. Entries without
// a title are skipped.
func ParseListing(doc *Document, feed FeedConfig, now time.Time) ([]Brief, error) {
	page, err := goquery.NewDocumentFromReader(bytes.NewReader(doc.Body))
	if err != nil {
		return nil, fmt.Errorf("parse listing %s: %w", feed.ID, err)
	}
	category, err := models.ParseCategory(feed.Category)
	if err != nil {
		return nil, err
	}
	base, _ := url.Parse(doc.URL)

	sel := feed.Selectors
	source := feed.Source
	if source == "" {
		source = feed.Name
	}

	var briefs []Brief
	page.Find(sel.Container).Each(func(_ int, s *goquery.Selection) {
		title := field(s, sel.Title)
		if title == "" {
			return
		}
		link := resolveLink(base, linkOf(s, sel))

		opp := models.Opportunity{
			ID:          briefID(feed.ID, link, title),
			Title:       title,
			Category:    category,
			Source:      source,
			Description: field(s, sel.Description),
			Genres:      splitList(field(s, sel.Genres)),
			Moods:       splitList(field(s, sel.Moods)),
			Budget:      field(s, sel.Budget),
			Status:      models.StatusAvailable,
			Priority:    "medium",
			Contact:     link,
			CreatedAt:   now.UTC(),
		}
		if d, ok := parseDeadline(field(s, sel.Deadline)); ok {
			opp.Deadline = d
			if d.Sub(now) <= 7*24*time.Hour {
				opp.Priority = "high"
			}
		}
		briefs = append(briefs, Brief{Opportunity: opp, Link: link})
	})
	return briefs, nil
}

func field(s *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.Join(strings.Fields(s.Find(selector).First().Text()), " ")
}

func linkOf(s *goquery.Selection, sel SelectorConfig) string {
	attr := sel.LinkAttr
	if attr == "" {
		attr = "href"
	}
	target := s.Find("a").First()
	if sel.Link != "" {
		target = s.Find(sel.Link).First()
	}
	v, _ := target.Attr(attr)
	return strings.TrimSpace(v)
}

func resolveLink(base *url.URL, href string) string {
	if href == "" || base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// briefID is stable across imports so a brief is only added once.
func briefID(feedID, link, title string) string {
	key := link
	if key == "" {
		key = strings.ToLower(title)
	}
	return feedID + "-" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(feedID+"|"+key)).String()[:8]
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '|' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
