package normalize

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/EgoistSY/game-news-bot/internal/article"
)

const (
	titleMaxRunes   = 200
	snippetMaxRunes = 300
)

var (
	ErrEmptyTitle = errors.New("entry has no title")
	ErrEmptyLink  = errors.New("entry has no link")
	ErrNoDate     = errors.New("entry has no parseable timestamp")
)

var (
	tagRe  = regexp.MustCompile(`<[^>]*>`)
	urlRe  = regexp.MustCompile(`https?://[^\s"'<>)\]]+`)
)

// Date layouts tried against the raw Published string. Offset-bearing layouts
// first; the offsetless ones are interpreted as UTC.
var tzLayouts = []string{
	time.RFC1123Z,
	time.RFC3339,
	"2006-01-02T15:04:05-07:00",
	"Mon, 2 Jan 2006 15:04:05 -0700",
}

var naiveLayouts = []string{
	time.RFC1123,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"Mon, 2 Jan 2006 15:04:05",
}

// Normalizer turns raw feed entries into pipeline candidates, converting
// timestamps into the reporting timezone.
type Normalizer struct {
	loc *time.Location
}

func New(loc *time.Location) *Normalizer {
	return &Normalizer{loc: loc}
}

// Normalize builds a Candidate from one feed entry. An entry without a title,
// a link, or a usable timestamp is rejected — undated items are never
// defaulted into the window.
func (n *Normalizer) Normalize(item *gofeed.Item, track article.Track, keyword, press string) (*article.Candidate, error) {
	title := CleanText(item.Title, titleMaxRunes)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	link := strings.TrimSpace(item.Link)
	if link == "" {
		return nil, ErrEmptyLink
	}

	published, err := n.parseWhen(item)
	if err != nil {
		return nil, err
	}

	if press == "" {
		press = pressFromTitle(item.Title)
	}

	return &article.Candidate{
		Track:     track,
		Keyword:   keyword,
		Press:     press,
		Title:     title,
		RawLink:   link,
		Published: published,
		Snippet:   CleanText(item.Description, snippetMaxRunes),
		Embedded:  embeddedLinks(item),
	}, nil
}

// parseWhen resolves the publish time. Priority: the raw date string (with
// explicit offset if present, otherwise assumed UTC), then the pre-parsed
// time which gofeed produced, assumed UTC when nothing better is known.
func (n *Normalizer) parseWhen(item *gofeed.Item) (time.Time, error) {
	raw := strings.TrimSpace(item.Published)
	if raw == "" {
		raw = strings.TrimSpace(item.Updated)
	}

	if raw != "" {
		for _, layout := range tzLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.In(n.loc), nil
			}
		}
		for _, layout := range naiveLayouts {
			if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
				return t.In(n.loc), nil
			}
		}
	}

	parsed := item.PublishedParsed
	if parsed == nil {
		parsed = item.UpdatedParsed
	}
	if parsed != nil {
		return parsed.In(n.loc), nil
	}

	return time.Time{}, ErrNoDate
}

// CleanText strips HTML tags, collapses whitespace, and caps length. Stable
// under re-application.
func CleanText(s string, maxRunes int) string {
	s = tagRe.ReplaceAllString(s, " ")
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) > maxRunes {
		s = strings.TrimSpace(string(runes[:maxRunes]))
	}
	return s
}

// pressFromTitle guesses the publisher from the " - 매체명" suffix Google News
// appends to item titles. Best effort; empty when no suffix exists.
func pressFromTitle(title string) string {
	idx := strings.LastIndex(title, " - ")
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(title[idx+3:])
}

// embeddedLinks collects every URL the entry itself carries besides the main
// link: alternate links, GUID permalinks, and URLs inside the description.
// The resolver checks these before any network round trip.
func embeddedLinks(item *gofeed.Item) []string {
	seen := map[string]bool{}
	var out []string

	add := func(u string) {
		u = strings.TrimSpace(u)
		if u == "" || u == item.Link || seen[u] || !strings.HasPrefix(u, "http") {
			return
		}
		seen[u] = true
		out = append(out, u)
	}

	for _, l := range item.Links {
		add(l)
	}
	add(item.GUID)
	for _, m := range urlRe.FindAllString(item.Description, -1) {
		add(m)
	}
	if item.Content != "" {
		for _, m := range urlRe.FindAllString(item.Content, -1) {
			add(m)
		}
	}
	return out
}
