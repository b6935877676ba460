package normalize

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EgoistSY/game-news-bot/internal/article"
	"github.com/EgoistSY/game-news-bot/internal/schedule"
)

func testNormalizer() *Normalizer {
	return New(schedule.Location())
}

func TestNormalizeBasicEntry(t *testing.T) {
	n := testNormalizer()
	item := &gofeed.Item{
		Title:       "  넥슨,   신작  발표  ",
		Link:        "https://news.google.com/rss/articles/abc",
		Description: "<p>넥슨이 <b>신작</b>을 공개했다.</p>",
		Published:   "Mon, 24 Aug 2026 03:00:00 +0000",
	}

	c, err := n.Normalize(item, article.TrackGeneral, "신작", "인벤")
	require.NoError(t, err)

	assert.Equal(t, "넥슨, 신작 발표", c.Title)
	assert.Equal(t, "넥슨이 신작 을 공개했다.", c.Snippet)
	assert.Equal(t, "인벤", c.Press)
	assert.Equal(t, "신작", c.Keyword)
	// 03:00 UTC is 12:00 KST.
	assert.Equal(t, 12, c.Published.Hour())
}

func TestNormalizeIdempotent(t *testing.T) {
	n := testNormalizer()
	item := &gofeed.Item{
		Title:       "넥슨 <b>매출</b>   급증 - 인벤",
		Link:        "https://news.google.com/rss/articles/xyz",
		Description: "<div>분기   매출이&nbsp;늘었다</div>",
		Published:   "Mon, 24 Aug 2026 03:00:00 +0000",
	}

	first, err := n.Normalize(item, article.TrackGeneral, "매출", "")
	require.NoError(t, err)
	second, err := n.Normalize(item, article.TrackGeneral, "매출", "")
	require.NoError(t, err)

	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, first.Snippet, second.Snippet)
	assert.Equal(t, first.Published, second.Published)

	// Cleaning the cleaned text changes nothing.
	assert.Equal(t, first.Title, CleanText(first.Title, 200))
	assert.Equal(t, first.Snippet, CleanText(first.Snippet, 300))
}

func TestNormalizeRejectsMissingDate(t *testing.T) {
	n := testNormalizer()
	item := &gofeed.Item{
		Title: "날짜 없는 기사",
		Link:  "https://example.com/a",
	}

	_, err := n.Normalize(item, article.TrackGeneral, "신작", "")
	assert.True(t, errors.Is(err, ErrNoDate))
}

func TestNormalizeRejectsEmptyTitleAndLink(t *testing.T) {
	n := testNormalizer()

	_, err := n.Normalize(&gofeed.Item{Title: " <b> </b> ", Link: "https://x.com/a"}, article.TrackGeneral, "", "")
	assert.True(t, errors.Is(err, ErrEmptyTitle))

	_, err = n.Normalize(&gofeed.Item{Title: "제목", Link: "  "}, article.TrackGeneral, "", "")
	assert.True(t, errors.Is(err, ErrEmptyLink))
}

func TestNormalizeNaiveDateAssumedUTC(t *testing.T) {
	n := testNormalizer()
	item := &gofeed.Item{
		Title:     "기사",
		Link:      "https://example.com/a",
		Published: "2026-08-24 01:30:00",
	}

	c, err := n.Normalize(item, article.TrackGeneral, "", "")
	require.NoError(t, err)
	// Naive timestamps are read as UTC, then converted: 01:30 UTC = 10:30 KST.
	assert.Equal(t, 10, c.Published.Hour())
	assert.Equal(t, 30, c.Published.Minute())
}

func TestNormalizeFallsBackToParsedTime(t *testing.T) {
	n := testNormalizer()
	parsed := time.Date(2026, 8, 24, 1, 0, 0, 0, time.UTC)
	item := &gofeed.Item{
		Title:           "기사",
		Link:            "https://example.com/a",
		PublishedParsed: &parsed,
	}

	c, err := n.Normalize(item, article.TrackGeneral, "", "")
	require.NoError(t, err)
	assert.Equal(t, 10, c.Published.Hour())
}

func TestNormalizeTruncatesLongFields(t *testing.T) {
	n := testNormalizer()
	item := &gofeed.Item{
		Title:       strings.Repeat("가", 500),
		Link:        "https://example.com/a",
		Description: strings.Repeat("나", 500),
		Published:   "Mon, 24 Aug 2026 03:00:00 +0000",
	}

	c, err := n.Normalize(item, article.TrackGeneral, "", "")
	require.NoError(t, err)
	assert.LessOrEqual(t, len([]rune(c.Title)), 200)
	assert.LessOrEqual(t, len([]rune(c.Snippet)), 300)
}

func TestNormalizeCollectsEmbeddedLinks(t *testing.T) {
	n := testNormalizer()
	item := &gofeed.Item{
		Title:       "기사",
		Link:        "https://news.google.com/rss/articles/abc",
		GUID:        "https://www.inven.co.kr/webzine/news/?idx=1234",
		Links:       []string{"https://news.google.com/rss/articles/abc", "https://www.gamemeca.com/news/view.php?gid=99"},
		Description: `기사 원문 <a href="https://www.thisisgame.com/webzine/news/nboard/4/?n=777">링크</a>`,
		Published:   "Mon, 24 Aug 2026 03:00:00 +0000",
	}

	c, err := n.Normalize(item, article.TrackGeneral, "", "")
	require.NoError(t, err)

	assert.Contains(t, c.Embedded, "https://www.inven.co.kr/webzine/news/?idx=1234")
	assert.Contains(t, c.Embedded, "https://www.gamemeca.com/news/view.php?gid=99")
	assert.Contains(t, c.Embedded, "https://www.thisisgame.com/webzine/news/nboard/4/?n=777")
	assert.NotContains(t, c.Embedded, "https://news.google.com/rss/articles/abc")
}

func TestPressFromTitleSuffix(t *testing.T) {
	n := testNormalizer()
	item := &gofeed.Item{
		Title:     "넥슨 신작 공개 - 디스이즈게임",
		Link:      "https://news.google.com/rss/articles/abc",
		Published: "Mon, 24 Aug 2026 03:00:00 +0000",
	}

	c, err := n.Normalize(item, article.TrackGeneral, "", "")
	require.NoError(t, err)
	assert.Equal(t, "디스이즈게임", c.Press)
}
