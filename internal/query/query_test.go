package query

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EgoistSY/game-news-bot/internal/article"
	"github.com/EgoistSY/game-news-bot/internal/schedule"
)

func testBuilder() *Builder {
	return &Builder{
		ContextTerms:   []string{"게임", "게임업계"},
		EntityVariants: []string{"넥슨", "Nexon"},
		Sites:          []string{"inven.co.kr", "gamemeca.com"},
	}
}

func testWindow() schedule.Window {
	loc := schedule.Location()
	return schedule.Window{
		Start: time.Date(2026, 8, 24, 10, 0, 0, 0, loc),
		End:   time.Date(2026, 8, 25, 9, 59, 59, 0, loc),
	}
}

func TestBuildGeneralTrack(t *testing.T) {
	q := testBuilder().Build(Params{
		Keyword:       "매출",
		Track:         article.TrackGeneral,
		RestrictSites: true,
		Window:        testWindow(),
	})

	assert.Contains(t, q, "(게임 OR 게임업계)")
	assert.Contains(t, q, "매출")
	assert.Contains(t, q, "(site:inven.co.kr OR site:gamemeca.com)")
	assert.Contains(t, q, "after:2026-08-24")
	assert.Contains(t, q, "before:2026-08-26") // exclusive upper bound
	assert.NotContains(t, q, "넥슨")
}

func TestBuildTopicTrackUsesEntityConjunction(t *testing.T) {
	q := testBuilder().Build(Params{
		Keyword:       "투자",
		Track:         article.TrackTopic,
		RestrictSites: true,
		Window:        testWindow(),
	})

	// Entity variants replace the context disjunction and are AND-combined
	// with the keyword.
	assert.Contains(t, q, `("넥슨" OR "Nexon")`)
	assert.Contains(t, q, "투자")
	assert.NotContains(t, q, "게임업계")
}

func TestBuildWithoutSiteRestriction(t *testing.T) {
	q := testBuilder().Build(Params{
		Keyword:       "매출",
		Track:         article.TrackGeneral,
		RestrictSites: false,
		Window:        testWindow(),
	})

	assert.NotContains(t, q, "site:")
	assert.Contains(t, q, "after:")
}

func TestFeedURL(t *testing.T) {
	b := testBuilder()
	raw := b.FeedURL(`게임 매출 site:inven.co.kr`)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "news.google.com", u.Host)
	assert.True(t, strings.HasPrefix(u.Path, "/rss/search"))

	v := u.Query()
	assert.Equal(t, "게임 매출 site:inven.co.kr", v.Get("q"))
	assert.Equal(t, "ko", v.Get("hl"))
	assert.Equal(t, "KR", v.Get("gl"))
	assert.Equal(t, "KR:ko", v.Get("ceid"))
}
