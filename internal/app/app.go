package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"

	"github.com/EgoistSY/game-news-bot/internal/article"
	"github.com/EgoistSY/game-news-bot/internal/classify"
	"github.com/EgoistSY/game-news-bot/internal/config"
	"github.com/EgoistSY/game-news-bot/internal/digest"
	"github.com/EgoistSY/game-news-bot/internal/feed"
	"github.com/EgoistSY/game-news-bot/internal/logger"
	"github.com/EgoistSY/game-news-bot/internal/metrics"
	"github.com/EgoistSY/game-news-bot/internal/normalize"
	"github.com/EgoistSY/game-news-bot/internal/query"
	"github.com/EgoistSY/game-news-bot/internal/resolve"
	"github.com/EgoistSY/game-news-bot/internal/schedule"
	"github.com/EgoistSY/game-news-bot/internal/score"
	"github.com/EgoistSY/game-news-bot/internal/slack"
)

// pipeline wires the per-run components around one immutable window.
type pipeline struct {
	cfg      *config.Config
	src      *config.Sources
	win      schedule.Window
	feeds    *feed.Client
	queries  *query.Builder
	norm     *normalize.Normalizer
	resolver *resolve.Resolver
	clf      *classify.Classifier
	scorer   *score.Scorer
}

// strategy is one rung of the collection fallback ladder: a keyword batch
// plus a site-restriction mode. The next rung runs only when the previous
// ones together yielded too few qualifying articles.
type strategy struct {
	name          string
	keywords      []string
	restrictSites bool
}

// Run executes one full batch: window, collect, rank, format, deliver.
// Configuration problems abort before any network activity.
func Run(ctx context.Context) error {
	started := time.Now()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Init(cfg.Debug)

	src, err := config.LoadSources(cfg.SourcesPath)
	if err != nil {
		return fmt.Errorf("sources: %w", err)
	}

	loc := schedule.Location()
	cal := schedule.NewCalendar(loc, schedule.KoreanHolidays{})
	win := cal.ComputeWindow(time.Now().In(loc))
	logger.Info("reporting window computed",
		"start", win.Start.Format(time.RFC3339),
		"end", win.End.Format(time.RFC3339))

	clf := classify.New(src)
	httpClient := resty.New()
	httpClient.SetTimeout(cfg.RequestTimeout)

	p := &pipeline{
		cfg:      cfg,
		src:      src,
		win:      win,
		feeds:    feed.NewClient(cfg.RequestTimeout, cfg.ThrottleMin, cfg.ThrottleMax),
		queries:  &query.Builder{ContextTerms: src.ContextTerms, EntityVariants: src.EntityVariants, Sites: src.Sites},
		norm:     normalize.New(loc),
		resolver: resolve.New(httpClient, src.Sites, src.Aggregators, clf.ValidArticleURL),
		clf:      clf,
		scorer:   score.New(src),
	}

	general := p.collectGeneral(ctx)
	topic := p.collectTopic(ctx, general)

	generalRanked := digest.RankGeneral(digest.Dedup(general), cfg.GeneralLimit)
	topicRanked := digest.RankTopic(digest.Dedup(topic), cfg.TopicLimit)
	metrics.Global.SetEmitted(int64(len(generalRanked)), int64(len(topicRanked)))

	logger.Info("collection finished",
		"general", len(generalRanked), "topic", len(topicRanked))

	body := digest.Format(win, generalRanked, topicRanked)
	chunks := digest.SplitChunks(body, cfg.ChunkLimit)

	sender := slack.New(cfg.SlackWebhookURL, cfg.RequestTimeout)
	if err := sender.SendChunks(ctx, chunks, cfg.SendDelay); err != nil {
		metrics.Global.SetError(err.Error())
		return fmt.Errorf("deliver digest: %w", err)
	}

	metrics.Global.SetLastRun(time.Since(started))
	logger.Info("run complete", "duration", time.Since(started).String())
	return nil
}

// collectGeneral gathers the broad industry track: direct press feeds first,
// then the Google News strategy ladder until enough results accumulate.
func (p *pipeline) collectGeneral(ctx context.Context) []*article.Candidate {
	out := p.collectPressFeeds(ctx)

	ladder := []strategy{
		{name: "primary", keywords: p.src.PrimaryKeywords, restrictSites: true},
		{name: "widened", keywords: p.src.WidenedKeywords, restrictSites: true},
		{name: "unrestricted", keywords: p.src.PrimaryKeywords, restrictSites: false},
	}

	for i, st := range ladder {
		if i > 0 && len(out) >= p.cfg.MinResults {
			break
		}
		if i > 0 {
			logger.Info("falling through to next collection strategy",
				"strategy", st.name, "collected", len(out), "min", p.cfg.MinResults)
		}
		for _, kw := range st.keywords {
			out = append(out, p.collectQuery(ctx, kw, article.TrackGeneral, st.restrictSites)...)
		}
	}
	return out
}

// collectTopic gathers the entity-specific track: dedicated topic queries
// plus any general candidate that mentions the entity verbatim. Every topic
// candidate passes the local entity gate regardless of which query surfaced
// it.
func (p *pipeline) collectTopic(ctx context.Context, general []*article.Candidate) []*article.Candidate {
	var out []*article.Candidate

	for _, kw := range p.src.PrimaryKeywords {
		for _, c := range p.collectQuery(ctx, kw, article.TrackTopic, true) {
			if !p.scorer.ContainsEntity(c.Title, c.Snippet) {
				metrics.Global.IncrementRejected("entity_not_mentioned")
				continue
			}
			c.Score = p.scorer.Score(c)
			out = append(out, c)
		}
	}

	for _, c := range general {
		if !p.scorer.ContainsEntity(c.Title, c.Snippet) {
			continue
		}
		dup := *c
		dup.Track = article.TrackTopic
		dup.Score = p.scorer.Score(&dup)
		out = append(out, &dup)
	}
	return out
}

// collectQuery runs one Google News search. A query-level failure is logged
// and contributes zero results; it never aborts the run.
func (p *pipeline) collectQuery(ctx context.Context, keyword string, track article.Track, restrictSites bool) []*article.Candidate {
	p.feeds.Throttle()
	metrics.Global.IncrementQueriesIssued()

	q := p.queries.Build(query.Params{
		Keyword:       keyword,
		Track:         track,
		RestrictSites: restrictSites,
		Window:        p.win,
	})
	items, err := p.feeds.Fetch(ctx, p.queries.FeedURL(q))
	if err != nil {
		metrics.Global.IncrementQueriesFailed()
		logger.Warn("query failed", "keyword", keyword, "track", track.String(), "error", err)
		return nil
	}

	var out []*article.Candidate
	for _, item := range items {
		if c := p.admit(item, track, keyword, ""); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// collectPressFeeds polls the configured press RSS feeds directly and keeps
// entries matching any primary keyword, the way the earliest runs of this
// job worked.
func (p *pipeline) collectPressFeeds(ctx context.Context) []*article.Candidate {
	var out []*article.Candidate

	for _, f := range p.src.Feeds {
		p.feeds.Throttle()
		metrics.Global.IncrementQueriesIssued()

		items, err := p.feeds.Fetch(ctx, f.URL)
		if err != nil {
			metrics.Global.IncrementQueriesFailed()
			logger.Warn("press feed failed", "press", f.Press, "error", err)
			continue
		}

		for _, item := range items {
			kw := p.matchKeyword(item)
			if kw == "" {
				continue
			}
			if c := p.admit(item, article.TrackGeneral, kw, f.Press); c != nil {
				out = append(out, c)
			}
		}
	}
	return out
}

func (p *pipeline) matchKeyword(item *gofeed.Item) string {
	text := item.Title + " " + item.Description
	for _, kw := range p.src.PrimaryKeywords {
		if strings.Contains(text, kw) {
			return kw
		}
	}
	return ""
}

// admit pushes one entry through normalize → window → resolve → classify.
// Every rejection is counted; every failure stays local to the item.
func (p *pipeline) admit(item *gofeed.Item, track article.Track, keyword, press string) *article.Candidate {
	c, err := p.norm.Normalize(item, track, keyword, press)
	if err != nil {
		if errors.Is(err, normalize.ErrNoDate) {
			metrics.Global.IncrementNoDate()
		}
		logger.Debug("entry rejected at normalize", "title", item.Title, "error", err)
		return nil
	}

	if c.Published.Before(p.win.Floor()) {
		metrics.Global.IncrementStaleTimestamp()
		return nil
	}
	if !p.win.Contains(c.Published) {
		metrics.Global.IncrementOutOfWindow()
		return nil
	}

	link, ok := p.resolver.Resolve(c)
	if !ok {
		logger.Debug("link resolution exhausted", "title", c.Title, "raw", c.RawLink)
		return nil
	}
	c.Link = link
	c.RawLink = ""

	if reason := p.clf.Evaluate(c.Title, c.Snippet, c.Link); reason != classify.ReasonOK {
		metrics.Global.IncrementRejected(string(reason))
		logger.Debug("entry rejected by classifier", "title", c.Title, "reason", string(reason))
		return nil
	}

	return c
}
