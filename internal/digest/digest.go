package digest

import (
	"sort"
	"strings"

	"github.com/EgoistSY/game-news-bot/internal/article"
	"github.com/EgoistSY/game-news-bot/internal/metrics"
	"github.com/EgoistSY/game-news-bot/internal/schedule"
)

// Dedup collapses candidates to one per (title, link) identity.
// Last-write-wins: duplicate identity implies field equality after
// resolution, so order does not affect correctness.
func Dedup(cands []*article.Candidate) []*article.Candidate {
	byKey := make(map[string]int, len(cands))
	out := make([]*article.Candidate, 0, len(cands))

	for _, c := range cands {
		key := c.Key()
		if idx, dup := byKey[key]; dup {
			out[idx] = c
			metrics.Global.IncrementDuplicates()
			continue
		}
		byKey[key] = len(out)
		out = append(out, c)
	}
	return out
}

// RankGeneral orders by publish time descending and caps the list.
func RankGeneral(cands []*article.Candidate, limit int) []*article.Candidate {
	sorted := make([]*article.Candidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Published.After(sorted[j].Published)
	})
	return capList(sorted, limit)
}

// RankTopic orders by score descending, then publish time descending, and
// caps the list.
func RankTopic(cands []*article.Candidate, limit int) []*article.Candidate {
	sorted := make([]*article.Candidate, len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].Published.After(sorted[j].Published)
	})
	return capList(sorted, limit)
}

func capList(cands []*article.Candidate, limit int) []*article.Candidate {
	if limit > 0 && len(cands) > limit {
		return cands[:limit]
	}
	return cands
}

// Format renders the briefing body. Empty sections get a placeholder line: a
// run with zero qualifying articles is still a valid digest.
func Format(win schedule.Window, general, topic []*article.Candidate) string {
	var b strings.Builder

	b.WriteString("## 📰 " + win.Label + "\n\n")

	b.WriteString("### 🌐 주요 게임업계 뉴스\n")
	if len(general) == 0 {
		b.WriteString("- 이번 구간에 조건에 맞는 주요 뉴스가 없습니다.\n")
	} else {
		for _, c := range general {
			writeLine(&b, c)
		}
	}
	b.WriteString("\n---\n### 🏢 넥슨 관련 주요 뉴스\n")
	if len(topic) == 0 {
		b.WriteString("- 이번 구간에 '넥슨' 관련 뉴스가 없습니다.\n")
	} else {
		for _, c := range topic {
			writeLine(&b, c)
		}
	}

	return b.String()
}

func writeLine(b *strings.Builder, c *article.Candidate) {
	press := c.Press
	if press == "" {
		press = "기타"
	}
	b.WriteString("▶ *[" + press + "] " + c.Title + "*\n")
	b.WriteString("   - 링크: <" + c.Link + ">\n")
}

// SplitChunks splits a digest body into delivery-sized pieces, breaking only
// at whole-line boundaries. Concatenating the chunks in order reproduces the
// body exactly. A single line longer than the limit becomes its own chunk
// (it cannot be split mid-line).
func SplitChunks(body string, limit int) []string {
	if body == "" {
		return nil
	}
	if limit <= 0 || len(body) <= limit {
		return []string{body}
	}

	lines := strings.SplitAfter(body, "\n")
	var chunks []string
	var cur strings.Builder

	for _, line := range lines {
		if line == "" {
			continue
		}
		if cur.Len() > 0 && cur.Len()+len(line) > limit {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}
