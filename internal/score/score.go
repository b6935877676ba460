package score

import (
	"regexp"
	"strings"

	"github.com/EgoistSY/game-news-bot/internal/article"
	"github.com/EgoistSY/game-news-bot/internal/config"
)

// Scorer verifies true entity mention and computes importance for the topic
// subsection. Query-level matching is never trusted alone: an article joins
// the topic track only when a name variant appears verbatim in its own text.
type Scorer struct {
	variants    []string
	weights     []config.Weight
	entityBonus int
}

func New(src *config.Sources) *Scorer {
	return &Scorer{
		variants:    src.EntityVariants,
		weights:     src.ScoreWeights,
		entityBonus: src.EntityBonus,
	}
}

// ContainsEntity reports a case-insensitive verbatim match of any entity
// name variant against title+snippet. This is the mandatory gate for the
// topic subsection.
func (s *Scorer) ContainsEntity(title, snippet string) bool {
	text := strings.ToLower(title + " " + snippet)
	for _, v := range s.variants {
		if strings.Contains(text, strings.ToLower(v)) {
			return true
		}
	}
	return false
}

// Score sums the configured keyword weights found in title+snippet, plus the
// entity bonus. Weight ordering reflects business materiality (M&A and
// litigation terms highest, routine update terms lowest) and comes from
// config, not code.
func (s *Scorer) Score(c *article.Candidate) int {
	text := strings.ToLower(c.Title + " " + c.Snippet)

	total := 0
	for _, w := range s.weights {
		if containsTerm(text, w.Term) {
			total += w.Weight
		}
	}
	if s.ContainsEntity(c.Title, c.Snippet) {
		total += s.entityBonus
	}
	return total
}

// containsTerm distinguishes phrases and short latin tokens: short tokens
// (<=3 bytes of ASCII) match on word boundaries so "CBT" does not fire
// inside unrelated words; everything else is a plain substring check.
func containsTerm(text, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return false
	}

	if strings.Contains(term, " ") {
		return strings.Contains(text, term)
	}

	if len(term) <= 3 && isASCII(term) {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `\b`)
		return re.MatchString(text)
	}

	return strings.Contains(text, term)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
