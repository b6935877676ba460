package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SiteRule encodes one publisher's "this is a real article" URL convention.
// Rules are data, not code, so tests can feed synthetic ones.
type SiteRule struct {
	Host         string   `yaml:"host"`
	ArticlePath  string   `yaml:"article_path,omitempty"`  // required path prefix
	RequireParam string   `yaml:"require_param,omitempty"` // query parameter that must be present
	NumericParam bool     `yaml:"numeric_param,omitempty"` // the parameter value must be numeric
	RejectPaths  []string `yaml:"reject_paths,omitempty"`  // path segments that always reject (e.g. /board/)
}

// Weight is one scored keyword for the topic track.
type Weight struct {
	Term   string `yaml:"term"`
	Weight int    `yaml:"weight"`
}

// Feed is one direct press RSS feed.
type Feed struct {
	Press string `yaml:"press"`
	URL   string `yaml:"url"`
}

// Sources is the immutable rule/list configuration shared by the pipeline
// components. Loaded once per run from YAML; zero-value fields fall back to
// the built-in defaults below.
type Sources struct {
	Feeds           []Feed     `yaml:"feeds"`
	Sites           []string   `yaml:"sites"`            // publisher hosts accepted as canonical
	Aggregators     []string   `yaml:"aggregators"`      // hosts that must never be emitted
	SiteRules       []SiteRule `yaml:"site_rules"`
	PrimaryKeywords []string   `yaml:"primary_keywords"`
	WidenedKeywords []string   `yaml:"widened_keywords"` // fallback batch when primary yields too little
	ContextTerms    []string   `yaml:"context_terms"`    // broad-domain disambiguation for the general track
	EntityVariants  []string   `yaml:"entity_variants"`  // name variants of the company of interest
	StrictHosts     []string   `yaml:"strict_hosts"`     // general-interest press needing a domain keyword hit
	DomainTerms     []string   `yaml:"domain_terms"`     // the keywords the strict filter looks for
	NoiseTitles     []string   `yaml:"noise_titles"`     // title substrings marking non-article posts
	ScoreWeights    []Weight   `yaml:"score_weights"`
	EntityBonus     int        `yaml:"entity_bonus"`
}

// LoadSources reads the YAML sources file and fills any empty section with
// the built-in defaults, so a minimal file (or a missing one) still yields a
// fully working configuration.
func LoadSources(path string) (*Sources, error) {
	src := &Sources{}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			src.applyDefaults()
			return src, nil
		}
		return nil, fmt.Errorf("open sources file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	if err := dec.Decode(src); err != nil {
		return nil, fmt.Errorf("decode sources file: %w", err)
	}

	src.applyDefaults()
	return src, nil
}

func (s *Sources) applyDefaults() {
	if len(s.Feeds) == 0 {
		s.Feeds = defaultFeeds
	}
	if len(s.Sites) == 0 {
		s.Sites = defaultSites
	}
	if len(s.Aggregators) == 0 {
		s.Aggregators = defaultAggregators
	}
	if len(s.SiteRules) == 0 {
		s.SiteRules = defaultSiteRules
	}
	if len(s.PrimaryKeywords) == 0 {
		s.PrimaryKeywords = defaultPrimaryKeywords
	}
	if len(s.WidenedKeywords) == 0 {
		s.WidenedKeywords = defaultWidenedKeywords
	}
	if len(s.ContextTerms) == 0 {
		s.ContextTerms = defaultContextTerms
	}
	if len(s.EntityVariants) == 0 {
		s.EntityVariants = defaultEntityVariants
	}
	if len(s.StrictHosts) == 0 {
		s.StrictHosts = defaultStrictHosts
	}
	if len(s.DomainTerms) == 0 {
		s.DomainTerms = defaultDomainTerms
	}
	if len(s.NoiseTitles) == 0 {
		s.NoiseTitles = defaultNoiseTitles
	}
	if len(s.ScoreWeights) == 0 {
		s.ScoreWeights = defaultScoreWeights
	}
	if s.EntityBonus == 0 {
		s.EntityBonus = 5
	}
}

var defaultFeeds = []Feed{
	{Press: "인벤", URL: "https://www.inven.co.kr/webzine/rss.php"},
	{Press: "게임메카", URL: "http://www.gamemeca.com/rss/rss.xml"},
	{Press: "디스이즈게임", URL: "https://www.thisisgame.com/webzine/rss/nboard/11"},
	{Press: "게임톡", URL: "http://www.gametoc.co.kr/rss/S1N1.xml"},
	{Press: "게임플", URL: "https://www.gameple.co.kr/rss/all.xml"},
	{Press: "ZDNetKorea", URL: "https://www.zdnet.co.kr/Include/EgovRss.asp?cid=0020"},
	{Press: "DigitalDaily", URL: "http://www.ddaily.co.kr/rss.xml"},
}

var defaultSites = []string{
	"inven.co.kr",
	"gamemeca.com",
	"thisisgame.com",
	"gametoc.co.kr",
	"gameple.co.kr",
	"zdnet.co.kr",
	"ddaily.co.kr",
}

var defaultAggregators = []string{
	"news.google.com",
	"news.url.google.com",
	"google.com",
	"google.co.kr",
}

var defaultSiteRules = []SiteRule{
	{Host: "inven.co.kr", ArticlePath: "/webzine/news/", RequireParam: "idx", NumericParam: true, RejectPaths: []string{"/board/"}},
	{Host: "thisisgame.com", ArticlePath: "/webzine/", RequireParam: "n", NumericParam: true, RejectPaths: []string{"/board/"}},
	{Host: "gamemeca.com", ArticlePath: "/news/view.php", RequireParam: "gid", NumericParam: true},
	{Host: "gametoc.co.kr", ArticlePath: "/news/articleView.html", RequireParam: "idxno", NumericParam: true},
	{Host: "gameple.co.kr", ArticlePath: "/news/articleView.html", RequireParam: "idxno", NumericParam: true},
	{Host: "zdnet.co.kr", ArticlePath: "/view/", RequireParam: "no", NumericParam: true},
	{Host: "ddaily.co.kr", ArticlePath: "/page/view/"},
}

var defaultPrimaryKeywords = []string{
	"신작", "성과", "호재", "악재", "리스크", "정책", "업데이트", "출시",
	"매출", "순위", "소송", "규제", "CBT", "OBT", "인수", "투자", "M&A",
}

var defaultWidenedKeywords = []string{
	"발표", "계약", "협업", "글로벌", "실적", "상장", "확장",
}

var defaultContextTerms = []string{
	"게임", "게임사", "게임업계", "모바일게임", "콘솔", "e스포츠",
}

var defaultEntityVariants = []string{
	"넥슨", "Nexon", "NEXON", "넥슨코리아", "넥슨게임즈",
}

var defaultStrictHosts = []string{
	"zdnet.co.kr",
	"ddaily.co.kr",
}

var defaultDomainTerms = []string{
	"게임", "게임사", "게임업계", "e스포츠", "이스포츠", "콘솔", "모바일게임",
	"넥슨", "엔씨소프트", "크래프톤", "넷마블", "카카오게임즈", "스마일게이트",
	"위메이드", "펄어비스", "PC방",
}

var defaultNoiseTitles = []string{
	"채용", "모집 공고", "[스포", "공략", "꿀팁", "웹진", "이벤트 당첨",
}

var defaultScoreWeights = []Weight{
	{Term: "인수", Weight: 10},
	{Term: "M&A", Weight: 10},
	{Term: "매각", Weight: 10},
	{Term: "합병", Weight: 9},
	{Term: "소송", Weight: 9},
	{Term: "규제", Weight: 8},
	{Term: "투자", Weight: 8},
	{Term: "상장", Weight: 7},
	{Term: "실적", Weight: 7},
	{Term: "매출", Weight: 7},
	{Term: "악재", Weight: 6},
	{Term: "호재", Weight: 6},
	{Term: "리스크", Weight: 6},
	{Term: "정책", Weight: 6},
	{Term: "신작", Weight: 5},
	{Term: "출시", Weight: 5},
	{Term: "순위", Weight: 4},
	{Term: "CBT", Weight: 3},
	{Term: "OBT", Weight: 3},
	{Term: "업데이트", Weight: 2},
}
