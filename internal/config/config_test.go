package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFailsFastWithoutWebhook(t *testing.T) {
	t.Setenv("SLACK_WEBHOOK_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SLACK_WEBHOOK_URL")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T/B/X")
	for _, k := range []string{"CHUNK_LIMIT", "GENERAL_LIMIT", "TOPIC_LIMIT", "MIN_RESULTS"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3500, cfg.ChunkLimit)
	assert.Equal(t, 15, cfg.GeneralLimit)
	assert.Equal(t, 5, cfg.TopicLimit)
	assert.Equal(t, 10, cfg.MinResults)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T/B/X")
	t.Setenv("GENERAL_LIMIT", "7")
	t.Setenv("TOPIC_LIMIT", "2")
	t.Setenv("CHUNK_LIMIT", "2000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.GeneralLimit)
	assert.Equal(t, 2, cfg.TopicLimit)
	assert.Equal(t, 2000, cfg.ChunkLimit)
}

func TestLoadSourcesMissingFileUsesDefaults(t *testing.T) {
	src, err := LoadSources(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.NotEmpty(t, src.Feeds)
	assert.NotEmpty(t, src.Sites)
	assert.NotEmpty(t, src.SiteRules)
	assert.NotEmpty(t, src.PrimaryKeywords)
	assert.Contains(t, src.EntityVariants, "넥슨")
	assert.Equal(t, 5, src.EntityBonus)
}

func TestLoadSourcesPartialFileFillsGaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	doc := `
sites:
  - example-news.kr
primary_keywords: ["인수"]
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	src, err := LoadSources(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"example-news.kr"}, src.Sites)
	assert.Equal(t, []string{"인수"}, src.PrimaryKeywords)
	// Unspecified sections fall back to built-ins.
	assert.NotEmpty(t, src.Aggregators)
	assert.NotEmpty(t, src.ScoreWeights)
}

func TestValidateChunkLimit(t *testing.T) {
	cfg := &Config{SlackWebhookURL: "https://hooks.slack.com/x", ChunkLimit: 10}
	assert.Error(t, cfg.Validate())
}
