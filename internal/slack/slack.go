package slack

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/EgoistSY/game-news-bot/internal/logger"
	"github.com/EgoistSY/game-news-bot/internal/metrics"
	"github.com/EgoistSY/game-news-bot/internal/retry"
)

// Client delivers pre-formatted digest text to a Slack incoming webhook.
type Client struct {
	webhookURL string
	http       *resty.Client
	retryCfg   retry.Config
}

func New(webhookURL string, timeout time.Duration) *Client {
	c := resty.New()
	c.SetTimeout(timeout)

	return &Client{
		webhookURL: webhookURL,
		http:       c,
		retryCfg: retry.Config{
			MaxAttempts: 3,
			Delay:       1 * time.Second,
			Backoff:     true,
		},
	}
}

// Send posts one text block. The caller guarantees the block fits the
// webhook's size budget; Send does not re-chunk.
func (c *Client) Send(ctx context.Context, text string) error {
	return retry.WithRetry(ctx, c.retryCfg, func() error {
		return c.sendOnce(ctx, text)
	})
}

func (c *Client) sendOnce(ctx context.Context, text string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"text": text}).
		Post(c.webhookURL)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("webhook status %d", resp.StatusCode())
	}
	return nil
}

// SendChunks delivers ordered chunks with a short pause between sends. A
// failed chunk aborts the remainder so ordering is never violated; the error
// surfaces to the caller and the run's exit status.
func (c *Client) SendChunks(ctx context.Context, chunks []string, delay time.Duration) error {
	for i, chunk := range chunks {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
		if err := c.Send(ctx, chunk); err != nil {
			return fmt.Errorf("send chunk %d/%d: %w", i+1, len(chunks), err)
		}
		metrics.Global.IncrementChunksSent()
		logger.Info("digest chunk sent", "chunk", i+1, "total", len(chunks), "bytes", len(chunk))
	}
	return nil
}
