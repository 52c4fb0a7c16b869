// Package kuma pushes run outcomes to Uptime Kuma push monitors. Pushes are
// best effort: a monitoring outage must never fail a backup.
package kuma

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

type PushStatus string

const (
	StatusUp   PushStatus = "up"
	StatusDown PushStatus = "down"
)

type Client struct {
	client *resty.Client
	log    *logrus.Entry
}

func NewClient(log *logrus.Entry) *Client {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "application/json")

	return &Client{client: client, log: log}
}

// Push hits a push URL. An empty URL is a configured no-op. Failures are
// returned so callers can log them, but callers should not propagate.
func (c *Client) Push(url string, status PushStatus, msg string, pingMS int) error {
	if url == "" {
		return nil
	}

	resp, err := c.client.R().
		SetQueryParams(map[string]string{
			"status": string(status),
			"msg":    msg,
			"ping":   fmt.Sprintf("%d", pingMS),
		}).
		Get(url)
	if err != nil {
		return fmt.Errorf("kuma push failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("kuma push returned status %d", resp.StatusCode())
	}
	return nil
}

// Up reports success, with the run duration as the ping value.
func (c *Client) Up(url, msg string, elapsed time.Duration) {
	if err := c.Push(url, StatusUp, msg, int(elapsed.Milliseconds())); err != nil {
		c.log.WithError(err).Warn("kuma up push failed")
	}
}

// Down reports failure.
func (c *Client) Down(url, msg string) {
	if err := c.Push(url, StatusDown, msg, 0); err != nil {
		c.log.WithError(err).Warn("kuma down push failed")
	}
}
