package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const xAPIBase = "https://api.x.com/2"

// XPublisher posts to X via the v2 API with an OAuth2 bearer token.
type XPublisher struct {
	client  *http.Client
	baseURL string
	token   string
	logger  *zap.Logger
}

func NewXPublisher(bearerToken string, timeout time.Duration, logger *zap.Logger) *XPublisher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &XPublisher{
		client:  &http.Client{Timeout: timeout},
		baseURL: xAPIBase,
		token:   bearerToken,
		logger:  logger,
	}
}

func (p *XPublisher) Publish(ctx context.Context, text string) (PostResult, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return PostResult{}, fmt.Errorf("encode tweet body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/tweets", bytes.NewReader(body))
	if err != nil {
		return PostResult{}, fmt.Errorf("build tweet request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return PostResult{}, fmt.Errorf("post tweet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return PostResult{}, fmt.Errorf("post tweet: status %d: %s", resp.StatusCode, raw)
	}

	var out struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return PostResult{}, fmt.Errorf("decode tweet response: %w", err)
	}
	if out.Data.ID == "" {
		return PostResult{}, fmt.Errorf("post tweet: empty id in response")
	}

	p.logger.Info("tweet posted", zap.String("post_id", out.Data.ID))
	return PostResult{PostID: out.Data.ID}, nil
}

func (p *XPublisher) Verify(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/users/me", nil)
	if err != nil {
		return fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("verify credentials: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("verify credentials: status %d", resp.StatusCode)
	}

	var out struct {
		Data struct {
			Username string `json:"username"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode verify response: %w", err)
	}
	p.logger.Info("connected to X", zap.String("username", out.Data.Username))
	return nil
}
