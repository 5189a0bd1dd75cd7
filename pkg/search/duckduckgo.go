// Package search - клиент веб-поиска через HTML lite-версию DuckDuckGo.
//
// Клиент ограничивает частоту запросов (x/time/rate), повторяет запрос
// при HTTP 429 с экспоненциальной задержкой и разбирает HTML страницы
// результатов через golang.org/x/net/html.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ilkoid/poncho-trends/pkg/config"
	"github.com/ilkoid/poncho-trends/pkg/utils"
)

var (
	// ErrEmptyQuery - пустой поисковый запрос.
	ErrEmptyQuery = errors.New("query is empty")
	// ErrRateLimited - сервис продолжает отвечать 429 после всех повторов.
	ErrRateLimited = errors.New("duckduckgo rate limit exceeded")
)

// StatusError - неожиданный HTTP статус ответа.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("duckduckgo http %d", e.Code)
}

// Result - один результат поиска.
type Result struct {
	Title   string
	URL     string
	Snippet string
}

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
	maxRetries     = 5
)

// Client выполняет поисковые запросы. Безопасен для конкурентного использования.
type Client struct {
	http       *http.Client
	endpoint   string
	userAgent  string
	maxResults int
	limiter    *rate.Limiter
	backoff    time.Duration
}

// New создаёт клиента из секции search конфигурации.
func New(cfg config.SearchConfig) *Client {
	cfg = cfg.GetDefaults()
	return NewWithHTTPClient(cfg, &http.Client{Timeout: cfg.Timeout})
}

// NewWithHTTPClient создаёт клиента с переданным HTTP клиентом.
func NewWithHTTPClient(cfg config.SearchConfig, hc *http.Client) *Client {
	cfg = cfg.GetDefaults()
	return &Client{
		http:       hc,
		endpoint:   cfg.Endpoint,
		userAgent:  cfg.UserAgent,
		maxResults: cfg.MaxResults,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		backoff:    initialBackoff,
	}
}

// Search отправляет запрос и возвращает до max_results результатов.
//
// Пустой список без ошибки означает, что поиск ничего не нашёл.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	start := time.Now()
	body, err := c.fetch(ctx, query)
	if err != nil {
		utils.Error("Search failed", "query", query, "error", err)
		return nil, err
	}

	results := parseResults(body, c.maxResults)
	utils.Info("Search completed",
		"query", query,
		"results", len(results),
		"duration_ms", time.Since(start).Milliseconds())
	return results, nil
}

// fetch выполняет POST с учётом rate limit и повторов на 429.
func (c *Client) fetch(ctx context.Context, query string) (string, error) {
	form := url.Values{}
	form.Set("q", query)

	delay := c.backoff
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return "", fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.http.Do(req)
		if err != nil {
			return "", fmt.Errorf("duckduckgo request: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			if attempt >= maxRetries {
				return "", ErrRateLimited
			}
			utils.Warn("DuckDuckGo rate limited, backing off", "delay", delay.String(), "attempt", attempt+1)

			// Удваиваем задержку при каждом 429, но не больше 30 секунд
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > maxBackoff {
				delay = maxBackoff
			}
			continue
		}

		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return "", &StatusError{Code: resp.StatusCode}
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("failed to read response: %w", err)
		}
		return string(data), nil
	}
}

// Format превращает результаты в текст для LLM.
func Format(results []Result) string {
	if len(results) == 0 {
		return "No good DuckDuckGo Search Result was found"
	}

	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "%d. %s\n%s", i+1, r.Title, r.URL)
		if r.Snippet != "" {
			fmt.Fprintf(&sb, "\n%s", r.Snippet)
		}
	}
	return sb.String()
}
