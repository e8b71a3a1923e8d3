// Package categorizer talks to an OpenAI-compatible chat completions endpoint
// to label product titles with a main category and a subcategory.
package categorizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"catalog-insights/models"
)

var (
	// ErrUnavailable is returned when no API key is configured.
	ErrUnavailable = errors.New("categorizer: service unavailable")
	// ErrBadResponse is returned when the reply has no usable content.
	ErrBadResponse = errors.New("categorizer: malformed response")
)

const systemPrompt = `You categorise retail product listings.
For each numbered product title reply with exactly one line in the form
"<number>. <Main Category> > <Subcategory>".
Use short, general category names. If you cannot tell, reply "<number>. Uncategorized".`

// Config configures a Client.
type Config struct {
	Endpoint   string
	APIKey     string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client is a Categorizer backed by a text-generation service.
type Client struct {
	endpoint string
	apiKey   string
	model    string
	http     *http.Client
}

// NewClient returns ErrUnavailable when cfg carries no API key.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrUnavailable
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("categorizer: endpoint cannot be empty")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		http:     hc,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Categorize labels titles in one request. The result always has one entry
// per title; lines the model got wrong come back as Uncategorized.
func (c *Client) Categorize(ctx context.Context, titles []string) ([]models.CategoryResult, error) {
	if len(titles) == 0 {
		return nil, nil
	}

	var prompt strings.Builder
	for i, t := range titles {
		fmt.Fprintf(&prompt, "%d. %s\n", i+1, strings.ReplaceAll(t, "\n", " "))
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt.String()},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("categorizer: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("categorizer: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("categorizer: request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("categorizer: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("categorizer: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrBadResponse)
	}
	return ParseCategories(parsed.Choices[0].Message.Content, len(titles)), nil
}

var lineRegexp = regexp.MustCompile(`^\s*(\d+)\s*[.):-]\s*(.+?)\s*$`)

// ParseCategories reads "N. Main > Sub" lines into n results. Entries the
// text does not cover, or covers unreadably, are Uncategorized.
func ParseCategories(text string, n int) []models.CategoryResult {
	out := make([]models.CategoryResult, n)
	for i := range out {
		out[i] = models.CategoryResult{Main: models.Uncategorized}
	}

	for _, line := range strings.Split(text, "\n") {
		m := lineRegexp.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil || idx < 1 || idx > n {
			continue
		}
		main, sub, _ := strings.Cut(m[2], ">")
		main = strings.Trim(strings.TrimSpace(main), `"*`)
		sub = strings.Trim(strings.TrimSpace(sub), `"*`)
		if main == "" {
			continue
		}
		out[idx-1] = models.CategoryResult{Main: main, Sub: sub}
	}
	return out
}
