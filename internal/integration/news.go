package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

const newsBaseURL = "https://newsapi.org"

// NewsClient fetches headlines from NewsAPI.
type NewsClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewNewsClient creates a news client. An empty apiKey selects demo mode.
func NewNewsClient(apiKey string, httpClient *http.Client) *NewsClient {
	return &NewsClient{
		apiKey:     apiKey,
		baseURL:    newsBaseURL,
		httpClient: httpClient,
	}
}

// Demo reports whether the client returns simulated headlines.
func (c *NewsClient) Demo() bool {
	return c.apiKey == ""
}

// Article is one news headline.
type Article struct {
	Title       string `json:"title"`
	Source      string `json:"source"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// Headlines fetches up to limit recent articles about the topic.
func (c *NewsClient) Headlines(ctx context.Context, topic string, limit int) ([]Article, error) {
	if limit <= 0 {
		limit = 5
	}

	if c.Demo() {
		return []Article{
			{
				Title:       "Open models keep closing the gap",
				Source:      "Demo Wire",
				Description: "Another quarter, another round of benchmark results for open-weight models.",
				URL:         "https://example.com/open-models",
			},
			{
				Title:       "Developers adopt lightweight agents for routine tasks",
				Source:      "Demo Wire",
				Description: "Small task-specific agents are showing up in everyday tooling.",
				URL:         "https://example.com/lightweight-agents",
			},
		}, nil
	}

	query := url.Values{}
	query.Set("q", topic)
	query.Set("pageSize", strconv.Itoa(limit))
	query.Set("sortBy", "publishedAt")
	endpoint := c.baseURL + "/v2/everything?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build news request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send news request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read news response: %w", err)
	}

	var out newsAPIResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode news response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || out.Status != "ok" {
		return nil, fmt.Errorf("news API returned status %d: %s", resp.StatusCode, out.Message)
	}

	articles := make([]Article, 0, len(out.Articles))
	for _, a := range out.Articles {
		articles = append(articles, Article{
			Title:       a.Title,
			Source:      a.Source.Name,
			Description: a.Description,
			URL:         a.URL,
		})
	}

	return articles, nil
}
