package openlibrary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// ErrNoCover is returned when a search finds no edition with a cover.
var ErrNoCover = errors.New("no cover found")

const (
	defaultBaseURL   = "https://openlibrary.org"
	defaultCoversURL = "https://covers.openlibrary.org"
)

type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	coversURL  string
	limiter    *rate.Limiter
	maxRetries int
}

func NewClient(userAgent string, rps int, maxRetries int) *Client {
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		userAgent:  userAgent,
		baseURL:    defaultBaseURL,
		coversURL:  defaultCoversURL,
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
		maxRetries: maxRetries,
	}
}

// WithBaseURL points the client at another search host, e.g. a test server.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// SearchResponse matches the subset of search.json used for cover lookup.
type SearchResponse struct {
	NumFound int `json:"numFound"`
	Docs     []struct {
		Key         string   `json:"key"`
		Title       string   `json:"title"`
		AuthorNames []string `json:"author_name"`
		CoverID     int      `json:"cover_i"`
	} `json:"docs"`
}

// SearchByTitle searches works by title and, when given, author.
func (c *Client) SearchByTitle(ctx context.Context, title, author string, limit int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("title", title)
	if author != "" {
		params.Set("author", author)
	}
	params.Set("fields", "key,title,author_name,cover_i")
	params.Set("limit", fmt.Sprint(limit))

	var res SearchResponse
	if err := c.get(ctx, c.baseURL+"/search.json?"+params.Encode(), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// FindCover returns the large cover URL of the first search hit that has
// one.
func (c *Client) FindCover(ctx context.Context, title, author string) (string, error) {
	res, err := c.SearchByTitle(ctx, title, author, 5)
	if err != nil {
		return "", fmt.Errorf("search %q: %w", title, err)
	}
	for _, doc := range res.Docs {
		if doc.CoverID > 0 {
			return fmt.Sprintf("%s/b/id/%d-L.jpg", c.coversURL, doc.CoverID), nil
		}
	}
	return "", ErrNoCover
}

func (c *Client) get(ctx context.Context, url string, target interface{}) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			// Backoff: 1s, 2s, 4s...
			backoff := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		retry, err := c.getOnce(ctx, url, target)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

func (c *Client) getOnce(ctx context.Context, url string, target interface{}) (retry bool, err error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		retry = resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return retry, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return false, json.NewDecoder(resp.Body).Decode(target)
}
