// Package googlebooks is the primary metadata source: the Google
// Books volumes API queried by ISBN.
package googlebooks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"isbnscan/internal/metadata"
)

type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	maxRetries int
}

func NewClient(userAgent, apiKey string, rps int, maxRetries int) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		userAgent:  userAgent,
		baseURL:    "https://www.googleapis.com",
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
		maxRetries: maxRetries,
	}
}

func (c *Client) Name() string { return metadata.SourceGoogleBooks }

// volumesResponse matches books/v1/volumes
type volumesResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title         string   `json:"title"`
			Authors       []string `json:"authors"`
			Description   string   `json:"description"`
			Publisher     string   `json:"publisher"`
			PublishedDate string   `json:"publishedDate"`
			PageCount     int      `json:"pageCount"`
			Categories    []string `json:"categories"`
			Language      string   `json:"language"`
			ImageLinks    struct {
				Thumbnail      string `json:"thumbnail"`
				SmallThumbnail string `json:"smallThumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Lookup returns metadata for one ISBN, or (nil, nil) when the catalog
// has no matching volume.
func (c *Client) Lookup(ctx context.Context, isbn string) (*metadata.BookMetadata, error) {
	u := fmt.Sprintf("%s/books/v1/volumes?q=%s", c.baseURL, url.QueryEscape("isbn:"+isbn))
	if c.apiKey != "" {
		u += "&key=" + url.QueryEscape(c.apiKey)
	}

	var res volumesResponse
	if err := c.get(ctx, u, &res); err != nil {
		return nil, err
	}
	if res.TotalItems == 0 || len(res.Items) == 0 {
		return nil, nil
	}

	info := res.Items[0].VolumeInfo
	thumbnail := info.ImageLinks.Thumbnail
	if thumbnail == "" {
		thumbnail = info.ImageLinks.SmallThumbnail
	}

	return &metadata.BookMetadata{
		ISBN:          isbn,
		Title:         info.Title,
		Authors:       info.Authors,
		Description:   info.Description,
		ThumbnailURL:  thumbnail,
		PublishedDate: info.PublishedDate,
		Publisher:     info.Publisher,
		PageCount:     info.PageCount,
		Categories:    info.Categories,
		Language:      info.Language,
		Source:        metadata.SourceGoogleBooks,
	}, nil
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

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
				continue
			}
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		err = json.NewDecoder(resp.Body).Decode(target)
		resp.Body.Close()
		return err
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}
