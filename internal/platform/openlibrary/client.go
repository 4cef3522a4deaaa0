// Package openlibrary is the secondary metadata source. It tries the
// bulk bib-key endpoint first and the per-ISBN edition document as a
// fallback, so a failure or miss on one does not sink the other.
package openlibrary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"isbnscan/internal/metadata"
)

var errNotFound = errors.New("not found")

type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	coversURL  string
	limiter    *rate.Limiter
	maxRetries int
}

func NewClient(userAgent string, rps int, maxRetries int) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		userAgent:  userAgent,
		baseURL:    "https://openlibrary.org",
		coversURL:  "https://covers.openlibrary.org",
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
		maxRetries: maxRetries,
	}
}

func (c *Client) Name() string { return metadata.SourceOpenLibrary }

type namedEntry struct {
	Name string `json:"name"`
}

// bookDetails matches api/books?jscmd=data
type bookDetails struct {
	Title       string       `json:"title"`
	Subtitle    string       `json:"subtitle"`
	Publishers  []namedEntry `json:"publishers"`
	PublishDate string       `json:"publish_date"`
	Cover       struct {
		Large  string `json:"large"`
		Medium string `json:"medium"`
		Small  string `json:"small"`
	} `json:"cover"`
	Authors       []namedEntry `json:"authors"`
	Subjects      []namedEntry `json:"subjects"`
	NumberOfPages int          `json:"number_of_pages"`
	Notes         string       `json:"notes"`
}

// edition matches isbn/{isbn}.json
type edition struct {
	Title         string   `json:"title"`
	Publishers    []string `json:"publishers"`
	PublishDate   string   `json:"publish_date"`
	NumberOfPages int      `json:"number_of_pages"`
	Covers        []int    `json:"covers"`
	Languages     []struct {
		Key string `json:"key"`
	} `json:"languages"`
}

// Lookup tries the bib-key endpoint, then the edition endpoint. Only
// when both come up empty does it report a miss; an error from the
// first endpoint is logged and swallowed so the second still runs.
func (c *Client) Lookup(ctx context.Context, isbn string) (*metadata.BookMetadata, error) {
	m, err := c.lookupBibKey(ctx, isbn)
	if err != nil {
		log.Printf("openlibrary bib-key lookup failed: isbn=%s err=%v", isbn, err)
	}
	if m != nil {
		return m, nil
	}
	return c.lookupEdition(ctx, isbn)
}

func (c *Client) lookupBibKey(ctx context.Context, isbn string) (*metadata.BookMetadata, error) {
	bibkey := "ISBN:" + isbn
	u := fmt.Sprintf("%s/api/books?bibkeys=%s&jscmd=data&format=json",
		c.baseURL, url.QueryEscape(bibkey))

	var res map[string]bookDetails
	if err := c.get(ctx, u, &res); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}

	details, ok := res[bibkey]
	if !ok || details.Title == "" {
		return nil, nil
	}

	thumbnail := details.Cover.Medium
	if thumbnail == "" {
		thumbnail = details.Cover.Large
	}
	if thumbnail == "" {
		thumbnail = details.Cover.Small
	}

	return &metadata.BookMetadata{
		ISBN:          isbn,
		Title:         details.Title,
		Authors:       entryNames(details.Authors),
		Description:   details.Notes,
		ThumbnailURL:  thumbnail,
		PublishedDate: details.PublishDate,
		Publisher:     strings.Join(entryNames(details.Publishers), ", "),
		PageCount:     details.NumberOfPages,
		Categories:    entryNames(details.Subjects),
		Source:        metadata.SourceOpenLibrary,
	}, nil
}

func (c *Client) lookupEdition(ctx context.Context, isbn string) (*metadata.BookMetadata, error) {
	u := fmt.Sprintf("%s/isbn/%s.json", c.baseURL, url.PathEscape(isbn))

	var ed edition
	if err := c.get(ctx, u, &ed); err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if ed.Title == "" {
		return nil, nil
	}

	thumbnail := ""
	if len(ed.Covers) > 0 && ed.Covers[0] > 0 {
		thumbnail = fmt.Sprintf("%s/b/id/%d-M.jpg", c.coversURL, ed.Covers[0])
	}
	language := ""
	if len(ed.Languages) > 0 {
		language = strings.TrimPrefix(ed.Languages[0].Key, "/languages/")
	}

	return &metadata.BookMetadata{
		ISBN:          isbn,
		Title:         ed.Title,
		ThumbnailURL:  thumbnail,
		PublishedDate: ed.PublishDate,
		Publisher:     strings.Join(ed.Publishers, ", "),
		PageCount:     ed.NumberOfPages,
		Language:      language,
		Source:        metadata.SourceOpenLibrary,
	}, nil
}

func entryNames(entries []namedEntry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names
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

		if resp.StatusCode == http.StatusNotFound {
			resp.Body.Close()
			return errNotFound
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
