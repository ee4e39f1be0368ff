// Package cms reads blog content from the WordPress REST API and serves it
// through a cache with built-in fallback content.
package cms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"

	"hashhaven/logger"
)

const DefaultBaseURL = "https://hashhavenltd.com/wp-json/wp/v2"

var ErrNotFound = errors.New("cms: not found")

type Rendered struct {
	Rendered string `json:"rendered"`
}

type Media struct {
	ID        int    `json:"id"`
	SourceURL string `json:"source_url"`
	AltText   string `json:"alt_text"`
}

type Embedded struct {
	FeaturedMedia []Media `json:"wp:featuredmedia,omitempty"`
}

// Post is a WordPress post as returned with _embed.
type Post struct {
	ID            int       `json:"id"`
	Date          string    `json:"date"`
	Slug          string    `json:"slug"`
	Title         Rendered  `json:"title"`
	Content       Rendered  `json:"content"`
	Excerpt       Rendered  `json:"excerpt"`
	FeaturedMedia int       `json:"featured_media"`
	Embedded      *Embedded `json:"_embedded,omitempty"`
}

// FeaturedImage returns the embedded featured media, if any.
func (p Post) FeaturedImage() (Media, bool) {
	if p.Embedded == nil || len(p.Embedded.FeaturedMedia) == 0 {
		return Media{}, false
	}
	return p.Embedded.FeaturedMedia[0], true
}

// StatusError is a non-2xx answer from the CMS.
type StatusError struct {
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cms %s returned %d", e.Path, e.StatusCode)
}

type Option func(*breakerConfig)

type breakerConfig struct {
	maxFailures uint32
	openFor     time.Duration
}

// WithBreaker sets how many consecutive failures open the breaker and how
// long it stays open before a trial request.
func WithBreaker(maxFailures uint32, openFor time.Duration) Option {
	return func(c *breakerConfig) {
		c.maxFailures = maxFailures
		c.openFor = openFor
	}
}

// Client talks to one WordPress site. Every request goes through a circuit
// breaker so an unreachable CMS fails fast.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

func NewClient(baseURL string, client *http.Client, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	bc := breakerConfig{maxFailures: 5, openFor: 30 * time.Second}
	for _, o := range opts {
		o(&bc)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "wordpress",
		MaxRequests: 1,
		Timeout:     bc.openFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= bc.maxFailures
		},
		IsSuccessful: func(err error) bool {
			// A 4xx means the CMS is up and answered.
			var se *StatusError
			return err == nil || (errors.As(err, &se) && se.StatusCode < 500)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: client,
		breaker:    breaker,
	}
}

// BreakerState reports the breaker state for status endpoints and tests.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

func (c *Client) Posts(ctx context.Context, page, perPage int) ([]Post, error) {
	q := url.Values{}
	q.Set("status", "publish")
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("_embed", "true")

	var posts []Post
	if err := c.get(ctx, "/posts", q, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// PostBySlug returns ErrNotFound when no published post has the slug.
func (c *Client) PostBySlug(ctx context.Context, slug string) (*Post, error) {
	q := url.Values{}
	q.Set("slug", slug)
	q.Set("status", "publish")
	q.Set("_embed", "true")

	var posts []Post
	if err := c.get(ctx, "/posts", q, &posts); err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, ErrNotFound
	}
	return &posts[0], nil
}

func (c *Client) Media(ctx context.Context, id int) (*Media, error) {
	var m Media
	if err := c.get(ctx, "/media/"+strconv.Itoa(id), nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) Search(ctx context.Context, query string) ([]Post, error) {
	q := url.Values{}
	q.Set("search", query)
	q.Set("status", "publish")
	q.Set("_embed", "true")

	var posts []Post
	if err := c.get(ctx, "/posts", q, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) PostsByCategory(ctx context.Context, categoryID int) ([]Post, error) {
	q := url.Values{}
	q.Set("categories", strconv.Itoa(categoryID))
	q.Set("status", "publish")
	q.Set("_embed", "true")

	var posts []Post
	if err := c.get(ctx, "/posts", q, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Healthy probes the API with a one-post listing.
func (c *Client) Healthy(ctx context.Context) bool {
	q := url.Values{}
	q.Set("per_page", "1")
	var posts []json.RawMessage
	if err := c.get(ctx, "/posts", q, &posts); err != nil {
		logger.Debug("WordPress API not ready: %v", err)
		return false
	}
	return true
}

// Installed reports whether the API index identifies a site by name.
func (c *Client) Installed(ctx context.Context) bool {
	var index struct {
		Name string `json:"name"`
	}
	if err := c.get(ctx, "/", nil, &index); err != nil {
		logger.Debug("WordPress installation check failed: %v", err)
		return false
	}
	return index.Name != ""
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("cms %s: %w", path, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			return nil, &StatusError{Path: path, StatusCode: resp.StatusCode}
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("decode cms %s: %w", path, err)
		}
		return nil, nil
	})
	return err
}
