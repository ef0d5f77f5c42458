// Package catalog is the typed client for the movie service's REST
// resources. Every call carries the session's bearer token; failure
// bodies are normalized the same way the auth client normalizes them.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fragansa/movies-web/internal/authapi"
	"github.com/fragansa/movies-web/internal/domain"
)

type Client struct {
	base     string
	http     *http.Client
	cache    ListCache
	cacheTTL time.Duration
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		base:  strings.TrimRight(baseURL, "/"),
		cache: NewNoopListCache(),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// WithCache serves list reads from cache and invalidates the resource on
// every write. Cache failures are not surfaced; the backing API stays
// the source of truth.
func (c *Client) WithCache(cache ListCache, ttl time.Duration) *Client {
	if cache != nil {
		c.cache = cache
		c.cacheTTL = ttl
	}
	return c
}

func (c *Client) BaseURL() string { return c.base }

func (c *Client) Movies(ctx context.Context, token string) ([]domain.Movie, error) {
	return list[domain.Movie](ctx, c, token, "/api/Movies")
}

func (c *Client) Actors(ctx context.Context, token string) ([]domain.Actor, error) {
	return list[domain.Actor](ctx, c, token, "/api/Actors")
}

func (c *Client) Directors(ctx context.Context, token string) ([]domain.Director, error) {
	return list[domain.Director](ctx, c, token, "/api/Directors")
}

func (c *Client) Countries(ctx context.Context, token string) ([]domain.Country, error) {
	return list[domain.Country](ctx, c, token, "/api/Countries")
}

func (c *Client) Genres(ctx context.Context, token string) ([]domain.Genre, error) {
	return list[domain.Genre](ctx, c, token, "/api/Genres")
}

func (c *Client) CreateMovie(ctx context.Context, token string, m domain.Movie) error {
	return c.send(ctx, token, http.MethodPost, "/api/Movies", m)
}

func (c *Client) UpdateMovie(ctx context.Context, token string, m domain.Movie) error {
	return c.send(ctx, token, http.MethodPut, fmt.Sprintf("/api/Movies/%d", m.ID), m)
}

func (c *Client) DeleteMovie(ctx context.Context, token string, id int) error {
	return c.send(ctx, token, http.MethodDelete, fmt.Sprintf("/api/Movies/%d", id), nil)
}

func (c *Client) CreateActor(ctx context.Context, token string, a domain.Actor) error {
	return c.send(ctx, token, http.MethodPost, "/api/Actors", a)
}

func (c *Client) UpdateActor(ctx context.Context, token string, a domain.Actor) error {
	return c.send(ctx, token, http.MethodPut, fmt.Sprintf("/api/Actors/%d", a.ID), a)
}

func (c *Client) DeleteActor(ctx context.Context, token string, id int) error {
	return c.send(ctx, token, http.MethodDelete, fmt.Sprintf("/api/Actors/%d", id), nil)
}

func (c *Client) CreateDirector(ctx context.Context, token string, d domain.Director) error {
	return c.send(ctx, token, http.MethodPost, "/api/Directors", d)
}

func (c *Client) UpdateDirector(ctx context.Context, token string, d domain.Director) error {
	return c.send(ctx, token, http.MethodPut, fmt.Sprintf("/api/Directors/%d", d.ID), d)
}

func (c *Client) DeleteDirector(ctx context.Context, token string, id int) error {
	return c.send(ctx, token, http.MethodDelete, fmt.Sprintf("/api/Directors/%d", id), nil)
}

func (c *Client) CreateCountry(ctx context.Context, token string, v domain.Country) error {
	return c.send(ctx, token, http.MethodPost, "/api/Countries", v)
}

func (c *Client) UpdateCountry(ctx context.Context, token string, v domain.Country) error {
	return c.send(ctx, token, http.MethodPut, fmt.Sprintf("/api/Countries/%d", v.ID), v)
}

func (c *Client) DeleteCountry(ctx context.Context, token string, id int) error {
	return c.send(ctx, token, http.MethodDelete, fmt.Sprintf("/api/Countries/%d", id), nil)
}

func (c *Client) CreateGenre(ctx context.Context, token string, v domain.Genre) error {
	return c.send(ctx, token, http.MethodPost, "/api/Genres", v)
}

func (c *Client) UpdateGenre(ctx context.Context, token string, v domain.Genre) error {
	return c.send(ctx, token, http.MethodPut, fmt.Sprintf("/api/Genres/%d", v.ID), v)
}

func (c *Client) DeleteGenre(ctx context.Context, token string, id int) error {
	return c.send(ctx, token, http.MethodDelete, fmt.Sprintf("/api/Genres/%d", id), nil)
}

func list[T any](ctx context.Context, c *Client, token, path string) ([]T, error) {
	raw, hit, err := c.cache.Get(ctx, path)
	if err != nil || !hit {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
		if reqErr != nil {
			return nil, reqErr
		}
		req.Header.Set("Authorization", "Bearer "+token)

		raw, reqErr = c.roundTrip(req)
		if reqErr != nil {
			return nil, reqErr
		}
		_ = c.cache.Set(ctx, path, raw, c.cacheTTL)
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}

func (c *Client) send(ctx context.Context, token, method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if _, err = c.roundTrip(req); err != nil {
		return err
	}
	_ = c.cache.Invalidate(ctx, resourcePath(path))
	return nil
}

// resourcePath maps a mutation path like /api/Movies/7 back to the list
// path whose cached payload it stales.
func resourcePath(path string) string {
	i := strings.LastIndex(path, "/")
	if i <= 0 {
		return path
	}
	if _, err := strconv.Atoi(path[i+1:]); err == nil {
		return path[:i]
	}
	return path
}

func (c *Client) roundTrip(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, authapi.DecodeError(resp.StatusCode, raw)
	}
	return raw, nil
}
