// Package client is an HTTP client of the seating service gateway.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/schema"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.tablekeeper.dev/seating/allocator"
	"go.tablekeeper.dev/seating/http_gateway"
)

// Client of a seating service. Errors returned by the service are mapped
// to their allocator sentinel errors, such that callers may test them with
// errors.Is or errors.Cause.
type Client struct {
	endpoint string
	hc       *http.Client
	encoder  *schema.Encoder
	cache    *LookupCache
}

// New returns a Client of the service at |endpoint|, eg
// "http://localhost:8080". If |hc| is nil, http.DefaultClient is used.
// |cache| may be nil, in which case Lookups are never cached.
func New(endpoint string, hc *http.Client, cache *LookupCache) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		hc:       hc,
		encoder:  schema.NewEncoder(),
		cache:    cache,
	}
}

// Admit the arriving group.
func (c *Client) Admit(ctx context.Context, g allocator.ClientsGroup) error {
	return c.groupRequest(ctx, http.MethodPost, g)
}

// Remove the departing group.
func (c *Client) Remove(ctx context.Context, g allocator.ClientsGroup) error {
	if c.cache != nil {
		c.cache.Update(g.ID, nil)
	}
	return c.groupRequest(ctx, http.MethodDelete, g)
}

// Lookup the Table at which the group is seated. If the group isn't seated,
// Lookup returns an error of allocator.ErrUnknownGroup. A Client with a
// LookupCache may return a cached TableView, which reflects the Table as of
// its prior Lookup.
func (c *Client) Lookup(ctx context.Context, id allocator.GroupID) (allocator.TableView, error) {
	if c.cache != nil {
		if view, ok := c.cache.View(id); ok {
			return view, nil
		}
	}
	var view allocator.TableView
	var err = c.do(ctx, http.MethodGet, fmt.Sprintf("%s/%d", http_gateway.GroupsPath, id), nil, &view)

	if c.cache == nil {
		// Pass.
	} else if err == nil {
		c.cache.Update(id, &view)
	} else if errors.Is(err, allocator.ErrUnknownGroup) {
		c.cache.Update(id, nil)
	}
	return view, err
}

// Snapshot returns all Tables and the waitlist of the service.
func (c *Client) Snapshot(ctx context.Context) (allocator.Snapshot, error) {
	var out allocator.Snapshot
	var err = c.do(ctx, http.MethodGet, http_gateway.TablesPath, nil, &out)
	return out, err
}

type groupForm struct {
	ID   int64 `schema:"id"`
	Size int   `schema:"size"`
}

func (c *Client) groupRequest(ctx context.Context, method string, g allocator.ClientsGroup) error {
	var query = make(url.Values)
	if err := c.encoder.Encode(groupForm{ID: int64(g.ID), Size: g.Size}, query); err != nil {
		return errors.WithMessage(err, "encoding group")
	}
	return c.do(ctx, method, http_gateway.GroupsPath, query, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, into interface{}) error {
	var target = c.endpoint + path
	if len(query) != 0 {
		target += "?" + query.Encode()
	}
	var req, err = http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return errors.WithMessage(err, "building request")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return errors.WithMessagef(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	log.WithFields(log.Fields{
		"method": method,
		"path":   path,
		"status": resp.StatusCode,
		"req":    resp.Header.Get(http_gateway.RequestIDHeader),
	}).Debug("seating service response")

	if resp.StatusCode/100 != 2 {
		return statusError(resp)
	} else if into == nil {
		return nil
	} else if err = json.NewDecoder(resp.Body).Decode(into); err != nil {
		return errors.WithMessage(err, "decoding response")
	}
	return nil
}

// statusError maps a non-2xx response to an error.
func statusError(resp *http.Response) error {
	var b, _ = io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var msg = strings.TrimSpace(string(b))

	var sentinel error
	switch resp.StatusCode {
	case http.StatusBadRequest:
		sentinel = allocator.ErrInvalidGroup
	case http.StatusNotFound:
		sentinel = allocator.ErrUnknownGroup
	case http.StatusConflict:
		sentinel = allocator.ErrDuplicateGroup
	default:
		return errors.Errorf("unexpected status %s: %s", resp.Status, msg)
	}
	// The gateway's message may already carry the sentinel's text.
	return errors.WithMessage(sentinel, strings.TrimSuffix(msg, ": "+sentinel.Error()))
}

const maxErrorBody = 4096
