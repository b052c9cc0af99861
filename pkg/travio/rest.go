package travio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// ListOptions shapes a RestList call. Filters and SortBy are sent as JSON
// strings in the "filters" and "sort_by" query parameters.
type ListOptions struct {
	Filters any
	SortBy  any
	Page    int
	PerPage int
	Unfold  []string
}

func (o ListOptions) query() (url.Values, error) {
	q := url.Values{}

	for name, v := range map[string]any{"filters": o.Filters, "sort_by": o.SortBy} {
		if v == nil {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidPayload, name, err)
		}
		q.Set(name, string(raw))
	}

	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(o.PerPage))
	}
	if len(o.Unfold) > 0 {
		q.Set("unfold", strings.Join(o.Unfold, ","))
	}
	return q, nil
}

// RestList lists the records of repository.
func (c *Client) RestList(ctx context.Context, repository string, opts ListOptions) (Response, error) {
	query, err := opts.query()
	if err != nil {
		return nil, err
	}
	return c.transport.requestQuery(ctx, http.MethodGet, restEndpoint(repository), query, nil)
}

// RestGet fetches one record, optionally unfolding related records.
func (c *Client) RestGet(ctx context.Context, repository string, id int64, unfold ...string) (Response, error) {
	var query url.Values
	if len(unfold) > 0 {
		query = url.Values{"unfold": {strings.Join(unfold, ",")}}
	}
	return c.transport.requestQuery(ctx, http.MethodGet, restEndpoint(repository, id), query, nil)
}

func (c *Client) RestCreate(ctx context.Context, repository string, payload map[string]any) (Response, error) {
	return c.transport.Request(ctx, http.MethodPost, restEndpoint(repository), nonNil(payload))
}

func (c *Client) RestUpdate(ctx context.Context, repository string, id int64, payload map[string]any) (Response, error) {
	return c.transport.Request(ctx, http.MethodPut, restEndpoint(repository, id), nonNil(payload))
}

func (c *Client) RestDelete(ctx context.Context, repository string, id int64) (Response, error) {
	return c.transport.Request(ctx, http.MethodDelete, restEndpoint(repository, id), nil)
}

func restEndpoint(repository string, id ...int64) string {
	endpoint := "rest/" + url.PathEscape(repository)
	if len(id) > 0 {
		endpoint += "/" + strconv.FormatInt(id[0], 10)
	}
	return endpoint
}

func nonNil(payload map[string]any) map[string]any {
	if payload == nil {
		return map[string]any{}
	}
	return payload
}

// queryValues renders options as query parameters. Strings and numbers are
// sent verbatim, anything else as JSON.
func queryValues(options map[string]any) (url.Values, error) {
	if len(options) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	q := make(url.Values, len(options))
	for _, k := range keys {
		switch v := options[k].(type) {
		case nil:
			continue
		case string:
			q.Set(k, v)
		case bool:
			q.Set(k, strconv.FormatBool(v))
		case int:
			q.Set(k, strconv.Itoa(v))
		case int64:
			q.Set(k, strconv.FormatInt(v, 10))
		case json.Number:
			q.Set(k, v.String())
		default:
			raw, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrInvalidPayload, k, err)
			}
			q.Set(k, string(raw))
		}
	}
	return q, nil
}
