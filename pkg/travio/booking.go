package travio

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"net/url"

	"github.com/dmitrymomot/travio/pkg/logger"
	"github.com/dmitrymomot/travio/pkg/session"
)

// cartField carries the cart id in payloads and responses.
const cartField = "cart"

// CartID returns the cart remembered for this session, or "" when the
// share-session-cart policy is off or no cart was created yet.
func (c *Client) CartID(ctx context.Context) (string, error) {
	if !c.cfg.ShareSessionCart {
		return "", nil
	}

	raw, err := c.store.Get(ctx, SessionKeyCart)
	if errors.Is(err, session.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("travio: reading cart id: %w", err)
	}
	return string(raw), nil
}

// Search starts a search. The cart is the explicit one, else the session cart.
// The cart id returned by the API becomes the session cart.
func (c *Client) Search(ctx context.Context, payload map[string]any, cart string) (Response, error) {
	return c.cartCall(ctx, http.MethodPost, "booking/search", payload, cart, true)
}

// Results fetches the results of the search attached to the cart.
func (c *Client) Results(ctx context.Context, payload map[string]any, cart string) (Response, error) {
	return c.cartCall(ctx, http.MethodPost, "booking/results", payload, cart, false)
}

// Picks selects services from the search results.
func (c *Client) Picks(ctx context.Context, payload map[string]any, cart string) (Response, error) {
	return c.cartCall(ctx, http.MethodPost, "booking/picks", payload, cart, true)
}

// AddToCart adds the picked services to the cart.
func (c *Client) AddToCart(ctx context.Context, payload map[string]any, cart string) (Response, error) {
	return c.cartCall(ctx, http.MethodPut, "booking/cart", payload, cart, true)
}

// RemoveFromCart removes items from the cart.
func (c *Client) RemoveFromCart(ctx context.Context, payload map[string]any, cart string) (Response, error) {
	return c.cartCall(ctx, http.MethodDelete, "booking/cart", payload, cart, true)
}

// GetCart returns the cart. A nil response with a nil error means there is no
// cart to fetch: none was given and none is remembered.
func (c *Client) GetCart(ctx context.Context, cart string, options map[string]any) (Response, error) {
	id, err := c.resolveCart(ctx, cart)
	if err != nil || id == "" {
		return nil, err
	}

	query, err := queryValues(options)
	if err != nil {
		return nil, err
	}
	return c.transport.requestQuery(ctx, http.MethodGet, "booking/cart/"+url.PathEscape(id), query, nil)
}

// PlaceBooking turns the cart into a booking.
func (c *Client) PlaceBooking(ctx context.Context, cart string, payload map[string]any) (Response, error) {
	id, err := c.resolveCart(ctx, cart)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrNoCart
	}

	var body any
	if payload != nil {
		body = payload
	}
	return c.transport.Request(ctx, http.MethodPost, "booking/place/"+url.PathEscape(id), body)
}

func (c *Client) resolveCart(ctx context.Context, cart string) (string, error) {
	if cart != "" {
		return cart, nil
	}
	return c.CartID(ctx)
}

func (c *Client) cartCall(ctx context.Context, method, endpoint string, payload map[string]any, cart string, remember bool) (Response, error) {
	id, err := c.resolveCart(ctx, cart)
	if err != nil {
		return nil, err
	}

	body := maps.Clone(payload)
	if body == nil {
		body = make(map[string]any, 1)
	}
	if id != "" {
		body[cartField] = id
	}

	resp, err := c.transport.Request(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}

	if remember {
		if err := c.rememberCart(ctx, resp); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// rememberCart stores the cart id of resp as the session cart.
func (c *Client) rememberCart(ctx context.Context, resp Response) error {
	if !c.cfg.ShareSessionCart {
		return nil
	}

	id := resp.String(cartField)
	if id == "" {
		return nil
	}

	if err := c.store.Set(ctx, SessionKeyCart, []byte(id)); err != nil {
		return fmt.Errorf("travio: storing cart id: %w", err)
	}
	c.logger.DebugContext(ctx, "travio session cart updated", logger.CartID(id))
	return nil
}
