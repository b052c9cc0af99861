package travio

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/travio/pkg/logger"
)

// SignedURL asks the API to sign a resource URL. Every failure is logged and
// reported as ok == false; this helper never returns an error.
func (c *Client) SignedURL(ctx context.Context, payload map[string]any) (string, bool) {
	resp, err := c.transport.Request(ctx, http.MethodPost, "tools/get-signed-url", nonNil(payload))
	if err != nil {
		c.logger.WarnContext(ctx, "travio signed url unavailable", logger.Error(err))
		return "", false
	}

	u := resp.String("url")
	return u, u != ""
}
