package client

import (
	"context"
	"net/http"

	"github.com/CinePrep/cineprep/internal/domain"
)

// LoreGenerator requests spoiler-free recaps.
type LoreGenerator struct {
	c *Client
}

// Generate validates req locally, then asks the server for the lore of the
// previous movies. A new analysis invalidates the history cache.
func (g *LoreGenerator) Generate(ctx context.Context, req domain.GenerateLoreRequest) (*domain.GenerateLoreResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp domain.GenerateLoreResponse
	if err := g.c.do(ctx, http.MethodPost, "/api/lore/generate", req, &resp); err != nil {
		return nil, err
	}
	g.c.storage.RemoveItem(HistoryCacheKey)
	return &resp, nil
}
