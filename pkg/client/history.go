package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/CinePrep/cineprep/internal/domain"
)

const (
	HistoryCacheKey = "cineprep_history_cache"
	HistoryCacheTTL = 5 * time.Minute
)

type historyCacheEntry struct {
	Data      *domain.LoreHistory `json:"data"`
	Limit     int                 `json:"limit"`
	Offset    int                 `json:"offset"`
	Timestamp int64               `json:"timestamp"`
}

// History lists past analyses. Pages are cached in Storage for HistoryCacheTTL.
type History struct {
	c   *Client
	ttl time.Duration
}

// Fetch returns one page of history, from the cache when the same page was
// fetched less than the TTL ago.
func (h *History) Fetch(ctx context.Context, limit, offset int) (*domain.LoreHistory, error) {
	if cached, ok := h.cached(limit, offset); ok {
		return cached, nil
	}
	return h.Refresh(ctx, limit, offset)
}

// Refresh always goes to the network and replaces the cached page.
func (h *History) Refresh(ctx context.Context, limit, offset int) (*domain.LoreHistory, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	path := "/api/lore/history"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var history domain.LoreHistory
	if err := h.c.do(ctx, http.MethodGet, path, nil, &history); err != nil {
		return nil, err
	}
	h.store(&history, limit, offset)
	return &history, nil
}

// Get fetches one analysis.
func (h *History) Get(ctx context.Context, id string) (*domain.LoreAnalysis, error) {
	var analysis domain.LoreAnalysis
	if err := h.c.do(ctx, http.MethodGet, "/api/lore/"+url.PathEscape(id), nil, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// Delete removes one analysis and drops the cache.
func (h *History) Delete(ctx context.Context, id string) error {
	if err := h.c.do(ctx, http.MethodDelete, "/api/lore/"+url.PathEscape(id), nil, nil); err != nil {
		return err
	}
	h.Invalidate()
	return nil
}

func (h *History) Invalidate() {
	h.c.storage.RemoveItem(HistoryCacheKey)
}

func (h *History) cached(limit, offset int) (*domain.LoreHistory, bool) {
	raw, ok := h.c.storage.GetItem(HistoryCacheKey)
	if !ok {
		return nil, false
	}

	var entry historyCacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil || entry.Data == nil {
		h.Invalidate()
		return nil, false
	}
	if entry.Limit != limit || entry.Offset != offset {
		return nil, false
	}

	age := h.c.now().Sub(time.UnixMilli(entry.Timestamp))
	if age < 0 || age >= h.ttl {
		return nil, false
	}
	return entry.Data, true
}

// store never fails the caller: a full storage only loses the cache.
func (h *History) store(history *domain.LoreHistory, limit, offset int) {
	data, err := json.Marshal(historyCacheEntry{
		Data:      history,
		Limit:     limit,
		Offset:    offset,
		Timestamp: h.c.now().UnixMilli(),
	})
	if err != nil {
		h.Invalidate()
		return
	}
	if err := h.c.storage.SetItem(HistoryCacheKey, string(data)); err != nil {
		h.Invalidate()
	}
}

