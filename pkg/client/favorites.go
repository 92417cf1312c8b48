package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/CinePrep/cineprep/internal/domain"
)

type Favorites struct {
	c *Client
}

func (f *Favorites) List(ctx context.Context, limit, offset int) (*domain.FavoriteList, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	var list domain.FavoriteList
	if err := f.c.do(ctx, http.MethodGet, "/api/favorites?"+query.Encode(), nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (f *Favorites) Add(ctx context.Context, req domain.AddFavoriteRequest) (*domain.Favorite, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var fav domain.Favorite
	if err := f.c.do(ctx, http.MethodPost, "/api/favorites", req, &fav); err != nil {
		return nil, err
	}
	return &fav, nil
}

func (f *Favorites) Remove(ctx context.Context, movieID int) error {
	return f.c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/favorites/%d", movieID), nil, nil)
}

func (f *Favorites) IsFavorite(ctx context.Context, movieID int) (bool, error) {
	var status struct {
		IsFavorite bool `json:"is_favorite"`
	}
	if err := f.c.do(ctx, http.MethodGet, fmt.Sprintf("/api/favorites/%d", movieID), nil, &status); err != nil {
		return false, err
	}
	return status.IsFavorite, nil
}

// Toggle adds the movie when absent and removes it otherwise. It returns the
// new state.
func (f *Favorites) Toggle(ctx context.Context, req domain.AddFavoriteRequest) (bool, error) {
	exists, err := f.IsFavorite(ctx, req.MovieID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, f.Remove(ctx, req.MovieID)
	}
	if _, err := f.Add(ctx, req); err != nil {
		return false, err
	}
	return true, nil
}
