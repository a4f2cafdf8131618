/*
Copyright The Gamebird Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package store is the domain-aware client for the remote catalog, manifest
// and archive endpoints. It parses payloads into typed records, rejecting
// malformed ones outright, and streams archives to disk through a temporary
// file so an interrupted download can never be mistaken for a complete one.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/suntank/gamebird-os/pkg/getter"
)

var (
	// ErrMalformedCatalog indicates the catalog payload did not match the
	// expected shape.
	ErrMalformedCatalog = errors.New("malformed catalog payload")
	// ErrMalformedManifest indicates a manifest payload did not match the
	// expected shape.
	ErrMalformedManifest = errors.New("malformed manifest payload")
)

// Client talks to the store API and the download CDN.
type Client struct {
	// API serves catalog and manifest metadata.
	API *getter.Client
	// CDN serves archive bytes and images.
	CDN *getter.Client
	// Log receives fetch chatter.
	Log logrus.FieldLogger
}

// NewClient builds a Client. A nil cdn falls back to the api client, for
// deployments that serve archives from the same host.
func NewClient(api, cdn *getter.Client) *Client {
	if cdn == nil {
		cdn = api
	}
	return &Client{
		API: api,
		CDN: cdn,
		Log: logrus.StandardLogger(),
	}
}

// CatalogQuery selects and orders a page of the catalog.
type CatalogQuery struct {
	Page      int
	PerPage   int
	Tags      []string
	MinRating *float64
	// HideMature filters out mature-rated titles server side.
	HideMature bool
	// SortBy is one of title, rating, release_date.
	SortBy string
}

func (q CatalogQuery) encode() string {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 20
	}
	if q.SortBy == "" {
		q.SortBy = "title"
	}

	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("per_page", strconv.Itoa(q.PerPage))
	v.Set("sort", q.SortBy)
	for _, tag := range q.Tags {
		v.Add("tag", tag)
	}
	if q.MinRating != nil {
		v.Set("min_rating", strconv.FormatFloat(*q.MinRating, 'f', -1, 64))
	}
	if q.HideMature {
		v.Set("mature", "false")
	}
	return v.Encode()
}

// FetchCatalog retrieves one page of the catalog.
func (c *Client) FetchCatalog(ctx context.Context, q CatalogQuery) (*CatalogPage, error) {
	var raw json.RawMessage
	if err := c.API.GetJSON(ctx, "api/catalog?"+q.encode(), &raw); err != nil {
		if errors.Is(err, getter.ErrMalformedResponse) {
			return nil, errors.Wrapf(ErrMalformedCatalog, "%v", err)
		}
		return nil, err
	}

	if err := validateSchema(catalogSchema, raw); err != nil {
		return nil, errors.Wrapf(ErrMalformedCatalog, "%v", err)
	}

	page := &CatalogPage{}
	if err := json.Unmarshal(raw, page); err != nil {
		return nil, errors.Wrapf(ErrMalformedCatalog, "%v", err)
	}
	if page.Page == 0 {
		page.Page = q.Page
	}
	if page.TotalPages == 0 {
		page.TotalPages = 1
	}
	return page, nil
}

// FetchAllEntries fetches the first large page of the catalog, which is the
// whole catalog for the store's current size. Used by the update check and
// the catalog cache.
func (c *Client) FetchAllEntries(ctx context.Context) ([]CatalogEntry, error) {
	page, err := c.FetchCatalog(ctx, CatalogQuery{Page: 1, PerPage: 100})
	if err != nil {
		return nil, err
	}
	return page.Games, nil
}

// FetchManifest retrieves the full manifest for one title.
func (c *Client) FetchManifest(ctx context.Context, slug string) (*GameManifest, error) {
	var raw json.RawMessage
	if err := c.API.GetJSON(ctx, "api/game/"+url.PathEscape(slug), &raw); err != nil {
		if errors.Is(err, getter.ErrMalformedResponse) {
			return nil, errors.Wrapf(ErrMalformedManifest, "manifest for %q: %v", slug, err)
		}
		return nil, err
	}

	if err := validateSchema(manifestSchema, raw); err != nil {
		return nil, errors.Wrapf(ErrMalformedManifest, "manifest for %q: %v", slug, err)
	}

	m := &GameManifest{}
	if err := json.Unmarshal(raw, m); err != nil {
		return nil, errors.Wrapf(ErrMalformedManifest, "manifest for %q: %v", slug, err)
	}
	if m.Slug == "" {
		m.Slug = slug
	}
	return m, nil
}

// FetchTags returns all catalog tags grouped by category.
func (c *Client) FetchTags(ctx context.Context) (map[string][]Tag, error) {
	var body struct {
		Grouped map[string][]Tag `json:"grouped"`
	}
	if err := c.API.GetJSON(ctx, "api/tags", &body); err != nil {
		return nil, err
	}
	return body.Grouped, nil
}

// FetchDeviceRatings returns this device's ratings keyed by game slug.
func (c *Client) FetchDeviceRatings(ctx context.Context, deviceID string) (map[string]int, error) {
	var body struct {
		Ratings map[string]int `json:"ratings"`
	}
	path := "api/device/ratings?device_id=" + url.QueryEscape(deviceID)
	if err := c.API.GetJSON(ctx, path, &body); err != nil {
		return nil, err
	}
	return body.Ratings, nil
}

// RateGame submits a 1-5 star rating for a title.
func (c *Client) RateGame(ctx context.Context, deviceID, slug string, rating int) error {
	if rating < 1 || rating > 5 {
		return errors.Errorf("rating must be between 1 and 5, got %d", rating)
	}
	var resp struct {
		OK bool `json:"ok"`
	}
	body := map[string]interface{}{
		"device_id": deviceID,
		"game_slug": slug,
		"rating":    rating,
	}
	if err := c.API.PostJSON(ctx, "api/device/ratings", body, &resp); err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("server rejected rating for %q", slug)
	}
	return nil
}

// RemoveRating withdraws this device's rating for a title.
func (c *Client) RemoveRating(ctx context.Context, deviceID, slug string) error {
	var resp struct {
		OK bool `json:"ok"`
	}
	body := map[string]interface{}{
		"device_id": deviceID,
		"game_slug": slug,
	}
	if err := c.API.DeleteJSON(ctx, "api/device/ratings", body, &resp); err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("server kept rating for %q", slug)
	}
	return nil
}
