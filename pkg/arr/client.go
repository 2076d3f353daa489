// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package arr provides a minimal client for the Sonarr and Lidarr APIs,
// covering only what the cleanup commands need.
package arr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Config holds the options for constructing a Client.
type Config struct {
	Host       string
	APIKey     string
	Timeout    int
	HTTPClient *http.Client
	UserAgent  string
}

// Client is a thin wrapper over an arr-style JSON API.
type Client struct {
	host       string
	apiBase    string
	apiKey     string
	httpClient *http.Client
	userAgent  string
}

// NewSonarr constructs a client for the Sonarr v3 API.
func NewSonarr(cfg Config) *Client {
	return newClient(cfg, "api/v3")
}

// NewLidarr constructs a client for the Lidarr v1 API.
func NewLidarr(cfg Config) *Client {
	return newClient(cfg, "api/v1")
}

func newClient(cfg Config, apiBase string) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = "seedpull"
	}

	return &Client{
		host:       strings.TrimRight(cfg.Host, "/"),
		apiBase:    apiBase,
		apiKey:     cfg.APIKey,
		httpClient: client,
		userAgent:  ua,
	}
}

// Series represents the subset of a Sonarr series the cleanup needs.
type Series struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// EpisodeFile represents an imported episode file known to Sonarr.
type EpisodeFile struct {
	ID   int    `json:"id"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// HistoryRecord represents a Lidarr history entry.
type HistoryRecord struct {
	EventType string            `json:"eventType"`
	Data      map[string]string `json:"data"`
}

// Series retrieves all series from a Sonarr instance.
func (c *Client) Series(ctx context.Context) ([]Series, error) {
	var series []Series
	if err := c.getJSON(ctx, "series", nil, &series); err != nil {
		return nil, err
	}
	return series, nil
}

// EpisodeFiles retrieves the episode files imported for a series.
func (c *Client) EpisodeFiles(ctx context.Context, seriesID int) ([]EpisodeFile, error) {
	var files []EpisodeFile
	params := url.Values{"seriesId": []string{strconv.Itoa(seriesID)}}
	if err := c.getJSON(ctx, "episodefile", params, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// HistorySince retrieves history records of the given event type created
// after since.
func (c *Client) HistorySince(ctx context.Context, since time.Time, eventType string) ([]HistoryRecord, error) {
	var records []HistoryRecord
	params := url.Values{
		"date":      []string{since.UTC().Format(time.RFC3339)},
		"eventType": []string{eventType},
	}
	if err := c.getJSON(ctx, "history/since", params, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if c.httpClient == nil {
		return fmt.Errorf("arr HTTP client is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	endpoint, err := url.JoinPath(c.host, c.apiBase, path)
	if err != nil {
		return fmt.Errorf("failed to build arr endpoint: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build arr request: %w", err)
	}
	if params != nil {
		req.URL.RawQuery = params.Encode()
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("arr request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("arr returned status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode arr response: %w", err)
	}
	return nil
}
