// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package qbittorrent

import (
	"context"
	"time"

	"github.com/Masterminds/semver/v3"
	qbt "github.com/autobrr/go-qbittorrent"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// minCreateTagsVersion is the first WebAPI version where tags must be
// created before they can be assigned to a torrent.
var minCreateTagsVersion = semver.MustParse("2.8.3")

// Config holds the connection settings for one qBittorrent instance.
type Config struct {
	Host          string
	Username      string
	Password      string
	BasicUsername string
	BasicPassword string
	Timeout       time.Duration
}

// Client wraps the qBittorrent WebAPI client with session handling and a
// version probe taken at connect time.
type Client struct {
	*qbt.Client
	webAPIVersion   string
	needsCreateTags bool
}

// NewClient connects and authenticates against the configured instance.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	qbtCfg := qbt.Config{
		Host:     cfg.Host,
		Username: cfg.Username,
		Password: cfg.Password,
		Timeout:  int(timeout.Seconds()),
	}
	if cfg.BasicUsername != "" {
		qbtCfg.BasicUser = cfg.BasicUsername
		qbtCfg.BasicPass = cfg.BasicPassword
	}

	qbtClient := qbt.NewClient(qbtCfg)

	loginCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := qbtClient.LoginCtx(loginCtx); err != nil {
		return nil, errors.Wrap(err, "could not connect to qBittorrent")
	}

	webAPIVersion, err := qbtClient.GetWebAPIVersionCtx(loginCtx)
	if err != nil {
		webAPIVersion = ""
	}

	needsCreateTags := false
	if webAPIVersion != "" {
		if v, err := semver.NewVersion(webAPIVersion); err == nil {
			needsCreateTags = !v.LessThan(minCreateTagsVersion)
		}
	}

	client := &Client{
		Client:          qbtClient,
		webAPIVersion:   webAPIVersion,
		needsCreateTags: needsCreateTags,
	}

	log.Debug().
		Str("host", cfg.Host).
		Str("webAPIVersion", webAPIVersion).
		Msg("qBittorrent client connected")

	return client, nil
}

// WebAPIVersion returns the version string probed at connect time, empty if
// the probe failed.
func (c *Client) WebAPIVersion() string {
	return c.webAPIVersion
}

// NeedsCreateTags reports whether the server expects tags to exist before
// they are assigned.
func (c *Client) NeedsCreateTags() bool {
	return c.needsCreateTags
}

// HealthCheck probes the WebAPI, re-authenticating once if the session
// expired. Backs the /healthz endpoint in serve mode.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.GetWebAPIVersionCtx(ctx); err != nil {
		if loginErr := c.LoginCtx(ctx); loginErr != nil {
			return errors.Wrap(loginErr, "health check failed: login error")
		}
		if _, err = c.GetWebAPIVersionCtx(ctx); err != nil {
			return errors.Wrap(err, "health check failed: api error")
		}
	}
	return nil
}
