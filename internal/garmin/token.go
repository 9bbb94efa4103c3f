// Garmin Coach - Personal Fitness Telemetry Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/garmincoach

package garmin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// TokenFile is the OAuth2 token file written by garth into its token directory.
const TokenFile = "oauth2_token.json"

// ErrNoToken means neither an access token nor a token file was found.
var ErrNoToken = errors.New("no Garmin access token configured; authenticate with garth and set garmin.token_dir or GARMIN_TOKEN")

// oauth2Token is the subset of garth's oauth2_token.json the client uses.
type oauth2Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"` // Unix seconds
}

// resolveToken returns the configured bearer token, falling back to the
// token file in tokenDir. An expired token file is an error.
func resolveToken(accessToken, tokenDir string, now time.Time) (string, error) {
	if tok := strings.TrimSpace(accessToken); tok != "" {
		return tok, nil
	}
	if tokenDir == "" {
		return "", ErrNoToken
	}

	path := filepath.Join(tokenDir, TokenFile)
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w (missing %s)", ErrNoToken, path)
		}
		return "", fmt.Errorf("failed to read token file: %w", err)
	}

	var tok oauth2Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return "", fmt.Errorf("failed to parse token file %s: %w", path, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w (%s has no access_token)", ErrNoToken, path)
	}
	if tok.ExpiresAt > 0 && now.After(time.Unix(tok.ExpiresAt, 0)) {
		return "", fmt.Errorf("token in %s expired at %s; re-authenticate with garth",
			path, time.Unix(tok.ExpiresAt, 0).UTC().Format(time.RFC3339))
	}
	return tok.AccessToken, nil
}
