package pkghub

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	huberrors "github.com/pkghub/pkghub-go/errors"
)

// Authenticate exchanges basic credentials for an authentication token.
// With this flow a username and password need not be stored permanently,
// and the user can revoke access at any time. The issued token is installed
// on the client for subsequent requests and returned to the caller.
func (c *Client) Authenticate(ctx context.Context, username, password string, opts ...AuthOption) (string, error) {
	const op = "authenticate"

	options := DefaultAuthOptions()
	for _, opt := range opts {
		opt(options)
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	payload := map[string]any{
		"scopes":       options.Scopes,
		"note":         options.Application,
		"note_url":     options.ApplicationURL,
		"hostname":     hostname,
		"user":         options.ForUser,
		"max-age":      options.MaxAge,
		"created_with": options.CreatedWith,
		"strength":     options.Strength,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", huberrors.NewError(op, fmt.Errorf("encoding request body: %w", err))
	}

	// The token endpoint takes the JSON payload base64-wrapped.
	req, err := c.newRequest(ctx, http.MethodPost, "/authentications",
		strings.NewReader(base64.StdEncoding.EncodeToString(raw)))
	if err != nil {
		return "", huberrors.NewError(op, err)
	}
	req.SetBasicAuth(username, password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", huberrors.NewError(op, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if err := c.checkResponse(op, resp, nil); err != nil {
		return "", err
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &huberrors.Error{
			Op:      op,
			Message: "decoding token response",
			Err:     fmt.Errorf("%w: %w", huberrors.ErrInvalidResponse, err),
		}
	}
	if result.Token == "" {
		return "", &huberrors.Error{
			Op:      op,
			Message: "token response missing token",
			Err:     huberrors.ErrInvalidResponse,
		}
	}

	c.SetToken(result.Token)
	return result.Token, nil
}

// Authentication retrieves information on the current authentication token.
func (c *Client) Authentication(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.doJSON(ctx, "authentication", http.MethodGet, "/authentication", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Authentications lists the user's current authentication tokens.
func (c *Client) Authentications(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	if err := c.doJSON(ctx, "authentications", http.MethodGet, "/authentications", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveAuthentication revokes an authentication token by ID.
func (c *Client) RemoveAuthentication(ctx context.Context, authID string) error {
	return c.doJSON(ctx, "remove_authentication", http.MethodDelete,
		apiPath("authentications", authID), nil, nil, http.StatusCreated)
}

// Scopes lists the scopes tokens may be limited to.
func (c *Client) Scopes(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.doJSON(ctx, "scopes", http.MethodGet, "/scopes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
