package pkghub

import (
	"context"
	"net/http"
	"net/url"
)

// PackageSpec describes a package being created.
type PackageSpec struct {
	// Summary is a short summary about the package
	Summary string

	// License is the name of the package license
	License string

	// LicenseURL is the url of the package license
	LicenseURL string

	// Public hosts the package publicly when true
	Public bool

	// Publish announces the package to watchers when true
	Publish bool

	// Attrs is a mapping of extra attributes for the package
	Attrs map[string]any
}

// User returns information about a user. An empty login returns the
// authenticated user.
func (c *Client) User(ctx context.Context, login string) (map[string]any, error) {
	path := "/user"
	if login != "" {
		path = apiPath("user", login)
	}
	var out map[string]any
	if err := c.doJSON(ctx, "user", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UserPackages returns the packages for a user. An empty login returns the
// authenticated user's packages.
func (c *Client) UserPackages(ctx context.Context, login string) ([]map[string]any, error) {
	path := "/packages"
	if login != "" {
		path = apiPath("packages", login)
	}
	var out []map[string]any
	if err := c.doJSON(ctx, "user_packages", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Package returns information about a specific package.
func (c *Client) Package(ctx context.Context, owner, name string) (map[string]any, error) {
	var out map[string]any
	if err := c.doJSON(ctx, "package", http.MethodGet, apiPath("package", owner, name), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddPackage adds a new package to a user's account.
func (c *Client) AddPackage(ctx context.Context, owner, name string, spec PackageSpec) (map[string]any, error) {
	attrs := map[string]any{}
	for k, v := range spec.Attrs {
		attrs[k] = v
	}
	attrs["summary"] = spec.Summary
	attrs["license"] = map[string]any{"name": spec.License, "url": spec.LicenseURL}

	payload := map[string]any{
		"public":       spec.Public,
		"publish":      spec.Publish,
		"public_attrs": attrs,
	}

	var out map[string]any
	if err := c.doJSON(ctx, "add_package", http.MethodPost, apiPath("package", owner, name), payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RemovePackage removes a package and everything under it.
func (c *Client) RemovePackage(ctx context.Context, owner, name string) error {
	return c.doJSON(ctx, "remove_package", http.MethodDelete,
		apiPath("package", owner, name), nil, nil, http.StatusCreated)
}

// AllPackages lists every package, optionally only those modified after the
// given timestamp.
func (c *Client) AllPackages(ctx context.Context, modifiedAfter string) ([]map[string]any, error) {
	path := "/package_listing"
	if modifiedAfter != "" {
		path += "?modified_after=" + url.QueryEscape(modifiedAfter)
	}
	var out []map[string]any
	if err := c.doJSON(ctx, "all_packages", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PackageCollaborators lists the collaborators on a package.
func (c *Client) PackageCollaborators(ctx context.Context, owner, name string) ([]map[string]any, error) {
	var out []map[string]any
	path := apiPath("packages", owner, name, "collaborators")
	if err := c.doJSON(ctx, "collaborators", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddPackageCollaborator grants a user collaborator access to a package.
func (c *Client) AddPackageCollaborator(ctx context.Context, owner, name, collaborator string) error {
	path := apiPath("packages", owner, name, "collaborators", collaborator)
	return c.doJSON(ctx, "add_collaborator", http.MethodPut, path, nil, nil, http.StatusCreated)
}

// RemovePackageCollaborator revokes a user's collaborator access.
func (c *Client) RemovePackageCollaborator(ctx context.Context, owner, name, collaborator string) error {
	path := apiPath("packages", owner, name, "collaborators", collaborator)
	return c.doJSON(ctx, "remove_collaborator", http.MethodDelete, path, nil, nil, http.StatusCreated)
}

// Search searches packages by name, optionally filtered by package type.
func (c *Client) Search(ctx context.Context, query, packageType string) ([]map[string]any, error) {
	params := url.Values{"name": {query}}
	if packageType != "" {
		params.Set("type", packageType)
	}
	var out []map[string]any
	if err := c.doJSON(ctx, "search", http.MethodGet, "/search?"+params.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
