package pkghub

import (
	"context"
	"net/http"

	"github.com/pkghub/pkghub-go/hubtypes"
)

// ReleaseSpec describes a release being created.
type ReleaseSpec struct {
	// Requirements lists the release's dependency requirements
	Requirements []map[string]any

	// Announce is posted to all package watchers
	Announce string

	// Description is a long description about the release
	Description string
}

// Release returns information about a specific release.
func (c *Client) Release(ctx context.Context, owner, name, version string) (map[string]any, error) {
	var out map[string]any
	path := apiPath("release", owner, name, version)
	if err := c.doJSON(ctx, "release", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddRelease adds a new release to a package.
func (c *Client) AddRelease(ctx context.Context, owner, name, version string, spec ReleaseSpec) (map[string]any, error) {
	payload := map[string]any{
		"requirements": spec.Requirements,
		"announce":     spec.Announce,
		"description":  spec.Description,
	}
	var out map[string]any
	path := apiPath("release", owner, name, version)
	if err := c.doJSON(ctx, "add_release", http.MethodPost, path, payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveRelease removes a release and all files under it.
func (c *Client) RemoveRelease(ctx context.Context, owner, name, version string) error {
	path := apiPath("release", owner, name, version)
	return c.doJSON(ctx, "remove_release", http.MethodDelete, path, nil, nil, http.StatusCreated)
}

// Distribution returns metadata about a specific distribution file.
func (c *Client) Distribution(ctx context.Context, target hubtypes.TransferTarget) (map[string]any, error) {
	var out map[string]any
	path := "/dist" + apiPath(target.Owner, target.Package, target.Release, target.Basename)
	if err := c.doJSON(ctx, "distribution", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveDistribution removes a distribution file by its basename.
func (c *Client) RemoveDistribution(ctx context.Context, target hubtypes.TransferTarget) error {
	path := "/dist" + apiPath(target.Owner, target.Package, target.Release, target.Basename)
	return c.doJSON(ctx, "remove_distribution", http.MethodDelete, path, nil, nil)
}

// RemoveDistributionByID removes a distribution file by its server-assigned
// identifier, for files whose basename is not known.
func (c *Client) RemoveDistributionByID(ctx context.Context, owner, name, version, distID string) error {
	path := apiPath("dist", owner, name, version, "-", distID)
	return c.doJSON(ctx, "remove_distribution", http.MethodDelete, path, nil, nil)
}
