// Package pkghub provides the pkghub API client.
// This file implements the wire contract the transfer coordinator drives:
// the stage and commit endpoints and the conditional download validator.
package pkghub

import (
	"context"
	"net/http"

	huberrors "github.com/pkghub/pkghub-go/errors"
	"github.com/pkghub/pkghub-go/hubtypes"
)

// apiBridge adapts the Client to the transfer.API boundary. It exists so
// the coordinator's state machine can be exercised against fakes while the
// client keeps sole ownership of request construction and response
// classification.
type apiBridge struct {
	c *Client
}

// Stage registers upload intent and returns the staging grant. The grant is
// validated structurally here, before any file content is read or sent, so
// a malformed stage response fails fast.
func (b apiBridge) Stage(
	ctx context.Context,
	target hubtypes.TransferTarget,
	req hubtypes.StageRequest,
) (*hubtypes.StagingGrant, error) {
	if req.Attrs == nil {
		req.Attrs = map[string]any{}
	}

	grant := &hubtypes.StagingGrant{}
	path := "/stage" + apiPath(target.Owner, target.Package, target.Release, target.Basename)
	if err := b.c.doJSON(ctx, "stage", http.MethodPost, path, req, grant); err != nil {
		return nil, err
	}

	if grant.StorageURL == "" || len(grant.FormFields) == 0 || grant.DistID == "" {
		return nil, &huberrors.Error{
			Op:      "stage",
			Message: "stage response missing storage_url, storage_form_fields, or distribution_id",
			Err:     huberrors.ErrInvalidResponse,
		}
	}
	return grant, nil
}

// Commit finalizes a staged and stored distribution as published.
func (b apiBridge) Commit(
	ctx context.Context,
	target hubtypes.TransferTarget,
	distID string,
) (map[string]any, error) {
	payload := map[string]string{"dist_id": distID}
	var metadata map[string]any
	path := "/commit" + apiPath(target.Owner, target.Package, target.Release, target.Basename)
	if err := b.c.doJSON(ctx, "commit", http.MethodPost, path, payload, &metadata); err != nil {
		return nil, err
	}
	return metadata, nil
}

// ResolveDownload issues the validator request with redirects suppressed.
// A 304 means the caller's content is current; a 302 names the storage
// location to stream from.
func (b apiBridge) ResolveDownload(
	ctx context.Context,
	target hubtypes.TransferTarget,
	validator string,
) (*hubtypes.DownloadLocation, error) {
	path := "/download" + apiPath(target.Owner, target.Package, target.Release, target.Basename)
	req, err := b.c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, huberrors.NewError("download", err)
	}
	if validator != "" {
		req.Header.Set("ETag", validator)
	}

	resp, err := b.c.noRedirect.Do(req)
	if err != nil {
		return nil, huberrors.NewError("download", err)
	}
	defer resp.Body.Close()

	if err := b.c.checkResponse("download", resp, []int{http.StatusFound, http.StatusNotModified}); err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotModified {
		return &hubtypes.DownloadLocation{NotModified: true}, nil
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return nil, &huberrors.Error{
			Op:      "download",
			Message: "redirect response missing Location header",
			Err:     huberrors.ErrInvalidResponse,
		}
	}
	return &hubtypes.DownloadLocation{URL: location}, nil
}
