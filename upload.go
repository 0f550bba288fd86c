package pkghub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	huberrors "github.com/pkghub/pkghub-go/errors"
	"github.com/pkghub/pkghub-go/hubtypes"
	"github.com/pkghub/pkghub-go/internal/transfer"
)

// Upload uploads a new distribution to a package release.
//
// The source stream is borrowed for the duration of the upload and never
// closed; unless a pre-computed digest with a known size is supplied via
// WithDigest, the stream must support seeking so it can be hashed and then
// replayed for the store phase.
//
// The upload runs the stage -> store -> commit protocol with no retry: a
// store-phase failure spends the staging grant and a subsequent attempt
// must restart from stage.
//
// Parameters:
//   - target: the slot the distribution occupies (owner/package/release/basename)
//   - source: the file bytes
//   - distributionType: the package format identifier (e.g. "conda", "pypi")
//
// Returns the content digest and the server's final metadata.
func (c *Client) Upload(
	ctx context.Context,
	target hubtypes.TransferTarget,
	source io.Reader,
	distributionType string,
	opts ...UploadOption,
) (*hubtypes.UploadResult, error) {
	options := DefaultUploadOptions()
	for _, opt := range opts {
		opt(options)
	}

	if distributionType == "" {
		return nil, huberrors.NewError("upload", fmt.Errorf("distribution type cannot be empty"))
	}
	if err := validateAttrs(options.Attrs); err != nil {
		return nil, err
	}

	return c.coordinator.Upload(ctx, transfer.UploadRequest{
		Target:           target,
		Source:           source,
		DistributionType: distributionType,
		Description:      options.Description,
		Attrs:            options.Attrs,
		Digest:           options.Digest,
		ContentType:      options.ContentType,
		Tracker:          options.Tracker,
	})
}

// UploadFile uploads a local file as a new distribution. The target's
// Basename defaults to the file's basename, and the file part's media type
// is sniffed from the file content unless overridden with WithContentType.
func (c *Client) UploadFile(
	ctx context.Context,
	target hubtypes.TransferTarget,
	path string,
	distributionType string,
	opts ...UploadOption,
) (*hubtypes.UploadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, huberrors.NewError("upload", fmt.Errorf("opening %s: %w", path, err))
	}
	defer file.Close()

	if target.Basename == "" {
		target.Basename = filepath.Base(path)
	}

	// Sniffed type first so a caller-supplied WithContentType wins.
	if contentType := detectContentType(path); contentType != "" {
		opts = append([]UploadOption{WithContentType(contentType)}, opts...)
	}

	return c.Upload(ctx, target, file, distributionType, opts...)
}

// detectContentType sniffs a file's media type, returning "" when the file
// cannot be read (the part then falls back to application/octet-stream).
func detectContentType(path string) string {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return ""
	}
	return mt.String()
}

// validateAttrs rejects attribute mappings that do not serialize to a JSON
// object before any network I/O happens.
func validateAttrs(attrs map[string]any) error {
	if attrs == nil {
		return nil
	}
	if _, err := json.Marshal(attrs); err != nil {
		return &huberrors.Error{
			Op:      "upload",
			Message: err.Error(),
			Err:     huberrors.ErrMalformedAttrs,
		}
	}
	return nil
}
