package pkghub

import (
	"context"
	"fmt"
	"io"
	"os"

	huberrors "github.com/pkghub/pkghub-go/errors"
	"github.com/pkghub/pkghub-go/hubtypes"
)

// Download downloads a package distribution.
//
// When WithKnownDigest supplies the hex fingerprint of content the caller
// already holds, it is sent as a cache validator and an unchanged file
// yields a NotModified result with no body transferred. Otherwise the
// result's Body streams the content; the caller owns it and must close it.
func (c *Client) Download(
	ctx context.Context,
	target hubtypes.TransferTarget,
	opts ...DownloadOption,
) (*hubtypes.DownloadResult, error) {
	options := DefaultDownloadOptions()
	for _, opt := range opts {
		opt(options)
	}

	return c.coordinator.Download(ctx, target, options.KnownDigest, options.Tracker)
}

// DownloadToFile downloads a distribution and writes it to a local file.
// The file is created (or truncated) only after the validator phase, so a
// NotModified outcome leaves the existing file untouched. The returned
// result's Body is already consumed and nil.
func (c *Client) DownloadToFile(
	ctx context.Context,
	target hubtypes.TransferTarget,
	path string,
	opts ...DownloadOption,
) (*hubtypes.DownloadResult, error) {
	result, err := c.Download(ctx, target, opts...)
	if err != nil {
		return nil, err
	}
	if result.NotModified {
		return result, nil
	}
	defer result.Body.Close()

	file, err := os.Create(path)
	if err != nil {
		return nil, huberrors.NewError("download", fmt.Errorf("creating %s: %w", path, err))
	}
	defer file.Close()

	written, err := io.Copy(file, result.Body)
	if err != nil {
		return nil, huberrors.NewError("download", fmt.Errorf("writing %s: %w", path, err))
	}

	if result.ContentLength < 0 {
		result.ContentLength = written
	}
	result.Body = nil
	return result, nil
}
