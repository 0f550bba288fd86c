package transfer

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/pkghub/pkghub-go/hubtypes"
)

// DefaultStoreTimeout is the ceiling for a single store attempt. Large-file
// uploads may legitimately run for hours; the value is a configurable upper
// bound, not a hard constant.
const DefaultStoreTimeout = 10 * time.Hour

// API is the metadata-plane boundary the coordinator drives. It is
// implemented by the pkghub client and injected here so the transfer state
// machine can be exercised against fakes.
type API interface {
	// Stage registers upload intent for the target and returns the
	// single-use staging grant naming the storage endpoint.
	Stage(ctx context.Context, target hubtypes.TransferTarget, req hubtypes.StageRequest) (*hubtypes.StagingGrant, error)

	// Commit finalizes a staged and stored distribution as published and
	// returns the server's release/file metadata.
	Commit(ctx context.Context, target hubtypes.TransferTarget, distID string) (map[string]any, error)

	// ResolveDownload issues the conditional validator request for the
	// target with redirects suppressed and reports either not-modified or
	// the redirect target holding the content.
	ResolveDownload(ctx context.Context, target hubtypes.TransferTarget, validator string) (*hubtypes.DownloadLocation, error)
}

// Coordinator executes the upload state machine and the conditional
// download flow. It is safe for concurrent use: each transfer owns its own
// staging grant and stream, and the underlying HTTP clients share only
// their connection pools.
type Coordinator struct {
	api API

	// store posts multipart bodies to the storage endpoint with an
	// extended timeout
	store *http.Client

	// fetch follows the download redirect and streams content bodies;
	// no timeout, the body may be read for a long time
	fetch *http.Client

	logger *slog.Logger
}

// New creates a Coordinator around the given metadata-plane API.
// A non-positive storeTimeout falls back to DefaultStoreTimeout.
func New(apiClient API, storeTimeout time.Duration, logger *slog.Logger) *Coordinator {
	if storeTimeout <= 0 {
		storeTimeout = DefaultStoreTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		api:    apiClient,
		store:  &http.Client{Timeout: storeTimeout},
		fetch:  &http.Client{},
		logger: logger,
	}
}
