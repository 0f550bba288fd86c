package transfer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	huberrors "github.com/pkghub/pkghub-go/errors"
	"github.com/pkghub/pkghub-go/hubtypes"
	"github.com/pkghub/pkghub-go/internal/multistream"
)

// Download runs the conditional two-phase download flow: a validator
// request against the metadata endpoint, then a separate streaming GET of
// the redirect target. The validator, when non-empty, is the hex content
// digest the caller already holds; a match short-circuits with NotModified
// before any content bytes move.
//
// The returned result's Body is owned by the caller and must be closed.
func (c *Coordinator) Download(
	ctx context.Context,
	target hubtypes.TransferTarget,
	validator string,
	tracker hubtypes.ProgressTracker,
) (*hubtypes.DownloadResult, error) {
	start := time.Now()

	if err := target.Validate(); err != nil {
		return nil, huberrors.NewError("download", err)
	}

	location, err := c.api.ResolveDownload(ctx, target, validator)
	if err != nil {
		return nil, err
	}

	if location.NotModified {
		c.logger.Debug("download validator matched; content unchanged",
			"target", target.String())
		return &hubtypes.DownloadResult{
			NotModified:   true,
			ContentLength: -1,
			Duration:      time.Since(start),
		}, nil
	}

	// Second phase: plain streaming GET of the storage location, redirects
	// allowed, no validator header.
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, location.URL, nil)
	if err != nil {
		return nil, huberrors.NewError("fetch", fmt.Errorf("building content request: %w", err))
	}

	resp, err := c.fetch.Do(httpReq)
	if err != nil {
		if tracker != nil {
			tracker.Error(err)
		}
		return nil, huberrors.NewError("fetch", fmt.Errorf("fetching content: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		message := readErrorBody(resp.Body)
		_ = resp.Body.Close()
		fetchErr := huberrors.FromStatus("fetch", resp.StatusCode, message)
		if tracker != nil {
			tracker.Error(fetchErr)
		}
		return nil, fetchErr
	}

	var body io.Reader = resp.Body
	if tracker != nil {
		body = multistream.NewProgressReader(resp.Body, resp.ContentLength, tracker)
	}

	return &hubtypes.DownloadResult{
		Body:          &trackedBody{reader: body, closer: resp.Body, tracker: tracker},
		ContentLength: resp.ContentLength,
		ContentURL:    location.URL,
		Duration:      time.Since(start),
	}, nil
}

// trackedBody closes over the network body and signals tracker completion
// once the stream has been fully consumed.
type trackedBody struct {
	reader  io.Reader
	closer  io.Closer
	tracker hubtypes.ProgressTracker
	once    sync.Once
}

func (b *trackedBody) Read(p []byte) (int, error) {
	n, err := b.reader.Read(p)
	if err == io.EOF && b.tracker != nil {
		b.once.Do(b.tracker.Complete)
	}
	//nolint:wrapcheck // io.Reader interface contract - error comes from underlying reader
	return n, err
}

func (b *trackedBody) Close() error {
	//nolint:wrapcheck // io.Closer interface contract
	return b.closer.Close()
}
