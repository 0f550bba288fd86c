package transfer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	huberrors "github.com/pkghub/pkghub-go/errors"
	"github.com/pkghub/pkghub-go/hubtypes"
	"github.com/pkghub/pkghub-go/internal/hashing"
	"github.com/pkghub/pkghub-go/internal/multistream"
)

// storeErrorBodyLimit caps how much of a failed store response is read for
// its error message.
const storeErrorBodyLimit = 64 * 1024

// UploadRequest describes one upload attempt. The Source stream is borrowed
// from the caller for the duration of digest+store and is never closed here.
type UploadRequest struct {
	Target hubtypes.TransferTarget

	// Source supplies the file bytes. Unless Digest is pre-computed with a
	// known size, the stream must support seeking so it can be replayed
	// for the store phase after hashing.
	Source io.Reader

	// DistributionType identifies the package format (e.g. "conda", "pypi")
	DistributionType string

	// Description is a short description of the file
	Description string

	// Attrs carries extra attributes about the file
	Attrs map[string]any

	// Digest, when non-nil, is the caller's pre-computed fingerprint; the
	// stream is then never read for hashing. A digest with Size 0 has its
	// size derived by seeking.
	Digest *hubtypes.ContentDigest

	// ContentType is the media type declared on the file part
	ContentType string

	// Tracker receives advisory progress callbacks during the store phase
	Tracker hubtypes.ProgressTracker
}

// Upload runs the stage -> digest -> store -> commit pipeline for a single
// distribution. Transitions are strictly sequential with no retry loop: a
// non-201 store response is terminal and spends the staging grant, so a
// retry must restart from stage.
func (c *Coordinator) Upload(ctx context.Context, req UploadRequest) (*hubtypes.UploadResult, error) {
	start := time.Now()

	if err := req.Target.Validate(); err != nil {
		return nil, huberrors.NewError("upload", err)
	}
	if req.Source == nil {
		return nil, huberrors.NewError("upload", fmt.Errorf("source stream cannot be nil"))
	}

	// Stage. Deliberately before hashing: staging must not block on
	// reading a potentially large file.
	grant, err := c.api.Stage(ctx, req.Target, hubtypes.StageRequest{
		DistributionType: req.DistributionType,
		Description:      req.Description,
		Attrs:            req.Attrs,
	})
	if err != nil {
		return nil, err
	}
	c.logger.Debug("staged distribution",
		"target", req.Target.String(),
		"dist_id", grant.DistID)

	digest, err := c.resolveDigest(req)
	if err != nil {
		return nil, err
	}

	if err := c.storePhase(ctx, grant, req, digest); err != nil {
		if req.Tracker != nil {
			req.Tracker.Error(err)
		}
		return nil, err
	}
	if req.Tracker != nil {
		req.Tracker.Complete()
	}

	metadata, err := c.api.Commit(ctx, req.Target, grant.DistID)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("committed distribution",
		"target", req.Target.String(),
		"dist_id", grant.DistID,
		"size", digest.Size)

	return &hubtypes.UploadResult{
		Target:   req.Target,
		Digest:   digest,
		Metadata: metadata,
		Duration: time.Since(start),
	}, nil
}

// resolveDigest produces the content fingerprint for the upload without
// ever reading the stream twice.
//
// Three paths, mirroring the protocol contract:
//   - digest and size both supplied: no bytes of the stream are read;
//   - digest supplied without size: size is derived by seeking;
//   - no digest: the stream is hashed in full and rewound for the store
//     phase, which requires it to be seekable.
func (c *Coordinator) resolveDigest(req UploadRequest) (hubtypes.ContentDigest, error) {
	if req.Digest != nil {
		digest := *req.Digest
		if digest.Size > 0 {
			return digest, nil
		}
		size, err := hashing.SizeFromSeek(req.Source)
		if err != nil {
			return hubtypes.ContentDigest{}, err
		}
		digest.Size = size
		return digest, nil
	}

	pos, seekable := hashing.Position(req.Source)
	if !seekable {
		return hubtypes.ContentDigest{}, &huberrors.Error{
			Op:      "hash",
			Message: "source must be seekable unless a digest and size are supplied",
			Err:     huberrors.ErrUnsupportedStream,
		}
	}

	digest, err := hashing.Compute(req.Source)
	if err != nil {
		return hubtypes.ContentDigest{}, err
	}
	if err := hashing.Rewind(req.Source, pos); err != nil {
		return hubtypes.ContentDigest{}, err
	}
	return digest, nil
}

// storePhase transmits the file bytes to the storage backend named by the
// grant. The grant's form fields are forwarded verbatim as text parts,
// followed by the content length and digest fields, followed by the file
// part itself. Success is exactly status 201.
func (c *Coordinator) storePhase(
	ctx context.Context,
	grant *hubtypes.StagingGrant,
	req UploadRequest,
	digest hubtypes.ContentDigest,
) error {
	fields := make([]multistream.Field, 0, len(grant.FormFields)+2)
	for _, name := range sortedKeys(grant.FormFields) {
		fields = append(fields, multistream.Field{Name: name, Value: grant.FormFields[name]})
	}
	fields = append(fields,
		multistream.Field{Name: "Content-Length", Value: strconv.FormatInt(digest.Size, 10)},
		multistream.Field{Name: "Content-MD5", Value: digest.Base64},
	)

	body, err := multistream.Encode(fields, hubtypes.FilePart{
		Basename:    req.Target.Basename,
		Reader:      req.Source,
		Size:        digest.Size,
		ContentType: req.ContentType,
	}, req.Tracker)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, grant.StorageURL, body.Reader)
	if err != nil {
		return huberrors.NewError("store", fmt.Errorf("building storage request: %w", err))
	}
	httpReq.Header.Set("Content-Type", body.ContentType)
	// Exact length, never chunked: some storage backends reject bodies
	// without a declared Content-Length.
	httpReq.ContentLength = body.ContentLength

	resp, err := c.store.Do(httpReq)
	if err != nil {
		return huberrors.NewError("store", fmt.Errorf("posting to storage backend: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		message := readErrorBody(resp.Body)
		if message == "" {
			message = huberrors.StatusText(resp.StatusCode)
		}
		c.logger.Warn("store phase failed; staging grant is spent",
			"target", req.Target.String(),
			"status", resp.StatusCode)
		storeErr := huberrors.FromStatus("store", resp.StatusCode, message)
		storeErr.Message += "; the staging grant is spent, restart the upload from stage"
		return storeErr
	}

	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// readErrorBody extracts a trimmed error message from a failed response
// body, bounded so a hostile response cannot balloon memory.
func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, storeErrorBodyLimit))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
