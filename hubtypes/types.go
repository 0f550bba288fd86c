// Package hubtypes provides shared type definitions for the pkghub client.
package hubtypes

import (
	"fmt"
	"io"
	"time"
)

// TransferTarget identifies the logical slot a distribution occupies:
// one file belonging to one release of one package.
// It is immutable once constructed and is supplied by the caller.
type TransferTarget struct {
	// Owner is the login of the package owner
	Owner string

	// Package is the package name
	Package string

	// Release is the release version string
	Release string

	// Basename is the file basename of the distribution
	Basename string
}

// Validate checks that every component of the target is present.
func (t TransferTarget) Validate() error {
	switch {
	case t.Owner == "":
		return fmt.Errorf("transfer target: owner cannot be empty")
	case t.Package == "":
		return fmt.Errorf("transfer target: package cannot be empty")
	case t.Release == "":
		return fmt.Errorf("transfer target: release cannot be empty")
	case t.Basename == "":
		return fmt.Errorf("transfer target: basename cannot be empty")
	}
	return nil
}

// String returns the slash-joined form used in API paths.
func (t TransferTarget) String() string {
	return t.Owner + "/" + t.Package + "/" + t.Release + "/" + t.Basename
}

// ContentDigest is the content fingerprint of a distribution file.
// It is computed once per upload (or supplied by the caller pre-computed)
// and never recomputed after the stream has been read.
type ContentDigest struct {
	// Hex is the hex-encoded md5 fingerprint, used as the download validator
	Hex string

	// Base64 is the base64-encoded md5 fingerprint, sent as the
	// Content-MD5 form field during the store phase
	Base64 string

	// Size is the byte length of the content
	Size int64
}

// StagingGrant is the server-issued, single-use descriptor returned by the
// stage phase. It is consumed by exactly one store attempt; if that attempt
// fails a fresh stage must be requested, the grant is never reused.
type StagingGrant struct {
	// StorageURL is the object-storage endpoint the file bytes are posted to
	StorageURL string `json:"storage_url"`

	// FormFields are backend-specific form fields that must be forwarded
	// verbatim as text parts of the store request
	FormFields map[string]string `json:"storage_form_fields"`

	// DistID is the distribution identifier committed after a successful store
	DistID string `json:"distribution_id"`
}

// StageRequest carries the distribution metadata registered during the
// stage phase.
type StageRequest struct {
	DistributionType string         `json:"distribution_type"`
	Description      string         `json:"description"`
	Attrs            map[string]any `json:"attrs"`
}

// FilePart is a single file part of a multipart store request. The part is
// owned exclusively by the stream encoder for the duration of encoding and
// is never duplicated in memory.
type FilePart struct {
	// Basename is the filename declared in the part's Content-Disposition
	Basename string

	// Reader supplies the file bytes
	Reader io.Reader

	// Size is the declared byte length; it must be known up front so the
	// exact Content-Length of the whole body can be computed
	Size int64

	// ContentType is the media type of the part; defaults to
	// application/octet-stream when empty
	ContentType string
}

// ProgressTracker defines the interface for tracking transfer progress.
// Implementations can provide real-time progress updates during uploads
// and downloads. Callbacks are advisory and must not block; they are
// invoked synchronously between chunks.
type ProgressTracker interface {
	// Update is called periodically with transfer progress
	Update(bytesTransferred, totalBytes int64)

	// Complete is called when the transfer completes successfully
	Complete()

	// Error is called when the transfer fails
	Error(err error)
}

// UploadResult contains the result of an upload operation.
type UploadResult struct {
	// Target is the slot the distribution was uploaded to
	Target TransferTarget

	// Digest is the content fingerprint of the uploaded file
	Digest ContentDigest

	// Metadata is the server's release/file metadata returned by commit
	Metadata map[string]any

	// Duration is how long the upload took
	Duration time.Duration
}

// DownloadLocation is the outcome of the conditional validator request that
// precedes a download: either the content is unchanged, or the server
// redirected to the real content URL.
type DownloadLocation struct {
	// NotModified reports that the caller's validator matched the stored
	// content; no body is transferred
	NotModified bool

	// URL is the redirect target holding the content bytes
	URL string
}

// DownloadResult contains the result of a download operation.
type DownloadResult struct {
	// NotModified reports that the known digest matched the stored content.
	// When true no body was transferred and Body is nil.
	NotModified bool

	// Body streams the distribution content. The caller owns it and must
	// close it. Nil when NotModified is true or when the body has already
	// been written out (DownloadToFile).
	Body io.ReadCloser

	// ContentLength is the size reported by the storage backend, or -1
	// when unknown
	ContentLength int64

	// ContentURL is the resolved storage location the body was fetched from
	ContentURL string

	// Duration is how long the download took
	Duration time.Duration
}
