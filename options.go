// Package pkghub provides functional options for configuring the client
// and its operations.
package pkghub

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/pkghub/pkghub-go/hubtypes"
	"github.com/pkghub/pkghub-go/internal/transfer"
)

const (
	// DefaultBaseURL is the public pkghub API endpoint.
	DefaultBaseURL = "https://api.pkghub.io"

	// DefaultRequestTimeout bounds metadata-plane requests. Store and
	// content-fetch requests use their own limits.
	DefaultRequestTimeout = 60 * time.Second

	// DefaultStoreTimeout is the ceiling for a single store attempt.
	DefaultStoreTimeout = transfer.DefaultStoreTimeout
)

// ClientOptions contains configuration options for the Client.
type ClientOptions struct {
	// BaseURL is the API endpoint, without a trailing slash
	BaseURL string

	// Token authenticates requests; empty means anonymous access
	Token string

	// HTTPClient is the metadata-plane HTTP client. Its connection pool is
	// shared by concurrent transfers and must be safe for concurrent use.
	// If nil, a client with DefaultRequestTimeout is used.
	HTTPClient *http.Client

	// StoreTimeout is the upper bound for one store-phase request
	StoreTimeout time.Duration

	// Logger receives phase-level debug logs and the protocol-version
	// skew warning
	Logger *slog.Logger
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*ClientOptions)

// DefaultClientOptions returns the default client options.
func DefaultClientOptions() *ClientOptions {
	return &ClientOptions{
		BaseURL:      DefaultBaseURL,
		StoreTimeout: DefaultStoreTimeout,
		Logger:       slog.Default(),
	}
}

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(baseURL string) ClientOption {
	return func(opts *ClientOptions) {
		opts.BaseURL = baseURL
	}
}

// WithToken configures the authentication token carried on every request.
func WithToken(token string) ClientOption {
	return func(opts *ClientOptions) {
		opts.Token = token
	}
}

// WithHTTPClient injects a custom metadata-plane HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(opts *ClientOptions) {
		opts.HTTPClient = client
	}
}

// WithStoreTimeout sets the upper bound for a single store-phase request.
// Large-file uploads may run for hours; this is a ceiling, not an estimate.
func WithStoreTimeout(timeout time.Duration) ClientOption {
	return func(opts *ClientOptions) {
		opts.StoreTimeout = timeout
	}
}

// WithLogger configures structured logging for the client.
//
// Example usage:
//
//	client, err := pkghub.New(pkghub.WithLogger(slog.Default()))
func WithLogger(logger *slog.Logger) ClientOption {
	return func(opts *ClientOptions) {
		opts.Logger = logger
	}
}

// UploadOptions contains options for the Upload operation.
type UploadOptions struct {
	// Description is a short description of the file
	Description string

	// Attrs carries extra attributes about the file
	// (e.g. build=1, pyversion="2.7", os="osx")
	Attrs map[string]any

	// Digest is a pre-computed content fingerprint. When set together with
	// its Size the source stream is never read for hashing.
	Digest *hubtypes.ContentDigest

	// ContentType is the media type declared on the file part; defaults to
	// application/octet-stream
	ContentType string

	// Tracker receives advisory progress callbacks during the store phase
	Tracker hubtypes.ProgressTracker
}

// UploadOption is a functional option for configuring Upload operations.
type UploadOption func(*UploadOptions)

// DefaultUploadOptions returns the default upload options.
func DefaultUploadOptions() *UploadOptions {
	return &UploadOptions{}
}

// WithDescription sets a short description for the uploaded file.
func WithDescription(description string) UploadOption {
	return func(opts *UploadOptions) {
		opts.Description = description
	}
}

// WithAttrs sets extra attributes for the uploaded file. The mapping must
// serialize to a JSON object; anything else fails with ErrMalformedAttrs
// before any network I/O.
func WithAttrs(attrs map[string]any) UploadOption {
	return func(opts *UploadOptions) {
		opts.Attrs = attrs
	}
}

// WithDigest supplies a pre-computed content fingerprint, skipping the
// hashing pass over the source stream.
func WithDigest(digest hubtypes.ContentDigest) UploadOption {
	return func(opts *UploadOptions) {
		opts.Digest = &digest
	}
}

// WithContentType sets the media type declared on the file part.
func WithContentType(contentType string) UploadOption {
	return func(opts *UploadOptions) {
		opts.ContentType = contentType
	}
}

// WithProgressTracker sets a tracker for upload progress reporting.
func WithProgressTracker(tracker hubtypes.ProgressTracker) UploadOption {
	return func(opts *UploadOptions) {
		opts.Tracker = tracker
	}
}

// DownloadOptions contains options for the Download operation.
type DownloadOptions struct {
	// KnownDigest is the hex content fingerprint the caller already holds.
	// When it matches the stored content the download short-circuits with
	// NotModified and no body is transferred.
	KnownDigest string

	// Tracker receives advisory progress callbacks while the body streams
	Tracker hubtypes.ProgressTracker
}

// DownloadOption is a functional option for configuring Download operations.
type DownloadOption func(*DownloadOptions)

// DefaultDownloadOptions returns the default download options.
func DefaultDownloadOptions() *DownloadOptions {
	return &DownloadOptions{}
}

// WithKnownDigest sends the hex fingerprint of content the caller already
// has as a cache validator.
func WithKnownDigest(hexDigest string) DownloadOption {
	return func(opts *DownloadOptions) {
		opts.KnownDigest = hexDigest
	}
}

// WithDownloadProgressTracker sets a tracker for download progress reporting.
func WithDownloadProgressTracker(tracker hubtypes.ProgressTracker) DownloadOption {
	return func(opts *DownloadOptions) {
		opts.Tracker = tracker
	}
}

// AuthOptions contains options for token issuance.
type AuthOptions struct {
	// Application is the name of the application requesting access
	Application string

	// ApplicationURL is the application's home page
	ApplicationURL string

	// Scopes limit what the issued token may do
	Scopes []string

	// ForUser issues the token on behalf of another user
	ForUser string

	// MaxAge is the token lifetime in seconds; zero means no limit
	MaxAge int

	// CreatedWith records the tool that created the token
	CreatedWith string

	// Strength is the token strength ("strong" or "weak")
	Strength string
}

// AuthOption is a functional option for configuring token issuance.
type AuthOption func(*AuthOptions)

// DefaultAuthOptions returns the default auth options.
func DefaultAuthOptions() *AuthOptions {
	return &AuthOptions{
		Application: "pkghub-go",
		Strength:    "strong",
	}
}

// WithApplication names the application requesting access.
func WithApplication(name, homepage string) AuthOption {
	return func(opts *AuthOptions) {
		opts.Application = name
		opts.ApplicationURL = homepage
	}
}

// WithScopes limits what the issued token may do.
func WithScopes(scopes ...string) AuthOption {
	return func(opts *AuthOptions) {
		opts.Scopes = scopes
	}
}

// WithForUser issues the token on behalf of another user.
func WithForUser(login string) AuthOption {
	return func(opts *AuthOptions) {
		opts.ForUser = login
	}
}

// WithMaxAge limits the token lifetime, in seconds.
func WithMaxAge(seconds int) AuthOption {
	return func(opts *AuthOptions) {
		opts.MaxAge = seconds
	}
}

// WithStrength sets the token strength ("strong" or "weak").
func WithStrength(strength string) AuthOption {
	return func(opts *AuthOptions) {
		opts.Strength = strength
	}
}

// WithCreatedWith records the tool that created the token.
func WithCreatedWith(tool string) AuthOption {
	return func(opts *AuthOptions) {
		opts.CreatedWith = tool
	}
}
