// Package multistream lazily serializes form fields plus a single file part
// into a multipart/form-data byte stream.
//
// The body is produced as a pull-based io.Reader: the field parts and part
// framing are materialized eagerly (they are small), while the file bytes
// flow straight from the source stream. The whole body is never held in
// memory, so file parts may be arbitrarily large.
package multistream

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/google/uuid"

	huberrors "github.com/pkghub/pkghub-go/errors"
	"github.com/pkghub/pkghub-go/hubtypes"
)

// Field is a single non-file form field. Fields are emitted in slice order,
// all before the file part.
type Field struct {
	Name  string
	Value string
}

// Body is an encoded multipart payload. Reader produces the body exactly
// once; ContentLength is exact so transport-level length headers can be set
// truthfully (some storage backends reject chunked transfer encoding).
type Body struct {
	Reader        io.Reader
	ContentType   string
	ContentLength int64
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// newBoundary returns a fixed-length random boundary token. The 122 bits of
// UUID randomness make a collision with field values or file content
// overwhelmingly improbable; like the original protocol, no content scan
// for false matches is performed.
func newBoundary() string {
	return "pkghub-" + uuid.NewString()
}

// Encode serializes the given fields and file part into a single
// boundary-delimited multipart stream.
//
// The returned reader yields: each field as its own form-data part, the
// file part (with filename and content type), and the terminal closing
// boundary. If tracker is non-nil its Update method is invoked after each
// chunk with the cumulative bytes produced and the total body length; the
// callback is advisory and must not block.
//
// The file part's Size must equal the number of bytes its Reader will
// yield; a mismatch surfaces as a transport-level length error.
func Encode(fields []Field, file hubtypes.FilePart, tracker hubtypes.ProgressTracker) (*Body, error) {
	if file.Reader == nil {
		return nil, huberrors.NewError("encode", fmt.Errorf("file part has no reader"))
	}
	if file.Size < 0 {
		return nil, huberrors.NewError("encode", fmt.Errorf("file part size must be non-negative, got %d", file.Size))
	}

	var head bytes.Buffer
	w := multipart.NewWriter(&head)
	if err := w.SetBoundary(newBoundary()); err != nil {
		return nil, huberrors.NewError("encode", fmt.Errorf("setting boundary: %w", err))
	}

	for _, f := range fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, huberrors.NewError("encode", fmt.Errorf("writing field %q: %w", f.Name, err))
		}
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(file.Basename)))
	header.Set("Content-Type", contentType)

	// CreatePart writes the file part's framing into head; the file bytes
	// themselves stream through afterwards.
	if _, err := w.CreatePart(header); err != nil {
		return nil, huberrors.NewError("encode", fmt.Errorf("creating file part: %w", err))
	}

	// Terminal closing boundary, exactly as multipart.Writer.Close emits it.
	tail := "\r\n--" + w.Boundary() + "--\r\n"

	total := int64(head.Len()) + file.Size + int64(len(tail))

	var reader io.Reader = io.MultiReader(&head, file.Reader, strings.NewReader(tail))
	if tracker != nil {
		reader = NewProgressReader(reader, total, tracker)
	}

	return &Body{
		Reader:        reader,
		ContentType:   w.FormDataContentType(),
		ContentLength: total,
	}, nil
}

// ProgressReader wraps an io.Reader to report cumulative progress to a
// ProgressTracker as bytes pass through. The cumulative count is
// non-decreasing and reaches the declared total when the stream is fully
// consumed.
type ProgressReader struct {
	reader    io.Reader
	tracker   hubtypes.ProgressTracker
	total     int64
	bytesRead int64
}

// NewProgressReader wraps r so that every read reports progress against the
// declared total.
func NewProgressReader(r io.Reader, total int64, tracker hubtypes.ProgressTracker) *ProgressReader {
	return &ProgressReader{
		reader:  r,
		tracker: tracker,
		total:   total,
	}
}

func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		pr.bytesRead += int64(n)
		if pr.tracker != nil {
			pr.tracker.Update(pr.bytesRead, pr.total)
		}
	}
	//nolint:wrapcheck // io.Reader interface contract - error comes from underlying reader
	return n, err
}
