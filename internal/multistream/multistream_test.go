package multistream

import (
	"io"
	"mime"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkghub/pkghub-go/hubtypes"
	"github.com/pkghub/pkghub-go/internal/testutil"
)

func encodeFile(content string) hubtypes.FilePart {
	return hubtypes.FilePart{
		Basename: "pkg-1.0.tar.gz",
		Reader:   strings.NewReader(content),
		Size:     int64(len(content)),
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	fields := []Field{
		{Name: "key", Value: "staging/pkg-1.0.tar.gz"},
		{Name: "policy", Value: "b64-opaque-policy"},
		{Name: "Content-MD5", Value: "qqqq=="},
	}
	fileContent := strings.Repeat("distribution bytes\n", 4096)

	body, err := Encode(fields, encodeFile(fileContent), nil)
	require.NoError(t, err)

	_, params, err := mime.ParseMediaType(body.ContentType)
	require.NoError(t, err)
	require.NotEmpty(t, params["boundary"])

	reader := multipart.NewReader(body.Reader, params["boundary"])

	// Field parts come first, in the order they were supplied.
	for _, want := range fields {
		part, err := reader.NextPart()
		require.NoError(t, err)
		assert.Equal(t, want.Name, part.FormName())
		value, err := io.ReadAll(part)
		require.NoError(t, err)
		assert.Equal(t, want.Value, string(value))
	}

	// The file part is last and carries the declared filename.
	part, err := reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "file", part.FormName())
	assert.Equal(t, "pkg-1.0.tar.gz", part.FileName())
	assert.Equal(t, "application/octet-stream", part.Header.Get("Content-Type"))
	got, err := io.ReadAll(part)
	require.NoError(t, err)
	assert.Equal(t, fileContent, string(got))

	_, err = reader.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestEncode_ContentLengthIsExact(t *testing.T) {
	fields := []Field{{Name: "acl", Value: "private"}}
	content := strings.Repeat("x", 100_000)

	body, err := Encode(fields, encodeFile(content), nil)
	require.NoError(t, err)

	raw, err := io.ReadAll(body.Reader)
	require.NoError(t, err)
	assert.Equal(t, body.ContentLength, int64(len(raw)))
}

func TestEncode_FileContentType(t *testing.T) {
	file := encodeFile("data")
	file.ContentType = "application/x-tar"

	body, err := Encode(nil, file, nil)
	require.NoError(t, err)

	_, params, err := mime.ParseMediaType(body.ContentType)
	require.NoError(t, err)
	reader := multipart.NewReader(body.Reader, params["boundary"])

	part, err := reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "application/x-tar", part.Header.Get("Content-Type"))
}

func TestEncode_EscapesFilename(t *testing.T) {
	file := hubtypes.FilePart{
		Basename: `odd "name".tar`,
		Reader:   strings.NewReader("data"),
		Size:     4,
	}

	body, err := Encode(nil, file, nil)
	require.NoError(t, err)

	_, params, err := mime.ParseMediaType(body.ContentType)
	require.NoError(t, err)
	reader := multipart.NewReader(body.Reader, params["boundary"])

	part, err := reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, `odd "name".tar`, part.FileName())
}

func TestEncode_BoundaryUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		body, err := Encode(nil, encodeFile("data"), nil)
		require.NoError(t, err)

		_, params, err := mime.ParseMediaType(body.ContentType)
		require.NoError(t, err)
		boundary := params["boundary"]
		assert.False(t, seen[boundary], "boundary %q produced twice", boundary)
		seen[boundary] = true
	}
}

func TestEncode_Progress(t *testing.T) {
	tracker := &testutil.MockProgressTracker{}
	content := strings.Repeat("y", 64*1024)

	body, err := Encode([]Field{{Name: "k", Value: "v"}}, encodeFile(content), tracker)
	require.NoError(t, err)

	_, err = io.Copy(io.Discard, body.Reader)
	require.NoError(t, err)

	require.True(t, tracker.UpdateCalled)
	assert.True(t, tracker.NonDecreasing(), "cumulative byte counts must never decrease")
	assert.Equal(t, body.ContentLength, tracker.BytesTransferred,
		"final cumulative count must equal the declared total")
	assert.Equal(t, body.ContentLength, tracker.TotalBytes)

	// Completion is the transfer's signal, not the encoder's.
	assert.False(t, tracker.CompleteCalled)
}

func TestEncode_Validation(t *testing.T) {
	_, err := Encode(nil, hubtypes.FilePart{Basename: "x", Size: 1}, nil)
	assert.Error(t, err, "missing reader must be rejected")

	_, err = Encode(nil, hubtypes.FilePart{
		Basename: "x",
		Reader:   strings.NewReader(""),
		Size:     -1,
	}, nil)
	assert.Error(t, err, "negative size must be rejected")
}
