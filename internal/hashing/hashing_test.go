package hashing

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	huberrors "github.com/pkghub/pkghub-go/errors"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantHex string
	}{
		{
			name:    "empty stream",
			content: "",
			wantHex: "d41d8cd98f00b204e9800998ecf8427e",
		},
		{
			name:    "short content",
			content: "abc",
			wantHex: "900150983cd24fb0d6963f7d28e17f72",
		},
		{
			name:    "content larger than one chunk",
			content: strings.Repeat("pkghub-distribution-content\n", 8192),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			digest, err := Compute(strings.NewReader(tt.content))
			require.NoError(t, err)

			assert.Equal(t, int64(len(tt.content)), digest.Size)
			if tt.wantHex != "" {
				assert.Equal(t, tt.wantHex, digest.Hex)
			}

			// Hex and base64 encode the same fingerprint bytes.
			raw, err := hex.DecodeString(digest.Hex)
			require.NoError(t, err)
			assert.Equal(t, base64.StdEncoding.EncodeToString(raw), digest.Base64)
		})
	}
}

func TestCompute_Deterministic(t *testing.T) {
	content := strings.Repeat("same bytes every time", 1000)

	first, err := Compute(strings.NewReader(content))
	require.NoError(t, err)
	second, err := Compute(strings.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCompute_AdvancesStream(t *testing.T) {
	r := strings.NewReader("some distribution bytes")

	_, err := Compute(r)
	require.NoError(t, err)

	// The stream is exhausted; the caller must not assume it was rewound.
	n, err := r.Read(make([]byte, 1))
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestSizeFromSeek(t *testing.T) {
	r := bytes.NewReader([]byte("0123456789"))

	// Consume a prefix so the size must be the remaining delta.
	_, err := r.Read(make([]byte, 4))
	require.NoError(t, err)

	size, err := SizeFromSeek(r)
	require.NoError(t, err)
	assert.Equal(t, int64(6), size)

	// The read position must be restored.
	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "456789", string(rest))
}

func TestSizeFromSeek_UnsupportedStream(t *testing.T) {
	// io.MultiReader yields a reader with no Seek method.
	r := io.MultiReader(strings.NewReader("not"), strings.NewReader("seekable"))

	_, err := SizeFromSeek(r)
	assert.True(t, huberrors.IsUnsupportedStream(err))
}

func TestPosition(t *testing.T) {
	r := bytes.NewReader([]byte("0123456789"))
	_, err := r.Read(make([]byte, 3))
	require.NoError(t, err)

	pos, ok := Position(r)
	assert.True(t, ok)
	assert.Equal(t, int64(3), pos)

	_, ok = Position(io.MultiReader(r))
	assert.False(t, ok)
}

func TestRewind(t *testing.T) {
	r := bytes.NewReader([]byte("0123456789"))
	_, err := io.ReadAll(r)
	require.NoError(t, err)

	require.NoError(t, Rewind(r, 2))
	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "23456789", string(rest))

	err = Rewind(io.MultiReader(), 0)
	assert.True(t, huberrors.IsUnsupportedStream(err))
}
