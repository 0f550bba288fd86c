// Package hashing computes content fingerprints for distribution files.
//
// The fingerprint algorithm is md5 because that is what the storage
// backend validates through the Content-MD5 form field; it is a transfer
// integrity check, not a security boundary.
package hashing

import (
	"crypto/md5" //nolint:gosec // fixed by the storage wire contract
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	huberrors "github.com/pkghub/pkghub-go/errors"
	"github.com/pkghub/pkghub-go/hubtypes"
)

// chunkSize bounds peak memory while keeping syscall overhead low.
const chunkSize = 64 * 1024

// Compute reads the stream to exhaustion in fixed-size chunks, feeding each
// chunk into an incremental md5 accumulator, and returns the resulting
// fingerprint together with the number of bytes actually read.
//
// The size always reflects bytes read during hashing, never stream
// metadata. Compute advances the stream's read position; the caller must
// not assume the stream can be rewound afterwards.
func Compute(r io.Reader) (hubtypes.ContentDigest, error) {
	h := md5.New() //nolint:gosec // fixed by the storage wire contract

	n, err := io.CopyBuffer(h, r, make([]byte, chunkSize))
	if err != nil {
		return hubtypes.ContentDigest{}, huberrors.NewError("hash", fmt.Errorf("reading stream: %w", err))
	}

	sum := h.Sum(nil)
	return hubtypes.ContentDigest{
		Hex:    hex.EncodeToString(sum),
		Base64: base64.StdEncoding.EncodeToString(sum),
		Size:   n,
	}, nil
}

// SizeFromSeek derives the remaining byte length of a stream by seeking to
// its end and computing the delta from the current position, then seeking
// back. This is used when the caller supplied a pre-computed digest but no
// size. Streams without random access fail with ErrUnsupportedStream.
func SizeFromSeek(r io.Reader) (int64, error) {
	seeker, ok := r.(io.Seeker)
	if !ok {
		return 0, huberrors.NewError("size", huberrors.ErrUnsupportedStream)
	}

	pos, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, huberrors.NewError("size", fmt.Errorf("querying stream position: %w", err))
	}

	end, err := seeker.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, huberrors.NewError("size", fmt.Errorf("seeking stream end: %w", err))
	}

	if _, err := seeker.Seek(pos, io.SeekStart); err != nil {
		return 0, huberrors.NewError("size", fmt.Errorf("restoring stream position: %w", err))
	}

	return end - pos, nil
}

// Rewind moves a stream back to the position it held before hashing.
// Streams without random access fail with ErrUnsupportedStream.
func Rewind(r io.Reader, pos int64) error {
	seeker, ok := r.(io.Seeker)
	if !ok {
		return huberrors.NewError("rewind", huberrors.ErrUnsupportedStream)
	}
	if _, err := seeker.Seek(pos, io.SeekStart); err != nil {
		return huberrors.NewError("rewind", fmt.Errorf("seeking stream start: %w", err))
	}
	return nil
}

// Position reports the current read position of a seekable stream, or 0 and
// false when the stream does not support seeking.
func Position(r io.Reader) (int64, bool) {
	seeker, ok := r.(io.Seeker)
	if !ok {
		return 0, false
	}
	pos, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, false
	}
	return pos, true
}
