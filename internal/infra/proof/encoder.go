// Package proof turns an uploaded payment-proof image into the opaque data
// URI stored on an order.
package proof

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const DefaultMaxSize = 5 << 20

var (
	ErrEmptyUpload = errors.New("payment proof is empty")
	ErrNotAnImage  = errors.New("payment proof must be an image")
	ErrTooLarge    = errors.New("payment proof is too large")
)

type Encoder interface {
	Encode(r io.Reader) (string, error)
}

type DataURIEncoder struct {
	MaxSize int64
}

var _ Encoder = DataURIEncoder{}

func NewDataURIEncoder(maxSize int64) DataURIEncoder {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return DataURIEncoder{MaxSize: maxSize}
}

func (e DataURIEncoder) Encode(r io.Reader) (string, error) {
	limit := e.MaxSize
	if limit <= 0 {
		limit = DefaultMaxSize
	}
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("read payment proof: %w", err)
	}
	if len(b) == 0 {
		return "", ErrEmptyUpload
	}
	if int64(len(b)) > limit {
		return "", ErrTooLarge
	}

	mt := mimetype.Detect(b)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: got %s", ErrNotAnImage, mt.String())
	}
	// strip parameters such as charset
	contentType, _, _ := strings.Cut(mt.String(), ";")
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(b), nil
}
