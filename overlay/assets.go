package overlay

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeImage decodes a raster asset and returns the format name.
func DecodeImage(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", &InputError{Op: "decode image", Err: &UnsupportedAssetError{}}
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		return nil, "", &InputError{Op: "decode image", Err: &UnsupportedAssetError{}}
	}
	if err != nil {
		return nil, format, &DecodeError{Op: "decode " + format + " image", Err: err}
	}
	return img, format, nil
}

// AssetStore holds decoded images keyed by the SHA-256 of their bytes.
type AssetStore struct {
	images map[string]image.Image
}

func NewAssetStore() *AssetStore {
	return &AssetStore{images: make(map[string]image.Image)}
}

// Put decodes data and stores it. Inserting the same bytes twice yields
// the same key.
func (s *AssetStore) Put(data []byte) (string, image.Image, error) {
	sum := sha256.Sum256(data)
	key := hex.EncodeToString(sum[:])
	if img, ok := s.images[key]; ok {
		return key, img, nil
	}
	img, _, err := DecodeImage(data)
	if err != nil {
		return "", nil, err
	}
	s.images[key] = img
	return key, img, nil
}

func (s *AssetStore) Get(key string) (image.Image, bool) {
	if s == nil {
		return nil, false
	}
	img, ok := s.images[key]
	return img, ok
}

func (s *AssetStore) Len() int { return len(s.images) }

// clone copies the index. Decoded images are never mutated, so they are
// shared.
func (s *AssetStore) clone() *AssetStore {
	c := NewAssetStore()
	for k, v := range s.images {
		c.images[k] = v
	}
	return c
}
