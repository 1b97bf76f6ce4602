package albumgrid

import (
	"fmt"
	"image"
	"image/gif"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"github.com/h2non/filetype"
	"golang.org/x/image/tiff"
)

// defaultJPEGQuality is used for JPEG thumbnail output.
const defaultJPEGQuality = 85

// Codec is the image decode/transform/encode capability the cropper calls
// into. Implementations hold no state across calls; every image handle is
// scoped to the single operation that created it.
type Codec interface {
	Decode(path string) (image.Image, error)
	Crop(img image.Image, r image.Rectangle) image.Image
	Resize(img image.Image, size Size) image.Image
	Encode(img image.Image, path string) error
}

// BildCodec implements Codec with the bild imaging library. The zero value
// is not valid; use NewCodec.
type BildCodec struct {
	Quality int // JPEG quality
}

// NewCodec returns the stock codec.
func NewCodec() *BildCodec {
	return &BildCodec{Quality: defaultJPEGQuality}
}

// Decode reads and decodes the image at path. Failures carry a short hint
// about what the file header actually looked like.
func (c *BildCodec) Decode(path string) (image.Image, error) {
	img, err := imgio.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w (%s)", err, sniff(path))
	}
	return img, nil
}

// Crop returns the part of img inside r.
func (c *BildCodec) Crop(img image.Image, r image.Rectangle) image.Image {
	return transform.Crop(img, r)
}

// Resize scales img to exactly size. The crop step already matched the
// aspect ratio, so any residual stretch is within a pixel.
func (c *BildCodec) Resize(img image.Image, size Size) image.Image {
	return transform.Resize(img, size.W, size.H, transform.Lanczos)
}

// Encode saves img at path in the format implied by its extension.
func (c *BildCodec) Encode(img image.Image, path string) error {
	enc, err := c.encoderFor(filepath.Ext(path))
	if err != nil {
		return err
	}
	return imgio.Save(path, img, enc)
}

func (c *BildCodec) encoderFor(ext string) (imgio.Encoder, error) {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return imgio.JPEGEncoder(c.Quality), nil
	case ".png":
		return imgio.PNGEncoder(), nil
	case ".bmp":
		return imgio.BMPEncoder(), nil
	case ".gif":
		return func(w io.Writer, img image.Image) error {
			return gif.Encode(w, img, nil)
		}, nil
	case ".tif", ".tiff":
		return func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, nil)
		}, nil
	}
	return nil, fmt.Errorf("no encoder for %q", ext)
}

// sniff reports what the header of an undecodable file looks like, for log
// lines only; the failure class does not depend on it.
func sniff(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return "unreadable"
	}
	defer f.Close()

	head := make([]byte, 261)
	n, _ := io.ReadFull(f, head)
	if n == 0 {
		return "empty file"
	}

	t, err := filetype.Match(head[:n])
	if err != nil || t == filetype.Unknown {
		return "not a recognized image"
	}
	if filetype.IsImage(head[:n]) {
		return "unsupported " + t.Extension + " image"
	}
	return t.Extension + " file, not an image"
}
