package albumgrid

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"
)

// Cropper turns source images into fixed-size thumbnails by cropping the
// largest centered window with the target aspect ratio and scaling it down.
type Cropper struct {
	Codec Codec
	Log   Sink
}

// NewCropper returns a Cropper using the given codec. log may be nil.
func NewCropper(c Codec, log Sink) *Cropper {
	return &Cropper{Codec: c, Log: log}
}

// cropBox returns the centered window of an iw x ih image that matches the
// aspect ratio of size. Ratios are compared with integer cross products, so
// an exact aspect match always yields the full image. Window extent and
// offset both truncate, in that order; an extent that truncates to zero is
// raised to one pixel, so the window is never empty.
func cropBox(iw, ih int, size Size) image.Rectangle {
	switch {
	case size.W*ih == size.H*iw:
		return image.Rect(0, 0, iw, ih)
	case size.W*ih > size.H*iw:
		// Source is taller than the target shape: full width, trimmed
		// top and bottom.
		ch := iw * size.H / size.W
		if ch < 1 {
			ch = 1
		}
		top := (ih - ch) / 2
		return image.Rect(0, top, iw, top+ch)
	default:
		cw := ih * size.W / size.H
		if cw < 1 {
			cw = 1
		}
		left := (iw - cw) / 2
		return image.Rect(left, 0, left+cw, ih)
	}
}

// MakeThumbnail writes a size thumbnail of the image at src to dst. The
// output format follows dst's extension.
func (c *Cropper) MakeThumbnail(src string, dst string, size Size) error {
	if size.W < 1 || size.H < 1 {
		return fmt.Errorf("thumbnail size %s is not positive", size)
	}

	img, err := c.Codec.Decode(src)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, src, err)
	}

	b := img.Bounds()
	box := cropBox(b.Dx(), b.Dy(), size).Add(b.Min)
	thumb := c.Codec.Resize(c.Codec.Crop(img, box), size)

	if err := c.Codec.Encode(thumb, dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDestinationUnwritable, dst, err)
	}
	return nil
}

// MakeThumbnails generates a thumbnail for each record and returns the
// records that succeeded, in input order. A failed image is logged and
// skipped; it never stops the batch.
func (c *Cropper) MakeThumbnails(records []ThumbnailRecord, size Size) []ThumbnailRecord {
	done := make([]ThumbnailRecord, 0, len(records))
	for _, r := range records {
		if err := c.MakeThumbnail(r.Source, r.Thumb, size); err != nil {
			logf(c.Log, "not processed:\t%s (%v)", filepath.Base(r.Source), err)
			continue
		}
		logf(c.Log, "processed:\t%s", filepath.Base(r.Source))
		done = append(done, r)
	}
	return done
}

// thumbRecords pairs each source path with its thumbnail path inside
// thumbDir, named <stem><tail><ext>.
func thumbRecords(srcs []string, thumbDir, tail, ext string) []ThumbnailRecord {
	records := make([]ThumbnailRecord, 0, len(srcs))
	for _, src := range srcs {
		base := filepath.Base(src)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		records = append(records, ThumbnailRecord{
			Source: src,
			Thumb:  filepath.Join(thumbDir, stem+tail+ext),
		})
	}
	return records
}
