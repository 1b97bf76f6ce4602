package albumgrid

import (
	"fmt"
	"strconv"
	"strings"
)

// Size is a thumbnail's target dimensions in pixels. Both sides are
// positive for any size accepted by the cropper.
type Size struct {
	W int
	H int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.W, s.H)
}

// ParseSize parses a "WxH" string such as "240x180".
func ParseSize(v string) (Size, error) {
	w, h, ok := strings.Cut(v, "x")
	if !ok {
		return Size{}, fmt.Errorf("size %q: want WxH", v)
	}
	sw, err := strconv.Atoi(w)
	if err != nil {
		return Size{}, fmt.Errorf("size %q: %w", v, err)
	}
	sh, err := strconv.Atoi(h)
	if err != nil {
		return Size{}, fmt.Errorf("size %q: %w", v, err)
	}
	if sw < 1 || sh < 1 {
		return Size{}, fmt.Errorf("size %q: both sides must be positive", v)
	}
	return Size{W: sw, H: sh}, nil
}

// ThumbnailRecord pairs a source image with the thumbnail generated for it.
// Records are built once, when both paths are known, and kept in processing
// order; the album is rendered from the record sequence alone.
type ThumbnailRecord struct {
	Source string
	Thumb  string
}
