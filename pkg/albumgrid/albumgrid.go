// Package albumgrid turns a directory of images into fixed-size cropped
// thumbnails and a static HTML album page linking each thumbnail to its
// original.
package albumgrid

import "path/filepath"

// DefaultExts are the source extensions accepted when Config.Exts is empty.
var DefaultExts = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".tif", ".tiff"}

// Config holds configuration for one albumgrid run.
type Config struct {
	// InDir is the directory of source images. It is listed once, never
	// walked recursively.
	InDir string

	// ThumbDir is where thumbnails are written. It may equal InDir, in
	// which case no directory is created.
	ThumbDir string

	// AlbumPath is the requested album file path. When a file already
	// exists there, a numbered variant is written instead.
	AlbumPath string

	ThumbSize Size
	ThumbTail string // filename suffix marking thumbnails, e.g. "_thn"
	ThumbExt  string // extension (and thereby format) of thumbnails
	Columns   int    // album cells per table row

	Exts []string // accepted source extensions, lowercase with leading dot

	// WriteLog appends the run log to a dated file in ThumbDir.
	WriteLog bool

	// ExifCaptions replaces filename captions with EXIF Headline or
	// ImageDescription text where present.
	ExifCaptions bool

	// SelfContained copies the original images next to the album so the
	// generated tree can be relocated or published on its own.
	SelfContained bool
}

// setDefaults fills the zero fields of c with the stock settings.
func (c *Config) setDefaults() {
	if c.ThumbDir == "" {
		c.ThumbDir = filepath.Join(c.InDir, "thumbs")
	}
	if c.AlbumPath == "" {
		c.AlbumPath = filepath.Join(c.InDir, "htm_album.htm")
	}
	if c.ThumbSize.W == 0 && c.ThumbSize.H == 0 {
		c.ThumbSize = Size{W: 128, H: 128}
	}
	if c.ThumbTail == "" {
		c.ThumbTail = "_thn"
	}
	if c.ThumbExt == "" {
		c.ThumbExt = ".jpg"
	}
	if c.Columns == 0 {
		c.Columns = 4
	}
	if len(c.Exts) == 0 {
		c.Exts = DefaultExts
	}
}
