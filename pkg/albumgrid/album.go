package albumgrid

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"
)

//go:embed assets/album.tmpl
var albumTmpl string

//go:embed assets/style.css
var styleText string

// maxAlbumImages caps how many images a single album page may list. There
// is no pagination; a larger set is refused outright.
const maxAlbumImages = 1000

// AlbumOpts controls album rendering.
type AlbumOpts struct {
	ThumbSize Size              // width/height attributes on every img tag
	Columns   int               // cells per table row, at least 1
	Captions  map[string]string // optional caption per source path
}

// cell is one thumbnail entry in the album table.
type cell struct {
	Href    string // relative link to the source image
	Src     string // relative link to the thumbnail
	Caption string
}

// BuildAlbum renders records as an HTML thumbnail grid and writes it at
// albumPath, or at a "(n)"-suffixed sibling when albumPath is taken. It
// returns the path actually written. Nothing is written on error.
func BuildAlbum(records []ThumbnailRecord, opts AlbumOpts, albumPath string, log Sink) (string, error) {
	if opts.Columns < 1 {
		return "", fmt.Errorf("columns must be at least 1, got %d", opts.Columns)
	}
	if len(records) > maxAlbumImages {
		return "", fmt.Errorf("%w: %d images exceeds the %d per page limit", ErrTooManyImages, len(records), maxAlbumImages)
	}

	bs, err := renderAlbum(records, opts, filepath.Dir(albumPath))
	if err != nil {
		return "", fmt.Errorf("render album: %w", err)
	}

	path := freePath(albumPath, log)
	if err := os.WriteFile(path, bs, 0o644); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrDestinationUnwritable, path, err)
	}
	logf(log, "album written: %s", path)
	return path, nil
}

func renderAlbum(records []ThumbnailRecord, opts AlbumOpts, albumDir string) ([]byte, error) {
	tmpl, err := template.New("album").Parse(albumTmpl)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	cells := make([]cell, 0, len(records))
	for _, r := range records {
		cells = append(cells, newCell(r, albumDir, opts.Captions))
	}

	data := struct {
		Count   int
		Created string
		Size    Size
		Rows    [][]cell
		Style   template.CSS
	}{
		Count:   len(records),
		Created: time.Now().Format("2006-01-02, Mon"),
		Size:    opts.ThumbSize,
		Rows:    layoutRows(cells, opts.Columns),
		Style:   template.CSS(styleText),
	}

	var tpl bytes.Buffer
	if err := tmpl.Execute(&tpl, data); err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	return tpl.Bytes(), nil
}

// newCell builds one table cell, with links relative to the album's own
// directory so the output tree can be relocated as a unit.
func newCell(r ThumbnailRecord, albumDir string, captions map[string]string) cell {
	caption := captions[r.Source]
	if caption == "" {
		caption = filepath.Base(r.Source)
	}
	return cell{
		Href:    relHref(albumDir, r.Source),
		Src:     relHref(albumDir, r.Thumb),
		Caption: caption,
	}
}

func relHref(base string, p string) string {
	r, err := filepath.Rel(base, p)
	if err != nil {
		r = p
	}
	return filepath.ToSlash(r)
}

// layoutRows chunks cells into rows of cols each. The last row may hold
// fewer, but every row is complete in the sense that it opens and closes.
func layoutRows(cells []cell, cols int) [][]cell {
	var rows [][]cell
	for len(cells) > 0 {
		n := cols
		if n > len(cells) {
			n = len(cells)
		}
		rows = append(rows, cells[:n])
		cells = cells[n:]
	}
	return rows
}

// freePath returns path if nothing exists there, or the first sibling named
// <stem>(n)<ext> that is free. A stem already carrying the current "(n)"
// suffix is stripped before the counter advances, so successive runs yield
// (1), (2), (3) rather than (1)(1)(1). The advisory is logged once.
func freePath(path string, log Sink) string {
	warned := false
	n := 1
	for {
		if _, err := os.Stat(path); err != nil {
			return path
		}
		if !warned {
			logf(log, "album file already exists: %s", path)
			warned = true
		}

		ext := filepath.Ext(path)
		stem := strings.TrimSuffix(path, ext)
		tail := fmt.Sprintf("(%d)", n)
		if strings.HasSuffix(stem, tail) {
			stem = strings.TrimSuffix(stem, tail)
			n++
		}
		path = fmt.Sprintf("%s(%d)%s", stem, n, ext)
	}
}
