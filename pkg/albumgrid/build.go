package albumgrid

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/otiai10/copy"
	"k8s.io/klog/v2"
)

// An Assembly is the collected output of one run: the records whose
// thumbnails were produced, in source order, plus any captions gathered
// for them.
type Assembly struct {
	Records  []ThumbnailRecord
	Skipped  int               // source images that could not be processed
	Captions map[string]string // caption per source path, filename otherwise

	log *RunLog
}

func (a *Assembly) logf(format string, args ...any) {
	if a.log == nil {
		klog.Infof(format, args...)
		return
	}
	a.log.Logf(format, args...)
}

// Collect enumerates the source directory and produces all thumbnails,
// returning the assembly for Render. Preconditions that leave nothing to
// render, like an empty directory, come back as errors; a single bad image
// does not.
func Collect(c *Config) (*Assembly, error) {
	c.setDefaults()

	rl := NewRunLog()
	rl.Head(c)

	srcs, err := Find(c.InDir, c.Exts)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}

	if err := ensureThumbDir(c.InDir, c.ThumbDir, rl); err != nil {
		return nil, err
	}

	records := thumbRecords(srcs, c.ThumbDir, c.ThumbTail, c.ThumbExt)
	done := NewCropper(NewCodec(), rl).MakeThumbnails(records, c.ThumbSize)

	a := &Assembly{
		Records:  done,
		Skipped:  len(records) - len(done),
		Captions: map[string]string{},
		log:      rl,
	}

	if c.SelfContained {
		mirrorOriginals(a, filepath.Dir(c.AlbumPath))
	}
	if c.ExifCaptions {
		exifCaptions(a)
	}
	return a, nil
}

// Render writes the album for a collected assembly and flushes the run log.
// It returns the album path actually written, which differs from
// Config.AlbumPath when that file already existed.
func Render(c *Config, a *Assembly) (string, error) {
	c.setDefaults()

	// A nil *RunLog must not become a non-nil Sink.
	var sink Sink
	if a.log != nil {
		sink = a.log
	}

	opts := AlbumOpts{ThumbSize: c.ThumbSize, Columns: c.Columns, Captions: a.Captions}
	path, err := BuildAlbum(a.Records, opts, c.AlbumPath, sink)
	if err != nil {
		a.logf("no album written: %v", err)
	}

	// Thumbnails stay on disk even when the album itself failed, so the
	// run log is flushed either way.
	if c.WriteLog && a.log != nil {
		if ferr := a.log.Flush(c.ThumbDir); ferr != nil {
			klog.Warningf("run log not written: %v", ferr)
		}
	}
	return path, err
}

// Build is Collect followed by Render.
func Build(c *Config) (string, error) {
	a, err := Collect(c)
	if err != nil {
		return "", err
	}
	return Render(c, a)
}

// ensureThumbDir creates thumbDir unless it is the image directory itself.
func ensureThumbDir(inDir string, thumbDir string, log Sink) error {
	inAbs, err := filepath.Abs(inDir)
	if err != nil {
		return fmt.Errorf("abs: %w", err)
	}
	thumbAbs, err := filepath.Abs(thumbDir)
	if err != nil {
		return fmt.Errorf("abs: %w", err)
	}

	if inAbs == thumbAbs {
		logf(log, "using the image directory for thumbnails")
		return nil
	}
	if err := os.MkdirAll(thumbDir, 0o755); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDirCreate, thumbAbs, err)
	}
	logf(log, "made directory: %s", thumbAbs)
	return nil
}

// mirrorOriginals copies each source image into an originals directory next
// to the album and points its record there, so the album tree carries its
// own full-size images. A failed copy leaves that record on the original.
func mirrorOriginals(a *Assembly, albumDir string) {
	dir := filepath.Join(albumDir, "originals")
	for i, r := range a.Records {
		dst := filepath.Join(dir, filepath.Base(r.Source))
		if err := copy.Copy(r.Source, dst); err != nil {
			a.logf("not mirrored:\t%s (%v)", filepath.Base(r.Source), err)
			continue
		}
		a.Records[i].Source = dst
	}
}
