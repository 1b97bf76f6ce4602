package albumgrid

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// memSink records log lines for assertions.
type memSink struct {
	lines []string
}

func (m *memSink) Logf(format string, args ...any) {
	m.lines = append(m.lines, fmt.Sprintf(format, args...))
}

// albumRecords fabricates n records under dir. BuildAlbum never opens the
// files, so none are created.
func albumRecords(dir string, n int) []ThumbnailRecord {
	var rs []ThumbnailRecord
	for i := 0; i < n; i++ {
		rs = append(rs, ThumbnailRecord{
			Source: filepath.Join(dir, fmt.Sprintf("img%02d.jpg", i)),
			Thumb:  filepath.Join(dir, "thumbs", fmt.Sprintf("img%02d_thn.jpg", i)),
		})
	}
	return rs
}

func TestLayoutRows(t *testing.T) {
	tests := []struct {
		cells, cols int
		want        []int
	}{
		{10, 4, []int{4, 4, 2}},
		{8, 4, []int{4, 4}},
		{3, 1, []int{1, 1, 1}},
		{2, 5, []int{2}},
		{0, 4, nil},
	}
	for _, tc := range tests {
		rows := layoutRows(make([]cell, tc.cells), tc.cols)
		if len(rows) != len(tc.want) {
			t.Errorf("%d cells / %d cols: %d rows, want %d", tc.cells, tc.cols, len(rows), len(tc.want))
			continue
		}
		for i, n := range tc.want {
			if len(rows[i]) != n {
				t.Errorf("%d cells / %d cols: row %d has %d cells, want %d", tc.cells, tc.cols, i, len(rows[i]), n)
			}
		}
	}
}

func TestBuildAlbum(t *testing.T) {
	dir := t.TempDir()
	records := albumRecords(dir, 10)
	opts := AlbumOpts{ThumbSize: Size{W: 128, H: 128}, Columns: 4}

	path, err := BuildAlbum(records, opts, filepath.Join(dir, "album.htm"), nil)
	if err != nil {
		t.Fatalf("BuildAlbum: %v", err)
	}
	if path != filepath.Join(dir, "album.htm") {
		t.Errorf("written to %s, want the requested path", path)
	}

	bs, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	html := string(bs)

	if got := strings.Count(html, "<tr>"); got != 3 {
		t.Errorf("%d <tr> blocks, want 3", got)
	}
	if got := strings.Count(html, "</tr>"); got != 3 {
		t.Errorf("%d </tr> closers, want 3", got)
	}
	if got := strings.Count(html, "<img "); got != 10 {
		t.Errorf("%d <img> tags, want 10", got)
	}

	lastRow := html[strings.LastIndex(html, "<tr>"):]
	if got := strings.Count(lastRow, "<td "); got != 2 {
		t.Errorf("last row has %d cells, want 2", got)
	}

	if !strings.Contains(html, `href="img00.jpg"`) {
		t.Errorf("source link is not relative to the album directory:\n%s", html)
	}
	if !strings.Contains(html, `src="thumbs/img00_thn.jpg"`) {
		t.Errorf("thumbnail link is not relative to the album directory:\n%s", html)
	}
	if !strings.Contains(html, `width="128" height="128"`) {
		t.Errorf("img tags do not carry the thumbnail dimensions")
	}
	if !strings.Contains(html, "<i>No. of images</i>: 10") {
		t.Errorf("image count line missing")
	}
	if !strings.Contains(html, "<div>img00.jpg</div>") {
		t.Errorf("filename caption missing")
	}
}

func TestBuildAlbumCaptionOverride(t *testing.T) {
	dir := t.TempDir()
	records := albumRecords(dir, 2)
	opts := AlbumOpts{
		ThumbSize: Size{W: 128, H: 128},
		Columns:   4,
		Captions:  map[string]string{records[0].Source: "Sunset over the bay"},
	}

	path, err := BuildAlbum(records, opts, filepath.Join(dir, "album.htm"), nil)
	if err != nil {
		t.Fatalf("BuildAlbum: %v", err)
	}
	bs, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	html := string(bs)

	if !strings.Contains(html, "<div>Sunset over the bay</div>") {
		t.Errorf("caption override missing:\n%s", html)
	}
	if !strings.Contains(html, `alt="Sunset over the bay"`) {
		t.Errorf("alt text does not carry the caption")
	}
	if strings.Contains(html, "<div>img00.jpg</div>") {
		t.Errorf("filename caption shown despite override")
	}
	if !strings.Contains(html, "<div>img01.jpg</div>") {
		t.Errorf("record without an override lost its filename caption:\n%s", html)
	}
}

func TestBuildAlbumCollisionSequence(t *testing.T) {
	dir := t.TempDir()
	records := albumRecords(dir, 2)
	opts := AlbumOpts{ThumbSize: Size{W: 128, H: 128}, Columns: 4}
	target := filepath.Join(dir, "album.htm")

	for i, base := range []string{"album.htm", "album(1).htm", "album(2).htm"} {
		path, err := BuildAlbum(records, opts, target, nil)
		if err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
		if filepath.Base(path) != base {
			t.Fatalf("write %d landed on %s, want %s", i, filepath.Base(path), base)
		}
	}
}

func TestFreePath(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "album.htm")

	if got := freePath(p, nil); got != p {
		t.Errorf("free target renamed to %s", got)
	}

	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if got := freePath(p, nil); got != filepath.Join(dir, "album(1).htm") {
		t.Errorf("first collision gave %s, want album(1).htm", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "album(1).htm"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if got := freePath(p, nil); got != filepath.Join(dir, "album(2).htm") {
		t.Errorf("second collision gave %s, want album(2).htm", got)
	}

	// A taken path that itself ends in "(n)" advances the counter rather
	// than stacking suffixes.
	pre := filepath.Join(dir, "x(1).htm")
	if err := os.WriteFile(pre, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if got := freePath(pre, nil); got != filepath.Join(dir, "x(2).htm") {
		t.Errorf("suffixed target gave %s, want x(2).htm", got)
	}
}

func TestFreePathWarnsOnce(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "album.htm")
	for _, name := range []string{"album.htm", "album(1).htm", "album(2).htm"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	sink := &memSink{}
	if got := freePath(p, sink); filepath.Base(got) != "album(3).htm" {
		t.Fatalf("got %s, want album(3).htm", filepath.Base(got))
	}

	warns := 0
	for _, l := range sink.lines {
		if strings.Contains(l, "already exists") {
			warns++
		}
	}
	if warns != 1 {
		t.Errorf("%d advisories, want exactly 1: %q", warns, sink.lines)
	}
}

func TestBuildAlbumTooManyImages(t *testing.T) {
	dir := t.TempDir()
	records := albumRecords(dir, 1001)
	target := filepath.Join(dir, "album.htm")

	_, err := BuildAlbum(records, AlbumOpts{ThumbSize: Size{W: 128, H: 128}, Columns: 4}, target, nil)
	if !errors.Is(err, ErrTooManyImages) {
		t.Fatalf("err = %v, want ErrTooManyImages", err)
	}

	ms, err := filepath.Glob(filepath.Join(dir, "*.htm"))
	if err != nil {
		t.Fatal(err)
	}
	if len(ms) != 0 {
		t.Errorf("album files written despite the cap: %v", ms)
	}
}

func TestBuildAlbumRejectsBadColumns(t *testing.T) {
	dir := t.TempDir()
	records := albumRecords(dir, 3)
	target := filepath.Join(dir, "album.htm")

	for _, cols := range []int{0, -1} {
		_, err := BuildAlbum(records, AlbumOpts{ThumbSize: Size{W: 128, H: 128}, Columns: cols}, target, nil)
		if err == nil {
			t.Errorf("columns=%d accepted, want error", cols)
		}
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Errorf("album written despite invalid columns")
	}
}
